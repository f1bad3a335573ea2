package repository

import (
	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

// Create 连同题目与选项一起写入
func (r *QuizRepository) Create(quiz *model.Quiz) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Lesson").Create(quiz).Error
	})
}

func (r *QuizRepository) Update(quiz *model.Quiz) error {
	return r.DB.Omit("Questions", "Lesson").Save(quiz).Error
}

func (r *QuizRepository) FindByID(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := r.DB.First(&quiz, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &quiz, nil
}

// FindWithQuestions 题目按 order 排序，选项按创建顺序
func (r *QuizRepository) FindWithQuestions(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order asc, id asc")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		}).
		First(&quiz, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &quiz, nil
}

func (r *QuizRepository) LessonHasQuiz(lessonID uint, excludeQuizID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Quiz{}).
		Where("lesson_id = ? AND id <> ?", lessonID, excludeQuizID).
		Count(&count).Error
	return count > 0, err
}

// ListAll 管理员可见全部测验
func (r *QuizRepository) ListAll() ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.Order("created_at desc, id desc").Find(&quizzes).Error
	return quizzes, err
}

// ListByInstructor 讲师课程下课时关联的测验
func (r *QuizRepository) ListByInstructor(instructorID uint) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.Model(&model.Quiz{}).
		Joins("JOIN lessons ON lessons.id = quizzes.lesson_id").
		Joins("JOIN course_modules ON course_modules.id = lessons.module_id").
		Joins("JOIN courses ON courses.id = course_modules.course_id").
		Where("courses.instructor_id = ?", instructorID).
		Order("quizzes.created_at desc, quizzes.id desc").
		Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return deleteQuizzes(tx, []uint{id})
	})
}

func (r *QuizRepository) FindQuestion(quizID, questionID uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("id asc")
	}).Where("id = ? AND quiz_id = ?", questionID, quizID).First(&q).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &q, nil
}

func (r *QuizRepository) CreateQuestion(q *model.Question) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		taken, err := orderTaken(tx, &model.Question{}, "quiz_id", q.QuizID, q.Order, 0)
		if err != nil {
			return err
		}
		if taken {
			return util.ErrDuplicateOrder
		}
		return orderConflict(tx.Create(q).Error)
	})
}

// ReplaceQuestion 更新题目并替换选项：同文本的选项保留原 id，
// 被移除的选项先将引用它的作答置空再删除
func (r *QuizRepository) ReplaceQuestion(q *model.Question, options []model.Option) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		taken, err := orderTaken(tx, &model.Question{}, "quiz_id", q.QuizID, q.Order, q.ID)
		if err != nil {
			return err
		}
		if taken {
			return util.ErrDuplicateOrder
		}
		if err := tx.Omit("Options").Save(q).Error; err != nil {
			return orderConflict(err)
		}

		var existing []model.Option
		if err := tx.Where("question_id = ?", q.ID).Find(&existing).Error; err != nil {
			return err
		}
		byText := make(map[string]model.Option, len(existing))
		for _, o := range existing {
			byText[o.Text] = o
		}

		kept := make(map[uint]bool)
		result := make([]model.Option, 0, len(options))
		for _, o := range options {
			o.QuestionID = q.ID
			if old, ok := byText[o.Text]; ok {
				o.ID = old.ID
				o.CreatedAt = old.CreatedAt
				kept[old.ID] = true
			}
			result = append(result, o)
		}

		var removed []uint
		for _, o := range existing {
			if !kept[o.ID] {
				removed = append(removed, o.ID)
			}
		}
		if len(removed) > 0 {
			if err := tx.Model(&model.StudentAnswer{}).
				Where("chosen_option_id IN ?", removed).
				Update("chosen_option_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", removed).Delete(&model.Option{}).Error; err != nil {
				return err
			}
		}

		for i := range result {
			if err := tx.Save(&result[i]).Error; err != nil {
				return err
			}
		}
		q.Options = result
		return nil
	})
}

func (r *QuizRepository) DeleteQuestion(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return deleteQuestions(tx, []uint{id})
	})
}
