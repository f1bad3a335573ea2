package repository

import (
	"context"

	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

// CreateWithAnswers 作答记录与每题答案在同一事务内写入，任一失败全部回滚
func (r *AttemptRepository) CreateWithAnswers(ctx context.Context, attempt *model.StudentQuizAttempt, answers []model.StudentAnswer) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Answers").Create(attempt).Error; err != nil {
			return err
		}
		if len(answers) == 0 {
			return nil
		}
		for i := range answers {
			answers[i].AttemptID = attempt.ID
		}
		if err := tx.Create(&answers).Error; err != nil {
			return err
		}
		attempt.Answers = answers
		return nil
	})
}

func (r *AttemptRepository) FindWithAnswers(id uint) (*model.StudentQuizAttempt, error) {
	var attempt model.StudentQuizAttempt
	err := r.DB.Preload("Answers").First(&attempt, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &attempt, nil
}

func (r *AttemptRepository) ListByStudentAndQuiz(studentID, quizID uint) ([]model.StudentQuizAttempt, error) {
	var attempts []model.StudentQuizAttempt
	err := r.DB.Where("student_id = ? AND quiz_id = ?", studentID, quizID).
		Order("attempt_date desc, id desc").
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.StudentQuizAttempt{}).Count(&count).Error
	return count, err
}
