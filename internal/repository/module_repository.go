package repository

import (
	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

// ModuleRepository 负责课程树中 章节/课时/内容 三层的读写
type ModuleRepository struct {
	DB *gorm.DB
}

func NewModuleRepository(db *gorm.DB) *ModuleRepository {
	return &ModuleRepository{DB: db}
}

// orderTaken 同一父级下 order 是否已被其他记录占用
func orderTaken(db *gorm.DB, value interface{}, parentColumn string, parentID uint, order int, excludeID uint) (bool, error) {
	var count int64
	err := db.Model(value).
		Where(parentColumn+" = ? AND sort_order = ? AND id <> ?", parentID, order, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *ModuleRepository) saveOrdered(value interface{}, parentColumn string, parentID uint, order int, id uint, write func() error) error {
	taken, err := orderTaken(r.DB, value, parentColumn, parentID, order, id)
	if err != nil {
		return err
	}
	if taken {
		return util.ErrDuplicateOrder
	}
	return orderConflict(write())
}

func (r *ModuleRepository) CreateModule(m *model.Module) error {
	return r.saveOrdered(&model.Module{}, "course_id", m.CourseID, m.Order, 0, func() error {
		return r.DB.Create(m).Error
	})
}

func (r *ModuleRepository) UpdateModule(m *model.Module) error {
	return r.saveOrdered(&model.Module{}, "course_id", m.CourseID, m.Order, m.ID, func() error {
		return r.DB.Omit("Lessons").Save(m).Error
	})
}

// FindModule 限定在课程内查找，路径中的 id 不属于该课程时视为不存在
func (r *ModuleRepository) FindModule(courseID, moduleID uint) (*model.Module, error) {
	var m model.Module
	if err := r.DB.Where("id = ? AND course_id = ?", moduleID, courseID).First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (r *ModuleRepository) DeleteModule(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return deleteModules(tx, []uint{id})
	})
}

func (r *ModuleRepository) CreateLesson(l *model.Lesson) error {
	return r.saveOrdered(&model.Lesson{}, "module_id", l.ModuleID, l.Order, 0, func() error {
		return r.DB.Create(l).Error
	})
}

func (r *ModuleRepository) UpdateLesson(l *model.Lesson) error {
	return r.saveOrdered(&model.Lesson{}, "module_id", l.ModuleID, l.Order, l.ID, func() error {
		return r.DB.Omit("Contents").Save(l).Error
	})
}

func (r *ModuleRepository) FindLesson(moduleID, lessonID uint) (*model.Lesson, error) {
	var l model.Lesson
	if err := r.DB.Where("id = ? AND module_id = ?", lessonID, moduleID).First(&l).Error; err != nil {
		return nil, notFound(err)
	}
	return &l, nil
}

func (r *ModuleRepository) FindLessonByID(id uint) (*model.Lesson, error) {
	var l model.Lesson
	if err := r.DB.First(&l, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &l, nil
}

func (r *ModuleRepository) DeleteLesson(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return deleteLessons(tx, []uint{id})
	})
}

func (r *ModuleRepository) CreateContent(c *model.Content) error {
	return r.saveOrdered(&model.Content{}, "lesson_id", c.LessonID, c.Order, 0, func() error {
		return r.DB.Create(c).Error
	})
}

func (r *ModuleRepository) UpdateContent(c *model.Content) error {
	return r.saveOrdered(&model.Content{}, "lesson_id", c.LessonID, c.Order, c.ID, func() error {
		return r.DB.Save(c).Error
	})
}

func (r *ModuleRepository) FindContent(lessonID, contentID uint) (*model.Content, error) {
	var c model.Content
	if err := r.DB.Where("id = ? AND lesson_id = ?", contentID, lessonID).First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *ModuleRepository) FindContentByID(id uint) (*model.Content, error) {
	var c model.Content
	if err := r.DB.First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *ModuleRepository) DeleteContent(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return deleteContents(tx, []uint{id})
	})
}
