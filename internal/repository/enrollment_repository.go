package repository

import (
	"errors"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

// Create 唯一索引兜底并发重复选课
func (r *EnrollmentRepository) Create(e *model.Enrollment) error {
	err := r.DB.Omit("Course").Create(e).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.ErrAlreadyEnrolled
	}
	return err
}

func (r *EnrollmentRepository) Exists(studentID, courseID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (r *EnrollmentRepository) ListByStudent(studentID uint) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.DB.Preload("Course").
		Where("student_id = ?", studentID).
		Order("enrolled_at desc, id desc").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *EnrollmentRepository) SetCompleted(id uint, completed bool) error {
	return r.DB.Model(&model.Enrollment{}).Where("id = ?", id).Update("completed", completed).Error
}

func (r *EnrollmentRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).Count(&count).Error
	return count, err
}
