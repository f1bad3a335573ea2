package repository

import (
	"errors"
	"time"

	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// Find 记录不存在时返回 nil, nil，表示未完成
func (r *ProgressRepository) Find(studentID, contentID uint) (*model.StudentContentProgress, error) {
	var p model.StudentContentProgress
	err := r.DB.Where("student_id = ? AND content_id = ?", studentID, contentID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SetCompletion 首次访问时创建记录；decide 根据当前状态（未创建时为 false）决定新状态
func (r *ProgressRepository) SetCompletion(studentID, contentID uint, decide func(current bool) bool) (*model.StudentContentProgress, error) {
	var result model.StudentContentProgress
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("student_id = ? AND content_id = ?", studentID, contentID).First(&result).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		exists := err == nil

		result.StudentID = studentID
		result.ContentID = contentID
		result.Completed = decide(result.Completed)
		if result.Completed {
			now := time.Now()
			result.CompletedAt = &now
		} else {
			result.CompletedAt = nil
		}

		if exists {
			return tx.Save(&result).Error
		}
		return tx.Create(&result).Error
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CountCompletedInCourse 学生在课程中已完成的内容数
func (r *ProgressRepository) CountCompletedInCourse(studentID, courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.StudentContentProgress{}).
		Joins("JOIN contents ON contents.id = student_content_progress.content_id").
		Joins("JOIN lessons ON lessons.id = contents.lesson_id").
		Joins("JOIN course_modules ON course_modules.id = lessons.module_id").
		Where("student_content_progress.student_id = ? AND student_content_progress.completed = ? AND course_modules.course_id = ?",
			studentID, true, courseID).
		Count(&count).Error
	return count, err
}

// CompletedContentIDs 返回给定内容中已完成的 id 集合
func (r *ProgressRepository) CompletedContentIDs(studentID uint, contentIDs []uint) (map[uint]bool, error) {
	status := make(map[uint]bool)
	if len(contentIDs) == 0 {
		return status, nil
	}
	var rows []model.StudentContentProgress
	err := r.DB.Where("student_id = ? AND content_id IN ? AND completed = ?", studentID, contentIDs, true).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		status[row.ContentID] = true
	}
	return status, nil
}
