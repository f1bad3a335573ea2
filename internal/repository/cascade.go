package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

// 级联删除辅助函数，均需在同一事务 tx 中调用，由子到父依次删除

func deleteContents(tx *gorm.DB, contentIDs []uint) error {
	if len(contentIDs) == 0 {
		return nil
	}
	if err := tx.Where("content_id IN ?", contentIDs).Delete(&model.StudentContentProgress{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", contentIDs).Delete(&model.Content{}).Error
}

func deleteQuestions(tx *gorm.DB, questionIDs []uint) error {
	if len(questionIDs) == 0 {
		return nil
	}
	if err := tx.Where("question_id IN ?", questionIDs).Delete(&model.StudentAnswer{}).Error; err != nil {
		return err
	}
	if err := tx.Where("question_id IN ?", questionIDs).Delete(&model.Option{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", questionIDs).Delete(&model.Question{}).Error
}

func deleteQuizzes(tx *gorm.DB, quizIDs []uint) error {
	if len(quizIDs) == 0 {
		return nil
	}
	var questionIDs []uint
	if err := tx.Model(&model.Question{}).Where("quiz_id IN ?", quizIDs).Pluck("id", &questionIDs).Error; err != nil {
		return err
	}
	if err := deleteQuestions(tx, questionIDs); err != nil {
		return err
	}

	var attemptIDs []uint
	if err := tx.Model(&model.StudentQuizAttempt{}).Where("quiz_id IN ?", quizIDs).Pluck("id", &attemptIDs).Error; err != nil {
		return err
	}
	if len(attemptIDs) > 0 {
		if err := tx.Where("attempt_id IN ?", attemptIDs).Delete(&model.StudentAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", attemptIDs).Delete(&model.StudentQuizAttempt{}).Error; err != nil {
			return err
		}
	}
	return tx.Where("id IN ?", quizIDs).Delete(&model.Quiz{}).Error
}

func deleteLessons(tx *gorm.DB, lessonIDs []uint) error {
	if len(lessonIDs) == 0 {
		return nil
	}
	var contentIDs []uint
	if err := tx.Model(&model.Content{}).Where("lesson_id IN ?", lessonIDs).Pluck("id", &contentIDs).Error; err != nil {
		return err
	}
	if err := deleteContents(tx, contentIDs); err != nil {
		return err
	}

	var quizIDs []uint
	if err := tx.Model(&model.Quiz{}).Where("lesson_id IN ?", lessonIDs).Pluck("id", &quizIDs).Error; err != nil {
		return err
	}
	if err := deleteQuizzes(tx, quizIDs); err != nil {
		return err
	}
	return tx.Where("id IN ?", lessonIDs).Delete(&model.Lesson{}).Error
}

func deleteModules(tx *gorm.DB, moduleIDs []uint) error {
	if len(moduleIDs) == 0 {
		return nil
	}
	var lessonIDs []uint
	if err := tx.Model(&model.Lesson{}).Where("module_id IN ?", moduleIDs).Pluck("id", &lessonIDs).Error; err != nil {
		return err
	}
	if err := deleteLessons(tx, lessonIDs); err != nil {
		return err
	}
	return tx.Where("id IN ?", moduleIDs).Delete(&model.Module{}).Error
}

func deleteCourse(tx *gorm.DB, courseID uint) error {
	var moduleIDs []uint
	if err := tx.Model(&model.Module{}).Where("course_id = ?", courseID).Pluck("id", &moduleIDs).Error; err != nil {
		return err
	}
	if err := deleteModules(tx, moduleIDs); err != nil {
		return err
	}
	if err := tx.Where("course_id = ?", courseID).Delete(&model.Enrollment{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Course{}, courseID).Error
}
