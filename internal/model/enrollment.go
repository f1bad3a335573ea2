package model

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment 学生选课记录，Completed 由内容完成度在读取时同步
// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	StudentID  uint      `gorm:"not null;uniqueIndex:idx_enrollment_student_course" json:"studentId"`
	CourseID   uint      `gorm:"not null;uniqueIndex:idx_enrollment_student_course;index" json:"courseId"`
	Course     *Course   `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	EnrolledAt time.Time `gorm:"not null" json:"enrolledAt"`
	Completed  bool      `gorm:"not null" json:"completed"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	if e.EnrolledAt.IsZero() {
		e.EnrolledAt = time.Now()
	}
	return nil
}

// StudentContentProgress CompletedAt 仅在 Completed 为 true 时有值
type StudentContentProgress struct {
	BaseModel
	StudentID   uint       `gorm:"not null;uniqueIndex:idx_progress_student_content" json:"studentId"`
	ContentID   uint       `gorm:"not null;uniqueIndex:idx_progress_student_content;index" json:"contentId"`
	Completed   bool       `gorm:"not null" json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
}

func (StudentContentProgress) TableName() string {
	return "student_content_progress"
}
