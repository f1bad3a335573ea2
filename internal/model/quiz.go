package model

import (
	"time"

	"gorm.io/gorm"
)

// swagger:model Quiz
type Quiz struct {
	BaseModel
	Title           string     `gorm:"size:255;not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	LessonID        *uint      `gorm:"uniqueIndex" json:"lessonId"`
	Lesson          *Lesson    `gorm:"foreignKey:LessonID" json:"-"`
	DurationMinutes int        `gorm:"not null;default:0" json:"durationMinutes"`
	PassPercentage  int        `gorm:"not null" json:"passPercentage"`
	Questions       []Question `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

type Question struct {
	BaseModel
	QuizID  uint     `gorm:"not null;uniqueIndex:idx_question_quiz_order" json:"quizId"`
	Text    string   `gorm:"type:text;not null" json:"text"`
	Order   int      `gorm:"column:sort_order;not null;uniqueIndex:idx_question_quiz_order" json:"order"`
	Options []Option `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
}

func (Question) TableName() string {
	return "quiz_questions"
}

// Option 每题应恰有一个正确选项，由 QuizService 在写入时保证
type Option struct {
	BaseModel
	QuestionID uint   `gorm:"not null;uniqueIndex:idx_option_question_text" json:"questionId"`
	Text       string `gorm:"size:255;not null;uniqueIndex:idx_option_question_text" json:"text"`
	IsCorrect  bool   `gorm:"not null" json:"isCorrect"`
}

func (Option) TableName() string {
	return "quiz_options"
}

// StudentQuizAttempt 每次提交一条记录，提交后不再修改
type StudentQuizAttempt struct {
	BaseModel
	StudentID   uint            `gorm:"not null;index" json:"studentId"`
	QuizID      uint            `gorm:"not null;index" json:"quizId"`
	Score       float64         `gorm:"type:decimal(5,2);not null" json:"score"`
	Passed      bool            `gorm:"not null" json:"passed"`
	AttemptDate time.Time       `gorm:"not null;index" json:"attemptDate"`
	Answers     []StudentAnswer `gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
}

func (StudentQuizAttempt) TableName() string {
	return "student_quiz_attempts"
}

func (a *StudentQuizAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.AttemptDate.IsZero() {
		a.AttemptDate = time.Now()
	}
	return nil
}

// StudentAnswer ChosenOptionID 为空表示该题未作答
type StudentAnswer struct {
	BaseModel
	AttemptID      uint  `gorm:"not null;uniqueIndex:idx_answer_attempt_question" json:"attemptId"`
	QuestionID     uint  `gorm:"not null;uniqueIndex:idx_answer_attempt_question" json:"questionId"`
	ChosenOptionID *uint `json:"chosenOptionId"`
}

func (StudentAnswer) TableName() string {
	return "student_answers"
}
