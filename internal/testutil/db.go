package testutil

import (
	"fmt"
	"testing"

	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// NewDB 每个测试一个独立的内存 SQLite 库，已完成迁移
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString()),
		LogLevel:   "silent",
	}
	db, err := database.InitDB(cfg, true)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 共享缓存的内存库在最后一个连接关闭时销毁，限制为单连接避免锁冲突
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

const Password = "s3cret-pass"

func hash(t *testing.T) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func CreateUser(t *testing.T, db *gorm.DB, username string, apply func(u *model.User)) *model.User {
	t.Helper()
	u := &model.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  hash(t),
		IsStudent: true,
		IsActive:  true,
	}
	if apply != nil {
		apply(u)
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func CreateStudent(t *testing.T, db *gorm.DB, username string) *model.User {
	return CreateUser(t, db, username, nil)
}

func CreateInstructor(t *testing.T, db *gorm.DB, username string) *model.User {
	return CreateUser(t, db, username, func(u *model.User) {
		u.IsStudent = false
		u.IsInstructor = true
	})
}

func CreateAdmin(t *testing.T, db *gorm.DB, username string) *model.User {
	return CreateUser(t, db, username, func(u *model.User) {
		u.IsStudent = false
		u.IsStaff = true
	})
}

func CreateCourse(t *testing.T, db *gorm.DB, instructor *model.User, slug string, published bool) *model.Course {
	t.Helper()
	c := &model.Course{
		Title:        slug,
		InstructorID: instructor.ID,
		IsPublished:  published,
		Slug:         slug,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func CreateModule(t *testing.T, db *gorm.DB, course *model.Course, order int) *model.Module {
	t.Helper()
	m := &model.Module{CourseID: course.ID, Title: fmt.Sprintf("Module %d", order), Order: order}
	require.NoError(t, db.Create(m).Error)
	return m
}

func CreateLesson(t *testing.T, db *gorm.DB, module *model.Module, order int) *model.Lesson {
	t.Helper()
	l := &model.Lesson{ModuleID: module.ID, Title: fmt.Sprintf("Lesson %d", order), Order: order}
	require.NoError(t, db.Create(l).Error)
	return l
}

func CreateContent(t *testing.T, db *gorm.DB, lesson *model.Lesson, order int) *model.Content {
	t.Helper()
	c := &model.Content{
		LessonID:    lesson.ID,
		Title:       fmt.Sprintf("Content %d", order),
		ContentType: model.ContentText,
		TextContent: "body",
		Order:       order,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func Enroll(t *testing.T, db *gorm.DB, student *model.User, course *model.Course) *model.Enrollment {
	t.Helper()
	e := &model.Enrollment{StudentID: student.ID, CourseID: course.ID}
	require.NoError(t, db.Create(e).Error)
	return e
}

// CreateQuiz 创建测验，每题三个选项且第一个为正确答案
func CreateQuiz(t *testing.T, db *gorm.DB, lesson *model.Lesson, questions int) *model.Quiz {
	t.Helper()
	q := &model.Quiz{Title: "Quiz", PassPercentage: 70}
	if lesson != nil {
		q.LessonID = &lesson.ID
	}
	for i := 1; i <= questions; i++ {
		q.Questions = append(q.Questions, model.Question{
			Text:  fmt.Sprintf("Question %d", i),
			Order: i,
			Options: []model.Option{
				{Text: "right", IsCorrect: true},
				{Text: "wrong a"},
				{Text: "wrong b"},
			},
		})
	}
	require.NoError(t, db.Create(q).Error)
	return q
}
