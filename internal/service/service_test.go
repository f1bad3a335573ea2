package service

import (
	"testing"
	"time"

	"lms_backend/internal/config"
	"lms_backend/internal/repository"
	"lms_backend/internal/testutil"

	"gorm.io/gorm"
)

type services struct {
	db         *gorm.DB
	auth       *AuthService
	users      *UserService
	courses    *CourseService
	enrollment *EnrollmentService
	quizzes    *QuizService
	dashboard  *DashboardService
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
		Quiz: config.QuizConfig{
			DefaultPassPercentage: 70,
			MinOptions:            2,
			MaxOptions:            4,
		},
	}
}

func newServices(t *testing.T) *services {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := testConfig()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)

	enrollment := NewEnrollmentService(courseRepo, moduleRepo, enrollmentRepo, progressRepo)
	return &services{
		db:         db,
		auth:       NewAuthService(userRepo, nil, cfg),
		users:      NewUserService(userRepo),
		courses:    NewCourseService(courseRepo, moduleRepo, enrollmentRepo, progressRepo, nil),
		enrollment: enrollment,
		quizzes:    NewQuizService(quizRepo, attemptRepo, courseRepo, moduleRepo, enrollmentRepo, cfg.Quiz),
		dashboard:  NewDashboardService(userRepo, courseRepo, attemptRepo, enrollment),
	}
}

func ptr[T any](v T) *T {
	return &v
}
