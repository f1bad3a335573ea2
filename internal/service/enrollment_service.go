package service

import (
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"
	"lms_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// EnrollmentProgress 仪表盘中单门课程的学习进度
type EnrollmentProgress struct {
	model.Enrollment
	ProgressPercentage float64 `json:"progressPercentage"`
	CompletedContents  int64   `json:"completedContents"`
	TotalContents      int64   `json:"totalContents"`
}

type EnrollmentService struct {
	CourseRepo     *repository.CourseRepository
	ModuleRepo     *repository.ModuleRepository
	EnrollmentRepo *repository.EnrollmentRepository
	ProgressRepo   *repository.ProgressRepository
}

func NewEnrollmentService(
	courseRepo *repository.CourseRepository,
	moduleRepo *repository.ModuleRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	progressRepo *repository.ProgressRepository,
) *EnrollmentService {
	return &EnrollmentService{
		CourseRepo:     courseRepo,
		ModuleRepo:     moduleRepo,
		EnrollmentRepo: enrollmentRepo,
		ProgressRepo:   progressRepo,
	}
}

func progressPercentage(completed, total int64) float64 {
	if total == 0 {
		return 0
	}
	return util.Round2(float64(completed) / float64(total) * 100)
}

func (s *EnrollmentService) Enroll(actor *model.User, slug string) (*model.Enrollment, error) {
	if !IsStudent(actor) {
		return nil, util.ErrPermissionDenied
	}
	course, err := s.CourseRepo.FindBySlug(slug)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished {
		return nil, util.ErrCourseNotPublished
	}
	exists, err := s.EnrollmentRepo.Exists(actor.ID, course.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, util.ErrAlreadyEnrolled
	}

	enrollment := &model.Enrollment{StudentID: actor.ID, CourseID: course.ID}
	if err := s.EnrollmentRepo.Create(enrollment); err != nil {
		return nil, err
	}
	enrollment.Course = course
	monitoring.Enrollments.Inc()
	logger.Log.Info("Student enrolled", zap.Uint("studentId", actor.ID), zap.Uint("courseId", course.ID))
	return enrollment, nil
}

// MarkContent completed 为 nil 时切换当前状态
func (s *EnrollmentService) MarkContent(actor *model.User, contentID uint, completed *bool) (*model.StudentContentProgress, error) {
	if !IsStudent(actor) {
		return nil, util.ErrPermissionDenied
	}
	if _, err := s.ModuleRepo.FindContentByID(contentID); err != nil {
		return nil, err
	}
	course, err := s.CourseRepo.FindByContentID(contentID)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.EnrollmentRepo.Exists(actor.ID, course.ID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, util.ErrNotEnrolled
	}
	// 课程下架后进度冻结
	if !CanAccessContent(actor, course, enrolled) {
		return nil, util.ErrPermissionDenied
	}

	progress, err := s.ProgressRepo.SetCompletion(actor.ID, contentID, func(current bool) bool {
		if completed == nil {
			return !current
		}
		return *completed
	})
	if err != nil {
		return nil, err
	}
	monitoring.ObserveProgressToggle(progress.Completed)
	return progress, nil
}

// syncCompletion 读取时重新计算完成度，并在跨越 100% 时回写 Completed
func (s *EnrollmentService) syncCompletion(e model.Enrollment) (EnrollmentProgress, error) {
	total, err := s.CourseRepo.CountContents(e.CourseID)
	if err != nil {
		return EnrollmentProgress{}, err
	}
	done, err := s.ProgressRepo.CountCompletedInCourse(e.StudentID, e.CourseID)
	if err != nil {
		return EnrollmentProgress{}, err
	}

	pct := progressPercentage(done, total)
	completed := total > 0 && pct >= 100
	if completed != e.Completed {
		if err := s.EnrollmentRepo.SetCompleted(e.ID, completed); err != nil {
			return EnrollmentProgress{}, err
		}
		logger.Log.Info("Enrollment completion changed",
			zap.Uint("enrollmentId", e.ID),
			zap.Bool("completed", completed),
		)
		e.Completed = completed
	}
	return EnrollmentProgress{
		Enrollment:         e,
		ProgressPercentage: pct,
		CompletedContents:  done,
		TotalContents:      total,
	}, nil
}

func (s *EnrollmentService) ListEnrollments(actor *model.User) ([]EnrollmentProgress, error) {
	if !IsStudent(actor) {
		return nil, util.ErrPermissionDenied
	}
	enrollments, err := s.EnrollmentRepo.ListByStudent(actor.ID)
	if err != nil {
		return nil, err
	}
	result := make([]EnrollmentProgress, 0, len(enrollments))
	for _, e := range enrollments {
		p, err := s.syncCompletion(e)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}
