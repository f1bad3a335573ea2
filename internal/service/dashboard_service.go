package service

import (
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
)

type AdminStats struct {
	Users       int64 `json:"users"`
	Courses     int64 `json:"courses"`
	Enrollments int64 `json:"enrollments"`
	Attempts    int64 `json:"attempts"`
}

// Dashboard 按角色填充对应字段
type Dashboard struct {
	User             *model.User          `json:"user"`
	IsAdmin          bool                 `json:"isAdmin"`
	IsInstructor     bool                 `json:"isInstructor"`
	IsStudent        bool                 `json:"isStudent"`
	Courses          []model.Course       `json:"courses,omitempty"`
	Enrollments      []EnrollmentProgress `json:"enrollments,omitempty"`
	AvailableCourses []model.Course       `json:"availableCourses,omitempty"`
	Stats            *AdminStats          `json:"stats,omitempty"`
}

type DashboardService struct {
	UserRepo    *repository.UserRepository
	CourseRepo  *repository.CourseRepository
	AttemptRepo *repository.AttemptRepository
	Enrollments *EnrollmentService
}

func NewDashboardService(
	userRepo *repository.UserRepository,
	courseRepo *repository.CourseRepository,
	attemptRepo *repository.AttemptRepository,
	enrollments *EnrollmentService,
) *DashboardService {
	return &DashboardService{
		UserRepo:    userRepo,
		CourseRepo:  courseRepo,
		AttemptRepo: attemptRepo,
		Enrollments: enrollments,
	}
}

func (s *DashboardService) stats() (*AdminStats, error) {
	var st AdminStats
	var err error
	if st.Users, err = s.UserRepo.Count(); err != nil {
		return nil, err
	}
	if st.Courses, err = s.CourseRepo.Count(); err != nil {
		return nil, err
	}
	if st.Enrollments, err = s.Enrollments.EnrollmentRepo.Count(); err != nil {
		return nil, err
	}
	if st.Attempts, err = s.AttemptRepo.Count(); err != nil {
		return nil, err
	}
	return &st, nil
}

// Get 讲师优先于学生；学生的选课完成度在此重新计算
func (s *DashboardService) Get(actor *model.User) (*Dashboard, error) {
	d := &Dashboard{
		User:         actor,
		IsAdmin:      IsAdmin(actor),
		IsInstructor: IsInstructor(actor),
		IsStudent:    IsStudent(actor),
	}

	var err error
	if d.IsAdmin {
		if d.Stats, err = s.stats(); err != nil {
			return nil, err
		}
	}

	switch {
	case d.IsInstructor:
		d.Courses, err = s.CourseRepo.ListByInstructor(actor.ID)
	case d.IsStudent:
		if d.Enrollments, err = s.Enrollments.ListEnrollments(actor); err != nil {
			return nil, err
		}
		d.AvailableCourses, err = s.CourseRepo.ListPublished(util.DashboardAvailableCourses)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}
