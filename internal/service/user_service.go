package service

import (
	"fmt"
	"strings"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"

	"go.uber.org/zap"
)

type InstructorInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// InstructorUpdate 仅更新非空字段，IsActive/IsInstructor 为 nil 表示不变
type InstructorUpdate struct {
	Username     *string
	Email        *string
	FirstName    *string
	LastName     *string
	Password     *string
	IsActive     *bool
	IsInstructor *bool
}

// UserService 管理员维护讲师账号
type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

func (s *UserService) ListInstructors() ([]model.User, error) {
	return s.UserRepo.ListInstructors()
}

func (s *UserService) GetInstructor(id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !user.IsInstructor {
		return nil, util.ErrNotFound
	}
	return user, nil
}

func (s *UserService) CreateInstructor(in InstructorInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := checkIdentity(s.UserRepo, in.Username, in.Email, 0); err != nil {
		return nil, err
	}
	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Password:     hashed,
		IsInstructor: true,
		IsActive:     true,
	}
	if err := s.UserRepo.Create(user); err != nil {
		return nil, fmt.Errorf("create instructor: %w", err)
	}
	logger.Log.Info("Instructor created", zap.Uint("userId", user.ID), zap.String("username", user.Username))
	return user, nil
}

func (s *UserService) UpdateInstructor(id uint, in InstructorUpdate) (*model.User, error) {
	user, err := s.GetInstructor(id)
	if err != nil {
		return nil, err
	}

	username, email := user.Username, user.Email
	if in.Username != nil {
		username = strings.TrimSpace(*in.Username)
	}
	if in.Email != nil {
		email = strings.TrimSpace(*in.Email)
	}
	if err := checkIdentity(s.UserRepo, username, email, user.ID); err != nil {
		return nil, err
	}
	user.Username, user.Email = username, email

	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.IsInstructor != nil {
		user.IsInstructor = *in.IsInstructor
	}
	if in.Password != nil && *in.Password != "" {
		hashed, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteInstructor 仅管理员可调用，且不能删除自己
func (s *UserService) DeleteInstructor(actor *model.User, id uint) error {
	if !IsAdmin(actor) {
		return util.ErrPermissionDenied
	}
	if actor.ID == id {
		return util.ErrCannotDeleteSelf
	}
	user, err := s.GetInstructor(id)
	if err != nil {
		return err
	}
	if err := s.UserRepo.Delete(user.ID); err != nil {
		return err
	}
	logger.Log.Info("Instructor deleted", zap.Uint("userId", id), zap.Uint("by", actor.ID))
	return nil
}
