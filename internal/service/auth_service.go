package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenBlacklist 登出后吊销的令牌 jti
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

const revokedKeyPrefix = "lms:revoked:"

type RedisTokenBlacklist struct {
	Client *redis.Client
}

func NewRedisTokenBlacklist(client *redis.Client) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{Client: client}
}

func (b *RedisTokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return b.Client.Set(ctx, revokedKeyPrefix+jti, 1, ttl).Err()
}

func (b *RedisTokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.Client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type RegisterInput struct {
	Username        string
	Email           string
	FirstName       string
	LastName        string
	Password        string
	PasswordConfirm string
}

type AuthService struct {
	UserRepo  *repository.UserRepository
	Blacklist TokenBlacklist
	Cfg       *config.Config
}

// NewAuthService blacklist 为 nil 时登出只由客户端丢弃令牌
func NewAuthService(userRepo *repository.UserRepository, blacklist TokenBlacklist, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo:  userRepo,
		Blacklist: blacklist,
		Cfg:       cfg,
	}
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// checkIdentity 用户名与邮箱唯一性，excludeID 为更新时的自身 id
func checkIdentity(repo *repository.UserRepository, username, email string, excludeID uint) error {
	taken, err := repo.UsernameExists(username, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return util.ErrUsernameTaken
	}
	taken, err = repo.EmailExists(email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return util.ErrEmailRegistered
	}
	return nil
}

// Register 公开注册只创建学生账号
func (s *AuthService) Register(in RegisterInput) (*model.User, string, error) {
	if in.Password != in.PasswordConfirm {
		return nil, "", util.ErrPasswordMismatch
	}
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := checkIdentity(s.UserRepo, in.Username, in.Email, 0); err != nil {
		return nil, "", err
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}
	user := &model.User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Password:  hashed,
		IsStudent: true,
		IsActive:  true,
	}
	if err := s.UserRepo.Create(user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, _, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, "", err
	}
	logger.Log.Info("Student registered", zap.Uint("userId", user.ID), zap.String("username", user.Username))
	return user, token, nil
}

func (s *AuthService) Login(username, password string) (*model.User, string, error) {
	user, err := s.UserRepo.FindByUsername(strings.TrimSpace(username))
	if errors.Is(err, util.ErrNotFound) {
		return nil, "", util.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", util.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", util.ErrAccountDisabled
	}

	token, _, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	if err := s.UserRepo.UpdateLastLogin(user.ID, now); err != nil {
		logger.Log.Warn("Failed to update last login", zap.Uint("userId", user.ID), zap.Error(err))
	}
	user.LastLogin = &now
	return user, token, nil
}

// Logout 吊销到令牌自然过期为止
func (s *AuthService) Logout(ctx context.Context, claims *util.Claims) error {
	if s.Blacklist == nil || claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return s.Blacklist.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
}

func (s *AuthService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if s.Blacklist == nil || jti == "" {
		return false, nil
	}
	return s.Blacklist.IsRevoked(ctx, jti)
}

// CurrentUser 以数据库为准，令牌签发后被停用或删除的账号无法继续访问
func (s *AuthService) CurrentUser(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if errors.Is(err, util.ErrNotFound) {
		return nil, util.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, util.ErrAccountDisabled
	}
	return user, nil
}
