package util

import (
	"errors"
	"lms_backend/internal/model"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Claims struct {
	UserID       uint   `json:"user_id"`
	Username     string `json:"username"`
	IsInstructor bool   `json:"is_instructor"`
	IsStudent    bool   `json:"is_student"`
	IsStaff      bool   `json:"is_staff"`
	jwt.RegisteredClaims
}

// User 由令牌声明还原出访问控制所需的最小用户信息
func (c *Claims) User() *model.User {
	u := &model.User{
		Username:     c.Username,
		IsInstructor: c.IsInstructor,
		IsStudent:    c.IsStudent,
		IsStaff:      c.IsStaff,
		IsActive:     true,
	}
	u.ID = c.UserID
	return u
}

func GenerateJWT(user *model.User, secret string, expiration time.Duration) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		UserID:       user.ID,
		Username:     user.Username,
		IsInstructor: user.IsInstructor,
		IsStudent:    user.IsStudent,
		IsStaff:      user.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	return signed, claims, err
}

func ParseJWT(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

func GetUserFromContext(c *gin.Context) *Claims {
	user, exists := c.Get(ContextClaimsKey)
	if !exists {
		return nil
	}
	claims, ok := user.(*Claims)
	if !ok {
		return nil
	}
	return claims
}

const (
	ContextClaimsKey = "user"
	ContextUserKey   = "currentUser"
)

// GetCurrentUser 认证中间件从数据库加载的当前用户
func GetCurrentUser(c *gin.Context) *model.User {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	u, _ := v.(*model.User)
	return u
}
