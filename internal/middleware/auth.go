package middleware

import (
	"strings"

	"lms_backend/internal/model"
	"lms_backend/internal/service"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// AuthMiddleware 校验 JWT、吊销状态，并以数据库中的用户为准写入上下文
func AuthMiddleware(authService *service.AuthService, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(token, secret)
		if err != nil {
			logger.Log.Debug("Rejected token", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		revoked, err := authService.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			// Redis 不可用时放行，令牌仍受过期时间约束
			logger.Log.Warn("Token revocation check failed", zap.Error(err))
		}
		if revoked {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		user, err := authService.CurrentUser(claims.UserID)
		if err != nil {
			util.RespondError(c, err)
			c.Abort()
			return
		}

		c.Set(util.ContextClaimsKey, claims)
		c.Set(util.ContextUserKey, user)
		c.Next()
	}
}

// Role 角色判定，任一满足即放行
type Role func(u *model.User) bool

func RoleMiddleware(roles ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetCurrentUser(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		for _, allowed := range roles {
			if allowed(user) {
				c.Next()
				return
			}
		}
		util.Forbidden(c)
		c.Abort()
	}
}
