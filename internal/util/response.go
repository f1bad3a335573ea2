package util

import (
	"lms_backend/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构，兼容前端 AJAX 弹窗约定
type Response struct {
	Success     bool        `json:"success"`
	Message     string      `json:"message,omitempty"`
	Error       string      `json:"error,omitempty"`
	Data        interface{} `json:"data,omitempty"`
	Form        interface{} `json:"form,omitempty"`
	RedirectURL string      `json:"redirect_url,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "success",
		Data:    data,
	})
}

// SuccessMessage 用于弹窗操作（创建/更新/删除）后的提示
func SuccessMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Redirect 成功后需要前端跳转
func Redirect(c *gin.Context, code int, message, url string) {
	c.JSON(code, Response{
		Success:     code < http.StatusBadRequest,
		Message:     message,
		RedirectURL: url,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Success: false,
		Error:   message,
	})
}

// ErrorRedirect 失败并提示前端跳转，例如测验没有题目
func ErrorRedirect(c *gin.Context, code int, message, url string) {
	c.JSON(code, Response{
		Success:     false,
		Error:       message,
		RedirectURL: url,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "You do not have permission to perform this action.")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Something went wrong, please try again.")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	InternalServerError(c)
}

// RespondError 按业务错误输出响应，500 类错误只记录日志不暴露细节
func RespondError(c *gin.Context, err error) {
	code := StatusOf(err)
	if code == http.StatusInternalServerError {
		LogInternalError(c, err)
		return
	}
	Error(c, code, err.Error())
}
