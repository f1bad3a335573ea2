package controller

import (
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// UserController 管理员维护讲师账号
type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// swagger:model CreateInstructorRequest
type CreateInstructorRequest struct {
	Username  string `json:"username" form:"username" binding:"required,notblank,max=150"`
	Email     string `json:"email" form:"email" binding:"omitempty,email"`
	FirstName string `json:"first_name" form:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" form:"last_name" binding:"max=150"`
	Password  string `json:"password" form:"password" binding:"required,min=8"`
}

// swagger:model UpdateInstructorRequest
type UpdateInstructorRequest struct {
	Username     *string `json:"username" binding:"omitempty,notblank,max=150"`
	Email        *string `json:"email" binding:"omitempty,email"`
	FirstName    *string `json:"first_name" binding:"omitempty,max=150"`
	LastName     *string `json:"last_name" binding:"omitempty,max=150"`
	Password     *string `json:"password" binding:"omitempty,min=8"`
	IsActive     *bool   `json:"is_active"`
	IsInstructor *bool   `json:"is_instructor"`
}

// ListInstructors godoc
// @Summary 讲师列表
// @Tags 管理员
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.User}
// @Router /api/admin/instructors [get]
func (c *UserController) ListInstructors(ctx *gin.Context) {
	users, err := c.UserService.ListInstructors()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, users)
}

// CreateInstructor godoc
// @Summary 创建讲师
// @Tags 管理员
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateInstructorRequest true "讲师信息"
// @Success 201 {object} util.Response{data=model.User}
// @Failure 409 {object} util.Response "用户名或邮箱已存在"
// @Router /api/admin/instructors [post]
func (c *UserController) CreateInstructor(ctx *gin.Context) {
	var req CreateInstructorRequest
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	user, err := c.UserService.CreateInstructor(service.InstructorInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, "Instructor "+user.Username+" created successfully!", user)
}

// UpdateInstructor godoc
// @Summary 更新讲师
// @Tags 管理员
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "讲师ID"
// @Param body body UpdateInstructorRequest true "需要更新的字段"
// @Success 200 {object} util.Response{data=model.User}
// @Router /api/admin/instructors/{id} [put]
func (c *UserController) UpdateInstructor(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req UpdateInstructorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	user, err := c.UserService.UpdateInstructor(id, service.InstructorUpdate{
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Password:     req.Password,
		IsActive:     req.IsActive,
		IsInstructor: req.IsInstructor,
	})
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Instructor "+user.Username+" updated successfully!", user)
}

// DeleteInstructor godoc
// @Summary 删除讲师
// @Description 同时删除其名下课程；不能删除自己
// @Tags 管理员
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "讲师ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "不能删除自己"
// @Router /api/admin/instructors/{id} [delete]
func (c *UserController) DeleteInstructor(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if err := c.UserService.DeleteInstructor(util.GetCurrentUser(ctx), id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Instructor deleted successfully.", nil)
}
