package controller

import (
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{EnrollmentService: enrollmentService}
}

// swagger:model ProgressRequest
type ProgressRequest struct {
	// Completed 为空时切换当前状态
	Completed *bool `json:"completed" form:"completed"`
}

// Enroll godoc
// @Summary 选课
// @Tags 学习
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "课程 slug"
// @Success 201 {object} util.Response{data=model.Enrollment}
// @Failure 409 {object} util.Response "已选或课程未发布"
// @Router /api/courses/{slug}/enroll [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	enrollment, err := c.EnrollmentService.Enroll(util.GetCurrentUser(ctx), ctx.Param("slug"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, "Successfully enrolled in "+enrollment.Course.Title+"!", enrollment)
}

// ListEnrollments godoc
// @Summary 我的课程
// @Tags 学习
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.EnrollmentProgress}
// @Router /api/enrollments [get]
func (c *EnrollmentController) ListEnrollments(ctx *gin.Context) {
	enrollments, err := c.EnrollmentService.ListEnrollments(util.GetCurrentUser(ctx))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, enrollments)
}

// MarkProgress godoc
// @Summary 标记内容完成
// @Description completed 省略时切换完成状态
// @Tags 学习
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param contentId path int true "内容ID"
// @Param body body ProgressRequest false "完成状态"
// @Success 200 {object} util.Response{data=model.StudentContentProgress}
// @Failure 403 {object} util.Response "未选课"
// @Router /api/contents/{contentId}/progress [post]
func (c *EnrollmentController) MarkProgress(ctx *gin.Context) {
	contentID, ok := paramID(ctx, "contentId")
	if !ok {
		return
	}
	var req ProgressRequest
	// 空请求体等同于切换
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBind(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}
	progress, err := c.EnrollmentService.MarkContent(util.GetCurrentUser(ctx), contentID, req.Completed)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	message := "Content marked as incomplete."
	if progress.Completed {
		message = "Content marked as complete."
	}
	util.SuccessMessage(ctx, message, progress)
}
