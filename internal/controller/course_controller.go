package controller

import (
	"net/http"

	"lms_backend/internal/model"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// swagger:model CourseRequest
type CourseRequest struct {
	Title       string   `json:"title" form:"title" binding:"required,notblank,max=200"`
	Description string   `json:"description" form:"description"`
	Price       *float64 `json:"price" form:"price" binding:"omitempty,gte=0"`
	IsPublished bool     `json:"is_published" form:"is_published"`
	Thumbnail   string   `json:"thumbnail" form:"thumbnail" binding:"omitempty,url,max=500"`
}

// swagger:model NodeRequest
type NodeRequest struct {
	Title       string `json:"title" form:"title" binding:"required,notblank,max=200"`
	Description string `json:"description" form:"description"`
	Order       int    `json:"order" form:"order" binding:"gte=0"`
}

// ContentRequest 支持 multipart 上传文件（字段名 file）
// swagger:model ContentRequest
type ContentRequest struct {
	Title       string `json:"title" form:"title" binding:"required,notblank,max=200"`
	ContentType string `json:"content_type" form:"content_type" binding:"required,oneof=video pdf text slide quiz assignment"`
	TextContent string `json:"text_content" form:"text_content"`
	VideoURL    string `json:"video_url" form:"video_url" binding:"omitempty,url,max=500"`
	Order       int    `json:"order" form:"order" binding:"gte=0"`
}

func (r CourseRequest) input() service.CourseInput {
	return service.CourseInput{
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		IsPublished: r.IsPublished,
		Thumbnail:   r.Thumbnail,
	}
}

func (r NodeRequest) input() service.NodeInput {
	return service.NodeInput{Title: r.Title, Description: r.Description, Order: r.Order}
}

// bindContent 绑定字段并读取可选的上传文件
func bindContent(ctx *gin.Context) (service.ContentInput, bool) {
	var req ContentRequest
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return service.ContentInput{}, false
	}
	in := service.ContentInput{
		Title:       req.Title,
		ContentType: model.ContentType(req.ContentType),
		TextContent: req.TextContent,
		VideoURL:    req.VideoURL,
		Order:       req.Order,
	}
	if file, err := ctx.FormFile("file"); err == nil {
		in.File = file
	} else if err != http.ErrMissingFile && err != http.ErrNotMultipart {
		util.BadRequest(ctx, err.Error())
		return service.ContentInput{}, false
	}
	return in, true
}

// ListOwnCourses godoc
// @Summary 讲师的课程
// @Tags 课程管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /api/instructor/courses [get]
func (c *CourseController) ListOwnCourses(ctx *gin.Context) {
	courses, err := c.CourseService.ListOwnCourses(util.GetCurrentUser(ctx))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// CreateCourse godoc
// @Summary 创建课程
// @Description slug 由标题生成，重复时追加 -1, -2 ...
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CourseRequest true "课程信息"
// @Success 201 {object} util.Response{data=model.Course}
// @Router /api/instructor/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req CourseRequest
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	course, err := c.CourseService.CreateCourse(util.GetCurrentUser(ctx), req.input())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, `Course "`+course.Title+`" created successfully!`, course)
}

// UpdateCourse godoc
// @Summary 更新课程
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "课程 slug"
// @Param body body CourseRequest true "课程信息"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /api/instructor/courses/{slug} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	var req CourseRequest
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	course, err := c.CourseService.UpdateCourse(util.GetCurrentUser(ctx), ctx.Param("slug"), req.input())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, `Course "`+course.Title+`" updated successfully!`, course)
}

// DeleteCourse godoc
// @Summary 删除课程
// @Tags 课程管理
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "课程 slug"
// @Success 200 {object} util.Response
// @Router /api/instructor/courses/{slug} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	course, err := c.CourseService.DeleteCourse(util.GetCurrentUser(ctx), ctx.Param("slug"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Redirect(ctx, http.StatusOK, `Course "`+course.Title+`" deleted successfully!`, "/api/dashboard")
}

// CourseDetail godoc
// @Summary 课程详情
// @Description 返回章节/课时/内容树；学生附带选课状态与完成进度
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "课程 slug"
// @Success 200 {object} util.Response{data=service.CourseDetail}
// @Failure 403 {object} util.Response
// @Router /api/courses/{slug} [get]
func (c *CourseController) CourseDetail(ctx *gin.Context) {
	detail, err := c.CourseService.CourseDetail(util.GetCurrentUser(ctx), ctx.Param("slug"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// ContentDetail godoc
// @Summary 内容详情
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "课程 slug"
// @Param moduleId path int true "章节ID"
// @Param lessonId path int true "课时ID"
// @Param contentId path int true "内容ID"
// @Success 200 {object} util.Response{data=service.ContentDetail}
// @Router /api/courses/{slug}/modules/{moduleId}/lessons/{lessonId}/contents/{contentId} [get]
func (c *CourseController) ContentDetail(ctx *gin.Context) {
	moduleID, ok := paramID(ctx, "moduleId")
	if !ok {
		return
	}
	lessonID, ok := paramID(ctx, "lessonId")
	if !ok {
		return
	}
	contentID, ok := paramID(ctx, "contentId")
	if !ok {
		return
	}
	detail, err := c.CourseService.ContentDetail(util.GetCurrentUser(ctx), ctx.Param("slug"), moduleID, lessonID, contentID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// CreateModule godoc
// @Summary 新增章节
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "课程 slug"
// @Param body body NodeRequest true "章节信息"
// @Success 201 {object} util.Response{data=model.Module}
// @Failure 409 {object} util.Response "order 重复"
// @Router /api/instructor/courses/{slug}/modules [post]
func (c *CourseController) CreateModule(ctx *gin.Context) {
	var req NodeRequest
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	module, err := c.CourseService.CreateModule(util.GetCurrentUser(ctx), ctx.Param("slug"), req.input())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, `Module "`+module.Title+`" added successfully!`, module)
}

// UpdateModule godoc
// @Summary 更新章节
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "课程 slug"
// @Param moduleId path int true "章节ID"
// @Param body body NodeRequest true "章节信息"
// @Success 200 {object} util.Response{data=model.Module}
// @Router /api/instructor/courses/{slug}/modules/{moduleId} [put]
func (c *CourseController) UpdateModule(ctx *gin.Context) {
	moduleID, ok := paramID(ctx, "moduleId")
	if !ok {
		return
	}
	var req NodeRequest
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	module, err := c.CourseService.UpdateModule(util.GetCurrentUser(ctx), ctx.Param("slug"), moduleID, req.input())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, `Module "`+module.Title+`" updated successfully!`, module)
}

// DeleteModule godoc
// @Summary 删除章节
// @Tags 课程管理
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "课程 slug"
// @Param moduleId path int true "章节ID"
// @Success 200 {object} util.Response
// @Router /api/instructor/courses/{slug}/modules/{moduleId} [delete]
func (c *CourseController) DeleteModule(ctx *gin.Context) {
	moduleID, ok := paramID(ctx, "moduleId")
	if !ok {
		return
	}
	module, err := c.CourseService.DeleteModule(util.GetCurrentUser(ctx), ctx.Param("slug"), moduleID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, `Module "`+module.Title+`" deleted successfully!`, nil)
}

// CreateLesson godoc
// @Summary 新增课时
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "课程 slug"
// @Param moduleId path int true "章节ID"
// @Param body body NodeRequest true "课时信息"
// @Success 201 {object} util.Response{data=model.Lesson}
// @Router /api/instructor/courses/{slug}/modules/{moduleId}/lessons [post]
func (c *CourseController) CreateLesson(ctx *gin.Context) {
	moduleID, ok := paramID(ctx, "moduleId")
	if !ok {
		return
	}
	var req NodeRequest
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	lesson, err := c.CourseService.CreateLesson(util.GetCurrentUser(ctx), ctx.Param("slug"), moduleID, req.input())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, `Lesson "`+lesson.Title+`" added successfully!`, lesson)
}

// UpdateLesson godoc
// @Summary 更新课时
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "课程 slug"
// @Param moduleId path int true "章节ID"
// @Param lessonId path int true "课时ID"
// @Param body body NodeRequest true "课时信息"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Router /api/instructor/courses/{slug}/modules/{moduleId}/lessons/{lessonId} [put]
func (c *CourseController) UpdateLesson(ctx *gin.Context) {
	moduleID, ok := paramID(ctx, "moduleId")
	if !ok {
		return
	}
	lessonID, ok := paramID(ctx, "lessonId")
	if !ok {
		return
	}
	var req NodeRequest
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	lesson, err := c.CourseService.UpdateLesson(util.GetCurrentUser(ctx), ctx.Param("slug"), moduleID, lessonID, req.input())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, `Lesson "`+lesson.Title+`" updated successfully!`, lesson)
}

// DeleteLesson godoc
// @Summary 删除课时
// @Description 同时删除课时内容与关联测验
// @Tags 课程管理
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "课程 slug"
// @Param moduleId path int true "章节ID"
// @Param lessonId path int true "课时ID"
// @Success 200 {object} util.Response
// @Router /api/instructor/courses/{slug}/modules/{moduleId}/lessons/{lessonId} [delete]
func (c *CourseController) DeleteLesson(ctx *gin.Context) {
	moduleID, ok := paramID(ctx, "moduleId")
	if !ok {
		return
	}
	lessonID, ok := paramID(ctx, "lessonId")
	if !ok {
		return
	}
	lesson, err := c.CourseService.DeleteLesson(util.GetCurrentUser(ctx), ctx.Param("slug"), moduleID, lessonID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, `Lesson "`+lesson.Title+`" deleted successfully!`, nil)
}

// CreateContent godoc
// @Summary 新增内容
// @Description 视频需要 video_url 或文件；pdf/slide 需要文件；text 需要正文
// @Tags 课程管理
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "课程 slug"
// @Param moduleId path int true "章节ID"
// @Param lessonId path int true "课时ID"
// @Param title formData string true "标题"
// @Param content_type formData string true "video|pdf|text|slide|quiz|assignment"
// @Param text_content formData string false "正文"
// @Param video_url formData string false "外链视频"
// @Param order formData int false "顺序"
// @Param file formData file false "文件"
// @Success 201 {object} util.Response{data=model.Content}
// @Router /api/instructor/courses/{slug}/modules/{moduleId}/lessons/{lessonId}/contents [post]
func (c *CourseController) CreateContent(ctx *gin.Context) {
	moduleID, ok := paramID(ctx, "moduleId")
	if !ok {
		return
	}
	lessonID, ok := paramID(ctx, "lessonId")
	if !ok {
		return
	}
	in, ok := bindContent(ctx)
	if !ok {
		return
	}
	content, err := c.CourseService.CreateContent(ctx.Request.Context(), util.GetCurrentUser(ctx), ctx.Param("slug"), moduleID, lessonID, in)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, `Content "`+content.Title+`" added successfully!`, content)
}

// UpdateContent godoc
// @Summary 更新内容
// @Tags 课程管理
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "课程 slug"
// @Param moduleId path int true "章节ID"
// @Param lessonId path int true "课时ID"
// @Param contentId path int true "内容ID"
// @Param title formData string true "标题"
// @Param content_type formData string true "video|pdf|text|slide|quiz|assignment"
// @Param file formData file false "文件"
// @Success 200 {object} util.Response{data=model.Content}
// @Router /api/instructor/courses/{slug}/modules/{moduleId}/lessons/{lessonId}/contents/{contentId} [put]
func (c *CourseController) UpdateContent(ctx *gin.Context) {
	moduleID, ok := paramID(ctx, "moduleId")
	if !ok {
		return
	}
	lessonID, ok := paramID(ctx, "lessonId")
	if !ok {
		return
	}
	contentID, ok := paramID(ctx, "contentId")
	if !ok {
		return
	}
	in, ok := bindContent(ctx)
	if !ok {
		return
	}
	content, err := c.CourseService.UpdateContent(ctx.Request.Context(), util.GetCurrentUser(ctx), ctx.Param("slug"), moduleID, lessonID, contentID, in)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, `Content "`+content.Title+`" updated successfully!`, content)
}

// DeleteContent godoc
// @Summary 删除内容
// @Tags 课程管理
// @Produce json
// @Security ApiKeyAuth
// @Param slug path string true "课程 slug"
// @Param moduleId path int true "章节ID"
// @Param lessonId path int true "课时ID"
// @Param contentId path int true "内容ID"
// @Success 200 {object} util.Response
// @Router /api/instructor/courses/{slug}/modules/{moduleId}/lessons/{lessonId}/contents/{contentId} [delete]
func (c *CourseController) DeleteContent(ctx *gin.Context) {
	moduleID, ok := paramID(ctx, "moduleId")
	if !ok {
		return
	}
	lessonID, ok := paramID(ctx, "lessonId")
	if !ok {
		return
	}
	contentID, ok := paramID(ctx, "contentId")
	if !ok {
		return
	}
	content, err := c.CourseService.DeleteContent(ctx.Request.Context(), util.GetCurrentUser(ctx), ctx.Param("slug"), moduleID, lessonID, contentID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, `Content "`+content.Title+`" deleted successfully!`, nil)
}
