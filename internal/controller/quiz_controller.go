package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// swagger:model OptionRequest
type OptionRequest struct {
	Text      string `json:"text" binding:"required,notblank,max=255"`
	IsCorrect bool   `json:"is_correct"`
}

// swagger:model QuestionRequest
type QuestionRequest struct {
	Text    string          `json:"text" binding:"required,notblank"`
	Order   int             `json:"order" binding:"gte=0"`
	Options []OptionRequest `json:"options" binding:"required,dive"`
}

// swagger:model QuizRequest
type QuizRequest struct {
	Title           string            `json:"title" binding:"required,notblank,max=255"`
	Description     string            `json:"description"`
	LessonID        *uint             `json:"lesson_id"`
	DurationMinutes int               `json:"duration_minutes" binding:"gte=0"`
	PassPercentage  *int              `json:"pass_percentage" binding:"omitempty,gte=0,lte=100"`
	Questions       []QuestionRequest `json:"questions" binding:"dive"`
}

// swagger:model SubmitRequest
type SubmitRequest struct {
	// Answers 题目ID -> 选项ID，null 表示未作答
	Answers map[string]*uint `json:"answers"`
}

func (r QuestionRequest) input() service.QuestionInput {
	in := service.QuestionInput{Text: r.Text, Order: r.Order}
	for _, o := range r.Options {
		in.Options = append(in.Options, service.OptionInput{Text: o.Text, IsCorrect: o.IsCorrect})
	}
	return in
}

func (r QuizRequest) input() service.QuizInput {
	in := service.QuizInput{
		Title:           r.Title,
		Description:     r.Description,
		LessonID:        r.LessonID,
		DurationMinutes: r.DurationMinutes,
		PassPercentage:  r.PassPercentage,
	}
	for _, q := range r.Questions {
		in.Questions = append(in.Questions, q.input())
	}
	return in
}

// parseQuestionKey 支持 "12" 与 "question_12" 两种写法
func parseQuestionKey(key string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimPrefix(key, "question_"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// bindAnswers JSON 使用 answers 对象，表单使用 question_<id> 字段
func bindAnswers(ctx *gin.Context) (map[uint]*uint, error) {
	answers := make(map[uint]*uint)
	if binding.Default(ctx.Request.Method, ctx.ContentType()) == binding.JSON {
		var req SubmitRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			return nil, err
		}
		for key, option := range req.Answers {
			id, ok := parseQuestionKey(key)
			if !ok {
				return nil, errors.New("invalid question key " + strconv.Quote(key))
			}
			answers[id] = option
		}
		return answers, nil
	}

	if err := ctx.Request.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}
	for key, values := range ctx.Request.PostForm {
		if !strings.HasPrefix(key, "question_") {
			continue
		}
		id, ok := parseQuestionKey(key)
		if !ok {
			return nil, errors.New("invalid question field " + strconv.Quote(key))
		}
		if len(values) == 0 || values[0] == "" {
			answers[id] = nil
			continue
		}
		option := util.MustParseUint(values[0])
		if option == 0 {
			return nil, errors.New("invalid option for " + key)
		}
		answers[id] = &option
	}
	return answers, nil
}

// ListQuizzes godoc
// @Summary 测验列表
// @Description 管理员看到全部，讲师只看到自己课程下的测验
// @Tags 测验管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Quiz}
// @Router /api/quizzes [get]
func (c *QuizController) ListQuizzes(ctx *gin.Context) {
	quizzes, err := c.QuizService.ListQuizzes(util.GetCurrentUser(ctx))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// CreateQuiz godoc
// @Summary 创建测验
// @Description 可同时提交题目；每题 2-4 个选项且恰有一个正确
// @Tags 测验管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body QuizRequest true "测验"
// @Success 201 {object} util.Response{data=model.Quiz}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response "课时已有测验"
// @Router /api/quizzes [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	var req QuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	quiz, err := c.QuizService.CreateQuiz(util.GetCurrentUser(ctx), req.input())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, `Quiz "`+quiz.Title+`" created successfully!`, quiz)
}

// GetQuiz godoc
// @Summary 测验详情（含答案）
// @Tags 测验管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Router /api/quizzes/{id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	quiz, err := c.QuizService.GetQuiz(util.GetCurrentUser(ctx), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// UpdateQuiz godoc
// @Summary 更新测验
// @Description 只更新测验本身，题目通过题目接口维护
// @Tags 测验管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "测验ID"
// @Param body body QuizRequest true "测验"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Router /api/quizzes/{id} [put]
func (c *QuizController) UpdateQuiz(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req QuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	quiz, err := c.QuizService.UpdateQuiz(util.GetCurrentUser(ctx), id, req.input())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, `Quiz "`+quiz.Title+`" updated successfully!`, quiz)
}

// DeleteQuiz godoc
// @Summary 删除测验
// @Tags 测验管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id} [delete]
func (c *QuizController) DeleteQuiz(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if err := c.QuizService.DeleteQuiz(util.GetCurrentUser(ctx), id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Quiz deleted successfully!", nil)
}

// AddQuestion godoc
// @Summary 新增题目
// @Tags 测验管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "测验ID"
// @Param body body QuestionRequest true "题目"
// @Success 201 {object} util.Response{data=model.Question}
// @Router /api/quizzes/{id}/questions [post]
func (c *QuizController) AddQuestion(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	question, err := c.QuizService.AddQuestion(util.GetCurrentUser(ctx), id, req.input())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, "Question added successfully!", question)
}

// UpdateQuestion godoc
// @Summary 更新题目
// @Description 选项整体替换，文本相同的选项保留原ID
// @Tags 测验管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "测验ID"
// @Param questionId path int true "题目ID"
// @Param body body QuestionRequest true "题目"
// @Success 200 {object} util.Response{data=model.Question}
// @Router /api/quizzes/{id}/questions/{questionId} [put]
func (c *QuizController) UpdateQuestion(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	questionID, ok := paramID(ctx, "questionId")
	if !ok {
		return
	}
	var req QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	question, err := c.QuizService.UpdateQuestion(util.GetCurrentUser(ctx), id, questionID, req.input())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Question updated successfully!", question)
}

// DeleteQuestion godoc
// @Summary 删除题目
// @Tags 测验管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "测验ID"
// @Param questionId path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id}/questions/{questionId} [delete]
func (c *QuizController) DeleteQuestion(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	questionID, ok := paramID(ctx, "questionId")
	if !ok {
		return
	}
	if err := c.QuizService.DeleteQuestion(util.GetCurrentUser(ctx), id, questionID); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Question deleted successfully!", nil)
}

// TakeQuiz godoc
// @Summary 获取作答表单
// @Description 不返回正确答案；无题目时返回 400 与 redirect_url
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response{form=service.QuizForm}
// @Failure 400 {object} util.Response "测验没有题目"
// @Router /api/quizzes/{id}/take [get]
func (c *QuizController) TakeQuiz(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	form, err := c.QuizService.PresentQuiz(util.GetCurrentUser(ctx), id)
	if err != nil {
		c.respondQuizError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, util.Response{Success: true, Message: "success", Form: form})
}

// SubmitQuiz godoc
// @Summary 提交测验
// @Description JSON {"answers": {"<题目ID>": 选项ID}} 或表单字段 question_<题目ID>
// @Tags 测验
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "测验ID"
// @Param body body SubmitRequest true "作答"
// @Success 201 {object} util.Response{data=model.StudentQuizAttempt}
// @Failure 400 {object} util.Response "选项不属于题目"
// @Router /api/quizzes/{id}/submit [post]
func (c *QuizController) SubmitQuiz(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	answers, err := bindAnswers(ctx)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	attempt, err := c.QuizService.SubmitQuiz(ctx.Request.Context(), util.GetCurrentUser(ctx), id, answers)
	if err != nil {
		c.respondQuizError(ctx, err)
		return
	}
	message := "Quiz submitted. Score: " + strconv.FormatFloat(attempt.Score, 'f', 2, 64) + "%"
	ctx.JSON(http.StatusCreated, util.Response{
		Success:     true,
		Message:     message,
		Data:        attempt,
		RedirectURL: "/api/attempts/" + strconv.FormatUint(uint64(attempt.ID), 10),
	})
}

// ListAttempts godoc
// @Summary 我的作答记录
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response{data=[]model.StudentQuizAttempt}
// @Router /api/quizzes/{id}/attempts [get]
func (c *QuizController) ListAttempts(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	attempts, err := c.QuizService.ListAttempts(util.GetCurrentUser(ctx), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// ViewResult godoc
// @Summary 作答结果
// @Description 仅作答者本人可查看，包含每题的正确选项
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "作答ID"
// @Success 200 {object} util.Response{data=service.QuizResult}
// @Router /api/attempts/{id} [get]
func (c *QuizController) ViewResult(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	result, err := c.QuizService.ViewResult(util.GetCurrentUser(ctx), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

func (c *QuizController) respondQuizError(ctx *gin.Context, err error) {
	var noQuestions *service.NoQuestionsError
	if errors.As(err, &noQuestions) {
		util.ErrorRedirect(ctx, http.StatusBadRequest, err.Error(), noQuestions.RedirectURL)
		return
	}
	util.RespondError(ctx, err)
}
