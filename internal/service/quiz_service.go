package service

import (
	"context"
	"fmt"
	"strings"

	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"
	"lms_backend/pkg/monitoring"
	"lms_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type OptionInput struct {
	Text      string
	IsCorrect bool
}

type QuestionInput struct {
	Text    string
	Order   int
	Options []OptionInput
}

type QuizInput struct {
	Title           string
	Description     string
	LessonID        *uint
	DurationMinutes int
	// PassPercentage 为 nil 时使用配置默认值
	PassPercentage *int
	Questions      []QuestionInput
}

// FormChoice / FormField / QuizForm 作答表单，不包含正确答案
type FormChoice struct {
	Value uint   `json:"value"`
	Label string `json:"label"`
}

type FormField struct {
	Name     string       `json:"name"`
	Label    string       `json:"label"`
	Type     string       `json:"type"`
	Required bool         `json:"required"`
	Choices  []FormChoice `json:"choices"`
}

type QuizForm struct {
	QuizID          uint        `json:"quizId"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	DurationMinutes int         `json:"durationMinutes"`
	PassPercentage  int         `json:"passPercentage"`
	Fields          []FormField `json:"fields"`
}

type ResultOption struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

type ResultQuestion struct {
	QuestionID      uint           `json:"questionId"`
	Order           int            `json:"order"`
	Text            string         `json:"text"`
	Options         []ResultOption `json:"options"`
	ChosenOptionID  *uint          `json:"chosenOptionId"`
	CorrectOptionID *uint          `json:"correctOptionId"`
	IsCorrect       bool           `json:"isCorrect"`
}

type QuizResult struct {
	AttemptID      uint             `json:"attemptId"`
	QuizID         uint             `json:"quizId"`
	QuizTitle      string           `json:"quizTitle"`
	Score          float64          `json:"score"`
	Passed         bool             `json:"passed"`
	PassPercentage int              `json:"passPercentage"`
	TotalQuestions int              `json:"totalQuestions"`
	CorrectAnswers int              `json:"correctAnswers"`
	Questions      []ResultQuestion `json:"questions"`
}

// NoQuestionsError 测验尚无题目，RedirectURL 为前端返回的位置
type NoQuestionsError struct {
	RedirectURL string
}

func (e *NoQuestionsError) Error() string {
	return util.ErrQuizHasNoQuestions.Error()
}

func (e *NoQuestionsError) Unwrap() error {
	return util.ErrQuizHasNoQuestions
}

// FieldName 作答表单中题目对应的字段名
func FieldName(questionID uint) string {
	return fmt.Sprintf("question_%d", questionID)
}

type QuizService struct {
	QuizRepo       *repository.QuizRepository
	AttemptRepo    *repository.AttemptRepository
	CourseRepo     *repository.CourseRepository
	ModuleRepo     *repository.ModuleRepository
	EnrollmentRepo *repository.EnrollmentRepository
	Cfg            config.QuizConfig
}

func NewQuizService(
	quizRepo *repository.QuizRepository,
	attemptRepo *repository.AttemptRepository,
	courseRepo *repository.CourseRepository,
	moduleRepo *repository.ModuleRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	cfg config.QuizConfig,
) *QuizService {
	return &QuizService{
		QuizRepo:       quizRepo,
		AttemptRepo:    attemptRepo,
		CourseRepo:     courseRepo,
		ModuleRepo:     moduleRepo,
		EnrollmentRepo: enrollmentRepo,
		Cfg:            cfg,
	}
}

// lessonCourse 测验所属课程，独立测验返回 nil
func (s *QuizService) lessonCourse(lessonID *uint) (*model.Course, error) {
	if lessonID == nil {
		return nil, nil
	}
	return s.CourseRepo.FindByLessonID(*lessonID)
}

func (s *QuizService) manageableQuiz(actor *model.User, quizID uint) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		return nil, err
	}
	course, err := s.lessonCourse(quiz.LessonID)
	if err != nil {
		return nil, err
	}
	if !CanManageQuiz(actor, course) {
		return nil, util.ErrPermissionDenied
	}
	return quiz, nil
}

// takeableQuiz 加载题目并校验学生作答权限
func (s *QuizService) takeableQuiz(actor *model.User, quizID uint) (*model.Quiz, *model.Course, error) {
	quiz, err := s.QuizRepo.FindWithQuestions(quizID)
	if err != nil {
		return nil, nil, err
	}
	course, err := s.lessonCourse(quiz.LessonID)
	if err != nil {
		return nil, nil, err
	}
	enrolled := false
	if course != nil && IsStudent(actor) {
		if enrolled, err = s.EnrollmentRepo.Exists(actor.ID, course.ID); err != nil {
			return nil, nil, err
		}
	}
	if !CanTakeQuiz(actor, course, enrolled) {
		return nil, nil, util.ErrPermissionDenied
	}
	return quiz, course, nil
}

func (s *QuizService) validateQuestion(in QuestionInput) (*model.Question, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: question text is required", util.ErrInvalidQuestion)
	}
	if len(in.Options) < s.Cfg.MinOptions || len(in.Options) > s.Cfg.MaxOptions {
		return nil, fmt.Errorf("%w: a question needs between %d and %d options", util.ErrInvalidQuestion, s.Cfg.MinOptions, s.Cfg.MaxOptions)
	}

	seen := make(map[string]struct{}, len(in.Options))
	correct := 0
	options := make([]model.Option, 0, len(in.Options))
	for _, o := range in.Options {
		t := strings.TrimSpace(o.Text)
		if t == "" {
			return nil, fmt.Errorf("%w: option text is required", util.ErrInvalidQuestion)
		}
		if _, dup := seen[t]; dup {
			return nil, fmt.Errorf("%w: duplicate option %q", util.ErrInvalidQuestion, t)
		}
		seen[t] = struct{}{}
		if o.IsCorrect {
			correct++
		}
		options = append(options, model.Option{Text: t, IsCorrect: o.IsCorrect})
	}
	if correct != 1 {
		return nil, fmt.Errorf("%w: exactly one option must be marked correct", util.ErrInvalidQuestion)
	}
	return &model.Question{Text: text, Order: in.Order, Options: options}, nil
}

func (s *QuizService) applyQuizInput(quiz *model.Quiz, in QuizInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", util.ErrInvalidQuiz)
	}
	if in.DurationMinutes < 0 {
		return fmt.Errorf("%w: duration cannot be negative", util.ErrInvalidQuiz)
	}
	pass := s.Cfg.DefaultPassPercentage
	if in.PassPercentage != nil {
		pass = *in.PassPercentage
	} else if quiz.ID != 0 {
		pass = quiz.PassPercentage
	}
	if pass < 0 || pass > 100 {
		return fmt.Errorf("%w: pass percentage must be within 0..100", util.ErrInvalidQuiz)
	}
	quiz.Title = title
	quiz.Description = in.Description
	quiz.DurationMinutes = in.DurationMinutes
	quiz.PassPercentage = pass
	return nil
}

// attachLesson 校验目标课时的管理权限与一课一测约束
func (s *QuizService) attachLesson(actor *model.User, quiz *model.Quiz, lessonID *uint) error {
	if lessonID != nil {
		if _, err := s.ModuleRepo.FindLessonByID(*lessonID); err != nil {
			return err
		}
	}
	course, err := s.lessonCourse(lessonID)
	if err != nil {
		return err
	}
	if !CanManageQuiz(actor, course) {
		return util.ErrPermissionDenied
	}
	if lessonID != nil {
		taken, err := s.QuizRepo.LessonHasQuiz(*lessonID, quiz.ID)
		if err != nil {
			return err
		}
		if taken {
			return util.ErrLessonHasQuiz
		}
	}
	quiz.LessonID = lessonID
	return nil
}

func (s *QuizService) CreateQuiz(actor *model.User, in QuizInput) (*model.Quiz, error) {
	quiz := &model.Quiz{}
	if err := s.applyQuizInput(quiz, in); err != nil {
		return nil, err
	}
	if err := s.attachLesson(actor, quiz, in.LessonID); err != nil {
		return nil, err
	}

	orders := make(map[int]struct{}, len(in.Questions))
	for _, qi := range in.Questions {
		q, err := s.validateQuestion(qi)
		if err != nil {
			return nil, err
		}
		if _, dup := orders[q.Order]; dup {
			return nil, util.ErrDuplicateOrder
		}
		orders[q.Order] = struct{}{}
		quiz.Questions = append(quiz.Questions, *q)
	}

	if err := s.QuizRepo.Create(quiz); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	logger.Log.Info("Quiz created", zap.Uint("quizId", quiz.ID), zap.Int("questions", len(quiz.Questions)))
	return quiz, nil
}

// GetQuiz 管理视图，包含正确答案
func (s *QuizService) GetQuiz(actor *model.User, quizID uint) (*model.Quiz, error) {
	if _, err := s.manageableQuiz(actor, quizID); err != nil {
		return nil, err
	}
	return s.QuizRepo.FindWithQuestions(quizID)
}

func (s *QuizService) ListQuizzes(actor *model.User) ([]model.Quiz, error) {
	if IsAdmin(actor) {
		return s.QuizRepo.ListAll()
	}
	if IsInstructor(actor) {
		return s.QuizRepo.ListByInstructor(actor.ID)
	}
	return nil, util.ErrPermissionDenied
}

// UpdateQuiz 只更新测验本身，题目通过题目接口维护；LessonID 为 nil 时保持原关联
func (s *QuizService) UpdateQuiz(actor *model.User, quizID uint, in QuizInput) (*model.Quiz, error) {
	quiz, err := s.manageableQuiz(actor, quizID)
	if err != nil {
		return nil, err
	}
	if err := s.applyQuizInput(quiz, in); err != nil {
		return nil, err
	}
	lessonID := in.LessonID
	if lessonID == nil {
		lessonID = quiz.LessonID
	}
	if err := s.attachLesson(actor, quiz, lessonID); err != nil {
		return nil, err
	}
	if err := s.QuizRepo.Update(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) DeleteQuiz(actor *model.User, quizID uint) error {
	quiz, err := s.manageableQuiz(actor, quizID)
	if err != nil {
		return err
	}
	if err := s.QuizRepo.Delete(quiz.ID); err != nil {
		return err
	}
	logger.Log.Info("Quiz deleted", zap.Uint("quizId", quiz.ID), zap.Uint("by", actor.ID))
	return nil
}

func (s *QuizService) AddQuestion(actor *model.User, quizID uint, in QuestionInput) (*model.Question, error) {
	quiz, err := s.manageableQuiz(actor, quizID)
	if err != nil {
		return nil, err
	}
	q, err := s.validateQuestion(in)
	if err != nil {
		return nil, err
	}
	q.QuizID = quiz.ID
	if err := s.QuizRepo.CreateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuizService) UpdateQuestion(actor *model.User, quizID, questionID uint, in QuestionInput) (*model.Question, error) {
	quiz, err := s.manageableQuiz(actor, quizID)
	if err != nil {
		return nil, err
	}
	existing, err := s.QuizRepo.FindQuestion(quiz.ID, questionID)
	if err != nil {
		return nil, err
	}
	q, err := s.validateQuestion(in)
	if err != nil {
		return nil, err
	}
	existing.Text = q.Text
	existing.Order = q.Order
	if err := s.QuizRepo.ReplaceQuestion(existing, q.Options); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *QuizService) DeleteQuestion(actor *model.User, quizID, questionID uint) error {
	quiz, err := s.manageableQuiz(actor, quizID)
	if err != nil {
		return err
	}
	q, err := s.QuizRepo.FindQuestion(quiz.ID, questionID)
	if err != nil {
		return err
	}
	return s.QuizRepo.DeleteQuestion(q.ID)
}

func backURL(course *model.Course) string {
	if course == nil {
		return "/api/dashboard"
	}
	return "/api/courses/" + course.Slug
}

// PresentQuiz 每题一个必答单选字段，按题目顺序排列
func (s *QuizService) PresentQuiz(actor *model.User, quizID uint) (*QuizForm, error) {
	quiz, course, err := s.takeableQuiz(actor, quizID)
	if err != nil {
		return nil, err
	}
	if len(quiz.Questions) == 0 {
		return nil, &NoQuestionsError{RedirectURL: backURL(course)}
	}

	form := &QuizForm{
		QuizID:          quiz.ID,
		Title:           quiz.Title,
		Description:     quiz.Description,
		DurationMinutes: quiz.DurationMinutes,
		PassPercentage:  quiz.PassPercentage,
		Fields:          make([]FormField, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		field := FormField{
			Name:     FieldName(q.ID),
			Label:    fmt.Sprintf("%d. %s", q.Order, q.Text),
			Type:     "radio",
			Required: true,
			Choices:  make([]FormChoice, 0, len(q.Options)),
		}
		for _, o := range q.Options {
			field.Choices = append(field.Choices, FormChoice{Value: o.ID, Label: o.Text})
		}
		form.Fields = append(form.Fields, field)
	}
	return form, nil
}

// SubmitQuiz 评分并在同一事务中写入作答记录与每题答案；
// 任一选项不属于对应题目时整份提交被拒绝，不写入任何数据
func (s *QuizService) SubmitQuiz(ctx context.Context, actor *model.User, quizID uint, answers map[uint]*uint) (*model.StudentQuizAttempt, error) {
	ctx, span := tracing.StartSpan(ctx, "QuizService.SubmitQuiz")
	defer span.End()
	span.SetAttributes(attribute.Int64("quiz.id", int64(quizID)))

	quiz, course, err := s.takeableQuiz(actor, quizID)
	if err != nil {
		return nil, err
	}
	if len(quiz.Questions) == 0 {
		return nil, &NoQuestionsError{RedirectURL: backURL(course)}
	}

	questionIDs := make(map[uint]struct{}, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questionIDs[q.ID] = struct{}{}
	}
	for qid := range answers {
		if _, ok := questionIDs[qid]; !ok {
			return nil, fmt.Errorf("%w: question %d is not part of this quiz", util.ErrOptionNotInQuestion, qid)
		}
	}

	correct := 0
	records := make([]model.StudentAnswer, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		chosen := answers[q.ID]
		if chosen != nil {
			var picked *model.Option
			for i := range q.Options {
				if q.Options[i].ID == *chosen {
					picked = &q.Options[i]
					break
				}
			}
			if picked == nil {
				return nil, fmt.Errorf("%w: option %d for question %d", util.ErrOptionNotInQuestion, *chosen, q.ID)
			}
			if picked.IsCorrect {
				correct++
			}
		}
		records = append(records, model.StudentAnswer{QuestionID: q.ID, ChosenOptionID: chosen})
	}

	score := util.Round2(100 * float64(correct) / float64(len(quiz.Questions)))
	attempt := &model.StudentQuizAttempt{
		StudentID: actor.ID,
		QuizID:    quiz.ID,
		Score:     score,
		Passed:    score >= float64(quiz.PassPercentage),
	}
	if err := s.AttemptRepo.CreateWithAnswers(ctx, attempt, records); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("save quiz attempt: %w", err)
	}

	span.SetAttributes(
		attribute.Float64("quiz.score", score),
		attribute.Bool("quiz.passed", attempt.Passed),
	)
	monitoring.ObserveQuizAttempt(attempt.Passed)
	logger.Log.Info("Quiz attempt graded",
		zap.Uint("attemptId", attempt.ID),
		zap.Uint("quizId", quiz.ID),
		zap.Uint("studentId", actor.ID),
		zap.Float64("score", score),
		zap.Bool("passed", attempt.Passed),
	)
	return attempt, nil
}

// ViewResult 仅作答本人可查看
func (s *QuizService) ViewResult(actor *model.User, attemptID uint) (*QuizResult, error) {
	attempt, err := s.AttemptRepo.FindWithAnswers(attemptID)
	if err != nil {
		return nil, err
	}
	if !OwnsAttempt(actor, attempt) {
		return nil, util.ErrPermissionDenied
	}
	quiz, err := s.QuizRepo.FindWithQuestions(attempt.QuizID)
	if err != nil {
		return nil, err
	}

	chosen := make(map[uint]*uint, len(attempt.Answers))
	for _, a := range attempt.Answers {
		chosen[a.QuestionID] = a.ChosenOptionID
	}

	result := &QuizResult{
		AttemptID:      attempt.ID,
		QuizID:         quiz.ID,
		QuizTitle:      quiz.Title,
		Score:          attempt.Score,
		Passed:         attempt.Passed,
		PassPercentage: quiz.PassPercentage,
		TotalQuestions: len(quiz.Questions),
		Questions:      make([]ResultQuestion, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		rq := ResultQuestion{
			QuestionID:     q.ID,
			Order:          q.Order,
			Text:           q.Text,
			ChosenOptionID: chosen[q.ID],
			Options:        make([]ResultOption, 0, len(q.Options)),
		}
		for _, o := range q.Options {
			if o.IsCorrect {
				id := o.ID
				rq.CorrectOptionID = &id
			}
			rq.Options = append(rq.Options, ResultOption{ID: o.ID, Text: o.Text, IsCorrect: o.IsCorrect})
		}
		rq.IsCorrect = rq.ChosenOptionID != nil && rq.CorrectOptionID != nil && *rq.ChosenOptionID == *rq.CorrectOptionID
		if rq.IsCorrect {
			result.CorrectAnswers++
		}
		result.Questions = append(result.Questions, rq)
	}
	return result, nil
}

func (s *QuizService) ListAttempts(actor *model.User, quizID uint) ([]model.StudentQuizAttempt, error) {
	if !IsStudent(actor) {
		return nil, util.ErrPermissionDenied
	}
	if _, err := s.QuizRepo.FindByID(quizID); err != nil {
		return nil, err
	}
	return s.AttemptRepo.ListByStudentAndQuiz(actor.ID, quizID)
}
