package service

import (
	"context"
	"errors"
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/testutil"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quizFixture 已发布课程中关联课时的三题测验，学生已选课
func quizFixture(t *testing.T, s *services) (*model.User, *model.User, *model.Quiz) {
	t.Helper()
	prof := testutil.CreateInstructor(t, s.db, "prof")
	student := testutil.CreateStudent(t, s.db, "student")
	course := testutil.CreateCourse(t, s.db, prof, "go", true)
	lesson := testutil.CreateLesson(t, s.db, testutil.CreateModule(t, s.db, course, 1), 1)
	quiz := testutil.CreateQuiz(t, s.db, lesson, 3)
	testutil.Enroll(t, s.db, student, course)
	return prof, student, quiz
}

func correctOption(q model.Question) *uint {
	for _, o := range q.Options {
		if o.IsCorrect {
			return ptr(o.ID)
		}
	}
	return nil
}

func wrongOption(q model.Question) *uint {
	for _, o := range q.Options {
		if !o.IsCorrect {
			return ptr(o.ID)
		}
	}
	return nil
}

func TestSubmitQuizGradesAndRecordsEveryQuestion(t *testing.T) {
	s := newServices(t)
	_, student, quiz := quizFixture(t, s)
	qs := quiz.Questions

	attempt, err := s.quizzes.SubmitQuiz(context.Background(), student, quiz.ID, map[uint]*uint{
		qs[0].ID: correctOption(qs[0]),
		qs[1].ID: correctOption(qs[1]),
		qs[2].ID: wrongOption(qs[2]),
	})
	require.NoError(t, err)
	assert.Equal(t, 66.67, attempt.Score)
	assert.False(t, attempt.Passed)
	assert.Len(t, attempt.Answers, 3)

	attempt, err = s.quizzes.SubmitQuiz(context.Background(), student, quiz.ID, map[uint]*uint{
		qs[0].ID: correctOption(qs[0]),
		qs[1].ID: correctOption(qs[1]),
		qs[2].ID: correctOption(qs[2]),
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, attempt.Score)
	assert.True(t, attempt.Passed)

	attempts, err := s.quizzes.ListAttempts(student, quiz.ID)
	require.NoError(t, err)
	assert.Len(t, attempts, 2)
}

func TestSubmitQuizUnansweredQuestionsAreRecorded(t *testing.T) {
	s := newServices(t)
	_, student, quiz := quizFixture(t, s)
	qs := quiz.Questions

	attempt, err := s.quizzes.SubmitQuiz(context.Background(), student, quiz.ID, map[uint]*uint{
		qs[0].ID: correctOption(qs[0]),
	})
	require.NoError(t, err)
	assert.Equal(t, 33.33, attempt.Score)

	var answers []model.StudentAnswer
	require.NoError(t, s.db.Where("attempt_id = ?", attempt.ID).Find(&answers).Error)
	require.Len(t, answers, 3)
	unanswered := 0
	for _, a := range answers {
		if a.ChosenOptionID == nil {
			unanswered++
		}
	}
	assert.Equal(t, 2, unanswered)
}

func TestSubmitQuizWritesWithCallerContext(t *testing.T) {
	s := newServices(t)
	_, student, quiz := quizFixture(t, s)
	qs := quiz.Questions

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.quizzes.SubmitQuiz(ctx, student, quiz.ID, map[uint]*uint{
		qs[0].ID: correctOption(qs[0]),
	})
	assert.ErrorIs(t, err, context.Canceled)

	var n int64
	require.NoError(t, s.db.Model(&model.StudentQuizAttempt{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestSubmitQuizRejectsOptionFromAnotherQuestion(t *testing.T) {
	s := newServices(t)
	_, student, quiz := quizFixture(t, s)
	qs := quiz.Questions

	_, err := s.quizzes.SubmitQuiz(context.Background(), student, quiz.ID, map[uint]*uint{
		qs[0].ID: correctOption(qs[1]),
	})
	assert.ErrorIs(t, err, util.ErrOptionNotInQuestion)

	var n int64
	require.NoError(t, s.db.Model(&model.StudentQuizAttempt{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, s.db.Model(&model.StudentAnswer{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestSubmitQuizRequiresEnrollment(t *testing.T) {
	s := newServices(t)
	_, _, quiz := quizFixture(t, s)
	outsider := testutil.CreateStudent(t, s.db, "outsider")

	_, err := s.quizzes.SubmitQuiz(context.Background(), outsider, quiz.ID, nil)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestPresentQuiz(t *testing.T) {
	s := newServices(t)
	_, student, quiz := quizFixture(t, s)

	form, err := s.quizzes.PresentQuiz(student, quiz.ID)
	require.NoError(t, err)
	require.Len(t, form.Fields, 3)
	first := form.Fields[0]
	assert.Equal(t, FieldName(quiz.Questions[0].ID), first.Name)
	assert.Equal(t, "1. Question 1", first.Label)
	assert.True(t, first.Required)
	assert.Len(t, first.Choices, 3)
}

func TestPresentQuizWithoutQuestionsRedirects(t *testing.T) {
	s := newServices(t)
	prof := testutil.CreateInstructor(t, s.db, "prof")
	student := testutil.CreateStudent(t, s.db, "student")
	course := testutil.CreateCourse(t, s.db, prof, "empty", true)
	lesson := testutil.CreateLesson(t, s.db, testutil.CreateModule(t, s.db, course, 1), 1)
	quiz := testutil.CreateQuiz(t, s.db, lesson, 0)
	testutil.Enroll(t, s.db, student, course)

	_, err := s.quizzes.PresentQuiz(student, quiz.ID)
	require.ErrorIs(t, err, util.ErrQuizHasNoQuestions)
	var nq *NoQuestionsError
	require.True(t, errors.As(err, &nq))
	assert.Equal(t, "/api/courses/empty", nq.RedirectURL)
}

func TestViewResultOwnerOnly(t *testing.T) {
	s := newServices(t)
	_, student, quiz := quizFixture(t, s)
	qs := quiz.Questions

	attempt, err := s.quizzes.SubmitQuiz(context.Background(), student, quiz.ID, map[uint]*uint{
		qs[0].ID: correctOption(qs[0]),
		qs[1].ID: wrongOption(qs[1]),
	})
	require.NoError(t, err)

	result, err := s.quizzes.ViewResult(student, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalQuestions)
	assert.Equal(t, 1, result.CorrectAnswers)
	assert.True(t, result.Questions[0].IsCorrect)
	assert.False(t, result.Questions[1].IsCorrect)
	assert.Nil(t, result.Questions[2].ChosenOptionID)
	assert.NotNil(t, result.Questions[2].CorrectOptionID)

	other := testutil.CreateStudent(t, s.db, "other")
	_, err = s.quizzes.ViewResult(other, attempt.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestCreateQuizValidatesQuestions(t *testing.T) {
	s := newServices(t)
	prof, _, _ := quizFixture(t, s)
	course := testutil.CreateCourse(t, s.db, prof, "second", false)
	lesson := testutil.CreateLesson(t, s.db, testutil.CreateModule(t, s.db, course, 1), 1)

	base := QuizInput{Title: "Checkpoint", LessonID: &lesson.ID}

	twoCorrect := base
	twoCorrect.Questions = []QuestionInput{{Text: "Q", Order: 1, Options: []OptionInput{
		{Text: "a", IsCorrect: true}, {Text: "b", IsCorrect: true},
	}}}
	_, err := s.quizzes.CreateQuiz(prof, twoCorrect)
	assert.ErrorIs(t, err, util.ErrInvalidQuestion)

	tooFew := base
	tooFew.Questions = []QuestionInput{{Text: "Q", Order: 1, Options: []OptionInput{{Text: "a", IsCorrect: true}}}}
	_, err = s.quizzes.CreateQuiz(prof, tooFew)
	assert.ErrorIs(t, err, util.ErrInvalidQuestion)

	dupOrder := base
	valid := QuestionInput{Text: "Q", Order: 1, Options: []OptionInput{{Text: "a", IsCorrect: true}, {Text: "b"}}}
	dupOrder.Questions = []QuestionInput{valid, valid}
	_, err = s.quizzes.CreateQuiz(prof, dupOrder)
	assert.ErrorIs(t, err, util.ErrDuplicateOrder)

	ok := base
	ok.Questions = []QuestionInput{valid}
	quiz, err := s.quizzes.CreateQuiz(prof, ok)
	require.NoError(t, err)
	assert.Equal(t, 70, quiz.PassPercentage)

	_, err = s.quizzes.CreateQuiz(prof, base)
	assert.ErrorIs(t, err, util.ErrLessonHasQuiz)
}

func TestManageQuizRequiresCourseOwnership(t *testing.T) {
	s := newServices(t)
	prof, _, quiz := quizFixture(t, s)
	stranger := testutil.CreateInstructor(t, s.db, "stranger")
	admin := testutil.CreateAdmin(t, s.db, "admin")

	_, err := s.quizzes.GetQuiz(prof, quiz.ID)
	assert.NoError(t, err)
	_, err = s.quizzes.GetQuiz(admin, quiz.ID)
	assert.NoError(t, err)
	_, err = s.quizzes.GetQuiz(stranger, quiz.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = s.quizzes.AddQuestion(prof, quiz.ID, QuestionInput{
		Text: "Extra", Order: 1,
		Options: []OptionInput{{Text: "x", IsCorrect: true}, {Text: "y"}},
	})
	assert.ErrorIs(t, err, util.ErrDuplicateOrder)

	require.NoError(t, s.quizzes.DeleteQuiz(prof, quiz.ID))
	_, err = s.quizzes.GetQuiz(prof, quiz.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)
}
