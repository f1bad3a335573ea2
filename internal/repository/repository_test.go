package repository

import (
	"context"
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/testutil"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func count(t *testing.T, db *gorm.DB, value interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(value).Count(&n).Error)
	return n
}

func TestDeleteModuleCascades(t *testing.T) {
	db := testutil.NewDB(t)
	prof := testutil.CreateInstructor(t, db, "prof")
	student := testutil.CreateStudent(t, db, "student")
	course := testutil.CreateCourse(t, db, prof, "go-basics", true)
	keep := testutil.CreateModule(t, db, course, 2)
	testutil.CreateLesson(t, db, keep, 1)

	module := testutil.CreateModule(t, db, course, 1)
	lesson := testutil.CreateLesson(t, db, module, 1)
	content := testutil.CreateContent(t, db, lesson, 1)
	quiz := testutil.CreateQuiz(t, db, lesson, 2)

	progress := NewProgressRepository(db)
	_, err := progress.SetCompletion(student.ID, content.ID, func(bool) bool { return true })
	require.NoError(t, err)

	attempts := NewAttemptRepository(db)
	require.NoError(t, attempts.CreateWithAnswers(context.Background(),
		&model.StudentQuizAttempt{StudentID: student.ID, QuizID: quiz.ID},
		[]model.StudentAnswer{{QuestionID: quiz.Questions[0].ID}},
	))

	repo := NewModuleRepository(db)
	require.NoError(t, repo.DeleteModule(module.ID))

	assert.EqualValues(t, 1, count(t, db, &model.Module{}))
	assert.EqualValues(t, 1, count(t, db, &model.Lesson{}))
	assert.EqualValues(t, 0, count(t, db, &model.Content{}))
	assert.EqualValues(t, 0, count(t, db, &model.StudentContentProgress{}))
	assert.EqualValues(t, 0, count(t, db, &model.Quiz{}))
	assert.EqualValues(t, 0, count(t, db, &model.Question{}))
	assert.EqualValues(t, 0, count(t, db, &model.Option{}))
	assert.EqualValues(t, 0, count(t, db, &model.StudentQuizAttempt{}))
	assert.EqualValues(t, 0, count(t, db, &model.StudentAnswer{}))
}

func TestDeleteCourseRemovesEnrollments(t *testing.T) {
	db := testutil.NewDB(t)
	prof := testutil.CreateInstructor(t, db, "prof")
	student := testutil.CreateStudent(t, db, "student")
	course := testutil.CreateCourse(t, db, prof, "go-basics", true)
	testutil.CreateContent(t, db, testutil.CreateLesson(t, db, testutil.CreateModule(t, db, course, 1), 1), 1)
	testutil.Enroll(t, db, student, course)

	require.NoError(t, NewCourseRepository(db).Delete(course.ID))

	assert.EqualValues(t, 0, count(t, db, &model.Course{}))
	assert.EqualValues(t, 0, count(t, db, &model.Enrollment{}))
	assert.EqualValues(t, 0, count(t, db, &model.Content{}))
	assert.EqualValues(t, 2, count(t, db, &model.User{}))
}

func TestDuplicateOrderRejected(t *testing.T) {
	db := testutil.NewDB(t)
	course := testutil.CreateCourse(t, db, testutil.CreateInstructor(t, db, "prof"), "c", false)
	testutil.CreateModule(t, db, course, 1)

	repo := NewModuleRepository(db)
	err := repo.CreateModule(&model.Module{CourseID: course.ID, Title: "dup", Order: 1})
	assert.ErrorIs(t, err, util.ErrDuplicateOrder)

	other := testutil.CreateCourse(t, db, testutil.CreateInstructor(t, db, "other"), "d", false)
	assert.NoError(t, repo.CreateModule(&model.Module{CourseID: other.ID, Title: "same order elsewhere", Order: 1}))
}

func TestUpdateModuleKeepsOwnOrder(t *testing.T) {
	db := testutil.NewDB(t)
	course := testutil.CreateCourse(t, db, testutil.CreateInstructor(t, db, "prof"), "c", false)
	m := testutil.CreateModule(t, db, course, 1)
	testutil.CreateModule(t, db, course, 2)

	repo := NewModuleRepository(db)
	m.Title = "renamed"
	assert.NoError(t, repo.UpdateModule(m))

	m.Order = 2
	assert.ErrorIs(t, repo.UpdateModule(m), util.ErrDuplicateOrder)
}

func TestFindModuleScopedToCourse(t *testing.T) {
	db := testutil.NewDB(t)
	prof := testutil.CreateInstructor(t, db, "prof")
	a := testutil.CreateCourse(t, db, prof, "a", false)
	b := testutil.CreateCourse(t, db, prof, "b", false)
	m := testutil.CreateModule(t, db, a, 1)

	_, err := NewModuleRepository(db).FindModule(b.ID, m.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestSetCompletion(t *testing.T) {
	db := testutil.NewDB(t)
	student := testutil.CreateStudent(t, db, "student")
	course := testutil.CreateCourse(t, db, testutil.CreateInstructor(t, db, "prof"), "c", true)
	content := testutil.CreateContent(t, db, testutil.CreateLesson(t, db, testutil.CreateModule(t, db, course, 1), 1), 1)
	repo := NewProgressRepository(db)
	toggle := func(current bool) bool { return !current }

	p, err := repo.SetCompletion(student.ID, content.ID, toggle)
	require.NoError(t, err)
	assert.True(t, p.Completed)
	assert.NotNil(t, p.CompletedAt)

	p, err = repo.SetCompletion(student.ID, content.ID, toggle)
	require.NoError(t, err)
	assert.False(t, p.Completed)
	assert.Nil(t, p.CompletedAt)
	assert.EqualValues(t, 1, count(t, db, &model.StudentContentProgress{}))

	done, err := repo.CountCompletedInCourse(student.ID, course.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, done)
}

func TestSlugsWithPrefix(t *testing.T) {
	db := testutil.NewDB(t)
	prof := testutil.CreateInstructor(t, db, "prof")
	testutil.CreateCourse(t, db, prof, "intro", false)
	testutil.CreateCourse(t, db, prof, "intro-1", false)
	testutil.CreateCourse(t, db, prof, "introduction", false)

	slugs, err := NewCourseRepository(db).SlugsWithPrefix("intro")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"intro", "intro-1"}, slugs)
}

func TestEnrollmentUniqueness(t *testing.T) {
	db := testutil.NewDB(t)
	student := testutil.CreateStudent(t, db, "student")
	course := testutil.CreateCourse(t, db, testutil.CreateInstructor(t, db, "prof"), "c", true)
	repo := NewEnrollmentRepository(db)

	require.NoError(t, repo.Create(&model.Enrollment{StudentID: student.ID, CourseID: course.ID}))
	err := repo.Create(&model.Enrollment{StudentID: student.ID, CourseID: course.ID})
	assert.ErrorIs(t, err, util.ErrAlreadyEnrolled)
}

func TestReplaceQuestionKeepsMatchingOptions(t *testing.T) {
	db := testutil.NewDB(t)
	quiz := testutil.CreateQuiz(t, db, nil, 1)
	repo := NewQuizRepository(db)
	q, err := repo.FindQuestion(quiz.ID, quiz.Questions[0].ID)
	require.NoError(t, err)
	rightID := q.Options[0].ID

	student := testutil.CreateStudent(t, db, "student")
	wrongID := q.Options[1].ID
	require.NoError(t, NewAttemptRepository(db).CreateWithAnswers(context.Background(),
		&model.StudentQuizAttempt{StudentID: student.ID, QuizID: quiz.ID},
		[]model.StudentAnswer{{QuestionID: q.ID, ChosenOptionID: &wrongID}},
	))

	q.Text = "Reworded"
	require.NoError(t, repo.ReplaceQuestion(q, []model.Option{
		{Text: "right", IsCorrect: true},
		{Text: "brand new"},
	}))

	got, err := repo.FindQuestion(quiz.ID, q.ID)
	require.NoError(t, err)
	require.Len(t, got.Options, 2)
	assert.Equal(t, rightID, got.Options[0].ID)
	assert.Equal(t, "Reworded", got.Text)

	var answer model.StudentAnswer
	require.NoError(t, db.First(&answer).Error)
	assert.Nil(t, answer.ChosenOptionID)
}

func TestCreateWithAnswersRollsBackAttempt(t *testing.T) {
	db := testutil.NewDB(t)
	student := testutil.CreateStudent(t, db, "student")
	quiz := testutil.CreateQuiz(t, db, nil, 2)
	qid := quiz.Questions[0].ID

	attempt := &model.StudentQuizAttempt{StudentID: student.ID, QuizID: quiz.ID, Score: 50}
	err := NewAttemptRepository(db).CreateWithAnswers(context.Background(), attempt, []model.StudentAnswer{
		{QuestionID: qid},
		{QuestionID: qid},
	})
	require.Error(t, err)

	assert.EqualValues(t, 0, count(t, db, &model.StudentQuizAttempt{}))
	assert.EqualValues(t, 0, count(t, db, &model.StudentAnswer{}))
}
