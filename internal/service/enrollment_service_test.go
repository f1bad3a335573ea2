package service

import (
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/testutil"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnroll(t *testing.T) {
	s := newServices(t)
	prof := testutil.CreateInstructor(t, s.db, "prof")
	student := testutil.CreateStudent(t, s.db, "student")
	testutil.CreateCourse(t, s.db, prof, "live", true)
	testutil.CreateCourse(t, s.db, prof, "draft", false)

	e, err := s.enrollment.Enroll(student, "live")
	require.NoError(t, err)
	assert.False(t, e.EnrolledAt.IsZero())

	_, err = s.enrollment.Enroll(student, "live")
	assert.ErrorIs(t, err, util.ErrAlreadyEnrolled)

	_, err = s.enrollment.Enroll(student, "draft")
	assert.ErrorIs(t, err, util.ErrCourseNotPublished)

	_, err = s.enrollment.Enroll(prof, "live")
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = s.enrollment.Enroll(student, "missing")
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestCompletionFollowsProgress(t *testing.T) {
	s := newServices(t)
	prof := testutil.CreateInstructor(t, s.db, "prof")
	student := testutil.CreateStudent(t, s.db, "student")
	course := testutil.CreateCourse(t, s.db, prof, "live", true)
	lesson := testutil.CreateLesson(t, s.db, testutil.CreateModule(t, s.db, course, 1), 1)
	a := testutil.CreateContent(t, s.db, lesson, 1)
	b := testutil.CreateContent(t, s.db, lesson, 2)
	testutil.Enroll(t, s.db, student, course)

	list, err := s.enrollment.ListEnrollments(student)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 0.0, list[0].ProgressPercentage)
	assert.False(t, list[0].Completed)

	_, err = s.enrollment.MarkContent(student, a.ID, ptr(true))
	require.NoError(t, err)
	list, err = s.enrollment.ListEnrollments(student)
	require.NoError(t, err)
	assert.Equal(t, 50.0, list[0].ProgressPercentage)
	assert.False(t, list[0].Completed)

	p, err := s.enrollment.MarkContent(student, b.ID, nil)
	require.NoError(t, err)
	assert.True(t, p.Completed)
	list, err = s.enrollment.ListEnrollments(student)
	require.NoError(t, err)
	assert.Equal(t, 100.0, list[0].ProgressPercentage)
	assert.True(t, list[0].Completed)

	var stored model.Enrollment
	require.NoError(t, s.db.First(&stored, list[0].ID).Error)
	assert.True(t, stored.Completed)

	// 新增内容后完成度回落，标记随之清除
	testutil.CreateContent(t, s.db, lesson, 3)
	list, err = s.enrollment.ListEnrollments(student)
	require.NoError(t, err)
	assert.Equal(t, 66.67, list[0].ProgressPercentage)
	assert.False(t, list[0].Completed)

	p, err = s.enrollment.MarkContent(student, a.ID, nil)
	require.NoError(t, err)
	assert.False(t, p.Completed)
	assert.Nil(t, p.CompletedAt)
}

func TestMarkContentRequiresEnrollment(t *testing.T) {
	s := newServices(t)
	prof := testutil.CreateInstructor(t, s.db, "prof")
	student := testutil.CreateStudent(t, s.db, "student")
	course := testutil.CreateCourse(t, s.db, prof, "live", true)
	content := testutil.CreateContent(t, s.db, testutil.CreateLesson(t, s.db, testutil.CreateModule(t, s.db, course, 1), 1), 1)

	_, err := s.enrollment.MarkContent(student, content.ID, ptr(true))
	assert.ErrorIs(t, err, util.ErrNotEnrolled)

	_, err = s.enrollment.MarkContent(student, content.ID+100, ptr(true))
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestMarkContentFrozenAfterUnpublish(t *testing.T) {
	s := newServices(t)
	prof := testutil.CreateInstructor(t, s.db, "prof")
	student := testutil.CreateStudent(t, s.db, "student")
	course := testutil.CreateCourse(t, s.db, prof, "live", true)
	content := testutil.CreateContent(t, s.db, testutil.CreateLesson(t, s.db, testutil.CreateModule(t, s.db, course, 1), 1), 1)
	testutil.Enroll(t, s.db, student, course)

	_, err := s.enrollment.MarkContent(student, content.ID, ptr(true))
	require.NoError(t, err)

	_, err = s.courses.UpdateCourse(prof, course.Slug, CourseInput{Title: course.Title, IsPublished: false})
	require.NoError(t, err)

	_, err = s.enrollment.MarkContent(student, content.ID, ptr(false))
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	var p model.StudentContentProgress
	require.NoError(t, s.db.Where("student_id = ? AND content_id = ?", student.ID, content.ID).First(&p).Error)
	assert.True(t, p.Completed)
}

func TestCourseWithoutContentIsNeverComplete(t *testing.T) {
	s := newServices(t)
	prof := testutil.CreateInstructor(t, s.db, "prof")
	student := testutil.CreateStudent(t, s.db, "student")
	course := testutil.CreateCourse(t, s.db, prof, "empty", true)
	testutil.Enroll(t, s.db, student, course)

	list, err := s.enrollment.ListEnrollments(student)
	require.NoError(t, err)
	assert.Equal(t, 0.0, list[0].ProgressPercentage)
	assert.False(t, list[0].Completed)
}

func TestDashboardByRole(t *testing.T) {
	s := newServices(t)
	prof := testutil.CreateInstructor(t, s.db, "prof")
	student := testutil.CreateStudent(t, s.db, "student")
	admin := testutil.CreateAdmin(t, s.db, "admin")
	for _, slug := range []string{"a", "b", "c", "d", "e", "f"} {
		testutil.CreateCourse(t, s.db, prof, slug, true)
	}
	testutil.CreateCourse(t, s.db, prof, "hidden", false)

	d, err := s.dashboard.Get(prof)
	require.NoError(t, err)
	assert.Len(t, d.Courses, 7)

	d, err = s.dashboard.Get(student)
	require.NoError(t, err)
	assert.Len(t, d.AvailableCourses, util.DashboardAvailableCourses)
	for _, c := range d.AvailableCourses {
		assert.True(t, c.IsPublished)
	}

	d, err = s.dashboard.Get(admin)
	require.NoError(t, err)
	require.NotNil(t, d.Stats)
	assert.EqualValues(t, 3, d.Stats.Users)
	assert.EqualValues(t, 7, d.Stats.Courses)
}
