package service

import (
	"testing"

	"lms_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func user(id uint, apply func(u *model.User)) *model.User {
	u := &model.User{IsActive: true}
	u.ID = id
	apply(u)
	return u
}

func TestAccessPredicates(t *testing.T) {
	admin := user(1, func(u *model.User) { u.IsStaff = true })
	owner := user(2, func(u *model.User) { u.IsInstructor = true })
	stranger := user(3, func(u *model.User) { u.IsInstructor = true })
	student := user(4, func(u *model.User) { u.IsStudent = true })

	draft := &model.Course{InstructorID: owner.ID}
	live := &model.Course{InstructorID: owner.ID, IsPublished: true}

	cases := []struct {
		name string
		got  bool
		want bool
	}{
		{"staff is admin", IsAdmin(admin), true},
		{"instructor is not admin", IsAdmin(owner), false},
		{"nobody is not admin", IsAdmin(nil), false},

		{"admin views draft", CanViewCourse(admin, draft), true},
		{"owner views draft", CanViewCourse(owner, draft), true},
		{"other instructor views draft", CanViewCourse(stranger, draft), false},
		{"student views draft", CanViewCourse(student, draft), false},
		{"student views published", CanViewCourse(student, live), true},
		{"anonymous views published", CanViewCourse(nil, live), false},

		{"enrolled student opens published content", CanAccessContent(student, live, true), true},
		{"unenrolled student opens content", CanAccessContent(student, live, false), false},
		{"enrolled student opens unpublished content", CanAccessContent(student, draft, true), false},
		{"owner opens own content", CanAccessContent(owner, draft, false), true},

		{"admin manages standalone quiz", CanManageQuiz(admin, nil), true},
		{"instructor manages standalone quiz", CanManageQuiz(owner, nil), false},
		{"owner manages lesson quiz", CanManageQuiz(owner, live), true},
		{"other instructor manages lesson quiz", CanManageQuiz(stranger, live), false},

		{"student takes standalone quiz", CanTakeQuiz(student, nil, false), true},
		{"enrolled student takes lesson quiz", CanTakeQuiz(student, live, true), true},
		{"unenrolled student takes lesson quiz", CanTakeQuiz(student, live, false), false},
		{"instructor takes quiz", CanTakeQuiz(owner, live, true), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.got, tc.name)
	}

	attempt := &model.StudentQuizAttempt{StudentID: student.ID}
	assert.True(t, OwnsAttempt(student, attempt))
	assert.False(t, OwnsAttempt(admin, attempt))
}
