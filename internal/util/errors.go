package util

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrAccountDisabled     = errors.New("account is disabled")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrEmailRegistered     = errors.New("email already registered")
	ErrPasswordMismatch    = errors.New("the two password fields didn't match")
	ErrCannotDeleteSelf    = errors.New("you cannot delete your own account")
	ErrDuplicateOrder      = errors.New("order already used within the same parent")
	ErrInvalidContent      = errors.New("invalid content")
	ErrAlreadyEnrolled     = errors.New("already enrolled in this course")
	ErrCourseNotPublished  = errors.New("this course is not yet published")
	ErrNotEnrolled         = errors.New("you are not enrolled in this course")
	ErrLessonHasQuiz       = errors.New("this lesson already has a quiz")
	ErrInvalidQuestion     = errors.New("invalid question")
	ErrInvalidQuiz         = errors.New("invalid quiz")
	ErrQuizHasNoQuestions  = errors.New("this quiz has no questions yet")
	ErrOptionNotInQuestion = errors.New("chosen option does not belong to the question")
)

// StatusOf 将业务错误映射为 HTTP 状态码，未知错误返回 500
func StatusOf(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrAccountDisabled),
		errors.Is(err, ErrNotEnrolled):
		return http.StatusForbidden
	case errors.Is(err, ErrUsernameTaken),
		errors.Is(err, ErrEmailRegistered),
		errors.Is(err, ErrDuplicateOrder),
		errors.Is(err, ErrAlreadyEnrolled),
		errors.Is(err, ErrCourseNotPublished),
		errors.Is(err, ErrLessonHasQuiz):
		return http.StatusConflict
	case errors.Is(err, ErrPasswordMismatch),
		errors.Is(err, ErrCannotDeleteSelf),
		errors.Is(err, ErrInvalidContent),
		errors.Is(err, ErrInvalidQuestion),
		errors.Is(err, ErrInvalidQuiz),
		errors.Is(err, ErrQuizHasNoQuestions),
		errors.Is(err, ErrOptionNotInQuestion):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
