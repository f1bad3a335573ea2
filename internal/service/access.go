package service

import "lms_backend/internal/model"

// 访问控制判定均为纯函数，调用方负责从路径参数加载实体后再判定

func IsAdmin(u *model.User) bool {
	return u != nil && u.IsStaff
}

func IsInstructor(u *model.User) bool {
	return u != nil && u.IsInstructor
}

func IsStudent(u *model.User) bool {
	return u != nil && u.IsStudent
}

func OwnsCourse(u *model.User, course *model.Course) bool {
	return IsInstructor(u) && course != nil && course.InstructorID == u.ID
}

// CanViewCourse 管理员、授课讲师，或课程已发布时的学生
func CanViewCourse(u *model.User, course *model.Course) bool {
	if u == nil || course == nil {
		return false
	}
	if IsAdmin(u) || OwnsCourse(u, course) {
		return true
	}
	return IsStudent(u) && course.IsPublished
}

// CanAccessContent 学生须已选课且课程已发布
func CanAccessContent(u *model.User, course *model.Course, enrolled bool) bool {
	if u == nil || course == nil {
		return false
	}
	if IsAdmin(u) || OwnsCourse(u, course) {
		return true
	}
	return IsStudent(u) && enrolled && course.IsPublished
}

// CanManageQuiz course 为测验所属课时的课程，未关联课时时为 nil，仅管理员可管理
func CanManageQuiz(u *model.User, course *model.Course) bool {
	if IsAdmin(u) {
		return true
	}
	return OwnsCourse(u, course)
}

// CanTakeQuiz 独立测验对所有学生开放；关联课时的测验要求已选课且课程已发布
func CanTakeQuiz(u *model.User, course *model.Course, enrolled bool) bool {
	if !IsStudent(u) {
		return false
	}
	if course == nil {
		return true
	}
	return enrolled && course.IsPublished
}

func OwnsAttempt(u *model.User, attempt *model.StudentQuizAttempt) bool {
	return u != nil && attempt != nil && attempt.StudentID == u.ID
}
