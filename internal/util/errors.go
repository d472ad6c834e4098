package util

import "errors"

var (
	ErrUserNotFound    = errors.New("用户不存在")
	ErrEmailRegistered = errors.New("该邮箱已被注册")
	ErrUnauthorized    = errors.New("unauthorized")

	ErrCourseNotFound  = errors.New("course not found")
	ErrLessonNotFound  = errors.New("lesson not found")
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
	ErrNotEnrolled     = errors.New("not enrolled in this course")

	// 测验提交：有题目未作答时整体拒绝，绝不部分计分
	ErrQuizNotFound         = errors.New("quiz not found")
	ErrQuizHasNoQuestions   = errors.New("quiz has no questions")
	ErrIncompleteSubmission = errors.New("all questions must be answered before submitting")

	// 证书生成流水线的三类 I/O 失败，互相独立、对调用方可见，组件内不重试
	ErrTemplateUnavailable = errors.New("certificate template unavailable")
	ErrStorageUploadFailed = errors.New("certificate upload failed")
	ErrRecordPersistFailed = errors.New("certificate record persist failed")

	ErrEmptyCertificateField = errors.New("certificate text fields must not be empty")
	ErrCertificateNotFound   = errors.New("certificate not found")
	ErrQuizNotPassed         = errors.New("course quiz has not been passed")
)
