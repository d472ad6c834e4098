package model

import "time"

type Enrollment struct {
	BaseModel
	UserID     uint      `gorm:"uniqueIndex:uq_enroll_user_course;not null" json:"userId"`
	CourseID   string    `gorm:"uniqueIndex:uq_enroll_user_course;type:varchar(36);not null" json:"courseId"`
	EnrolledAt time.Time `json:"enrolledAt"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// LessonProgress 按 (user_id, lesson_id) 唯一，通过测验或手动标记完成时 upsert
type LessonProgress struct {
	BaseModel
	UserID      uint      `gorm:"uniqueIndex:uq_progress_user_lesson;not null" json:"userId"`
	LessonID    string    `gorm:"uniqueIndex:uq_progress_user_lesson;type:varchar(36);not null" json:"lessonId"`
	CompletedAt time.Time `json:"completedAt"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}
