package model

import (
	"encoding/json"
	"time"
)

type Quiz struct {
	UUIDBase
	LessonID string `gorm:"uniqueIndex;type:varchar(36);not null" json:"lessonId"`
	Title    string `gorm:"size:255" json:"title"`
	// PassScore 为空时按题目总数计（即要求满分）
	PassScore   *int `json:"passScore"`
	MaxAttempts *int `json:"maxAttempts"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

type QuizQuestion struct {
	UUIDBase
	QuizID       string `gorm:"index;type:varchar(36);not null" json:"quizId"`
	QuestionText string `gorm:"type:text;not null" json:"questionText"`
	SortOrder    int    `gorm:"default:0" json:"sortOrder"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

type QuizOption struct {
	UUIDBase
	QuestionID string `gorm:"index;type:varchar(36);not null" json:"questionId"`
	OptionText string `gorm:"type:text;not null" json:"optionText"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
	SortOrder  int    `gorm:"default:0" json:"sortOrder"`
}

func (QuizOption) TableName() string {
	return "quiz_options"
}

// QuizAttempt 一次完整的提交记录；RawAnswers 保存题目到所选选项的映射
type QuizAttempt struct {
	BaseModel
	UserID      uint            `gorm:"index;not null" json:"userId"`
	QuizID      string          `gorm:"index;type:varchar(36);not null" json:"quizId"`
	Score       int             `gorm:"not null" json:"score"`
	Total       int             `gorm:"not null" json:"total"`
	Passed      bool            `gorm:"default:false" json:"passed"`
	RawAnswers  json.RawMessage `gorm:"type:json" json:"rawAnswers"`
	StartedAt   time.Time       `json:"startedAt"`
	SubmittedAt time.Time       `json:"submittedAt"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
