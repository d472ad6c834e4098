package repository

import (
	"anchor_lms_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) Create(e *model.Enrollment) error {
	return r.DB.Create(e).Error
}

func (r *EnrollmentRepository) Find(userID uint, courseID string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&e).Error
	return &e, err
}

func (r *EnrollmentRepository) ListByUser(userID uint) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.DB.Where("user_id = ?", userID).Order("enrolled_at desc").Find(&enrollments).Error
	return enrollments, err
}

func (r *EnrollmentRepository) CountByCourse(courseID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

// DailyCount 按天聚合的计数行，活跃度报表用
type DailyCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// CountEnrollmentsPerDay 统计 since 之后每天的报名数
func (r *EnrollmentRepository) CountEnrollmentsPerDay(since time.Time) ([]DailyCount, error) {
	var rows []DailyCount
	err := r.DB.Model(&model.Enrollment{}).
		Select("DATE_FORMAT(enrolled_at, '%Y-%m-%d') AS day, COUNT(*) AS count").
		Where("enrolled_at >= ?", since).
		Group("day").
		Scan(&rows).Error
	return rows, err
}

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// Upsert 按 (user_id, lesson_id) 幂等写入完成记录，重复提交只刷新完成时间
func (r *ProgressRepository) Upsert(userID uint, lessonID string) error {
	progress := model.LessonProgress{
		UserID:      userID,
		LessonID:    lessonID,
		CompletedAt: time.Now(),
	}
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed_at", "updated_at"}),
	}).Create(&progress).Error
}

func (r *ProgressRepository) ListCompletedLessonIDs(userID uint, lessonIDs []string) ([]string, error) {
	var completed []string
	query := r.DB.Model(&model.LessonProgress{}).Where("user_id = ?", userID)
	if len(lessonIDs) > 0 {
		query = query.Where("lesson_id IN ?", lessonIDs)
	}
	err := query.Pluck("lesson_id", &completed).Error
	return completed, err
}

// CountCompletedInCourse 统计用户在某课程内已完成的课时数
func (r *ProgressRepository) CountCompletedInCourse(userID uint, courseID string) (int64, error) {
	var count int64
	err := r.DB.Table("lesson_progress p").
		Joins("JOIN lessons l ON p.lesson_id = l.id").
		Joins("JOIN course_modules m ON l.module_id = m.id").
		Where("p.user_id = ? AND m.course_id = ? AND p.deleted_at IS NULL", userID, courseID).
		Count(&count).Error
	return count, err
}

// CountCompletionsPerDay 统计 since 之后每天的课时完成数
func (r *ProgressRepository) CountCompletionsPerDay(since time.Time) ([]DailyCount, error) {
	var rows []DailyCount
	err := r.DB.Model(&model.LessonProgress{}).
		Select("DATE_FORMAT(completed_at, '%Y-%m-%d') AS day, COUNT(*) AS count").
		Where("completed_at >= ?", since).
		Group("day").
		Scan(&rows).Error
	return rows, err
}

// CountCompletionsInCourse 统计课程内所有学员的完成记录总数，用于汇总报表
func (r *ProgressRepository) CountCompletionsInCourse(courseID string) (int64, error) {
	var count int64
	err := r.DB.Table("lesson_progress p").
		Joins("JOIN lessons l ON p.lesson_id = l.id").
		Joins("JOIN course_modules m ON l.module_id = m.id").
		Where("m.course_id = ? AND p.deleted_at IS NULL", courseID).
		Count(&count).Error
	return count, err
}
