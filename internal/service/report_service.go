package service

import (
	"anchor_lms_backend/internal/model"
	"anchor_lms_backend/internal/repository"
	"anchor_lms_backend/internal/util"
	"anchor_lms_backend/pkg/logger"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const reportCacheTTL = 5 * time.Minute

// CourseReport 单门课程的汇总数据
type CourseReport struct {
	CourseID         string  `json:"courseId"`
	Title            string  `json:"title"`
	Enrollments      int64   `json:"enrollments"`
	TotalLessons     int64   `json:"totalLessons"`
	CompletionRate   float64 `json:"completionRate"` // 0-1，全体学员的平均课时完成率
	QuizAttempts     int64   `json:"quizAttempts"`
	QuizPassRate     float64 `json:"quizPassRate"` // 0-1
	CertificateCount int64   `json:"certificateCount"`
}

// OverviewReport 管理后台总览
type OverviewReport struct {
	TotalUsers   int64          `json:"totalUsers"`
	TotalCourses int64          `json:"totalCourses"`
	Courses      []CourseReport `json:"courses"`
	GeneratedAt  time.Time      `json:"generatedAt"`
}

// ActivityPoint 活跃度时间线上的一天
type ActivityPoint struct {
	Date        string `json:"date"` // YYYY-MM-DD
	Completions int64  `json:"completions"`
	Enrollments int64  `json:"enrollments"`
}

// ActivityReport 近 7 天完成/报名时间线与近 30 天活跃学员数
type ActivityReport struct {
	Days                 []ActivityPoint `json:"days"`
	CompletionsLast7Days int64           `json:"completionsLast7Days"`
	EnrollmentsLast7Days int64           `json:"enrollmentsLast7Days"`
	ActiveLearners30Days int64           `json:"activeLearners30Days"`
	GeneratedAt          time.Time       `json:"generatedAt"`
}

// ActivityStore 活跃度报表的查询面
type ActivityStore interface {
	CountCompletionsPerDay(since time.Time) ([]repository.DailyCount, error)
	CountEnrollmentsPerDay(since time.Time) ([]repository.DailyCount, error)
	CountActiveSince(since time.Time) (int64, error)
}

// repoActivityStore 把分散在三个仓储上的活跃度查询聚合成一个实现
type repoActivityStore struct {
	progress *repository.ProgressRepository
	enroll   *repository.EnrollmentRepository
	users    *repository.UserRepository
}

func (s *repoActivityStore) CountCompletionsPerDay(since time.Time) ([]repository.DailyCount, error) {
	return s.progress.CountCompletionsPerDay(since)
}

func (s *repoActivityStore) CountEnrollmentsPerDay(since time.Time) ([]repository.DailyCount, error) {
	return s.enroll.CountEnrollmentsPerDay(since)
}

func (s *repoActivityStore) CountActiveSince(since time.Time) (int64, error) {
	return s.users.CountActiveSince(since)
}

// ReportService 管理端报表，结果走 Redis 短缓存，Redis 不可用时直接查库
type ReportService struct {
	CourseRepo   *repository.CourseRepository
	UserRepo     *repository.UserRepository
	EnrollRepo   *repository.EnrollmentRepository
	ProgressRepo *repository.ProgressRepository
	QuizRepo     *repository.QuizRepository
	CertRepo     *repository.CertificateRepository
	ActivityRepo ActivityStore
	Redis        *redis.Client
}

func NewReportService(
	courseRepo *repository.CourseRepository,
	userRepo *repository.UserRepository,
	enrollRepo *repository.EnrollmentRepository,
	progressRepo *repository.ProgressRepository,
	quizRepo *repository.QuizRepository,
	certRepo *repository.CertificateRepository,
	rdb *redis.Client,
) *ReportService {
	return &ReportService{
		CourseRepo:   courseRepo,
		UserRepo:     userRepo,
		EnrollRepo:   enrollRepo,
		ProgressRepo: progressRepo,
		QuizRepo:     quizRepo,
		CertRepo:     certRepo,
		ActivityRepo: &repoActivityStore{progress: progressRepo, enroll: enrollRepo, users: userRepo},
		Redis:        rdb,
	}
}

// Overview 汇总所有课程的学习数据
func (s *ReportService) Overview(ctx context.Context) (*OverviewReport, error) {
	const cacheKey = "report:overview"

	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var report OverviewReport
			if json.Unmarshal([]byte(cached), &report) == nil {
				return &report, nil
			}
		}
	}

	courses, totalCourses, err := s.CourseRepo.List("", false, 1, 1000)
	if err != nil {
		return nil, err
	}
	_, totalUsers, err := s.UserRepo.List(1, 1)
	if err != nil {
		return nil, err
	}

	report := &OverviewReport{
		TotalUsers:   totalUsers,
		TotalCourses: totalCourses,
		Courses:      make([]CourseReport, 0, len(courses)),
		GeneratedAt:  time.Now(),
	}
	for i := range courses {
		cr, err := s.buildCourseReport(&courses[i])
		if err != nil {
			return nil, err
		}
		report.Courses = append(report.Courses, *cr)
	}

	s.cache(ctx, cacheKey, report)
	return report, nil
}

// Activity 近 7 天（含当天）的学习活跃度时间线
func (s *ReportService) Activity(ctx context.Context) (*ActivityReport, error) {
	const cacheKey = "report:activity"

	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var report ActivityReport
			if json.Unmarshal([]byte(cached), &report) == nil {
				return &report, nil
			}
		}
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := today.AddDate(0, 0, -6)

	completions, err := s.ActivityRepo.CountCompletionsPerDay(weekStart)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.ActivityRepo.CountEnrollmentsPerDay(weekStart)
	if err != nil {
		return nil, err
	}
	active, err := s.ActivityRepo.CountActiveSince(now.AddDate(0, 0, -30))
	if err != nil {
		return nil, err
	}

	completed := make(map[string]int64, len(completions))
	for _, row := range completions {
		completed[row.Day] = row.Count
	}
	enrolled := make(map[string]int64, len(enrollments))
	for _, row := range enrollments {
		enrolled[row.Day] = row.Count
	}

	report := &ActivityReport{
		Days:                 make([]ActivityPoint, 0, 7),
		ActiveLearners30Days: active,
		GeneratedAt:          now,
	}
	for i := 0; i < 7; i++ {
		day := weekStart.AddDate(0, 0, i).Format(util.DateFormat)
		point := ActivityPoint{
			Date:        day,
			Completions: completed[day],
			Enrollments: enrolled[day],
		}
		report.CompletionsLast7Days += point.Completions
		report.EnrollmentsLast7Days += point.Enrollments
		report.Days = append(report.Days, point)
	}

	s.cache(ctx, cacheKey, report)
	return report, nil
}

// CourseDetail 单门课程报表
func (s *ReportService) CourseDetail(ctx context.Context, courseID string) (*CourseReport, error) {
	cacheKey := fmt.Sprintf("report:course:%s", courseID)

	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var report CourseReport
			if json.Unmarshal([]byte(cached), &report) == nil {
				return &report, nil
			}
		}
	}

	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return nil, err
	}
	report, err := s.buildCourseReport(course)
	if err != nil {
		return nil, err
	}

	s.cache(ctx, cacheKey, report)
	return report, nil
}

func (s *ReportService) buildCourseReport(course *model.Course) (*CourseReport, error) {
	enrollments, err := s.EnrollRepo.CountByCourse(course.ID)
	if err != nil {
		return nil, err
	}
	totalLessons, err := s.CourseRepo.CountLessons(course.ID)
	if err != nil {
		return nil, err
	}
	completions, err := s.ProgressRepo.CountCompletionsInCourse(course.ID)
	if err != nil {
		return nil, err
	}
	attempts, passed, err := s.QuizRepo.CountAttemptStats(course.ID)
	if err != nil {
		return nil, err
	}
	certs, err := s.CertRepo.CountByCourse(course.ID)
	if err != nil {
		return nil, err
	}

	var completionRate float64
	if enrollments > 0 && totalLessons > 0 {
		completionRate = float64(completions) / float64(enrollments*totalLessons)
		if completionRate > 1 {
			completionRate = 1
		}
	}
	var passRate float64
	if attempts > 0 {
		passRate = float64(passed) / float64(attempts)
	}

	return &CourseReport{
		CourseID:         course.ID,
		Title:            course.Title,
		Enrollments:      enrollments,
		TotalLessons:     totalLessons,
		CompletionRate:   completionRate,
		QuizAttempts:     attempts,
		QuizPassRate:     passRate,
		CertificateCount: certs,
	}, nil
}

// 缓存失败只记日志，不影响请求
func (s *ReportService) cache(ctx context.Context, key string, value interface{}) {
	if s.Redis == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, key, data, reportCacheTTL).Err(); err != nil {
		logger.Log.Warn("写入报表缓存失败", zap.String("key", key), zap.Error(err))
	}
}
