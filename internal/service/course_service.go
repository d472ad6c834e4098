package service

import (
	"anchor_lms_backend/internal/model"
	"anchor_lms_backend/internal/repository"
	"anchor_lms_backend/internal/util"
	"errors"
	"time"

	"gorm.io/gorm"
)

type CourseService struct {
	Repo       *repository.CourseRepository
	LessonRepo *repository.LessonRepository
	EnrollRepo *repository.EnrollmentRepository
	Progress   *repository.ProgressRepository
	QuizRepo   *repository.QuizRepository
	Certs      *repository.CertificateRepository
}

func NewCourseService(
	repo *repository.CourseRepository,
	lessonRepo *repository.LessonRepository,
	enrollRepo *repository.EnrollmentRepository,
	progress *repository.ProgressRepository,
	quizRepo *repository.QuizRepository,
	certs *repository.CertificateRepository,
) *CourseService {
	return &CourseService{
		Repo:       repo,
		LessonRepo: lessonRepo,
		EnrollRepo: enrollRepo,
		Progress:   progress,
		QuizRepo:   quizRepo,
		Certs:      certs,
	}
}

type CourseReq struct {
	Title       *string               `json:"title"`
	Description *string               `json:"description"`
	Audience    *model.CourseAudience `json:"audience"`
	Published   *bool                 `json:"published"`
}

func (s *CourseService) Create(creatorID uint, req CourseReq) (*model.Course, error) {
	if req.Title == nil || *req.Title == "" {
		return nil, errors.New("title is required")
	}

	course := &model.Course{
		Title:     *req.Title,
		CreatorID: creatorID,
		Audience:  model.AudienceBoth,
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Audience != nil {
		course.Audience = *req.Audience
	}
	if req.Published != nil {
		course.Published = *req.Published
	}

	if err := s.Repo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) Update(courseID string, req CourseReq) (*model.Course, error) {
	course, err := s.Repo.FindByID(courseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Audience != nil {
		course.Audience = *req.Audience
	}
	if req.Published != nil {
		course.Published = *req.Published
	}

	if err := s.Repo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) Delete(courseID string) error {
	return s.Repo.Delete(courseID)
}

func (s *CourseService) Get(courseID string) (*model.Course, error) {
	course, err := s.Repo.FindByID(courseID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrCourseNotFound
	}
	return course, err
}

// ListForUser 按用户身份过滤受众：外部账号只看 external/both
func (s *CourseService) ListForUser(user *model.User, page, limit int) ([]model.Course, int64, error) {
	audience := model.AudienceInternal
	if user.External {
		audience = model.AudienceExternal
	}
	publishedOnly := user.Role != model.Admin
	return s.Repo.List(audience, publishedOnly, page, limit)
}

type ModuleReq struct {
	Title     *string `json:"title"`
	SortOrder *int    `json:"sortOrder"`
}

func (s *CourseService) CreateModule(courseID string, req ModuleReq) (*model.CourseModule, error) {
	if _, err := s.Repo.FindByID(courseID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	if req.Title == nil || *req.Title == "" {
		return nil, errors.New("title is required")
	}

	m := &model.CourseModule{CourseID: courseID, Title: *req.Title}
	if req.SortOrder != nil {
		m.SortOrder = *req.SortOrder
	}
	if err := s.Repo.CreateModule(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *CourseService) UpdateModule(moduleID string, req ModuleReq) (*model.CourseModule, error) {
	m, err := s.Repo.FindModuleByID(moduleID)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		m.Title = *req.Title
	}
	if req.SortOrder != nil {
		m.SortOrder = *req.SortOrder
	}
	if err := s.Repo.UpdateModule(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *CourseService) DeleteModule(moduleID string) error {
	return s.Repo.DeleteModule(moduleID)
}

// ModuleView 课程大纲中的模块视图，课时带上当前用户的完成标记
type LessonView struct {
	model.Lesson
	Completed bool `json:"completed"`
}

type ModuleView struct {
	model.CourseModule
	Lessons []LessonView `json:"lessons"`
}

type CourseOutline struct {
	Course  *model.Course `json:"course"`
	Modules []ModuleView  `json:"modules"`
	// 已完成课时 / 总课时
	CompletedLessons int `json:"completedLessons"`
	TotalLessons     int `json:"totalLessons"`
}

func (s *CourseService) GetOutline(userID uint, courseID string) (*CourseOutline, error) {
	course, err := s.Get(courseID)
	if err != nil {
		return nil, err
	}

	modules, err := s.Repo.ListModules(courseID)
	if err != nil {
		return nil, err
	}

	outline := &CourseOutline{Course: course}
	var lessonIDs []string
	for _, m := range modules {
		lessons, err := s.LessonRepo.ListByModule(m.ID)
		if err != nil {
			return nil, err
		}
		mv := ModuleView{CourseModule: m}
		for _, l := range lessons {
			lessonIDs = append(lessonIDs, l.ID)
			mv.Lessons = append(mv.Lessons, LessonView{Lesson: l})
		}
		outline.Modules = append(outline.Modules, mv)
	}
	outline.TotalLessons = len(lessonIDs)

	completed, err := s.Progress.ListCompletedLessonIDs(userID, lessonIDs)
	if err != nil {
		return nil, err
	}
	completedSet := make(map[string]bool, len(completed))
	for _, id := range completed {
		completedSet[id] = true
	}
	for i := range outline.Modules {
		for j := range outline.Modules[i].Lessons {
			if completedSet[outline.Modules[i].Lessons[j].ID] {
				outline.Modules[i].Lessons[j].Completed = true
				outline.CompletedLessons++
			}
		}
	}

	return outline, nil
}

func (s *CourseService) Enroll(userID uint, courseID string) (*model.Enrollment, error) {
	if _, err := s.Repo.FindByID(courseID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	if _, err := s.EnrollRepo.Find(userID, courseID); err == nil {
		return nil, util.ErrAlreadyEnrolled
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	e := &model.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now(),
	}
	if err := s.EnrollRepo.Create(e); err != nil {
		return nil, err
	}
	return e, nil
}

// EnrolledCourse 我的课程列表项，带完成进度与证书存在标记
type EnrolledCourse struct {
	Course           model.Course `json:"course"`
	EnrolledAt       time.Time    `json:"enrolledAt"`
	CompletedLessons int64        `json:"completedLessons"`
	TotalLessons     int64        `json:"totalLessons"`
	HasCertificate   bool         `json:"hasCertificate"`
}

func (s *CourseService) ListEnrolled(userID uint) ([]EnrolledCourse, error) {
	enrollments, err := s.EnrollRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	var result []EnrolledCourse
	for _, e := range enrollments {
		course, err := s.Repo.FindByID(e.CourseID)
		if err != nil {
			continue // 课程可能已下架
		}

		total, err := s.Repo.CountLessons(e.CourseID)
		if err != nil {
			return nil, err
		}
		done, err := s.Progress.CountCompletedInCourse(userID, e.CourseID)
		if err != nil {
			return nil, err
		}

		hasCert := false
		if _, err := s.Certs.FindByUserAndCourse(userID, e.CourseID); err == nil {
			hasCert = true
		}

		result = append(result, EnrolledCourse{
			Course:           *course,
			EnrolledAt:       e.EnrolledAt,
			CompletedLessons: done,
			TotalLessons:     total,
			HasCertificate:   hasCert,
		})
	}
	return result, nil
}

// MarkLessonComplete 手动完成（无测验的课时）；幂等，且仅限已报名课程的学员
func (s *CourseService) MarkLessonComplete(userID uint, lessonID string) error {
	if _, err := s.LessonRepo.FindByID(lessonID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrLessonNotFound
		}
		return err
	}

	courseID, err := s.Repo.FindCourseIDByLesson(lessonID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrLessonNotFound
		}
		return err
	}
	if err := s.EnsureEnrolled(userID, courseID); err != nil {
		return err
	}

	return s.Progress.Upsert(userID, lessonID)
}

// HasPassedQuizInCourse 证书入口的资格门槛
func (s *CourseService) HasPassedQuizInCourse(userID uint, courseID string) (bool, error) {
	return s.QuizRepo.HasPassedAttemptInCourse(userID, courseID)
}

type LessonReq struct {
	Title     *string `json:"title"`
	Body      *string `json:"body"`
	SortOrder *int    `json:"sortOrder"`
}

func (s *CourseService) CreateLesson(moduleID string, req LessonReq) (*model.Lesson, error) {
	if _, err := s.Repo.FindModuleByID(moduleID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	if req.Title == nil || *req.Title == "" {
		return nil, errors.New("title is required")
	}

	lesson := &model.Lesson{
		ModuleID: moduleID,
		Title:    *req.Title,
	}
	if req.Body != nil {
		lesson.Body = *req.Body
	}
	if req.SortOrder != nil {
		lesson.SortOrder = *req.SortOrder
	}

	if err := s.LessonRepo.Create(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *CourseService) UpdateLesson(lessonID string, req LessonReq) (*model.Lesson, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}

	if req.Title != nil && *req.Title != "" {
		lesson.Title = *req.Title
	}
	if req.Body != nil {
		lesson.Body = *req.Body
	}
	if req.SortOrder != nil {
		lesson.SortOrder = *req.SortOrder
	}

	if err := s.LessonRepo.Update(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *CourseService) DeleteLesson(lessonID string) error {
	return s.LessonRepo.Delete(lessonID)
}

func (s *CourseService) GetLesson(lessonID string) (*model.Lesson, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrLessonNotFound
	}
	return lesson, err
}

func (s *CourseService) ListLessonResources(lessonID string) ([]model.LessonResource, error) {
	if _, err := s.LessonRepo.FindByID(lessonID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}
	return s.LessonRepo.ListResources(lessonID)
}

func (s *CourseService) DeleteLessonResource(resourceID string) error {
	return s.LessonRepo.DeleteResource(resourceID)
}

// EnsureEnrolled 校验用户已报名课程
func (s *CourseService) EnsureEnrolled(userID uint, courseID string) error {
	_, err := s.EnrollRepo.Find(userID, courseID)
	if err == gorm.ErrRecordNotFound {
		return util.ErrNotEnrolled
	}
	return err
}

// ListPublic 游客可见的目录：已发布且面向外部经销商的课程
func (s *CourseService) ListPublic(page, limit int) ([]model.Course, int64, error) {
	return s.Repo.List(model.AudienceExternal, true, page, limit)
}
