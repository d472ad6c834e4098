package service

import (
	"anchor_lms_backend/internal/model"
	"anchor_lms_backend/internal/repository"
	"anchor_lms_backend/internal/util"
	"anchor_lms_backend/pkg/logger"
	"anchor_lms_backend/pkg/monitoring"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuizStore 测验读写的存储面，生产实现是 *repository.QuizRepository
type QuizStore interface {
	FindByLesson(lessonID string) (*model.Quiz, error)
	Create(quiz *model.Quiz) error
	Update(quiz *model.Quiz) error
	ListQuestions(quizID string) ([]model.QuizQuestion, error)
	CreateQuestion(q *model.QuizQuestion) error
	UpdateQuestion(q *model.QuizQuestion) error
	DeleteQuestion(id string) error
	ListOptions(questionIDs []string) ([]model.QuizOption, error)
	CreateOption(o *model.QuizOption) error
	UpdateOption(o *model.QuizOption) error
	DeleteOption(id string) error
	CreateAttempt(attempt *model.QuizAttempt) error
	ListAttempts(userID uint, quizID string) ([]model.QuizAttempt, error)
}

// LessonFinder 校验课时存在性
type LessonFinder interface {
	FindByID(id string) (*model.Lesson, error)
}

// ProgressMarker 幂等写入课时完成记录
type ProgressMarker interface {
	Upsert(userID uint, lessonID string) error
}

type QuizService struct {
	Repo         QuizStore
	LessonRepo   LessonFinder
	ProgressRepo ProgressMarker
}

func NewQuizService(repo *repository.QuizRepository, lessonRepo *repository.LessonRepository, progressRepo *repository.ProgressRepository) *QuizService {
	return &QuizService{
		Repo:         repo,
		LessonRepo:   lessonRepo,
		ProgressRepo: progressRepo,
	}
}

// QuizOptionView 下发给学员的选项视图，不携带 IsCorrect
type QuizOptionView struct {
	ID         string `json:"id"`
	OptionText string `json:"optionText"`
	SortOrder  int    `json:"sortOrder"`
}

type QuizQuestionView struct {
	ID           string           `json:"id"`
	QuestionText string           `json:"questionText"`
	SortOrder    int              `json:"sortOrder"`
	Options      []QuizOptionView `json:"options"`
}

type QuizView struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	PassScore   *int               `json:"passScore"`
	MaxAttempts *int               `json:"maxAttempts"`
	Questions   []QuizQuestionView `json:"questions"`
}

// GetQuizForLesson 学员视角的测验详情，答案不出库到响应
func (s *QuizService) GetQuizForLesson(lessonID string) (*QuizView, error) {
	quiz, err := s.Repo.FindByLesson(lessonID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	questions, err := s.Repo.ListQuestions(quiz.ID)
	if err != nil {
		return nil, err
	}

	questionIDs := make([]string, len(questions))
	for i, q := range questions {
		questionIDs[i] = q.ID
	}
	options, err := s.Repo.ListOptions(questionIDs)
	if err != nil {
		return nil, err
	}

	grouped := GroupOptionsByQuestion(options)
	view := &QuizView{
		ID:          quiz.ID,
		Title:       quiz.Title,
		PassScore:   quiz.PassScore,
		MaxAttempts: quiz.MaxAttempts,
	}
	for _, q := range questions {
		qv := QuizQuestionView{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			SortOrder:    q.SortOrder,
		}
		for _, o := range grouped[q.ID] {
			qv.Options = append(qv.Options, QuizOptionView{
				ID:         o.ID,
				OptionText: o.OptionText,
				SortOrder:  o.SortOrder,
			})
		}
		view.Questions = append(view.Questions, qv)
	}
	return view, nil
}

type QuizSubmission struct {
	// 题目 id -> 所选选项 id
	Answers   map[string]string `json:"answers" binding:"required"`
	StartedAt *time.Time        `json:"startedAt"`
}

type SubmitResult struct {
	ScoreResult
	Message string `json:"message"`
}

// Submit 评分并落库：先记录本次提交，通过时再幂等标记课时完成。
// 进度写失败不回滚成绩，只记日志——测验通过状态独立于后续动作是否成功。
func (s *QuizService) Submit(userID uint, lessonID string, submission QuizSubmission) (*SubmitResult, error) {
	quiz, err := s.Repo.FindByLesson(lessonID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	questions, err := s.Repo.ListQuestions(quiz.ID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.ErrQuizHasNoQuestions
	}

	questionIDs := make([]string, len(questions))
	for i, q := range questions {
		questionIDs[i] = q.ID
	}
	options, err := s.Repo.ListOptions(questionIDs)
	if err != nil {
		return nil, err
	}

	score, err := EvaluateQuiz(questions, GroupOptionsByQuestion(options), submission.Answers, quiz.PassScore)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	startedAt := now
	if submission.StartedAt != nil {
		startedAt = *submission.StartedAt
	}

	rawAnswers, err := json.Marshal(submission.Answers)
	if err != nil {
		return nil, err
	}

	attempt := &model.QuizAttempt{
		UserID:      userID,
		QuizID:      quiz.ID,
		Score:       score.Correct,
		Total:       score.Total,
		Passed:      score.Passed,
		RawAnswers:  rawAnswers,
		StartedAt:   startedAt,
		SubmittedAt: now,
	}
	if err := s.Repo.CreateAttempt(attempt); err != nil {
		return nil, err
	}

	result := "failed"
	if score.Passed {
		result = "passed"
		if err := s.ProgressRepo.Upsert(userID, lessonID); err != nil {
			logger.Log.Error("failed to mark lesson progress",
				zap.Uint("userId", userID),
				zap.String("lessonId", lessonID),
				zap.Error(err))
		}
	}
	monitoring.QuizSubmissions.WithLabelValues(result).Inc()

	message := fmt.Sprintf("You passed! You answered %d of %d correctly.", score.Correct, score.Total)
	if !score.Passed {
		message = fmt.Sprintf("You scored %d of %d. You need at least %d correct to pass.", score.Correct, score.Total, score.PassScore)
	}

	return &SubmitResult{ScoreResult: score, Message: message}, nil
}

func (s *QuizService) ListAttempts(userID uint, quizID string) ([]model.QuizAttempt, error) {
	return s.Repo.ListAttempts(userID, quizID)
}

type QuizOptionReq struct {
	ID         string `json:"id"`
	OptionText string `json:"optionText" binding:"required"`
	IsCorrect  bool   `json:"isCorrect"`
	SortOrder  int    `json:"sortOrder"`
}

type QuizQuestionReq struct {
	ID           string          `json:"id"`
	QuestionText string          `json:"questionText" binding:"required"`
	SortOrder    int             `json:"sortOrder"`
	Options      []QuizOptionReq `json:"options"`
}

type QuizReq struct {
	Title       *string            `json:"title"`
	PassScore   *int               `json:"passScore"`
	MaxAttempts *int               `json:"maxAttempts"`
	Questions   *[]QuizQuestionReq `json:"questions"`
}

// UpsertForLesson 课程作者维护测验；问题集合整体对账（新增/更新/删除缺失项）
func (s *QuizService) UpsertForLesson(lessonID string, req QuizReq) (*model.Quiz, error) {
	if _, err := s.LessonRepo.FindByID(lessonID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}

	quiz, err := s.Repo.FindByLesson(lessonID)
	if err == gorm.ErrRecordNotFound {
		quiz = &model.Quiz{LessonID: lessonID}
		if req.Title != nil {
			quiz.Title = *req.Title
		}
		quiz.PassScore = req.PassScore
		quiz.MaxAttempts = req.MaxAttempts
		if err := s.Repo.Create(quiz); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	} else {
		if req.Title != nil {
			quiz.Title = *req.Title
		}
		if req.PassScore != nil {
			quiz.PassScore = req.PassScore
		}
		if req.MaxAttempts != nil {
			quiz.MaxAttempts = req.MaxAttempts
		}
		if err := s.Repo.Update(quiz); err != nil {
			return nil, err
		}
	}

	if req.Questions == nil {
		return quiz, nil
	}

	existing, err := s.Repo.ListQuestions(quiz.ID)
	if err != nil {
		return nil, err
	}
	existingMap := make(map[string]*model.QuizQuestion, len(existing))
	for i := range existing {
		existingMap[existing[i].ID] = &existing[i]
	}

	kept := make(map[string]bool)
	for _, qReq := range *req.Questions {
		var question *model.QuizQuestion
		if qReq.ID != "" {
			if q, ok := existingMap[qReq.ID]; ok {
				q.QuestionText = qReq.QuestionText
				q.SortOrder = qReq.SortOrder
				if err := s.Repo.UpdateQuestion(q); err != nil {
					return nil, err
				}
				question = q
				kept[q.ID] = true
			}
		}
		if question == nil {
			question = &model.QuizQuestion{
				QuizID:       quiz.ID,
				QuestionText: qReq.QuestionText,
				SortOrder:    qReq.SortOrder,
			}
			if err := s.Repo.CreateQuestion(question); err != nil {
				return nil, err
			}
		}

		if err := s.reconcileOptions(question.ID, qReq.Options); err != nil {
			return nil, err
		}
	}

	for id := range existingMap {
		if !kept[id] {
			if err := s.Repo.DeleteQuestion(id); err != nil {
				return nil, err
			}
		}
	}

	return quiz, nil
}

func (s *QuizService) reconcileOptions(questionID string, reqs []QuizOptionReq) error {
	existing, err := s.Repo.ListOptions([]string{questionID})
	if err != nil {
		return err
	}
	existingMap := make(map[string]*model.QuizOption, len(existing))
	for i := range existing {
		existingMap[existing[i].ID] = &existing[i]
	}

	kept := make(map[string]bool)
	for _, oReq := range reqs {
		if oReq.ID != "" {
			if o, ok := existingMap[oReq.ID]; ok {
				o.OptionText = oReq.OptionText
				o.IsCorrect = oReq.IsCorrect
				o.SortOrder = oReq.SortOrder
				if err := s.Repo.UpdateOption(o); err != nil {
					return err
				}
				kept[o.ID] = true
				continue
			}
		}
		o := &model.QuizOption{
			QuestionID: questionID,
			OptionText: oReq.OptionText,
			IsCorrect:  oReq.IsCorrect,
			SortOrder:  oReq.SortOrder,
		}
		if err := s.Repo.CreateOption(o); err != nil {
			return err
		}
	}

	for id := range existingMap {
		if !kept[id] {
			if err := s.Repo.DeleteOption(id); err != nil {
				return err
			}
		}
	}
	return nil
}
