package service

import (
	"anchor_lms_backend/internal/model"
	"anchor_lms_backend/internal/util"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"
)

// fakeQuizStore 内存测验存储，只实现提交路径用到的方法
type fakeQuizStore struct {
	quiz             *model.Quiz
	questions        []model.QuizQuestion
	options          []model.QuizOption
	attempts         []*model.QuizAttempt
	createAttemptErr error
}

func (f *fakeQuizStore) FindByLesson(lessonID string) (*model.Quiz, error) {
	if f.quiz == nil || f.quiz.LessonID != lessonID {
		return nil, gorm.ErrRecordNotFound
	}
	return f.quiz, nil
}

func (f *fakeQuizStore) ListQuestions(quizID string) ([]model.QuizQuestion, error) {
	return f.questions, nil
}

func (f *fakeQuizStore) ListOptions(questionIDs []string) ([]model.QuizOption, error) {
	return f.options, nil
}

func (f *fakeQuizStore) CreateAttempt(attempt *model.QuizAttempt) error {
	if f.createAttemptErr != nil {
		return f.createAttemptErr
	}
	f.attempts = append(f.attempts, attempt)
	return nil
}

func (f *fakeQuizStore) ListAttempts(userID uint, quizID string) ([]model.QuizAttempt, error) {
	var out []model.QuizAttempt
	for _, a := range f.attempts {
		if a.UserID == userID && a.QuizID == quizID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeQuizStore) Create(quiz *model.Quiz) error { return errors.New("not used") }

func (f *fakeQuizStore) Update(quiz *model.Quiz) error { return errors.New("not used") }

func (f *fakeQuizStore) CreateQuestion(q *model.QuizQuestion) error { return errors.New("not used") }

func (f *fakeQuizStore) UpdateQuestion(q *model.QuizQuestion) error { return errors.New("not used") }

func (f *fakeQuizStore) DeleteQuestion(id string) error { return errors.New("not used") }

func (f *fakeQuizStore) CreateOption(o *model.QuizOption) error { return errors.New("not used") }

func (f *fakeQuizStore) UpdateOption(o *model.QuizOption) error { return errors.New("not used") }

func (f *fakeQuizStore) DeleteOption(id string) error { return errors.New("not used") }

type fakeProgressMarker struct {
	upserts []string
	err     error
}

func (f *fakeProgressMarker) Upsert(userID uint, lessonID string) error {
	if f.err != nil {
		return f.err
	}
	f.upserts = append(f.upserts, fmt.Sprintf("%d/%s", userID, lessonID))
	return nil
}

func newSubmitFixture(passScore *int) (*QuizService, *fakeQuizStore, *fakeProgressMarker) {
	questions, grouped := threeQuestionQuiz()
	var options []model.QuizOption
	for _, q := range questions {
		options = append(options, grouped[q.ID]...)
	}

	store := &fakeQuizStore{
		quiz: &model.Quiz{
			UUIDBase:  model.UUIDBase{ID: "quiz-1"},
			LessonID:  "lesson-1",
			PassScore: passScore,
		},
		questions: questions,
		options:   options,
	}
	progress := &fakeProgressMarker{}
	return &QuizService{Repo: store, ProgressRepo: progress}, store, progress
}

func TestQuizSubmitPersistsAttemptAndMarksProgress(t *testing.T) {
	svc, store, progress := newSubmitFixture(intPtr(2))
	answers := map[string]string{"q1": "q1a", "q2": "q2b", "q3": "q3a"}

	result, err := svc.Submit(7, "lesson-1", QuizSubmission{Answers: answers})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !result.Passed || result.Correct != 3 {
		t.Fatalf("got %d correct passed=%v, want 3 correct passed", result.Correct, result.Passed)
	}

	if len(store.attempts) != 1 {
		t.Fatalf("got %d attempts, want 1", len(store.attempts))
	}
	attempt := store.attempts[0]
	if attempt.UserID != 7 || attempt.QuizID != "quiz-1" {
		t.Errorf("attempt recorded for user %d quiz %q", attempt.UserID, attempt.QuizID)
	}
	if attempt.Score != 3 || attempt.Total != 3 || !attempt.Passed {
		t.Errorf("attempt recorded %d/%d passed=%v", attempt.Score, attempt.Total, attempt.Passed)
	}
	if attempt.SubmittedAt.IsZero() {
		t.Error("SubmittedAt not set")
	}
	if !attempt.StartedAt.Equal(attempt.SubmittedAt) {
		t.Error("StartedAt should default to SubmittedAt when not provided")
	}

	var recorded map[string]string
	if err := json.Unmarshal(attempt.RawAnswers, &recorded); err != nil {
		t.Fatalf("RawAnswers: %v", err)
	}
	for q, o := range answers {
		if recorded[q] != o {
			t.Errorf("RawAnswers[%s] = %q, want %q", q, recorded[q], o)
		}
	}

	if len(progress.upserts) != 1 || progress.upserts[0] != "7/lesson-1" {
		t.Errorf("got progress upserts %v, want exactly 7/lesson-1", progress.upserts)
	}
}

func TestQuizSubmitFailedAttemptSkipsProgress(t *testing.T) {
	svc, store, progress := newSubmitFixture(intPtr(2))
	// 只对一题，未达到及格线
	answers := map[string]string{"q1": "q1a", "q2": "q2a", "q3": "q3b"}

	result, err := svc.Submit(7, "lesson-1", QuizSubmission{Answers: answers})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Passed {
		t.Fatal("1 of 3 with threshold 2 should not pass")
	}

	if len(store.attempts) != 1 || store.attempts[0].Passed {
		t.Errorf("failed attempt should still be recorded, got %d", len(store.attempts))
	}
	if len(progress.upserts) != 0 {
		t.Errorf("progress marked on failed attempt: %v", progress.upserts)
	}
}

func TestQuizSubmitProgressFailureDoesNotFailSubmission(t *testing.T) {
	svc, store, progress := newSubmitFixture(intPtr(2))
	progress.err = errors.New("db down")
	answers := map[string]string{"q1": "q1a", "q2": "q2b", "q3": "q3a"}

	result, err := svc.Submit(7, "lesson-1", QuizSubmission{Answers: answers})
	if err != nil {
		t.Fatalf("Submit should not surface progress errors, got: %v", err)
	}
	if !result.Passed {
		t.Error("pass result lost when progress write failed")
	}
	if len(store.attempts) != 1 {
		t.Errorf("got %d attempts, want 1", len(store.attempts))
	}
}

func TestQuizSubmitAttemptPersistFailure(t *testing.T) {
	svc, store, progress := newSubmitFixture(intPtr(2))
	store.createAttemptErr = errors.New("insert failed")
	answers := map[string]string{"q1": "q1a", "q2": "q2b", "q3": "q3a"}

	if _, err := svc.Submit(7, "lesson-1", QuizSubmission{Answers: answers}); err == nil {
		t.Fatal("expected error when attempt insert fails")
	}
	if len(progress.upserts) != 0 {
		t.Errorf("progress marked despite attempt persist failure: %v", progress.upserts)
	}
}

func TestQuizSubmitIncompleteSubmissionNotRecorded(t *testing.T) {
	svc, store, progress := newSubmitFixture(intPtr(2))
	answers := map[string]string{"q1": "q1a", "q2": "q2b"}

	_, err := svc.Submit(7, "lesson-1", QuizSubmission{Answers: answers})
	if !errors.Is(err, util.ErrIncompleteSubmission) {
		t.Fatalf("got %v, want ErrIncompleteSubmission", err)
	}
	if len(store.attempts) != 0 || len(progress.upserts) != 0 {
		t.Error("incomplete submission must not persist anything")
	}
}

func TestQuizSubmitQuizNotFound(t *testing.T) {
	svc := &QuizService{Repo: &fakeQuizStore{}, ProgressRepo: &fakeProgressMarker{}}

	_, err := svc.Submit(7, "lesson-x", QuizSubmission{Answers: map[string]string{}})
	if !errors.Is(err, util.ErrQuizNotFound) {
		t.Fatalf("got %v, want ErrQuizNotFound", err)
	}
}

func TestQuizSubmitNoQuestions(t *testing.T) {
	store := &fakeQuizStore{
		quiz: &model.Quiz{UUIDBase: model.UUIDBase{ID: "quiz-1"}, LessonID: "lesson-1"},
	}
	svc := &QuizService{Repo: store, ProgressRepo: &fakeProgressMarker{}}

	_, err := svc.Submit(7, "lesson-1", QuizSubmission{Answers: map[string]string{}})
	if !errors.Is(err, util.ErrQuizHasNoQuestions) {
		t.Fatalf("got %v, want ErrQuizHasNoQuestions", err)
	}
	if len(store.attempts) != 0 {
		t.Error("no attempt should be recorded for an empty quiz")
	}
}
