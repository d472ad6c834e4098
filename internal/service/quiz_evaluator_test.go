package service

import (
	"anchor_lms_backend/internal/model"
	"anchor_lms_backend/internal/util"
	"errors"
	"testing"
)

func question(id string) model.QuizQuestion {
	return model.QuizQuestion{UUIDBase: model.UUIDBase{ID: id}}
}

func option(id, questionID string, correct bool) model.QuizOption {
	return model.QuizOption{
		UUIDBase:   model.UUIDBase{ID: id},
		QuestionID: questionID,
		IsCorrect:  correct,
	}
}

// 三道单选题，每题一个正确选项
func threeQuestionQuiz() ([]model.QuizQuestion, map[string][]model.QuizOption) {
	questions := []model.QuizQuestion{question("q1"), question("q2"), question("q3")}
	options := map[string][]model.QuizOption{
		"q1": {option("q1a", "q1", true), option("q1b", "q1", false)},
		"q2": {option("q2a", "q2", false), option("q2b", "q2", true)},
		"q3": {option("q3a", "q3", true), option("q3b", "q3", false)},
	}
	return questions, options
}

func intPtr(v int) *int { return &v }

func TestEvaluateQuizPerfectScore(t *testing.T) {
	questions, options := threeQuestionQuiz()
	answers := map[string]string{"q1": "q1a", "q2": "q2b", "q3": "q3a"}

	result, err := EvaluateQuiz(questions, options, answers, nil)
	if err != nil {
		t.Fatalf("EvaluateQuiz: %v", err)
	}
	if result.Correct != 3 || result.Total != 3 {
		t.Errorf("got %d/%d, want 3/3", result.Correct, result.Total)
	}
	if !result.Passed {
		t.Error("perfect score should pass")
	}
}

func TestEvaluateQuizDefaultThresholdIsTotal(t *testing.T) {
	questions, options := threeQuestionQuiz()
	// 两对一错，passScore 未设置时要求满分
	answers := map[string]string{"q1": "q1a", "q2": "q2b", "q3": "q3b"}

	result, err := EvaluateQuiz(questions, options, answers, nil)
	if err != nil {
		t.Fatalf("EvaluateQuiz: %v", err)
	}
	if result.Correct != 2 {
		t.Errorf("Correct = %d, want 2", result.Correct)
	}
	if result.PassScore != 3 {
		t.Errorf("PassScore = %d, want 3", result.PassScore)
	}
	if result.Passed {
		t.Error("2/3 must not pass when threshold defaults to total")
	}
}

func TestEvaluateQuizExplicitThreshold(t *testing.T) {
	questions, options := threeQuestionQuiz()
	answers := map[string]string{"q1": "q1a", "q2": "q2b", "q3": "q3b"}

	result, err := EvaluateQuiz(questions, options, answers, intPtr(2))
	if err != nil {
		t.Fatalf("EvaluateQuiz: %v", err)
	}
	if !result.Passed {
		t.Errorf("2 correct with threshold 2 should pass, got %+v", result)
	}
}

func TestEvaluateQuizZeroThresholdAlwaysPasses(t *testing.T) {
	questions, options := threeQuestionQuiz()
	// 全错
	answers := map[string]string{"q1": "q1b", "q2": "q2a", "q3": "q3b"}

	result, err := EvaluateQuiz(questions, options, answers, intPtr(0))
	if err != nil {
		t.Fatalf("EvaluateQuiz: %v", err)
	}
	if result.Correct != 0 {
		t.Errorf("Correct = %d, want 0", result.Correct)
	}
	if !result.Passed {
		t.Error("threshold 0 should pass regardless of score")
	}
}

func TestEvaluateQuizIncompleteSubmission(t *testing.T) {
	questions, options := threeQuestionQuiz()

	cases := []struct {
		name    string
		answers map[string]string
	}{
		{"missing one", map[string]string{"q1": "q1a", "q2": "q2b"}},
		{"empty answer value", map[string]string{"q1": "q1a", "q2": "q2b", "q3": ""}},
		{"no answers", map[string]string{}},
		{"nil answers", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := EvaluateQuiz(questions, options, tc.answers, nil)
			if !errors.Is(err, util.ErrIncompleteSubmission) {
				t.Errorf("err = %v, want ErrIncompleteSubmission", err)
			}
		})
	}
}

func TestEvaluateQuizForeignOptionScoredIncorrect(t *testing.T) {
	questions, options := threeQuestionQuiz()
	// q2 答了属于 q1 的选项，q3 答了完全不存在的选项 id
	answers := map[string]string{"q1": "q1a", "q2": "q1a", "q3": "nonexistent"}

	result, err := EvaluateQuiz(questions, options, answers, nil)
	if err != nil {
		t.Fatalf("unknown option ids must not error, got %v", err)
	}
	if result.Correct != 1 {
		t.Errorf("Correct = %d, want 1", result.Correct)
	}
	if result.Passed {
		t.Error("should not pass")
	}
}

func TestEvaluateQuizQuestionWithoutCorrectOption(t *testing.T) {
	questions := []model.QuizQuestion{question("q1")}
	options := map[string][]model.QuizOption{
		"q1": {option("q1a", "q1", false), option("q1b", "q1", false)},
	}

	for _, chosen := range []string{"q1a", "q1b"} {
		result, err := EvaluateQuiz(questions, options, map[string]string{"q1": chosen}, nil)
		if err != nil {
			t.Fatalf("EvaluateQuiz: %v", err)
		}
		if result.Correct != 0 {
			t.Errorf("chosen %s: Correct = %d, want 0", chosen, result.Correct)
		}
	}
}

func TestEvaluateQuizEmptyQuestionSet(t *testing.T) {
	result, err := EvaluateQuiz(nil, nil, map[string]string{}, nil)
	if err != nil {
		t.Fatalf("EvaluateQuiz: %v", err)
	}
	if result.Total != 0 || result.Correct != 0 {
		t.Errorf("got %+v, want zero totals", result)
	}
	// 0 >= 0，空测验视为通过
	if !result.Passed {
		t.Error("empty quiz should pass against threshold 0")
	}
}

func TestEvaluateQuizDeterministic(t *testing.T) {
	questions, options := threeQuestionQuiz()
	answers := map[string]string{"q1": "q1a", "q2": "q2a", "q3": "q3a"}

	first, err := EvaluateQuiz(questions, options, answers, intPtr(2))
	if err != nil {
		t.Fatalf("EvaluateQuiz: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := EvaluateQuiz(questions, options, answers, intPtr(2))
		if err != nil {
			t.Fatalf("EvaluateQuiz: %v", err)
		}
		if again != first {
			t.Fatalf("run %d: got %+v, want %+v", i, again, first)
		}
	}
}

func TestGroupOptionsByQuestion(t *testing.T) {
	flat := []model.QuizOption{
		option("a", "q1", true),
		option("b", "q2", false),
		option("c", "q1", false),
	}

	grouped := GroupOptionsByQuestion(flat)
	if len(grouped["q1"]) != 2 {
		t.Errorf("q1 options = %d, want 2", len(grouped["q1"]))
	}
	if len(grouped["q2"]) != 1 {
		t.Errorf("q2 options = %d, want 1", len(grouped["q2"]))
	}
}
