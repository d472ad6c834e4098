package service

import (
	"anchor_lms_backend/internal/model"
	"anchor_lms_backend/internal/util"
)

// ScoreResult 一次测验提交的评分结果
type ScoreResult struct {
	Correct   int  `json:"correct"`
	Total     int  `json:"total"`
	PassScore int  `json:"passScore"`
	Passed    bool `json:"passed"`
}

// EvaluateQuiz 对一次提交评分。纯函数，无任何 I/O。
//
// answers 必须覆盖全部题目，缺答直接返回 ErrIncompleteSubmission，不做部分计分。
// 选项 id 不属于该题或不存在时按答错处理，不报错；没有正确选项的题目任何作答都不得分。
// passScore 为 nil 时按题目总数计，即要求满分。
func EvaluateQuiz(questions []model.QuizQuestion, optionsByQuestion map[string][]model.QuizOption, answers map[string]string, passScore *int) (ScoreResult, error) {
	for _, q := range questions {
		if answers[q.ID] == "" {
			return ScoreResult{}, util.ErrIncompleteSubmission
		}
	}

	correct := 0
	for _, q := range questions {
		chosen := answers[q.ID]
		for _, o := range optionsByQuestion[q.ID] {
			if o.ID == chosen {
				if o.IsCorrect {
					correct++
				}
				break
			}
		}
	}

	threshold := len(questions)
	if passScore != nil {
		threshold = *passScore
	}

	return ScoreResult{
		Correct:   correct,
		Total:     len(questions),
		PassScore: threshold,
		Passed:    correct >= threshold,
	}, nil
}

// GroupOptionsByQuestion 把平铺的选项列表按题目分组，喂给 EvaluateQuiz
func GroupOptionsByQuestion(options []model.QuizOption) map[string][]model.QuizOption {
	grouped := make(map[string][]model.QuizOption, len(options))
	for _, o := range options {
		grouped[o.QuestionID] = append(grouped[o.QuestionID], o)
	}
	return grouped
}
