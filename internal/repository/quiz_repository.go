package repository

import (
	"anchor_lms_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) Create(quiz *model.Quiz) error {
	return r.DB.Create(quiz).Error
}

func (r *QuizRepository) FindByID(id string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.First(&quiz, "id = ?", id).Error
	return &quiz, err
}

func (r *QuizRepository) FindByLesson(lessonID string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.Where("lesson_id = ?", lessonID).First(&quiz).Error
	return &quiz, err
}

func (r *QuizRepository) Update(quiz *model.Quiz) error {
	return r.DB.Save(quiz).Error
}

func (r *QuizRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var questionIDs []string
		if err := tx.Model(&model.QuizQuestion{}).Where("quiz_id = ?", id).Pluck("id", &questionIDs).Error; err != nil {
			return err
		}
		if len(questionIDs) > 0 {
			if err := tx.Where("question_id IN ?", questionIDs).Delete(&model.QuizOption{}).Error; err != nil {
				return err
			}
			if err := tx.Where("quiz_id = ?", id).Delete(&model.QuizQuestion{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.Quiz{}, "id = ?", id).Error
	})
}

func (r *QuizRepository) CreateQuestion(q *model.QuizQuestion) error {
	return r.DB.Create(q).Error
}

func (r *QuizRepository) UpdateQuestion(q *model.QuizQuestion) error {
	return r.DB.Save(q).Error
}

func (r *QuizRepository) DeleteQuestion(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&model.QuizOption{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.QuizQuestion{}, "id = ?", id).Error
	})
}

func (r *QuizRepository) ListQuestions(quizID string) ([]model.QuizQuestion, error) {
	var questions []model.QuizQuestion
	err := r.DB.Where("quiz_id = ?", quizID).Order("sort_order asc").Find(&questions).Error
	return questions, err
}

func (r *QuizRepository) CreateOption(o *model.QuizOption) error {
	return r.DB.Create(o).Error
}

func (r *QuizRepository) UpdateOption(o *model.QuizOption) error {
	return r.DB.Save(o).Error
}

func (r *QuizRepository) DeleteOption(id string) error {
	return r.DB.Delete(&model.QuizOption{}, "id = ?", id).Error
}

func (r *QuizRepository) ListOptions(questionIDs []string) ([]model.QuizOption, error) {
	if len(questionIDs) == 0 {
		return nil, nil
	}
	var options []model.QuizOption
	err := r.DB.Where("question_id IN ?", questionIDs).Order("sort_order asc").Find(&options).Error
	return options, err
}

func (r *QuizRepository) CreateAttempt(attempt *model.QuizAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *QuizRepository) ListAttempts(userID uint, quizID string) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("submitted_at desc").Find(&attempts).Error
	return attempts, err
}

// HasPassedAttemptInCourse 用户是否在某课程的任一测验里有通过记录，证书生成前的资格校验
func (r *QuizRepository) HasPassedAttemptInCourse(userID uint, courseID string) (bool, error) {
	var count int64
	err := r.DB.Table("quiz_attempts a").
		Joins("JOIN quizzes q ON a.quiz_id = q.id").
		Joins("JOIN lessons l ON q.lesson_id = l.id").
		Joins("JOIN course_modules m ON l.module_id = m.id").
		Where("a.user_id = ? AND m.course_id = ? AND a.passed = ? AND a.deleted_at IS NULL", userID, courseID, true).
		Count(&count).Error
	return count > 0, err
}

// CountAttemptStats 课程级的提交/通过统计，供管理端报表使用
func (r *QuizRepository) CountAttemptStats(courseID string) (total int64, passed int64, err error) {
	base := r.DB.Table("quiz_attempts a").
		Joins("JOIN quizzes q ON a.quiz_id = q.id").
		Joins("JOIN lessons l ON q.lesson_id = l.id").
		Joins("JOIN course_modules m ON l.module_id = m.id").
		Where("m.course_id = ? AND a.deleted_at IS NULL", courseID)

	if err = base.Count(&total).Error; err != nil {
		return 0, 0, err
	}
	err = base.Where("a.passed = ?", true).Count(&passed).Error
	return total, passed, err
}
