package repository

import (
	"anchor_lms_backend/internal/model"

	"gorm.io/gorm"
)

type LessonRepository struct {
	DB *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{DB: db}
}

func (r *LessonRepository) Create(lesson *model.Lesson) error {
	return r.DB.Create(lesson).Error
}

func (r *LessonRepository) FindByID(id string) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.First(&lesson, "id = ?", id).Error
	return &lesson, err
}

func (r *LessonRepository) Update(lesson *model.Lesson) error {
	return r.DB.Save(lesson).Error
}

func (r *LessonRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lesson_id = ?", id).Delete(&model.LessonResource{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Lesson{}, "id = ?", id).Error
	})
}

func (r *LessonRepository) ListByModule(moduleID string) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.Where("module_id = ?", moduleID).Order("sort_order asc, created_at asc").Find(&lessons).Error
	return lessons, err
}

func (r *LessonRepository) CreateResource(res *model.LessonResource) error {
	return r.DB.Create(res).Error
}

func (r *LessonRepository) DeleteResource(id string) error {
	return r.DB.Delete(&model.LessonResource{}, "id = ?", id).Error
}

func (r *LessonRepository) ListResources(lessonID string) ([]model.LessonResource, error) {
	var resources []model.LessonResource
	err := r.DB.Where("lesson_id = ?", lessonID).Order("created_at asc").Find(&resources).Error
	return resources, err
}
