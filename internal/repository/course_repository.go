package repository

import (
	"anchor_lms_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindByID(id string) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, "id = ?", id).Error
	return &course, err
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

// Delete 级联清理课程下的模块与课时
func (r *CourseRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var moduleIDs []string
		if err := tx.Model(&model.CourseModule{}).Where("course_id = ?", id).Pluck("id", &moduleIDs).Error; err != nil {
			return err
		}
		if len(moduleIDs) > 0 {
			if err := tx.Where("module_id IN ?", moduleIDs).Delete(&model.Lesson{}).Error; err != nil {
				return err
			}
			if err := tx.Where("course_id = ?", id).Delete(&model.CourseModule{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.Course{}, "id = ?", id).Error
	})
}

func (r *CourseRepository) List(audience model.CourseAudience, publishedOnly bool, page, limit int) ([]model.Course, int64, error) {
	query := r.DB.Model(&model.Course{})
	if publishedOnly {
		query = query.Where("published = ?", true)
	}
	if audience != "" && audience != model.AudienceBoth {
		query = query.Where("audience IN ?", []model.CourseAudience{audience, model.AudienceBoth})
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []model.Course
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&courses).Error
	return courses, total, err
}

func (r *CourseRepository) CreateModule(m *model.CourseModule) error {
	return r.DB.Create(m).Error
}

func (r *CourseRepository) FindModuleByID(id string) (*model.CourseModule, error) {
	var m model.CourseModule
	err := r.DB.First(&m, "id = ?", id).Error
	return &m, err
}

func (r *CourseRepository) UpdateModule(m *model.CourseModule) error {
	return r.DB.Save(m).Error
}

func (r *CourseRepository) DeleteModule(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("module_id = ?", id).Delete(&model.Lesson{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.CourseModule{}, "id = ?", id).Error
	})
}

func (r *CourseRepository) ListModules(courseID string) ([]model.CourseModule, error) {
	var modules []model.CourseModule
	err := r.DB.Where("course_id = ?", courseID).Order("sort_order asc, created_at asc").Find(&modules).Error
	return modules, err
}

// FindCourseIDByLesson 课时 -> 模块 -> 课程的反向查找，完成课时前的报名校验要用
func (r *CourseRepository) FindCourseIDByLesson(lessonID string) (string, error) {
	var courseID string
	err := r.DB.Table("lessons l").
		Select("m.course_id").
		Joins("JOIN course_modules m ON l.module_id = m.id").
		Where("l.id = ? AND l.deleted_at IS NULL", lessonID).
		Scan(&courseID).Error
	if err != nil {
		return "", err
	}
	if courseID == "" {
		return "", gorm.ErrRecordNotFound
	}
	return courseID, nil
}

// CountLessons 统计课程下的课时总数
func (r *CourseRepository) CountLessons(courseID string) (int64, error) {
	var count int64
	err := r.DB.Table("lessons l").
		Joins("JOIN course_modules m ON l.module_id = m.id").
		Where("m.course_id = ? AND l.deleted_at IS NULL", courseID).
		Count(&count).Error
	return count, err
}
