package repository

import (
	"anchor_lms_backend/internal/model"

	"gorm.io/gorm"
)

type CertificateRepository struct {
	DB *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{DB: db}
}

func (r *CertificateRepository) Create(cert *model.Certificate) error {
	return r.DB.Create(cert).Error
}

func (r *CertificateRepository) FindByID(id string) (*model.Certificate, error) {
	var cert model.Certificate
	err := r.DB.First(&cert, "id = ?", id).Error
	return &cert, err
}

// FindByUserAndCourse 返回最近一张；同一用户同一课程可能存在多张（见 DESIGN.md 的开放问题）
func (r *CertificateRepository) FindByUserAndCourse(userID uint, courseID string) (*model.Certificate, error) {
	var cert model.Certificate
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("issued_at desc").First(&cert).Error
	return &cert, err
}

func (r *CertificateRepository) ListByUser(userID uint) ([]model.Certificate, error) {
	var certs []model.Certificate
	err := r.DB.Where("user_id = ?", userID).Order("issued_at desc").Find(&certs).Error
	return certs, err
}

func (r *CertificateRepository) CountByCourse(courseID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Certificate{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}
