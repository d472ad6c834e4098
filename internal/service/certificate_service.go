package service

import (
	"anchor_lms_backend/internal/config"
	"anchor_lms_backend/internal/model"
	"anchor_lms_backend/internal/util"
	"anchor_lms_backend/pkg/logger"
	"anchor_lms_backend/pkg/monitoring"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CertificateStore 证书元数据的持久化入口，由 repository.CertificateRepository 实现
type CertificateStore interface {
	Create(cert *model.Certificate) error
	FindByUserAndCourse(userID uint, courseID string) (*model.Certificate, error)
	ListByUser(userID uint) ([]model.Certificate, error)
}

// CertificateRequest 生成一张证书所需的全部输入。
// 三段文本由操作者确认后原样绘制，这里只拒绝空值。
type CertificateRequest struct {
	UserID         uint
	CourseID       string
	NameText       string
	CompletionLine string
	CompletionDate string
}

// CertificateService 证书生成流水线：取模板 -> 绘制 -> 上传 -> 落库。
// 严格顺序执行，任一步失败即整体失败，组件内不做重试；
// 元数据行绝不会先于上传成功写入。
type CertificateService struct {
	Storage  *StorageService
	Store    CertificateStore
	Renderer TemplateRenderer
	Cfg      *config.Config
}

func NewCertificateService(storage *StorageService, store CertificateStore, cfg *config.Config) *CertificateService {
	return &CertificateService{
		Storage:  storage,
		Store:    store,
		Renderer: NewPDFTemplateRenderer(),
		Cfg:      cfg,
	}
}

func (s *CertificateService) Generate(ctx context.Context, req CertificateRequest) (*model.Certificate, error) {
	if strings.TrimSpace(req.NameText) == "" ||
		strings.TrimSpace(req.CompletionLine) == "" ||
		strings.TrimSpace(req.CompletionDate) == "" {
		return nil, util.ErrEmptyCertificateField
	}

	template, err := s.fetchTemplate(ctx)
	if err != nil {
		monitoring.CertificatesGenerated.WithLabelValues("template_error").Inc()
		return nil, err
	}

	pdfBytes, err := s.Renderer.Render(template, CertificateFields{
		NameText:       req.NameText,
		CompletionLine: req.CompletionLine,
		CompletionDate: req.CompletionDate,
	})
	if err != nil {
		monitoring.CertificatesGenerated.WithLabelValues("template_error").Inc()
		return nil, fmt.Errorf("%w: %v", util.ErrTemplateUnavailable, err)
	}

	now := time.Now()
	fileName := fmt.Sprintf("cert_%s_%d_%d.pdf", req.CourseID, req.UserID, now.UnixMilli())
	objectPath := fmt.Sprintf("%d/%s", req.UserID, fileName)

	url, err := s.Storage.Upload(ctx, objectPath, bytes.NewReader(pdfBytes), int64(len(pdfBytes)), util.MimePDF)
	if err != nil {
		monitoring.CertificatesGenerated.WithLabelValues("upload_error").Inc()
		return nil, fmt.Errorf("%w: %v", util.ErrStorageUploadFailed, err)
	}

	cert := &model.Certificate{
		UserID:            req.UserID,
		CourseID:          req.CourseID,
		CertificateURL:    url,
		CertificateNumber: newCertificateNumber(),
		IssuedAt:          now,
		CompletedAt:       now,
	}
	if err := s.Store.Create(cert); err != nil {
		monitoring.CertificatesGenerated.WithLabelValues("persist_error").Inc()
		return nil, fmt.Errorf("%w: %v", util.ErrRecordPersistFailed, err)
	}

	monitoring.CertificatesGenerated.WithLabelValues("ok").Inc()
	logger.Log.Info("certificate generated",
		zap.Uint("userId", req.UserID),
		zap.String("courseId", req.CourseID),
		zap.String("number", cert.CertificateNumber))
	return cert, nil
}

func (s *CertificateService) fetchTemplate(ctx context.Context) ([]byte, error) {
	rc, err := s.Storage.Fetch(ctx, s.Cfg.Certificate.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrTemplateUnavailable, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrTemplateUnavailable, err)
	}
	return data, nil
}

func (s *CertificateService) GetForUserAndCourse(userID uint, courseID string) (*model.Certificate, error) {
	cert, err := s.Store.FindByUserAndCourse(userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCertificateNotFound
		}
		return nil, err
	}
	return cert, nil
}

func (s *CertificateService) ListForUser(userID uint) ([]model.Certificate, error) {
	return s.Store.ListByUser(userID)
}

// newCertificateNumber 生成 8 位展示用序列号。
// 伪随机且不查重，低流量内部系统可接受的碰撞风险。
func newCertificateNumber() string {
	return fmt.Sprintf("%08d", rand.Intn(100000000))
}
