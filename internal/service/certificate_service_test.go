package service

import (
	"anchor_lms_backend/internal/config"
	"anchor_lms_backend/internal/model"
	"anchor_lms_backend/internal/util"
	"anchor_lms_backend/pkg/logger"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	logger.Log = zap.NewNop()
}

// fakeProvider 内存对象存储，可注入取模板/上传失败
type fakeProvider struct {
	objects     map[string][]byte
	fetchErr    error
	uploadErr   error
	uploadCount int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{objects: map[string][]byte{
		"templates/anchor-certificate-template.pdf": []byte("%PDF-template"),
	}}
}

func (p *fakeProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	if p.uploadErr != nil {
		return "", p.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	p.objects[filename] = data
	p.uploadCount++
	return "/certificates/" + filename, nil
}

func (p *fakeProvider) UploadFile(ctx context.Context, filename string, localPath string, contentType string) (string, error) {
	return "", errors.New("not used")
}

func (p *fakeProvider) Fetch(ctx context.Context, filename string) (io.ReadCloser, error) {
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	data, ok := p.objects[filename]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (p *fakeProvider) Delete(ctx context.Context, filename string) error { return nil }
func (p *fakeProvider) GetURL(filename string) string                     { return "/certificates/" + filename }

type fakeStore struct {
	created   []*model.Certificate
	createErr error
}

func (s *fakeStore) Create(cert *model.Certificate) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, cert)
	return nil
}

func (s *fakeStore) FindByUserAndCourse(userID uint, courseID string) (*model.Certificate, error) {
	for i := len(s.created) - 1; i >= 0; i-- {
		c := s.created[i]
		if c.UserID == userID && c.CourseID == courseID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeStore) ListByUser(userID uint) ([]model.Certificate, error) {
	var result []model.Certificate
	for _, c := range s.created {
		if c.UserID == userID {
			result = append(result, *c)
		}
	}
	return result, nil
}

// fakeRenderer 原样拼接字段，跳过真实 PDF 绘制
type fakeRenderer struct {
	renderErr error
}

func (r fakeRenderer) Render(template []byte, fields CertificateFields) ([]byte, error) {
	if r.renderErr != nil {
		return nil, r.renderErr
	}
	return []byte(fmt.Sprintf("%s|%s|%s|%s", template, fields.NameText, fields.CompletionLine, fields.CompletionDate)), nil
}

func newTestCertificateService(provider *fakeProvider, store *fakeStore) *CertificateService {
	cfg := &config.Config{}
	cfg.Certificate.Bucket = "certificates"
	cfg.Certificate.TemplatePath = "templates/anchor-certificate-template.pdf"
	return &CertificateService{
		Storage:  &StorageService{Provider: provider},
		Store:    store,
		Renderer: fakeRenderer{},
		Cfg:      cfg,
	}
}

func validRequest() CertificateRequest {
	return CertificateRequest{
		UserID:         42,
		CourseID:       "course-1",
		NameText:       "Jamie Doe",
		CompletionLine: "has successfully completed the Anchor Install course",
		CompletionDate: "December 9, 2025",
	}
}

func TestGenerateSuccess(t *testing.T) {
	provider := newFakeProvider()
	store := &fakeStore{}
	svc := newTestCertificateService(provider, store)

	before := time.Now()
	cert, err := svc.Generate(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(store.created) != 1 {
		t.Fatalf("created rows = %d, want 1", len(store.created))
	}
	if cert.UserID != 42 || cert.CourseID != "course-1" {
		t.Errorf("wrong identity on record: %+v", cert)
	}
	if cert.CertificateURL == "" {
		t.Error("CertificateURL must be set from upload result")
	}
	if matched, _ := regexp.MatchString(`^\d{8}$`, cert.CertificateNumber); !matched {
		t.Errorf("CertificateNumber = %q, want 8 digits", cert.CertificateNumber)
	}
	if cert.IssuedAt.Before(before) {
		t.Errorf("IssuedAt %v predates the request", cert.IssuedAt)
	}

	// 对象路径：{userId}/cert_{courseId}_{userId}_{millis}.pdf
	pathRe := regexp.MustCompile(`^42/cert_course-1_42_\d+\.pdf$`)
	found := false
	for path := range provider.objects {
		if pathRe.MatchString(path) {
			found = true
		}
	}
	if !found {
		t.Errorf("no uploaded object matches the expected path layout, have %v", keys(provider.objects))
	}
}

func TestGenerateEmptyFieldsRejected(t *testing.T) {
	provider := newFakeProvider()
	store := &fakeStore{}
	svc := newTestCertificateService(provider, store)

	cases := []func(*CertificateRequest){
		func(r *CertificateRequest) { r.NameText = "" },
		func(r *CertificateRequest) { r.CompletionLine = "   " },
		func(r *CertificateRequest) { r.CompletionDate = "" },
	}
	for i, mutate := range cases {
		req := validRequest()
		mutate(&req)
		_, err := svc.Generate(context.Background(), req)
		if !errors.Is(err, util.ErrEmptyCertificateField) {
			t.Errorf("case %d: err = %v, want ErrEmptyCertificateField", i, err)
		}
	}
	if provider.uploadCount != 0 || len(store.created) != 0 {
		t.Error("rejected requests must not touch storage or the store")
	}
}

func TestGenerateTemplateUnavailable(t *testing.T) {
	provider := newFakeProvider()
	provider.fetchErr = errors.New("bucket unreachable")
	store := &fakeStore{}
	svc := newTestCertificateService(provider, store)

	_, err := svc.Generate(context.Background(), validRequest())
	if !errors.Is(err, util.ErrTemplateUnavailable) {
		t.Fatalf("err = %v, want ErrTemplateUnavailable", err)
	}
	if provider.uploadCount != 0 {
		t.Error("no upload may happen when the template cannot be fetched")
	}
	if len(store.created) != 0 {
		t.Error("no metadata row may exist when the template cannot be fetched")
	}
}

func TestGenerateRenderFailureIsTemplateError(t *testing.T) {
	provider := newFakeProvider()
	store := &fakeStore{}
	svc := newTestCertificateService(provider, store)
	svc.Renderer = fakeRenderer{renderErr: errors.New("corrupt template")}

	_, err := svc.Generate(context.Background(), validRequest())
	if !errors.Is(err, util.ErrTemplateUnavailable) {
		t.Fatalf("err = %v, want ErrTemplateUnavailable", err)
	}
	if provider.uploadCount != 0 || len(store.created) != 0 {
		t.Error("render failure must stop the pipeline before upload")
	}
}

func TestGenerateUploadFailureLeavesNoRecord(t *testing.T) {
	provider := newFakeProvider()
	provider.uploadErr = errors.New("storage down")
	store := &fakeStore{}
	svc := newTestCertificateService(provider, store)

	_, err := svc.Generate(context.Background(), validRequest())
	if !errors.Is(err, util.ErrStorageUploadFailed) {
		t.Fatalf("err = %v, want ErrStorageUploadFailed", err)
	}
	if len(store.created) != 0 {
		t.Error("metadata must never be written before a successful upload")
	}
}

func TestGeneratePersistFailure(t *testing.T) {
	provider := newFakeProvider()
	store := &fakeStore{createErr: errors.New("db down")}
	svc := newTestCertificateService(provider, store)

	_, err := svc.Generate(context.Background(), validRequest())
	if !errors.Is(err, util.ErrRecordPersistFailed) {
		t.Fatalf("err = %v, want ErrRecordPersistFailed", err)
	}
	// 上传已经发生，孤儿 PDF 留在存储里，由调用方决定是否清理
	if provider.uploadCount != 1 {
		t.Errorf("uploadCount = %d, want 1", provider.uploadCount)
	}
}

func TestGenerateTwiceCreatesTwoArtifacts(t *testing.T) {
	provider := newFakeProvider()
	store := &fakeStore{}
	svc := newTestCertificateService(provider, store)

	if _, err := svc.Generate(context.Background(), validRequest()); err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	time.Sleep(2 * time.Millisecond) // 文件名含毫秒时间戳
	if _, err := svc.Generate(context.Background(), validRequest()); err != nil {
		t.Fatalf("second Generate: %v", err)
	}

	if len(store.created) != 2 {
		t.Errorf("created rows = %d, want 2", len(store.created))
	}
	if provider.uploadCount != 2 {
		t.Errorf("uploadCount = %d, want 2", provider.uploadCount)
	}
	if store.created[0].CertificateURL == store.created[1].CertificateURL {
		t.Error("repeat generation must produce distinct artifacts")
	}
}

func TestGetForUserAndCourseNotFound(t *testing.T) {
	svc := newTestCertificateService(newFakeProvider(), &fakeStore{})

	_, err := svc.GetForUserAndCourse(1, "missing")
	if !errors.Is(err, util.ErrCertificateNotFound) {
		t.Errorf("err = %v, want ErrCertificateNotFound", err)
	}
}

func keys(m map[string][]byte) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out
}
