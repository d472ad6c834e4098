package service

import (
	"anchor_lms_backend/internal/config"
	"anchor_lms_backend/internal/model"
	"anchor_lms_backend/internal/repository"
	"anchor_lms_backend/internal/util"
	"anchor_lms_backend/pkg/logger"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ContentService 课件与视频上传，证书不走这里（见 CertificateService）
type ContentService struct {
	LessonRepo     *repository.LessonRepository
	StorageService *StorageService
	Cfg            *config.Config
}

func NewContentService(lessonRepo *repository.LessonRepository, storageService *StorageService, cfg *config.Config) *ContentService {
	return &ContentService{
		LessonRepo:     lessonRepo,
		StorageService: storageService,
		Cfg:            cfg,
	}
}

// UploadLessonResource 上传课件附件（PDF、图纸、文档）
func (s *ContentService) UploadLessonResource(ctx context.Context, uploaderID uint, lessonID, title string, file *multipart.FileHeader) (*model.LessonResource, error) {
	if _, err := s.LessonRepo.FindByID(lessonID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	// 深度验证 MIME 类型
	allowedTypes := []string{util.MimePDF, util.MimeImage, "text/plain", "application/msword", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"}
	mimeType, err := util.ValidateMimeType(src, allowedTypes)
	if err != nil {
		return nil, fmt.Errorf("非法的文件内容: %v", err)
	}
	if seeker, ok := src.(io.Seeker); ok {
		seeker.Seek(0, io.SeekStart)
	}

	filename := fmt.Sprintf("resources/%s/%d-%s", lessonID, time.Now().Unix(),
		strings.ReplaceAll(file.Filename, " ", "-"))
	url, err := s.StorageService.Upload(ctx, filename, src, file.Size, mimeType)
	if err != nil {
		return nil, err
	}

	res := &model.LessonResource{
		LessonID:   lessonID,
		Title:      title,
		FileURL:    url,
		MimeType:   mimeType,
		SizeBytes:  file.Size,
		UploaderID: uploaderID,
	}
	if err := s.LessonRepo.CreateResource(res); err != nil {
		return nil, err
	}
	return res, nil
}

// UploadLessonVideo 上传课时视频：落临时文件，探测时长，抓帧做缩略图，再推送到对象存储
func (s *ContentService) UploadLessonVideo(ctx context.Context, lessonID string, file *multipart.FileHeader) (*model.Lesson, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	isValidType := false
	for _, e := range util.AllowedVideoExtensions {
		if ext == e {
			isValidType = true
			break
		}
	}
	if !isValidType {
		return nil, errors.New("unsupported video extension: " + ext)
	}

	// 临时保存到本地进行处理
	tempDir := filepath.Join(s.Cfg.Storage.LocalPath, "temp")
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, err
	}
	videoPath := filepath.Join(tempDir, fmt.Sprintf("temp_video_%d%s", time.Now().UnixNano(), ext))
	defer os.Remove(videoPath)

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if _, err := util.ValidateMimeType(src, []string{util.MimeVideo}); err != nil {
		return nil, fmt.Errorf("非法的文件内容，仅允许视频格式: %v", err)
	}
	if seeker, ok := src.(io.Seeker); ok {
		seeker.Seek(0, io.SeekStart)
	}

	dst, err := os.Create(videoPath)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return nil, err
	}
	dst.Close()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = util.MimeOctetStream
	}
	videoFilename := fmt.Sprintf("videos/%s/%s%s", lessonID, time.Now().Format("20060102150405"), ext)
	videoURL, err := s.StorageService.UploadFile(ctx, videoFilename, videoPath, contentType)
	if err != nil {
		return nil, err
	}

	// 缩略图失败不阻断上传，只记日志
	thumbnailPath := filepath.Join(tempDir, fmt.Sprintf("thumb_%d.jpg", time.Now().UnixNano()))
	defer os.Remove(thumbnailPath)

	var thumbnailURL string
	if err := util.GenerateThumbnail(videoPath, thumbnailPath, "3"); err != nil {
		logger.Log.Error("生成缩略图失败", zap.Error(err))
	} else {
		thumbnailFilename := fmt.Sprintf("thumbnails/%s/%s.jpg", lessonID, time.Now().Format("20060102150405"))
		thumbnailURL, err = s.StorageService.UploadFile(ctx, thumbnailFilename, thumbnailPath, "image/jpeg")
		if err != nil {
			logger.Log.Error("上传缩略图失败", zap.Error(err))
			thumbnailURL = ""
		}
	}

	var duration float64
	if info, err := util.GetVideoInfo(videoPath); err == nil {
		duration = info.Duration
	}

	lesson.VideoURL = videoURL
	lesson.ThumbnailURL = thumbnailURL
	lesson.VideoDuration = duration
	if err := s.LessonRepo.Update(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}
