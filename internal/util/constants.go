package util

import "anchor_lms_backend/internal/config"

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"

	// CertificateDateFormat 证书上展示的完成日期格式，如 "December 9, 2025"
	CertificateDateFormat = "January 2, 2006"
)

const (
	StorageLocal = config.StorageLocal
	StorageMinio = config.StorageMinio
)

// 文件上传相关常量
const (
	MimeVideo       = "video/"
	MimeImage       = "image/"
	MimePDF         = "application/pdf"
	MimeOctetStream = "application/octet-stream"
)

var (
	AllowedVideoExtensions = []string{".mp4", ".mov", ".avi", ".mkv", ".wmv", ".flv", ".webm"}
)
