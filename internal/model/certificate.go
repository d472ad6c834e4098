package model

import "time"

// Certificate 证书元数据，PDF 本体存放在对象存储
type Certificate struct {
	UUIDBase
	UserID         uint   `gorm:"index;not null" json:"userId"`
	CourseID       string `gorm:"index;type:varchar(36);not null" json:"courseId"`
	CertificateURL string `gorm:"size:512;not null" json:"certificateUrl"`
	// 展示用序列号，8 位伪随机数字，不保证全局唯一
	CertificateNumber string    `gorm:"size:32" json:"certificateNumber"`
	IssuedAt          time.Time `json:"issuedAt"`
	CompletedAt       time.Time `json:"completedAt"`
}

func (Certificate) TableName() string {
	return "certificates"
}
