package model

// CourseAudience 控制课程对内部员工/外部经销商的可见性
type CourseAudience string

const (
	AudienceInternal CourseAudience = "internal"
	AudienceExternal CourseAudience = "external"
	AudienceBoth     CourseAudience = "both"
)

type Course struct {
	UUIDBase
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Audience    CourseAudience `gorm:"type:enum('internal','external','both');default:'both'" json:"audience"`
	Published   bool           `gorm:"default:false" json:"published"`
	CreatorID   uint           `gorm:"index" json:"creatorId"`
}

func (Course) TableName() string {
	return "courses"
}

type CourseModule struct {
	UUIDBase
	CourseID  string `gorm:"index;type:varchar(36);not null" json:"courseId"`
	Title     string `gorm:"size:255;not null" json:"title"`
	SortOrder int    `gorm:"default:0" json:"sortOrder"`
}

func (CourseModule) TableName() string {
	return "course_modules"
}

type Lesson struct {
	UUIDBase
	ModuleID     string `gorm:"index;type:varchar(36);not null" json:"moduleId"`
	Title        string `gorm:"size:255;not null" json:"title"`
	Body         string `gorm:"type:text" json:"body"`
	VideoURL     string `gorm:"size:512" json:"videoUrl"`
	ThumbnailURL string `gorm:"size:512" json:"thumbnailUrl"`
	// 视频时长（秒），上传时由 ffprobe 写入
	VideoDuration float64 `gorm:"default:0" json:"videoDuration"`
	SortOrder     int     `gorm:"default:0" json:"sortOrder"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// LessonResource 课件附件（PDF、图纸等），存储在对象存储中
type LessonResource struct {
	UUIDBase
	LessonID   string `gorm:"index;type:varchar(36);not null" json:"lessonId"`
	Title      string `gorm:"size:255;not null" json:"title"`
	FileURL    string `gorm:"size:512;not null" json:"fileUrl"`
	MimeType   string `gorm:"size:100" json:"mimeType"`
	SizeBytes  int64  `gorm:"default:0" json:"sizeBytes"`
	UploaderID uint   `gorm:"index" json:"uploaderId"`
}

func (LessonResource) TableName() string {
	return "lesson_resources"
}
