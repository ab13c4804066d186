package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

const (
	// TasksPerLesson 每节课固定的练习任务数
	TasksPerLesson = 3
	// DailyTargetTasks 每日目标任务数，用于日进度百分比
	DailyTargetTasks = 5
	// DefaultTaskXP 未显式给出时每个任务的经验值
	DefaultTaskXP = 10
)

// 头像上传相关常量
const (
	MimeImage = "image/"
)

var AllowedImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}
