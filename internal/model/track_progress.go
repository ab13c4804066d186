package model

import (
	"time"

	"gorm.io/datatypes"
)

// TrackProgress 记录用户在某个学习轨道上的报名与进度，(user_id, track_slug) 唯一
// swagger:model TrackProgress
type TrackProgress struct {
	BaseModel
	UserID             uint              `gorm:"not null;uniqueIndex:idx_user_track;index" json:"user_id"`
	TrackSlug          string            `gorm:"size:100;not null;uniqueIndex:idx_user_track;index" json:"track_slug"`
	TrackName          string            `gorm:"size:255" json:"track_name"`
	CurrentLessonIndex int               `gorm:"default:0" json:"current_lesson_index"`
	CurrentTaskIndex   int               `gorm:"default:0" json:"current_task_index"`
	PercentComplete    float64           `gorm:"default:0" json:"percent_complete"`
	LessonsCompleted   int               `gorm:"default:0" json:"lessons_completed"`
	TasksCompleted     int               `gorm:"default:0" json:"tasks_completed"`
	IsEnrolled         bool              `gorm:"default:false" json:"is_enrolled"`
	StartedAt          *time.Time        `json:"started_at"`
	LastAccessed       *time.Time        `json:"last_accessed"`
	Preferences        datatypes.JSONMap `json:"preferences,omitempty"`
}

func (TrackProgress) TableName() string {
	return "track_progress"
}
