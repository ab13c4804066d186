package model

import (
	"time"
)

// TaskCompletion 已完成练习任务的只追加记录，(user_id, track_slug, task_id) 唯一。
// 重复完成依赖该唯一索引在存储层拒绝，而不是先查后插。
// swagger:model TaskCompletion
type TaskCompletion struct {
	BaseModel
	UserID           uint      `gorm:"not null;uniqueIndex:idx_user_track_task;index" json:"user_id"`
	TrackSlug        string    `gorm:"size:100;not null;uniqueIndex:idx_user_track_task;index" json:"track_slug"`
	TaskID           string    `gorm:"size:100;not null;uniqueIndex:idx_user_track_task" json:"task_id"`
	LessonIndex      int       `gorm:"default:0" json:"lesson_index"`
	TaskIndex        int       `gorm:"default:0" json:"task_index"`
	Prompt           string    `gorm:"type:text" json:"prompt"`
	UserOutput       string    `gorm:"type:text" json:"user_output"`
	AIEvaluation     string    `gorm:"type:text" json:"ai_evaluation"`
	Score            int       `gorm:"default:0" json:"score"`
	XPEarned         int       `gorm:"default:0" json:"xp_earned"`
	TimeSpentMinutes int       `gorm:"default:0" json:"time_spent_minutes"`
	FeedbackSummary  string    `gorm:"size:500" json:"feedback_summary,omitempty"`
	CompletedAt      time.Time `gorm:"not null;index" json:"completed_at"`
}

func (TaskCompletion) TableName() string {
	return "task_completions"
}
