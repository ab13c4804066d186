package model

import (
	"time"
)

// DailyActivity 按 (user_id, UTC 自然日) 累计的活动计数，用于连续学习/热力图展示
// swagger:model DailyActivity
type DailyActivity struct {
	BaseModel
	UserID           uint      `gorm:"not null;uniqueIndex:idx_user_activity_date;index" json:"user_id"`
	ActivityDate     time.Time `gorm:"not null;uniqueIndex:idx_user_activity_date" json:"activity_date"`
	TasksCompleted   int       `gorm:"default:0" json:"tasks_completed"`
	XPEarned         int       `gorm:"default:0" json:"xp_earned"`
	TimeSpentMinutes float64   `gorm:"default:0" json:"time_spent_minutes"`
}

func (DailyActivity) TableName() string {
	return "daily_activities"
}

// DayStart 将时间归一化到 UTC 当日零点
func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
