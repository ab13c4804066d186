package model

import (
	"time"
)

const DefaultAvatarIcon = "👨‍🚀"

// UserStats 内嵌的用户累计统计，仅由任务完成事件更新
// swagger:model UserStats
type UserStats struct {
	StreakDays       int        `gorm:"default:0" json:"streak_days"`
	TotalXP          int        `gorm:"default:0" json:"total_xp"`
	TotalHours       float64    `gorm:"default:0" json:"total_hours"`
	LastActivityDate *time.Time `json:"last_activity_date"`
}

// swagger:model User
type User struct {
	BaseModel
	Username    string     `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Email       string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"size:100;not null" json:"-"`
	DisplayName string     `gorm:"size:100" json:"display_name"`
	AvatarIcon  string     `gorm:"size:255" json:"avatar_icon"`
	AvatarURL   string     `gorm:"size:255" json:"avatar_url"`
	LastLogin   *time.Time `json:"last_login"`
	LastSeen    *time.Time `json:"last_seen"`
	Stats       UserStats  `gorm:"embedded;embeddedPrefix:stats_" json:"stats"`
}

func (User) TableName() string {
	return "users"
}
