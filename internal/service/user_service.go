package service

import (
	"errors"
	"mentora_backend/internal/model"
	"mentora_backend/internal/repository"
	"mentora_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

// UserService 处理用户资料与统计的业务逻辑
type UserService struct {
	UserRepo     *repository.UserRepository
	ProgressRepo *repository.TrackProgressRepository
	ActivityRepo *repository.DailyActivityRepository
}

func NewUserService(
	userRepo *repository.UserRepository,
	progressRepo *repository.TrackProgressRepository,
	activityRepo *repository.DailyActivityRepository,
) *UserService {
	return &UserService{
		UserRepo:     userRepo,
		ProgressRepo: progressRepo,
		ActivityRepo: activityRepo,
	}
}

// UserStatsView 首页统计视图
type UserStatsView struct {
	StreakDays     int     `json:"streak_days"`
	TotalXP        int     `json:"total_xp"`
	CoursesStarted int     `json:"courses_started"`
	TotalHours     float64 `json:"total_hours"`
}

func (s *UserService) Stats(user *model.User) (*UserStatsView, error) {
	enrolled, err := s.ProgressRepo.CountEnrolledByUser(user.ID)
	if err != nil {
		return nil, err
	}

	return &UserStatsView{
		StreakDays:     user.Stats.StreakDays,
		TotalXP:        user.Stats.TotalXP,
		CoursesStarted: int(enrolled),
		TotalHours:     user.Stats.TotalHours,
	}, nil
}

// DailyProgressView 当日活动视图，percentage 以每日目标任务数折算
type DailyProgressView struct {
	ActivityDate     time.Time `json:"activity_date"`
	TasksCompleted   int       `json:"tasks_completed"`
	XPEarned         int       `json:"xp_earned"`
	TimeSpentMinutes float64   `json:"time_spent_minutes"`
	Percentage       float64   `json:"percentage"`
}

// DailyProgress 返回今天（UTC 日）的活动。没有记录时返回全零视图。
func (s *UserService) DailyProgress(userID uint) (*DailyProgressView, error) {
	today := model.DayStart(time.Now())

	activity, err := s.ActivityRepo.FindByUserAndDate(userID, today)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &DailyProgressView{ActivityDate: today}, nil
		}
		return nil, err
	}

	percentage := float64(activity.TasksCompleted) / float64(util.DailyTargetTasks) * 100
	if percentage > 100 {
		percentage = 100
	}

	return &DailyProgressView{
		ActivityDate:     activity.ActivityDate,
		TasksCompleted:   activity.TasksCompleted,
		XPEarned:         activity.XPEarned,
		TimeSpentMinutes: activity.TimeSpentMinutes,
		Percentage:       percentage,
	}, nil
}

// ProfileUpdate 资料部分更新，nil 字段不写
type ProfileUpdate struct {
	DisplayName *string `json:"display_name"`
	AvatarIcon  *string `json:"avatar_icon"`
}

func (s *UserService) UpdateProfile(userID uint, update ProfileUpdate) error {
	fields := map[string]interface{}{}
	if update.DisplayName != nil {
		fields["display_name"] = *update.DisplayName
	}
	if update.AvatarIcon != nil {
		fields["avatar_icon"] = *update.AvatarIcon
	}
	if len(fields) == 0 {
		return errors.New("no update data provided")
	}

	return s.UserRepo.UpdateFields(userID, fields)
}

func (s *UserService) UpdateAvatarURL(userID uint, url string) error {
	return s.UserRepo.UpdateFields(userID, map[string]interface{}{"avatar_url": url})
}
