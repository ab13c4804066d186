package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mentora_backend/internal/model"
	"mentora_backend/internal/util"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const dailyActivityCacheTTL = 5 * time.Minute

type DailyActivityRepository struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewDailyActivityRepository(db *gorm.DB, rdb *redis.Client) *DailyActivityRepository {
	return &DailyActivityRepository{DB: db, RDB: rdb}
}

// Apply 为 (user, date) 累加活动计数。先尝试 UPDATE 累加；
// 没有命中记录则 INSERT，并发下首条插入撞唯一索引时回退为再次累加。
// 只写库不动缓存：缓存由调用方在事务提交后通过 InvalidateCache 失效，
// 提交前失效会被并发读把旧行重新写回缓存。
func (r *DailyActivityRepository) Apply(tx *gorm.DB, userID uint, date time.Time, tasksDelta int, xpDelta int, minutesDelta float64) error {
	date = model.DayStart(date)

	if err := r.increment(tx, userID, date, tasksDelta, xpDelta, minutesDelta); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		activity := &model.DailyActivity{
			UserID:           userID,
			ActivityDate:     date,
			TasksCompleted:   tasksDelta,
			XPEarned:         xpDelta,
			TimeSpentMinutes: minutesDelta,
		}
		if err := tx.Create(activity).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return r.increment(tx, userID, date, tasksDelta, xpDelta, minutesDelta)
			}
			return err
		}
	}

	return nil
}

// InvalidateCache 移除 (user, date) 的缓存项，应在写事务提交之后调用
func (r *DailyActivityRepository) InvalidateCache(userID uint, date time.Time) {
	r.invalidate(userID, model.DayStart(date))
}

func (r *DailyActivityRepository) increment(tx *gorm.DB, userID uint, date time.Time, tasksDelta int, xpDelta int, minutesDelta float64) error {
	res := tx.Model(&model.DailyActivity{}).
		Where("user_id = ? AND activity_date = ?", userID, date).
		Updates(map[string]interface{}{
			"tasks_completed":    gorm.Expr("tasks_completed + ?", tasksDelta),
			"xp_earned":          gorm.Expr("xp_earned + ?", xpDelta),
			"time_spent_minutes": gorm.Expr("time_spent_minutes + ?", minutesDelta),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *DailyActivityRepository) FindByUserAndDate(userID uint, date time.Time) (*model.DailyActivity, error) {
	date = model.DayStart(date)

	if cached := r.fromCache(userID, date); cached != nil {
		return cached, nil
	}

	var activity model.DailyActivity
	err := r.DB.Where("user_id = ? AND activity_date = ?", userID, date).First(&activity).Error
	if err != nil {
		return nil, err
	}

	r.toCache(&activity)
	return &activity, nil
}

func (r *DailyActivityRepository) FindRangeByUser(userID uint, from, to time.Time) ([]model.DailyActivity, error) {
	var activities []model.DailyActivity
	err := r.DB.Where("user_id = ? AND activity_date BETWEEN ? AND ?", userID, model.DayStart(from), model.DayStart(to)).
		Order("activity_date ASC").
		Find(&activities).Error
	return activities, err
}

func (r *DailyActivityRepository) cacheKey(userID uint, date time.Time) string {
	return fmt.Sprintf("daily_activity:%d:%s", userID, date.Format(util.DateFormat))
}

func (r *DailyActivityRepository) fromCache(userID uint, date time.Time) *model.DailyActivity {
	if r.RDB == nil {
		return nil
	}
	data, err := r.RDB.Get(context.Background(), r.cacheKey(userID, date)).Bytes()
	if err != nil {
		return nil
	}
	var activity model.DailyActivity
	if err := json.Unmarshal(data, &activity); err != nil {
		return nil
	}
	return &activity
}

func (r *DailyActivityRepository) toCache(activity *model.DailyActivity) {
	if r.RDB == nil {
		return
	}
	data, err := json.Marshal(activity)
	if err != nil {
		return
	}
	r.RDB.Set(context.Background(), r.cacheKey(activity.UserID, activity.ActivityDate), data, dailyActivityCacheTTL)
}

func (r *DailyActivityRepository) invalidate(userID uint, date time.Time) {
	if r.RDB == nil {
		return
	}
	r.RDB.Del(context.Background(), r.cacheKey(userID, date))
}
