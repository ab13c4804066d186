package repository

import (
	"mentora_backend/pkg/database"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func TestDailyActivityApplyInsertsThenIncrements(t *testing.T) {
	db := newRepoTestDB(t)
	repo := NewDailyActivityRepository(db, nil)

	day := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)

	require.NoError(t, repo.Apply(db, 1, day, 1, 10, 15))
	// 同一 UTC 日的第二次写入走累加分支
	require.NoError(t, repo.Apply(db, 1, day.Add(3*time.Hour), 1, 15, 10))

	activity, err := repo.FindByUserAndDate(1, day)
	require.NoError(t, err)
	assert.Equal(t, 2, activity.TasksCompleted)
	assert.Equal(t, 25, activity.XPEarned)
	assert.InDelta(t, 25.0, activity.TimeSpentMinutes, 0.001)

	// 不同日期互不影响
	nextDay := day.AddDate(0, 0, 1)
	require.NoError(t, repo.Apply(db, 1, nextDay, 1, 5, 5))

	activity, err = repo.FindByUserAndDate(1, nextDay)
	require.NoError(t, err)
	assert.Equal(t, 1, activity.TasksCompleted)
}

func TestDailyActivityIsolatedPerUser(t *testing.T) {
	db := newRepoTestDB(t)
	repo := NewDailyActivityRepository(db, nil)

	day := time.Now()
	require.NoError(t, repo.Apply(db, 1, day, 1, 10, 10))
	require.NoError(t, repo.Apply(db, 2, day, 3, 30, 30))

	a1, err := repo.FindByUserAndDate(1, day)
	require.NoError(t, err)
	assert.Equal(t, 1, a1.TasksCompleted)

	a2, err := repo.FindByUserAndDate(2, day)
	require.NoError(t, err)
	assert.Equal(t, 3, a2.TasksCompleted)
}

func TestDailyActivityFindRange(t *testing.T) {
	db := newRepoTestDB(t)
	repo := NewDailyActivityRepository(db, nil)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Apply(db, 1, base.AddDate(0, 0, i), 1, 10, 10))
	}

	activities, err := repo.FindRangeByUser(1, base.AddDate(0, 0, 1), base.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Len(t, activities, 3)
	// 升序返回
	assert.True(t, activities[0].ActivityDate.Before(activities[2].ActivityDate))
}

func TestDailyActivityCacheInvalidatedByCallerAfterCommit(t *testing.T) {
	db := newRepoTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := NewDailyActivityRepository(db, rdb)

	day := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Apply(db, 1, day, 1, 10, 15))

	cached, err := repo.FindByUserAndDate(1, day)
	require.NoError(t, err)
	assert.Equal(t, 1, cached.TasksCompleted)

	// Apply 只写库不清缓存，提交前的并发读仍命中旧值
	require.NoError(t, repo.Apply(db, 1, day, 1, 5, 10))
	stale, err := repo.FindByUserAndDate(1, day)
	require.NoError(t, err)
	assert.Equal(t, 1, stale.TasksCompleted)

	// 提交后由调用方失效，下一次读命中数据库的新行
	repo.InvalidateCache(1, day)
	fresh, err := repo.FindByUserAndDate(1, day)
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.TasksCompleted)
	assert.Equal(t, 15, fresh.XPEarned)
}

func TestDailyActivityMissingDate(t *testing.T) {
	db := newRepoTestDB(t)
	repo := NewDailyActivityRepository(db, nil)

	_, err := repo.FindByUserAndDate(9, time.Now())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
