package service

import (
	"errors"
	"mentora_backend/internal/model"
	"mentora_backend/internal/repository"
	"mentora_backend/internal/util"
	"mentora_backend/pkg/logger"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// fallbackPercentPerTask 课程无法解析时按约 15 个总任务折算
const fallbackPercentPerTask = 6.6

// ProgressService 维护每个 (用户, 轨道) 的报名与进度账本
type ProgressService struct {
	ProgressRepo *repository.TrackProgressRepository
	Curriculum   *CurriculumService
}

func NewProgressService(progressRepo *repository.TrackProgressRepository, curriculum *CurriculumService) *ProgressService {
	return &ProgressService{
		ProgressRepo: progressRepo,
		Curriculum:   curriculum,
	}
}

// Enroll 幂等报名：已有记录时仅在给出 preferences 的情况下覆盖偏好，
// 否则原样返回；没有记录则新建一条全零的进度
func (s *ProgressService) Enroll(userID uint, trackSlug, trackName string, preferences map[string]interface{}) (*model.TrackProgress, error) {
	existing, err := s.ProgressRepo.FindByUserAndTrack(userID, trackSlug)
	if err == nil {
		if preferences != nil {
			prefs := datatypes.JSONMap(preferences)
			if err := s.ProgressRepo.UpdatePreferences(existing.ID, prefs); err != nil {
				return nil, err
			}
			existing.Preferences = prefs
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if trackName == "" {
		trackName = TrackNameFromSlug(trackSlug)
	}

	now := time.Now()
	progress := &model.TrackProgress{
		UserID:       userID,
		TrackSlug:    trackSlug,
		TrackName:    trackName,
		IsEnrolled:   true,
		StartedAt:    &now,
		LastAccessed: &now,
	}
	if preferences != nil {
		progress.Preferences = datatypes.JSONMap(preferences)
	}

	if err := s.ProgressRepo.Create(progress); err != nil {
		// 并发重复报名：返回已存在的记录，保持幂等
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.ProgressRepo.FindByUserAndTrack(userID, trackSlug)
		}
		return nil, err
	}
	return progress, nil
}

// GetProgress 查询进度。没有记录时返回一个未持久化的零值视图（不报错），
// 有记录时顺带刷新 last_accessed。
func (s *ProgressService) GetProgress(userID uint, trackSlug string) (*model.TrackProgress, error) {
	progress, err := s.ProgressRepo.FindByUserAndTrack(userID, trackSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.TrackProgress{
				UserID:    userID,
				TrackSlug: trackSlug,
				TrackName: TrackNameFromSlug(trackSlug),
			}, nil
		}
		return nil, err
	}

	if err := s.ProgressRepo.Touch(progress.ID); err != nil {
		logger.Log.Warn("failed to refresh last_accessed",
			zap.Uint("progress_id", progress.ID), zap.Error(err))
	}
	now := time.Now()
	progress.LastAccessed = &now

	return progress, nil
}

// ListEnrolled 列出已报名的轨道。对早期版本留下的 percent_complete=0
// 但已有完成任务的记录，按公式重算并回写（自修复）。
func (s *ProgressService) ListEnrolled(userID uint) ([]model.TrackProgress, error) {
	records, err := s.ProgressRepo.FindEnrolledByUser(userID)
	if err != nil {
		return nil, err
	}

	for i := range records {
		record := &records[i]
		if record.PercentComplete == 0 && record.TasksCompleted > 0 {
			percent := s.PercentComplete(record.TrackSlug, record.TasksCompleted)
			if err := s.ProgressRepo.UpdatePercent(record.ID, percent); err != nil {
				return nil, err
			}
			record.PercentComplete = percent
			logger.Log.Info("healed zero percent_complete",
				zap.String("track", record.TrackSlug), zap.Float64("percent", percent))
		}
	}

	return records, nil
}

// ProgressUpdate 显式的进度部分更新请求，nil 字段不写
type ProgressUpdate struct {
	CurrentLessonIndex *int                   `json:"current_lesson_index"`
	CurrentTaskIndex   *int                   `json:"current_task_index"`
	PercentComplete    *float64               `json:"percent_complete"`
	LessonsCompleted   *int                   `json:"lessons_completed"`
	TasksCompleted     *int                   `json:"tasks_completed"`
	Preferences        map[string]interface{} `json:"preferences"`
}

func (s *ProgressService) UpdateProgress(userID uint, trackSlug string, update ProgressUpdate) error {
	progress, err := s.ProgressRepo.FindByUserAndTrack(userID, trackSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrProgressNotFound
		}
		return err
	}

	fields := map[string]interface{}{
		"last_accessed": time.Now(),
	}
	if update.CurrentLessonIndex != nil {
		fields["current_lesson_index"] = *update.CurrentLessonIndex
	}
	if update.CurrentTaskIndex != nil {
		fields["current_task_index"] = *update.CurrentTaskIndex
	}
	if update.PercentComplete != nil {
		fields["percent_complete"] = *update.PercentComplete
	}
	if update.LessonsCompleted != nil {
		fields["lessons_completed"] = *update.LessonsCompleted
	}
	if update.TasksCompleted != nil {
		fields["tasks_completed"] = *update.TasksCompleted
	}
	if update.Preferences != nil {
		fields["preferences"] = datatypes.JSONMap(update.Preferences)
	}

	return s.ProgressRepo.UpdateFields(progress.ID, fields)
}

// PercentComplete 按累计完成任务数重算进度百分比（从不增量累加，避免漂移）。
// 公式：min(100, T/(L*3)*100)；课程无法解析时退化为 min(100, T*6.6)。
func (s *ProgressService) PercentComplete(trackSlug string, tasksCompleted int) float64 {
	if s.Curriculum.Known(trackSlug) {
		totalLessons := s.Curriculum.TotalLessons(trackSlug)
		percent := float64(tasksCompleted) / float64(totalLessons*util.TasksPerLesson) * 100
		if percent > 100 {
			return 100
		}
		return percent
	}

	percent := float64(tasksCompleted) * fallbackPercentPerTask
	if percent > 100 {
		return 100
	}
	return percent
}

// TrackNameFromSlug 把 slug 转成展示名，例如 "ai-coding" -> "Ai Coding"
func TrackNameFromSlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
