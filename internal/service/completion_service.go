package service

import (
	"errors"
	"mentora_backend/internal/model"
	"mentora_backend/internal/repository"
	"mentora_backend/internal/util"
	"mentora_backend/pkg/monitoring"
	"time"

	"gorm.io/gorm"
)

// CompletionService 处理任务完成事件。一次完成在同一个数据库事务里
// 追加完成记录、累加用户统计、推进轨道进度并累计当日活动，
// 任一步失败则整体回滚，不留下半套副作用。
type CompletionService struct {
	DB             *gorm.DB
	CompletionRepo *repository.TaskCompletionRepository
	ProgressRepo   *repository.TrackProgressRepository
	UserRepo       *repository.UserRepository
	ActivityRepo   *repository.DailyActivityRepository
	Progress       *ProgressService
}

func NewCompletionService(
	completionRepo *repository.TaskCompletionRepository,
	progressRepo *repository.TrackProgressRepository,
	userRepo *repository.UserRepository,
	activityRepo *repository.DailyActivityRepository,
	progress *ProgressService,
	db *gorm.DB,
) *CompletionService {
	return &CompletionService{
		DB:             db,
		CompletionRepo: completionRepo,
		ProgressRepo:   progressRepo,
		UserRepo:       userRepo,
		ActivityRepo:   activityRepo,
		Progress:       progress,
	}
}

// CompletionInput 一次任务完成的全部输入，默认值由控制器解析
type CompletionInput struct {
	TrackSlug        string
	LessonIndex      int
	TaskIndex        int
	Prompt           string
	UserOutput       string
	AIEvaluation     string
	Score            int
	XPEarned         int
	TimeSpentMinutes int
	FeedbackSummary  string
}

// CompleteTask 记录一次任务完成。同一 (user, track, task_id) 的重复提交
// 由存储层唯一索引拒绝，返回 util.ErrTaskCompleted。
func (s *CompletionService) CompleteTask(userID uint, taskID string, in CompletionInput) (*model.TaskCompletion, error) {
	now := time.Now()

	completion := &model.TaskCompletion{
		UserID:           userID,
		TrackSlug:        in.TrackSlug,
		TaskID:           taskID,
		LessonIndex:      in.LessonIndex,
		TaskIndex:        in.TaskIndex,
		Prompt:           in.Prompt,
		UserOutput:       in.UserOutput,
		AIEvaluation:     in.AIEvaluation,
		Score:            in.Score,
		XPEarned:         in.XPEarned,
		TimeSpentMinutes: in.TimeSpentMinutes,
		FeedbackSummary:  in.FeedbackSummary,
		CompletedAt:      now,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.CompletionRepo.Create(tx, completion); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return util.ErrTaskCompleted
			}
			return err
		}

		if err := s.UserRepo.ApplyCompletionStats(tx, userID, in.XPEarned, in.TimeSpentMinutes, now); err != nil {
			return err
		}

		if err := s.applyProgress(tx, userID, in, now); err != nil {
			return err
		}

		return s.ActivityRepo.Apply(tx, userID, now, 1, in.XPEarned, float64(in.TimeSpentMinutes))
	})
	if err != nil {
		return nil, err
	}

	// 缓存失效放在事务提交之后，避免提交前的并发读回填旧值
	s.ActivityRepo.InvalidateCache(userID, now)
	monitoring.TaskCompletionCounter.WithLabelValues(in.TrackSlug).Inc()
	return completion, nil
}

// applyProgress 推进进度账本。未报名（无进度记录）时跳过，完成日志照常保留。
// 翻转规则：上报的 task_index（1 起）达到每课任务数时本课完结，
// 课计数 +1、课索引前移、任务索引归零；否则任务索引置为上报值。
func (s *CompletionService) applyProgress(tx *gorm.DB, userID uint, in CompletionInput, now time.Time) error {
	var progress model.TrackProgress
	err := tx.Where("user_id = ? AND track_slug = ?", userID, in.TrackSlug).First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	fields := map[string]interface{}{
		"tasks_completed":    gorm.Expr("tasks_completed + 1"),
		"current_task_index": in.TaskIndex,
		"last_accessed":      now,
	}

	if in.TaskIndex >= util.TasksPerLesson {
		fields["lessons_completed"] = gorm.Expr("lessons_completed + 1")
		fields["current_lesson_index"] = in.LessonIndex + 1
		fields["current_task_index"] = 0
	}

	fields["percent_complete"] = s.Progress.PercentComplete(in.TrackSlug, progress.TasksCompleted+1)

	return s.ProgressRepo.ApplyCompletion(tx, progress.ID, fields)
}

// ListCompletions 按完成时间升序返回某轨道的全部完成记录
func (s *CompletionService) ListCompletions(userID uint, trackSlug string) ([]model.TaskCompletion, error) {
	return s.CompletionRepo.FindByUserAndTrack(userID, trackSlug)
}

// LatestFeedback 返回最近一条反馈摘要，用于个性化下一次出题
func (s *CompletionService) LatestFeedback(userID uint, trackSlug string) (string, error) {
	return s.CompletionRepo.FindLatestFeedback(userID, trackSlug)
}
