package repository

import (
	"mentora_backend/internal/model"

	"gorm.io/gorm"
)

type TaskCompletionRepository struct {
	DB *gorm.DB
}

func NewTaskCompletionRepository(db *gorm.DB) *TaskCompletionRepository {
	return &TaskCompletionRepository{DB: db}
}

// Create 插入完成记录。重复的 (user_id, track_slug, task_id)
// 由唯一索引拒绝，调用方通过 gorm.ErrDuplicatedKey 识别。
func (r *TaskCompletionRepository) Create(tx *gorm.DB, completion *model.TaskCompletion) error {
	return tx.Create(completion).Error
}

func (r *TaskCompletionRepository) FindByUserAndTrack(userID uint, trackSlug string) ([]model.TaskCompletion, error) {
	var completions []model.TaskCompletion
	err := r.DB.Where("user_id = ? AND track_slug = ?", userID, trackSlug).
		Order("completed_at ASC").
		Find(&completions).Error
	return completions, err
}

// FindLatestFeedback 返回最近一条带 feedback_summary 的完成记录的摘要，没有则返回空串
func (r *TaskCompletionRepository) FindLatestFeedback(userID uint, trackSlug string) (string, error) {
	var completion model.TaskCompletion
	err := r.DB.Where("user_id = ? AND track_slug = ? AND feedback_summary <> ''", userID, trackSlug).
		Order("completed_at DESC").
		First(&completion).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", err
	}
	return completion.FeedbackSummary, nil
}
