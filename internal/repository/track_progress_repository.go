package repository

import (
	"mentora_backend/internal/model"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TrackProgressRepository struct {
	DB *gorm.DB
}

func NewTrackProgressRepository(db *gorm.DB) *TrackProgressRepository {
	return &TrackProgressRepository{DB: db}
}

func (r *TrackProgressRepository) Create(progress *model.TrackProgress) error {
	return r.DB.Create(progress).Error
}

func (r *TrackProgressRepository) FindByUserAndTrack(userID uint, trackSlug string) (*model.TrackProgress, error) {
	var progress model.TrackProgress
	err := r.DB.Where("user_id = ? AND track_slug = ?", userID, trackSlug).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *TrackProgressRepository) FindEnrolledByUser(userID uint) ([]model.TrackProgress, error) {
	var records []model.TrackProgress
	err := r.DB.Where("user_id = ? AND is_enrolled = ?", userID, true).Find(&records).Error
	return records, err
}

func (r *TrackProgressRepository) CountEnrolledByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.TrackProgress{}).
		Where("user_id = ? AND is_enrolled = ?", userID, true).
		Count(&count).Error
	return count, err
}

func (r *TrackProgressRepository) UpdatePreferences(id uint, prefs datatypes.JSONMap) error {
	return r.DB.Model(&model.TrackProgress{}).Where("id = ?", id).Update("preferences", prefs).Error
}

func (r *TrackProgressRepository) UpdatePercent(id uint, percent float64) error {
	return r.DB.Model(&model.TrackProgress{}).Where("id = ?", id).Update("percent_complete", percent).Error
}

// Touch 刷新 last_accessed
func (r *TrackProgressRepository) Touch(id uint) error {
	return r.DB.Model(&model.TrackProgress{}).Where("id = ?", id).Update("last_accessed", time.Now()).Error
}

func (r *TrackProgressRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	return r.DB.Model(&model.TrackProgress{}).Where("id = ?", id).Updates(fields).Error
}

// ApplyCompletion 在事务内应用一次任务完成：计数、课程翻转与百分比
func (r *TrackProgressRepository) ApplyCompletion(tx *gorm.DB, id uint, fields map[string]interface{}) error {
	return tx.Model(&model.TrackProgress{}).Where("id = ?", id).Updates(fields).Error
}
