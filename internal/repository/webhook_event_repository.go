package repository

import (
	"algo_prep_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WebhookEventRepository struct {
	DB *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) *WebhookEventRepository {
	return &WebhookEventRepository{DB: db}
}

// Record 写入审计记录。事件ID唯一索引，提供方重投同一事件时
// 保留首次记录（处理器本身幂等，重复行没有价值）。
func (r *WebhookEventRepository) Record(event *model.WebhookEvent) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(event).Error
}

func (r *WebhookEventRepository) FindByEventID(eventID string) (*model.WebhookEvent, error) {
	var event model.WebhookEvent
	err := r.DB.Where("event_id = ?", eventID).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// PruneBefore 清理过期审计记录
func (r *WebhookEventRepository) PruneBefore(cutoff time.Time) (int64, error) {
	res := r.DB.Unscoped().Where("created_at < ?", cutoff).Delete(&model.WebhookEvent{})
	return res.RowsAffected, res.Error
}
