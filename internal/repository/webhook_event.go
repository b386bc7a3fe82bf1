package repository

import (
	"context"
	"storefront-api/internal/model"
	"time"

	"gorm.io/gorm"
)

type WebhookEventRepository interface {
	Exists(ctx context.Context, tx *gorm.DB, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, tx *gorm.DB, event *model.WebhookEvent) error
}

type webhookEventRepositoryIml struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepositoryIml{db: db}
}

func (r *webhookEventRepositoryIml) Exists(ctx context.Context, tx *gorm.DB, eventID string) (bool, error) {
	var count int64
	err := pick(ctx, r.db, tx).Model(&model.WebhookEvent{}).
		Where("event_id = ?", eventID).
		Count(&count).Error

	return count > 0, err
}

func (r *webhookEventRepositoryIml) MarkProcessed(ctx context.Context, tx *gorm.DB, event *model.WebhookEvent) error {
	event.ProcessedAt = time.Now()
	return pick(ctx, r.db, tx).Create(event).Error
}
