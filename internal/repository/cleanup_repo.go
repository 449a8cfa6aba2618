package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"bloomzon_dev_v1_202609/internal/model"
)

// ==================== 接口定义 ====================

// CleanupRepository 媒体清理台账仓储接口
type CleanupRepository interface {
	Create(ctx context.Context, record *model.MediaCleanupFailure) error
	ListPending(ctx context.Context, limit int) ([]model.MediaCleanupFailure, error)
	MarkDone(ctx context.Context, id int64) error
	MarkRetried(ctx context.Context, id int64, attempts int, reason string) error
}

// ==================== 仓储实现 ====================

type cleanupRepo struct {
	db *gorm.DB
}

// NewCleanupRepository 创建清理台账仓储
func NewCleanupRepository(db *gorm.DB) CleanupRepository {
	return &cleanupRepo{db: db}
}

func (r *cleanupRepo) Create(ctx context.Context, record *model.MediaCleanupFailure) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *cleanupRepo) ListPending(ctx context.Context, limit int) ([]model.MediaCleanupFailure, error) {
	var records []model.MediaCleanupFailure
	err := r.db.WithContext(ctx).
		Where("status = ?", model.CleanupStatusPending).
		Order("id ASC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (r *cleanupRepo) MarkDone(ctx context.Context, id int64) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&model.MediaCleanupFailure{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        model.CleanupStatusDone,
			"last_tried_at": &now,
		}).Error
}

// MarkRetried 记录一次失败重试，超过上限后放弃并等待人工处理
func (r *cleanupRepo) MarkRetried(ctx context.Context, id int64, attempts int, reason string) error {
	now := time.Now()
	status := model.CleanupStatusPending
	if attempts >= model.CleanupMaxAttempts {
		status = model.CleanupStatusGivenUp
	}
	return r.db.WithContext(ctx).
		Model(&model.MediaCleanupFailure{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":      attempts,
			"status":        status,
			"reason":        reason,
			"last_tried_at": &now,
		}).Error
}
