package model

import (
	"time"

	"gorm.io/datatypes"
)

// ==================== 媒体清理台账 ====================

const (
	CleanupStatusPending = "pending"
	CleanupStatusDone    = "done"
	CleanupStatusGivenUp = "given_up"

	// 超过该次数后不再重试，等待人工处理
	CleanupMaxAttempts = 5
)

// 清理来源操作
const (
	CleanupSourceVariationReplace = "variation_replace"
	CleanupSourceGalleryReplace   = "gallery_replace"
	CleanupSourceProductDelete    = "product_delete"
)

// MediaCleanupFailure 对象存储删除失败记录
// 替换/删除流程中删旧图失败时写入，由定时任务兜底重试；
// 写入本身也是尽力而为，失败只打日志，绝不影响业务写入
type MediaCleanupFailure struct {
	BaseModel

	ProductRef int64  `gorm:"index"`
	URL        string `gorm:"size:512;not null"`
	SourceOp   string `gorm:"size:30;index"`
	Reason     string `gorm:"size:512"`

	Attempts    int        `gorm:"default:0"`
	Status      string     `gorm:"size:20;index;default:pending"`
	LastTriedAt *time.Time

	Context datatypes.JSON `gorm:"type:json"` // 排障用上下文（seller、sku 等）
}

func (MediaCleanupFailure) TableName() string {
	return "media_cleanup_failures"
}
