package repository

import (
	"context"

	"gorm.io/gorm"

	"bloomzon_dev_v1_202609/internal/model"
)

// ==================== 接口定义 ====================

// VariationRepository 商品变体仓储接口
// 变体整组替换：读旧组 -> 清空 -> 批量写入新组
type VariationRepository interface {
	ListByProduct(ctx context.Context, productRef int64) ([]model.ProductVariation, error)
	BatchCreate(ctx context.Context, variations []model.ProductVariation) error
	DeleteByProduct(ctx context.Context, productRef int64) error
	CountByProduct(ctx context.Context, productRef int64) (int64, error)

	WithTx(tx *gorm.DB) VariationRepository
}

// ==================== 仓储实现 ====================

type variationRepo struct {
	db *gorm.DB
}

// NewVariationRepository 创建变体仓储
func NewVariationRepository(db *gorm.DB) VariationRepository {
	return &variationRepo{db: db}
}

func (r *variationRepo) ListByProduct(ctx context.Context, productRef int64) ([]model.ProductVariation, error) {
	var variations []model.ProductVariation
	err := r.db.WithContext(ctx).
		Where("product_ref = ?", productRef).
		Order("id ASC").
		Find(&variations).Error
	return variations, err
}

func (r *variationRepo) BatchCreate(ctx context.Context, variations []model.ProductVariation) error {
	if len(variations) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&variations).Error
}

func (r *variationRepo) DeleteByProduct(ctx context.Context, productRef int64) error {
	return r.db.WithContext(ctx).
		Where("product_ref = ?", productRef).
		Delete(&model.ProductVariation{}).Error
}

func (r *variationRepo) CountByProduct(ctx context.Context, productRef int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ProductVariation{}).
		Where("product_ref = ?", productRef).
		Count(&count).Error
	return count, err
}

func (r *variationRepo) WithTx(tx *gorm.DB) VariationRepository {
	return &variationRepo{db: tx}
}
