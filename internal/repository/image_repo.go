package repository

import (
	"context"

	"gorm.io/gorm"

	"bloomzon_dev_v1_202609/internal/model"
)

// ==================== 接口定义 ====================

// ImageRepository 商品图库仓储接口
type ImageRepository interface {
	ListByProduct(ctx context.Context, productRef int64) ([]model.ProductImage, error)
	BatchCreate(ctx context.Context, images []model.ProductImage) error
	DeleteByProduct(ctx context.Context, productRef int64) error
	MaxOrder(ctx context.Context, productRef int64) (int, error)
	HasPrimary(ctx context.Context, productRef int64) (bool, error)

	WithTx(tx *gorm.DB) ImageRepository
}

// ==================== 仓储实现 ====================

type imageRepo struct {
	db *gorm.DB
}

// NewImageRepository 创建图库仓储
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepo{db: db}
}

func (r *imageRepo) ListByProduct(ctx context.Context, productRef int64) ([]model.ProductImage, error) {
	var images []model.ProductImage
	err := r.db.WithContext(ctx).
		Where("product_ref = ?", productRef).
		Order("sort_order ASC").
		Find(&images).Error
	return images, err
}

func (r *imageRepo) BatchCreate(ctx context.Context, images []model.ProductImage) error {
	if len(images) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&images).Error
}

func (r *imageRepo) DeleteByProduct(ctx context.Context, productRef int64) error {
	return r.db.WithContext(ctx).
		Where("product_ref = ?", productRef).
		Delete(&model.ProductImage{}).Error
}

// MaxOrder 查询当前最大排序号，追加模式从 max+1 续排
func (r *imageRepo) MaxOrder(ctx context.Context, productRef int64) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).
		Model(&model.ProductImage{}).
		Where("product_ref = ?", productRef).
		Select("MAX(sort_order)").
		Scan(&max).Error
	if err != nil {
		return -1, err
	}
	if max == nil {
		return -1, nil
	}
	return *max, nil
}

func (r *imageRepo) HasPrimary(ctx context.Context, productRef int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ProductImage{}).
		Where("product_ref = ? AND is_primary = ?", productRef, true).
		Count(&count).Error
	return count > 0, err
}

func (r *imageRepo) WithTx(tx *gorm.DB) ImageRepository {
	return &imageRepo{db: tx}
}
