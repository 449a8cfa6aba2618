package repository

import (
	"context"

	"gorm.io/gorm"

	"bloomzon_dev_v1_202609/internal/model"
)

// ==================== 接口定义 ====================

// CatalogRepository 目录/下拉数据仓储接口
type CatalogRepository interface {
	// 类目
	ListActiveCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	CreateCategory(ctx context.Context, category *model.Category) error
	CreateSubcategories(ctx context.Context, subs []model.Subcategory) error
	ListActiveSubcategories(ctx context.Context, categoryID int64) ([]model.Subcategory, error)
	GetSubcategoryByName(ctx context.Context, categoryID int64, name string) (*model.Subcategory, error)

	// 下拉数据
	ListDropdownItems(ctx context.Context) ([]model.DropdownItem, error)
}

// ==================== 仓储实现 ====================

type catalogRepo struct {
	db *gorm.DB
}

// NewCatalogRepository 创建目录仓储
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepo{db: db}
}

func (r *catalogRepo) ListActiveCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.WithContext(ctx).
		Preload("Subcategories", "is_active = ?", true).
		Where("is_active = ?", true).
		Order("sort_order ASC").
		Find(&categories).Error
	return categories, err
}

func (r *catalogRepo) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).
		Preload("Subcategories").
		Where("name = ?", name).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *catalogRepo) CreateCategory(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *catalogRepo) CreateSubcategories(ctx context.Context, subs []model.Subcategory) error {
	if len(subs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&subs).Error
}

func (r *catalogRepo) ListActiveSubcategories(ctx context.Context, categoryID int64) ([]model.Subcategory, error) {
	var subs []model.Subcategory
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND is_active = ?", categoryID, true).
		Order("sort_order ASC").
		Find(&subs).Error
	return subs, err
}

func (r *catalogRepo) GetSubcategoryByName(ctx context.Context, categoryID int64, name string) (*model.Subcategory, error) {
	var sub model.Subcategory
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND name = ?", categoryID, name).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *catalogRepo) ListDropdownItems(ctx context.Context) ([]model.DropdownItem, error) {
	var items []model.DropdownItem
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("type ASC, sort_order ASC").
		Find(&items).Error
	return items, err
}
