package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"bloomzon_dev_v1_202609/internal/model"
)

// ==================== 接口定义 ====================

// ProductRepository 商品仓储接口
type ProductRepository interface {
	// 基础 CRUD
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	GetBySellerAndID(ctx context.Context, sellerID, id int64) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	HardDelete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)

	// 唯一性检查
	ExistsByProductID(ctx context.Context, productID string) (bool, error)
	ExistsBySellerSku(ctx context.Context, sku string, excludeID int64) (bool, error)

	// 统计
	IncrementViews(ctx context.Context, id int64) error

	// 事务
	WithTx(tx *gorm.DB) ProductRepository
	Transaction(ctx context.Context, fn func(txRepo ProductRepository) error) error
}

// ==================== 过滤条件 ====================

// ProductFilter 商品列表过滤条件
type ProductFilter struct {
	SellerID int64
	Status   string
	Category string
	Search   string // 模糊匹配 名称/商品号/SKU/描述
	SortBy   string // created_at | updated_at | product_name | your_price | quantity
	Order    string // asc | desc
	Page     int
	PageSize int
}

// 排序字段白名单，防 SQL 注入
var sortableColumns = map[string]string{
	"created_at":   "created_at",
	"updated_at":   "updated_at",
	"product_name": "product_name",
	"your_price":   "your_price",
	"quantity":     "quantity",
}

// ==================== 仓储实现 ====================

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetBySellerAndID 按 (seller, id) 读取，所有写操作的归属校验入口
func (r *productRepo) GetBySellerAndID(ctx context.Context, sellerID, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND seller_id = ?", id, sellerID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *productRepo) HardDelete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&model.Product{}, id).Error
}

func (r *productRepo) List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("seller_id = ?", filter.SellerID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("product_category = ?", filter.Category)
	}
	if filter.Search != "" {
		kw := "%" + filter.Search + "%"
		query = query.Where(
			"product_name LIKE ? OR product_id LIKE ? OR seller_sku LIKE ? OR description LIKE ?",
			kw, kw, kw, kw,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortableColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(filter.Order, "asc") {
		direction = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 10
	}

	var products []model.Product
	err := query.
		Order(column + " " + direction).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepo) ExistsByProductID(ctx context.Context, productID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("product_id = ?", productID).
		Count(&count).Error
	return count > 0, err
}

// ExistsBySellerSku 排除自身后检查 SKU 占用情况
func (r *productRepo) ExistsBySellerSku(ctx context.Context, sku string, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("seller_sku = ? AND id <> ?", sku, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *productRepo) IncrementViews(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (r *productRepo) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepo{db: tx}
}

func (r *productRepo) Transaction(ctx context.Context, fn func(txRepo ProductRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
