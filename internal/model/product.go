package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ==================== 状态常量 ====================

const (
	// 商品状态
	ProductStatusDraft      = "draft"
	ProductStatusActive     = "active"
	ProductStatusInactive   = "inactive"
	ProductStatusOutOfStock = "out_of_stock"

	// 创建向导步骤
	StepDetails        = 1
	StepVariationTypes = 2
	StepVariations     = 3
	StepOffers         = 4
	StepGallery        = 5
	StepDescription    = 6
	StepKeywords       = 7

	// 变体维度
	VariationTypeColor   = "Color"
	VariationTypeSize    = "Size"
	VariationTypeEdition = "Edition"

	// 默认值（Step 1 占位，后续步骤覆盖）
	DefaultCondition          = "New"
	DefaultFulfillmentChannel = "Bloomzon Pickup"
	DefaultDescription        = "Pending"
)

// ==================== 商品主表 ====================

// Product 商品刊登（聚合根）
// 由 7 步向导逐步填充，seller_id 隔离所有写操作
type Product struct {
	BaseModel

	// --- 身份 ---
	ProductID string `gorm:"size:20;uniqueIndex;not null"` // 对外商品号 BLXXXXXXXX，创建后不可变
	SellerID  int64  `gorm:"index:idx_seller_status;not null"`

	// --- 分类 ---
	ProductCategory    string `gorm:"size:100;index"`
	ProductSubCategory string `gorm:"size:100"`

	// --- 基础属性 ---
	ProductName       string `gorm:"size:255;not null"`
	ProductIDType     string `gorm:"size:50"`
	BrandName         string `gorm:"size:100"`
	NoBrand           bool   `gorm:"default:false"`
	ModelNumber       string `gorm:"size:100"`
	ClosureType       string `gorm:"size:50"`
	OuterMaterialType string `gorm:"size:50"`
	Style             string `gorm:"size:50"`
	Gender            string `gorm:"size:20"`
	NumberOfItems     int    `gorm:"default:1"`
	StrapType         string `gorm:"size:50"`
	BookingDate       string `gorm:"size:30"`
	ShippingCountry   string `gorm:"size:50"`
	CountryOfRegion   string `gorm:"size:50"`

	// --- 变体维度 (Step 2) ---
	VariationTypes StringSlice `gorm:"type:json"`
	Colors         StringSlice `gorm:"type:json"`
	Sizes          StringSlice `gorm:"type:json"`
	Editions       StringSlice `gorm:"type:json"`

	// --- 报价 (Step 4) ---
	// SellerSku 全局唯一，唯一索引是最终保障，服务层预检查仅用于友好报错
	SellerSku          string           `gorm:"size:120;uniqueIndex;not null"`
	YourPrice          decimal.Decimal  `gorm:"type:decimal(12,2)"`
	ListPrice          *decimal.Decimal `gorm:"type:decimal(12,2)"`
	MaximumRetailPrice *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Quantity           int              `gorm:"default:0"`
	Condition          string           `gorm:"size:30"`
	FulfillmentChannel string           `gorm:"size:50"`

	// --- 文描 (Step 6) ---
	Description  string      `gorm:"type:text"`
	BulletPoints StringSlice `gorm:"type:json"`

	// --- 关键词 (Step 7) ---
	Keywords StringSlice `gorm:"type:json"`

	// --- 进度与状态 ---
	CurrentStep int        `gorm:"default:1"` // 1-7，仅作进度提示，任何步骤可重复提交
	Status      string     `gorm:"size:20;index:idx_seller_status;default:draft"`
	CompletedAt *time.Time // 首次转为 active 时写入，之后不再变更
	Views       int64      `gorm:"default:0"`

	// --- 关联关系 ---
	Variations []ProductVariation `gorm:"foreignKey:ProductRef"`
	Images     []ProductImage     `gorm:"foreignKey:ProductRef"`
}

func (Product) TableName() string {
	return "products"
}

// IsPlaceholderSku 判断是否仍为 Step 1 生成的占位 SKU
func (p *Product) IsPlaceholderSku() bool {
	return p.SellerSku == "" || strings.Contains(p.SellerSku, "-TEMP-")
}

// ==================== 商品变体 ====================

// ProductVariation 单个可售变体（颜色/尺寸/版本组合）
// 整组随 Step 3 每次提交整体替换，不做单条增量更新
type ProductVariation struct {
	BaseModel

	ProductRef int64    `gorm:"index;not null"` // products.id
	Product    *Product `gorm:"foreignKey:ProductRef;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	Color   string `gorm:"size:50"`
	Size    string `gorm:"size:50"`
	Edition string `gorm:"size:50"`

	// SKU 未提供时按 {productId}-{color}-{size} 派生，大写、空白转连字符
	Sku            string `gorm:"size:150;index"`
	ProductIDValue string `gorm:"size:100"`
	ProductIDType  string `gorm:"size:50"`

	Price     *decimal.Decimal `gorm:"type:decimal(12,2)"` // 为空时继承商品报价
	Quantity  int              `gorm:"default:0"`
	Condition string           `gorm:"size:30"`

	// 变体图，至多一张，存对象存储 URL
	Image string `gorm:"size:512"`
}

func (ProductVariation) TableName() string {
	return "product_variations"
}

// ==================== 商品图库 ====================

// ProductImage 商品级图库（非变体图），有序且恰有一张主图
type ProductImage struct {
	BaseModel

	ProductRef int64    `gorm:"index;not null"`
	Product    *Product `gorm:"foreignKey:ProductRef;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	URL        string `gorm:"size:512;not null"`
	StorageKey string `gorm:"size:255"` // 对象存储句柄，删除用

	OriginalName string `gorm:"size:255"`
	Size         int64  `gorm:"default:0"`
	MimeType     string `gorm:"size:50"`

	Order     int  `gorm:"column:sort_order;default:0"` // 同一商品内不重复
	IsPrimary bool `gorm:"default:false"`
}

func (ProductImage) TableName() string {
	return "product_images"
}
