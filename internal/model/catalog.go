package model

// ==================== 目录表 ====================

// Category 商品类目
type Category struct {
	BaseModel

	Name        string `gorm:"size:100;uniqueIndex;not null"`
	Slug        string `gorm:"size:120;index"`
	Description string `gorm:"size:255"`
	Order       int    `gorm:"column:sort_order;default:0"`
	IsActive    bool   `gorm:"default:true"`

	Subcategories []Subcategory `gorm:"foreignKey:CategoryID"`
}

func (Category) TableName() string {
	return "categories"
}

// Subcategory 子类目
type Subcategory struct {
	BaseModel

	CategoryID int64  `gorm:"index;not null"`
	Name       string `gorm:"size:100;not null"`
	Slug       string `gorm:"size:120;index"`
	Order      int    `gorm:"column:sort_order;default:0"`
	IsActive   bool   `gorm:"default:true"`
}

func (Subcategory) TableName() string {
	return "subcategories"
}

// ==================== 下拉数据 ====================

// 下拉类型
const (
	DropdownProductIDType      = "productIdType"
	DropdownCondition          = "condition"
	DropdownClosureType        = "closureType"
	DropdownOuterMaterial      = "outerMaterial"
	DropdownStyle              = "style"
	DropdownGender             = "gender"
	DropdownStrapType          = "strapType"
	DropdownCountry            = "country"
	DropdownFulfillmentChannel = "fulfillmentChannel"
)

// DropdownItem 向导表单下拉项（按 type 分组）
type DropdownItem struct {
	BaseModel

	Type     string `gorm:"size:50;index:idx_type_active;not null"`
	Value    string `gorm:"size:100;not null"`
	Label    string `gorm:"size:100"`
	Order    int    `gorm:"column:sort_order;default:0"`
	IsActive bool   `gorm:"default:true;index:idx_type_active"`
}

func (DropdownItem) TableName() string {
	return "dropdown_items"
}
