package dto

// ==================== 目录请求 ====================

// AddCategoryReq 新增类目（可同时带子类目）
type AddCategoryReq struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description"`
	Subcategories []string `json:"subcategories"`
}

// ==================== 目录响应 ====================

// SubcategoryResp 子类目
type SubcategoryResp struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CategoryResp 类目（含子类目）
type CategoryResp struct {
	ID            int64             `json:"id"`
	Name          string            `json:"name"`
	Slug          string            `json:"slug"`
	Subcategories []SubcategoryResp `json:"subcategories"`
}

// DropdownItemResp 下拉项
type DropdownItemResp struct {
	ID    int64  `json:"id"`
	Value string `json:"value"`
	Label string `json:"label"`
}

// DropdownDataResp 向导表单全部下拉数据
type DropdownDataResp struct {
	Categories          []CategoryResp     `json:"categories"`
	ProductIDTypes      []DropdownItemResp `json:"productIdTypes"`
	Conditions          []DropdownItemResp `json:"conditions"`
	ClosureTypes        []DropdownItemResp `json:"closureTypes"`
	OuterMaterials      []DropdownItemResp `json:"outerMaterials"`
	Styles              []DropdownItemResp `json:"styles"`
	Genders             []DropdownItemResp `json:"genders"`
	StrapTypes          []DropdownItemResp `json:"strapTypes"`
	Countries           []DropdownItemResp `json:"countries"`
	FulfillmentChannels []DropdownItemResp `json:"fulfillmentChannels"`
}
