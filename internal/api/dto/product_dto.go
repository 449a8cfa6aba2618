package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"bloomzon_dev_v1_202609/internal/model"
)

// ==================== 上传文件 ====================

// UploadFile 已读入内存的上传文件（controller 从 multipart 解出后传给 service）
type UploadFile struct {
	Data        []byte
	Filename    string
	ContentType string
	Size        int64
}

// ==================== 向导各步请求 ====================

// SaveDetailsReq Step 1 基础信息
type SaveDetailsReq struct {
	ProductCategory    string `json:"productCategory" binding:"required"`
	ProductSubCategory string `json:"productSubCategory" binding:"required"`
	ProductName        string `json:"productName" binding:"required"`
	ProductIDType      string `json:"productIdType"`
	BrandName          string `json:"brandName"`
	NoBrand            bool   `json:"noBrand"`
	ModelNumber        string `json:"modelNumber"`
	ClosureType        string `json:"closureType"`
	OuterMaterialType  string `json:"outerMaterialType"`
	Style              string `json:"style"`
	Gender             string `json:"gender"`
	NumberOfItems      int    `json:"numberOfItems"`
	StrapType          string `json:"strapType"`
	BookingDate        string `json:"bookingDate"`
	ShippingCountry    string `json:"shippingCountry"`
}

// SaveVariationTypesReq Step 2 变体维度
type SaveVariationTypesReq struct {
	VariationTypes []string `json:"variationTypes"`
	Colors         []string `json:"colors"`
	Sizes          []string `json:"sizes"`
	Editions       []string `json:"editions"`
}

// VariationSpec Step 3 单个变体（与上传文件按下标一一对应）
type VariationSpec struct {
	Color          string           `json:"color"`
	Size           string           `json:"size"`
	Edition        string           `json:"edition"`
	Sku            string           `json:"sku"`
	ProductIDValue string           `json:"productIdValue"`
	ProductIDType  string           `json:"productIdType"`
	Price          *decimal.Decimal `json:"price"`
	Quantity       int              `json:"quantity"`
	Condition      string           `json:"condition"`
	Image          string           `json:"image"` // 一步式创建时可直接带已有 URL
}

// SaveOfferReq Step 4 报价
type SaveOfferReq struct {
	SellerSku          string           `json:"sellerSku" binding:"required"`
	YourPrice          decimal.Decimal  `json:"yourPrice"`
	ListPrice          *decimal.Decimal `json:"listPrice"`
	MaximumRetailPrice *decimal.Decimal `json:"maximumRetailPrice"`
	Quantity           int              `json:"quantity"`
	Condition          string           `json:"condition"`
	CountryOfRegion    string           `json:"countryOfRegion"`
	FulfillmentChannel string           `json:"fulfillmentChannel"`
}

// SaveDescriptionReq Step 6 文描
type SaveDescriptionReq struct {
	Description  string   `json:"description" binding:"required"`
	BulletPoints []string `json:"bulletPoints"`
}

// SaveKeywordsReq Step 7 关键词（提交后转为 active）
type SaveKeywordsReq struct {
	Keywords []string `json:"keywords"`
}

// ==================== 一步式创建 ====================

// CompleteCreationReq 跳过向导，一次提交全部字段
type CompleteCreationReq struct {
	SaveDetailsReq
	VariationTypes []string        `json:"variationTypes"`
	Colors         []string        `json:"colors"`
	Sizes          []string        `json:"sizes"`
	Editions       []string        `json:"editions"`
	Variations     []VariationSpec `json:"variations"`

	SellerSku          string           `json:"sellerSku"`
	YourPrice          decimal.Decimal  `json:"yourPrice"`
	ListPrice          *decimal.Decimal `json:"listPrice"`
	MaximumRetailPrice *decimal.Decimal `json:"maximumRetailPrice"`
	Quantity           int              `json:"quantity"`
	Condition          string           `json:"condition"`
	CountryOfRegion    string           `json:"countryOfRegion"`
	FulfillmentChannel string           `json:"fulfillmentChannel"`

	Description  string   `json:"description"`
	BulletPoints []string `json:"bulletPoints"`
	Keywords     []string `json:"keywords"`
}

// ==================== 更新与状态 ====================

// UpdateProductReq 发布后编辑，仅白名单字段生效
type UpdateProductReq struct {
	ProductName  *string          `json:"productName"`
	BrandName    *string          `json:"brandName"`
	ModelNumber  *string          `json:"modelNumber"`
	Description  *string          `json:"description"`
	BulletPoints []string         `json:"bulletPoints"`
	Keywords     []string         `json:"keywords"`
	Quantity     *int             `json:"quantity"`
	YourPrice    *decimal.Decimal `json:"yourPrice"`
	ListPrice    *decimal.Decimal `json:"listPrice"`

	MaximumRetailPrice *decimal.Decimal `json:"maximumRetailPrice"`

	Status *string `json:"status"`
}

// UpdateStatusReq 状态流转，仅限 active/inactive/out_of_stock
type UpdateStatusReq struct {
	Status string `json:"status" binding:"required"`
}

// ==================== 响应 ====================

// ProductResp 商品详情
type ProductResp struct {
	ID                 int64              `json:"id"`
	ProductID          string             `json:"productId"`
	ProductCategory    string             `json:"productCategory"`
	ProductSubCategory string             `json:"productSubCategory"`
	ProductName        string             `json:"productName"`
	BrandName          string             `json:"brandName"`
	ModelNumber        string             `json:"modelNumber"`
	SellerSku          string             `json:"sellerSku"`
	YourPrice          decimal.Decimal    `json:"yourPrice"`
	ListPrice          *decimal.Decimal   `json:"listPrice"`
	MaximumRetailPrice *decimal.Decimal   `json:"maximumRetailPrice"`
	Quantity           int                `json:"quantity"`
	Condition          string             `json:"condition"`
	FulfillmentChannel string             `json:"fulfillmentChannel"`
	Description        string             `json:"description"`
	BulletPoints       []string           `json:"bulletPoints"`
	Keywords           []string           `json:"keywords"`
	VariationTypes     []string           `json:"variationTypes"`
	CurrentStep        int                `json:"currentStep"`
	Status             string             `json:"status"`
	CompletedAt        *time.Time         `json:"completedAt"`
	Views              int64              `json:"views"`
	PrimaryImage       string             `json:"primaryImage"`
	Variations         []VariationResp    `json:"variations,omitempty"`
	Images             []ProductImageResp `json:"images,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// VariationResp 变体详情
type VariationResp struct {
	ID             int64            `json:"id"`
	Color          string           `json:"color"`
	Size           string           `json:"size"`
	Edition        string           `json:"edition"`
	Sku            string           `json:"sku"`
	ProductIDValue string           `json:"productIdValue"`
	ProductIDType  string           `json:"productIdType"`
	Price          *decimal.Decimal `json:"price"`
	Quantity       int              `json:"quantity"`
	Condition      string           `json:"condition"`
	Image          string           `json:"image"`
}

// ProductImageResp 图库条目
type ProductImageResp struct {
	ID           int64  `json:"id"`
	URL          string `json:"url"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimeType"`
	Order        int    `json:"order"`
	IsPrimary    bool   `json:"isPrimary"`
}

// Pagination 分页信息
type Pagination struct {
	CurrentPage   int   `json:"currentPage"`
	TotalPages    int   `json:"totalPages"`
	TotalProducts int64 `json:"totalProducts"`
	Limit         int   `json:"limit"`
	HasNext       bool  `json:"hasNext"`
	HasPrev       bool  `json:"hasPrev"`
}

// ProductListResp 商品列表响应
type ProductListResp struct {
	Code       int           `json:"code"`
	Message    string        `json:"message"`
	Data       []ProductResp `json:"data"`
	Pagination Pagination    `json:"pagination"`
}

// ==================== 转换辅助 ====================

// ToVariationResp 变体模型转响应
func ToVariationResp(v *model.ProductVariation) VariationResp {
	return VariationResp{
		ID:             v.ID,
		Color:          v.Color,
		Size:           v.Size,
		Edition:        v.Edition,
		Sku:            v.Sku,
		ProductIDValue: v.ProductIDValue,
		ProductIDType:  v.ProductIDType,
		Price:          v.Price,
		Quantity:       v.Quantity,
		Condition:      v.Condition,
		Image:          v.Image,
	}
}

// ToImageResp 图库模型转响应
func ToImageResp(img *model.ProductImage) ProductImageResp {
	return ProductImageResp{
		ID:           img.ID,
		URL:          img.URL,
		OriginalName: img.OriginalName,
		Size:         img.Size,
		MimeType:     img.MimeType,
		Order:        img.Order,
		IsPrimary:    img.IsPrimary,
	}
}
