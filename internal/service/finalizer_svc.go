package service

import (
	"time"

	"bloomzon_dev_v1_202609/internal/model"
)

// ==================== 发布校验 ====================

// ListingFinalizer 负责 draft -> active 这一条边
// 校验 Step 1-6 必填项的并集；向导 Step 7 与一步式创建共用
type ListingFinalizer struct{}

// NewListingFinalizer 创建发布校验器
func NewListingFinalizer() *ListingFinalizer {
	return &ListingFinalizer{}
}

// Validate 检查商品是否具备发布条件
// 价格、SKU 用"非占位默认值"判断：Step 1 会写入 0 价与临时 SKU，
// 单纯非空检查挡不住跳过 Step 4 的草稿
func (f *ListingFinalizer) Validate(p *model.Product) error {
	if p.ProductName == "" {
		return NewValidationError("商品名称未填写")
	}
	if p.ProductCategory == "" || p.ProductSubCategory == "" {
		return NewValidationError("商品类目未填写")
	}
	if p.IsPlaceholderSku() {
		return NewValidationError("卖家 SKU 未设置，请先完成报价步骤")
	}
	if !p.YourPrice.IsPositive() {
		return NewValidationError("商品价格未设置，请先完成报价步骤")
	}
	if p.Quantity < 0 {
		return NewValidationError("商品数量不能为负")
	}
	if p.Condition == "" {
		return NewValidationError("商品成色未填写")
	}
	if p.FulfillmentChannel == "" {
		return NewValidationError("配送方式未填写")
	}
	if p.Description == "" {
		return NewValidationError("商品描述未填写")
	}
	return nil
}

// Finalize 校验通过后置为 active
// completedAt 只在首次转 active 时写入，重复提交 Step 7 不会刷新
func (f *ListingFinalizer) Finalize(p *model.Product) error {
	if err := f.Validate(p); err != nil {
		return err
	}

	p.Status = model.ProductStatusActive
	if p.CompletedAt == nil {
		now := time.Now()
		p.CompletedAt = &now
	}
	return nil
}
