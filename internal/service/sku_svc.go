package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"bloomzon_dev_v1_202609/internal/repository"
)

// ==================== SKU 注册表 ====================

// SkuRegistry 卖家 SKU 全局唯一性检查
// 预检查只为友好报错；并发窗口内漏网的重复由 seller_sku 唯一索引兜底，
// 写入报唯一键冲突时调用方用 wrapDuplicateError 转成同样的 ConflictError
type SkuRegistry struct {
	productRepo repository.ProductRepository
}

// NewSkuRegistry 创建 SKU 注册表
func NewSkuRegistry(productRepo repository.ProductRepository) *SkuRegistry {
	return &SkuRegistry{productRepo: productRepo}
}

// EnsureUnique 检查 SKU 未被其他商品占用（excludeID 排除正在编辑的商品）
func (s *SkuRegistry) EnsureUnique(ctx context.Context, sku string, excludeID int64) error {
	if strings.TrimSpace(sku) == "" {
		return NewValidationError("卖家 SKU 不能为空")
	}

	exists, err := s.productRepo.ExistsBySellerSku(ctx, sku, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return NewConflictError("卖家 SKU 已存在")
	}
	return nil
}

// ==================== SKU 派生 ====================

var whitespaceRe = regexp.MustCompile(`\s`)

// DeriveVariationSku 变体未提供 SKU 时按 {productId}-{color}-{size} 派生
// 全大写，空白字符转为连字符
func DeriveVariationSku(productID, color, size string) string {
	sku := fmt.Sprintf("%s-%s-%s", productID, color, size)
	sku = strings.ToUpper(sku)
	return whitespaceRe.ReplaceAllString(sku, "-")
}

// PlaceholderSku Step 1 占位 SKU，Step 4 提交真实 SKU 后替换
func PlaceholderSku(productID string, millis int64) string {
	return fmt.Sprintf("%s-TEMP-%d", productID, millis)
}
