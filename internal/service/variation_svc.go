package service

import (
	"context"
	"fmt"

	"bloomzon_dev_v1_202609/internal/api/dto"
	"bloomzon_dev_v1_202609/internal/model"
	"bloomzon_dev_v1_202609/internal/repository"
)

// ==================== 变体集合服务 ====================

// VariationSetService 管理单个商品的变体组
// Step 3 每次提交整组替换：传新图 -> 删旧图(尽力) -> 清旧记录 -> 批量写新记录。
// 删旧图与写新记录之间存在旧图已删、新记录未落库的窗口，读方需容忍瞬时空集
type VariationSetService struct {
	variationRepo repository.VariationRepository
	cleanupRepo   repository.CleanupRepository
	store         MediaStore
}

// NewVariationSetService 创建变体集合服务
func NewVariationSetService(
	variationRepo repository.VariationRepository,
	cleanupRepo repository.CleanupRepository,
	store MediaStore,
) *VariationSetService {
	return &VariationSetService{
		variationRepo: variationRepo,
		cleanupRepo:   cleanupRepo,
		store:         store,
	}
}

// ReplaceAll 整组替换商品变体
// specs 与 files 按下标一一对应：第 N 个文件挂到第 N 个变体上；
// 两个序列各自乱序属调用方错误，这里不做校验
func (s *VariationSetService) ReplaceAll(
	ctx context.Context,
	product *model.Product,
	specs []dto.VariationSpec,
	files []*dto.UploadFile,
) ([]model.ProductVariation, error) {
	if len(specs) == 0 {
		return nil, NewValidationError("变体列表不能为空")
	}
	for i, spec := range specs {
		if spec.Price != nil && spec.Price.IsNegative() {
			return nil, NewValidationError(fmt.Sprintf("第 %d 个变体价格不能为负", i+1))
		}
		if spec.Quantity < 0 {
			return nil, NewValidationError(fmt.Sprintf("第 %d 个变体数量不能为负", i+1))
		}
	}

	// 1. 先传新图，传失败时旧数据毫发无损
	imageURLs := make([]string, len(specs))
	for i := range specs {
		if i < len(files) && files[i] != nil {
			url, err := s.store.Upload(ctx, files[i].Data, files[i].Filename, files[i].ContentType)
			if err != nil {
				return nil, fmt.Errorf("上传变体图失败: %w", err)
			}
			imageURLs[i] = url
		} else if specs[i].Image != "" {
			imageURLs[i] = specs[i].Image
		}
	}

	// 2. 删旧图（尽力而为，失败写台账后继续）
	oldVariations, err := s.variationRepo.ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	for _, old := range oldVariations {
		bestEffortDeleteMedia(ctx, s.store, s.cleanupRepo, product.ID, old.Image,
			model.CleanupSourceVariationReplace,
			map[string]interface{}{"sku": old.Sku, "seller_id": product.SellerID})
	}

	// 3. 清旧记录（整表替换，不做 diff）
	if err := s.variationRepo.DeleteByProduct(ctx, product.ID); err != nil {
		return nil, err
	}

	// 4. 组装并批量写入新记录
	variations := make([]model.ProductVariation, 0, len(specs))
	for i, spec := range specs {
		sku := spec.Sku
		if sku == "" {
			sku = DeriveVariationSku(product.ProductID, spec.Color, spec.Size)
		}

		variations = append(variations, model.ProductVariation{
			ProductRef:     product.ID,
			Color:          spec.Color,
			Size:           spec.Size,
			Edition:        spec.Edition,
			Sku:            sku,
			ProductIDValue: spec.ProductIDValue,
			ProductIDType:  spec.ProductIDType,
			Price:          spec.Price,
			Quantity:       spec.Quantity,
			Condition:      spec.Condition,
			Image:          imageURLs[i],
		})
	}

	if err := s.variationRepo.BatchCreate(ctx, variations); err != nil {
		return nil, err
	}

	return variations, nil
}

// DeleteAllWithMedia 删除商品的全部变体及其媒体（商品删除流程用）
func (s *VariationSetService) DeleteAllWithMedia(ctx context.Context, product *model.Product) error {
	variations, err := s.variationRepo.ListByProduct(ctx, product.ID)
	if err != nil {
		return err
	}
	for _, v := range variations {
		bestEffortDeleteMedia(ctx, s.store, s.cleanupRepo, product.ID, v.Image,
			model.CleanupSourceProductDelete,
			map[string]interface{}{"sku": v.Sku, "seller_id": product.SellerID})
	}
	return s.variationRepo.DeleteByProduct(ctx, product.ID)
}

// ListByProduct 查询商品变体组
func (s *VariationSetService) ListByProduct(ctx context.Context, productRef int64) ([]model.ProductVariation, error) {
	return s.variationRepo.ListByProduct(ctx, productRef)
}
