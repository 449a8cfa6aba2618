package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"bloomzon_dev_v1_202609/internal/api/dto"
	"bloomzon_dev_v1_202609/internal/model"
	"bloomzon_dev_v1_202609/internal/repository"
)

// ==================== 外部服务依赖 ====================

// CategoryValidator 类目校验接口（CatalogService 实现）
type CategoryValidator interface {
	ValidateCategoryPath(ctx context.Context, category, subcategory string) error
}

// ==================== 商品服务 ====================

// ProductService 商品刊登服务（7 步向导状态机）
// currentStep 仅作进度提示：任何步骤都可对已有草稿重复提交，重复提交覆盖该步字段。
// 所有写操作按 (id, seller_id) 定位，查不到即 NotFoundError
type ProductService struct {
	productRepo  repository.ProductRepository
	variationSvc *VariationSetService
	gallerySvc   *GalleryService
	skuRegistry  *SkuRegistry
	finalizer    *ListingFinalizer
	catalog      CategoryValidator
}

// NewProductService 创建商品服务
func NewProductService(
	productRepo repository.ProductRepository,
	variationSvc *VariationSetService,
	gallerySvc *GalleryService,
	skuRegistry *SkuRegistry,
	finalizer *ListingFinalizer,
	catalog CategoryValidator,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		variationSvc: variationSvc,
		gallerySvc:   gallerySvc,
		skuRegistry:  skuRegistry,
		finalizer:    finalizer,
		catalog:      catalog,
	}
}

// ==================== Step 1: 基础信息 ====================

// CreateDraft 创建草稿
// 商品号随机生成，冲突概率按非零对待：查重失败就换一个重试
func (s *ProductService) CreateDraft(ctx context.Context, sellerID int64, req *dto.SaveDetailsReq) (*model.Product, error) {
	if req.ProductCategory == "" || req.ProductSubCategory == "" || req.ProductName == "" {
		return nil, NewValidationError("商品类目、子类目和名称不能为空")
	}
	if err := s.catalog.ValidateCategoryPath(ctx, req.ProductCategory, req.ProductSubCategory); err != nil {
		return nil, err
	}

	productID, err := s.generateProductID(ctx)
	if err != nil {
		return nil, err
	}

	numberOfItems := req.NumberOfItems
	if numberOfItems <= 0 {
		numberOfItems = 1
	}
	brandName := req.BrandName
	if req.NoBrand {
		brandName = ""
	}

	product := &model.Product{
		ProductID:          productID,
		SellerID:           sellerID,
		ProductCategory:    req.ProductCategory,
		ProductSubCategory: req.ProductSubCategory,
		ProductName:        req.ProductName,
		ProductIDType:      req.ProductIDType,
		BrandName:          brandName,
		NoBrand:            req.NoBrand,
		ModelNumber:        req.ModelNumber,
		ClosureType:        req.ClosureType,
		OuterMaterialType:  req.OuterMaterialType,
		Style:              req.Style,
		Gender:             req.Gender,
		NumberOfItems:      numberOfItems,
		StrapType:          req.StrapType,
		BookingDate:        req.BookingDate,
		ShippingCountry:    req.ShippingCountry,
		SellerSku:          PlaceholderSku(productID, time.Now().UnixMilli()),
		Condition:          model.DefaultCondition,
		FulfillmentChannel: model.DefaultFulfillmentChannel,
		Description:        model.DefaultDescription,
		Status:             model.ProductStatusDraft,
		CurrentStep:        model.StepDetails,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, wrapDuplicateError(err, "商品号或 SKU 冲突，请重试")
	}
	return product, nil
}

// ==================== Step 2: 变体维度 ====================

// SaveVariationTypes 记录适用的变体维度，未勾选的维度清空
func (s *ProductService) SaveVariationTypes(ctx context.Context, sellerID, id int64, req *dto.SaveVariationTypesReq) (*model.Product, error) {
	product, err := s.getOwned(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}

	types := req.VariationTypes
	if types == nil {
		types = []string{}
	}
	product.VariationTypes = types
	product.Colors = axisValues(types, model.VariationTypeColor, req.Colors)
	product.Sizes = axisValues(types, model.VariationTypeSize, req.Sizes)
	product.Editions = axisValues(types, model.VariationTypeEdition, req.Editions)
	product.CurrentStep = maxStep(product.CurrentStep, model.StepVariationTypes)

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func axisValues(selected []string, axis string, values []string) model.StringSlice {
	for _, t := range selected {
		if t == axis {
			if values == nil {
				return []string{}
			}
			return values
		}
	}
	return []string{}
}

// ==================== Step 3: 变体组 ====================

// SaveVariations 整组替换变体，委托 VariationSetService
func (s *ProductService) SaveVariations(
	ctx context.Context,
	sellerID, id int64,
	specs []dto.VariationSpec,
	files []*dto.UploadFile,
) (*model.Product, []model.ProductVariation, error) {
	product, err := s.getOwned(ctx, sellerID, id)
	if err != nil {
		return nil, nil, err
	}

	variations, err := s.variationSvc.ReplaceAll(ctx, product, specs, files)
	if err != nil {
		return nil, nil, err
	}

	product.CurrentStep = maxStep(product.CurrentStep, model.StepVariations)
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, nil, err
	}
	return product, variations, nil
}

// ==================== Step 4: 报价 ====================

// SaveOffer 设置 SKU 与报价，全部校验通过才写库，可安全重试
func (s *ProductService) SaveOffer(ctx context.Context, sellerID, id int64, req *dto.SaveOfferReq) (*model.Product, error) {
	if req.SellerSku == "" {
		return nil, NewValidationError("卖家 SKU 不能为空")
	}
	if req.YourPrice.IsNegative() {
		return nil, NewValidationError("价格不能为负")
	}
	if req.ListPrice != nil && req.ListPrice.IsNegative() {
		return nil, NewValidationError("标价不能为负")
	}
	if req.MaximumRetailPrice != nil && req.MaximumRetailPrice.IsNegative() {
		return nil, NewValidationError("最高零售价不能为负")
	}
	if req.Quantity < 0 {
		return nil, NewValidationError("数量不能为负")
	}

	product, err := s.getOwned(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}

	if err := s.skuRegistry.EnsureUnique(ctx, req.SellerSku, product.ID); err != nil {
		return nil, err
	}

	product.SellerSku = req.SellerSku
	product.YourPrice = req.YourPrice
	product.ListPrice = req.ListPrice
	product.MaximumRetailPrice = req.MaximumRetailPrice
	product.Quantity = req.Quantity
	product.Condition = req.Condition
	product.CountryOfRegion = req.CountryOfRegion
	product.FulfillmentChannel = req.FulfillmentChannel
	product.CurrentStep = maxStep(product.CurrentStep, model.StepOffers)

	// 并发抢同一 SKU 时预检查可能漏网，唯一索引兜底
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, wrapDuplicateError(err, "卖家 SKU 已存在")
	}
	return product, nil
}

// ==================== Step 5: 图库 ====================

// SaveGallery 整组替换图库，委托 GalleryService（本入口必须至少一张）
func (s *ProductService) SaveGallery(
	ctx context.Context,
	sellerID, id int64,
	files []*dto.UploadFile,
) (*model.Product, []model.ProductImage, error) {
	product, err := s.getOwned(ctx, sellerID, id)
	if err != nil {
		return nil, nil, err
	}

	images, err := s.gallerySvc.ReplaceAll(ctx, product, files, true)
	if err != nil {
		return nil, nil, err
	}

	product.CurrentStep = maxStep(product.CurrentStep, model.StepGallery)
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, nil, err
	}
	return product, images, nil
}

// ==================== Step 6: 文描 ====================

// SaveDescription 保存描述与卖点，空白卖点直接丢弃
func (s *ProductService) SaveDescription(ctx context.Context, sellerID, id int64, req *dto.SaveDescriptionReq) (*model.Product, error) {
	if req.Description == "" {
		return nil, NewValidationError("商品描述不能为空")
	}

	product, err := s.getOwned(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}

	bullets := make([]string, 0, len(req.BulletPoints))
	for _, bp := range req.BulletPoints {
		if strings.TrimSpace(bp) != "" {
			bullets = append(bullets, bp)
		}
	}

	product.Description = req.Description
	product.BulletPoints = bullets
	product.CurrentStep = maxStep(product.CurrentStep, model.StepDescription)

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// ==================== Step 7: 关键词并发布 ====================

// SaveKeywords 保存关键词并发布，这是 draft -> active 的唯一入口
func (s *ProductService) SaveKeywords(ctx context.Context, sellerID, id int64, req *dto.SaveKeywordsReq) (*model.Product, error) {
	product, err := s.getOwned(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}

	product.Keywords = normalizeKeywords(req.Keywords)
	product.CurrentStep = maxStep(product.CurrentStep, model.StepKeywords)

	if err := s.finalizer.Finalize(product); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// normalizeKeywords 去空白、转小写、按首次出现去重
func normalizeKeywords(keywords []string) model.StringSlice {
	seen := make(map[string]struct{}, len(keywords))
	result := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		result = append(result, kw)
	}
	return result
}

// ==================== 一步式创建 ====================

// CompleteOneShot 跳过向导一次建完
// 先做全量必填校验（含 SKU 唯一性），任何一项不过都不写库；
// 图库与变体在本路径允许为空（向导专用入口不允许）
func (s *ProductService) CompleteOneShot(
	ctx context.Context,
	sellerID int64,
	req *dto.CompleteCreationReq,
	galleryFiles []*dto.UploadFile,
) (*model.Product, error) {
	if req.ProductCategory == "" || req.ProductSubCategory == "" || req.ProductName == "" ||
		req.SellerSku == "" || req.Condition == "" || req.FulfillmentChannel == "" || req.Description == "" {
		return nil, NewValidationError("缺少必填字段")
	}
	if !req.YourPrice.IsPositive() {
		return nil, NewValidationError("价格必须大于 0")
	}
	if req.ListPrice != nil && req.ListPrice.IsNegative() {
		return nil, NewValidationError("标价不能为负")
	}
	if req.MaximumRetailPrice != nil && req.MaximumRetailPrice.IsNegative() {
		return nil, NewValidationError("最高零售价不能为负")
	}
	if req.Quantity < 0 {
		return nil, NewValidationError("数量不能为负")
	}
	if err := s.catalog.ValidateCategoryPath(ctx, req.ProductCategory, req.ProductSubCategory); err != nil {
		return nil, err
	}
	if err := s.skuRegistry.EnsureUnique(ctx, req.SellerSku, 0); err != nil {
		return nil, err
	}

	productID, err := s.generateProductID(ctx)
	if err != nil {
		return nil, err
	}

	numberOfItems := req.NumberOfItems
	if numberOfItems <= 0 {
		numberOfItems = 1
	}
	brandName := req.BrandName
	if req.NoBrand {
		brandName = ""
	}

	now := time.Now()
	product := &model.Product{
		ProductID:          productID,
		SellerID:           sellerID,
		ProductCategory:    req.ProductCategory,
		ProductSubCategory: req.ProductSubCategory,
		ProductName:        req.ProductName,
		ProductIDType:      req.ProductIDType,
		BrandName:          brandName,
		NoBrand:            req.NoBrand,
		ModelNumber:        req.ModelNumber,
		ClosureType:        req.ClosureType,
		OuterMaterialType:  req.OuterMaterialType,
		Style:              req.Style,
		Gender:             req.Gender,
		NumberOfItems:      numberOfItems,
		StrapType:          req.StrapType,
		BookingDate:        req.BookingDate,
		ShippingCountry:    req.ShippingCountry,
		VariationTypes:     emptyIfNil(req.VariationTypes),
		Colors:             emptyIfNil(req.Colors),
		Sizes:              emptyIfNil(req.Sizes),
		Editions:           emptyIfNil(req.Editions),
		SellerSku:          req.SellerSku,
		YourPrice:          req.YourPrice,
		ListPrice:          req.ListPrice,
		MaximumRetailPrice: req.MaximumRetailPrice,
		Quantity:           req.Quantity,
		Condition:          req.Condition,
		CountryOfRegion:    req.CountryOfRegion,
		FulfillmentChannel: req.FulfillmentChannel,
		Description:        req.Description,
		BulletPoints:       emptyIfNil(req.BulletPoints),
		Keywords:           normalizeKeywords(req.Keywords),
		Status:             model.ProductStatusActive,
		CurrentStep:        model.StepKeywords,
		CompletedAt:        &now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, wrapDuplicateError(err, "卖家 SKU 已存在")
	}

	// 图库与变体的媒体协调规则与向导路径完全一致
	if len(galleryFiles) > 0 {
		if _, err := s.gallerySvc.ReplaceAll(ctx, product, galleryFiles, false); err != nil {
			return nil, err
		}
	}
	if len(req.Variations) > 0 {
		if _, err := s.variationSvc.ReplaceAll(ctx, product, req.Variations, nil); err != nil {
			return nil, err
		}
	}

	return product, nil
}

func emptyIfNil(values []string) model.StringSlice {
	if values == nil {
		return []string{}
	}
	return values
}

// ==================== 查询 ====================

// GetProduct 商品详情（含变体与图库），浏览数 +1
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*model.Product, []model.ProductVariation, []model.ProductImage, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, nil, wrapRecordError(err, "商品不存在")
	}

	variations, err := s.variationSvc.ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	images, err := s.gallerySvc.ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, nil, nil, err
	}

	if err := s.productRepo.IncrementViews(ctx, product.ID); err != nil {
		return nil, nil, nil, err
	}
	return product, variations, images, nil
}

// ListProducts 卖家维度商品列表（过滤 + 排序 + 分页）
func (s *ProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, int64, error) {
	return s.productRepo.List(ctx, filter)
}

// PrimaryImageURL 取主图（无显式主图时取第一张）
func (s *ProductService) PrimaryImageURL(ctx context.Context, productRef int64) (string, error) {
	images, err := s.gallerySvc.ListByProduct(ctx, productRef)
	if err != nil {
		return "", err
	}
	if len(images) == 0 {
		return "", nil
	}
	for _, img := range images {
		if img.IsPrimary {
			return img.URL, nil
		}
	}
	return images[0].URL, nil
}

// ==================== 发布后编辑 ====================

// UpdateProduct 白名单字段更新；新图只追加，绝不隐式删除已有媒体
func (s *ProductService) UpdateProduct(
	ctx context.Context,
	sellerID, id int64,
	req *dto.UpdateProductReq,
	files []*dto.UploadFile,
) (*model.Product, error) {
	product, err := s.getOwned(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}

	if req.ProductName != nil {
		product.ProductName = *req.ProductName
	}
	if req.BrandName != nil {
		product.BrandName = *req.BrandName
	}
	if req.ModelNumber != nil {
		product.ModelNumber = *req.ModelNumber
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.BulletPoints != nil {
		product.BulletPoints = req.BulletPoints
	}
	if req.Keywords != nil {
		product.Keywords = normalizeKeywords(req.Keywords)
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, NewValidationError("数量不能为负")
		}
		product.Quantity = *req.Quantity
	}
	if req.YourPrice != nil {
		if req.YourPrice.IsNegative() {
			return nil, NewValidationError("价格不能为负")
		}
		product.YourPrice = *req.YourPrice
	}
	if req.ListPrice != nil {
		if req.ListPrice.IsNegative() {
			return nil, NewValidationError("标价不能为负")
		}
		product.ListPrice = req.ListPrice
	}
	if req.MaximumRetailPrice != nil {
		if req.MaximumRetailPrice.IsNegative() {
			return nil, NewValidationError("最高零售价不能为负")
		}
		product.MaximumRetailPrice = req.MaximumRetailPrice
	}
	if req.Status != nil {
		if !isAdjustableStatus(*req.Status) {
			return nil, NewValidationError("无效的商品状态")
		}
		// 草稿只能通过第 7 步发布上线，编辑接口不放行
		if product.Status == model.ProductStatusDraft {
			return nil, NewValidationError("草稿商品需先完成发布")
		}
		product.Status = *req.Status
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	if len(files) > 0 {
		if _, err := s.gallerySvc.AppendOnly(ctx, product, files); err != nil {
			return nil, err
		}
	}
	return product, nil
}

// ==================== 状态流转 ====================

// UpdateStatus 显式状态流转，仅限 active/inactive/out_of_stock
// 草稿不允许走这里：inactive/out_of_stock 只能从 active 到达
func (s *ProductService) UpdateStatus(ctx context.Context, sellerID, id int64, status string) (*model.Product, error) {
	if !isAdjustableStatus(status) {
		return nil, NewValidationError("无效的商品状态")
	}

	product, err := s.getOwned(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}
	if product.Status == model.ProductStatusDraft {
		return nil, NewValidationError("草稿商品需先完成发布")
	}

	product.Status = status
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func isAdjustableStatus(status string) bool {
	switch status {
	case model.ProductStatusActive, model.ProductStatusInactive, model.ProductStatusOutOfStock:
		return true
	}
	return false
}

// ==================== 删除 ====================

// DeleteProduct 硬删除商品
// 顺序：变体媒体+记录 -> 图库媒体+记录 -> 商品本身；
// 媒体删除失败打日志写台账后继续，不阻塞记录删除
func (s *ProductService) DeleteProduct(ctx context.Context, sellerID, id int64) error {
	product, err := s.getOwned(ctx, sellerID, id)
	if err != nil {
		return err
	}

	if err := s.variationSvc.DeleteAllWithMedia(ctx, product); err != nil {
		return err
	}
	if err := s.gallerySvc.DeleteAllWithMedia(ctx, product); err != nil {
		return err
	}
	return s.productRepo.HardDelete(ctx, product.ID)
}

// ==================== 内部辅助 ====================

func (s *ProductService) getOwned(ctx context.Context, sellerID, id int64) (*model.Product, error) {
	product, err := s.productRepo.GetBySellerAndID(ctx, sellerID, id)
	if err != nil {
		return nil, wrapRecordError(err, "商品不存在")
	}
	return product, nil
}

func maxStep(current, step int) int {
	if step > current {
		return step
	}
	return current
}

// 商品号字符集（大写字母+数字）
const productIDCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateProductID 生成 BL 开头的 10 位商品号，最多重试 5 次避开冲突
func (s *ProductService) generateProductID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for i := range buf {
			buf[i] = productIDCharset[int(buf[i])%len(productIDCharset)]
		}
		candidate := "BL" + string(buf)

		exists, err := s.productRepo.ExistsByProductID(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("商品号生成连续冲突，请重试")
}
