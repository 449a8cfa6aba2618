package service

import (
	"context"
	"fmt"

	"bloomzon_dev_v1_202609/internal/api/dto"
	"bloomzon_dev_v1_202609/internal/model"
	"bloomzon_dev_v1_202609/internal/repository"
)

// ==================== 图库服务 ====================

// GalleryService 管理商品级图库（非变体图）
// 与变体组同样的整组替换模式；order 取上传顺序，第 0 张为主图
type GalleryService struct {
	imageRepo   repository.ImageRepository
	cleanupRepo repository.CleanupRepository
	store       MediaStore
}

// NewGalleryService 创建图库服务
func NewGalleryService(
	imageRepo repository.ImageRepository,
	cleanupRepo repository.CleanupRepository,
	store MediaStore,
) *GalleryService {
	return &GalleryService{
		imageRepo:   imageRepo,
		cleanupRepo: cleanupRepo,
		store:       store,
	}
}

// ReplaceAll 整组替换图库
// requireNonEmpty：Step 5 专用入口必须至少一张；一步式创建允许零张
func (s *GalleryService) ReplaceAll(
	ctx context.Context,
	product *model.Product,
	files []*dto.UploadFile,
	requireNonEmpty bool,
) ([]model.ProductImage, error) {
	if requireNonEmpty && len(files) == 0 {
		return nil, NewValidationError("至少需要上传一张商品图片")
	}

	// 1. 先传新图
	uploaded, err := s.uploadAll(ctx, files)
	if err != nil {
		return nil, err
	}

	// 2. 删旧图（尽力而为）
	oldImages, err := s.imageRepo.ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	for _, old := range oldImages {
		bestEffortDeleteMedia(ctx, s.store, s.cleanupRepo, product.ID, old.URL,
			model.CleanupSourceGalleryReplace,
			map[string]interface{}{"seller_id": product.SellerID})
	}

	// 3. 清旧记录
	if err := s.imageRepo.DeleteByProduct(ctx, product.ID); err != nil {
		return nil, err
	}

	// 4. 写新记录，order 即上传下标，首张为主图
	images := make([]model.ProductImage, 0, len(files))
	for i, file := range files {
		images = append(images, model.ProductImage{
			ProductRef:   product.ID,
			URL:          uploaded[i],
			OriginalName: file.Filename,
			Size:         file.Size,
			MimeType:     file.ContentType,
			Order:        i,
			IsPrimary:    i == 0,
		})
	}

	if err := s.imageRepo.BatchCreate(ctx, images); err != nil {
		return nil, err
	}

	return images, nil
}

// AppendOnly 发布后编辑：只追加，不删除既有图
// order 从 max+1 续排；已有主图时新图一律不是主图
func (s *GalleryService) AppendOnly(
	ctx context.Context,
	product *model.Product,
	files []*dto.UploadFile,
) ([]model.ProductImage, error) {
	if len(files) == 0 {
		return nil, nil
	}

	uploaded, err := s.uploadAll(ctx, files)
	if err != nil {
		return nil, err
	}

	maxOrder, err := s.imageRepo.MaxOrder(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	hasPrimary, err := s.imageRepo.HasPrimary(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	images := make([]model.ProductImage, 0, len(files))
	for i, file := range files {
		images = append(images, model.ProductImage{
			ProductRef:   product.ID,
			URL:          uploaded[i],
			OriginalName: file.Filename,
			Size:         file.Size,
			MimeType:     file.ContentType,
			Order:        maxOrder + 1 + i,
			IsPrimary:    !hasPrimary && i == 0,
		})
	}

	if err := s.imageRepo.BatchCreate(ctx, images); err != nil {
		return nil, err
	}

	return images, nil
}

// DeleteAllWithMedia 删除商品的全部图库及其媒体（商品删除流程用）
func (s *GalleryService) DeleteAllWithMedia(ctx context.Context, product *model.Product) error {
	images, err := s.imageRepo.ListByProduct(ctx, product.ID)
	if err != nil {
		return err
	}
	for _, img := range images {
		bestEffortDeleteMedia(ctx, s.store, s.cleanupRepo, product.ID, img.URL,
			model.CleanupSourceProductDelete,
			map[string]interface{}{"seller_id": product.SellerID})
	}
	return s.imageRepo.DeleteByProduct(ctx, product.ID)
}

// ListByProduct 查询图库（按 order 排序）
func (s *GalleryService) ListByProduct(ctx context.Context, productRef int64) ([]model.ProductImage, error) {
	return s.imageRepo.ListByProduct(ctx, productRef)
}

func (s *GalleryService) uploadAll(ctx context.Context, files []*dto.UploadFile) ([]string, error) {
	urls := make([]string, len(files))
	for i, file := range files {
		url, err := s.store.Upload(ctx, file.Data, file.Filename, file.ContentType)
		if err != nil {
			return nil, fmt.Errorf("上传商品图失败: %w", err)
		}
		urls[i] = url
	}
	return urls, nil
}
