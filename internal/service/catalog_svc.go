package service

import (
	"context"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"bloomzon_dev_v1_202609/internal/api/dto"
	"bloomzon_dev_v1_202609/internal/model"
	"bloomzon_dev_v1_202609/internal/repository"
)

// ==================== 类目服务 ====================

// CatalogService 类目与下拉数据服务
type CatalogService struct {
	catalogRepo repository.CatalogRepository
}

// NewCatalogService 创建类目服务
func NewCatalogService(catalogRepo repository.CatalogRepository) *CatalogService {
	return &CatalogService{catalogRepo: catalogRepo}
}

// GetDropdownData 返回发布向导所需的全部下拉数据
func (s *CatalogService) GetDropdownData(ctx context.Context) (*dto.DropdownDataResp, error) {
	categories, err := s.catalogRepo.ListActiveCategories(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.DropdownDataResp{
		Categories: make([]dto.CategoryResp, 0, len(categories)),
	}
	for i := range categories {
		resp.Categories = append(resp.Categories, toCategoryResp(&categories[i]))
	}

	items, err := s.catalogRepo.ListDropdownItems(ctx)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		entry := dto.DropdownItemResp{ID: item.ID, Label: item.Label, Value: item.Value}
		switch item.Type {
		case model.DropdownProductIDType:
			resp.ProductIDTypes = append(resp.ProductIDTypes, entry)
		case model.DropdownCondition:
			resp.Conditions = append(resp.Conditions, entry)
		case model.DropdownClosureType:
			resp.ClosureTypes = append(resp.ClosureTypes, entry)
		case model.DropdownOuterMaterial:
			resp.OuterMaterials = append(resp.OuterMaterials, entry)
		case model.DropdownStyle:
			resp.Styles = append(resp.Styles, entry)
		case model.DropdownGender:
			resp.Genders = append(resp.Genders, entry)
		case model.DropdownStrapType:
			resp.StrapTypes = append(resp.StrapTypes, entry)
		case model.DropdownCountry:
			resp.Countries = append(resp.Countries, entry)
		case model.DropdownFulfillmentChannel:
			resp.FulfillmentChannels = append(resp.FulfillmentChannels, entry)
		}
	}
	return resp, nil
}

// AddCategory 新增类目（附带子类目），名称重复即冲突
func (s *CatalogService) AddCategory(ctx context.Context, req *dto.AddCategoryReq) (*model.Category, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, NewValidationError("类目名称不能为空")
	}

	if _, err := s.catalogRepo.GetCategoryByName(ctx, req.Name); err == nil {
		return nil, NewConflictError("类目已存在")
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	category := &model.Category{
		Name:        req.Name,
		Slug:        Slugify(req.Name),
		Description: req.Description,
		IsActive:    true,
	}
	for _, sub := range req.Subcategories {
		if strings.TrimSpace(sub) == "" {
			continue
		}
		category.Subcategories = append(category.Subcategories, model.Subcategory{
			Name:     sub,
			Slug:     Slugify(sub),
			IsActive: true,
		})
	}

	if err := s.catalogRepo.CreateCategory(ctx, category); err != nil {
		return nil, wrapDuplicateError(err, "类目已存在")
	}
	return category, nil
}

// ValidateCategoryPath 校验类目/子类目组合是否存在且启用
func (s *CatalogService) ValidateCategoryPath(ctx context.Context, category, subcategory string) error {
	cat, err := s.catalogRepo.GetCategoryByName(ctx, category)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return NewValidationError("商品类目不存在")
		}
		return err
	}
	if !cat.IsActive {
		return NewValidationError("商品类目已停用")
	}

	for _, sub := range cat.Subcategories {
		if sub.Name == subcategory && sub.IsActive {
			return nil
		}
	}
	return NewValidationError("商品子类目不存在")
}

// ==================== 辅助 ====================

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify 名称转 slug：小写化，非字母数字折叠为连字符
func Slugify(name string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

func toCategoryResp(c *model.Category) dto.CategoryResp {
	resp := dto.CategoryResp{
		ID:   c.ID,
		Name: c.Name,
		Slug: c.Slug,
	}
	for _, sub := range c.Subcategories {
		if !sub.IsActive {
			continue
		}
		resp.Subcategories = append(resp.Subcategories, dto.SubcategoryResp{
			ID:   sub.ID,
			Name: sub.Name,
			Slug: sub.Slug,
		})
	}
	return resp
}
