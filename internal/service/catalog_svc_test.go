package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloomzon_dev_v1_202609/internal/api/dto"
	"bloomzon_dev_v1_202609/internal/model"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Electronics", "electronics"},
		{"Home & Garden", "home-garden"},
		{"  Bags/Luggage  ", "bags-luggage"},
		{"D2C 特卖", "d2c"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}

func TestCatalogService_ValidateCategoryPath(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	assert.NoError(t, env.catalogSvc.ValidateCategoryPath(ctx, "Electronics", "Phone"))

	err := env.catalogSvc.ValidateCategoryPath(ctx, "Toys", "Phone")
	assert.True(t, IsValidation(err), "未知类目, got %v", err)

	err = env.catalogSvc.ValidateCategoryPath(ctx, "Electronics", "Tablet")
	assert.True(t, IsValidation(err), "未知子类目, got %v", err)
}

func TestCatalogService_ValidateCategoryPath_InactiveRejected(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.db.Create(&model.Category{
		Name: "Legacy", Slug: "legacy", IsActive: false,
		Subcategories: []model.Subcategory{{Name: "Old", Slug: "old", IsActive: true}},
	}).Error)

	err := env.catalogSvc.ValidateCategoryPath(ctx, "Legacy", "Old")
	assert.True(t, IsValidation(err), "停用类目应被拒绝")
}

func TestCatalogService_AddCategory(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	category, err := env.catalogSvc.AddCategory(ctx, &dto.AddCategoryReq{
		Name:          "Home & Garden",
		Subcategories: []string{"Furniture", "  ", "Decor"},
	})
	require.NoError(t, err)
	assert.Equal(t, "home-garden", category.Slug)
	assert.Len(t, category.Subcategories, 2, "空白子类目应被丢弃")

	// 重名冲突
	_, err = env.catalogSvc.AddCategory(ctx, &dto.AddCategoryReq{Name: "Home & Garden"})
	assert.True(t, IsConflict(err))

	// 新类目立即可用于草稿创建
	assert.NoError(t, env.catalogSvc.ValidateCategoryPath(ctx, "Home & Garden", "Decor"))
}

func TestCatalogService_GetDropdownData(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.db.Create(&[]model.DropdownItem{
		{Type: model.DropdownCondition, Value: "New", Label: "New", Order: 1, IsActive: true},
		{Type: model.DropdownCondition, Value: "Used", Label: "Used", Order: 2, IsActive: true},
		{Type: model.DropdownCondition, Value: "Broken", Label: "Broken", IsActive: false},
		{Type: model.DropdownFulfillmentChannel, Value: "Bloomzon Pickup", Label: "Bloomzon Pickup", IsActive: true},
	}).Error)

	data, err := env.catalogSvc.GetDropdownData(ctx)
	require.NoError(t, err)

	require.Len(t, data.Categories, 1)
	assert.Equal(t, "Electronics", data.Categories[0].Name)
	assert.Len(t, data.Categories[0].Subcategories, 2)

	assert.Len(t, data.Conditions, 2, "停用项不应出现")
	assert.Len(t, data.FulfillmentChannels, 1)
}
