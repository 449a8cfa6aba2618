package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bloomzon_dev_v1_202609/internal/api/dto"
	"bloomzon_dev_v1_202609/internal/model"
	"bloomzon_dev_v1_202609/internal/repository"
)

// ==================== 测试辅助 ====================

// fakeMediaStore 内存对象存储假实现
type fakeMediaStore struct {
	mu         sync.Mutex
	counter    int
	objects    map[string][]byte
	deleted    []string
	failDelete bool
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{objects: make(map[string][]byte)}
}

func (f *fakeMediaStore) Upload(ctx context.Context, data []byte, filename string, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counter++
	url := fmt.Sprintf("https://cdn.test/%d-%s", f.counter, filename)
	f.objects[url] = data
	return url, nil
}

func (f *fakeMediaStore) Delete(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return fmt.Errorf("storage unavailable")
	}
	delete(f.objects, url)
	f.deleted = append(f.deleted, url)
	return nil
}

// testEnv 一套打通所有层的测试环境
type testEnv struct {
	db            *gorm.DB
	store         *fakeMediaStore
	productRepo   repository.ProductRepository
	variationRepo repository.VariationRepository
	imageRepo     repository.ImageRepository
	cleanupRepo   repository.CleanupRepository
	catalogSvc    *CatalogService
	variationSvc  *VariationSetService
	gallerySvc    *GalleryService
	productSvc    *ProductService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "连接测试数据库失败")

	err = db.AutoMigrate(
		&model.Product{}, &model.ProductVariation{}, &model.ProductImage{},
		&model.Category{}, &model.Subcategory{}, &model.DropdownItem{},
		&model.MediaCleanupFailure{},
	)
	require.NoError(t, err, "自动建表失败")

	// 种子类目
	require.NoError(t, db.Create(&model.Category{
		Name:     "Electronics",
		Slug:     "electronics",
		IsActive: true,
		Subcategories: []model.Subcategory{
			{Name: "Phone", Slug: "phone", IsActive: true},
			{Name: "Laptop", Slug: "laptop", IsActive: true},
		},
	}).Error)

	store := newFakeMediaStore()
	productRepo := repository.NewProductRepository(db)
	variationRepo := repository.NewVariationRepository(db)
	imageRepo := repository.NewImageRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	cleanupRepo := repository.NewCleanupRepository(db)

	catalogSvc := NewCatalogService(catalogRepo)
	variationSvc := NewVariationSetService(variationRepo, cleanupRepo, store)
	gallerySvc := NewGalleryService(imageRepo, cleanupRepo, store)
	productSvc := NewProductService(
		productRepo, variationSvc, gallerySvc,
		NewSkuRegistry(productRepo), NewListingFinalizer(), catalogSvc,
	)

	return &testEnv{
		db:            db,
		store:         store,
		productRepo:   productRepo,
		variationRepo: variationRepo,
		imageRepo:     imageRepo,
		cleanupRepo:   cleanupRepo,
		catalogSvc:    catalogSvc,
		variationSvc:  variationSvc,
		gallerySvc:    gallerySvc,
		productSvc:    productSvc,
	}
}

func testFile(name string) *dto.UploadFile {
	data := []byte("fake-image-bytes-" + name)
	return &dto.UploadFile{
		Data:        data,
		Filename:    name,
		ContentType: "image/jpeg",
		Size:        int64(len(data)),
	}
}

func detailsReq() *dto.SaveDetailsReq {
	return &dto.SaveDetailsReq{
		ProductCategory:    "Electronics",
		ProductSubCategory: "Phone",
		ProductName:        "Phone X",
		BrandName:          "Bloom",
		NumberOfItems:      1,
	}
}

// ==================== 向导全流程 ====================

func TestProductService_WizardFlow(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	sellerID := int64(7)

	// Step 1: 创建草稿
	product, err := env.productSvc.CreateDraft(ctx, sellerID, detailsReq())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(product.ProductID, "BL"), "商品号应以 BL 开头")
	assert.Len(t, product.ProductID, 10)
	assert.Equal(t, model.ProductStatusDraft, product.Status)
	assert.Equal(t, model.StepDetails, product.CurrentStep)
	assert.True(t, product.IsPlaceholderSku(), "Step 1 应写入占位 SKU")
	assert.Equal(t, model.DefaultCondition, product.Condition)
	assert.Nil(t, product.CompletedAt)

	// Step 2: 变体维度
	product, err = env.productSvc.SaveVariationTypes(ctx, sellerID, product.ID, &dto.SaveVariationTypesReq{
		VariationTypes: []string{model.VariationTypeColor, model.VariationTypeSize},
		Colors:         []string{"Black", "White"},
		Sizes:          []string{"128GB", "256GB"},
		Editions:       []string{"Pro"}, // 未勾选 Edition，应被清空
	})
	require.NoError(t, err)
	assert.Equal(t, model.StringSlice{"Black", "White"}, product.Colors)
	assert.Empty(t, product.Editions, "未勾选的维度应清空")

	// Step 3: 变体组（第二个变体不给 SKU，验证派生）
	priceBlack := decimal.NewFromInt(999)
	_, variations, err := env.productSvc.SaveVariations(ctx, sellerID, product.ID,
		[]dto.VariationSpec{
			{Color: "Black", Size: "128GB", Sku: "PHX-001-B128", Price: &priceBlack, Quantity: 5},
			{Color: "White", Size: "256 GB", Quantity: 3},
		},
		[]*dto.UploadFile{testFile("black.jpg"), testFile("white.jpg")},
	)
	require.NoError(t, err)
	require.Len(t, variations, 2)
	assert.Equal(t, "PHX-001-B128", variations[0].Sku)
	assert.Equal(t, product.ProductID+"-WHITE-256-GB", variations[1].Sku, "缺省 SKU 应按商品号派生并大写、空白转连字符")
	assert.NotEmpty(t, variations[0].Image)

	// Step 4: 报价
	product, err = env.productSvc.SaveOffer(ctx, sellerID, product.ID, &dto.SaveOfferReq{
		SellerSku:          "PHX-001",
		YourPrice:          decimal.NewFromInt(999),
		Quantity:           10,
		Condition:          "New",
		FulfillmentChannel: "Bloomzon Pickup",
	})
	require.NoError(t, err)
	assert.Equal(t, "PHX-001", product.SellerSku)
	assert.False(t, product.IsPlaceholderSku())

	// Step 5: 图库
	product, images, err := env.productSvc.SaveGallery(ctx, sellerID, product.ID,
		[]*dto.UploadFile{testFile("front.jpg"), testFile("back.jpg")})
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.True(t, images[0].IsPrimary)
	assert.False(t, images[1].IsPrimary)
	assert.Equal(t, 0, images[0].Order)
	assert.Equal(t, 1, images[1].Order)

	// Step 6: 文描（空白卖点应被丢弃）
	product, err = env.productSvc.SaveDescription(ctx, sellerID, product.ID, &dto.SaveDescriptionReq{
		Description:  "Flagship phone",
		BulletPoints: []string{"OLED display", "   ", "5G"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.StringSlice{"OLED display", "5G"}, product.BulletPoints)

	// Step 7: 关键词并发布（去重、转小写）
	product, err = env.productSvc.SaveKeywords(ctx, sellerID, product.ID, &dto.SaveKeywordsReq{
		Keywords: []string{"Phone", "phone", " 5G ", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, model.ProductStatusActive, product.Status)
	assert.Equal(t, model.StringSlice{"phone", "5g"}, product.Keywords)
	require.NotNil(t, product.CompletedAt)
	firstCompleted := *product.CompletedAt

	// 重复提交 Step 7：completedAt 不刷新
	product, err = env.productSvc.SaveKeywords(ctx, sellerID, product.ID, &dto.SaveKeywordsReq{
		Keywords: []string{"phone"},
	})
	require.NoError(t, err)
	require.NotNil(t, product.CompletedAt)
	assert.Equal(t, firstCompleted.Unix(), product.CompletedAt.Unix(), "completedAt 只应写入一次")
}

// ==================== 各步骤边界 ====================

func TestProductService_CreateDraft_UnknownCategory(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	req := detailsReq()
	req.ProductCategory = "Toys"
	_, err := env.productSvc.CreateDraft(ctx, 1, req)
	assert.True(t, IsValidation(err), "未知类目应报校验错误, got %v", err)

	req = detailsReq()
	req.ProductSubCategory = "Tablet"
	_, err = env.productSvc.CreateDraft(ctx, 1, req)
	assert.True(t, IsValidation(err), "未知子类目应报校验错误, got %v", err)
}

func TestProductService_SaveOffer_NegativePriceLeavesStateUntouched(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	product, err := env.productSvc.CreateDraft(ctx, 1, detailsReq())
	require.NoError(t, err)
	placeholder := product.SellerSku

	_, err = env.productSvc.SaveOffer(ctx, 1, product.ID, &dto.SaveOfferReq{
		SellerSku: "PHX-002",
		YourPrice: decimal.NewFromInt(-1),
	})
	assert.True(t, IsValidation(err))

	var reloaded model.Product
	require.NoError(t, env.db.First(&reloaded, product.ID).Error)
	assert.Equal(t, placeholder, reloaded.SellerSku, "校验失败不应写入任何字段")
	assert.True(t, reloaded.YourPrice.IsZero())
}

func TestProductService_SaveOffer_SkuConflict(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	first, err := env.productSvc.CreateDraft(ctx, 1, detailsReq())
	require.NoError(t, err)
	_, err = env.productSvc.SaveOffer(ctx, 1, first.ID, &dto.SaveOfferReq{
		SellerSku: "SHARED-SKU",
		YourPrice: decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	// 另一个卖家的商品也不能占用同一 SKU（全局唯一）
	second, err := env.productSvc.CreateDraft(ctx, 2, detailsReq())
	require.NoError(t, err)
	placeholder := second.SellerSku

	_, err = env.productSvc.SaveOffer(ctx, 2, second.ID, &dto.SaveOfferReq{
		SellerSku: "SHARED-SKU",
		YourPrice: decimal.NewFromInt(20),
	})
	assert.True(t, IsConflict(err), "重复 SKU 应报冲突, got %v", err)

	var reloaded model.Product
	require.NoError(t, env.db.First(&reloaded, second.ID).Error)
	assert.Equal(t, placeholder, reloaded.SellerSku, "冲突时商品应保持原状")
}

func TestProductService_SaveOffer_Resubmit(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	product, err := env.productSvc.CreateDraft(ctx, 1, detailsReq())
	require.NoError(t, err)

	req := &dto.SaveOfferReq{SellerSku: "PHX-003", YourPrice: decimal.NewFromInt(50), Quantity: 5}
	_, err = env.productSvc.SaveOffer(ctx, 1, product.ID, req)
	require.NoError(t, err)

	// 同一商品重复提交同一 SKU 不算冲突
	req.Quantity = 8
	product, err = env.productSvc.SaveOffer(ctx, 1, product.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 8, product.Quantity)
}

func TestProductService_PublishRequiresOffer(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	product, err := env.productSvc.CreateDraft(ctx, 1, detailsReq())
	require.NoError(t, err)

	_, err = env.productSvc.SaveDescription(ctx, 1, product.ID, &dto.SaveDescriptionReq{
		Description: "desc",
	})
	require.NoError(t, err)

	// 跳过 Step 4：占位 SKU 和零价都挡发布
	_, err = env.productSvc.SaveKeywords(ctx, 1, product.ID, &dto.SaveKeywordsReq{Keywords: []string{"x"}})
	assert.True(t, IsValidation(err), "跳过报价步骤不应能发布, got %v", err)

	var reloaded model.Product
	require.NoError(t, env.db.First(&reloaded, product.ID).Error)
	assert.Equal(t, model.ProductStatusDraft, reloaded.Status)
	assert.Nil(t, reloaded.CompletedAt)
}

func TestProductService_ScopedToSeller(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	product, err := env.productSvc.CreateDraft(ctx, 1, detailsReq())
	require.NoError(t, err)

	_, err = env.productSvc.SaveDescription(ctx, 99, product.ID, &dto.SaveDescriptionReq{
		Description: "hijack",
	})
	assert.True(t, IsNotFound(err), "他人商品应报 NotFound, got %v", err)

	err = env.productSvc.DeleteProduct(ctx, 99, product.ID)
	assert.True(t, IsNotFound(err))
}

// ==================== 状态流转 ====================

func TestProductService_UpdateStatus(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	product := publishTestProduct(t, env, 1, "STAT-001")

	// active -> inactive
	product, err := env.productSvc.UpdateStatus(ctx, 1, product.ID, model.ProductStatusInactive)
	require.NoError(t, err)
	assert.Equal(t, model.ProductStatusInactive, product.Status)

	// 非法状态值
	_, err = env.productSvc.UpdateStatus(ctx, 1, product.ID, "archived")
	assert.True(t, IsValidation(err))
	_, err = env.productSvc.UpdateStatus(ctx, 1, product.ID, model.ProductStatusDraft)
	assert.True(t, IsValidation(err), "不允许显式切回 draft")
}

func TestProductService_UpdateStatus_RejectedWhileDraft(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	product, err := env.productSvc.CreateDraft(ctx, 1, detailsReq())
	require.NoError(t, err)

	_, err = env.productSvc.UpdateStatus(ctx, 1, product.ID, model.ProductStatusActive)
	assert.True(t, IsValidation(err), "草稿必须走发布流程, got %v", err)
}

// ==================== 删除 ====================

func TestProductService_DeleteProduct_RemovesEverything(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	product := publishTestProduct(t, env, 1, "DEL-001")

	_, _, err := env.productSvc.SaveVariations(ctx, 1, product.ID,
		[]dto.VariationSpec{{Color: "Black", Size: "L"}},
		[]*dto.UploadFile{testFile("var.jpg")})
	require.NoError(t, err)

	require.NoError(t, env.productSvc.DeleteProduct(ctx, 1, product.ID))

	var count int64
	env.db.Model(&model.Product{}).Where("id = ?", product.ID).Count(&count)
	assert.Zero(t, count, "商品记录应被硬删除")
	env.db.Model(&model.ProductVariation{}).Where("product_ref = ?", product.ID).Count(&count)
	assert.Zero(t, count)
	env.db.Model(&model.ProductImage{}).Where("product_ref = ?", product.ID).Count(&count)
	assert.Zero(t, count)
	assert.Empty(t, env.store.objects, "所有远端媒体都应被回收")
}

// ==================== 一步式创建 ====================

func TestProductService_CompleteOneShot(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	req := &dto.CompleteCreationReq{
		SaveDetailsReq:     *detailsReq(),
		SellerSku:          "ONE-001",
		YourPrice:          decimal.NewFromInt(100),
		Quantity:           3,
		Condition:          "New",
		FulfillmentChannel: "Bloomzon Pickup",
		Description:        "complete listing",
		Keywords:           []string{"Phone", "phone"},
	}

	// 图库与变体为空也允许
	product, err := env.productSvc.CompleteOneShot(ctx, 1, req, nil)
	require.NoError(t, err)
	assert.Equal(t, model.ProductStatusActive, product.Status)
	assert.Equal(t, model.StepKeywords, product.CurrentStep)
	assert.NotNil(t, product.CompletedAt)
	assert.Equal(t, model.StringSlice{"phone"}, product.Keywords)
}

func TestProductService_CompleteOneShot_AllOrNothing(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	req := &dto.CompleteCreationReq{
		SaveDetailsReq:     *detailsReq(),
		SellerSku:          "ONE-002",
		YourPrice:          decimal.Zero, // 零价不允许
		Condition:          "New",
		FulfillmentChannel: "Bloomzon Pickup",
		Description:        "x",
	}
	_, err := env.productSvc.CompleteOneShot(ctx, 1, req, nil)
	assert.True(t, IsValidation(err))

	var count int64
	env.db.Model(&model.Product{}).Count(&count)
	assert.Zero(t, count, "校验失败不应留下任何记录")
}

func TestProductService_CompleteOneShot_SkuConflict(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	publishTestProduct(t, env, 1, "ONE-003")

	req := &dto.CompleteCreationReq{
		SaveDetailsReq:     *detailsReq(),
		SellerSku:          "ONE-003",
		YourPrice:          decimal.NewFromInt(5),
		Condition:          "New",
		FulfillmentChannel: "Bloomzon Pickup",
		Description:        "x",
	}
	_, err := env.productSvc.CompleteOneShot(ctx, 2, req, nil)
	assert.True(t, IsConflict(err))
}

// ==================== 查询 ====================

func TestProductService_GetProduct_IncrementsViews(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	product := publishTestProduct(t, env, 1, "VIEW-001")

	_, _, _, err := env.productSvc.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	_, _, _, err = env.productSvc.GetProduct(ctx, product.ID)
	require.NoError(t, err)

	var reloaded model.Product
	require.NoError(t, env.db.First(&reloaded, product.ID).Error)
	assert.Equal(t, int64(2), reloaded.Views)

	_, _, _, err = env.productSvc.GetProduct(ctx, 99999)
	assert.True(t, IsNotFound(err))
}

// ==================== 发布后编辑 ====================

func TestProductService_UpdateProduct_AppendsGallery(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	product := publishTestProduct(t, env, 1, "UPD-001")

	name := "Phone X Pro"
	_, err := env.productSvc.UpdateProduct(ctx, 1, product.ID,
		&dto.UpdateProductReq{ProductName: &name},
		[]*dto.UploadFile{testFile("extra.jpg")})
	require.NoError(t, err)

	images, err := env.gallerySvc.ListByProduct(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, images, 3, "更新只追加图片，不替换")
	assert.Equal(t, 2, images[2].Order)
	assert.False(t, images[2].IsPrimary, "已有主图时新图不能抢主图")

	var reloaded model.Product
	require.NoError(t, env.db.First(&reloaded, product.ID).Error)
	assert.Equal(t, "Phone X Pro", reloaded.ProductName)
}

func TestProductService_UpdateProduct_RejectsDraftActivation(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	draft, err := env.productSvc.CreateDraft(ctx, 1, detailsReq())
	require.NoError(t, err)

	// 编辑接口不能把草稿直接改成 active，上线只能走第 7 步
	status := model.ProductStatusActive
	_, err = env.productSvc.UpdateProduct(ctx, 1, draft.ID,
		&dto.UpdateProductReq{Status: &status}, nil)
	assert.True(t, IsValidation(err))

	var reloaded model.Product
	require.NoError(t, env.db.First(&reloaded, draft.ID).Error)
	assert.Equal(t, model.ProductStatusDraft, reloaded.Status)
	assert.True(t, reloaded.IsPlaceholderSku())
	assert.Nil(t, reloaded.CompletedAt)
}

func TestProductService_UpdateProduct_MaximumRetailPrice(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	product := publishTestProduct(t, env, 1, "UPD-002")

	mrp := decimal.NewFromInt(150)
	_, err := env.productSvc.UpdateProduct(ctx, 1, product.ID,
		&dto.UpdateProductReq{MaximumRetailPrice: &mrp}, nil)
	require.NoError(t, err)

	var reloaded model.Product
	require.NoError(t, env.db.First(&reloaded, product.ID).Error)
	require.NotNil(t, reloaded.MaximumRetailPrice)
	assert.True(t, reloaded.MaximumRetailPrice.Equal(mrp))

	negative := decimal.NewFromInt(-1)
	_, err = env.productSvc.UpdateProduct(ctx, 1, product.ID,
		&dto.UpdateProductReq{MaximumRetailPrice: &negative}, nil)
	assert.True(t, IsValidation(err))
}

// ==================== 测试辅助：走完整向导发布一个商品 ====================

func publishTestProduct(t *testing.T, env *testEnv, sellerID int64, sku string) *model.Product {
	t.Helper()
	ctx := context.Background()

	product, err := env.productSvc.CreateDraft(ctx, sellerID, detailsReq())
	require.NoError(t, err)

	_, err = env.productSvc.SaveOffer(ctx, sellerID, product.ID, &dto.SaveOfferReq{
		SellerSku:          sku,
		YourPrice:          decimal.NewFromInt(100),
		Quantity:           10,
		Condition:          "New",
		FulfillmentChannel: "Bloomzon Pickup",
	})
	require.NoError(t, err)

	_, _, err = env.productSvc.SaveGallery(ctx, sellerID, product.ID,
		[]*dto.UploadFile{testFile("main.jpg"), testFile("side.jpg")})
	require.NoError(t, err)

	_, err = env.productSvc.SaveDescription(ctx, sellerID, product.ID, &dto.SaveDescriptionReq{
		Description: "test product",
	})
	require.NoError(t, err)

	product, err = env.productSvc.SaveKeywords(ctx, sellerID, product.ID, &dto.SaveKeywordsReq{
		Keywords: []string{"test"},
	})
	require.NoError(t, err)
	require.Equal(t, model.ProductStatusActive, product.Status)
	return product
}
