package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bloomzon_dev_v1_202609/internal/model"
)

// ==================== 测试辅助 ====================

func setupRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	if err := db.AutoMigrate(
		&model.Product{}, &model.ProductVariation{}, &model.ProductImage{},
	); err != nil {
		t.Fatalf("自动建表失败: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, i int, sellerID int64, status, category string) *model.Product {
	t.Helper()
	p := &model.Product{
		ProductID:       fmt.Sprintf("BLTEST%04d", i),
		SellerID:        sellerID,
		ProductCategory: category,
		ProductName:     fmt.Sprintf("Product %d", i),
		SellerSku:       fmt.Sprintf("SKU-%04d", i),
		YourPrice:       decimal.NewFromInt(int64(i * 10)),
		Quantity:        i,
		Status:          status,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("种子数据写入失败: %v", err)
	}
	return p
}

// ==================== 列表查询 ====================

func TestProductRepo_List_FilterAndPaginate(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		seedProduct(t, db, i, 1, model.ProductStatusActive, "Electronics")
	}
	seedProduct(t, db, 6, 1, model.ProductStatusDraft, "Electronics")
	seedProduct(t, db, 7, 2, model.ProductStatusActive, "Electronics")

	// 卖家隔离 + 状态过滤
	products, total, err := repo.List(ctx, ProductFilter{
		SellerID: 1, Status: model.ProductStatusActive, Page: 1, PageSize: 10,
	})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(products) != 5 {
		t.Errorf("len = %d, want 5", len(products))
	}

	// 分页
	products, total, err = repo.List(ctx, ProductFilter{
		SellerID: 1, Page: 2, PageSize: 4,
	})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if total != 6 {
		t.Errorf("total = %d, want 6", total)
	}
	if len(products) != 2 {
		t.Errorf("第二页应剩 2 条, got %d", len(products))
	}
}

func TestProductRepo_List_Search(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	seedProduct(t, db, 1, 1, model.ProductStatusActive, "Electronics")
	special := seedProduct(t, db, 2, 1, model.ProductStatusActive, "Electronics")
	special.ProductName = "Wireless Earbuds"
	db.Save(special)

	products, total, err := repo.List(ctx, ProductFilter{
		SellerID: 1, Search: "Earbuds", Page: 1, PageSize: 10,
	})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if total != 1 || len(products) != 1 {
		t.Fatalf("搜索应命中 1 条, got total=%d len=%d", total, len(products))
	}
	if products[0].ProductName != "Wireless Earbuds" {
		t.Errorf("命中商品不对: %s", products[0].ProductName)
	}

	// SKU 也参与搜索
	_, total, err = repo.List(ctx, ProductFilter{
		SellerID: 1, Search: "SKU-0001", Page: 1, PageSize: 10,
	})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if total != 1 {
		t.Errorf("按 SKU 搜索应命中 1 条, got %d", total)
	}
}

func TestProductRepo_List_SortWhitelist(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		seedProduct(t, db, i, 1, model.ProductStatusActive, "Electronics")
	}

	// 合法排序字段
	products, _, err := repo.List(ctx, ProductFilter{
		SellerID: 1, SortBy: "your_price", Order: "asc", Page: 1, PageSize: 10,
	})
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if !products[0].YourPrice.LessThan(products[2].YourPrice) {
		t.Errorf("升序排序未生效")
	}

	// 白名单外的字段回退默认排序，不报错也不注入
	_, _, err = repo.List(ctx, ProductFilter{
		SellerID: 1, SortBy: "seller_sku; DROP TABLE products", Page: 1, PageSize: 10,
	})
	if err != nil {
		t.Fatalf("非法排序字段应回退默认: %v", err)
	}
}

// ==================== 唯一性与计数 ====================

func TestProductRepo_SkuUniqueness(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	p := seedProduct(t, db, 1, 1, model.ProductStatusDraft, "Electronics")

	exists, err := repo.ExistsBySellerSku(ctx, "SKU-0001", 0)
	if err != nil || !exists {
		t.Errorf("已占用 SKU 应返回 true, got %v %v", exists, err)
	}

	// 排除自身
	exists, err = repo.ExistsBySellerSku(ctx, "SKU-0001", p.ID)
	if err != nil || exists {
		t.Errorf("排除自身后应返回 false, got %v %v", exists, err)
	}

	// 唯一索引兜底：重复写入应翻译成 gorm.ErrDuplicatedKey
	dup := &model.Product{
		ProductID:   "BLTEST9999",
		SellerID:    2,
		ProductName: "dup",
		SellerSku:   "SKU-0001",
	}
	err = repo.Create(ctx, dup)
	if err == nil {
		t.Fatal("重复 SKU 应写入失败")
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("err = %v, want gorm.ErrDuplicatedKey", err)
	}
}

func TestProductRepo_IncrementViews(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	p := seedProduct(t, db, 1, 1, model.ProductStatusActive, "Electronics")

	for i := 0; i < 3; i++ {
		if err := repo.IncrementViews(ctx, p.ID); err != nil {
			t.Fatalf("浏览数自增失败: %v", err)
		}
	}

	var reloaded model.Product
	db.First(&reloaded, p.ID)
	if reloaded.Views != 3 {
		t.Errorf("views = %d, want 3", reloaded.Views)
	}
}

func TestProductRepo_HardDelete(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	p := seedProduct(t, db, 1, 1, model.ProductStatusActive, "Electronics")

	if err := repo.HardDelete(ctx, p.ID); err != nil {
		t.Fatalf("删除失败: %v", err)
	}

	var count int64
	db.Model(&model.Product{}).Where("id = ?", p.ID).Count(&count)
	if count != 0 {
		t.Errorf("硬删除后记录仍存在")
	}

	if _, err := repo.GetByID(ctx, p.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("err = %v, want gorm.ErrRecordNotFound", err)
	}
}
