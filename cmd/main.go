package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"bloomzon_dev_v1_202609/internal/controller"
	"bloomzon_dev_v1_202609/internal/middleware"
	"bloomzon_dev_v1_202609/internal/model"
	"bloomzon_dev_v1_202609/internal/repository"
	"bloomzon_dev_v1_202609/internal/router"
	"bloomzon_dev_v1_202609/internal/service"
	"bloomzon_dev_v1_202609/internal/task"
	"bloomzon_dev_v1_202609/pkg/database"
)

func main() {
	// 0. 加载 .env（不存在不报错，生产环境直接用真实环境变量）
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
	}

	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	initTasks(deps)

	// 4. 初始化路由
	r := gin.Default()
	router.InitRoutes(r, deps.Controllers.Product, deps.Controllers.Catalog)

	// 5. 启动服务
	startServer(r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
}

// Repositories 仓库集合
type Repositories struct {
	Product   repository.ProductRepository
	Variation repository.VariationRepository
	Image     repository.ImageRepository
	Catalog   repository.CatalogRepository
	Cleanup   repository.CleanupRepository
}

// Services 服务集合
type Services struct {
	Storage   *service.StorageService
	Catalog   *service.CatalogService
	Variation *service.VariationSetService
	Gallery   *service.GalleryService
	Product   *service.ProductService
}

// Controllers 控制器集合
type Controllers struct {
	Product *controller.ProductController
	Catalog *controller.CatalogController
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_DSN",
		"host=localhost user=postgres password=postgres dbname=bloomzon port=5432 sslmode=disable")
	return database.InitDB(dsn,
		// Product
		&model.Product{}, &model.ProductVariation{}, &model.ProductImage{},
		// Catalog
		&model.Category{}, &model.Subcategory{}, &model.DropdownItem{},
		// 清理台账
		&model.MediaCleanupFailure{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := initRepositories(db)

	// -------- 存储服务 --------
	storageSvc := initStorageService()

	// -------- 业务服务 --------
	catalogSvc := service.NewCatalogService(repos.Catalog)
	variationSvc := service.NewVariationSetService(repos.Variation, repos.Cleanup, storageSvc)
	gallerySvc := service.NewGalleryService(repos.Image, repos.Cleanup, storageSvc)
	skuRegistry := service.NewSkuRegistry(repos.Product)
	finalizer := service.NewListingFinalizer()

	services := &Services{
		Storage:   storageSvc,
		Catalog:   catalogSvc,
		Variation: variationSvc,
		Gallery:   gallerySvc,
	}
	services.Product = service.NewProductService(
		repos.Product, variationSvc, gallerySvc, skuRegistry, finalizer, catalogSvc,
	)

	// -------- Controller 层 --------
	controllers := &Controllers{
		Product: controller.NewProductController(services.Product),
		Catalog: controller.NewCatalogController(catalogSvc),
	}

	// -------- JWT 配置 --------
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		middleware.SetJWTConfig(&middleware.JWTConfig{
			SecretKey:      secret,
			AccessTokenTTL: 2 * time.Hour,
			Issuer:         getEnv("JWT_ISSUER", "bloomzon"),
		})
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// initRepositories 初始化所有仓库
func initRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Product:   repository.NewProductRepository(db),
		Variation: repository.NewVariationRepository(db),
		Image:     repository.NewImageRepository(db),
		Catalog:   repository.NewCatalogRepository(db),
		Cleanup:   repository.NewCleanupRepository(db),
	}
}

// initStorageService 初始化存储服务
func initStorageService() *service.StorageService {
	storageSvc, err := service.NewStorageService(&service.StorageConfig{
		Provider:  getEnv("STORAGE_PROVIDER", "cloudinary"),
		Bucket:    getEnv("AWS_BUCKET", ""),
		Region:    getEnv("AWS_REGION", ""),
		AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		CDNDomain: getEnv("AWS_CDN_DOMAIN", ""),
		BasePath:  getEnv("STORAGE_BASE_PATH", "bloomzon"),

		CloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
		APIKey:       getEnv("CLOUDINARY_API_KEY", ""),
		APISecret:    getEnv("CLOUDINARY_API_SECRET", ""),
		UploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "bloomzon-products"),
	})
	if err != nil {
		log.Fatalf("存储服务初始化失败: %v", err)
	}
	return storageSvc
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) {
	// 媒体清理补偿
	cleanupTask := task.NewMediaCleanupTask(deps.Repos.Cleanup, deps.Services.Storage)
	cleanupTask.Start()

	log.Println("定时任务已启动")
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
