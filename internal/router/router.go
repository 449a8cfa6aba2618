package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bloomzon_dev_v1_202609/internal/controller"
	"bloomzon_dev_v1_202609/internal/middleware"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	productCtrl *controller.ProductController,
	catalogCtrl *controller.CatalogController) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		products := api.Group("/products")
		{
			// 下拉数据与类目（静态路由先于 :id 注册）
			products.GET("/dropdown-data", catalogCtrl.GetDropdownData)
			products.POST("/category", middleware.JWTAuth(), catalogCtrl.AddCategory)

			// 公开读
			products.GET("/:id", productCtrl.GetProduct)

			// 卖家维度操作
			sellers := products.Group("", middleware.JWTAuth())
			{
				// 列表与一步式创建
				sellers.GET("", productCtrl.ListProducts)
				sellers.POST("/complete", productCtrl.CompleteCreation)

				// 7 步向导
				sellers.POST("/details", productCtrl.SaveDetails)
				sellers.PUT("/:id/variation-types", productCtrl.SaveVariationTypes)
				sellers.PUT("/:id/variations", productCtrl.SaveVariations)
				sellers.PUT("/:id/offers", productCtrl.SaveOffer)
				sellers.PUT("/:id/gallery", productCtrl.SaveGallery)
				sellers.PUT("/:id/description", productCtrl.SaveDescription)
				sellers.PUT("/:id/keywords", productCtrl.SaveKeywords)

				// 发布后管理
				sellers.PUT("/:id", productCtrl.UpdateProduct)
				sellers.PATCH("/:id/status", productCtrl.UpdateStatus)
				sellers.DELETE("/:id", productCtrl.DeleteProduct)
			}
		}
	}
}
