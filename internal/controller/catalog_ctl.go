package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bloomzon_dev_v1_202609/internal/api/dto"
	"bloomzon_dev_v1_202609/internal/service"
)

// ==================== 控制器 ====================

// CatalogController 类目与下拉数据控制器
type CatalogController struct {
	catalogService *service.CatalogService
}

func NewCatalogController(catalogService *service.CatalogService) *CatalogController {
	return &CatalogController{catalogService: catalogService}
}

// ==================== API 方法 ====================

// GetDropdownData 获取下拉数据
// @Summary 获取发布向导所需的全部下拉数据
// @Tags Catalog
// @Produce json
// @Success 200 {object} dto.DropdownDataResp
// @Router /api/products/dropdown-data [get]
func (ctrl *CatalogController) GetDropdownData(c *gin.Context) {
	ctx := c.Request.Context()
	data, err := ctrl.catalogService.GetDropdownData(ctx)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    data,
	})
}

// AddCategory 新增类目
// @Summary 新增商品类目（可同时带子类目）
// @Tags Catalog
// @Accept json
// @Param body body dto.AddCategoryReq true "类目"
// @Success 201 {object} map[string]interface{}
// @Router /api/products/category [post]
func (ctrl *CatalogController) AddCategory(c *gin.Context) {
	var req dto.AddCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	category, err := ctrl.catalogService.AddCategory(ctx, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "类目创建成功",
		"data": gin.H{
			"id":   category.ID,
			"name": category.Name,
			"slug": category.Slug,
		},
	})
}
