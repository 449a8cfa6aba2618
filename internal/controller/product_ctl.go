package controller

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"bloomzon_dev_v1_202609/internal/api/dto"
	"bloomzon_dev_v1_202609/internal/middleware"
	"bloomzon_dev_v1_202609/internal/model"
	"bloomzon_dev_v1_202609/internal/repository"
	"bloomzon_dev_v1_202609/internal/service"
)

// 单文件上限 10MB
const maxUploadSize = 10 << 20

// ==================== 控制器 ====================

// ProductController 商品刊登控制器
type ProductController struct {
	productService *service.ProductService
}

func NewProductController(productService *service.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

// ==================== 向导 API ====================

// SaveDetails Step 1 创建草稿
// @Summary 提交基础信息，创建商品草稿
// @Tags Product
// @Accept json
// @Produce json
// @Param body body dto.SaveDetailsReq true "基础信息"
// @Success 201 {object} map[string]interface{}
// @Router /api/products/details [post]
func (ctrl *ProductController) SaveDetails(c *gin.Context) {
	var req dto.SaveDetailsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	product, err := ctrl.productService.CreateDraft(ctx, middleware.GetSellerID(c), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "草稿创建成功",
		"data":    toProductResp(product),
	})
}

// SaveVariationTypes Step 2 变体维度
// @Summary 保存适用的变体维度与候选值
// @Tags Product
// @Accept json
// @Param id path int true "商品ID"
// @Param body body dto.SaveVariationTypesReq true "变体维度"
// @Success 200 {object} map[string]interface{}
// @Router /api/products/{id}/variation-types [put]
func (ctrl *ProductController) SaveVariationTypes(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}

	var req dto.SaveVariationTypesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	product, err := ctrl.productService.SaveVariationTypes(ctx, middleware.GetSellerID(c), id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "变体维度已保存",
		"data":    toProductResp(product),
	})
}

// SaveVariations Step 3 变体组
// @Summary 整组替换商品变体（multipart，variations 为 JSON 字符串，images 按下标对应）
// @Tags Product
// @Accept multipart/form-data
// @Param id path int true "商品ID"
// @Param variations formData string true "变体 JSON 数组"
// @Param images formData file false "变体图"
// @Success 200 {object} map[string]interface{}
// @Router /api/products/{id}/variations [put]
func (ctrl *ProductController) SaveVariations(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}

	raw := c.PostForm("variations")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "缺少 variations 字段",
		})
		return
	}
	var specs []dto.VariationSpec
	if err := json.Unmarshal([]byte(raw), &specs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "variations 格式错误: " + err.Error(),
		})
		return
	}

	files, err := readUploadFiles(c, "images")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "文件读取失败: " + err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	product, variations, err := ctrl.productService.SaveVariations(ctx, middleware.GetSellerID(c), id, specs, files)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := toProductResp(product)
	for i := range variations {
		resp.Variations = append(resp.Variations, dto.ToVariationResp(&variations[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "变体已保存",
		"data":    resp,
	})
}

// SaveOffer Step 4 报价
// @Summary 保存 SKU 与报价信息
// @Tags Product
// @Accept json
// @Param id path int true "商品ID"
// @Param body body dto.SaveOfferReq true "报价"
// @Success 200 {object} map[string]interface{}
// @Router /api/products/{id}/offers [put]
func (ctrl *ProductController) SaveOffer(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}

	var req dto.SaveOfferReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	product, err := ctrl.productService.SaveOffer(ctx, middleware.GetSellerID(c), id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "报价已保存",
		"data":    toProductResp(product),
	})
}

// SaveGallery Step 5 图库
// @Summary 整组替换商品图库（至少一张，第一张为主图）
// @Tags Product
// @Accept multipart/form-data
// @Param id path int true "商品ID"
// @Param images formData file true "商品图"
// @Success 200 {object} map[string]interface{}
// @Router /api/products/{id}/gallery [put]
func (ctrl *ProductController) SaveGallery(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}

	files, err := readUploadFiles(c, "images")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "文件读取失败: " + err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	product, images, err := ctrl.productService.SaveGallery(ctx, middleware.GetSellerID(c), id, files)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := toProductResp(product)
	for i := range images {
		resp.Images = append(resp.Images, dto.ToImageResp(&images[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "图库已保存",
		"data":    resp,
	})
}

// SaveDescription Step 6 文描
// @Summary 保存商品描述与卖点
// @Tags Product
// @Accept json
// @Param id path int true "商品ID"
// @Param body body dto.SaveDescriptionReq true "文描"
// @Success 200 {object} map[string]interface{}
// @Router /api/products/{id}/description [put]
func (ctrl *ProductController) SaveDescription(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}

	var req dto.SaveDescriptionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	product, err := ctrl.productService.SaveDescription(ctx, middleware.GetSellerID(c), id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "文描已保存",
		"data":    toProductResp(product),
	})
}

// SaveKeywords Step 7 关键词并发布
// @Summary 保存关键词并发布商品（draft 转 active）
// @Tags Product
// @Accept json
// @Param id path int true "商品ID"
// @Param body body dto.SaveKeywordsReq true "关键词"
// @Success 200 {object} map[string]interface{}
// @Router /api/products/{id}/keywords [put]
func (ctrl *ProductController) SaveKeywords(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}

	var req dto.SaveKeywordsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	product, err := ctrl.productService.SaveKeywords(ctx, middleware.GetSellerID(c), id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "商品已发布",
		"data":    toProductResp(product),
	})
}

// CompleteCreation 一步式创建
// @Summary 跳过向导一次建完（multipart，data 为 JSON 字符串，images 为图库）
// @Tags Product
// @Accept multipart/form-data
// @Param data formData string true "完整商品 JSON"
// @Param images formData file false "图库"
// @Success 201 {object} map[string]interface{}
// @Router /api/products/complete [post]
func (ctrl *ProductController) CompleteCreation(c *gin.Context) {
	var req dto.CompleteCreationReq
	var files []*dto.UploadFile

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		raw := c.PostForm("data")
		if raw == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "缺少 data 字段",
			})
			return
		}
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "data 格式错误: " + err.Error(),
			})
			return
		}
		var err error
		files, err = readUploadFiles(c, "images")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "文件读取失败: " + err.Error(),
			})
			return
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "参数错误: " + err.Error(),
			})
			return
		}
	}

	ctx := c.Request.Context()
	product, err := ctrl.productService.CompleteOneShot(ctx, middleware.GetSellerID(c), &req, files)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "商品创建成功",
		"data":    toProductResp(product),
	})
}

// ==================== 查询 API ====================

// GetProduct 商品详情
// @Summary 获取商品详情（含变体与图库），浏览数 +1
// @Tags Product
// @Param id path int true "商品ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/products/{id} [get]
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	product, variations, images, err := ctrl.productService.GetProduct(ctx, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := toProductResp(product)
	for i := range variations {
		resp.Variations = append(resp.Variations, dto.ToVariationResp(&variations[i]))
	}
	for i := range images {
		resp.Images = append(resp.Images, dto.ToImageResp(&images[i]))
		if images[i].IsPrimary {
			resp.PrimaryImage = images[i].URL
		}
	}
	if resp.PrimaryImage == "" && len(images) > 0 {
		resp.PrimaryImage = images[0].URL
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    resp,
	})
}

// ListProducts 商品列表
// @Summary 卖家商品列表（过滤 + 排序 + 分页）
// @Tags Product
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Param status query string false "状态筛选"
// @Param category query string false "类目筛选"
// @Param search query string false "关键词搜索"
// @Param sortBy query string false "排序字段" default(created_at)
// @Param order query string false "排序方向 asc/desc" default(desc)
// @Success 200 {object} dto.ProductListResp
// @Router /api/products [get]
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	filter := repository.ProductFilter{
		SellerID: middleware.GetSellerID(c),
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
		SortBy:   c.DefaultQuery("sortBy", "created_at"),
		Order:    c.DefaultQuery("order", "desc"),
		Page:     page,
		PageSize: limit,
	}

	ctx := c.Request.Context()
	products, total, err := ctrl.productService.ListProducts(ctx, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	data := make([]dto.ProductResp, 0, len(products))
	for i := range products {
		resp := toProductResp(&products[i])
		if url, err := ctrl.productService.PrimaryImageURL(ctx, products[i].ID); err == nil {
			resp.PrimaryImage = url
		}
		data = append(data, resp)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	c.JSON(http.StatusOK, dto.ProductListResp{
		Code:    0,
		Message: "success",
		Data:    data,
		Pagination: dto.Pagination{
			CurrentPage:   page,
			TotalPages:    totalPages,
			TotalProducts: total,
			Limit:         limit,
			HasNext:       page < totalPages,
			HasPrev:       page > 1,
		},
	})
}

// ==================== 更新与删除 API ====================

// UpdateProduct 发布后编辑
// @Summary 更新商品（白名单字段，新图追加不替换）
// @Tags Product
// @Accept multipart/form-data
// @Param id path int true "商品ID"
// @Param data formData string false "更新字段 JSON"
// @Param images formData file false "追加图"
// @Success 200 {object} map[string]interface{}
// @Router /api/products/{id} [put]
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}

	var req dto.UpdateProductReq
	var files []*dto.UploadFile

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if raw := c.PostForm("data"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"code":    400,
					"message": "data 格式错误: " + err.Error(),
				})
				return
			}
		}
		var err error
		files, err = readUploadFiles(c, "images")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "文件读取失败: " + err.Error(),
			})
			return
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "参数错误: " + err.Error(),
			})
			return
		}
	}

	ctx := c.Request.Context()
	product, err := ctrl.productService.UpdateProduct(ctx, middleware.GetSellerID(c), id, &req, files)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "更新成功",
		"data":    toProductResp(product),
	})
}

// UpdateStatus 状态流转
// @Summary 更新商品状态（active/inactive/out_of_stock，草稿不可用）
// @Tags Product
// @Accept json
// @Param id path int true "商品ID"
// @Param body body dto.UpdateStatusReq true "目标状态"
// @Success 200 {object} map[string]interface{}
// @Router /api/products/{id}/status [patch]
func (ctrl *ProductController) UpdateStatus(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}

	var req dto.UpdateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	product, err := ctrl.productService.UpdateStatus(ctx, middleware.GetSellerID(c), id, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "状态已更新",
		"data":    toProductResp(product),
	})
}

// DeleteProduct 删除商品
// @Summary 硬删除商品及全部变体、图库与远端媒体
// @Tags Product
// @Param id path int true "商品ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/products/{id} [delete]
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := ctrl.productService.DeleteProduct(ctx, middleware.GetSellerID(c), id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "删除成功",
	})
}

// ==================== 辅助函数 ====================

func parseProductID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的商品ID",
		})
		return 0, false
	}
	return id, true
}

// readUploadFiles 把 multipart 文件读入内存
func readUploadFiles(c *gin.Context, field string) ([]*dto.UploadFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if err == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, err
	}

	headers := form.File[field]
	files := make([]*dto.UploadFile, 0, len(headers))
	for _, fh := range headers {
		file, err := readOneFile(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func readOneFile(fh *multipart.FileHeader) (*dto.UploadFile, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxUploadSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxUploadSize {
		return nil, service.NewValidationError("文件超过 10MB 上限")
	}

	return &dto.UploadFile{
		Data:        data,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        int64(len(data)),
	}, nil
}

// respondServiceError 业务错误到 HTTP 状态码的统一映射
func respondServiceError(c *gin.Context, err error) {
	switch {
	case service.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
	case service.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{
			"code":    409,
			"message": err.Error(),
		})
	case service.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "服务内部错误: " + err.Error(),
		})
	}
}

// toProductResp 商品模型转响应（不含关联集合）
func toProductResp(p *model.Product) dto.ProductResp {
	return dto.ProductResp{
		ID:                 p.ID,
		ProductID:          p.ProductID,
		ProductCategory:    p.ProductCategory,
		ProductSubCategory: p.ProductSubCategory,
		ProductName:        p.ProductName,
		BrandName:          p.BrandName,
		ModelNumber:        p.ModelNumber,
		SellerSku:          p.SellerSku,
		YourPrice:          p.YourPrice,
		ListPrice:          p.ListPrice,
		MaximumRetailPrice: p.MaximumRetailPrice,
		Quantity:           p.Quantity,
		Condition:          p.Condition,
		FulfillmentChannel: p.FulfillmentChannel,
		Description:        p.Description,
		BulletPoints:       p.BulletPoints,
		Keywords:           p.Keywords,
		VariationTypes:     p.VariationTypes,
		CurrentStep:        p.CurrentStep,
		Status:             p.Status,
		CompletedAt:        p.CompletedAt,
		Views:              p.Views,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}
