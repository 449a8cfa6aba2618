package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"bloomzon_dev_v1_202609/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 请求构造辅助 ====================

func setupRouter() *gin.Engine {
	return gin.New()
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ==================== 参数验证测试 ====================

func TestParseProductID(t *testing.T) {
	router := setupRouter()
	router.GET("/api/products/:id", func(c *gin.Context) {
		id, ok := parseProductID(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "id": id})
	})

	tests := []struct {
		name       string
		id         string
		wantStatus int
	}{
		{"非数字ID", "abc", http.StatusBadRequest},
		{"零值ID", "0", http.StatusBadRequest},
		{"负数ID", "-3", http.StatusBadRequest},
		{"有效ID", "42", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, "GET", "/api/products/"+tt.id, nil)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestSaveDetails_MissingRequiredFields(t *testing.T) {
	router := setupRouter()
	ctrl := NewProductController(nil)
	// 绑定失败在进 service 之前就返回，nil service 不会被触碰
	router.POST("/api/products/details", ctrl.SaveDetails)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"空请求体", nil},
		{"缺少类目", map[string]interface{}{"productName": "Phone X"}},
		{"缺少名称", map[string]interface{}{
			"productCategory":    "Electronics",
			"productSubCategory": "Phone",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, "POST", "/api/products/details", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestSaveVariations_RequiresVariationsField(t *testing.T) {
	router := setupRouter()
	ctrl := NewProductController(nil)
	router.PUT("/api/products/:id/variations", ctrl.SaveVariations)

	// JSON 请求没有 variations 表单字段
	w := performRequest(router, "PUT", "/api/products/1/variations", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Contains(t, resp["message"], "variations")
}

func TestUpdateStatus_MissingStatus(t *testing.T) {
	router := setupRouter()
	ctrl := NewProductController(nil)
	router.PATCH("/api/products/:id/status", ctrl.UpdateStatus)

	w := performRequest(router, "PATCH", "/api/products/1/status", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ==================== 错误映射测试 ====================

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"校验错误映射 400", service.NewValidationError("参数不合法"), http.StatusBadRequest},
		{"冲突映射 409", service.NewConflictError("SKU 已存在"), http.StatusConflict},
		{"未找到映射 404", service.NewNotFoundError("商品不存在"), http.StatusNotFound},
		{"其他错误映射 500", fmt.Errorf("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter()
			router.GET("/boom", func(c *gin.Context) {
				respondServiceError(c, tt.err)
			})

			w := performRequest(router, "GET", "/boom", nil)
			assert.Equal(t, tt.wantStatus, w.Code)

			var resp map[string]interface{}
			json.Unmarshal(w.Body.Bytes(), &resp)
			assert.EqualValues(t, tt.wantStatus, resp["code"])
		})
	}
}
