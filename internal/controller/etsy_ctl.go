package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"etsy_insights_v1/internal/api/dto"
	"etsy_insights_v1/internal/service"
	"etsy_insights_v1/pkg/etsy"
)

// ==================== EtsyController Etsy 分析控制器 ====================

// EtsyController Etsy 数据分析控制器
type EtsyController struct {
	insightService *service.InsightService
}

// NewEtsyController 创建分析控制器
func NewEtsyController(insightService *service.InsightService) *EtsyController {
	return &EtsyController{insightService: insightService}
}

// ==================== 店铺 ====================

// AnalyzeShop 店铺分析
// @Summary 店铺分析
// @Tags Etsy
// @Accept json
// @Produce json
// @Param request body dto.ShopAnalyzeRequest true "店铺名与阈值"
// @Success 200 {object} dto.ShopInsight
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /etsy/shop [post]
func (c *EtsyController) AnalyzeShop(ctx *gin.Context) {
	var req dto.ShopAnalyzeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	insight, err := c.insightService.AnalyzeShop(ctx.Request.Context(), &req)
	if err != nil {
		c.writeEtsyError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": insight,
	})
}

// BulkAnalyze 批量店铺分析
// @Summary 批量店铺分析
// @Tags Etsy
// @Accept json
// @Produce json
// @Param request body dto.BulkAnalyzeRequest true "店铺名列表"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /etsy/shops/bulk [post]
func (c *EtsyController) BulkAnalyze(ctx *gin.Context) {
	var req dto.BulkAnalyzeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	// 单项失败体现在每项的 status/error 上，整体始终 200
	results := c.insightService.BulkAnalyze(ctx.Request.Context(), req.ShopNames)

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": gin.H{
			"results": results,
			"csv":     service.BulkCSV(results),
		},
	})
}

// ==================== 关键词 ====================

// KeywordResearch 关键词研究
// @Summary 关键词研究
// @Tags Etsy
// @Produce json
// @Param keyword query string true "关键词"
// @Param limit query int false "抓取数量"
// @Success 200 {object} dto.KeywordResearchResponse
// @Failure 400 {object} map[string]interface{}
// @Router /etsy/keyword-research [get]
func (c *EtsyController) KeywordResearch(ctx *gin.Context) {
	keyword := ctx.Query("keyword")
	if keyword == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "keyword 参数必填",
		})
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "25"))

	resp, err := c.insightService.KeywordResearch(ctx.Request.Context(), keyword, limit)
	if err != nil {
		c.writeEtsyError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": resp,
	})
}

// TagSuggestions 标签建议
// @Summary 标签建议
// @Tags Etsy
// @Produce json
// @Param keyword query string true "关键词"
// @Success 200 {object} dto.TagSuggestionsResponse
// @Failure 400 {object} map[string]interface{}
// @Router /etsy/tags [get]
func (c *EtsyController) TagSuggestions(ctx *gin.Context) {
	keyword := ctx.Query("keyword")
	if keyword == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "keyword 参数必填",
		})
		return
	}

	resp, err := c.insightService.TagSuggestions(ctx.Request.Context(), keyword)
	if err != nil {
		c.writeEtsyError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": resp,
	})
}

// ==================== 单商品 ====================

// GetListing 商品详情
// @Summary 商品详情
// @Tags Etsy
// @Produce json
// @Param id query int true "商品 ID"
// @Success 200 {object} etsy.Listing
// @Failure 400 {object} map[string]interface{}
// @Router /etsy/listing [get]
func (c *EtsyController) GetListing(ctx *gin.Context) {
	idStr := ctx.Query("id")
	if idStr == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "id 参数必填",
		})
		return
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "id 必须是数字",
		})
		return
	}

	listing, err := c.insightService.GetListing(ctx.Request.Context(), id)
	if err != nil {
		c.writeEtsyError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": listing,
	})
}

// ==================== 错误映射 ====================

// writeEtsyError 把客户端错误翻译成终态响应
// 店铺不存在 -> 404；其余(配置缺失/上游非 2xx/网络失败) -> 500 带消息
func (c *EtsyController) writeEtsyError(ctx *gin.Context, err error) {
	if errors.Is(err, etsy.ErrShopNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": err.Error(),
		})
		return
	}

	var apiErr *etsy.APIError
	if errors.As(err, &apiErr) {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "Etsy 接口请求失败",
			"detail":  apiErr.Error(),
		})
		return
	}

	ctx.JSON(http.StatusInternalServerError, gin.H{
		"code":    500,
		"message": err.Error(),
	})
}
