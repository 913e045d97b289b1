package dto

import (
	"etsy_insights_v1/pkg/etsy"
	"etsy_insights_v1/pkg/metrics"
)

// ==================== 店铺分析 ====================

// ShopAnalyzeRequest 店铺分析请求
// 三项阈值只用于结果行的达标标记，不影响抓取
type ShopAnalyzeRequest struct {
	ShopName     string `json:"shop_name" binding:"required,min=1"`
	MinFavorites int    `json:"min_favorites" binding:"min=0"`
	MaxAgeDays   int    `json:"max_age_days" binding:"min=0"`
	MinViews     int    `json:"min_views" binding:"min=0"`
}

// ListingInsight 商品 + 派生字段
type ListingInsight struct {
	etsy.Listing
	AgeDays       int  `json:"age_days"`
	FavoritesPass bool `json:"favorites_pass"`
	ViewsPass     bool `json:"views_pass"`
	AgePass       bool `json:"age_pass"`
	Passes        bool `json:"passes"` // 三项同时达标
}

// ShopInsight 店铺分析报告
type ShopInsight struct {
	Shop           etsy.Shop                `json:"shop"`
	AgeDays        int                      `json:"age_days"`
	AgePass        bool                     `json:"age_pass"`
	AvgSalesPerDay float64                  `json:"avg_sales_per_day"`
	Fees           metrics.FeeBreakdown     `json:"fees"`
	Revenue        []metrics.RevenuePoint   `json:"revenue"`
	Timeline       []metrics.TimelineBucket `json:"timeline"`
	Listings       []ListingInsight         `json:"listings"`
	ListingsCSV    string                   `json:"listings_csv"`
}

// ==================== 批量分析 ====================

// BulkAnalyzeRequest 批量店铺分析请求
type BulkAnalyzeRequest struct {
	ShopNames []string `json:"shop_names" binding:"required,min=1,dive,min=1"`
}

// 批量分析单项状态
const (
	BulkStatusSuccess = "success"
	BulkStatusError   = "error"
)

// BulkShopResult 批量分析单项结果
// 每一项独立收敛到 success / error，互不影响
type BulkShopResult struct {
	ShopName       string `json:"shop_name"`
	Status         string `json:"status"`
	Error          string `json:"error,omitempty"`
	AgeDays        int    `json:"age_days"`
	TotalSales     int    `json:"total_sales"`
	ShopFavorites  int    `json:"shop_favorites"`
	ActiveListings int    `json:"active_listings"`
}

// ==================== 关键词研究 ====================

// TagCount 标签及出现次数
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// KeywordResearchResponse 关键词研究结果
// 只统计真实抓到的商品，不编造搜索量
type KeywordResearchResponse struct {
	Keyword          string         `json:"keyword"`
	Competition      int            `json:"competition"` // 匹配商品总数
	AveragePrice     float64        `json:"average_price"`
	AverageViews     float64        `json:"average_views"`
	AverageFavorites float64        `json:"average_favorites"`
	TopTags          []TagCount     `json:"top_tags"`
	Listings         []etsy.Listing `json:"listings"`
}

// ==================== 标签建议 ====================

// TagSuggestionsResponse 标签建议结果
type TagSuggestionsResponse struct {
	Keyword string   `json:"keyword"`
	Tags    []string `json:"tags"`
}
