// Package metrics 对 Etsy 店铺/商品快照做派生指标计算。
// 全部为纯函数：不做 I/O，不读系统时钟，"当前时间"一律由调用方传入。
package metrics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"etsy_insights_v1/pkg/etsy"
)

// ==================== 费用常量 ====================

// 粗略的固定费率估算，并非 Etsy 真实费用表，仅用于展示参考
const (
	TransactionFeeRate = 0.065 // 交易佣金 6.5%
	ProcessingFeeRate  = 0.03  // 支付手续费 3%
	ListingFeePerItem  = 0.20  // 上架费 $0.20/件
)

// DefaultPricePoints 营收估算的默认客单价档位
var DefaultPricePoints = []float64{15, 25, 35}

const secondsPerDay = 86400

// ==================== 年龄计算 ====================

// AgeInDays 计算创建时间到 now 的天数，向上取整
// created 在 now 之后时返回 0
func AgeInDays(createdEpoch int64, now time.Time) int {
	secs := now.Unix() - createdEpoch
	if secs <= 0 {
		return 0
	}
	return int(math.Ceil(float64(secs) / float64(secondsPerDay)))
}

// AvgSalesPerDay 日均销量，店龄不足一天按一天算
func AvgSalesPerDay(shop *etsy.Shop, now time.Time) float64 {
	age := AgeInDays(shop.CreateDate, now)
	if age < 1 {
		age = 1
	}
	return float64(shop.TransactionSoldCount) / float64(age)
}

// ==================== 阈值过滤 ====================

// Thresholds 用户设定的筛选阈值，仅用于前端行高亮，不影响抓取结果
type Thresholds struct {
	MinFavorites int `json:"min_favorites"`
	MaxAgeDays   int `json:"max_age_days"`
	MinViews     int `json:"min_views"`
}

// PassesFilter 商品是否同时满足三项阈值
func PassesFilter(l *etsy.Listing, t Thresholds, now time.Time) bool {
	return l.NumFavorers >= t.MinFavorites &&
		l.Views >= t.MinViews &&
		AgeInDays(l.OriginalCreationTimestamp, now) <= t.MaxAgeDays
}

// ==================== 费用与营收估算 ====================

// FeeBreakdown 费用拆解
type FeeBreakdown struct {
	TransactionFee float64 `json:"transaction_fee"`
	ProcessingFee  float64 `json:"processing_fee"`
	ListingFee     float64 `json:"listing_fee"`
	TotalFees      float64 `json:"total_fees"`
	Net            float64 `json:"net"`
}

// FeeEstimate 按固定费率估算店铺费用
// Net 恒等于 sold_count - TotalFees
func FeeEstimate(shop *etsy.Shop) FeeBreakdown {
	sold := float64(shop.TransactionSoldCount)

	f := FeeBreakdown{
		TransactionFee: sold * TransactionFeeRate,
		ProcessingFee:  sold * ProcessingFeeRate,
		ListingFee:     float64(shop.ListingActiveCount) * ListingFeePerItem,
	}
	f.TotalFees = f.TransactionFee + f.ProcessingFee + f.ListingFee
	f.Net = sold - f.TotalFees
	return f
}

// RevenuePoint 某一客单价档位下的营收估算
type RevenuePoint struct {
	PricePoint float64 `json:"price_point"`
	Revenue    float64 `json:"revenue"`
}

// RevenueEstimate 按客单价档位估算营收；不传档位时使用默认的 15/25/35
func RevenueEstimate(shop *etsy.Shop, pricePoints ...float64) []RevenuePoint {
	if len(pricePoints) == 0 {
		pricePoints = DefaultPricePoints
	}

	out := make([]RevenuePoint, len(pricePoints))
	for i, p := range pricePoints {
		out[i] = RevenuePoint{
			PricePoint: p,
			Revenue:    float64(shop.TransactionSoldCount) * p,
		}
	}
	return out
}

// ==================== 上架时间线 ====================

// TimelineBucket 时间线桶：标签 + 当期数量 + 累计数量
type TimelineBucket struct {
	Label      string `json:"label"`
	Count      int    `json:"count"`
	Cumulative int    `json:"cumulative"`
}

// MonthlyTimeline 按创建年月 (YYYY-MM) 分桶统计上架数量，按时间升序
func MonthlyTimeline(listings []etsy.Listing) []TimelineBucket {
	return timeline(listings, "2006-01")
}

// DailyTimeline 按创建日期 (YYYY-MM-DD) 分桶统计上架数量，按时间升序
func DailyTimeline(listings []etsy.Listing) []TimelineBucket {
	return timeline(listings, "2006-01-02")
}

func timeline(listings []etsy.Listing, layout string) []TimelineBucket {
	groups := make(map[string]int)
	for i := range listings {
		key := time.Unix(listings[i].OriginalCreationTimestamp, 0).UTC().Format(layout)
		groups[key]++
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	// YYYY-MM / YYYY-MM-DD 字典序即时间序
	sort.Strings(keys)

	out := make([]TimelineBucket, 0, len(keys))
	cumulative := 0
	for _, k := range keys {
		cumulative += groups[k]
		out = append(out, TimelineBucket{Label: k, Count: groups[k], Cumulative: cumulative})
	}
	return out
}

// ==================== 排序 ====================

// SortField 排序字段
type SortField string

const (
	SortByFavorites    SortField = "favorites"
	SortByViews        SortField = "views"
	SortByAge          SortField = "age"
	SortByStock        SortField = "stock"
	SortByLastModified SortField = "last_modified"
)

// SortDirection 排序方向
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortListings 按单字段对商品排序，返回新切片，不改动入参
// 稳定排序：键相等的商品保持输入相对顺序
// 年龄按天数取键，同一天上架的商品视为相等
func SortListings(listings []etsy.Listing, field SortField, direction SortDirection, now time.Time) []etsy.Listing {
	out := make([]etsy.Listing, len(listings))
	copy(out, listings)

	key := func(l *etsy.Listing) int64 {
		switch field {
		case SortByViews:
			return int64(l.Views)
		case SortByAge:
			return int64(AgeInDays(l.OriginalCreationTimestamp, now))
		case SortByStock:
			return int64(l.Quantity)
		case SortByLastModified:
			return l.LastModifiedTimestamp
		default:
			return int64(l.NumFavorers)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := key(&out[i]), key(&out[j])
		if direction == SortAsc {
			return a < b
		}
		return a > b
	})

	return out
}

// ==================== 导出 ====================

// ListingsCSV 生成商品表的制表符分隔导出串 (复制到剪贴板直接粘进表格)
func ListingsCSV(listings []etsy.Listing, now time.Time) string {
	rows := "Title\tFavorites\tViews\tAge (days)\tStock\tType\n"
	for i := range listings {
		l := &listings[i]
		rows += fmt.Sprintf("%s\t%d\t%d\t%d\t%d\t%s\n",
			l.Title, l.NumFavorers, l.Views,
			AgeInDays(l.OriginalCreationTimestamp, now),
			l.Quantity, l.ListingType)
	}
	return rows
}
