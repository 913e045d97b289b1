package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"etsy_insights_v1/internal/api/dto"
	"etsy_insights_v1/pkg/etsy"
	"etsy_insights_v1/pkg/metrics"
)

// 关键词研究的 Top 标签数量
const topTagLimit = 10

// 标签建议抓取的商品数
const tagSuggestionLimit = 25

// ==================== InsightService 分析服务 ====================

// InsightService 店铺/关键词分析服务
// 数据流：Etsy 客户端抓快照 -> metrics 纯函数算派生指标 -> 组装报告
type InsightService struct {
	client *etsy.Client

	// 可注入的时钟，测试时固定 now
	now func() time.Time
}

// NewInsightService 创建分析服务
func NewInsightService(client *etsy.Client) *InsightService {
	return &InsightService{
		client: client,
		now:    time.Now,
	}
}

// SetClock 固定时钟 (测试用)
func (s *InsightService) SetClock(now func() time.Time) {
	s.now = now
}

// ==================== 店铺分析 ====================

// AnalyzeShop 按店铺名生成分析报告
// 两步抓取：先按名称搜店铺，再拉在售商品；店铺不存在返回 etsy.ErrShopNotFound
func (s *InsightService) AnalyzeShop(ctx context.Context, req *dto.ShopAnalyzeRequest) (*dto.ShopInsight, error) {
	shop, err := s.client.FindShopByName(ctx, req.ShopName)
	if err != nil {
		return nil, err
	}

	listings, err := s.client.GetShopListings(ctx, shop.ShopID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	thresholds := metrics.Thresholds{
		MinFavorites: req.MinFavorites,
		MaxAgeDays:   req.MaxAgeDays,
		MinViews:     req.MinViews,
	}

	insights := make([]dto.ListingInsight, len(listings))
	for i := range listings {
		l := &listings[i]
		age := metrics.AgeInDays(l.OriginalCreationTimestamp, now)
		insights[i] = dto.ListingInsight{
			Listing:       *l,
			AgeDays:       age,
			FavoritesPass: l.NumFavorers >= thresholds.MinFavorites,
			ViewsPass:     l.Views >= thresholds.MinViews,
			AgePass:       age <= thresholds.MaxAgeDays,
			Passes:        metrics.PassesFilter(l, thresholds, now),
		}
	}

	shopAge := metrics.AgeInDays(shop.CreateDate, now)
	return &dto.ShopInsight{
		Shop:           *shop,
		AgeDays:        shopAge,
		AgePass:        shopAge <= thresholds.MaxAgeDays,
		AvgSalesPerDay: metrics.AvgSalesPerDay(shop, now),
		Fees:           metrics.FeeEstimate(shop),
		Revenue:        metrics.RevenueEstimate(shop),
		Timeline:       metrics.MonthlyTimeline(listings),
		Listings:       insights,
		ListingsCSV:    metrics.ListingsCSV(listings, now),
	}, nil
}

// ==================== 批量分析 ====================

// BulkAnalyze 批量店铺分析
// 严格串行：逐个查询，每一项独立收敛到 success/error，结果保持输入顺序
// 单项失败不中断整批，也不做任何重试
func (s *InsightService) BulkAnalyze(ctx context.Context, shopNames []string) []dto.BulkShopResult {
	now := s.now()
	results := make([]dto.BulkShopResult, len(shopNames))

	for i, name := range shopNames {
		results[i] = dto.BulkShopResult{ShopName: name}

		shop, err := s.client.FindShopByName(ctx, name)
		if err != nil {
			log.Printf("[Bulk] 店铺 %q 查询失败: %v", name, err)
			results[i].Status = dto.BulkStatusError
			results[i].Error = err.Error()
			continue
		}

		results[i].Status = dto.BulkStatusSuccess
		results[i].AgeDays = metrics.AgeInDays(shop.CreateDate, now)
		results[i].TotalSales = shop.TransactionSoldCount
		results[i].ShopFavorites = shop.NumFavorers
		results[i].ActiveListings = shop.ListingActiveCount
	}

	return results
}

// BulkCSV 批量结果的制表符分隔导出串
func BulkCSV(results []dto.BulkShopResult) string {
	rows := "Shop\tStatus\tAge (days)\tTotal Sales\tFavorites\tActive Listings\n"
	for i := range results {
		r := &results[i]
		if r.Status != dto.BulkStatusSuccess {
			rows += fmt.Sprintf("%s\t%s\t-\t-\t-\t-\n", r.ShopName, r.Status)
			continue
		}
		rows += fmt.Sprintf("%s\t%s\t%d\t%d\t%d\t%d\n",
			r.ShopName, r.Status, r.AgeDays, r.TotalSales, r.ShopFavorites, r.ActiveListings)
	}
	return rows
}

// ==================== 关键词研究 ====================

// KeywordResearch 关键词研究
// 用关键词在售商品做真实聚合：竞争度、均价、平均浏览/收藏、高频标签
func (s *InsightService) KeywordResearch(ctx context.Context, keyword string, limit int) (*dto.KeywordResearchResponse, error) {
	listings, count, err := s.client.SearchListings(ctx, keyword, limit)
	if err != nil {
		return nil, err
	}

	resp := &dto.KeywordResearchResponse{
		Keyword:     keyword,
		Competition: count,
		Listings:    listings,
		TopTags:     []dto.TagCount{},
	}

	if len(listings) == 0 {
		return resp, nil
	}

	var priceSum, viewSum, favSum float64
	tagCounts := make(map[string]int)
	tagOrder := make([]string, 0)

	for i := range listings {
		l := &listings[i]
		priceSum += l.Price.Float()
		viewSum += float64(l.Views)
		favSum += float64(l.NumFavorers)

		for _, tag := range l.Tags {
			if _, seen := tagCounts[tag]; !seen {
				tagOrder = append(tagOrder, tag)
			}
			tagCounts[tag]++
		}
	}

	n := float64(len(listings))
	resp.AveragePrice = priceSum / n
	resp.AverageViews = viewSum / n
	resp.AverageFavorites = favSum / n

	// 按出现次数排 Top 标签，次数相同保持首次出现顺序
	top := make([]dto.TagCount, 0, len(tagOrder))
	for _, tag := range tagOrder {
		top = append(top, dto.TagCount{Tag: tag, Count: tagCounts[tag]})
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Count > top[j].Count
	})
	if len(top) > topTagLimit {
		top = top[:topTagLimit]
	}
	resp.TopTags = top

	return resp, nil
}

// ==================== 标签建议 ====================

// TagSuggestions 标签建议：抓关键词商品，拍平去重标签，保持首次出现顺序
func (s *InsightService) TagSuggestions(ctx context.Context, keyword string) (*dto.TagSuggestionsResponse, error) {
	listings, _, err := s.client.SearchListings(ctx, keyword, tagSuggestionLimit)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	tags := make([]string, 0)
	for i := range listings {
		for _, tag := range listings[i].Tags {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}

	return &dto.TagSuggestionsResponse{Keyword: keyword, Tags: tags}, nil
}

// ==================== 单商品 ====================

// GetListing 单商品详情透传
func (s *InsightService) GetListing(ctx context.Context, listingID int64) (*etsy.Listing, error) {
	return s.client.GetListing(ctx, listingID)
}

// GetListingTags 单商品标签透传
func (s *InsightService) GetListingTags(ctx context.Context, listingID int64) ([]string, error) {
	return s.client.GetListingTags(ctx, listingID)
}
