package etsy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL Etsy Open API v3 地址
const DefaultBaseURL = "https://api.etsy.com"

// defaultListingLimit 店铺商品抓取上限 (Etsy 单页最大 100)
const defaultListingLimit = 100

var (
	// ErrAPIKeyMissing 服务端未配置 ETSY_API_KEY
	ErrAPIKeyMissing = errors.New("Etsy API Key 未配置")
	// ErrShopNotFound 店铺搜索返回空列表
	// 注意：空列表必须按"店铺不存在"处理，不能当成功返回
	ErrShopNotFound = errors.New("店铺不存在")
)

// APIError Etsy 返回非 2xx 状态时的上游错误
// 保留状态码和响应体，供日志与排查使用
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("etsy api error: status=%d body=%s", e.StatusCode, e.Body)
}

// Client Etsy API 客户端
// API Key 只存在于服务端配置，绝不透传给浏览器
type Client struct {
	apiKey string
	http   *resty.Client
}

// NewClient 创建 Etsy 客户端
func NewClient(apiKey string) *Client {
	c := resty.New().
		SetBaseURL(DefaultBaseURL).
		SetTimeout(10 * time.Second).
		SetHeader("x-api-key", apiKey).
		SetHeader("Cache-Control", "no-store")

	return &Client{apiKey: apiKey, http: c}
}

// SetBaseURL 覆盖 API 地址 (单测指向 httptest server)
func (c *Client) SetBaseURL(baseURL string) {
	c.http.SetBaseURL(baseURL)
}

// get 统一封装 GET 请求：鉴权、状态码检查、JSON 解析
func (c *Client) get(ctx context.Context, path string, query map[string]string, out interface{}) error {
	if c.apiKey == "" {
		return ErrAPIKeyMissing
	}

	req := c.http.R().SetContext(ctx).SetResult(out)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("etsy request failed: %w", err)
	}

	if resp.IsError() {
		return &APIError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	return nil
}

// FindShopByName 按店铺名搜索店铺
// GET /v3/application/shops?shop_name={name}
// 按名称查询最多返回一个匹配；空结果返回 ErrShopNotFound
func (c *Client) FindShopByName(ctx context.Context, shopName string) (*Shop, error) {
	var out ShopListResp
	err := c.get(ctx, "/v3/application/shops", map[string]string{"shop_name": shopName}, &out)
	if err != nil {
		return nil, err
	}

	if len(out.Results) == 0 {
		return nil, ErrShopNotFound
	}
	return &out.Results[0], nil
}

// GetShopListings 获取店铺在售商品 (含图片)
// GET /v3/application/shops/{shop_id}/listings/active?limit=100&includes=images
func (c *Client) GetShopListings(ctx context.Context, shopID int64) ([]Listing, error) {
	var out ListingListResp
	path := fmt.Sprintf("/v3/application/shops/%d/listings/active", shopID)
	err := c.get(ctx, path, map[string]string{
		"limit":    fmt.Sprintf("%d", defaultListingLimit),
		"includes": "images",
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Results, nil
}

// SearchListings 按关键词搜索在售商品，返回商品列表和总匹配数
// GET /v3/application/listings/active?keywords={kw}&limit=N&includes=images
func (c *Client) SearchListings(ctx context.Context, keyword string, limit int) ([]Listing, int, error) {
	if limit <= 0 {
		limit = 25
	}

	var out ListingListResp
	err := c.get(ctx, "/v3/application/listings/active", map[string]string{
		"keywords": keyword,
		"limit":    fmt.Sprintf("%d", limit),
		"includes": "images",
	}, &out)
	if err != nil {
		return nil, 0, err
	}
	return out.Results, out.Count, nil
}

// GetListing 获取单个商品详情
// GET /v3/application/listings/{listing_id}
func (c *Client) GetListing(ctx context.Context, listingID int64) (*Listing, error) {
	var out Listing
	path := fmt.Sprintf("/v3/application/listings/%d", listingID)
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetListingTags 获取单个商品的标签列表
// GET /v3/application/listings/{listing_id}/tags
func (c *Client) GetListingTags(ctx context.Context, listingID int64) ([]string, error) {
	var out TagListResp
	path := fmt.Sprintf("/v3/application/listings/%d/tags", listingID)
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}
