package etsy

// ==========================================
// DTO: 用于接收 Etsy API 返回的原始 JSON 数据
// ==========================================

// Shop Etsy 店铺响应
// GET /v3/application/shops?shop_name={name}
type Shop struct {
	ShopID               int64  `json:"shop_id"`
	ShopName             string `json:"shop_name"`
	CreateDate           int64  `json:"create_date"` // 创建时间 (epoch 秒)
	ListingActiveCount   int    `json:"listing_active_count"`
	DigitalListingCount  int    `json:"digital_listing_count"`
	TransactionSoldCount int    `json:"transaction_sold_count"`
	NumFavorers          int    `json:"num_favorers"`
	IconURLFullxFull     string `json:"icon_url_fullxfull"`
	URL                  string `json:"url"`
}

// Money Etsy 金额对象 (amount/divisor 定点数)
type Money struct {
	Amount       int64  `json:"amount"`
	Divisor      int64  `json:"divisor"`
	CurrencyCode string `json:"currency_code"`
}

// Float 换算为浮点金额，divisor 为 0 时按 100 处理
func (m Money) Float() float64 {
	d := m.Divisor
	if d == 0 {
		d = 100
	}
	return float64(m.Amount) / float64(d)
}

// ListingImage 商品缩略图
type ListingImage struct {
	URL75x75 string `json:"url_75x75"`
}

// Listing Etsy 商品响应
// GET /v3/application/listings/{listing_id}
type Listing struct {
	ListingID                 int64          `json:"listing_id"`
	ListingType               string         `json:"listing_type"` // physical, download, both
	Title                     string         `json:"title"`
	NumFavorers               int            `json:"num_favorers"`
	Views                     int            `json:"views"`
	OriginalCreationTimestamp int64          `json:"original_creation_timestamp"`
	LastModifiedTimestamp     int64          `json:"last_modified_timestamp"`
	Quantity                  int            `json:"quantity"`
	Tags                      []string       `json:"tags"`
	Price                     Money          `json:"price"`
	URL                       string         `json:"url"`
	Images                    []ListingImage `json:"images"`
}

// ShopListResp 店铺搜索列表响应
type ShopListResp struct {
	Count   int    `json:"count"`
	Results []Shop `json:"results"`
}

// ListingListResp 商品列表响应
type ListingListResp struct {
	Count   int       `json:"count"`
	Results []Listing `json:"results"`
}

// TagListResp 商品标签列表响应
// GET /v3/application/listings/{listing_id}/tags
type TagListResp struct {
	Count   int      `json:"count"`
	Results []string `json:"results"`
}

// ErrorResp Etsy 通用错误响应
type ErrorResp struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}
