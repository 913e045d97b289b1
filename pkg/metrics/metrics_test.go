package metrics

import (
	"strings"
	"testing"
	"time"

	"etsy_insights_v1/pkg/etsy"
)

// 固定测试时钟
var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) int64 {
	return testNow.Add(-time.Duration(n) * 24 * time.Hour).Unix()
}

// ==================== 年龄计算 ====================

func TestAgeInDays(t *testing.T) {
	cases := []struct {
		name    string
		created int64
		want    int
	}{
		{"整 30 天", daysAgo(30), 30},
		{"刚过半天向上取整", testNow.Add(-12 * time.Hour).Unix(), 1},
		{"30 天零 1 秒", daysAgo(30) - 1, 31},
		{"创建时间等于当前", testNow.Unix(), 0},
		{"创建时间在未来", testNow.Add(time.Hour).Unix(), 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := AgeInDays(c.created, testNow); got != c.want {
				t.Errorf("AgeInDays = %d, want %d", got, c.want)
			}
		})
	}
}

func TestAgeInDays_MonotonicInCreated(t *testing.T) {
	// created 越大 (越晚创建)，年龄单调不增
	prev := AgeInDays(daysAgo(365), testNow)
	for d := 364; d >= 0; d-- {
		cur := AgeInDays(daysAgo(d), testNow)
		if cur > prev {
			t.Fatalf("年龄应随创建时间单调不增: d=%d cur=%d prev=%d", d, cur, prev)
		}
		if cur < 0 {
			t.Fatalf("年龄不能为负: %d", cur)
		}
		prev = cur
	}
}

// ==================== 阈值过滤 ====================

func TestPassesFilter(t *testing.T) {
	listing := etsy.Listing{
		NumFavorers:               50,
		Views:                     200,
		OriginalCreationTimestamp: daysAgo(30),
	}

	// 整 30 天，maxAge=30 应通过
	ok := PassesFilter(&listing, Thresholds{MinFavorites: 10, MaxAgeDays: 30, MinViews: 100}, testNow)
	if !ok {
		t.Error("30 天整、阈值 30 天应通过")
	}

	// maxAge=29 应不通过
	ok = PassesFilter(&listing, Thresholds{MinFavorites: 10, MaxAgeDays: 29, MinViews: 100}, testNow)
	if ok {
		t.Error("30 天整、阈值 29 天不应通过")
	}
}

func TestPassesFilter_StricterNeverFlipsToPass(t *testing.T) {
	listing := etsy.Listing{
		NumFavorers:               5,
		Views:                     100,
		OriginalCreationTimestamp: daysAgo(10),
	}

	base := Thresholds{MinFavorites: 10, MaxAgeDays: 30, MinViews: 50}
	if PassesFilter(&listing, base, testNow) {
		t.Fatal("前置条件: 该商品在 base 阈值下应不通过")
	}

	// 收紧 MinFavorites 后仍然不应通过
	stricter := base
	stricter.MinFavorites = 100
	if PassesFilter(&listing, stricter, testNow) {
		t.Error("收紧阈值不能把不通过翻成通过")
	}
}

// ==================== 费用与营收 ====================

func TestFeeEstimate(t *testing.T) {
	shop := etsy.Shop{TransactionSoldCount: 1000, ListingActiveCount: 50}
	f := FeeEstimate(&shop)

	if f.TransactionFee != 1000*0.065 {
		t.Errorf("交易佣金 = %v, want %v", f.TransactionFee, 1000*0.065)
	}
	if f.ProcessingFee != 1000*0.03 {
		t.Errorf("支付手续费 = %v, want %v", f.ProcessingFee, 1000*0.03)
	}
	if f.ListingFee != 50*0.20 {
		t.Errorf("上架费 = %v, want %v", f.ListingFee, 50*0.20)
	}

	// Net 恒等式
	if f.Net != float64(shop.TransactionSoldCount)-f.TotalFees {
		t.Errorf("Net = %v, want sold - TotalFees = %v", f.Net, float64(shop.TransactionSoldCount)-f.TotalFees)
	}
}

func TestFeeAndRevenue_ZeroSales(t *testing.T) {
	shop := etsy.Shop{TransactionSoldCount: 0, ListingActiveCount: 0}

	f := FeeEstimate(&shop)
	if f.TotalFees != 0 || f.Net != 0 {
		t.Errorf("零销量店铺费用应全为 0: %+v", f)
	}

	for _, p := range RevenueEstimate(&shop) {
		if p.Revenue != 0 {
			t.Errorf("零销量店铺营收应为 0: %+v", p)
		}
	}
}

func TestRevenueEstimate_DefaultPricePoints(t *testing.T) {
	shop := etsy.Shop{TransactionSoldCount: 100}
	points := RevenueEstimate(&shop)

	if len(points) != 3 {
		t.Fatalf("默认档位应为 3 个, got %d", len(points))
	}
	want := []float64{1500, 2500, 3500}
	for i, p := range points {
		if p.Revenue != want[i] {
			t.Errorf("档位 %v 营收 = %v, want %v", p.PricePoint, p.Revenue, want[i])
		}
	}
}

// ==================== 时间线 ====================

func TestMonthlyTimeline(t *testing.T) {
	ts := func(y int, m time.Month, d int) int64 {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix()
	}

	listings := []etsy.Listing{
		{OriginalCreationTimestamp: ts(2025, 3, 10)},
		{OriginalCreationTimestamp: ts(2025, 1, 5)},
		{OriginalCreationTimestamp: ts(2025, 3, 20)},
		{OriginalCreationTimestamp: ts(2025, 2, 1)},
	}

	buckets := MonthlyTimeline(listings)
	if len(buckets) != 3 {
		t.Fatalf("桶数 = %d, want 3", len(buckets))
	}

	wantLabels := []string{"2025-01", "2025-02", "2025-03"}
	wantCounts := []int{1, 1, 2}
	wantCum := []int{1, 2, 4}
	for i, b := range buckets {
		if b.Label != wantLabels[i] || b.Count != wantCounts[i] || b.Cumulative != wantCum[i] {
			t.Errorf("桶[%d] = %+v, want {%s %d %d}", i, b, wantLabels[i], wantCounts[i], wantCum[i])
		}
	}
}

func TestDailyTimeline(t *testing.T) {
	ts := func(y int, m time.Month, d int) int64 {
		return time.Date(y, m, d, 10, 0, 0, 0, time.UTC).Unix()
	}

	listings := []etsy.Listing{
		{OriginalCreationTimestamp: ts(2025, 3, 10)},
		{OriginalCreationTimestamp: ts(2025, 3, 10)},
		{OriginalCreationTimestamp: ts(2025, 3, 11)},
	}

	buckets := DailyTimeline(listings)
	if len(buckets) != 2 {
		t.Fatalf("桶数 = %d, want 2", len(buckets))
	}
	if buckets[0].Label != "2025-03-10" || buckets[0].Count != 2 {
		t.Errorf("桶[0] = %+v", buckets[0])
	}
	if buckets[1].Cumulative != 3 {
		t.Errorf("累计 = %d, want 3", buckets[1].Cumulative)
	}
}

// ==================== 排序 ====================

func TestSortListings_Desc(t *testing.T) {
	listings := []etsy.Listing{
		{ListingID: 1, NumFavorers: 10},
		{ListingID: 2, NumFavorers: 30},
		{ListingID: 3, NumFavorers: 20},
	}

	sorted := SortListings(listings, SortByFavorites, SortDesc, testNow)
	want := []int64{2, 3, 1}
	for i, l := range sorted {
		if l.ListingID != want[i] {
			t.Errorf("sorted[%d].ListingID = %d, want %d", i, l.ListingID, want[i])
		}
	}

	// 入参不应被改动
	if listings[0].ListingID != 1 {
		t.Error("SortListings 不应修改入参切片")
	}
}

func TestSortListings_Stable(t *testing.T) {
	// 收藏数全相等，两个方向都必须保持输入顺序
	listings := []etsy.Listing{
		{ListingID: 1, NumFavorers: 5},
		{ListingID: 2, NumFavorers: 5},
		{ListingID: 3, NumFavorers: 5},
	}

	for _, dir := range []SortDirection{SortAsc, SortDesc} {
		sorted := SortListings(listings, SortByFavorites, dir, testNow)
		for i, l := range sorted {
			if l.ListingID != int64(i+1) {
				t.Errorf("方向 %s: 相等键应保持输入顺序, got %v", dir, sorted)
				break
			}
		}
	}
}

func TestSortListings_ByAge(t *testing.T) {
	listings := []etsy.Listing{
		{ListingID: 1, OriginalCreationTimestamp: daysAgo(10)},
		{ListingID: 2, OriginalCreationTimestamp: daysAgo(100)},
		{ListingID: 3, OriginalCreationTimestamp: daysAgo(50)},
	}

	// 年龄升序 = 最新的在前
	sorted := SortListings(listings, SortByAge, SortAsc, testNow)
	want := []int64{1, 3, 2}
	for i, l := range sorted {
		if l.ListingID != want[i] {
			t.Errorf("按年龄升序 sorted[%d].ListingID = %d, want %d", i, l.ListingID, want[i])
		}
	}
}

func TestSortListings_SameDayIsTie(t *testing.T) {
	// 同一天内相差几小时的商品年龄相等，必须保持输入顺序
	base := testNow.Add(-10 * 24 * time.Hour)
	listings := []etsy.Listing{
		{ListingID: 1, OriginalCreationTimestamp: base.Unix()},
		{ListingID: 2, OriginalCreationTimestamp: base.Add(2 * time.Hour).Unix()},
		{ListingID: 3, OriginalCreationTimestamp: base.Add(5 * time.Hour).Unix()},
	}

	for _, dir := range []SortDirection{SortAsc, SortDesc} {
		sorted := SortListings(listings, SortByAge, dir, testNow)
		for i, l := range sorted {
			if l.ListingID != int64(i+1) {
				t.Errorf("方向 %s: 年龄相等应保持输入顺序, got %v", dir, sorted)
				break
			}
		}
	}
}

// ==================== 导出 ====================

func TestListingsCSV(t *testing.T) {
	listings := []etsy.Listing{
		{Title: "Necklace", NumFavorers: 12, Views: 340, Quantity: 3, ListingType: "physical",
			OriginalCreationTimestamp: daysAgo(7)},
	}

	csv := ListingsCSV(listings, testNow)
	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("行数 = %d, want 2", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Title\t") {
		t.Errorf("缺少表头: %q", lines[0])
	}
	if lines[1] != "Necklace\t12\t340\t7\t3\tphysical" {
		t.Errorf("数据行 = %q", lines[1])
	}
}
