package stats

import (
	"errors"
	"time"

	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/model"
)

const (
	// AssumedUnitPrice 估算库存价值时的单价
	AssumedUnitPrice = 50.0
	// KPILowStockLevel KPI 面板的低库存阈值，比洞察规则更严格
	KPILowStockLevel = 30
	// ForecastDays 预测天数
	ForecastDays = 30
)

// RevenueKPI 营收指标
type RevenueKPI struct {
	Total        float64 `json:"total"`
	AvgOrder     float64 `json:"avg_order"`
	TotalOrders  int     `json:"total_orders"`
	Satisfaction float64 `json:"satisfaction"`
}

// InventoryKPI 库存指标
type InventoryKPI struct {
	TotalValue    float64 `json:"total_value"`
	LowStockCount int     `json:"low_stock_count"`
	TotalProducts int     `json:"total_products"`
}

// DeliveryKPI 配送指标
type DeliveryKPI struct {
	OnTimeRate      float64 `json:"on_time_rate"`
	AvgTime         float64 `json:"avg_time"`
	TotalDeliveries int     `json:"total_deliveries"`
}

// KPIs 关键指标面板
type KPIs struct {
	Revenue   RevenueKPI   `json:"revenue"`
	Inventory InventoryKPI `json:"inventory"`
	Delivery  DeliveryKPI  `json:"delivery"`
}

// Forecast 基于最近一周的 30 天预测
type Forecast struct {
	PredictedRevenue float64  `json:"predicted_revenue"`
	PredictedOrders  float64  `json:"predicted_orders"`
	GrowthRate       *float64 `json:"growth_rate"`
}

// Highlights 各分析页的结论性摘要
type Highlights struct {
	BestCategory      string     `json:"best_category,omitempty"`
	BestSalesDay      *time.Time `json:"best_sales_day,omitempty"`
	WeeklyGrowth      *float64   `json:"weekly_growth,omitempty"`
	VIPRevenueShare   *float64   `json:"vip_revenue_share,omitempty"`
	BestRegion        string     `json:"best_region,omitempty"`
	AvgSatisfaction   *float64   `json:"avg_satisfaction,omitempty"`
	InventoryHealth   string     `json:"inventory_health,omitempty"`
	RestockCount      int        `json:"restock_count"`
	HighDemandCount   int        `json:"high_demand_count"`
	AvgLatestTurnover *float64   `json:"avg_latest_turnover,omitempty"`
}

// BuildKPIs 计算关键指标，空表对应的指标保持零值
func BuildKPIs(ds *model.Dataset) KPIs {
	var k KPIs

	k.Revenue.TotalOrders = len(ds.Orders)
	if len(ds.Orders) > 0 {
		var satisfaction float64
		for _, o := range ds.Orders {
			k.Revenue.Total += o.OrderValue
			satisfaction += o.SatisfactionScore
		}
		k.Revenue.AvgOrder = k.Revenue.Total / float64(len(ds.Orders))
		k.Revenue.Satisfaction = satisfaction / float64(len(ds.Orders))
	}

	products := map[string]struct{}{}
	for _, inv := range ds.Inventory {
		k.Inventory.TotalValue += float64(inv.StockLevel) * AssumedUnitPrice
		if inv.StockLevel < KPILowStockLevel {
			k.Inventory.LowStockCount++
		}
		products[inv.Product] = struct{}{}
	}
	k.Inventory.TotalProducts = len(products)

	k.Delivery.TotalDeliveries = len(ds.Deliveries)
	if rate, err := OnTimeRate(ds.Deliveries); err == nil {
		k.Delivery.OnTimeRate = rate * 100
		var hours float64
		for _, d := range ds.Deliveries {
			hours += d.DeliveryTimeActual
		}
		k.Delivery.AvgTime = hours / float64(len(ds.Deliveries))
	}
	return k
}

// BuildForecast 以最近 7 天的日均营收和日均单量外推 30 天
func BuildForecast(orders []model.OrderRecord) Forecast {
	var f Forecast
	daily := RevenueByDate(orders)
	recent, previous, err := WeekOverWeek(daily)
	if err != nil {
		return f
	}
	f.PredictedRevenue = recent * ForecastDays

	counts := map[time.Time]int{}
	for _, o := range orders {
		counts[o.Date]++
	}
	n := MovingAverageWindow
	if n > len(daily) {
		n = len(daily)
	}
	var recentOrders int
	for _, d := range daily[len(daily)-n:] {
		recentOrders += counts[d.Date]
	}
	f.PredictedOrders = float64(recentOrders) / float64(n) * ForecastDays

	if growth, err := GrowthPercent(recent, previous); err == nil {
		f.GrowthRate = &growth
	}
	return f
}

// BuildHighlights 提取最佳品类、最佳销售日等结论
func BuildHighlights(ds *model.Dataset, thresholds HighlightThresholds) Highlights {
	var h Highlights

	var bestRevenue float64
	for i, c := range RevenueByCategory(ds.Orders) {
		if i == 0 || c.Revenue > bestRevenue {
			bestRevenue = c.Revenue
			h.BestCategory = c.Key
		}
	}

	daily := RevenueByDate(ds.Orders)
	var bestDay float64
	for i := range daily {
		if i == 0 || daily[i].Revenue > bestDay {
			bestDay = daily[i].Revenue
			day := daily[i].Date
			h.BestSalesDay = &day
		}
	}
	if recent, previous, err := WeekOverWeek(daily); err == nil {
		if growth, err := GrowthPercent(recent, previous); err == nil {
			h.WeeklyGrowth = &growth
		}
	}

	var total, vip, satisfaction float64
	for _, o := range ds.Orders {
		total += o.OrderValue
		satisfaction += o.SatisfactionScore
		if o.CustomerType == "VIP" {
			vip += o.OrderValue
		}
	}
	if total > 0 {
		share := vip / total * 100
		h.VIPRevenueShare = &share
	}
	if len(ds.Orders) > 0 {
		avg := satisfaction / float64(len(ds.Orders))
		h.AvgSatisfaction = &avg
	}

	var bestSatisfaction float64
	for i, r := range RegionalPerformance(ds.Orders) {
		if i == 0 || r.Satisfaction > bestSatisfaction {
			bestSatisfaction = r.Satisfaction
			h.BestRegion = r.Region
		}
	}

	latest := LatestInventory(ds.Inventory)
	turnovers := make([]float64, 0, len(latest))
	for _, inv := range latest {
		if inv.StockLevel < thresholds.LowStockLevel {
			h.RestockCount++
		}
		if inv.TurnoverRate > thresholds.HighTurnoverRate {
			h.HighDemandCount++
		}
		turnovers = append(turnovers, inv.TurnoverRate)
	}
	avgTurnover, err := Mean(turnovers)
	switch {
	case errors.Is(err, model.ErrEmptyInput):
	case avgTurnover > thresholds.HealthyTurnover:
		h.AvgLatestTurnover = &avgTurnover
		h.InventoryHealth = "Healthy"
	default:
		h.AvgLatestTurnover = &avgTurnover
		h.InventoryHealth = "Needs improvement"
	}
	return h
}

// HighlightThresholds 摘要使用的阈值
type HighlightThresholds struct {
	LowStockLevel    int
	HighTurnoverRate float64
	HealthyTurnover  float64
}

// DefaultHighlightThresholds 默认阈值
func DefaultHighlightThresholds() HighlightThresholds {
	return HighlightThresholds{
		LowStockLevel:    50,
		HighTurnoverRate: 0.6,
		HealthyTurnover:  0.5,
	}
}

// LatestInventory 返回最新日期的库存行
func LatestInventory(inventory []model.InventoryRecord) []model.InventoryRecord {
	var latest time.Time
	for _, inv := range inventory {
		if inv.Date.After(latest) {
			latest = inv.Date
		}
	}
	out := make([]model.InventoryRecord, 0, len(inventory))
	for _, inv := range inventory {
		if inv.Date.Equal(latest) {
			out = append(out, inv)
		}
	}
	return out
}
