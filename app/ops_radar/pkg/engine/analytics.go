package engine

import (
	dm "github.com/iWorld-y/ops_radar/app/ops_radar/pkg/model"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/stats"
)

// Analytics 全部聚合表
type Analytics struct {
	RevenueByDate          []stats.DailyRevenue     `json:"revenue_by_date"`
	RevenueByCategory      []stats.GroupTotal       `json:"revenue_by_category"`
	RevenueByPaymentMethod []stats.GroupTotal       `json:"revenue_by_payment_method"`
	CustomerSegments       []stats.SegmentStats     `json:"customer_segments"`
	RegionalPerformance    []stats.RegionStats      `json:"regional_performance"`
	InventoryTurnover      []stats.CategoryTurnover `json:"inventory_turnover"`
	StockTrends            []stats.StockTrendPoint  `json:"stock_trends"`
	DeliveryPerformance    []stats.DeliveryStats    `json:"delivery_performance"`
	DriverPerformance      []stats.DeliveryStats    `json:"driver_performance"`
	DeliveryTimeTrend      []stats.DailyValue       `json:"delivery_time_trend"`
}

// BuildAnalytics 计算所有聚合表
func BuildAnalytics(ds *dm.Dataset) *Analytics {
	return &Analytics{
		RevenueByDate:          stats.RevenueByDate(ds.Orders),
		RevenueByCategory:      stats.RevenueByCategory(ds.Orders),
		RevenueByPaymentMethod: stats.RevenueByPaymentMethod(ds.Orders),
		CustomerSegments:       stats.CustomerSegments(ds.Orders),
		RegionalPerformance:    stats.RegionalPerformance(ds.Orders),
		InventoryTurnover:      stats.InventoryTurnover(ds.Inventory),
		StockTrends:            stats.StockTrends(ds.Inventory),
		DeliveryPerformance:    stats.DeliveryPerformance(ds.Deliveries),
		DriverPerformance:      stats.DriverPerformance(ds.Deliveries),
		DeliveryTimeTrend:      stats.DeliveryTimeTrend(ds.Deliveries),
	}
}
