// Package stats 对生成的订单、库存、配送表做纯函数聚合。
package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/model"
)

// MovingAverageWindow 日营收滑动平均窗口
const MovingAverageWindow = 7

// DailyRevenue 每日营收
type DailyRevenue struct {
	Date          time.Time `json:"date"`
	Revenue       float64   `json:"revenue"`
	MovingAverage *float64  `json:"moving_average"`
}

// GroupTotal 分组营收合计
type GroupTotal struct {
	Key     string  `json:"key"`
	Revenue float64 `json:"revenue"`
}

// SegmentStats 客户分层统计
type SegmentStats struct {
	CustomerType    string  `json:"customer_type"`
	AvgOrderValue   float64 `json:"avg_order_value"`
	TotalRevenue    float64 `json:"total_revenue"`
	OrderCount      int     `json:"order_count"`
	AvgSatisfaction float64 `json:"avg_satisfaction"`
}

// RegionStats 地区表现
type RegionStats struct {
	Region        string  `json:"region"`
	TotalRevenue  float64 `json:"total_revenue"`
	AvgOrderValue float64 `json:"avg_order_value"`
	OrderCount    int     `json:"order_count"`
	Satisfaction  float64 `json:"satisfaction"`
}

// CategoryTurnover 品类库存周转
type CategoryTurnover struct {
	Category         string  `json:"category"`
	AvgTurnoverRate  float64 `json:"avg_turnover_rate"`
	AvgStockLevel    float64 `json:"avg_stock_level"`
	TotalStorageCost float64 `json:"total_storage_cost"`
}

// StockTrendPoint 某日某品类的平均库存
type StockTrendPoint struct {
	Date          time.Time `json:"date"`
	Category      string    `json:"category"`
	AvgStockLevel float64   `json:"avg_stock_level"`
}

// DeliveryStats 按地区或司机分组的配送表现
type DeliveryStats struct {
	Key              string  `json:"key"`
	OnTimeRate       float64 `json:"on_time_rate"`
	AvgDeliveryTime  float64 `json:"avg_delivery_time"`
	AvgFuelCost      float64 `json:"avg_fuel_cost"`
	OnTimePercentage float64 `json:"on_time_percentage"`
	Deliveries       int     `json:"deliveries"`
}

// DailyValue 每日数值
type DailyValue struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// RevenueByDate 按日期汇总营收，按日期升序，附 7 日滑动平均
func RevenueByDate(orders []model.OrderRecord) []DailyRevenue {
	sums := map[time.Time]float64{}
	for _, o := range orders {
		sums[o.Date] += o.OrderValue
	}

	dates := sortedDates(sums)
	out := make([]DailyRevenue, 0, len(dates))
	for _, d := range dates {
		out = append(out, DailyRevenue{Date: d, Revenue: sums[d]})
	}
	for i := MovingAverageWindow - 1; i < len(out); i++ {
		total := 0.0
		for j := i - MovingAverageWindow + 1; j <= i; j++ {
			total += out[j].Revenue
		}
		avg := total / MovingAverageWindow
		out[i].MovingAverage = &avg
	}
	return out
}

// RevenueByCategory 按品类汇总营收
func RevenueByCategory(orders []model.OrderRecord) []GroupTotal {
	return sumBy(orders, func(o model.OrderRecord) string { return o.Category })
}

// RevenueByPaymentMethod 按支付方式汇总营收
func RevenueByPaymentMethod(orders []model.OrderRecord) []GroupTotal {
	return sumBy(orders, func(o model.OrderRecord) string { return o.PaymentMethod })
}

// CustomerSegments 按客户类型统计均值、合计、单数和满意度
func CustomerSegments(orders []model.OrderRecord) []SegmentStats {
	groups := groupOrders(orders, func(o model.OrderRecord) string { return o.CustomerType })
	out := make([]SegmentStats, 0, len(groups))
	for _, key := range sortedKeys(groups) {
		g := groups[key]
		out = append(out, SegmentStats{
			CustomerType:    key,
			AvgOrderValue:   round2(g.revenue / float64(g.count)),
			TotalRevenue:    round2(g.revenue),
			OrderCount:      g.count,
			AvgSatisfaction: round2(g.satisfaction / float64(g.count)),
		})
	}
	return out
}

// RegionalPerformance 按地区统计营收和满意度
func RegionalPerformance(orders []model.OrderRecord) []RegionStats {
	groups := groupOrders(orders, func(o model.OrderRecord) string { return o.Region })
	out := make([]RegionStats, 0, len(groups))
	for _, key := range sortedKeys(groups) {
		g := groups[key]
		out = append(out, RegionStats{
			Region:        key,
			TotalRevenue:  round2(g.revenue),
			AvgOrderValue: round2(g.revenue / float64(g.count)),
			OrderCount:    g.count,
			Satisfaction:  round2(g.satisfaction / float64(g.count)),
		})
	}
	return out
}

// InventoryTurnover 按品类统计周转率、库存和仓储成本
func InventoryTurnover(inventory []model.InventoryRecord) []CategoryTurnover {
	type acc struct {
		turnover, stock, cost float64
		n                     int
	}
	groups := map[string]*acc{}
	for _, inv := range inventory {
		a, ok := groups[inv.Category]
		if !ok {
			a = &acc{}
			groups[inv.Category] = a
		}
		a.turnover += inv.TurnoverRate
		a.stock += float64(inv.StockLevel)
		a.cost += inv.StorageCost
		a.n++
	}

	out := make([]CategoryTurnover, 0, len(groups))
	for _, key := range sortedKeys(groups) {
		a := groups[key]
		out = append(out, CategoryTurnover{
			Category:         key,
			AvgTurnoverRate:  round2(a.turnover / float64(a.n)),
			AvgStockLevel:    round2(a.stock / float64(a.n)),
			TotalStorageCost: round2(a.cost),
		})
	}
	return out
}

// StockTrends 每日每品类平均库存，按日期、品类排序
func StockTrends(inventory []model.InventoryRecord) []StockTrendPoint {
	type key struct {
		date     time.Time
		category string
	}
	sums := map[key]float64{}
	counts := map[key]int{}
	for _, inv := range inventory {
		k := key{inv.Date, inv.Category}
		sums[k] += float64(inv.StockLevel)
		counts[k]++
	}

	out := make([]StockTrendPoint, 0, len(sums))
	for k, s := range sums {
		out = append(out, StockTrendPoint{Date: k.date, Category: k.category, AvgStockLevel: s / float64(counts[k])})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// DeliveryPerformance 按地区统计准时率、平均时长和油费
func DeliveryPerformance(deliveries []model.DeliveryRecord) []DeliveryStats {
	return deliveryBy(deliveries, func(d model.DeliveryRecord) string { return d.Region })
}

// DriverPerformance 按司机统计准时率、平均时长和油费
func DriverPerformance(deliveries []model.DeliveryRecord) []DeliveryStats {
	return deliveryBy(deliveries, func(d model.DeliveryRecord) string { return d.Driver })
}

// DeliveryTimeTrend 每日平均实际配送时长
func DeliveryTimeTrend(deliveries []model.DeliveryRecord) []DailyValue {
	sums := map[time.Time]float64{}
	counts := map[time.Time]int{}
	for _, d := range deliveries {
		sums[d.Date] += d.DeliveryTimeActual
		counts[d.Date]++
	}
	out := make([]DailyValue, 0, len(sums))
	for _, d := range sortedDates(sums) {
		out = append(out, DailyValue{Date: d, Value: sums[d] / float64(counts[d])})
	}
	return out
}

// OnTimeRate 所有配送的准时比例
func OnTimeRate(deliveries []model.DeliveryRecord) (float64, error) {
	if len(deliveries) == 0 {
		return 0, fmt.Errorf("on-time rate: %w", model.ErrEmptyInput)
	}
	onTime := 0
	for _, d := range deliveries {
		if d.OnTime {
			onTime++
		}
	}
	return float64(onTime) / float64(len(deliveries)), nil
}

// Mean 算术平均，空输入返回 ErrEmptyInput
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("mean: %w", model.ErrEmptyInput)
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values)), nil
}

// GrowthPercent (recent-previous)/previous*100，基数为零返回 ErrDivisionByZero
func GrowthPercent(recent, previous float64) (float64, error) {
	if previous == 0 {
		return 0, fmt.Errorf("growth against zero base: %w", model.ErrDivisionByZero)
	}
	return (recent - previous) / previous * 100, nil
}

// WeekOverWeek 最近 7 个点与最早 7 个点的均值，不足 7 个点时取全部
func WeekOverWeek(daily []DailyRevenue) (recent, previous float64, err error) {
	if len(daily) == 0 {
		return 0, 0, fmt.Errorf("week over week: %w", model.ErrEmptyInput)
	}
	n := MovingAverageWindow
	if n > len(daily) {
		n = len(daily)
	}
	for _, d := range daily[len(daily)-n:] {
		recent += d.Revenue
	}
	for _, d := range daily[:n] {
		previous += d.Revenue
	}
	return recent / float64(n), previous / float64(n), nil
}

type orderAcc struct {
	revenue      float64
	satisfaction float64
	count        int
}

func groupOrders(orders []model.OrderRecord, key func(model.OrderRecord) string) map[string]*orderAcc {
	groups := map[string]*orderAcc{}
	for _, o := range orders {
		k := key(o)
		g, ok := groups[k]
		if !ok {
			g = &orderAcc{}
			groups[k] = g
		}
		g.revenue += o.OrderValue
		g.satisfaction += o.SatisfactionScore
		g.count++
	}
	return groups
}

func sumBy(orders []model.OrderRecord, key func(model.OrderRecord) string) []GroupTotal {
	groups := groupOrders(orders, key)
	out := make([]GroupTotal, 0, len(groups))
	for _, k := range sortedKeys(groups) {
		out = append(out, GroupTotal{Key: k, Revenue: groups[k].revenue})
	}
	return out
}

func deliveryBy(deliveries []model.DeliveryRecord, key func(model.DeliveryRecord) string) []DeliveryStats {
	type acc struct {
		onTime, hours, fuel float64
		n                  int
	}
	groups := map[string]*acc{}
	for _, d := range deliveries {
		k := key(d)
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
		}
		if d.OnTime {
			a.onTime++
		}
		a.hours += d.DeliveryTimeActual
		a.fuel += d.FuelCost
		a.n++
	}

	out := make([]DeliveryStats, 0, len(groups))
	for _, k := range sortedKeys(groups) {
		a := groups[k]
		rate := round2(a.onTime / float64(a.n))
		out = append(out, DeliveryStats{
			Key:              k,
			OnTimeRate:       rate,
			AvgDeliveryTime:  round2(a.hours / float64(a.n)),
			AvgFuelCost:      round2(a.fuel / float64(a.n)),
			OnTimePercentage: rate * 100,
			Deliveries:       a.n,
		})
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedDates[V any](m map[time.Time]V) []time.Time {
	dates := make([]time.Time, 0, len(m))
	for d := range m {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
