// Package insight 根据聚合统计结果按阈值规则生成定性洞察。
package insight

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/model"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/stats"
)

// 规则名称
const (
	RuleRevenue   = "revenue_trend"
	RuleLowStock  = "low_stock"
	RuleTurnover  = "high_turnover"
	RuleDelivery  = "delivery_performance"
	RuleSeasonal  = "seasonal"
	projectedDays = 30
)

// Thresholds 规则阈值
type Thresholds struct {
	GrowthPercent float64      `yaml:"growth_percent"`
	LowStockLevel int          `yaml:"low_stock_level"`
	HighTurnover  float64      `yaml:"high_turnover"`
	OnTimeGood    float64      `yaml:"on_time_good"`
	OnTimeBad     float64      `yaml:"on_time_bad"`
	NameLimit     int          `yaml:"name_limit"`
	HolidayMonths []time.Month `yaml:"holiday_months"`
}

// DefaultThresholds 默认阈值
func DefaultThresholds() Thresholds {
	return Thresholds{
		GrowthPercent: 5,
		LowStockLevel: 50,
		HighTurnover:  0.6,
		OnTimeGood:    0.9,
		OnTimeBad:     0.8,
		NameLimit:     3,
		HolidayMonths: []time.Month{time.November, time.December},
	}
}

type options struct {
	now        func() time.Time
	thresholds Thresholds
}

// Option 配置 Derive
type Option func(*options)

// WithClock 指定当前时间来源，季节规则依赖它
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithThresholds 覆盖默认阈值
func WithThresholds(t Thresholds) Option {
	return func(o *options) {
		o.thresholds = t
	}
}

// Derive 依次执行营收、低库存、高周转、配送、季节五条规则。
// 任一规则的输入为空或不可计算时跳过该规则，不返回错误。
func Derive(orders []model.OrderRecord, inventory []model.InventoryRecord, deliveries []model.DeliveryRecord, opts ...Option) []model.Insight {
	o := options{now: time.Now, thresholds: DefaultThresholds()}
	for _, opt := range opts {
		opt(&o)
	}
	t := o.thresholds

	insights := make([]model.Insight, 0, 5)
	if in, ok := revenueTrend(orders, t); ok {
		insights = append(insights, in)
	}
	if in, ok := lowStock(inventory, t); ok {
		insights = append(insights, in)
	}
	if in, ok := highTurnover(inventory, t); ok {
		insights = append(insights, in)
	}
	if in, ok := deliveryPerformance(deliveries, t); ok {
		insights = append(insights, in)
	}
	if in, ok := seasonal(o.now(), t); ok {
		insights = append(insights, in)
	}
	return insights
}

func revenueTrend(orders []model.OrderRecord, t Thresholds) (model.Insight, bool) {
	recent, previous, err := stats.WeekOverWeek(stats.RevenueByDate(orders))
	if err != nil {
		return model.Insight{}, false
	}
	growth, err := stats.GrowthPercent(recent, previous)
	if err != nil {
		return model.Insight{}, false
	}

	switch {
	case growth > t.GrowthPercent:
		return model.Insight{
			Type:    model.InsightPositive,
			Title:   "Revenue Growth Trend",
			Message: fmt.Sprintf("Revenue has grown by %.1f%% compared to last week. Projected monthly increase: $%.0f", growth, recent*projectedDays),
			Icon:    "📈",
			Rule:    RuleRevenue,
		}, true
	case growth < -t.GrowthPercent:
		return model.Insight{
			Type:    model.InsightWarning,
			Title:   "Revenue Decline Alert",
			Message: fmt.Sprintf("Revenue has declined by %.1f%%. Consider promotional campaigns to boost sales.", math.Abs(growth)),
			Icon:    "⚠️",
			Rule:    RuleRevenue,
		}, true
	}
	return model.Insight{}, false
}

func lowStock(inventory []model.InventoryRecord, t Thresholds) (model.Insight, bool) {
	var products []string
	for _, inv := range stats.LatestInventory(inventory) {
		if inv.StockLevel < t.LowStockLevel {
			products = append(products, inv.Product)
		}
	}
	products = unique(products)
	if len(products) == 0 {
		return model.Insight{}, false
	}
	return model.Insight{
		Type:    model.InsightWarning,
		Title:   "Low Stock Alert",
		Message: fmt.Sprintf("%d products are running low on stock. Immediate reorder recommended for: %s", len(products), strings.Join(head(products, t.NameLimit), ", ")),
		Icon:    "📦",
		Rule:    RuleLowStock,
	}, true
}

func highTurnover(inventory []model.InventoryRecord, t Thresholds) (model.Insight, bool) {
	var products []string
	for _, inv := range inventory {
		if inv.TurnoverRate > t.HighTurnover {
			products = append(products, inv.Product)
		}
	}
	products = unique(products)
	if len(products) == 0 {
		return model.Insight{}, false
	}
	return model.Insight{
		Type:    model.InsightPositive,
		Title:   "High Demand Products",
		Message: fmt.Sprintf("Products with high turnover rates: %s. Consider increasing stock levels.", strings.Join(head(products, t.NameLimit), ", ")),
		Icon:    "🚀",
		Rule:    RuleTurnover,
	}, true
}

func deliveryPerformance(deliveries []model.DeliveryRecord, t Thresholds) (model.Insight, bool) {
	rate, err := stats.OnTimeRate(deliveries)
	if err != nil {
		return model.Insight{}, false
	}
	switch {
	case rate > t.OnTimeGood:
		return model.Insight{
			Type:    model.InsightPositive,
			Title:   "Excellent Delivery Performance",
			Message: fmt.Sprintf("On-time delivery rate is %.1f%%. Customer satisfaction is likely high.", rate*100),
			Icon:    "✅",
			Rule:    RuleDelivery,
		}, true
	case rate < t.OnTimeBad:
		return model.Insight{
			Type:    model.InsightWarning,
			Title:   "Delivery Performance Issue",
			Message: fmt.Sprintf("On-time delivery rate is %.1f%%. Route optimization recommended.", rate*100),
			Icon:    "🚚",
			Rule:    RuleDelivery,
		}, true
	}
	return model.Insight{}, false
}

func seasonal(now time.Time, t Thresholds) (model.Insight, bool) {
	for _, m := range t.HolidayMonths {
		if now.Month() == m {
			return model.Insight{
				Type:    model.InsightInfo,
				Title:   "Holiday Season Forecast",
				Message: "Expect 30-40% increase in orders during holiday season. Stock up on popular categories.",
				Icon:    "🎄",
				Rule:    RuleSeasonal,
			}, true
		}
	}
	return model.Insight{}, false
}

// unique 去重并保持首次出现顺序
func unique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func head(values []string, n int) []string {
	if n <= 0 || n >= len(values) {
		return values
	}
	return values[:n]
}
