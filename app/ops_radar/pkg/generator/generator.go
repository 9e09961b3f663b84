package generator

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/model"
)

// 截断边界
const (
	MinOrderValue   = 10.0
	MaxOrderValue   = 500.0
	MinDeliveryTime = 4.0
	MaxDeliveryTime = 72.0
	MinSatisfaction = 1.0
	MaxSatisfaction = 5.0

	MinActualDeliveryTime = 2.0
	MaxActualDeliveryTime = 72.0
	PromisedDeliveryTime  = 24.0

	// InventoryDays 库存只覆盖窗口的最后几天
	InventoryDays = 7
	// DefaultDays 默认窗口天数
	DefaultDays = 30
)

// Generator 合成数据生成器，非并发安全，每次调用方自行创建
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

// New 使用指定随机源和时钟创建生成器
func New(src rand.Source, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{rng: rand.New(src), now: now}
}

// NewSeeded 创建可复现的生成器
func NewSeeded(seed int64, now func() time.Time) *Generator {
	return New(rand.NewSource(seed), now)
}

// Generate 生成 dayCount+1 天（含今天）的订单、库存和配送数据
func (g *Generator) Generate(dayCount int) (*model.Dataset, error) {
	if dayCount < 0 {
		return nil, fmt.Errorf("day count %d: %w", dayCount, model.ErrInvalidParameter)
	}

	dates := dateRange(g.now(), dayCount)
	ds := &model.Dataset{
		Orders:     g.orders(dates),
		Inventory:  g.inventory(dates),
		Deliveries: g.deliveries(dates),
	}
	return ds, nil
}

func (g *Generator) orders(dates []time.Time) []model.OrderRecord {
	orders := make([]model.OrderRecord, 0, len(dates)*50)
	for _, date := range dates {
		daily := g.intRange(20, 80)
		for i := 0; i < daily; i++ {
			orders = append(orders, model.OrderRecord{
				Date:              date,
				OrderID:           fmt.Sprintf("ORD%d", len(orders)+1000),
				CustomerType:      g.choose(customerTypes),
				Category:          g.choose(orderCategories),
				OrderValue:        clip(g.normal(150, 50), MinOrderValue, MaxOrderValue),
				Quantity:          g.intRange(1, 5),
				DeliveryTimeHours: clip(g.normal(24, 8), MinDeliveryTime, MaxDeliveryTime),
				SatisfactionScore: clip(g.normal(4.2, 0.8), MinSatisfaction, MaxSatisfaction),
				Region:            g.pick(Regions),
				PaymentMethod:     g.choose(paymentMethods),
			})
		}
	}
	return orders
}

func (g *Generator) inventory(dates []time.Time) []model.InventoryRecord {
	tail := dates
	if len(tail) > InventoryDays {
		tail = tail[len(tail)-InventoryDays:]
	}

	items := make([]model.InventoryRecord, 0, len(Products)*len(tail))
	for _, product := range Products {
		for _, date := range tail {
			items = append(items, model.InventoryRecord{
				Date:             date,
				Product:          product,
				StockLevel:       g.intRange(10, 200),
				TurnoverRate:     g.uniform(0.1, 0.8),
				ReorderFrequency: g.intRange(1, 30),
				StorageCost:      g.uniform(0.5, 5.0),
				Category:         CategoryOf(product),
			})
		}
	}
	return items
}

func (g *Generator) deliveries(dates []time.Time) []model.DeliveryRecord {
	deliveries := make([]model.DeliveryRecord, 0, len(dates)*40)
	for _, date := range dates {
		daily := g.intRange(15, 60)
		for i := 0; i < daily; i++ {
			actual := clip(g.normal(24, 6), MinActualDeliveryTime, MaxActualDeliveryTime)
			deliveries = append(deliveries, model.DeliveryRecord{
				Date:                 date,
				DeliveryID:           fmt.Sprintf("DEL%d", len(deliveries)+1000),
				Status:               g.choose(deliveryStatuses),
				DeliveryTimeActual:   actual,
				DeliveryTimePromised: PromisedDeliveryTime,
				Distance:             g.uniform(1, 50),
				FuelCost:             g.uniform(2, 20),
				Driver:               g.pick(Drivers),
				VehicleType:          g.choose(vehicleTypes),
				Region:               g.pick(Regions),
				OnTime:               actual <= PromisedDeliveryTime,
			})
		}
	}
	return deliveries
}

// intRange 半开区间 [min, max)
func (g *Generator) intRange(min, max int) int {
	return min + g.rng.Intn(max-min)
}

func (g *Generator) uniform(min, max float64) float64 {
	return min + g.rng.Float64()*(max-min)
}

func (g *Generator) normal(mean, stddev float64) float64 {
	return mean + g.rng.NormFloat64()*stddev
}

func (g *Generator) pick(values []string) string {
	return values[g.rng.Intn(len(values))]
}

// choose 按累计权重抽样，浮点误差落到最后一个取值
func (g *Generator) choose(w weighted) string {
	r := g.rng.Float64()
	acc := 0.0
	for i, p := range w.weights {
		acc += p
		if r < acc {
			return w.values[i]
		}
	}
	return w.values[len(w.values)-1]
}

func clip(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}

// dateRange 返回 [today-dayCount, today] 的自然日
func dateRange(now time.Time, dayCount int) []time.Time {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	dates := make([]time.Time, 0, dayCount+1)
	for i := dayCount; i >= 0; i-- {
		dates = append(dates, today.AddDate(0, 0, -i))
	}
	return dates
}
