package model

import "time"

// 洞察级别
const (
	InsightPositive = "positive"
	InsightWarning  = "warning"
	InsightInfo     = "info"
)

// OrderRecord 订单记录
type OrderRecord struct {
	Date              time.Time `json:"date"`
	OrderID           string    `json:"order_id"`
	CustomerType      string    `json:"customer_type"`
	Category          string    `json:"category"`
	OrderValue        float64   `json:"order_value"`
	Quantity          int       `json:"quantity"`
	DeliveryTimeHours float64   `json:"delivery_time_hours"`
	SatisfactionScore float64   `json:"satisfaction_score"`
	Region            string    `json:"region"`
	PaymentMethod     string    `json:"payment_method"`
}

// InventoryRecord 库存记录
type InventoryRecord struct {
	Date             time.Time `json:"date"`
	Product          string    `json:"product"`
	StockLevel       int       `json:"stock_level"`
	TurnoverRate     float64   `json:"turnover_rate"`
	ReorderFrequency int       `json:"reorder_frequency"`
	StorageCost      float64   `json:"storage_cost"`
	Category         string    `json:"category"`
}

// DeliveryRecord 配送记录
type DeliveryRecord struct {
	Date                 time.Time `json:"date"`
	DeliveryID           string    `json:"delivery_id"`
	Status               string    `json:"status"`
	DeliveryTimeActual   float64   `json:"delivery_time_actual"`
	DeliveryTimePromised float64   `json:"delivery_time_promised"`
	Distance             float64   `json:"distance"`
	FuelCost             float64   `json:"fuel_cost"`
	Driver               string    `json:"driver"`
	VehicleType          string    `json:"vehicle_type"`
	Region               string    `json:"region"`
	OnTime               bool      `json:"on_time"`
}

// Dataset 一次生成的三张表
type Dataset struct {
	Orders     []OrderRecord     `json:"orders"`
	Inventory  []InventoryRecord `json:"inventory"`
	Deliveries []DeliveryRecord  `json:"deliveries"`
}

// Insight 洞察条目
type Insight struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Icon    string `json:"icon,omitempty"`
	Rule    string `json:"rule,omitempty"`
}
