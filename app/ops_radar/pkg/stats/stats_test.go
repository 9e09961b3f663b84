package stats

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/model"
)

func day(n int) time.Time {
	return time.Date(2024, 3, n, 0, 0, 0, 0, time.UTC)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRevenueByDate_TwoDays(t *testing.T) {
	orders := []model.OrderRecord{
		{Date: day(2), OrderValue: 700},
		{Date: day(1), OrderValue: 400},
		{Date: day(1), OrderValue: 600},
		{Date: day(2), OrderValue: 500},
	}

	got := RevenueByDate(orders)
	if len(got) != 2 {
		t.Fatalf("RevenueByDate() len = %d, want 2", len(got))
	}
	if !got[0].Date.Equal(day(1)) || got[0].Revenue != 1000 {
		t.Errorf("RevenueByDate()[0] = %+v, want {day1 1000}", got[0])
	}
	if !got[1].Date.Equal(day(2)) || got[1].Revenue != 1200 {
		t.Errorf("RevenueByDate()[1] = %+v, want {day2 1200}", got[1])
	}
	if got[0].MovingAverage != nil || got[1].MovingAverage != nil {
		t.Errorf("moving average should be absent below the window")
	}
}

func TestRevenueByDate_MovingAverage(t *testing.T) {
	var orders []model.OrderRecord
	for i := 1; i <= 8; i++ {
		orders = append(orders, model.OrderRecord{Date: day(i), OrderValue: float64(i * 10)})
	}
	got := RevenueByDate(orders)
	if got[5].MovingAverage != nil {
		t.Fatalf("point 6 moving average = %v, want nil", *got[5].MovingAverage)
	}
	if got[6].MovingAverage == nil || !almostEqual(*got[6].MovingAverage, 40) {
		t.Fatalf("point 7 moving average = %v, want 40", got[6].MovingAverage)
	}
	if !almostEqual(*got[7].MovingAverage, 50) {
		t.Fatalf("point 8 moving average = %v, want 50", *got[7].MovingAverage)
	}
}

func TestGroupReductions_Empty(t *testing.T) {
	if got := RevenueByDate(nil); got == nil || len(got) != 0 {
		t.Errorf("RevenueByDate(nil) = %v, want empty slice", got)
	}
	if got := CustomerSegments(nil); len(got) != 0 {
		t.Errorf("CustomerSegments(nil) = %v", got)
	}
	if got := InventoryTurnover(nil); len(got) != 0 {
		t.Errorf("InventoryTurnover(nil) = %v", got)
	}
	if got := DeliveryPerformance(nil); len(got) != 0 {
		t.Errorf("DeliveryPerformance(nil) = %v", got)
	}
}

func TestCustomerSegments(t *testing.T) {
	orders := []model.OrderRecord{
		{CustomerType: "VIP", OrderValue: 300, SatisfactionScore: 5},
		{CustomerType: "Regular", OrderValue: 100, SatisfactionScore: 4},
		{CustomerType: "Regular", OrderValue: 50, SatisfactionScore: 3},
		{CustomerType: "Regular", OrderValue: 50.005, SatisfactionScore: 4},
	}
	got := CustomerSegments(orders)
	if len(got) != 2 {
		t.Fatalf("CustomerSegments() len = %d, want 2", len(got))
	}
	reg := got[0]
	if reg.CustomerType != "Regular" || reg.OrderCount != 3 {
		t.Fatalf("CustomerSegments()[0] = %+v", reg)
	}
	if reg.TotalRevenue != 200.01 && reg.TotalRevenue != 200 {
		t.Errorf("Regular total = %v", reg.TotalRevenue)
	}
	if reg.AvgOrderValue != 66.67 {
		t.Errorf("Regular avg = %v, want 66.67", reg.AvgOrderValue)
	}
	if reg.AvgSatisfaction != 3.67 {
		t.Errorf("Regular satisfaction = %v, want 3.67", reg.AvgSatisfaction)
	}
	if got[1].CustomerType != "VIP" || got[1].TotalRevenue != 300 {
		t.Errorf("CustomerSegments()[1] = %+v", got[1])
	}
}

func TestRegionalPerformance(t *testing.T) {
	orders := []model.OrderRecord{
		{Region: "West", OrderValue: 100, SatisfactionScore: 4},
		{Region: "East", OrderValue: 200, SatisfactionScore: 5},
		{Region: "West", OrderValue: 300, SatisfactionScore: 2},
	}
	got := RegionalPerformance(orders)
	if len(got) != 2 || got[0].Region != "East" || got[1].Region != "West" {
		t.Fatalf("RegionalPerformance() = %+v", got)
	}
	west := got[1]
	if west.TotalRevenue != 400 || west.AvgOrderValue != 200 || west.OrderCount != 2 || west.Satisfaction != 3 {
		t.Errorf("West = %+v", west)
	}
}

func TestRevenueByCategoryAndPayment(t *testing.T) {
	orders := []model.OrderRecord{
		{Category: "Grocery", PaymentMethod: "PayPal", OrderValue: 10},
		{Category: "Electronics", PaymentMethod: "PayPal", OrderValue: 90},
		{Category: "Grocery", PaymentMethod: "Credit Card", OrderValue: 15},
	}
	cats := RevenueByCategory(orders)
	if len(cats) != 2 || cats[0].Key != "Electronics" || cats[1].Revenue != 25 {
		t.Errorf("RevenueByCategory() = %+v", cats)
	}
	pay := RevenueByPaymentMethod(orders)
	if len(pay) != 2 || pay[0].Key != "Credit Card" || pay[1].Revenue != 100 {
		t.Errorf("RevenueByPaymentMethod() = %+v", pay)
	}
}

func TestInventoryTurnover(t *testing.T) {
	inv := []model.InventoryRecord{
		{Category: "Grocery", TurnoverRate: 0.2, StockLevel: 10, StorageCost: 1.5},
		{Category: "Grocery", TurnoverRate: 0.4, StockLevel: 30, StorageCost: 2.5},
		{Category: "Clothing", TurnoverRate: 0.7, StockLevel: 100, StorageCost: 4},
	}
	got := InventoryTurnover(inv)
	if len(got) != 2 {
		t.Fatalf("InventoryTurnover() len = %d", len(got))
	}
	g := got[1]
	if g.Category != "Grocery" || g.AvgTurnoverRate != 0.3 || g.AvgStockLevel != 20 || g.TotalStorageCost != 4 {
		t.Errorf("Grocery = %+v", g)
	}
}

func TestStockTrends(t *testing.T) {
	inv := []model.InventoryRecord{
		{Date: day(2), Category: "Grocery", StockLevel: 10},
		{Date: day(1), Category: "Grocery", StockLevel: 20},
		{Date: day(1), Category: "Grocery", StockLevel: 40},
		{Date: day(1), Category: "Clothing", StockLevel: 5},
	}
	got := StockTrends(inv)
	if len(got) != 3 {
		t.Fatalf("StockTrends() len = %d, want 3", len(got))
	}
	if got[0].Category != "Clothing" || !got[0].Date.Equal(day(1)) {
		t.Errorf("StockTrends()[0] = %+v", got[0])
	}
	if got[1].AvgStockLevel != 30 {
		t.Errorf("StockTrends()[1] = %+v, want avg 30", got[1])
	}
	if !got[2].Date.Equal(day(2)) {
		t.Errorf("StockTrends()[2] = %+v", got[2])
	}
}

func TestDeliveryPerformance(t *testing.T) {
	deliveries := []model.DeliveryRecord{
		{Region: "North", Driver: "Driver A", OnTime: true, DeliveryTimeActual: 20, FuelCost: 5},
		{Region: "North", Driver: "Driver B", OnTime: false, DeliveryTimeActual: 30, FuelCost: 7},
		{Region: "South", Driver: "Driver A", OnTime: true, DeliveryTimeActual: 10, FuelCost: 3},
	}
	got := DeliveryPerformance(deliveries)
	if len(got) != 2 {
		t.Fatalf("DeliveryPerformance() len = %d", len(got))
	}
	north := got[0]
	if north.Key != "North" || north.OnTimeRate != 0.5 || north.AvgDeliveryTime != 25 || north.AvgFuelCost != 6 || north.OnTimePercentage != 50 {
		t.Errorf("North = %+v", north)
	}

	drivers := DriverPerformance(deliveries)
	if len(drivers) != 2 || drivers[0].Key != "Driver A" || drivers[0].OnTimeRate != 1 || drivers[0].Deliveries != 2 {
		t.Errorf("DriverPerformance() = %+v", drivers)
	}
}

func TestDeliveryTimeTrend(t *testing.T) {
	deliveries := []model.DeliveryRecord{
		{Date: day(1), DeliveryTimeActual: 20},
		{Date: day(1), DeliveryTimeActual: 30},
		{Date: day(2), DeliveryTimeActual: 12},
	}
	got := DeliveryTimeTrend(deliveries)
	if len(got) != 2 || got[0].Value != 25 || got[1].Value != 12 {
		t.Errorf("DeliveryTimeTrend() = %+v", got)
	}
}

func TestOnTimeRate(t *testing.T) {
	if _, err := OnTimeRate(nil); !errors.Is(err, model.ErrEmptyInput) {
		t.Fatalf("OnTimeRate(nil) error = %v, want ErrEmptyInput", err)
	}
	rate, err := OnTimeRate([]model.DeliveryRecord{{OnTime: true}, {OnTime: false}, {OnTime: true}, {OnTime: true}})
	if err != nil || rate != 0.75 {
		t.Fatalf("OnTimeRate() = %v, %v, want 0.75", rate, err)
	}
}

func TestMeanAndGrowth(t *testing.T) {
	if _, err := Mean(nil); !errors.Is(err, model.ErrEmptyInput) {
		t.Errorf("Mean(nil) error = %v", err)
	}
	if m, _ := Mean([]float64{1, 2, 3}); m != 2 {
		t.Errorf("Mean() = %v, want 2", m)
	}
	if _, err := GrowthPercent(10, 0); !errors.Is(err, model.ErrDivisionByZero) {
		t.Errorf("GrowthPercent(10, 0) error = %v", err)
	}
	if g, _ := GrowthPercent(1200, 1000); !almostEqual(g, 20) {
		t.Errorf("GrowthPercent(1200, 1000) = %v, want 20", g)
	}
}

func TestWeekOverWeek(t *testing.T) {
	if _, _, err := WeekOverWeek(nil); !errors.Is(err, model.ErrEmptyInput) {
		t.Fatalf("WeekOverWeek(nil) error = %v", err)
	}

	var daily []DailyRevenue
	for i := 1; i <= 14; i++ {
		rev := 100.0
		if i > 7 {
			rev = 200
		}
		daily = append(daily, DailyRevenue{Date: day(i), Revenue: rev})
	}
	recent, previous, err := WeekOverWeek(daily)
	if err != nil || recent != 200 || previous != 100 {
		t.Fatalf("WeekOverWeek() = %v, %v, %v", recent, previous, err)
	}

	short := []DailyRevenue{{Date: day(1), Revenue: 1000}, {Date: day(2), Revenue: 1200}}
	recent, previous, _ = WeekOverWeek(short)
	if recent != 1100 || previous != 1100 {
		t.Fatalf("WeekOverWeek(short) = %v, %v, want 1100, 1100", recent, previous)
	}
}
