package generator

// 品类
const (
	CategoryElectronics = "Electronics"
	CategoryGrocery     = "Grocery"
	CategoryClothing    = "Clothing"
	CategoryHomeGarden  = "Home & Garden"
	CategoryOther       = "Other"
)

// Products 固定的商品目录，库存表按此顺序生成
var Products = []string{
	"iPhone 15 Pro", "MacBook Pro", "Samsung Galaxy", "iPad Pro", "Dell XPS",
	"Organic Bananas", "Milk", "Bread", "Coffee", "Eggs",
	"Winter Jacket", "Sneakers", "Jeans", "T-Shirt", "Dress",
}

var productCategory = map[string]string{
	"iPhone 15 Pro":   CategoryElectronics,
	"MacBook Pro":     CategoryElectronics,
	"Samsung Galaxy":  CategoryElectronics,
	"iPad Pro":        CategoryElectronics,
	"Dell XPS":        CategoryElectronics,
	"Organic Bananas": CategoryGrocery,
	"Milk":            CategoryGrocery,
	"Bread":           CategoryGrocery,
	"Coffee":          CategoryGrocery,
	"Eggs":            CategoryGrocery,
	"Winter Jacket":   CategoryClothing,
	"Sneakers":        CategoryClothing,
	"Jeans":           CategoryClothing,
	"T-Shirt":         CategoryClothing,
	"Dress":           CategoryClothing,
}

// CategoryOf 返回商品所属品类，目录外的商品归为 Other
func CategoryOf(product string) string {
	if c, ok := productCategory[product]; ok {
		return c
	}
	return CategoryOther
}

// weighted 带权重的离散分布
type weighted struct {
	values  []string
	weights []float64
}

var (
	customerTypes = weighted{
		values:  []string{"Regular", "Premium", "VIP"},
		weights: []float64{0.7, 0.2, 0.1},
	}
	orderCategories = weighted{
		values:  []string{CategoryElectronics, CategoryGrocery, CategoryClothing, CategoryHomeGarden},
		weights: []float64{0.3, 0.4, 0.2, 0.1},
	}
	paymentMethods = weighted{
		values:  []string{"Credit Card", "PayPal", "Cash on Delivery"},
		weights: []float64{0.5, 0.3, 0.2},
	}
	deliveryStatuses = weighted{
		values:  []string{"Delivered", "In Transit", "Delayed", "Failed"},
		weights: []float64{0.8, 0.1, 0.08, 0.02},
	}
	vehicleTypes = weighted{
		values:  []string{"Van", "Truck", "Bike"},
		weights: []float64{0.6, 0.3, 0.1},
	}

	// Regions 地区，均匀抽样
	Regions = []string{"North", "South", "East", "West", "Central"}
	// Drivers 司机，均匀抽样
	Drivers = []string{"Driver A", "Driver B", "Driver C", "Driver D", "Driver E"}
)
