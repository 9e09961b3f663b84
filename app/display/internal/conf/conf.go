package conf

type Bootstrap struct {
	Server *Server `json:"server"`
	Data   *Data   `json:"data"`
	Radar  *Radar  `json:"radar"`
}

type Server struct {
	Http *HTTP `json:"http"`
}

type HTTP struct {
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"`
}

type Data struct {
	Database *Database `json:"database"`
	Redis    *Redis    `json:"redis"`
}

// Database Driver 为空时不启用归档
type Database struct {
	Driver string `json:"driver"`
	Source string `json:"source"`
}

// Redis Addr 为空时不发布快照
type Redis struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	Db       int32  `json:"db"`
	Channel  string `json:"channel"`
}

type Radar struct {
	Generator   *Generator   `json:"generator"`
	Insight     *Insight     `json:"insight"`
	Llm         *LLM         `json:"llm"`
	Log         *Log         `json:"log"`
	Concurrency *Concurrency `json:"concurrency"`
	Refresh     *Refresh     `json:"refresh"`
}

type Generator struct {
	Days int32 `json:"days"`
	Seed int64 `json:"seed"`
}

// Insight 零值字段沿用默认阈值
type Insight struct {
	GrowthPercent float64 `json:"growth_percent"`
	LowStockLevel int32   `json:"low_stock_level"`
	HighTurnover  float64 `json:"high_turnover"`
	OnTimeGood    float64 `json:"on_time_good"`
	OnTimeBad     float64 `json:"on_time_bad"`
	NameLimit     int32   `json:"name_limit"`
	HolidayMonths []int32 `json:"holiday_months"`
}

type LLM struct {
	BaseUrl string `json:"base_url"`
	ApiKey  string `json:"api_key"`
	Model   string `json:"model"`
}

type Log struct {
	Level  string `json:"level"`
	File   string `json:"file"`
	Format string `json:"format"`
}

type Concurrency struct {
	Qps int32 `json:"qps"`
	Rpm int32 `json:"rpm"`
}

type Refresh struct {
	Interval string `json:"interval"`
}
