package server

import (
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/ops_radar/app/display/internal/conf"
	"github.com/iWorld-y/ops_radar/app/display/internal/data"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/config"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/engine"
	orLogger "github.com/iWorld-y/ops_radar/app/ops_radar/pkg/logger"
)

// NewRadarEngine 初始化 ops_radar 引擎，归档、Redis 和 websocket 作为快照消费者
func NewRadarEngine(c *conf.Radar, d *data.Data, hub *Hub, metrics *engine.Metrics, logger log.Logger) (*engine.Engine, func(), error) {
	helper := log.NewHelper(logger)
	cfg := toConfig(c)

	if err := orLogger.InitLogger(cfg.Log.Level, cfg.Log.File, cfg.Log.Format); err != nil {
		helper.Errorf("Failed to init ops_radar logger: %v", err)
		_ = orLogger.InitLogger("info", "", "") // 降级处理
	}

	opts := []engine.Option{engine.WithMetrics(metrics), engine.WithSink(hub)}
	for _, s := range d.Sinks() {
		opts = append(opts, engine.WithSink(s))
	}
	eng, err := engine.NewEngine(cfg, opts...)
	if err != nil {
		helper.Errorf("Failed to init engine: %v", err)
		return nil, nil, err
	}

	cleanup := func() {
		helper.Info("Cleaning up ops_radar engine")
	}
	return eng, cleanup, nil
}

// toConfig 将 internal/conf.Radar 转换为 pkg/config.Config，缺省字段保留默认值
func toConfig(c *conf.Radar) *config.Config {
	cfg := config.Default()
	if c == nil {
		return cfg
	}
	if g := c.Generator; g != nil {
		if g.Days > 0 {
			cfg.Generator.Days = int(g.Days)
		}
		cfg.Generator.Seed = g.Seed
	}
	if in := c.Insight; in != nil {
		t := &cfg.Insight
		if in.GrowthPercent > 0 {
			t.GrowthPercent = in.GrowthPercent
		}
		if in.LowStockLevel > 0 {
			t.LowStockLevel = int(in.LowStockLevel)
		}
		if in.HighTurnover > 0 {
			t.HighTurnover = in.HighTurnover
		}
		if in.OnTimeGood > 0 {
			t.OnTimeGood = in.OnTimeGood
		}
		if in.OnTimeBad > 0 {
			t.OnTimeBad = in.OnTimeBad
		}
		if in.NameLimit > 0 {
			t.NameLimit = int(in.NameLimit)
		}
		if len(in.HolidayMonths) > 0 {
			t.HolidayMonths = t.HolidayMonths[:0:0]
			for _, m := range in.HolidayMonths {
				t.HolidayMonths = append(t.HolidayMonths, time.Month(m))
			}
		}
	}
	if l := c.Llm; l != nil {
		cfg.LLM = config.LLMConfig{BaseURL: l.BaseUrl, APIKey: l.ApiKey, Model: l.Model}
	}
	if l := c.Log; l != nil {
		cfg.Log = config.LogConfig{Level: l.Level, File: l.File, Format: l.Format}
	}
	if cc := c.Concurrency; cc != nil {
		cfg.Concurrency = config.ConcurrencyConfig{QPS: int(cc.Qps), RPM: int(cc.Rpm)}
	}
	if r := c.Refresh; r != nil && r.Interval != "" {
		if d, err := time.ParseDuration(r.Interval); err == nil {
			cfg.Refresh.Interval = d
		}
	}
	return cfg
}
