package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/config"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/generator"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/insight"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/logger"
	dm "github.com/iWorld-y/ops_radar/app/ops_radar/pkg/model"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/narrator"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/stats"
)

// Snapshot 一次运行的结果
type Snapshot struct {
	ID          string              `json:"id"`
	GeneratedAt time.Time           `json:"generated_at"`
	Days        int                 `json:"days"`
	Seed        int64               `json:"seed"`
	KPIs        stats.KPIs          `json:"kpis"`
	Forecast    stats.Forecast      `json:"forecast"`
	Highlights  stats.Highlights    `json:"highlights"`
	Insights    []dm.Insight        `json:"insights"`
	Summary     *narrator.Narrative `json:"summary,omitempty"`
	Dataset     *dm.Dataset         `json:"-"`
}

// Sink 快照的下游消费者，失败只记录日志
type Sink interface {
	Name() string
	Handle(ctx context.Context, snap *Snapshot) error
}

// Narrator 摘要生成接口
type Narrator interface {
	Narrate(ctx context.Context, in narrator.Input) (*narrator.Narrative, error)
}

// Engine 核心处理引擎
type Engine struct {
	cfg      *config.Config
	narrator Narrator
	sinks    []Sink
	metrics  *Metrics
	now      func() time.Time
}

// Option 引擎选项
type Option func(*Engine)

// WithNarrator 指定摘要生成器
func WithNarrator(n Narrator) Option {
	return func(e *Engine) { e.narrator = n }
}

// WithSink 追加快照消费者
func WithSink(s Sink) Option {
	return func(e *Engine) {
		if s != nil {
			e.sinks = append(e.sinks, s)
		}
	}
}

// WithMetrics 指定指标收集器
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock 指定时钟
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine 创建引擎实例，配置了 LLM 且未指定 Narrator 时自动初始化
func NewEngine(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	e := &Engine{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}

	if e.narrator == nil && cfg.LLM.Enabled() {
		n, err := narrator.New(context.Background(), cfg.LLM, cfg.Concurrency)
		if err != nil {
			return nil, err
		}
		e.narrator = n
	}
	return e, nil
}

// AddSink 运行前追加消费者，不可与 Run 并发调用
func (e *Engine) AddSink(s Sink) {
	if s != nil {
		e.sinks = append(e.sinks, s)
	}
}

// RunOptions 运行选项，Seed 为 0 时使用配置中的种子或当前时间
type RunOptions struct {
	Days int
	Seed int64
	// Publish 为 true 时把快照分发给所有消费者
	Publish bool
}

// Run 执行一次生成、统计、洞察、摘要，并分发给所有消费者
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*Snapshot, error) {
	start := time.Now()
	ds, seed, err := e.Generate(opts.Days, opts.Seed)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		ID:          uuid.NewString(),
		GeneratedAt: e.now(),
		Days:        opts.Days,
		Seed:        seed,
		KPIs:        stats.BuildKPIs(ds),
		Forecast:    stats.BuildForecast(ds.Orders),
		Highlights:  stats.BuildHighlights(ds, e.highlightThresholds()),
		Insights:    e.Derive(ds),
		Dataset:     ds,
	}
	logger.Log.Infof("运行 [%s] 完成: %d 天, seed=%d, %d 条订单, %d 条洞察",
		snap.ID, opts.Days, seed, len(ds.Orders), len(snap.Insights))

	if e.narrator != nil {
		summary, err := e.narrator.Narrate(ctx, narrator.Input{
			Days:     opts.Days,
			KPIs:     snap.KPIs,
			Forecast: snap.Forecast,
			Insights: snap.Insights,
		})
		if err != nil {
			logger.Log.Errorf("生成摘要失败 [%s]: %v", snap.ID, err)
		} else {
			snap.Summary = summary
		}
	}

	e.metrics.observe(snap, time.Since(start))

	if !opts.Publish {
		return snap, nil
	}
	for _, s := range e.sinks {
		if err := s.Handle(ctx, snap); err != nil {
			logger.Log.WithField("sink", s.Name()).Errorf("分发快照失败 [%s]: %v", snap.ID, err)
			e.metrics.sinkFailed(s.Name())
		}
	}
	return snap, nil
}

// Generate 只生成数据表，返回实际使用的种子
func (e *Engine) Generate(days int, seed int64) (*dm.Dataset, int64, error) {
	seed = e.resolveSeed(seed)
	ds, err := generator.NewSeeded(seed, e.now).Generate(days)
	if err != nil {
		return nil, seed, fmt.Errorf("generate dataset: %w", err)
	}
	return ds, seed, nil
}

// Derive 按配置阈值生成洞察
func (e *Engine) Derive(ds *dm.Dataset) []dm.Insight {
	return insight.Derive(ds.Orders, ds.Inventory, ds.Deliveries,
		insight.WithClock(e.now),
		insight.WithThresholds(e.cfg.Insight),
	)
}

// Config 引擎配置
func (e *Engine) Config() *config.Config {
	return e.cfg
}

func (e *Engine) highlightThresholds() stats.HighlightThresholds {
	t := stats.DefaultHighlightThresholds()
	t.LowStockLevel = e.cfg.Insight.LowStockLevel
	t.HighTurnoverRate = e.cfg.Insight.HighTurnover
	return t
}

func (e *Engine) resolveSeed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	if e.cfg.Generator.Seed != 0 {
		return e.cfg.Generator.Seed
	}
	return time.Now().UnixNano()
}
