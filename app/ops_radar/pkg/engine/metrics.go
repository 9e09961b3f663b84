package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 引擎运行指标
type Metrics struct {
	runs         prometheus.Counter
	insights     *prometheus.CounterVec
	runDuration  prometheus.Histogram
	onTimeRate   prometheus.Gauge
	revenue      prometheus.Gauge
	sinkFailures *prometheus.CounterVec
}

// NewMetrics 创建并注册指标
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ops_radar",
			Name:      "runs_total",
			Help:      "Number of completed engine runs.",
		}),
		insights: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ops_radar",
			Name:      "insights_total",
			Help:      "Insights emitted, by type.",
		}, []string{"type"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ops_radar",
			Name:      "run_duration_seconds",
			Help:      "Wall time of one engine run including the summary call.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}),
		onTimeRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ops_radar",
			Name:      "on_time_rate_percent",
			Help:      "On-time delivery percentage of the latest run.",
		}),
		revenue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ops_radar",
			Name:      "revenue_total",
			Help:      "Total order revenue of the latest run.",
		}),
		sinkFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ops_radar",
			Name:      "sink_failures_total",
			Help:      "Snapshot sink failures, by sink.",
		}, []string{"sink"}),
	}
	if reg != nil {
		reg.MustRegister(m.runs, m.insights, m.runDuration, m.onTimeRate, m.revenue, m.sinkFailures)
	}
	return m
}

func (m *Metrics) observe(snap *Snapshot, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.Inc()
	m.runDuration.Observe(elapsed.Seconds())
	for _, in := range snap.Insights {
		m.insights.WithLabelValues(in.Type).Inc()
	}
	m.onTimeRate.Set(snap.KPIs.Delivery.OnTimeRate)
	m.revenue.Set(snap.KPIs.Revenue.Total)
}

func (m *Metrics) sinkFailed(sink string) {
	if m == nil {
		return
	}
	m.sinkFailures.WithLabelValues(sink).Inc()
}
