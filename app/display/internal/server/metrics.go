package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/engine"
)

// NewRegistry 服务专用的指标注册表
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func NewEngineMetrics(reg *prometheus.Registry) *engine.Metrics {
	return engine.NewMetrics(reg)
}
