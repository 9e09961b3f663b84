package server

import (
	"github.com/google/wire"

	"github.com/iWorld-y/ops_radar/app/display/internal/biz"
	"github.com/iWorld-y/ops_radar/app/display/internal/data"
	"github.com/iWorld-y/ops_radar/app/display/internal/service"
)

// ProviderSet 是展示服务的依赖注入 Provider 集合
var ProviderSet = wire.NewSet(
	// Server providers
	NewHTTPServer,
	NewRefresher,
	NewHub,
	NewRegistry,
	NewEngineMetrics,
	NewRadarEngine,

	// Data providers
	data.NewData,
	data.NewRunRepo,

	// UseCase providers
	biz.NewRadarUseCase,

	// Service providers
	service.NewRadarService,
)
