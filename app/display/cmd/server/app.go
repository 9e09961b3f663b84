package main

import (
	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/ops_radar/app/display/internal/server"
)

// newApp HTTP 服务和定时刷新同时作为 kratos 的 Server 管理生命周期
func newApp(logger log.Logger, hs *http.Server, r *server.Refresher) *kratos.App {
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(hs, r),
	)
}
