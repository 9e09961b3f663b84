package service

import (
	"context"
	"fmt"
	"strconv"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/ops_radar/app/display/internal/biz"
)

type RadarService struct {
	uc  *biz.RadarUseCase
	log *log.Helper
}

func NewRadarService(uc *biz.RadarUseCase, logger log.Logger) *RadarService {
	return &RadarService{uc: uc, log: log.NewHelper(logger)}
}

// RegisterRoutes 注册 /api/v1 下的 JSON 接口
func (s *RadarService) RegisterRoutes(srv *http.Server) {
	r := srv.Route("/api/v1")
	r.GET("/dataset", s.Dataset)
	r.GET("/insights", s.Insights)
	r.GET("/analytics", s.Analytics)
	r.GET("/snapshot", s.Snapshot)
	r.GET("/runs", s.ListRuns)
	r.GET("/runs/{id}", s.GetRun)
}

func (s *RadarService) Dataset(ctx http.Context) error {
	return s.windowed(ctx, func(c context.Context, w biz.Window) (interface{}, error) {
		return s.uc.Dataset(c, w)
	})
}

func (s *RadarService) Insights(ctx http.Context) error {
	return s.windowed(ctx, func(c context.Context, w biz.Window) (interface{}, error) {
		return s.uc.Insights(c, w)
	})
}

func (s *RadarService) Analytics(ctx http.Context) error {
	return s.windowed(ctx, func(c context.Context, w biz.Window) (interface{}, error) {
		return s.uc.Analytics(c, w)
	})
}

func (s *RadarService) Snapshot(ctx http.Context) error {
	return s.windowed(ctx, func(c context.Context, w biz.Window) (interface{}, error) {
		return s.uc.Snapshot(c, w)
	})
}

func (s *RadarService) ListRuns(ctx http.Context) error {
	limit := 20
	if v := ctx.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > biz.MaxRunsLimit {
			return kerrors.BadRequest("INVALID_PARAMETER", fmt.Sprintf("limit must be an integer between 1 and %d", biz.MaxRunsLimit))
		}
		limit = n
	}
	h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
		runs, err := s.uc.ListRuns(c, limit)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"runs": runs}, nil
	})
	out, err := h(ctx, limit)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

func (s *RadarService) GetRun(ctx http.Context) error {
	id := ctx.Vars().Get("id")
	h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
		return s.uc.GetRun(c, id)
	})
	out, err := h(ctx, id)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

// windowed 解析 days/seed 参数并经过服务端中间件执行
func (s *RadarService) windowed(ctx http.Context, fn func(context.Context, biz.Window) (interface{}, error)) error {
	w, err := s.parseWindow(ctx)
	if err != nil {
		return err
	}
	h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
		return fn(c, req.(biz.Window))
	})
	out, err := h(ctx, w)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

func (s *RadarService) parseWindow(ctx http.Context) (biz.Window, error) {
	q := ctx.Query()
	w := biz.Window{Days: s.uc.DefaultDays()}
	if v := q.Get("days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return w, kerrors.BadRequest("INVALID_PARAMETER", "days must be an integer")
		}
		w.Days = days
	}
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return w, kerrors.BadRequest("INVALID_PARAMETER", "seed must be an integer")
		}
		w.Seed = seed
	}
	return w, nil
}
