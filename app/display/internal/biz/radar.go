package biz

import (
	"context"
	"errors"
	"fmt"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/engine"
	dm "github.com/iWorld-y/ops_radar/app/ops_radar/pkg/model"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/storage"
)

const (
	// MaxDays 单次请求允许生成的最大天数
	MaxDays = 365
	// MaxRunsLimit 归档列表单次最多返回的条数
	MaxRunsLimit = storage.MaxListLimit
)

// ErrArchiveDisabled 未配置归档库
var ErrArchiveDisabled = kerrors.ServiceUnavailable("ARCHIVE_DISABLED", "run archive is not configured")

// RunRepo 归档运行记录
type RunRepo interface {
	ListRuns(ctx context.Context, limit int) ([]*storage.RunRecord, error)
	GetRun(ctx context.Context, id string) (*engine.Snapshot, error)
}

// Window 请求的数据窗口，Seed 为 0 时由引擎决定
type Window struct {
	Days int
	Seed int64
}

// DatasetReply 生成的数据表及实际种子
type DatasetReply struct {
	Seed int64 `json:"seed"`
	*dm.Dataset
}

// InsightsReply 洞察列表
type InsightsReply struct {
	Seed     int64        `json:"seed"`
	Insights []dm.Insight `json:"insights"`
}

// AnalyticsReply 聚合表
type AnalyticsReply struct {
	Seed int64 `json:"seed"`
	*engine.Analytics
}

type RadarUseCase struct {
	engine *engine.Engine
	repo   RunRepo
	log    *log.Helper
}

func NewRadarUseCase(eng *engine.Engine, repo RunRepo, logger log.Logger) *RadarUseCase {
	return &RadarUseCase{engine: eng, repo: repo, log: log.NewHelper(logger)}
}

// DefaultDays 未指定天数时使用的窗口
func (uc *RadarUseCase) DefaultDays() int {
	return uc.engine.Config().Generator.Days
}

func (uc *RadarUseCase) Dataset(ctx context.Context, w Window) (*DatasetReply, error) {
	ds, seed, err := uc.generate(w)
	if err != nil {
		return nil, err
	}
	return &DatasetReply{Seed: seed, Dataset: ds}, nil
}

func (uc *RadarUseCase) Insights(ctx context.Context, w Window) (*InsightsReply, error) {
	ds, seed, err := uc.generate(w)
	if err != nil {
		return nil, err
	}
	return &InsightsReply{Seed: seed, Insights: uc.engine.Derive(ds)}, nil
}

func (uc *RadarUseCase) Analytics(ctx context.Context, w Window) (*AnalyticsReply, error) {
	ds, seed, err := uc.generate(w)
	if err != nil {
		return nil, err
	}
	return &AnalyticsReply{Seed: seed, Analytics: engine.BuildAnalytics(ds)}, nil
}

// Snapshot 按需运行一次，不分发给消费者
func (uc *RadarUseCase) Snapshot(ctx context.Context, w Window) (*engine.Snapshot, error) {
	if err := validate(w); err != nil {
		return nil, err
	}
	snap, err := uc.engine.Run(ctx, engine.RunOptions{Days: w.Days, Seed: w.Seed})
	if err != nil {
		return nil, mapError(err)
	}
	return snap, nil
}

func (uc *RadarUseCase) ListRuns(ctx context.Context, limit int) ([]*storage.RunRecord, error) {
	if limit <= 0 || limit > MaxRunsLimit {
		return nil, kerrors.BadRequest("INVALID_PARAMETER", fmt.Sprintf("limit must be between 1 and %d", MaxRunsLimit))
	}
	return uc.repo.ListRuns(ctx, limit)
}

func (uc *RadarUseCase) GetRun(ctx context.Context, id string) (*engine.Snapshot, error) {
	return uc.repo.GetRun(ctx, id)
}

func (uc *RadarUseCase) generate(w Window) (*dm.Dataset, int64, error) {
	if err := validate(w); err != nil {
		return nil, 0, err
	}
	ds, seed, err := uc.engine.Generate(w.Days, w.Seed)
	if err != nil {
		return nil, 0, mapError(err)
	}
	return ds, seed, nil
}

func validate(w Window) error {
	if w.Days < 0 || w.Days > MaxDays {
		return kerrors.BadRequest("INVALID_PARAMETER", "days must be between 0 and 365")
	}
	return nil
}

func mapError(err error) error {
	if errors.Is(err, dm.ErrInvalidParameter) {
		return kerrors.BadRequest("INVALID_PARAMETER", err.Error())
	}
	return err
}
