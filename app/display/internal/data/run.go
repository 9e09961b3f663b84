package data

import (
	"context"
	"errors"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/ops_radar/app/display/internal/biz"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/engine"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/storage"
)

type runRepo struct {
	data *Data
	log  *log.Helper
}

func NewRunRepo(data *Data, logger log.Logger) biz.RunRepo {
	return &runRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *runRepo) ListRuns(ctx context.Context, limit int) ([]*storage.RunRecord, error) {
	if r.data.store == nil {
		return nil, biz.ErrArchiveDisabled
	}
	return r.data.store.List(ctx, limit)
}

func (r *runRepo) GetRun(ctx context.Context, id string) (*engine.Snapshot, error) {
	if r.data.store == nil {
		return nil, biz.ErrArchiveDisabled
	}
	snap, err := r.data.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, kerrors.NotFound("RUN_NOT_FOUND", "run not found")
		}
		r.log.Errorf("get run %s: %v", id, err)
		return nil, err
	}
	return snap, nil
}
