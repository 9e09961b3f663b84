package server

import (
	"context"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/engine"
)

type snapshotRunner interface {
	Run(ctx context.Context, opts engine.RunOptions) (*engine.Snapshot, error)
}

// Refresher 定时运行引擎并分发快照，实现 transport.Server
type Refresher struct {
	runner   snapshotRunner
	interval time.Duration
	days     int
	log      *log.Helper

	stop     chan struct{}
	stopOnce sync.Once

	mu   sync.Mutex
	done chan struct{}
}

func NewRefresher(eng *engine.Engine, logger log.Logger) *Refresher {
	cfg := eng.Config()
	return newRefresher(eng, cfg.Refresh.Interval, cfg.Generator.Days, logger)
}

func newRefresher(runner snapshotRunner, interval time.Duration, days int, logger log.Logger) *Refresher {
	return &Refresher{
		runner:   runner,
		interval: interval,
		days:     days,
		log:      log.NewHelper(logger),
		stop:     make(chan struct{}),
	}
}

// Start 立即运行一次，之后按间隔运行，直到 ctx 结束或 Stop。
// interval <= 0 时不运行，只等待停止信号。
func (r *Refresher) Start(ctx context.Context) error {
	done := make(chan struct{})
	r.mu.Lock()
	r.done = done
	r.mu.Unlock()
	defer close(done)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-r.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	if r.interval <= 0 {
		r.log.Info("refresh interval not set, refresher disabled")
		<-ctx.Done()
		return nil
	}

	r.log.Infof("refresher started, interval=%s days=%d", r.interval, r.days)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			r.log.Info("refresher stopped")
			return nil
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// Stop 发出停止信号并等待 Start 返回；先于 Start 调用时 Start 会立即返回
func (r *Refresher) Stop(ctx context.Context) error {
	r.stopOnce.Do(func() { close(r.stop) })

	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	snap, err := r.runner.Run(ctx, engine.RunOptions{Days: r.days, Publish: true})
	if err != nil {
		r.log.Errorf("refresh failed: %v", err)
		return
	}
	r.log.Debugf("refreshed snapshot %s with %d insights", snap.ID, len(snap.Insights))
}
