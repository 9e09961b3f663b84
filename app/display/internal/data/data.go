package data

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/ops_radar/app/display/internal/conf"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/config"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/engine"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/publish"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/storage"
)

// Data 归档库和 Redis 发布器，均为可选
type Data struct {
	store     *storage.Storage
	publisher *publish.RedisPublisher
}

func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	helper := log.NewHelper(logger)
	d := &Data{}

	if c != nil && c.Database != nil && c.Database.Driver != "" {
		store, err := storage.NewStorage(config.DBConfig{
			Driver: c.Database.Driver,
			Source: c.Database.Source,
		})
		if err != nil {
			return nil, nil, err
		}
		d.store = store
	} else {
		helper.Info("未配置数据库，运行归档已关闭")
	}

	if c != nil && c.Redis != nil && c.Redis.Addr != "" {
		channel := c.Redis.Channel
		if channel == "" {
			channel = config.Default().Redis.Channel
		}
		pub, err := publish.NewRedisPublisher(context.Background(), config.RedisConfig{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       int(c.Redis.Db),
			Channel:  channel,
		})
		if err != nil {
			// Redis 不可用时不阻止服务启动
			helper.Errorf("redis publisher disabled: %v", err)
		} else {
			d.publisher = pub
		}
	}

	cleanup := func() {
		helper.Info("closing the data resources")
		if d.store != nil {
			d.store.Close()
		}
		if d.publisher != nil {
			d.publisher.Close()
		}
	}
	return d, cleanup, nil
}

// Sinks 已启用的快照消费者
func (d *Data) Sinks() []engine.Sink {
	var sinks []engine.Sink
	if d.store != nil {
		sinks = append(sinks, d.store)
	}
	if d.publisher != nil {
		sinks = append(sinks, d.publisher)
	}
	return sinks
}
