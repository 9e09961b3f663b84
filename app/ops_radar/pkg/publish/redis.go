// Package publish 把运行快照发布到 Redis 频道。
package publish

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/config"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/engine"
)

// Client 发布所需的 Redis 方法
type Client interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher 以 JSON 形式发布快照
type RedisPublisher struct {
	client  Client
	channel string
	closer  func() error
}

// NewRedisPublisher 连接 Redis，Addr 为空时返回 nil
func NewRedisPublisher(ctx context.Context, cfg config.RedisConfig) (*RedisPublisher, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	p := NewWithClient(rdb, cfg.Channel)
	p.closer = rdb.Close
	return p, nil
}

// NewWithClient 使用已有客户端
func NewWithClient(client Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

// Name 实现 engine.Sink
func (p *RedisPublisher) Name() string {
	return "redis"
}

// Handle 实现 engine.Sink
func (p *RedisPublisher) Handle(ctx context.Context, snap *engine.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.channel, err)
	}
	return nil
}

// Close 关闭连接
func (p *RedisPublisher) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer()
}
