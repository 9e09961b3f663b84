// Package storage 把运行快照归档到关系库，支持 postgres、mysql 和 sqlite。
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/config"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/engine"
)

const runsTable = "radar_runs"

const (
	defaultListLimit = 20
	// MaxListLimit List 单次返回的最大行数
	MaxListLimit = 100
)

// ErrNotFound 快照不存在
var ErrNotFound = errors.New("snapshot not found")

var runColumns = []string{
	"id", "generated_unix", "days", "seed", "insight_count",
	"total_revenue", "on_time_rate", "headline", "payload",
}

// RunRecord 归档列表中的一行
type RunRecord struct {
	ID           string    `json:"id"`
	GeneratedAt  time.Time `json:"generated_at"`
	Days         int       `json:"days"`
	Seed         int64     `json:"seed"`
	InsightCount int       `json:"insight_count"`
	TotalRevenue float64   `json:"total_revenue"`
	OnTimeRate   float64   `json:"on_time_rate"`
	Headline     string    `json:"headline,omitempty"`
}

// Storage 快照归档，同时作为引擎的 Sink
type Storage struct {
	db      *sql.DB
	dialect string
}

// NewStorage 打开数据库并建表
func NewStorage(cfg config.DBConfig) (*Storage, error) {
	d, err := dialectOf(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if d == dialect.SQLite {
		// 内存库每个连接各自独立
		db.SetMaxOpenConns(1)
	}

	s := &Storage{db: db, dialect: d}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close 关闭连接
func (s *Storage) Close() error {
	return s.db.Close()
}

// Name 实现 engine.Sink
func (s *Storage) Name() string {
	return "archive"
}

// Handle 实现 engine.Sink，保存快照
func (s *Storage) Handle(ctx context.Context, snap *engine.Snapshot) error {
	return s.Save(ctx, snap)
}

// Save 保存一次运行的快照，原始数据表不入库
func (s *Storage) Save(ctx context.Context, snap *engine.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	var headline string
	if snap.Summary != nil {
		headline = snap.Summary.Headline
	}

	query, args := entsql.Dialect(s.dialect).
		Insert(runsTable).
		Columns(runColumns...).
		Values(
			snap.ID, snap.GeneratedAt.Unix(), snap.Days, snap.Seed, len(snap.Insights),
			snap.KPIs.Revenue.Total, snap.KPIs.Delivery.OnTimeRate, headline, string(payload),
		).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert run %s: %w", snap.ID, err)
	}
	return nil
}

// List 按生成时间倒序返回最近 limit 次运行，limit 超过 MaxListLimit 时截断
func (s *Storage) List(ctx context.Context, limit int) ([]*RunRecord, error) {
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	b := entsql.Dialect(s.dialect)
	query, args := b.Select(runColumns[:len(runColumns)-1]...).
		From(b.Table(runsTable)).
		OrderBy(entsql.Desc("generated_unix"), entsql.Desc("id")).
		Limit(limit).
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	records := []*RunRecord{}
	for rows.Next() {
		var (
			r   RunRecord
			gen int64
		)
		if err := rows.Scan(&r.ID, &gen, &r.Days, &r.Seed, &r.InsightCount, &r.TotalRevenue, &r.OnTimeRate, &r.Headline); err != nil {
			return nil, err
		}
		r.GeneratedAt = time.Unix(gen, 0)
		records = append(records, &r)
	}
	return records, rows.Err()
}

// Get 读取完整快照，不包含原始数据表
func (s *Storage) Get(ctx context.Context, id string) (*engine.Snapshot, error) {
	b := entsql.Dialect(s.dialect)
	query, args := b.Select("payload").
		From(b.Table(runsTable)).
		Where(entsql.EQ("id", id)).
		Query()

	var payload string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
		}
		return nil, err
	}

	var snap engine.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("unmarshal run %s: %w", id, err)
	}
	return &snap, nil
}

func (s *Storage) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, createTableSQL(s.dialect))
	return err
}

func dialectOf(driver string) (string, error) {
	switch driver {
	case "postgres":
		return dialect.Postgres, nil
	case "mysql":
		return dialect.MySQL, nil
	case "sqlite":
		return dialect.SQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

func createTableSQL(d string) string {
	switch d {
	case dialect.MySQL:
		return `CREATE TABLE IF NOT EXISTS radar_runs (
			id VARCHAR(36) PRIMARY KEY,
			generated_unix BIGINT NOT NULL,
			days INT NOT NULL,
			seed BIGINT NOT NULL,
			insight_count INT NOT NULL,
			total_revenue DOUBLE NOT NULL,
			on_time_rate DOUBLE NOT NULL,
			headline TEXT NOT NULL,
			payload LONGTEXT NOT NULL
		)`
	case dialect.SQLite:
		return `CREATE TABLE IF NOT EXISTS radar_runs (
			id TEXT PRIMARY KEY,
			generated_unix INTEGER NOT NULL,
			days INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			insight_count INTEGER NOT NULL,
			total_revenue REAL NOT NULL,
			on_time_rate REAL NOT NULL,
			headline TEXT NOT NULL,
			payload TEXT NOT NULL
		)`
	default:
		return `CREATE TABLE IF NOT EXISTS radar_runs (
			id VARCHAR(36) PRIMARY KEY,
			generated_unix BIGINT NOT NULL,
			days INTEGER NOT NULL,
			seed BIGINT NOT NULL,
			insight_count INTEGER NOT NULL,
			total_revenue DOUBLE PRECISION NOT NULL,
			on_time_rate DOUBLE PRECISION NOT NULL,
			headline TEXT NOT NULL,
			payload TEXT NOT NULL
		)`
	}
}
