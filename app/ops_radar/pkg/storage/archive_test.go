package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/config"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/engine"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/narrator"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(config.DBConfig{Driver: "sqlite", Name: ":memory:"})
	if err != nil {
		t.Fatalf("NewStorage() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func runAt(t *testing.T, at time.Time, seed int64) *engine.Snapshot {
	t.Helper()
	eng, err := engine.NewEngine(config.Default(), engine.WithClock(func() time.Time { return at }))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	snap, err := eng.Run(context.Background(), engine.RunOptions{Days: 7, Seed: seed})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return snap
}

func TestStorage_SaveListGet(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	first := runAt(t, base, 1)
	second := runAt(t, base.Add(time.Hour), 2)
	second.Summary = &narrator.Narrative{Headline: "配送改善"}
	for _, snap := range []*engine.Snapshot{first, second} {
		if err := s.Save(ctx, snap); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	records, err := s.List(ctx, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 2 || records[0].ID != second.ID || records[1].ID != first.ID {
		t.Fatalf("List() order = %+v", records)
	}
	if records[0].Headline != "配送改善" || records[0].Seed != 2 || records[0].InsightCount != len(second.Insights) {
		t.Errorf("List()[0] = %+v", records[0])
	}
	if !records[1].GeneratedAt.Equal(base) {
		t.Errorf("GeneratedAt = %v, want %v", records[1].GeneratedAt, base)
	}

	limited, _ := s.List(ctx, 1)
	if len(limited) != 1 {
		t.Errorf("List(1) len = %d", len(limited))
	}

	got, err := s.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.KPIs != first.KPIs || len(got.Insights) != len(first.Insights) || got.Dataset != nil {
		t.Errorf("Get() = %+v", got)
	}
}

func TestStorage_ListClampsLimit(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := s.Save(ctx, runAt(t, base.Add(time.Duration(i)*time.Minute), int64(i+1))); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	records, err := s.List(ctx, 1<<40)
	if err != nil {
		t.Fatalf("List(huge) error = %v", err)
	}
	if len(records) != 3 {
		t.Errorf("List(huge) len = %d, want 3", len(records))
	}
}

func TestStorage_ListEmpty(t *testing.T) {
	s := newTestStorage(t)
	records, err := s.List(context.Background(), 5)
	if err != nil || records == nil || len(records) != 0 {
		t.Fatalf("List(empty) = %v, %v, want empty non-nil slice", records, err)
	}
}

func TestStorage_LongHeadline(t *testing.T) {
	s := newTestStorage(t)
	snap := runAt(t, time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC), 9)
	snap.Summary = &narrator.Narrative{Headline: strings.Repeat("长", 400)}
	if err := s.Save(context.Background(), snap); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	records, _ := s.List(context.Background(), 1)
	if len(records) != 1 || records[0].Headline != snap.Summary.Headline {
		t.Fatalf("headline not stored intact")
	}
}

func TestStorage_GetMissing(t *testing.T) {
	s := newTestStorage(t)
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStorage_AsSink(t *testing.T) {
	s := newTestStorage(t)
	eng, _ := engine.NewEngine(config.Default(), engine.WithSink(s))
	snap, err := eng.Run(context.Background(), engine.RunOptions{Days: 3, Seed: 4, Publish: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	records, _ := s.List(context.Background(), 0)
	if len(records) != 1 || records[0].ID != snap.ID {
		t.Fatalf("archive = %+v, want the published run", records)
	}
}

func TestNewStorage_UnsupportedDriver(t *testing.T) {
	_, err := NewStorage(config.DBConfig{Driver: "oracle"})
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("NewStorage(oracle) error = %v", err)
	}
}

func TestCreateTableSQL(t *testing.T) {
	if !strings.Contains(createTableSQL("postgres"), "DOUBLE PRECISION") {
		t.Error("postgres DDL should use DOUBLE PRECISION")
	}
	mysql := createTableSQL("mysql")
	if !strings.Contains(mysql, "LONGTEXT") {
		t.Error("mysql DDL should use LONGTEXT")
	}
	if !strings.Contains(mysql, "headline TEXT") || strings.Contains(mysql, "VARCHAR(255)") {
		t.Error("mysql headline column must not be length limited")
	}
}
