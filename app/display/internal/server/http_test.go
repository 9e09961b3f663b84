package server

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/gorilla/websocket"

	"github.com/iWorld-y/ops_radar/app/display/internal/biz"
	"github.com/iWorld-y/ops_radar/app/display/internal/conf"
	"github.com/iWorld-y/ops_radar/app/display/internal/data"
	"github.com/iWorld-y/ops_radar/app/display/internal/service"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/engine"
)

type testEnv struct {
	srv *http.Server
	eng *engine.Engine
	hub *Hub
}

func newTestEnv(t *testing.T, dc *conf.Data) *testEnv {
	t.Helper()
	logger := log.DefaultLogger
	d, cleanupData, err := data.NewData(dc, logger)
	if err != nil {
		t.Fatalf("NewData() error = %v", err)
	}
	t.Cleanup(cleanupData)

	hub := NewHub(logger)
	reg := NewRegistry()
	eng, cleanupEngine, err := NewRadarEngine(&conf.Radar{Generator: &conf.Generator{Days: 14}}, d, hub, NewEngineMetrics(reg), logger)
	if err != nil {
		t.Fatalf("NewRadarEngine() error = %v", err)
	}
	t.Cleanup(cleanupEngine)

	uc := biz.NewRadarUseCase(eng, data.NewRunRepo(d, logger), logger)
	srv := NewHTTPServer(&conf.Server{Http: &conf.HTTP{}}, service.NewRadarService(uc, logger), hub, reg, logger)
	return &testEnv{srv: srv, eng: eng, hub: hub}
}

func (e *testEnv) get(t *testing.T, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, path, nil))
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func sqliteData() *conf.Data {
	return &conf.Data{Database: &conf.Database{Driver: "sqlite", Source: ":memory:"}}
}

func TestHTTP_Insights(t *testing.T) {
	env := newTestEnv(t, &conf.Data{})
	rec, body := env.get(t, "/api/v1/insights?days=10&seed=3")
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if body["seed"] != float64(3) {
		t.Errorf("seed = %v", body["seed"])
	}
	if _, ok := body["insights"].([]any); !ok {
		t.Errorf("insights missing: %s", rec.Body.String())
	}
}

func TestHTTP_DatasetAndAnalytics(t *testing.T) {
	env := newTestEnv(t, &conf.Data{})
	rec, body := env.get(t, "/api/v1/dataset?days=2&seed=9")
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("dataset status = %d", rec.Code)
	}
	for _, key := range []string{"orders", "inventory", "deliveries"} {
		if _, ok := body[key]; !ok {
			t.Errorf("dataset missing %q", key)
		}
	}

	rec, body = env.get(t, "/api/v1/analytics?seed=9")
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("analytics status = %d", rec.Code)
	}
	points, _ := body["revenue_by_date"].([]any)
	if len(points) != 15 {
		t.Errorf("revenue_by_date points = %d, want configured 14 days + today", len(points))
	}
}

func TestHTTP_InvalidParameters(t *testing.T) {
	env := newTestEnv(t, &conf.Data{})
	for _, path := range []string{
		"/api/v1/dataset?days=abc",
		"/api/v1/insights?days=-1",
		"/api/v1/snapshot?seed=x",
		"/api/v1/analytics?days=9999",
	} {
		rec, body := env.get(t, path)
		if rec.Code != nethttp.StatusBadRequest || body["reason"] != "INVALID_PARAMETER" {
			t.Errorf("%s: status = %d, body = %s", path, rec.Code, rec.Body.String())
		}
	}
}

func TestHTTP_RunsDisabled(t *testing.T) {
	env := newTestEnv(t, &conf.Data{})
	rec, body := env.get(t, "/api/v1/runs")
	if rec.Code != nethttp.StatusServiceUnavailable || body["reason"] != "ARCHIVE_DISABLED" {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestHTTP_RunsArchived(t *testing.T) {
	env := newTestEnv(t, sqliteData())
	snap, err := env.eng.Run(context.Background(), engine.RunOptions{Days: 3, Seed: 4, Publish: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	rec, body := env.get(t, "/api/v1/runs?limit=5")
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	runs, _ := body["runs"].([]any)
	if len(runs) != 1 {
		t.Fatalf("runs = %v", body["runs"])
	}

	rec, body = env.get(t, "/api/v1/runs/"+snap.ID)
	if rec.Code != nethttp.StatusOK || body["id"] != snap.ID {
		t.Fatalf("get run status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if rec, _ := env.get(t, "/api/v1/runs/missing"); rec.Code != nethttp.StatusNotFound {
		t.Errorf("missing run status = %d", rec.Code)
	}
	if rec, _ := env.get(t, "/api/v1/runs?limit=0"); rec.Code != nethttp.StatusBadRequest {
		t.Errorf("limit=0 status = %d", rec.Code)
	}
}

func TestHTTP_RunsLimitBounds(t *testing.T) {
	env := newTestEnv(t, sqliteData())
	for _, limit := range []string{"1000000000000", "101", "-3", "ten"} {
		rec, body := env.get(t, "/api/v1/runs?limit="+limit)
		if rec.Code != nethttp.StatusBadRequest || body["reason"] != "INVALID_PARAMETER" {
			t.Errorf("limit=%s: status = %d, body = %s", limit, rec.Code, rec.Body.String())
		}
	}
	if rec, _ := env.get(t, "/api/v1/runs?limit=100"); rec.Code != nethttp.StatusOK {
		t.Errorf("limit=100 status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestHTTP_SnapshotNotPublished(t *testing.T) {
	env := newTestEnv(t, sqliteData())
	rec, body := env.get(t, "/api/v1/snapshot?days=5&seed=1")
	if rec.Code != nethttp.StatusOK || body["id"] == "" {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	_, body = env.get(t, "/api/v1/runs")
	if runs, _ := body["runs"].([]any); len(runs) != 0 {
		t.Errorf("on-demand snapshot was archived: %v", runs)
	}
}

func TestHTTP_HealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, &conf.Data{})
	if rec, body := env.get(t, "/health"); rec.Code != nethttp.StatusOK || body["status"] != "ok" {
		t.Fatalf("health = %d %s", rec.Code, rec.Body.String())
	}

	if _, err := env.eng.Run(context.Background(), engine.RunOptions{Days: 1, Seed: 1}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	rec, _ := env.get(t, "/metrics")
	if rec.Code != nethttp.StatusOK || !strings.Contains(rec.Body.String(), "ops_radar_runs_total 1") {
		t.Fatalf("metrics = %d\n%s", rec.Code, rec.Body.String())
	}
}

func TestHTTP_WebsocketFeed(t *testing.T) {
	env := newTestEnv(t, &conf.Data{})
	ts := httptest.NewServer(env.srv)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/snapshots", nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for env.hub.Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	snap, err := env.eng.Run(context.Background(), engine.RunOptions{Days: 2, Seed: 6, Publish: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got engine.Snapshot
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if got.ID != snap.ID {
		t.Errorf("received snapshot %s, want %s", got.ID, snap.ID)
	}
}
