//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/areaselect/internal/adapters/http"
	"github.com/samirrijal/areaselect/internal/adapters/postgres"
	"github.com/samirrijal/areaselect/internal/core/usecases"
	"github.com/samirrijal/areaselect/internal/pkg/config"
)

// setupTestDB connects to the test database. The selection_sessions table
// must exist (run cmd/migrate first).
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("areaselect-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("ping db: %v", err)
	}

	return &postgres.DB{Pool: pool}
}

// setupTestDeps wires the API over the Postgres session store, no NATS.
func setupTestDeps(db *postgres.DB) *http.Dependencies {
	store := postgres.NewSessionRepo(db, time.Hour)
	return &http.Dependencies{
		Sessions: usecases.NewSessionService(store, nil),
		Store:    store,
	}
}

// TestSessionFlow_Integration drives a pin-area selection through the API
// and reads it back from the database.
func TestSessionFlow_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	app := setupApp(setupTestDeps(db))

	status, data := do(t, app, "POST", "/v1/sessions", "")
	if status != 201 {
		t.Fatalf("create: expected 201, got %d", status)
	}
	id := decodeSession(t, data).ID
	defer func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM selection_sessions WHERE id = $1`, id)
	}()

	steps := []struct {
		method, path, body string
		status             int
	}{
		{"PUT", "/tab", `{"tab":"analysis"}`, 200},
		{"PUT", "/tool", `{"tool":"pin-area"}`, 200},
		{"POST", "/pins", `{"position":{"lat":43.263,"lon":-2.935}}`, 200},
		{"PUT", "/shape/kind", `{"kind":"square"}`, 200},
		{"PUT", "/shape/dimensions", `{"dimensions":{"width_meters":800}}`, 200},
		{"POST", "/pins", `{"position":{"lat":43.27,"lon":-2.94}}`, 202},
	}
	for _, st := range steps {
		status, body := do(t, app, st.method, "/v1/sessions/"+id+st.path, st.body)
		if status != st.status {
			t.Fatalf("%s %s: expected %d, got %d: %s", st.method, st.path, st.status, status, body)
		}
	}

	// The pending replace survives the round trip through JSONB.
	var raw []byte
	if err := db.Pool.QueryRow(context.Background(),
		`SELECT state FROM selection_sessions WHERE id = $1`, id).Scan(&raw); err != nil {
		t.Fatalf("read state: %v", err)
	}
	if !strings.Contains(string(raw), `"pin_replace"`) {
		t.Errorf("expected pending pin_replace in stored state, got %s", raw)
	}

	status, data = do(t, app, "POST", "/v1/sessions/"+id+"/cancel", "")
	if status != 200 {
		t.Fatalf("cancel: expected 200, got %d", status)
	}
	s := decodeSession(t, data)
	if s.State.Shape == nil || s.State.Shape.Kind != "square" {
		t.Fatalf("expected square kept after cancel, got %+v", s.State.Shape)
	}

	status, data = do(t, app, "POST", "/v1/sessions/"+id+"/analyze", "")
	if status != 200 {
		t.Fatalf("analyze: expected 200, got %d", status)
	}
	var verdict struct {
		Status  string  `json:"status"`
		AreaKm2 float64 `json:"area_km2"`
	}
	if err := json.Unmarshal(data, &verdict); err != nil {
		t.Fatalf("decode verdict: %v", err)
	}
	if verdict.Status != "accepted" || verdict.AreaKm2 != 0.64 {
		t.Errorf("expected accepted 0.64 km², got %+v", verdict)
	}
}

// TestReady_Integration checks the readiness probe against a live database.
func TestReady_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	app := setupApp(setupTestDeps(db))

	req := httptest.NewRequest("GET", "/v1/ready", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

// TestGetSession_Integration_NotFound checks that unknown IDs map to 404.
func TestGetSession_Integration_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	app := setupApp(setupTestDeps(db))

	status, _ := do(t, app, "GET", "/v1/sessions/does-not-exist", "")
	if status != 404 {
		t.Fatalf("expected 404, got %d", status)
	}
}
