package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/areaselect/internal/adapters/http"
	"github.com/samirrijal/areaselect/internal/adapters/memory"
	"github.com/samirrijal/areaselect/internal/core/domain"
	"github.com/samirrijal/areaselect/internal/core/usecases"
)

// ---- Mock publisher ----

type mockPublisher struct {
	analysisFn func(ctx context.Context, req *domain.AnalysisRequest) error
	requests   []*domain.AnalysisRequest
}

func (m *mockPublisher) PublishAnalysisRequest(ctx context.Context, req *domain.AnalysisRequest) error {
	if m.analysisFn != nil {
		if err := m.analysisFn(ctx, req); err != nil {
			return err
		}
	}
	m.requests = append(m.requests, req)
	return nil
}

func (m *mockPublisher) PublishSessionUpdate(ctx context.Context, sessionID string, data []byte) error {
	return nil
}

// ---- Helpers ----

func makeDeps(pub *mockPublisher) *handler.Dependencies {
	store := memory.NewSessionRepo(0)
	var svc *usecases.SessionService
	if pub != nil {
		svc = usecases.NewSessionService(store, pub)
	} else {
		svc = usecases.NewSessionService(store, nil)
	}
	return &handler.Dependencies{Sessions: svc, Store: store}
}

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

type sessionResponse struct {
	ID    string `json:"id"`
	State struct {
		Tab      string       `json:"tab"`
		Tool     string       `json:"tool"`
		AreaTool string       `json:"area_tool"`
		Pins     []domain.Pin `json:"pins"`
		Shape    *struct {
			Kind       string          `json:"kind"`
			Dimensions json.RawMessage `json:"dimensions"`
		} `json:"shape"`
		Pending *domain.PendingDescriptor `json:"pending"`
	} `json:"state"`
	Outcome    string             `json:"outcome"`
	Polygon    []domain.GeoPoint  `json:"polygon"`
	CanAnalyze bool               `json:"can_analyze"`
	Evaluation *domain.Evaluation `json:"evaluation"`
}

type apiError struct {
	Status int    `json:"status"`
	Code   string `json:"code"`
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, data
}

func decodeSession(t *testing.T, data []byte) sessionResponse {
	t.Helper()
	var s sessionResponse
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("decode session: %v (%s)", err, data)
	}
	return s
}

func decodeError(t *testing.T, data []byte) apiError {
	t.Helper()
	var e apiError
	if err := json.Unmarshal(data, &e); err != nil {
		t.Fatalf("decode error: %v (%s)", err, data)
	}
	return e
}

// newSession creates a session and moves it to the analysis tab with tool.
func newSession(t *testing.T, app *fiber.App, tool string) string {
	t.Helper()
	status, data := do(t, app, "POST", "/v1/sessions", "")
	if status != 201 {
		t.Fatalf("create: expected 201, got %d", status)
	}
	id := decodeSession(t, data).ID

	if status, _ := do(t, app, "PUT", "/v1/sessions/"+id+"/tab", `{"tab":"analysis"}`); status != 200 {
		t.Fatalf("tab: expected 200, got %d", status)
	}
	if tool != "" {
		if status, _ := do(t, app, "PUT", "/v1/sessions/"+id+"/tool", fmt.Sprintf(`{"tool":%q}`, tool)); status != 200 {
			t.Fatalf("tool: expected 200, got %d", status)
		}
	}
	return id
}

// ---- Health ----

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps(nil))

	status, _ := do(t, app, "GET", "/v1/health", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
}

func TestReady_MemoryStore(t *testing.T) {
	app := setupApp(makeDeps(nil))

	status, data := do(t, app, "GET", "/v1/ready", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, data)
	}
}

// ---- Session lifecycle ----

func TestCreateSession(t *testing.T) {
	app := setupApp(makeDeps(nil))

	status, data := do(t, app, "POST", "/v1/sessions", "")
	if status != 201 {
		t.Fatalf("expected 201, got %d", status)
	}
	s := decodeSession(t, data)
	if s.ID == "" {
		t.Fatal("expected session id")
	}
	if s.State.Tab != "home" {
		t.Errorf("expected home tab, got %q", s.State.Tab)
	}
	if s.State.Pins == nil || len(s.State.Pins) != 0 {
		t.Errorf("expected empty pins array, got %v", s.State.Pins)
	}
	if s.CanAnalyze {
		t.Error("new session must not be analyzable")
	}
}

func TestGetSession_NotFound(t *testing.T) {
	app := setupApp(makeDeps(nil))

	status, data := do(t, app, "GET", "/v1/sessions/nope", "")
	if status != 404 {
		t.Fatalf("expected 404, got %d", status)
	}
	if e := decodeError(t, data); e.Code != "not_found" {
		t.Errorf("expected not_found, got %s", e.Code)
	}
}

func TestDeleteSession(t *testing.T) {
	app := setupApp(makeDeps(nil))
	id := newSession(t, app, "")

	if status, _ := do(t, app, "DELETE", "/v1/sessions/"+id, ""); status != 204 {
		t.Fatalf("expected 204, got %d", status)
	}
	if status, _ := do(t, app, "GET", "/v1/sessions/"+id, ""); status != 404 {
		t.Fatalf("expected 404 after delete, got %d", status)
	}
}

// ---- Pin-area flow ----

func TestPinArea_DefaultCircleAndResize(t *testing.T) {
	app := setupApp(makeDeps(nil))
	id := newSession(t, app, "pin-area")

	status, data := do(t, app, "POST", "/v1/sessions/"+id+"/pins", `{"position":{"lat":43.263,"lon":-2.935}}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, data)
	}
	s := decodeSession(t, data)
	if s.State.Shape == nil || s.State.Shape.Kind != "circle" {
		t.Fatalf("expected default circle, got %+v", s.State.Shape)
	}
	if string(s.State.Shape.Dimensions) != `{"radius_meters":50}` {
		t.Errorf("expected 50 m radius, got %s", s.State.Shape.Dimensions)
	}
	if !s.CanAnalyze || s.Evaluation == nil {
		t.Fatal("expected an analyzable selection")
	}

	status, data = do(t, app, "PUT", "/v1/sessions/"+id+"/shape/kind", `{"kind":"rect-vertical"}`)
	if status != 200 {
		t.Fatalf("kind: expected 200, got %d", status)
	}
	s = decodeSession(t, data)
	if string(s.State.Shape.Dimensions) != `{"width_meters":150,"height_meters":100}` {
		t.Errorf("expected rect defaults, got %s", s.State.Shape.Dimensions)
	}

	status, data = do(t, app, "PUT", "/v1/sessions/"+id+"/shape/dimensions", `{"dimensions":{"width_meters":1000,"height_meters":2000}}`)
	if status != 200 {
		t.Fatalf("dimensions: expected 200, got %d: %s", status, data)
	}
	s = decodeSession(t, data)
	if s.Evaluation.AreaKm2 != 2.0 {
		t.Errorf("expected 2 km², got %v", s.Evaluation.AreaKm2)
	}
}

func TestPinArea_InvalidDimensions(t *testing.T) {
	app := setupApp(makeDeps(nil))
	id := newSession(t, app, "pin-area")
	do(t, app, "POST", "/v1/sessions/"+id+"/pins", `{"position":{"lat":1,"lon":1}}`)

	status, data := do(t, app, "PUT", "/v1/sessions/"+id+"/shape/dimensions", `{"dimensions":{"radius_meters":-5}}`)
	if status != 422 {
		t.Fatalf("expected 422, got %d", status)
	}
	if e := decodeError(t, data); e.Code != "unprocessable" {
		t.Errorf("expected unprocessable, got %s", e.Code)
	}

	// Dimensions of another kind do not fit the circle.
	status, _ = do(t, app, "PUT", "/v1/sessions/"+id+"/shape/dimensions", `{"kind":"square","dimensions":{"width_meters":10}}`)
	if status != 422 {
		t.Fatalf("expected 422 for mismatched kind, got %d", status)
	}
}

func TestPinArea_ReplaceNeedsConfirmation(t *testing.T) {
	app := setupApp(makeDeps(nil))
	id := newSession(t, app, "pin-area")
	do(t, app, "POST", "/v1/sessions/"+id+"/pins", `{"position":{"lat":1,"lon":1}}`)

	status, data := do(t, app, "POST", "/v1/sessions/"+id+"/pins", `{"position":{"lat":2,"lon":2}}`)
	if status != 202 {
		t.Fatalf("expected 202, got %d", status)
	}
	s := decodeSession(t, data)
	if s.Outcome != "deferred" || s.State.Pending == nil || s.State.Pending.Kind != "pin_replace" {
		t.Fatalf("expected pending pin_replace, got %+v", s.State.Pending)
	}
	if s.State.Pins[0].Position.Lat != 1 {
		t.Error("deferred replace must keep the old pin")
	}

	status, data = do(t, app, "POST", "/v1/sessions/"+id+"/confirm", "")
	if status != 200 {
		t.Fatalf("confirm: expected 200, got %d", status)
	}
	s = decodeSession(t, data)
	if len(s.State.Pins) != 1 || s.State.Pins[0].Position.Lat != 2 {
		t.Errorf("expected pin replaced at lat 2, got %+v", s.State.Pins)
	}
	if s.State.Pending != nil {
		t.Error("expected pending cleared")
	}
}

func TestConfirm_NothingPending(t *testing.T) {
	app := setupApp(makeDeps(nil))
	id := newSession(t, app, "pin-area")

	status, data := do(t, app, "POST", "/v1/sessions/"+id+"/confirm", "")
	if status != 409 {
		t.Fatalf("expected 409, got %d", status)
	}
	if e := decodeError(t, data); e.Code != "conflict" {
		t.Errorf("expected conflict, got %s", e.Code)
	}
}

func TestSelectTool_OffAnalysisTab(t *testing.T) {
	app := setupApp(makeDeps(nil))
	_, data := do(t, app, "POST", "/v1/sessions", "")
	id := decodeSession(t, data).ID

	status, _ := do(t, app, "PUT", "/v1/sessions/"+id+"/tool", `{"tool":"multi-pin"}`)
	if status != 409 {
		t.Fatalf("expected 409, got %d", status)
	}
}

func TestSelectTool_Unknown(t *testing.T) {
	app := setupApp(makeDeps(nil))
	id := newSession(t, app, "")

	status, data := do(t, app, "PUT", "/v1/sessions/"+id+"/tool", `{"tool":"lasso"}`)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
	if e := decodeError(t, data); e.Code != "bad_request" {
		t.Errorf("expected bad_request, got %s", e.Code)
	}
}

// ---- Multi-pin flow ----

func TestMultiPin_PolygonFollowsPins(t *testing.T) {
	app := setupApp(makeDeps(nil))
	id := newSession(t, app, "multi-pin")

	var s sessionResponse
	for _, p := range []string{
		`{"position":{"lat":0,"lon":0}}`,
		`{"position":{"lat":0,"lon":0.01}}`,
		`{"position":{"lat":0.01,"lon":0.01}}`,
	} {
		status, data := do(t, app, "POST", "/v1/sessions/"+id+"/pins", p)
		if status != 200 {
			t.Fatalf("expected 200, got %d", status)
		}
		s = decodeSession(t, data)
	}
	if len(s.Polygon) != 3 || !s.CanAnalyze {
		t.Fatalf("expected 3-vertex analyzable polygon, got %d", len(s.Polygon))
	}
	if s.State.Pins[2].Number != 3 {
		t.Errorf("expected third pin numbered 3, got %d", s.State.Pins[2].Number)
	}

	pinID := s.State.Pins[1].ID
	status, data := do(t, app, "PUT", "/v1/sessions/"+id+"/pins/"+pinID, `{"position":{"lat":0.005,"lon":0.02}}`)
	if status != 200 {
		t.Fatalf("move: expected 200, got %d", status)
	}
	s = decodeSession(t, data)
	if s.Polygon[1] != (domain.GeoPoint{Lat: 0.005, Lon: 0.02}) {
		t.Errorf("expected polygon vertex to follow pin, got %+v", s.Polygon[1])
	}

	status, data = do(t, app, "POST", "/v1/sessions/"+id+"/undo", "")
	if status != 200 {
		t.Fatalf("undo: expected 200, got %d", status)
	}
	s = decodeSession(t, data)
	if len(s.Polygon) != 2 || s.CanAnalyze {
		t.Errorf("expected 2 vertices after undo, got %d", len(s.Polygon))
	}
}

func TestMovePin_Unknown(t *testing.T) {
	app := setupApp(makeDeps(nil))
	id := newSession(t, app, "multi-pin")

	status, _ := do(t, app, "PUT", "/v1/sessions/"+id+"/pins/nope", `{"position":{"lat":1,"lon":1}}`)
	if status != 404 {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestAddPin_Validation(t *testing.T) {
	app := setupApp(makeDeps(nil))
	id := newSession(t, app, "multi-pin")

	tests := []struct {
		name string
		body string
	}{
		{"missing position", `{}`},
		{"latitude out of range", `{"position":{"lat":91,"lon":0}}`},
		{"malformed", `{"position":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := do(t, app, "POST", "/v1/sessions/"+id+"/pins", tt.body)
			if status != 400 {
				t.Errorf("expected 400, got %d", status)
			}
		})
	}
}

func TestActions_GenericEndpoint(t *testing.T) {
	app := setupApp(makeDeps(nil))
	_, data := do(t, app, "POST", "/v1/sessions", "")
	id := decodeSession(t, data).ID

	steps := []struct {
		body   string
		status int
	}{
		{`{"type":"select_tab","tab":"analysis"}`, 200},
		{`{"type":"select_tool","tool":"multi-pin"}`, 200},
		{`{"type":"add_pin","position":{"lat":1,"lon":1}}`, 200},
		{`{"type":"select_tool","tool":"pin-area"}`, 202},
		{`{"type":"cancel"}`, 200},
		{`{"type":"teleport"}`, 400},
		{`{"tab":"home"}`, 400},
	}
	for i, st := range steps {
		status, body := do(t, app, "POST", "/v1/sessions/"+id+"/actions", st.body)
		if status != st.status {
			t.Fatalf("step %d (%s): expected %d, got %d: %s", i, st.body, st.status, status, body)
		}
	}

	_, data = do(t, app, "GET", "/v1/sessions/"+id, "")
	s := decodeSession(t, data)
	if s.State.AreaTool != "multi-pin" || len(s.State.Pins) != 1 {
		t.Errorf("cancel must keep the multi-pin selection, got %+v", s.State)
	}
}

func TestSelectTab_HomeTearsDown(t *testing.T) {
	app := setupApp(makeDeps(nil))
	id := newSession(t, app, "pin-area")
	do(t, app, "POST", "/v1/sessions/"+id+"/pins", `{"position":{"lat":1,"lon":1}}`)

	status, data := do(t, app, "PUT", "/v1/sessions/"+id+"/tab", `{"tab":"home"}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	s := decodeSession(t, data)
	if s.State.Tool != "" || s.State.Shape != nil || len(s.State.Pins) != 0 {
		t.Errorf("expected full teardown, got %+v", s.State)
	}
}

// ---- Analysis ----

func TestAnalyze_Verdicts(t *testing.T) {
	pub := &mockPublisher{}
	app := setupApp(makeDeps(pub))
	id := newSession(t, app, "pin-area")

	type verdict struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		AreaKm2 float64 `json:"area_km2"`
		Queued  bool    `json:"queued"`
	}
	analyze := func() verdict {
		status, data := do(t, app, "POST", "/v1/sessions/"+id+"/analyze", "")
		if status != 200 {
			t.Fatalf("expected 200, got %d", status)
		}
		var v verdict
		if err := json.Unmarshal(data, &v); err != nil {
			t.Fatal(err)
		}
		return v
	}

	if v := analyze(); v.Status != "no_selection" {
		t.Errorf("expected no_selection, got %s", v.Status)
	}

	do(t, app, "POST", "/v1/sessions/"+id+"/pins", `{"position":{"lat":43.263,"lon":-2.935}}`)
	do(t, app, "PUT", "/v1/sessions/"+id+"/shape/dimensions", `{"dimensions":{"radius_meters":2524}}`)
	v := analyze()
	if v.Status != "too_large" {
		t.Errorf("expected too_large, got %s", v.Status)
	}
	if v.Message != "Selected area (20.01 km²) exceeds the maximum limit of 20 km²." {
		t.Errorf("unexpected message %q", v.Message)
	}

	do(t, app, "PUT", "/v1/sessions/"+id+"/shape/dimensions", `{"dimensions":{"radius_meters":2523}}`)
	v = analyze()
	if v.Status != "accepted" || !v.Queued {
		t.Errorf("expected accepted and queued, got %+v", v)
	}
	if len(pub.requests) != 1 {
		t.Fatalf("expected 1 published request, got %d", len(pub.requests))
	}
}

func TestEvaluation_NullWithoutSelection(t *testing.T) {
	app := setupApp(makeDeps(nil))
	id := newSession(t, app, "multi-pin")

	status, data := do(t, app, "GET", "/v1/sessions/"+id+"/evaluation", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if string(data) != `{"evaluation":null}` {
		t.Errorf("expected null evaluation, got %s", data)
	}
}

// ---- GeoJSON ----

func TestGeoJSON(t *testing.T) {
	app := setupApp(makeDeps(nil))
	id := newSession(t, app, "pin-area")
	do(t, app, "POST", "/v1/sessions/"+id+"/pins", `{"position":{"lat":43.263,"lon":-2.935}}`)
	do(t, app, "PUT", "/v1/sessions/"+id+"/shape/kind", `{"kind":"hexagon"}`)

	req := httptest.NewRequest("GET", "/v1/sessions/"+id+"/geojson", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("expected geo+json content type, got %q", ct)
	}

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string          `json:"type"`
				Coordinates json.RawMessage `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		t.Fatal(err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 2 {
		t.Fatalf("expected pin and shape features, got %d", len(fc.Features))
	}
	if fc.Features[1].Geometry.Type != "Polygon" || fc.Features[1].Properties["kind"] != "hexagon" {
		t.Errorf("expected hexagon polygon, got %+v", fc.Features[1])
	}
}

// ---- Caching ----

func TestGetSession_ETag(t *testing.T) {
	app := setupApp(makeDeps(nil))
	id := newSession(t, app, "")

	req := httptest.NewRequest("GET", "/v1/sessions/"+id, nil)
	resp, _ := app.Test(req, -1)
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "private, no-cache" {
		t.Errorf("expected private, no-cache, got %q", cc)
	}

	req = httptest.NewRequest("GET", "/v1/sessions/"+id, nil)
	req.Header.Set("If-None-Match", etag)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 304 {
		t.Errorf("expected 304, got %d", resp.StatusCode)
	}
}

func TestGetSession_ETagListAndChange(t *testing.T) {
	app := setupApp(makeDeps(nil))
	id := newSession(t, app, "pin-area")

	get := func(ifNoneMatch string) (int, string) {
		req := httptest.NewRequest("GET", "/v1/sessions/"+id, nil)
		if ifNoneMatch != "" {
			req.Header.Set("If-None-Match", ifNoneMatch)
		}
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		return resp.StatusCode, resp.Header.Get("ETag")
	}

	_, etag := get("")
	if !strings.HasPrefix(etag, `W/"`) {
		t.Fatalf("expected weak ETag, got %q", etag)
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"listed among others", `"stale", ` + etag, 304},
		{"strong form of the weak tag", strings.TrimPrefix(etag, "W/"), 304},
		{"wildcard", "*", 304},
		{"no match", `W/"0000000000000000"`, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status, _ := get(tt.header); status != tt.want {
				t.Errorf("expected %d, got %d", tt.want, status)
			}
		})
	}

	// A changed session gets a new tag, so the old one no longer matches.
	do(t, app, "POST", "/v1/sessions/"+id+"/pins", `{"position":{"lat":43.263,"lon":-2.935}}`)
	status, fresh := get(etag)
	if status != 200 {
		t.Errorf("expected 200 after change, got %d", status)
	}
	if fresh == etag {
		t.Error("expected a new ETag after the session changed")
	}
}

// ---- GraphQL ----

func TestGraphQL_Session(t *testing.T) {
	app := setupApp(makeDeps(nil))
	id := newSession(t, app, "pin-area")
	do(t, app, "POST", "/v1/sessions/"+id+"/pins", `{"position":{"lat":43.263,"lon":-2.935}}`)

	query := fmt.Sprintf(`{"query":"{ session(id: \"%s\") { tool shape { kind radius_meters area_km2 } evaluation { within_limit } } maxAreaKm2 }"}`, id)
	status, data := do(t, app, "POST", "/graphql", query)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}

	var result struct {
		Data struct {
			Session struct {
				Tool  string `json:"tool"`
				Shape struct {
					Kind         string  `json:"kind"`
					RadiusMeters float64 `json:"radius_meters"`
				} `json:"shape"`
				Evaluation struct {
					WithinLimit bool `json:"within_limit"`
				} `json:"evaluation"`
			} `json:"session"`
			MaxAreaKm2 float64 `json:"maxAreaKm2"`
		} `json:"data"`
		Errors []interface{} `json:"errors"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Data.Session.Tool != "pin-area" || result.Data.Session.Shape.Kind != "circle" {
		t.Errorf("unexpected session %+v", result.Data.Session)
	}
	if result.Data.Session.Shape.RadiusMeters != 50 || !result.Data.Session.Evaluation.WithinLimit {
		t.Errorf("expected 50 m circle within limit, got %+v", result.Data.Session)
	}
	if result.Data.MaxAreaKm2 != 20 {
		t.Errorf("expected 20, got %v", result.Data.MaxAreaKm2)
	}
}

func TestGraphQL_ShapeArea(t *testing.T) {
	app := setupApp(makeDeps(nil))

	status, data := do(t, app, "POST", "/graphql", `{"query":"{ shapeArea(kind: \"square\", width: 1000) }"}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var result struct {
		Data struct {
			ShapeArea float64 `json:"shapeArea"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatal(err)
	}
	if result.Data.ShapeArea != 1.0 {
		t.Errorf("expected 1 km², got %v", result.Data.ShapeArea)
	}
}

// ---- Docs ----

func TestDocs(t *testing.T) {
	app := setupApp(makeDeps(nil))

	req := httptest.NewRequest("GET", "/docs", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "public, max-age=3600" {
		t.Errorf("expected public docs caching, got %q", cc)
	}
}
