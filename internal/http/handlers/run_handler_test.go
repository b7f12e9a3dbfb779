package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sharetaxi/internal/config"
	"sharetaxi/internal/experiment"
	"sharetaxi/internal/http/handlers"
	"sharetaxi/internal/report"
)

type memStore struct {
	mu   sync.Mutex
	runs map[uuid.UUID]*report.Run
	err  error
}

func newMemStore() *memStore {
	return &memStore{runs: make(map[uuid.UUID]*report.Run)}
}

func (s *memStore) SaveRun(_ context.Context, run *report.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.runs[run.ID] = run
	return nil
}

func (s *memStore) GetRun(_ context.Context, id uuid.UUID) (*report.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, report.ErrNotFound
	}
	return run, nil
}

func (s *memStore) ListRuns(_ context.Context, limit int) ([]report.Header, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []report.Header
	for _, run := range s.runs {
		out = append(out, run.Header)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memCache struct {
	mu      sync.Mutex
	headers map[uuid.UUID]report.Header
	gets    int
}

func newMemCache() *memCache {
	return &memCache{headers: make(map[uuid.UUID]report.Header)}
}

func (c *memCache) Put(_ context.Context, h report.Header) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers[h.ID] = h
	return nil
}

func (c *memCache) Get(_ context.Context, id uuid.UUID) (*report.Header, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	h, ok := c.headers[id]
	if !ok {
		return nil, report.ErrNotFound
	}
	return &h, nil
}

func (c *memCache) Top(_ context.Context, n int) ([]report.Header, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []report.Header
	for _, h := range c.headers {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Summary.DeliveryRatio > out[j].Summary.DeliveryRatio })
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func baseConfig() config.Config {
	var cfg config.Config
	cfg.Sim = config.SimConfig{
		Ticks: 40, GridX: 8, GridY: 8, Vehicles: 3, Requests: 15,
		Capacity: 4, Sharing: true, NodeLimit: 5, TimeOut: 5, Seed: 1, Idle: "hold",
	}
	cfg.Pricing = config.PricingConfig{Warmup: 4, Interval: 10, RateMin: 0.8, RateMax: 1.2}
	cfg.Tolerance = config.ToleranceConfig{BudgetBase: 10, BudgetFactor: 1.2, PowerMin: 0.7, PowerMax: 1.1}
	cfg.Sweep = config.SweepConfig{Runs: 1, Workers: 1}
	return cfg
}

func buildTestRouter(store handlers.RunStore, cache handlers.RunCache) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handlers.NewRunHandler(store, cache, experiment.Run, baseConfig(), handlers.Limits{
		MaxTicks: 200, MaxRequests: 100, MaxVehicles: 20, MaxNodeLimit: 8, MaxCapacity: 8, MaxList: 50,
	})
	r := gin.New()
	r.GET("/api/runs", h.List)
	r.POST("/api/runs", h.Create)
	r.GET("/api/runs/top", h.Top)
	r.GET("/api/runs/:id", h.Get)
	r.GET("/api/runs/:id/summary", h.Summary)
	return r
}

func doRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createRun(t *testing.T, r *gin.Engine, body map[string]any) report.Header {
	t.Helper()
	w := doRequest(r, http.MethodPost, "/api/runs", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var h report.Header
	if err := json.Unmarshal(w.Body.Bytes(), &h); err != nil {
		t.Fatalf("decode header: %v", err)
	}
	return h
}

func TestCreate_RunsAndStores(t *testing.T) {
	store, cache := newMemStore(), newMemCache()
	r := buildTestRouter(store, cache)

	h := createRun(t, r, map[string]any{"label": "api", "seed": 5, "sharing": false})
	if h.Label != "api" || h.Seed != 5 || h.Sharing {
		t.Fatalf("overrides not applied: %+v", h)
	}
	if h.Summary.Requests != 15 || h.Fleet != 3 {
		t.Fatalf("expected base sizes, got %+v", h)
	}
	if _, ok := store.runs[h.ID]; !ok {
		t.Fatalf("expected run stored")
	}
	if _, ok := cache.headers[h.ID]; !ok {
		t.Fatalf("expected run cached")
	}
}

func TestCreate_RejectsBadInput(t *testing.T) {
	r := buildTestRouter(newMemStore(), nil)
	tests := []struct {
		name string
		body any
	}{
		{"too many ticks", map[string]any{"ticks": 1000}},
		{"too many vehicles", map[string]any{"vehicles": 50}},
		{"node limit too large", map[string]any{"node_limit": 40}},
		{"capacity too large", map[string]any{"capacity": 40}},
		{"large route search on one taxi", map[string]any{"node_limit": 40, "capacity": 40, "vehicles": 1, "requests": 100, "ticks": 200}},
		{"invalid config", map[string]any{"capacity": 0}},
		{"unknown idle policy", map[string]any{"idle": "cruise"}},
		{"wrong type", map[string]any{"ticks": "many"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/api/runs", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestCreate_AcceptsLimitsInclusive(t *testing.T) {
	r := buildTestRouter(newMemStore(), nil)
	h := createRun(t, r, map[string]any{"node_limit": 8, "capacity": 8, "ticks": 20})
	if h.Capacity != 8 {
		t.Fatalf("expected capacity 8, got %d", h.Capacity)
	}
}

func TestCreate_StoreFailure(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("db down")
	r := buildTestRouter(store, nil)
	w := doRequest(r, http.MethodPost, "/api/runs", map[string]any{})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestGet(t *testing.T) {
	r := buildTestRouter(newMemStore(), nil)
	h := createRun(t, r, map[string]any{"label": "get"})

	w := doRequest(r, http.MethodGet, "/api/runs/"+h.ID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var run report.Run
	if err := json.Unmarshal(w.Body.Bytes(), &run); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if run.ID != h.ID || len(run.Requests) != 15 || len(run.Vehicles) != 3 {
		t.Fatalf("unexpected run: %+v", run.Header)
	}

	if w := doRequest(r, http.MethodGet, "/api/runs/"+uuid.New().String(), nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/api/runs/not-a-uuid", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSummary_RefillsCache(t *testing.T) {
	store, cache := newMemStore(), newMemCache()
	r := buildTestRouter(store, cache)
	h := createRun(t, r, map[string]any{})
	delete(cache.headers, h.ID)

	w := doRequest(r, http.MethodGet, "/api/runs/"+h.ID.String()+"/summary", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if _, ok := cache.headers[h.ID]; !ok {
		t.Fatalf("expected cache refilled after a miss")
	}

	w = doRequest(r, http.MethodGet, "/api/runs/"+h.ID.String()+"/summary", nil)
	if w.Code != http.StatusOK || cache.gets != 2 {
		t.Fatalf("expected a second cache read, got code %d and %d reads", w.Code, cache.gets)
	}
}

func TestList(t *testing.T) {
	r := buildTestRouter(newMemStore(), nil)
	for _, seed := range []int{1, 2, 3} {
		createRun(t, r, map[string]any{"seed": seed})
	}

	w := doRequest(r, http.MethodGet, "/api/runs?limit=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Runs []report.Header `json:"runs"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(body.Runs))
	}

	if w := doRequest(r, http.MethodGet, "/api/runs?limit=-1", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestTop(t *testing.T) {
	if w := doRequest(buildTestRouter(newMemStore(), nil), http.MethodGet, "/api/runs/top", nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a cache, got %d", w.Code)
	}

	cache := newMemCache()
	r := buildTestRouter(newMemStore(), cache)
	for _, seed := range []int{1, 2, 3} {
		createRun(t, r, map[string]any{"seed": seed})
	}
	w := doRequest(r, http.MethodGet, "/api/runs/top?n=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Runs []report.Header `json:"runs"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Runs) != 2 || body.Runs[0].Summary.DeliveryRatio < body.Runs[1].Summary.DeliveryRatio {
		t.Fatalf("expected 2 runs by descending delivery ratio, got %+v", body.Runs)
	}
}
