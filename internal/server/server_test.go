package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bpmnlayout/pkg/buildinfo"
	"github.com/matzehuels/bpmnlayout/pkg/cache"
	"github.com/matzehuels/bpmnlayout/pkg/observability"
	"github.com/matzehuels/bpmnlayout/pkg/pipeline"
)

const twoTasks = `{
  "id": "root",
  "category": "definitions",
  "children": [{
    "id": "proc",
    "category": "process",
    "children": [
      {"id": "A", "category": "task", "name": "Check order"},
      {"id": "B", "category": "task", "name": "Ship"}
    ],
    "edges": [{"id": "f1", "category": "sequenceFlow", "sources": ["A"], "targets": ["B"]}]
  }]
}`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	return New(pipeline.NewRunner(fc, nil, logger), nil, logger)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get(headerRequestID) == "" {
		t.Error("missing request ID header")
	}
	var body struct {
		Status string         `json:"status"`
		Build  buildinfo.Info `json:"build"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Build.Version != buildinfo.Version {
		t.Errorf("health = %+v", body)
	}
}

func TestEngines(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/v1/engines", "")
	var body struct {
		Engines []string `json:"engines"`
		Default string   `json:"default"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Default != pipeline.DefaultEngine {
		t.Errorf("default = %q, want %q", body.Default, pipeline.DefaultEngine)
	}
	if len(body.Engines) != len(pipeline.EngineNames()) {
		t.Errorf("engines = %v", body.Engines)
	}
}

func TestLayout(t *testing.T) {
	s := newTestServer(t)
	body := `{"tree": ` + twoTasks + `, "absolute": true}`

	for i, wantHit := range []bool{false, true} {
		rec := do(t, s, http.MethodPost, "/v1/layout", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("run %d: status = %d, body %s", i, rec.Code, rec.Body)
		}
		var resp LayoutResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("run %d: decode: %v", i, err)
		}
		if resp.CacheHit != wantHit {
			t.Errorf("run %d: cacheHit = %v, want %v", i, resp.CacheHit, wantHit)
		}
		if resp.Stats.Nodes != 4 || resp.Stats.Edges != 1 {
			t.Errorf("run %d: stats = %+v, want 4 nodes 1 edge", i, resp.Stats)
		}
		pts := resp.AbsoluteRoutes["f1"]
		if len(pts) < 2 {
			t.Fatalf("run %d: absolute route for f1 = %v", i, pts)
		}
		if pts[0].X >= pts[len(pts)-1].X {
			t.Errorf("run %d: route runs right to left: %v", i, pts)
		}
	}
}

func TestLayoutErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed", `{"tree": `, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown field", `{"tree": ` + twoTasks + `, "colour": "red"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"no tree", `{}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown engine", `{"tree": ` + twoTasks + `, "engine": "dot"}`, http.StatusBadRequest, "ENGINE_UNKNOWN"},
		{"bad option", `{"tree": ` + twoTasks + `, "options": {"direction": "SIDEWAYS"}}`, http.StatusBadRequest, "INVALID_OPTION"},
	}
	s := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/v1/layout", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body)
			}
			var resp errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if string(resp.Code) != tt.code {
				t.Errorf("code = %q, want %q", resp.Code, tt.code)
			}
			if resp.Error == "" {
				t.Error("empty error message")
			}
		})
	}
}

func TestRequestIDPropagates(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, "abc-123")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if got := rec.Header().Get(headerRequestID); got != "abc-123" {
		t.Errorf("request ID = %q, want abc-123", got)
	}
}

func TestServerHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetServerHooks(hooks)
	t.Cleanup(observability.Reset)

	s := newTestServer(t)
	do(t, s, http.MethodGet, "/healthz", "")
	do(t, s, http.MethodPost, "/v1/layout", `{}`)

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.requests) != 2 {
		t.Fatalf("requests = %v, want 2", hooks.requests)
	}
	want := []int{http.StatusOK, http.StatusBadRequest}
	for i, st := range want {
		if hooks.statuses[i] != st {
			t.Errorf("status[%d] = %d, want %d", i, hooks.statuses[i], st)
		}
	}
}

func TestListenAndServeShutsDown(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

type recordingHooks struct {
	observability.NoopServerHooks
	mu       sync.Mutex
	requests []string
	statuses []int
}

func (h *recordingHooks) OnRequest(_ context.Context, _, method, path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests = append(h.requests, method+" "+path)
}

func (h *recordingHooks) OnResponse(_ context.Context, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}
