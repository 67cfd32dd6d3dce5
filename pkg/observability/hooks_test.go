package observability

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnEngineStart(ctx, "layered", 12)
	p.OnEngineComplete(ctx, "layered", time.Second, nil)
	p.OnStageStart(ctx, "boundary")
	p.OnStageComplete(ctx, "boundary", time.Millisecond)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "layout")
	c.OnCacheMiss(ctx, "layout")
	c.OnCacheSet(ctx, "layout", 1024)

	s := NoopServerHooks{}
	s.OnRequest(ctx, "req-1", "POST", "/v1/layout")
	s.OnResponse(ctx, "req-1", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Server().(NoopServerHooks); !ok {
		t.Error("Server() should return NoopServerHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customServer := &testServerHooks{}
	SetServerHooks(customServer)
	if Server() != customServer {
		t.Error("SetServerHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	Reset()
}

func TestStageEventsReachCustomHooks(t *testing.T) {
	Reset()
	defer Reset()

	rec := &testPipelineHooks{}
	SetPipelineHooks(rec)

	ctx := context.Background()
	Pipeline().OnStageStart(ctx, "lanes")
	Pipeline().OnStageComplete(ctx, "lanes", time.Millisecond)

	if got := rec.stages(); len(got) != 1 || got[0] != "lanes" {
		t.Errorf("stages = %v, want [lanes]", got)
	}
}

type testPipelineHooks struct {
	NoopPipelineHooks
	mu        sync.Mutex
	completed []string
}

func (h *testPipelineHooks) OnStageComplete(_ context.Context, stage string, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.completed = append(h.completed, stage)
}

func (h *testPipelineHooks) stages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.completed...)
}

type testCacheHooks struct{ NoopCacheHooks }
type testServerHooks struct{ NoopServerHooks }
