package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Resolution hooks
	r := NoopResolutionHooks{}
	r.OnBatchStart(ctx, 3)
	r.OnWave(ctx, 1, 3)
	r.OnNodeResolved(ctx, "left-pad@1.3.0", 2, nil)
	r.OnBatchComplete(ctx, 3, 0, time.Second)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "http")
	c.OnCacheMiss(ctx, "http")
	c.OnCacheSet(ctx, "http", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "registry.npmjs.org", "/left-pad")
	h.OnResponse(ctx, "GET", "registry.npmjs.org", "/left-pad", 200, time.Second)
	h.OnError(ctx, "GET", "registry.npmjs.org", "/left-pad", nil)
}

type testResolutionHooks struct {
	NoopResolutionHooks
	batches int
}

func (h *testResolutionHooks) OnBatchStart(ctx context.Context, nodeCount int) {
	h.batches++
}

type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	// Verify defaults are noop
	if _, ok := Resolution().(NoopResolutionHooks); !ok {
		t.Error("Resolution() should return NoopResolutionHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customResolution := &testResolutionHooks{}
	SetResolutionHooks(customResolution)
	if Resolution() != customResolution {
		t.Error("SetResolutionHooks should set custom hooks")
	}
	Resolution().OnBatchStart(context.Background(), 1)
	if customResolution.batches != 1 {
		t.Errorf("batches = %d, want 1", customResolution.batches)
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Resolution().(NoopResolutionHooks); !ok {
		t.Error("Reset() should restore NoopResolutionHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testResolutionHooks{}
	SetResolutionHooks(custom)
	SetResolutionHooks(nil)
	if Resolution() != custom {
		t.Error("SetResolutionHooks(nil) should be ignored")
	}

	SetCacheHooks(nil)
	SetHTTPHooks(nil)

	Reset()
}
