package observability

import (
	"context"
	"testing"
	"time"
)

type countingPipelineHooks struct {
	NoopPipelineHooks
	buildStarts int
}

func (h *countingPipelineHooks) OnBuildStart(ctx context.Context, presetName string, recordCount int) {
	h.buildStarts++
}

type countingCacheHooks struct {
	NoopCacheHooks
	hits int
}

func (h *countingCacheHooks) OnCacheHit(ctx context.Context, keyType string) {
	h.hits++
}

func TestHookRegistration(t *testing.T) {
	defer Reset()

	ph := &countingPipelineHooks{}
	ch := &countingCacheHooks{}
	SetPipelineHooks(ph)
	SetCacheHooks(ch)

	Pipeline().OnBuildStart(context.Background(), "hub-spoke", 3)
	Cache().OnCacheHit(context.Background(), "doc")

	if ph.buildStarts != 1 {
		t.Errorf("buildStarts = %d, want 1", ph.buildStarts)
	}
	if ch.hits != 1 {
		t.Errorf("hits = %d, want 1", ch.hits)
	}
}

func TestSetNilKeepsCurrent(t *testing.T) {
	defer Reset()

	ph := &countingPipelineHooks{}
	SetPipelineHooks(ph)
	SetPipelineHooks(nil)

	Pipeline().OnBuildStart(context.Background(), "x", 0)
	if ph.buildStarts != 1 {
		t.Errorf("nil registration replaced the hooks")
	}
}

func TestReset(t *testing.T) {
	ph := &countingPipelineHooks{}
	SetPipelineHooks(ph)
	Reset()

	Pipeline().OnBuildStart(context.Background(), "x", 0)
	Pipeline().OnBuildComplete(context.Background(), "x", 0, time.Millisecond, nil)
	if ph.buildStarts != 0 {
		t.Errorf("Reset() did not restore the no-op hooks")
	}
}
