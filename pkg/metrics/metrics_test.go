package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordPipelineRun(t *testing.T) {
	before := testutil.ToFloat64(PipelineRuns.WithLabelValues("no_candidates"))
	RecordPipelineRun("no_candidates")
	after := testutil.ToFloat64(PipelineRuns.WithLabelValues("no_candidates"))

	if after-before != 1 {
		t.Errorf("expected counter to increase by 1, got %v", after-before)
	}
}

func TestRecordCatalogRequest(t *testing.T) {
	okBefore := testutil.ToFloat64(CatalogRequests.WithLabelValues("discover", "ok"))
	errBefore := testutil.ToFloat64(CatalogRequests.WithLabelValues("discover", "error"))

	RecordCatalogRequest("discover", 20*time.Millisecond, nil)
	RecordCatalogRequest("discover", 5*time.Second, errors.New("timeout"))

	if got := testutil.ToFloat64(CatalogRequests.WithLabelValues("discover", "ok")) - okBefore; got != 1 {
		t.Errorf("ok delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(CatalogRequests.WithLabelValues("discover", "error")) - errBefore; got != 1 {
		t.Errorf("error delta = %v, want 1", got)
	}
}

func TestRecordThumbnailFallback(t *testing.T) {
	before := testutil.ToFloat64(ThumbnailFallbacks)
	RecordThumbnailFallback()
	RecordThumbnailFallback()
	if got := testutil.ToFloat64(ThumbnailFallbacks) - before; got != 2 {
		t.Errorf("fallback delta = %v, want 2", got)
	}
}

func TestObserveStage(t *testing.T) {
	// Should not panic for any known stage.
	for _, stage := range []string{StageTranslate, StageResolve, StageDiscover, StageEnrich, StagePersist} {
		ObserveStage(stage, time.Now().Add(-time.Millisecond))
	}
	if n := testutil.CollectAndCount(PipelineStageDuration); n < 5 {
		t.Errorf("expected at least 5 stage series, got %d", n)
	}
}
