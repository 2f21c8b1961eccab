package metrics

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveQuestionCountsOutcomeAndStage(t *testing.T) {
	answeredBefore := testutil.ToFloat64(questionsTotal.WithLabelValues("answered"))
	failedBefore := testutil.ToFloat64(questionsTotal.WithLabelValues("failed"))
	stageBefore := testutil.ToFloat64(stageFailuresTotal.WithLabelValues("query-execution"))

	ObserveQuestion("")
	ObserveQuestion("query-execution")

	if got := testutil.ToFloat64(questionsTotal.WithLabelValues("answered")) - answeredBefore; got != 1 {
		t.Fatalf("answered delta = %v", got)
	}
	if got := testutil.ToFloat64(questionsTotal.WithLabelValues("failed")) - failedBefore; got != 1 {
		t.Fatalf("failed delta = %v", got)
	}
	if got := testutil.ToFloat64(stageFailuresTotal.WithLabelValues("query-execution")) - stageBefore; got != 1 {
		t.Fatalf("stage failure delta = %v", got)
	}
}

func TestObserveStageRecordsHistogram(t *testing.T) {
	ObserveStage("model-call", 150*time.Millisecond)
	if n := testutil.CollectAndCount(stageDurationSeconds); n == 0 {
		t.Fatal("expected at least one stage duration series")
	}
}

func TestAddSeedRowsIgnoresNonPositive(t *testing.T) {
	before := testutil.ToFloat64(seedRowsTotal)
	AddSeedRows(0)
	AddSeedRows(-3)
	AddSeedRows(10)
	if got := testutil.ToFloat64(seedRowsTotal) - before; got != 10 {
		t.Fatalf("seed rows delta = %v", got)
	}
}

func TestTraceMiddlewarePreservesIncomingTraceID(t *testing.T) {
	h := TraceMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := TraceIDFromContext(r.Context()); got != "trace-1" {
			t.Fatalf("TraceIDFromContext() = %q", got)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(traceHeader, "trace-1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get(traceHeader); got != "trace-1" {
		t.Fatalf("trace header = %q", got)
	}
}

func TestTraceMiddlewareGeneratesTraceID(t *testing.T) {
	rr := httptest.NewRecorder()
	TraceMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Header().Get(traceHeader) == "" {
		t.Fatal("expected X-Trace-ID header")
	}
}

func TestTraceIDContextHelpers(t *testing.T) {
	ctx := ContextWithTraceID(context.Background(), "abc123")
	if got := TraceIDFromContext(ctx); got != "abc123" {
		t.Fatalf("TraceIDFromContext() = %q", got)
	}
}

func TestMiddlewareRecordsStatus(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	h := LoggingMiddleware(logger)(MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/brew", "418"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/brew", nil))
	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/brew", "418")) - before; got != 1 {
		t.Fatalf("requests delta = %v", got)
	}
}
