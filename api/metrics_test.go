package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) (*sdktrace.TracerProvider, *tracetest.InMemoryExporter, func()) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
	)
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	cleanup := func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("shutdown tracer provider: %v", err)
		}
		otel.SetTracerProvider(prev)
	}
	return tp, exporter, cleanup
}

func attributesToMap(attrs []attribute.KeyValue) map[string]any {
	out := make(map[string]any, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}
	return out
}

func TestRequestMetricsLog(t *testing.T) {
	logger, hook := test.NewNullLogger()
	tp, exporter, restore := setupTestTracer(t)
	defer restore()

	m, _ := newRequestMetrics(context.Background(), logger, "GET /tasks")
	m.start = m.start.Add(-50 * time.Millisecond)
	m.ObserveAuth(10 * time.Millisecond)
	m.ObserveFetch(15 * time.Millisecond)
	m.ObserveEncode(5 * time.Millisecond)
	m.SetItemsReturned(3)

	m.Log(http.StatusOK, nil)

	if err := tp.ForceFlush(context.Background()); err != nil {
		t.Fatalf("force flush spans: %v", err)
	}
	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected one span, got %d", len(spans))
	}
	if spans[0].Name != "GET /tasks" {
		t.Fatalf("unexpected span name %q", spans[0].Name)
	}
	attrs := attributesToMap(spans[0].Attributes)
	if attrs["items_returned"] != int64(3) {
		t.Fatalf("unexpected items attribute: %#v", attrs["items_returned"])
	}
	if attrs["http.status"] != int64(http.StatusOK) {
		t.Fatalf("unexpected status attribute: %#v", attrs["http.status"])
	}

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a log entry")
	}
	if entry.Level != log.InfoLevel {
		t.Fatalf("unexpected level %v", entry.Level)
	}
	if entry.Data["route"] != "GET /tasks" || entry.Data["items_returned"] != 3 {
		t.Fatalf("unexpected fields %v", entry.Data)
	}
	if entry.Data["total_ms"].(float64) <= 0 {
		t.Fatalf("expected positive total duration, got %v", entry.Data["total_ms"])
	}
}

func TestRequestMetricsLogError(t *testing.T) {
	logger, hook := test.NewNullLogger()
	tp, exporter, restore := setupTestTracer(t)
	defer restore()

	m, _ := newRequestMetrics(context.Background(), logger, "GET /tasks")
	m.SetErrorStage("fetch")
	boom := errors.New("storage failure")

	m.Log(http.StatusInternalServerError, boom)

	if err := tp.ForceFlush(context.Background()); err != nil {
		t.Fatalf("force flush spans: %v", err)
	}
	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected one span, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Fatalf("expected error span status, got %v", spans[0].Status.Code)
	}
	attrs := attributesToMap(spans[0].Attributes)
	if attrs["error_stage"] != "fetch" {
		t.Fatalf("expected error stage attribute, got %#v", attrs["error_stage"])
	}

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a log entry")
	}
	if entry.Level != log.ErrorLevel {
		t.Fatalf("unexpected level %v", entry.Level)
	}
	if entry.Data["error"] != boom.Error() {
		t.Fatalf("expected error field, got %v", entry.Data["error"])
	}
}

func TestSeverityForStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		err    error
		want   log.Level
	}{
		{"ok", http.StatusOK, nil, log.InfoLevel},
		{"client error", http.StatusBadRequest, nil, log.WarnLevel},
		{"server error", http.StatusInternalServerError, nil, log.ErrorLevel},
		{"error overrides status", http.StatusOK, errors.New("x"), log.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := severityForStatus(tt.status, tt.err); got != tt.want {
				t.Fatalf("severityForStatus(%d, %v) = %v, want %v", tt.status, tt.err, got, tt.want)
			}
		})
	}
}
