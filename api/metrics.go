package api

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "taskboard-api/api"

// requestMetrics collects per-request timings for the hot list routes and
// reports them once, as a span and a structured log line.
type requestMetrics struct {
	logger         *log.Logger
	route          string
	start          time.Time
	span           trace.Span
	authDuration   time.Duration
	fetchDuration  time.Duration
	encodeDuration time.Duration
	itemsReturned  int
	errorStage     string
}

func newRequestMetrics(ctx context.Context, logger *log.Logger, route string) (*requestMetrics, context.Context) {
	spanCtx, span := otel.Tracer(tracerName).Start(ctx, route)
	return &requestMetrics{
		logger: logger,
		route:  route,
		start:  time.Now(),
		span:   span,
	}, spanCtx
}

func (m *requestMetrics) ObserveAuth(d time.Duration) {
	if d > 0 {
		m.authDuration = d
	}
}

func (m *requestMetrics) ObserveFetch(d time.Duration) {
	if d > 0 {
		m.fetchDuration = d
	}
}

func (m *requestMetrics) ObserveEncode(d time.Duration) {
	if d > 0 {
		m.encodeDuration = d
	}
}

func (m *requestMetrics) SetItemsReturned(count int) {
	if count < 0 {
		count = 0
	}
	m.itemsReturned = count
}

func (m *requestMetrics) SetErrorStage(stage string) {
	if stage != "" {
		m.errorStage = stage
	}
}

// Log finishes the span and writes the summary line. Call exactly once.
func (m *requestMetrics) Log(status int, err error) {
	if m == nil {
		return
	}

	if m.span != nil {
		m.span.SetAttributes(
			attribute.String("route", m.route),
			attribute.Int("http.status", status),
			attribute.Int("items_returned", m.itemsReturned),
		)
		if m.errorStage != "" {
			m.span.SetAttributes(attribute.String("error_stage", m.errorStage))
		}
		if err != nil {
			m.span.RecordError(err)
			m.span.SetStatus(codes.Error, err.Error())
		}
		m.span.End()
	}

	if m.logger == nil {
		return
	}
	fields := log.Fields{
		"route":          m.route,
		"status":         status,
		"total_ms":       durationToMillis(time.Since(m.start)),
		"items_returned": m.itemsReturned,
	}
	if m.authDuration > 0 {
		fields["auth_ms"] = durationToMillis(m.authDuration)
	}
	if m.fetchDuration > 0 {
		fields["fetch_ms"] = durationToMillis(m.fetchDuration)
	}
	if m.encodeDuration > 0 {
		fields["encode_ms"] = durationToMillis(m.encodeDuration)
	}
	if m.errorStage != "" {
		fields["error_stage"] = m.errorStage
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	entry := m.logger.WithFields(fields)
	switch severityForStatus(status, err) {
	case log.ErrorLevel:
		entry.Error("request.metrics")
	case log.WarnLevel:
		entry.Warn("request.metrics")
	default:
		entry.Info("request.metrics")
	}
}

func severityForStatus(status int, err error) log.Level {
	switch {
	case err != nil || status >= 500:
		return log.ErrorLevel
	case status >= 400:
		return log.WarnLevel
	default:
		return log.InfoLevel
	}
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
