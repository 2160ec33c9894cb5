package board

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	intentTracerName = "innoboard/board"
	intentSpanName   = "board.intent"
	intentEventName  = "board.intent.completed"
)

// intentMetrics accumulates per-intent observability data: one span
// covering the whole intent (optimistic apply through reconciliation)
// and one structured log entry emitted when the intent completes.
type intentMetrics struct {
	logger       *log.Logger
	span         trace.Span
	start        time.Time
	intentID     string
	intent       string
	taskID       string
	callDuration time.Duration
	rolledBack   bool
}

func newIntentMetrics(ctx context.Context, logger *log.Logger, intent, taskID string) (*intentMetrics, context.Context) {
	intentID := uuid.NewString()
	attrs := []attribute.KeyValue{
		attribute.String("board.intent.id", intentID),
		attribute.String("board.intent.type", intent),
	}
	if taskID != "" {
		attrs = append(attrs, attribute.String("board.task.id", taskID))
	}
	ctx, span := otel.Tracer(intentTracerName).Start(ctx, intentSpanName, trace.WithAttributes(attrs...))
	return &intentMetrics{
		logger:   logger,
		span:     span,
		start:    time.Now(),
		intentID: intentID,
		intent:   intent,
		taskID:   taskID,
	}, ctx
}

// ObserveCall records how long the remote call took.
func (m *intentMetrics) ObserveCall(d time.Duration) {
	if d <= 0 {
		return
	}
	m.callDuration = d
}

// SetRolledBack marks that the optimistic mutation was reverted.
func (m *intentMetrics) SetRolledBack() {
	m.rolledBack = true
}

// Log ends the span and emits the completion entry. err is the remote
// failure, nil on success.
func (m *intentMetrics) Log(err error) {
	if m == nil {
		return
	}

	fields := log.Fields{
		"event.name":  intentEventName,
		"intent_id":   m.intentID,
		"intent":      m.intent,
		"total_ms":    durationToMillis(time.Since(m.start)),
		"rolled_back": m.rolledBack,
	}
	if m.taskID != "" {
		fields["task_id"] = m.taskID
	}
	if m.callDuration > 0 {
		fields["call_ms"] = durationToMillis(m.callDuration)
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	if m.span != nil {
		m.span.SetAttributes(attribute.Bool("board.intent.rolled_back", m.rolledBack))
		if err != nil {
			m.span.SetStatus(codes.Error, err.Error())
		} else {
			m.span.SetStatus(codes.Ok, "")
		}
		if sc := m.span.SpanContext(); sc.HasTraceID() {
			fields["trace_id"] = sc.TraceID().String()
		}
		m.span.End()
	}

	if m.logger == nil {
		return
	}
	if err != nil {
		m.logger.WithFields(fields).Warn("observability.event")
		return
	}
	m.logger.WithFields(fields).Info("observability.event")
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
