// Package telemetry provides the pipeline's per-run logging and tracing
// scaffolding (spec §10.1, §11.4): one logrus entry per run carrying a
// run_id and stage field, and an OpenTelemetry span tree parented under a
// run span, with no exporter wired by default.
package telemetry

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/gigainfosystems/buffi"

// NewRunID returns a fresh v4 UUID identifying one pipeline run. Logged
// alongside every stage's log lines and attached as a trace attribute on
// the run's root span.
func NewRunID() string {
	return uuid.NewString()
}

// Run bundles the logger and tracer state threaded through one pipeline
// invocation: a run_id, a *logrus.Entry pre-populated with it, and the
// root span the seven pipeline stages nest their own spans under.
type Run struct {
	ID     string
	Logger *logrus.Entry
	ctx    context.Context
	end    func()
}

// NewRun starts a new run: mints a run_id, opens the root span, and
// returns a logger pre-populated with run_id so every subsequent log line
// carries it without repeating the field at each call site.
//
// When no global TracerProvider has been configured (the default), spans
// are recorded against a no-op provider — the instrumentation points are
// real and exercised, but nothing is exported unless the host process
// calls otel.SetTracerProvider itself (spec §11.4).
func NewRun(ctx context.Context, logger *logrus.Logger) (*Run, context.Context) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	runID := NewRunID()
	entry := logger.WithField("run_id", runID)

	tracer := tracerOrNoop()
	spanCtx, span := tracer.Start(ctx, "buffi.generate")
	span.SetAttributes(attribute.String("run_id", runID))

	return &Run{
		ID:     runID,
		Logger: entry,
		ctx:    spanCtx,
		end:    func() { span.End() },
	}, spanCtx
}

// End closes the run's root span. Call via defer immediately after NewRun.
func (r *Run) End() {
	if r != nil && r.end != nil {
		r.end()
	}
}

// StageLogger returns a logger scoped to one pipeline stage, carrying both
// run_id and stage fields (spec §10.1).
func (r *Run) StageLogger(stage string) *logrus.Entry {
	return r.Logger.WithField("stage", stage)
}

// StartStage opens a child span for one of the seven pipeline stages,
// named after it, and returns the stage's logger alongside a function
// that records output-size attributes and ends the span. Call the
// returned function via defer immediately.
func (r *Run) StartStage(ctx context.Context, stage string) (context.Context, *logrus.Entry, func(attrs ...attribute.KeyValue)) {
	tracer := tracerOrNoop()
	spanCtx, span := tracer.Start(ctx, "buffi."+stage)
	log := r.StageLogger(stage)
	log.Info("stage started")
	return spanCtx, log, func(attrs ...attribute.KeyValue) {
		span.SetAttributes(attrs...)
		span.End()
	}
}

// tracerOrNoop returns the tracer for the configured global TracerProvider.
// otel.GetTracerProvider defaults to a no-op provider until a host process
// calls otel.SetTracerProvider, so this never needs its own fallback.
func tracerOrNoop() trace.Tracer {
	return otel.GetTracerProvider().Tracer(tracerName)
}
