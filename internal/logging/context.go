package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldPhase is the standardized key for the session phase (consent, practice, main).
	FieldPhase = "phase"
	// FieldTrial is the standardized key for the 1-based trial index within a block.
	FieldTrial = "trial"
	// FieldState is the standardized key for trial state machine states.
	FieldState = "state"
	// FieldEventType classifies warnings and errors for later filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to check next.
	FieldErrorHint = "error_hint"
	// FieldImpact describes the consequence of a warning for the dataset.
	FieldImpact = "impact"
)

type contextKey string

const (
	phaseKey contextKey = "phase"
	trialKey contextKey = "trial"
)

// WithPhase stamps the session phase on ctx.
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, phaseKey, phase)
}

// WithTrial stamps the 1-based trial index on ctx.
func WithTrial(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, trialKey, index)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if phase, ok := ctx.Value(phaseKey).(string); ok && phase != "" {
		fields = append(fields, slog.String(FieldPhase, phase))
	}
	if trial, ok := ctx.Value(trialKey).(int); ok && trial > 0 {
		fields = append(fields, slog.Int(FieldTrial, trial))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
