package grid

import (
	"context"
	"log/slog"
)

// Telemetry records grid events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

// NormalizeTelemetry returns t, or a no-op recorder when t is nil.
func NormalizeTelemetry(t Telemetry) Telemetry {
	return normalizeTelemetry(t)
}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// SlogTelemetry writes telemetry events as structured log records.
type SlogTelemetry struct {
	Logger *slog.Logger
	Level  slog.Level
}

// NewSlogTelemetry logs events at debug level on logger (slog.Default when nil).
func NewSlogTelemetry(logger *slog.Logger) *SlogTelemetry {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogTelemetry{Logger: logger, Level: slog.LevelDebug}
}

// Record implements Telemetry.
func (t *SlogTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	if t == nil || t.Logger == nil {
		return
	}
	attrs := make([]slog.Attr, 0, len(payload))
	for key, value := range payload {
		attrs = append(attrs, slog.Any(key, value))
	}
	t.Logger.LogAttrs(ctx, t.Level, event, attrs...)
}

// SlogNotifier reports notifications through a logger. Useful for headless
// runs where no toast service exists.
type SlogNotifier struct {
	Logger *slog.Logger
}

// Error implements Notifier.
func (n SlogNotifier) Error(note Notification) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error(note.Message, "description", note.Description)
}
