// Package diag provides sinks for render diagnostics: structured logging,
// a capped Valkey stream for later inspection, and fan-out to several sinks.
package diag

import (
	"context"
	"log/slog"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Talin12/DataSage/internal/render"
)

// LogSink writes every diagnostic as a structured warning.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Report(ctx context.Context, d render.Diagnostic) {
	attrs := []any{
		slog.Int("block_index", d.BlockIndex),
		slog.String("stage", string(d.Stage)),
		slog.String("error", d.ErrorMessage),
	}
	if reqID := chimw.GetReqID(ctx); reqID != "" {
		attrs = append(attrs, slog.String("request_id", reqID))
	}
	s.logger.WarnContext(ctx, "block render degraded", attrs...)
}

// Multi fans a diagnostic out to every non-nil sink, in order.
func Multi(sinks ...render.Sink) render.Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

type multi []render.Sink

func (m multi) Report(ctx context.Context, d render.Diagnostic) {
	for _, s := range m {
		s.Report(ctx, d)
	}
}
