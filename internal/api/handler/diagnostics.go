package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Talin12/DataSage/internal/diag"
	"github.com/Talin12/DataSage/pkg/apierr"
)

// DiagnosticsReader lists recent render diagnostics. *diag.StreamSink
// satisfies it.
type DiagnosticsReader interface {
	Recent(ctx context.Context, limit int) ([]diag.Entry, error)
}

type DiagnosticsHandler struct {
	logger *slog.Logger
	reader DiagnosticsReader
}

func NewDiagnosticsHandler(logger *slog.Logger, reader DiagnosticsReader) *DiagnosticsHandler {
	return &DiagnosticsHandler{logger: logger, reader: reader}
}

func (h *DiagnosticsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.reader == nil {
		writeAPIError(w, h.logger, apierr.NotImplemented("Diagnostics stream"))
		return
	}

	entries, err := h.reader.Recent(r.Context(), limitParam(r, 50, 500))
	if err != nil {
		writeAPIError(w, h.logger, apierr.DiagnosticsFailed(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"diagnostics": entries})
}
