package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/Talin12/DataSage/internal/render"
	"github.com/Talin12/DataSage/pkg/apierr"
)

type RenderHandler struct {
	logger   *slog.Logger
	pipeline *render.Pipeline
}

func NewRenderHandler(logger *slog.Logger, pipeline *render.Pipeline) *RenderHandler {
	return &RenderHandler{logger: logger, pipeline: pipeline}
}

// Render turns a result envelope in any supported dialect into a render
// tree.
func (h *RenderHandler) Render(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeAPIError(w, h.logger, apierr.InvalidRequestBody())
		return
	}

	env, err := render.DecodeEnvelope(body)
	if err != nil {
		writeAPIError(w, h.logger, apierr.EnvelopeInvalid(err).WithDetail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, h.pipeline.Render(r.Context(), env))
}
