package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Talin12/DataSage/internal/query"
	"github.com/Talin12/DataSage/internal/render"
	"github.com/Talin12/DataSage/pkg/apierr"
)

// Asker answers a prompt against a dataset. *query.Engine satisfies it.
type Asker interface {
	Ask(ctx context.Context, datasetID int64, prompt string) (*query.Envelope, error)
}

type AskHandler struct {
	logger   *slog.Logger
	engine   Asker
	pipeline *render.Pipeline
}

// NewAskHandler returns a handler for the ask and dashboard routes. A nil
// engine answers both with 501.
func NewAskHandler(logger *slog.Logger, engine Asker, pipeline *render.Pipeline) *AskHandler {
	return &AskHandler{logger: logger, engine: engine, pipeline: pipeline}
}

type askRequest struct {
	DatasetID *int64 `json:"dataset_id"`
	Prompt    string `json:"prompt"`
}

// Ask returns the raw result envelope.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	env, apiErr := h.ask(w, r)
	if apiErr != nil {
		writeAPIError(w, h.logger, apiErr)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

// Dashboard asks and renders in one round trip. Any failure before the
// envelope exists is reported as a single error; nothing is rendered.
func (h *AskHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	env, apiErr := h.ask(w, r)
	if apiErr != nil {
		writeAPIError(w, h.logger, apiErr)
		return
	}

	data, err := json.Marshal(env)
	if err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}
	decoded, err := render.DecodeEnvelope(data)
	if err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}

	writeJSON(w, http.StatusOK, h.pipeline.Render(r.Context(), decoded))
}

func (h *AskHandler) ask(w http.ResponseWriter, r *http.Request) (*query.Envelope, *apierr.Error) {
	if h.engine == nil {
		return nil, apierr.NotImplemented("AI query engine")
	}

	var req askRequest
	if apiErr := decodeBody(w, r, &req); apiErr != nil {
		return nil, apiErr
	}
	if apiErr := validateDatasetID(req.DatasetID); apiErr != nil {
		return nil, apiErr
	}
	if apiErr := validatePrompt(req.Prompt); apiErr != nil {
		return nil, apiErr
	}

	env, err := h.engine.Ask(r.Context(), *req.DatasetID, req.Prompt)
	if err != nil {
		return nil, askError(err)
	}
	return env, nil
}

func askError(err error) *apierr.Error {
	switch {
	case errors.Is(err, query.ErrPromptRequired):
		return apierr.PromptRequired()
	case apierr.IsNotFound(err):
		return apierr.DatasetNotFound()
	case errors.Is(err, query.ErrPlanUnparseable), errors.Is(err, query.ErrPlanShape):
		return apierr.PlanUnparseable(err).WithDetail(err.Error())
	default:
		return apierr.QueryFailed(err)
	}
}
