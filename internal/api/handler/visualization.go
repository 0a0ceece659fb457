package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Talin12/DataSage/internal/render"
	minioclient "github.com/Talin12/DataSage/internal/store/minio"
	"github.com/Talin12/DataSage/internal/store/postgres"
	"github.com/Talin12/DataSage/pkg/apierr"
	"github.com/Talin12/DataSage/pkg/models"
)

type VisualizationStore interface {
	SaveVisualization(ctx context.Context, arg postgres.SaveVisualizationParams) (models.Visualization, error)
	GetVisualization(ctx context.Context, id uuid.UUID) (models.Visualization, error)
	ListVisualizations(ctx context.Context, limit int) ([]models.Visualization, error)
	SetSnapshotKey(ctx context.Context, id uuid.UUID, key string) error
}

// SnapshotStore keeps rendered trees as objects. *minio.Client satisfies it.
type SnapshotStore interface {
	PutSnapshot(ctx context.Context, key string, v any) error
	GetSnapshot(ctx context.Context, key string) (json.RawMessage, error)
}

type VisualizationHandler struct {
	logger    *slog.Logger
	store     VisualizationStore
	snapshots SnapshotStore
	pipeline  *render.Pipeline
}

// NewVisualizationHandler wires the saved visualization routes. snapshots
// may be nil, in which case no snapshot is written.
func NewVisualizationHandler(logger *slog.Logger, s VisualizationStore, snapshots SnapshotStore, pipeline *render.Pipeline) *VisualizationHandler {
	return &VisualizationHandler{logger: logger, store: s, snapshots: snapshots, pipeline: pipeline}
}

type visualizationResponse struct {
	Visualization models.Visualization `json:"visualization"`
	Tree          render.Tree          `json:"tree"`
}

func (h *VisualizationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DatasetID  *int64          `json:"dataset_id"`
		Prompt     string          `json:"prompt"`
		RenderPlan json.RawMessage `json:"render_plan"`
	}
	if apiErr := decodeBody(w, r, &req); apiErr != nil {
		writeAPIError(w, h.logger, apiErr)
		return
	}
	if apiErr := validatePrompt(req.Prompt); apiErr != nil {
		writeAPIError(w, h.logger, apiErr)
		return
	}

	env, err := render.DecodeEnvelope(req.RenderPlan)
	if err != nil {
		writeAPIError(w, h.logger, apierr.EnvelopeInvalid(err).WithDetail(err.Error()))
		return
	}

	v, err := h.store.SaveVisualization(r.Context(), postgres.SaveVisualizationParams{
		ID:         uuid.New(),
		DatasetID:  req.DatasetID,
		Prompt:     req.Prompt,
		RenderPlan: req.RenderPlan,
	})
	if err != nil {
		writeAPIError(w, h.logger, apierr.VisualizationSaveFailed(err))
		return
	}

	tree := h.pipeline.Render(r.Context(), env)
	if h.snapshots != nil {
		v.SnapshotKey = h.storeSnapshot(r.Context(), v.ID, tree)
	}

	writeJSON(w, http.StatusCreated, visualizationResponse{Visualization: v, Tree: tree})
}

// storeSnapshot writes tree to object storage and records its key. Failures
// are logged; the visualization itself is already saved.
func (h *VisualizationHandler) storeSnapshot(ctx context.Context, id uuid.UUID, tree render.Tree) string {
	key := minioclient.SnapshotKey(id.String())
	if err := h.snapshots.PutSnapshot(ctx, key, tree); err != nil {
		h.logger.Warn("store snapshot", slog.String("id", id.String()), slog.String("error", err.Error()))
		return ""
	}
	if err := h.store.SetSnapshotKey(ctx, id, key); err != nil {
		h.logger.Warn("record snapshot key", slog.String("id", id.String()), slog.String("error", err.Error()))
		return ""
	}
	return key
}

// Get returns the saved visualization with its plan rendered fresh.
func (h *VisualizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, ok := h.lookup(w, r)
	if !ok {
		return
	}

	env, err := render.DecodeEnvelope(v.RenderPlan)
	if err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}

	writeJSON(w, http.StatusOK, visualizationResponse{
		Visualization: v,
		Tree:          h.pipeline.Render(r.Context(), env),
	})
}

// Snapshot returns the tree stored when the visualization was saved.
func (h *VisualizationHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		writeAPIError(w, h.logger, apierr.NotImplemented("Snapshot storage"))
		return
	}

	v, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if v.SnapshotKey == "" {
		writeAPIError(w, h.logger, apierr.SnapshotNotFound())
		return
	}

	data, err := h.snapshots.GetSnapshot(r.Context(), v.SnapshotKey)
	if err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *VisualizationHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListVisualizations(r.Context(), limitParam(r, 20, 100))
	if err != nil {
		writeAPIError(w, h.logger, apierr.VisualizationListFailed(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"visualizations": items})
}

func (h *VisualizationHandler) lookup(w http.ResponseWriter, r *http.Request) (models.Visualization, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeAPIError(w, h.logger, apierr.InvalidID("visualization"))
		return models.Visualization{}, false
	}

	v, err := h.store.GetVisualization(r.Context(), id)
	if err != nil {
		if apierr.IsNotFound(err) {
			writeAPIError(w, h.logger, apierr.VisualizationNotFound())
			return models.Visualization{}, false
		}
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return models.Visualization{}, false
	}
	return v, true
}
