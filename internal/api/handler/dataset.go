package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Talin12/DataSage/pkg/apierr"
	"github.com/Talin12/DataSage/pkg/models"
)

const defaultSampleRows = 5

// DatasetStore is the read side of dataset storage.
type DatasetStore interface {
	ListDatasets(ctx context.Context) ([]models.Dataset, error)
	GetDataset(ctx context.Context, id int64) (models.Dataset, error)
	SampleRecords(ctx context.Context, datasetID int64, n int) ([]json.RawMessage, error)
}

type DatasetHandler struct {
	logger *slog.Logger
	store  DatasetStore
}

func NewDatasetHandler(logger *slog.Logger, s DatasetStore) *DatasetHandler {
	return &DatasetHandler{logger: logger, store: s}
}

func (h *DatasetHandler) List(w http.ResponseWriter, r *http.Request) {
	datasets, err := h.store.ListDatasets(r.Context())
	if err != nil {
		writeAPIError(w, h.logger, apierr.DatasetListFailed(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"datasets": datasets})
}

func (h *DatasetHandler) Sample(w http.ResponseWriter, r *http.Request) {
	id, apiErr := datasetIDParam(r)
	if apiErr != nil {
		writeAPIError(w, h.logger, apiErr)
		return
	}

	ds, err := h.store.GetDataset(r.Context(), id)
	if err != nil {
		if apierr.IsNotFound(err) {
			writeAPIError(w, h.logger, apierr.DatasetNotFound())
			return
		}
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}

	sample, err := h.store.SampleRecords(r.Context(), id, limitParam(r, defaultSampleRows, 100))
	if err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}

	writeJSON(w, http.StatusOK, models.DatasetSample{
		DatasetID:   ds.ID,
		DatasetName: ds.Name,
		Sample:      sample,
	})
}
