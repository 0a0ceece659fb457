package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Dataset is a named collection of JSON records. Metadata maps each column
// of the records to a loose type name ("string", "integer", "date", ...).
type Dataset struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata"`
	CreatedAt   time.Time         `json:"created_at"`
}

// DatasetSample is the preview returned for a dataset.
type DatasetSample struct {
	DatasetID   int64             `json:"dataset_id"`
	DatasetName string            `json:"dataset_name"`
	Sample      []json.RawMessage `json:"sample"`
}

// Visualization is a saved prompt together with the envelope it produced.
type Visualization struct {
	ID          uuid.UUID       `json:"id"`
	DatasetID   *int64          `json:"dataset_id,omitempty"`
	Prompt      string          `json:"prompt"`
	RenderPlan  json.RawMessage `json:"render_plan"`
	SnapshotKey string          `json:"snapshot_key,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
