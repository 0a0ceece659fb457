package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/Talin12/DataSage/pkg/models"
)

type SaveVisualizationParams struct {
	ID          uuid.UUID
	DatasetID   *int64
	Prompt      string
	RenderPlan  json.RawMessage
	SnapshotKey string
}

const saveVisualization = `INSERT INTO saved_visualizations (id, dataset_id, prompt, render_plan, snapshot_key)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, dataset_id, prompt, render_plan, snapshot_key, created_at`

func (q *Queries) SaveVisualization(ctx context.Context, arg SaveVisualizationParams) (models.Visualization, error) {
	row := q.db.QueryRow(ctx, saveVisualization,
		arg.ID, arg.DatasetID, arg.Prompt, []byte(arg.RenderPlan), arg.SnapshotKey)
	return scanVisualization(row)
}

const getVisualization = `SELECT id, dataset_id, prompt, render_plan, snapshot_key, created_at
FROM saved_visualizations
WHERE id = $1`

func (q *Queries) GetVisualization(ctx context.Context, id uuid.UUID) (models.Visualization, error) {
	return scanVisualization(q.db.QueryRow(ctx, getVisualization, id))
}

const listVisualizations = `SELECT id, dataset_id, prompt, render_plan, snapshot_key, created_at
FROM saved_visualizations
ORDER BY created_at DESC
LIMIT $1`

func (q *Queries) ListVisualizations(ctx context.Context, limit int) ([]models.Visualization, error) {
	rows, err := q.db.Query(ctx, listVisualizations, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.Visualization{}
	for rows.Next() {
		i, err := scanVisualization(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const setSnapshotKey = `UPDATE saved_visualizations SET snapshot_key = $2 WHERE id = $1`

func (q *Queries) SetSnapshotKey(ctx context.Context, id uuid.UUID, key string) error {
	_, err := q.db.Exec(ctx, setSnapshotKey, id, key)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVisualization(row rowScanner) (models.Visualization, error) {
	var (
		i    models.Visualization
		plan []byte
	)
	err := row.Scan(&i.ID, &i.DatasetID, &i.Prompt, &plan, &i.SnapshotKey, &i.CreatedAt)
	i.RenderPlan = json.RawMessage(plan)
	return i, err
}
