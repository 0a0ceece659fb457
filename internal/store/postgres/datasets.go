package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"

	"github.com/Talin12/DataSage/pkg/models"
)

const listDatasets = `SELECT id, name, description, metadata, created_at
FROM datasets
ORDER BY id`

func (q *Queries) ListDatasets(ctx context.Context) ([]models.Dataset, error) {
	rows, err := q.db.Query(ctx, listDatasets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.Dataset{}
	for rows.Next() {
		var i models.Dataset
		if err := rows.Scan(&i.ID, &i.Name, &i.Description, &i.Metadata, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getDataset = `SELECT id, name, description, metadata, created_at
FROM datasets
WHERE id = $1`

func (q *Queries) GetDataset(ctx context.Context, id int64) (models.Dataset, error) {
	var i models.Dataset
	err := q.db.QueryRow(ctx, getDataset, id).Scan(
		&i.ID, &i.Name, &i.Description, &i.Metadata, &i.CreatedAt,
	)
	return i, err
}

const getDatasetByName = `SELECT id, name, description, metadata, created_at
FROM datasets
WHERE name = $1
ORDER BY id
LIMIT 1`

func (q *Queries) GetDatasetByName(ctx context.Context, name string) (models.Dataset, error) {
	var i models.Dataset
	err := q.db.QueryRow(ctx, getDatasetByName, name).Scan(
		&i.ID, &i.Name, &i.Description, &i.Metadata, &i.CreatedAt,
	)
	return i, err
}

type CreateDatasetParams struct {
	Name        string
	Description string
	Metadata    map[string]string
}

const createDataset = `INSERT INTO datasets (name, description, metadata)
VALUES ($1, $2, $3)
RETURNING id, name, description, metadata, created_at`

func (q *Queries) CreateDataset(ctx context.Context, arg CreateDatasetParams) (models.Dataset, error) {
	metadata, err := json.Marshal(arg.Metadata)
	if err != nil {
		return models.Dataset{}, err
	}
	var i models.Dataset
	err = q.db.QueryRow(ctx, createDataset, arg.Name, arg.Description, metadata).Scan(
		&i.ID, &i.Name, &i.Description, &i.Metadata, &i.CreatedAt,
	)
	return i, err
}

const deleteDataset = `DELETE FROM datasets WHERE id = $1`

func (q *Queries) DeleteDataset(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, deleteDataset, id)
	return err
}

const sampleRecords = `SELECT row_data
FROM records
WHERE dataset_id = $1
ORDER BY id
LIMIT $2`

// SampleRecords returns the first n rows of a dataset in insertion order.
func (q *Queries) SampleRecords(ctx context.Context, datasetID int64, n int) ([]json.RawMessage, error) {
	rows, err := q.db.Query(ctx, sampleRecords, datasetID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []json.RawMessage{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		items = append(items, json.RawMessage(raw))
	}
	return items, rows.Err()
}

const countRecords = `SELECT count(*) FROM records WHERE dataset_id = $1`

func (q *Queries) CountRecords(ctx context.Context, datasetID int64) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countRecords, datasetID).Scan(&n)
	return n, err
}

// InsertRecords bulk-loads rows with COPY.
func (q *Queries) InsertRecords(ctx context.Context, datasetID int64, rows []json.RawMessage) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	return q.db.CopyFrom(ctx,
		pgx.Identifier{"records"},
		[]string{"dataset_id", "row_data"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			return []any{datasetID, rows[i]}, nil
		}),
	)
}
