package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Talin12/DataSage/internal/diag"
	"github.com/Talin12/DataSage/internal/query"
	"github.com/Talin12/DataSage/internal/store/postgres"
	"github.com/Talin12/DataSage/pkg/apierr"
	"github.com/Talin12/DataSage/pkg/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierr.ErrorResponse {
	t.Helper()
	var resp apierr.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code apierr.Code) {
	t.Helper()
	if w.Code != status {
		t.Errorf("expected %d, got %d", status, w.Code)
	}
	if resp := decodeError(t, w); resp.Error.Code != code {
		t.Errorf("expected code %s, got %s", code, resp.Error.Code)
	}
}

type fakeAsker struct {
	env    *query.Envelope
	err    error
	gotID  int64
	prompt string
}

func (f *fakeAsker) Ask(_ context.Context, datasetID int64, prompt string) (*query.Envelope, error) {
	f.gotID = datasetID
	f.prompt = prompt
	return f.env, f.err
}

type fakeDatasets struct {
	datasets []models.Dataset
	sample   []json.RawMessage
	err      error
	sampleN  int
}

func (f *fakeDatasets) ListDatasets(context.Context) ([]models.Dataset, error) {
	return f.datasets, f.err
}

func (f *fakeDatasets) GetDataset(_ context.Context, id int64) (models.Dataset, error) {
	if f.err != nil {
		return models.Dataset{}, f.err
	}
	for _, ds := range f.datasets {
		if ds.ID == id {
			return ds, nil
		}
	}
	return models.Dataset{}, pgx.ErrNoRows
}

func (f *fakeDatasets) SampleRecords(_ context.Context, _ int64, n int) ([]json.RawMessage, error) {
	f.sampleN = n
	return f.sample, nil
}

type fakeVisualizations struct {
	saved   map[uuid.UUID]models.Visualization
	saveErr error
	keys    map[uuid.UUID]string
}

func newFakeVisualizations() *fakeVisualizations {
	return &fakeVisualizations{saved: map[uuid.UUID]models.Visualization{}, keys: map[uuid.UUID]string{}}
}

func (f *fakeVisualizations) SaveVisualization(_ context.Context, arg postgres.SaveVisualizationParams) (models.Visualization, error) {
	if f.saveErr != nil {
		return models.Visualization{}, f.saveErr
	}
	v := models.Visualization{ID: arg.ID, DatasetID: arg.DatasetID, Prompt: arg.Prompt, RenderPlan: arg.RenderPlan}
	f.saved[arg.ID] = v
	return v, nil
}

func (f *fakeVisualizations) GetVisualization(_ context.Context, id uuid.UUID) (models.Visualization, error) {
	v, ok := f.saved[id]
	if !ok {
		return models.Visualization{}, pgx.ErrNoRows
	}
	v.SnapshotKey = f.keys[id]
	return v, nil
}

func (f *fakeVisualizations) ListVisualizations(_ context.Context, limit int) ([]models.Visualization, error) {
	items := []models.Visualization{}
	for _, v := range f.saved {
		if len(items) == limit {
			break
		}
		items = append(items, v)
	}
	return items, nil
}

func (f *fakeVisualizations) SetSnapshotKey(_ context.Context, id uuid.UUID, key string) error {
	f.keys[id] = key
	return nil
}

type fakeSnapshots struct {
	objects map[string][]byte
	putErr  error
}

func (f *fakeSnapshots) PutSnapshot(_ context.Context, key string, v any) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeSnapshots) GetSnapshot(_ context.Context, key string) (json.RawMessage, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

type fakeDiagnostics struct {
	entries []diag.Entry
	err     error
	limit   int
}

func (f *fakeDiagnostics) Recent(_ context.Context, limit int) ([]diag.Entry, error) {
	f.limit = limit
	return f.entries, f.err
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}
