// seed creates the schema and loads the demo sales dataset.
// Run from project root: go run ./cmd/seed
// Replace an existing copy: go run ./cmd/seed -force
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5"

	"github.com/Talin12/DataSage/internal/config"
	"github.com/Talin12/DataSage/internal/store"
	"github.com/Talin12/DataSage/internal/store/postgres"
)

func main() {
	rowCount := flag.Int("rows", defaultRows, "number of sale rows to generate")
	seed := flag.Uint64("seed", 42, "random seed for the generated rows")
	force := flag.Bool("force", false, "drop and recreate the dataset when it already exists")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	s := store.New(pool)
	if err := s.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	existing, err := s.GetDatasetByName(ctx, datasetName)
	switch {
	case err == nil && !*force:
		n, _ := s.CountRecords(ctx, existing.ID)
		logger.Info("dataset already seeded",
			slog.Int64("dataset_id", existing.ID),
			slog.Int64("records", n),
		)
		return
	case err != nil && !errors.Is(err, pgx.ErrNoRows):
		logger.Error("failed to look up dataset", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rows, err := generateRows(*rowCount, *seed)
	if err != nil {
		logger.Error("failed to generate rows", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var (
		datasetID int64
		inserted  int64
	)
	err = s.WithTx(ctx, func(q *postgres.Queries) error {
		if existing.ID != 0 {
			if err := q.DeleteDataset(ctx, existing.ID); err != nil {
				return err
			}
		}
		ds, err := q.CreateDataset(ctx, postgres.CreateDatasetParams{
			Name:        datasetName,
			Description: datasetDescription,
			Metadata:    datasetMetadata,
		})
		if err != nil {
			return err
		}
		datasetID = ds.ID
		inserted, err = q.InsertRecords(ctx, ds.ID, rows)
		return err
	})
	if err != nil {
		logger.Error("failed to seed dataset", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("seeded dataset",
		slog.String("name", datasetName),
		slog.Int64("dataset_id", datasetID),
		slog.Int64("records", inserted),
	)
}
