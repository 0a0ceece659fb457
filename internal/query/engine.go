// Package query answers a natural-language prompt against a dataset: a
// planner proposes blocks with SQL, each query is guarded and executed
// read-only, and the results are assembled into a result envelope.
package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Talin12/DataSage/internal/config"
	"github.com/Talin12/DataSage/internal/store"
	"github.com/Talin12/DataSage/pkg/models"
)

// EnvelopeType tags envelopes produced by the engine.
const EnvelopeType = "dashboard_response"

// Render types a planned block may ask for.
const (
	RenderKPI   = "kpi"
	RenderChart = "chart"
	RenderTable = "table"
)

var ErrPromptRequired = errors.New("prompt is required")

// Block is one assembled result block. Keys keep insertion order so the
// serialized form reads render, title, then payload.
type Block = orderedmap.OrderedMap[string, any]

// Envelope is the engine's answer to a prompt.
type Envelope struct {
	Type     string   `json:"type"`
	Warnings []string `json:"warnings"`
	Blocks   []*Block `json:"blocks"`
}

// DataSource is the storage the engine reads from. *store.Store satisfies it.
type DataSource interface {
	GetDataset(ctx context.Context, id int64) (models.Dataset, error)
	SampleRecords(ctx context.Context, datasetID int64, n int) ([]json.RawMessage, error)
	ExecuteReadOnly(ctx context.Context, sql string, args []any, limit int, timeout time.Duration) (*store.ResultSet, error)
}

type Engine struct {
	src         DataSource
	planner     Planner
	cache       Cache
	logger      *slog.Logger
	rowLimit    int
	sampleRows  int
	concurrency int
	timeout     time.Duration
}

type Option func(*Engine)

// WithCache enables envelope caching.
func WithCache(c Cache) Option {
	return func(e *Engine) { e.cache = c }
}

func NewEngine(src DataSource, planner Planner, logger *slog.Logger, cfg config.QueryConfig, opts ...Option) *Engine {
	e := &Engine{
		src:         src,
		planner:     planner,
		logger:      logger,
		rowLimit:    cfg.RowLimit,
		sampleRows:  cfg.SampleRows,
		concurrency: cfg.BlockConcurrency,
		timeout:     cfg.Timeout,
	}
	if e.rowLimit <= 0 {
		e.rowLimit = 500
	}
	if e.sampleRows <= 0 {
		e.sampleRows = 5
	}
	if e.concurrency <= 0 {
		e.concurrency = 1
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ask plans and executes prompt against the dataset. Failures of individual
// blocks are reported inside the envelope; only failures that leave nothing
// to show (unknown dataset, planner error, malformed plan) are returned.
func (e *Engine) Ask(ctx context.Context, datasetID int64, prompt string) (*Envelope, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrPromptRequired
	}

	key := CacheKey(datasetID, prompt)
	if e.cache != nil {
		if env, ok := e.cache.Get(ctx, key); ok {
			e.logger.Debug("envelope cache hit", slog.Int64("dataset_id", datasetID))
			return env, nil
		}
	}

	ds, err := e.src.GetDataset(ctx, datasetID)
	if err != nil {
		return nil, fmt.Errorf("get dataset %d: %w", datasetID, err)
	}
	samples, err := e.src.SampleRecords(ctx, datasetID, e.sampleRows)
	if err != nil {
		return nil, fmt.Errorf("sample dataset %d: %w", datasetID, err)
	}

	start := time.Now()
	plan, err := e.planner.Plan(ctx, PlanRequest{
		DatasetID: datasetID,
		Prompt:    prompt,
		Schema:    ds.Metadata,
		Samples:   samples,
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("plan ready",
		slog.Int64("dataset_id", datasetID),
		slog.Int("blocks", len(plan)),
		slog.Duration("elapsed", time.Since(start)),
	)

	env := e.execute(ctx, datasetID, plan)
	// Envelopes with warnings may hold transient SQL failures; only clean
	// answers are reused.
	if e.cache != nil && len(env.Warnings) == 0 {
		e.cache.Set(ctx, key, env)
	}
	return env, nil
}

// outcome is the result of one planned block. A nil block means the block
// was skipped; warning is set for skipped and failed blocks.
type outcome struct {
	block   *Block
	warning string
}

func (e *Engine) execute(ctx context.Context, datasetID int64, plan []PlannedBlock) *Envelope {
	results := make([]outcome, len(plan))

	// Per-block failures are recorded in results, so the group never
	// returns an error and one slow block cannot cancel its siblings.
	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, pb := range plan {
		g.Go(func() error {
			results[i] = e.runBlock(ctx, datasetID, i, pb)
			return nil
		})
	}
	_ = g.Wait()

	env := &Envelope{Type: EnvelopeType, Warnings: []string{}, Blocks: []*Block{}}
	for _, r := range results {
		if r.warning != "" {
			env.Warnings = append(env.Warnings, r.warning)
		}
		if r.block != nil {
			env.Blocks = append(env.Blocks, r.block)
		}
	}
	return env
}

func (e *Engine) runBlock(ctx context.Context, datasetID int64, index int, pb PlannedBlock) outcome {
	title := pb.Title
	if title == "" {
		title = fmt.Sprintf("Block %d", index+1)
	}

	switch pb.Render {
	case RenderKPI, RenderChart, RenderTable:
	default:
		return outcome{warning: fmt.Sprintf("Block '%s': unknown render type '%s' — skipped.", title, pb.Render)}
	}

	block := orderedmap.New[string, any]()
	block.Set("render", pb.Render)
	block.Set("title", title)

	rs, err := e.runSQL(ctx, datasetID, pb.SQL)
	if err != nil {
		e.logger.Warn("block query failed",
			slog.Int("block", index),
			slog.String("render", pb.Render),
			slog.String("error", err.Error()),
		)
		block.Set("error", err.Error())
		return outcome{block: block, warning: fmt.Sprintf("Block '%s': %s", title, err.Error())}
	}

	switch pb.Render {
	case RenderKPI:
		var value, label any
		if len(rs.Columns) > 0 {
			label = rs.Columns[0]
			if len(rs.Rows) > 0 {
				value, _ = rs.Rows[0].Get(rs.Columns[0])
			}
		}
		block.Set("value", value)
		block.Set("value_label", label)
	case RenderChart:
		setIfPresent(block, "chart_type", pb.ChartType)
		setIfPresent(block, "x_axis", pb.XAxis)
		setIfPresent(block, "y_axis", pb.YAxis)
		setIfPresent(block, "aggregation", pb.Aggregation)
		block.Set("data", rs.Rows)
		block.Set("columns", rs.Columns)
	case RenderTable:
		block.Set("data", rs.Rows)
		block.Set("columns", rs.Columns)
	}
	return outcome{block: block}
}

func (e *Engine) runSQL(ctx context.Context, datasetID int64, sql string) (*store.ResultSet, error) {
	guarded, err := Guard(sql, e.rowLimit)
	if err != nil {
		return nil, err
	}
	rs, err := e.src.ExecuteReadOnly(ctx, guarded.SQL, guarded.Args(datasetID), e.rowLimit, e.timeout)
	if err != nil {
		return nil, fmt.Errorf("SQL execution error: %w", err)
	}
	return rs, nil
}

func setIfPresent(b *Block, key, value string) {
	if value != "" {
		b.Set(key, value)
	}
}
