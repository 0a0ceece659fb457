package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Talin12/DataSage/internal/llm"
)

var (
	// ErrPlanUnparseable means the planner output was not JSON.
	ErrPlanUnparseable = errors.New("AI returned unparseable JSON.")
	// ErrPlanShape means the planner output was JSON but not a list of blocks.
	ErrPlanShape = errors.New("AI returned an unexpected format (expected a JSON array of blocks).")
)

// PlannedBlock is one block of a query plan as produced by the planner.
type PlannedBlock struct {
	Render      string `json:"render"`
	Title       string `json:"title,omitempty"`
	SQL         string `json:"sql"`
	ChartType   string `json:"chart_type,omitempty"`
	XAxis       string `json:"x_axis,omitempty"`
	YAxis       string `json:"y_axis,omitempty"`
	Aggregation string `json:"aggregation,omitempty"`
}

// PlanRequest carries what the planner may know about a dataset.
type PlanRequest struct {
	DatasetID int64
	Prompt    string
	Schema    map[string]string
	Samples   []json.RawMessage
}

// Planner turns a natural-language prompt into a list of blocks.
type Planner interface {
	Plan(ctx context.Context, req PlanRequest) ([]PlannedBlock, error)
}

// LLMPlanner asks a language model for the plan.
type LLMPlanner struct {
	llm llm.Completer
}

func NewLLMPlanner(c llm.Completer) *LLMPlanner {
	return &LLMPlanner{llm: c}
}

func (p *LLMPlanner) Plan(ctx context.Context, req PlanRequest) ([]PlannedBlock, error) {
	system, err := systemPrompt(req)
	if err != nil {
		return nil, err
	}
	raw, err := p.llm.Complete(ctx, []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: req.Prompt},
	})
	if err != nil {
		return nil, fmt.Errorf("planner completion: %w", err)
	}
	return ParsePlan(raw)
}

const planInstructions = `You are a data visualization assistant.

Your job is to turn a natural language request about one dataset into a
dashboard plan. Each block of the plan is answered by one PostgreSQL query.

The dataset rows live in the table records(dataset_id bigint, row_data jsonb).
Read a column with row_data->>'column' and cast it when you need a number,
e.g. (row_data->>'revenue')::numeric. Always filter with dataset_id = $1.

OUTPUT REQUIREMENTS:
- Return ONLY a raw JSON array. No markdown, no backticks, no explanations.
- Each element must have this shape:
  {
    "render": "kpi" | "chart" | "table",
    "title": "string",
    "sql": "a single SELECT statement",
    "chart_type": "bar" | "line" | "pie" | null,
    "x_axis": "result column for categories" | null,
    "y_axis": "result column for values" | null,
    "aggregation": "sum" | "count" | "average" | null
  }
- A kpi query returns one row; its first column is the value.
- A chart query returns the x_axis and y_axis columns.`

func systemPrompt(req PlanRequest) (string, error) {
	columns := make([]string, 0, len(req.Schema))
	for name := range req.Schema {
		columns = append(columns, name)
	}
	sort.Strings(columns)

	var schema strings.Builder
	for _, name := range columns {
		fmt.Fprintf(&schema, "- %s: %s\n", name, req.Schema[name])
	}

	samples, err := json.MarshalIndent(req.Samples, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal samples: %w", err)
	}

	return fmt.Sprintf("%s\n\nDATASET SCHEMA:\n%s\nSAMPLE ROWS:\n%s", planInstructions, schema.String(), samples), nil
}

var fenceRe = regexp.MustCompile("```(?:json|JSON)?")

// ParsePlan decodes planner output. Markdown code fences are stripped, and an
// object of the form {"type": ..., "blocks": [...]} is accepted in place of a
// bare list.
func ParsePlan(raw string) ([]PlannedBlock, error) {
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		cleaned := strings.TrimSpace(fenceRe.ReplaceAllString(raw, ""))
		if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
			return nil, ErrPlanUnparseable
		}
	}

	if obj, ok := doc.(map[string]any); ok {
		if blocks, ok := obj["blocks"]; ok {
			doc = blocks
		}
	}
	items, ok := doc.([]any)
	if !ok {
		return nil, ErrPlanShape
	}

	plan := make([]PlannedBlock, 0, len(items))
	for _, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			return nil, ErrPlanShape
		}
		b := PlannedBlock{
			Render:      text(fields, "render"),
			Title:       text(fields, "title"),
			SQL:         strings.TrimSpace(text(fields, "sql")),
			ChartType:   text(fields, "chart_type"),
			XAxis:       text(fields, "x_axis"),
			YAxis:       text(fields, "y_axis"),
			Aggregation: text(fields, "aggregation"),
		}
		if b.Render == "" {
			b.Render = text(fields, "type")
		}
		plan = append(plan, b)
	}
	return plan, nil
}

func text(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
