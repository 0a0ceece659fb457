package query

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Talin12/DataSage/internal/llm"
)

func TestParsePlan(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []PlannedBlock
	}{
		{
			name: "bare list",
			raw:  `[{"render":"kpi","title":"Total","sql":"SELECT 1"}]`,
			want: []PlannedBlock{{Render: "kpi", Title: "Total", SQL: "SELECT 1"}},
		},
		{
			name: "fenced",
			raw:  "```json\n[{\"render\":\"table\",\"title\":\"Rows\",\"sql\":\" SELECT 2 \"}]\n```",
			want: []PlannedBlock{{Render: "table", Title: "Rows", SQL: "SELECT 2"}},
		},
		{
			name: "wrapped in blocks",
			raw:  `{"type":"dashboard_response","blocks":[{"render":"chart","chart_type":"bar","x_axis":"region","y_axis":"total","aggregation":"sum","sql":"SELECT 3"}]}`,
			want: []PlannedBlock{{Render: "chart", ChartType: "bar", XAxis: "region", YAxis: "total", Aggregation: "sum", SQL: "SELECT 3"}},
		},
		{
			name: "type stands in for render",
			raw:  `[{"type":"table","sql":"SELECT 4"}]`,
			want: []PlannedBlock{{Render: "table", SQL: "SELECT 4"}},
		},
		{
			name: "nulls read as empty",
			raw:  `[{"render":"chart","chart_type":null,"x_axis":null,"sql":"SELECT 5"}]`,
			want: []PlannedBlock{{Render: "chart", SQL: "SELECT 5"}},
		},
		{
			name: "empty list",
			raw:  `[]`,
			want: []PlannedBlock{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePlan(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePlan_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"prose", "Sure! Here is your dashboard.", ErrPlanUnparseable},
		{"truncated", `[{"render":"kpi"`, ErrPlanUnparseable},
		{"object without blocks", `{"render":"kpi"}`, ErrPlanShape},
		{"scalar", `42`, ErrPlanShape},
		{"non-object item", `[{"render":"kpi"}, "oops"]`, ErrPlanShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePlan(tt.raw)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

type fakeCompleter struct {
	reply    string
	err      error
	messages []llm.Message
}

func (f *fakeCompleter) Complete(_ context.Context, messages []llm.Message) (string, error) {
	f.messages = messages
	return f.reply, f.err
}

func (f *fakeCompleter) Model() string { return "fake" }

func TestLLMPlanner_Plan(t *testing.T) {
	c := &fakeCompleter{reply: `[{"render":"kpi","title":"Orders","sql":"SELECT count(*) FROM records WHERE dataset_id = $1"}]`}
	p := NewLLMPlanner(c)

	plan, err := p.Plan(context.Background(), PlanRequest{
		DatasetID: 1,
		Prompt:    "how many orders?",
		Schema:    map[string]string{"units": "integer", "region": "string"},
		Samples:   []json.RawMessage{json.RawMessage(`{"region":"North","units":3}`)},
	})
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "Orders", plan[0].Title)

	require.Len(t, c.messages, 2)
	assert.Equal(t, "system", c.messages[0].Role)
	assert.Equal(t, "user", c.messages[1].Role)
	assert.Equal(t, "how many orders?", c.messages[1].Content)

	system := c.messages[0].Content
	assert.Contains(t, system, "records(dataset_id bigint, row_data jsonb)")
	assert.Less(t, strings.Index(system, "- region: string"), strings.Index(system, "- units: integer"))
	assert.Contains(t, system, `"region": "North"`)
}

func TestLLMPlanner_CompletionError(t *testing.T) {
	boom := errors.New("upstream down")
	p := NewLLMPlanner(&fakeCompleter{err: boom})

	_, err := p.Plan(context.Background(), PlanRequest{Prompt: "x"})
	assert.ErrorIs(t, err, boom)
}
