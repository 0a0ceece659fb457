package render

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope(t *testing.T) {
	tests := []struct {
		name         string
		payload      string
		wantKind     string
		wantWarnings []string
		wantBlocks   int
	}{
		{
			name:       "flat list",
			payload:    `[{"type":"kpi","value":1},{"chart_type":"bar"}]`,
			wantBlocks: 2,
		},
		{
			name:         "dashboard wrapper",
			payload:      `{"type":"dashboard_response","warnings":["Block 'A': boom"],"blocks":[{"render":"table"}]}`,
			wantKind:     "dashboard_response",
			wantWarnings: []string{"Block 'A': boom"},
			wantBlocks:   1,
		},
		{
			name:       "single embedded block",
			payload:    `{"type":"chart","block":{"chart_type":"line"}}`,
			wantKind:   "chart",
			wantBlocks: 1,
		},
		{
			name:       "bare block",
			payload:    `{"type":"table","columns":["a"],"data":[]}`,
			wantBlocks: 1,
		},
		{
			name:         "warnings only",
			payload:      `{"type":"summary","warnings":"nothing matched"}`,
			wantKind:     "summary",
			wantWarnings: []string{"nothing matched"},
		},
		{
			name:         "null blocks",
			payload:      `{"type":"summary","warnings":[],"blocks":null}`,
			wantKind:     "summary",
			wantWarnings: []string{},
		},
		{
			name:         "null block with warnings",
			payload:      `{"type":"table","warnings":["Block 'A': boom"],"block":null}`,
			wantKind:     "table",
			wantWarnings: []string{"Block 'A': boom"},
		},
		{
			name:    "empty object",
			payload: `{}`,
		},
		{
			name:       "non-object entries",
			payload:    `[1, "x", null, {"type":"kpi"}]`,
			wantBlocks: 4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := DecodeEnvelope([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, env.Kind)
			assert.Equal(t, tt.wantWarnings, env.Warnings)
			assert.Len(t, env.Blocks, tt.wantBlocks)
		})
	}
}

func TestDecodeEnvelope_NullBlocksRenderNothing(t *testing.T) {
	for _, payload := range []string{
		`{"type":"summary","warnings":[],"blocks":null}`,
		`{"type":"dashboard_response","warnings":null,"blocks":null}`,
		`{"type":"table","block":null}`,
	} {
		env, err := DecodeEnvelope([]byte(payload))
		require.NoError(t, err, payload)
		assert.True(t, env.Empty(), payload)

		tree := New().Render(context.Background(), env)
		assert.Empty(t, tree.Nodes, payload)
		assert.Empty(t, tree.Warning, payload)
	}
}

func TestDecodeEnvelope_NonObjectEntriesAreUnsupported(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`[42, {"type":"kpi"}]`))
	require.NoError(t, err)
	assert.Equal(t, KindUnsupported, Classify(env.Blocks[0]))
	assert.Equal(t, KindKPI, Classify(env.Blocks[1]))
}

func TestDecodeEnvelope_Errors(t *testing.T) {
	for _, payload := range []string{``, `   `, `42`, `"text"`, `{"blocks":"nope"}`, `[{`} {
		_, err := DecodeEnvelope([]byte(payload))
		assert.True(t, errors.Is(err, ErrEnvelope), "payload %q: %v", payload, err)
	}
}

func TestDecodeEnvelope_DropsBlankWarnings(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"warnings":["a","",3,"b"],"blocks":[]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, env.Warnings)
	assert.True(t, len(env.Blocks) == 0)
}

func TestBlock_Accessors(t *testing.T) {
	b := mustBlock(t, map[string]any{
		"title":   "Sales",
		"count":   3,
		"flag":    false,
		"nested":  map[string]any{"a": 1},
		"columns": []string{"a", "b"},
		"nothing": nil,
	})

	s, ok := b.Str("title")
	assert.True(t, ok)
	assert.Equal(t, "Sales", s)
	_, ok = b.Str("count")
	assert.False(t, ok)

	assert.Equal(t, "3", b.Text("count"))
	assert.Equal(t, "false", b.Text("flag"))
	assert.Equal(t, "", b.Text("nested"))

	assert.True(t, b.Has("title"))
	assert.False(t, b.Has("nothing"))
	assert.False(t, b.Has("missing"))

	cols, err := b.Strings("columns")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, cols)
	cols, err = b.Strings("nothing")
	assert.NoError(t, err)
	assert.Nil(t, cols)

	_, ok = b.Scalar("nested")
	assert.False(t, ok)
	v, ok := b.Scalar("count")
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{12.5, 12.5, true},
		{int64(4), 4, true},
		{"7.25", 7.25, true},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"inf", 0, false},
		{true, 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := ToFloat(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
}
