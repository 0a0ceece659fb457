package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Row is one data record. Key order follows the producer's payload.
type Row = orderedmap.OrderedMap[string, any]

// NewRow returns an empty row.
func NewRow() *Row {
	return orderedmap.New[string, any]()
}

// Block is a loosely typed result block. Fields are kept as raw JSON and
// decoded on access so that a mistyped field never breaks the whole block.
type Block map[string]json.RawMessage

// BlockFrom converts any JSON-encodable value into a Block.
func BlockFrom(v any) (Block, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal block: %w", err)
	}
	var b Block
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("block is not an object: %w", err)
	}
	return b, nil
}

// Has reports whether the field is present and not null.
func (b Block) Has(key string) bool {
	raw, ok := b[key]
	return ok && !isNull(raw)
}

// Str returns a string field. Non-string values report false.
func (b Block) Str(key string) (string, bool) {
	raw, ok := b[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Text returns a field rendered as display text: strings as-is, numbers and
// booleans in their JSON form, anything else empty.
func (b Block) Text(key string) string {
	if s, ok := b.Str(key); ok {
		return s
	}
	raw, ok := b[key]
	if !ok {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch v.(type) {
	case float64, bool:
		return string(bytes.TrimSpace(raw))
	}
	return ""
}

// Scalar decodes a field into a JSON scalar (string, float64, bool or nil).
// Objects and arrays report false.
func (b Block) Scalar(key string) (any, bool) {
	raw, ok := b[key]
	if !ok {
		return nil, false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	switch v.(type) {
	case nil, string, float64, bool:
		return v, true
	}
	return nil, false
}

// Strings decodes a list of strings. An absent or null field yields nil and
// no error; any other non-list value is an error.
func (b Block) Strings(key string) ([]string, error) {
	raw, ok := b[key]
	if !ok || isNull(raw) {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%s: expected a list", key)
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			return nil, fmt.Errorf("%s[%d]: expected a string", key, i)
		}
		out = append(out, s)
	}
	return out, nil
}

// Rows decodes the data field. present is false when the field is absent,
// null or not a list. Entries that are not objects decode as empty rows.
func (b Block) Rows(key string) (rows []*Row, present bool) {
	raw, ok := b[key]
	if !ok || isNull(raw) {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	rows = make([]*Row, 0, len(items))
	for _, item := range items {
		rows = append(rows, decodeRow(item))
	}
	return rows, true
}

// IsList reports whether the field holds a JSON array.
func (b Block) IsList(key string) bool {
	raw, ok := b[key]
	if !ok {
		return false
	}
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func decodeRow(raw json.RawMessage) *Row {
	row := NewRow()
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return row
	}
	if err := row.UnmarshalJSON(trimmed); err != nil {
		return NewRow()
	}
	return row
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// ToFloat coerces a cell value to a number. Numeric strings are accepted;
// booleans, empty strings, NaN and infinities are not.
func ToFloat(v any) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int32:
		f = float64(val)
	case int64:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
