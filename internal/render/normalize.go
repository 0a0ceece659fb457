package render

import (
	"errors"
	"fmt"
)

// Bounds applied to every block before it reaches a generator.
const (
	MaxTableRows   = 500
	MaxChartSeries = 8
	MaxChartPoints = 50
)

// Axis fields used when a chart block does not name its own.
const (
	DefaultXField = "category"
	DefaultYField = "value"
)

// Model is the bounded, defaulted, display-ready form of a block. It is
// derived fresh on every render pass and never written back to the block.
type Model struct {
	Kind        Kind
	Title       string
	Label       string
	Error       string
	ChartType   string
	X, Y        string
	Aggregation string

	Columns []string
	Rows    []*Row
	Cells   [][]any

	Value      any
	ValueLabel string

	NoData    bool
	Synthetic bool

	Truncated           bool
	RowsTruncated       bool
	OriginalRowCount    int
	SeriesTruncated     bool
	OriginalSeriesCount int
	PointsTruncated     bool

	Stats  *Stats
	Slices []Slice
}

// Normalize derives the render model of a classified block. Missing or
// ambiguous fields are defaulted; only payloads that are structurally
// unusable for their kind (a table whose data is not a list, a KPI whose
// value is an object) produce an error.
func Normalize(b Block, kind Kind) (Model, error) {
	m := Model{
		Kind:        kind,
		Title:       b.Text("title"),
		Label:       Label(b),
		Error:       b.Text("error"),
		Aggregation: b.Text("aggregation"),
	}
	m.ChartType, _ = b.Str("chart_type")

	if m.Error != "" {
		return m, nil
	}

	switch kind {
	case KindChart:
		normalizeChart(b, &m)
	case KindTable:
		if err := normalizeTable(b, &m); err != nil {
			return m, err
		}
	case KindKPI:
		if err := normalizeKPI(b, &m); err != nil {
			return m, err
		}
	case KindUnsupported:
	default:
		return m, fmt.Errorf("unknown kind %q", kind)
	}
	return m, nil
}

func normalizeChart(b Block, m *Model) {
	m.X = axisField(b, "x_axis", DefaultXField)
	m.Y = axisField(b, "y_axis", DefaultYField)

	rows, ok := b.Rows("data")
	if !ok || len(rows) == 0 {
		m.Rows = placeholderSeries(m.X, m.Y)
		m.Synthetic = true
		return
	}
	m.OriginalRowCount = len(rows)

	rows, m.OriginalSeriesCount = boundSeries(rows, m.X, MaxChartSeries)
	m.SeriesTruncated = m.OriginalSeriesCount > MaxChartSeries
	if len(rows) > MaxChartPoints {
		rows = rows[:MaxChartPoints]
		m.PointsTruncated = true
	}
	m.Rows = rows
	m.Truncated = m.SeriesTruncated || m.PointsTruncated
}

func axisField(b Block, key, fallback string) string {
	if s, ok := b.Str(key); ok && s != "" {
		return s
	}
	return fallback
}

// boundSeries keeps the rows belonging to the first limit distinct categories
// of field x, in original order, and reports how many categories there were.
func boundSeries(rows []*Row, x string, limit int) ([]*Row, int) {
	order := make(map[string]int)
	kept := make([]*Row, 0, len(rows))
	for _, row := range rows {
		key := categoryKey(row, x)
		pos, ok := order[key]
		if !ok {
			pos = len(order)
			order[key] = pos
		}
		if pos < limit {
			kept = append(kept, row)
		}
	}
	return kept, len(order)
}

func categoryKey(row *Row, x string) string {
	v, _ := row.Get(x)
	return fmt.Sprint(v)
}

// placeholderMonths and placeholderValues form the fixed series shown when a
// chart arrives without data.
var (
	placeholderMonths = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}
	placeholderValues = []float64{420, 610, 380, 790, 560, 930}
)

func placeholderSeries(x, y string) []*Row {
	rows := make([]*Row, 0, len(placeholderMonths))
	for i, month := range placeholderMonths {
		row := NewRow()
		row.Set(x, month)
		row.Set(y, placeholderValues[i])
		rows = append(rows, row)
	}
	return rows
}

var errDataNotList = errors.New("data: expected a list")

func normalizeTable(b Block, m *Model) error {
	columns, err := b.Strings("columns")
	if err != nil {
		return err
	}
	if b.Has("data") && !b.IsList("data") {
		return errDataNotList
	}
	rows, _ := b.Rows("data")

	if len(columns) == 0 && len(rows) == 0 {
		m.NoData = true
		return nil
	}

	m.OriginalRowCount = len(rows)
	if len(rows) > MaxTableRows {
		rows = rows[:MaxTableRows]
		m.RowsTruncated = true
		m.Truncated = true
	}
	m.Rows = rows

	if len(columns) == 0 {
		columns = rowKeys(rows[0])
	}
	m.Columns = columns

	m.Cells = make([][]any, 0, len(rows))
	for _, row := range rows {
		cells := make([]any, 0, len(columns))
		for _, col := range columns {
			v, _ := row.Get(col)
			cells = append(cells, FormatCell(v))
		}
		m.Cells = append(m.Cells, cells)
	}
	return nil
}

func rowKeys(row *Row) []string {
	keys := make([]string, 0, row.Len())
	for pair := row.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

func normalizeKPI(b Block, m *Model) error {
	m.ValueLabel = b.Text("value_label")
	if !b.Has("value") {
		return nil
	}
	v, ok := b.Scalar("value")
	if !ok {
		return errors.New("value: expected a scalar")
	}
	m.Value = v
	return nil
}
