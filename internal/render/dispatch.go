package render

import (
	"fmt"
	"strings"
)

// ChartGenerator turns a bounded chart model into a chart payload.
type ChartGenerator func(m Model) (*ChartData, error)

// Dispatcher routes a normalized model to the generator for its kind.
type Dispatcher struct {
	families map[string]ChartGenerator
}

// NewDispatcher returns a dispatcher with the bar, line and pie families.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		families: map[string]ChartGenerator{
			ChartBar:  cartesianChart,
			ChartLine: cartesianChart,
			ChartPie:  pieChart,
		},
	}
}

// Register adds or replaces the generator for a chart family.
func (d *Dispatcher) Register(family string, gen ChartGenerator) {
	d.families[family] = gen
}

// Dispatch builds the node for a model. A chart whose chart_type names no
// registered family yields a nil node and no error: the block is omitted.
func (d *Dispatcher) Dispatch(kind Kind, m Model) (*Node, error) {
	if m.Error != "" {
		return &Node{
			Type:    NodeBlockError,
			Title:   m.Title,
			Label:   BlockErrorBadge,
			Message: m.Error,
		}, nil
	}

	switch kind {
	case KindChart:
		gen, ok := d.families[m.ChartType]
		if !ok {
			return nil, nil
		}
		data, err := gen(m)
		if err != nil {
			return nil, fmt.Errorf("%s chart: %w", m.ChartType, err)
		}
		node := &Node{Type: NodeChart, Title: m.Title, Chart: data}
		if m.Truncated {
			node.Notice = fmt.Sprintf("Showing top %d of %d data points", len(m.Rows), m.OriginalRowCount)
		}
		return node, nil
	case KindTable:
		return tableNode(m), nil
	case KindKPI:
		value := m.Value
		if value == nil {
			value = Placeholder
		}
		return &Node{
			Type:  NodeKPI,
			Title: m.Title,
			KPI:   &KPIData{Value: value, Label: m.ValueLabel},
		}, nil
	case KindUnsupported:
		return &Node{
			Type:    NodeUnsupported,
			Title:   m.Title,
			Label:   m.Label,
			Message: "Unsupported block type: " + m.Label,
		}, nil
	}
	return nil, fmt.Errorf("no generator for kind %q", kind)
}

func tableNode(m Model) *Node {
	node := &Node{Type: NodeTable, Title: m.Title}
	if m.NoData {
		node.Message = NoTableData
		node.Table = &TableData{Columns: []string{}, Rows: [][]any{}, Empty: true}
		return node
	}
	node.Table = &TableData{Columns: m.Columns, Rows: m.Cells}
	if m.RowsTruncated {
		node.Notice = fmt.Sprintf("Showing top %d of %d rows", len(m.Rows), m.OriginalRowCount)
	}
	return node
}

func chartMeta(m Model) string {
	parts := make([]string, 0, 4)
	if m.ChartType != "" {
		parts = append(parts, m.ChartType)
	}
	parts = append(parts, "x: "+m.X, "y: "+m.Y)
	if m.Aggregation != "" {
		parts = append(parts, m.Aggregation)
	}
	return strings.Join(parts, " · ")
}

func points(m Model) []Point {
	out := make([]Point, 0, len(m.Rows))
	for _, row := range m.Rows {
		category, _ := row.Get(m.X)
		p := Point{Category: category}
		if v, ok := row.Get(m.Y); ok {
			if f, ok := ToFloat(v); ok {
				p.Value = &f
			}
		}
		out = append(out, p)
	}
	return out
}

func cartesianChart(m Model) (*ChartData, error) {
	return &ChartData{
		Family:    m.ChartType,
		X:         m.X,
		Y:         m.Y,
		Meta:      chartMeta(m),
		Points:    points(m),
		Stats:     m.Stats,
		Synthetic: m.Synthetic,
	}, nil
}

func pieChart(m Model) (*ChartData, error) {
	slices := m.Slices
	if len(slices) != len(m.Rows) {
		var total float64
		if m.Stats != nil {
			total = m.Stats.Total
		}
		slices = Slices(m.Rows, m.Y, total)
	}
	pts := points(m)
	for i := range pts {
		pts[i].Share = slices[i].Share
		pts[i].Color = slices[i].Color
	}
	return &ChartData{
		Family:    ChartPie,
		X:         m.X,
		Y:         m.Y,
		Meta:      chartMeta(m),
		Points:    pts,
		Stats:     m.Stats,
		Synthetic: m.Synthetic,
	}, nil
}
