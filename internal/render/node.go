package render

// NodeType identifies which view primitive a node is meant for.
type NodeType string

const (
	NodeChart       NodeType = "chart"
	NodeTable       NodeType = "table"
	NodeKPI         NodeType = "kpi"
	NodeBlockError  NodeType = "block_error"
	NodeUnsupported NodeType = "unsupported"
	NodeFallback    NodeType = "fallback"
)

// Fixed display strings.
const (
	FallbackMessage = "Failed to render this visualization. The AI generated an incompatible data format."
	NoTableData     = "No table data available."
	BlockErrorBadge = "Block Error"
)

// Node is one entry of the render tree handed to the view layer.
type Node struct {
	Type    NodeType `json:"type"`
	Block   int      `json:"block"`
	Title   string   `json:"title,omitempty"`
	Notice  string   `json:"notice,omitempty"`
	Message string   `json:"message,omitempty"`
	Label   string   `json:"label,omitempty"`

	Chart *ChartData `json:"chart,omitempty"`
	Table *TableData `json:"table,omitempty"`
	KPI   *KPIData   `json:"kpi,omitempty"`
}

// ChartData is the payload of a chart node.
type ChartData struct {
	Family    string  `json:"family"`
	X         string  `json:"x"`
	Y         string  `json:"y"`
	Meta      string  `json:"meta"`
	Points    []Point `json:"points"`
	Stats     *Stats  `json:"stats,omitempty"`
	Synthetic bool    `json:"synthetic,omitempty"`
}

// Point is one plotted datum. Value is nil when the row has no numeric value
// for the y field. Share and Color are only set for pie charts.
type Point struct {
	Category any      `json:"category"`
	Value    *float64 `json:"value"`
	Share    *float64 `json:"share,omitempty"`
	Color    string   `json:"color,omitempty"`
}

// TableData is the payload of a table node.
type TableData struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
	Empty   bool     `json:"empty,omitempty"`
}

// KPIData is the payload of a scalar card.
type KPIData struct {
	Value any    `json:"value"`
	Label string `json:"label,omitempty"`
}

// Tree is the full render output for one envelope.
type Tree struct {
	Warning  string `json:"warning,omitempty"`
	Nodes    []Node `json:"nodes"`
	Degraded int    `json:"degraded"`
}

// Empty reports whether the tree has nothing to show.
func (t Tree) Empty() bool {
	return t.Warning == "" && len(t.Nodes) == 0
}
