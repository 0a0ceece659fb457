package render

// Kind is the render category a block resolves to.
type Kind string

const (
	KindChart       Kind = "chart"
	KindTable       Kind = "table"
	KindKPI         Kind = "kpi"
	KindUnsupported Kind = "unsupported"
)

// Chart families addressable through chart_type.
const (
	ChartBar  = "bar"
	ChartLine = "line"
	ChartPie  = "pie"
)

// rule is one entry of the classification table. Rules are evaluated in
// order and the first match wins.
type rule struct {
	kind  Kind
	match func(hints) bool
}

type hints struct {
	typ       string
	chartType string
	render    string
}

func readHints(b Block) hints {
	var h hints
	h.typ, _ = b.Str("type")
	h.chartType, _ = b.Str("chart_type")
	h.render, _ = b.Str("render")
	return h
}

var rules = []rule{
	{kind: KindChart, match: func(h hints) bool {
		return h.chartType == ChartBar || h.chartType == ChartLine || h.chartType == ChartPie
	}},
	{kind: KindChart, match: func(h hints) bool {
		return h.render == "chart"
	}},
	{kind: KindTable, match: func(h hints) bool {
		return h.typ == "table" || h.render == "table"
	}},
	{kind: KindKPI, match: func(h hints) bool {
		return h.typ == "kpi" || h.typ == "summary" || h.render == "kpi"
	}},
}

// Classify maps a block to exactly one render kind. It is total: absent,
// mistyped or unknown hints resolve to KindUnsupported.
func Classify(b Block) Kind {
	h := readHints(b)
	for _, r := range rules {
		if r.match(h) {
			return r.kind
		}
	}
	return KindUnsupported
}

// Label returns the most specific classification hint present on the block,
// for display on placeholders.
func Label(b Block) string {
	for _, key := range []string{"type", "render", "chart_type"} {
		if s := b.Text(key); s != "" {
			return s
		}
	}
	return "unknown"
}
