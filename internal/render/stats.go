package render

// Stats summarizes the numeric values of a displayed series.
type Stats struct {
	Total float64 `json:"total"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	Count int     `json:"count"`
}

// Palette is the ordered color set used for per-category encoding.
var Palette = []string{
	"#64ffda", "#4a9eff", "#ff6b9d", "#ffb432",
	"#a78bfa", "#34d399", "#f97316", "#e879f9",
}

// ColorIndex maps a row position to a palette slot.
func ColorIndex(position int) int {
	return position % len(Palette)
}

// ComputeStats aggregates field over rows. Values that do not coerce to a
// number are skipped. It returns nil when no numeric value remains.
func ComputeStats(rows []*Row, field string) *Stats {
	var s *Stats
	for _, row := range rows {
		v, ok := row.Get(field)
		if !ok {
			continue
		}
		f, ok := ToFloat(v)
		if !ok {
			continue
		}
		if s == nil {
			s = &Stats{Min: f, Max: f}
		}
		s.Total += f
		s.Count++
		if f < s.Min {
			s.Min = f
		}
		if f > s.Max {
			s.Max = f
		}
	}
	if s != nil {
		s.Avg = s.Total / float64(s.Count)
	}
	return s
}

// Slice is the pie encoding of one row: its share of the total and its color.
// Share is nil when the row is not numeric or the total is zero.
type Slice struct {
	Share      *float64 `json:"share"`
	ColorIndex int      `json:"color_index"`
	Color      string   `json:"color"`
}

// Slices computes per-row shares of total and assigns colors by position.
func Slices(rows []*Row, field string, total float64) []Slice {
	out := make([]Slice, len(rows))
	for i, row := range rows {
		idx := ColorIndex(i)
		out[i] = Slice{ColorIndex: idx, Color: Palette[idx]}
		if total == 0 {
			continue
		}
		v, _ := row.Get(field)
		if f, ok := ToFloat(v); ok {
			share := f / total
			out[i].Share = &share
		}
	}
	return out
}

// Aggregate fills the derived statistics of a chart model from its bounded
// rows. Pie charts also get per-row shares and colors.
func Aggregate(m Model) Model {
	if m.Kind != KindChart || m.Error != "" {
		return m
	}
	m.Stats = ComputeStats(m.Rows, m.Y)
	if m.ChartType == ChartPie {
		var total float64
		if m.Stats != nil {
			total = m.Stats.Total
		}
		m.Slices = Slices(m.Rows, m.Y, total)
	}
	return m
}
