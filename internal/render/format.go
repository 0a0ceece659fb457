package render

import (
	"math"

	"github.com/shopspring/decimal"
)

// Placeholder is shown in place of null or missing values.
const Placeholder = "—"

// FormatCell prepares a cell value for display. Non-integer numbers are
// rounded to two decimal places, null becomes Placeholder, everything else
// passes through. The source value is never modified.
func FormatCell(v any) any {
	switch val := v.(type) {
	case nil:
		return Placeholder
	case float64:
		return roundNumber(val)
	case float32:
		return roundNumber(float64(val))
	}
	return v
}

func roundNumber(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) || f == math.Trunc(f) {
		return f
	}
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}
