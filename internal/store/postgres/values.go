package postgres

import (
	"fmt"
	"math/big"
	"net/netip"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// JSONValue converts a value decoded by pgx into something encoding/json
// renders the way a dashboard expects: numerics as float64, dates as ISO
// strings, UUIDs as text. Non-finite numerics become nil.
func JSONValue(oid uint32, v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case pgtype.Numeric:
		return numericValue(val)
	case *big.Int:
		f, _ := new(big.Float).SetInt(val).Float64()
		return f
	case time.Time:
		if oid == pgtype.DateOID {
			return val.Format(time.DateOnly)
		}
		return val.Format(time.RFC3339Nano)
	case [16]byte:
		return uuid.UUID(val).String()
	case []byte:
		return string(val)
	case netip.Prefix:
		return val.String()
	case pgtype.Time:
		if !val.Valid {
			return nil
		}
		d := time.Duration(val.Microseconds) * time.Microsecond
		return time.Time{}.Add(d).Format(time.TimeOnly)
	case pgtype.Interval:
		if !val.Valid {
			return nil
		}
		return fmt.Sprintf("%d months %d days %s", val.Months, val.Days,
			time.Duration(val.Microseconds)*time.Microsecond)
	case string, bool, float32, float64, int8, int16, int32, int64, int,
		map[string]any, []any:
		return val
	}
	return fmt.Sprint(v)
}

func numericValue(n pgtype.Numeric) any {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite || n.Int == nil {
		return nil
	}
	return decimal.NewFromBigInt(n.Int, n.Exp).InexactFloat64()
}
