package report

import (
	"fmt"
	"time"
)

// sortLess orders two sort-key values. Numeric values (and timestamps)
// compare numerically; everything else falls back to the lexical order of
// its string form. Nil sorts first.
func sortLess(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b != nil
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af < bf
	}
	if aok != bok {
		// Mixed numeric and text keys: numbers sort first.
		return aok
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case time.Duration:
		return float64(n), true
	case time.Time:
		return float64(n.UnixNano()), true
	}
	return 0, false
}
