package housing

import (
	"sort"
	"strconv"
	"strings"
)

// Median returns the middle value of vals (mean of the two middle values for
// even counts), or nil when vals is empty. vals is not modified.
func Median(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	m := sorted[mid]
	if len(sorted)%2 == 0 {
		m = (sorted[mid-1] + sorted[mid]) / 2
	}
	return &m
}

// number coerces a provider value (number or numeric string) to a float.
func number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", ""))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// firstNumber returns the first alias in m holding a usable number.
func firstNumber(m map[string]any, aliases ...string) *float64 {
	for _, key := range aliases {
		if f, ok := number(m[key]); ok {
			return &f
		}
	}
	return nil
}
