package registry

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Args are the named arguments of a tool call, as decoded from JSON or flags.
type Args map[string]any

// String returns the trimmed string value of key, or "".
func (a Args) String(key string) string {
	s, err := cast.ToStringE(a[key])
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// Int returns key as an int. Absent, empty, zero or unparsable values yield
// def.
func (a Args) Int(key string, def int) int {
	f, ok := a.Float(key)
	if !ok || f == 0 {
		return def
	}
	return int(f)
}

// Float returns key as a float64 and whether it held a finite number.
func (a Args) Float(key string) (float64, bool) {
	v, present := a[key]
	if !present || v == nil {
		return 0, false
	}
	if s, ok := v.(string); ok {
		if v = strings.TrimSpace(s); v == "" {
			return 0, false
		}
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Strings returns key as a string list. A comma-separated string is split.
func (a Args) Strings(key string) []string {
	v := a[key]
	if s, ok := v.(string); ok {
		v = strings.Split(s, ",")
	}
	raw, err := cast.ToStringSliceE(v)
	if err != nil {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Preview is a short human-readable summary of the call for logs.
func (a Args) Preview() string {
	var parts []string
	for _, key := range []string{"zip_code", "zip_code_a", "zip_code_b", "city", "address", "category"} {
		if s := a.String(key); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
