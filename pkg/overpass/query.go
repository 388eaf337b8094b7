package overpass

import (
	"fmt"
	"strconv"
	"strings"
)

// Filter is a single tag predicate. Regex filters use the ~ operator and
// accept alternations like "motorway|trunk".
type Filter struct {
	Key   string
	Value string
	Regex bool
}

func (f Filter) String() string {
	op := "="
	if f.Regex {
		op = "~"
	}
	return fmt.Sprintf("[%q%s%q]", f.Key, op, f.Value)
}

// Output selects what the interpreter returns.
type Output int

const (
	// OutCenter returns every matching element with a center point.
	OutCenter Output = iota
	// OutCount returns a single element whose tags hold the totals.
	OutCount
)

// Query is a radius search around a point for elements matching any filter.
type Query struct {
	Filters []Filter
	Lat     float64
	Lon     float64
	Radius  int
	Output  Output
	// Timeout is the server-side timeout in seconds. Zero picks 25 for full
	// queries and 20 for counts.
	Timeout int
}

// String renders the query in Overpass QL. Each filter is unioned across
// nodes, ways and relations.
func (q Query) String() string {
	timeout := q.Timeout
	if timeout <= 0 {
		timeout = 25
		if q.Output == OutCount {
			timeout = 20
		}
	}

	around := fmt.Sprintf("(around:%d,%s,%s)", q.Radius, coord(q.Lat), coord(q.Lon))

	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];(", timeout)
	for _, f := range q.Filters {
		for _, kind := range []string{"node", "way", "relation"} {
			b.WriteString(kind)
			b.WriteString(f.String())
			b.WriteString(around)
			b.WriteString(";")
		}
	}
	b.WriteString(");")
	if q.Output == OutCount {
		b.WriteString("out count;")
	} else {
		b.WriteString("out center;")
	}
	return b.String()
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
