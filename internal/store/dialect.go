package store

import (
	"fmt"
	"strings"
)

// dialect captures the per-backend SQL differences the store needs.
// The DDL sticks to INTEGER/REAL/TEXT, which all three backends
// accept, so placeholder style is the only variation left.
type dialect struct {
	numberedPlaceholders bool
}

var (
	defaultDialect  = dialect{}
	postgresDialect = dialect{numberedPlaceholders: true}
)

// placeholders renders the VALUES placeholder list for n columns:
// "?, ?, ?" by default, "$1, $2, $3" for PostgreSQL.
func (d dialect) placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		if d.numberedPlaceholders {
			parts[i] = fmt.Sprintf("$%d", i+1)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}

// rebind rewrites ? placeholders in query to the numbered style when
// the backend requires it. Queries here never contain literal question
// marks, so a plain scan is enough.
func (d dialect) rebind(query string) string {
	if !d.numberedPlaceholders {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
