package s3log

import (
	"fmt"
	"strings"

	"gen3utils/internal/document"
)

// Handler processes one JSON row. Its non-empty output is printed. Rows are
// handled concurrently.
type Handler interface {
	HandleRow(row document.Value, line string) string
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(row document.Value, line string) string

// HandleRow calls f.
func (f HandlerFunc) HandleRow(row document.Value, line string) string {
	return f(row, line)
}

// CountHandler prints nothing; only statistics are collected.
func CountHandler() Handler {
	return HandlerFunc(func(document.Value, string) string { return "" })
}

// Filter matches rows whose dotted key has a given textual value.
type Filter struct {
	Key   string
	Value string
}

// ParseFilters parses "key=value" expressions.
func ParseFilters(exprs []string) ([]Filter, error) {
	out := make([]Filter, 0, len(exprs))

	for _, e := range exprs {
		k, v, ok := strings.Cut(e, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid filter %q: expected key=value", e)
		}

		out = append(out, Filter{Key: strings.TrimSpace(k), Value: v})
	}

	return out, nil
}

// FilterHandler prints the raw line of rows matching every filter.
func FilterHandler(filters []Filter) Handler {
	return HandlerFunc(func(row document.Value, line string) string {
		for _, f := range filters {
			if row.LookupPath(f.Key).Text() != f.Value {
				return ""
			}
		}

		return line
	})
}
