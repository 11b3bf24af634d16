package gitops

import (
	"fmt"
	"strings"

	"gen3utils/internal/dictionary"
	"gen3utils/internal/document"
)

// ValidateAgainstDictionary returns one message per node referenced by cfg
// that the dictionary does not define.
func ValidateAgainstDictionary(cfg document.Value, graph *dictionary.Graph) []string {
	var failures []string

	check := func(node, where string) {
		if !graph.HasNode(node) {
			failures = append(failures, fmt.Sprintf("Node: %s in %s not found in dictionary", node, where))
		}
	}

	graphql := cfg.Get("graphql")

	for _, group := range []string{"boardCounts", "chartCounts"} {
		for _, item := range graphql.Get(group).Items() {
			check(countNode(item.Get("graphql").StringOr("")), "graphql."+group)
		}
	}

	for _, item := range graphql.Get("homepageChartNodes").Items() {
		check(item.Get("node").StringOr(""), "graphql.homepageChartNodes")
	}

	for _, item := range cfg.Lookup("components", "index", "homepageChartNodes").Items() {
		check(item.Get("node").StringOr(""), "components.index.homepageChartNodes")
	}

	return failures
}

// countNode extracts the node from a "_<node>_count" field name.
func countNode(field string) string {
	i := strings.LastIndex(field, "_")
	if i <= 0 {
		return strings.TrimPrefix(field, "_")
	}

	return strings.TrimPrefix(field[:i], "_")
}
