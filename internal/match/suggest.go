package match

import (
	"sort"
)

// MinScore is the lowest similarity a candidate needs to be suggested.
const MinScore = 0.6

// DefaultLimit caps the number of suggestions.
const DefaultLimit = 3

type scored struct {
	name  string
	score float64
}

// Suggest returns up to limit candidates close to name, best first. Ties
// keep candidate order. An exact match yields no suggestions.
func Suggest(name string, candidates []string, limit int) []string {
	if name == "" || limit <= 0 {
		return nil
	}

	var ranked []scored

	for _, c := range candidates {
		if c == name {
			return nil
		}

		if s := Score(name, c); s >= MinScore {
			ranked = append(ranked, scored{name: c, score: s})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	out := make([]string, 0, min(limit, len(ranked)))
	for _, r := range ranked {
		if len(out) == limit {
			break
		}

		out = append(out, r.name)
	}

	return out
}
