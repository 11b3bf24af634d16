package mapping

import (
	"k8s.io/apimachinery/pkg/util/sets"

	"gen3utils/internal/document"
)

// PropertyMap returns, per doc_type, the names of every property the
// mapping document declares: props, aggregated_props, the props of each
// joining, injecting and flatten entry, and the bracket names of
// parent_props paths. Malformed parts are skipped; Validate reports them.
func PropertyMap(doc document.Value) map[string]sets.Set[string] {
	out := map[string]sets.Set[string]{}

	for _, entry := range doc.Get("mappings").Items() {
		docType := entry.Get("doc_type").StringOr("")
		if docType == "" {
			continue
		}

		names := sets.New[string]()

		names.Insert(propNames(entry.Get(GroupProps))...)
		names.Insert(propNames(entry.Get(GroupAggregated))...)

		for _, join := range entry.Get(GroupJoining).Items() {
			names.Insert(propNames(join.Get("props"))...)
		}

		inject := entry.Get(GroupInjecting)
		for _, node := range inject.Keys() {
			names.Insert(propNames(inject.Get(node).Get("props"))...)
		}

		for _, flat := range entry.Get(GroupFlatten).Items() {
			names.Insert(propNames(flat.Get("props"))...)
		}

		for _, parent := range entry.Get(GroupParent).Items() {
			names.Insert(bracketNames(parent.Get("path").StringOr(""))...)
		}

		if existing, ok := out[docType]; ok {
			names = names.Union(existing)
		}

		out[docType] = names
	}

	return out
}

func propNames(list document.Value) []string {
	var out []string

	for _, p := range list.Items() {
		if name := p.Get("name").StringOr(""); name != "" {
			out = append(out, name)
		}
	}

	return out
}

func bracketNames(raw string) []string {
	if raw == "" {
		return nil
	}

	fp, err := ParsePath(raw)
	if err != nil {
		return nil
	}

	var out []string

	for _, seg := range fp.Segments {
		for _, f := range seg.Fields {
			out = append(out, f.Name)
		}
	}

	return out
}
