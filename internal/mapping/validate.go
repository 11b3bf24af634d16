package mapping

import (
	"errors"
	"fmt"

	"k8s.io/apimachinery/pkg/util/sets"

	"gen3utils/internal/diagnostic"
	"gen3utils/internal/dictionary"
	"gen3utils/internal/document"
)

// noneValue is how collectors spell an absent root.
const noneValue = "None"

type indexDef struct {
	docType string
	entry   document.Value
}

type validator struct {
	graph   *dictionary.Graph
	opts    Options
	indices map[string]*Index
	// firstPass holds each index's names before any join is merged.
	firstPass map[string]sets.Set[string]
}

// Validate validates a mapping document against the dictionary graph.
// Every index and property is checked and all problems are returned in
// the result; an error is returned only when the document has no
// "mappings" list.
func Validate(graph *dictionary.Graph, doc document.Value, opts Options) (*Result, error) {
	if graph == nil {
		return nil, errors.New("dictionary graph is nil")
	}

	entries, err := Mappings(doc)
	if err != nil {
		return nil, err
	}

	v := &validator{graph: graph, opts: opts, indices: map[string]*Index{}}
	res := &Result{}

	var defs []indexDef

	// first pass: every index from its own groups
	for i, entry := range entries {
		if !entry.IsObject() {
			res.Add(diagnostic.Format("mapping #%d must be an object, got %s", i, entry.Kind()))
			continue
		}

		docType := entry.Get("doc_type").StringOr("")
		if docType == "" {
			res.Add(diagnostic.Properties("mapping #%d is missing doc_type", i))
			continue
		}

		if _, dup := v.indices[docType]; dup {
			res.Add(diagnostic.Properties("index '%s' is declared more than once", docType).WithIndex(docType))
			continue
		}

		ix := newIndex(docType, entry.Get("type").StringOr(""))
		v.indices[docType] = ix
		res.Indices = append(res.Indices, ix)
		defs = append(defs, indexDef{docType: docType, entry: entry})

		res.Add(v.validateIndex(ix, entry)...)
	}

	// second pass: joins against the indices as the first pass left them
	v.firstPass = make(map[string]sets.Set[string], len(v.indices))
	for docType, ix := range v.indices {
		v.firstPass[docType] = ix.NameSet()
	}

	for _, def := range defs {
		joins := def.entry.Get(GroupJoining)
		if joins.IsNull() {
			continue
		}

		res.Add(v.validateJoins(v.indices[def.docType], joins)...)
	}

	return res, nil
}

func (v *validator) validateIndex(ix *Index, entry document.Value) []diagnostic.Diagnostic {
	def, diags := v.groupingScope(ix.DocType, entry)

	for _, group := range firstPassGroups {
		val := entry.Get(group)
		if val.IsNull() {
			continue
		}

		var (
			props []Property
			more  []diagnostic.Diagnostic
		)

		switch group {
		case GroupProps:
			props, more = v.validatePropList(val, group, ix.DocType, def)
		case GroupFlatten:
			props, more = v.validateFlatten(val, ix.DocType, def)
		case GroupAggregated:
			props, more = v.validateAggregated(val, ix.DocType, def)
		case GroupInjecting:
			props, more = v.validateInjecting(val, ix.DocType)
		case GroupParent:
			props, more = v.validateParent(val, ix.DocType)
		}

		diags = append(diags, more...)
		diags = append(diags, v.merge(ix, props)...)
	}

	return diags
}

// merge adds props to ix, reporting collisions unless duplicates are allowed.
func (v *validator) merge(ix *Index, props []Property) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic

	for _, p := range props {
		prev, replaced := ix.set(p)
		if !replaced || v.opts.AllowDuplicates || prev.Group == groupSyntheticID {
			continue
		}

		d := diagnostic.Properties("'%s' in index '%s' is duplicated", p.Name, ix.DocType).WithIndex(ix.DocType)
		d.FieldPath = p.Name
		diags = append(diags, d)
	}

	return diags
}

// groupingScope resolves the default scope of an index: its category, its
// root, or its doc_type when that names a node.
func (v *validator) groupingScope(docType string, entry document.Value) (*scope, []diagnostic.Diagnostic) {
	if category := entry.Get("category").StringOr(""); category != "" && category != noneValue {
		labels := v.graph.CategoryLabels(category)
		if len(labels) == 0 {
			return nil, []diagnostic.Diagnostic{v.pathError(category, docType)}
		}

		sc := &scope{props: v.graph.NodeProperties(labels[0])}
		sc.path, _ = v.graph.BackRef(labels[0])

		for _, l := range labels[1:] {
			sc.props = sc.props.Union(v.graph.NodeProperties(l))
		}

		return sc.usable(), nil
	}

	root := entry.Get("root").StringOr("")
	if root == "" || root == noneValue {
		if !v.graph.HasNode(docType) {
			return nil, nil
		}

		root = docType
	}

	backRef, ok := v.graph.BackRef(root)
	if !ok {
		return nil, []diagnostic.Diagnostic{v.pathError(root, docType)}
	}

	return (&scope{path: backRef, props: v.graph.Properties(backRef)}).usable(), nil
}

func (v *validator) pathError(name, docType string) diagnostic.Diagnostic {
	return diagnostic.Path(name).WithIndex(docType).WithSuggestions(suggest(name, v.graph.BackRefs())...)
}

func describe(group, docType string) string {
	return fmt.Sprintf("%s of index '%s'", group, docType)
}
