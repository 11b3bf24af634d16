package mapping

import (
	"slices"

	"k8s.io/apimachinery/pkg/util/sets"

	"gen3utils/internal/diagnostic"
)

// Property group keys, in the order the first pass applies them. Later
// groups override earlier ones on name collision.
const (
	GroupProps       = "props"
	GroupFlatten     = "flatten_props"
	GroupAggregated  = "aggregated_props"
	GroupInjecting   = "injecting_props"
	GroupParent      = "parent_props"
	GroupJoining     = "joining_props"
	groupSyntheticID = "id"
)

var firstPassGroups = []string{GroupProps, GroupFlatten, GroupAggregated, GroupInjecting, GroupParent}

// Aggregation functions.
const (
	FnSet   = "set"
	FnCount = "count"
	FnList  = "list"
	FnSum   = "sum"
	FnMin   = "min"
	FnMax   = "max"
)

// SupportedFunctions lists the accepted "fn" values.
var SupportedFunctions = []string{FnSet, FnCount, FnList, FnSum, FnMin, FnMax}

// Options tunes validation.
type Options struct {
	// AllowDuplicates lets a later property silently replace an earlier one
	// with the same name instead of reporting it.
	AllowDuplicates bool
}

// Property is an output property of an index.
type Property struct {
	Name string
	// Source is the dictionary (or joined index) field read.
	Source string
	// Path is the back-reference chain, node label or joined index the
	// source was resolved against.
	Path string
	// Group is the property group that declared it.
	Group string
	Fn    string
}

// Index is the set of output properties of one doc_type.
type Index struct {
	DocType string
	Type    string

	props map[string]Property
	names []string
}

func newIndex(docType, typ string) *Index {
	ix := &Index{DocType: docType, Type: typ, props: map[string]Property{}}
	ix.set(Property{Name: docType + "_id", Source: "id", Group: groupSyntheticID})

	return ix
}

// set stores p, keeping the position of a replaced name. It returns the
// replaced property, if any.
func (ix *Index) set(p Property) (Property, bool) {
	prev, ok := ix.props[p.Name]
	if !ok {
		ix.names = append(ix.names, p.Name)
	}

	ix.props[p.Name] = p

	return prev, ok
}

// Get returns the property named name.
func (ix *Index) Get(name string) (Property, bool) {
	p, ok := ix.props[name]
	return p, ok
}

// Names returns the property names in first-declaration order.
func (ix *Index) Names() []string {
	return slices.Clone(ix.names)
}

// NameSet returns the property names as a set.
func (ix *Index) NameSet() sets.Set[string] {
	return sets.New(ix.names...)
}

// Result is the outcome of validating a mapping document.
type Result struct {
	diagnostic.Diagnostics

	// Indices are the computed indices in document order.
	Indices []*Index
}

// Index returns the computed index for docType.
func (r *Result) Index(docType string) (*Index, bool) {
	for _, ix := range r.Indices {
		if ix.DocType == docType {
			return ix, true
		}
	}

	return nil, false
}
