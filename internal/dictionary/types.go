package dictionary

import (
	"slices"

	"k8s.io/apimachinery/pkg/util/sets"
)

// IDProperty is implicitly available on every node.
const IDProperty = "id"

// Node is a dictionary node type.
type Node struct {
	Label    string
	Category string
	// BackRef is the back-reference of the first declared edge, or "" for
	// nodes without edges.
	BackRef string
	// Properties are the declared properties plus the implicit id, in
	// declaration order.
	Properties []string
}

// Graph is the dictionary view used by the validators.
type Graph struct {
	labels              []string
	nodes               map[string]*Node
	backRefToProperties map[string][]string
	backRefSets         map[string]sets.Set[string]
	categoryToLabels    map[string][]string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:               make(map[string]*Node),
		backRefToProperties: make(map[string][]string),
		backRefSets:         make(map[string]sets.Set[string]),
		categoryToLabels:    make(map[string][]string),
	}
}

// AddNode registers a node type. The implicit id property is appended when
// not declared. Labels sharing a back-reference have their properties
// unioned under it. Re-adding a label replaces its node entry.
func (g *Graph) AddNode(label, category, backRef string, props ...string) *Node {
	all := slices.Clone(props)
	if !slices.Contains(all, IDProperty) {
		all = append(all, IDProperty)
	}

	n := &Node{Label: label, Category: category, BackRef: backRef, Properties: all}

	if _, exists := g.nodes[label]; !exists {
		g.labels = append(g.labels, label)
		if category != "" {
			g.categoryToLabels[category] = append(g.categoryToLabels[category], label)
		}
	}

	g.nodes[label] = n

	if backRef == "" {
		return n
	}

	set, ok := g.backRefSets[backRef]
	if !ok {
		set = sets.New[string]()
		g.backRefSets[backRef] = set
	}

	for _, p := range all {
		if !set.Has(p) {
			set.Insert(p)
			g.backRefToProperties[backRef] = append(g.backRefToProperties[backRef], p)
		}
	}

	return n
}

// Node returns the node for label.
func (g *Graph) Node(label string) (*Node, bool) {
	n, ok := g.nodes[label]
	return n, ok
}

// HasNode reports whether label is a node type.
func (g *Graph) HasNode(label string) bool {
	_, ok := g.nodes[label]
	return ok
}

// Labels returns every node label in declaration order.
func (g *Graph) Labels() []string {
	return slices.Clone(g.labels)
}

// BackRef returns the back-reference of label. Nodes without edges report
// "" and true.
func (g *Graph) BackRef(label string) (string, bool) {
	n, ok := g.nodes[label]
	if !ok {
		return "", false
	}

	return n.BackRef, true
}

// HasBackRef reports whether backRef addresses a node type.
func (g *Graph) HasBackRef(backRef string) bool {
	_, ok := g.backRefSets[backRef]
	return ok
}

// BackRefs returns the known back-references, sorted.
func (g *Graph) BackRefs() []string {
	return sets.List(sets.KeySet(g.backRefSets))
}

// Properties returns the property set addressed by backRef, or nil.
func (g *Graph) Properties(backRef string) sets.Set[string] {
	return g.backRefSets[backRef]
}

// PropertyList returns the properties addressed by backRef in declaration
// order.
func (g *Graph) PropertyList(backRef string) []string {
	return slices.Clone(g.backRefToProperties[backRef])
}

// NodeProperties returns the property set of label, including nodes
// without a back-reference.
func (g *Graph) NodeProperties(label string) sets.Set[string] {
	n, ok := g.nodes[label]
	if !ok {
		return nil
	}

	return sets.New(n.Properties...)
}

// Category returns the category of label.
func (g *Graph) Category(label string) string {
	if n, ok := g.nodes[label]; ok {
		return n.Category
	}

	return ""
}

// CategoryLabels returns the labels of category in declaration order.
func (g *Graph) CategoryLabels(category string) []string {
	return slices.Clone(g.categoryToLabels[category])
}
