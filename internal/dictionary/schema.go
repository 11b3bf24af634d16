package dictionary

import (
	"errors"
	"fmt"
	"strings"

	"gen3utils/internal/common"
	"gen3utils/internal/document"
)

// ErrLoad is returned when a dictionary schema cannot be fetched or parsed.
var ErrLoad = errors.New("failed to load dictionary")

const definitionsFile = "_definitions.yaml"

// Parse builds a graph from a schema document. Two layouts are accepted:
//
//	{"nodes": [{"label", "category", "edges": [{"backref"}], "properties": [...]}]}
//
// and the dictionary service's schema.json, an object keyed by
// "<node>.yaml" whose entries carry "id", "category", "links" and
// "properties".
func Parse(data []byte) (*Graph, error) {
	doc, err := document.ParseJSON(data)
	if err != nil {
		doc, err = document.ParseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoad, err)
		}
	}

	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: schema must be an object, got %s", ErrLoad, doc.Kind())
	}

	if doc.Get("nodes").IsArray() {
		return parseNodeList(doc.Get("nodes"))
	}

	return parseSchemaJSON(doc)
}

func parseNodeList(nodes document.Value) (*Graph, error) {
	g := NewGraph()

	for i, n := range nodes.Items() {
		label := n.Get("label").StringOr("")
		if label == "" {
			return nil, fmt.Errorf("%w: node #%d has no label", ErrLoad, i)
		}

		backRef := ""
		if first, ok := common.First(n.Get("edges").Items()); ok {
			backRef = first.Get("backref").StringOr("")
		}

		g.AddNode(label, n.Get("category").StringOr(""), backRef, n.Get("properties").Strings()...)
	}

	return g, nil
}

func parseSchemaJSON(doc document.Value) (*Graph, error) {
	g := NewGraph()

	for _, key := range doc.Keys() {
		if strings.HasPrefix(key, "_") || key == "metaschema.yaml" {
			continue
		}

		entry := doc.Get(key)

		label := entry.Get("id").StringOr("")
		if label == "" || !entry.Get("properties").IsObject() {
			continue
		}

		g.AddNode(label, entry.Get("category").StringOr(""), firstBackRef(entry.Get("links")), schemaProperties(doc, entry.Get("properties"))...)
	}

	if len(g.Labels()) == 0 {
		return nil, fmt.Errorf("%w: schema declares no nodes", ErrLoad)
	}

	return g, nil
}

// firstBackRef returns the back-reference of the first declared link,
// descending into a leading subgroup.
func firstBackRef(links document.Value) string {
	first, ok := common.First(links.Items())
	for ok {
		if br := first.Get("backref").StringOr(""); br != "" {
			return br
		}

		first, ok = common.First(first.Get("subgroup").Items())
	}

	return ""
}

func schemaProperties(root, props document.Value) []string {
	var out []string

	for _, key := range props.Keys() {
		if key != "$ref" {
			out = append(out, key)
			continue
		}

		ref := props.Get(key)

		refs := ref.Strings()
		if s, ok := ref.Str(); ok {
			refs = []string{s}
		}

		for _, r := range refs {
			out = append(out, resolveRef(root, r).Keys()...)
		}
	}

	return out
}

// resolveRef follows "<file>#/<path>" references within the schema.
// References to unknown files resolve to Missing.
func resolveRef(root document.Value, ref string) document.Value {
	file, pointer, _ := strings.Cut(ref, "#")
	if file == "" {
		file = definitionsFile
	}

	cur := root.Get(file)
	for _, part := range strings.Split(strings.Trim(pointer, "/"), "/") {
		if part == "" {
			continue
		}

		cur = cur.Get(part)
	}

	return cur
}
