package mapping

import (
	"slices"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	"gen3utils/internal/diagnostic"
	"gen3utils/internal/document"
	"gen3utils/internal/match"
)

// scope is the property set a source field is resolved against.
type scope struct {
	path  string
	props sets.Set[string]
}

// usable drops scopes that cannot address a node.
func (s *scope) usable() *scope {
	if s == nil || s.path == "" || s.props == nil {
		return nil
	}

	return s
}

func suggest(name string, candidates []string) []string {
	return match.Suggest(name, candidates, match.DefaultLimit)
}

// fieldError reports src missing from sc.
func fieldError(src string, sc *scope, where, docType string) diagnostic.Diagnostic {
	d := diagnostic.Field("'%s' is not a property of %s (%s)", src, sc.path, where).
		WithIndex(docType).
		WithSuggestions(suggest(src, sets.List(sc.props))...)
	d.FieldPath = src

	return d
}

// checkFn validates an optional aggregation function.
func checkFn(fn document.Value, name, where, docType string) (string, []diagnostic.Diagnostic) {
	if fn.IsNull() {
		return "", nil
	}

	s, ok := fn.Str()
	if !ok || !slices.Contains(SupportedFunctions, s) {
		d := diagnostic.Function("'%s' for '%s' in %s is not one of %s", fn.Text(), name, where, strings.Join(SupportedFunctions, ", ")).
			WithIndex(docType)

		return "", []diagnostic.Diagnostic{d}
	}

	return s, nil
}

// listEntries returns the objects of a group list, reporting shape problems.
func listEntries(val document.Value, where, docType string) ([]document.Value, []diagnostic.Diagnostic) {
	if !val.IsArray() {
		return nil, []diagnostic.Diagnostic{diagnostic.Format("%s must be a list, got %s", where, val.Kind()).WithIndex(docType)}
	}

	var (
		out   []document.Value
		diags []diagnostic.Diagnostic
	)

	for i, it := range val.Items() {
		if !it.IsObject() {
			diags = append(diags, diagnostic.Format("entry #%d of %s must be an object, got %s", i, where, it.Kind()).WithIndex(docType))
			continue
		}

		out = append(out, it)
	}

	return out, diags
}

// propertyName returns the entry's name, or a diagnostic when absent.
func propertyName(entry document.Value, i int, where, docType string) (string, *diagnostic.Diagnostic) {
	val := entry.Get("name")
	if val.IsNull() {
		d := diagnostic.Properties("property #%d in %s has no name", i, where).WithIndex(docType)
		return "", &d
	}

	name, ok := val.Str()
	if !ok {
		d := diagnostic.Properties("name of property #%d in %s must be a string, got %s", i, where, val.Kind()).WithIndex(docType)
		return "", &d
	}

	if name == "" {
		d := diagnostic.Properties("property #%d in %s has no name", i, where).WithIndex(docType)
		return "", &d
	}

	return name, nil
}

// validatePropList checks a list of {name, src, fn} entries against sc. A
// nil scope means no path is available to resolve sources.
func (v *validator) validatePropList(val document.Value, group, docType string, sc *scope) ([]Property, []diagnostic.Diagnostic) {
	where := describe(group, docType)

	entries, diags := listEntries(val, where, docType)

	var props []Property

	for i, entry := range entries {
		name, bad := propertyName(entry, i, where, docType)
		if bad != nil {
			diags = append(diags, *bad)
			continue
		}

		fn, fnDiags := checkFn(entry.Get("fn"), name, where, docType)
		diags = append(diags, fnDiags...)

		src := entry.Get("src").StringOr(name)

		if sc == nil {
			diags = append(diags, diagnostic.Properties("'%s' in %s has no path to resolve it against", name, where).WithIndex(docType))
		} else if fn != FnCount && !sc.props.Has(src) {
			diags = append(diags, fieldError(src, sc, where, docType))
		}

		p := Property{Name: name, Source: src, Group: group, Fn: fn}
		if sc != nil {
			p.Path = sc.path
		}

		props = append(props, p)
	}

	return props, diags
}

func (v *validator) validateFlatten(val document.Value, docType string, def *scope) ([]Property, []diagnostic.Diagnostic) {
	where := describe(GroupFlatten, docType)

	entries, diags := listEntries(val, where, docType)

	var props []Property

	for _, entry := range entries {
		sc, more := v.entryScope(entry, where, docType, def, false)
		diags = append(diags, more...)

		if sc == nil && len(more) > 0 {
			// the path error already covers this entry
			continue
		}

		got, more := v.validatePropList(entry.Get("props"), GroupFlatten, docType, sc)
		diags = append(diags, more...)
		props = append(props, got...)
	}

	return props, diags
}

func (v *validator) validateAggregated(val document.Value, docType string, def *scope) ([]Property, []diagnostic.Diagnostic) {
	where := describe(GroupAggregated, docType)

	entries, diags := listEntries(val, where, docType)

	var props []Property

	for i, entry := range entries {
		name, bad := propertyName(entry, i, where, docType)
		if bad != nil {
			diags = append(diags, *bad)
			continue
		}

		fnVal := entry.Get("fn")
		if fnVal.IsNull() {
			diags = append(diags, diagnostic.Function("'%s' in %s has no fn", name, where).WithIndex(docType))
		}

		fn, more := checkFn(fnVal, name, where, docType)
		diags = append(diags, more...)

		sc, more := v.entryScope(entry, where, docType, def, fn == FnCount)
		diags = append(diags, more...)

		src := entry.Get("src").StringOr(name)
		p := Property{Name: name, Source: src, Group: GroupAggregated, Fn: fn}

		switch {
		case sc != nil:
			p.Path = sc.path
			if fn != FnCount && !sc.props.Has(src) {
				diags = append(diags, fieldError(src, sc, where, docType))
			}
		case len(more) == 0:
			diags = append(diags, diagnostic.Properties("'%s' in %s has no path to resolve it against", name, where).WithIndex(docType))
		}

		props = append(props, p)
	}

	return props, diags
}

func (v *validator) validateInjecting(val document.Value, docType string) ([]Property, []diagnostic.Diagnostic) {
	where := describe(GroupInjecting, docType)

	if !val.IsObject() {
		return nil, []diagnostic.Diagnostic{diagnostic.Format("%s must be a mapping of node to props, got %s", where, val.Kind()).WithIndex(docType)}
	}

	var (
		props []Property
		diags []diagnostic.Diagnostic
	)

	for _, node := range val.Keys() {
		sc := v.nodeScope(node)
		if sc == nil {
			diags = append(diags, v.pathError(node, docType))
			continue
		}

		got, more := v.validatePropList(val.Get(node).Get("props"), GroupInjecting, docType, sc)
		diags = append(diags, more...)
		props = append(props, got...)
	}

	return props, diags
}

func (v *validator) validateParent(val document.Value, docType string) ([]Property, []diagnostic.Diagnostic) {
	where := describe(GroupParent, docType)

	entries, diags := listEntries(val, where, docType)

	var props []Property

	for _, entry := range entries {
		raw := entry.Get("path").StringOr("")
		if raw == "" {
			diags = append(diags, diagnostic.Properties("an entry in %s has no path", where).WithIndex(docType))
			continue
		}

		_, outs, more := v.resolvePath(raw, where, docType, false)
		diags = append(diags, more...)

		for _, o := range outs {
			o.Group = GroupParent
			props = append(props, o)
		}
	}

	return props, diags
}

// validateJoins checks joining_props against the computed target indices
// and merges the joined properties into ix.
func (v *validator) validateJoins(ix *Index, val document.Value) []diagnostic.Diagnostic {
	where := describe(GroupJoining, ix.DocType)

	entries, diags := listEntries(val, where, ix.DocType)

	for _, entry := range entries {
		target := entry.Get("index").StringOr("")
		if target == "" {
			diags = append(diags, diagnostic.Properties("an entry in %s has no index", where).WithIndex(ix.DocType))
			continue
		}

		joined, ok := v.firstPass[target]
		if !ok {
			d := diagnostic.Properties("%s references unknown index '%s'", where, target).
				WithIndex(ix.DocType).
				WithSuggestions(suggest(target, sets.List(sets.KeySet(v.indices)))...)
			diags = append(diags, d)

			continue
		}

		sc := &scope{path: "index '" + target + "'", props: joined}

		joinOn := entry.Get("join_on").StringOr("")
		switch {
		case joinOn == "":
			diags = append(diags, diagnostic.Properties("join on index '%s' in %s has no join_on", target, where).WithIndex(ix.DocType))
		case !sc.props.Has(joinOn):
			diags = append(diags, fieldError(joinOn, sc, where+" join_on", ix.DocType))
		}

		props, more := v.validatePropList(entry.Get("props"), GroupJoining, ix.DocType, sc)
		diags = append(diags, more...)
		diags = append(diags, v.merge(ix, props)...)
	}

	return diags
}

// entryScope resolves an entry's "path", falling back to the grouping
// scope. Path diagnostics are returned with a nil scope.
func (v *validator) entryScope(entry document.Value, where, docType string, def *scope, skipFields bool) (*scope, []diagnostic.Diagnostic) {
	pathVal := entry.Get("path")
	if pathVal.IsNull() {
		return def, nil
	}

	raw, ok := pathVal.Str()
	if !ok || raw == "" {
		return nil, []diagnostic.Diagnostic{diagnostic.Properties("path in %s must be a non-empty string", where).WithIndex(docType)}
	}

	sc, _, diags := v.resolvePath(raw, where, docType, skipFields)

	return sc, diags
}

// nodeScope resolves a node label or back-reference.
func (v *validator) nodeScope(name string) *scope {
	if backRef, ok := v.graph.BackRef(name); ok {
		path := backRef
		if path == "" {
			path = name
		}

		return &scope{path: path, props: v.graph.NodeProperties(name)}
	}

	if v.graph.HasBackRef(name) {
		return &scope{path: name, props: v.graph.Properties(name)}
	}

	return nil
}

// resolvePath walks a path. Each unknown segment yields one path error and
// its bracket fields are not checked. Bracket fields are checked against
// their own segment, or the last resolved one for wildcards. The final
// scope is nil when any segment failed.
func (v *validator) resolvePath(raw, where, docType string, skipFields bool) (*scope, []Property, []diagnostic.Diagnostic) {
	fp, err := ParsePath(raw)
	if err != nil {
		return nil, nil, []diagnostic.Diagnostic{diagnostic.Format("%s: %v", where, err).WithIndex(docType)}
	}

	var (
		cur    *scope
		failed bool
		outs   []Property
		diags  []diagnostic.Diagnostic
		walked []string
	)

	for _, seg := range fp.Segments {
		if !seg.IsWildcard() {
			if !v.graph.HasBackRef(seg.Name) {
				diags = append(diags, v.pathError(seg.Name, docType))
				failed = true
				cur = nil

				continue
			}

			walked = append(walked, seg.Name)
			cur = &scope{path: strings.Join(walked, "."), props: v.graph.Properties(seg.Name)}
		}

		for _, f := range seg.Fields {
			if cur == nil {
				continue
			}

			if !skipFields && !cur.props.Has(f.Source) {
				diags = append(diags, fieldError(f.Source, cur, where, docType))
			}

			outs = append(outs, Property{Name: f.Name, Source: f.Source, Path: cur.path})
		}
	}

	if failed || cur == nil {
		if !failed && len(diags) == 0 {
			diags = append(diags, diagnostic.Properties("path '%s' in %s addresses no node", raw, where).WithIndex(docType))
		}

		return nil, outs, diags
	}

	return cur, outs, diags
}
