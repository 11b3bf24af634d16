package manifest

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gen3utils/internal/diagnostic"
	"gen3utils/internal/document"
)

//go:embed validation_config.yaml
var defaultRequirements []byte

// ErrRequirements is returned for requirement files that cannot be used.
var ErrRequirements = errors.New("invalid manifest requirements")

// Constraint is a version requirement: any version, at least Min, or the
// half-open range [Min, Max).
type Constraint struct {
	Any bool
	Min string
	Max string
	// Range is set when the requirement was written as {min, max}.
	Range bool
}

func (c Constraint) String() string {
	switch {
	case c.Any:
		return "*"
	case c.Range && c.Max == "":
		return ">=" + c.Min
	case c.Range && c.Min == "":
		return "<" + c.Max
	case c.Range:
		return ">=" + c.Min + ",<" + c.Max
	default:
		return ">=" + c.Min
	}
}

// Need is one service required by a VersionRule.
type Need struct {
	Service    string
	Constraint Constraint
}

// VersionRule ties the needs of a service to its version.
type VersionRule struct {
	Service    string
	Constraint Constraint
	Needs      []Need
	Desc       string
}

func (r VersionRule) needsString() string {
	parts := make([]string, 0, len(r.Needs))
	for _, n := range r.Needs {
		parts = append(parts, n.Service+n.Constraint.String())
	}

	return strings.Join(parts, ", ")
}

// BlockRule is a requirement on a service's top-level manifest block.
type BlockRule struct {
	Service string
	// Required means the block itself must exist.
	Required bool
	Has      string
	Optional bool
	// Version restricts the Has check to matching service versions.
	Version *Constraint
}

// Requirements is a parsed validation_config.yaml.
type Requirements struct {
	Versions []VersionRule
	Blocks   []BlockRule
	Avoid    map[string][]string
}

// DefaultRequirements returns the embedded requirements.
func DefaultRequirements() (*Requirements, error) {
	return ParseRequirements(defaultRequirements)
}

// LoadRequirements reads requirements from path, or the embedded defaults
// when path is empty.
func LoadRequirements(path string) (*Requirements, error) {
	if path == "" {
		return DefaultRequirements()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read requirements: %w", err)
	}

	return ParseRequirements(data)
}

// ParseRequirements parses a requirements YAML document.
func ParseRequirements(data []byte) (*Requirements, error) {
	doc, err := document.ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequirements, err)
	}

	if !doc.IsNull() && !doc.IsObject() {
		return nil, fmt.Errorf("%w: expected a mapping, got %s", ErrRequirements, doc.Kind())
	}

	req := &Requirements{Avoid: map[string][]string{}}

	for i, entry := range doc.Get("versions").Items() {
		rule, err := parseVersionRule(entry)
		if err != nil {
			return nil, fmt.Errorf("%w: versions entry #%d: %w", ErrRequirements, i, err)
		}

		req.Versions = append(req.Versions, rule)
	}

	block := doc.Get("block")
	for _, svc := range block.Keys() {
		rule, err := parseBlockRule(svc, block.Get(svc))
		if err != nil {
			return nil, fmt.Errorf("%w: block %q: %w", ErrRequirements, svc, err)
		}

		req.Blocks = append(req.Blocks, rule)
	}

	avoid := doc.Get("avoid")
	for _, host := range avoid.Keys() {
		val := avoid.Get(host)
		if s, ok := val.Str(); ok {
			req.Avoid[host] = []string{s}
			continue
		}

		req.Avoid[host] = val.Strings()
	}

	return req, nil
}

func parseVersionRule(entry document.Value) (VersionRule, error) {
	keys := entry.Keys()
	if len(keys) == 0 {
		return VersionRule{}, errors.New("expected a mapping starting with the service name")
	}

	// the first key names the service
	rule := VersionRule{Service: keys[0], Desc: entry.Get("desc").StringOr("")}

	c, err := parseConstraint(entry.Get(rule.Service))
	if err != nil {
		return VersionRule{}, fmt.Errorf("%s: %w", rule.Service, err)
	}

	rule.Constraint = c

	needs := entry.Get("needs")
	if !needs.IsObject() {
		return VersionRule{}, fmt.Errorf("%s: 'needs' must be a mapping", rule.Service)
	}

	for _, svc := range needs.Keys() {
		c, err := parseConstraint(needs.Get(svc))
		if err != nil {
			return VersionRule{}, fmt.Errorf("%s needs %s: %w", rule.Service, svc, err)
		}

		rule.Needs = append(rule.Needs, Need{Service: svc, Constraint: c})
	}

	return rule, nil
}

func parseConstraint(v document.Value) (Constraint, error) {
	if v.IsObject() {
		return Constraint{
			Range: true,
			Min:   v.Get("min").Text(),
			Max:   v.Get("max").Text(),
		}, nil
	}

	s := v.Text()

	switch s {
	case "":
		return Constraint{}, errors.New("missing version")
	case "*":
		return Constraint{Any: true}, nil
	default:
		return Constraint{Min: s}, nil
	}
}

func parseBlockRule(svc string, v document.Value) (BlockRule, error) {
	rule := BlockRule{Service: svc}

	if !v.IsObject() {
		if v.Text() != "true" {
			return BlockRule{}, fmt.Errorf("expected \"true\" or a mapping, got %q", v.Text())
		}

		rule.Required = true

		return rule, nil
	}

	rule.Has = v.Get("has").StringOr("")
	rule.Optional = v.Get("optional").Text() == "true"

	if ver := v.Get("version"); ver.IsObject() {
		c, err := parseConstraint(ver)
		if err != nil {
			return BlockRule{}, err
		}

		if c.Min == "" && c.Max == "" {
			return BlockRule{}, errors.New("version needs min or max")
		}

		rule.Version = &c
	}

	return rule, nil
}

// ValidateRequirements checks the requirements file itself: every versions
// entry is described and ranges give both bounds.
func ValidateRequirements(req *Requirements) diagnostic.Diagnostics {
	var out diagnostic.Diagnostics

	checkRange := func(c Constraint, where string) {
		if c.Range && (c.Min == "" || c.Max == "") {
			out.Add(diagnostic.Manifest("%s must set both min and max", where))
		}
	}

	for _, r := range req.Versions {
		if r.Desc == "" {
			out.Add(diagnostic.Manifest("missing description of requirement for %q", r.Service))
		}

		checkRange(r.Constraint, r.Service)

		for _, n := range r.Needs {
			checkRange(n.Constraint, r.Service+" needs "+n.Service)
		}
	}

	return out
}
