package mapping

import (
	"errors"
	"fmt"
	"strings"
)

// Wildcard is the path segment matching any node; it is skipped during
// resolution.
const Wildcard = "_ANY"

// FieldRef is one entry of a segment's bracket block.
type FieldRef struct {
	// Name is the output property name.
	Name string
	// Source is the node property it reads; equal to Name when omitted.
	Source string
}

// PathSegment is one back-reference of a path.
type PathSegment struct {
	Name   string
	Fields []FieldRef
}

// IsWildcard reports whether the segment is the "_ANY" token.
func (s PathSegment) IsWildcard() bool {
	return s.Name == Wildcard
}

// FieldPath is a parsed path expression.
type FieldPath struct {
	Raw      string
	Segments []PathSegment
}

// String returns the path as written.
func (p FieldPath) String() string {
	return p.Raw
}

// ParsePath parses "seg[out:src,...].seg2" into a FieldPath.
func ParsePath(path string) (FieldPath, error) {
	if strings.TrimSpace(path) == "" {
		return FieldPath{}, errors.New("empty path")
	}

	parts, err := splitSegments(path)
	if err != nil {
		return FieldPath{}, err
	}

	segments := make([]PathSegment, 0, len(parts))

	for _, part := range parts {
		seg, err := parseSegment(part)
		if err != nil {
			return FieldPath{}, fmt.Errorf("invalid path %q: %w", path, err)
		}

		segments = append(segments, seg)
	}

	return FieldPath{Raw: path, Segments: segments}, nil
}

// splitSegments splits on dots outside bracket blocks.
func splitSegments(path string) ([]string, error) {
	var (
		parts []string
		depth int
		start int
	)

	for i, r := range path {
		switch r {
		case '[':
			depth++
			if depth > 1 {
				return nil, fmt.Errorf("invalid path %q: nested '['", path)
			}
		case ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("invalid path %q: unbalanced ']'", path)
			}
		case '.':
			if depth == 0 {
				parts = append(parts, path[start:i])
				start = i + 1
			}
		}
	}

	if depth != 0 {
		return nil, fmt.Errorf("invalid path %q: unclosed '['", path)
	}

	return append(parts, path[start:]), nil
}

func parseSegment(part string) (PathSegment, error) {
	part = strings.TrimSpace(part)
	if part == "" {
		return PathSegment{}, errors.New("empty segment")
	}

	name, rest, hasBlock := strings.Cut(part, "[")
	name = strings.TrimSpace(name)

	// any other name is left for the dictionary to resolve
	if name == "" {
		return PathSegment{}, fmt.Errorf("missing segment name in %q", part)
	}

	seg := PathSegment{Name: name}
	if !hasBlock {
		return seg, nil
	}

	body, ok := strings.CutSuffix(rest, "]")
	if !ok {
		return PathSegment{}, fmt.Errorf("unexpected text after ']' in %q", part)
	}

	fields, err := parseFields(body)
	if err != nil {
		return PathSegment{}, fmt.Errorf("segment %q: %w", name, err)
	}

	seg.Fields = fields

	return seg, nil
}

// parseFields parses "a:b,c" bracket contents.
func parseFields(body string) ([]FieldRef, error) {
	if strings.TrimSpace(body) == "" {
		return nil, errors.New("empty bracket block")
	}

	var fields []FieldRef

	for entry := range strings.SplitSeq(body, ",") {
		out, src, hasSrc := strings.Cut(entry, ":")
		out = strings.TrimSpace(out)
		src = strings.TrimSpace(src)

		if out == "" {
			return nil, fmt.Errorf("empty field name in %q", body)
		}

		if !hasSrc {
			src = out
		} else if src == "" {
			return nil, fmt.Errorf("empty source for field %q", out)
		}

		fields = append(fields, FieldRef{Name: out, Source: src})
	}

	return fields, nil
}
