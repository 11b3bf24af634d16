package mapping

import (
	"errors"
	"fmt"

	"gen3utils/internal/document"
)

// ErrInvalidDocument is returned for mapping documents that cannot be
// validated at all.
var ErrInvalidDocument = errors.New("invalid mapping document")

// LoadFile loads and parses a YAML mapping file from the given path.
func LoadFile(path string) (document.Value, error) {
	doc, err := document.LoadFile(path)
	if err != nil {
		return document.Value{}, fmt.Errorf("failed to load mapping file: %w", err)
	}

	return doc, nil
}

// Parse parses YAML data into a mapping document.
func Parse(data []byte) (document.Value, error) {
	doc, err := document.ParseYAML(data)
	if err != nil {
		return document.Value{}, fmt.Errorf("failed to parse mapping YAML: %w", err)
	}

	return doc, nil
}

// Mappings returns the index definitions of doc.
func Mappings(doc document.Value) ([]document.Value, error) {
	m := doc.Get("mappings")
	if m.IsMissing() {
		return nil, fmt.Errorf("%w: missing 'mappings'", ErrInvalidDocument)
	}

	if !m.IsArray() {
		return nil, fmt.Errorf("%w: 'mappings' must be a list, got %s", ErrInvalidDocument, m.Kind())
	}

	return m.Items(), nil
}
