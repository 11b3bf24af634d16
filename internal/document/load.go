package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads and parses a document, choosing the decoder by extension.
// Files ending in .json use the JSON decoder, everything else YAML.
func LoadFile(path string) (Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Value{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var v Value
	if strings.EqualFold(filepath.Ext(path), ".json") {
		v, err = ParseJSON(data)
	} else {
		v, err = ParseYAML(data)
	}

	if err != nil {
		return Value{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return v, nil
}

// ParseYAML parses YAML (or JSON, which YAML accepts) into a Value.
// An empty document yields Null.
func ParseYAML(data []byte) (Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Value{}, err
	}

	if root.Kind == 0 {
		return NewNull(), nil
	}

	return FromNode(&root)
}

// FromNode converts a decoded YAML node into a Value.
func FromNode(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return NewNull(), nil
		}

		return FromNode(n.Content[0])
	case yaml.AliasNode:
		if n.Alias == nil {
			return Value{}, fmt.Errorf("line %d: dangling alias", n.Line)
		}

		return FromNode(n.Alias)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			it, err := FromNode(c)
			if err != nil {
				return Value{}, err
			}

			items = append(items, it)
		}

		return NewArray(items...), nil
	case yaml.MappingNode:
		out := Value{kind: Object, fields: make(map[string]Value, len(n.Content)/2)}
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value

			val, err := FromNode(n.Content[i+1])
			if err != nil {
				return Value{}, err
			}

			if _, dup := out.fields[key]; !dup {
				out.keys = append(out.keys, key)
			}

			out.fields[key] = val
		}

		return out, nil
	case yaml.ScalarNode:
		return scalarFromNode(n), nil
	default:
		return Value{}, fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
	}
}

func scalarFromNode(n *yaml.Node) Value {
	switch n.ShortTag() {
	case "!!null":
		return NewNull()
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return NewBool(b)
		}
	case "!!int", "!!float":
		return NewNumber(n.Value)
	}

	return NewString(n.Value)
}

// ParseJSON parses a JSON document into a Value, keeping object key order.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeJSON(dec)
	if err != nil {
		return Value{}, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, errors.New("unexpected data after top-level JSON value")
	}

	return v, nil
}

// DecodeJSON reads the next JSON value from dec. It is used for streams of
// concatenated documents.
func DecodeJSON(dec *json.Decoder) (Value, error) {
	return decodeJSON(dec)
}

func decodeJSON(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			out := Value{kind: Object, fields: map[string]Value{}}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return Value{}, err
				}

				key, ok := kt.(string)
				if !ok {
					return Value{}, fmt.Errorf("unexpected object key %v", kt)
				}

				val, err := decodeJSON(dec)
				if err != nil {
					return Value{}, err
				}

				if _, dup := out.fields[key]; !dup {
					out.keys = append(out.keys, key)
				}

				out.fields[key] = val
			}

			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}

			return out, nil
		case '[':
			var items []Value
			for dec.More() {
				it, err := decodeJSON(dec)
				if err != nil {
					return Value{}, err
				}

				items = append(items, it)
			}

			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}

			return NewArray(items...), nil
		default:
			return Value{}, fmt.Errorf("unexpected delimiter %v", t)
		}
	case string:
		return NewString(t), nil
	case json.Number:
		return NewNumber(t.String()), nil
	case bool:
		return NewBool(t), nil
	case nil:
		return NewNull(), nil
	default:
		return Value{}, fmt.Errorf("unexpected token %v", tok)
	}
}
