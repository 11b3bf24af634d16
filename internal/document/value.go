// Package document provides a tagged-union value tree for the loosely shaped
// JSON and YAML documents the validators read (ETL mappings, portal configs,
// service manifests).
//
// Lookups never fail: asking for an absent key or index yields a Value of
// kind Missing, so callers can chain accessors and test the result once.
// Object keys keep their declaration order.
package document

import (
	"sort"
	"strconv"
	"strings"
)

// Kind is the type tag of a Value.
type Kind int

const (
	Missing Kind = iota
	Null
	Bool
	Number
	String
	Array
	Object
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case Missing:
		return "missing"
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a node of a document tree.
type Value struct {
	kind   Kind
	text   string // scalar text for String, Number and Bool
	items  []Value
	keys   []string
	fields map[string]Value
}

// NewString returns a string value.
func NewString(s string) Value { return Value{kind: String, text: s} }

// NewNumber returns a number value from its textual form.
func NewNumber(text string) Value { return Value{kind: Number, text: text} }

// NewBool returns a boolean value.
func NewBool(b bool) Value { return Value{kind: Bool, text: strconv.FormatBool(b)} }

// NewNull returns a null value.
func NewNull() Value { return Value{kind: Null} }

// NewArray returns an array value.
func NewArray(items ...Value) Value { return Value{kind: Array, items: items} }

// NewObject returns an empty object value.
func NewObject() Value { return Value{kind: Object, fields: map[string]Value{}} }

// With returns a copy of the object with key set to v. Existing keys keep
// their position.
func (v Value) With(key string, val Value) Value {
	if v.kind != Object {
		v = NewObject()
	}

	out := Value{kind: Object, keys: append([]string(nil), v.keys...), fields: make(map[string]Value, len(v.fields)+1)}
	for k, f := range v.fields {
		out.fields[k] = f
	}

	if _, ok := out.fields[key]; !ok {
		out.keys = append(out.keys, key)
	}

	out.fields[key] = val

	return out
}

// Without returns a copy of the object with key removed.
func (v Value) Without(key string) Value {
	if v.kind != Object || !v.Has(key) {
		return v
	}

	out := Value{kind: Object, fields: make(map[string]Value, len(v.fields))}
	for _, k := range v.keys {
		if k == key {
			continue
		}

		out.keys = append(out.keys, k)
		out.fields[k] = v.fields[k]
	}

	return out
}

// Kind returns the type tag.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether the value is absent.
func (v Value) IsMissing() bool { return v.kind == Missing }

// IsNull reports whether the value is absent or an explicit null.
func (v Value) IsNull() bool { return v.kind == Missing || v.kind == Null }

// IsObject reports whether the value is an object.
func (v Value) IsObject() bool { return v.kind == Object }

// IsArray reports whether the value is an array.
func (v Value) IsArray() bool { return v.kind == Array }

// Get returns the field named key, or a Missing value.
func (v Value) Get(key string) Value {
	if v.kind != Object {
		return Value{}
	}

	return v.fields[key]
}

// Has reports whether the object declares key.
func (v Value) Has(key string) bool {
	if v.kind != Object {
		return false
	}

	_, ok := v.fields[key]

	return ok
}

// Lookup follows a chain of keys.
func (v Value) Lookup(keys ...string) Value {
	cur := v
	for _, k := range keys {
		cur = cur.Get(k)
	}

	return cur
}

// LookupPath follows a dot-separated chain of keys.
func (v Value) LookupPath(path string) Value {
	return v.Lookup(strings.Split(path, ".")...)
}

// At returns the i-th array element, or a Missing value.
func (v Value) At(i int) Value {
	if v.kind != Array || i < 0 || i >= len(v.items) {
		return Value{}
	}

	return v.items[i]
}

// Items returns the array elements. Non-arrays yield nil.
func (v Value) Items() []Value {
	if v.kind != Array {
		return nil
	}

	return v.items
}

// Keys returns the object keys in declaration order.
func (v Value) Keys() []string {
	if v.kind != Object {
		return nil
	}

	return v.keys
}

// Len returns the number of elements or fields, or the length of a string.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.items)
	case Object:
		return len(v.keys)
	case String:
		return len(v.text)
	default:
		return 0
	}
}

// Str returns the string content of a String value.
func (v Value) Str() (string, bool) {
	if v.kind != String {
		return "", false
	}

	return v.text, true
}

// StringOr returns the string content, or def when v is not a string.
func (v Value) StringOr(def string) string {
	if s, ok := v.Str(); ok {
		return s
	}

	return def
}

// Text returns the textual form of any scalar. Composite and absent values
// yield "".
func (v Value) Text() string {
	switch v.kind {
	case String, Number, Bool:
		return v.text
	default:
		return ""
	}
}

// Bool returns the content of a Bool value.
func (v Value) Bool() (bool, bool) {
	if v.kind != Bool {
		return false, false
	}

	return v.text == "true", true
}

// Float returns the content of a Number value.
func (v Value) Float() (float64, bool) {
	if v.kind != Number {
		return 0, false
	}

	f, err := strconv.ParseFloat(v.text, 64)
	if err != nil {
		return 0, false
	}

	return f, true
}

// Truthy applies lenient truthiness: missing, null, false, zero, the empty
// string and empty collections are false.
func (v Value) Truthy() bool {
	switch v.kind {
	case Missing, Null:
		return false
	case Bool:
		return v.text == "true"
	case Number:
		f, ok := v.Float()
		return ok && f != 0
	case String:
		return v.text != ""
	case Array:
		return len(v.items) > 0
	case Object:
		return len(v.keys) > 0
	default:
		return false
	}
}

// Strings returns the string elements of an array, skipping other kinds.
func (v Value) Strings() []string {
	out := make([]string, 0, len(v.Items()))
	for _, it := range v.Items() {
		if s, ok := it.Str(); ok {
			out = append(out, s)
		}
	}

	return out
}

// Interface converts the value into plain Go values (map[string]any, []any,
// string, float64, bool, nil).
func (v Value) Interface() any {
	switch v.kind {
	case Bool:
		b, _ := v.Bool()
		return b
	case Number:
		if f, ok := v.Float(); ok {
			return f
		}

		return v.text
	case String:
		return v.text
	case Array:
		out := make([]any, 0, len(v.items))
		for _, it := range v.items {
			out = append(out, it.Interface())
		}

		return out
	case Object:
		out := make(map[string]any, len(v.keys))
		for _, k := range v.keys {
			out[k] = v.fields[k].Interface()
		}

		return out
	default:
		return nil
	}
}

// From converts plain Go values into a Value. Map keys are sorted since Go
// maps carry no order.
func From(x any) Value {
	switch t := x.(type) {
	case nil:
		return NewNull()
	case Value:
		return t
	case string:
		return NewString(t)
	case bool:
		return NewBool(t)
	case int:
		return NewNumber(strconv.Itoa(t))
	case int64:
		return NewNumber(strconv.FormatInt(t, 10))
	case float64:
		return NewNumber(strconv.FormatFloat(t, 'f', -1, 64))
	case []string:
		items := make([]Value, 0, len(t))
		for _, s := range t {
			items = append(items, NewString(s))
		}

		return NewArray(items...)
	case []any:
		items := make([]Value, 0, len(t))
		for _, it := range t {
			items = append(items, From(it))
		}

		return NewArray(items...)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		out := Value{kind: Object, keys: keys, fields: make(map[string]Value, len(t))}
		for _, k := range keys {
			out.fields[k] = From(t[k])
		}

		return out
	default:
		return Value{}
	}
}
