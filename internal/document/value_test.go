package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYAML_KeepsKeyOrderAndKinds(t *testing.T) {
	v, err := ParseYAML([]byte(`
mappings:
  - name: subject
    doc_type: subject
    count: 3
    ratio: 0.5
    enabled: true
    nothing: null
    version: 2.0.1
`))
	require.NoError(t, err)

	entry := v.Get("mappings").At(0)
	assert.Equal(t, []string{"name", "doc_type", "count", "ratio", "enabled", "nothing", "version"}, entry.Keys())
	assert.Equal(t, Number, entry.Get("count").Kind())
	assert.Equal(t, "3", entry.Get("count").Text())
	assert.Equal(t, Number, entry.Get("ratio").Kind())
	assert.Equal(t, Bool, entry.Get("enabled").Kind())
	assert.Equal(t, Null, entry.Get("nothing").Kind())
	assert.Equal(t, String, entry.Get("version").Kind())
	assert.Equal(t, "2.0.1", entry.Get("version").StringOr(""))
}

func TestParseYAML_Anchors(t *testing.T) {
	v, err := ParseYAML([]byte(`
base: &b
  name: x
copy: *b
`))
	require.NoError(t, err)
	assert.Equal(t, "x", v.Lookup("copy", "name").StringOr(""))
}

func TestParseYAML_Empty(t *testing.T) {
	v, err := ParseYAML(nil)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
	assert.False(t, v.IsMissing())
}

func TestParseJSON_KeepsKeyOrder(t *testing.T) {
	v, err := ParseJSON([]byte(`{"z": 1, "a": {"y": [1, "two", false, null]}, "m": "x"}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"z", "a", "m"}, v.Keys())

	arr := v.Lookup("a", "y")
	require.Equal(t, 4, arr.Len())
	assert.Equal(t, Number, arr.At(0).Kind())
	assert.Equal(t, "two", arr.At(1).StringOr(""))
	assert.Equal(t, Bool, arr.At(2).Kind())
	assert.Equal(t, Null, arr.At(3).Kind())
	assert.True(t, arr.At(4).IsMissing())
}

func TestParseJSON_TrailingData(t *testing.T) {
	_, err := ParseJSON([]byte(`{"a": 1} {"b": 2}`))
	require.Error(t, err)

	_, err = ParseJSON([]byte(`{"a": `))
	require.Error(t, err)
}

func TestValue_MissingChains(t *testing.T) {
	v := From(map[string]any{"a": "x"})

	assert.True(t, v.Lookup("b", "c", "d").IsMissing())
	assert.True(t, v.Get("a").Get("x").IsMissing())
	assert.True(t, v.At(0).IsMissing())
	assert.Nil(t, v.Get("b").Items())
	assert.Equal(t, "def", v.Get("b").StringOr("def"))
}

func TestValue_Truthy(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"missing", Value{}, false},
		{"null", NewNull(), false},
		{"false", NewBool(false), false},
		{"true", NewBool(true), true},
		{"zero", NewNumber("0"), false},
		{"number", NewNumber("1.5"), true},
		{"empty string", NewString(""), false},
		{"string", NewString("x"), true},
		{"empty array", NewArray(), false},
		{"array", NewArray(NewNull()), true},
		{"empty object", NewObject(), false},
		{"object", NewObject().With("a", NewNull()), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.Truthy())
		})
	}
}

func TestValue_WithWithout(t *testing.T) {
	v := NewObject().With("a", NewString("1")).With("b", NewString("2")).With("a", NewString("3"))
	assert.Equal(t, []string{"a", "b"}, v.Keys())
	assert.Equal(t, "3", v.Get("a").StringOr(""))

	w := v.Without("a")
	assert.Equal(t, []string{"b"}, w.Keys())
	assert.True(t, v.Has("a"), "original must be untouched")
}

func TestValue_StringsAndInterface(t *testing.T) {
	v, err := ParseJSON([]byte(`{"fields": ["a", 1, "b"], "n": 2, "ok": true}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, v.Get("fields").Strings())
	assert.Equal(t, map[string]any{
		"fields": []any{"a", 1.0, "b"},
		"n":      2.0,
		"ok":     true,
	}, v.Interface())
}

func TestLoadFile_ChoosesDecoderByExtension(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "gitops.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"graphql": {"boardCounts": []}}`), 0o600))

	yamlPath := filepath.Join(dir, "etlMapping.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("mappings: []\n"), 0o600))

	jv, err := LoadFile(jsonPath)
	require.NoError(t, err)
	assert.True(t, jv.Lookup("graphql", "boardCounts").IsArray())

	yv, err := LoadFile(yamlPath)
	require.NoError(t, err)
	assert.True(t, yv.Get("mappings").IsArray())

	_, err = LoadFile(filepath.Join(dir, "absent.yaml"))
	require.Error(t, err)
}
