package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want []PathSegment
	}{
		{
			name: "single segment",
			path: "samples",
			want: []PathSegment{{Name: "samples"}},
		},
		{
			name: "chain with wildcard",
			path: "samples.aliquots._ANY.submitted_aligned_reads_files",
			want: []PathSegment{
				{Name: "samples"},
				{Name: "aliquots"},
				{Name: Wildcard},
				{Name: "submitted_aligned_reads_files"},
			},
		},
		{
			name: "bracket fields with and without source",
			path: "studies[study_objective, study_code:code].projects[project_name:name]",
			want: []PathSegment{
				{Name: "studies", Fields: []FieldRef{
					{Name: "study_objective", Source: "study_objective"},
					{Name: "study_code", Source: "code"},
				}},
				{Name: "projects", Fields: []FieldRef{
					{Name: "project_name", Source: "name"},
				}},
			},
		},
		{
			name: "dots inside brackets do not split",
			path: "subjects[a.b]",
			want: []PathSegment{
				{Name: "subjects", Fields: []FieldRef{{Name: "a.b", Source: "a.b"}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp, err := ParsePath(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.path, fp.String())
			assert.Equal(t, tt.want, fp.Segments)
		})
	}
}

func TestParsePath_Errors(t *testing.T) {
	tests := []struct {
		path    string
		wantErr string
	}{
		{"", "empty path"},
		{"samples..aliquots", "empty segment"},
		{"samples.", "empty segment"},
		{"subjects[a[b]]", "nested '['"},
		{"subjects]a", "unbalanced ']'"},
		{"subjects[a,b", "unclosed '['"},
		{"subjects[a]b", "unexpected text after ']'"},
		{"subjects[]", "empty bracket block"},
		{"subjects[,a]", "empty field name"},
		{"subjects[a:]", "empty source"},
		{"samples.[a]", "missing segment name"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := ParsePath(tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParsePath_AnyNameIsASegment(t *testing.T) {
	fp, err := ParsePath("some-node.1subjects[a]")
	require.NoError(t, err)
	require.Len(t, fp.Segments, 2)
	assert.Equal(t, "some-node", fp.Segments[0].Name)
	assert.Equal(t, "1subjects", fp.Segments[1].Name)
}

func TestPathSegment_IsWildcard(t *testing.T) {
	assert.True(t, PathSegment{Name: "_ANY"}.IsWildcard())
	assert.False(t, PathSegment{Name: "_any"}.IsWildcard())
}
