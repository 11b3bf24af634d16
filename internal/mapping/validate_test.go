package mapping

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gen3utils/internal/diagnostic"
	"gen3utils/internal/dictionary"
)

// buildTestGraph creates a small clinical dictionary for validation tests.
func buildTestGraph() *dictionary.Graph {
	g := dictionary.NewGraph()

	g.AddNode("program", "administrative", "", "name", "dbgap_accession_number")
	g.AddNode("project", "administrative", "projects", "code", "name")
	g.AddNode("study", "administrative", "studies", "submitter_id", "project_id", "study_objective", "code")
	g.AddNode("subject", "clinical", "subjects", "submitter_id", "project_id", "gender", "race", "ethnicity")
	g.AddNode("demographic", "clinical", "demographics", "gender", "race", "year_of_birth")
	g.AddNode("sample", "biospecimen", "samples", "sample_type", "submitter_id")
	g.AddNode("aliquot", "biospecimen", "aliquots", "aliquot_volume")
	g.AddNode("submitted_aligned_reads", "data_file", "submitted_aligned_reads_files",
		"data_format", "file_size", "md5sum", "object_id", "project_id")
	g.AddNode("submitted_methylation", "data_file", "submitted_methylation_files",
		"data_format", "object_id", "assay_instrument_model", "project_id")

	return g
}

func validateYAML(t *testing.T, src string, opts Options) *Result {
	t.Helper()

	doc, err := Parse([]byte(src))
	require.NoError(t, err)

	res, err := Validate(buildTestGraph(), doc, opts)
	require.NoError(t, err)

	return res
}

func requireValid(t *testing.T, res *Result) {
	t.Helper()

	if !res.IsValid() {
		t.Fatalf("expected no errors, got:\n%s", spew.Sdump(res.Strings()))
	}
}

const validMapping = `
mappings:
  - name: subject_index
    doc_type: subject
    type: aggregator
    root: subject
    props:
      - name: submitter_id
      - name: project_id
      - name: sex
        src: gender
    flatten_props:
      - path: demographics
        props:
          - name: race
          - name: year_of_birth
    aggregated_props:
      - name: _samples_count
        path: samples
        fn: count
      - name: data_formats
        path: samples.aliquots._ANY.submitted_aligned_reads_files
        src: data_format
        fn: set
    parent_props:
      - path: studies[study_objective,study_code:code]
    joining_props:
      - index: file
        join_on: subject_id
        props:
          - name: file_formats
            src: data_format
            fn: set
  - name: file_index
    doc_type: file
    type: collector
    root: None
    category: data_file
    props:
      - name: object_id
      - name: data_format
      - name: assay_instrument_model
    injecting_props:
      subject:
        props:
          - name: subject_id
            src: id
            fn: set
`

func TestValidate_ValidMapping(t *testing.T) {
	res := validateYAML(t, validMapping, Options{})
	requireValid(t, res)

	require.Len(t, res.Indices, 2)

	subject, ok := res.Index("subject")
	require.True(t, ok)
	assert.Equal(t, "aggregator", subject.Type)
	assert.Equal(t, []string{
		"subject_id", "submitter_id", "project_id", "sex", "race", "year_of_birth",
		"_samples_count", "data_formats", "study_objective", "study_code", "file_formats",
	}, subject.Names())

	p, ok := subject.Get("study_code")
	require.True(t, ok)
	assert.Equal(t, "code", p.Source)
	assert.Equal(t, "studies", p.Path)
	assert.Equal(t, GroupParent, p.Group)

	p, ok = subject.Get("file_formats")
	require.True(t, ok)
	assert.Equal(t, GroupJoining, p.Group)
	assert.Equal(t, "index 'file'", p.Path)

	file, ok := res.Index("file")
	require.True(t, ok)
	assert.Equal(t, []string{"file_id", "object_id", "data_format", "assay_instrument_model", "subject_id"}, file.Names())
}

func TestValidate_Scenario_BarePropOnDocTypeNode(t *testing.T) {
	res := validateYAML(t, `
mappings:
  - doc_type: subject
    props:
      - name: project_id
`, Options{})

	requireValid(t, res)
}

func TestValidate_Scenario_MissingField(t *testing.T) {
	res := validateYAML(t, `
mappings:
  - doc_type: subject
    props:
      - name: missing_field
`, Options{})

	require.Len(t, res.Errors, 1)
	assert.Equal(t, diagnostic.KindField, res.Errors[0].Kind)
	assert.Contains(t, res.Errors[0].Message, "missing_field")
	assert.Equal(t, "subject", res.Errors[0].Index)
}

func TestValidate_Scenario_UnsupportedFunction(t *testing.T) {
	res := validateYAML(t, `
mappings:
  - doc_type: subject
    props:
      - name: project_id
        fn: average
`, Options{})

	require.Len(t, res.Errors, 1)
	assert.Equal(t, diagnostic.KindFunction, res.Errors[0].Kind)
	assert.Contains(t, res.Errors[0].String(), "Function error: 'average'")
}

func TestValidate_FieldErrorSuggestsCloseNames(t *testing.T) {
	res := validateYAML(t, `
mappings:
  - doc_type: subject
    props:
      - name: projet_id
`, Options{})

	require.Len(t, res.Errors, 1)
	assert.Equal(t, []string{"project_id"}, res.Errors[0].Suggestions)
}

func TestValidate_UnknownSegmentYieldsOnePathErrorPerOccurrence(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		wantPaths int
	}{
		{
			name: "bracket fields after unknown segment are not checked",
			yaml: `
mappings:
  - doc_type: subject
    parent_props:
      - path: unknowns[a,b:c,d]
`,
			wantPaths: 1,
		},
		{
			name: "unknown middle segment",
			yaml: `
mappings:
  - doc_type: subject
    aggregated_props:
      - name: volumes
        path: samples.nothere.aliquots
        src: not_checked_either
        fn: list
`,
			wantPaths: 1,
		},
		{
			name: "two unknown segments",
			yaml: `
mappings:
  - doc_type: subject
    aggregated_props:
      - name: volumes
        path: nothere.notthere_either
        fn: count
`,
			wantPaths: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := validateYAML(t, tt.yaml, Options{})

			require.Len(t, res.Errors, tt.wantPaths, spew.Sdump(res.Strings()))
			for _, e := range res.Errors {
				assert.Equal(t, diagnostic.KindPath, e.Kind)
			}
		})
	}
}

func TestValidate_NonIdentifierSegmentIsAPathError(t *testing.T) {
	res := validateYAML(t, `
mappings:
  - doc_type: subject
    props:
      - name: project_id
    aggregated_props:
      - name: total
        path: some-node
        fn: count
`, Options{})

	require.Len(t, res.Errors, 1, spew.Sdump(res.Strings()))
	assert.Equal(t, diagnostic.KindPath, res.Errors[0].Kind)
	assert.Equal(t, "Path error: some-node does not exist in this dictionary", res.Errors[0].String())
}

func TestValidate_PathErrorMessage(t *testing.T) {
	res := validateYAML(t, `
mappings:
  - doc_type: subject
    flatten_props:
      - path: demographic
        props:
          - name: race
`, Options{})

	require.Len(t, res.Errors, 1)
	assert.Equal(t, "Path error: demographic does not exist in this dictionary", res.Errors[0].String())
	assert.Contains(t, res.Errors[0].Suggestions, "demographics")
}

func TestValidate_BracketFieldsCheckedAgainstTheirSegment(t *testing.T) {
	res := validateYAML(t, `
mappings:
  - doc_type: sample
    parent_props:
      - path: subjects[subject_gender:gender].studies[study_objective,bad:nope]
`, Options{})

	require.Len(t, res.Errors, 1)
	assert.Equal(t, diagnostic.KindField, res.Errors[0].Kind)
	assert.Contains(t, res.Errors[0].Message, "'nope'")
	assert.Contains(t, res.Errors[0].Message, "subjects.studies")

	ix, _ := res.Index("sample")
	assert.Equal(t, []string{"sample_id", "subject_gender", "study_objective", "bad"}, ix.Names())
}

func TestValidate_CountSkipsSourceCheck(t *testing.T) {
	res := validateYAML(t, `
mappings:
  - doc_type: subject
    aggregated_props:
      - name: _aliquots_count
        path: samples.aliquots
        fn: count
      - name: _aliquots_bracket_count
        path: samples.aliquots[x:not_a_prop]
        fn: count
`, Options{})

	requireValid(t, res)
}

func TestValidate_AggregatedRequiresFn(t *testing.T) {
	res := validateYAML(t, `
mappings:
  - doc_type: subject
    aggregated_props:
      - name: sample_type
        path: samples
`, Options{})

	require.Len(t, res.Errors, 1)
	assert.Equal(t, diagnostic.KindFunction, res.Errors[0].Kind)
	assert.Contains(t, res.Errors[0].Message, "has no fn")
}

func TestValidate_AggregatedWithoutPathUsesGroupingPath(t *testing.T) {
	res := validateYAML(t, `
mappings:
  - doc_type: subject
    aggregated_props:
      - name: genders
        src: gender
        fn: set
`, Options{})

	requireValid(t, res)
}

func TestValidate_JoiningErrorsAreDistinct(t *testing.T) {
	res := validateYAML(t, `
mappings:
  - doc_type: subject
    props:
      - name: project_id
    joining_props:
      - index: files
        join_on: subject_id
        props:
          - name: data_format
      - index: file
        join_on: subject_id
        props:
          - name: file_size
  - doc_type: file
    category: data_file
    props:
      - name: data_format
    injecting_props:
      subject:
        props:
          - name: subject_id
            src: id
`, Options{})

	require.Len(t, res.Errors, 2, spew.Sdump(res.Strings()))

	unknownIndex := res.Errors[0]
	assert.Equal(t, diagnostic.KindProperties, unknownIndex.Kind)
	assert.Contains(t, unknownIndex.Message, "unknown index 'files'")
	assert.Equal(t, []string{"file"}, unknownIndex.Suggestions)

	absentSrc := res.Errors[1]
	assert.Equal(t, diagnostic.KindField, absentSrc.Kind)
	assert.Contains(t, absentSrc.Message, "'file_size'")
	assert.Contains(t, absentSrc.Message, "index 'file'")
}

func TestValidate_JoinOnMustExistInTarget(t *testing.T) {
	res := validateYAML(t, `
mappings:
  - doc_type: subject
    joining_props:
      - index: file
        join_on: case_id
        props:
          - name: data_format
      - index: file
        props:
          - name: object_id
  - doc_type: file
    category: data_file
    props:
      - name: data_format
      - name: object_id
`, Options{})

	require.Len(t, res.Errors, 2, spew.Sdump(res.Strings()))
	assert.Equal(t, diagnostic.KindField, res.Errors[0].Kind)
	assert.Contains(t, res.Errors[0].Message, "'case_id'")
	assert.Equal(t, diagnostic.KindProperties, res.Errors[1].Kind)
	assert.Contains(t, res.Errors[1].Message, "no join_on")
}

func TestValidate_JoinsSeeFirstPassIndicesOnly(t *testing.T) {
	subject := `
  - doc_type: subject
    props:
      - name: project_id
    joining_props:
      - index: study
        join_on: project_id
        props:
          - name: project_code
            src: cc
`
	study := `
  - doc_type: study
    props:
      - name: project_id
    joining_props:
      - index: project
        join_on: code
        props:
          - name: cc
            src: code
`
	project := `
  - doc_type: project
    props:
      - name: code
`

	for name, order := range map[string]string{
		"joiner first": subject + study + project,
		"joined first": study + subject + project,
	} {
		t.Run(name, func(t *testing.T) {
			res := validateYAML(t, "mappings:"+order, Options{})

			require.Len(t, res.Errors, 1, spew.Sdump(res.Strings()))
			assert.Equal(t, diagnostic.KindField, res.Errors[0].Kind)
			assert.Contains(t, res.Errors[0].Message, "'cc' is not a property of index 'study'")

			ix, ok := res.Index("study")
			require.True(t, ok)
			assert.Contains(t, ix.Names(), "cc")
		})
	}
}

const duplicateMapping = `
mappings:
  - doc_type: subject
    props:
      - name: project_id
      - name: subject_id
        src: id
    flatten_props:
      - path: demographics
        props:
          - name: project_id
            src: gender
  - doc_type: file
    category: data_file
    props:
      - name: data_format
      - name: data_format
`

func TestValidate_DuplicatesReportedByDefault(t *testing.T) {
	res := validateYAML(t, duplicateMapping, Options{})

	assert.Equal(t, []string{
		"Properties error: 'project_id' in index 'subject' is duplicated",
		"Properties error: 'data_format' in index 'file' is duplicated",
	}, res.Strings())

	// the later group still wins
	ix, _ := res.Index("subject")
	p, _ := ix.Get("project_id")
	assert.Equal(t, GroupFlatten, p.Group)
	assert.Equal(t, "gender", p.Source)
}

func TestValidate_AllowDuplicatesLastWriteWins(t *testing.T) {
	res := validateYAML(t, duplicateMapping, Options{AllowDuplicates: true})
	requireValid(t, res)

	ix, _ := res.Index("subject")
	assert.Equal(t, []string{"subject_id", "project_id"}, ix.Names())

	p, _ := ix.Get("project_id")
	assert.Equal(t, GroupFlatten, p.Group)
	assert.Equal(t, "demographics", p.Path)

	p, _ = ix.Get("subject_id")
	assert.Equal(t, GroupProps, p.Group, "explicit declaration replaces the synthetic id")
}

func TestValidate_GroupingPath(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		wantKind diagnostic.Kind
		wantMsg  string
	}{
		{
			name: "unknown root",
			yaml: `
mappings:
  - doc_type: participant
    root: participant
    props:
      - name: gender
`,
			wantKind: diagnostic.KindPath,
			wantMsg:  "participant does not exist in this dictionary",
		},
		{
			name: "unknown category",
			yaml: `
mappings:
  - doc_type: file
    category: data_files
    props:
      - name: object_id
`,
			wantKind: diagnostic.KindPath,
			wantMsg:  "data_files does not exist in this dictionary",
		},
		{
			name: "no root and doc_type is not a node",
			yaml: `
mappings:
  - doc_type: participant
    props:
      - name: gender
`,
			wantKind: diagnostic.KindProperties,
			wantMsg:  "'gender' in props of index 'participant' has no path to resolve it against",
		},
		{
			name: "root node without edges",
			yaml: `
mappings:
  - doc_type: program
    props:
      - name: name
`,
			wantKind: diagnostic.KindProperties,
			wantMsg:  "has no path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := validateYAML(t, tt.yaml, Options{})

			require.NotEmpty(t, res.Errors)
			assert.Equal(t, tt.wantKind, res.Errors[0].Kind)
			assert.Contains(t, res.Errors[0].Message, tt.wantMsg)
		})
	}
}

func TestValidate_CollectorUsesWholeCategory(t *testing.T) {
	res := validateYAML(t, `
mappings:
  - doc_type: file
    type: collector
    root: None
    category: data_file
    props:
      - name: object_id
      - name: assay_instrument_model
      - name: prop_doesnt_exist
`, Options{})

	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "prop_doesnt_exist")
}

func TestValidate_InjectingProps(t *testing.T) {
	res := validateYAML(t, `
mappings:
  - doc_type: file
    category: data_file
    injecting_props:
      subject:
        props:
          - name: subject_id
            src: id
      samples:
        props:
          - name: sample_type
      participant:
        props:
          - name: x
`, Options{})

	require.Len(t, res.Errors, 1)
	assert.Equal(t, "Path error: participant does not exist in this dictionary", res.Errors[0].String())

	ix, _ := res.Index("file")
	assert.Equal(t, []string{"file_id", "subject_id", "sample_type"}, ix.Names())
}

func TestValidate_ShapeProblemsAreCollected(t *testing.T) {
	res := validateYAML(t, `
mappings:
  - doc_type: subject
    props: project_id
    flatten_props:
      - just a string
    injecting_props: []
    parent_props:
      - path: "subjects[unclosed"
  - not an object
  - props:
      - name: project_id
  - doc_type: sample
    props:
      - src: sample_type
`, Options{})

	kinds := make([]diagnostic.Kind, 0, len(res.Errors))
	for _, e := range res.Errors {
		kinds = append(kinds, e.Kind)
	}

	assert.Equal(t, []diagnostic.Kind{
		diagnostic.KindFormat,     // props not a list
		diagnostic.KindFormat,     // flatten entry not an object
		diagnostic.KindFormat,     // injecting_props not a mapping
		diagnostic.KindFormat,     // unclosed bracket
		diagnostic.KindFormat,     // mapping entry not an object
		diagnostic.KindProperties, // missing doc_type
		diagnostic.KindProperties, // missing name
	}, kinds, spew.Sdump(res.Strings()))
}

func TestValidate_NonStringNameIsReported(t *testing.T) {
	res := validateYAML(t, `
mappings:
  - doc_type: subject
    props:
      - name: 123
      - name: project_id
`, Options{})

	require.Len(t, res.Errors, 1, spew.Sdump(res.Strings()))
	assert.Equal(t, diagnostic.KindProperties, res.Errors[0].Kind)
	assert.Equal(t, "name of property #0 in props of index 'subject' must be a string, got number", res.Errors[0].Message)
}

func TestValidate_DuplicateDocType(t *testing.T) {
	res := validateYAML(t, `
mappings:
  - doc_type: subject
  - doc_type: subject
`, Options{})

	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "declared more than once")
	assert.Len(t, res.Indices, 1)
}

func TestValidate_InvalidDocument(t *testing.T) {
	for _, src := range []string{"other: 1\n", "mappings: {a: 1}\n", ""} {
		doc, err := Parse([]byte(src))
		require.NoError(t, err)

		_, err = Validate(buildTestGraph(), doc, Options{})
		require.ErrorIs(t, err, ErrInvalidDocument)
	}

	doc, err := Parse([]byte("mappings: []\n"))
	require.NoError(t, err)

	_, err = Validate(nil, doc, Options{})
	require.Error(t, err)
}
