package diagnostic

//go:generate go tool stringer -type=Kind -trimprefix=Kind -output=kind_string.go

// Kind is the category of a diagnostic.
type Kind int

const (
	_ Kind = iota // zero value is reserved for "no kind"

	KindProperties  // missing or invalid property attribute
	KindPath        // path segment not found in the dictionary
	KindField       // referenced field absent from its scope
	KindFieldSyntax // required configuration field absent
	KindFunction    // unsupported aggregation function
	KindFormat      // unexpected document shape
	KindManifest    // service manifest requirement violation
)
