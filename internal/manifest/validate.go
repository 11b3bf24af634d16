package manifest

import (
	"io"
	"log/slog"

	goversion "github.com/hashicorp/go-version"
	"k8s.io/apimachinery/pkg/util/sets"

	"gen3utils/internal/diagnostic"
	"gen3utils/internal/document"
)

type validator struct {
	manifest document.Value
	versions map[string]string
	log      *slog.Logger
	warned   sets.Set[string]
	out      diagnostic.Diagnostics
}

// Validate checks a manifest.json document against req. Errors and
// branch warnings are returned as diagnostics of kind Manifest.
func Validate(manifest document.Value, req *Requirements, log *slog.Logger) diagnostic.Diagnostics {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	v := &validator{manifest: manifest, log: log, warned: sets.New[string]()}

	block := manifest.Get("versions")
	if !block.IsObject() {
		v.out.Add(diagnostic.Manifest("versions block is missing in manifest.json"))
		return v.out
	}

	v.versions = make(map[string]string, block.Len())
	for _, svc := range block.Keys() {
		v.versions[svc] = block.Get(svc).Text()
	}

	hostname := manifest.Lookup("global", "hostname").StringOr("")
	if skip, ok := req.Avoid[hostname]; ok {
		for _, svc := range skip {
			log.Debug("skipping service", "service", svc, "hostname", hostname)
			delete(v.versions, svc)
		}
	}

	for _, rule := range req.Blocks {
		v.checkBlock(rule)
	}

	for _, rule := range req.Versions {
		v.checkVersions(rule)
	}

	return v.out
}

// version returns the tag of svc and its parsed form. The parsed version is
// nil for branches, which are reported once as a warning.
func (v *validator) version(svc string) (string, *goversion.Version, bool) {
	image, ok := v.versions[svc]
	if !ok {
		return "", nil, false
	}

	tag := ImageTag(image)
	if VersionIsBranch(tag, true) {
		if !v.warned.Has(svc) {
			v.warned.Insert(svc)
			v.log.Warn("service is on a branch: not validating", "service", svc, "version", tag)

			d := diagnostic.Manifest("%s is on a branch (%s): not validating", svc, tag)
			d.Severity = diagnostic.DiagnosticWarning
			v.out.Add(d)
		}

		return tag, nil, true
	}

	parsed, err := goversion.NewVersion(tag)
	if err != nil {
		return tag, nil, true
	}

	return tag, parsed, true
}

func (v *validator) checkBlock(rule BlockRule) {
	_, actual, ok := v.version(rule.Service)
	if !ok {
		return
	}

	if rule.Required && !v.manifest.Has(rule.Service) {
		v.out.Add(diagnostic.Manifest("%s block is missing in cdis-manifest", rule.Service))
	}

	if rule.Has == "" || actual == nil {
		return
	}

	if rule.Version != nil && !satisfies(actual, *rule.Version) {
		return
	}

	block := v.manifest.Get(rule.Service)
	if block.Has(rule.Has) || (!v.manifest.Has(rule.Service) && rule.Optional) {
		return
	}

	v.out.Add(diagnostic.Manifest("%s is missing in %s block or %s block is missing", rule.Has, rule.Service, rule.Service))
}

func (v *validator) checkVersions(rule VersionRule) {
	tag, actual, ok := v.version(rule.Service)
	if !ok || actual == nil {
		return
	}

	if rule.Constraint.Any {
		for _, need := range rule.Needs {
			if _, present := v.versions[need.Service]; !present {
				v.out.Add(diagnostic.Manifest("%s is missing in manifest.json", need.Service))
			}
		}

		return
	}

	if !satisfies(actual, rule.Constraint) {
		return
	}

	current := rule.Service + " " + tag

	for _, need := range rule.Needs {
		needTag, needVersion, present := v.version(need.Service)
		switch {
		case !present:
			v.out.Add(diagnostic.Manifest("Service %q not in manifest but required to validate %q with %q", need.Service, current, rule.needsString()))
		case needVersion == nil:
			// branches were already reported
		case !satisfies(needVersion, need.Constraint):
			v.out.Add(diagnostic.Manifest("Service %q version %q does not respect requirement %q for %q", need.Service, needTag, rule.needsString(), current))
		}
	}
}
