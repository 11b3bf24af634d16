package manifest

import (
	"regexp"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

var (
	numericVersion = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)
	monthlyRelease = regexp.MustCompile(`^[0-9]{4}\.[0-9]{2}$`)
)

// VersionIsBranch reports whether v is a branch name rather than a version.
// Monthly release tags count as branches when releaseTagsAreBranches is set,
// since they do not compare against semantic versions.
func VersionIsBranch(v string, releaseTagsAreBranches bool) bool {
	if !numericVersion.MatchString(v) {
		return true
	}

	return releaseTagsAreBranches && monthlyRelease.MatchString(v)
}

// VersionIsMonthlyRelease reports whether v is a YYYY.MM release tag.
func VersionIsMonthlyRelease(v string) bool {
	return monthlyRelease.MatchString(v)
}

// ImageTag returns the tag of an image reference, or "" when untagged.
func ImageTag(image string) string {
	i := strings.LastIndex(image, ":")
	if i < 0 || strings.Contains(image[i:], "/") {
		return ""
	}

	return image[i+1:]
}

// satisfies reports whether actual meets c. Unparsable versions never do.
func satisfies(actual *goversion.Version, c Constraint) bool {
	if c.Any {
		return true
	}

	if c.Min != "" {
		lo, err := goversion.NewVersion(c.Min)
		if err != nil || actual.LessThan(lo) {
			return false
		}
	}

	if c.Max != "" {
		hi, err := goversion.NewVersion(c.Max)
		if err != nil || !actual.LessThan(hi) {
			return false
		}
	}

	return true
}
