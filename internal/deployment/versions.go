package deployment

import (
	"fmt"
	"slices"
	"strings"

	goversion "github.com/hashicorp/go-version"
	"github.com/samber/lo"

	"gen3utils/internal/document"
	"gen3utils/internal/manifest"
)

// Change is a service whose tag differs between two manifests.
type Change struct {
	Old string
	New string
}

var ctdsRegistries = []string{"quay.io/cdis", "dkr.ecr.us-east-1.amazonaws.com"}

// VersionsDict returns the images of a manifest: the versions block plus
// ssjdispatcher job images, sower job images and jupyterhub containers.
func VersionsDict(m document.Value) map[string]string {
	out := map[string]string{}

	versions := m.Get("versions")
	for _, svc := range versions.Keys() {
		out[svc] = versions.Get(svc).Text()
	}

	jobs := m.Lookup("ssjdispatcher", "job_images")
	for _, name := range jobs.Keys() {
		out["ssjdispatcher.job_images."+name] = jobs.Get(name).Text()
	}

	for _, job := range m.Get("sower").Items() {
		if image := job.Lookup("container", "image").StringOr(""); image != "" {
			out["sower.container.image."+ImageName(image)] = image
		}
	}

	for _, c := range m.Lookup("jupyterhub", "containers").Items() {
		if image := c.Get("image").StringOr(""); image != "" {
			out["jupyterhub.containers.image."+c.Get("name").Text()] = image
		}
	}

	return out
}

// ImageName returns the bare image name of an image reference:
// "host/gen3/dataguids:1.0.2" yields "dataguids".
func ImageName(image string) string {
	name, _, _ := strings.Cut(image, ":")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}

	return name
}

// ctdsTag returns the tag of a CTDS registry image.
func ctdsTag(image string) (string, bool) {
	if !lo.SomeBy(ctdsRegistries, func(r string) bool { return strings.Contains(image, r) }) {
		return "", false
	}

	parts := strings.Split(image, ":")
	if len(parts) < 2 {
		return "", false
	}

	return parts[1], true
}

// CompareVersionsBlocks returns the services whose CTDS image tag changed.
// New, deleted and non-CTDS services are skipped, as is the portal unless
// checkPortal is set.
func CompareVersionsBlocks(old, updated map[string]string, checkPortal bool) map[string]Change {
	out := map[string]Change{}

	for _, svc := range lo.Union(lo.Keys(old), lo.Keys(updated)) {
		if svc == "portal" && !checkPortal {
			continue
		}

		oldTag, okOld := ctdsTag(old[svc])
		newTag, okNew := ctdsTag(updated[svc])

		if okOld && okNew && oldTag != newTag {
			out[svc] = Change{Old: oldTag, New: newTag}
		}
	}

	return out
}

// DowngradedServices returns, sorted, the services moving to a lower
// version. Branches and monthly-release-to-semver moves are not compared.
func DowngradedServices(changes map[string]Change) []string {
	var out []string

	for svc, c := range changes {
		if manifest.VersionIsBranch(c.Old, false) || manifest.VersionIsBranch(c.New, false) {
			continue
		}

		if manifest.VersionIsMonthlyRelease(c.Old) != manifest.VersionIsMonthlyRelease(c.New) {
			continue
		}

		oldV, err := goversion.NewVersion(c.Old)
		if err != nil {
			continue
		}

		newV, err := goversion.NewVersion(c.New)
		if err != nil {
			continue
		}

		if newV.LessThan(oldV) {
			out = append(out, svc)
		}
	}

	slices.Sort(out)

	return out
}

// ServicesOnBranch returns, sorted, the CTDS services whose tag is a branch.
func ServicesOnBranch(versions map[string]string) []string {
	var out []string

	for svc, image := range versions {
		if tag, ok := ctdsTag(image); ok && manifest.VersionIsBranch(tag, false) {
			out = append(out, svc)
		}
	}

	slices.Sort(out)

	return out
}

// MasterURL rewrites a raw file URL to point at the master branch:
// ".../raw/<sha>/path" becomes ".../raw/master/path".
func MasterURL(rawURL string) (string, error) {
	parts := strings.Split(rawURL, "/")

	i := slices.Index(parts, "raw")
	if i < 0 || i+1 >= len(parts) {
		return "", fmt.Errorf("no raw/<ref> segment in %q", rawURL)
	}

	parts[i+1] = "master"

	return strings.Join(parts, "/"), nil
}
