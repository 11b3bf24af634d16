package deployment

import (
	"maps"
	"regexp"

	"k8s.io/apimachinery/pkg/util/sets"
)

// IgnoredServices are never compared or reported on branch.
var IgnoredServices = []string{
	"ambassador",
	"aws-es-proxy",
	"fluentd",
	"jupyterhub",
	"nb2",
	"access-backend",
	"acronymbot",
	"cedar-wrapper",
	"kayako-wrapper",
	"frontend-framework",
}

// ServiceToRepo maps versions-block names to their repository when the two
// differ. Other services live in uc-cdis/<service>.
var ServiceToRepo = map[string]string{
	"awshelper":                         "cloud-automation",
	"dashboard":                         "gen3-statics",
	"portal":                            "data-portal",
	"revproxy":                          "docker-nginx",
	"spark":                             "gen3-spark",
	"wts":                               "workspace-token-service",
	"metadata":                          "metadata-service",
	"covid19-etl":                       "covid19-tools",
	"covid19-notebook-etl":              "covid19-tools",
	"covid19-bayes":                     "covid19-tools",
	"datareplicate":                     "dcf-dataservice",
	"cedar-wrapper":                     "cedar-wrapper-service",
	"kayako-wrapper":                    "kayako-wrapper-service",
	"frontend-framework":                "gen3-frontend-framework",
	"metadata-delete-expired-objects":   "sower-jobs",
	"ssjdispatcher.job_images.indexing": "indexs3client",
}

// RepoPattern maps every service matching Pattern to Repo.
type RepoPattern struct {
	Pattern *regexp.Regexp
	Repo    string
}

// RepoPatterns are tried in order for services missing from ServiceToRepo.
var RepoPatterns = []RepoPattern{
	{regexp.MustCompile(`^sower\..*\.pelican-.*$`), "pelican"},
	{regexp.MustCompile(`^sower\..*\.(?:manifest-indexing|download-indexd-manifest|manifest-merging|metadata-manifest-ingestion|get-dbgap-metadata|batch-export|metadata-delete-expired-objects)$`), "sower-jobs"},
}

const repoOwner = "uc-cdis/"

// Rules configures which services are compared and where their code lives.
type Rules struct {
	Ignored       sets.Set[string]
	ServiceToRepo map[string]string
	Patterns      []RepoPattern
}

// DefaultRules returns the built-in rules.
func DefaultRules() Rules {
	return Rules{
		Ignored:       sets.New(IgnoredServices...),
		ServiceToRepo: maps.Clone(ServiceToRepo),
		Patterns:      RepoPatterns,
	}
}

// WithOverrides returns a copy of r with extra ignored services and repo
// mappings.
func (r Rules) WithOverrides(ignored []string, serviceToRepo map[string]string) Rules {
	out := Rules{
		Ignored:       r.Ignored.Clone().Insert(ignored...),
		ServiceToRepo: maps.Clone(r.ServiceToRepo),
		Patterns:      r.Patterns,
	}
	if out.ServiceToRepo == nil {
		out.ServiceToRepo = map[string]string{}
	}

	maps.Copy(out.ServiceToRepo, serviceToRepo)

	return out
}

// RepoName returns the "<owner>/<repo>" holding the code of service.
func RepoName(service, portalType string) string {
	return DefaultRules().RepoName(service, portalType)
}

// RepoName returns the "<owner>/<repo>" holding the code of service.
// portalType is the image name of the portal, which decides the portal
// repository.
func (r Rules) RepoName(service, portalType string) string {
	repo, ok := r.ServiceToRepo[service]
	if !ok {
		repo = service

		for _, p := range r.Patterns {
			if p.Pattern.MatchString(service) {
				repo = p.Repo
				break
			}
		}
	}

	if service == "portal" {
		switch portalType {
		case "data-ecosystem-portal":
			repo = "data-ecosystem-portal"
		case "dataguids":
			repo = "dataguids.org"
		}
	}

	return repoOwner + repo
}

// drop returns versions without ignored services.
func (r Rules) drop(versions map[string]string) map[string]string {
	out := make(map[string]string, len(versions))

	for svc, image := range versions {
		if !r.Ignored.Has(svc) {
			out[svc] = image
		}
	}

	return out
}
