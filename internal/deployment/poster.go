package deployment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/samber/lo"

	"gen3utils/internal/document"
	"gen3utils/internal/manifest"
)

// Release note sections used in comments.
const (
	SectionDeploymentChanges = "deployment changes"
	SectionBreakingChanges   = "breaking changes"
)

// PullRequestFile is a file changed by a pull request.
type PullRequestFile struct {
	Filename string
	RawURL   string
}

// GitHub is the subset of the GitHub API the poster needs.
type GitHub interface {
	PullRequestFiles(ctx context.Context, repo string, pr int) ([]PullRequestFile, error)
	// FetchJSON returns found=false when the file does not exist.
	FetchJSON(ctx context.Context, rawURL string) (doc document.Value, found bool, err error)
	CreateComment(ctx context.Context, repo string, pr int, body string) error
}

// ReleaseNotesSource returns release notes between two tags of a
// repository, keyed by lowercase section name.
type ReleaseNotesSource interface {
	ReleaseNotes(ctx context.Context, repo, from, to string) (map[string][]string, error)
}

// Poster comments the deployment changes of a manifest pull request.
type Poster struct {
	GitHub GitHub
	Notes  ReleaseNotesSource
	Rules  Rules
	Log    *slog.Logger
}

func (p *Poster) logger() *slog.Logger {
	if p.Log == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return p.Log
}

// Run compares every manifest.json changed by the pull request with its
// master version and posts a single comment. It returns the comment, or ""
// when there was nothing to say.
func (p *Poster) Run(ctx context.Context, repo string, pr int) (string, error) {
	log := p.logger()
	repo = strings.Trim(repo, "/")

	log.Info("checking pull request", "repository", repo, "pull_request", pr)

	files, err := p.GitHub.PullRequestFiles(ctx, repo, pr)
	if err != nil {
		return "", fmt.Errorf("unable to get PR files: %w", err)
	}

	manifests := lo.Filter(files, func(f PullRequestFile, _ int) bool {
		return strings.HasSuffix(f.Filename, "manifest.json")
	})
	if len(manifests) == 0 {
		log.Info("no manifest files to check")
		return "", nil
	}

	var full strings.Builder

	for _, f := range manifests {
		log.Info("checking manifest", "file", f.Filename)

		contents, err := p.fileComment(ctx, f)
		if err != nil {
			return "", fmt.Errorf("%s: %w", f.Filename, err)
		}

		if contents != "" {
			full.WriteString("# " + f.Filename + "\n" + contents)
		}
	}

	if full.Len() == 0 {
		return "", nil
	}

	log.Debug("posting comment", "body", full.String())

	if err := p.GitHub.CreateComment(ctx, repo, pr, full.String()); err != nil {
		return "", fmt.Errorf("failed to write comment: %w", err)
	}

	return full.String(), nil
}

func (p *Poster) fileComment(ctx context.Context, f PullRequestFile) (string, error) {
	masterURL, err := MasterURL(f.RawURL)
	if err != nil {
		return "", err
	}

	oldDoc, oldFound, err := p.GitHub.FetchJSON(ctx, masterURL)
	if err != nil {
		return "", fmt.Errorf("unable to get %s: %w", masterURL, err)
	}

	newDoc, newFound, err := p.GitHub.FetchJSON(ctx, f.RawURL)
	if err != nil {
		return "", fmt.Errorf("unable to get %s: %w", f.RawURL, err)
	}

	if !newFound {
		return "", fmt.Errorf("unable to get %s: not found", f.RawURL)
	}

	newVersions := p.Rules.drop(VersionsDict(newDoc))
	newPortal := ImageName(newVersions["portal"])

	c := Comment{ServicesOnBranch: ServicesOnBranch(newVersions)}

	// a new file has nothing to compare against
	if oldFound {
		oldVersions := p.Rules.drop(VersionsDict(oldDoc))

		// portal versions only compare within the same repository
		changes := CompareVersionsBlocks(oldVersions, newVersions, ImageName(oldVersions["portal"]) == newPortal)
		p.logger().Info("updates", "changes", changes)

		c.Downgraded = DowngradedServices(changes)

		c.DeploymentChanges, c.BreakingChanges, err = p.importantChanges(ctx, changes, newPortal)
		if err != nil {
			return "", err
		}
	}

	return GenerateComment(c), nil
}

// importantChanges collects deployment and breaking change notes for every
// service that moved between two versions.
func (p *Poster) importantChanges(ctx context.Context, changes map[string]Change, portalType string) (map[string][]string, map[string][]string, error) {
	deployment := map[string][]string{}
	breaking := map[string][]string{}

	services := lo.Keys(changes)
	slices.Sort(services)

	for _, svc := range services {
		c := changes[svc]
		if manifest.VersionIsBranch(c.Old, false) || manifest.VersionIsBranch(c.New, false) {
			continue
		}

		repo := p.Rules.RepoName(svc, portalType)
		p.logger().Debug("mapped service to repo", "service", svc, "repo", repo)

		notes, err := p.Notes.ReleaseNotes(ctx, repo, c.Old, c.New)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to get release notes of service %q from repo %q: %w", svc, repo, err)
		}

		if n := notes[SectionDeploymentChanges]; len(n) > 0 {
			deployment[svc] = UpdatePRLinks(repo, n)
		}

		if n := notes[SectionBreakingChanges]; len(n) > 0 {
			breaking[svc] = UpdatePRLinks(repo, n)
		}
	}

	return deployment, breaking, nil
}
