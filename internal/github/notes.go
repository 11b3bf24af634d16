package github

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	gh "github.com/google/go-github/v74/github"
	"k8s.io/apimachinery/pkg/util/sets"
)

var (
	mergeCommit  = regexp.MustCompile(`^Merge pull request #([0-9]+)`)
	squashCommit = regexp.MustCompile(`\(#([0-9]+)\)\s*$`)
)

// ReleaseNotes returns the notes of every pull request merged between two
// tags, keyed by lowercase section name. Each note ends with "(#<pr>)".
func (c *Client) ReleaseNotes(ctx context.Context, repo, from, to string) (map[string][]string, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	prs, err := c.mergedPullRequests(ctx, owner, name, from, to)
	if err != nil {
		return nil, err
	}

	out := map[string][]string{}

	for _, number := range prs {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		pr, _, err := c.gh.PullRequests.Get(ctx, owner, name, number)
		if err != nil {
			return nil, fmt.Errorf("pull request #%d: %w", number, err)
		}

		for section, notes := range ParseReleaseNotes(pr.GetBody(), number) {
			out[section] = append(out[section], notes...)
		}
	}

	c.log.Debug("release notes", "repository", repo, "from", from, "to", to, "pull_requests", len(prs))

	return out, nil
}

// mergedPullRequests returns, in commit order, the pull requests whose merge
// or squash commits lie between from and to.
func (c *Client) mergedPullRequests(ctx context.Context, owner, name, from, to string) ([]int, error) {
	var (
		out  []int
		seen = sets.New[int]()
	)

	opts := &gh.ListOptions{PerPage: perPage}
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		cmp, resp, err := c.gh.Repositories.CompareCommits(ctx, owner, name, from, to, opts)
		if err != nil {
			return nil, fmt.Errorf("compare %s...%s: %w", from, to, err)
		}

		for _, commit := range cmp.Commits {
			if n, ok := PullRequestNumber(commit.GetCommit().GetMessage()); ok && !seen.Has(n) {
				seen.Insert(n)
				out = append(out, n)
			}
		}

		if resp.NextPage == 0 {
			return out, nil
		}

		opts.Page = resp.NextPage
	}
}

// PullRequestNumber extracts the pull request number from the first line of
// a merge ("Merge pull request #12 from ...") or squash ("title (#12)")
// commit message.
func PullRequestNumber(message string) (int, bool) {
	first, _, _ := strings.Cut(message, "\n")

	for _, re := range []*regexp.Regexp{mergeCommit, squashCommit} {
		if m := re.FindStringSubmatch(first); m != nil {
			n, err := strconv.Atoi(m[1])
			return n, err == nil
		}
	}

	return 0, false
}

// ParseReleaseNotes reads the bullet lists under markdown headings of a pull
// request body. Section names are lowercased heading texts.
func ParseReleaseNotes(body string, pr int) map[string][]string {
	out := map[string][]string{}
	section := ""

	for line := range strings.Lines(body) {
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, "#") {
			section = strings.ToLower(strings.Trim(line, "# \t"))
			continue
		}

		if section == "" {
			continue
		}

		note, ok := strings.CutPrefix(line, "- ")
		if !ok {
			note, ok = strings.CutPrefix(line, "* ")
		}

		if note = strings.TrimSpace(note); ok && note != "" {
			out[section] = append(out[section], fmt.Sprintf("%s (#%d)", note, pr))
		}
	}

	return out
}
