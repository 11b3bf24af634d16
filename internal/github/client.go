// Package github wraps the GitHub API calls used to comment on manifest
// pull requests.
package github

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v74/github"
	"golang.org/x/time/rate"

	"gen3utils/internal/deployment"
	"gen3utils/internal/document"
)

const perPage = 100

// Options configures a Client.
type Options struct {
	Token string
	// BaseURL overrides the API endpoint, e.g. for GitHub Enterprise.
	BaseURL string
	// RequestsPerSecond limits API calls; zero means unlimited.
	RequestsPerSecond float64
	HTTPClient        *http.Client
	Logger            *slog.Logger
}

// Client is a rate limited GitHub API client.
type Client struct {
	gh      *gh.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

// New returns a client. Without a token calls are unauthenticated.
func New(opts Options) (*Client, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	client := gh.NewClient(opts.HTTPClient)

	if opts.Token != "" {
		client = client.WithAuthToken(opts.Token)
	} else {
		log.Warn("missing GitHub token: calls are unauthenticated and may fail on private repositories")
	}

	if opts.BaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub base URL: %w", err)
		}

		client.BaseURL = base
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Client{gh: client, limiter: rate.NewLimiter(limit, 1), log: log}, nil
}

func splitRepo(repo string) (string, string, error) {
	owner, name, ok := strings.Cut(strings.Trim(repo, "/"), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("repository must be <owner>/<name>, got %q", repo)
	}

	return owner, name, nil
}

// PullRequestFiles lists every file changed by a pull request.
func (c *Client) PullRequestFiles(ctx context.Context, repo string, pr int) ([]deployment.PullRequestFile, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	var out []deployment.PullRequestFile

	opts := &gh.ListOptions{PerPage: perPage}
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		files, resp, err := c.gh.PullRequests.ListFiles(ctx, owner, name, pr, opts)
		if err != nil {
			return nil, err
		}

		for _, f := range files {
			out = append(out, deployment.PullRequestFile{Filename: f.GetFilename(), RawURL: f.GetRawURL()})
		}

		if resp.NextPage == 0 {
			return out, nil
		}

		opts.Page = resp.NextPage
	}
}

// FetchJSON downloads and parses a JSON file, reporting found=false on 404.
func (c *Client) FetchJSON(ctx context.Context, rawURL string) (document.Value, bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return document.Value{}, false, err
	}

	req, err := c.gh.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return document.Value{}, false, err
	}

	var buf bytes.Buffer
	if _, err := c.gh.Do(ctx, req, &buf); err != nil {
		var errResp *gh.ErrorResponse
		if errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound {
			return document.Value{}, false, nil
		}

		return document.Value{}, false, err
	}

	doc, err := document.ParseJSON(buf.Bytes())
	if err != nil {
		return document.Value{}, true, fmt.Errorf("invalid JSON in %s: %w", rawURL, err)
	}

	return doc, true, nil
}

// CreateComment posts body on a pull request.
func (c *Client) CreateComment(ctx context.Context, repo string, pr int, body string) error {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	_, _, err = c.gh.Issues.CreateComment(ctx, owner, name, pr, &gh.IssueComment{Body: gh.Ptr(body)})

	return err
}

// CommentErrors posts validation errors of fileName on a pull request.
func (c *Client) CommentErrors(ctx context.Context, repo string, pr int, fileName string, errs []string) error {
	c.log.Info("commenting errors on pull request", "repository", repo, "pull_request", pr, "errors", len(errs))

	return c.CreateComment(ctx, repo, pr, ErrorsComment(fileName, errs))
}

// ErrorsComment renders validation errors as a markdown comment.
func ErrorsComment(fileName string, errs []string) string {
	var b strings.Builder

	b.WriteString("# " + fileName + "\n")

	for _, e := range errs {
		b.WriteString("## " + e + "\n")
	}

	return b.String()
}
