// Package config loads the optional gen3utils configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Defaults.
const (
	DefaultTokenEnv          = "GITHUB_TOKEN"
	fallbackTokenEnv         = "GH_TOKEN"
	DefaultRequestsPerSecond = 10
	DefaultS3Region          = "us-east-1"
	DefaultS3Concurrency     = 8
)

// Config is the gen3utils configuration file.
type Config struct {
	GitHub     GitHub     `yaml:"github"`
	Validation Validation `yaml:"validation"`
	Manifest   Manifest   `yaml:"manifest"`
	Deployment Deployment `yaml:"deployment"`
	S3Log      S3Log      `yaml:"s3log"`
}

// GitHub configures API access.
type GitHub struct {
	// TokenEnv names the environment variable holding the token.
	TokenEnv          string  `yaml:"token_env"`
	BaseURL           string  `yaml:"base_url,omitempty"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// Validation tunes the ETL mapping validator.
type Validation struct {
	AllowDuplicateProperties bool `yaml:"allow_duplicate_properties"`
}

// Manifest configures manifest validation.
type Manifest struct {
	// Requirements is a requirements file replacing the built-in one.
	Requirements string `yaml:"requirements,omitempty"`
}

// Deployment extends the deployment-changes rules.
type Deployment struct {
	IgnoredServices []string          `yaml:"ignored_services,omitempty"`
	ServiceToRepo   map[string]string `yaml:"service_to_repo,omitempty"`
}

// S3Log holds s3log defaults; flags override them.
type S3Log struct {
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint,omitempty"`
	Concurrency int    `yaml:"concurrency"`
}

// Default returns the configuration used without a file.
func Default() *Config {
	return &Config{
		GitHub: GitHub{
			TokenEnv:          DefaultTokenEnv,
			RequestsPerSecond: DefaultRequestsPerSecond,
		},
		S3Log: S3Log{
			Region:      DefaultS3Region,
			Concurrency: DefaultS3Concurrency,
		},
	}
}

// Load reads the file at path over the defaults. An empty path returns
// the defaults. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg.fill()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// fill restores defaults for fields a file explicitly left empty.
func (c *Config) fill() {
	if c.GitHub.TokenEnv == "" {
		c.GitHub.TokenEnv = DefaultTokenEnv
	}

	if c.S3Log.Region == "" {
		c.S3Log.Region = DefaultS3Region
	}

	if c.S3Log.Concurrency == 0 {
		c.S3Log.Concurrency = DefaultS3Concurrency
	}
}

// Validate reports every invalid value, each wrapping ErrInvalid.
func (c *Config) Validate() error {
	var errs []error

	if c.GitHub.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("%w: github.requests_per_second must not be negative", ErrInvalid))
	}

	if c.GitHub.BaseURL != "" {
		if u, err := url.Parse(c.GitHub.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("%w: github.base_url %q must be an http(s) URL", ErrInvalid, c.GitHub.BaseURL))
		}
	}

	if c.S3Log.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("%w: s3log.concurrency must not be negative", ErrInvalid))
	}

	for svc, repo := range c.Deployment.ServiceToRepo {
		if svc == "" || repo == "" {
			errs = append(errs, fmt.Errorf("%w: deployment.service_to_repo entries need a service and a repository", ErrInvalid))
			break
		}
	}

	return errors.Join(errs...)
}

// GitHubToken reads the token from the configured variable, falling back
// to GH_TOKEN.
func (c *Config) GitHubToken(getenv func(string) string) string {
	if tok := getenv(c.GitHub.TokenEnv); tok != "" {
		return tok
	}

	return getenv(fallbackTokenEnv)
}
