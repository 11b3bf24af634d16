package dictionary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Getter is the part of the S3 client used to fetch s3:// schemas.
type S3Getter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Loader fetches dictionary schemas over http(s), s3 or the local
// filesystem.
type Loader struct {
	HTTPClient *http.Client
	// S3 is created from the default AWS configuration on first use when nil.
	S3 S3Getter

	once  sync.Once
	s3Err error
}

// Load fetches and parses the schema at rawURL with a default Loader.
func Load(ctx context.Context, rawURL string) (*Graph, error) {
	return (&Loader{}).Load(ctx, rawURL)
}

// Load fetches and parses the schema at rawURL.
func (l *Loader) Load(ctx context.Context, rawURL string) (*Graph, error) {
	data, err := l.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rawURL, err)
	}

	return g, nil
}

// Fetch returns the raw schema bytes at rawURL.
func (l *Loader) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// plain paths, including windows drive letters
		return l.readFile(rawURL)
	}

	switch u.Scheme {
	case "http", "https":
		return l.fetchHTTP(ctx, rawURL)
	case "s3":
		return l.fetchS3(ctx, u.Host, strings.TrimPrefix(u.Path, "/"))
	case "file":
		return l.readFile(u.Path)
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q in %s", ErrLoad, u.Scheme, rawURL)
	}
}

func (l *Loader) readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	return data, nil
}

func (l *Loader) fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	client := l.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s returned %s", ErrLoad, rawURL, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	return data, nil
}

func (l *Loader) fetchS3(ctx context.Context, bucket, key string) ([]byte, error) {
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("%w: s3 url needs a bucket and a key", ErrLoad)
	}

	l.once.Do(func() {
		if l.S3 != nil {
			return
		}

		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			l.s3Err = err
			return
		}

		l.S3 = s3.NewFromConfig(cfg)
	})

	if l.s3Err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, l.s3Err)
	}

	out, err := l.S3.GetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key})
	if err != nil {
		return nil, fmt.Errorf("%w: s3://%s/%s: %v", ErrLoad, bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	return data, nil
}
