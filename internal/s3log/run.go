package s3log

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	"gen3utils/internal/document"
)

// Runner lists every object under a prefix and feeds each JSON row of
// each object to a Handler.
type Runner struct {
	API     API
	Config  Config
	Handler Handler
	// Out receives handler output, one line per row.
	Out io.Writer
	// ProgressOut receives the status line once per second when
	// Config.Progress is set.
	ProgressOut io.Writer
	Log         *slog.Logger

	Stats Stats

	outMu sync.Mutex
}

// Run processes all objects. A malformed object is logged and skipped; an
// S3 failure stops the run.
func (r *Runner) Run(ctx context.Context) error {
	if r.API == nil {
		return errors.New("s3 client is nil")
	}

	if r.Config.Bucket == "" {
		return errors.New("bucket is required")
	}

	if r.Handler == nil {
		r.Handler = CountHandler()
	}

	if r.Out == nil {
		r.Out = io.Discard
	}

	if r.Log == nil {
		r.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cfg := r.Config.withDefaults()

	if cfg.Progress && r.ProgressOut != nil {
		stop := r.reportProgress(ctx)
		defer stop()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	pages := s3.NewListObjectsV2Paginator(r.API, &s3.ListObjectsV2Input{
		Bucket: aws.String(cfg.Bucket),
		Prefix: aws.String(cfg.Prefix),
	})

	listErr := func() error {
		for pages.HasMorePages() {
			page, err := pages.NextPage(gctx)
			if err != nil {
				return fmt.Errorf("list s3://%s/%s: %w", cfg.Bucket, cfg.Prefix, err)
			}

			for _, obj := range page.Contents {
				key := aws.ToString(obj.Key)
				g.Go(func() error {
					return r.processObject(gctx, cfg.Bucket, key)
				})
			}
		}

		return nil
	}()

	if err := g.Wait(); err != nil {
		return err
	}

	return listErr
}

func (r *Runner) processObject(ctx context.Context, bucket, key string) error {
	r.Log.Debug("processing object", slog.String("key", key))

	out, err := r.API.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	rows, err := r.stream(ctx, &countingReader{r: out.Body, n: &r.Stats.Received})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		r.Log.Warn("skipping rest of object",
			slog.String("key", key),
			slog.Int("rows", rows),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

// stream decodes concatenated JSON values from rd and returns the number
// of rows handled.
func (r *Runner) stream(ctx context.Context, rd io.Reader) (int, error) {
	dec := json.NewDecoder(rd)

	rows := 0

	for {
		if err := ctx.Err(); err != nil {
			return rows, err
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return rows, nil
			}

			return rows, err
		}

		row, err := document.ParseJSON(raw)
		if err != nil {
			return rows, err
		}

		rows++
		r.Stats.Lines.Add(1)
		r.Stats.Processed.Add(int64(len(raw)))

		if res := r.Handler.HandleRow(row, string(raw)); res != "" {
			r.write(res)
		}
	}
}

func (r *Runner) write(line string) {
	r.outMu.Lock()
	defer r.outMu.Unlock()

	_, _ = fmt.Fprintln(r.Out, line)
}

func (r *Runner) reportProgress(ctx context.Context) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	progress := NewProgress(&r.Stats, time.Now())

	go func() {
		defer close(done)

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				progress.Sample(now)
				_, _ = fmt.Fprintln(r.ProgressOut, progress.Line())
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

type countingReader struct {
	r io.Reader
	n *atomic.Int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n.Add(int64(n))

	return n, err
}
