package s3log

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

const maxSamples = 60

// Stats counts the work done by a run. It is safe for concurrent use.
type Stats struct {
	Lines     atomic.Int64
	Received  atomic.Int64
	Processed atomic.Int64
}

// AverageRowSize returns the mean size in bytes of a processed row.
func (s *Stats) AverageRowSize() int64 {
	lines := s.Lines.Load()
	if lines == 0 {
		return 0
	}

	return s.Processed.Load() / lines
}

type sample struct {
	bytes int64
	at    time.Time
}

// Progress computes throughput over the last samples of Stats.Received.
type Progress struct {
	stats *Stats

	mu      sync.Mutex
	start   sample
	samples []sample
}

// NewProgress starts tracking stats at now.
func NewProgress(stats *Stats, now time.Time) *Progress {
	start := sample{at: now}

	return &Progress{stats: stats, start: start, samples: []sample{start}}
}

// Sample records the received byte count at now.
func (p *Progress) Sample(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.samples = append(p.samples, sample{bytes: p.stats.Received.Load(), at: now})
	if len(p.samples) > maxSamples {
		p.samples = p.samples[1:]
	}
}

// Line renders moving averages over 5, 20 and 60 samples, the overall
// average, the average row size and the processed size.
func (p *Progress) Line() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	last := p.samples[len(p.samples)-1]

	return strings.Join([]string{
		"MA5: " + speed(p.tail(5)),
		"MA20: " + speed(p.tail(20)),
		"MA60: " + speed(p.samples),
		"AVG: " + speed([]sample{p.start, last}),
		"JSON: " + humanize.Comma(p.stats.AverageRowSize()) + "B",
		"Size: " + humanize.IBytes(uint64(max(p.stats.Processed.Load(), 0))),
	}, "\t")
}

func (p *Progress) tail(n int) []sample {
	if len(p.samples) <= n {
		return p.samples
	}

	return p.samples[len(p.samples)-n:]
}

func speed(sub []sample) string {
	first, last := sub[0], sub[len(sub)-1]

	elapsed := last.at.Sub(first.at).Seconds()
	if elapsed <= 0 {
		return "0 B/s"
	}

	perSecond := float64(last.bytes-first.bytes) / elapsed

	return fmt.Sprintf("%s/s", humanize.IBytes(uint64(max(perSecond, 0))))
}
