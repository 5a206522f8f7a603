package crawl

import (
	"context"
	"time"

	"github.com/AlfredBerg/jobdigest/internal/extract"
)

// DefaultNavTimeout bounds a single board's navigation when no timeout is configured.
const DefaultNavTimeout = 30 * time.Second

// Source loads a page and returns its anchors. Implementations are used by one goroutine at a time.
type Source interface {
	Anchors(ctx context.Context, target string, timeout time.Duration) ([]extract.Anchor, error)
	// Close releases the source. Calling it more than once is safe.
	Close() error
}

// Result is the outcome of scraping one board. When Error is set, Jobs is empty.
type Result struct {
	Board string              `json:"board"`
	URL   string              `json:"url"`
	Jobs  []extract.Candidate `json:"jobs"`
	Error string              `json:"error,omitempty"`
}

// Options tune a fetch run.
type Options struct {
	MaxPerBoard int
	NavTimeout  time.Duration
}
