package crawl

import (
	"context"
	"fmt"

	"github.com/AlfredBerg/jobdigest/internal/catalog"
	"github.com/AlfredBerg/jobdigest/internal/extract"
	"go.uber.org/zap"
)

// Fetch scrapes every query in order and returns one Result per query. A failing board is logged
// and recorded on its Result; the remaining boards are still fetched. src is closed before Fetch
// returns, on every path.
func Fetch(ctx context.Context, src Source, queries []catalog.Query, opts Options, log *zap.Logger) []Result {
	defer func() {
		if err := src.Close(); err != nil {
			log.Warn("failed closing page source", zap.Error(err))
		}
	}()

	if opts.NavTimeout <= 0 {
		opts.NavTimeout = DefaultNavTimeout
	}

	results := make([]Result, 0, len(queries))
	for _, q := range queries {
		jobs, err := fetchOne(ctx, src, q, opts)
		if err != nil {
			log.Error("error fetching board", zap.String("board", q.Name), zap.String("url", q.URL), zap.Error(err))
			results = append(results, Result{Board: q.Name, URL: q.URL, Jobs: []extract.Candidate{}, Error: err.Error()})
			continue
		}
		log.Info("fetched board", zap.String("board", q.Name), zap.Int("jobs", len(jobs)))
		results = append(results, Result{Board: q.Name, URL: q.URL, Jobs: jobs})
	}
	return results
}

func fetchOne(ctx context.Context, src Source, q catalog.Query, opts Options) (jobs []extract.Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			jobs = nil
			err = fmt.Errorf("panic while scraping: %v", r)
		}
	}()

	raw, err := src.Anchors(ctx, q.URL, opts.NavTimeout)
	if err != nil {
		return nil, err
	}
	return extract.Candidates(raw, opts.MaxPerBoard), nil
}
