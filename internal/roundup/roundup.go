// Package roundup runs one pass of the daily digest: fetch every board, aggregate, render, send.
package roundup

import (
	"context"
	"fmt"
	"time"

	"github.com/AlfredBerg/jobdigest/internal/aggregate"
	"github.com/AlfredBerg/jobdigest/internal/catalog"
	"github.com/AlfredBerg/jobdigest/internal/crawl"
	"github.com/AlfredBerg/jobdigest/internal/digest"
	"github.com/AlfredBerg/jobdigest/internal/outputHandlers/sqlite"
	"go.uber.org/zap"
)

type Sender interface {
	Send(ctx context.Context, html string) (string, error)
}

type Recorder interface {
	Record(run sqlite.Run) (string, error)
}

type Runner struct {
	// OpenSource starts the page source. The fetch stage closes it.
	OpenSource func(ctx context.Context) (crawl.Source, error)
	Queries    []catalog.Query
	Sender     Sender
	// Archive is optional.
	Archive Recorder

	MaxPerBoard int
	MaxTotal    int
	NavTimeout  time.Duration
	Keywords    []string
	Location    *time.Location

	Log *zap.Logger
	Now func() time.Time
}

// Run performs one digest run and returns the delivery id. Board failures are logged and skipped;
// a source that cannot start or a failed send is returned as an error.
func (r *Runner) Run(ctx context.Context) (string, error) {
	now := r.Now
	if now == nil {
		now = time.Now
	}
	started := now()

	r.Log.Info("starting job fetch", zap.Int("boards", len(r.Queries)))
	// keywords are not applied as a filter
	r.Log.Debug("configured keywords", zap.Strings("keywords", r.Keywords))

	src, err := r.OpenSource(ctx)
	if err != nil {
		return "", fmt.Errorf("start page source: %w", err)
	}
	results := crawl.Fetch(ctx, src, r.Queries, crawl.Options{MaxPerBoard: r.MaxPerBoard, NavTimeout: r.NavTimeout}, r.Log)

	jobs := aggregate.Flatten(results, r.MaxTotal)
	r.Log.Info("found job links", zap.Int("jobs", len(jobs)))

	html, err := digest.Render(jobs, now(), r.Location)
	if err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}

	r.Log.Info("sending email")
	id, sendErr := r.Sender.Send(ctx, html)
	r.archive(sqlite.Run{StartedAt: started, Results: results, MessageID: id, SendError: errString(sendErr)})
	if sendErr != nil {
		return "", fmt.Errorf("send digest: %w", sendErr)
	}

	r.Log.Info("email sent", zap.String("message_id", id))
	return id, nil
}

func (r *Runner) archive(run sqlite.Run) {
	if r.Archive == nil {
		return
	}
	id, err := r.Archive.Record(run)
	if err != nil {
		r.Log.Warn("failed archiving run", zap.Error(err))
		return
	}
	r.Log.Debug("archived run", zap.String("run_id", id))
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
