package crawl

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/AlfredBerg/jobdigest/internal/catalog"
	"github.com/AlfredBerg/jobdigest/internal/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSource struct {
	pages    map[string][]extract.Anchor
	errs     map[string]error
	panics   map[string]bool
	visited  []string
	timeouts []time.Duration
	closed   int
}

func (f *fakeSource) Anchors(_ context.Context, target string, timeout time.Duration) ([]extract.Anchor, error) {
	f.visited = append(f.visited, target)
	f.timeouts = append(f.timeouts, timeout)
	if f.panics[target] {
		panic("page script exploded")
	}
	if err := f.errs[target]; err != nil {
		return nil, err
	}
	return f.pages[target], nil
}

func (f *fakeSource) Close() error {
	f.closed++
	return nil
}

func TestFetch_EndToEndExample(t *testing.T) {
	src := &fakeSource{pages: map[string][]extract.Anchor{
		"u1": {
			{Title: "Junior React Native Dev", Href: "https://x/1"},
			{Title: "hi", Href: "https://x/2"},
			{Title: "Junior React Native Dev", Href: "https://x/1"},
		},
	}}

	results := Fetch(context.Background(), src, []catalog.Query{{Name: "X", URL: "u1"}},
		Options{MaxPerBoard: 6}, zaptest.NewLogger(t))

	require.Len(t, results, 1)
	assert.Equal(t, Result{
		Board: "X",
		URL:   "u1",
		Jobs:  []extract.Candidate{{Title: "Junior React Native Dev", Href: "https://x/1"}},
	}, results[0])
	assert.Equal(t, 1, src.closed)
	assert.Equal(t, []time.Duration{DefaultNavTimeout}, src.timeouts)
}

func TestFetch_PartialFailureIsolation(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	src := &fakeSource{
		pages: map[string][]extract.Anchor{
			"b": {{Title: "Frontend Developer", Href: "https://b/1"}},
		},
		errs: map[string]error{"a": errors.New("navigation timeout of 30000 ms exceeded")},
	}
	queries := []catalog.Query{{Name: "A", URL: "a"}, {Name: "B", URL: "b"}}

	results := Fetch(context.Background(), src, queries, Options{MaxPerBoard: 6, NavTimeout: time.Second}, zap.New(core))

	require.Len(t, results, 2)
	assert.Equal(t, "A", results[0].Board)
	assert.Empty(t, results[0].Jobs)
	assert.Equal(t, "navigation timeout of 30000 ms exceeded", results[0].Error)

	assert.Equal(t, "B", results[1].Board)
	assert.Empty(t, results[1].Error)
	assert.Equal(t, []extract.Candidate{{Title: "Frontend Developer", Href: "https://b/1"}}, results[1].Jobs)

	assert.Equal(t, []string{"a", "b"}, src.visited)
	assert.Equal(t, 1, src.closed)

	failed := logs.FilterMessage("error fetching board").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "A", failed[0].ContextMap()["board"])
}

func TestFetch_PanicIsContainedPerBoard(t *testing.T) {
	src := &fakeSource{
		pages:  map[string][]extract.Anchor{"b": {{Title: "Mobile Engineer", Href: "https://b/1"}}},
		panics: map[string]bool{"a": true},
	}
	queries := []catalog.Query{{Name: "A", URL: "a"}, {Name: "B", URL: "b"}}

	results := Fetch(context.Background(), src, queries, Options{MaxPerBoard: 6}, zaptest.NewLogger(t))

	require.Len(t, results, 2)
	assert.Contains(t, results[0].Error, "page script exploded")
	assert.Empty(t, results[0].Jobs)
	assert.Len(t, results[1].Jobs, 1)
	assert.Equal(t, 1, src.closed)
}

func TestFetch_PerBoardCapAndUniqueness(t *testing.T) {
	var raw []extract.Anchor
	for i := 0; i < 30; i++ {
		raw = append(raw, extract.Anchor{Title: fmt.Sprintf("Listing number %d", i), Href: fmt.Sprintf("https://x/%d", i%9)})
	}
	src := &fakeSource{pages: map[string][]extract.Anchor{"u": raw}}

	for _, max := range []int{0, 1, 6, 9, 50, math.MaxInt} {
		results := Fetch(context.Background(), src, []catalog.Query{{Name: "X", URL: "u"}},
			Options{MaxPerBoard: max}, zaptest.NewLogger(t))
		require.Len(t, results, 1)

		require.Empty(t, results[0].Error)
		jobs := results[0].Jobs
		assert.LessOrEqual(t, len(jobs), max)
		assert.Len(t, jobs, min(max, 9))
		seen := map[string]bool{}
		for _, j := range jobs {
			assert.False(t, seen[j.Href])
			seen[j.Href] = true
		}
	}
}

func TestFetch_EmptyCatalogStillCloses(t *testing.T) {
	src := &fakeSource{}
	results := Fetch(context.Background(), src, nil, Options{MaxPerBoard: 6}, zaptest.NewLogger(t))
	assert.Empty(t, results)
	assert.Equal(t, 1, src.closed)
}
