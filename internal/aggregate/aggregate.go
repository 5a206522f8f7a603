package aggregate

import (
	"github.com/AlfredBerg/jobdigest/internal/crawl"
	"github.com/AlfredBerg/jobdigest/internal/extract"
)

// Job is a candidate tagged with the board it came from.
type Job struct {
	Board string `json:"board"`
	extract.Candidate
}

// Flatten merges per-board results into one list, boards in result order and candidates in
// extraction order, keeping at most max jobs. The same link found on two boards appears twice.
func Flatten(results []crawl.Result, max int) []Job {
	if max <= 0 {
		return []Job{}
	}

	total := 0
	for _, r := range results {
		total += len(r.Jobs)
	}

	jobs := make([]Job, 0, min(max, total))
	for _, r := range results {
		for _, c := range r.Jobs {
			if len(jobs) == max {
				return jobs
			}
			jobs = append(jobs, Job{Board: r.Board, Candidate: c})
		}
	}
	return jobs
}
