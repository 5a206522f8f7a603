// Package digest renders the daily job roundup as an HTML email body.
package digest

import (
	"html/template"
	"strings"
	"time"

	"github.com/AlfredBerg/jobdigest/internal/aggregate"
)

// TimestampLayout matches the en-IN locale rendering, e.g. "19/10/2026, 3:04:05 pm".
const TimestampLayout = "2/1/2006, 3:04:05 pm"

// DateLayout is the date-only en-IN form used in subjects.
const DateLayout = "2/1/2006"

var page = template.Must(template.New("digest").Parse(
	`<h2>Daily Job Roundup — {{.Timestamp}}</h2>` +
		`{{if .Jobs}}<ul>` +
		`{{range .Jobs}}<li><strong>{{.Title}}</strong> — <em>{{.Board}}</em> — <a href="{{.Href}}">Link</a></li>{{end}}` +
		`</ul>{{else}}<p>No jobs found for configured queries/keywords.</p>{{end}}` +
		`<p>Sources searched: configured job boards. (Consider using official APIs or RSS for reliable results.)</p>`,
))

// Render builds the digest for jobs, stamped with now in loc. Scraped text is escaped.
func Render(jobs []aggregate.Job, now time.Time, loc *time.Location) (string, error) {
	if loc == nil {
		loc = time.UTC
	}

	var b strings.Builder
	err := page.Execute(&b, struct {
		Timestamp string
		Jobs      []aggregate.Job
	}{
		Timestamp: now.In(loc).Format(TimestampLayout),
		Jobs:      jobs,
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
