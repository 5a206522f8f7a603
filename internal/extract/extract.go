// Package extract turns the raw anchors of a rendered page into job candidates.
package extract

import (
	"strings"
	"unicode/utf8"
)

// minTitleLen is the shortest title kept; anything up to it is treated as navigation noise.
const minTitleLen = 5

// Anchor is a hyperlink as read from the page.
type Anchor struct {
	Title string `json:"title"`
	Href  string `json:"href"`
}

// Candidate is a title/link pair that may be a job posting.
type Candidate struct {
	Title string `json:"title"`
	Href  string `json:"href"`
}

// Candidates filters raw anchors down to at most max candidates. Anchors without an href or with
// a title of minTitleLen runes or fewer are dropped, and only the first anchor per href is kept.
// Document order is preserved.
func Candidates(raw []Anchor, max int) []Candidate {
	if max <= 0 {
		return []Candidate{}
	}

	out := make([]Candidate, 0, min(max, len(raw)))
	seen := make(map[string]bool)
	for _, a := range raw {
		title := strings.TrimSpace(a.Title)
		href := strings.TrimSpace(a.Href)
		if href == "" || utf8.RuneCountInString(title) <= minTitleLen {
			continue
		}
		if seen[href] {
			continue
		}
		seen[href] = true

		out = append(out, Candidate{Title: title, Href: href})
		if len(out) == max {
			break
		}
	}
	return out
}
