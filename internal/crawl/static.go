package crawl

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/AlfredBerg/jobdigest/internal/extract"
	"github.com/PuerkitoBio/goquery"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// Static is a Source that reads the served HTML without running scripts. Pages that build their
// listings client side yield fewer anchors than with Browser.
type Static struct {
	Client    *http.Client
	UserAgent string
}

func NewStatic() *Static {
	return &Static{Client: &http.Client{}, UserAgent: defaultUserAgent}
}

func (s *Static) Anchors(ctx context.Context, target string, timeout time.Duration) ([]extract.Anchor, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", target, err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	res, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", target, err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("get %s: status %d", target, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html from %s: %w", target, err)
	}

	base := res.Request.URL
	anchors := []extract.Anchor{}
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		title := cleanText(a.Text())
		if title == "" {
			t, _ := a.Attr("title")
			title = strings.TrimSpace(t)
		}

		href := ""
		if raw, ok := a.Attr("href"); ok {
			if u, err := base.Parse(strings.TrimSpace(raw)); err == nil {
				href = u.String()
			}
		}
		anchors = append(anchors, extract.Anchor{Title: title, Href: href})
	})
	return anchors, nil
}

// Close is a no-op; the http client holds nothing that needs releasing.
func (s *Static) Close() error { return nil }

// cleanText collapses runs of whitespace, including non-breaking spaces.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
