package catalog

// Query is one job board search to scrape.
type Query struct {
	Name string
	URL  string
}

// Default returns the boards searched on every run, in the order they are reported.
// Add or edit entries here. Official APIs or RSS feeds are more reliable than scraping.
func Default() []Query {
	return []Query{
		{Name: "Wellfound", URL: "https://wellfound.com/jobs?term=react+native+entry+level"},
		{Name: "Indeed", URL: "https://in.indeed.com/jobs?q=entry+level+react+native&l=India"},
	}
}
