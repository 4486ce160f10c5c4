package extractor

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// publishedAtFormats is the fixed, ordered list of layouts tried before
// falling back to a loose parser, per spec §4.4.
var publishedAtFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC1123,
	time.RFC1123Z,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"02 Jan 2006",
	"01/02/2006",
}

var looseDatePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// metaDateSelectors are checked in order for a published-date hint.
var metaDateSelectors = []struct {
	selector string
	attr     string
}{
	{`meta[property="article:published_time"]`, "content"},
	{`meta[name="pubdate"]`, "content"},
	{`meta[name="publish-date"]`, "content"},
	{`time[datetime]`, "datetime"},
}

// parsePublishedAt extracts a publish-date hint from the raw HTML's
// metadata and parses it with the fixed format list, falling back to a
// loose YYYY-MM-DD scan.
func parsePublishedAt(rawHTML string) *time.Time {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	var raw string
	for _, sel := range metaDateSelectors {
		if val, exists := doc.Find(sel.selector).First().Attr(sel.attr); exists && strings.TrimSpace(val) != "" {
			raw = strings.TrimSpace(val)
			break
		}
	}
	if raw == "" {
		return nil
	}

	for _, layout := range publishedAtFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}

	if loose := looseDatePattern.FindString(raw); loose != "" {
		if t, err := time.Parse("2006-01-02", loose); err == nil {
			return &t
		}
	}
	return nil
}
