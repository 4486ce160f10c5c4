// Package extractor implements the multi-strategy HTML extraction of
// spec §4.4: readability-style extraction, traffic-filtering boilerplate
// stripping, and a structural-selector fallback, followed by a fixed
// post-processing pipeline.
package extractor

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"sportsfeed/internal/core"
	"sportsfeed/internal/hashing"
	"sportsfeed/internal/urlcanon"
)

// MinTextChars is the minimum extracted-text length for any method to
// be accepted, per spec §4.4.
const MinTextChars = 100

// Result is the extractor's output record.
type Result struct {
	Title       string
	Text        string
	Byline      string
	Summary     string
	PublishedAt *time.Time
	Language    string
	DetectedLanguageProb float64
	WordCount   int
	ImageURL    string
	CanonicalURL string
	ContentHash string

	SportsKeywords []string
	Entities       core.EntityGroup
	ContentType    core.ContentType

	Method  string
	Status  core.ExtractionStatus
	Errors  []string
}

// Extract runs the ordered extraction chain against rawHTML (fetched
// from fetchedURL, finally resolved to finalURL after redirects) and
// applies the fixed post-processing pipeline.
func Extract(rawHTML, fetchedURL, finalURL string) *Result {
	res := &Result{}

	pageURL, urlErr := url.Parse(finalURL)
	if urlErr != nil {
		pageURL, _ = url.Parse(fetchedURL)
	}

	var title, text, byline, image string
	var method string

	if t, txt, b, img, ok := extractReadability(rawHTML, pageURL); ok {
		title, text, byline, image, method = t, txt, b, img, "readability"
	} else if t, txt, ok := extractTrafficFiltering(rawHTML); ok {
		title, text, method = t, txt, "traffic_filtering"
	} else if t, txt, ok := extractStructural(rawHTML); ok {
		title, text, method = t, txt, "structural_fallback"
	} else {
		res.Status = core.ExtractionFailed
		res.Errors = append(res.Errors, "extraction_failed: no method yielded >= 100 chars")
		return res
	}

	res.Method = method
	res.Title = postProcessTitle(title)
	res.Text = collapseWhitespace(text)
	res.Byline = byline
	res.ImageURL = image

	if res.Title == "" {
		res.Status = core.ExtractionNoTitle
		res.Errors = append(res.Errors, "no_title: title empty after post-processing")
	} else {
		res.Status = core.ExtractionSuccess
	}

	res.WordCount = len(strings.Fields(res.Text))
	res.Summary = summarize(res.Text)
	res.PublishedAt = parsePublishedAt(rawHTML)
	res.Language, res.DetectedLanguageProb = detectLanguage(res.Text)
	res.ContentHash = hashing.ContentHash(res.Title, res.Text)

	res.CanonicalURL = canonicalURLFor(rawHTML, fetchedURL, finalURL)

	res.SportsKeywords = MatchSportsKeywords(res.Title + " " + res.Text)
	res.ContentType = core.ContentType(ClassifyContentType(res.Title, res.Text))

	return res
}

// extractReadability runs go-shiori/go-readability's main-content
// heuristic with metadata scraping; strategy 1 of spec §4.4's ordered
// chain.
func extractReadability(rawHTML string, pageURL *url.URL) (title, text, byline, image string, ok bool) {
	article, err := readability.FromReader(strings.NewReader(rawHTML), pageURL)
	if err != nil {
		return "", "", "", "", false
	}
	if len(strings.TrimSpace(article.TextContent)) < MinTextChars {
		return "", "", "", "", false
	}
	return article.Title, article.TextContent, article.Byline, article.Image, true
}

var boilerplateSelectors = []string{"script", "style", "nav", "header", "footer", "aside", "noscript", "form", "iframe"}

// extractTrafficFiltering strips boilerplate elements and selects the
// densest remaining content subtree (the element with the most text per
// descendant); strategy 2.
func extractTrafficFiltering(rawHTML string) (title, text string, ok bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", "", false
	}
	title = strings.TrimSpace(doc.Find("title").First().Text())

	for _, sel := range boilerplateSelectors {
		doc.Find(sel).Remove()
	}

	var best *goquery.Selection
	var bestDensity float64
	doc.Find("div, article, section, main").Each(func(_ int, s *goquery.Selection) {
		t := strings.TrimSpace(s.Text())
		if len(t) < MinTextChars {
			return
		}
		descendants := s.Find("*").Length() + 1
		density := float64(len(t)) / float64(descendants)
		if density > bestDensity {
			bestDensity = density
			best = s
		}
	})

	if best == nil {
		return title, "", false
	}
	text = strings.TrimSpace(best.Text())
	if len(text) < MinTextChars {
		return title, "", false
	}
	return title, text, true
}

var structuralSelectors = []string{"article", "main", ".content", ".article-body", "#content", ".post-content", "body"}

// extractStructural walks common content selectors in priority order,
// finally falling back to <body>; strategy 3.
func extractStructural(rawHTML string) (title, text string, ok bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", "", false
	}
	title = strings.TrimSpace(doc.Find("title").First().Text())

	for _, sel := range structuralSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		t := strings.TrimSpace(node.Text())
		if len(t) >= MinTextChars {
			return title, t, true
		}
	}
	return title, "", false
}

var whitespaceRun = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// siteNameSeparators are the visible separators a title is split on to
// strip a trailing "| Site Name" / "- Site Name" suffix.
var siteNameSeparators = []string{" | ", " - ", " — ", " :: "}

func postProcessTitle(title string) string {
	title = collapseWhitespace(title)
	for _, sep := range siteNameSeparators {
		if idx := strings.LastIndex(title, sep); idx > 0 {
			title = strings.TrimSpace(title[:idx])
		}
	}
	return title
}

func summarize(text string) string {
	const maxLen = 280
	if len(text) <= maxLen {
		return text
	}
	cut := text[:maxLen]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "…"
}

func canonicalURLFor(rawHTML, fetchedURL, finalURL string) string {
	base := finalURL
	if base == "" {
		base = fetchedURL
	}
	if href, ok := canonicalHintFromHTML(rawHTML); ok {
		return urlcanon.ResolveCanonicalHint(base, href)
	}
	return urlcanon.Canonicalize(base)
}

func canonicalHintFromHTML(rawHTML string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", false
	}
	href, exists := doc.Find(`link[rel="canonical"]`).First().Attr("href")
	if !exists || strings.TrimSpace(href) == "" {
		return "", false
	}
	return href, true
}
