package extractor

import (
	"strings"
	"testing"

	"sportsfeed/internal/core"
)

const gameRecapFixture = `<!DOCTYPE html>
<html><head>
<title>Lakers Defeat Celtics 112-108 | Sports Daily</title>
<link rel="canonical" href="https://sportsdaily.example/story/42"/>
<meta property="article:published_time" content="2026-01-15T20:00:00Z"/>
</head>
<body>
<nav>Home About Contact</nav>
<article>
<h1>Lakers Defeat Celtics 112-108</h1>
<p>The Los Angeles Lakers defeated the Boston Celtics 112-108 on Wednesday night in a thrilling finish at Crypto.com Arena.</p>
<p>LeBron James led all scorers with 34 points, adding 8 rebounds and 9 assists in the win. The final score capped a strong night for the Lakers, who improved their playoff positioning with the victory.</p>
<p>"We played with great energy tonight," James said after the game.</p>
</article>
<footer>Copyright 2026</footer>
</body></html>`

func TestExtractGameRecapFixture(t *testing.T) {
	res := Extract(gameRecapFixture, "https://sportsdaily.example/x?utm_medium=y", "https://sportsdaily.example/x?utm_medium=y")

	if res.Status != core.ExtractionSuccess {
		t.Fatalf("status = %v, errors = %v", res.Status, res.Errors)
	}
	if !strings.Contains(res.Title, "Lakers Defeat Celtics") {
		t.Fatalf("title = %q", res.Title)
	}
	if strings.Contains(res.Title, "Sports Daily") {
		t.Fatalf("expected site-name suffix stripped, got %q", res.Title)
	}
	if res.WordCount == 0 {
		t.Fatalf("expected non-zero word count")
	}
	if res.CanonicalURL != "https://sportsdaily.example/story/42" {
		t.Fatalf("canonical url = %q, want rel=canonical hint applied", res.CanonicalURL)
	}
	if res.PublishedAt == nil {
		t.Fatalf("expected published_at to be parsed")
	}
	if res.ContentType != core.ContentTypeGameRecap {
		t.Fatalf("content type = %v, want game_recap", res.ContentType)
	}
	if res.ContentHash == "" {
		t.Fatalf("expected content hash to be computed")
	}
}

func TestExtractFailsOnThinContent(t *testing.T) {
	thin := `<html><head><title>Too short</title></head><body><p>Hi.</p></body></html>`
	res := Extract(thin, "https://example.com/a", "https://example.com/a")
	if res.Status != core.ExtractionFailed {
		t.Fatalf("status = %v, want extraction_failed", res.Status)
	}
}

func TestExtractNoTitle(t *testing.T) {
	long := strings.Repeat("word ", 40)
	noTitle := `<html><head></head><body><article><p>` + long + `</p></article></body></html>`
	res := Extract(noTitle, "https://example.com/a", "https://example.com/a")
	if res.Status != core.ExtractionNoTitle {
		t.Fatalf("status = %v, want no_title", res.Status)
	}
}
