package audit

import (
	"context"
	"strings"
	"testing"

	"github.com/answerscope/answerscope/pkg/scoring"
)

var samplePage = `<!DOCTYPE html>
<html><head>
<title>Widget Guide</title>
<meta name="description" content="Everything about widgets, explained.">
<link rel="canonical" href="https://example.com/widgets">
<meta name="author" content="Jane Doe">
<script type="application/ld+json">{"@type":"Article","author":{"@type":"Person","name":"Jane Doe"},"datePublished":"2024-01-10"}</script>
</head><body>
<h1>Widget Guide</h1>
<h2>What is a widget?</h2>
<p>A widget is a small component. ` + loremWords + `</p>
<h2>How do widgets work?</h2>
<ul><li>They spin</li><li>They click</li></ul>
<a href="/pricing">Pricing</a>
<a href="https://en.wikipedia.org/wiki/Widget">Background</a>
</body></html>`

var loremWords = strings.Repeat("widgets assemble quickly into larger machines ", 70)

func TestRunProducesScoredReport(t *testing.T) {
	pages := []Page{
		{URL: "https://example.com/widgets", HTML: samplePage, Status: 200},
		{URL: "https://example.com/broken", HTML: "", Status: 500},
	}
	report, err := Run(context.Background(), pages, scoring.DefaultCatalog(), Options{RenderParity: -1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Pages) != 1 {
		t.Fatalf("expected 1 surviving page, got %d", len(report.Pages))
	}
	if report.Result.Overall <= 0 || report.Result.Overall > 100 {
		t.Errorf("overall = %d, want within (0,100]", report.Result.Overall)
	}
	if report.Pages[0].Title != "Widget Guide" {
		t.Errorf("title = %q", report.Pages[0].Title)
	}
	if report.TopicDepth == nil || report.EntityGraph == nil {
		t.Fatal("analyzer outputs missing")
	}
	if len(report.SiteChecks) == 0 {
		t.Error("site checks missing from report")
	}
}

func TestRunGateCapsScore(t *testing.T) {
	pages := []Page{{URL: "https://example.com/widgets", HTML: samplePage, Status: 200}}
	report, err := Run(context.Background(), pages, scoring.DefaultCatalog(), Options{
		AnswerAgentsBlocked: true,
		RenderParity:        -1,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Result.Overall > 35 {
		t.Errorf("overall = %d, want <= 35 with answer agents blocked", report.Result.Overall)
	}
}

func TestRunFailsWithNoPages(t *testing.T) {
	if _, err := Run(context.Background(), nil, scoring.DefaultCatalog(), Options{}); err == nil {
		t.Fatal("expected error for empty input")
	}
	pages := []Page{{URL: "https://example.com/", HTML: "<html></html>", Status: 503}}
	if _, err := Run(context.Background(), pages, scoring.DefaultCatalog(), Options{}); err == nil {
		t.Fatal("expected error when every page is skipped")
	}
}

func TestRunIsDeterministic(t *testing.T) {
	pages := []Page{
		{URL: "https://example.com/widgets", HTML: samplePage, Status: 200},
		{URL: "https://example.com/pricing", HTML: "<html><head><title>Pricing</title></head><body><h1>Pricing</h1><a href=\"/widgets\">Guide</a></body></html>", Status: 200},
	}
	opts := Options{RenderParity: -1, Concurrency: 2}
	a, err := Run(context.Background(), pages, scoring.DefaultCatalog(), opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := Run(context.Background(), pages, scoring.DefaultCatalog(), opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if a.Result.Overall != b.Result.Overall {
		t.Errorf("overall differs across runs: %d vs %d", a.Result.Overall, b.Result.Overall)
	}
	if len(a.Result.CheckResults) != len(b.Result.CheckResults) {
		t.Errorf("check result counts differ: %d vs %d", len(a.Result.CheckResults), len(b.Result.CheckResults))
	}
}
