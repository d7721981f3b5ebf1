package entitygraph

import (
	"testing"

	"github.com/answerscope/answerscope/pkg/signals"
)

func page(url string, links []string, types ...string) *signals.PageSignals {
	return &signals.PageSignals{URL: url, InternalLinks: links, SchemaTypes: types}
}

func TestAnalyzeConnectedSiteWithHub(t *testing.T) {
	pages := []*signals.PageSignals{
		page("https://example.com/", []string{
			"https://example.com/about",
			"https://example.com/guides/a",
			"https://example.com/guides/b",
		}, "WebSite"),
		page("https://example.com/about", []string{
			"https://example.com/",
			"https://example.com/guides/a",
			"https://example.com/guides/b",
			"https://example.com/guides/c",
			"https://example.com/contact",
		}, "Organization"),
		page("https://example.com/guides/a", []string{"https://example.com/guides/b"}, "Article"),
		page("https://example.com/guides/b", []string{"https://example.com/guides/a"}, "Article"),
		page("https://example.com/guides/c", nil, "Article"),
		page("https://example.com/contact", nil),
	}

	a := Analyze(pages)
	if a.Nodes != 6 {
		t.Fatalf("nodes = %d, want 6", a.Nodes)
	}
	if !a.HubPresent {
		t.Error("expected hub: /about has Organization schema and 5 outbound links")
	}
	if a.OrphanRate != 0 {
		t.Errorf("orphan rate = %v, want 0: every non-root node has an inbound link", a.OrphanRate)
	}
	wantCoverage := 5.0 / 6.0
	if a.SchemaCoverage < wantCoverage-0.001 || a.SchemaCoverage > wantCoverage+0.001 {
		t.Errorf("schema coverage = %v, want %v", a.SchemaCoverage, wantCoverage)
	}
	if a.Score != 3 {
		t.Errorf("score = %d, want 3 (blend %v)", a.Score, a.Blend)
	}
}

func TestAnalyzeOrphanedSite(t *testing.T) {
	pages := []*signals.PageSignals{
		page("https://example.com/", nil),
		page("https://example.com/a", nil),
		page("https://example.com/b", nil),
	}

	a := Analyze(pages)
	if a.OrphanRate != 1 {
		t.Errorf("orphan rate = %v, want 1", a.OrphanRate)
	}
	if a.HubPresent {
		t.Error("no hub expected")
	}
	if a.Score != 0 {
		t.Errorf("score = %d, want 0", a.Score)
	}
}

func TestAnalyzeNormalizesLinkIdentity(t *testing.T) {
	// Trailing slash, fragment and host case must not create distinct nodes.
	pages := []*signals.PageSignals{
		page("https://example.com/", []string{"https://EXAMPLE.com/docs/#install"}),
		page("https://example.com/docs/", nil, "Article"),
	}

	a := Analyze(pages)
	if a.Nodes != 2 {
		t.Fatalf("nodes = %d, want 2", a.Nodes)
	}
	if a.OrphanRate != 0 {
		t.Errorf("orphan rate = %v, want 0: /docs is linked from the root", a.OrphanRate)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	a := Analyze(nil)
	if a.Nodes != 0 || a.Score != 0 {
		t.Errorf("unexpected analysis for empty input: %#v", a)
	}
}
