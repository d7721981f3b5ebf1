package scoring

import (
	"errors"
	"testing"

	"github.com/answerscope/answerscope/pkg/signals"
)

func perfectPage(url string) *signals.PageSignals {
	return &signals.PageSignals{
		URL:             url,
		Title:           "A Very Good Widget Guide",
		MetaDescription: "Everything you need to know about maintaining widgets at home.",
		Canonical:       url,
		H1Count:         1,
		H1Text:          "Widget Guide",
		H2Count:         3,
		H3Count:         2,
		ImageCount:      4,
		OutboundLinks:   5,
		WordCount:       1200,
		SchemaTypes:     []string{"Article"},
		Author:          "Jane Doe",
		DatePublished:   "2024-03-01",
		DateModified:    "2024-04-01",
		EEATFlags: []string{
			signals.FlagAuthorByline,
			signals.FlagCitedSources,
			signals.FlagDates,
			signals.FlagReferenceLinks,
			signals.FlagRichMedia,
		},
	}
}

func fullSite() *SiteContext {
	return &SiteContext{EntityGraphScore: 3, TopicDepthScore: 3, RenderParity: 1.0}
}

func TestAllPerfectChecksScoreExactly100(t *testing.T) {
	res, err := Score([]*signals.PageSignals{perfectPage("https://example.com/a")}, DefaultCatalog(), fullSite())
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if res.Overall != 100 {
		t.Errorf("overall = %d, want 100", res.Overall)
	}
	for _, cs := range res.CategoryScores {
		if cs.Score != 100 {
			t.Errorf("category %s = %d, want 100", cs.Category, cs.Score)
		}
	}
	for _, es := range res.EEATScores {
		if es.Score != 100 {
			t.Errorf("pillar %s = %d, want 100", es.Pillar, es.Score)
		}
	}
	if len(res.FixFirst) != 0 {
		t.Errorf("expected empty fix list, got %#v", res.FixFirst)
	}
}

func TestGateCapsOverallDespitePerfectChecks(t *testing.T) {
	site := fullSite()
	site.AnswerAgentsBlocked = true
	res, err := Score([]*signals.PageSignals{perfectPage("https://example.com/a")}, DefaultCatalog(), site)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if res.Overall != 35 {
		t.Errorf("overall = %d, want gate ceiling 35", res.Overall)
	}

	site = fullSite()
	site.RenderParity = 0.5
	res, err = Score([]*signals.PageSignals{perfectPage("https://example.com/a")}, DefaultCatalog(), site)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if res.Overall != 55 {
		t.Errorf("overall = %d, want render parity ceiling 55", res.Overall)
	}

	// Both tripped: the lowest ceiling wins.
	site.AnswerAgentsBlocked = true
	res, err = Score([]*signals.PageSignals{perfectPage("https://example.com/a")}, DefaultCatalog(), site)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if res.Overall != 35 {
		t.Errorf("overall = %d, want 35 with both gates tripped", res.Overall)
	}
}

func TestWeakPageScoresLowAndFixFirstRanksByImpact(t *testing.T) {
	weak := &signals.PageSignals{URL: "https://example.com/weak"}
	res, err := Score([]*signals.PageSignals{weak}, DefaultCatalog(), fullSite())
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}

	scores := make(map[string]int)
	for _, cs := range res.CategoryScores {
		scores[cs.Category] = cs.Score
	}
	if scores[CategoryContentClarity] >= 40 {
		t.Errorf("content_clarity = %d, want <40 for an empty page", scores[CategoryContentClarity])
	}
	if scores[CategoryAuthorityTrust] >= 40 {
		t.Errorf("authority_trust = %d, want <40 for an empty page", scores[CategoryAuthorityTrust])
	}

	if len(res.FixFirst) == 0 {
		t.Fatal("expected fix-first entries for a weak page")
	}
	top := res.FixFirst[0]
	if top.CriterionID != "schema_present" {
		t.Errorf("top fix = %s, want schema_present (highest impact x weight among failing)", top.CriterionID)
	}
	for i := 1; i < len(res.FixFirst); i++ {
		prev, cur := res.FixFirst[i-1], res.FixFirst[i]
		if cur.Impact > prev.Impact || (cur.Impact == prev.Impact && cur.Weight > prev.Weight) {
			t.Errorf("fix list out of order at %d: %#v before %#v", i, prev, cur)
		}
	}
}

func TestNotApplicableExcludedFromWeights(t *testing.T) {
	// No outbound links: reference_links is not_applicable and must not drag
	// authority_trust down as a zero.
	page := perfectPage("https://example.com/a")
	page.OutboundLinks = 0
	page.EEATFlags = []string{
		signals.FlagAuthorByline,
		signals.FlagDates,
		signals.FlagRichMedia,
	}

	res, err := Score([]*signals.PageSignals{page}, DefaultCatalog(), fullSite())
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	for _, r := range res.CheckResults {
		if r.CriterionID == "reference_links" && r.Status != StatusNotApplicable {
			t.Errorf("reference_links status = %s, want not_applicable", r.Status)
		}
	}

	// authority_trust weight total must only cover author_byline and
	// outbound_citations (2 + 1.5), not the excluded reference check.
	for _, cs := range res.CategoryScores {
		if cs.Category == CategoryAuthorityTrust && cs.Weight != 3.5 {
			t.Errorf("authority_trust weight = %v, want 3.5 with reference_links excluded", cs.Weight)
		}
	}
}

func TestScoreFailsWhenNothingIsScorable(t *testing.T) {
	_, err := Score(nil, DefaultCatalog(), nil)
	if err == nil {
		t.Fatal("expected failure for an empty page set")
	}
	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("expected *Failure, got %T: %v", err, err)
	}
	if failure.Code != "no_scorable_checks" {
		t.Errorf("failure code = %q", failure.Code)
	}
}

func TestAggregateSiteChecks(t *testing.T) {
	results := []CheckResult{
		{CriterionID: "canonical_present", URL: "a", Score: 3, Status: StatusOK},
		{CriterionID: "canonical_present", URL: "b", Score: 3, Status: StatusOK},
		{CriterionID: "canonical_present", URL: "c", Score: 0, Status: StatusFail},
		{CriterionID: "canonical_present", URL: "d", Score: 3, Status: StatusOK},
	}
	params := []SiteCheckParam{{CriterionID: "canonical_present", MinScore: 3, PassPct: 85, WarnPct: 60}}

	checks := AggregateSiteChecks(results, params)
	if len(checks) != 1 {
		t.Fatalf("expected 1 site check, got %d", len(checks))
	}
	sc := checks[0]
	if sc.PassRate != 75 {
		t.Errorf("pass rate = %v, want 75", sc.PassRate)
	}
	if sc.Score != 2 || sc.Status != StatusWarn {
		t.Errorf("score/status = %d/%s, want 2/warn", sc.Score, sc.Status)
	}
}
