package orchestrator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/answerscope/answerscope/pkg/cache"
	"github.com/answerscope/answerscope/pkg/providers"
	"github.com/answerscope/answerscope/pkg/ratelimit"
)

type fakeProvider struct {
	name      string
	calls     int32
	err       error
	citations []providers.Citation
	text      string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Run(_ context.Context, query string) (*providers.Answer, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]providers.Citation, len(f.citations))
	copy(out, f.citations)
	for i := range out {
		out[i].Provider = f.name
		out[i].Query = query
	}
	return &providers.Answer{Provider: f.name, Query: query, Text: f.text, Citations: out}, nil
}

func (f *fakeProvider) callCount() int32 { return atomic.LoadInt32(&f.calls) }

func cite(url string) providers.Citation {
	return providers.Citation{URL: url, Domain: providers.RegistrableDomain(url), FetchedAt: time.Unix(0, 0).UTC()}
}

func testOrchestrator(chain ...providers.ProviderRunner) *Orchestrator {
	opts := make([]Option, 0, len(chain))
	for _, p := range chain {
		opts = append(opts, WithLimiter(p.Name(), ratelimit.New(100, 100)))
	}
	return New(chain, cache.New(time.Hour), opts...)
}

func TestFallbackOrderSkipsLaterProviders(t *testing.T) {
	a := &fakeProvider{name: "a", err: errors.New("boom")}
	b := &fakeProvider{name: "b", citations: []providers.Citation{cite("https://example.com/x")}, text: "answer"}
	c := &fakeProvider{name: "c", citations: []providers.Citation{cite("https://example.com/y")}}

	o := testOrchestrator(a, b, c)
	answer, err := o.AnswerWithCitations(context.Background(), "example.com", "what is acme")
	if err != nil {
		t.Fatalf("AnswerWithCitations returned error: %v", err)
	}
	if answer.Provider != "b" {
		t.Errorf("provider = %s, want b", answer.Provider)
	}
	if c.callCount() != 0 {
		t.Errorf("provider c was called %d times, want 0", c.callCount())
	}
}

func TestZeroCitationsFallsThrough(t *testing.T) {
	a := &fakeProvider{name: "a", text: "answer without sources"}
	b := &fakeProvider{name: "b", citations: []providers.Citation{cite("https://example.com/x")}}

	o := testOrchestrator(a, b)
	answer, err := o.AnswerWithCitations(context.Background(), "example.com", "query")
	if err != nil {
		t.Fatalf("AnswerWithCitations returned error: %v", err)
	}
	if answer.Provider != "b" {
		t.Errorf("provider = %s, want b after zero-citation fallthrough", answer.Provider)
	}
}

func TestAllProvidersFailingIsTerminal(t *testing.T) {
	a := &fakeProvider{name: "a", err: errors.New("down")}
	b := &fakeProvider{name: "b", err: errors.New("also down")}

	o := testOrchestrator(a, b)
	if _, err := o.AnswerWithCitations(context.Background(), "example.com", "query"); err == nil {
		t.Fatal("expected terminal error when every provider fails")
	}
}

func TestCacheShortCircuitsProviderCalls(t *testing.T) {
	a := &fakeProvider{name: "a", citations: []providers.Citation{cite("https://example.com/x")}}
	o := testOrchestrator(a)

	if _, err := o.AnswerWithCitations(context.Background(), "example.com", "What  is Acme?"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	// Equivalent query after normalization: no second provider call.
	if _, err := o.AnswerWithCitations(context.Background(), "example.com", "what is acme?"); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if a.callCount() != 1 {
		t.Errorf("provider called %d times, want 1 (cache hit)", a.callCount())
	}
}

func TestFetchBrandCitationsFiltersAndDedupes(t *testing.T) {
	search := &fakeProvider{name: "brave", citations: []providers.Citation{
		cite("https://www.example.com/about"),
		cite("https://example.com/reviews"),
		cite("https://othersite.org/acme"),
		cite("https://www.example.com/about"), // duplicate
	}}
	o := testOrchestrator(search)

	citations, err := o.FetchBrandCitations(context.Background(), search, "Acme", "example.com")
	if err != nil {
		t.Fatalf("FetchBrandCitations returned error: %v", err)
	}
	if len(citations) != 2 {
		t.Fatalf("expected 2 filtered citations, got %d: %#v", len(citations), citations)
	}
	for _, c := range citations {
		if c.Domain != "example.com" {
			t.Errorf("citation %s leaked through the eTLD+1 filter", c.URL)
		}
	}
	if search.callCount() != 3 {
		t.Errorf("provider called %d times, want 3 (one per template)", search.callCount())
	}
}

func TestFetchBrandCitationsReusesRawCacheAcrossDomains(t *testing.T) {
	search := &fakeProvider{name: "brave", citations: []providers.Citation{
		cite("https://example.com/a"),
		cite("https://rival.net/b"),
	}}
	o := testOrchestrator(search)

	if _, err := o.FetchBrandCitations(context.Background(), search, "Acme", "example.com"); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	calls := search.callCount()

	// Same brand but a different domain filter: the third template differs,
	// so only that query misses the raw cache.
	citations, err := o.FetchBrandCitations(context.Background(), search, "Acme", "rival.net")
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if got := search.callCount() - calls; got >= 3 {
		t.Errorf("expected raw-cache reuse, but %d fresh provider calls were made", got)
	}
	for _, c := range citations {
		if c.Domain != "rival.net" {
			t.Errorf("citation %s leaked through the rival.net filter", c.URL)
		}
	}
}
