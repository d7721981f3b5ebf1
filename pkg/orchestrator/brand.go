package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/answerscope/answerscope/internal/utils"
	"github.com/answerscope/answerscope/pkg/cache"
	"github.com/answerscope/answerscope/pkg/providers"
)

// brandQueries builds the three fixed templates used for brand monitoring:
// brand with a site filter, brand as a company, and the domain's reviews.
func brandQueries(brand, domain string) []string {
	return []string{
		fmt.Sprintf("%q site:%s", brand, domain),
		fmt.Sprintf("%q company", brand),
		fmt.Sprintf("%s reviews", domain),
	}
}

// FetchBrandCitations issues the fixed brand queries against one search
// provider concurrently (sharing the provider's rate limiter), filters
// results to the target's eTLD+1 and deduplicates by URL.
//
// Raw provider results are cached per query BEFORE domain filtering, so a
// later fetch for a different domain reuses the same provider responses.
// Partial results are usable: the call only errors when every query failed.
func (o *Orchestrator) FetchBrandCitations(ctx context.Context, p providers.ProviderRunner, brand, domain string) ([]providers.Citation, error) {
	queries := brandQueries(brand, domain)
	target := providers.RegistrableDomain(domain)
	if target == "" {
		return nil, fmt.Errorf("cannot derive registrable domain from %q", domain)
	}

	type queryResult struct {
		idx       int
		citations []providers.Citation
		err       error
	}
	results := make([]queryResult, len(queries))

	var wg sync.WaitGroup
	for i, query := range queries {
		wg.Add(1)
		go func(i int, query string) {
			defer wg.Done()
			citations, err := o.rawSearch(ctx, p, query)
			results[i] = queryResult{idx: i, citations: citations, err: err}
		}(i, query)
	}
	wg.Wait()

	var merged []providers.Citation
	failures := 0
	var lastErr error
	for _, r := range results {
		if r.err != nil {
			utils.Log.Warnf("Brand query %q failed on %s: %v", queries[r.idx], p.Name(), r.err)
			failures++
			lastErr = r.err
			continue
		}
		merged = append(merged, r.citations...)
	}
	if failures == len(queries) {
		return nil, fmt.Errorf("all brand queries failed on %s: %w", p.Name(), lastErr)
	}

	// Filter to the target eTLD+1, dedupe by (provider, url).
	seen := make(map[string]bool)
	var out []providers.Citation
	for _, c := range merged {
		if c.Domain != target {
			continue
		}
		key := c.Provider + "|" + c.URL
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out, nil
}

// rawSearch returns ALL of a provider's results for a query, caching the
// unfiltered set to maximize reuse across different domain filters.
func (o *Orchestrator) rawSearch(ctx context.Context, p providers.ProviderRunner, query string) ([]providers.Citation, error) {
	key := cache.Key("raw", p.Name(), query)
	if cached, ok := o.cache.Get(key); ok {
		return cached.([]providers.Citation), nil
	}

	answer, err := o.runProvider(ctx, p, query)
	if err != nil {
		return nil, err
	}
	o.cache.Set(key, answer.Citations)
	return answer.Citations, nil
}
