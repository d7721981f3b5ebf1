package audit

import (
	"context"
	"fmt"
	"sync"

	"github.com/answerscope/answerscope/internal/utils"
	"github.com/answerscope/answerscope/pkg/entitygraph"
	"github.com/answerscope/answerscope/pkg/scoring"
	"github.com/answerscope/answerscope/pkg/signals"
	"github.com/answerscope/answerscope/pkg/topics"
)

// DefaultConcurrency bounds the parallel signal extraction workers.
const DefaultConcurrency = 8

// Page is one crawled page as delivered by the crawler collaborator.
type Page struct {
	URL     string            `json:"url"`
	HTML    string            `json:"html"`
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Options configure one audit run.
type Options struct {
	// Concurrency caps parallel extraction workers; <=0 uses the default.
	Concurrency int

	// Seeds are explicit topic terms for the depth analyzer.
	Seeds []string

	// AnswerAgentsBlocked and RenderParity come from the crawler
	// collaborator. RenderParity < 0 means unmeasured.
	AnswerAgentsBlocked bool
	RenderParity        float64

	Extractor signals.Extractor
}

// Report is the full audit output: the scoring result plus the analyzer
// detail and the extracted signals that produced it.
type Report struct {
	Result      *scoring.Result        `json:"result"`
	SiteChecks  []scoring.SiteCheck    `json:"site_checks"`
	EntityGraph *entitygraph.Analysis  `json:"entity_graph"`
	TopicDepth  *topics.Analysis       `json:"topic_depth"`
	Pages       []*signals.PageSignals `json:"pages"`
}

// Run extracts signals from every page in parallel, runs the site-level
// analyzers and scores the lot. Pages that fail extraction or arrived with
// an error status are skipped with a warning, not fatal.
func Run(ctx context.Context, pages []Page, catalog []scoring.Criterion, opts Options) (*Report, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages to audit")
	}

	extractor := opts.Extractor
	if extractor == nil {
		extractor = signals.NewExtractor()
	}
	workerLimit := opts.Concurrency
	if workerLimit <= 0 {
		workerLimit = DefaultConcurrency
	}

	extracted := make([]*signals.PageSignals, len(pages))
	sem := make(chan struct{}, workerLimit)
	var wg sync.WaitGroup
	for i, page := range pages {
		if page.Status >= 400 {
			utils.Log.Warnf("Skipping %s: crawler reported status %d", page.URL, page.Status)
			continue
		}
		wg.Add(1)
		go func(i int, page Page) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}
			p, err := extractor.Extract(page.HTML, page.URL)
			if err != nil {
				utils.Log.Warnf("Extraction failed for %s: %v", page.URL, err)
				return
			}
			extracted[i] = p
		}(i, page)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sigs []*signals.PageSignals
	var htmls []string
	for i, p := range extracted {
		if p == nil {
			continue
		}
		sigs = append(sigs, p)
		htmls = append(htmls, pages[i].HTML)
	}
	if len(sigs) == 0 {
		return nil, fmt.Errorf("no pages survived extraction")
	}

	graph := entitygraph.Analyze(sigs)
	depth := topics.Analyze(htmls, opts.Seeds)

	site := &scoring.SiteContext{
		EntityGraphScore:    graph.Score,
		TopicDepthScore:     depth.Score,
		AnswerAgentsBlocked: opts.AnswerAgentsBlocked,
		RenderParity:        opts.RenderParity,
	}
	result, err := scoring.Score(sigs, catalog, site)
	if err != nil {
		return nil, err
	}

	siteChecks := scoring.AggregateSiteChecks(result.CheckResults, scoring.DefaultSiteChecks())

	utils.Log.Infof("Audited %d/%d pages, overall score %d", len(sigs), len(pages), result.Overall)
	return &Report{Result: result, SiteChecks: siteChecks, EntityGraph: graph, TopicDepth: depth, Pages: sigs}, nil
}
