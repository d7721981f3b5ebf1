package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/answerscope/answerscope/pkg/signals"
)

// Gate identifiers and ceilings. The ceilings are product policy constants,
// not derived values: a site that blocks answer-engine crawlers cannot score
// above 35 no matter how strong its content signals are.
const (
	GateAnswerAgentsBlocked = "answer_agents_blocked"
	GateRenderParity        = "render_parity"

	gateCeilingAgentsBlocked = 35
	gateCeilingRenderParity  = 55
	renderParityThreshold    = 0.70
)

// DefaultFixFirstLimit bounds the prioritized fix list handed to the UI.
const DefaultFixFirstLimit = 10

// Score runs every enabled criterion over the page set, rolls results up into
// category and pillar scores, applies gates and builds the fix-first list.
// Inapplicable checks are excluded from weighting, never treated as zero.
func Score(pages []*signals.PageSignals, catalog []Criterion, site *SiteContext) (*Result, error) {
	if site == nil {
		site = &SiteContext{EntityGraphScore: -1, TopicDepthScore: -1, RenderParity: -1}
	}

	byID := make(map[string]Criterion, len(catalog))
	var results []CheckResult

	for _, c := range catalog {
		if !c.Enabled || c.Check == nil {
			continue
		}
		byID[c.ID] = c
		if c.Scope == ScopeSite {
			score, status, evidence := c.Check(nil, site)
			results = append(results, CheckResult{CriterionID: c.ID, Score: score, Status: status, Evidence: evidence})
			continue
		}
		for _, p := range pages {
			score, status, evidence := c.Check(p, site)
			results = append(results, CheckResult{CriterionID: c.ID, URL: p.URL, Score: score, Status: status, Evidence: evidence})
		}
	}

	type acc struct {
		num, den float64
		count    int
	}
	categories := make(map[string]*acc)
	pillars := make(map[string]*acc)
	var total acc

	for _, r := range results {
		c := byID[r.CriterionID]
		if !countsForWeighting(c, r) {
			continue
		}
		contribution := float64(r.Score) / 3 * c.Weight
		addTo := func(m map[string]*acc, key string) {
			a := m[key]
			if a == nil {
				a = &acc{}
				m[key] = a
			}
			a.num += contribution
			a.den += c.Weight
			a.count++
		}
		addTo(categories, c.Category)
		addTo(pillars, c.Pillar)
		total.num += contribution
		total.den += c.Weight
		total.count++
	}

	if total.count == 0 {
		return nil, &Failure{
			Code:   "no_scorable_checks",
			Detail: fmt.Sprintf("none of the %d criteria produced a scorable check over %d pages", len(catalog), len(pages)),
		}
	}

	res := &Result{CheckResults: results}
	for cat, a := range categories {
		res.CategoryScores = append(res.CategoryScores, CategoryScore{Category: cat, Score: pct(a.num, a.den), Weight: a.den, CheckCount: a.count})
	}
	sort.Slice(res.CategoryScores, func(i, j int) bool { return res.CategoryScores[i].Category < res.CategoryScores[j].Category })
	for pillar, a := range pillars {
		res.EEATScores = append(res.EEATScores, EEATScore{Pillar: pillar, Score: pct(a.num, a.den), Weight: a.den, CheckCount: a.count})
	}
	sort.Slice(res.EEATScores, func(i, j int) bool { return res.EEATScores[i].Pillar < res.EEATScores[j].Pillar })

	res.Gates = evaluateGates(site)
	res.Overall = applyGates(pct(total.num, total.den), res.Gates)
	res.FixFirst = buildFixFirst(results, byID, DefaultFixFirstLimit)
	return res, nil
}

// countsForWeighting excludes inapplicable, errored and preview checks from
// every weight sum.
func countsForWeighting(c Criterion, r CheckResult) bool {
	if c.Preview {
		return false
	}
	return r.Status != StatusNotApplicable && r.Status != StatusError
}

func pct(num, den float64) int {
	if den == 0 {
		return 0
	}
	return int(math.Round(100 * num / den))
}

// evaluateGates checks the structural kill-switches against site facts.
func evaluateGates(site *SiteContext) []GateResult {
	gates := []GateResult{
		{ID: GateAnswerAgentsBlocked, Ceiling: gateCeilingAgentsBlocked},
		{ID: GateRenderParity, Ceiling: gateCeilingRenderParity},
	}
	if site.AnswerAgentsBlocked {
		gates[0].Tripped = true
		gates[0].Reason = "primary answer-engine crawlers are blocked by robots rules"
	}
	if site.RenderParity >= 0 && site.RenderParity < renderParityThreshold {
		gates[1].Tripped = true
		gates[1].Reason = fmt.Sprintf("served vs rendered HTML parity %.0f%% is below %.0f%%", site.RenderParity*100, renderParityThreshold*100)
	}
	return gates
}

// applyGates caps the weighted overall score at the lowest tripped ceiling.
// Once tripped, a gate's ceiling holds regardless of other check scores.
func applyGates(overall int, gates []GateResult) int {
	for _, g := range gates {
		if g.Tripped && overall > g.Ceiling {
			overall = g.Ceiling
		}
	}
	return overall
}

// buildFixFirst returns failing checks ordered by (impact desc, weight desc).
// Deterministic tie-break on criterion id then URL keeps the list stable.
func buildFixFirst(results []CheckResult, byID map[string]Criterion, limit int) []FixItem {
	var items []FixItem
	for _, r := range results {
		c := byID[r.CriterionID]
		if !countsForWeighting(c, r) || r.Score >= 3 {
			continue
		}
		items = append(items, FixItem{
			CriterionID: r.CriterionID,
			URL:         r.URL,
			Impact:      c.Impact,
			Weight:      c.Weight,
			Score:       r.Score,
			Evidence:    r.Evidence,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Impact != items[j].Impact {
			return items[i].Impact > items[j].Impact
		}
		if items[i].Weight != items[j].Weight {
			return items[i].Weight > items[j].Weight
		}
		if items[i].CriterionID != items[j].CriterionID {
			return items[i].CriterionID < items[j].CriterionID
		}
		return items[i].URL < items[j].URL
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}
