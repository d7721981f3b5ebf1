package scoring

import (
	"fmt"
	"math"
)

// SiteCheckParam parameterizes one site-level aggregation over page-level
// CheckResults: "what share of pages score at least MinScore on criterion X".
type SiteCheckParam struct {
	CriterionID string
	MinScore    int     // page score counted as passing
	PassPct     float64 // share required for a 3/3
	WarnPct     float64 // share required for a 2/3
}

// DefaultSiteChecks mirrors the product's site-health panel.
func DefaultSiteChecks() []SiteCheckParam {
	return []SiteCheckParam{
		{CriterionID: "canonical_present", MinScore: 3, PassPct: 85, WarnPct: 60},
		{CriterionID: "schema_present", MinScore: 2, PassPct: 70, WarnPct: 40},
		{CriterionID: "robots_indexable", MinScore: 3, PassPct: 95, WarnPct: 80},
		{CriterionID: "author_byline", MinScore: 3, PassPct: 70, WarnPct: 40},
	}
}

// SiteCheck is the outcome of one aggregation pass.
type SiteCheck struct {
	CriterionID string  `json:"criterion_id"`
	PassRate    float64 `json:"pass_rate"` // 0-100, share of pages passing
	PageCount   int     `json:"page_count"`
	Score       int     `json:"score"`
	Status      string  `json:"status"`
	Evidence    string  `json:"evidence,omitempty"`
}

// AggregateSiteChecks runs a second pass over page-level results, computing
// per-criterion pass rates. Criteria with no page results are not_applicable.
func AggregateSiteChecks(results []CheckResult, params []SiteCheckParam) []SiteCheck {
	out := make([]SiteCheck, 0, len(params))
	for _, param := range params {
		pages, passing := 0, 0
		for _, r := range results {
			if r.CriterionID != param.CriterionID || r.URL == "" {
				continue
			}
			if r.Status == StatusNotApplicable || r.Status == StatusError {
				continue
			}
			pages++
			if r.Score >= param.MinScore {
				passing++
			}
		}

		sc := SiteCheck{CriterionID: param.CriterionID, PageCount: pages}
		if pages == 0 {
			sc.Status = StatusNotApplicable
			out = append(out, sc)
			continue
		}
		sc.PassRate = math.Round(float64(passing) / float64(pages) * 10000) / 100

		switch {
		case sc.PassRate >= param.PassPct:
			sc.Score, sc.Status = 3, StatusOK
		case sc.PassRate >= param.WarnPct:
			sc.Score, sc.Status = 2, StatusWarn
			sc.Evidence = fmt.Sprintf("%.0f%% of pages pass %s, target %.0f%%", sc.PassRate, param.CriterionID, param.PassPct)
		case passing > 0:
			sc.Score, sc.Status = 1, StatusWarn
			sc.Evidence = fmt.Sprintf("only %.0f%% of pages pass %s", sc.PassRate, param.CriterionID)
		default:
			sc.Score, sc.Status = 0, StatusFail
			sc.Evidence = fmt.Sprintf("no page passes %s", param.CriterionID)
		}
		out = append(out, sc)
	}
	return out
}
