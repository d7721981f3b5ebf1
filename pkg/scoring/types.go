package scoring

import (
	"fmt"

	"github.com/answerscope/answerscope/pkg/signals"
)

// The six fixed scoring categories.
const (
	CategoryContentClarity = "content_clarity"
	CategoryStructuredData = "structured_data"
	CategoryAuthorityTrust = "authority_trust"
	CategoryCrawlability   = "crawlability"
	CategoryFreshness      = "freshness"
	CategoryTopicalDepth   = "topical_depth"
)

// E-E-A-T pillars.
const (
	PillarExperience        = "experience"
	PillarExpertise         = "expertise"
	PillarAuthoritativeness = "authoritativeness"
	PillarTrust             = "trust"
)

// Check statuses.
const (
	StatusOK            = "ok"
	StatusWarn          = "warn"
	StatusFail          = "fail"
	StatusNotApplicable = "not_applicable"
	StatusError         = "error"
)

// Criterion scopes.
const (
	ScopePage = "page"
	ScopeSite = "site"
)

// Impact levels, ordered so that a plain numeric sort ranks severity.
const (
	ImpactLow      = 1
	ImpactMedium   = 2
	ImpactHigh     = 3
	ImpactCritical = 4
)

// SiteContext carries site-wide facts the page signals alone cannot provide:
// analyzer outputs and the crawler's structural measurements that feed gates.
type SiteContext struct {
	// EntityGraphScore and TopicDepthScore are 0-3 analyzer bands.
	// A negative value means the analyzer did not run.
	EntityGraphScore int
	TopicDepthScore  int

	// AnswerAgentsBlocked is true when robots rules deny the primary
	// answer-engine crawlers (measured by the crawler collaborator).
	AnswerAgentsBlocked bool

	// RenderParity is the served-vs-rendered HTML similarity in [0,1].
	// A negative value means parity was not measured.
	RenderParity float64
}

// CheckFunc maps one page's signals (plus site context) to a 0-3 score,
// a status and human-readable evidence.
type CheckFunc func(p *signals.PageSignals, site *SiteContext) (int, string, string)

// Criterion is a catalog entry. The catalog is configuration: loaded once per
// scoring run and never mutated by the pipeline.
type Criterion struct {
	ID       string
	Category string
	Pillar   string
	Scope    string
	Weight   float64
	Impact   int
	Enabled  bool
	Preview  bool
	Check    CheckFunc
}

// CheckResult is one scored check for a (page, criterion) or (site, criterion).
type CheckResult struct {
	CriterionID string `json:"criterion_id"`
	URL         string `json:"url,omitempty"` // empty for site-scope checks
	Score       int    `json:"score"`
	Status      string `json:"status"`
	Evidence    string `json:"evidence,omitempty"`
}

// CategoryScore is a weighted 0-100 rollup for one category.
type CategoryScore struct {
	Category   string  `json:"category"`
	Score      int     `json:"score"`
	Weight     float64 `json:"weight"`
	CheckCount int     `json:"check_count"`
}

// EEATScore is a weighted 0-100 rollup for one E-E-A-T pillar.
type EEATScore struct {
	Pillar     string  `json:"pillar"`
	Score      int     `json:"score"`
	Weight     float64 `json:"weight"`
	CheckCount int     `json:"check_count"`
}

// GateResult records a gate evaluation. A tripped gate caps the overall
// score at Ceiling no matter what the weighted sum says.
type GateResult struct {
	ID      string `json:"id"`
	Tripped bool   `json:"tripped"`
	Ceiling int    `json:"ceiling"`
	Reason  string `json:"reason,omitempty"`
}

// FixItem is one entry of the prioritized fix list.
type FixItem struct {
	CriterionID string  `json:"criterion_id"`
	URL         string  `json:"url,omitempty"`
	Impact      int     `json:"impact"`
	Weight      float64 `json:"weight"`
	Score       int     `json:"score"`
	Evidence    string  `json:"evidence,omitempty"`
}

// Result is the scoring output: the JSON contract consumed by the UI.
type Result struct {
	Overall        int             `json:"overall"`
	CategoryScores []CategoryScore `json:"categoryScores"`
	EEATScores     []EEATScore     `json:"eeatScores"`
	FixFirst       []FixItem       `json:"fixFirst"`
	Gates          []GateResult    `json:"gates"`
	CheckResults   []CheckResult   `json:"checkResults"`
}

// Failure marks an audit that could not be scored at all. It is terminal:
// no automatic retry, an explicit re-run is required.
type Failure struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func (f *Failure) Error() string {
	return fmt.Sprintf("audit failed (%s): %s", f.Code, f.Detail)
}
