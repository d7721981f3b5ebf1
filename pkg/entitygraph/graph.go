package entitygraph

import (
	"regexp"
	"strings"

	"github.com/answerscope/answerscope/pkg/signals"
)

// Metric blend weights and score bands are product policy constants.
const (
	connectivityWeight = 0.40
	hubWeight          = 0.30
	coverageWeight     = 0.30

	minHubOutbound = 5
)

var hubURLPattern = regexp.MustCompile(`(?i)/(about|about-us|company|organization|org|team)(/|$)`)

// Analysis holds the graph-connectivity metrics for a page set.
type Analysis struct {
	Nodes          int     `json:"nodes"`
	OrphanRate     float64 `json:"orphan_rate"`     // nodes with no inbound link, root excluded
	HubPresent     bool    `json:"hub_present"`     // About/Org page with enough outbound links
	SchemaCoverage float64 `json:"schema_coverage"` // nodes with >=1 schema type / nodes
	Blend          float64 `json:"blend"`
	Score          int     `json:"score"` // 0-3 band
}

// Analyze builds a directed graph keyed by normalized URL from each page's
// internal links and computes orphan rate, hub presence and schema coverage.
func Analyze(pages []*signals.PageSignals) *Analysis {
	a := &Analysis{}
	if len(pages) == 0 {
		return a
	}

	inbound := make(map[string]int, len(pages))
	byURL := make(map[string]*signals.PageSignals, len(pages))
	rootKey := ""
	for i, p := range pages {
		key := signals.NormalizeURL(p.URL)
		byURL[key] = p
		if i == 0 {
			rootKey = key
		}
		if _, ok := inbound[key]; !ok {
			inbound[key] = 0
		}
	}
	a.Nodes = len(byURL)

	for _, p := range pages {
		from := signals.NormalizeURL(p.URL)
		for _, link := range p.InternalLinks {
			to := signals.NormalizeURL(link)
			if to == from {
				continue
			}
			if _, ok := byURL[to]; ok {
				inbound[to]++
			}
		}
	}

	orphans := 0
	withSchema := 0
	for key, p := range byURL {
		if inbound[key] == 0 && key != rootKey {
			orphans++
		}
		if len(p.SchemaTypes) > 0 {
			withSchema++
		}
		if isHub(key, p) {
			a.HubPresent = true
		}
	}

	if a.Nodes > 1 {
		a.OrphanRate = float64(orphans) / float64(a.Nodes-1)
	}
	a.SchemaCoverage = float64(withSchema) / float64(a.Nodes)

	connectivity := 1 - a.OrphanRate
	hub := 0.0
	if a.HubPresent {
		hub = 1
	}
	a.Blend = connectivityWeight*connectivity + hubWeight*hub + coverageWeight*a.SchemaCoverage
	a.Score = band(a.Blend)
	return a
}

// isHub matches an About/Org URL pattern or Organization schema, provided the
// page links out to enough of the rest of the site.
func isHub(key string, p *signals.PageSignals) bool {
	if len(p.InternalLinks) < minHubOutbound {
		return false
	}
	if hubURLPattern.MatchString(key) {
		return true
	}
	return p.HasSchemaType("Organization")
}

func band(blend float64) int {
	switch {
	case blend >= 0.80:
		return 3
	case blend >= 0.60:
		return 2
	case blend >= 0.35:
		return 1
	default:
		return 0
	}
}

// IsHubURL reports whether a URL path looks like an About/Org hub page.
// Exposed for reuse in seed-term derivation.
func IsHubURL(u string) bool {
	return hubURLPattern.MatchString(strings.ToLower(u))
}
