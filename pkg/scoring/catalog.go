package scoring

import (
	"fmt"

	"github.com/answerscope/answerscope/pkg/signals"
)

// CatalogVersion identifies the criteria table below. Bump when weights,
// thresholds or membership change so stored results stay interpretable.
const CatalogVersion = "2025.2"

// DefaultCatalog returns the built-in criteria table. Callers treat the
// returned slice as read-only configuration.
func DefaultCatalog() []Criterion {
	return []Criterion{
		// content_clarity
		{ID: "title_present", Category: CategoryContentClarity, Pillar: PillarExpertise, Scope: ScopePage, Weight: 2, Impact: ImpactHigh, Enabled: true, Check: checkTitle},
		{ID: "meta_description", Category: CategoryContentClarity, Pillar: PillarExpertise, Scope: ScopePage, Weight: 1.5, Impact: ImpactMedium, Enabled: true, Check: checkMetaDescription},
		{ID: "h1_single", Category: CategoryContentClarity, Pillar: PillarExpertise, Scope: ScopePage, Weight: 2, Impact: ImpactHigh, Enabled: true, Check: checkH1},
		{ID: "heading_hierarchy", Category: CategoryContentClarity, Pillar: PillarExpertise, Scope: ScopePage, Weight: 1.5, Impact: ImpactMedium, Enabled: true, Check: checkHeadingHierarchy},
		{ID: "rich_media", Category: CategoryContentClarity, Pillar: PillarExperience, Scope: ScopePage, Weight: 1, Impact: ImpactLow, Enabled: true, Check: checkRichMedia},

		// structured_data
		{ID: "schema_present", Category: CategoryStructuredData, Pillar: PillarExpertise, Scope: ScopePage, Weight: 2.5, Impact: ImpactCritical, Enabled: true, Check: checkSchema},
		{ID: "entity_graph", Category: CategoryStructuredData, Pillar: PillarAuthoritativeness, Scope: ScopeSite, Weight: 2, Impact: ImpactHigh, Enabled: true, Check: checkEntityGraph},

		// authority_trust
		{ID: "author_byline", Category: CategoryAuthorityTrust, Pillar: PillarExpertise, Scope: ScopePage, Weight: 2, Impact: ImpactHigh, Enabled: true, Check: checkAuthor},
		{ID: "outbound_citations", Category: CategoryAuthorityTrust, Pillar: PillarAuthoritativeness, Scope: ScopePage, Weight: 1.5, Impact: ImpactMedium, Enabled: true, Check: checkOutboundCitations},
		{ID: "reference_links", Category: CategoryAuthorityTrust, Pillar: PillarTrust, Scope: ScopePage, Weight: 1, Impact: ImpactMedium, Enabled: true, Check: checkReferenceLinks},

		// crawlability
		{ID: "canonical_present", Category: CategoryCrawlability, Pillar: PillarTrust, Scope: ScopePage, Weight: 1.5, Impact: ImpactHigh, Enabled: true, Check: checkCanonical},
		{ID: "robots_indexable", Category: CategoryCrawlability, Pillar: PillarTrust, Scope: ScopePage, Weight: 2.5, Impact: ImpactCritical, Enabled: true, Check: checkIndexable},

		// freshness
		{ID: "publish_date", Category: CategoryFreshness, Pillar: PillarExperience, Scope: ScopePage, Weight: 1.5, Impact: ImpactMedium, Enabled: true, Check: checkPublishDate},
		{ID: "modified_date", Category: CategoryFreshness, Pillar: PillarExperience, Scope: ScopePage, Weight: 1, Impact: ImpactLow, Enabled: true, Check: checkModifiedDate},

		// topical_depth
		{ID: "word_count", Category: CategoryTopicalDepth, Pillar: PillarExpertise, Scope: ScopePage, Weight: 1.5, Impact: ImpactMedium, Enabled: true, Check: checkWordCount},
		{ID: "topic_depth", Category: CategoryTopicalDepth, Pillar: PillarExpertise, Scope: ScopeSite, Weight: 2, Impact: ImpactHigh, Enabled: true, Check: checkTopicDepth},

		// Preview criteria ship disabled-for-weighting but visible in results.
		{ID: "speakable_schema", Category: CategoryStructuredData, Pillar: PillarExperience, Scope: ScopePage, Weight: 1, Impact: ImpactLow, Enabled: true, Preview: true, Check: checkSpeakable},
	}
}

func checkTitle(p *signals.PageSignals, _ *SiteContext) (int, string, string) {
	n := len(p.Title)
	switch {
	case n == 0:
		return 0, StatusFail, "page has no <title>"
	case n < 15:
		return 1, StatusWarn, fmt.Sprintf("title is only %d characters", n)
	case n > 70:
		return 2, StatusWarn, fmt.Sprintf("title is %d characters, may be truncated", n)
	default:
		return 3, StatusOK, ""
	}
}

func checkMetaDescription(p *signals.PageSignals, _ *SiteContext) (int, string, string) {
	n := len(p.MetaDescription)
	switch {
	case n == 0:
		return 0, StatusFail, "no meta description"
	case n < 50:
		return 1, StatusWarn, fmt.Sprintf("meta description is only %d characters", n)
	case n > 160:
		return 2, StatusWarn, fmt.Sprintf("meta description is %d characters", n)
	default:
		return 3, StatusOK, ""
	}
}

func checkH1(p *signals.PageSignals, _ *SiteContext) (int, string, string) {
	switch {
	case p.H1Count == 1:
		return 3, StatusOK, ""
	case p.H1Count == 0:
		return 0, StatusFail, "no H1 heading"
	default:
		return 1, StatusWarn, fmt.Sprintf("%d H1 headings, expected one", p.H1Count)
	}
}

func checkHeadingHierarchy(p *signals.PageSignals, _ *SiteContext) (int, string, string) {
	switch {
	case p.H2Count >= 2 && p.H3Count >= 1:
		return 3, StatusOK, ""
	case p.H2Count >= 2:
		return 2, StatusOK, ""
	case p.H2Count == 1:
		return 1, StatusWarn, "only one H2 section"
	default:
		return 0, StatusFail, "no H2 sections"
	}
}

func checkRichMedia(p *signals.PageSignals, _ *SiteContext) (int, string, string) {
	switch {
	case p.ImageCount >= 3:
		return 3, StatusOK, ""
	case p.ImageCount >= 1:
		return 2, StatusOK, ""
	default:
		return 1, StatusWarn, "no images"
	}
}

// answerFriendlyTypes are schema types answer engines quote from directly.
var answerFriendlyTypes = []string{"Article", "NewsArticle", "BlogPosting", "FAQPage", "HowTo", "QAPage", "Product"}

func checkSchema(p *signals.PageSignals, _ *SiteContext) (int, string, string) {
	if len(p.SchemaTypes) == 0 {
		return 0, StatusFail, "no structured data"
	}
	for _, t := range answerFriendlyTypes {
		if p.HasSchemaType(t) {
			return 3, StatusOK, ""
		}
	}
	return 2, StatusWarn, "structured data present but no answer-friendly type"
}

func checkEntityGraph(_ *signals.PageSignals, site *SiteContext) (int, string, string) {
	if site == nil || site.EntityGraphScore < 0 {
		return 0, StatusNotApplicable, "entity graph not analyzed"
	}
	return bandStatus(site.EntityGraphScore, "weak entity graph connectivity")
}

func checkTopicDepth(_ *signals.PageSignals, site *SiteContext) (int, string, string) {
	if site == nil || site.TopicDepthScore < 0 {
		return 0, StatusNotApplicable, "topic depth not analyzed"
	}
	return bandStatus(site.TopicDepthScore, "shallow topical coverage")
}

func bandStatus(score int, failEvidence string) (int, string, string) {
	switch {
	case score >= 3:
		return 3, StatusOK, ""
	case score == 2:
		return 2, StatusWarn, ""
	case score == 1:
		return 1, StatusWarn, failEvidence
	default:
		return 0, StatusFail, failEvidence
	}
}

func checkAuthor(p *signals.PageSignals, _ *SiteContext) (int, string, string) {
	if p.HasFlag(signals.FlagAuthorByline) {
		return 3, StatusOK, ""
	}
	return 0, StatusFail, "no author byline or author schema"
}

func checkOutboundCitations(p *signals.PageSignals, _ *SiteContext) (int, string, string) {
	switch {
	case p.OutboundLinks >= 3:
		return 3, StatusOK, ""
	case p.OutboundLinks >= 1:
		return 2, StatusOK, ""
	default:
		return 0, StatusFail, "no outbound links to sources"
	}
}

func checkReferenceLinks(p *signals.PageSignals, _ *SiteContext) (int, string, string) {
	if p.HasFlag(signals.FlagReferenceLinks) {
		return 3, StatusOK, ""
	}
	if p.OutboundLinks == 0 {
		return 0, StatusNotApplicable, "page has no outbound links"
	}
	return 1, StatusWarn, "no academic or reference-grade links"
}

func checkCanonical(p *signals.PageSignals, _ *SiteContext) (int, string, string) {
	if p.Canonical == "" {
		return 0, StatusFail, "no canonical link"
	}
	return 3, StatusOK, ""
}

func checkIndexable(p *signals.PageSignals, _ *SiteContext) (int, string, string) {
	if p.HasFlag(signals.FlagNoindex) {
		return 0, StatusFail, "page is noindex"
	}
	return 3, StatusOK, ""
}

func checkPublishDate(p *signals.PageSignals, _ *SiteContext) (int, string, string) {
	if p.DatePublished == "" {
		return 0, StatusFail, "no publish date"
	}
	return 3, StatusOK, ""
}

func checkModifiedDate(p *signals.PageSignals, _ *SiteContext) (int, string, string) {
	if p.DatePublished == "" && p.DateModified == "" {
		return 0, StatusNotApplicable, "page carries no dates"
	}
	if p.DateModified == "" {
		return 1, StatusWarn, "no modified date"
	}
	return 3, StatusOK, ""
}

func checkWordCount(p *signals.PageSignals, _ *SiteContext) (int, string, string) {
	switch {
	case p.WordCount >= 800:
		return 3, StatusOK, ""
	case p.WordCount >= 300:
		return 2, StatusOK, ""
	case p.WordCount >= 100:
		return 1, StatusWarn, fmt.Sprintf("thin content: %d words", p.WordCount)
	default:
		return 0, StatusFail, fmt.Sprintf("almost no content: %d words", p.WordCount)
	}
}

func checkSpeakable(p *signals.PageSignals, _ *SiteContext) (int, string, string) {
	if p.HasSchemaType("SpeakableSpecification") || p.HasSchemaType("Speakable") {
		return 3, StatusOK, ""
	}
	return 0, StatusFail, "no speakable markup"
}
