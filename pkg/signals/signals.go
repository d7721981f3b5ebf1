package signals

// E-E-A-T flags derived from extracted signals.
const (
	FlagAuthorByline   = "author_byline"
	FlagDates          = "dates"
	FlagRichMedia      = "rich_media"
	FlagCitedSources   = "cited_sources"
	FlagReferenceLinks = "reference_links"
	FlagNoindex        = "noindex"
)

// PageSignals is the structured record extracted from a single page's HTML.
// It is a pure function of (html, url): identical input yields an identical
// record. Superseded, not versioned, when the same URL is re-analyzed.
type PageSignals struct {
	URL             string   `json:"url"`
	Title           string   `json:"title"`
	MetaDescription string   `json:"meta_description"`
	Canonical       string   `json:"canonical"`
	Robots          string   `json:"robots"`
	H1Text          string   `json:"h1_text"`
	H1Count         int      `json:"h1_count"`
	H2Count         int      `json:"h2_count"`
	H3Count         int      `json:"h3_count"`
	ImageCount      int      `json:"image_count"`
	OutboundLinks   int      `json:"outbound_links"` // unique external hosts
	InternalLinks   []string `json:"internal_links,omitempty"`
	WordCount       int      `json:"word_count"`
	SchemaTypes     []string `json:"schema_types,omitempty"`
	Author          string   `json:"author,omitempty"`
	DatePublished   string   `json:"date_published,omitempty"`
	DateModified    string   `json:"date_modified,omitempty"`
	EEATFlags       []string `json:"eeat_flags,omitempty"`
}

// HasSchemaType reports whether the page declared the given schema.org @type.
func (p *PageSignals) HasSchemaType(t string) bool {
	for _, s := range p.SchemaTypes {
		if s == t {
			return true
		}
	}
	return false
}

// HasFlag reports whether an E-E-A-T flag was derived for the page.
func (p *PageSignals) HasFlag(flag string) bool {
	for _, f := range p.EEATFlags {
		if f == flag {
			return true
		}
	}
	return false
}

// Extractor turns raw HTML into PageSignals. The goquery-based scanner is the
// default implementation; callers depend on this interface so a stricter
// tokenizer can be substituted without touching the pipeline.
type Extractor interface {
	Extract(html, pageURL string) (*PageSignals, error)
}
