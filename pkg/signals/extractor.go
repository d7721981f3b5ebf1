package signals

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/answerscope/answerscope/internal/utils"
)

const (
	// MaxHTMLBytes caps the raw document size. Anything beyond is truncated
	// before parsing so a single runaway page cannot stall an audit.
	MaxHTMLBytes = 1536 * 1024

	slowExtractionWarn = 100 * time.Millisecond
)

// GoqueryExtractor is the default tolerant HTML scanner.
type GoqueryExtractor struct{}

// NewExtractor returns the default Extractor.
func NewExtractor() *GoqueryExtractor {
	return &GoqueryExtractor{}
}

// Extract parses raw HTML into PageSignals. Malformed markup and malformed
// JSON-LD blocks are non-fatal: the result carries whatever was recoverable.
func (e *GoqueryExtractor) Extract(html, pageURL string) (*PageSignals, error) {
	start := time.Now()

	if len(html) > MaxHTMLBytes {
		utils.Log.Warnf("HTML for %s is %d bytes, truncating to %d", pageURL, len(html), MaxHTMLBytes)
		html = html[:MaxHTMLBytes]
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	p := &PageSignals{URL: pageURL}

	// Structured data lives inside script tags, so it must be mined before
	// the script/style sweep below removes them.
	schema := extractStructuredData(doc, pageURL)
	p.SchemaTypes = schema.types
	p.Author = schema.author
	p.DatePublished = schema.datePublished
	p.DateModified = schema.dateModified

	doc.Find("script, style, noscript").Remove()

	p.Title = utils.NormalizeWhitespace(doc.Find("title").First().Text())
	p.MetaDescription = strings.TrimSpace(doc.Find(`meta[name="description"]`).First().AttrOr("content", ""))
	p.Canonical = strings.TrimSpace(doc.Find(`link[rel="canonical"]`).First().AttrOr("href", ""))
	p.Robots = strings.TrimSpace(doc.Find(`meta[name="robots"]`).First().AttrOr("content", ""))

	h1s := doc.Find("h1")
	p.H1Count = h1s.Length()
	p.H1Text = utils.NormalizeWhitespace(h1s.First().Text())
	p.H2Count = doc.Find("h2").Length()
	p.H3Count = doc.Find("h3").Length()
	p.ImageCount = doc.Find("img").Length()

	externalHosts := extractLinks(doc, pageURL, p)

	body := doc.Find("body").Text()
	if body == "" {
		body = doc.Text()
	}
	p.WordCount = len(strings.Fields(body))

	// Fallbacks for pages without structured data.
	if p.Author == "" {
		p.Author = strings.TrimSpace(doc.Find(`meta[name="author"]`).First().AttrOr("content", ""))
	}
	if p.Author == "" {
		p.Author = utils.NormalizeWhitespace(doc.Find(`[rel="author"], .author, .byline`).First().Text())
	}
	if p.DatePublished == "" {
		p.DatePublished = strings.TrimSpace(doc.Find(`meta[property="article:published_time"]`).First().AttrOr("content", ""))
	}
	if p.DatePublished == "" {
		p.DatePublished = strings.TrimSpace(doc.Find("time[datetime]").First().AttrOr("datetime", ""))
	}
	if p.DateModified == "" {
		p.DateModified = strings.TrimSpace(doc.Find(`meta[property="article:modified_time"]`).First().AttrOr("content", ""))
	}

	p.EEATFlags = deriveEEATFlags(p, externalHosts)

	if elapsed := time.Since(start); elapsed > slowExtractionWarn {
		utils.Log.Warnf("Slow extraction for %s: %s", pageURL, elapsed)
	}
	return p, nil
}

// extractLinks fills OutboundLinks (unique external hosts) and InternalLinks,
// returning the sorted external host list for the E-E-A-T heuristics.
func extractLinks(doc *goquery.Document, pageURL string, p *PageSignals) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		base = &url.URL{}
	}
	baseHost := strings.ToLower(base.Hostname())

	externalHosts := make(map[string]bool)
	internalSeen := make(map[string]bool)
	var hosts []string

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
			return
		}
		u, err := base.Parse(href)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return
		}
		host := strings.ToLower(u.Hostname())
		if host == "" {
			return
		}
		if host == baseHost {
			norm := NormalizeURL(u.String())
			if !internalSeen[norm] {
				internalSeen[norm] = true
				p.InternalLinks = append(p.InternalLinks, norm)
			}
			return
		}
		if !externalHosts[host] {
			externalHosts[host] = true
			hosts = append(hosts, host)
		}
	})

	p.OutboundLinks = len(externalHosts)
	sort.Strings(p.InternalLinks)
	sort.Strings(hosts)
	return hosts
}

// NormalizeURL canonicalizes a URL for identity: lowercase host, no trailing
// slash, no fragment. Shared with the entity graph so page keys line up.
func NormalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return strings.TrimSpace(raw)
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	if strings.HasSuffix(u.Path, "/") && len(u.Path) > 1 {
		u.Path = strings.TrimRight(u.Path, "/")
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	return u.String()
}
