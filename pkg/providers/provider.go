package providers

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/weppos/publicsuffix-go/publicsuffix"
)

// Citation is one instance of a provider referencing a URL in an answer.
// Citations are append-only; dedup happens per query batch on (provider, url).
type Citation struct {
	Provider  string    `json:"provider"`
	Query     string    `json:"query"`
	URL       string    `json:"url"`
	Domain    string    `json:"domain"` // registrable domain (eTLD+1)
	Title     string    `json:"title,omitempty"`
	Snippet   string    `json:"snippet,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Answer is a provider response: the answer text (may be empty for pure
// search providers) plus the citations backing it.
type Answer struct {
	Provider  string     `json:"provider"`
	Query     string     `json:"query"`
	Text      string     `json:"text,omitempty"`
	Citations []Citation `json:"citations"`
}

// ProviderRunner abstracts one answer/search provider. New providers plug in
// without touching the orchestrator.
type ProviderRunner interface {
	Name() string
	Run(ctx context.Context, query string) (*Answer, error)
}

// RegistrableDomain extracts the eTLD+1 from a URL or bare host.
// Returns "" when no registrable domain can be derived.
func RegistrableDomain(raw string) string {
	host := strings.TrimSpace(raw)
	if strings.Contains(host, "://") {
		if u, err := url.Parse(host); err == nil && u.Hostname() != "" {
			host = u.Hostname()
		}
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if !strings.Contains(host, ".") {
		return ""
	}
	domain, err := publicsuffix.Domain(host)
	if err != nil {
		return ""
	}
	return domain
}

// newCitation fills the derived fields every provider needs.
func newCitation(provider, query, rawURL, title, snippet string) Citation {
	return Citation{
		Provider:  provider,
		Query:     query,
		URL:       rawURL,
		Domain:    RegistrableDomain(rawURL),
		Title:     title,
		Snippet:   snippet,
		FetchedAt: time.Now().UTC(),
	}
}
