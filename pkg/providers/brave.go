package providers

import (
	"context"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
)

const defaultBraveEndpoint = "https://api.search.brave.com/res/v1/web/search"

// Brave wraps the Brave Search API. It returns citations only, no answer
// text, so the orchestrator treats it as a source feed.
type Brave struct {
	apiKey   string
	endpoint string
	count    int
	client   *retryablehttp.Client
}

func NewBrave(apiKey, endpoint string, client *retryablehttp.Client) *Brave {
	if endpoint == "" {
		endpoint = defaultBraveEndpoint
	}
	if client == nil {
		client = NewHTTPClient()
	}
	return &Brave{apiKey: apiKey, endpoint: endpoint, count: 10, client: client}
}

func (b *Brave) Name() string { return "brave" }

func (b *Brave) Run(ctx context.Context, query string) (*Answer, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("count", "10")

	body, err := doRequest(ctx, b.client, "GET", b.endpoint+"?"+q.Encode(), nil, []header{
		{"X-Subscription-Token", b.apiKey},
	})
	if err != nil {
		return nil, err
	}

	answer := &Answer{Provider: b.Name(), Query: query}
	for _, r := range gjson.GetBytes(body, "web.results").Array() {
		u := r.Get("url").String()
		if u == "" {
			continue
		}
		answer.Citations = append(answer.Citations,
			newCitation(b.Name(), query, u, r.Get("title").String(), r.Get("description").String()))
	}
	return answer, nil
}
