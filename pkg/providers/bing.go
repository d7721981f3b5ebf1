package providers

import (
	"context"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
)

const defaultBingEndpoint = "https://api.bing.microsoft.com/v7.0/search"

// Bing wraps the Bing Web Search API.
type Bing struct {
	apiKey   string
	endpoint string
	client   *retryablehttp.Client
}

func NewBing(apiKey, endpoint string, client *retryablehttp.Client) *Bing {
	if endpoint == "" {
		endpoint = defaultBingEndpoint
	}
	if client == nil {
		client = NewHTTPClient()
	}
	return &Bing{apiKey: apiKey, endpoint: endpoint, client: client}
}

func (b *Bing) Name() string { return "bing" }

func (b *Bing) Run(ctx context.Context, query string) (*Answer, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("count", "10")

	body, err := doRequest(ctx, b.client, "GET", b.endpoint+"?"+q.Encode(), nil, []header{
		{"Ocp-Apim-Subscription-Key", b.apiKey},
	})
	if err != nil {
		return nil, err
	}

	answer := &Answer{Provider: b.Name(), Query: query}
	for _, r := range gjson.GetBytes(body, "webPages.value").Array() {
		u := r.Get("url").String()
		if u == "" {
			continue
		}
		answer.Citations = append(answer.Citations,
			newCitation(b.Name(), query, u, r.Get("name").String(), r.Get("snippet").String()))
	}
	return answer, nil
}
