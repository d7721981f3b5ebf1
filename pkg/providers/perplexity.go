package providers

import (
	"context"
	"encoding/json"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
)

const defaultPerplexityEndpoint = "https://api.perplexity.ai/chat/completions"

// Perplexity is the fast-but-shallow first hop: a single chat call that
// returns an answer with inline citation URLs.
type Perplexity struct {
	apiKey   string
	endpoint string
	model    string
	client   *retryablehttp.Client
}

func NewPerplexity(apiKey, endpoint string, client *retryablehttp.Client) *Perplexity {
	if endpoint == "" {
		endpoint = defaultPerplexityEndpoint
	}
	if client == nil {
		client = NewHTTPClient()
	}
	return &Perplexity{apiKey: apiKey, endpoint: endpoint, model: "sonar", client: client}
}

func (p *Perplexity) Name() string { return "perplexity" }

func (p *Perplexity) Run(ctx context.Context, query string) (*Answer, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"model": p.model,
		"messages": []map[string]string{
			{"role": "user", "content": query},
		},
	})
	if err != nil {
		return nil, err
	}

	body, err := doRequest(ctx, p.client, "POST", p.endpoint, payload, []header{
		{"Authorization", "Bearer " + p.apiKey},
	})
	if err != nil {
		return nil, err
	}

	parsed := gjson.ParseBytes(body)
	answer := &Answer{
		Provider: p.Name(),
		Query:    query,
		Text:     parsed.Get("choices.0.message.content").String(),
	}
	for _, c := range parsed.Get("citations").Array() {
		u := c.String()
		if u == "" {
			continue
		}
		answer.Citations = append(answer.Citations, newCitation(p.Name(), query, u, "", ""))
	}
	return answer, nil
}
