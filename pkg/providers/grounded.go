package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
)

const defaultOpenAIEndpoint = "https://api.openai.com/v1/chat/completions"

// Grounded is the guaranteed-citation fallback: a web-search call paired with
// an LLM summarization constrained to cite only the supplied sources. It is
// the last provider in the chain and must always yield at least one citation,
// or fail outright.
type Grounded struct {
	search   ProviderRunner // usually Brave
	apiKey   string
	endpoint string
	model    string
	client   *retryablehttp.Client
}

func NewGrounded(search ProviderRunner, apiKey, endpoint string, client *retryablehttp.Client) *Grounded {
	if endpoint == "" {
		endpoint = defaultOpenAIEndpoint
	}
	if client == nil {
		client = NewHTTPClient()
	}
	return &Grounded{search: search, apiKey: apiKey, endpoint: endpoint, model: "gpt-4o-mini", client: client}
}

func (g *Grounded) Name() string { return "grounded" }

func (g *Grounded) Run(ctx context.Context, query string) (*Answer, error) {
	sources, err := g.search.Run(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("grounded search step: %w", err)
	}
	if len(sources.Citations) == 0 {
		return nil, fmt.Errorf("grounded search step returned no sources for %q", query)
	}

	text, err := g.summarize(ctx, query, sources.Citations)
	if err != nil {
		// The sources are still a valid citation set; surface them with an
		// empty answer rather than failing the whole chain.
		return &Answer{Provider: g.Name(), Query: query, Citations: relabel(g.Name(), sources.Citations)}, nil
	}

	return &Answer{
		Provider:  g.Name(),
		Query:     query,
		Text:      text,
		Citations: relabel(g.Name(), sources.Citations),
	}, nil
}

// summarize asks the LLM for an answer citing only the supplied sources.
func (g *Grounded) summarize(ctx context.Context, query string, sources []Citation) (string, error) {
	var b strings.Builder
	for i, c := range sources {
		fmt.Fprintf(&b, "[%d] %s %s\n", i+1, c.URL, c.Title)
	}

	payload, err := json.Marshal(map[string]interface{}{
		"model": g.model,
		"messages": []map[string]string{
			{"role": "system", "content": "Answer using ONLY the numbered sources provided. Cite sources inline as [n]. If the sources do not cover the question, say so."},
			{"role": "user", "content": fmt.Sprintf("Question: %s\n\nSources:\n%s", query, b.String())},
		},
		"temperature": 0,
	})
	if err != nil {
		return "", err
	}

	body, err := doRequest(ctx, g.client, "POST", g.endpoint, payload, []header{
		{"Authorization", "Bearer " + g.apiKey},
	})
	if err != nil {
		return "", err
	}
	return gjson.GetBytes(body, "choices.0.message.content").String(), nil
}

func relabel(provider string, citations []Citation) []Citation {
	out := make([]Citation, len(citations))
	for i, c := range citations {
		c.Provider = provider
		out[i] = c
	}
	return out
}
