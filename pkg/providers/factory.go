package providers

import (
	"github.com/answerscope/answerscope/internal/utils"
	"github.com/hashicorp/go-retryablehttp"
)

// ProviderConfig is one provider's credentials and toggle, read from the
// config file.
type ProviderConfig struct {
	Enabled  bool
	APIKey   string
	Endpoint string
}

// Config selects and configures the active providers.
type Config struct {
	Perplexity ProviderConfig
	Bing       ProviderConfig
	Brave      ProviderConfig
	OpenAI     ProviderConfig
}

// BuildChain assembles the priority-ordered fallback chain from config:
// fast-but-shallow first, then higher-quality search, then the
// guaranteed-citation grounded fallback.
func BuildChain(cfg Config, client *retryablehttp.Client) []ProviderRunner {
	if client == nil {
		client = NewHTTPClient()
	}

	var chain []ProviderRunner
	if cfg.Perplexity.Enabled && cfg.Perplexity.APIKey != "" {
		chain = append(chain, NewPerplexity(cfg.Perplexity.APIKey, cfg.Perplexity.Endpoint, client))
	}
	if cfg.Bing.Enabled && cfg.Bing.APIKey != "" {
		chain = append(chain, NewBing(cfg.Bing.APIKey, cfg.Bing.Endpoint, client))
	}
	if cfg.Brave.Enabled && cfg.Brave.APIKey != "" {
		brave := NewBrave(cfg.Brave.APIKey, cfg.Brave.Endpoint, client)
		if cfg.OpenAI.Enabled && cfg.OpenAI.APIKey != "" {
			chain = append(chain, NewGrounded(brave, cfg.OpenAI.APIKey, cfg.OpenAI.Endpoint, client))
		} else {
			chain = append(chain, brave)
			utils.Log.Warn("OpenAI disabled: chain ends with plain Brave search instead of the grounded fallback")
		}
	}
	return chain
}

// SearchRunners returns the enabled plain search providers used by the
// brand-citation fetch (which needs raw result lists, not answers).
func SearchRunners(cfg Config, client *retryablehttp.Client) []ProviderRunner {
	if client == nil {
		client = NewHTTPClient()
	}
	var runners []ProviderRunner
	if cfg.Brave.Enabled && cfg.Brave.APIKey != "" {
		runners = append(runners, NewBrave(cfg.Brave.APIKey, cfg.Brave.Endpoint, client))
	}
	if cfg.Bing.Enabled && cfg.Bing.APIKey != "" {
		runners = append(runners, NewBing(cfg.Bing.APIKey, cfg.Bing.Endpoint, client))
	}
	return runners
}
