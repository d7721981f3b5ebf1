package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/answerscope/answerscope/internal/utils"
	"github.com/answerscope/answerscope/pkg/cache"
	"github.com/answerscope/answerscope/pkg/providers"
	"github.com/answerscope/answerscope/pkg/ratelimit"
)

// DefaultProviderTimeout bounds one provider attempt so a hung provider
// falls through instead of eating the whole request budget.
const DefaultProviderTimeout = 25 * time.Second

// Orchestrator runs brand-relevant questions against a priority-ordered
// provider chain with shared caching and per-provider rate limiting.
// Construct once per process and share; all state is concurrency-safe.
type Orchestrator struct {
	chain           []providers.ProviderRunner
	cache           *cache.Cache
	mu              sync.Mutex
	limiters        map[string]*ratelimit.Limiter
	defaultLimiter  func() *ratelimit.Limiter
	providerTimeout time.Duration
}

// Option tweaks orchestrator construction.
type Option func(*Orchestrator)

// WithLimiter sets a provider-specific rate limiter.
func WithLimiter(provider string, l *ratelimit.Limiter) Option {
	return func(o *Orchestrator) { o.limiters[provider] = l }
}

// WithProviderTimeout overrides the per-attempt timeout.
func WithProviderTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.providerTimeout = d }
}

// New builds an orchestrator over the given chain. Providers without an
// explicit limiter get a conservative default bucket.
func New(chain []providers.ProviderRunner, c *cache.Cache, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		chain:           chain,
		cache:           c,
		limiters:        make(map[string]*ratelimit.Limiter),
		defaultLimiter:  func() *ratelimit.Limiter { return ratelimit.New(5, 1) },
		providerTimeout: DefaultProviderTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	for _, p := range chain {
		if _, ok := o.limiters[p.Name()]; !ok {
			o.limiters[p.Name()] = o.defaultLimiter()
		}
	}
	return o
}

// AnswerWithCitations answers a query about a domain. A cache hit
// short-circuits all provider calls. Otherwise providers are tried in
// priority order; a provider that errors, times out or returns zero
// citations falls through to the next. Only the final provider's failure is
// surfaced to the caller.
func (o *Orchestrator) AnswerWithCitations(ctx context.Context, domain, query string) (*providers.Answer, error) {
	if len(o.chain) == 0 {
		return nil, fmt.Errorf("no providers configured")
	}

	key := cache.Key("answer", domain, query)
	if cached, ok := o.cache.Get(key); ok {
		utils.Log.Debugf("Cache hit for %q", key)
		return cached.(*providers.Answer), nil
	}

	var lastErr error
	for i, p := range o.chain {
		answer, err := o.runProvider(ctx, p, query)
		if err != nil {
			utils.Log.Warnf("Provider %s failed for %q: %v", p.Name(), query, err)
			lastErr = err
			continue
		}
		if len(answer.Citations) == 0 {
			utils.Log.Debugf("Provider %s returned no citations for %q, falling through", p.Name(), query)
			lastErr = fmt.Errorf("provider %s returned no citations", p.Name())
			continue
		}
		if i > 0 {
			utils.Log.Infof("Answered %q via fallback provider %s", query, p.Name())
		}
		o.cache.Set(key, answer)
		return answer, nil
	}
	return nil, fmt.Errorf("all providers failed for %q: %w", query, lastErr)
}

// limiterFor returns the provider's limiter, creating a default one for
// providers first seen at runtime (e.g. brand-fetch search runners).
func (o *Orchestrator) limiterFor(name string) *ratelimit.Limiter {
	o.mu.Lock()
	defer o.mu.Unlock()
	l := o.limiters[name]
	if l == nil {
		l = o.defaultLimiter()
		o.limiters[name] = l
	}
	return l
}

func (o *Orchestrator) runProvider(ctx context.Context, p providers.ProviderRunner, query string) (*providers.Answer, error) {
	limiter := o.limiterFor(p.Name())
	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, o.providerTimeout)
	defer cancel()
	return p.Run(attemptCtx, query)
}
