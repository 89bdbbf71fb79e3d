// Package service provides application layer services that orchestrate
// fetching, formatting, analysis, and caching for the HTTP and MCP surfaces.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/threadlens/threadlens/domain/insight"
	"github.com/threadlens/threadlens/domain/thread"
	"github.com/threadlens/threadlens/infrastructure/provider"
	"github.com/threadlens/threadlens/internal/ttlcache"
)

// Result cache defaults, matching the limits the service has always run with.
const (
	DefaultCacheTTL        = time.Hour
	DefaultCacheMaxEntries = 100

	DefaultTemperature = 0.3
)

// Fetcher retrieves a thread's comment tree for a normalized thread URL.
type Fetcher interface {
	FetchThread(ctx context.Context, normalizedURL string) (thread.Thread, error)
}

// Result is the analysis payload returned to callers and stored in the
// result cache. Exactly one of Analysis and Prompt is populated: Prompt
// carries the ready-to-use prompt in passthrough mode (no credential).
type Result struct {
	Analysis     *insight.Analysis `json:"analysis,omitempty"`
	Prompt       string            `json:"prompt,omitempty"`
	NoCredential bool              `json:"no_api_key,omitempty"`
	RawData      string            `json:"raw_data"`
	CommentCount int               `json:"comment_count"`
	Subreddit    string            `json:"subreddit"`
}

// Analyzer orchestrates a thread analysis: rate limiting aside (handled at
// the HTTP boundary), it runs cache-check, fetch, format, prompt, analyze,
// cache-store.
type Analyzer struct {
	fetcher      Fetcher
	textGen      provider.TextGenerator
	userProvider func(apiKey string) provider.TextGenerator
	prompts      insight.PromptBuilder
	cache        *ttlcache.Cache[Result]
	temperature  float64
	logger       *slog.Logger
	now          func() time.Time
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithTextGenerator sets the server-side text generation provider. When nil,
// the analyzer runs in passthrough mode and returns prompts.
func WithTextGenerator(g provider.TextGenerator) AnalyzerOption {
	return func(a *Analyzer) { a.textGen = g }
}

// WithUserProviderFactory sets the factory used to build a provider from a
// caller-supplied API key.
func WithUserProviderFactory(f func(apiKey string) provider.TextGenerator) AnalyzerOption {
	return func(a *Analyzer) { a.userProvider = f }
}

// WithPromptBuilder sets the prompt builder.
func WithPromptBuilder(b insight.PromptBuilder) AnalyzerOption {
	return func(a *Analyzer) { a.prompts = b }
}

// WithResultCache sets the result cache. Tests pass an isolated instance.
func WithResultCache(c *ttlcache.Cache[Result]) AnalyzerOption {
	return func(a *Analyzer) { a.cache = c }
}

// WithTemperature sets the sampling temperature for analysis calls.
func WithTemperature(t float64) AnalyzerOption {
	return func(a *Analyzer) { a.temperature = t }
}

// WithAnalyzerLogger sets the logger.
func WithAnalyzerLogger(l *slog.Logger) AnalyzerOption {
	return func(a *Analyzer) { a.logger = l }
}

// WithClock sets the time source. Tests use a fixed clock.
func WithClock(now func() time.Time) AnalyzerOption {
	return func(a *Analyzer) { a.now = now }
}

// NewAnalyzer creates an Analyzer around the given fetcher.
func NewAnalyzer(fetcher Fetcher, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		fetcher:     fetcher,
		prompts:     insight.NewPromptBuilder(insight.DefaultTemplate()),
		temperature: DefaultTemperature,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.cache == nil {
		a.cache = ttlcache.New[Result](DefaultCacheTTL, ttlcache.WithMaxEntries(DefaultCacheMaxEntries))
	}
	return a
}

// Cache returns the analyzer's result cache.
func (a *Analyzer) Cache() *ttlcache.Cache[Result] {
	return a.cache
}

// AnalyzeOption configures a single Analyze call.
type AnalyzeOption func(*analyzeConfig)

type analyzeConfig struct {
	userAPIKey string
}

// WithUserAPIKey runs the analysis with a caller-supplied credential.
// User-key results bypass the cache in both directions: the shared cache
// only ever holds server-credential results.
func WithUserAPIKey(key string) AnalyzeOption {
	return func(c *analyzeConfig) { c.userAPIKey = key }
}

// Analyze runs the full pipeline for a submitted thread URL.
//
// URL validation errors surface as thread.ErrNotRedditURL or
// thread.ErrNotThreadURL; fetch failures as *reddit.FetchError; analysis
// failures as *provider.ProviderError or insight.ErrUnparseable. When the
// fetch succeeded but analysis failed, the returned Result still carries the
// formatted thread so the caller can retry by hand.
func (a *Analyzer) Analyze(ctx context.Context, rawURL string, opts ...AnalyzeOption) (Result, error) {
	var cfg analyzeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	normalized, err := thread.NormalizeURL(rawURL)
	if err != nil {
		return Result{}, err
	}
	key := thread.CacheKey(normalized)

	if cfg.userAPIKey == "" {
		if cached, ok := a.cache.Get(key, a.now()); ok {
			a.logger.Debug("result cache hit", "key", key)
			return cached, nil
		}
	}

	t, err := a.fetcher.FetchThread(ctx, normalized)
	if err != nil {
		return Result{}, err
	}

	formatted := thread.Format(t)
	prompt := a.prompts.Build(formatted, t.Subreddit())

	result := Result{
		RawData:      formatted,
		CommentCount: t.CommentCount(),
		Subreddit:    t.Subreddit(),
	}

	gen := a.generator(cfg.userAPIKey)
	if gen == nil {
		result.NoCredential = true
		result.Prompt = prompt
		return result, nil
	}

	req := provider.NewChatCompletionRequest([]provider.Message{
		provider.SystemMessage(a.prompts.System()),
		provider.UserMessage(prompt),
	}).WithTemperature(a.temperature).WithJSONMode()

	resp, err := gen.ChatCompletion(ctx, req)
	if err != nil {
		a.logger.Warn("analysis call failed", "subreddit", t.Subreddit(), "error", err)
		return result, err
	}

	analysis, err := insight.Parse(resp.Content())
	if err != nil {
		a.logger.Warn("analysis response unparseable", "subreddit", t.Subreddit(), "error", err)
		return result, err
	}
	result.Analysis = &analysis

	if cfg.userAPIKey == "" {
		a.cache.Put(key, result, a.now())
	}
	return result, nil
}

// generator picks the provider for this call: a per-user provider when the
// caller supplied a key, otherwise the server-side provider (nil in
// passthrough mode).
func (a *Analyzer) generator(userAPIKey string) provider.TextGenerator {
	if userAPIKey != "" && a.userProvider != nil {
		return a.userProvider(userAPIKey)
	}
	return a.textGen
}
