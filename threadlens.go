// Package threadlens turns public Reddit discussion threads into structured
// product-discovery insight.
//
// A thread URL is normalized, fetched as JSON, flattened into an annotated
// transcript, and sent to an LLM that extracts pain points, buying signals,
// unmet needs, and product ideas. Results are cached, and repeated analysis
// is admission-controlled per caller.
//
// Basic usage:
//
//	client, err := threadlens.New(
//	    threadlens.WithOpenAI(os.Getenv("OPENAI_API_KEY")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := client.Analyzer.Analyze(ctx,
//	    "https://www.reddit.com/r/SaaS/comments/abc123/why_is_invoicing_so_hard/")
//
//	scan, err := client.Scanner.Scan(ctx, "r/startups")
//
// Without an API key the client runs in passthrough mode: Analyze returns
// the ready-to-use prompt so callers can run it through their own model.
package threadlens

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/threadlens/threadlens/application/service"
	"github.com/threadlens/threadlens/domain/insight"
	"github.com/threadlens/threadlens/infrastructure/provider"
	"github.com/threadlens/threadlens/infrastructure/reddit"
	"github.com/threadlens/threadlens/internal/config"
	"github.com/threadlens/threadlens/internal/ratelimit"
	"github.com/threadlens/threadlens/internal/ttlcache"
)

// Client is the main entry point for the threadlens library.
//
// Access operations via struct fields:
//
//	client.Analyzer.Analyze(ctx, url)
//	client.Scanner.Scan(ctx, "r/startups")
//	client.Shares.Create(payload)
type Client struct {
	// Public service fields (direct access)
	Analyzer *service.Analyzer
	Scanner  *service.Scanner
	Shares   *service.Share

	reddit      *reddit.Client
	limiter     *ratelimit.Limiter
	scanLimiter *ratelimit.Limiter
	rateLimit   config.RateLimitConfig
	logger      *slog.Logger
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	redditClient := cfg.redditClient
	if redditClient == nil {
		redditOpts := []reddit.Option{reddit.WithTimeout(cfg.reddit.FetchTimeout())}
		if ua := cfg.reddit.UserAgent(); ua != "" {
			redditOpts = append(redditOpts, reddit.WithUserAgent(ua))
		}
		redditClient = reddit.NewClient(redditOpts...)
	}

	template := insight.DefaultTemplate()
	if path := cfg.promptTemplatePath; path != "" {
		loaded, err := insight.LoadTemplate(path)
		if err != nil {
			return nil, fmt.Errorf("load prompt template: %w", err)
		}
		template = loaded
	}
	prompts := insight.NewPromptBuilder(template)

	textGen := cfg.textProvider
	if textGen == nil && cfg.endpoint.IsConfigured() {
		textGen = provider.NewOpenAIProvider(endpointToProviderConfig(cfg.endpoint, cfg.endpoint.APIKey()))
	}

	userProvider := func(apiKey string) provider.TextGenerator {
		return provider.NewOpenAIProvider(endpointToProviderConfig(cfg.endpoint, apiKey))
	}

	analyzerOpts := []service.AnalyzerOption{
		service.WithPromptBuilder(prompts),
		service.WithResultCache(ttlcache.New[service.Result](
			cfg.cache.TTL(),
			ttlcache.WithMaxEntries(cfg.cache.MaxEntries()),
		)),
		service.WithTemperature(cfg.endpoint.Temperature()),
		service.WithUserProviderFactory(userProvider),
		service.WithAnalyzerLogger(logger),
	}
	if textGen != nil {
		analyzerOpts = append(analyzerOpts, service.WithTextGenerator(textGen))
	}

	shares := service.NewShare(service.WithShareCache(ttlcache.New[json.RawMessage](
		cfg.cache.ShareTTL(),
		ttlcache.WithMaxEntries(cfg.cache.ShareMaxEntries()),
	)))

	rule := ratelimit.Rule{Window: cfg.rateLimit.Window(), Limit: cfg.rateLimit.Max()}
	scanRule := ratelimit.Rule{Window: cfg.rateLimit.Window(), Limit: cfg.rateLimit.ScanMax()}

	return &Client{
		Analyzer:    service.NewAnalyzer(redditClient, analyzerOpts...),
		Scanner:     service.NewScanner(redditClient),
		Shares:      shares,
		reddit:      redditClient,
		limiter:     ratelimit.New(rule),
		scanLimiter: ratelimit.New(scanRule),
		rateLimit:   cfg.rateLimit,
		logger:      logger,
	}, nil
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// Limiter returns the admission limiter covering analysis and share
// requests. All such requests from one caller share a single quota.
func (c *Client) Limiter() *ratelimit.Limiter {
	return c.limiter
}

// ScanLimiter returns the admission limiter for subreddit scans.
func (c *Client) ScanLimiter() *ratelimit.Limiter {
	return c.scanLimiter
}

// RateLimit returns the configured quotas.
func (c *Client) RateLimit() config.RateLimitConfig {
	return c.rateLimit
}

// Sweep drops expired cache entries and idle limiter records. Reads already
// treat expired entries as absent; sweeping only bounds memory.
func (c *Client) Sweep(now time.Time) {
	expired := c.Analyzer.Cache().Sweep(now)
	expired += c.Shares.Cache().Sweep(now)
	removed := c.limiter.Sweep(now) + c.scanLimiter.Sweep(now)
	if expired > 0 || removed > 0 {
		c.logger.Debug("sweep completed",
			"expired_entries", expired,
			"idle_callers", removed,
		)
	}
}

// RunSweeper sweeps periodically until the context is cancelled.
func (c *Client) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			c.Sweep(now)
		}
	}
}

func endpointToProviderConfig(e config.Endpoint, apiKey string) provider.OpenAIConfig {
	return provider.OpenAIConfig{
		APIKey:        apiKey,
		BaseURL:       e.BaseURL(),
		ChatModel:     e.Model(),
		Timeout:       e.Timeout(),
		MaxRetries:    e.MaxRetries(),
		InitialDelay:  e.InitialDelay(),
		BackoffFactor: e.BackoffFactor(),
	}
}
