package threadlens

import (
	"log/slog"
	"time"

	"github.com/threadlens/threadlens/infrastructure/provider"
	"github.com/threadlens/threadlens/infrastructure/reddit"
	"github.com/threadlens/threadlens/internal/config"
)

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	endpoint           config.Endpoint
	reddit             config.RedditConfig
	rateLimit          config.RateLimitConfig
	cache              config.CacheConfig
	promptTemplatePath string

	logger       *slog.Logger
	textProvider provider.TextGenerator
	redditClient *reddit.Client
}

// newClientConfig creates a clientConfig with defaults from internal/config.
// This ensures all defaults come from the single source of truth.
func newClientConfig() *clientConfig {
	return &clientConfig{
		endpoint:  config.NewEndpoint(),
		reddit:    config.NewRedditConfig(),
		rateLimit: config.NewRateLimitConfig(),
		cache:     config.NewCacheConfig(),
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithAppConfig applies a full application configuration, typically loaded
// from the environment. Later options override individual pieces.
func WithAppConfig(cfg config.AppConfig) Option {
	return func(c *clientConfig) {
		c.endpoint = cfg.LLM()
		c.reddit = cfg.Reddit()
		c.rateLimit = cfg.RateLimit()
		c.cache = cfg.Cache()
		c.promptTemplatePath = cfg.PromptTemplatePath()
	}
}

// WithOpenAI sets the server-side OpenAI API key. Without a key the client
// runs in passthrough mode and returns the analysis prompt instead of
// invoking a model.
func WithOpenAI(apiKey string) Option {
	return func(c *clientConfig) {
		c.endpoint = c.endpoint.Apply(config.WithAPIKey(apiKey))
	}
}

// WithLLMEndpoint sets the full LLM endpoint configuration.
func WithLLMEndpoint(e config.Endpoint) Option {
	return func(c *clientConfig) { c.endpoint = e }
}

// WithTextProvider sets a custom text generation provider, bypassing the
// OpenAI endpoint configuration.
func WithTextProvider(p provider.TextGenerator) Option {
	return func(c *clientConfig) { c.textProvider = p }
}

// WithRedditClient sets a custom thread fetching client. Tests point this at
// a local server.
func WithRedditClient(rc *reddit.Client) Option {
	return func(c *clientConfig) { c.redditClient = rc }
}

// WithFetchTimeout sets the thread fetch timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.reddit = c.reddit.WithFetchTimeout(d) }
}

// WithRateLimit sets the per-client analysis quota: max requests per window.
func WithRateLimit(window time.Duration, max int) Option {
	return func(c *clientConfig) {
		c.rateLimit = c.rateLimit.WithWindow(window).WithMax(max)
	}
}

// WithScanRateLimit sets the per-client subreddit scan quota. The window is
// shared with the analysis limit.
func WithScanRateLimit(max int) Option {
	return func(c *clientConfig) { c.rateLimit = c.rateLimit.WithScanMax(max) }
}

// WithAnalysisCache sets the analysis result cache TTL and capacity.
func WithAnalysisCache(ttl time.Duration, maxEntries int) Option {
	return func(c *clientConfig) {
		c.cache = c.cache.WithTTL(ttl).WithMaxEntries(maxEntries)
	}
}

// WithShareStore sets the share link TTL and capacity.
func WithShareStore(ttl time.Duration, maxEntries int) Option {
	return func(c *clientConfig) {
		c.cache = c.cache.WithShareTTL(ttl).WithShareMaxEntries(maxEntries)
	}
}

// WithPromptTemplate sets a YAML file overriding parts of the analysis
// prompt.
func WithPromptTemplate(path string) Option {
	return func(c *clientConfig) { c.promptTemplatePath = path }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) { c.logger = logger }
}
