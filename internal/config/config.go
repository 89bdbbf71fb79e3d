// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"time"
)

// Default configuration values.
const (
	DefaultHost     = "0.0.0.0"
	DefaultPort     = 8080
	DefaultLogLevel = "INFO"

	DefaultLLMModel         = "gpt-4o"
	DefaultLLMTimeout       = 60 * time.Second
	DefaultLLMMaxRetries    = 1
	DefaultLLMInitialDelay  = 2 * time.Second
	DefaultLLMBackoffFactor = 2.0
	DefaultLLMTemperature   = 0.3

	DefaultFetchTimeout = 15 * time.Second

	DefaultRateLimitWindow = 60 * time.Second
	DefaultRateLimitMax    = 10
	DefaultScanRateMax     = 5

	DefaultCacheTTL        = time.Hour
	DefaultCacheMaxEntries = 100
	DefaultShareTTL        = 24 * time.Hour
	DefaultShareMaxEntries = 500

	DefaultSweepInterval = time.Minute
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// Endpoint configures the LLM service endpoint.
type Endpoint struct {
	baseURL       string
	model         string
	apiKey        string
	timeout       time.Duration
	maxRetries    int
	initialDelay  time.Duration
	backoffFactor float64
	temperature   float64
}

// NewEndpoint creates a new Endpoint with defaults.
func NewEndpoint() Endpoint {
	return Endpoint{
		model:         DefaultLLMModel,
		timeout:       DefaultLLMTimeout,
		maxRetries:    DefaultLLMMaxRetries,
		initialDelay:  DefaultLLMInitialDelay,
		backoffFactor: DefaultLLMBackoffFactor,
		temperature:   DefaultLLMTemperature,
	}
}

// BaseURL returns the base URL for the endpoint.
func (e Endpoint) BaseURL() string { return e.baseURL }

// Model returns the model identifier.
func (e Endpoint) Model() string { return e.model }

// APIKey returns the API key.
func (e Endpoint) APIKey() string { return e.apiKey }

// Timeout returns the request timeout.
func (e Endpoint) Timeout() time.Duration { return e.timeout }

// MaxRetries returns the maximum retry count.
func (e Endpoint) MaxRetries() int { return e.maxRetries }

// InitialDelay returns the initial retry delay.
func (e Endpoint) InitialDelay() time.Duration { return e.initialDelay }

// BackoffFactor returns the retry backoff multiplier.
func (e Endpoint) BackoffFactor() float64 { return e.backoffFactor }

// Temperature returns the sampling temperature for analysis calls.
func (e Endpoint) Temperature() float64 { return e.temperature }

// IsConfigured returns true if the endpoint can authenticate. Without a key
// the service runs in passthrough mode and hands the prompt back to the
// caller instead of analyzing.
func (e Endpoint) IsConfigured() bool {
	return e.apiKey != ""
}

// EndpointOption is a functional option for Endpoint.
type EndpointOption func(*Endpoint)

// WithBaseURL sets the base URL.
func WithBaseURL(url string) EndpointOption {
	return func(e *Endpoint) { e.baseURL = url }
}

// WithModel sets the model.
func WithModel(model string) EndpointOption {
	return func(e *Endpoint) { e.model = model }
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) EndpointOption {
	return func(e *Endpoint) { e.apiKey = key }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) EndpointOption {
	return func(e *Endpoint) { e.timeout = d }
}

// WithMaxRetries sets the maximum retry count.
func WithMaxRetries(n int) EndpointOption {
	return func(e *Endpoint) { e.maxRetries = n }
}

// WithInitialDelay sets the initial retry delay.
func WithInitialDelay(d time.Duration) EndpointOption {
	return func(e *Endpoint) { e.initialDelay = d }
}

// WithBackoffFactor sets the retry backoff multiplier.
func WithBackoffFactor(f float64) EndpointOption {
	return func(e *Endpoint) { e.backoffFactor = f }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) EndpointOption {
	return func(e *Endpoint) { e.temperature = t }
}

// NewEndpointWithOptions creates an Endpoint with functional options.
func NewEndpointWithOptions(opts ...EndpointOption) Endpoint {
	e := NewEndpoint()
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Apply returns a new Endpoint with the given options applied.
func (e Endpoint) Apply(opts ...EndpointOption) Endpoint {
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// RedditConfig configures thread fetching.
type RedditConfig struct {
	fetchTimeout time.Duration
	userAgent    string
}

// NewRedditConfig creates a new RedditConfig with defaults.
func NewRedditConfig() RedditConfig {
	return RedditConfig{
		fetchTimeout: DefaultFetchTimeout,
	}
}

// FetchTimeout returns the per-request fetch timeout.
func (r RedditConfig) FetchTimeout() time.Duration { return r.fetchTimeout }

// UserAgent returns the User-Agent header override, empty for the default.
func (r RedditConfig) UserAgent() string { return r.userAgent }

// WithFetchTimeout returns a new config with the specified timeout.
func (r RedditConfig) WithFetchTimeout(d time.Duration) RedditConfig {
	r.fetchTimeout = d
	return r
}

// WithUserAgent returns a new config with the specified User-Agent.
func (r RedditConfig) WithUserAgent(ua string) RedditConfig {
	r.userAgent = ua
	return r
}

// RateLimitConfig configures the per-client request quotas.
type RateLimitConfig struct {
	window  time.Duration
	max     int
	scanMax int
}

// NewRateLimitConfig creates a new RateLimitConfig with defaults.
func NewRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		window:  DefaultRateLimitWindow,
		max:     DefaultRateLimitMax,
		scanMax: DefaultScanRateMax,
	}
}

// Window returns the sliding window length.
func (r RateLimitConfig) Window() time.Duration { return r.window }

// Max returns the analysis request quota per window.
func (r RateLimitConfig) Max() int { return r.max }

// ScanMax returns the subreddit scan quota per window.
func (r RateLimitConfig) ScanMax() int { return r.scanMax }

// WithWindow returns a new config with the specified window.
func (r RateLimitConfig) WithWindow(d time.Duration) RateLimitConfig {
	r.window = d
	return r
}

// WithMax returns a new config with the specified analysis quota.
func (r RateLimitConfig) WithMax(n int) RateLimitConfig {
	r.max = n
	return r
}

// WithScanMax returns a new config with the specified scan quota.
func (r RateLimitConfig) WithScanMax(n int) RateLimitConfig {
	r.scanMax = n
	return r
}

// CacheConfig configures the analysis and share caches.
type CacheConfig struct {
	ttl             time.Duration
	maxEntries      int
	shareTTL        time.Duration
	shareMaxEntries int
}

// NewCacheConfig creates a new CacheConfig with defaults.
func NewCacheConfig() CacheConfig {
	return CacheConfig{
		ttl:             DefaultCacheTTL,
		maxEntries:      DefaultCacheMaxEntries,
		shareTTL:        DefaultShareTTL,
		shareMaxEntries: DefaultShareMaxEntries,
	}
}

// TTL returns the analysis cache TTL.
func (c CacheConfig) TTL() time.Duration { return c.ttl }

// MaxEntries returns the analysis cache capacity.
func (c CacheConfig) MaxEntries() int { return c.maxEntries }

// ShareTTL returns the share cache TTL.
func (c CacheConfig) ShareTTL() time.Duration { return c.shareTTL }

// ShareMaxEntries returns the share cache capacity.
func (c CacheConfig) ShareMaxEntries() int { return c.shareMaxEntries }

// WithTTL returns a new config with the specified analysis TTL.
func (c CacheConfig) WithTTL(d time.Duration) CacheConfig {
	c.ttl = d
	return c
}

// WithMaxEntries returns a new config with the specified analysis capacity.
func (c CacheConfig) WithMaxEntries(n int) CacheConfig {
	c.maxEntries = n
	return c
}

// WithShareTTL returns a new config with the specified share TTL.
func (c CacheConfig) WithShareTTL(d time.Duration) CacheConfig {
	c.shareTTL = d
	return c
}

// WithShareMaxEntries returns a new config with the specified share capacity.
func (c CacheConfig) WithShareMaxEntries(n int) CacheConfig {
	c.shareMaxEntries = n
	return c
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	host               string
	port               int
	logLevel           string
	logFormat          LogFormat
	llm                Endpoint
	reddit             RedditConfig
	rateLimit          RateLimitConfig
	cache              CacheConfig
	promptTemplatePath string
	allowedOrigins     []string
	sweepInterval      time.Duration
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	return AppConfig{
		host:           DefaultHost,
		port:           DefaultPort,
		logLevel:       DefaultLogLevel,
		logFormat:      LogFormatPretty,
		llm:            NewEndpoint(),
		reddit:         NewRedditConfig(),
		rateLimit:      NewRateLimitConfig(),
		cache:          NewCacheConfig(),
		allowedOrigins: []string{"*"},
		sweepInterval:  DefaultSweepInterval,
	}
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// LLM returns the LLM endpoint config.
func (c AppConfig) LLM() Endpoint { return c.llm }

// Reddit returns the thread fetching config.
func (c AppConfig) Reddit() RedditConfig { return c.reddit }

// RateLimit returns the rate limiting config.
func (c AppConfig) RateLimit() RateLimitConfig { return c.rateLimit }

// Cache returns the caching config.
func (c AppConfig) Cache() CacheConfig { return c.cache }

// PromptTemplatePath returns the optional prompt template file path.
func (c AppConfig) PromptTemplatePath() string { return c.promptTemplatePath }

// AllowedOrigins returns the CORS allowed origins.
func (c AppConfig) AllowedOrigins() []string {
	origins := make([]string, len(c.allowedOrigins))
	copy(origins, c.allowedOrigins)
	return origins
}

// SweepInterval returns how often expired cache and limiter entries are
// swept in the background.
func (c AppConfig) SweepInterval() time.Duration { return c.sweepInterval }

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithLLMEndpoint sets the LLM endpoint config.
func WithLLMEndpoint(e Endpoint) AppConfigOption {
	return func(c *AppConfig) { c.llm = e }
}

// WithRedditConfig sets the thread fetching config.
func WithRedditConfig(r RedditConfig) AppConfigOption {
	return func(c *AppConfig) { c.reddit = r }
}

// WithRateLimitConfig sets the rate limiting config.
func WithRateLimitConfig(r RateLimitConfig) AppConfigOption {
	return func(c *AppConfig) { c.rateLimit = r }
}

// WithCacheConfig sets the caching config.
func WithCacheConfig(cc CacheConfig) AppConfigOption {
	return func(c *AppConfig) { c.cache = cc }
}

// WithPromptTemplatePath sets the prompt template file path.
func WithPromptTemplatePath(path string) AppConfigOption {
	return func(c *AppConfig) { c.promptTemplatePath = path }
}

// WithAllowedOrigins sets the CORS allowed origins.
func WithAllowedOrigins(origins []string) AppConfigOption {
	return func(c *AppConfig) {
		c.allowedOrigins = make([]string, len(origins))
		copy(c.allowedOrigins, origins)
	}
}

// WithSweepInterval sets the background sweep interval.
func WithSweepInterval(d time.Duration) AppConfigOption {
	return func(c *AppConfig) { c.sweepInterval = d }
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	c := NewAppConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns slog attributes for logging the configuration.
// The API key is reported as presence only, never its value.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("addr", c.Addr()),
		slog.String("log_level", c.logLevel),
		slog.String("llm_model", c.llm.Model()),
		slog.Bool("llm_configured", c.llm.IsConfigured()),
		slog.Duration("fetch_timeout", c.reddit.FetchTimeout()),
		slog.Duration("rate_limit_window", c.rateLimit.Window()),
		slog.Int("rate_limit_max", c.rateLimit.Max()),
		slog.Int("scan_rate_limit_max", c.rateLimit.ScanMax()),
		slog.Duration("cache_ttl", c.cache.TTL()),
		slog.Duration("share_ttl", c.cache.ShareTTL()),
	}
}
