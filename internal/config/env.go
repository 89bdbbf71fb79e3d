// Package config provides application configuration.
package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Nested structs use underscore delimiter (e.g., LLM_BASE_URL).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// OpenAIAPIKey is the server-side LLM credential. When unset the service
	// runs in passthrough mode.
	// Env: OPENAI_API_KEY
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	// LLM configures the analysis endpoint.
	LLM LLMEnv `envconfig:"LLM"`

	// Reddit configures thread fetching.
	Reddit RedditEnv `envconfig:"REDDIT"`

	// RateLimit configures per-client request quotas.
	RateLimit RateLimitEnv `envconfig:"RATE_LIMIT"`

	// Cache configures the analysis and share caches.
	Cache CacheEnv `envconfig:"CACHE"`

	// PromptTemplate is an optional YAML file overriding the analysis prompt.
	// Env: PROMPT_TEMPLATE
	PromptTemplate string `envconfig:"PROMPT_TEMPLATE"`

	// AllowedOrigins is a comma-separated list of CORS origins.
	// Env: ALLOWED_ORIGINS (default: *)
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"*"`
}

// LLMEnv holds environment configuration for the analysis endpoint.
type LLMEnv struct {
	// BaseURL is an OpenAI-compatible base URL override.
	// Env: LLM_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// Model is the chat model identifier.
	// Env: LLM_MODEL (default: gpt-4o)
	Model string `envconfig:"MODEL" default:"gpt-4o"`

	// Timeout is the request timeout in seconds.
	// Env: LLM_TIMEOUT (default: 60)
	Timeout float64 `envconfig:"TIMEOUT" default:"60"`

	// MaxRetries is the maximum number of retries.
	// Env: LLM_MAX_RETRIES (default: 1)
	MaxRetries int `envconfig:"MAX_RETRIES" default:"1"`

	// InitialDelay is the initial retry delay in seconds.
	// Env: LLM_INITIAL_DELAY (default: 2.0)
	InitialDelay float64 `envconfig:"INITIAL_DELAY" default:"2.0"`

	// BackoffFactor is the retry backoff multiplier.
	// Env: LLM_BACKOFF_FACTOR (default: 2.0)
	BackoffFactor float64 `envconfig:"BACKOFF_FACTOR" default:"2.0"`

	// Temperature is the sampling temperature for analysis calls.
	// Env: LLM_TEMPERATURE (default: 0.3)
	Temperature float64 `envconfig:"TEMPERATURE" default:"0.3"`
}

// RedditEnv holds environment configuration for thread fetching.
type RedditEnv struct {
	// FetchTimeout is the per-request timeout in seconds.
	// Env: REDDIT_FETCH_TIMEOUT (default: 15)
	FetchTimeout float64 `envconfig:"FETCH_TIMEOUT" default:"15"`

	// UserAgent overrides the User-Agent header sent on fetches.
	// Env: REDDIT_USER_AGENT
	UserAgent string `envconfig:"USER_AGENT"`
}

// RateLimitEnv holds environment configuration for rate limiting.
type RateLimitEnv struct {
	// WindowSeconds is the sliding window length in seconds.
	// Env: RATE_LIMIT_WINDOW_SECONDS (default: 60)
	WindowSeconds float64 `envconfig:"WINDOW_SECONDS" default:"60"`

	// Max is the analysis request quota per window.
	// Env: RATE_LIMIT_MAX (default: 10)
	Max int `envconfig:"MAX" default:"10"`

	// ScanMax is the subreddit scan quota per window.
	// Env: RATE_LIMIT_SCAN_MAX (default: 5)
	ScanMax int `envconfig:"SCAN_MAX" default:"5"`
}

// CacheEnv holds environment configuration for caching.
type CacheEnv struct {
	// TTLSeconds is the analysis cache TTL in seconds.
	// Env: CACHE_TTL_SECONDS (default: 3600)
	TTLSeconds float64 `envconfig:"TTL_SECONDS" default:"3600"`

	// MaxEntries is the analysis cache capacity.
	// Env: CACHE_MAX_ENTRIES (default: 100)
	MaxEntries int `envconfig:"MAX_ENTRIES" default:"100"`

	// ShareTTLSeconds is the share cache TTL in seconds.
	// Env: CACHE_SHARE_TTL_SECONDS (default: 86400)
	ShareTTLSeconds float64 `envconfig:"SHARE_TTL_SECONDS" default:"86400"`

	// ShareMaxEntries is the share cache capacity.
	// Env: CACHE_SHARE_MAX_ENTRIES (default: 500)
	ShareMaxEntries int `envconfig:"SHARE_MAX_ENTRIES" default:"500"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix.
// For example, prefix "THREADLENS" would require THREADLENS_PORT instead of PORT.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	if e.Host != "" {
		cfg = cfg.Apply(WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = cfg.Apply(WithPort(e.Port))
	}
	if e.LogLevel != "" {
		cfg = cfg.Apply(WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = cfg.Apply(WithLogFormat(parseLogFormat(e.LogFormat)))
	}

	cfg = cfg.Apply(WithLLMEndpoint(e.LLM.ToEndpoint(e.OpenAIAPIKey)))
	cfg = cfg.Apply(WithRedditConfig(e.Reddit.ToRedditConfig()))
	cfg = cfg.Apply(WithRateLimitConfig(e.RateLimit.ToRateLimitConfig()))
	cfg = cfg.Apply(WithCacheConfig(e.Cache.ToCacheConfig()))

	if e.PromptTemplate != "" {
		cfg = cfg.Apply(WithPromptTemplatePath(e.PromptTemplate))
	}
	if e.AllowedOrigins != "" {
		cfg = cfg.Apply(WithAllowedOrigins(splitCommaList(e.AllowedOrigins)))
	}

	return cfg
}

// ToEndpoint converts LLMEnv to Endpoint. The API key is carried separately
// since OPENAI_API_KEY is the conventional variable name.
func (l LLMEnv) ToEndpoint(apiKey string) Endpoint {
	opts := []EndpointOption{
		WithTimeout(secondsToDuration(l.Timeout)),
		WithMaxRetries(l.MaxRetries),
		WithInitialDelay(secondsToDuration(l.InitialDelay)),
		WithBackoffFactor(l.BackoffFactor),
		WithTemperature(l.Temperature),
	}
	if l.Model != "" {
		opts = append(opts, WithModel(l.Model))
	}
	if l.BaseURL != "" {
		opts = append(opts, WithBaseURL(l.BaseURL))
	}
	if apiKey != "" {
		opts = append(opts, WithAPIKey(apiKey))
	}
	return NewEndpointWithOptions(opts...)
}

// ToRedditConfig converts RedditEnv to RedditConfig.
func (r RedditEnv) ToRedditConfig() RedditConfig {
	cfg := NewRedditConfig()
	if r.FetchTimeout > 0 {
		cfg = cfg.WithFetchTimeout(secondsToDuration(r.FetchTimeout))
	}
	if r.UserAgent != "" {
		cfg = cfg.WithUserAgent(r.UserAgent)
	}
	return cfg
}

// ToRateLimitConfig converts RateLimitEnv to RateLimitConfig.
func (r RateLimitEnv) ToRateLimitConfig() RateLimitConfig {
	cfg := NewRateLimitConfig()
	if r.WindowSeconds > 0 {
		cfg = cfg.WithWindow(secondsToDuration(r.WindowSeconds))
	}
	if r.Max > 0 {
		cfg = cfg.WithMax(r.Max)
	}
	if r.ScanMax > 0 {
		cfg = cfg.WithScanMax(r.ScanMax)
	}
	return cfg
}

// ToCacheConfig converts CacheEnv to CacheConfig.
func (c CacheEnv) ToCacheConfig() CacheConfig {
	cfg := NewCacheConfig()
	if c.TTLSeconds > 0 {
		cfg = cfg.WithTTL(secondsToDuration(c.TTLSeconds))
	}
	if c.MaxEntries > 0 {
		cfg = cfg.WithMaxEntries(c.MaxEntries)
	}
	if c.ShareTTLSeconds > 0 {
		cfg = cfg.WithShareTTL(secondsToDuration(c.ShareTTLSeconds))
	}
	if c.ShareMaxEntries > 0 {
		cfg = cfg.WithShareMaxEntries(c.ShareMaxEntries)
	}
	return cfg
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

func splitCommaList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
