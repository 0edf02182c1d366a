// Package orb is a typed Go client for the Orb billing API: customers,
// credit balances and ledger entries, top-ups, plans, plan migrations and
// subscriptions.
package orb

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.withorb.com/v1"
const defaultUserAgent = "orb-go/" + Version

// Environment variables read by NewClient when the matching option is unset.
const (
	EnvAPIKey  = "ORB_API_KEY"
	EnvBaseURL = "ORB_BASE_URL"
)

// Config wires authentication, base URL, retries and telemetry for the API client.
type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Telemetry  TelemetryHooks
	UserAgent  string
	Retry      RetryConfig
	// Timeout bounds a whole call, retries included. Zero means no limit
	// beyond the caller's context.
	Timeout time.Duration
	Headers http.Header
	// StrictResponseValidation runs Validate on every decoded response and
	// fails the call when the server's payload breaks its contract.
	StrictResponseValidation bool
}

// Option adjusts the Config NewClient builds.
type Option func(*Config)

// WithAPIKey sets the key sent as a bearer token, overriding ORB_API_KEY.
func WithAPIKey(key string) Option { return func(c *Config) { c.APIKey = key } }

// WithBaseURL points the client at another API root, overriding ORB_BASE_URL.
func WithBaseURL(base string) Option { return func(c *Config) { c.BaseURL = base } }

// WithHTTPClient replaces the http.Client used for every request.
func WithHTTPClient(hc *http.Client) Option { return func(c *Config) { c.HTTPClient = hc } }

// WithTelemetry installs request, log and metric hooks.
func WithTelemetry(t TelemetryHooks) Option { return func(c *Config) { c.Telemetry = t } }

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option { return func(c *Config) { c.UserAgent = ua } }

// WithRetry replaces the retry policy.
func WithRetry(r RetryConfig) Option { return func(c *Config) { c.Retry = r } }

// WithMaxRetries sets how many times a failed attempt is retried; 0 disables retries.
func WithMaxRetries(n int) Option {
	return func(c *Config) {
		if n < 0 {
			n = 0
		}
		c.Retry.MaxAttempts = n + 1
	}
}

// WithTimeout bounds every call, retries included; 0 means no limit.
func WithTimeout(d time.Duration) Option { return func(c *Config) { c.Timeout = d } }

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Config) {
		if c.Headers == nil {
			c.Headers = http.Header{}
		}
		c.Headers.Add(key, value)
	}
}

// WithStrictResponseValidation makes every decoded response run Validate
// and fail with its *ValidationError.
func WithStrictResponseValidation(strict bool) Option {
	return func(c *Config) { c.StrictResponseValidation = strict }
}

// Client provides high-level helpers for interacting with the Orb API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       authChain
	telemetry  TelemetryHooks
	userAgent  string
	retry      RetryConfig
	timeout    time.Duration
	strict     bool

	// Grouped service clients.
	Customers     *CustomersClient
	Credits       *CreditsClient
	Ledger        *LedgerClient
	TopUps        *TopUpsClient
	Plans         *PlansClient
	Migrations    *MigrationsClient
	Subscriptions *SubscriptionsClient
}

// NewClient applies opts over the environment defaults and returns a
// ready-to-use Client. The API key falls back to ORB_API_KEY and the base
// URL to ORB_BASE_URL, then to the public Orb endpoint.
func NewClient(opts ...Option) (*Client, error) {
	cfg := Config{Retry: defaultRetryConfig()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return NewClientFromConfig(cfg)
}

// NewClientFromConfig validates cfg and returns a ready-to-use Client. A
// zero Retry means a single attempt.
func NewClientFromConfig(cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		key = strings.TrimSpace(os.Getenv(EnvAPIKey))
	}
	if key == "" {
		return nil, &ConfigError{Message: "missing API key: use WithAPIKey or set " + EnvAPIKey}
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = strings.TrimSpace(os.Getenv(EnvBaseURL))
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	normalized, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	auth := authChain{newBearerAuth(key)}
	if len(cfg.Headers) > 0 {
		auth = append(auth, headerAuth{header: cfg.Headers.Clone()})
	}
	client := &Client{
		baseURL:    normalized,
		httpClient: httpClient,
		auth:       auth,
		telemetry:  cfg.Telemetry,
		userAgent:  ua,
		retry:      cfg.Retry.normalized(),
		timeout:    cfg.Timeout,
		strict:     cfg.StrictResponseValidation,
	}
	client.Customers = &CustomersClient{client: client}
	client.Credits = &CreditsClient{client: client}
	client.Ledger = &LedgerClient{client: client}
	client.TopUps = &TopUpsClient{client: client}
	client.Plans = &PlansClient{client: client}
	client.Migrations = &MigrationsClient{client: client}
	client.Subscriptions = &SubscriptionsClient{client: client}
	return client, nil
}

func normalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", &ConfigError{Message: "base URL required"}
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", &ConfigError{Message: fmt.Sprintf("invalid base URL: %v", err)}
	}
	if u.Scheme == "" {
		return "", &ConfigError{Message: "base URL missing scheme (http/https)"}
	}
	if u.Host == "" {
		return "", &ConfigError{Message: "base URL missing host"}
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return strings.TrimSuffix(u.String(), "/"), nil
}

func (c *Client) buildURL(path string, query url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}
