package llm

import (
	"context"
	"net/http"
	"time"
)

//go:generate mockgen -source=provider.go -destination=mocks/mock_provider.go -package=mocks Provider

// Provider defines the interface for interacting with LLM backends.
// Implementations handle protocol-specific details such as request formatting,
// authentication, and response parsing.
type Provider interface {
	// Complete sends a chat completion request and returns the full response.
	Complete(ctx context.Context, messages []Message, tools []Tool) (*Response, error)
}

const (
	defaultTimeout       = 60 * time.Second
	defaultRetryInterval = 500 * time.Millisecond
)

// Config holds common configuration for LLM providers.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32

	// Timeout bounds a single HTTP attempt. Zero means 60s.
	Timeout time.Duration
	// MaxRetries is the number of retries after the first attempt for
	// transient failures (429, 5xx, network).
	MaxRetries int
	// RetryInterval is the initial backoff interval. Zero means 500ms.
	RetryInterval time.Duration
	// OnRetry, when set, is called before each retry.
	OnRetry func(err error, wait time.Duration)
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// Client returns the HTTP client to use for this configuration.
func (c *Config) Client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func (c *Config) retryInterval() time.Duration {
	if c.RetryInterval > 0 {
		return c.RetryInterval
	}
	return defaultRetryInterval
}

// ProviderFunc adapts an ordinary function to the Provider interface.
type ProviderFunc func(ctx context.Context, messages []Message, tools []Tool) (*Response, error)

// Complete calls f.
func (f ProviderFunc) Complete(ctx context.Context, messages []Message, tools []Tool) (*Response, error) {
	return f(ctx, messages, tools)
}
