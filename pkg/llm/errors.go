package llm

import (
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"
)

const maxErrorBody = 500

// APIError is a non-2xx response from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// Temporary reports whether the request may succeed if retried.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// NewAPIError builds an APIError, truncating long bodies.
func NewAPIError(provider string, status int, body []byte) *APIError {
	s := string(body)
	if len(s) > maxErrorBody {
		n := maxErrorBody
		for n > 0 && !utf8.RuneStart(s[n]) {
			n--
		}
		s = s[:n] + "..."
	}
	return &APIError{Provider: provider, StatusCode: status, Body: s}
}

// NetworkError wraps transport failures.
type NetworkError struct {
	Provider string
	Op       string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s network error during %s: %v", e.Provider, e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error   { return e.Err }
func (e *NetworkError) Temporary() bool { return true }

// ConfigError reports missing or invalid provider configuration.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return e.Msg
}

func (e *ConfigError) Temporary() bool { return false }

// IsRetryable reports whether err is classified as transient.
func IsRetryable(err error) bool {
	var t interface{ Temporary() bool }
	if errors.As(err, &t) {
		return t.Temporary()
	}
	return false
}

// IsConfigError reports whether err is a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// ErrImagesUnsupported is returned by providers that cannot accept image input.
var ErrImagesUnsupported = errors.New("provider does not accept image input")
