package compare

import (
	"time"

	"github.com/user/llmbench/internal/catalog"
	"github.com/user/llmbench/internal/events"
	"github.com/user/llmbench/pkg/llm"
)

// TokenUsage is the token accounting of one result.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int `json:"output_tokens" yaml:"output_tokens"`
	TotalTokens  int `json:"total_tokens" yaml:"total_tokens"`
}

func usageFrom(u llm.Usage) TokenUsage {
	return TokenUsage{InputTokens: u.InputTokens, OutputTokens: u.OutputTokens, TotalTokens: u.TotalTokens}
}

// Result is the outcome of one query against one model.
type Result struct {
	ID              string                  `json:"id" yaml:"id"`
	Query           string                  `json:"query" yaml:"query"`
	Provider        catalog.Provider        `json:"provider" yaml:"provider"`
	ModelName       string                  `json:"model_name" yaml:"model_name"`
	ModelType       catalog.ModelType       `json:"model_type" yaml:"model_type"`
	Response        string                  `json:"response" yaml:"response"`
	TokenUsage      TokenUsage              `json:"token_usage" yaml:"token_usage"`
	Characteristics catalog.Characteristics `json:"characteristics" yaml:"characteristics"`
	ResponseTime    float64                 `json:"response_time" yaml:"response_time"`
	ContextWindow   int                     `json:"context_window" yaml:"context_window"`
	Timestamp       time.Time               `json:"timestamp" yaml:"timestamp"`
	Error           string                  `json:"error,omitempty" yaml:"error,omitempty"`
	FallbackFrom    string                  `json:"fallback_from,omitempty" yaml:"fallback_from,omitempty"`
	Cached          bool                    `json:"cached,omitempty" yaml:"cached,omitempty"`
}

// Failed reports whether the provider call ended in an error.
func (r *Result) Failed() bool {
	return r.Error != ""
}

// TokensPerSecond is total tokens over response time, or zero.
func (r *Result) TokensPerSecond() float64 {
	if r.ResponseTime <= 0 {
		return 0
	}
	return float64(r.TokenUsage.TotalTokens) / r.ResponseTime
}

// Comparison is the outcome of running one query across several models.
type Comparison struct {
	Query    string    `json:"query" yaml:"query"`
	Results  []*Result `json:"results" yaml:"results"`
	Warnings []string  `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// ResultEvent is published on events.TopicResultCompleted.
type ResultEvent struct {
	events.Event
	Result Result
}

// ComparisonEvent is published on events.TopicComparisonCompleted.
type ComparisonEvent struct {
	events.Event
	Comparison Comparison
}
