// Package history persists completed queries, comparisons and agent
// answers so they can be listed and inspected later.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/user/llmbench/internal/agent"
	"github.com/user/llmbench/internal/compare"
)

// Kind is the operation a record came from.
type Kind string

const (
	KindQuery   Kind = "query"
	KindCompare Kind = "compare"
	KindAgent   Kind = "agent"
)

var (
	ErrNotFound  = errors.New("history record not found")
	ErrAmbiguous = errors.New("history id prefix matches more than one record")
)

// Entry summarizes one model response.
type Entry struct {
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	ModelType    string  `json:"model_type,omitempty"`
	Response     string  `json:"response"`
	Error        string  `json:"error,omitempty"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	ResponseTime float64 `json:"response_time"`
}

// Record is one history item.
type Record struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Kind      Kind      `json:"kind" gorm:"type:varchar(16);not null;index"`
	Query     string    `json:"query" gorm:"type:text;not null"`
	Results   []Entry   `json:"results" gorm:"serializer:json;type:text"`
	Warnings  []string  `json:"warnings,omitempty" gorm:"serializer:json;type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;index"`
}

func (Record) TableName() string { return "history_records" }

// Store persists records. List returns the newest first; limit <= 0
// means all. Get accepts a unique ID prefix.
type Store interface {
	Append(ctx context.Context, rec *Record) error
	List(ctx context.Context, limit int) ([]*Record, error)
	Get(ctx context.Context, id string) (*Record, error)
	Clear(ctx context.Context) error
}

func entryFrom(r *compare.Result) Entry {
	return Entry{
		Provider:     string(r.Provider),
		Model:        r.ModelName,
		ModelType:    string(r.ModelType),
		Response:     r.Response,
		Error:        r.Error,
		InputTokens:  r.TokenUsage.InputTokens,
		OutputTokens: r.TokenUsage.OutputTokens,
		TotalTokens:  r.TokenUsage.TotalTokens,
		ResponseTime: r.ResponseTime,
	}
}

// FromResult records a single query.
func FromResult(r *compare.Result) *Record {
	return &Record{
		ID:        uuid.New().String(),
		Kind:      KindQuery,
		Query:     r.Query,
		Results:   []Entry{entryFrom(r)},
		CreatedAt: time.Now(),
	}
}

// FromComparison records a compare-all run.
func FromComparison(c *compare.Comparison) *Record {
	rec := &Record{
		ID:        uuid.New().String(),
		Kind:      KindCompare,
		Query:     c.Query,
		Results:   make([]Entry, 0, len(c.Results)),
		Warnings:  c.Warnings,
		CreatedAt: time.Now(),
	}
	for _, r := range c.Results {
		rec.Results = append(rec.Results, entryFrom(r))
	}
	return rec
}

// FromAnswer records an agent answer.
func FromAnswer(a *agent.Answer) *Record {
	e := Entry{
		Provider:     "agent",
		Model:        string(a.Mode),
		Response:     a.Text,
		Error:        a.VisionError(),
		InputTokens:  a.Usage.InputTokens,
		OutputTokens: a.Usage.OutputTokens,
		TotalTokens:  a.Usage.TotalTokens,
		ResponseTime: a.Elapsed.Seconds(),
	}
	return &Record{
		ID:        uuid.New().String(),
		Kind:      KindAgent,
		Query:     a.Question,
		Results:   []Entry{e},
		CreatedAt: time.Now(),
	}
}
