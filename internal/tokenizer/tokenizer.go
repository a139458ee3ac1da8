// Package tokenizer estimates token counts and fits text into model
// context windows.
package tokenizer

import (
	"math"
	"regexp"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/user/llmbench/internal/catalog"
)

const fallbackEncoding = "cl100k_base"

// reserveMargin is held back from the window when optimizing a prompt.
const reserveMargin = 100

// Estimator counts tokens per provider. Encodings are loaded lazily and
// cached per model.
type Estimator struct {
	mu        sync.Mutex
	encodings map[string]*tiktoken.Tiktoken
}

// New creates an estimator with an empty encoding cache.
func New() *Estimator {
	return &Estimator{encodings: make(map[string]*tiktoken.Tiktoken)}
}

// encoding returns the tiktoken encoding for a model, or nil when none can
// be loaded.
func (e *Estimator) encoding(model string) *tiktoken.Tiktoken {
	e.mu.Lock()
	defer e.mu.Unlock()

	if enc, ok := e.encodings[model]; ok {
		return enc
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			enc = nil
		}
	}
	e.encodings[model] = enc
	return enc
}

// EstimateTokens counts tokens in text the way the given provider would.
// OpenAI uses the model's own encoding; Anthropic and Gemini are
// approximated with cl100k_base; everything else uses the word heuristic.
func (e *Estimator) EstimateTokens(text string, provider catalog.Provider, model string) int {
	var key string
	switch provider {
	case catalog.OpenAI:
		key = model
		if key == "" {
			key = "gpt-3.5-turbo"
		}
	case catalog.Anthropic, catalog.Gemini:
		key = fallbackEncoding
	default:
		return BasicEstimate(text)
	}
	enc := e.encoding(key)
	if enc == nil {
		return BasicEstimate(text)
	}
	return len(enc.Encode(text, nil, nil))
}

// BasicEstimate approximates tokens as 1.3 per word.
func BasicEstimate(text string) int {
	return int(float64(CountWords(text)) * 1.3)
}

// CountWords returns the number of whitespace-separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// CountCharacters returns the number of characters (runes) in text.
func CountCharacters(text string) int {
	return len([]rune(text))
}

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// CountSentences splits on runs of sentence punctuation and counts the
// non-empty pieces.
func CountSentences(text string) int {
	n := 0
	for _, s := range sentenceSplit.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}

// TextStats summarizes a piece of text.
type TextStats struct {
	Characters        int     `json:"characters"`
	Words             int     `json:"words"`
	Sentences         int     `json:"sentences"`
	OpenAITokens      int     `json:"openai_tokens"`
	AnthropicTokens   int     `json:"anthropic_tokens"`
	BasicTokens       int     `json:"basic_tokens"`
	AvgWordLength     float64 `json:"avg_word_length"`
	AvgSentenceLength float64 `json:"avg_sentence_length"`
}

// Analyze computes character, word, sentence and token statistics.
func (e *Estimator) Analyze(text string) TextStats {
	words := strings.Fields(text)
	stats := TextStats{
		Characters:      CountCharacters(text),
		Words:           len(words),
		Sentences:       CountSentences(text),
		OpenAITokens:    e.EstimateTokens(text, catalog.OpenAI, "gpt-3.5-turbo"),
		AnthropicTokens: e.EstimateTokens(text, catalog.Anthropic, ""),
		BasicTokens:     BasicEstimate(text),
	}
	if len(words) > 0 {
		letters := 0
		for _, w := range words {
			letters += len([]rune(w))
		}
		stats.AvgWordLength = round2(float64(letters) / float64(len(words)))
	}
	if stats.Sentences > 0 {
		stats.AvgSentenceLength = round2(float64(stats.Words) / float64(stats.Sentences))
	}
	return stats
}

// WindowCheck reports how much of a context window a text would use.
type WindowCheck struct {
	EstimatedTokens int     `json:"estimated_tokens"`
	ContextWindow   int     `json:"context_window"`
	Fits            bool    `json:"fits"`
	Utilization     float64 `json:"utilization_percent"`
	Remaining       int     `json:"remaining_tokens"`
}

// CheckContextWindow estimates text against the model's context window.
func (e *Estimator) CheckContextWindow(text string, provider catalog.Provider, model string) WindowCheck {
	tokens := e.EstimateTokens(text, provider, model)
	window := catalog.ContextWindow(provider, model)
	check := WindowCheck{
		EstimatedTokens: tokens,
		ContextWindow:   window,
		Fits:            tokens <= window,
		Remaining:       max(window-tokens, 0),
	}
	if window > 0 {
		check.Utilization = round2(float64(tokens) / float64(window) * 100)
	}
	return check
}

// Truncate shortens text, on word boundaries, to at most maxTokens tokens.
func (e *Estimator) Truncate(text string, maxTokens int, provider catalog.Provider, model string) string {
	if e.EstimateTokens(text, provider, model) <= maxTokens {
		return text
	}
	words := strings.Fields(text)
	lo, hi, best := 0, len(words), 0
	for lo <= hi {
		mid := (lo + hi) / 2
		candidate := strings.Join(words[:mid], " ")
		if e.EstimateTokens(candidate, provider, model) <= maxTokens {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return strings.Join(words[:best], " ")
}

// Optimization is the result of fitting a prompt into the window.
type Optimization struct {
	Prompt          string `json:"prompt"`
	OriginalTokens  int    `json:"original_tokens"`
	OptimizedTokens int    `json:"optimized_tokens"`
	AvailableTokens int    `json:"available_tokens"`
	Truncated       bool   `json:"truncated"`
}

// OptimizePrompt truncates text so that it leaves maxResponseTokens plus a
// small margin free in the model's context window.
func (e *Estimator) OptimizePrompt(text string, provider catalog.Provider, model string, maxResponseTokens int) Optimization {
	window := catalog.ContextWindow(provider, model)
	available := max(window-maxResponseTokens-reserveMargin, 0)
	original := e.EstimateTokens(text, provider, model)
	opt := Optimization{
		Prompt:          text,
		OriginalTokens:  original,
		OptimizedTokens: original,
		AvailableTokens: available,
	}
	if original > available {
		opt.Prompt = e.Truncate(text, available, provider, model)
		opt.OptimizedTokens = e.EstimateTokens(opt.Prompt, provider, model)
		opt.Truncated = true
	}
	return opt
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
