// Package catalog describes the models each provider offers, grouped by
// model type, together with their context windows and characteristics.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Provider names a hosted LLM API.
type Provider string

const (
	OpenAI      Provider = "openai"
	Anthropic   Provider = "anthropic"
	HuggingFace Provider = "huggingface"
	Gemini      Provider = "gemini"
)

// Providers lists every provider in display order.
var Providers = []Provider{OpenAI, Anthropic, HuggingFace, Gemini}

// ParseProvider validates a provider name.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Providers {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unsupported provider: %s", s)
}

// DisplayName returns the human-readable provider name.
func (p Provider) DisplayName() string {
	switch p {
	case OpenAI:
		return "OpenAI"
	case Anthropic:
		return "Anthropic"
	case HuggingFace:
		return "Hugging Face"
	case Gemini:
		return "Google Gemini"
	}
	return string(p)
}

// EnvVar is the environment variable holding the provider's API key.
func (p Provider) EnvVar() string {
	switch p {
	case Gemini:
		return "GOOGLE_API_KEY"
	default:
		return strings.ToUpper(string(p)) + "_API_KEY"
	}
}

// ModelType classifies a model for comparison purposes.
type ModelType string

const (
	Base      ModelType = "base"
	Instruct  ModelType = "instruct"
	FineTuned ModelType = "fine-tuned"
)

// ModelTypes lists every model type in display order.
var ModelTypes = []ModelType{Base, Instruct, FineTuned}

// ParseModelType validates a model type, accepting a few spellings of
// fine-tuned.
func ParseModelType(s string) (ModelType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "base":
		return Base, nil
	case "instruct":
		return Instruct, nil
	case "fine-tuned", "finetuned", "fine_tuned":
		return FineTuned, nil
	}
	return "", fmt.Errorf("invalid model type: %s (expected base, instruct or fine-tuned)", s)
}

// Characteristics summarizes a model for display.
type Characteristics struct {
	ContextWindow        int      `json:"context_window" yaml:"context_window"`
	TrainingCutoff       string   `json:"training_cutoff" yaml:"training_cutoff"`
	Strengths            []string `json:"strengths" yaml:"strengths"`
	UseCases             []string `json:"use_cases" yaml:"use_cases"`
	FineTuningStrategy   string   `json:"fine_tuning_strategy" yaml:"fine_tuning_strategy"`
	InstructionFollowing string   `json:"instruction_following" yaml:"instruction_following"`
	CostPer1KTokens      string   `json:"cost_per_1k_tokens" yaml:"cost_per_1k_tokens"`
}

// ErrNoModel is returned when a provider has no model of the requested type.
var ErrNoModel = errors.New("no available model")

type typeEntry struct {
	defaultModel string
	models       []string
}

type providerEntry struct {
	types           map[ModelType]typeEntry
	windows         map[string]int
	defaultWindow   int
	characteristics map[string]Characteristics
	fallback        Characteristics
}

// DefaultModel returns the model used when none is named explicitly.
func DefaultModel(p Provider, t ModelType) (string, error) {
	entry, ok := providers[p]
	if !ok {
		return "", fmt.Errorf("unsupported provider: %s", p)
	}
	te := entry.types[t]
	if te.defaultModel == "" {
		return "", fmt.Errorf("%w for type: %s", ErrNoModel, t)
	}
	return te.defaultModel, nil
}

// Models returns the known models of a type, or nil.
func Models(p Provider, t ModelType) []string {
	entry, ok := providers[p]
	if !ok {
		return nil
	}
	return append([]string(nil), entry.types[t].models...)
}

// TypeOf returns the model type a known model is listed under.
func TypeOf(p Provider, model string) (ModelType, bool) {
	entry, ok := providers[p]
	if !ok {
		return "", false
	}
	for _, t := range ModelTypes {
		for _, m := range entry.types[t].models {
			if m == model {
				return t, true
			}
		}
	}
	return "", false
}

// ContextWindow returns the context window for a model. Unknown models
// resolve to the longest known prefix, then to the provider default.
func ContextWindow(p Provider, model string) int {
	entry, ok := providers[p]
	if !ok {
		return 4096
	}
	if w, ok := entry.windows[model]; ok {
		return w
	}
	best, bestLen := 0, 0
	for name, w := range entry.windows {
		if strings.HasPrefix(model, name) && len(name) > bestLen {
			best, bestLen = w, len(name)
		}
	}
	if bestLen > 0 {
		return best
	}
	return entry.defaultWindow
}

// CharacteristicsFor returns the characteristics of a model, or the
// provider's generic profile for unknown models.
func CharacteristicsFor(p Provider, model string) Characteristics {
	entry, ok := providers[p]
	if !ok {
		return Characteristics{}
	}
	if c, ok := entry.characteristics[model]; ok {
		return c
	}
	c := entry.fallback
	c.ContextWindow = ContextWindow(p, model)
	return c
}

// ProviderInfo is the catalog view of one provider.
type ProviderInfo struct {
	Provider Provider               `json:"provider"`
	Name     string                 `json:"name"`
	Defaults map[ModelType]string   `json:"defaults"`
	Models   map[ModelType][]string `json:"models"`
	Windows  map[string]int         `json:"context_windows"`
}

// Describe returns everything the catalog knows about a provider.
func Describe(p Provider) ProviderInfo {
	info := ProviderInfo{
		Provider: p,
		Name:     p.DisplayName(),
		Defaults: map[ModelType]string{},
		Models:   map[ModelType][]string{},
		Windows:  map[string]int{},
	}
	entry, ok := providers[p]
	if !ok {
		return info
	}
	for _, t := range ModelTypes {
		te := entry.types[t]
		if te.defaultModel != "" {
			info.Defaults[t] = te.defaultModel
		}
		if len(te.models) > 0 {
			info.Models[t] = append([]string(nil), te.models...)
			for _, m := range te.models {
				info.Windows[m] = ContextWindow(p, m)
			}
		}
	}
	return info
}

// SupportedTypes returns the model types a provider has a default for.
func SupportedTypes(p Provider) []ModelType {
	var out []ModelType
	for _, t := range ModelTypes {
		if _, err := DefaultModel(p, t); err == nil {
			out = append(out, t)
		}
	}
	return out
}
