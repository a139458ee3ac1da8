package compare

import (
	"fmt"
	"sync"
	"time"

	"github.com/user/llmbench/internal/catalog"
	"github.com/user/llmbench/internal/config"
	"github.com/user/llmbench/internal/tokenizer"
	"github.com/user/llmbench/pkg/llm"
	"github.com/user/llmbench/pkg/llm/anthropic"
	"github.com/user/llmbench/pkg/llm/gemini"
	"github.com/user/llmbench/pkg/llm/huggingface"
	"github.com/user/llmbench/pkg/llm/openai"
	"github.com/user/llmbench/pkg/logger"
)

// Constructor builds a provider client for one model.
type Constructor func(cfg *llm.Config, modelType catalog.ModelType) llm.Provider

// RequestOptions are the generation settings applied to every client.
type RequestOptions struct {
	MaxTokens   int
	Temperature float64
}

// Factory creates and caches provider clients keyed by provider and model.
type Factory struct {
	cfg       *config.Config
	estimator *tokenizer.Estimator
	log       *logger.Logger

	mu           sync.Mutex
	opts         RequestOptions
	clients      map[string]llm.Provider
	constructors map[catalog.Provider]Constructor
}

// NewFactory creates a factory backed by the built-in provider clients.
func NewFactory(cfg *config.Config, estimator *tokenizer.Estimator, log *logger.Logger) *Factory {
	if log == nil {
		log = logger.NewNop()
	}
	if estimator == nil {
		estimator = tokenizer.New()
	}
	f := &Factory{
		cfg:       cfg,
		estimator: estimator,
		log:       log.WithComponent("factory"),
		opts: RequestOptions{
			MaxTokens:   cfg.Request.MaxTokens,
			Temperature: cfg.Request.Temperature,
		},
		clients: make(map[string]llm.Provider),
	}
	f.constructors = map[catalog.Provider]Constructor{
		catalog.OpenAI: func(c *llm.Config, _ catalog.ModelType) llm.Provider {
			return openai.New(c)
		},
		catalog.Anthropic: func(c *llm.Config, _ catalog.ModelType) llm.Provider {
			return anthropic.New(c)
		},
		catalog.Gemini: func(c *llm.Config, _ catalog.ModelType) llm.Provider {
			return gemini.New(c)
		},
		catalog.HuggingFace: func(c *llm.Config, mt catalog.ModelType) llm.Provider {
			return huggingface.New(c,
				huggingface.WithModelType(string(mt)),
				huggingface.WithTokenCounter(func(s string) int {
					return f.estimator.EstimateTokens(s, catalog.HuggingFace, c.Model)
				}),
			)
		},
	}
	return f
}

// Register replaces the constructor used for a provider.
func (f *Factory) Register(p catalog.Provider, c Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.constructors[p] = c
	f.clients = make(map[string]llm.Provider)
}

// Options returns the current generation settings.
func (f *Factory) Options() RequestOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opts
}

// SetOptions changes the generation settings for clients created later.
// Cached clients are dropped.
func (f *Factory) SetOptions(opts RequestOptions) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opts = opts
	f.clients = make(map[string]llm.Provider)
}

// Available reports whether a provider has an API key configured. The
// returned error is a *llm.ConfigError.
func (f *Factory) Available(p catalog.Provider) error {
	if _, err := catalog.ParseProvider(string(p)); err != nil {
		return &llm.ConfigError{Field: "provider", Msg: err.Error()}
	}
	if f.cfg.Provider(p).APIKey == "" {
		return &llm.ConfigError{
			Field: string(p) + ".api_key",
			Msg: fmt.Sprintf("%s API key not found. Set %s environment variable or add it to the config file",
				p.DisplayName(), p.EnvVar()),
		}
	}
	return nil
}

// LLMConfig maps application settings onto a client configuration.
func (f *Factory) LLMConfig(p catalog.Provider, model string) *llm.Config {
	return f.llmConfig(p, model, f.Options())
}

func (f *Factory) llmConfig(p catalog.Provider, model string, opts RequestOptions) *llm.Config {
	pc := f.cfg.Provider(p)
	log := f.log.With("provider", string(p), "model", model)
	return &llm.Config{
		BaseURL:     pc.BaseURL,
		APIKey:      pc.APIKey,
		Model:       model,
		MaxTokens:   opts.MaxTokens,
		Temperature: float32(opts.Temperature),
		Timeout:     f.cfg.RequestTimeout(),
		MaxRetries:  f.cfg.Request.MaxRetries,
		OnRetry: func(err error, wait time.Duration) {
			log.Warnw("retrying model request", "error", err, "wait", wait)
		},
	}
}

// Provider returns a client for the given model, creating it on first use.
func (f *Factory) Provider(p catalog.Provider, mt catalog.ModelType, model string) (llm.Provider, error) {
	if err := f.Available(p); err != nil {
		return nil, err
	}

	key := string(p) + "/" + string(mt) + "/" + model
	f.mu.Lock()
	if client, ok := f.clients[key]; ok {
		f.mu.Unlock()
		return client, nil
	}
	construct := f.constructors[p]
	f.mu.Unlock()

	if construct == nil {
		return nil, &llm.ConfigError{Field: "provider", Msg: fmt.Sprintf("unsupported provider: %s", p)}
	}
	client := construct(f.LLMConfig(p, model), mt)

	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.clients[key]; ok {
		return existing, nil
	}
	f.clients[key] = client
	return client, nil
}

// NewProvider builds an uncached client with its own generation settings.
// The agent uses it so its temperature does not leak into comparisons.
func (f *Factory) NewProvider(p catalog.Provider, mt catalog.ModelType, model string, opts RequestOptions) (llm.Provider, error) {
	if err := f.Available(p); err != nil {
		return nil, err
	}
	f.mu.Lock()
	construct := f.constructors[p]
	f.mu.Unlock()
	if construct == nil {
		return nil, &llm.ConfigError{Field: "provider", Msg: fmt.Sprintf("unsupported provider: %s", p)}
	}
	return construct(f.llmConfig(p, model, opts), mt), nil
}
