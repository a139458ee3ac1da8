// Package compare runs queries against provider models, alone or as a
// side-by-side comparison.
package compare

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/user/llmbench/internal/catalog"
	"github.com/user/llmbench/internal/config"
	"github.com/user/llmbench/internal/events"
	"github.com/user/llmbench/internal/tokenizer"
	"github.com/user/llmbench/pkg/llm"
	"github.com/user/llmbench/pkg/logger"
)

var (
	ErrEmptyQuery  = errors.New("query cannot be empty")
	ErrNoProviders = errors.New("no providers available: configure at least one API key")
)

// Request selects the model a query is sent to. Model overrides the
// catalog default for the provider and type.
type Request struct {
	Query     string            `json:"query"`
	Provider  catalog.Provider  `json:"provider"`
	ModelType catalog.ModelType `json:"model_type"`
	Model     string            `json:"model,omitempty"`
}

// Service executes queries through a Factory.
type Service struct {
	factory       *Factory
	estimator     *tokenizer.Estimator
	log           *logger.Logger
	bus           events.Bus
	cache         *Cache
	fallback      config.FallbackConfig
	maxConcurrent int64
}

type Option func(*Service)

// WithBus publishes completed results on b.
func WithBus(b events.Bus) Option {
	return func(s *Service) { s.bus = b }
}

// WithCache enables response caching.
func WithCache(c *Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithFallback sets the model retried when a query fails.
func WithFallback(fb config.FallbackConfig) Option {
	return func(s *Service) { s.fallback = fb }
}

// WithMaxConcurrent bounds the number of in-flight calls in CompareAll.
func WithMaxConcurrent(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxConcurrent = int64(n)
		}
	}
}

// NewService creates a query service.
func NewService(factory *Factory, estimator *tokenizer.Estimator, log *logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	if estimator == nil {
		estimator = tokenizer.New()
	}
	s := &Service{
		factory:       factory,
		estimator:     estimator,
		log:           log.WithComponent("compare"),
		maxConcurrent: 4,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromConfig wires a service with the cache, fallback and concurrency
// settings from cfg.
func NewFromConfig(cfg *config.Config, log *logger.Logger, bus events.Bus) *Service {
	est := tokenizer.New()
	opts := []Option{
		WithFallback(cfg.Fallback),
		WithMaxConcurrent(cfg.Request.MaxConcurrent),
	}
	if bus != nil {
		opts = append(opts, WithBus(bus))
	}
	if cfg.Cache.Enabled && cfg.Cache.TTL > 0 {
		opts = append(opts, WithCache(NewCache(cfg.CacheTTL())))
	}
	return NewService(NewFactory(cfg, est, log), est, log, opts...)
}

// Factory returns the client factory.
func (s *Service) Factory() *Factory {
	return s.factory
}

// DisableCache turns off response caching.
func (s *Service) DisableCache() {
	s.cache = nil
}

// resolveModel fills in the catalog default when no model is named.
func resolveModel(req Request) (string, error) {
	if req.Model != "" {
		return req.Model, nil
	}
	model, err := catalog.DefaultModel(req.Provider, req.ModelType)
	if err != nil {
		return "", &llm.ConfigError{Field: "model_type", Msg: err.Error()}
	}
	return model, nil
}

// Query runs a single query. Configuration problems (unknown provider,
// missing key, no model for the type) are returned as errors; provider
// failures are recorded in Result.Error. A configured fallback model is
// tried when the primary call fails.
func (s *Service) Query(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, ErrEmptyQuery
	}
	if req.ModelType == "" {
		req.ModelType = catalog.Instruct
	}

	res, err := s.run(ctx, req)
	if err != nil {
		return nil, err
	}

	if res.Failed() {
		if fb, ok := s.fallbackRequest(req, res); ok {
			s.log.Warnw("primary model failed, trying fallback",
				"provider", res.Provider, "model", res.ModelName,
				"fallback_provider", fb.Provider, "error", res.Error)
			alt, ferr := s.run(ctx, fb)
			if ferr == nil {
				alt.FallbackFrom = string(res.Provider) + "/" + res.ModelName
				res = alt
			} else {
				s.log.Warnw("fallback unavailable", "error", ferr)
			}
		}
	}

	s.publish(events.TopicResultCompleted, ResultEvent{Event: events.NewEvent(), Result: *res})
	return res, nil
}

func (s *Service) fallbackRequest(req Request, failed *Result) (Request, bool) {
	if s.fallback.Provider == "" {
		return Request{}, false
	}
	p, err := catalog.ParseProvider(s.fallback.Provider)
	if err != nil {
		return Request{}, false
	}
	mt := catalog.Instruct
	if s.fallback.ModelType != "" {
		if parsed, err := catalog.ParseModelType(s.fallback.ModelType); err == nil {
			mt = parsed
		}
	}
	fb := Request{Query: req.Query, Provider: p, ModelType: mt, Model: s.fallback.Model}
	model, err := resolveModel(fb)
	if err != nil {
		return Request{}, false
	}
	if p == failed.Provider && model == failed.ModelName {
		return Request{}, false
	}
	fb.Model = model
	return fb, true
}

// run performs one provider call without fallback or publishing.
func (s *Service) run(ctx context.Context, req Request) (*Result, error) {
	if _, err := catalog.ParseProvider(string(req.Provider)); err != nil {
		return nil, err
	}
	model, err := resolveModel(req)
	if err != nil {
		return nil, err
	}
	client, err := s.factory.Provider(req.Provider, req.ModelType, model)
	if err != nil {
		return nil, err
	}

	key := s.cacheKey(req.Provider, req.ModelType, model, req.Query)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			s.log.Debugw("cache hit", "provider", req.Provider, "model", model)
			cached.ID = uuid.New().String()
			cached.Cached = true
			return &cached, nil
		}
	}

	res := &Result{
		ID:              uuid.New().String(),
		Query:           req.Query,
		Provider:        req.Provider,
		ModelName:       model,
		ModelType:       req.ModelType,
		Characteristics: catalog.CharacteristicsFor(req.Provider, model),
		ContextWindow:   catalog.ContextWindow(req.Provider, model),
		Timestamp:       time.Now(),
	}

	s.log.LogRequest(string(req.Provider), model, req.Query)
	start := time.Now()
	resp, err := client.Complete(ctx, []llm.Message{{Role: llm.RoleUser, Content: req.Query}}, nil)
	elapsed := time.Since(start)
	res.ResponseTime = elapsed.Seconds()

	if err != nil {
		s.log.LogError(string(req.Provider), model, err)
		res.Error = err.Error()
		res.Response = "Error: " + err.Error()
		return res, nil
	}

	res.Response = resp.Content
	usage := resp.Usage
	if usage.IsZero() {
		usage.InputTokens = s.estimator.EstimateTokens(req.Query, req.Provider, model)
		usage.OutputTokens = s.estimator.EstimateTokens(resp.Content, req.Provider, model)
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	res.TokenUsage = usageFrom(usage)
	s.log.LogResponse(string(req.Provider), model, usage.InputTokens, usage.OutputTokens, elapsed)

	if s.cache != nil {
		s.cache.Put(key, *res)
	}
	return res, nil
}

// cacheKey includes the model type because some clients shape the
// request by it even for the same model.
func (s *Service) cacheKey(p catalog.Provider, mt catalog.ModelType, model, query string) string {
	opts := s.factory.Options()
	return fmt.Sprintf("%s|%s|%s|%d|%g|%s", p, mt, model, opts.MaxTokens, opts.Temperature, query)
}

type job struct {
	req     Request
	result  *Result
	warning string
}

// CompareAll sends query to every requested provider and model type.
// Empty providers means every provider with a key; empty types means all
// types. Combinations that cannot run become warnings. Results keep
// provider order, then model-type order.
func (s *Service) CompareAll(ctx context.Context, query string, providers []catalog.Provider, types []catalog.ModelType) (*Comparison, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if len(providers) == 0 {
		providers = s.factory.cfg.AvailableProviders()
	}
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}
	if len(types) == 0 {
		types = catalog.ModelTypes
	}

	cmp := &Comparison{Query: query}
	var jobs []*job
	for _, p := range providers {
		if err := s.factory.Available(p); err != nil {
			cmp.Warnings = append(cmp.Warnings, fmt.Sprintf("Provider %s unavailable: %v", p, err))
			continue
		}
		for _, mt := range types {
			req := Request{Query: query, Provider: p, ModelType: mt}
			if _, err := resolveModel(req); err != nil {
				cmp.Warnings = append(cmp.Warnings, fmt.Sprintf("Failed to query %s %s: %v", p, mt, err))
				continue
			}
			jobs = append(jobs, &job{req: req})
		}
	}

	sem := semaphore.NewWeighted(s.maxConcurrent)
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	for _, j := range jobs {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			res, err := s.run(gctx, j.req)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				j.warning = fmt.Sprintf("Failed to query %s %s: %v", j.req.Provider, j.req.ModelType, err)
				return nil
			}
			j.result = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, j := range jobs {
		if j.warning != "" {
			cmp.Warnings = append(cmp.Warnings, j.warning)
		}
		if j.result != nil {
			cmp.Results = append(cmp.Results, j.result)
		}
	}

	s.log.Infow("comparison finished", "results", len(cmp.Results), "warnings", len(cmp.Warnings))
	s.publish(events.TopicComparisonCompleted, ComparisonEvent{Event: events.NewEvent(), Comparison: *cmp})
	return cmp, nil
}

func (s *Service) publish(topic string, payload any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(topic, payload); err != nil {
		s.log.Warnw("publish failed", "topic", topic, "error", err)
	}
}
