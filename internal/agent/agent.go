// Package agent answers questions about images with a vision model and
// falls back to a text-only model when the vision call fails.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/user/llmbench/internal/catalog"
	"github.com/user/llmbench/internal/compare"
	"github.com/user/llmbench/internal/config"
	"github.com/user/llmbench/internal/events"
	"github.com/user/llmbench/pkg/llm"
	"github.com/user/llmbench/pkg/logger"
)

// Mode is the model path that produced an answer.
type Mode string

const (
	ModeVision Mode = "vision"
	ModeText   Mode = "text"
)

var (
	ErrNoImage       = errors.New("an image is required for vision questions")
	ErrEmptyQuestion = errors.New("question cannot be empty")
)

const (
	visionPrompt = "You are an expert image analyst. Analyze the provided image and answer the following question comprehensively and accurately: %s\n\n" +
		"Provide detailed observations and insights based on what you can see in the image."
	textPrompt = "I'm asking about an image, but since you can't see it, please provide a general response about what someone might look for when answering this question about an image: %s\n\n" +
		"Also suggest what specific visual elements would be important to observe."
)

// AnalysisQuestions are asked, in order, by AnalyzeComprehensive.
var AnalysisQuestions = []string{
	"What are the main objects and subjects in this image?",
	"Describe the colors, lighting, and overall composition",
	"What is the setting or environment shown?",
	"Are there any people in the image? If so, what are they doing?",
	"Is there any text visible in the image?",
	"What is the mood or atmosphere of this image?",
}

// Answer is the outcome of Answer. Err holds the vision failure when the
// text-only fallback was used.
type Answer struct {
	Question  string        `json:"question"`
	Text      string        `json:"answer"`
	Mode      Mode          `json:"mode"`
	FellBack  bool          `json:"fell_back"`
	Err       error         `json:"-"`
	Usage     llm.Usage     `json:"usage"`
	Elapsed   time.Duration `json:"elapsed"`
	CreatedAt time.Time     `json:"created_at"`
}

// VisionError returns the vision failure message, if any.
func (a *Answer) VisionError() string {
	if a.Err == nil {
		return ""
	}
	return a.Err.Error()
}

// Analysis is one question/answer pair of a comprehensive analysis.
type Analysis struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// AnswerEvent is published on events.TopicAgentAnswered.
type AnswerEvent struct {
	events.Event
	Answer Answer `json:"answer"`
}

// Info describes the models the agent talks to.
type Info struct {
	Provider     string   `json:"provider"`
	VisionModel  string   `json:"vision_model"`
	TextModel    string   `json:"text_model"`
	Temperature  float64  `json:"temperature"`
	MaxTokens    int      `json:"max_tokens"`
	MaxFileMB    int      `json:"max_file_size_mb"`
	Formats      []string `json:"supported_formats"`
	Capabilities []string `json:"capabilities"`
}

// Agent is safe for concurrent use.
type Agent struct {
	vision   llm.Provider
	text     llm.Provider
	provider catalog.Provider
	cfg      config.AgentConfig
	log      *logger.Logger
	bus      events.Bus

	mu      sync.Mutex
	history *ring
}

type Option func(*Agent)

// WithBus publishes every answer on b.
func WithBus(b events.Bus) Option {
	return func(a *Agent) { a.bus = b }
}

// New creates an agent over explicit vision and text clients.
func New(vision, text llm.Provider, cfg config.AgentConfig, log *logger.Logger, opts ...Option) *Agent {
	if log == nil {
		log = logger.NewNop()
	}
	p, err := catalog.ParseProvider(cfg.Provider)
	if err != nil {
		p = catalog.Gemini
	}
	a := &Agent{
		vision:   vision,
		text:     text,
		provider: p,
		cfg:      cfg,
		log:      log.WithComponent("agent"),
		history:  newRing(cfg.MaxHistory),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewFromFactory builds the vision and text clients through f using the
// agent's own temperature and token limit.
func NewFromFactory(f *compare.Factory, cfg config.AgentConfig, log *logger.Logger, opts ...Option) (*Agent, error) {
	p, err := catalog.ParseProvider(cfg.Provider)
	if err != nil {
		return nil, &llm.ConfigError{Field: "agent.provider", Msg: err.Error()}
	}
	ro := compare.RequestOptions{MaxTokens: cfg.MaxTokens, Temperature: cfg.Temperature}

	vision, err := f.NewProvider(p, catalog.Instruct, cfg.VisionModel, ro)
	if err != nil {
		return nil, err
	}
	text, err := f.NewProvider(p, catalog.Instruct, cfg.TextModel, ro)
	if err != nil {
		return nil, err
	}
	return New(vision, text, cfg, log, opts...), nil
}

// AskQuestion asks the vision model about img.
func (a *Agent) AskQuestion(ctx context.Context, question string, img *llm.Image) (string, error) {
	text, _, err := a.askVision(ctx, question, img)
	return text, err
}

func (a *Agent) askVision(ctx context.Context, question string, img *llm.Image) (string, llm.Usage, error) {
	if strings.TrimSpace(question) == "" {
		return "", llm.Usage{}, ErrEmptyQuestion
	}
	if img == nil {
		return "", llm.Usage{}, ErrNoImage
	}
	msgs := []llm.Message{{
		Role:    llm.RoleUser,
		Content: fmt.Sprintf(visionPrompt, question),
		Images:  []llm.Image{*img},
	}}
	resp, err := a.vision.Complete(ctx, msgs, nil)
	if err != nil {
		return "", llm.Usage{}, fmt.Errorf("vision model failed: %w", err)
	}
	return resp.Content, resp.Usage, nil
}

// AskTextOnly asks the text model a general question about an image it
// cannot see.
func (a *Agent) AskTextOnly(ctx context.Context, question string) (string, error) {
	text, _, err := a.askText(ctx, question)
	return text, err
}

func (a *Agent) askText(ctx context.Context, question string) (string, llm.Usage, error) {
	if strings.TrimSpace(question) == "" {
		return "", llm.Usage{}, ErrEmptyQuestion
	}
	msgs := []llm.Message{{Role: llm.RoleUser, Content: fmt.Sprintf(textPrompt, question)}}
	resp, err := a.text.Complete(ctx, msgs, nil)
	if err != nil {
		return "", llm.Usage{}, fmt.Errorf("text model failed: %w", err)
	}
	return resp.Content, resp.Usage, nil
}

// Answer asks the vision model when useVision is set and an image is
// given, and the text model otherwise. A vision failure falls back to the
// text model; the error is only returned when both fail.
func (a *Agent) Answer(ctx context.Context, question string, img *llm.Image, useVision bool) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}
	start := time.Now()
	ans := &Answer{Question: question, CreatedAt: start}

	if useVision && img != nil {
		text, usage, err := a.askVision(ctx, question, img)
		if err == nil {
			ans.Text, ans.Mode, ans.Usage = text, ModeVision, usage
			return a.finish(ans, start), nil
		}
		a.log.Warnw("vision failed, falling back to text-only", "error", err)
		ans.FellBack = true
		ans.Err = err
	}

	text, usage, err := a.askText(ctx, question)
	if err != nil {
		a.log.Errorw("text-only answer failed", "error", err)
		if ans.Err != nil {
			return nil, errors.Join(ans.Err, err)
		}
		return nil, err
	}
	ans.Text, ans.Mode, ans.Usage = text, ModeText, usage
	return a.finish(ans, start), nil
}

func (a *Agent) finish(ans *Answer, start time.Time) *Answer {
	ans.Elapsed = time.Since(start)
	a.mu.Lock()
	a.history.push(*ans)
	a.mu.Unlock()

	a.log.Infow("question answered",
		"mode", ans.Mode,
		"fell_back", ans.FellBack,
		"elapsed_ms", ans.Elapsed.Milliseconds(),
	)
	if a.bus != nil {
		if err := a.bus.Publish(events.TopicAgentAnswered, AnswerEvent{Event: events.NewEvent(), Answer: *ans}); err != nil {
			a.log.Warnw("failed to publish answer", "error", err)
		}
	}
	return ans
}

// AnalyzeComprehensive asks every AnalysisQuestions entry about img.
// A failed question is reported in its answer and does not stop the rest.
func (a *Agent) AnalyzeComprehensive(ctx context.Context, img *llm.Image) ([]Analysis, error) {
	if img == nil {
		return nil, ErrNoImage
	}
	out := make([]Analysis, 0, len(AnalysisQuestions))
	for _, q := range AnalysisQuestions {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		text, err := a.AskQuestion(ctx, q, img)
		if err != nil {
			text = "Analysis failed: " + err.Error()
		}
		out = append(out, Analysis{Question: q, Answer: text})
	}
	return out, nil
}

// ModelInfo describes the configured models.
func (a *Agent) ModelInfo() Info {
	name := a.provider.DisplayName()
	if a.provider == catalog.Gemini {
		name = "Google Generative AI"
	}
	return Info{
		Provider:    name,
		VisionModel: a.cfg.VisionModel,
		TextModel:   a.cfg.TextModel,
		Temperature: a.cfg.Temperature,
		MaxTokens:   a.cfg.MaxTokens,
		MaxFileMB:   a.cfg.MaxFileSizeMB,
		Formats:     append([]string(nil), a.cfg.SupportedFormats...),
		Capabilities: []string{
			"Image analysis",
			"Text generation",
			"Question answering",
			"Multimodal understanding",
		},
	}
}

// History returns the retained answers, oldest first.
func (a *Agent) History() []Answer {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.history.items()
}

// ClearHistory drops the retained answers.
func (a *Agent) ClearHistory() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = newRing(a.cfg.MaxHistory)
}

// ring keeps the last cap answers.
type ring struct {
	buf   []Answer
	start int
	n     int
}

func newRing(capacity int) *ring {
	if capacity <= 0 {
		capacity = 50
	}
	return &ring{buf: make([]Answer, capacity)}
}

func (r *ring) push(a Answer) {
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = a
		r.n++
		return
	}
	r.buf[r.start] = a
	r.start = (r.start + 1) % len(r.buf)
}

func (r *ring) items() []Answer {
	out := make([]Answer, r.n)
	for i := 0; i < r.n; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}
