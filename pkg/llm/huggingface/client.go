package huggingface

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"github.com/user/llmbench/pkg/llm"
)

const providerName = "huggingface"

// Client implements llm.Provider for the Hugging Face Inference API
// text-generation task. The API reports no token usage, so usage is
// estimated with the configured counter.
type Client struct {
	config    *llm.Config
	modelType string
	count     func(string) int
}

// Option configures a Client.
type Option func(*Client)

// WithModelType sets the catalog model type ("base", "instruct",
// "fine-tuned"), which controls sampling and prompt formatting.
func WithModelType(t string) Option {
	return func(c *Client) { c.modelType = t }
}

// WithTokenCounter replaces the words×1.3 usage estimate.
func WithTokenCounter(fn func(string) int) Option {
	return func(c *Client) { c.count = fn }
}

// New creates a Hugging Face client.
func New(config *llm.Config, opts ...Option) *Client {
	c := &Client{config: config, modelType: "instruct", count: basicCount}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type generateRequest struct {
	Inputs     string     `json:"inputs"`
	Parameters parameters `json:"parameters"`
}

type parameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float32 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
	DoSample       bool    `json:"do_sample"`
}

// generatedTextPaths covers both the list and object response shapes.
var generatedTextPaths = []string{"$[0].generated_text", "$.generated_text"}

// Complete runs text generation over the flattened conversation.
func (c *Client) Complete(ctx context.Context, messages []llm.Message, tools []llm.Tool) (*llm.Response, error) {
	for _, m := range messages {
		if len(m.Images) > 0 {
			return nil, llm.ErrImagesUnsupported
		}
	}

	prompt := c.FormatPrompt(messages)
	temp := c.config.Temperature
	if temp <= 0 {
		// The inference API rejects a zero temperature when sampling.
		temp = 0.01
	}
	reqBody := generateRequest{
		Inputs: prompt,
		Parameters: parameters{
			MaxNewTokens:   c.config.MaxTokens,
			Temperature:    temp,
			ReturnFullText: false,
			DoSample:       c.modelType != "base",
		},
	}

	url := fmt.Sprintf("%s/models/%s", strings.TrimRight(c.config.BaseURL, "/"), c.config.Model)
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.config.APIKey)

	var raw any
	if err := llm.PostJSON(ctx, c.config, providerName, url, header, reqBody, &raw); err != nil {
		return nil, err
	}

	text, err := extractGeneratedText(raw)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)

	in, out := c.count(prompt), c.count(text)
	return &llm.Response{
		Content: text,
		Model:   c.config.Model,
		Usage:   llm.Usage{InputTokens: in, OutputTokens: out, TotalTokens: in + out},
	}, nil
}

// FormatPrompt flattens messages into a single input string. Chat and
// instruct checkpoints get the <|user|>/<|assistant|> template.
func (c *Client) FormatPrompt(messages []llm.Message) string {
	var parts []string
	for _, m := range messages {
		if m.Content != "" {
			parts = append(parts, m.Content)
		}
	}
	query := strings.Join(parts, "\n\n")

	name := strings.ToLower(c.config.Model)
	if c.modelType == "instruct" && (strings.Contains(name, "chat") || strings.Contains(name, "instruct")) {
		return "<|user|>\n" + query + "\n<|assistant|>\n"
	}
	return query
}

func extractGeneratedText(raw any) (string, error) {
	for _, path := range generatedTextPaths {
		v, err := jsonpath.Get(path, raw)
		if err != nil {
			continue
		}
		if s, ok := v.(string); ok {
			return s, nil
		}
	}
	return "", fmt.Errorf("no generated_text in response")
}

func basicCount(text string) int {
	return int(math.Floor(float64(len(strings.Fields(text))) * 1.3))
}
