package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/user/llmbench/pkg/llm"
)

const providerName = "openai"

// Client implements the llm.Provider interface for OpenAI-compatible APIs.
type Client struct {
	config *llm.Config
}

// New creates a new OpenAI-compatible client with the given configuration.
func New(config *llm.Config) *Client {
	return &Client{config: config}
}

// chatRequest is the OpenAI chat completions request body.
type chatRequest struct {
	Model       string           `json:"model"`
	Messages    []requestMessage `json:"messages"`
	Tools       []llm.Tool       `json:"tools,omitempty"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
	Temperature float32          `json:"temperature"`
}

// requestMessage is the OpenAI message format for requests. Content is
// either a string or a list of content parts when images are attached.
type requestMessage struct {
	Role       string         `json:"role"`
	Content    any            `json:"content"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

// wireToolCall carries arguments as a JSON-encoded string, as the API does.
type wireToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

// chatResponse is the OpenAI chat completions response body.
type chatResponse struct {
	Model   string        `json:"model"`
	Choices []choice      `json:"choices"`
	Usage   responseUsage `json:"usage"`
}

// choice represents a single completion choice.
type choice struct {
	Message      responseMessage `json:"message"`
	Text         string          `json:"text"`
	FinishReason string          `json:"finish_reason"`
}

// responseMessage is the OpenAI message format in responses.
type responseMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	ToolCalls []wireToolCall `json:"tool_calls,omitempty"`
}

// responseUsage is the OpenAI token usage format.
type responseUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// completionRequest is the legacy completions body used by base models.
type completionRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float32 `json:"temperature"`
}

// IsCompletionModel reports whether model is served by the legacy
// /completions endpoint rather than /chat/completions.
func IsCompletionModel(model string) bool {
	m := strings.ToLower(model)
	return strings.Contains(m, "davinci") || strings.Contains(m, "babbage") ||
		(strings.HasPrefix(m, "gpt-3.5") && strings.Contains(m, "instruct"))
}

// Complete sends a chat completion request and returns the full response.
func (c *Client) Complete(ctx context.Context, messages []llm.Message, tools []llm.Tool) (*llm.Response, error) {
	if IsCompletionModel(c.config.Model) {
		return c.completeLegacy(ctx, messages)
	}

	reqBody := chatRequest{
		Model:       c.config.Model,
		Messages:    toRequestMessages(messages),
		Temperature: c.config.Temperature,
	}

	if len(tools) > 0 {
		reqBody.Tools = tools
	}

	if c.config.MaxTokens > 0 {
		reqBody.MaxTokens = c.config.MaxTokens
	}

	var chatResp chatResponse
	if err := llm.PostJSON(ctx, c.config, providerName, c.config.BaseURL+"/chat/completions", c.header(), reqBody, &chatResp); err != nil {
		return nil, err
	}

	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	choice := chatResp.Choices[0]
	return &llm.Response{
		Content:      choice.Message.Content,
		ToolCalls:    fromWireToolCalls(choice.Message.ToolCalls),
		Usage:        toUsage(chatResp.Usage),
		Model:        chatResp.Model,
		FinishReason: choice.FinishReason,
	}, nil
}

func (c *Client) completeLegacy(ctx context.Context, messages []llm.Message) (*llm.Response, error) {
	var prompt strings.Builder
	for _, msg := range messages {
		if msg.Content == "" {
			continue
		}
		if prompt.Len() > 0 {
			prompt.WriteString("\n\n")
		}
		prompt.WriteString(msg.Content)
	}

	reqBody := completionRequest{
		Model:       c.config.Model,
		Prompt:      prompt.String(),
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}

	var resp chatResponse
	if err := llm.PostJSON(ctx, c.config, providerName, c.config.BaseURL+"/completions", c.header(), reqBody, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return &llm.Response{
		Content:      strings.TrimSpace(resp.Choices[0].Text),
		Usage:        toUsage(resp.Usage),
		Model:        resp.Model,
		FinishReason: resp.Choices[0].FinishReason,
	}, nil
}

func (c *Client) header() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+c.config.APIKey)
	return h
}

func toRequestMessages(messages []llm.Message) []requestMessage {
	out := make([]requestMessage, len(messages))
	for i, msg := range messages {
		rm := requestMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
		if len(msg.Images) > 0 {
			parts := []contentPart{{Type: "text", Text: msg.Content}}
			for _, img := range msg.Images {
				parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: img.DataURL()}})
			}
			rm.Content = parts
		}
		if msg.Role == llm.RoleTool && len(msg.Tools) > 0 {
			rm.ToolCallID = msg.Tools[0].ID
		} else if len(msg.Tools) > 0 {
			rm.ToolCalls = toWireToolCalls(msg.Tools)
		}
		out[i] = rm
	}
	return out
}

func toWireToolCalls(calls []llm.ToolCall) []wireToolCall {
	out := make([]wireToolCall, len(calls))
	for i, tc := range calls {
		w := wireToolCall{ID: tc.ID, Type: "function"}
		w.Function.Name = tc.Function.Name
		w.Function.Arguments = string(tc.Function.Arguments)
		out[i] = w
	}
	return out
}

func fromWireToolCalls(calls []wireToolCall) []llm.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]llm.ToolCall, len(calls))
	for i, w := range calls {
		args := w.Function.Arguments
		if args == "" {
			args = "{}"
		}
		out[i] = llm.ToolCall{
			ID:   w.ID,
			Type: w.Type,
			Function: llm.FunctionCall{
				Name:      w.Function.Name,
				Arguments: json.RawMessage(args),
			},
		}
	}
	return out
}

func toUsage(u responseUsage) llm.Usage {
	total := u.TotalTokens
	if total == 0 {
		total = u.PromptTokens + u.CompletionTokens
	}
	return llm.Usage{
		InputTokens:  u.PromptTokens,
		OutputTokens: u.CompletionTokens,
		TotalTokens:  total,
	}
}
