package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/user/llmbench/pkg/llm"
)

const (
	providerName = "anthropic"
	apiVersion   = "2023-06-01"
	// defaultMaxTokens is used when the config leaves MaxTokens unset; the
	// messages API requires the field.
	defaultMaxTokens = 1024
)

// Client implements llm.Provider for the Anthropic messages API.
type Client struct {
	config *llm.Config
}

// New creates an Anthropic client. BaseURL is the API root without /v1.
func New(config *llm.Config) *Client {
	return &Client{config: config}
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	Tools       []tool    `json:"tools,omitempty"`
	Temperature float32   `json:"temperature"`
}

type message struct {
	Role    string  `json:"role"`
	Content []block `json:"content"`
}

// block covers the text, image, tool_use and tool_result content blocks.
type block struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	Source    *imageSource    `json:"source,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema"`
}

type messagesResponse struct {
	Model      string  `json:"model"`
	Content    []block `json:"content"`
	StopReason string  `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Complete sends a messages request and returns the full response.
func (c *Client) Complete(ctx context.Context, messages []llm.Message, tools []llm.Tool) (*llm.Response, error) {
	maxTokens := c.config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	system, msgs := toMessages(messages)
	reqBody := messagesRequest{
		Model:     c.config.Model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  msgs,
	}
	for _, t := range tools {
		schema := t.Function.Parameters
		if len(schema) == 0 {
			schema = json.RawMessage(`{"type":"object","properties":{}}`)
		}
		reqBody.Tools = append(reqBody.Tools, tool{
			Name:        t.Function.Name,
			Description: t.Function.Description,
			InputSchema: schema,
		})
	}
	reqBody.Temperature = c.config.Temperature

	header := http.Header{}
	header.Set("x-api-key", c.config.APIKey)
	header.Set("anthropic-version", apiVersion)

	var resp messagesResponse
	if err := llm.PostJSON(ctx, c.config, providerName, strings.TrimRight(c.config.BaseURL, "/")+"/v1/messages", header, reqBody, &resp); err != nil {
		return nil, err
	}

	out := &llm.Response{
		Model:        resp.Model,
		FinishReason: resp.StopReason,
		Usage: llm.Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
			TotalTokens:  resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}
	var text strings.Builder
	for _, b := range resp.Content {
		switch b.Type {
		case "text":
			text.WriteString(b.Text)
		case "tool_use":
			args := b.Input
			if len(args) == 0 {
				args = json.RawMessage(`{}`)
			}
			out.ToolCalls = append(out.ToolCalls, llm.ToolCall{
				ID:       b.ID,
				Type:     "function",
				Function: llm.FunctionCall{Name: b.Name, Arguments: args},
			})
		}
	}
	out.Content = text.String()
	return out, nil
}

// toMessages lifts system messages into the system field and merges
// consecutive same-role turns, which the API requires to alternate.
func toMessages(messages []llm.Message) (string, []message) {
	var system []string
	var out []message

	appendBlocks := func(role string, blocks []block) {
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content = append(out[n-1].Content, blocks...)
			return
		}
		out = append(out, message{Role: role, Content: blocks})
	}

	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleSystem:
			system = append(system, msg.Content)

		case llm.RoleTool:
			id := ""
			if len(msg.Tools) > 0 {
				id = msg.Tools[0].ID
			}
			appendBlocks(llm.RoleUser, []block{{Type: "tool_result", ToolUseID: id, Content: msg.Content}})

		case llm.RoleAssistant:
			var blocks []block
			if msg.Content != "" {
				blocks = append(blocks, block{Type: "text", Text: msg.Content})
			}
			for _, tc := range msg.Tools {
				args := tc.Function.Arguments
				if len(args) == 0 {
					args = json.RawMessage(`{}`)
				}
				blocks = append(blocks, block{Type: "tool_use", ID: tc.ID, Name: tc.Function.Name, Input: args})
			}
			appendBlocks(llm.RoleAssistant, blocks)

		default:
			var blocks []block
			for _, img := range msg.Images {
				blocks = append(blocks, block{
					Type:   "image",
					Source: &imageSource{Type: "base64", MediaType: img.MIMEType, Data: img.Base64()},
				})
			}
			blocks = append(blocks, block{Type: "text", Text: msg.Content})
			appendBlocks(llm.RoleUser, blocks)
		}
	}
	return strings.Join(system, "\n\n"), out
}
