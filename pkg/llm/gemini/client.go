package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/user/llmbench/pkg/llm"
)

const providerName = "gemini"

// Client implements llm.Provider for the Gemini generateContent API.
type Client struct {
	config *llm.Config
}

// New creates a Gemini client. BaseURL is the API root, e.g.
// https://generativelanguage.googleapis.com.
func New(config *llm.Config) *Client {
	return &Client{config: config}
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
	Tools             []toolSet         `json:"tools,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text             string            `json:"text,omitempty"`
	InlineData       *inlineData       `json:"inlineData,omitempty"`
	FunctionCall     *functionCall     `json:"functionCall,omitempty"`
	FunctionResponse *functionResponse `json:"functionResponse,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type functionCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

type functionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

type generationConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type toolSet struct {
	FunctionDeclarations []functionDeclaration `json:"functionDeclarations"`
}

type functionDeclaration struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
}

// Complete sends a generateContent request and returns the full response.
func (c *Client) Complete(ctx context.Context, messages []llm.Message, tools []llm.Tool) (*llm.Response, error) {
	reqBody := toRequest(messages)

	reqBody.GenerationConfig = &generationConfig{
		MaxOutputTokens: c.config.MaxTokens,
		Temperature:     c.config.Temperature,
	}

	if len(tools) > 0 {
		decls := make([]functionDeclaration, len(tools))
		for i, t := range tools {
			decls[i] = functionDeclaration{
				Name:        t.Function.Name,
				Description: t.Function.Description,
				Parameters:  t.Function.Parameters,
			}
		}
		reqBody.Tools = []toolSet{{FunctionDeclarations: decls}}
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", strings.TrimRight(c.config.BaseURL, "/"), c.config.Model)
	header := http.Header{}
	header.Set("x-goog-api-key", c.config.APIKey)

	var resp generateResponse
	if err := llm.PostJSON(ctx, c.config, providerName, url, header, reqBody, &resp); err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	cand := resp.Candidates[0]
	out := &llm.Response{
		Model:        resp.ModelVersion,
		FinishReason: cand.FinishReason,
		Usage: llm.Usage{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:  resp.UsageMetadata.PromptTokenCount + resp.UsageMetadata.CandidatesTokenCount,
		},
	}
	var text strings.Builder
	for i, p := range cand.Content.Parts {
		if p.Text != "" {
			text.WriteString(p.Text)
		}
		if p.FunctionCall != nil {
			args := p.FunctionCall.Args
			if len(args) == 0 {
				args = json.RawMessage(`{}`)
			}
			out.ToolCalls = append(out.ToolCalls, llm.ToolCall{
				// Gemini has no call IDs; the function name is what a
				// functionResponse must echo back.
				ID:       fmt.Sprintf("%s-%d", p.FunctionCall.Name, i),
				Type:     "function",
				Function: llm.FunctionCall{Name: p.FunctionCall.Name, Arguments: args},
			})
		}
	}
	out.Content = text.String()
	return out, nil
}

func toRequest(messages []llm.Message) generateRequest {
	var req generateRequest
	var system []part
	idToName := map[string]string{}

	appendParts := func(role string, parts []part) {
		if n := len(req.Contents); n > 0 && req.Contents[n-1].Role == role {
			req.Contents[n-1].Parts = append(req.Contents[n-1].Parts, parts...)
			return
		}
		req.Contents = append(req.Contents, content{Role: role, Parts: parts})
	}

	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleSystem:
			system = append(system, part{Text: msg.Content})

		case llm.RoleAssistant:
			var parts []part
			if msg.Content != "" {
				parts = append(parts, part{Text: msg.Content})
			}
			for _, tc := range msg.Tools {
				idToName[tc.ID] = tc.Function.Name
				parts = append(parts, part{FunctionCall: &functionCall{Name: tc.Function.Name, Args: tc.Function.Arguments}})
			}
			if len(parts) > 0 {
				appendParts("model", parts)
			}

		case llm.RoleTool:
			name := ""
			if len(msg.Tools) > 0 {
				name = idToName[msg.Tools[0].ID]
				if name == "" {
					name = msg.Tools[0].Function.Name
				}
			}
			appendParts(llm.RoleUser, []part{{FunctionResponse: &functionResponse{
				Name:     name,
				Response: map[string]any{"result": msg.Content},
			}}})

		default:
			parts := []part{{Text: msg.Content}}
			for _, img := range msg.Images {
				parts = append(parts, part{InlineData: &inlineData{MimeType: img.MIMEType, Data: img.Base64()}})
			}
			appendParts(llm.RoleUser, parts)
		}
	}

	if len(system) > 0 {
		req.SystemInstruction = &content{Parts: system}
	}
	return req
}
