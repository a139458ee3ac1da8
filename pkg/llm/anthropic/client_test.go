package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/llmbench/pkg/llm"
)

func TestAnthropicClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "claude-3-haiku-20240307", req["model"])
		assert.Equal(t, "be brief", req["system"])
		assert.EqualValues(t, 1024, req["max_tokens"])
		assert.Len(t, req["messages"], 1)

		json.NewEncoder(w).Encode(map[string]any{
			"model":       "claude-3-haiku-20240307",
			"content":     []map[string]any{{"type": "text", "text": "Hello!"}},
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 12, "output_tokens": 3},
		})
	}))
	defer server.Close()

	client := New(&llm.Config{BaseURL: server.URL, APIKey: "test-key", Model: "claude-3-haiku-20240307"})
	resp, err := client.Complete(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "be brief"},
		{Role: llm.RoleUser, Content: "hi"},
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "Hello!", resp.Content)
	assert.Equal(t, llm.Usage{InputTokens: 12, OutputTokens: 3, TotalTokens: 15}, resp.Usage)
	assert.Equal(t, "end_turn", resp.FinishReason)
}

func TestAnthropicClientToolUse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Tools []struct {
				Name        string         `json:"name"`
				InputSchema map[string]any `json:"input_schema"`
			} `json:"tools"`
		}
		require.NoError(t, json.Unmarshal(body, &req))
		require.Len(t, req.Tools, 1)
		assert.Equal(t, "add", req.Tools[0].Name)
		assert.Equal(t, "object", req.Tools[0].InputSchema["type"])

		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "tool_use", "id": "toolu_1", "name": "add", "input": map[string]any{"a": 2, "b": 3}},
			},
			"stop_reason": "tool_use",
			"usage":       map[string]any{"input_tokens": 5, "output_tokens": 5},
		})
	}))
	defer server.Close()

	client := New(&llm.Config{BaseURL: server.URL, APIKey: "k", Model: "claude-3-5-sonnet-20240620"})
	resp, err := client.Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "2+3?"}}, []llm.Tool{{
		Type: "function",
		Function: llm.Function{
			Name:       "add",
			Parameters: json.RawMessage(`{"type":"object","properties":{"a":{"type":"number"},"b":{"type":"number"}}}`),
		},
	}})

	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "toolu_1", resp.ToolCalls[0].ID)
	assert.JSONEq(t, `{"a":2,"b":3}`, string(resp.ToolCalls[0].Function.Arguments))
}

func TestToMessagesMergesToolResults(t *testing.T) {
	system, msgs := toMessages([]llm.Message{
		{Role: llm.RoleSystem, Content: "sys"},
		{Role: llm.RoleUser, Content: "q", Images: []llm.Image{{MIMEType: "image/jpeg", Data: []byte{0xff}}}},
		{Role: llm.RoleAssistant, Tools: []llm.ToolCall{
			{ID: "a", Function: llm.FunctionCall{Name: "add"}},
			{ID: "b", Function: llm.FunctionCall{Name: "multiply"}},
		}},
		{Role: llm.RoleTool, Content: "5", Tools: []llm.ToolCall{{ID: "a"}}},
		{Role: llm.RoleTool, Content: "6", Tools: []llm.ToolCall{{ID: "b"}}},
	})

	assert.Equal(t, "sys", system)
	require.Len(t, msgs, 3)
	assert.Equal(t, "image", msgs[0].Content[0].Type)
	assert.Equal(t, "image/jpeg", msgs[0].Content[0].Source.MediaType)
	assert.Equal(t, "tool_use", msgs[1].Content[0].Type)
	assert.JSONEq(t, `{}`, string(msgs[1].Content[0].Input))
	assert.Equal(t, "user", msgs[2].Role)
	require.Len(t, msgs[2].Content, 2)
	assert.Equal(t, "b", msgs[2].Content[1].ToolUseID)
}

func TestAnthropicClientAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"type":"error","error":{"message":"bad model"}}`))
	}))
	defer server.Close()

	client := New(&llm.Config{BaseURL: server.URL, APIKey: "k", Model: "nope"})
	_, err := client.Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "x"}}, nil)

	var apiErr *llm.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "anthropic", apiErr.Provider)
}

func TestAnthropicClientProviderInterface(t *testing.T) {
	var _ llm.Provider = (*Client)(nil)
}

func TestAnthropicClientSendsZeroTemperature(t *testing.T) {
	var req map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &req))
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{{"type": "text", "text": "ok"}},
		})
	}))
	defer server.Close()

	client := New(&llm.Config{BaseURL: server.URL, APIKey: "k", Model: "claude-3-haiku-20240307", Temperature: 0})
	_, err := client.Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}}, nil)

	require.NoError(t, err)
	require.Contains(t, req, "temperature")
	assert.EqualValues(t, 0, req["temperature"])
}
