package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/llmbench/internal/config"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestValidateArgs(t *testing.T) {
	valid := queryOptions{query: "hi", provider: "openai", modelType: "instruct", output: "console"}

	tests := []struct {
		name    string
		mutate  func(q *queryOptions)
		wantErr string
	}{
		{"valid", func(q *queryOptions) {}, ""},
		{"interactive needs no query", func(q *queryOptions) { q.query = ""; q.interactive = true }, ""},
		{"missing query", func(q *queryOptions) { q.query = "" }, "query is required"},
		{"compare with model", func(q *queryOptions) { q.compareAll = true; q.model = "gpt-4" }, "cannot specify --model"},
		{"bad provider", func(q *queryOptions) { q.provider = "cohere" }, "unsupported provider"},
		{"bad model type", func(q *queryOptions) { q.modelType = "chat" }, "invalid model type"},
		{"fine_tuned spelling", func(q *queryOptions) { q.modelType = "fine_tuned" }, ""},
		{"bad output", func(q *queryOptions) { q.output = "html" }, "invalid output format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := valid
			tt.mutate(&q)
			err := validateArgs(&q)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateGlobal(t *testing.T) {
	assert.NoError(t, validateGlobal(&globalOptions{}))
	assert.NoError(t, validateGlobal(&globalOptions{logLevel: "warning"}))
	assert.ErrorContains(t, validateGlobal(&globalOptions{logLevel: "TRACE"}), "invalid log level")
	assert.ErrorContains(t, validateGlobal(&globalOptions{setTemperature: true, temperature: 2.5}), "temperature")
	assert.NoError(t, validateGlobal(&globalOptions{setTemperature: true, temperature: 0}))
	assert.ErrorContains(t, validateGlobal(&globalOptions{setMaxTokens: true}), "max tokens")
	assert.ErrorContains(t, validateGlobal(&globalOptions{setTimeout: true, timeout: -1}), "timeout")
	// Unset numeric flags are not checked.
	assert.NoError(t, validateGlobal(&globalOptions{maxTokens: 0, timeout: 0}))
}

func TestPrompt(t *testing.T) {
	var out bytes.Buffer
	sc := bufio.NewScanner(strings.NewReader("\ncustom\n"))

	assert.Equal(t, "def", prompt(sc, &out, "Label", "def"))
	assert.Equal(t, "custom", prompt(sc, &out, "Other", ""))
	assert.Equal(t, "Label [def]: Other: ", out.String())
	// EOF keeps the default.
	assert.Equal(t, "def", prompt(sc, &out, "Again", "def"))
}

func TestPromptSecretKeepsCurrentOnEnter(t *testing.T) {
	var out bytes.Buffer
	sc := bufio.NewScanner(strings.NewReader("\nnew-key\n"))

	assert.Equal(t, "sk-abcdef1234", promptSecret(sc, &out, "Key", "sk-abcdef1234"))
	assert.Contains(t, out.String(), "[***1234]")
	assert.NotContains(t, out.String(), "sk-abcdef")
	assert.Equal(t, "new-key", promptSecret(sc, &out, "Key", "sk-abcdef1234"))
}

func TestRunSetup(t *testing.T) {
	cfg := &config.Config{}
	cfg.Request.MaxTokens = 1000
	cfg.Request.Temperature = 0.7

	input := strings.Join([]string{
		"sk-openai", // openai
		"",          // anthropic
		"",          // huggingface
		"g-key",     // gemini
		"500",       // max tokens
		"3",         // temperature out of range, ignored
		"",          // telegram
	}, "\n") + "\n"

	var out bytes.Buffer
	runSetup(bufio.NewScanner(strings.NewReader(input)), &out, cfg)

	assert.Equal(t, "sk-openai", cfg.OpenAI.APIKey)
	assert.Empty(t, cfg.Anthropic.APIKey)
	assert.Equal(t, "g-key", cfg.Gemini.APIKey)
	assert.Equal(t, 500, cfg.Request.MaxTokens)
	assert.Equal(t, 0.7, cfg.Request.Temperature)
	assert.Contains(t, out.String(), "GOOGLE_API_KEY")
}

func TestOneLine(t *testing.T) {
	assert.Equal(t, "a b c", oneLine("a\n b\tc", 10))
	assert.Equal(t, "abc...", oneLine("abcdef", 3))
}

func TestModelsCommand(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "settings.yaml")
	out, err := execute(t, "models", "--provider", "gemini", "--config", cfgFile)
	require.NoError(t, err)
	assert.Contains(t, out, "gemini-1.5-flash")
	assert.NotContains(t, out, "claude")
}

func TestToolsCallCommand(t *testing.T) {
	out, err := execute(t, "tools", "call", "add", `{"a": 2, "b": 3}`)
	require.NoError(t, err)
	assert.Equal(t, "5\n", out)

	_, err = execute(t, "tools", "call", "divide", `{"a": 1, "b": 0}`)
	assert.ErrorContains(t, err, "cannot divide by zero")

	_, err = execute(t, "tools", "call", "add", `not json`)
	assert.ErrorContains(t, err, "JSON")
}

func TestToolsListCommand(t *testing.T) {
	out, err := execute(t, "tools", "list")
	require.NoError(t, err)
	for _, name := range []string{"add", "factorial", "is_palindrome", "html_to_markdown"} {
		assert.Contains(t, out, name)
	}
}

func TestConfigSetGet(t *testing.T) {
	t.Setenv("DEFAULT_MAX_TOKENS", "")
	cfgFile := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("request:\n  max_tokens: 1000\n"), 0644))

	out, err := execute(t, "config", "set", "request.max_tokens", "500", "--config", cfgFile)
	require.NoError(t, err)
	assert.Equal(t, "Set request.max_tokens = 500\n", out)

	out, err = execute(t, "config", "get", "request.max_tokens", "--config", cfgFile)
	require.NoError(t, err)
	assert.Equal(t, "500\n", out)

	out, err = execute(t, "config", "set", "openai.api_key", "sk-secret", "--config", cfgFile)
	require.NoError(t, err)
	assert.Equal(t, "Set openai.api_key = ***\n", out)
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "settings.yaml")

	out, err := execute(t, "config", "init", "--config", cfgFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration written to")
	assert.FileExists(t, cfgFile)

	_, err = execute(t, "config", "init", "--config", cfgFile)
	assert.ErrorContains(t, err, "already exists")
}

func TestReportCommand(t *testing.T) {
	dir := t.TempDir()
	results := filepath.Join(dir, "results.json")
	require.NoError(t, os.WriteFile(results, []byte(`[
  {"id": "1", "query": "What is AI?", "provider": "openai", "model_name": "gpt-3.5-turbo", "model_type": "instruct",
   "response": "AI is...", "token_usage": {"input_tokens": 4, "output_tokens": 10, "total_tokens": 14}, "response_time": 1.2},
  {"id": "2", "query": "What is AI?", "provider": "anthropic", "model_name": "claude-3-haiku-20240307", "model_type": "instruct",
   "response": "Artificial intelligence...", "token_usage": {"input_tokens": 4, "output_tokens": 20, "total_tokens": 24}, "response_time": 0.8}
]`), 0644))

	out, err := execute(t, "report", results, "--title", "Weekly")
	require.NoError(t, err)
	assert.Contains(t, out, "Weekly")
	assert.Contains(t, out, "claude-3-haiku-20240307")
}

func TestRootRequiresQuery(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "settings.yaml"))
	assert.ErrorContains(t, err, "query is required")
}

func TestScheduleListCommand(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`schedules:
  - name: nightly
    cron: "0 2 * * *"
    query: What is AI?
    providers: [openai]
    enabled: true
  - name: paused
    cron: "@hourly"
    query: Hello
    enabled: false
`), 0644))

	out, err := execute(t, "schedule", "list", "--config", cfgFile)
	require.NoError(t, err)
	assert.Contains(t, out, "nightly")
	assert.Contains(t, out, "0 2 * * *")
	assert.NotContains(t, out, "paused")
}

func TestRunServicesWaitsForAllToStop(t *testing.T) {
	var stopped atomic.Bool
	slow := func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond)
		stopped.Store(true)
		return nil
	}
	failing := func(context.Context) error { return errors.New("listen failed") }

	err := runServices(context.Background(), slow, failing)
	require.EqualError(t, err, "listen failed")
	assert.True(t, stopped.Load())
}

func TestRunServicesStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var running atomic.Int32
	svc := func(ctx context.Context) error {
		running.Add(1)
		<-ctx.Done()
		running.Add(-1)
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- runServices(ctx, svc, svc) }()
	require.Eventually(t, func() bool { return running.Load() == 2 }, time.Second, 5*time.Millisecond)
	cancel()

	require.NoError(t, <-done)
	assert.Zero(t, running.Load())
}
