package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/llmbench/internal/catalog"
	"github.com/user/llmbench/internal/compare"
)

func sampleResults() []*compare.Result {
	return []*compare.Result{
		{
			ID: "a", Query: "What is Go?", Provider: catalog.OpenAI, ModelName: "gpt-3.5-turbo",
			ModelType: catalog.Instruct, Response: "Go is a language.",
			TokenUsage:      compare.TokenUsage{InputTokens: 4, OutputTokens: 5, TotalTokens: 9},
			Characteristics: catalog.CharacteristicsFor(catalog.OpenAI, "gpt-3.5-turbo"),
			ResponseTime:    1.5, ContextWindow: 4096,
		},
		{
			ID: "b", Query: "What is Go?", Provider: catalog.Anthropic, ModelName: "claude-3-sonnet-20240229",
			ModelType: catalog.Instruct, Response: "Go is a statically typed language from Google.",
			TokenUsage:   compare.TokenUsage{InputTokens: 4, OutputTokens: 10, TotalTokens: 14},
			ResponseTime: 0.8, ContextWindow: 200000,
		},
		{
			ID: "c", Query: "What is Go?", Provider: catalog.OpenAI, ModelName: "gpt-3.5-turbo-instruct",
			ModelType: catalog.Base, Response: "Error: boom", Error: "boom",
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("Markdown")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short text", Preview("short\n  text"))
	long := strings.Repeat("x", 150)
	assert.Equal(t, strings.Repeat("x", 100)+"...", Preview(long))
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	r := sampleResults()[0]
	r.FallbackFrom = "anthropic/claude-2.1"
	require.NoError(t, Console(&buf, r, Options{Verbose: true}))

	out := buf.String()
	assert.Contains(t, out, "gpt-3.5-turbo")
	assert.Contains(t, out, "OpenAI")
	assert.Contains(t, out, "Go is a language.")
	assert.Contains(t, out, "Fallback from anthropic/claude-2.1")
	assert.Contains(t, out, "Cost-effective")
	assert.Contains(t, out, "1.50s")
}

func TestConsoleComparison(t *testing.T) {
	var buf bytes.Buffer
	cmp := &compare.Comparison{Query: "What is Go?", Results: sampleResults(), Warnings: []string{"Provider gemini unavailable: no key"}}
	require.NoError(t, ConsoleComparison(&buf, cmp, Options{Theme: "light"}))

	out := buf.String()
	assert.Contains(t, out, "Warning: Provider gemini unavailable")
	assert.Contains(t, out, "Response Preview")
	assert.Contains(t, out, "═══ Response 2: Anthropic - instruct ═══")
	assert.Contains(t, out, "error")
}

func TestConsoleComparison_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ConsoleComparison(&buf, &compare.Comparison{}, Options{}))
	assert.Contains(t, buf.String(), "No results to display")
}

func TestMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Markdown(&buf, sampleResults()[0]))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "# Model Response\n"))
	assert.Contains(t, out, "**Model**: gpt-3.5-turbo\n**Provider**: openai\n**Type**: instruct")
	assert.Contains(t, out, "## Response\n\nGo is a language.")
}

func TestMarkdownComparison(t *testing.T) {
	var buf bytes.Buffer
	cmp := &compare.Comparison{Query: "What is Go?", Results: sampleResults()[:2]}
	require.NoError(t, MarkdownComparison(&buf, cmp))
	out := buf.String()
	assert.Contains(t, out, "# Model Comparison Results")
	assert.Contains(t, out, "## Response 2: anthropic - instruct")
	assert.Contains(t, out, "**Model:** claude-3-sonnet-20240229")
}

func TestWrite_JSONSingleIsObject(t *testing.T) {
	var buf bytes.Buffer
	cmp := &compare.Comparison{Results: sampleResults()[:1]}
	require.NoError(t, Write(&buf, FormatJSON, Options{}, cmp))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "gpt-3.5-turbo", got["model_name"])
	assert.Contains(t, buf.String(), "\n  \"id\"")
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	results := sampleResults()

	for _, name := range []string{"out.json", "out.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(path, results...))
		loaded, err := LoadResults(path)
		require.NoError(t, err, name)
		require.Len(t, loaded, 3, name)
		assert.Equal(t, "claude-3-sonnet-20240229", loaded[1].ModelName, name)
		assert.Equal(t, 14, loaded[1].TokenUsage.TotalTokens, name)
		assert.Equal(t, "boom", loaded[2].Error, name)
	}

	single := filepath.Join(dir, "one.json")
	require.NoError(t, Save(single, results[0]))
	loaded, err := LoadResults(single)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "a", loaded[0].ID)
}

func TestSave_MarkdownAndText(t *testing.T) {
	dir := t.TempDir()
	results := sampleResults()

	md := filepath.Join(dir, "cmp.md")
	require.NoError(t, Save(md, results...))
	data, err := os.ReadFile(md)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Model Comparison Results")

	txt := filepath.Join(dir, "single.txt")
	require.NoError(t, Save(txt, results[0]))
	data, err = os.ReadFile(txt)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Model: gpt-3.5-turbo\nProvider: openai")

	assert.Error(t, Save(filepath.Join(dir, "x.json")))
}

func TestComparisonReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ComparisonReport(&buf, "", sampleResults()))
	out := buf.String()

	assert.Contains(t, out, "# Model Comparison Report")
	assert.Contains(t, out, "**Query:** What is Go?")
	assert.Contains(t, out, "3 results from 2 providers.")
	assert.Contains(t, out, "| OpenAI | instruct | gpt-3.5-turbo | 9 | 1.50 | 4096 | $0.001-0.002 |")
	assert.Contains(t, out, "- **instruct**: fastest `claude-3-sonnet-20240229` (0.80s), fewest tokens `gpt-3.5-turbo` (9)")
	assert.NotContains(t, out, "- **base**")
	assert.Contains(t, out, "| error |")
}

func TestModels(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Models(&buf, []catalog.Provider{catalog.Anthropic}, Options{Verbose: true}))
	out := buf.String()
	assert.Contains(t, out, "Available Models")
	assert.Contains(t, out, "Anthropic")
	assert.Contains(t, out, "200000")
	assert.Contains(t, out, "Model Types")
	assert.Contains(t, out, "Context Window")
	assert.Contains(t, out, "Instruction Following")
	assert.NotContains(t, out, "OpenAI")
}
