package visualize

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/llmbench/internal/catalog"
	"github.com/user/llmbench/internal/compare"
	"github.com/user/llmbench/internal/report"
)

func TestChartRenderScalesToMax(t *testing.T) {
	c := Chart{Title: "T", Unit: "u", Bars: []Bar{{"a", 10}, {"bb", 5}, {"c", 0}}}
	out := c.Render(report.ThemeFor("dark"))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)

	assert.Equal(t, barWidth, strings.Count(lines[1], "█"))
	assert.Equal(t, barWidth/2, strings.Count(lines[2], "█"))
	assert.Equal(t, 0, strings.Count(lines[3], "█"))
	assert.Contains(t, lines[1], "10 u")
	assert.Contains(t, lines[2], "bb │")
}

func TestChartRenderEmpty(t *testing.T) {
	out := Chart{Title: "Empty"}.Render(report.ThemeFor("light"))
	assert.Contains(t, out, "no data")
}

func TestSingle(t *testing.T) {
	var buf bytes.Buffer
	r := &compare.Result{
		ModelName:    "gpt-4",
		TokenUsage:   compare.TokenUsage{InputTokens: 25, OutputTokens: 75, TotalTokens: 100},
		ResponseTime: 2,
	}
	require.NoError(t, Single(&buf, r, "dark"))
	out := buf.String()
	assert.Contains(t, out, "Input: 25 (25.0%)  Output: 75 (75.0%)")
	assert.Contains(t, out, "Tokens/second: 50.0")
	assert.Equal(t, barWidth, strings.Count(out, "█"))
}

func TestComparisonSkipsFailures(t *testing.T) {
	var buf bytes.Buffer
	results := []*compare.Result{
		{Provider: catalog.OpenAI, ModelName: "gpt-4", ModelType: catalog.Instruct, Response: "hello",
			TokenUsage: compare.TokenUsage{TotalTokens: 10}, ResponseTime: 1, ContextWindow: 8192},
		{Provider: catalog.Anthropic, ModelName: "claude-2.1", ModelType: catalog.Instruct, Response: "Error: x", Error: "x"},
	}
	require.NoError(t, Comparison(&buf, results, "dark"))
	out := buf.String()
	for _, title := range []string{"Total Tokens", "Response Time", "Context Window", "Model Type Distribution", "Efficiency", "Response Length"} {
		assert.Contains(t, out, title)
	}
	assert.Contains(t, out, "openai/gpt-4")
	assert.NotContains(t, out, "claude-2.1")
}

func TestComparisonAllFailed(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Comparison(&buf, []*compare.Result{{Error: "x"}}, "dark"))
	assert.Contains(t, buf.String(), "No successful results")
}
