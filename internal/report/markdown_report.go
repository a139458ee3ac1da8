package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/user/llmbench/internal/catalog"
	"github.com/user/llmbench/internal/compare"
)

// ComparisonReport renders a standalone markdown report over saved
// results: a summary table, per-type highlights and every response.
func ComparisonReport(w io.Writer, title string, results []*compare.Result) error {
	if title == "" {
		title = "Model Comparison Report"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)

	queries := distinctQueries(results)
	if len(queries) == 1 {
		fmt.Fprintf(&b, "**Query:** %s\n\n", queries[0])
	}
	fmt.Fprintf(&b, "%d results from %d providers.\n\n", len(results), countProviders(results))

	b.WriteString("## Summary\n\n")
	b.WriteString("| Provider | Type | Model | Tokens | Time (s) | Context Window | Cost / 1K |\n")
	b.WriteString("|---|---|---|---:|---:|---:|---|\n")
	for _, r := range results {
		tokens := fmt.Sprint(r.TokenUsage.TotalTokens)
		if r.Failed() {
			tokens = "error"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %.2f | %d | %s |\n",
			r.Provider.DisplayName(), r.ModelType, r.ModelName, tokens, r.ResponseTime,
			r.ContextWindow, r.Characteristics.CostPer1KTokens)
	}
	b.WriteString("\n")

	b.WriteString("## Highlights\n\n")
	wrote := false
	for _, mt := range catalog.ModelTypes {
		fastest, concise := pick(results, mt)
		if fastest == nil {
			continue
		}
		wrote = true
		fmt.Fprintf(&b, "- **%s**: fastest `%s` (%.2fs), fewest tokens `%s` (%d)\n",
			mt, fastest.ModelName, fastest.ResponseTime, concise.ModelName, concise.TokenUsage.TotalTokens)
	}
	if !wrote {
		b.WriteString("No successful results.\n")
	}
	b.WriteString("\n")

	b.WriteString("## Responses\n\n")
	for _, r := range results {
		fmt.Fprintf(&b, "### %s - %s (`%s`)\n\n", r.Provider.DisplayName(), r.ModelType, r.ModelName)
		if len(queries) > 1 {
			fmt.Fprintf(&b, "**Query:** %s\n\n", r.Query)
		}
		b.WriteString(r.Response + "\n\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// pick returns the fastest and the most token-efficient successful result
// of a model type.
func pick(results []*compare.Result, mt catalog.ModelType) (fastest, concise *compare.Result) {
	for _, r := range results {
		if r.ModelType != mt || r.Failed() {
			continue
		}
		if fastest == nil || r.ResponseTime < fastest.ResponseTime {
			fastest = r
		}
		if concise == nil || r.TokenUsage.TotalTokens < concise.TokenUsage.TotalTokens {
			concise = r
		}
	}
	return fastest, concise
}

func distinctQueries(results []*compare.Result) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range results {
		if r.Query != "" && !seen[r.Query] {
			seen[r.Query] = true
			out = append(out, r.Query)
		}
	}
	return out
}

func countProviders(results []*compare.Result) int {
	seen := map[catalog.Provider]bool{}
	for _, r := range results {
		seen[r.Provider] = true
	}
	return len(seen)
}
