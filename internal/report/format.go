// Package report renders query results for the terminal, JSON, markdown
// and YAML, and writes them to files.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/user/llmbench/internal/compare"
)

// Format is an output format accepted by --output.
type Format string

const (
	FormatConsole  Format = "console"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatConsole, FormatJSON, FormatMarkdown:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("invalid output format: %s (expected console, json or markdown)", s)
}

// Write renders results in the given format. A single result is rendered
// on its own; several are rendered as a comparison.
func Write(w io.Writer, format Format, opts Options, cmp *compare.Comparison) error {
	switch format {
	case FormatJSON:
		if len(cmp.Results) == 1 && len(cmp.Warnings) == 0 {
			return JSON(w, cmp.Results[0])
		}
		return JSON(w, cmp)
	case FormatMarkdown:
		if len(cmp.Results) == 1 {
			return Markdown(w, cmp.Results[0])
		}
		return MarkdownComparison(w, cmp)
	default:
		if len(cmp.Results) == 1 && len(cmp.Warnings) == 0 {
			return Console(w, cmp.Results[0], opts)
		}
		return ConsoleComparison(w, cmp, opts)
	}
}

// JSON writes v indented by two spaces.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Markdown writes one result as a markdown document.
func Markdown(w io.Writer, r *compare.Result) error {
	var b strings.Builder
	b.WriteString("# Model Response\n\n")
	fmt.Fprintf(&b, "**Model**: %s\n", r.ModelName)
	fmt.Fprintf(&b, "**Provider**: %s\n", r.Provider)
	fmt.Fprintf(&b, "**Type**: %s\n", r.ModelType)
	if r.Query != "" {
		fmt.Fprintf(&b, "**Query**: %s\n", r.Query)
	}
	b.WriteString("\n## Response\n\n")
	b.WriteString(r.Response + "\n\n")
	b.WriteString("## Token Usage\n\n")
	fmt.Fprintf(&b, "- Input: %d\n- Output: %d\n- Total: %d\n", r.TokenUsage.InputTokens, r.TokenUsage.OutputTokens, r.TokenUsage.TotalTokens)
	fmt.Fprintf(&b, "- Response time: %.2fs\n", r.ResponseTime)
	_, err := io.WriteString(w, b.String())
	return err
}

// MarkdownComparison writes several results as one markdown document.
func MarkdownComparison(w io.Writer, cmp *compare.Comparison) error {
	var b strings.Builder
	b.WriteString("# Model Comparison Results\n\n")
	if cmp.Query != "" {
		fmt.Fprintf(&b, "**Query:** %s\n\n", cmp.Query)
	}
	for i, r := range cmp.Results {
		fmt.Fprintf(&b, "## Response %d: %s - %s\n\n", i+1, r.Provider, r.ModelType)
		fmt.Fprintf(&b, "**Model:** %s\n\n", r.ModelName)
		fmt.Fprintf(&b, "**Response:**\n\n%s\n\n", r.Response)
	}
	if len(cmp.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, warn := range cmp.Warnings {
			fmt.Fprintf(&b, "- %s\n", warn)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Text writes results as plain text.
func Text(w io.Writer, results []*compare.Result) error {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n" + strings.Repeat("-", 40) + "\n\n")
		}
		fmt.Fprintf(&b, "Model: %s\nProvider: %s\nType: %s\n\nResponse:\n%s\n", r.ModelName, r.Provider, r.ModelType, r.Response)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Save writes results to path, choosing the format from the extension:
// .json, .md/.markdown, .yaml/.yml, and plain text for anything else.
// A single result is saved as an object, several as a list.
func Save(path string, results ...*compare.Result) error {
	if len(results) == 0 {
		return errors.New("nothing to save")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	var payload any = results
	if len(results) == 1 {
		payload = results[0]
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = JSON(f, payload)
	case ".md", ".markdown":
		if len(results) == 1 {
			err = Markdown(f, results[0])
		} else {
			err = MarkdownComparison(f, &compare.Comparison{Query: results[0].Query, Results: results})
		}
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(f)
		enc.SetIndent(2)
		if err = enc.Encode(payload); err == nil {
			err = enc.Close()
		}
	default:
		err = Text(f, results)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// LoadResults reads results saved by Save as JSON or YAML. Both a single
// object and a list are accepted.
func LoadResults(path string) ([]*compare.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}

	unmarshal := json.Unmarshal
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".yaml" || ext == ".yml" {
		unmarshal = yaml.Unmarshal
	}

	var list []*compare.Result
	if err := unmarshal(data, &list); err == nil {
		return list, nil
	}
	var one compare.Result
	if err := unmarshal(data, &one); err != nil {
		return nil, fmt.Errorf("parse results %s: %w", path, err)
	}
	return []*compare.Result{&one}, nil
}
