package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/user/llmbench/internal/compare"
)

const previewLen = 100

// headerRow is the row index lipgloss/table passes to StyleFunc for the
// header.
const headerRow = 0

// Options controls console rendering.
type Options struct {
	Theme   string
	Verbose bool
}

// Console prints one result: model identity, the response, the model's
// characteristics and token usage.
func Console(w io.Writer, r *compare.Result, opts Options) error {
	th := ThemeFor(opts.Theme)
	var b strings.Builder

	b.WriteString(th.Title.Render("═══ Model Response ═══") + "\n")
	field(&b, th, "Model", r.ModelName)
	field(&b, th, "Provider", r.Provider.DisplayName())
	field(&b, th, "Type", string(r.ModelType))
	if r.FallbackFrom != "" {
		b.WriteString(th.Warning.Render("Fallback from "+r.FallbackFrom) + "\n")
	}
	if r.Cached {
		b.WriteString(th.Subtitle.Render("(cached response)") + "\n")
	}
	b.WriteString("\n")

	if r.Failed() {
		b.WriteString(th.Error.Render(r.Response) + "\n\n")
	} else {
		b.WriteString(th.Card.Render(r.Response) + "\n\n")
	}

	c := r.Characteristics
	b.WriteString(th.Title.Render("Model Characteristics") + "\n")
	field(&b, th, "Context Window", fmt.Sprintf("%d tokens", r.ContextWindow))
	field(&b, th, "Training Cutoff", c.TrainingCutoff)
	field(&b, th, "Instruction Following", c.InstructionFollowing)
	field(&b, th, "Cost per 1K tokens", c.CostPer1KTokens)
	if opts.Verbose {
		field(&b, th, "Strengths", strings.Join(c.Strengths, ", "))
		field(&b, th, "Use Cases", strings.Join(c.UseCases, ", "))
		field(&b, th, "Fine-tuning", c.FineTuningStrategy)
	}
	b.WriteString("\n")

	u := r.TokenUsage
	b.WriteString(th.Title.Render("Token Usage") + "\n")
	field(&b, th, "Input", fmt.Sprint(u.InputTokens))
	field(&b, th, "Output", fmt.Sprint(u.OutputTokens))
	field(&b, th, "Total", fmt.Sprint(u.TotalTokens))
	field(&b, th, "Response Time", fmt.Sprintf("%.2fs", r.ResponseTime))

	_, err := io.WriteString(w, b.String())
	return err
}

func field(b *strings.Builder, th Theme, label, value string) {
	if value == "" {
		return
	}
	b.WriteString(th.Label.Render(label+":") + " " + value + "\n")
}

// Preview shortens a response to one line of at most 100 characters.
func Preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= previewLen {
		return s
	}
	return string(runes[:previewLen]) + "..."
}

// ConsoleComparison prints a summary table followed by every response.
func ConsoleComparison(w io.Writer, cmp *compare.Comparison, opts Options) error {
	th := ThemeFor(opts.Theme)
	var b strings.Builder

	for _, warn := range cmp.Warnings {
		b.WriteString(th.Warning.Render("Warning: "+warn) + "\n")
	}
	if len(cmp.Results) == 0 {
		b.WriteString(th.Error.Render("No results to display") + "\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString(th.Title.Render("Model Comparison Results") + "\n")
	if cmp.Query != "" {
		b.WriteString(th.Subtitle.Render("Query: "+cmp.Query) + "\n")
	}

	rows := make([][]string, 0, len(cmp.Results))
	for _, r := range cmp.Results {
		tokens := fmt.Sprint(r.TokenUsage.TotalTokens)
		if r.Failed() {
			tokens = "error"
		}
		rows = append(rows, []string{
			r.Provider.DisplayName(),
			string(r.ModelType),
			r.ModelName,
			Preview(r.Response),
			tokens,
			fmt.Sprintf("%.2fs", r.ResponseTime),
		})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(th.Border)).
		Headers("Provider", "Model Type", "Model Name", "Response Preview", "Tokens", "Time").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return th.Header
			}
			return th.Cell
		})
	b.WriteString(t.Render() + "\n\n")

	for i, r := range cmp.Results {
		b.WriteString(th.Title.Render(fmt.Sprintf("═══ Response %d: %s - %s ═══", i+1, r.Provider.DisplayName(), r.ModelType)) + "\n")
		field(&b, th, "Model", r.ModelName)
		if r.Failed() {
			b.WriteString(th.Error.Render(r.Response) + "\n\n")
			continue
		}
		b.WriteString(r.Response + "\n\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
