// Package visualize draws horizontal bar charts of results in the terminal.
package visualize

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/llmbench/internal/catalog"
	"github.com/user/llmbench/internal/compare"
	"github.com/user/llmbench/internal/report"
)

const barWidth = 40

// Bar is one labelled value in a chart.
type Bar struct {
	Label string
	Value float64
}

// Chart renders bars scaled to the largest value. unit is appended to each
// value and format controls its precision.
type Chart struct {
	Title  string
	Unit   string
	Format string
	Bars   []Bar
}

// Render draws the chart with the theme's palette.
func (c Chart) Render(th report.Theme) string {
	var b strings.Builder
	b.WriteString(th.Title.Render(c.Title) + "\n")
	if len(c.Bars) == 0 {
		b.WriteString(th.Subtitle.Render("  no data") + "\n")
		return b.String()
	}

	maxVal, labelWidth := 0.0, 0
	for _, bar := range c.Bars {
		maxVal = max(maxVal, bar.Value)
		labelWidth = max(labelWidth, lipgloss.Width(bar.Label))
	}
	format := c.Format
	if format == "" {
		format = "%.0f"
	}

	for i, bar := range c.Bars {
		n := 0
		if maxVal > 0 {
			n = int(bar.Value / maxVal * barWidth)
		}
		if n == 0 && bar.Value > 0 {
			n = 1
		}
		fill := lipgloss.NewStyle().Foreground(th.Color(i)).Render(strings.Repeat("█", n))
		label := bar.Label + strings.Repeat(" ", labelWidth-lipgloss.Width(bar.Label))
		value := fmt.Sprintf(format, bar.Value)
		if c.Unit != "" {
			value += " " + c.Unit
		}
		fmt.Fprintf(&b, "  %s │ %s %s\n", label, fill, value)
	}
	return b.String()
}

// Single shows how a result's tokens split between input and output, and
// its throughput.
func Single(w io.Writer, r *compare.Result, theme string) error {
	th := report.ThemeFor(theme)
	if r.Failed() {
		_, err := io.WriteString(w, th.Error.Render("No chart: the query failed")+"\n")
		return err
	}

	u := r.TokenUsage
	var b strings.Builder
	b.WriteString(th.Title.Render(fmt.Sprintf("Token Distribution - %s", r.ModelName)) + "\n")
	total := u.InputTokens + u.OutputTokens
	if total > 0 {
		in := int(float64(u.InputTokens) / float64(total) * barWidth)
		bar := lipgloss.NewStyle().Foreground(th.Color(0)).Render(strings.Repeat("█", in)) +
			lipgloss.NewStyle().Foreground(th.Color(1)).Render(strings.Repeat("█", barWidth-in))
		b.WriteString("  " + bar + "\n")
		fmt.Fprintf(&b, "  Input: %d (%.1f%%)  Output: %d (%.1f%%)\n",
			u.InputTokens, pct(u.InputTokens, total), u.OutputTokens, pct(u.OutputTokens, total))
	} else {
		b.WriteString(th.Subtitle.Render("  no token usage reported") + "\n")
	}
	fmt.Fprintf(&b, "  Tokens/second: %.1f\n", r.TokensPerSecond())

	_, err := io.WriteString(w, b.String())
	return err
}

func pct(part, total int) float64 {
	return float64(part) / float64(total) * 100
}

// Comparison draws the comparison charts: total tokens, response time,
// context window, model type distribution, efficiency and response length.
// Failed results are left out.
func Comparison(w io.Writer, results []*compare.Result, theme string) error {
	th := report.ThemeFor(theme)
	var ok []*compare.Result
	for _, r := range results {
		if !r.Failed() {
			ok = append(ok, r)
		}
	}
	if len(ok) == 0 {
		_, err := io.WriteString(w, th.Error.Render("No successful results to visualize")+"\n")
		return err
	}

	charts := []Chart{
		build("Total Tokens", "tokens", "%.0f", ok, func(r *compare.Result) float64 { return float64(r.TokenUsage.TotalTokens) }),
		build("Response Time", "s", "%.2f", ok, func(r *compare.Result) float64 { return r.ResponseTime }),
		build("Context Window", "tokens", "%.0f", ok, func(r *compare.Result) float64 { return float64(r.ContextWindow) }),
		typeDistribution(ok),
		build("Efficiency", "tokens/s", "%.1f", ok, func(r *compare.Result) float64 { return r.TokensPerSecond() }),
		build("Response Length", "chars", "%.0f", ok, func(r *compare.Result) float64 { return float64(len([]rune(r.Response))) }),
	}

	parts := make([]string, len(charts))
	for i, c := range charts {
		parts[i] = c.Render(th)
	}
	_, err := io.WriteString(w, strings.Join(parts, "\n"))
	return err
}

func label(r *compare.Result) string {
	return fmt.Sprintf("%s/%s", r.Provider, r.ModelName)
}

func build(title, unit, format string, results []*compare.Result, value func(*compare.Result) float64) Chart {
	c := Chart{Title: title, Unit: unit, Format: format}
	for _, r := range results {
		c.Bars = append(c.Bars, Bar{Label: label(r), Value: value(r)})
	}
	return c
}

func typeDistribution(results []*compare.Result) Chart {
	counts := map[catalog.ModelType]int{}
	for _, r := range results {
		counts[r.ModelType]++
	}
	c := Chart{Title: "Model Type Distribution", Unit: "results"}
	for _, mt := range catalog.ModelTypes {
		if counts[mt] > 0 {
			c.Bars = append(c.Bars, Bar{Label: string(mt), Value: float64(counts[mt])})
		}
	}
	return c
}
