package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/user/llmbench/internal/catalog"
)

const modelTypeGuide = `Base: foundation models for text completion; need careful prompting.
Instruct: tuned to follow instructions; best for Q&A and general tasks.
Fine-tuned: specialized for a domain such as code generation.`

// Models prints the catalog of each provider: every known model with its
// type, context window and instruction-following rating. Defaults are
// marked with an asterisk.
func Models(w io.Writer, providers []catalog.Provider, opts Options) error {
	th := ThemeFor(opts.Theme)
	var b strings.Builder

	b.WriteString(th.Title.Render("Available Models") + "\n")
	rows := [][]string{}
	for _, p := range providers {
		info := catalog.Describe(p)
		for _, mt := range catalog.ModelTypes {
			for _, m := range info.Models[mt] {
				name := m
				if info.Defaults[mt] == m {
					name += " *"
				}
				c := catalog.CharacteristicsFor(p, m)
				rows = append(rows, []string{
					info.Name,
					string(mt),
					name,
					fmt.Sprintf("%d", info.Windows[m]),
					c.InstructionFollowing,
					c.CostPer1KTokens,
				})
			}
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(th.Border)).
		Headers("Provider", "Model Type", "Model", "Context Window", "Instruction Following", "Cost / 1K").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return th.Header
			}
			return th.Cell
		})
	b.WriteString(t.Render() + "\n")
	b.WriteString(th.Subtitle.Render("* default model for the type") + "\n")
	if opts.Verbose {
		b.WriteString("\n" + th.Title.Render("Model Types") + "\n" + modelTypeGuide + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
