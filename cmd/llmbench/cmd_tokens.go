package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/llmbench/internal/catalog"
	"github.com/user/llmbench/internal/report"
	"github.com/user/llmbench/internal/tokenizer"
)

var tokenOpts struct {
	file     string
	provider string
	model    string
	max      int
	json     bool
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	tokensCmd.AddCommand(tokensAnalyzeCmd, tokensTruncateCmd)

	for _, c := range []*cobra.Command{tokensAnalyzeCmd, tokensTruncateCmd} {
		c.Flags().StringVarP(&tokenOpts.file, "file", "f", "", "read text from a file (- for stdin)")
		c.Flags().StringVarP(&tokenOpts.provider, "provider", "p", "openai", "provider whose tokenizer is used")
		c.Flags().StringVarP(&tokenOpts.model, "model", "m", "", "model for the context-window check")
	}
	tokensAnalyzeCmd.Flags().BoolVar(&tokenOpts.json, "json", false, "print JSON")
	tokensTruncateCmd.Flags().IntVar(&tokenOpts.max, "max", 0, "maximum number of tokens (required)")
	_ = tokensTruncateCmd.MarkFlagRequired("max")
}

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Estimate and limit token counts",
}

// readText takes the text from the first argument or --file.
func readText(cmd *cobra.Command, args []string) (string, error) {
	switch {
	case tokenOpts.file == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	case tokenOpts.file != "":
		data, err := os.ReadFile(tokenOpts.file)
		if err != nil {
			return "", fmt.Errorf("read text file: %w", err)
		}
		return string(data), nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	}
	return "", errors.New("no text given: pass it as an argument or with --file")
}

func tokenTarget() (catalog.Provider, string, error) {
	p, err := catalog.ParseProvider(tokenOpts.provider)
	if err != nil {
		return "", "", err
	}
	model := tokenOpts.model
	if model == "" {
		if model, err = catalog.DefaultModel(p, catalog.Instruct); err != nil {
			return "", "", err
		}
	}
	return p, model, nil
}

var tokensAnalyzeCmd = &cobra.Command{
	Use:   "analyze [text]",
	Short: "Show text statistics and context-window usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readText(cmd, args)
		if err != nil {
			return err
		}
		p, model, err := tokenTarget()
		if err != nil {
			return err
		}

		est := tokenizer.New()
		stats := est.Analyze(text)
		check := est.CheckContextWindow(text, p, model)

		out := cmd.OutOrStdout()
		if tokenOpts.json {
			return report.JSON(out, map[string]any{
				"stats":          stats,
				"provider":       p,
				"model":          model,
				"context_window": check,
			})
		}

		fmt.Fprintln(out, "Text Analysis")
		fmt.Fprintf(out, "  Characters:          %d\n", stats.Characters)
		fmt.Fprintf(out, "  Words:               %d\n", stats.Words)
		fmt.Fprintf(out, "  Sentences:           %d\n", stats.Sentences)
		fmt.Fprintf(out, "  Avg word length:     %.2f\n", stats.AvgWordLength)
		fmt.Fprintf(out, "  Avg sentence length: %.2f\n", stats.AvgSentenceLength)
		fmt.Fprintln(out, "Token Estimates")
		fmt.Fprintf(out, "  OpenAI:    %d\n", stats.OpenAITokens)
		fmt.Fprintf(out, "  Anthropic: %d\n", stats.AnthropicTokens)
		fmt.Fprintf(out, "  Basic:     %d\n", stats.BasicTokens)
		fmt.Fprintf(out, "Context Window (%s/%s)\n", p, model)
		fmt.Fprintf(out, "  Estimated tokens: %d of %d (%.2f%%)\n", check.EstimatedTokens, check.ContextWindow, check.Utilization)
		fmt.Fprintf(out, "  Remaining:        %d\n", check.Remaining)
		fmt.Fprintf(out, "  Fits:             %t\n", check.Fits)
		return nil
	},
}

var tokensTruncateCmd = &cobra.Command{
	Use:   "truncate [text]",
	Short: "Cut text down to a token budget on word boundaries",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenOpts.max <= 0 {
			return errors.New("--max must be positive")
		}
		text, err := readText(cmd, args)
		if err != nil {
			return err
		}
		p, model, err := tokenTarget()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tokenizer.New().Truncate(text, tokenOpts.max, p, model))
		return nil
	},
}
