package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/llmbench/internal/catalog"
	"github.com/user/llmbench/internal/report"
	"github.com/user/llmbench/internal/tools"
)

var toolsRunOpts struct {
	query     string
	provider  string
	model     string
	maxRounds int
	json      bool
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.AddCommand(toolsListCmd, toolsCallCmd, toolsRunCmd)

	f := toolsRunCmd.Flags()
	f.StringVarP(&toolsRunOpts.query, "query", "q", "", "question for the model (required)")
	f.StringVarP(&toolsRunOpts.provider, "provider", "p", "openai", "provider with function calling (openai, anthropic, gemini)")
	f.StringVarP(&toolsRunOpts.model, "model", "m", "", "model name (defaults to the provider's instruct model)")
	f.IntVar(&toolsRunOpts.maxRounds, "max-rounds", 5, "maximum tool-call rounds")
	f.BoolVar(&toolsRunOpts.json, "json", false, "print the outcome as JSON")
	_ = toolsRunCmd.MarkFlagRequired("query")
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Tool-enhanced reasoning with math and string helpers",
}

var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available tools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDESCRIPTION")
		for _, t := range tools.Default().All() {
			fmt.Fprintf(w, "%s\t%s\n", t.Name(), t.Description())
		}
		return w.Flush()
	},
}

var toolsCallCmd = &cobra.Command{
	Use:   "call <name> [json-args]",
	Short: "Call a tool directly",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := json.RawMessage("{}")
		if len(args) == 2 {
			if !json.Valid([]byte(args[1])) {
				return errors.New("arguments must be a JSON object")
			}
			raw = json.RawMessage(args[1])
		}
		out, err := tools.Default().Call(cmd.Context(), args[0], raw)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

var toolsRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Answer a question, letting the model call tools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := catalog.ParseProvider(toolsRunOpts.provider)
		if err != nil {
			return err
		}
		if p == catalog.HuggingFace {
			return errors.New("huggingface models do not support function calling")
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		model := toolsRunOpts.model
		if model == "" {
			if model, err = catalog.DefaultModel(p, catalog.Instruct); err != nil {
				return err
			}
		}
		provider, err := a.svc.Factory().Provider(p, catalog.Instruct, model)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		runner := tools.NewRunner(provider, tools.Default(), toolsRunOpts.maxRounds, a.log)
		outcome, err := runner.Run(ctx, toolsRunOpts.query)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if toolsRunOpts.json {
			return report.JSON(out, outcome)
		}
		for i, c := range outcome.Calls {
			fmt.Fprintf(out, "[%d] %s(%s) -> %s\n", i+1, c.Tool, c.Arguments, c.Result)
		}
		if len(outcome.Calls) > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, outcome.Answer)
		if global.verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "rounds: %d, tokens: %d\n", outcome.Rounds, outcome.Usage.TotalTokens)
		}
		return nil
	},
}
