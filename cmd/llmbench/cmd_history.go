package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/llmbench/internal/history"
	"github.com/user/llmbench/internal/report"
)

var historyOpts struct {
	limit int
	yes   bool
	json  bool
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyClearCmd)

	historyListCmd.Flags().IntVarP(&historyOpts.limit, "limit", "n", 20, "number of records to show (0 for all)")
	historyShowCmd.Flags().BoolVar(&historyOpts.json, "json", false, "print JSON")
	historyClearCmd.Flags().BoolVarP(&historyOpts.yes, "yes", "y", false, "do not ask for confirmation")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect saved queries, comparisons and agent answers",
}

func openHistory() (history.Store, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := history.Open(cfg.History)
	if err != nil {
		return nil, nil, fmt.Errorf("open history: %w", err)
	}
	closeFn := func() {
		if c, ok := store.(io.Closer); ok {
			_ = c.Close()
		}
	}
	return store, closeFn, nil
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List history records, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeFn, err := openHistory()
		if err != nil {
			return err
		}
		defer closeFn()

		recs, err := store.List(cmd.Context(), historyOpts.limit)
		if err != nil {
			return fmt.Errorf("list history: %w", err)
		}
		if len(recs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No history found.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tRESULTS\tCREATED\tQUERY")
		for _, r := range recs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
				shortID(r.ID),
				r.Kind,
				len(r.Results),
				r.CreatedAt.Format("2006-01-02 15:04:05"),
				oneLine(r.Query, 60),
			)
		}
		return w.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one history record (an ID prefix is enough)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeFn, err := openHistory()
		if err != nil {
			return err
		}
		defer closeFn()

		rec, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printRecord(cmd.OutOrStdout(), rec, historyOpts.json)
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all history records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !historyOpts.yes {
			fmt.Fprint(cmd.OutOrStdout(), "Delete all history? [y/N]: ")
			scanner := bufio.NewScanner(cmd.InOrStdin())
			if !scanner.Scan() || !strings.HasPrefix(strings.ToLower(strings.TrimSpace(scanner.Text())), "y") {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
		}

		store, closeFn, err := openHistory()
		if err != nil {
			return err
		}
		defer closeFn()

		if err := store.Clear(cmd.Context()); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
		return nil
	},
}

func printRecord(w io.Writer, rec *history.Record, asJSON bool) error {
	if asJSON {
		return report.JSON(w, rec)
	}
	fmt.Fprintf(w, "ID:      %s\n", rec.ID)
	fmt.Fprintf(w, "Kind:    %s\n", rec.Kind)
	fmt.Fprintf(w, "Created: %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Query:   %s\n", rec.Query)
	for _, warn := range rec.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warn)
	}
	for i, e := range rec.Results {
		fmt.Fprintf(w, "\n--- %d. %s / %s", i+1, e.Provider, e.Model)
		if e.ModelType != "" {
			fmt.Fprintf(w, " (%s)", e.ModelType)
		}
		fmt.Fprintln(w, " ---")
		if e.Error != "" {
			fmt.Fprintf(w, "Error: %s\n", e.Error)
			continue
		}
		fmt.Fprintf(w, "Tokens: %d in / %d out / %d total, %.2fs\n",
			e.InputTokens, e.OutputTokens, e.TotalTokens, e.ResponseTime)
		fmt.Fprintln(w, e.Response)
	}
	return nil
}

func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
