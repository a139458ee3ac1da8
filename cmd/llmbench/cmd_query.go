package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/user/llmbench/internal/catalog"
	"github.com/user/llmbench/internal/compare"
	"github.com/user/llmbench/internal/interactive"
	"github.com/user/llmbench/internal/report"
	"github.com/user/llmbench/internal/visualize"
)

// queryOptions are the root command flags.
type queryOptions struct {
	query       string
	provider    string
	modelType   string
	model       string
	compareAll  bool
	interactive bool
	visualize   bool
	output      string
	save        string
}

var query queryOptions

// validateArgs checks the root flags before any provider is contacted.
func validateArgs(q *queryOptions) error {
	if !q.interactive && q.query == "" {
		return errors.New("query is required (use --query or --interactive)")
	}
	if q.compareAll && q.model != "" {
		return errors.New("cannot specify --model with --compare-all")
	}
	if _, err := catalog.ParseProvider(q.provider); err != nil {
		return err
	}
	if _, err := catalog.ParseModelType(q.modelType); err != nil {
		return err
	}
	if _, err := report.ParseFormat(q.output); err != nil {
		return err
	}
	return nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	if err := validateArgs(&query); err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	format, _ := report.ParseFormat(query.output)
	opts := report.Options{Theme: a.cfg.Visualization.Theme, Verbose: global.verbose}
	out := cmd.OutOrStdout()

	if query.interactive {
		sess := interactive.New(a.svc, cmd.InOrStdin(), out,
			interactive.WithTheme(a.cfg.Visualization.Theme),
			interactive.WithFormat(format),
			interactive.WithStore(a.store),
			interactive.WithLogger(a.log),
		)
		return sess.Run(ctx)
	}

	if warnings, err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	} else if global.verbose {
		for _, w := range warnings {
			fmt.Fprintln(cmd.ErrOrStderr(), "Warning:", w)
		}
	}

	var cmp *compare.Comparison
	if query.compareAll {
		fmt.Fprintln(cmd.ErrOrStderr(), "Comparing all available models...")
		cmp, err = a.svc.CompareAll(ctx, query.query, nil, nil)
		if err != nil {
			return err
		}
	} else {
		p, _ := catalog.ParseProvider(query.provider)
		mt, _ := catalog.ParseModelType(query.modelType)
		res, err := a.svc.Query(ctx, compare.Request{
			Query:     query.query,
			Provider:  p,
			ModelType: mt,
			Model:     query.model,
		})
		if err != nil {
			return err
		}
		cmp = &compare.Comparison{Query: query.query, Results: []*compare.Result{res}}
	}

	if err := report.Write(out, format, opts, cmp); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if query.visualize {
		if err := drawCharts(out, a.cfg.Visualization.Enabled, a.cfg.Visualization.Theme, cmp); err != nil {
			return err
		}
	}

	if query.save != "" {
		if err := report.Save(query.save, cmp.Results...); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Results saved to %s\n", query.save)
	}
	return nil
}

func drawCharts(w io.Writer, enabled bool, theme string, cmp *compare.Comparison) error {
	if !enabled {
		fmt.Fprintln(w, "Visualization is disabled in the configuration.")
		return nil
	}
	if len(cmp.Results) == 1 {
		return visualize.Single(w, cmp.Results[0], theme)
	}
	return visualize.Comparison(w, cmp.Results, theme)
}
