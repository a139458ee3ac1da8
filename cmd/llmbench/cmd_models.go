package main

import (
	"github.com/spf13/cobra"

	"github.com/user/llmbench/internal/catalog"
	"github.com/user/llmbench/internal/config"
	"github.com/user/llmbench/internal/report"
)

var modelsProvider string

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.Flags().StringVarP(&modelsProvider, "provider", "p", "", "only list this provider")
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List known models with defaults and context windows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		providers := catalog.Providers
		if modelsProvider != "" {
			p, err := catalog.ParseProvider(modelsProvider)
			if err != nil {
				return err
			}
			providers = []catalog.Provider{p}
		}
		theme := "dark"
		if cfg, err := config.Load(cfgPath); err == nil {
			theme = cfg.Visualization.Theme
		}
		return report.Models(cmd.OutOrStdout(), providers, report.Options{Theme: theme, Verbose: global.verbose})
	},
}
