package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/llmbench/internal/scheduler"
)

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.AddCommand(scheduleListCmd)
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Inspect comparisons that serve runs on a schedule",
}

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enabled schedules and their next run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		jobs, err := scheduler.ParseJobs(cfg.Schedules)
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No schedules configured.")
			return nil
		}

		now := time.Now()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSCHEDULE\tNEXT RUN\tPROVIDERS\tQUERY")
		for _, j := range jobs {
			next, _ := scheduler.NextRun(j.Schedule, now)
			providers := "all"
			if len(j.Providers) > 0 {
				names := make([]string, len(j.Providers))
				for i, p := range j.Providers {
					names[i] = string(p)
				}
				providers = strings.Join(names, ",")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				j.Name, j.Schedule, next.Format("2006-01-02 15:04"), providers, oneLine(j.Query, 40))
		}
		return w.Flush()
	},
}
