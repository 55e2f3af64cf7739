package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/solatis/namekeeper/internal/report"
	"github.com/solatis/namekeeper/internal/types"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded lint runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			return fmt.Errorf("--limit must be positive, got %d", limit)
		}

		store, err := openStore(dbURL)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.ListRuns(limit)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "RUN\tCLIENT\tSTARTED\tFILES\tNAMES\tVIOLATIONS")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n",
				r.ID, r.Client, r.StartedAt.UTC().Format(time.RFC3339), r.FilesChecked, r.NamesChecked, r.ViolationCount)
		}
		return tw.Flush()
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print a run's violations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := types.ParseRunID(args[0])
		if err != nil {
			return fmt.Errorf("invalid run id %q: %w", args[0], err)
		}

		store, err := openStore(dbURL)
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := store.GetRun(id)
		if err != nil {
			return err
		}
		rows, err := store.Violations(id)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "run %s by %s at %s (rules %.12s)\n", run.ID, run.Client, run.StartedAt.UTC().Format(time.RFC3339), run.RulesDigest)
		fmt.Fprintf(out, "%d files, %d names, %d violations in %v\n\n",
			run.FilesChecked, run.NamesChecked, run.ViolationCount, run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))

		diags := make([]report.Diagnostic, len(rows))
		for i, v := range rows {
			diags[i] = v.Diagnostic()
		}
		return report.WriteText(out, diags)
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd, runsShowCmd)
	runsListCmd.Flags().Int("limit", 20, "number of runs to show")
}
