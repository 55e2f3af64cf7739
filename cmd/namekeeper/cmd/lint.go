package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/solatis/namekeeper/internal/core/db"
	"github.com/solatis/namekeeper/internal/lint"
	"github.com/solatis/namekeeper/internal/naming"
	"github.com/solatis/namekeeper/internal/report"
)

var lintCmd = &cobra.Command{
	Use:   "lint [paths or globs...]",
	Short: "Check declared names in source files against the rule file",
	Long: `Lint classifies every declaration in the given files, directories or
doublestar globs (default ".") and reports names that violate the rules.
Exits with status 1 when any violation is found.`,
	RunE: runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)
	lintCmd.Flags().String("rules", "", "rule file (default: policy_api.rules_file, then "+defaultRulesFile+")")
	lintCmd.Flags().String("format", "text", "output format (text, json)")
	lintCmd.Flags().Int("jobs", 0, "files linted in parallel (0 = GOMAXPROCS)")
	lintCmd.Flags().Bool("watch", false, "re-lint whenever a source file changes")
	lintCmd.Flags().Duration("debounce", lint.DefaultDebounce, "watch mode: wait this long for more changes")
}

// linter holds one lint invocation's resolved inputs.
type linter struct {
	engine   *naming.Engine
	digest   string
	patterns []string
	jobs     int
	format   string
	store    *db.Store
	out      io.Writer
	logger   *slog.Logger
}

func runLint(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid --format %q (expected text or json)", format)
	}
	jobs, _ := cmd.Flags().GetInt("jobs")
	watch, _ := cmd.Flags().GetBool("watch")
	debounce, _ := cmd.Flags().GetDuration("debounce")

	rules, path, err := resolveRules(cmd)
	if err != nil {
		return err
	}
	eng, err := naming.New(rules)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if len(args) == 0 {
		args = []string{"."}
	}
	l := &linter{
		engine:   eng,
		digest:   lint.RulesDigest(rules),
		patterns: args,
		jobs:     jobs,
		format:   format,
		out:      cmd.OutOrStdout(),
		logger:   slog.Default(),
	}

	if dbURL != "" {
		store, err := openStore(dbURL)
		if err != nil {
			return err
		}
		defer store.Close()
		l.store = store
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	count, err := l.run(ctx)
	if err != nil {
		return err
	}
	if !watch {
		if count > 0 {
			return ErrViolations
		}
		return nil
	}

	return lint.Watch(ctx, lint.WatchRoots(args), debounce, l.logger, func(changed []string) {
		l.logger.InfoContext(ctx, "change detected, re-linting", "files", len(changed))
		if _, err := l.run(ctx); err != nil {
			l.logger.ErrorContext(ctx, "lint failed", "error", err)
		}
	})
}

// run lints every matching file once, prints diagnostics and records the
// run when a database is configured. Returns the violation count.
func (l *linter) run(ctx context.Context) (int, error) {
	started := time.Now()

	paths, err := lint.ExpandPaths(l.patterns)
	if err != nil {
		return 0, err
	}
	results, err := lint.Files(ctx, l.engine, paths, l.jobs)
	if err != nil {
		return 0, err
	}
	diags, names := lint.Diagnostics(results)

	switch l.format {
	case "json":
		err = report.WriteJSON(l.out, diags)
	default:
		err = report.WriteText(l.out, diags)
	}
	if err != nil {
		return 0, err
	}

	l.logger.DebugContext(ctx, "lint finished",
		"files", len(paths), "names", names, "violations", len(diags), "elapsed", time.Since(started))

	if l.store != nil {
		runID, err := l.store.RecordRun(ctx, db.Run{
			Client:       "cli",
			RulesDigest:  l.digest,
			StartedAt:    started,
			FinishedAt:   time.Now(),
			FilesChecked: len(paths),
			NamesChecked: names,
		}, diags)
		if err != nil {
			return 0, fmt.Errorf("failed to record run: %w", err)
		}
		l.logger.InfoContext(ctx, "recorded run", "run_id", runID)
	}

	return len(diags), nil
}
