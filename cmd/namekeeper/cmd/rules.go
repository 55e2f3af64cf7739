package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/solatis/namekeeper/internal/core/config"
	"github.com/solatis/namekeeper/internal/naming"
	"github.com/solatis/namekeeper/internal/types"
)

const defaultRulesFile = ".namekeeper.yaml"

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the priority-ordered rules governing each category",
	Args:  cobra.NoArgs,
	RunE:  runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.Flags().String("rules", "", "rule file (default: policy_api.rules_file, then "+defaultRulesFile+")")
	rulesCmd.Flags().String("category", "", "only print this category")
}

// resolveRules loads the rule file named by --rules, the config file's
// rules_file, or ./.namekeeper.yaml, in that order. A relative rules_file
// is taken relative to the config file.
func resolveRules(cmd *cobra.Command) ([]types.RuleConfig, string, error) {
	path, _ := cmd.Flags().GetString("rules")
	if path == "" && configFile != "" {
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		path = configRelative(cfg.RulesFile)
	}
	if path == "" {
		if _, err := os.Stat(defaultRulesFile); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, "", fmt.Errorf("no rule file: pass --rules or create %s", defaultRulesFile)
			}
			return nil, "", err
		}
		path = defaultRulesFile
	}

	rules, err := config.LoadRules(path)
	if err != nil {
		return nil, "", err
	}
	return rules, path, nil
}

// configRelative resolves a path read from the config file against the
// config file's directory.
func configRelative(path string) string {
	if path == "" || filepath.IsAbs(path) || configFile == "" {
		return path
	}
	return filepath.Join(filepath.Dir(configFile), path)
}

func runRules(cmd *cobra.Command, args []string) error {
	rules, path, err := resolveRules(cmd)
	if err != nil {
		return err
	}
	eng, err := naming.New(rules)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	only, _ := cmd.Flags().GetString("category")
	categories := naming.LeafCategories()
	if only != "" {
		c, ok := naming.ParseSelector(only)
		if !ok || !naming.IsAtomic(c) {
			return fmt.Errorf("%w: %q", types.ErrUnknownSelector, only)
		}
		categories = []naming.Category{c}
	}

	return printValidators(cmd.OutOrStdout(), eng, categories)
}

func printValidators(out io.Writer, eng *naming.Engine, categories []naming.Category) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, c := range categories {
		fmt.Fprintf(tw, "%s:\n", c)
		v := eng.Validator(c)
		if len(v) == 0 {
			fmt.Fprintf(tw, "  (no rules)\n")
			continue
		}
		for _, r := range v {
			fmt.Fprintf(tw, "  rule %d\t%s\t%s\n", r.Source, r.Selector, describeRule(r))
		}
	}
	return tw.Flush()
}

func describeRule(r naming.NormalizedRule) string {
	var parts []string
	if r.Modifiers != 0 {
		parts = append(parts, "modifiers="+r.Modifiers.String())
	}
	if r.Types != 0 {
		parts = append(parts, "types="+r.Types.String())
	}
	if r.Filter != nil {
		parts = append(parts, fmt.Sprintf("filter=%s(match=%t)", r.Filter, r.Filter.Match))
	}
	if r.LeadingUnderscore != naming.UnderscoreUnchecked {
		parts = append(parts, "leadingUnderscore="+r.LeadingUnderscore.String())
	}
	if r.TrailingUnderscore != naming.UnderscoreUnchecked {
		parts = append(parts, "trailingUnderscore="+r.TrailingUnderscore.String())
	}
	if len(r.Prefix) > 0 {
		parts = append(parts, "prefix="+strings.Join(r.Prefix, "|"))
	}
	if len(r.Suffix) > 0 {
		parts = append(parts, "suffix="+strings.Join(r.Suffix, "|"))
	}
	if r.Custom != nil {
		parts = append(parts, fmt.Sprintf("custom=%s(match=%t)", r.Custom, r.Custom.Match))
	}
	formats := make([]string, len(r.Formats))
	for i, f := range r.Formats {
		formats[i] = f.String()
	}
	if len(formats) > 0 {
		parts = append(parts, "format="+strings.Join(formats, "|"))
	} else {
		parts = append(parts, "format=any")
	}
	return strings.Join(parts, " ")
}
