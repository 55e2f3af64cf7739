// internal/types/rules.go
package types

/*
 * Domain types for naming rule configuration.
 *
 * RuleConfig is the parsed, typed form of one user rule. It is produced by
 * internal/core/config (YAML/JSON rule files) or internal/core/api (structpb
 * requests) and consumed by internal/naming, which resolves every string
 * into bit flags and compiled regexes.
 *
 * Key types:
 *   - RuleConfig: one user rule, selector list not yet expanded
 *   - MatchRegex: pattern plus match polarity for filter and custom
 *
 * Absent options are zero values: empty strings and nil slices mean
 * "not configured". Format nil and Format empty both mean unconstrained.
 */

// MatchRegex is a regular expression with match polarity.
// Match=true requires the pattern to match; Match=false requires it not to.
type MatchRegex struct {
	Regex string
	Match bool
}

// RuleConfig represents one user-declared naming rule.
type RuleConfig struct {
	Selectors          []string    // category or meta category names; expands to one rule each
	Modifiers          []string    // all must be present on the occurrence
	Types              []string    // any must intersect the occurrence type classification
	Filter             *MatchRegex // gates applicability, tested against the raw name
	Custom             *MatchRegex // tested against the trimmed name
	Format             []string    // predefined formats; nil or empty = unconstrained
	LeadingUnderscore  string      // underscore option name, "" = unchecked
	TrailingUnderscore string
	Prefix             []string
	Suffix             []string
}
