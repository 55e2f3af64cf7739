// internal/naming/normalize.go
package naming

import (
	"fmt"

	"github.com/dlclark/regexp2"
	"github.com/solatis/namekeeper/internal/types"
)

/*
 * Rule normalization.
 *
 * Turns types.RuleConfig into NormalizedRule: one entry per selector name,
 * every string option resolved to bit flags, enums or compiled regexes, and a
 * specificity weight computed for validator ordering.
 *
 * Normalization workflow:
 *   1. Enforce resource limits (rule count, pattern length, affix count)
 *   2. Resolve modifiers, types, formats and underscore options
 *   3. Compile filter and custom patterns (ECMAScript syntax)
 *   4. Compute weight = modifiers | types | (filter ? FilterWeight : 0)
 *   5. Expand the selector list, one NormalizedRule per selector
 *
 * Any failure aborts the whole table: a rule is never silently dropped.
 *
 * Weight layout: modifier bits 0..16 and type bits 17..21 never collide, and
 * FilterWeight sits above both, so a filtered rule outranks every unfiltered
 * rule with the same selector regardless of how many modifiers it declares.
 */

// FilterWeight is the weight bit set on rules that declare a filter.
const FilterWeight uint32 = 1 << 30

// UnderscoreOption controls leading or trailing underscore handling.
type UnderscoreOption int

const (
	UnderscoreUnchecked UnderscoreOption = iota
	UnderscoreForbid
	UnderscoreRequire
	UnderscoreRequireDouble
	UnderscoreAllow
	UnderscoreAllowDouble
	UnderscoreAllowSingleOrDouble
)

var underscoreNames = map[string]UnderscoreOption{
	"forbid":              UnderscoreForbid,
	"require":             UnderscoreRequire,
	"requireDouble":       UnderscoreRequireDouble,
	"allow":               UnderscoreAllow,
	"allowDouble":         UnderscoreAllowDouble,
	"allowSingleOrDouble": UnderscoreAllowSingleOrDouble,
}

// ParseUnderscoreOption resolves an underscore option name; "" is unchecked.
func ParseUnderscoreOption(name string) (UnderscoreOption, bool) {
	if name == "" {
		return UnderscoreUnchecked, true
	}
	opt, ok := underscoreNames[name]
	return opt, ok
}

func (o UnderscoreOption) String() string {
	for n, opt := range underscoreNames {
		if opt == o {
			return n
		}
	}
	return ""
}

// Regex is a compiled pattern with match polarity.
type Regex struct {
	Pattern string
	Match   bool
	re      *regexp2.Regexp
}

// Test reports whether the pattern matches s. A match running past
// types.MatchTimeout fails with types.ErrRegexTimeout.
func (r *Regex) Test(s string) (bool, error) {
	ok, err := r.re.MatchString(s)
	if err != nil {
		return false, fmt.Errorf("%w: %s against %d-byte name", types.ErrRegexTimeout, r, len(s))
	}
	return ok, nil
}

// Satisfied reports whether s meets the pattern's polarity.
func (r *Regex) Satisfied(s string) (bool, error) {
	ok, err := r.Test(s)
	if err != nil {
		return false, err
	}
	return ok == r.Match, nil
}

// String renders the pattern the way it was written in configuration.
// Patterns compile in ECMAScript Unicode mode, hence the u flag.
func (r *Regex) String() string {
	return "/" + r.Pattern + "/u"
}

// NormalizedRule is one rule bound to exactly one selector.
type NormalizedRule struct {
	Index  int // position in the expanded table; final ordering tie-break
	Source int // index of the originating types.RuleConfig

	Selector  Category
	Modifiers Modifier
	Types     TypeConstraint
	Filter    *Regex
	Custom    *Regex
	Formats   []Format // empty = unconstrained

	LeadingUnderscore  UnderscoreOption
	TrailingUnderscore UnderscoreOption
	Prefix             []string
	Suffix             []string

	Weight uint32
}

// Normalize validates and expands rule configuration.
func Normalize(configs []types.RuleConfig) ([]NormalizedRule, error) {
	var out []NormalizedRule

	for i, cfg := range configs {
		base, err := normalizeRule(i, cfg)
		if err != nil {
			return nil, err
		}

		if len(cfg.Selectors) == 0 {
			return nil, &types.ConfigError{Rule: i, Field: "selector", Err: types.ErrEmptySelector}
		}
		for _, name := range cfg.Selectors {
			sel, ok := ParseSelector(name)
			if !ok {
				return nil, &types.ConfigError{Rule: i, Field: "selector", Value: name, Err: types.ErrUnknownSelector}
			}
			r := base
			r.Selector = sel
			r.Index = len(out)
			out = append(out, r)
			if len(out) > types.MaxRules {
				return nil, &types.ConfigError{Rule: i, Field: "selector", Err: types.ErrTooManyRules}
			}
		}
	}

	return out, nil
}

// normalizeRule resolves every selector-independent field of one rule.
func normalizeRule(idx int, cfg types.RuleConfig) (NormalizedRule, error) {
	r := NormalizedRule{Source: idx}

	for _, name := range cfg.Modifiers {
		m, ok := ParseModifier(name)
		if !ok {
			return r, &types.ConfigError{Rule: idx, Field: "modifiers", Value: name, Err: types.ErrUnknownModifier}
		}
		r.Modifiers |= m
	}

	for _, name := range cfg.Types {
		t, ok := ParseTypeConstraint(name)
		if !ok {
			return r, &types.ConfigError{Rule: idx, Field: "types", Value: name, Err: types.ErrUnknownType}
		}
		r.Types |= t
	}

	for _, name := range cfg.Format {
		f, ok := ParseFormat(name)
		if !ok {
			return r, &types.ConfigError{Rule: idx, Field: "format", Value: name, Err: types.ErrUnknownFormat}
		}
		r.Formats = append(r.Formats, f)
	}

	var ok bool
	if r.LeadingUnderscore, ok = ParseUnderscoreOption(cfg.LeadingUnderscore); !ok {
		return r, &types.ConfigError{Rule: idx, Field: "leadingUnderscore", Value: cfg.LeadingUnderscore, Err: types.ErrUnknownUnderscoreOption}
	}
	if r.TrailingUnderscore, ok = ParseUnderscoreOption(cfg.TrailingUnderscore); !ok {
		return r, &types.ConfigError{Rule: idx, Field: "trailingUnderscore", Value: cfg.TrailingUnderscore, Err: types.ErrUnknownUnderscoreOption}
	}

	if len(cfg.Prefix) > types.MaxAffixes {
		return r, &types.ConfigError{Rule: idx, Field: "prefix", Err: types.ErrTooManyAffixes}
	}
	if len(cfg.Suffix) > types.MaxAffixes {
		return r, &types.ConfigError{Rule: idx, Field: "suffix", Err: types.ErrTooManyAffixes}
	}
	r.Prefix = append([]string(nil), cfg.Prefix...)
	r.Suffix = append([]string(nil), cfg.Suffix...)

	var err error
	if r.Filter, err = compileRegex(idx, "filter", cfg.Filter); err != nil {
		return r, err
	}
	if r.Custom, err = compileRegex(idx, "custom", cfg.Custom); err != nil {
		return r, err
	}

	r.Weight = uint32(r.Modifiers) | uint32(r.Types)
	if r.Filter != nil {
		r.Weight |= FilterWeight
	}

	return r, nil
}

// compileRegex compiles a filter/custom pattern. Nil config yields a nil Regex.
func compileRegex(idx int, field string, m *types.MatchRegex) (*Regex, error) {
	if m == nil {
		return nil, nil
	}
	if len(m.Regex) > types.MaxPatternLength {
		return nil, &types.ConfigError{Rule: idx, Field: field, Err: types.ErrPatternTooLong}
	}
	re, err := regexp2.Compile(m.Regex, regexp2.ECMAScript|regexp2.Unicode)
	if err != nil {
		return nil, &types.ConfigError{
			Rule:  idx,
			Field: field,
			Value: m.Regex,
			Err:   fmt.Errorf("%w: %v", types.ErrInvalidRegex, err),
		}
	}
	re.MatchTimeout = types.MatchTimeout
	return &Regex{Pattern: m.Regex, Match: m.Match, re: re}, nil
}
