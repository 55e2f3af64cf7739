// internal/naming/validate.go
package naming

import "strings"

/*
 * Validation pipeline.
 *
 * Validates one Occurrence against the Validator of its category. Produces at
 * most one Violation.
 *
 * Validation flow:
 *   1. Rule selection: first rule whose filter, modifier and type gates pass
 *   2. Leading underscore: forbid/require/allow, trims on success
 *   3. Trailing underscore: same options against the tail
 *   4. Prefix: first declared prefix present is trimmed, none = violation
 *   5. Suffix: same against the tail
 *   6. Custom regex against the trimmed name
 *   7. Predefined formats against the trimmed name
 *
 * Short-circuit semantics: scanning stops at the first applicable rule even
 * if it then fails; later rules are never consulted. Inside the pipeline the
 * first failing stage stops the remaining stages.
 *
 * requiresQuotes: a name that needs quotes can never satisfy a case format,
 * so any rule with formats fails such occurrences at the format stage.
 *
 * Regex gates: filter and custom matches are bounded by types.MatchTimeout;
 * a timeout aborts validation with an error rather than a verdict.
 *
 * Type gate: the TypeOf capability is called lazily, at most once per
 * occurrence, and only for type-eligible categories when a candidate rule
 * declares types.
 */

// TypeClassifier supplies the type classification of an occurrence.
type TypeClassifier func() TypeConstraint

// Occurrence is one name-bearing entity submitted for validation.
type Occurrence struct {
	Category  Category // exactly one atomic bit
	Modifiers Modifier
	Name      string         // raw identifier text, quotes already removed
	TypeOf    TypeClassifier // nil = no type information
}

// Stage identifies the pipeline stage that rejected a name.
type Stage int

const (
	StageLeadingUnderscore Stage = iota + 1
	StageTrailingUnderscore
	StagePrefix
	StageSuffix
	StageCustom
	StageFormat
)

var stageNames = map[Stage]string{
	StageLeadingUnderscore:  "leadingUnderscore",
	StageTrailingUnderscore: "trailingUnderscore",
	StagePrefix:             "prefix",
	StageSuffix:             "suffix",
	StageCustom:             "custom",
	StageFormat:             "format",
}

func (s Stage) String() string {
	if n, ok := stageNames[s]; ok {
		return n
	}
	return "unknown"
}

// Position is the end of the name a stage inspects.
type Position int

const (
	PositionLeading Position = iota + 1
	PositionTrailing
)

func (p Position) String() string {
	switch p {
	case PositionLeading:
		return "leading"
	case PositionTrailing:
		return "trailing"
	default:
		return ""
	}
}

// Violation describes why a name failed its governing rule.
// Stage-specific fields are zero unless that stage failed.
type Violation struct {
	Stage        Stage
	Category     Category
	OriginalName string
	Rule         int // index of the originating types.RuleConfig

	// Underscore stages: Missing=true means a required underscore is absent
	// (Count underscores expected); false means a forbidden one is present.
	Position Position
	Missing  bool
	Count    int

	// Prefix/suffix stages.
	Affixes []string

	// Custom stage.
	Regex      string
	RegexMatch bool

	// Format stage. Trimmed reports ProcessedName differs from OriginalName.
	ProcessedName string
	Formats       []Format
	Trimmed       bool
}

// validate runs the pipeline for occ against v. The only error is a
// filter or custom match exceeding types.MatchTimeout.
func validate(v Validator, occ Occurrence) (*Violation, error) {
	rule, ok, err := selectRule(v, occ)
	if err != nil || !ok {
		return nil, err
	}

	fail := func(stage Stage) *Violation {
		return &Violation{
			Stage:        stage,
			Category:     occ.Category,
			OriginalName: occ.Name,
			Rule:         rule.Source,
		}
	}

	name := occ.Name

	for _, pos := range []Position{PositionLeading, PositionTrailing} {
		opt := rule.LeadingUnderscore
		stage := StageLeadingUnderscore
		if pos == PositionTrailing {
			opt = rule.TrailingUnderscore
			stage = StageTrailingUnderscore
		}
		trimmed, missing, count, ok := checkUnderscore(opt, pos, name)
		if !ok {
			viol := fail(stage)
			viol.Position = pos
			viol.Missing = missing
			viol.Count = count
			return viol, nil
		}
		name = trimmed
	}

	for _, pos := range []Position{PositionLeading, PositionTrailing} {
		affixes, stage := rule.Prefix, StagePrefix
		if pos == PositionTrailing {
			affixes, stage = rule.Suffix, StageSuffix
		}
		trimmed, ok := checkAffix(affixes, pos, name)
		if !ok {
			viol := fail(stage)
			viol.Position = pos
			viol.Affixes = append([]string(nil), affixes...)
			return viol, nil
		}
		name = trimmed
	}

	if rule.Custom != nil {
		ok, err := rule.Custom.Satisfied(name)
		if err != nil {
			return nil, err
		}
		if !ok {
			viol := fail(StageCustom)
			viol.Regex = rule.Custom.String()
			viol.RegexMatch = rule.Custom.Match
			return viol, nil
		}
	}

	if len(rule.Formats) == 0 {
		return nil, nil
	}
	if !occ.Modifiers.Has(ModifierRequiresQuotes) {
		for _, f := range rule.Formats {
			if f.Check(name) {
				return nil, nil
			}
		}
	}
	viol := fail(StageFormat)
	viol.ProcessedName = name
	viol.Formats = append([]Format(nil), rule.Formats...)
	viol.Trimmed = name != occ.Name
	return viol, nil
}

// selectRule returns the first rule in v whose gates pass for occ.
func selectRule(v Validator, occ Occurrence) (NormalizedRule, bool, error) {
	var (
		typesKnown bool
		occTypes   TypeConstraint
	)
	for _, r := range v {
		if r.Filter != nil {
			ok, err := r.Filter.Satisfied(occ.Name)
			if err != nil {
				return NormalizedRule{}, false, err
			}
			if !ok {
				continue
			}
		}
		if r.Modifiers != 0 && !occ.Modifiers.Has(r.Modifiers) {
			continue
		}
		if r.Types != 0 {
			if !TypeEligible(occ.Category) || occ.TypeOf == nil {
				continue
			}
			if !typesKnown {
				occTypes = occ.TypeOf()
				typesKnown = true
			}
			if !occTypes.Intersects(r.Types) {
				continue
			}
		}
		return r, true, nil
	}
	return NormalizedRule{}, false, nil
}

// checkUnderscore applies one underscore option to one end of name.
// On failure it reports whether the underscore was missing and how many were required.
func checkUnderscore(opt UnderscoreOption, pos Position, name string) (trimmed string, missing bool, count int, ok bool) {
	has := func(n int) bool {
		u := strings.Repeat("_", n)
		if pos == PositionLeading {
			return strings.HasPrefix(name, u)
		}
		return strings.HasSuffix(name, u)
	}
	trim := func(n int) string {
		if pos == PositionLeading {
			return name[n:]
		}
		return name[:len(name)-n]
	}

	switch opt {
	case UnderscoreForbid:
		if has(1) {
			return "", false, 0, false
		}
		return name, false, 0, true
	case UnderscoreRequire:
		if !has(1) {
			return "", true, 1, false
		}
		return trim(1), false, 0, true
	case UnderscoreRequireDouble:
		if !has(2) {
			return "", true, 2, false
		}
		return trim(2), false, 0, true
	case UnderscoreAllow:
		if has(1) {
			return trim(1), false, 0, true
		}
		return name, false, 0, true
	case UnderscoreAllowDouble:
		if has(2) {
			return trim(2), false, 0, true
		}
		return name, false, 0, true
	case UnderscoreAllowSingleOrDouble:
		if has(2) {
			return trim(2), false, 0, true
		}
		if has(1) {
			return trim(1), false, 0, true
		}
		return name, false, 0, true
	default:
		return name, false, 0, true
	}
}

// checkAffix trims the first declared affix present at pos. Empty list passes.
func checkAffix(affixes []string, pos Position, name string) (string, bool) {
	if len(affixes) == 0 {
		return name, true
	}
	for _, a := range affixes {
		if pos == PositionLeading && strings.HasPrefix(name, a) {
			return name[len(a):], true
		}
		if pos == PositionTrailing && strings.HasSuffix(name, a) {
			return name[:len(name)-len(a)], true
		}
	}
	return "", false
}
