// Package naming implements the configurable naming-policy engine.
//
// An Engine is built once from an ordered rule list. It is immutable after
// construction and safe for concurrent Validate calls from any number of
// goroutines; no locking is involved.
package naming

import "github.com/solatis/namekeeper/internal/types"

// Engine holds the normalized rule table and one validator per atomic category.
type Engine struct {
	rules      []NormalizedRule
	validators [NumCategories]Validator
}

// New normalizes configs and builds every validator.
// Any configuration error aborts construction; no partial engine is returned.
func New(configs []types.RuleConfig) (*Engine, error) {
	rules, err := Normalize(configs)
	if err != nil {
		return nil, err
	}
	return &Engine{
		rules:      rules,
		validators: BuildValidators(rules),
	}, nil
}

// Validate checks one occurrence and returns its violation, or nil.
// Occurrences whose category is not atomic never match a rule. A filter or
// custom pattern that backtracks past types.MatchTimeout yields an error
// wrapping types.ErrRegexTimeout instead of a verdict.
func (e *Engine) Validate(occ Occurrence) (*Violation, error) {
	return validate(e.Validator(occ.Category), occ)
}

// Validator returns the ordered rules governing an atomic category.
// The returned slice must not be modified.
func (e *Engine) Validator(c Category) Validator {
	if !IsAtomic(c) {
		return nil
	}
	return e.validators[c.index()]
}

// Rules returns the normalized rule table in declaration order.
func (e *Engine) Rules() []NormalizedRule {
	return e.rules
}
