package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for namekeeper operations.
var (
	// ErrEmptySelector indicates a rule without any selector.
	ErrEmptySelector = errors.New("rule selector is empty")

	// ErrUnknownSelector indicates a selector name that is neither a category nor a meta category.
	ErrUnknownSelector = errors.New("unknown selector")

	// ErrUnknownModifier indicates an unrecognized modifier name.
	ErrUnknownModifier = errors.New("unknown modifier")

	// ErrUnknownType indicates an unrecognized type constraint name.
	ErrUnknownType = errors.New("unknown type constraint")

	// ErrUnknownFormat indicates an unrecognized predefined format name.
	ErrUnknownFormat = errors.New("unknown format")

	// ErrUnknownUnderscoreOption indicates an unrecognized leading/trailing underscore option.
	ErrUnknownUnderscoreOption = errors.New("unknown underscore option")

	// ErrInvalidRegex indicates a filter or custom pattern that does not compile.
	ErrInvalidRegex = errors.New("invalid regular expression")

	// ErrRegexTimeout indicates a filter or custom match exceeding MatchTimeout.
	ErrRegexTimeout = errors.New("regular expression match timed out")

	// ErrPatternTooLong indicates a pattern exceeding MaxPatternLength.
	ErrPatternTooLong = errors.New("regular expression exceeds maximum length")

	// ErrTooManyRules indicates a rule table exceeding MaxRules.
	ErrTooManyRules = errors.New("too many rules")

	// ErrTooManyAffixes indicates a prefix or suffix list exceeding MaxAffixes.
	ErrTooManyAffixes = errors.New("too many affixes")

	// ErrModifierNotAllowed indicates a modifier the selector can never carry.
	ErrModifierNotAllowed = errors.New("modifier not allowed for selector")

	// ErrTypesNotAllowed indicates types declared on a selector without type information.
	ErrTypesNotAllowed = errors.New("types not allowed for selector")

	// ErrUnsupportedLanguage indicates a source file the classifier cannot parse.
	ErrUnsupportedLanguage = errors.New("unsupported source language")

	// ErrSourceTooLarge indicates source text exceeding MaxSourceSize.
	ErrSourceTooLarge = errors.New("source exceeds maximum size")

	// ErrNameTooLong indicates an identifier exceeding MaxNameLength.
	ErrNameTooLong = errors.New("name exceeds maximum length")

	// ErrNotFound indicates a lint run or API key that does not exist.
	ErrNotFound = errors.New("not found")
)

// ConfigError locates a configuration failure inside the rule list.
// Rule is the zero-based index of the user rule; Field names the offending key.
type ConfigError struct {
	Rule  int
	Field string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("rule %d: %s: %v", e.Rule, e.Field, e.Err)
	}
	return fmt.Sprintf("rule %d: %s %q: %v", e.Rule, e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
