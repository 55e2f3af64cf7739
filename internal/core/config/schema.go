// internal/core/config/schema.go
package config

import "github.com/solatis/namekeeper/internal/types"

/*
 * Per-selector rule schema.
 *
 * Each single selector admits only the modifiers its entities can carry, and
 * only type-eligible selectors admit `types`. A rule naming several
 * selectors is checked against none of these tables: any modifier or type
 * is accepted, matching the behavior of the selector-list rule form.
 *
 * Unknown selector, modifier and type names pass through untouched; the
 * engine's normalizer reports those with the same ConfigError shape.
 */

var (
	memberLikeModifiers = []string{"abstract", "private", "#private", "protected", "public", "readonly", "requiresQuotes", "static", "override", "async"}
	methodModifiers     = []string{"abstract", "private", "#private", "protected", "public", "requiresQuotes", "static", "override", "async"}
	accessorModifiers   = []string{"abstract", "private", "protected", "public", "requiresQuotes", "static", "override"}
	allModifiers        = []string{"const", "readonly", "static", "public", "protected", "private", "#private", "abstract", "destructured", "global", "exported", "unused", "requiresQuotes", "override", "async", "default", "namespace"}
)

type selectorSchema struct {
	modifiers []string
	types     bool
}

var selectorSchemas = map[string]selectorSchema{
	"default":      {modifiers: allModifiers},
	"variableLike": {modifiers: []string{"unused", "async"}},
	"variable":     {modifiers: []string{"const", "destructured", "exported", "global", "unused", "async"}, types: true},
	"function":     {modifiers: []string{"exported", "global", "unused", "async"}},
	"parameter":    {modifiers: []string{"destructured", "unused"}, types: true},

	"memberLike":            {modifiers: memberLikeModifiers},
	"classProperty":         {modifiers: []string{"abstract", "private", "#private", "protected", "public", "readonly", "requiresQuotes", "static", "override"}, types: true},
	"objectLiteralProperty": {modifiers: []string{"public", "requiresQuotes"}, types: true},
	"typeProperty":          {modifiers: []string{"public", "readonly", "requiresQuotes"}, types: true},
	"parameterProperty":     {modifiers: []string{"private", "protected", "public", "readonly"}, types: true},
	"property":              {modifiers: memberLikeModifiers, types: true},
	"classMethod":           {modifiers: methodModifiers},
	"objectLiteralMethod":   {modifiers: []string{"public", "requiresQuotes", "async"}},
	"typeMethod":            {modifiers: []string{"public", "requiresQuotes"}},
	"method":                {modifiers: methodModifiers},
	"classicAccessor":       {modifiers: accessorModifiers, types: true},
	"autoAccessor":          {modifiers: accessorModifiers, types: true},
	"accessor":              {modifiers: accessorModifiers, types: true},
	"enumMember":            {modifiers: []string{"requiresQuotes"}},

	"typeLike":      {modifiers: []string{"abstract", "exported", "unused"}},
	"class":         {modifiers: []string{"abstract", "exported", "unused"}},
	"interface":     {modifiers: []string{"exported", "unused"}},
	"typeAlias":     {modifiers: []string{"exported", "unused"}},
	"enum":          {modifiers: []string{"exported", "unused"}},
	"typeParameter": {modifiers: []string{"unused"}},
	"import":        {modifiers: []string{"default", "namespace"}},
}

// ValidateRules checks each single-selector rule against the modifiers and
// types its selector admits. The first failure is returned as a
// *types.ConfigError.
func ValidateRules(rules []types.RuleConfig) error {
	for i, r := range rules {
		if len(r.Selectors) != 1 {
			continue
		}
		schema, ok := selectorSchemas[r.Selectors[0]]
		if !ok {
			continue
		}
		for _, m := range r.Modifiers {
			if !contains(allModifiers, m) {
				continue
			}
			if !contains(schema.modifiers, m) {
				return &types.ConfigError{Rule: i, Field: "modifiers", Value: m, Err: types.ErrModifierNotAllowed}
			}
		}
		if len(r.Types) > 0 && !schema.types {
			return &types.ConfigError{Rule: i, Field: "types", Value: r.Selectors[0], Err: types.ErrTypesNotAllowed}
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
