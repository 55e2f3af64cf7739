// internal/naming/format.go
package naming

import (
	"strings"
	"unicode"
)

/*
 * Predefined case-format predicates.
 *
 * Each predicate is a pure string -> bool check over runes. The empty string
 * satisfies every format: a name fully consumed by underscore or affix
 * trimming has nothing left to violate.
 *
 * Caseless runes (digits, CJK, '$') count as both lower and upper for the
 * first-rune checks and never start a hump, matching the comparison
 * "r == upper(r)" used by the loose variants.
 */

// Format is a predefined case style.
type Format int

const (
	FormatCamelCase Format = iota + 1
	FormatStrictCamelCase
	FormatPascalCase
	FormatStrictPascalCase
	FormatSnakeCase
	FormatUpperCase
)

var formatNames = map[Format]string{
	FormatCamelCase:        "camelCase",
	FormatStrictCamelCase:  "strictCamelCase",
	FormatPascalCase:       "PascalCase",
	FormatStrictPascalCase: "StrictPascalCase",
	FormatSnakeCase:        "snake_case",
	FormatUpperCase:        "UPPER_CASE",
}

// ParseFormat resolves a predefined format name.
func ParseFormat(name string) (Format, bool) {
	for f, n := range formatNames {
		if n == name {
			return f, true
		}
	}
	return 0, false
}

func (f Format) String() string {
	if n, ok := formatNames[f]; ok {
		return n
	}
	return "unknown"
}

// Check reports whether name satisfies the format.
func (f Format) Check(name string) bool {
	switch f {
	case FormatCamelCase:
		return IsCamelCase(name)
	case FormatStrictCamelCase:
		return IsStrictCamelCase(name)
	case FormatPascalCase:
		return IsPascalCase(name)
	case FormatStrictPascalCase:
		return IsStrictPascalCase(name)
	case FormatSnakeCase:
		return IsSnakeCase(name)
	case FormatUpperCase:
		return IsUpperCase(name)
	default:
		return false
	}
}

// IsPascalCase reports whether the first rune is not lowercase and no underscore appears.
func IsPascalCase(name string) bool {
	if name == "" {
		return true
	}
	first := firstRune(name)
	return first == unicode.ToUpper(first) && !strings.Contains(name, "_")
}

// IsStrictPascalCase is IsPascalCase without consecutive uppercase runes.
func IsStrictPascalCase(name string) bool {
	if name == "" {
		return true
	}
	first := firstRune(name)
	return first == unicode.ToUpper(first) && hasStrictCamelHumps(name, true)
}

// IsCamelCase reports whether the first rune is not uppercase and no underscore appears.
func IsCamelCase(name string) bool {
	if name == "" {
		return true
	}
	first := firstRune(name)
	return first == unicode.ToLower(first) && !strings.Contains(name, "_")
}

// IsStrictCamelCase is IsCamelCase without consecutive uppercase runes.
func IsStrictCamelCase(name string) bool {
	if name == "" {
		return true
	}
	first := firstRune(name)
	return first == unicode.ToLower(first) && hasStrictCamelHumps(name, false)
}

// IsSnakeCase accepts all-lowercase names with single interior underscores.
func IsSnakeCase(name string) bool {
	return name == "" || (name == strings.ToLower(name) && validUnderscores(name))
}

// IsUpperCase accepts all-uppercase names with single interior underscores.
func IsUpperCase(name string) bool {
	return name == "" || (name == strings.ToUpper(name) && validUnderscores(name))
}

// hasStrictCamelHumps walks runes after the first, tracking whether the
// previous rune was uppercase. Two uppercase runes in a row fail.
func hasStrictCamelHumps(name string, isUpper bool) bool {
	if strings.HasPrefix(name, "_") {
		return false
	}
	runes := []rune(name)
	for _, r := range runes[1:] {
		if r == '_' {
			return false
		}
		if isUpper == isUppercaseRune(r) {
			if isUpper {
				return false
			}
		} else {
			isUpper = !isUpper
		}
	}
	return true
}

func isUppercaseRune(r rune) bool {
	return r == unicode.ToUpper(r) && r != unicode.ToLower(r)
}

// validUnderscores rejects leading, trailing and doubled underscores.
func validUnderscores(name string) bool {
	if strings.HasPrefix(name, "_") {
		return false
	}
	wasUnderscore := false
	for _, r := range []rune(name)[1:] {
		if r == '_' {
			if wasUnderscore {
				return false
			}
			wasUnderscore = true
		} else {
			wasUnderscore = false
		}
	}
	return !wasUnderscore
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}
