// internal/naming/validator.go
package naming

import "sort"

/*
 * Validator construction and rule precedence.
 *
 * A Validator is the priority-ordered list of normalized rules that can apply
 * to one atomic category. Validation scans it front to back and evaluates
 * only the first rule whose gates pass, so the order is the precedence
 * contract between overlapping rules.
 *
 * Ordering keys, most significant first:
 *   1. Same selector: higher weight first (filter > types/modifiers bits)
 *   2. Concrete selector before meta selector
 *   3. method/property metas before every other meta
 *   4. default always last
 *   5. Higher selector bits first
 *
 * Distinct selectors always differ in 5, and equal selectors fall through to
 * the declaration index in 1, so no two rules compare equal and sort
 * stability is never relied on.
 */

// Validator is the ordered rule list for one atomic category.
type Validator []NormalizedRule

// BuildValidators builds one validator per atomic category, in LeafCategories order.
// Categories no rule selects get an empty validator.
func BuildValidators(rules []NormalizedRule) [NumCategories]Validator {
	var out [NumCategories]Validator
	for i, cat := range LeafCategories() {
		out[i] = buildValidator(cat, rules)
	}
	return out
}

func buildValidator(cat Category, rules []NormalizedRule) Validator {
	var v Validator
	for _, r := range rules {
		if r.Selector&cat != 0 || r.Selector == CategoryDefault {
			v = append(v, r)
		}
	}
	sort.Slice(v, func(i, j int) bool {
		return Less(v[i], v[j])
	})
	return v
}

// Less reports whether a takes precedence over b.
func Less(a, b NormalizedRule) bool {
	if a.Selector == b.Selector {
		if a.Weight != b.Weight {
			return a.Weight > b.Weight
		}
		return a.Index < b.Index
	}

	aMeta, bMeta := IsMeta(a.Selector), IsMeta(b.Selector)
	if aMeta != bMeta {
		return !aMeta
	}

	aShorthand, bShorthand := isMethodOrProperty(a.Selector), isMethodOrProperty(b.Selector)
	if aShorthand != bShorthand {
		return aShorthand
	}

	aDefault, bDefault := a.Selector == CategoryDefault, b.Selector == CategoryDefault
	if aDefault != bDefault {
		return bDefault
	}

	return a.Selector > b.Selector
}

func isMethodOrProperty(c Category) bool {
	return c == CategoryMethod || c == CategoryProperty
}
