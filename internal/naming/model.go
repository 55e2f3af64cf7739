// internal/naming/model.go
package naming

import (
	"math"
	"strings"
)

/*
 * Category, modifier and type-constraint bit model.
 *
 * Every atomic Category owns exactly one bit; meta categories are fixed unions
 * of those bits. Modifier and TypeConstraint bits are disjoint from each other
 * (modifiers 0..16, types 17..21) so a rule's specificity weight can OR both
 * without collisions. The tables below are the only vocabulary the classifier
 * and the rule normalizer share.
 *
 * Bit order matters: the validator comparator falls back to raw selector
 * value, so the layout is part of the rule precedence contract.
 */

// Category is a selector bit set. Atomic categories have one bit set; meta
// categories are unions; CategoryDefault is the all-bits sentinel.
type Category uint32

const (
	CategoryVariable Category = 1 << iota
	CategoryFunction
	CategoryParameter
	CategoryParameterProperty
	CategoryClassicAccessor
	CategoryEnumMember
	CategoryClassMethod
	CategoryObjectLiteralMethod
	CategoryTypeMethod
	CategoryClassProperty
	CategoryObjectLiteralProperty
	CategoryTypeProperty
	CategoryAutoAccessor
	CategoryClass
	CategoryInterface
	CategoryTypeAlias
	CategoryEnum
	CategoryTypeParameter
	CategoryImport
)

// Meta categories.
const (
	CategoryDefault Category = math.MaxUint32

	CategoryVariableLike = CategoryVariable | CategoryFunction | CategoryParameter

	CategoryMemberLike = CategoryClassProperty | CategoryObjectLiteralProperty | CategoryTypeProperty |
		CategoryParameterProperty | CategoryEnumMember | CategoryClassMethod | CategoryObjectLiteralMethod |
		CategoryTypeMethod | CategoryClassicAccessor | CategoryAutoAccessor

	CategoryTypeLike = CategoryClass | CategoryInterface | CategoryTypeAlias | CategoryEnum | CategoryTypeParameter

	CategoryMethod = CategoryClassMethod | CategoryObjectLiteralMethod | CategoryTypeMethod

	CategoryProperty = CategoryClassProperty | CategoryObjectLiteralProperty | CategoryTypeProperty

	CategoryAccessor = CategoryClassicAccessor | CategoryAutoAccessor
)

// NumCategories is the number of atomic categories.
const NumCategories = 19

var categoryNames = []struct {
	cat  Category
	name string
}{
	{CategoryVariable, "variable"},
	{CategoryFunction, "function"},
	{CategoryParameter, "parameter"},
	{CategoryParameterProperty, "parameterProperty"},
	{CategoryClassicAccessor, "classicAccessor"},
	{CategoryEnumMember, "enumMember"},
	{CategoryClassMethod, "classMethod"},
	{CategoryObjectLiteralMethod, "objectLiteralMethod"},
	{CategoryTypeMethod, "typeMethod"},
	{CategoryClassProperty, "classProperty"},
	{CategoryObjectLiteralProperty, "objectLiteralProperty"},
	{CategoryTypeProperty, "typeProperty"},
	{CategoryAutoAccessor, "autoAccessor"},
	{CategoryClass, "class"},
	{CategoryInterface, "interface"},
	{CategoryTypeAlias, "typeAlias"},
	{CategoryEnum, "enum"},
	{CategoryTypeParameter, "typeParameter"},
	{CategoryImport, "import"},
}

var metaNames = []struct {
	cat  Category
	name string
}{
	{CategoryDefault, "default"},
	{CategoryVariableLike, "variableLike"},
	{CategoryMemberLike, "memberLike"},
	{CategoryTypeLike, "typeLike"},
	{CategoryMethod, "method"},
	{CategoryProperty, "property"},
	{CategoryAccessor, "accessor"},
}

// LeafCategories returns the atomic categories in bit order.
func LeafCategories() []Category {
	out := make([]Category, len(categoryNames))
	for i, c := range categoryNames {
		out[i] = c.cat
	}
	return out
}

// ParseSelector resolves a category or meta category name.
func ParseSelector(name string) (Category, bool) {
	for _, c := range categoryNames {
		if c.name == name {
			return c.cat, true
		}
	}
	for _, m := range metaNames {
		if m.name == name {
			return m.cat, true
		}
	}
	return 0, false
}

// IsMeta reports whether c is one of the named meta categories.
func IsMeta(c Category) bool {
	for _, m := range metaNames {
		if m.cat == c {
			return true
		}
	}
	return false
}

// IsAtomic reports whether c is a single atomic category.
func IsAtomic(c Category) bool {
	return c != 0 && c&(c-1) == 0 && c <= CategoryImport
}

// index returns the position of an atomic category in LeafCategories order.
func (c Category) index() int {
	for i := 0; i < NumCategories; i++ {
		if c == 1<<i {
			return i
		}
	}
	return -1
}

// Intersects reports whether c and o share any bit.
func (c Category) Intersects(o Category) bool {
	return c&o != 0
}

func (c Category) String() string {
	for _, cn := range categoryNames {
		if cn.cat == c {
			return cn.name
		}
	}
	for _, m := range metaNames {
		if m.cat == c {
			return m.name
		}
	}
	return "unknown"
}

// TypeEligible reports whether occurrences of c can carry a type classification.
func TypeEligible(c Category) bool {
	switch c {
	case CategoryVariable, CategoryParameter, CategoryClassProperty, CategoryObjectLiteralProperty,
		CategoryTypeProperty, CategoryParameterProperty, CategoryClassicAccessor, CategoryAutoAccessor:
		return true
	}
	return false
}

// Modifier is a bit set of orthogonal occurrence attributes.
type Modifier uint32

const (
	ModifierConst Modifier = 1 << iota
	ModifierReadonly
	ModifierStatic
	ModifierPublic
	ModifierProtected
	ModifierPrivate
	ModifierHashPrivate
	ModifierAbstract
	ModifierDestructured
	ModifierGlobal
	ModifierExported
	ModifierUnused
	ModifierRequiresQuotes
	ModifierOverride
	ModifierAsync
	ModifierDefault
	ModifierNamespace
)

var modifierNames = []struct {
	mod  Modifier
	name string
}{
	{ModifierConst, "const"},
	{ModifierReadonly, "readonly"},
	{ModifierStatic, "static"},
	{ModifierPublic, "public"},
	{ModifierProtected, "protected"},
	{ModifierPrivate, "private"},
	{ModifierHashPrivate, "#private"},
	{ModifierAbstract, "abstract"},
	{ModifierDestructured, "destructured"},
	{ModifierGlobal, "global"},
	{ModifierExported, "exported"},
	{ModifierUnused, "unused"},
	{ModifierRequiresQuotes, "requiresQuotes"},
	{ModifierOverride, "override"},
	{ModifierAsync, "async"},
	{ModifierDefault, "default"},
	{ModifierNamespace, "namespace"},
}

// ParseModifier resolves a modifier name.
func ParseModifier(name string) (Modifier, bool) {
	for _, m := range modifierNames {
		if m.name == name {
			return m.mod, true
		}
	}
	return 0, false
}

// Has reports whether every bit of o is set in m.
func (m Modifier) Has(o Modifier) bool {
	return m&o == o
}

// With returns m with the bits of o added.
func (m Modifier) With(o Modifier) Modifier {
	return m | o
}

// Names lists the modifier names set in m, in bit order.
func (m Modifier) Names() []string {
	var out []string
	for _, mn := range modifierNames {
		if m&mn.mod != 0 {
			out = append(out, mn.name)
		}
	}
	return out
}

func (m Modifier) String() string {
	return strings.Join(m.Names(), "|")
}

// TypeConstraint is a bit set of type classifications.
type TypeConstraint uint32

const (
	TypeBoolean TypeConstraint = 1 << (17 + iota)
	TypeString
	TypeNumber
	TypeFunction
	TypeArray
)

var typeNames = []struct {
	typ  TypeConstraint
	name string
}{
	{TypeBoolean, "boolean"},
	{TypeString, "string"},
	{TypeNumber, "number"},
	{TypeFunction, "function"},
	{TypeArray, "array"},
}

// ParseTypeConstraint resolves a type constraint name.
func ParseTypeConstraint(name string) (TypeConstraint, bool) {
	for _, t := range typeNames {
		if t.name == name {
			return t.typ, true
		}
	}
	return 0, false
}

// Intersects reports whether t and o share any bit.
func (t TypeConstraint) Intersects(o TypeConstraint) bool {
	return t&o != 0
}

// Names lists the type names set in t, in bit order.
func (t TypeConstraint) Names() []string {
	var out []string
	for _, tn := range typeNames {
		if t&tn.typ != 0 {
			out = append(out, tn.name)
		}
	}
	return out
}

func (t TypeConstraint) String() string {
	return strings.Join(t.Names(), "|")
}

// CategoryNames returns every selector name, atomic first then meta.
func CategoryNames() []string {
	out := make([]string, 0, len(categoryNames)+len(metaNames))
	for _, c := range categoryNames {
		out = append(out, c.name)
	}
	for _, m := range metaNames {
		out = append(out, m.name)
	}
	return out
}
