package naming

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/solatis/namekeeper/internal/types"
)

func selectorsOf(v Validator) []Category {
	out := make([]Category, len(v))
	for i, r := range v {
		out[i] = r.Selector
	}
	return out
}

func mustNormalize(t *testing.T, configs ...types.RuleConfig) []NormalizedRule {
	t.Helper()
	rules, err := Normalize(configs)
	if err != nil {
		t.Fatalf("Normalize() error = %v, want nil", err)
	}
	return rules
}

func TestBuildValidators_SelectsIntersectingRules(t *testing.T) {
	rules := mustNormalize(t,
		types.RuleConfig{Selectors: []string{"default"}},
		types.RuleConfig{Selectors: []string{"typeLike"}},
		types.RuleConfig{Selectors: []string{"variable"}},
	)
	validators := BuildValidators(rules)

	for i, cat := range LeafCategories() {
		v := validators[i]
		switch {
		case cat == CategoryVariable:
			if diff := cmp.Diff([]Category{CategoryVariable, CategoryDefault}, selectorsOf(v)); diff != "" {
				t.Errorf("variable validator mismatch (-want +got):\n%s", diff)
			}
		case cat&CategoryTypeLike != 0:
			if diff := cmp.Diff([]Category{CategoryTypeLike, CategoryDefault}, selectorsOf(v)); diff != "" {
				t.Errorf("%v validator mismatch (-want +got):\n%s", cat, diff)
			}
		default:
			if diff := cmp.Diff([]Category{CategoryDefault}, selectorsOf(v)); diff != "" {
				t.Errorf("%v validator mismatch (-want +got):\n%s", cat, diff)
			}
		}
	}
}

func TestBuildValidators_UnreferencedCategoryIsEmpty(t *testing.T) {
	validators := BuildValidators(mustNormalize(t, types.RuleConfig{Selectors: []string{"class"}}))
	if len(validators[CategoryVariable.index()]) != 0 {
		t.Errorf("len(variable validator) = %v, want 0", len(validators[CategoryVariable.index()]))
	}
	if len(validators[CategoryClass.index()]) != 1 {
		t.Errorf("len(class validator) = %v, want 1", len(validators[CategoryClass.index()]))
	}
}

func TestValidator_SameSelectorOrderedByWeight(t *testing.T) {
	rules := mustNormalize(t,
		types.RuleConfig{Selectors: []string{"variable"}, Format: []string{"camelCase"}},
		types.RuleConfig{Selectors: []string{"variable"}, Modifiers: []string{"const"}},
		types.RuleConfig{Selectors: []string{"variable"}, Modifiers: []string{"const", "exported"}},
		types.RuleConfig{Selectors: []string{"variable"}, Types: []string{"boolean"}},
		types.RuleConfig{Selectors: []string{"variable"}, Filter: &types.MatchRegex{Regex: "^x", Match: true}},
		types.RuleConfig{Selectors: []string{"variable"}, Format: []string{"PascalCase"}},
	)
	v := BuildValidators(rules)[CategoryVariable.index()]

	var got []int
	for _, r := range v {
		got = append(got, r.Source)
	}
	// filter, types, const|exported, const, then the two plain rules in declaration order
	want := []int{4, 3, 2, 1, 0, 5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("variable validator order mismatch (-want +got):\n%s", diff)
	}
}

// Pairwise precedence between concrete, method/property, other meta and default selectors.
func TestValidator_MetaSelectorPrecedence(t *testing.T) {
	tests := []struct {
		name      string
		category  Category
		selectors []string // declared in this order
		want      []Category
	}{
		{
			name:      "class method",
			category:  CategoryClassMethod,
			selectors: []string{"default", "memberLike", "method", "classMethod"},
			want:      []Category{CategoryClassMethod, CategoryMethod, CategoryMemberLike, CategoryDefault},
		},
		{
			name:      "class property",
			category:  CategoryClassProperty,
			selectors: []string{"memberLike", "default", "property", "classProperty"},
			want:      []Category{CategoryClassProperty, CategoryProperty, CategoryMemberLike, CategoryDefault},
		},
		{
			name:      "method before memberLike regardless of declaration order",
			category:  CategoryTypeMethod,
			selectors: []string{"memberLike", "method"},
			want:      []Category{CategoryMethod, CategoryMemberLike},
		},
		{
			name:      "property before memberLike regardless of declaration order",
			category:  CategoryObjectLiteralProperty,
			selectors: []string{"memberLike", "property"},
			want:      []Category{CategoryProperty, CategoryMemberLike},
		},
		{
			// Neither is method/property, so raw selector value decides.
			name:      "memberLike before accessor",
			category:  CategoryClassicAccessor,
			selectors: []string{"accessor", "memberLike", "classicAccessor"},
			want:      []Category{CategoryClassicAccessor, CategoryMemberLike, CategoryAccessor},
		},
		{
			name:      "variable",
			category:  CategoryVariable,
			selectors: []string{"default", "variableLike", "variable"},
			want:      []Category{CategoryVariable, CategoryVariableLike, CategoryDefault},
		},
		{
			name:      "type parameter",
			category:  CategoryTypeParameter,
			selectors: []string{"default", "typeParameter", "typeLike"},
			want:      []Category{CategoryTypeParameter, CategoryTypeLike, CategoryDefault},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var configs []types.RuleConfig
			for _, s := range tt.selectors {
				configs = append(configs, types.RuleConfig{Selectors: []string{s}})
			}
			v := BuildValidators(mustNormalize(t, configs...))[tt.category.index()]
			if diff := cmp.Diff(tt.want, selectorsOf(v)); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLess_StrictTotalOrder(t *testing.T) {
	rules := mustNormalize(t,
		types.RuleConfig{Selectors: []string{"default", "memberLike", "method", "property", "accessor", "classMethod"}},
		types.RuleConfig{Selectors: []string{"default", "memberLike", "method", "property", "accessor", "classMethod"}, Modifiers: []string{"static"}},
		types.RuleConfig{Selectors: []string{"default", "memberLike", "method", "classMethod"}},
	)
	for _, a := range rules {
		if Less(a, a) {
			t.Errorf("Less(r%d, r%d) = true, want irreflexive", a.Index, a.Index)
		}
		for _, b := range rules {
			if a.Index == b.Index {
				continue
			}
			if Less(a, b) == Less(b, a) {
				t.Errorf("Less(r%d, r%d) == Less(r%d, r%d); order is not total", a.Index, b.Index, b.Index, a.Index)
			}
		}
	}
}

func TestIsMeta(t *testing.T) {
	for _, c := range LeafCategories() {
		if IsMeta(c) {
			t.Errorf("IsMeta(%v) = true, want false", c)
		}
		if !IsAtomic(c) {
			t.Errorf("IsAtomic(%v) = false, want true", c)
		}
	}
	for _, c := range []Category{CategoryDefault, CategoryVariableLike, CategoryMemberLike, CategoryTypeLike, CategoryMethod, CategoryProperty, CategoryAccessor} {
		if !IsMeta(c) {
			t.Errorf("IsMeta(%v) = false, want true", c)
		}
		if IsAtomic(c) {
			t.Errorf("IsAtomic(%v) = true, want false", c)
		}
	}
}

func TestLeafCategories_Disjoint(t *testing.T) {
	leaves := LeafCategories()
	if len(leaves) != NumCategories {
		t.Fatalf("len(LeafCategories()) = %v, want %v", len(leaves), NumCategories)
	}
	var seen Category
	for i, c := range leaves {
		if seen&c != 0 {
			t.Errorf("category %v shares bits with an earlier category", c)
		}
		seen |= c
		if c.index() != i {
			t.Errorf("%v.index() = %v, want %v", c, c.index(), i)
		}
	}
}
