package config

import (
	"errors"
	"testing"

	"github.com/solatis/namekeeper/internal/naming"
	"github.com/solatis/namekeeper/internal/types"
)

func TestValidateRules(t *testing.T) {
	tests := []struct {
		name      string
		rule      types.RuleConfig
		wantErr   error
		wantField string
	}{
		{"variable const", types.RuleConfig{Selectors: []string{"variable"}, Modifiers: []string{"const", "exported"}}, nil, ""},
		{"variable typed", types.RuleConfig{Selectors: []string{"variable"}, Types: []string{"boolean"}}, nil, ""},
		{"class property private static", types.RuleConfig{Selectors: []string{"classProperty"}, Modifiers: []string{"private", "static"}}, nil, ""},
		{"import namespace", types.RuleConfig{Selectors: []string{"import"}, Modifiers: []string{"namespace"}}, nil, ""},
		{"default accepts any modifier", types.RuleConfig{Selectors: []string{"default"}, Modifiers: []string{"requiresQuotes"}}, nil, ""},

		{"function const", types.RuleConfig{Selectors: []string{"function"}, Modifiers: []string{"const"}}, types.ErrModifierNotAllowed, "modifiers"},
		{"enum member private", types.RuleConfig{Selectors: []string{"enumMember"}, Modifiers: []string{"private"}}, types.ErrModifierNotAllowed, "modifiers"},
		{"accessor #private", types.RuleConfig{Selectors: []string{"accessor"}, Modifiers: []string{"#private"}}, types.ErrModifierNotAllowed, "modifiers"},
		{"function typed", types.RuleConfig{Selectors: []string{"function"}, Types: []string{"function"}}, types.ErrTypesNotAllowed, "types"},
		{"default typed", types.RuleConfig{Selectors: []string{"default"}, Types: []string{"string"}}, types.ErrTypesNotAllowed, "types"},

		// left for the engine's normalizer
		{"unknown selector", types.RuleConfig{Selectors: []string{"widget"}, Modifiers: []string{"const"}}, nil, ""},
		{"unknown modifier", types.RuleConfig{Selectors: []string{"function"}, Modifiers: []string{"sparkly"}}, nil, ""},

		{"selector list unchecked", types.RuleConfig{Selectors: []string{"function", "enumMember"}, Modifiers: []string{"const"}, Types: []string{"string"}}, nil, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rules := []types.RuleConfig{{Selectors: []string{"default"}}, tc.rule}
			err := ValidateRules(rules)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("ValidateRules() = %v, want %v", err, tc.wantErr)
			}
			if tc.wantErr == nil {
				return
			}
			var cfgErr *types.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error %T is not a *types.ConfigError", err)
			}
			if cfgErr.Rule != 1 {
				t.Errorf("Rule = %d, want 1", cfgErr.Rule)
			}
			if cfgErr.Field != tc.wantField {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tc.wantField)
			}
		})
	}
}

func TestSelectorSchemasCoverCategories(t *testing.T) {
	for _, name := range naming.CategoryNames() {
		if _, ok := selectorSchemas[name]; !ok {
			t.Errorf("selector %q has no schema", name)
		}
	}
}
