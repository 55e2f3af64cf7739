// internal/core/config/rules.go
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/solatis/namekeeper/internal/types"
)

/*
 * Rule file loading.
 *
 * A rule file is YAML (JSON is accepted as a YAML subset) holding either a
 * bare list of rules or a mapping with a `rules` key:
 *
 *   rules:
 *     - selector: [variable, function]
 *       format: [camelCase]
 *       leadingUnderscore: allow
 *     - selector: interface
 *       custom: { regex: "^I[A-Z]", match: false }
 *
 * Decoding is strict: unknown keys anywhere in a rule are errors.
 * `selector` accepts a single name or a list; `filter` accepts a bare pattern (match: true) or a
 * {regex, match} mapping; `custom` requires the mapping.
 */

// ruleFile is the mapping form of a rule file.
type ruleFile struct {
	Rules []rawRule `yaml:"rules"`
}

type rawRule struct {
	Selector           stringList  `yaml:"selector"`
	Modifiers          []string    `yaml:"modifiers"`
	Types              []string    `yaml:"types"`
	Filter             *filterSpec `yaml:"filter"`
	Custom             *matchSpec  `yaml:"custom"`
	Format             []string    `yaml:"format"`
	LeadingUnderscore  string      `yaml:"leadingUnderscore"`
	TrailingUnderscore string      `yaml:"trailingUnderscore"`
	Prefix             []string    `yaml:"prefix"`
	Suffix             []string    `yaml:"suffix"`
}

// stringList decodes a scalar or a sequence of scalars.
type stringList []string

func (s *stringList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*s = []string{n.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := n.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	}
	return fmt.Errorf("line %d: selector must be a string or a list of strings", n.Line)
}

// matchSpec decodes a {regex, match} mapping, rejecting unknown keys.
type matchSpec struct {
	Regex string
	Match bool
}

func (m *matchSpec) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping with regex and match", n.Line)
	}
	var haveRegex, haveMatch bool
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		switch key.Value {
		case "regex":
			if err := val.Decode(&m.Regex); err != nil {
				return err
			}
			haveRegex = true
		case "match":
			if err := val.Decode(&m.Match); err != nil {
				return err
			}
			haveMatch = true
		default:
			return fmt.Errorf("line %d: field %s not found in regex option", key.Line, key.Value)
		}
	}
	if !haveRegex || !haveMatch {
		return fmt.Errorf("line %d: regex option requires both regex and match", n.Line)
	}
	return nil
}

// filterSpec is a matchSpec that also accepts a bare pattern string.
type filterSpec matchSpec

func (f *filterSpec) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		f.Regex, f.Match = n.Value, true
		return nil
	}
	return (*matchSpec)(f).UnmarshalYAML(n)
}

// ParseRules decodes rule configuration from YAML or JSON.
// An empty document yields no rules.
func ParseRules(data []byte) ([]types.RuleConfig, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var raw []rawRule
	switch root.Content[0].Kind {
	case yaml.SequenceNode:
		if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse rules: %w", err)
		}
	case yaml.MappingNode:
		var file ruleFile
		if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse rules: %w", err)
		}
		raw = file.Rules
	default:
		return nil, fmt.Errorf("parse rules: document must be a list of rules or a mapping with a rules key")
	}

	if len(raw) > types.MaxRules {
		return nil, fmt.Errorf("parse rules: %w: %d rules", types.ErrTooManyRules, len(raw))
	}

	out := make([]types.RuleConfig, len(raw))
	for i, r := range raw {
		out[i] = types.RuleConfig{
			Selectors:          []string(r.Selector),
			Modifiers:          r.Modifiers,
			Types:              r.Types,
			Format:             r.Format,
			LeadingUnderscore:  r.LeadingUnderscore,
			TrailingUnderscore: r.TrailingUnderscore,
			Prefix:             r.Prefix,
			Suffix:             r.Suffix,
		}
		if r.Filter != nil {
			out[i].Filter = &types.MatchRegex{Regex: r.Filter.Regex, Match: r.Filter.Match}
		}
		if r.Custom != nil {
			out[i].Custom = &types.MatchRegex{Regex: r.Custom.Regex, Match: r.Custom.Match}
		}
	}
	return out, nil
}

// LoadRules reads, decodes and schema-checks a rule file.
func LoadRules(path string) ([]types.RuleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	rules, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := ValidateRules(rules); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}
