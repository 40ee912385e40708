package providers

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

var defaultTable = mustParse(defaultRulesYAML)

// Default returns the built-in provider table.
func Default() *Table {
	return defaultTable
}

// Parse reads a rules document: a mapping from rule identifier to the list
// of domains it applies to.
func Parse(content []byte) (*Table, error) {
	var doc map[string][]string
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse provider rules: %w", err)
	}

	entries := make(map[string]Rule)
	for name, domains := range doc {
		rule, err := ParseRule(name)
		if err != nil {
			return nil, err
		}
		for _, domain := range domains {
			key := normalizeDomainKey(domain)
			if existing, ok := entries[key]; ok && existing != rule {
				return nil, fmt.Errorf("provider %s listed under %q and %q", key, existing, rule)
			}
			entries[key] = rule
		}
	}

	return NewTable(entries)
}

// LoadFile reads a rules document from disk.
func LoadFile(path string) (*Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider rules %s: %w", path, err)
	}
	table, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// WithOverrides returns the built-in table with the rules in path applied on
// top. An empty path returns the built-in table.
func WithOverrides(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}
	overrides, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return Default().Merge(overrides), nil
}

func mustParse(content []byte) *Table {
	table, err := Parse(content)
	if err != nil {
		panic("providers: invalid built-in rules: " + err.Error())
	}
	return table
}
