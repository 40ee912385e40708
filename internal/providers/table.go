package providers

// Package providers holds the per-domain sub-addressing rule table.

import (
	"fmt"
	"sort"
	"strings"
)

// Rule identifies how a provider treats tags in the local part.
type Rule string

const (
	// RuleIdentity leaves the local part unchanged.
	RuleIdentity Rule = "identity"
	// RuleStripAfterPlus drops everything from the first '+'.
	RuleStripAfterPlus Rule = "strip-after-plus"
	// RuleStripAfterPlusThenDot drops everything from the first '+' and then
	// removes every '.' (Gmail style).
	RuleStripAfterPlusThenDot Rule = "strip-after-plus-then-dot"
	// RuleStripAfterDash drops everything from the first '-' (Yahoo style).
	RuleStripAfterDash Rule = "strip-after-dash"
)

// Valid reports whether r is a known rule identifier.
func (r Rule) Valid() bool {
	switch r {
	case RuleIdentity, RuleStripAfterPlus, RuleStripAfterPlusThenDot, RuleStripAfterDash:
		return true
	default:
		return false
	}
}

func (r Rule) String() string {
	return string(r)
}

// ParseRule converts a rule identifier into a Rule.
func ParseRule(s string) (Rule, error) {
	rule := Rule(strings.ToLower(strings.TrimSpace(s)))
	if !rule.Valid() {
		return "", fmt.Errorf("unknown provider rule: %q", s)
	}
	return rule, nil
}

// Entry is a single domain to rule mapping.
type Entry struct {
	Domain string `json:"domain"`
	Rule   Rule   `json:"rule"`
}

// Table maps lowercase domains to rules. A Table is never mutated after it
// is built and is safe for concurrent reads.
type Table struct {
	rules map[string]Rule
}

// NewTable builds a table from domain to rule pairs. Domains are trimmed and
// lowercased.
func NewTable(entries map[string]Rule) (*Table, error) {
	rules := make(map[string]Rule, len(entries))
	for domain, rule := range entries {
		key := normalizeDomainKey(domain)
		if key == "" {
			return nil, fmt.Errorf("provider domain is required")
		}
		if !rule.Valid() {
			return nil, fmt.Errorf("provider %s: unknown rule %q", key, rule)
		}
		if existing, ok := rules[key]; ok && existing != rule {
			return nil, fmt.Errorf("provider %s: conflicting rules %q and %q", key, existing, rule)
		}
		rules[key] = rule
	}
	return &Table{rules: rules}, nil
}

// Lookup returns the rule registered for domain. The match is exact; callers
// pass an already lowercased domain.
func (t *Table) Lookup(domain string) (Rule, bool) {
	if t == nil {
		return RuleIdentity, false
	}
	rule, ok := t.rules[domain]
	if !ok {
		return RuleIdentity, false
	}
	return rule, true
}

// Len returns the number of domains in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}

// Entries returns the table sorted by domain.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	entries := make([]Entry, 0, len(t.rules))
	for domain, rule := range t.rules {
		entries = append(entries, Entry{Domain: domain, Rule: rule})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Domain < entries[j].Domain
	})
	return entries
}

// Merge returns a new table holding t's rules with overrides applied on top.
// Neither input is modified.
func (t *Table) Merge(overrides *Table) *Table {
	merged := make(map[string]Rule, t.Len()+overrides.Len())
	if t != nil {
		for domain, rule := range t.rules {
			merged[domain] = rule
		}
	}
	if overrides != nil {
		for domain, rule := range overrides.rules {
			merged[domain] = rule
		}
	}
	return &Table{rules: merged}
}

func normalizeDomainKey(domain string) string {
	return strings.ToLower(strings.TrimSpace(domain))
}
