package normalize

import (
	"strings"

	"github.com/gitshopapp/emailnorm/internal/providers"
)

// truncateAt keeps the part of s before the first sep. s is returned
// unchanged when sep does not occur.
func truncateAt(s, sep string) string {
	before, _, _ := strings.Cut(s, sep)
	return before
}

// StripAggressive removes any '+' tag and then any '-' tag from local.
func StripAggressive(local string) string {
	return truncateAt(truncateAt(local, "+"), "-")
}

// ApplyRule strips the sub-address tag from local according to rule.
func ApplyRule(rule providers.Rule, local string) string {
	switch rule {
	case providers.RuleStripAfterPlusThenDot:
		return strings.ReplaceAll(truncateAt(local, "+"), ".", "")
	case providers.RuleStripAfterPlus:
		return truncateAt(local, "+")
	case providers.RuleStripAfterDash:
		return truncateAt(local, "-")
	default:
		return local
	}
}
