package scoring

import (
	"strings"

	"github.com/mikey/phish-filter/internal/core"
)

// Rule is a single independent detector. Evaluate returns nil when the rule
// does not trigger. Rules must not depend on each other's output.
type Rule interface {
	Name() string
	Evaluate(email *core.Email) *core.Indicator
}

// SenderDomain returns the lower-cased text after the last @ of the sender,
// or an empty string when there is none
func SenderDomain(sender string) string {
	at := strings.LastIndex(sender, "@")
	if at < 0 {
		return ""
	}
	return strings.ToLower(sender[at+1:])
}

// NormalizeLookAlikes replaces every look-alike character with the letter it
// imitates. Each character is mapped once, so replacements never cascade.
func NormalizeLookAlikes(domain string) string {
	return strings.Map(func(r rune) rune {
		if letter, ok := LookAlikes[r]; ok {
			return letter
		}
		return r
	}, domain)
}
