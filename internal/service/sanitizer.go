package service

import (
	"regexp"
	"strings"

	"legalrag/internal/util"
)

// MaxQuestionLength caps sanitized questions, in runes.
const MaxQuestionLength = 500

// Rule is one substitution applied to user input before it reaches a prompt.
type Rule struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// DefaultRules is the best-effort denylist of known instruction-override
// phrasings. It is not a security boundary: anything not matching a rule
// passes through unchanged.
func DefaultRules() []Rule {
	patterns := []string{
		`(?i)ignore\s+(all\s+)?(previous|above|prior)\s+instructions?`,
		`(?i)disregard\s+(all\s+)?(previous|above|prior)\s+instructions?`,
		`(?i)forget\s+(all\s+)?(previous|above)\s+instructions?`,
		`(?i)new\s+instructions?:`,
		`(?i)updated\s+instructions?:`,
		`(?i)system\s*:`,
		`(?i)you\s+are\s+now`,
		`(?i)act\s+as\s+a?`,
		`(?i)pretend\s+to\s+be`,
		`(?i)roleplay\s+as`,
		`(?i)<\s*system\s*>`,
		`(?i)<\s*/?\s*instructions?\s*>`,
		`(?i)\[system\]`,
		`(?i)override\s+rules?`,
	}
	rules := make([]Rule, len(patterns))
	for i, p := range patterns {
		rules[i] = Rule{Pattern: regexp.MustCompile(p), Replacement: ""}
	}
	return rules
}

// Sanitize applies the rules in order, collapses whitespace runs to single
// spaces and truncates the result to MaxQuestionLength runes.
func Sanitize(input string, rules []Rule) string {
	out := strings.TrimSpace(input)
	for _, r := range rules {
		out = r.Pattern.ReplaceAllString(out, r.Replacement)
	}
	out = strings.Join(strings.Fields(out), " ")
	return util.TruncateRunes(out, MaxQuestionLength)
}
