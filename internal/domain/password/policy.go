// Package password holds the password strength policy applied to staff accounts.
package password

import (
	"strings"
	"unicode/utf8"
)

// Rule names a single password requirement.
type Rule string

const (
	RuleEmpty     Rule = "empty"
	RuleLength    Rule = "length"
	RuleUppercase Rule = "uppercase"
	RuleLowercase Rule = "lowercase"
	RuleDigit     Rule = "digit"
	RuleSymbol    Rule = "symbol"
)

// MinLength is the minimum number of characters a password must have.
const MinLength = 8

// Symbols lists the characters accepted by the symbol rule.
const Symbols = `!@#$%^&*(),.?":{}|<>`

// Violation describes the first rule a password failed.
type Violation struct {
	Rule       Rule
	Message    string
	Suggestion string
}

func (v *Violation) Error() string {
	return v.Message
}

type check struct {
	rule       Rule
	message    string
	suggestion string
	ok         func(string) bool
}

// checks run in order; the first failure wins.
var checks = []check{
	{
		rule:       RuleEmpty,
		message:    "password must not be empty",
		suggestion: "choose a password with at least 8 characters",
		ok:         func(p string) bool { return p != "" },
	},
	{
		rule:       RuleLength,
		message:    "password must be at least 8 characters long",
		suggestion: "add more characters to the password",
		ok:         func(p string) bool { return utf8.RuneCountInString(p) >= MinLength },
	},
	{
		rule:       RuleUppercase,
		message:    "password must contain at least one uppercase letter",
		suggestion: "add an uppercase letter (A-Z)",
		ok:         func(p string) bool { return containsRange(p, 'A', 'Z') },
	},
	{
		rule:       RuleLowercase,
		message:    "password must contain at least one lowercase letter",
		suggestion: "add a lowercase letter (a-z)",
		ok:         func(p string) bool { return containsRange(p, 'a', 'z') },
	},
	{
		rule:       RuleDigit,
		message:    "password must contain at least one number",
		suggestion: "add a digit (0-9)",
		ok:         func(p string) bool { return containsRange(p, '0', '9') },
	},
	{
		rule:       RuleSymbol,
		message:    "password must contain at least one special character",
		suggestion: "add one of " + Symbols,
		ok:         func(p string) bool { return strings.ContainsAny(p, Symbols) },
	},
}

// Validate returns nil when the password satisfies every rule.
func Validate(password string) *Violation {
	for _, c := range checks {
		if !c.ok(password) {
			return &Violation{Rule: c.rule, Message: c.message, Suggestion: c.suggestion}
		}
	}

	return nil
}

func containsRange(s string, lo, hi rune) bool {
	return strings.ContainsFunc(s, func(r rune) bool { return r >= lo && r <= hi })
}
