package rules

import (
	"fmt"

	"github.com/AdguardTeam/golibs/errors"
)

// ErrUnknownOption is returned when an option name is not one of the
// recognized binary options.
const ErrUnknownOption errors.Error = "unknown option"

// InvalidRuleError is returned when the pattern of a network rule is empty
// after stripping the exception marker, the options and the anchors.
type InvalidRuleError struct {
	// RuleText is the original rule text.
	RuleText string
}

// type check
var _ error = (*InvalidRuleError)(nil)

// Error implements the error interface for *InvalidRuleError.
func (e *InvalidRuleError) Error() (msg string) {
	return fmt.Sprintf("invalid rule %q: empty pattern", e.RuleText)
}

// RuleSyntaxError represents an error while parsing a filtering rule.
type RuleSyntaxError struct {
	msg      string
	ruleText string
}

// type check
var _ error = (*RuleSyntaxError)(nil)

// Error implements the error interface for *RuleSyntaxError.
func (e *RuleSyntaxError) Error() (msg string) {
	return fmt.Sprintf("syntax error: %s, rule: %s", e.msg, e.ruleText)
}

// MissingOptionError is returned by [Rule.MatchURL] when the request does not
// supply an option the rule requires.
type MissingOptionError struct {
	// RuleText is the original rule text.
	RuleText string

	// Name is the name of the missing option, "domain" for the $domain
	// modifier.
	Name string
}

// type check
var _ error = (*MissingOptionError)(nil)

// Error implements the error interface for *MissingOptionError.
func (e *MissingOptionError) Error() (msg string) {
	return fmt.Sprintf("rule %q requires option %s", e.RuleText, e.Name)
}
