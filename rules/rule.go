// Package rules contains the filter list rules compiler: it turns a line of an
// Adblock-style filter list into a structured rule that can be matched against
// a [Request].
package rules

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	maskWhiteList    = "@@"
	maskComment      = "!"
	maskHeader       = "[Adblock"
	optionsDelimiter = '$'
	escapeCharacter  = '\\'
)

// cosmeticRulesMarkers are the markers of element hiding and other cosmetic
// rules, which are recognized but not supported.
var cosmeticRulesMarkers = []string{
	"##",
	"#@#",
	"#?#",
	"#@?#",
	"#$#",
	"#@$#",
	"#%#",
	"#@%#",
}

// Kind is the kind of a filter list line.
type Kind uint8

// Kind values.
const (
	// KindComment is a comment, a header, or an empty line.
	KindComment Kind = iota

	// KindCosmetic is an element hiding rule.  Such rules are recognized, but
	// never matched.
	KindCosmetic

	// KindNetwork is a URL blocking or exception rule.
	KindNetwork
)

// String implements the fmt.Stringer interface for Kind.
func (k Kind) String() (s string) {
	switch k {
	case KindComment:
		return "comment"
	case KindCosmetic:
		return "cosmetic"
	case KindNetwork:
		return "network"
	default:
		return fmt.Sprintf("!bad_kind_%d", uint8(k))
	}
}

// Rule is a compiled filter list rule.  It is immutable and is safe for
// concurrent use.
type Rule struct {
	// RuleText is the original rule text without the surrounding spaces.
	RuleText string

	// Pattern is the URL pattern of a network rule, without the exception
	// marker and the options.
	Pattern string

	// regex is the compiled Pattern.  It's nil for non-network rules.
	regex *regexp.Regexp

	// opts are the rule options.
	opts ruleOptions

	// FilterListID is the identifier of the filter list the rule comes from.
	FilterListID int

	// Kind is the kind of the rule.  Only KindNetwork rules are matched.
	Kind Kind

	// Whitelist is true for the exception rules, the ones starting with "@@".
	Whitelist bool
}

// NewRule parses the line and returns a compiled rule.  Comments and cosmetic
// rules are returned with the corresponding Kind and are never matched.
//
// Network rules with an empty pattern fail with *InvalidRuleError, and the
// ones with malformed options fail with *RuleSyntaxError.
func NewRule(line string, filterListID int) (r *Rule, err error) {
	text := strings.TrimSpace(line)
	r = &Rule{
		RuleText:     text,
		FilterListID: filterListID,
	}

	switch {
	case isComment(text):
		r.Kind = KindComment

		return r, nil
	case isCosmetic(text):
		r.Kind = KindCosmetic

		return r, nil
	default:
		r.Kind = KindNetwork
	}

	pattern, whitelist := strings.CutPrefix(text, maskWhiteList)
	r.Whitelist = whitelist

	pattern, options, hasOptions := splitRuleText(pattern)
	if hasOptions {
		var o *ruleOptions
		o, err = parseOptions(options, text)
		if err != nil {
			return nil, err
		}

		r.opts = *o
	}

	r.Pattern = pattern

	re, ok := patternToRegexp(pattern)
	if !ok {
		return nil, &InvalidRuleError{RuleText: text}
	}

	// Matching is case-insensitive even with $match-case, since the shortcuts
	// are looked up in the lower-cased URL.
	r.regex, err = regexp.Compile("(?i)" + re)
	if err != nil {
		msg := fmt.Sprintf("compiling pattern: %s", err)

		return nil, &RuleSyntaxError{msg: msg, ruleText: text}
	}

	return r, nil
}

// isComment checks if the line is a comment, a filter list header, or an
// empty line.
func isComment(line string) (ok bool) {
	switch {
	case
		line == "",
		strings.HasPrefix(line, maskComment),
		strings.HasPrefix(line, maskHeader):
		return true
	default:
		return false
	}
}

// isCosmetic checks if the line is a cosmetic rule.
func isCosmetic(line string) (ok bool) {
	for _, marker := range cosmeticRulesMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}

	return false
}

// splitRuleText splits the rule text without the exception marker into the
// pattern and the options using the first unescaped options delimiter.
// Escaped delimiters in the pattern are unescaped.
func splitRuleText(text string) (pattern, options string, hasOptions bool) {
	pattern = text
	for i := 0; i < len(text); i++ {
		if text[i] == optionsDelimiter && (i == 0 || text[i-1] != escapeCharacter) {
			pattern, options, hasOptions = text[:i], text[i+1:], true

			break
		}
	}

	escaped := string([]byte{escapeCharacter, optionsDelimiter})
	pattern = strings.ReplaceAll(pattern, escaped, string(optionsDelimiter))

	return pattern, options, hasOptions
}

// String implements the fmt.Stringer interface for *Rule.
func (r *Rule) String() (s string) {
	return r.RuleText
}

// IsNetwork returns true if the rule can be matched.
func (r *Rule) IsNetwork() (ok bool) {
	return r.Kind == KindNetwork
}

// RequiredOptions returns the set of options the rule checks, except for
// $match-case and $domain.
func (r *Rule) RequiredOptions() (opts Option) {
	return r.opts.required
}

// HasOptions returns true if the rule checks any options, including $domain.
// $match-case isn't taken into account.
func (r *Rule) HasOptions() (ok bool) {
	return r.opts.required != 0 || r.opts.domains != nil
}

// MatchCase returns true if the rule has the $match-case modifier.  It's
// recorded, but not enforced by the matching.
func (r *Rule) MatchCase() (ok bool) {
	return r.opts.matchCase
}

// Domains returns the rule's $domain modifier.  A domain maps to true if the
// rule is permitted on it, and to false if the rule is restricted there.  It
// returns nil if the rule has no $domain modifier.  Callers must not modify the
// returned map.
func (r *Rule) Domains() (domains map[string]bool) {
	return r.opts.domains
}

// PermittedDomains returns the domains the rule is explicitly permitted on.
func (r *Rule) PermittedDomains() (domains []string) {
	for d, permitted := range r.opts.domains {
		if permitted {
			domains = append(domains, d)
		}
	}

	return domains
}

// RequiresDomain returns true if the rule is permitted on some domains only.
func (r *Rule) RequiresDomain() (ok bool) {
	for _, permitted := range r.opts.domains {
		if permitted {
			return true
		}
	}

	return false
}

// MatchingSupported returns true if the rule can be matched against req, that
// is, if req contains every option the rule requires.
func (r *Rule) MatchingSupported(req *Request) (ok bool) {
	switch {
	case
		r.Kind != KindNetwork,
		req.present&r.opts.required != r.opts.required,
		r.opts.domains != nil && !req.hasDomain:
		return false
	default:
		return true
	}
}

// MatchURL checks if the rule matches req.  It returns *MissingOptionError if
// req lacks an option the rule requires.  Use [Rule.MatchingSupported] to
// check that beforehand.
func (r *Rule) MatchURL(req *Request) (ok bool, err error) {
	if r.Kind != KindNetwork {
		return false, nil
	}

	if missing := r.opts.required &^ req.present; missing != 0 {
		return false, &MissingOptionError{RuleText: r.RuleText, Name: missing.String()}
	} else if r.opts.domains != nil && !req.hasDomain {
		return false, &MissingOptionError{RuleText: r.RuleText, Name: domainOption}
	}

	return r.match(req), nil
}

// Match checks if the rule matches req.  Unlike [Rule.MatchURL], the rules
// that require options req lacks never match.
func (r *Rule) Match(req *Request) (ok bool) {
	return r.MatchingSupported(req) && r.match(req)
}

// match checks the options, the domain, and the pattern of the rule against
// req.  It assumes that the rule is supported for req.
func (r *Rule) match(req *Request) (ok bool) {
	switch {
	case
		(req.values^r.opts.values)&r.opts.required != 0,
		r.opts.domains != nil && !r.matchDomain(req.domainVariants):
		return false
	default:
		return r.regex.MatchString(req.URL)
	}
}

// matchDomain checks the $domain modifier against the variants of the page
// domain.  The most specific variant the rule lists decides.  If none are
// listed, the rule only applies if it has no permitted domains.
func (r *Rule) matchDomain(variants []string) (ok bool) {
	for _, d := range variants {
		if permitted, found := r.opts.domains[d]; found {
			return permitted
		}
	}

	return !r.RequiresDomain()
}
