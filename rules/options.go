package rules

import (
	"fmt"
	"strings"

	"github.com/AdguardTeam/urlclassifier/internal/ufnet"
	"github.com/miekg/dns"
)

// Option is the enumeration of the binary rule options.  In order to save
// memory, sets of options are stored as a bit mask.
type Option uint32

// Option enumeration.
const (
	OptionScript           Option = 1 << iota // $script
	OptionImage                               // $image
	OptionStylesheet                          // $stylesheet
	OptionObject                              // $object
	OptionXmlhttprequest                      // $xmlhttprequest
	OptionObjectSubrequest                    // $object-subrequest
	OptionSubdocument                         // $subdocument
	OptionDocument                            // $document
	OptionElemhide                            // $elemhide
	OptionOther                               // $other
	OptionBackground                          // $background
	OptionXBL                                 // $xbl
	OptionPing                                // $ping
	OptionDTD                                 // $dtd
	OptionMedia                               // $media
	OptionThirdParty                          // $third-party
	OptionMatchCase                           // $match-case
	OptionCollapse                            // $collapse
	OptionDoNotTrack                          // $donottrack
)

// domainOption is the name of the only non-binary option.
const domainOption = "domain"

// knownOptions is the ordered list of the recognized binary options.
var knownOptions = []struct {
	name string
	opt  Option
}{
	{name: "script", opt: OptionScript},
	{name: "image", opt: OptionImage},
	{name: "stylesheet", opt: OptionStylesheet},
	{name: "object", opt: OptionObject},
	{name: "xmlhttprequest", opt: OptionXmlhttprequest},
	{name: "object-subrequest", opt: OptionObjectSubrequest},
	{name: "subdocument", opt: OptionSubdocument},
	{name: "document", opt: OptionDocument},
	{name: "elemhide", opt: OptionElemhide},
	{name: "other", opt: OptionOther},
	{name: "background", opt: OptionBackground},
	{name: "xbl", opt: OptionXBL},
	{name: "ping", opt: OptionPing},
	{name: "dtd", opt: OptionDTD},
	{name: "media", opt: OptionMedia},
	{name: "third-party", opt: OptionThirdParty},
	{name: "match-case", opt: OptionMatchCase},
	{name: "collapse", opt: OptionCollapse},
	{name: "donottrack", opt: OptionDoNotTrack},
}

// optionsByName maps option names to their values.
var optionsByName = func() (m map[string]Option) {
	m = make(map[string]Option, len(knownOptions))
	for _, o := range knownOptions {
		m[o.name] = o.opt
	}

	return m
}()

// ParseOption returns the option with the given name.
func ParseOption(name string) (opt Option, ok bool) {
	opt, ok = optionsByName[name]

	return opt, ok
}

// String implements the fmt.Stringer interface for Option.  Sets of options
// are printed as a comma-separated list.
func (o Option) String() (s string) {
	var names []string
	for _, ko := range knownOptions {
		if o&ko.opt != 0 {
			names = append(names, ko.name)
		}
	}

	return strings.Join(names, ",")
}

// ruleOptions is the parsed options part of a network rule.
type ruleOptions struct {
	// domains is the $domain modifier: a domain maps to true if the rule is
	// permitted on it, and to false if the rule is restricted there.  It's
	// nil if the rule has no $domain modifier.
	domains map[string]bool

	// required is the set of the options the rule checks.  $match-case is
	// never in it.
	required Option

	// values contains the required value for each option from required.
	values Option

	// matchCase is true if the rule has the $match-case modifier.
	matchCase bool
}

// parseOptions parses the options part of the rule, that is everything after
// the options delimiter.  ruleText is used for error messages.
func parseOptions(text, ruleText string) (o *ruleOptions, err error) {
	o = &ruleOptions{}
	if text == "" {
		return nil, &RuleSyntaxError{msg: "empty options", ruleText: ruleText}
	}

	var seen Option
	for _, tok := range splitOptions(text) {
		if strings.HasPrefix(tok, domainOption+"=") {
			if o.domains != nil {
				return nil, &RuleSyntaxError{msg: "duplicate $domain modifier", ruleText: ruleText}
			}

			o.domains, err = parseDomains(tok[len(domainOption)+1:], ruleText)
			if err != nil {
				return nil, err
			}

			continue
		}

		name := strings.TrimPrefix(tok, "~")
		opt, ok := ParseOption(name)
		if !ok {
			msg := fmt.Sprintf("unknown modifier %q", tok)

			return nil, &RuleSyntaxError{msg: msg, ruleText: ruleText}
		} else if seen&opt != 0 {
			msg := fmt.Sprintf("duplicate modifier %q", name)

			return nil, &RuleSyntaxError{msg: msg, ruleText: ruleText}
		}

		seen |= opt
		enabled := len(name) == len(tok)
		if opt == OptionMatchCase {
			o.matchCase = enabled

			continue
		}

		o.required |= opt
		if enabled {
			o.values |= opt
		}
	}

	return o, nil
}

// splitOptions splits the options text on the commas that are followed by a
// recognized option name or the $domain modifier.  Other commas are parts of
// the domain lists.
func splitOptions(text string) (parts []string) {
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == ',' && isOptionStart(text[i+1:]) {
			parts = append(parts, text[start:i])
			start = i + 1
		}
	}

	return append(parts, text[start:])
}

// isOptionStart returns true if s starts with an optionally negated option
// name followed by the end of the options or by the next comma.  So that
// "domain=a.com,scripts.com" isn't split.
func isOptionStart(s string) (ok bool) {
	s = strings.TrimPrefix(s, "~")
	if strings.HasPrefix(s, domainOption+"=") {
		return true
	}

	for _, o := range knownOptions {
		rest, found := strings.CutPrefix(s, o.name)
		if found && (rest == "" || rest[0] == ',') {
			return true
		}
	}

	return false
}

// parseDomains parses the value of the $domain modifier.  Domains are
// separated with '|' or ',' and can be negated with '~'.
func parseDomains(list, ruleText string) (domains map[string]bool, err error) {
	entries := strings.Split(strings.ReplaceAll(list, ",", "|"), "|")
	domains = make(map[string]bool, len(entries))
	for _, e := range entries {
		d := strings.TrimLeft(e, "~")
		permitted := len(d) == len(e)

		d = ufnet.NormalizeDomain(d)
		if _, ok := dns.IsDomainName(d); !ok || d == "" || d == "." {
			msg := fmt.Sprintf("invalid domain %q in $domain modifier", e)

			return nil, &RuleSyntaxError{msg: msg, ruleText: ruleText}
		}

		domains[d] = permitted
	}

	return domains, nil
}
