package lookup

import (
	"github.com/AdguardTeam/urlclassifier/rules"
)

// State is the result of checking a request against a [RuleSet].
type State int8

// State values.
const (
	// StateBlacklisted means that a blocking rule matched the request and no
	// exception rule did.
	StateBlacklisted State = -1

	// StateUnknown means that no rule matched the request.
	StateUnknown State = 0

	// StateWhitelisted means that an exception rule matched the request.  It
	// overrides any blocking rule.
	StateWhitelisted State = 1
)

// Partition is the result of dividing the rules into the groups by the options
// they require.  Every network rule belongs to exactly one group.
type Partition struct {
	// DomainBlacklist maps each domain to the blocking rules permitted on it.
	DomainBlacklist map[string][]*rules.Rule

	// DomainWhitelist maps each domain to the exception rules permitted on it.
	DomainWhitelist map[string][]*rules.Rule

	// BasicBlacklist are the blocking rules without options.
	BasicBlacklist []*rules.Rule

	// BasicWhitelist are the exception rules without options.
	BasicWhitelist []*rules.Rule

	// GatedBlacklist are the blocking rules that have options, but are not
	// permitted on some domains only.
	GatedBlacklist []*rules.Rule

	// GatedWhitelist are the exception rules that have options, but are not
	// permitted on some domains only.
	GatedWhitelist []*rules.Rule
}

// PartitionRules divides the network rules from rs into groups.  A rule that
// is permitted on several domains is put into the domain group under each of
// them.  Rules of other kinds are dropped.
func PartitionRules(rs []*rules.Rule) (p *Partition) {
	p = &Partition{
		DomainBlacklist: map[string][]*rules.Rule{},
		DomainWhitelist: map[string][]*rules.Rule{},
	}

	for _, r := range rs {
		if !r.IsNetwork() {
			continue
		}

		switch {
		case r.RequiresDomain():
			byDomain := p.DomainBlacklist
			if r.Whitelist {
				byDomain = p.DomainWhitelist
			}

			for _, d := range r.PermittedDomains() {
				byDomain[d] = append(byDomain[d], r)
			}
		case r.HasOptions():
			if r.Whitelist {
				p.GatedWhitelist = append(p.GatedWhitelist, r)
			} else {
				p.GatedBlacklist = append(p.GatedBlacklist, r)
			}
		default:
			if r.Whitelist {
				p.BasicWhitelist = append(p.BasicWhitelist, r)
			} else {
				p.BasicBlacklist = append(p.BasicBlacklist, r)
			}
		}
	}

	return p
}

// ruleGroup is the rules of a [RuleSet] of either blocking or exception rules.
type ruleGroup struct {
	byDomain map[string][]*rules.Rule
	basic    []*rules.Rule
	gated    []*rules.Rule
}

// RuleSet answers whether a request is blocked or allowed by a set of rules.
// It is immutable and is safe for concurrent use.
type RuleSet struct {
	blacklist *ruleGroup
	whitelist *ruleGroup
	len       int
}

// NewRuleSet returns a rule set of the network rules from rs.
func NewRuleSet(rs []*rules.Rule) (s *RuleSet) {
	p := PartitionRules(rs)

	n := 0
	for _, r := range rs {
		if r.IsNetwork() {
			n++
		}
	}

	return &RuleSet{
		blacklist: newRuleGroup(p.BasicBlacklist, p.GatedBlacklist, p.DomainBlacklist),
		whitelist: newRuleGroup(p.BasicWhitelist, p.GatedWhitelist, p.DomainWhitelist),
		len:       n,
	}
}

// newRuleGroup returns a rule group or nil if there are no rules.
func newRuleGroup(basic, gated []*rules.Rule, byDomain map[string][]*rules.Rule) (g *ruleGroup) {
	if len(basic) == 0 && len(gated) == 0 && len(byDomain) == 0 {
		return nil
	}

	if len(byDomain) == 0 {
		byDomain = nil
	}

	return &ruleGroup{
		byDomain: byDomain,
		basic:    basic,
		gated:    gated,
	}
}

// Len returns the number of rules in the set.
func (s *RuleSet) Len() (n int) {
	return s.len
}

// IsWhitelisted returns true if any exception rule matches req.
func (s *RuleSet) IsWhitelisted(req *rules.Request) (ok bool) {
	return s.whitelist.matchAny(req)
}

// IsBlacklisted returns true if any blocking rule matches req.
func (s *RuleSet) IsBlacklisted(req *rules.Request) (ok bool) {
	return s.blacklist.matchAny(req)
}

// IsBlacklistedWithItems is like [RuleSet.IsBlacklisted] but also returns the
// texts of all the blocking rules matching req.
func (s *RuleSet) IsBlacklistedWithItems(req *rules.Request) (ok bool, items []string) {
	s.blacklist.rangeMatching(req, func(r *rules.Rule) (cont bool) {
		items = append(items, r.RuleText)

		return true
	})

	return len(items) > 0, items
}

// Check returns the state of req according to the rules of the set.
func (s *RuleSet) Check(req *rules.Request) (st State) {
	switch {
	case s.IsWhitelisted(req):
		return StateWhitelisted
	case s.IsBlacklisted(req):
		return StateBlacklisted
	default:
		return StateUnknown
	}
}

// CheckWithItems is like [RuleSet.Check] but also returns the texts of all the
// blocking rules matching req if the state is [StateBlacklisted].
func (s *RuleSet) CheckWithItems(req *rules.Request) (st State, items []string) {
	if s.IsWhitelisted(req) {
		return StateWhitelisted, nil
	}

	var blacklisted bool
	blacklisted, items = s.IsBlacklistedWithItems(req)
	if blacklisted {
		return StateBlacklisted, items
	}

	return StateUnknown, nil
}

// matchAny returns true if any rule of g matches req.  g may be nil.
func (g *ruleGroup) matchAny(req *rules.Request) (ok bool) {
	g.rangeMatching(req, func(_ *rules.Rule) (cont bool) {
		ok = true

		return false
	})

	return ok
}

// rangeMatching calls f for each rule of g that matches req, until f returns
// false.  Each rule is passed at most once.  g may be nil.
func (g *ruleGroup) rangeMatching(req *rules.Request, f func(r *rules.Rule) (cont bool)) {
	if g == nil {
		return
	}

	for _, r := range g.basic {
		if r.Match(req) && !f(r) {
			return
		}
	}

	for _, r := range g.gated {
		if r.Match(req) && !f(r) {
			return
		}
	}

	if g.byDomain == nil || !req.HasDomain() {
		return
	}

	variants := req.DomainVariants()
	for i, d := range variants {
		for _, r := range g.byDomain[d] {
			// The rule is decided by the most specific variant it lists, so
			// it has already been checked if it lists a more specific one.
			if listsAny(r, variants[:i]) {
				continue
			}

			if r.Match(req) && !f(r) {
				return
			}
		}
	}
}

// listsAny returns true if any of domains is in the $domain modifier of r.
func listsAny(r *rules.Rule, domains []string) (ok bool) {
	ruleDomains := r.Domains()
	for _, d := range domains {
		if _, ok = ruleDomains[d]; ok {
			return true
		}
	}

	return false
}
