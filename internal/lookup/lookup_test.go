package lookup_test

import (
	"testing"

	"github.com/AdguardTeam/urlclassifier/rules"
	"github.com/stretchr/testify/require"
)

// Common domains for tests.
const (
	testDomain    = "domain.example"
	testDomainSub = "sub.domain.example"
	testDomainOth = "other.example"
)

// Common rules for tests.
const (
	testRule            = "||ads.example^"
	testRuleException   = "@@||ads.example/allowed^"
	testRuleGated       = "||gated.example^$script"
	testRuleGatedExc    = "@@||gated.example^$~third-party"
	testRuleWithDomain  = "||tracker.example^$domain=" + testDomain
	testRuleExcDomain   = "@@||tracker.example/ok^$domain=" + testDomainSub
	testRuleNotOnDomain = "||negated.example^$domain=~" + testDomain
	testRuleComment     = "! comment"
	testRuleCosmetic    = testDomain + "##.ad"
)

// newRules is a helper that compiles the rules from texts.
func newRules(tb testing.TB, texts ...string) (rs []*rules.Rule) {
	tb.Helper()

	for _, text := range texts {
		r, err := rules.NewRule(text, 1)
		require.NoError(tb, err)

		rs = append(rs, r)
	}

	return rs
}

// newRequest is a helper that creates a request for url from the page on
// domain, if it's not empty, with the given options set.
func newRequest(url, domain string, opts map[rules.Option]bool) (req *rules.Request) {
	req = rules.NewRequest(url)
	if domain != "" {
		req.SetDomain(domain)
	}

	for opt, v := range opts {
		req.Set(opt, v)
	}

	return req
}

// ruleTexts returns the texts of rs.
func ruleTexts(rs []*rules.Rule) (texts []string) {
	for _, r := range rs {
		texts = append(texts, r.RuleText)
	}

	return texts
}
