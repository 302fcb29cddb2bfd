package lookup_test

import (
	"testing"

	"github.com/AdguardTeam/urlclassifier/internal/lookup"
	"github.com/AdguardTeam/urlclassifier/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionRules(t *testing.T) {
	t.Parallel()

	rs := newRules(
		t,
		testRule,
		testRuleException,
		testRuleGated,
		testRuleGatedExc,
		testRuleWithDomain,
		testRuleExcDomain,
		testRuleNotOnDomain,
		testRuleComment,
		testRuleCosmetic,
		"||multi.example^$domain=a.example|~b.a.example|c.example",
	)

	p := lookup.PartitionRules(rs)
	require.NotNil(t, p)

	assert.Equal(t, []string{testRule}, ruleTexts(p.BasicBlacklist))
	assert.Equal(t, []string{testRuleException}, ruleTexts(p.BasicWhitelist))
	assert.Equal(t, []string{testRuleGated, testRuleNotOnDomain}, ruleTexts(p.GatedBlacklist))
	assert.Equal(t, []string{testRuleGatedExc}, ruleTexts(p.GatedWhitelist))

	require.Len(t, p.DomainBlacklist, 3)

	assert.Equal(t, []string{testRuleWithDomain}, ruleTexts(p.DomainBlacklist[testDomain]))
	assert.Len(t, p.DomainBlacklist["a.example"], 1)
	assert.Len(t, p.DomainBlacklist["c.example"], 1)
	assert.NotContains(t, p.DomainBlacklist, "b.a.example")

	require.Len(t, p.DomainWhitelist, 1)

	assert.Equal(t, []string{testRuleExcDomain}, ruleTexts(p.DomainWhitelist[testDomainSub]))
}

func TestRuleSet_Check(t *testing.T) {
	t.Parallel()

	s := lookup.NewRuleSet(newRules(
		t,
		testRule,
		testRuleException,
		testRuleGated,
		testRuleGatedExc,
		testRuleWithDomain,
		testRuleExcDomain,
		testRuleNotOnDomain,
		testRuleComment,
	))

	assert.Equal(t, 7, s.Len())

	testCases := []struct {
		opts   map[rules.Option]bool
		name   string
		url    string
		domain string
		want   lookup.State
	}{{
		opts:   nil,
		name:   "no_match",
		url:    "http://example.org/",
		domain: "",
		want:   lookup.StateUnknown,
	}, {
		opts:   nil,
		name:   "basic",
		url:    "http://ads.example/banner.js",
		domain: "",
		want:   lookup.StateBlacklisted,
	}, {
		opts:   nil,
		name:   "basic_exception",
		url:    "http://ads.example/allowed/x.js",
		domain: "",
		want:   lookup.StateWhitelisted,
	}, {
		opts:   nil,
		name:   "gated_unsupported",
		url:    "http://gated.example/x.js",
		domain: "",
		want:   lookup.StateUnknown,
	}, {
		opts:   map[rules.Option]bool{rules.OptionScript: true},
		name:   "gated",
		url:    "http://gated.example/x.js",
		domain: "",
		want:   lookup.StateBlacklisted,
	}, {
		opts: map[rules.Option]bool{
			rules.OptionScript:     true,
			rules.OptionThirdParty: false,
		},
		name:   "gated_exception",
		url:    "http://gated.example/x.js",
		domain: "",
		want:   lookup.StateWhitelisted,
	}, {
		opts:   nil,
		name:   "domain_unsupported",
		url:    "http://tracker.example/",
		domain: "",
		want:   lookup.StateUnknown,
	}, {
		opts:   nil,
		name:   "domain",
		url:    "http://tracker.example/",
		domain: testDomain,
		want:   lookup.StateBlacklisted,
	}, {
		opts:   nil,
		name:   "domain_subdomain",
		url:    "http://tracker.example/ok/",
		domain: "www." + testDomain,
		want:   lookup.StateBlacklisted,
	}, {
		opts:   nil,
		name:   "domain_exception",
		url:    "http://tracker.example/ok/",
		domain: testDomainSub,
		want:   lookup.StateWhitelisted,
	}, {
		opts:   nil,
		name:   "domain_other",
		url:    "http://tracker.example/",
		domain: testDomainOth,
		want:   lookup.StateUnknown,
	}, {
		opts:   nil,
		name:   "negated_domain",
		url:    "http://negated.example/",
		domain: testDomainOth,
		want:   lookup.StateBlacklisted,
	}, {
		opts:   nil,
		name:   "negated_domain_excluded",
		url:    "http://negated.example/",
		domain: testDomainSub,
		want:   lookup.StateUnknown,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := newRequest(tc.url, tc.domain, tc.opts)
			assert.Equal(t, tc.want, s.Check(req))

			st, items := s.CheckWithItems(req)
			assert.Equal(t, tc.want, st)
			assert.Equal(t, tc.want == lookup.StateBlacklisted, len(items) > 0)

			assert.Equal(t, tc.want == lookup.StateWhitelisted, s.IsWhitelisted(req))
		})
	}
}

func TestRuleSet_IsBlacklistedWithItems(t *testing.T) {
	t.Parallel()

	const (
		ruleA     = "||ads.example^"
		ruleB     = "/banner"
		ruleMulti = "/banner$domain=domain.example|sub.domain.example"
		ruleNeg   = "||ads.example^$domain=domain.example|~sub.domain.example"
	)

	s := lookup.NewRuleSet(newRules(t, ruleA, ruleB, ruleMulti, ruleNeg, "/nomatch"))

	req := newRequest("http://ads.example/banner", "a.sub.domain.example", nil)

	ok, items := s.IsBlacklistedWithItems(req)
	assert.True(t, ok)
	assert.ElementsMatch(t, []string{ruleA, ruleB, ruleMulti}, items)
	assert.True(t, s.IsBlacklisted(req))

	req = newRequest("http://ads.example/banner", testDomain, nil)

	ok, items = s.IsBlacklistedWithItems(req)
	assert.True(t, ok)
	assert.ElementsMatch(t, []string{ruleA, ruleB, ruleMulti, ruleNeg}, items)

	ok, items = s.IsBlacklistedWithItems(newRequest("http://example.org/", testDomain, nil))
	assert.False(t, ok)
	assert.Empty(t, items)
}

func TestRuleSet_empty(t *testing.T) {
	t.Parallel()

	s := lookup.NewRuleSet(newRules(t, testRuleComment, testRuleCosmetic))
	req := newRequest("http://ads.example/", testDomain, nil)

	assert.Zero(t, s.Len())
	assert.False(t, s.IsWhitelisted(req))
	assert.False(t, s.IsBlacklisted(req))
	assert.Equal(t, lookup.StateUnknown, s.Check(req))
}

func BenchmarkRuleSet_Check(b *testing.B) {
	s := lookup.NewRuleSet(newRules(
		b,
		testRule,
		testRuleException,
		testRuleGated,
		testRuleGatedExc,
		testRuleWithDomain,
		testRuleExcDomain,
		testRuleNotOnDomain,
	))

	req := newRequest("http://tracker.example/ok/", testDomainSub, map[rules.Option]bool{
		rules.OptionScript:     true,
		rules.OptionThirdParty: true,
	})

	var st lookup.State

	b.ReportAllocs()
	for b.Loop() {
		st = s.Check(req)
	}

	assert.Equal(b, lookup.StateWhitelisted, st)

	// Most recent results:
	//
	// goos: linux
	// goarch: amd64
	// pkg: github.com/AdguardTeam/urlclassifier/internal/lookup
	// cpu: AMD Ryzen 7 PRO 4750U with Radeon Graphics
	// BenchmarkRuleSet_Check-16    	 1000000	      1127 ns/op	      48 B/op	       2 allocs/op
}
