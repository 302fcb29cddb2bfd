package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatternToRegexp(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		pattern string
		want    string
		wantOK  bool
	}{{
		name:    "empty",
		pattern: "",
		want:    "",
		wantOK:  false,
	}, {
		name:    "start_url_only",
		pattern: "||",
		want:    "",
		wantOK:  false,
	}, {
		name:    "pipe_only",
		pattern: "|",
		want:    "",
		wantOK:  false,
	}, {
		name:    "start_url",
		pattern: "||example.org^",
		want:    RegexStartURL + `example\.org` + RegexSeparator,
		wantOK:  true,
	}, {
		name:    "start_and_end",
		pattern: "|http://a.b/|",
		want:    RegexStartString + `http://a\.b/` + RegexEndString,
		wantOK:  true,
	}, {
		name:    "wildcard",
		pattern: "/ad*/x",
		want:    "/ad" + RegexAnyCharacter + "/x",
		wantOK:  true,
	}, {
		name:    "literal_pipe",
		pattern: "a|b",
		want:    `a\|b`,
		wantOK:  true,
	}, {
		name:    "meta",
		pattern: "?a=(b)+[c]",
		want:    `\?a=\(b\)\+\[c\]`,
		wantOK:  true,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok := patternToRegexp(tc.pattern)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSplitRuleText(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		text        string
		wantPattern string
		wantOptions string
		wantHasOpts bool
	}{{
		name:        "no_options",
		text:        "||example.org^",
		wantPattern: "||example.org^",
		wantOptions: "",
		wantHasOpts: false,
	}, {
		name:        "options",
		text:        "||example.org^$third-party",
		wantPattern: "||example.org^",
		wantOptions: "third-party",
		wantHasOpts: true,
	}, {
		name:        "first_delimiter",
		text:        "/a$b$script",
		wantPattern: "/a",
		wantOptions: "b$script",
		wantHasOpts: true,
	}, {
		name:        "escaped",
		text:        `/a\$b$script`,
		wantPattern: "/a$b",
		wantOptions: "script",
		wantHasOpts: true,
	}, {
		name:        "empty_options",
		text:        "/a$",
		wantPattern: "/a",
		wantOptions: "",
		wantHasOpts: true,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			pattern, options, hasOpts := splitRuleText(tc.text)
			assert.Equal(t, tc.wantPattern, pattern)
			assert.Equal(t, tc.wantOptions, options)
			assert.Equal(t, tc.wantHasOpts, hasOpts)
		})
	}
}

func TestSplitOptions(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		text string
		want []string
	}{{
		name: "single",
		text: "script",
		want: []string{"script"},
	}, {
		name: "negated",
		text: "script,~third-party",
		want: []string{"script", "~third-party"},
	}, {
		name: "domain_commas",
		text: "domain=a.com,b.com,~c.com,image",
		want: []string{"domain=a.com,b.com,~c.com", "image"},
	}, {
		name: "domain_option_prefix",
		text: "domain=a.com,scripts.com",
		want: []string{"domain=a.com,scripts.com"},
	}, {
		name: "domain_after",
		text: "image,domain=a.com",
		want: []string{"image", "domain=a.com"},
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, splitOptions(tc.text))
		})
	}
}
