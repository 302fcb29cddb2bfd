package rules

import (
	"regexp"
	"strings"
)

// Special characters of the basic rule pattern syntax.
const (
	// MaskStartURL anchors the pattern to the start of the domain.
	MaskStartURL = "||"

	// MaskPipe anchors the pattern to the start or the end of the URL.
	MaskPipe = "|"

	// MaskSeparator matches a separator character or the end of the URL.
	MaskSeparator = '^'

	// MaskAnyCharacter matches any sequence of characters.
	MaskAnyCharacter = '*'
)

// Regular expression parts the pattern masks are translated into.
const (
	// RegexSeparator matches anything but a letter, a digit, or one of
	// "_-.%", or the end of the string.
	RegexSeparator = `(?:[^\w\d_\-.%]|$)`

	// RegexAnyCharacter matches any sequence of characters.
	RegexAnyCharacter = `.*`

	// RegexStartURL matches the optional scheme and the optional subdomains
	// before the domain.  It's based on the URI regular expression from
	// RFC 3986, appendix B.
	RegexStartURL = `^(?:[^:/?#]+:)?(?://(?:[^/?#]*\.)?)?`

	// RegexStartString anchors to the start of the URL.
	RegexStartString = `^`

	// RegexEndString anchors to the end of the URL.
	RegexEndString = `$`
)

// patternToRegexp translates the basic rule pattern into a regular expression.
// ok is false if the pattern is empty after the anchors are stripped.
//
// The pattern is translated in a single pass, so that the generated regular
// expression syntax is never escaped again.
func patternToRegexp(pattern string) (re string, ok bool) {
	var prefix, suffix string
	switch {
	case strings.HasPrefix(pattern, MaskStartURL):
		prefix = RegexStartURL
		pattern = pattern[len(MaskStartURL):]
	case strings.HasPrefix(pattern, MaskPipe):
		prefix = RegexStartString
		pattern = pattern[len(MaskPipe):]
	}

	if strings.HasSuffix(pattern, MaskPipe) {
		suffix = RegexEndString
		pattern = pattern[:len(pattern)-len(MaskPipe)]
	}

	if pattern == "" {
		return "", false
	}

	var sb strings.Builder
	sb.WriteString(prefix)
	for _, c := range pattern {
		switch c {
		case MaskSeparator:
			sb.WriteString(RegexSeparator)
		case MaskAnyCharacter:
			sb.WriteString(RegexAnyCharacter)
		default:
			// Other pipes are not anchors.
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	sb.WriteString(suffix)

	return sb.String(), true
}
