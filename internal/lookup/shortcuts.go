package lookup

import (
	"math"
	"strings"

	"github.com/AdguardTeam/urlclassifier/rules"
)

// shortcutPunct are the characters other than ASCII letters and digits that
// can be a part of a shortcut.
const shortcutPunct = "_/=.-?;,&"

// isShortcutChar returns true if c can be a part of a shortcut, that is if it's
// always matched literally.
func isShortcutChar(c byte) (ok bool) {
	switch {
	case
		'a' <= c && c <= 'z',
		'A' <= c && c <= 'Z',
		'0' <= c && c <= '9':
		return true
	default:
		return strings.IndexByte(shortcutPunct, c) != -1
	}
}

// literalRuns returns the lower-cased maximal runs of the shortcut characters
// in pattern that are at least minLen long, in the order of their appearance.
func literalRuns(pattern string, minLen int) (runs []string) {
	start := -1
	for i := 0; i <= len(pattern); i++ {
		if i < len(pattern) && isShortcutChar(pattern[i]) {
			if start == -1 {
				start = i
			}

			continue
		}

		if start != -1 && i-start >= minLen {
			runs = append(runs, strings.ToLower(pattern[start:i]))
		}

		start = -1
	}

	return runs
}

// shortcutCandidates returns the windows of the given size of every literal run
// of the pattern, run by run, from left to right.
func shortcutCandidates(pattern string, size int) (keys []string) {
	for _, run := range literalRuns(pattern, size) {
		for i := 0; i+size <= len(run); i++ {
			keys = append(keys, run[i:i+size])
		}
	}

	return keys
}

// chooseShortcut returns the first of keys that isn't in buckets yet or, if
// all are, the one with the smallest bucket.  ok is false if keys are empty.
func chooseShortcut(buckets map[string][]*rules.Rule, keys []string) (key string, ok bool) {
	minLen := math.MaxInt
	for _, k := range keys {
		n := len(buckets[k])
		if n == 0 {
			return k, true
		}

		if n < minLen {
			key, minLen = k, n
		}
	}

	return key, len(keys) > 0
}

// PlaceShortcuts puts every network rule from rs under a shortcut of one of the
// tiers, which sizes are given in the order of probing, usually largest first.
// tiers contains the map from the shortcut to the rules for each size in
// sizes.  rest are the rules that have no shortcut of any size.  Rules of
// other kinds are dropped.  The result only depends on the order of rs.
func PlaceShortcuts(
	sizes []int,
	rs []*rules.Rule,
) (tiers []map[string][]*rules.Rule, rest []*rules.Rule) {
	for _, r := range rs {
		if r.IsNetwork() {
			rest = append(rest, r)
		}
	}

	tiers = make([]map[string][]*rules.Rule, 0, len(sizes))
	for _, size := range sizes {
		buckets := map[string][]*rules.Rule{}

		var next []*rules.Rule
		for _, r := range rest {
			key, ok := chooseShortcut(buckets, shortcutCandidates(r.Pattern, size))
			if !ok {
				next = append(next, r)

				continue
			}

			buckets[key] = append(buckets[key], r)
		}

		tiers = append(tiers, buckets)
		rest = next
	}

	return tiers, rest
}
