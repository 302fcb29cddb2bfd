package lookup

import (
	"github.com/AdguardTeam/urlclassifier/rules"
)

// ShortcutsTable is a table that relies on the rule "shortcuts" to quickly
// find the rules that may match a URL.  Here's how it works:
//
//  1. Each rule gets a lower-cased literal part of its pattern of the table's
//     shortcut length, see [PlaceShortcuts].  The rules with the same shortcut
//     are compiled into a single [RuleSet].
//  2. When we match a request, we take all substrings of the shortcut length
//     from the lower-cased URL and check if there are any rule sets for them.
//
// Only the URLs that contain the shortcut can match a rule, so the other rules
// are never checked.
type ShortcutsTable struct {
	// sets maps the shortcuts to their rule sets.
	sets map[string]*RuleSet

	shortcutLen  int
	rulesCount   int
	maxBucketLen int
}

// type check
var _ Table = (*ShortcutsTable)(nil)

// NewShortcutsTable creates a new instance of the ShortcutsTable from the
// rules placed under shortcuts of length shortcutLen.
func NewShortcutsTable(shortcutLen int, buckets map[string][]*rules.Rule) (t *ShortcutsTable) {
	t = &ShortcutsTable{
		sets:        make(map[string]*RuleSet, len(buckets)),
		shortcutLen: shortcutLen,
	}

	for key, rs := range buckets {
		set := NewRuleSet(rs)
		t.sets[key] = set
		t.rulesCount += set.Len()
		t.maxBucketLen = max(t.maxBucketLen, set.Len())
	}

	return t
}

// ShortcutLen implements the [Table] interface for *ShortcutsTable.
func (t *ShortcutsTable) ShortcutLen() (n int) {
	return t.shortcutLen
}

// Len implements the [Table] interface for *ShortcutsTable.
func (t *ShortcutsTable) Len() (n int) {
	return len(t.sets)
}

// RulesCount implements the [Table] interface for *ShortcutsTable.
func (t *ShortcutsTable) RulesCount() (n int) {
	return t.rulesCount
}

// MaxBucketLen implements the [Table] interface for *ShortcutsTable.
func (t *ShortcutsTable) MaxBucketLen() (n int) {
	return t.maxBucketLen
}

// Range implements the [Table] interface for *ShortcutsTable.
func (t *ShortcutsTable) Range(urlLowerCase string, f func(rs *RuleSet) (cont bool)) {
	for i := 0; i+t.shortcutLen <= len(urlLowerCase); i++ {
		rs, ok := t.sets[urlLowerCase[i:i+t.shortcutLen]]
		if ok && !f(rs) {
			return
		}
	}
}
