// Package lookup implements index structures that we use to improve matching
// speed in the engine.
package lookup

// Table is a shortcut index of a single tier: a map from the shortcut key of a
// fixed length to the rule set of the rules placed under that key.
type Table interface {
	// ShortcutLen returns the length of the shortcut keys.
	ShortcutLen() (n int)

	// Len returns the number of rule sets in the table.
	Len() (n int)

	// RulesCount returns the number of rules in the table.
	RulesCount() (n int)

	// MaxBucketLen returns the number of rules in the largest rule set.
	MaxBucketLen() (n int)

	// Range calls f for the rule set of every window of urlLowerCase, which
	// must be the lower-cased URL of the request, that has one, in the order of
	// the windows.  Range stops if f returns false.  The same rule set may be
	// passed to f several times.
	Range(urlLowerCase string, f func(rs *RuleSet) (cont bool))
}
