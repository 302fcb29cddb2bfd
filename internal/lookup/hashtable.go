package lookup

import (
	"maps"
	"slices"

	"github.com/AdguardTeam/urlclassifier/internal/rollhash"
	"github.com/AdguardTeam/urlclassifier/rules"
)

// HashTable is a [ShortcutsTable] keyed by the rolling hashes of the shortcuts
// instead of the shortcuts themselves.  The rules of the shortcuts with the
// same hash are merged into a single [RuleSet], so a hash collision may only
// add the rules to check, not lose any.
type HashTable struct {
	hash *rollhash.Hash

	// sets maps the hashes of the shortcuts to their rule sets.
	sets map[uint32]*RuleSet

	rulesCount   int
	maxBucketLen int
}

// type check
var _ Table = (*HashTable)(nil)

// NewHashTable creates a new instance of the HashTable from the rules placed
// under shortcuts of length shortcutLen.
func NewHashTable(shortcutLen int, buckets map[string][]*rules.Rule) (t *HashTable) {
	h := rollhash.New(shortcutLen)

	merged := make(map[uint32][]*rules.Rule, len(buckets))
	for _, key := range slices.Sorted(maps.Keys(buckets)) {
		v, ok := h.Compute(key, 0)
		if !ok {
			// Shouldn't happen, since the keys are exactly shortcutLen long.
			continue
		}

		merged[v] = append(merged[v], buckets[key]...)
	}

	t = &HashTable{
		hash: h,
		sets: make(map[uint32]*RuleSet, len(merged)),
	}

	for v, rs := range merged {
		set := NewRuleSet(rs)
		t.sets[v] = set
		t.rulesCount += set.Len()
		t.maxBucketLen = max(t.maxBucketLen, set.Len())
	}

	return t
}

// ShortcutLen implements the [Table] interface for *HashTable.
func (t *HashTable) ShortcutLen() (n int) {
	return t.hash.Size()
}

// Len implements the [Table] interface for *HashTable.
func (t *HashTable) Len() (n int) {
	return len(t.sets)
}

// RulesCount implements the [Table] interface for *HashTable.
func (t *HashTable) RulesCount() (n int) {
	return t.rulesCount
}

// MaxBucketLen implements the [Table] interface for *HashTable.
func (t *HashTable) MaxBucketLen() (n int) {
	return t.maxBucketLen
}

// Range implements the [Table] interface for *HashTable.
func (t *HashTable) Range(urlLowerCase string, f func(rs *RuleSet) (cont bool)) {
	var v uint32
	var ok bool
	for i := 0; ; i++ {
		v, ok = t.hash.Extend(urlLowerCase, i, v)
		if !ok {
			return
		}

		rs, found := t.sets[v]
		if found && !f(rs) {
			return
		}
	}
}
