package filterlist

import (
	"fmt"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/urlclassifier/rules"
)

// RuleStorage combines several rule lists with distinct identifiers.  It can be
// scanned using a [RuleStorageScanner].
type RuleStorage struct {
	// lists is an array of rules lists which can be accessed using this
	// RuleStorage.
	lists []RuleList
}

// NewRuleStorage creates a new instance of the RuleStorage and validates the
// list of rules specified.
func NewRuleStorage(lists []RuleList) (s *RuleStorage, err error) {
	ids := make(map[int]struct{}, len(lists))
	for i, list := range lists {
		id := list.GetID()
		if _, ok := ids[id]; ok {
			return nil, fmt.Errorf("list at index %d: duplicate list id: %d", i, id)
		}

		ids[id] = struct{}{}
	}

	return &RuleStorage{
		lists: lists,
	}, nil
}

// NewRuleStorageScanner creates a new instance of RuleStorageScanner.  It can
// be used to read and parse all the storage contents.  c must not be nil.
func (s *RuleStorage) NewRuleStorageScanner(c *ScannerConfig) (sc *RuleStorageScanner) {
	scanners := make([]*RuleScanner, 0, len(s.lists))
	for _, list := range s.lists {
		scanners = append(scanners, list.NewScanner(c))
	}

	return &RuleStorageScanner{
		scanners: scanners,
	}
}

// Rules scans every list of the storage and returns all network rules in the
// order of the lists.
func (s *RuleStorage) Rules(c *ScannerConfig) (rs []*rules.Rule, err error) {
	sc := s.NewRuleStorageScanner(c)
	for sc.Scan() {
		rs = append(rs, sc.Rule())
	}

	return rs, sc.Err()
}

// ListsCount returns the number of lists in the storage.
func (s *RuleStorage) ListsCount() (n int) {
	return len(s.lists)
}

// Close closes the storage instance.
func (s *RuleStorage) Close() (err error) {
	if len(s.lists) == 0 {
		return nil
	}

	var errs []error
	for _, l := range s.lists {
		err = l.Close()
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Annotate(errors.Join(errs...), "closing rule lists: %w")
}

// RuleStorageScanner scans multiple [RuleScanner] instances one after another.
type RuleStorageScanner struct {
	scanners []*RuleScanner
	current  int
}

// Scan advances to the next rule in any of the underlying scanners.  It stops
// at the first scanner error.
func (s *RuleStorageScanner) Scan() (ok bool) {
	for ; s.current < len(s.scanners); s.current++ {
		sc := s.scanners[s.current]
		if sc.Scan() {
			return true
		} else if sc.Err() != nil {
			return false
		}
	}

	return false
}

// Rule returns the most recent rule generated by a call to
// [RuleStorageScanner.Scan].
func (s *RuleStorageScanner) Rule() (r *rules.Rule) {
	if s.current >= len(s.scanners) {
		return nil
	}

	r, _ = s.scanners[s.current].Rule()

	return r
}

// Err returns the error that stopped the scanning, if any.
func (s *RuleStorageScanner) Err() (err error) {
	if s.current >= len(s.scanners) {
		return nil
	}

	return s.scanners[s.current].Err()
}
