// Package filterlist contains the filter list sources and the scanners that
// compile their lines into rules.
package filterlist

import (
	"bufio"
	"io"
	"log/slog"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/urlclassifier/rules"
)

// maxLineLen is the maximum length of a filter list line.  Longer lines fail
// the scanning.
const maxLineLen = 1 << 20

// ScannerConfig is the configuration of a [RuleScanner].
type ScannerConfig struct {
	// Logger is used to report the skipped invalid rules.  If nil,
	// [slog.Default] is used.
	Logger *slog.Logger

	// Strict, if true, makes the scanner stop at the first invalid rule.
	// Otherwise, invalid rules are logged and skipped.
	Strict bool
}

// RuleScanner reads the network rules from a filter list line by line.
// Comments and cosmetic rules are skipped.
type RuleScanner struct {
	logger  *slog.Logger
	reader  *bufio.Scanner
	current *rules.Rule
	err     error
	listID  int
	line    int
	strict  bool
}

// NewRuleScanner returns a new scanner reading rules from r.  c must not be
// nil.
func NewRuleScanner(r io.Reader, listID int, c *ScannerConfig) (s *RuleScanner) {
	reader := bufio.NewScanner(r)
	reader.Buffer(nil, maxLineLen)

	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &RuleScanner{
		logger: logger,
		reader: reader,
		listID: listID,
		strict: c.Strict,
	}
}

// newFailedScanner returns a scanner that scans nothing and reports err.
func newFailedScanner(listID int, err error) (s *RuleScanner) {
	return &RuleScanner{
		err:    err,
		listID: listID,
	}
}

// Scan advances the scanner to the next network rule, which will then be
// available through [RuleScanner.Rule].  It returns false when the scan stops,
// either by reaching the end of the input or an error.  After Scan returns
// false, [RuleScanner.Err] returns the error, if any.
func (s *RuleScanner) Scan() (ok bool) {
	if s.err != nil {
		return false
	}

	for s.reader.Scan() {
		s.line++

		r, err := rules.NewRule(s.reader.Text(), s.listID)
		if err != nil {
			if s.strict {
				s.err = errors.Annotate(err, "list %d: line %d: %w", s.listID, s.line)

				return false
			}

			s.logger.Warn(
				"skipping invalid rule",
				"list_id", s.listID,
				"line", s.line,
				slogutil.KeyError, err,
			)

			continue
		}

		if r.IsNetwork() {
			s.current = r

			return true
		}
	}

	err := s.reader.Err()
	if err != nil {
		s.err = errors.Annotate(err, "list %d: reading: %w", s.listID)
	}

	return false
}

// Rule returns the most recent rule generated by a call to [RuleScanner.Scan]
// and the number of the line it was read from, starting with 1.
func (s *RuleScanner) Rule() (r *rules.Rule, line int) {
	return s.current, s.line
}

// Err returns the first error that stopped the scanner.
func (s *RuleScanner) Err() (err error) {
	return s.err
}
