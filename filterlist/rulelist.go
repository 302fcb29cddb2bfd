package filterlist

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// RuleList represents a set of filtering rules.
type RuleList interface {
	// GetID returns the rule list identifier.
	GetID() (id int)

	// NewScanner creates a new scanner that reads the list contents from the
	// beginning.  c must not be nil.
	NewScanner(c *ScannerConfig) (s *RuleScanner)

	// Close releases the resources of the list.
	io.Closer
}

// StringRuleList is a string-based rule list.
type StringRuleList struct {
	// RulesText is a string with filtering rules, one per line.
	RulesText string

	// ID is the rule list identifier.
	ID int
}

// type check
var _ RuleList = (*StringRuleList)(nil)

// NewLinesRuleList returns a rule list made of lines.
func NewLinesRuleList(id int, lines []string) (l *StringRuleList) {
	return &StringRuleList{
		RulesText: strings.Join(lines, "\n"),
		ID:        id,
	}
}

// GetID implements the [RuleList] interface for *StringRuleList.
func (l *StringRuleList) GetID() (id int) {
	return l.ID
}

// NewScanner implements the [RuleList] interface for *StringRuleList.
func (l *StringRuleList) NewScanner(c *ScannerConfig) (s *RuleScanner) {
	return NewRuleScanner(strings.NewReader(l.RulesText), l.ID, c)
}

// Close implements the [RuleList] interface for *StringRuleList.
func (l *StringRuleList) Close() (err error) {
	return nil
}

// FileRuleList is a file-based rule list.  The file is kept open until the list
// is closed.
type FileRuleList struct {
	// mu protects file, since scanners share its offset.
	mu *sync.Mutex

	file *os.File
	id   int
}

// type check
var _ RuleList = (*FileRuleList)(nil)

// NewFileRuleList opens the file at path and returns a rule list reading it.
func NewFileRuleList(id int, path string) (l *FileRuleList, err error) {
	f, err := os.Open(path)
	if err != nil {
		// Don't wrap the error since it's informative enough as is.
		return nil, err
	}

	return &FileRuleList{
		mu:   &sync.Mutex{},
		file: f,
		id:   id,
	}, nil
}

// GetID implements the [RuleList] interface for *FileRuleList.
func (l *FileRuleList) GetID() (id int) {
	return l.id
}

// NewScanner implements the [RuleList] interface for *FileRuleList.  Only one
// scanner of a list should be used at a time.
func (l *FileRuleList) NewScanner(c *ScannerConfig) (s *RuleScanner) {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.file.Seek(0, io.SeekStart)
	if err != nil {
		err = fmt.Errorf("list %d: seeking: %w", l.id, err)

		return newFailedScanner(l.id, err)
	}

	return NewRuleScanner(l.file, l.id, c)
}

// Close implements the [RuleList] interface for *FileRuleList.
func (l *FileRuleList) Close() (err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}
