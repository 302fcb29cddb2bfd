// Package urlclassifier contains the engine that decides whether a URL is
// blocked by the Adblock-style filter lists.
package urlclassifier

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/urlclassifier/filterlist"
	"github.com/AdguardTeam/urlclassifier/internal/lookup"
	"github.com/AdguardTeam/urlclassifier/rules"
)

// Classes of the requests returned by [Engine.Classify].
const (
	ClassNotBlocked = 0
	ClassBlocked    = 1
)

// classesDescription are the human-readable names of the classes.
var classesDescription = []string{
	ClassNotBlocked: "Not Blocked",
	ClassBlocked:    "Blocked",
}

// Errors of the engine configuration.
const (
	// ErrBadShortcutSize is returned when a shortcut size isn't positive.
	ErrBadShortcutSize errors.Error = "shortcut size must be positive"

	// ErrDuplicateShortcutSize is returned when a shortcut size is set twice.
	ErrDuplicateShortcutSize errors.Error = "duplicate shortcut size"
)

// defaultShortcutSizes are the sizes of the shortcuts used when none are
// configured.
func defaultShortcutSizes() (sizes []int) {
	return []int{14, 10, 6, 4}
}

// Config is the configuration of an [Engine].
type Config struct {
	// Logger is used to log the loading of the rules.  If nil, [slog.Default]
	// is used.
	Logger *slog.Logger

	// ShortcutSizes are the lengths of the shortcuts, one per tier.  They are
	// probed from the largest to the smallest.  If empty, 14, 10, 6, and 4 are
	// used.
	ShortcutSizes []int

	// HashKeys, if true, makes the engine key the shortcuts by their rolling
	// hashes instead of the shortcut strings.
	HashKeys bool

	// Strict, if true, makes the construction fail at the first invalid rule.
	// Otherwise, invalid rules are logged and skipped.
	Strict bool
}

// shortcutSizes returns the validated shortcut sizes sorted in the descending
// order.
func (c *Config) shortcutSizes() (sizes []int, err error) {
	if len(c.ShortcutSizes) == 0 {
		return defaultShortcutSizes(), nil
	}

	sizes = slices.Clone(c.ShortcutSizes)
	slices.SortFunc(sizes, func(a, b int) (res int) { return b - a })

	for i, s := range sizes {
		if s <= 0 {
			return nil, fmt.Errorf("shortcut size %d: %w", s, ErrBadShortcutSize)
		} else if i > 0 && sizes[i-1] == s {
			return nil, fmt.Errorf("shortcut size %d: %w", s, ErrDuplicateShortcutSize)
		}
	}

	return sizes, nil
}

// Engine decides if a request is blocked by the filtering rules.  The rules
// are indexed by their shortcuts, so that only a few of them are checked for
// each request.  It is immutable and is safe for concurrent use.
type Engine struct {
	// tiers are the shortcut tables, the one with the longest shortcuts is
	// the first.
	tiers []lookup.Table

	// fallback contains the rules that have no shortcut.
	fallback *lookup.RuleSet

	rulesCount int
}

// NewEngine returns a new engine with the network rules from lists.  The lists
// must have distinct identifiers.  c may be nil, in which case the defaults
// are used.  The lists aren't closed.
func NewEngine(c *Config, lists ...filterlist.RuleList) (e *Engine, err error) {
	if c == nil {
		c = &Config{}
	}

	sizes, err := c.shortcutSizes()
	if err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	storage, err := filterlist.NewRuleStorage(lists)
	if err != nil {
		return nil, fmt.Errorf("creating rule storage: %w", err)
	}

	rs, err := storage.Rules(&filterlist.ScannerConfig{
		Logger: logger,
		Strict: c.Strict,
	})
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}

	e = newEngine(sizes, c.HashKeys, rs)
	e.logStats(logger)

	return e, nil
}

// NewEngineFromLines returns a new engine with the rules from lines.  c may be
// nil, in which case the defaults are used.
func NewEngineFromLines(c *Config, lines []string) (e *Engine, err error) {
	return NewEngine(c, filterlist.NewLinesRuleList(0, lines))
}

// NewEngineFromFile returns a new engine with the rules read from the file at
// path.  c may be nil, in which case the defaults are used.
func NewEngineFromFile(c *Config, path string) (e *Engine, err error) {
	l, err := filterlist.NewFileRuleList(0, path)
	if err != nil {
		return nil, fmt.Errorf("opening rule list: %w", err)
	}
	defer func() { err = errors.WithDeferred(err, l.Close()) }()

	return NewEngine(c, l)
}

// newEngine builds the shortcut index of rs.
func newEngine(sizes []int, hashKeys bool, rs []*rules.Rule) (e *Engine) {
	tiers, rest := lookup.PlaceShortcuts(sizes, rs)

	e = &Engine{
		tiers:    make([]lookup.Table, 0, len(tiers)),
		fallback: lookup.NewRuleSet(rest),
	}

	for i, buckets := range tiers {
		var tbl lookup.Table
		if hashKeys {
			tbl = lookup.NewHashTable(sizes[i], buckets)
		} else {
			tbl = lookup.NewShortcutsTable(sizes[i], buckets)
		}

		e.tiers = append(e.tiers, tbl)
		e.rulesCount += tbl.RulesCount()
	}

	e.rulesCount += e.fallback.Len()

	return e
}

// logStats logs the statistics of the index.
func (e *Engine) logStats(logger *slog.Logger) {
	ctx := context.Background()
	if logger.Enabled(ctx, slog.LevelDebug) {
		for _, t := range e.tiers {
			logger.DebugContext(
				ctx,
				"shortcut tier",
				"shortcut_len", t.ShortcutLen(),
				"buckets", t.Len(),
				"rules", t.RulesCount(),
				"max_bucket", t.MaxBucketLen(),
			)
		}
	}

	logger.InfoContext(ctx, "engine created", "rules", e.rulesCount, "fallback", e.fallback.Len())
}

// Decide returns true if req is blocked.  A request is blocked if any blocking
// rule matches it and no exception rule does.  Rules that require options
// unknown to req are never applied.
func (e *Engine) Decide(req *rules.Request) (blocked bool) {
	allowed := false
	check := func(rs *lookup.RuleSet) (cont bool) {
		if blocked {
			// Another blocking rule changes nothing, so only look for an
			// exception.
			allowed = rs.IsWhitelisted(req)
		} else {
			switch rs.Check(req) {
			case lookup.StateWhitelisted:
				allowed = true
			case lookup.StateBlacklisted:
				blocked = true
			default:
				// Go on.
			}
		}

		return !allowed
	}

	for _, t := range e.tiers {
		t.Range(req.URLLowerCase(), check)
		if allowed {
			return false
		}
	}

	check(e.fallback)

	return blocked && !allowed
}

// DecideWithItems is like [Engine.Decide] but also returns the texts of all the
// blocking rules matching req, if it's blocked.
func (e *Engine) DecideWithItems(req *rules.Request) (blocked bool, items []string) {
	allowed := false

	// visited prevents collecting the rules of the same rule set twice, when
	// the URL contains its shortcut more than once.
	visited := map[*lookup.RuleSet]struct{}{}
	check := func(rs *lookup.RuleSet) (cont bool) {
		if _, ok := visited[rs]; ok {
			return true
		}

		visited[rs] = struct{}{}

		if rs.IsWhitelisted(req) {
			allowed = true

			return false
		}

		ok, setItems := rs.IsBlacklistedWithItems(req)
		if ok {
			blocked = true
			items = append(items, setItems...)
		}

		return true
	}

	for _, t := range e.tiers {
		t.Range(req.URLLowerCase(), check)
		if allowed {
			return false, nil
		}
	}

	if !check(e.fallback) {
		return false, nil
	}

	return blocked, items
}

// Classify returns [ClassBlocked] if req is blocked and [ClassNotBlocked]
// otherwise.
func (e *Engine) Classify(req *rules.Request) (class int) {
	if e.Decide(req) {
		return ClassBlocked
	}

	return ClassNotBlocked
}

// ClassifyWithItems is like [Engine.Classify] but also returns the texts of the
// blocking rules, see [Engine.DecideWithItems].
func (e *Engine) ClassifyWithItems(req *rules.Request) (class int, items []string) {
	blocked, items := e.DecideWithItems(req)
	if blocked {
		return ClassBlocked, items
	}

	return ClassNotBlocked, nil
}

// NumClasses returns the number of classes returned by [Engine.Classify].
func (e *Engine) NumClasses() (n int) {
	return len(classesDescription)
}

// ClassesDescription returns the names of the classes, indexed by the class.
func (e *Engine) ClassesDescription() (names []string) {
	return slices.Clone(classesDescription)
}

// RulesCount returns the number of the network rules in the engine.
func (e *Engine) RulesCount() (n int) {
	return e.rulesCount
}

// TierStats are the statistics of a single shortcut tier.
type TierStats struct {
	// ShortcutLen is the length of the shortcuts of the tier.
	ShortcutLen int

	// Buckets is the number of rule sets in the tier.
	Buckets int

	// Rules is the number of rules in the tier.
	Rules int

	// MaxBucket is the number of rules in the largest rule set of the tier.
	MaxBucket int
}

// Stats are the statistics of the engine index.
type Stats struct {
	// Tiers are the statistics of the tiers, in the order of probing.
	Tiers []TierStats

	// Fallback is the number of rules without a shortcut.
	Fallback int
}

// Stats returns the statistics of the index.
func (e *Engine) Stats() (s *Stats) {
	s = &Stats{
		Tiers:    make([]TierStats, 0, len(e.tiers)),
		Fallback: e.fallback.Len(),
	}

	for _, t := range e.tiers {
		s.Tiers = append(s.Tiers, TierStats{
			ShortcutLen: t.ShortcutLen(),
			Buckets:     t.Len(),
			Rules:       t.RulesCount(),
			MaxBucket:   t.MaxBucketLen(),
		})
	}

	return s
}
