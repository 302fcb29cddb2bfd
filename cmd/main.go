// Command urlclassifier classifies the URLs read from stdin, one per line,
// against the filter lists.  Each input line is a URL optionally followed by
// the domain of the page that requested it.  Each output line is the class of
// the URL, 1 for blocked and 0 for not blocked, followed by the URL and,
// optionally, by the blocking rules.
package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/urlclassifier"
	"github.com/AdguardTeam/urlclassifier/filterlist"
	"github.com/AdguardTeam/urlclassifier/rules"
	goFlags "github.com/jessevdk/go-flags"
)

// maxRequestLen is the maximum length of an input line.
const maxRequestLen = 1 << 20

// options are the command-line arguments.
type options struct {
	// ConfigPath is the path to the YAML configuration file.
	ConfigPath string `short:"c" long:"config" description:"Path to the YAML configuration file."`

	// Domain is the default domain of the page that makes the requests.
	Domain string `short:"d" long:"domain" description:"Domain of the page that makes the requests, unless set on the input line."`

	// FilterLists are the paths to the filter lists.
	FilterLists []string `short:"f" long:"filter" description:"Path to the filter list. Can be specified multiple times."`

	// Set are the options known for every request.
	Set []string `short:"s" long:"set" description:"Request option, e.g. image or ~third-party. Can be specified multiple times. With a domain, script, image and third-party are always known."`

	// ShortcutSizes are the lengths of the shortcuts.
	ShortcutSizes []int `long:"shortcut-size" description:"Length of the shortcuts of a tier. Can be specified multiple times."`

	// HashKeys makes the engine use the rolling hashes of the shortcuts.
	HashKeys bool `long:"hash" description:"Key the shortcuts by their rolling hashes." optional:"yes" optional-value:"true"`

	// Strict makes the invalid rules fatal.
	Strict bool `long:"strict" description:"Fail on invalid rules instead of skipping them." optional:"yes" optional-value:"true"`

	// Items makes the command print the blocking rules.
	Items bool `short:"i" long:"items" description:"Print the blocking rules." optional:"yes" optional-value:"true"`

	// Verbose enables the debug logging.
	Verbose bool `short:"v" long:"verbose" description:"Verbose output (optional)." optional:"yes" optional-value:"true"`
}

func main() {
	var opts options
	parser := goFlags.NewParser(&opts, goFlags.Default)

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*goFlags.Error); ok && flagsErr.Type == goFlags.ErrHelp {
			os.Exit(0)
		}

		os.Exit(1)
	}

	lvl := slog.LevelInfo
	if opts.Verbose {
		lvl = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))

	err = run(logger, &opts, os.Stdin, os.Stdout)
	if err != nil {
		logger.Error("classifying", slogutil.KeyError, err)

		os.Exit(1)
	}
}

// run builds the engine and classifies the URLs from in.
func run(logger *slog.Logger, opts *options, in io.Reader, out io.Writer) (err error) {
	conf, err := newConfig(opts)
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	lists := make([]filterlist.RuleList, 0, len(conf.FilterLists))
	defer func() {
		for _, l := range lists {
			err = errors.WithDeferred(err, l.Close())
		}
	}()

	for i, path := range conf.FilterLists {
		var l *filterlist.FileRuleList
		l, err = filterlist.NewFileRuleList(i, path)
		if err != nil {
			return fmt.Errorf("filter list at index %d: %w", i, err)
		}

		lists = append(lists, l)
	}

	e, err := urlclassifier.NewEngine(&urlclassifier.Config{
		Logger:        logger,
		ShortcutSizes: conf.ShortcutSizes,
		HashKeys:      conf.HashKeys,
		Strict:        conf.Strict,
	}, lists...)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	settings, err := parseSettings(opts.Set)
	if err != nil {
		return fmt.Errorf("parsing request options: %w", err)
	}

	c := &classifier{
		engine:   e,
		settings: settings,
		domain:   opts.Domain,
		items:    opts.Items,
	}

	return c.classifyAll(in, out)
}

// setting is a request option value set from the command line.
type setting struct {
	opt   rules.Option
	value bool
}

// parseSettings parses the request options in the "name" or "~name" form.
func parseSettings(set []string) (settings []setting, err error) {
	for _, s := range set {
		name := strings.TrimPrefix(s, "~")
		opt, ok := rules.ParseOption(name)
		if !ok {
			return nil, fmt.Errorf("option %q: %w", s, rules.ErrUnknownOption)
		}

		settings = append(settings, setting{opt: opt, value: len(name) == len(s)})
	}

	return settings, nil
}

// classifier classifies the requests read from the input.
type classifier struct {
	engine   *urlclassifier.Engine
	domain   string
	settings []setting
	items    bool
}

// classifyAll reads the requests from in and writes the results to out.
func (c *classifier) classifyAll(in io.Reader, out io.Writer) (err error) {
	w := bufio.NewWriter(out)
	s := bufio.NewScanner(in)
	s.Buffer(nil, maxRequestLen)
	for s.Scan() {
		fields := strings.Fields(s.Text())
		if len(fields) == 0 {
			continue
		}

		req := c.newRequest(fields)

		var line string
		if c.items {
			class, items := c.engine.ClassifyWithItems(req)
			line = fmt.Sprintf("%d\t%s\t%s\n", class, req.URL, strings.Join(items, " "))
		} else {
			line = fmt.Sprintf("%d\t%s\n", c.engine.Classify(req), req.URL)
		}

		_, err = w.WriteString(line)
		if err != nil {
			return fmt.Errorf("writing result: %w", err)
		}
	}

	err = s.Err()
	if err != nil {
		return fmt.Errorf("reading requests: %w", err)
	}

	return w.Flush()
}

// newRequest returns a request for the input line fields: the URL and the
// optional domain.
func (c *classifier) newRequest(fields []string) (req *rules.Request) {
	url, domain := fields[0], c.domain
	if len(fields) > 1 {
		domain = fields[1]
	}

	if domain == "" {
		req = rules.NewRequest(url)
	} else {
		req = rules.NewResourceRequest(url, domain, false, false)
	}

	for _, s := range c.settings {
		req.Set(s.opt, s.value)
	}

	return req
}
