package main

import (
	"fmt"
	"os"

	"github.com/AdguardTeam/golibs/errors"
	"gopkg.in/yaml.v3"
)

// errNoFilterLists is returned when neither the configuration file nor the
// command line set any filter lists.
const errNoFilterLists errors.Error = "no filter lists"

// config is the configuration of the command.  It's read from the YAML file
// and amended by the command-line arguments.
type config struct {
	// FilterLists are the paths to the filter lists.  The lists from the
	// command line are appended.
	FilterLists []string `yaml:"filter_lists"`

	// ShortcutSizes are the lengths of the shortcuts.  The sizes from the
	// command line replace them.
	ShortcutSizes []int `yaml:"shortcut_sizes"`

	// HashKeys makes the engine use the rolling hashes of the shortcuts.
	HashKeys bool `yaml:"hash_keys"`

	// Strict makes the invalid rules fatal.
	Strict bool `yaml:"strict"`
}

// newConfig returns the configuration from the file set in opts, if any,
// amended by opts.
func newConfig(opts *options) (c *config, err error) {
	c = &config{}
	if opts.ConfigPath != "" {
		c, err = readConfig(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
	}

	c.FilterLists = append(c.FilterLists, opts.FilterLists...)
	if len(opts.ShortcutSizes) > 0 {
		c.ShortcutSizes = opts.ShortcutSizes
	}

	c.HashKeys = c.HashKeys || opts.HashKeys
	c.Strict = c.Strict || opts.Strict

	if len(c.FilterLists) == 0 {
		return nil, errNoFilterLists
	}

	return c, nil
}

// readConfig reads the configuration from the YAML file at path.
func readConfig(path string) (c *config, err error) {
	// #nosec G304 -- Trust the path to the configuration file from the
	// command line.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	c = &config{}
	err = yaml.Unmarshal(data, c)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return c, nil
}
