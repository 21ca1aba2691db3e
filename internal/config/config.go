// Package config loads and validates the downloads configuration file.
//
// The file is YAML, schema version 1:
//
//	version: 1
//	downloads:
//	  parts:
//	    folder: /srv/docs/parts
//	    base_url: https://example/search?q=
//	    filename_mode: title        # optional, "item" (default) or "title"
//	    items:
//	      - ABC123
//	      - XYZ789
//
// Validation happens once at load time; the rest of the program treats the
// resulting Collection list as pre-validated input.
package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Naming policies for final document filenames.
const (
	// ModeItem names the document after its item identifier.
	ModeItem = "item"
	// ModeTitle names the document after its embedded PDF title,
	// falling back to the item identifier when no title can be read.
	ModeTitle = "title"
)

// SchemaVersion is the only config schema version this build understands.
const SchemaVersion = 1

// Collection is one named group of documents sharing a resolution endpoint,
// storage folder, and naming policy. Immutable once loaded.
type Collection struct {
	// Name is the unique key of the collection (the YAML map key).
	Name string `yaml:"-"`

	// Folder is the local storage folder for fetched documents.
	Folder string `yaml:"folder"`

	// BaseURL is the search/redirect URL prefix an item identifier is
	// appended to when resolving the concrete document URL.
	BaseURL string `yaml:"base_url"`

	// FilenameMode is the naming policy, ModeItem or ModeTitle.
	// Empty means ModeItem.
	FilenameMode string `yaml:"filename_mode"`

	// Items is the ordered list of item identifiers to mirror.
	Items []string `yaml:"items"`
}

// Mode returns the effective naming policy, applying the ModeItem default.
func (c *Collection) Mode() string {
	if c.FilenameMode == "" {
		return ModeItem
	}
	return c.FilenameMode
}

// Config is the parsed downloads configuration file.
type Config struct {
	Version   int                    `yaml:"version"`
	Downloads map[string]*Collection `yaml:"downloads"`
}

// Load reads, parses, and validates the YAML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the schema version and per-collection rules.
func (c *Config) Validate() error {
	if c.Version == 0 {
		return fmt.Errorf("missing 'version' field")
	}
	if c.Version != SchemaVersion {
		return fmt.Errorf("unsupported config version: %d", c.Version)
	}
	if len(c.Downloads) == 0 {
		return fmt.Errorf("missing 'downloads' section")
	}

	for name, col := range c.Downloads {
		if col == nil {
			return fmt.Errorf("collection %q must be a mapping", name)
		}
		if col.Folder == "" {
			return fmt.Errorf("collection %q is missing a valid 'folder' string", name)
		}
		if col.BaseURL == "" {
			return fmt.Errorf("collection %q is missing a valid 'base_url' string", name)
		}
		if col.FilenameMode != "" && col.FilenameMode != ModeItem && col.FilenameMode != ModeTitle {
			return fmt.Errorf("collection %q has invalid 'filename_mode' %q: must be %q or %q",
				name, col.FilenameMode, ModeItem, ModeTitle)
		}
		if len(col.Items) == 0 {
			return fmt.Errorf("collection %q must have a list of item strings under 'items'", name)
		}
		for i, item := range col.Items {
			if item == "" {
				return fmt.Errorf("collection %q has an empty item at index %d", name, i)
			}
		}
	}

	return nil
}

// Collections returns the collections in stable name order, with each
// Collection's Name field populated from its map key.
func (c *Config) Collections() []*Collection {
	names := make([]string, 0, len(c.Downloads))
	for name := range c.Downloads {
		names = append(names, name)
	}
	sort.Strings(names)

	cols := make([]*Collection, 0, len(names))
	for _, name := range names {
		col := c.Downloads[name]
		col.Name = name
		cols = append(cols, col)
	}
	return cols
}
