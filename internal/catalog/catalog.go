// ============================================================================
// robolang - Robot Control Language Tools
// ============================================================================
//
// Package:     catalog
// Description: Static completion and hover catalog loaded from YAML
// Author:      Mike Stoffels
// Created:     2025-02-14
// License:     MIT
// ============================================================================

package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	coreerr "github.com/msto63/robolang/pkg/core/error"
	"github.com/msto63/robolang/pkg/lang/lexer"
	"github.com/msto63/robolang/pkg/lang/token"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Kind classifies a catalog entry
type Kind string

const (
	KindKeyword   Kind = "keyword"
	KindAction    Kind = "action"
	KindCondition Kind = "condition"
)

// Entry is one completion item
type Entry struct {
	Label         string `yaml:"label"`
	Kind          Kind   `yaml:"kind"`
	Data          int    `yaml:"data"`
	Detail        string `yaml:"detail"`
	Documentation string `yaml:"documentation"`
	Snippet       string `yaml:"snippet,omitempty"`
}

// Catalog holds keyword and built-in entries
type Catalog struct {
	Version  int     `yaml:"version"`
	Keywords []Entry `yaml:"keywords"`
	Builtins []Entry `yaml:"builtins"`

	byLabel map[string]*Entry
	byData  map[int]*Entry
}

// Default returns the built-in catalog
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("catalog: built-in catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog file. An empty path selects the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, coreerr.Wrap(err, "failed to read catalog").
			WithCode(coreerr.CodeNotFound).
			WithOperation("catalog.Load").
			WithDetail("path", path)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, coreerr.Wrap(err, "invalid catalog").
			WithCode(coreerr.CodeInvalidConfig).
			WithOperation("catalog.Load").
			WithDetail("path", path)
	}
	return c, nil
}

// Parse decodes and validates a catalog document
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	c.applyDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}
	c.index()
	return &c, nil
}

func (c *Catalog) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}

	next := 0
	for i := range c.Keywords {
		c.Keywords[i].Kind = KindKeyword
		if c.Keywords[i].Data > next {
			next = c.Keywords[i].Data
		}
	}
	for i := range c.Builtins {
		if c.Builtins[i].Data > next {
			next = c.Builtins[i].Data
		}
	}
	for i := range c.Builtins {
		if c.Builtins[i].Kind == "" {
			c.Builtins[i].Kind = KindAction
		}
		if c.Builtins[i].Data == 0 {
			next++
			c.Builtins[i].Data = next
		}
		c.Builtins[i].Documentation = strings.TrimSpace(c.Builtins[i].Documentation)
	}
	for i := range c.Keywords {
		c.Keywords[i].Documentation = strings.TrimSpace(c.Keywords[i].Documentation)
	}
}

func (c *Catalog) validate() error {
	if c.Version != 1 {
		return fmt.Errorf("unsupported catalog version %d", c.Version)
	}

	labels := make(map[string]bool)
	data := make(map[int]string)

	for _, e := range c.Keywords {
		if !token.Lookup(e.Label).IsKeyword() {
			return fmt.Errorf("keyword entry %q is not a language keyword", e.Label)
		}
		if e.Data <= 0 {
			return fmt.Errorf("keyword entry %q needs a positive data id", e.Label)
		}
	}
	for _, e := range c.Builtins {
		if !lexer.IsValidIdentifier(e.Label) {
			return fmt.Errorf("built-in %q is not a valid identifier", e.Label)
		}
		if e.Kind != KindAction && e.Kind != KindCondition {
			return fmt.Errorf("built-in %q has unknown kind %q", e.Label, e.Kind)
		}
	}

	for _, e := range c.Entries() {
		if labels[e.Label] {
			return fmt.Errorf("duplicate entry %q", e.Label)
		}
		labels[e.Label] = true
		if other, ok := data[e.Data]; ok {
			return fmt.Errorf("entries %q and %q share data id %d", other, e.Label, e.Data)
		}
		data[e.Data] = e.Label
	}
	return nil
}

func (c *Catalog) index() {
	c.byLabel = make(map[string]*Entry)
	c.byData = make(map[int]*Entry)
	for i := range c.Keywords {
		c.byLabel[c.Keywords[i].Label] = &c.Keywords[i]
		c.byData[c.Keywords[i].Data] = &c.Keywords[i]
	}
	for i := range c.Builtins {
		c.byLabel[c.Builtins[i].Label] = &c.Builtins[i]
		c.byData[c.Builtins[i].Data] = &c.Builtins[i]
	}
}

// Entries returns keywords followed by built-ins, in file order
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.Keywords)+len(c.Builtins))
	out = append(out, c.Keywords...)
	out = append(out, c.Builtins...)
	return out
}

// Lookup returns the entry with the given label
func (c *Catalog) Lookup(label string) (Entry, bool) {
	e, ok := c.byLabel[label]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// ByData returns the entry with the given completion data id
func (c *Catalog) ByData(data int) (Entry, bool) {
	e, ok := c.byData[data]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Conditions returns the labels of condition built-ins, sorted
func (c *Catalog) Conditions() []string {
	var out []string
	for _, e := range c.Builtins {
		if e.Kind == KindCondition {
			out = append(out, e.Label)
		}
	}
	sort.Strings(out)
	return out
}
