// Package tools holds the catalog of developer tools and the properties each
// tool registers on its configurations.
package tools

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"

	"github.com/hugo-lorenzo-mato/devtools/internal/core"
	"github.com/hugo-lorenzo-mato/devtools/internal/instance"
	"github.com/hugo-lorenzo-mato/devtools/internal/logging"
	"github.com/hugo-lorenzo-mato/devtools/internal/toolconfig"
)

// Group is the content group a tool is listed under.
type Group string

const (
	GroupEncoderDecoder Group = "encoder-decoder"
	GroupTransformer    Group = "transformer"
	GroupGenerator      Group = "generator"
	GroupConverter      Group = "converter"
	GroupFormatter      Group = "formatter"
)

// Definition describes one developer tool.
type Definition struct {
	ID    string
	Title string
	Group Group
	// Bind registers the tool's properties on c. Calling it again on the same
	// configuration is harmless.
	Bind func(c *toolconfig.Configuration) error
}

// Catalog is an immutable, ordered set of tool definitions.
type Catalog struct {
	defs []Definition
	byID map[string]int
}

// NewCatalog builds a catalog. Tool ids must be unique and non-empty.
func NewCatalog(defs ...Definition) (*Catalog, error) {
	c := &Catalog{
		defs: slices.Clone(defs),
		byID: make(map[string]int, len(defs)),
	}
	for i, d := range c.defs {
		if d.ID == "" || d.Bind == nil {
			return nil, core.ErrProgramming(core.CodeInvalidToolDefinition,
				fmt.Sprintf("tool definition %d needs an id and a bind function", i))
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, core.ErrProgramming(core.CodeInvalidToolDefinition,
				fmt.Sprintf("duplicate tool id %q", d.ID))
		}
		c.byID[d.ID] = i
	}
	return c, nil
}

// Default returns the catalog of built-in tools.
func Default() *Catalog {
	c, err := NewCatalog(builtins()...)
	if err != nil {
		panic(err)
	}
	return c
}

// All returns every definition in catalog order.
func (c *Catalog) All() []Definition {
	return slices.Clone(c.defs)
}

// IDs returns the tool ids in catalog order.
func (c *Catalog) IDs() []string {
	return lo.Map(c.defs, func(d Definition, _ int) string { return d.ID })
}

// Lookup returns the definition with the given id.
func (c *Catalog) Lookup(id string) (Definition, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Definition{}, false
	}
	return c.defs[i], true
}

// ByGroup returns the definitions grouped by content group.
func (c *Catalog) ByGroup() map[Group][]Definition {
	return lo.GroupBy(c.defs, func(d Definition) Group { return d.Group })
}

// Find returns the definitions whose id or title fuzzily matches query, best
// match first. An empty query matches everything in catalog order.
func (c *Catalog) Find(query string) []Definition {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.All()
	}

	names := lo.Map(c.defs, func(d Definition, _ int) string {
		return strings.ToLower(d.ID + " " + d.Title)
	})
	matches := fuzzy.Find(strings.ToLower(query), names)
	return lo.Map(matches, func(m fuzzy.Match, _ int) Definition { return c.defs[m.Index] })
}

// BindAll binds every configuration in s whose tool is in the catalog.
// Configurations of unknown tools stay unconsumed and are persisted verbatim.
// The ids of unknown tools are returned.
func (c *Catalog) BindAll(s *instance.Settings, logger *logging.Logger) ([]string, error) {
	logger = logging.OrNop(logger)
	var unknown []string
	for _, toolID := range s.ToolIDs() {
		def, ok := c.Lookup(toolID)
		if !ok {
			logger.Debug("no tool for stored configurations", "tool", toolID)
			unknown = append(unknown, toolID)
			continue
		}
		for _, cfg := range s.GetDeveloperToolConfigurations(toolID) {
			if err := def.Bind(cfg); err != nil {
				return unknown, fmt.Errorf("binding %s configuration %s: %w", toolID, cfg.ID(), err)
			}
		}
	}
	return unknown, nil
}

// binder registers properties until the first error.
type binder struct {
	c   *toolconfig.Configuration
	err error
}

func bind[T any](b *binder, key string, defaultValue T, opts ...toolconfig.RegisterOption[T]) {
	if b.err != nil {
		return
	}
	_, b.err = toolconfig.Register(b.c, key, defaultValue, opts...)
}

func input[T any](example T) []toolconfig.RegisterOption[T] {
	return []toolconfig.RegisterOption[T]{
		toolconfig.WithType[T](toolconfig.TypeInput),
		toolconfig.WithExample(example),
	}
}

func sensitive[T any](example T) []toolconfig.RegisterOption[T] {
	return []toolconfig.RegisterOption[T]{
		toolconfig.WithType[T](toolconfig.TypeSensitive),
		toolconfig.WithExample(example),
	}
}
