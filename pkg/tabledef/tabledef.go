// Package tabledef turns a declarative table description (YAML or TOML)
// into a column registration against the allocation engine. Concrete tables
// — a receipts table, a stock-levels table — are definitions of this shape,
// never copies of the algorithm.
package tabledef

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/colx/internal/measure"
	"github.com/oakwood-commons/colx/internal/rules"
	"github.com/oakwood-commons/colx/pkg/allocator"
)

// Definition describes one table: its chrome margin and its ordered columns.
type Definition struct {
	Name         string      `yaml:"name" toml:"name"`
	ChromeMargin float64     `yaml:"chrome_margin" toml:"chrome_margin"`
	Columns      []ColumnDef `yaml:"columns" toml:"columns"`
}

// ColumnDef is the declarative form of one column's sizing parameters.
type ColumnDef struct {
	Name  string `yaml:"name" toml:"name"`
	Title string `yaml:"title" toml:"title"`

	// Star is the proportional weight. Ignored when Fixed is set.
	Star float64 `yaml:"star" toml:"star"`

	Min       float64 `yaml:"min" toml:"min"`
	Max       float64 `yaml:"max" toml:"max"`
	Preferred float64 `yaml:"preferred" toml:"preferred"`

	// Fixed > 0 pins the column to that width.
	Fixed float64 `yaml:"fixed" toml:"fixed"`

	// Samples is representative cell content; its measured width seeds
	// auto-sizing.
	Samples []string `yaml:"samples" toml:"samples"`

	// VisibleWhen is an optional CEL visibility rule over the viewport
	// (variables: width, columns). Empty means always visible.
	VisibleWhen string `yaml:"visible_when" toml:"visible_when"`
}

// Spec converts the declaration to allocator sizing parameters.
func (c ColumnDef) Spec() allocator.Spec {
	return allocator.Spec{
		Star:       c.Star,
		Min:        c.Min,
		Max:        c.Max,
		Preferred:  c.Preferred,
		Fixed:      c.Fixed > 0,
		FixedWidth: c.Fixed,
	}
}

// DisplayTitle returns the header text: the explicit title, or the column
// name when none is set.
func (c ColumnDef) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Name
}

// Load reads and parses a definition file. The extension picks the format;
// unknown extensions go through the content-sniffing Parse fallthrough.
func Load(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("failed to read table definition %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return parseTOML(data)
	case ".yaml", ".yml":
		return parseYAML(data)
	default:
		return Parse(data)
	}
}

// Parse decodes a definition from bytes, trying YAML first and falling
// through to TOML, the way the format sniffing loaders elsewhere in this
// codebase behave.
func Parse(data []byte) (Definition, error) {
	def, yamlErr := parseYAML(data)
	if yamlErr == nil {
		return def, nil
	}
	def, tomlErr := parseTOML(data)
	if tomlErr == nil {
		return def, nil
	}
	return Definition{}, fmt.Errorf("failed to parse table definition: %w", yamlErr)
}

func parseYAML(data []byte) (Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("yaml: %w", err)
	}
	if len(def.Columns) == 0 {
		return Definition{}, fmt.Errorf("yaml: no columns defined")
	}
	return def, nil
}

func parseTOML(data []byte) (Definition, error) {
	var def Definition
	if err := toml.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("toml: %w", err)
	}
	if len(def.Columns) == 0 {
		return Definition{}, fmt.Errorf("toml: no columns defined")
	}
	return def, nil
}

// Validate checks the declaration for contract violations the allocator
// itself does not guard against.
func (d Definition) Validate() error {
	if len(d.Columns) == 0 {
		return fmt.Errorf("table %q has no columns", d.Name)
	}
	if d.ChromeMargin < 0 {
		return fmt.Errorf("chrome_margin must be non-negative, got %v", d.ChromeMargin)
	}
	seen := make(map[string]bool, len(d.Columns))
	for _, c := range d.Columns {
		if c.Name == "" {
			return fmt.Errorf("table %q has a column without a name", d.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate column name %q", c.Name)
		}
		seen[c.Name] = true

		if c.Min < 0 {
			return fmt.Errorf("column %q: min must be non-negative, got %v", c.Name, c.Min)
		}
		if c.Max > 0 && c.Min > c.Max {
			return fmt.Errorf("column %q: min %v exceeds max %v", c.Name, c.Min, c.Max)
		}
		if c.Fixed > 0 {
			if c.Fixed < c.Min {
				return fmt.Errorf("column %q: fixed width %v is below min %v", c.Name, c.Fixed, c.Min)
			}
			continue
		}
		if c.Star <= 0 {
			return fmt.Errorf("column %q: star weight must be positive, got %v", c.Name, c.Star)
		}
	}
	return nil
}

// Register creates the columns on the allocator in declaration order and
// seeds measured content widths from the samples. The apply callback
// receives every published width, keyed by column name.
func (d Definition) Register(a *allocator.Allocator, apply func(name string, width float64)) {
	for _, c := range d.Columns {
		name := c.Name
		cb := func(float64) {}
		if apply != nil {
			cb = func(w float64) { apply(name, w) }
		}
		a.Register(name, c.Spec(), cb)
		if w := measure.ContentWidth(c.Samples); w > 0 {
			a.SetMeasuredWidth(name, w)
		}
	}
}

// CompileRules compiles every non-empty visible_when expression. The result
// maps column names to compiled rules; columns without a rule are absent.
func (d Definition) CompileRules(e *rules.Engine) (map[string]rules.Rule, error) {
	compiled := make(map[string]rules.Rule)
	for _, c := range d.Columns {
		if c.VisibleWhen == "" {
			continue
		}
		r, err := e.Compile(c.VisibleWhen)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, err)
		}
		compiled[c.Name] = r
	}
	return compiled, nil
}

// NewAllocator builds an allocator configured with the definition's chrome
// margin and the given extra options.
func (d Definition) NewAllocator(opts ...allocator.Option) *allocator.Allocator {
	all := append([]allocator.Option{allocator.WithChromeMargin(d.ChromeMargin)}, opts...)
	return allocator.New(all...)
}
