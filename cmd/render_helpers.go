package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/colx/pkg/allocator"
	"github.com/oakwood-commons/colx/pkg/tabledef"
)

// Report is the machine-readable layout result printed by the CLI.
type Report struct {
	Table     string         `yaml:"table" json:"table"`
	Available float64        `yaml:"available" json:"available"`
	Mode      string         `yaml:"mode" json:"mode"`
	MinTotal  float64        `yaml:"min_total" json:"min_total"`
	Scroll    bool           `yaml:"scroll" json:"scroll"`
	Columns   []ColumnReport `yaml:"columns" json:"columns"`
}

// ColumnReport describes one column's computed layout.
type ColumnReport struct {
	Name    string  `yaml:"name" json:"name"`
	Title   string  `yaml:"title,omitempty" json:"title,omitempty"`
	Width   float64 `yaml:"width" json:"width"`
	Visible bool    `yaml:"visible" json:"visible"`
	Star    float64 `yaml:"star,omitempty" json:"star,omitempty"`
	Min     float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max     float64 `yaml:"max,omitempty" json:"max,omitempty"`
	Fixed      bool    `yaml:"fixed,omitempty" json:"fixed,omitempty"`
	FixedWidth float64 `yaml:"fixed_width,omitempty" json:"fixed_width,omitempty"`
}

// newReport snapshots the allocator state for every defined column, hidden
// ones included, in declaration order.
func newReport(def tabledef.Definition, a *allocator.Allocator, widths map[string]float64) Report {
	r := Report{
		Table:     def.Name,
		Available: a.AvailableWidth(),
		Mode:      a.Mode().String(),
		MinTotal:  a.MinTotalWidth(),
		Scroll:    a.NeedsHorizontalScroll(),
	}
	for _, c := range def.Columns {
		spec := c.Spec()
		cr := ColumnReport{
			Name:    c.Name,
			Visible: a.Visible(c.Name),
			Star:    spec.Star,
			Min:     spec.Min,
			Max:     spec.Max,
			Fixed:   spec.Fixed,
		}
		if spec.Fixed {
			cr.FixedWidth = spec.FixedWidth
		}
		if t := c.DisplayTitle(); t != c.Name {
			cr.Title = t
		}
		if cr.Visible {
			cr.Width = widths[c.Name]
		}
		r.Columns = append(r.Columns, cr)
	}
	return r
}

// renderReportTable renders the report as an aligned text table with a
// status line, in the spirit of the interactive footer.
func renderReportTable(r Report, noColor bool) string {
	headerStyle := lipgloss.NewStyle().Bold(true)
	dimStyle := lipgloss.NewStyle()
	if !noColor {
		dimStyle = dimStyle.Foreground(lipgloss.Color("245"))
	}

	rows := [][]string{{"COLUMN", "WIDTH", "BOUNDS", "STAR", "FLAGS"}}
	for _, c := range r.Columns {
		rows = append(rows, []string{
			c.Name,
			formatWidthCell(c),
			formatBoundsCell(c),
			formatStarCell(c),
			formatFlagsCell(c),
		})
	}

	colWidths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	for ri, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			if i > 0 {
				line.WriteString("  ")
			}
			line.WriteString(cell)
			line.WriteString(strings.Repeat(" ", colWidths[i]-len(cell)))
		}
		text := strings.TrimRight(line.String(), " ")
		if ri == 0 {
			text = headerStyle.Render(text)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	status := fmt.Sprintf("%s: %s at %.0f, min total %.0f", r.Table, r.Mode, r.Available, r.MinTotal)
	if r.Scroll {
		status += ", horizontal scroll"
	}
	b.WriteString(dimStyle.Render(status))
	b.WriteString("\n")
	return b.String()
}

func formatWidthCell(c ColumnReport) string {
	if !c.Visible {
		return "-"
	}
	return fmt.Sprintf("%.0f", c.Width)
}

func formatBoundsCell(c ColumnReport) string {
	if c.Fixed {
		return fmt.Sprintf("=%.0f", c.FixedWidth)
	}
	if c.Max > 0 {
		return fmt.Sprintf("%.0f..%.0f", c.Min, c.Max)
	}
	return fmt.Sprintf("%.0f..", c.Min)
}

func formatStarCell(c ColumnReport) string {
	if c.Fixed || c.Star <= 0 {
		return "-"
	}
	return fmt.Sprintf("%g", c.Star)
}

func formatFlagsCell(c ColumnReport) string {
	var flags []string
	if c.Fixed {
		flags = append(flags, "fixed")
	}
	if !c.Visible {
		flags = append(flags, "hidden")
	}
	if len(flags) == 0 {
		return ""
	}
	return strings.Join(flags, ",")
}

func renderReportYAML(r Report) (string, error) {
	out, err := yaml.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func renderReportJSON(r Report) (string, error) {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out) + "\n", nil
}
