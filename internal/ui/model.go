// Package ui hosts the interactive table preview. The bubbletea model owns a
// width allocator and feeds its published widths into a bubbles table, so
// every resize, auto-size, and visibility toggle exercises the same engine
// the library exposes.
package ui

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/colx/internal/rules"
	"github.com/oakwood-commons/colx/internal/ui/table"
	"github.com/oakwood-commons/colx/pkg/allocator"
	"github.com/oakwood-commons/colx/pkg/tabledef"
)

// ResizeStep is the number of cells added or removed per H/L key press.
const ResizeStep = 4.0

// Model is the bubbletea model for the preview TUI.
type Model struct {
	Def     *tabledef.Definition
	Alloc   *allocator.Allocator
	Tbl     *table.Model
	Footer  FooterModel
	NoColor bool
	Log     logr.Logger

	// Selected indexes Def.Columns and names the column the resize keys act
	// on. It may point at a hidden column; resize is a no-op then.
	Selected int

	// widths receives allocator callbacks keyed by column name.
	widths map[string]float64

	// manualVis records columns the user toggled with `v`; rule-driven
	// visibility never overrides a manual choice.
	manualVis map[string]bool

	// ruleApplied marks rules that have been evaluated at least once, so
	// rules that never read the width can be skipped on later resizes.
	ruleApplied map[string]bool

	engine   *rules.Engine
	colRules map[string]rules.Rule

	WinWidth  int
	WinHeight int
}

// NewModel builds the preview model for a table definition. Visibility rules
// are compiled up front; a definition without rules needs no engine.
func NewModel(def *tabledef.Definition, opts ...allocator.Option) (*Model, error) {
	m := &Model{
		Def:         def,
		Log:         logr.Discard(),
		widths:      make(map[string]float64),
		manualVis:   make(map[string]bool),
		ruleApplied: make(map[string]bool),
		colRules:    map[string]rules.Rule{},
		Footer:      NewFooterModel(),
	}

	hasRules := false
	for _, c := range def.Columns {
		if c.VisibleWhen != "" {
			hasRules = true
			break
		}
	}
	if hasRules {
		engine, err := rules.NewEngine()
		if err != nil {
			return nil, fmt.Errorf("visibility rules: %w", err)
		}
		compiled, err := def.CompileRules(engine)
		if err != nil {
			return nil, err
		}
		m.engine = engine
		m.colRules = compiled
	}

	m.Alloc = def.NewAllocator(opts...)
	def.Register(m.Alloc, func(name string, w float64) {
		m.widths[name] = w
	})

	m.Tbl = table.NewModel(m.tableColumns())
	m.Tbl.SetRows(m.sampleRows())
	m.syncFooter()
	return m, nil
}

// Init is part of tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update is part of tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WinWidth = msg.Width
		m.WinHeight = msg.Height
		m.applyRules(float64(msg.Width))
		m.Alloc.SetAvailableWidth(float64(msg.Width))
		m.Footer.SetWidth(msg.Width)
		if msg.Height > 2 {
			m.Tbl.SetHeight(msg.Height - 2)
		}
		m.syncTable()
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.Tbl, cmd = m.Tbl.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	// Prefer the printable text so shift+letter presses and directly
	// constructed test messages dispatch the same way.
	key := msg.String()
	if t := msg.Key().Text; t != "" {
		key = t
	}
	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "h", "left":
		m.moveSelection(-1)

	case "l", "right":
		m.moveSelection(1)

	case "H", "shift+left":
		m.Alloc.Resize(m.selectedName(), -ResizeStep)
		m.syncTable()

	case "L", "shift+right":
		m.Alloc.Resize(m.selectedName(), ResizeStep)
		m.syncTable()

	case "a":
		m.Alloc.AutoSize(m.selectedName())
		m.syncTable()

	case "v":
		name := m.selectedName()
		next := !m.Alloc.Visible(name)
		m.manualVis[name] = next
		m.Alloc.SetVisibility(name, next)
		m.syncTable()

	case "r":
		m.Alloc.Recalculate()
		m.syncTable()
	}
	return m, nil
}

// View is part of tea.Model.
func (m *Model) View() tea.View {
	return tea.NewView(m.Tbl.View() + "\n" + m.Footer.View())
}

// moveSelection steps to the next visible column in the given direction and
// stays put when none exists.
func (m *Model) moveSelection(dir int) {
	n := len(m.Def.Columns)
	for i := m.Selected + dir; i >= 0 && i < n; i += dir {
		if m.Alloc.Visible(m.Def.Columns[i].Name) {
			m.Selected = i
			break
		}
	}
	m.syncFooter()
}

func (m *Model) selectedName() string {
	if m.Selected < 0 || m.Selected >= len(m.Def.Columns) {
		return ""
	}
	return m.Def.Columns[m.Selected].Name
}

// applyRules evaluates each column's visibility rule against the current
// window, skipping columns the user has toggled manually. The column count
// is fixed for the model's lifetime, so a rule that never reads the width
// cannot change its outcome after the first evaluation and is skipped.
func (m *Model) applyRules(width float64) {
	if len(m.colRules) == 0 {
		return
	}
	env := rules.Env{Width: width, Columns: len(m.Def.Columns)}
	for name, rule := range m.colRules {
		if _, manual := m.manualVis[name]; manual {
			continue
		}
		if m.ruleApplied[name] && !rule.DependsOn(rules.VarWidth) {
			continue
		}
		visible, err := rule.Eval(env)
		if err != nil {
			m.Log.Error(err, "visibility rule failed", "column", name, "rule", rule.Expr())
			continue
		}
		m.ruleApplied[name] = true
		m.Alloc.SetVisibility(name, visible)
	}
}

// tableColumns converts the allocator's published widths into bubbles table
// columns, visible columns only, in registration order.
func (m *Model) tableColumns() []table.Column {
	cols := make([]table.Column, 0, len(m.Def.Columns))
	for _, c := range m.Def.Columns {
		if !m.Alloc.Visible(c.Name) {
			continue
		}
		w := m.widths[c.Name]
		if w <= 0 {
			w = c.Min
		}
		cols = append(cols, table.Column{Title: c.DisplayTitle(), Width: int(w)})
	}
	return cols
}

// sampleRows zips the visible columns' sample values into table rows. Columns
// with fewer samples than the longest one pad with empty cells.
func (m *Model) sampleRows() []table.Row {
	visible := make([]tabledef.ColumnDef, 0, len(m.Def.Columns))
	depth := 0
	for _, c := range m.Def.Columns {
		if !m.Alloc.Visible(c.Name) {
			continue
		}
		visible = append(visible, c)
		if len(c.Samples) > depth {
			depth = len(c.Samples)
		}
	}
	rows := make([]table.Row, depth)
	for i := range rows {
		row := make(table.Row, len(visible))
		for j, c := range visible {
			if i < len(c.Samples) {
				row[j] = c.Samples[i]
			}
		}
		rows[i] = row
	}
	return rows
}

func (m *Model) syncTable() {
	m.Tbl.SetColumns(m.tableColumns())
	m.Tbl.SetRows(m.sampleRows())
	m.syncFooter()
}

func (m *Model) syncFooter() {
	m.Footer.Mode = m.Alloc.Mode()
	m.Footer.MinTotal = m.Alloc.MinTotalWidth()
	m.Footer.Scroll = m.Alloc.NeedsHorizontalScroll()
	m.Footer.NoColor = m.NoColor

	name := m.selectedName()
	m.Footer.Selected = name
	if spec, ok := m.Alloc.Spec(name); ok {
		m.Footer.SelectedMin = spec.Min
		m.Footer.SelectedMax = spec.Max
		m.Footer.SelectedWidth = m.Alloc.Width(name)
	}
}
