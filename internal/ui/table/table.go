// Package table wraps the bubbles table component for the preview TUI.
// Column widths always come from the allocator; the wrapper only handles
// styling and row plumbing.
package table

import (
	bubtable "charm.land/bubbles/v2/table"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// Re-export the bubbles column/row types so callers can construct them
// without importing bubbles directly.
type Column = bubtable.Column
type Row = bubtable.Row

// Model wraps bubtable.Model with the styling the preview uses.
type Model struct {
	table   bubtable.Model
	styles  bubtable.Styles
	noColor bool
}

// NewModel creates a table with the preview's default styles.
func NewModel(columns []Column) *Model {
	t := bubtable.New(
		bubtable.WithColumns(columns),
		bubtable.WithFocused(true),
		bubtable.WithHeight(8),
	)

	s := bubtable.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Bold(true).
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(1)
	s.Selected = s.Selected.
		PaddingLeft(0).
		PaddingRight(1)
	s.Cell = lipgloss.NewStyle().
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(1)
	t.SetStyles(s)

	return &Model{table: t, styles: s}
}

// SetColumns replaces the column set. Bubbles requires row widths to match
// the column count, so callers must follow with SetRows.
func (m *Model) SetColumns(columns []Column) {
	m.table.SetRows(nil)
	m.table.SetColumns(columns)
}

// SetRows replaces the row set.
func (m *Model) SetRows(rows []Row) {
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(0)
	}
}

// SetHeight sets the number of body rows shown.
func (m *Model) SetHeight(h int) {
	m.table.SetHeight(h)
}

// Cursor returns the selected row index.
func (m *Model) Cursor() int {
	return m.table.Cursor()
}

// SetNoColor switches to a monochrome style with a reversed selection bar.
func (m *Model) SetNoColor(noColor bool) {
	m.noColor = noColor
	s := m.styles
	if noColor {
		s.Header = s.Header.UnsetForeground().UnsetBackground()
		s.Selected = s.Selected.UnsetForeground().UnsetBackground().Reverse(true)
		s.Cell = s.Cell.UnsetForeground().UnsetBackground()
	}
	m.table.SetStyles(s)
	m.styles = s
}

// Update forwards messages to the wrapped table for row navigation.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the table.
func (m *Model) View() string {
	return m.table.View()
}

// Width returns the rendered width of the table.
func (m *Model) Width() int {
	return lipgloss.Width(m.View())
}
