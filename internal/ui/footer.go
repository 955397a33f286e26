package ui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/colx/pkg/allocator"
)

// FooterModel renders the status line under the preview table: the layout
// mode, the minimum total width, the selected column's bounds, and the key
// hints.
type FooterModel struct {
	NoColor bool
	Width   int

	Mode     allocator.Mode
	MinTotal float64
	Scroll   bool

	Selected      string
	SelectedWidth float64
	SelectedMin   float64
	SelectedMax   float64
}

// NewFooterModel creates a footer with a default width.
func NewFooterModel() FooterModel {
	return FooterModel{Width: 92}
}

// Update handles messages for the footer. The footer is passive.
func (m FooterModel) Update(_ tea.Msg) (FooterModel, tea.Cmd) {
	return m, nil
}

// SetWidth sets the footer width used for right-aligning the status segment.
func (m *FooterModel) SetWidth(width int) {
	m.Width = width
}

// View renders the footer as key hints on the left and allocator status on
// the right.
func (m FooterModel) View() string {
	keyStyle := lipgloss.NewStyle()
	if !m.NoColor {
		keyStyle = keyStyle.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("240")).Bold(true)
	} else {
		keyStyle = keyStyle.Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#ffffff")).Bold(true)
	}

	parts := []string{
		keyStyle.Render("h/l"), "column",
		keyStyle.Render("H/L"), "resize",
		keyStyle.Render("a"), "auto",
		keyStyle.Render("v"), "hide",
		keyStyle.Render("r"), "reflow",
		keyStyle.Render("q"), "quit",
	}
	helpLine := strings.Join(parts, " ")

	status := m.statusText()
	statusStyle := lipgloss.NewStyle()
	if !m.NoColor {
		statusStyle = statusStyle.Foreground(lipgloss.Color("245"))
	}

	helpLen := lipgloss.Width(helpLine)
	statusLen := len(status)
	if m.Width > helpLen+statusLen+2 {
		spacing := m.Width - helpLen - statusLen - 2
		return helpLine + strings.Repeat(" ", spacing) + statusStyle.Render(status)
	}
	return helpLine + " " + statusStyle.Render(status)
}

func (m FooterModel) statusText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s min=%.0f", m.Mode, m.MinTotal)
	if m.Scroll {
		b.WriteString(" scroll")
	}
	if m.Selected != "" {
		fmt.Fprintf(&b, " | %s %.0f", m.Selected, m.SelectedWidth)
		if m.SelectedMax > 0 {
			fmt.Fprintf(&b, " (%.0f..%.0f)", m.SelectedMin, m.SelectedMax)
		} else {
			fmt.Fprintf(&b, " (%.0f..)", m.SelectedMin)
		}
	}
	b.WriteString("]")
	return b.String()
}
