// Package measure computes display widths for cell content so columns can
// be auto-sized to what they actually hold.
package measure

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// CellPadding is the space the renderer adds around cell content; measured
// widths include it so an auto-sized column does not clip its widest cell.
const CellPadding = 2

// CellWidth returns the display width of one cell in terminal cells, taking
// the widest line for multi-line content. Wide (CJK) runes count as two.
func CellWidth(s string) float64 {
	widest := 0
	for _, line := range strings.Split(s, "\n") {
		if w := runewidth.StringWidth(line); w > widest {
			widest = w
		}
	}
	return float64(widest)
}

// ContentWidth returns the width needed to show every sample without
// truncation, including cell padding. Zero when there are no samples,
// which tells the allocator to fall back to the column's preferred width.
func ContentWidth(samples []string) float64 {
	widest := 0.0
	for _, s := range samples {
		if w := CellWidth(s); w > widest {
			widest = w
		}
	}
	if widest == 0 {
		return 0
	}
	return widest + CellPadding
}
