package ui

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/colx/pkg/allocator"
	"github.com/oakwood-commons/colx/pkg/tabledef"
)

func receiptsDef() *tabledef.Definition {
	return &tabledef.Definition{
		Name:         "receipts",
		ChromeMargin: 4,
		Columns: []tabledef.ColumnDef{
			{Name: "date", Title: "Date", Star: 1, Min: 80, Max: 120, Samples: []string{"2026-01-02"}},
			{Name: "vendor", Title: "Vendor", Star: 2, Min: 100, Samples: []string{"Acme Wholesale Ltd"}},
			{Name: "amount", Title: "Amount", Star: 1, Min: 60, Max: 140, Samples: []string{"1,204.50"}},
			{Name: "actions", Fixed: 40},
		},
	}
}

func previewModel(t *testing.T) *Model {
	t.Helper()
	m, err := NewModel(receiptsDef())
	require.NoError(t, err)
	return m
}

func press(m *Model, key string) {
	m.Update(tea.KeyPressMsg{Code: rune(key[0]), Text: key})
}

func TestWindowSizeDrivesAllocation(t *testing.T) {
	m := previewModel(t)
	m.Update(tea.WindowSizeMsg{Width: 404, Height: 20})

	assert.InDelta(t, 90, m.widths["date"], 0.001)
	assert.InDelta(t, 180, m.widths["vendor"], 0.001)
	assert.InDelta(t, 90, m.widths["amount"], 0.001)
	assert.InDelta(t, 40, m.widths["actions"], 0.001)
	assert.Equal(t, allocator.Fitted, m.Alloc.Mode())

	cols := m.tableColumns()
	require.Len(t, cols, 4)
	assert.Equal(t, "Vendor", cols[1].Title)
	assert.Equal(t, 180, cols[1].Width)
}

func TestSelectionMovesAcrossVisibleColumns(t *testing.T) {
	m := previewModel(t)
	m.Update(tea.WindowSizeMsg{Width: 404, Height: 20})

	press(m, "l")
	assert.Equal(t, "vendor", m.selectedName())
	press(m, "l")
	press(m, "l")
	assert.Equal(t, "actions", m.selectedName())
	press(m, "l")
	assert.Equal(t, "actions", m.selectedName(), "selection stays at the last column")
	press(m, "h")
	assert.Equal(t, "amount", m.selectedName())
}

func TestResizeKeysShrinkRightNeighbors(t *testing.T) {
	m := previewModel(t)
	m.Update(tea.WindowSizeMsg{Width: 404, Height: 20})

	press(m, "l") // select vendor
	press(m, "L") // grow by ResizeStep

	assert.InDelta(t, 184, m.widths["vendor"], 0.001)
	assert.InDelta(t, 86, m.widths["amount"], 0.001, "right neighbor absorbs the growth")
	assert.InDelta(t, 90, m.widths["date"], 0.001, "left neighbor untouched")
}

func TestAutoSizeUsesSampleMeasurement(t *testing.T) {
	m := previewModel(t)
	m.Update(tea.WindowSizeMsg{Width: 404, Height: 20})

	press(m, "l") // select vendor
	press(m, "a")

	// "Acme Wholesale Ltd" measures well below the 100 minimum.
	assert.InDelta(t, 100, m.widths["vendor"], 0.001)
}

func TestVisibilityToggleAndReflow(t *testing.T) {
	m := previewModel(t)
	m.Update(tea.WindowSizeMsg{Width: 404, Height: 20})

	press(m, "l") // select vendor
	press(m, "v")

	assert.False(t, m.Alloc.Visible("vendor"))
	cols := m.tableColumns()
	require.Len(t, cols, 3)
	// 360 proportional budget over date(1)+amount(1): both hit their max.
	assert.InDelta(t, 120, m.widths["date"], 0.001)
	assert.InDelta(t, 140, m.widths["amount"], 0.001)

	press(m, "v")
	assert.True(t, m.Alloc.Visible("vendor"))
	press(m, "r")
	assert.InDelta(t, 180, m.widths["vendor"], 0.001)
}

func TestVisibilityRulesFollowWindowWidth(t *testing.T) {
	def := receiptsDef()
	def.Columns[2].VisibleWhen = "width >= 500.0"
	m, err := NewModel(def)
	require.NoError(t, err)

	m.Update(tea.WindowSizeMsg{Width: 404, Height: 20})
	assert.False(t, m.Alloc.Visible("amount"))

	m.Update(tea.WindowSizeMsg{Width: 600, Height: 20})
	assert.True(t, m.Alloc.Visible("amount"))
}

func TestRuleEvalFailureIsLoggedAndKeepsColumn(t *testing.T) {
	def := receiptsDef()
	// Compiles fine but divides by zero at evaluation time: the
	// definition has exactly four columns.
	def.Columns[2].VisibleWhen = "100 % (columns - 4) == 0"
	m, err := NewModel(def)
	require.NoError(t, err)

	var logged []string
	m.Log = funcr.New(func(prefix, args string) {
		logged = append(logged, args)
	}, funcr.Options{})

	m.Update(tea.WindowSizeMsg{Width: 404, Height: 20})

	assert.True(t, m.Alloc.Visible("amount"), "a failing rule must not hide the column")
	require.Len(t, logged, 1)
	assert.Contains(t, logged[0], "visibility rule failed")
	assert.Contains(t, logged[0], "amount")
}

func TestWidthIndependentRuleEvaluatesOnce(t *testing.T) {
	def := receiptsDef()
	def.Columns[2].VisibleWhen = "columns >= 5"
	m, err := NewModel(def)
	require.NoError(t, err)

	m.Update(tea.WindowSizeMsg{Width: 404, Height: 20})
	require.False(t, m.Alloc.Visible("amount"))

	// Flip visibility behind the model's back; a rule that never reads
	// the width must not be re-applied on the next resize.
	m.Alloc.SetVisibility("amount", true)
	m.Update(tea.WindowSizeMsg{Width: 600, Height: 20})
	assert.True(t, m.Alloc.Visible("amount"))
}

func TestManualToggleOverridesRule(t *testing.T) {
	def := receiptsDef()
	def.Columns[2].VisibleWhen = "width >= 500.0"
	m, err := NewModel(def)
	require.NoError(t, err)

	m.Update(tea.WindowSizeMsg{Width: 600, Height: 20})
	m.Selected = 2
	press(m, "v")
	require.False(t, m.Alloc.Visible("amount"))

	// A rule that would show the column again must not win over the toggle.
	m.Update(tea.WindowSizeMsg{Width: 700, Height: 20})
	assert.False(t, m.Alloc.Visible("amount"))
}

func TestBadRuleFailsModelConstruction(t *testing.T) {
	def := receiptsDef()
	def.Columns[0].VisibleWhen = "width +"
	_, err := NewModel(def)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "date")
}

func TestSampleRowsPadShortColumns(t *testing.T) {
	m := previewModel(t)
	m.Update(tea.WindowSizeMsg{Width: 404, Height: 20})

	rows := m.sampleRows()
	require.Len(t, rows, 1)
	require.Len(t, rows[0], 4)
	assert.Equal(t, "Acme Wholesale Ltd", rows[0][1])
	assert.Equal(t, "", rows[0][3], "column without samples pads with empty cells")
}

func TestQuitKeyReturnsQuitCmd(t *testing.T) {
	m := previewModel(t)
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	require.NotNil(t, cmd)
}

func TestFooterShowsModeAndSelectedBounds(t *testing.T) {
	m := previewModel(t)
	m.NoColor = true
	m.Update(tea.WindowSizeMsg{Width: 404, Height: 20})

	status := m.Footer.statusText()
	assert.True(t, strings.HasPrefix(status, "[fitted"), status)
	assert.Contains(t, status, "date 90 (80..120)")

	// Force overflow and check the footer follows.
	m.Update(tea.WindowSizeMsg{Width: 150, Height: 20})
	status = m.Footer.statusText()
	assert.True(t, strings.HasPrefix(status, "[overflowing"), status)
	assert.Contains(t, status, "scroll")
}
