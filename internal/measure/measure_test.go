package measure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellWidth(t *testing.T) {
	t.Run("ascii", func(t *testing.T) {
		assert.InDelta(t, 5.0, CellWidth("hello"), 1e-9)
	})

	t.Run("empty", func(t *testing.T) {
		assert.InDelta(t, 0.0, CellWidth(""), 1e-9)
	})

	t.Run("wide runes count double", func(t *testing.T) {
		assert.InDelta(t, 4.0, CellWidth("日本"), 1e-9)
	})

	t.Run("multi-line takes the widest line", func(t *testing.T) {
		assert.InDelta(t, 6.0, CellWidth("ab\nabcdef\ncd"), 1e-9)
	})
}

func TestContentWidth(t *testing.T) {
	t.Run("widest sample plus padding", func(t *testing.T) {
		samples := []string{"202.50", "1,024.00", "7.99"}
		assert.InDelta(t, 8.0+CellPadding, ContentWidth(samples), 1e-9)
	})

	t.Run("no samples means no measurement", func(t *testing.T) {
		assert.InDelta(t, 0.0, ContentWidth(nil), 1e-9)
		assert.InDelta(t, 0.0, ContentWidth([]string{""}), 1e-9)
	})
}
