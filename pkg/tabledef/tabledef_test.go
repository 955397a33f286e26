package tabledef

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/colx/internal/rules"
)

const receiptsYAML = `
name: receipts
chrome_margin: 4
columns:
  - name: date
    star: 1
    min: 80
    max: 120
    preferred: 90
  - name: vendor
    title: Vendor
    star: 2
    min: 100
    samples: ["Acme Wholesale Ltd", "Corner Bakery"]
  - name: amount
    star: 1
    min: 60
    visible_when: "width >= 200.0"
  - name: actions
    fixed: 40
`

const receiptsTOML = `
name = "receipts"
chrome_margin = 4.0

[[columns]]
name = "date"
star = 1.0
min = 80.0

[[columns]]
name = "amount"
star = 1.0
min = 60.0
`

func TestParse(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		def, err := Parse([]byte(receiptsYAML))
		require.NoError(t, err)
		assert.Equal(t, "receipts", def.Name)
		assert.InDelta(t, 4.0, def.ChromeMargin, 1e-9)
		require.Len(t, def.Columns, 4)
		assert.Equal(t, "date", def.Columns[0].Name)
		assert.Equal(t, "Vendor", def.Columns[1].DisplayTitle())
		assert.Equal(t, "amount", def.Columns[2].DisplayTitle())
	})

	t.Run("toml fallthrough", func(t *testing.T) {
		def, err := Parse([]byte(receiptsTOML))
		require.NoError(t, err)
		assert.Equal(t, "receipts", def.Name)
		require.Len(t, def.Columns, 2)
	})

	t.Run("garbage fails", func(t *testing.T) {
		_, err := Parse([]byte("!!!not a definition"))
		assert.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml by extension", func(t *testing.T) {
		path := filepath.Join(dir, "receipts.yaml")
		require.NoError(t, os.WriteFile(path, []byte(receiptsYAML), 0o644))

		def, err := Load(path)
		require.NoError(t, err)
		assert.Len(t, def.Columns, 4)
	})

	t.Run("toml by extension", func(t *testing.T) {
		path := filepath.Join(dir, "receipts.toml")
		require.NoError(t, os.WriteFile(path, []byte(receiptsTOML), 0o644))

		def, err := Load(path)
		require.NoError(t, err)
		assert.Len(t, def.Columns, 2)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "absent.yaml"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() Definition {
		def, err := Parse([]byte(receiptsYAML))
		require.NoError(t, err)
		return def
	}

	t.Run("valid definition passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("duplicate names", func(t *testing.T) {
		def := valid()
		def.Columns[1].Name = "date"
		err := def.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate column name")
	})

	t.Run("min above max", func(t *testing.T) {
		def := valid()
		def.Columns[0].Min = 200
		err := def.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds max")
	})

	t.Run("fixed below min", func(t *testing.T) {
		def := valid()
		def.Columns[3].Min = 60
		err := def.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "below min")
	})

	t.Run("missing star on proportional column", func(t *testing.T) {
		def := valid()
		def.Columns[0].Star = 0
		err := def.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "star weight")
	})

	t.Run("unnamed column", func(t *testing.T) {
		def := valid()
		def.Columns[2].Name = ""
		assert.Error(t, def.Validate())
	})
}

func TestRegister(t *testing.T) {
	def, err := Parse([]byte(receiptsYAML))
	require.NoError(t, err)

	applied := make(map[string]float64)
	a := def.NewAllocator()
	def.Register(a, func(name string, w float64) { applied[name] = w })

	a.SetAvailableWidth(404) // 400 after the 4px chrome margin

	assert.Equal(t, []string{"date", "vendor", "amount", "actions"}, a.Order())
	assert.InDelta(t, 40.0, a.Width("actions"), 0.01, "fixed column")
	assert.GreaterOrEqual(t, a.Width("vendor"), 100.0)
	assert.InDelta(t, a.Width("date"), applied["date"], 0.01)

	t.Run("samples seed auto-size", func(t *testing.T) {
		a.AutoSize("vendor")
		// "Acme Wholesale Ltd" is 18 cells plus padding.
		assert.InDelta(t, 100.0, a.Width("vendor"), 0.01, "measurement below min floors at min")
	})
}

func TestCompileRules(t *testing.T) {
	engine, err := rules.NewEngine()
	require.NoError(t, err)

	t.Run("compiles only declared rules", func(t *testing.T) {
		def, err := Parse([]byte(receiptsYAML))
		require.NoError(t, err)

		compiled, err := def.CompileRules(engine)
		require.NoError(t, err)
		require.Len(t, compiled, 1)

		visible, err := compiled["amount"].Eval(rules.Env{Width: 250})
		require.NoError(t, err)
		assert.True(t, visible)
	})

	t.Run("bad rule names the column", func(t *testing.T) {
		def, err := Parse([]byte(receiptsYAML))
		require.NoError(t, err)
		def.Columns[0].VisibleWhen = "width >"

		_, err = def.CompileRules(engine)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `column "date"`)
	})
}
