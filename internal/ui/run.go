package ui

import (
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/oakwood-commons/colx/pkg/allocator"
	"github.com/oakwood-commons/colx/pkg/logger"
	"github.com/oakwood-commons/colx/pkg/tabledef"
)

// Run starts the preview TUI for a table definition. Width/height of 0
// auto-detect the terminal size, falling back to 80x24. Extra ProgramOptions
// (e.g. custom IO for tests) can be provided to mirror tea.NewProgram.
func Run(def *tabledef.Definition, width, height int, noColor bool, allocOpts []allocator.Option, opts ...tea.ProgramOption) error {
	m, err := NewModel(def, allocOpts...)
	if err != nil {
		return err
	}
	m.NoColor = noColor
	m.Tbl.SetNoColor(noColor)
	m.Log = *logger.GetGlobalLogger()

	runW, runH := width, height
	if runW <= 0 || runH <= 0 {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			if runW <= 0 {
				runW = w
			}
			if runH <= 0 {
				runH = h
			}
		}
	}
	if runW <= 0 {
		runW = 80
	}
	if runH <= 0 {
		runH = 24
	}
	opts = append(opts, tea.WithWindowSize(runW, runH))

	prog := tea.NewProgram(m, opts...)
	_, err = prog.Run()
	return err
}
