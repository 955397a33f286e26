// Package cmd implements the colx command line interface: load a table
// definition, drive the width allocator with the requested events, and
// either print the resulting layout or open the interactive preview.
package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/oakwood-commons/colx/internal/rules"
	"github.com/oakwood-commons/colx/internal/ui"
	"github.com/oakwood-commons/colx/pkg/allocator"
	"github.com/oakwood-commons/colx/pkg/logger"
	"github.com/oakwood-commons/colx/pkg/settings"
	"github.com/oakwood-commons/colx/pkg/tabledef"
)

var (
	rootCtx context.Context

	width       int
	interactive bool
	output      string
	noColor     bool
	debug       bool
	noRules     bool

	hideCols     []string
	autosizeCols []string
	resizeSpecs  []string
)

var rootCmd = &cobra.Command{
	Use:   settings.CliBinaryName + " <table.(yaml|toml)>",
	Short: "Preview and compute column width layouts for table definitions",
	Long: `colx loads a declarative table definition and runs its column
width allocation: star-proportional distribution over the available width,
min/max clamping, fixed columns, drag-resize with right-only redistribution,
and overflow detection with hysteresis.

By default it prints the computed layout; with -i it opens an interactive
preview where columns can be resized, auto-sized, and hidden live.`,
	Example: "\n  colx examples/receipts.yaml\n  colx examples/receipts.yaml --width 404\n  colx examples/receipts.yaml --resize vendor=25 --output yaml\n  colx -i examples/receipts.yaml\n",
	Args:    cobra.ExactArgs(1),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		params := settings.NewCliParams()
		params.NoColor = noColor
		if debug {
			params.MinLogLevel = -1
		}
		lgr := logger.Get(params.MinLogLevel)
		lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName)
		if len(args) > 0 {
			lgr = logger.WithValues(lgr, logger.TableKey, args[0])
		}
		rootCtx = settings.IntoContext(logger.WithLogger(context.Background(), lgr), params)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return run(args[0])
	},
}

func run(path string) error {
	lgr := logger.FromContext(rootCtx)
	mono := noColor
	if params, ok := settings.FromContext(rootCtx); ok {
		mono = params.NoColor
	}

	def, err := tabledef.Load(path)
	if err != nil {
		return err
	}
	if err := def.Validate(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	w := width
	if w <= 0 {
		w = detectTerminalWidth()
	}

	if interactive {
		var allocOpts []allocator.Option
		if debug {
			allocOpts = append(allocOpts, allocator.WithLogger(*lgr))
		}
		return ui.Run(&def, w, 0, mono, allocOpts)
	}

	report, err := buildReport(def, float64(w))
	if err != nil {
		return err
	}

	switch output {
	case "table":
		fmt.Fprint(os.Stdout, renderReportTable(report, mono))
	case "yaml":
		out, err := renderReportYAML(report)
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, out)
	case "json":
		out, err := renderReportJSON(report)
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, out)
	default:
		return fmt.Errorf("invalid --output value %q (expected 'table', 'yaml', or 'json')", output)
	}
	return nil
}

// buildReport runs the allocator for a definition at the given width,
// replaying the event flags: visibility first (rules, then --hide), then
// --autosize, then --resize.
func buildReport(def tabledef.Definition, available float64) (Report, error) {
	widths := make(map[string]float64)
	a := def.NewAllocator()
	def.Register(a, func(name string, w float64) {
		widths[name] = w
	})

	if !noRules {
		if err := applyVisibilityRules(def, a, available); err != nil {
			return Report{}, err
		}
	}
	a.SetAvailableWidth(available)

	for _, name := range hideCols {
		a.SetVisibility(strings.TrimSpace(name), false)
	}
	for _, name := range autosizeCols {
		a.AutoSize(strings.TrimSpace(name))
	}
	for _, spec := range resizeSpecs {
		name, delta, err := parseResizeSpec(spec)
		if err != nil {
			return Report{}, err
		}
		a.Resize(name, delta)
	}

	return newReport(def, a, widths), nil
}

// applyVisibilityRules compiles each column's visible_when expression and
// applies the result before the width is set, so the first distribution
// already sees the rule-driven column set.
func applyVisibilityRules(def tabledef.Definition, a *allocator.Allocator, available float64) error {
	engine, err := rules.NewEngine()
	if err != nil {
		return err
	}
	compiled, err := def.CompileRules(engine)
	if err != nil {
		return err
	}
	if len(compiled) == 0 {
		return nil
	}
	env := rules.Env{Width: available, Columns: len(def.Columns)}
	names := make([]string, 0, len(compiled))
	for name := range compiled {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		visible, err := compiled[name].Eval(env)
		if err != nil {
			return fmt.Errorf("column %q: %w", name, err)
		}
		a.SetVisibility(name, visible)
	}
	return nil
}

// parseResizeSpec splits a --resize argument of the form name=delta.
func parseResizeSpec(spec string) (string, float64, error) {
	name, raw, ok := strings.Cut(spec, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", 0, fmt.Errorf("invalid --resize value %q (expected name=delta)", spec)
	}
	delta, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid --resize delta in %q: %w", spec, err)
	}
	return name, delta, nil
}

func detectTerminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

func init() { //nolint:gochecknoinits
	rootCmd.Flags().IntVarP(&width, "width", "w", 0, "available width in cells (default: terminal width)")
	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "open the interactive preview TUI")
	rootCmd.Flags().StringVarP(&output, "output", "o", "table", "layout output format: table, yaml, or json")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&noRules, "no-rules", false, "skip visible_when rule evaluation")
	rootCmd.Flags().StringArrayVar(&hideCols, "hide", nil, "hide a column before computing the layout (repeatable)")
	rootCmd.Flags().StringArrayVar(&autosizeCols, "autosize", nil, "auto-size a column to its sample content (repeatable)")
	rootCmd.Flags().StringArrayVar(&resizeSpecs, "resize", nil, "resize a column by name=delta after distribution (repeatable)")

	// Accept hyphenated spellings for the multi-word flags.
	rootCmd.Flags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		switch name {
		case "auto-size":
			name = "autosize"
		case "nocolor":
			name = "no-color"
		}
		return pflag.NormalizedName(name)
	})
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
