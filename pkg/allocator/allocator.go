package allocator

import (
	"math"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/colx/internal/solver"
)

// column is the allocator-owned mutable state for one registered column.
type column struct {
	name     string
	spec     Spec
	apply    func(float64)
	current  float64
	visible  bool
	measured float64
}

// overflowState distinguishes why the table is wider than the viewport.
// Natural overflow clears as soon as the minima fit again; manual overflow
// (user grew a column past the budget) is sticky and only releases once the
// viewport grows past the current total plus the hysteresis margin.
type overflowState int

const (
	overflowNone overflowState = iota
	overflowNatural
	overflowManual
)

func (s overflowState) mode() Mode {
	if s == overflowNone {
		return Fitted
	}
	return Overflowing
}

// Allocator owns the column registry, the available width, and the overflow
// state for one table instance. The zero value is not usable; construct
// with New.
type Allocator struct {
	log        logr.Logger
	chrome     float64
	hysteresis float64
	propFloor  float64

	order   []string
	columns map[string]*column

	available float64
	overflow  overflowState
	minTotal  float64
	scroll    bool

	// updating is the reentrancy guard: apply callbacks that call back
	// into the allocator hit a no-op instead of recursing.
	updating bool
}

// New returns an allocator with the given options applied.
func New(opts ...Option) *Allocator {
	a := &Allocator{
		log:        logr.Discard(),
		hysteresis: DefaultHysteresis,
		propFloor:  DefaultMinProportionalBudget,
		columns:    make(map[string]*column),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register adds a column with its spec and a callback invoked whenever its
// width changes. Registration order establishes left-to-right adjacency for
// resize redistribution. Re-registering an existing name replaces its spec,
// keeps its order slot and visibility, and resets its width to zero so the
// next layout pass recomputes it. Registration alone does not trigger a
// layout pass.
func (a *Allocator) Register(name string, spec Spec, apply func(float64)) {
	if !a.enter() {
		return
	}
	defer a.leave()

	if apply == nil {
		apply = func(float64) {}
	}
	if col, ok := a.columns[name]; ok {
		col.spec = spec
		col.apply = apply
		col.current = 0
		return
	}
	a.columns[name] = &column{name: name, spec: spec, apply: apply, visible: true}
	a.order = append(a.order, name)
}

// SetVisibility toggles a column in or out of layout and recomputes.
// Unknown names are a no-op.
func (a *Allocator) SetVisibility(name string, visible bool) {
	if !a.enter() {
		return
	}
	defer a.leave()

	col, ok := a.columns[name]
	if !ok || col.visible == visible {
		return
	}
	col.visible = visible
	a.recalculate()
}

// SetMeasuredWidth stores the externally measured content width used by
// AutoSize. Zero clears the hint, falling back to Spec.Preferred.
// Unknown names are a no-op.
func (a *Allocator) SetMeasuredWidth(name string, w float64) {
	if !a.enter() {
		return
	}
	defer a.leave()

	if col, ok := a.columns[name]; ok {
		col.measured = w
	}
}

// SetAvailableWidth updates the viewport budget. Changes below a one-pixel
// epsilon are dropped. While a manual overflow is held, the new width must
// exceed the current total plus the hysteresis margin before the allocator
// resumes fitting columns to the viewport; until then only the derived
// scroll state is republished.
func (a *Allocator) SetAvailableWidth(w float64) {
	if !a.enter() {
		return
	}
	defer a.leave()

	if math.Abs(w-a.available) < widthEpsilon {
		return
	}
	if a.overflow == overflowManual {
		total := a.visibleTotal() + a.chrome
		if w < total+a.hysteresis {
			a.available = w
			a.refreshDerived()
			return
		}
		a.setOverflow(overflowNone)
	}
	a.available = w
	a.recalculate()
}

// Resize applies an interactive drag delta to the named column. The target
// is clamped to its bounds; growth beyond the remaining slack is taken from
// the non-fixed columns strictly to its right, nearest first, down to their
// minima. Growth that cannot fit latches the manual overflow state. No-op
// for unknown, invisible, or fixed columns and for sub-epsilon deltas.
func (a *Allocator) Resize(name string, delta float64) {
	if !a.enter() {
		return
	}
	defer a.leave()
	a.resize(name, delta)
}

// AutoSize resizes the named column to its measured content width, or its
// preferred width when no measurement was supplied, floored at the column
// minimum. The request goes through the same clamp and redistribution logic
// as Resize. No-op for unknown, invisible, or fixed columns.
func (a *Allocator) AutoSize(name string) {
	if !a.enter() {
		return
	}
	defer a.leave()

	col, ok := a.columns[name]
	if !ok || !col.visible || col.spec.Fixed {
		return
	}
	target := col.spec.Preferred
	if col.measured > 0 {
		target = col.measured
	}
	if target < col.spec.Min {
		target = col.spec.Min
	}
	a.resize(name, target-col.current)
}

// Recalculate runs a full reflow from the registered specs and the current
// available width, publishing every visible column's width through its
// apply callback. Callbacks may fire even when a width is unchanged.
func (a *Allocator) Recalculate() {
	if !a.enter() {
		return
	}
	defer a.leave()
	a.recalculate()
}

// Width returns the last computed width for the column, or 0 when unknown.
func (a *Allocator) Width(name string) float64 {
	if col, ok := a.columns[name]; ok {
		return col.current
	}
	return 0
}

// Widths returns the current width of every visible column.
func (a *Allocator) Widths() map[string]float64 {
	widths := make(map[string]float64)
	for _, name := range a.order {
		if col := a.columns[name]; col.visible {
			widths[name] = col.current
		}
	}
	return widths
}

// Order returns the registered column names in layout order.
func (a *Allocator) Order() []string {
	return append([]string(nil), a.order...)
}

// Visible reports whether the column participates in layout.
func (a *Allocator) Visible(name string) bool {
	col, ok := a.columns[name]
	return ok && col.visible
}

// Spec returns the column's registered sizing parameters.
func (a *Allocator) Spec(name string) (Spec, bool) {
	if col, ok := a.columns[name]; ok {
		return col.spec, true
	}
	return Spec{}, false
}

// AvailableWidth returns the current viewport budget.
func (a *Allocator) AvailableWidth() float64 { return a.available }

// NeedsHorizontalScroll reports whether the current total column width
// exceeds the available width and the host must scroll.
func (a *Allocator) NeedsHorizontalScroll() bool { return a.scroll }

// MinTotalWidth returns the smallest total width the table can occupy:
// the sum of per-column floors plus the chrome margin. Hosts size their
// scrollable content with this.
func (a *Allocator) MinTotalWidth() float64 { return a.minTotal }

// Mode returns the allocator's layout state.
func (a *Allocator) Mode() Mode { return a.overflow.mode() }

func (a *Allocator) enter() bool {
	if a.updating {
		return false
	}
	a.updating = true
	return true
}

func (a *Allocator) leave() { a.updating = false }

func (a *Allocator) visibleColumns() []*column {
	vis := make([]*column, 0, len(a.order))
	for _, name := range a.order {
		if col := a.columns[name]; col.visible {
			vis = append(vis, col)
		}
	}
	return vis
}

func (a *Allocator) visibleTotal() float64 {
	total := 0.0
	for _, col := range a.visibleColumns() {
		total += col.current
	}
	return total
}

// snapshot converts allocator columns to solver columns for a computation
// pass.
func snapshot(vis []*column) []solver.Column {
	cols := make([]solver.Column, len(vis))
	for i, c := range vis {
		cols[i] = solver.Column{
			Name:       c.name,
			Star:       c.spec.Star,
			Min:        c.spec.Min,
			Max:        c.spec.Max,
			Fixed:      c.spec.Fixed,
			FixedWidth: c.spec.FixedWidth,
			Current:    c.current,
		}
	}
	return cols
}

func (a *Allocator) resize(name string, delta float64) {
	col, ok := a.columns[name]
	if !ok || !col.visible || col.spec.Fixed || math.Abs(delta) < deltaEpsilon {
		return
	}
	vis := a.visibleColumns()
	target := -1
	for i, c := range vis {
		if c == col {
			target = i
			break
		}
	}
	if target < 0 {
		return
	}

	cols := snapshot(vis)
	newWidth := solver.Clamp(cols[target], col.current+delta)
	actual := newWidth - col.current
	if math.Abs(actual) < deltaEpsilon {
		return
	}

	budget := a.available - a.chrome
	currentTotal := solver.Total(cols)
	if actual > 0 && currentTotal+actual > budget {
		// Deliberate, user-initiated overflow: the table is now wider than
		// the viewport and must scroll.
		a.setOverflow(overflowManual)
	}

	col.current = newWidth
	cols[target].Current = newWidth
	col.apply(newWidth)

	// Only force shrinkage on right neighbors for growth the existing
	// slack could not absorb.
	slack := budget - currentTotal
	if slack < 0 {
		slack = 0
	}
	if shrinkNeeded := actual - slack; shrinkNeeded > deltaEpsilon {
		solver.ShrinkRight(cols, target, shrinkNeeded)
		for i := target + 1; i < len(cols); i++ {
			if math.Abs(cols[i].Current-vis[i].current) >= deltaEpsilon {
				vis[i].current = cols[i].Current
				vis[i].apply(cols[i].Current)
			}
		}
	}
	a.refreshDerived()
}

func (a *Allocator) recalculate() {
	vis := a.visibleColumns()
	if len(vis) == 0 {
		a.minTotal = a.chrome
		a.scroll = false
		if a.overflow != overflowManual {
			a.setOverflow(overflowNone)
		}
		return
	}
	cols := snapshot(vis)
	minTotal := solver.MinTotal(cols) + a.chrome

	if a.overflow == overflowManual {
		total := solver.Total(cols) + a.chrome
		if a.available < total+a.hysteresis {
			// Keep the manually grown widths; republish derived state only.
			a.refreshDerived()
			return
		}
		a.setOverflow(overflowNone)
	}

	if a.available <= minTotal {
		// There is no room beyond the minima; no proportional distribution,
		// everything collapses to its floor and the host scrolls.
		a.publish(vis, solver.Collapse(cols))
		a.minTotal = minTotal
		a.scroll = true
		if a.overflow != overflowManual {
			a.setOverflow(overflowNatural)
		}
		return
	}
	a.publish(vis, solver.Distribute(cols, a.available-a.chrome, a.propFloor))
	a.refreshDerived()
}

func (a *Allocator) publish(vis []*column, widths []float64) {
	for i, col := range vis {
		col.current = widths[i]
		col.apply(widths[i])
	}
}

// refreshDerived recomputes minimum total width, the scroll flag, and the
// natural overflow state from the currently applied widths. The manual
// overflow latch is never cleared here.
func (a *Allocator) refreshDerived() {
	vis := a.visibleColumns()
	cols := snapshot(vis)
	a.minTotal = solver.MinTotal(cols) + a.chrome
	total := solver.Total(cols) + a.chrome
	a.scroll = a.available <= a.minTotal || total > a.available+deltaEpsilon
	if a.overflow != overflowManual {
		if a.scroll {
			a.setOverflow(overflowNatural)
		} else {
			a.setOverflow(overflowNone)
		}
	}
}

func (a *Allocator) setOverflow(s overflowState) {
	if a.overflow == s {
		return
	}
	a.log.V(1).Info("layout state change",
		"from", a.overflow.mode().String(),
		"to", s.mode().String(),
		"available", a.available,
		"min_total", a.minTotal,
	)
	a.overflow = s
}
