// Package allocator implements the column-width allocation engine behind
// resizable data tables: star-proportional distribution over an available
// width, interactive drag-resize with right-only redistribution, auto-size
// to content, and an overflow state with hysteresis for when the columns
// no longer fit and the host must scroll.
//
// The allocator is the sole owner of column widths. Hosts register columns
// once, then push events (available-width changes, visibility toggles,
// resize deltas, auto-size requests); each event recomputes widths and
// publishes them through per-column apply callbacks.
//
// The engine is single-threaded by contract: calls must arrive serially
// from one input source. Apply callbacks must not re-enter the allocator;
// a nested call is a silent no-op, not a deadlock.
package allocator

import "github.com/go-logr/logr"

// Spec holds one column's sizing parameters. Immutable after registration
// except by re-registering the column.
type Spec struct {
	// Star is the proportional weight used to split leftover space among
	// non-fixed columns. Ignored when Fixed is true.
	Star float64

	// Min and Max bound the computed width (inclusive). Max <= 0 means
	// uncapped. The allocator does not validate Min <= Max; feed it
	// malformed bounds and clamping is best-effort.
	Min float64
	Max float64

	// Preferred is the auto-size fallback when no measured content width
	// has been supplied.
	Preferred float64

	// Fixed pins the column to FixedWidth. Fixed columns never participate
	// in proportional distribution or shrink redistribution.
	Fixed      bool
	FixedWidth float64
}

// Mode is the allocator's layout state.
type Mode int

const (
	// Fitted means the visible columns sum to at most the available width
	// and proportional distribution is active.
	Fitted Mode = iota

	// Overflowing means the columns are wider than the viewport, either
	// because even the minima do not fit or because the user grew a column
	// past the budget. The host should show a horizontal scroll container
	// sized by MinTotalWidth.
	Overflowing
)

func (m Mode) String() string {
	switch m {
	case Overflowing:
		return "overflowing"
	default:
		return "fitted"
	}
}

// Tunable defaults. The 50px hysteresis and 100px proportional-budget
// floor are carried over from the tables this engine replaced; override
// them with the options below rather than editing call sites.
const (
	DefaultHysteresis            = 50.0
	DefaultMinProportionalBudget = 100.0
)

// Sub-epsilon events are dropped so floating-point layout noise cannot
// trigger recompute loops.
const (
	widthEpsilon = 1.0
	deltaEpsilon = 0.5
)

// Option configures an Allocator at construction.
type Option func(*Allocator)

// WithChromeMargin reserves a constant number of pixels (row-action
// gutters and similar fixed chrome) off the available width before any
// distribution.
func WithChromeMargin(px float64) Option {
	return func(a *Allocator) { a.chrome = px }
}

// WithHysteresis sets the margin the viewport must grow past the current
// total before a manual overflow is released.
func WithHysteresis(px float64) Option {
	return func(a *Allocator) { a.hysteresis = px }
}

// WithMinProportionalBudget sets the floor for the budget shared among
// proportional columns.
func WithMinProportionalBudget(px float64) Option {
	return func(a *Allocator) { a.propFloor = px }
}

// WithLogger attaches a logger; state transitions are logged at V(1).
func WithLogger(log logr.Logger) Option {
	return func(a *Allocator) { a.log = log }
}
