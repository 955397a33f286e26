// Package solver holds the pure width computations behind the allocator:
// star-proportional distribution, floor collapse, and the right-walk shrink
// used during interactive resize. Functions here take column snapshots and
// return widths; callers own all state and callback plumbing.
package solver

// Column is a snapshot of one visible column's sizing parameters.
// Current carries the width assigned by the previous pass; only
// ShrinkRight mutates it.
type Column struct {
	Name       string
	Star       float64
	Min        float64
	Max        float64 // <= 0 means uncapped
	Fixed      bool
	FixedWidth float64
	Current    float64
}

// Floor returns the smallest width the column may occupy.
func (c Column) Floor() float64 {
	if c.Fixed {
		return c.FixedWidth
	}
	return c.Min
}

// Clamp bounds w to the column's [Min, Max] range.
// Fixed columns always yield FixedWidth.
func Clamp(c Column, w float64) float64 {
	if c.Fixed {
		return c.FixedWidth
	}
	if w < c.Min {
		w = c.Min
	}
	if c.Max > 0 && w > c.Max {
		w = c.Max
	}
	return w
}

// MinTotal sums the floors of the given columns.
func MinTotal(cols []Column) float64 {
	total := 0.0
	for _, c := range cols {
		total += c.Floor()
	}
	return total
}

// Total sums the current widths of the given columns.
func Total(cols []Column) float64 {
	total := 0.0
	for _, c := range cols {
		total += c.Current
	}
	return total
}

// Collapse assigns every column its floor width. Used when the budget
// cannot even hold the minima and the host must scroll.
func Collapse(cols []Column) []float64 {
	widths := make([]float64, len(cols))
	for i, c := range cols {
		widths[i] = c.Floor()
	}
	return widths
}

// Distribute splits budget across the columns. Fixed columns take their
// FixedWidth off the top; the remainder, floored at propFloor, is divided
// among the rest proportionally to their star weights and clamped to each
// column's bounds.
func Distribute(cols []Column, budget, propFloor float64) []float64 {
	widths := make([]float64, len(cols))

	fixedTotal := 0.0
	totalStars := 0.0
	for _, c := range cols {
		if c.Fixed {
			fixedTotal += c.FixedWidth
		} else {
			totalStars += c.Star
		}
	}

	proportional := budget - fixedTotal
	if proportional < propFloor {
		proportional = propFloor
	}

	widthPerStar := 0.0
	if totalStars > 0 {
		widthPerStar = proportional / totalStars
	}

	for i, c := range cols {
		if c.Fixed {
			widths[i] = c.FixedWidth
			continue
		}
		widths[i] = Clamp(c, c.Star*widthPerStar)
	}
	return widths
}

// ShrinkRight walks the columns strictly to the right of target, in order,
// taking up to each column's headroom above its minimum until need is
// exhausted. Fixed columns are skipped. Columns left of the target are
// never touched. Shrunk columns have Current updated in place; the amount
// that could not be shed is returned.
func ShrinkRight(cols []Column, target int, need float64) float64 {
	for i := target + 1; i < len(cols) && need > 0; i++ {
		if cols[i].Fixed {
			continue
		}
		headroom := cols[i].Current - cols[i].Min
		if headroom <= 0 {
			continue
		}
		take := headroom
		if take > need {
			take = need
		}
		cols[i].Current -= take
		need -= take
	}
	if need < 0 {
		need = 0
	}
	return need
}
