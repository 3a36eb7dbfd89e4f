package catalog

import "math"

// VirtualizeThreshold is the entry count above which a grid should render
// only its visible rows. Small catalogs are materialized fully so per-item
// animation stays cheap; the cutoff is a constant, not proportional.
const VirtualizeThreshold = 120

// GridSpec is the fixed sizing input: minimum cell width, the gap between
// cells, and the container's horizontal padding, all in pixels.
type GridSpec struct {
	MinCellWidth float64
	Gap          float64
	Padding      float64
	CellHeight   float64
}

// DefaultGridSpec matches the catalog's poster cells.
var DefaultGridSpec = GridSpec{
	MinCellWidth: 220,
	Gap:          16,
	Padding:      24,
	CellHeight:   330,
}

// GridLayout is derived, never stored: recompute it from the container
// width on every resize. All mappings are pure so a renderer can re-derive
// positions each frame without per-cell state.
type GridLayout struct {
	Spec        GridSpec
	Width       float64
	Count       int
	Columns     int
	ColumnWidth float64
	Rows        int
}

// ComputeGrid fits as many columns of at least MinCellWidth as the inner
// width allows, then stretches them evenly.
func ComputeGrid(width float64, count int, spec GridSpec) GridLayout {
	inner := width - 2*spec.Padding
	cols := int(math.Floor((inner + spec.Gap) / (spec.MinCellWidth + spec.Gap)))
	if cols < 1 {
		cols = 1
	}

	rows := 0
	if count > 0 {
		rows = (count + cols - 1) / cols
	}

	return GridLayout{
		Spec:        spec,
		Width:       width,
		Count:       count,
		Columns:     cols,
		ColumnWidth: inner / float64(cols),
		Rows:        rows,
	}
}

// Virtualized reports whether the layout should instantiate only visible
// rows.
func (g GridLayout) Virtualized() bool { return g.Count > VirtualizeThreshold }

// CellAt maps a linear index to its row and column.
func (g GridLayout) CellAt(index int) (row, col int) {
	return index / g.Columns, index % g.Columns
}

// Index maps (row, col) back to a linear index. Indices at or beyond
// Count are placeholder cells.
func (g GridLayout) Index(row, col int) int { return row*g.Columns + col }

// Placeholder reports whether the cell at index pads out the final row.
// Placeholders occupy normal layout space so the row does not collapse.
func (g GridLayout) Placeholder(index int) bool {
	return index >= g.Count && index < g.Rows*g.Columns
}

// CellPos returns the absolute top-left position of the cell at index.
// Columns tile edge to edge at ColumnWidth stride; the gap lives inside
// each cell's box.
func (g GridLayout) CellPos(index int) (x, y float64) {
	row, col := g.CellAt(index)
	x = g.Spec.Padding + float64(col)*g.ColumnWidth
	y = g.Spec.Padding + float64(row)*(g.Spec.CellHeight+g.Spec.Gap)
	return x, y
}

// TotalHeight is the scrollable height of the whole grid.
func (g GridLayout) TotalHeight() float64 {
	if g.Rows == 0 {
		return 2 * g.Spec.Padding
	}
	return 2*g.Spec.Padding + float64(g.Rows)*g.Spec.CellHeight + float64(g.Rows-1)*g.Spec.Gap
}

// RowRange returns the inclusive range of rows intersecting the viewport
// [scrollTop, scrollTop+viewportHeight] widened by margin on both sides.
// Returns (0, -1) when the grid is empty.
func (g GridLayout) RowRange(scrollTop, viewportHeight, margin float64) (first, last int) {
	if g.Rows == 0 {
		return 0, -1
	}
	rowStride := g.Spec.CellHeight + g.Spec.Gap

	first = int(math.Floor((scrollTop - margin - g.Spec.Padding) / rowStride))
	if first < 0 {
		first = 0
	}
	last = int(math.Floor((scrollTop + viewportHeight + margin - g.Spec.Padding) / rowStride))
	if last > g.Rows-1 {
		last = g.Rows - 1
	}
	if first > last {
		first = last
	}
	return first, last
}

// IndexRange converts a row range into the [first, last] linear indices
// of real (non-placeholder) cells it covers. Returns (0, -1) for an
// empty range.
func (g GridLayout) IndexRange(firstRow, lastRow int) (first, last int) {
	if lastRow < firstRow || g.Count == 0 {
		return 0, -1
	}
	first = firstRow * g.Columns
	last = (lastRow+1)*g.Columns - 1
	if last >= g.Count {
		last = g.Count - 1
	}
	return first, last
}
