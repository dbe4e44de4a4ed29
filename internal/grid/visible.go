package grid

import "math"

// Tile is one materialized cell. Tiles are recomputed on every visibility
// pass and carry no identity beyond their key.
type Tile struct {
	Key  int
	Row  int
	Col  int
	Left float64 // Pixel position of the cell's left edge in grid space
	Top  float64 // Pixel position of the cell's top edge in grid space
}

// Range is an inclusive block of rows and columns.
type Range struct {
	StartRow int
	EndRow   int
	StartCol int
	EndCol   int
}

// Rows returns the number of rows in the range.
func (r Range) Rows() int { return max(0, r.EndRow-r.StartRow+1) }

// Cols returns the number of columns in the range.
func (r Range) Cols() int { return max(0, r.EndCol-r.StartCol+1) }

// Count returns the number of tiles in the range.
func (r Range) Count() int { return r.Rows() * r.Cols() }

// VisibleRange computes the rows and columns that must be materialized for
// the viewport at offset, expanded by Buffer cells on every side and clamped
// to [0, VirtualSize-1]. The second result is false when the viewport has not
// been measured.
func (c Config) VisibleRange(offset Vec, viewport Size) (Range, bool) {
	if viewport.Empty() {
		return Range{}, false
	}

	px, py := c.PeriodX(), c.PeriodY()
	last := c.VirtualSize - 1

	r := Range{
		StartCol: clampIndex(floorDiv(offset.X, px)-c.Buffer, last),
		EndCol:   clampIndex(floorDiv(offset.X+viewport.Width, px)+c.Buffer, last),
		StartRow: clampIndex(floorDiv(offset.Y, py)-c.Buffer, last),
		EndRow:   clampIndex(floorDiv(offset.Y+viewport.Height, py)+c.Buffer, last),
	}
	if r.Count() == 0 {
		return r, false
	}
	return r, true
}

// Visible returns every tile in VisibleRange, row-major. An unmeasured
// viewport yields an empty result; this is the expected state during the
// first layout, not an error.
func (c Config) Visible(offset Vec, viewport Size) []Tile {
	r, ok := c.VisibleRange(offset, viewport)
	if !ok {
		return nil
	}

	tiles := make([]Tile, 0, r.Count())
	for row := r.StartRow; row <= r.EndRow; row++ {
		for col := r.StartCol; col <= r.EndCol; col++ {
			origin := c.CellOrigin(row, col)
			tiles = append(tiles, Tile{
				Key:  c.Key(row, col),
				Row:  row,
				Col:  col,
				Left: origin.X,
				Top:  origin.Y,
			})
		}
	}
	return tiles
}

// floorDiv returns floor(v/d) as an int, saturating non-finite input to 0.
func floorDiv(v, d float64) int {
	q := math.Floor(v / d)
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 0
	}
	if q > math.MaxInt32 {
		return math.MaxInt32
	}
	if q < math.MinInt32 {
		return math.MinInt32
	}
	return int(q)
}

func clampIndex(i, last int) int {
	return max(0, min(i, last))
}
