package grid

import "math"

// TileAt hit-tests a point in grid space. It returns false when the point
// falls in a gap, in the empty half cell left of an odd staggered row, or
// outside the backing grid.
func (c Config) TileAt(p Vec) (Tile, bool) {
	if p.X < 0 || p.Y < 0 {
		return Tile{}, false
	}

	py := c.PeriodY()
	row := int(math.Floor(p.Y / py))
	if row >= c.VirtualSize || p.Y-float64(row)*py >= float64(c.CellHeight) {
		return Tile{}, false
	}

	px := c.PeriodX()
	x := p.X - c.StaggerOffset(row)
	if x < 0 {
		return Tile{}, false
	}
	col := int(math.Floor(x / px))
	if col >= c.VirtualSize || x-float64(col)*px >= float64(c.CellWidth) {
		return Tile{}, false
	}

	origin := c.CellOrigin(row, col)
	return Tile{
		Key:  c.Key(row, col),
		Row:  row,
		Col:  col,
		Left: origin.X,
		Top:  origin.Y,
	}, true
}
