package grid

// PeriodX is the horizontal distance between the origins of adjacent cells.
func (c Config) PeriodX() float64 {
	return float64(c.CellWidth + c.Gap)
}

// PeriodY is the vertical distance between the origins of adjacent cells.
func (c Config) PeriodY() float64 {
	return float64(c.CellHeight + c.Gap)
}

// TotalWidth is the pixel extent of the backing grid along X:
// (cellWidth+gap)*virtualSize - gap.
func (c Config) TotalWidth() float64 {
	return c.PeriodX()*float64(c.VirtualSize) - float64(c.Gap)
}

// TotalHeight is the pixel extent of the backing grid along Y.
func (c Config) TotalHeight() float64 {
	return c.PeriodY()*float64(c.VirtualSize) - float64(c.Gap)
}

// TotalExtent returns both axis extents as a Size.
func (c Config) TotalExtent() Size {
	return Size{Width: c.TotalWidth(), Height: c.TotalHeight()}
}

// MaxOffset returns totalExtent - viewportExtent per axis. Either component
// may be zero or negative when the viewport is at least as large as the grid.
func (c Config) MaxOffset(viewport Size) Vec {
	return Vec{
		X: c.TotalWidth() - viewport.Width,
		Y: c.TotalHeight() - viewport.Height,
	}
}

// StaggerOffset is the horizontal shift applied to a row: half a period on
// odd rows when stagger is enabled, otherwise zero.
func (c Config) StaggerOffset(row int) float64 {
	if !c.Stagger || row%2 == 0 {
		return 0
	}
	return c.PeriodX() / 2
}

// CellOrigin returns the top-left pixel of the cell at (row, col).
func (c Config) CellOrigin(row, col int) Vec {
	return Vec{
		X: float64(col)*c.PeriodX() + c.StaggerOffset(row),
		Y: float64(row) * c.PeriodY(),
	}
}

// Key derives the tile key for (row, col): row*virtualSize + col.
func (c Config) Key(row, col int) int {
	return row*c.VirtualSize + col
}

// RowCol is the inverse of Key.
func (c Config) RowCol(key int) (row, col int) {
	return key / c.VirtualSize, key % c.VirtualSize
}
