// Package grid provides the pure geometry of the virtual tile grid: cell
// extents, stagger, tile keys, and the visibility (culling) calculation.
//
// Nothing in this package holds state. Every function is a pure computation
// over a Config, which keeps the package safe to call from any update path.
package grid

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is returned by Validate for unusable grid dimensions.
var ErrInvalidConfig = errors.New("invalid grid config")

// Config describes the finite backing grid used to simulate an unbounded
// pannable surface. All dimensions are in pixels (one terminal cell each
// when hosted by the TUI).
type Config struct {
	CellWidth   int
	CellHeight  int
	Gap         int  // Space between adjacent cells on both axes
	VirtualSize int  // The backing grid is VirtualSize x VirtualSize cells
	Buffer      int  // Extra rows/cols materialized beyond each viewport edge
	Stagger     bool // Shift odd rows right by half a period (brick layout)
}

// Vec is a point or displacement in grid pixel space.
type Vec struct {
	X float64
	Y float64
}

// Add returns v + o.
func (v Vec) Add(o Vec) Vec { return Vec{X: v.X + o.X, Y: v.Y + o.Y} }

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec { return Vec{X: v.X - o.X, Y: v.Y - o.Y} }

// Size is a viewport size in pixels.
type Size struct {
	Width  float64
	Height float64
}

// Empty reports whether the size has not been measured yet.
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Validate checks that the config describes a usable grid.
func (c Config) Validate() error {
	switch {
	case c.CellWidth <= 0:
		return fmt.Errorf("%w: cell_width must be positive, got %d", ErrInvalidConfig, c.CellWidth)
	case c.CellHeight <= 0:
		return fmt.Errorf("%w: cell_height must be positive, got %d", ErrInvalidConfig, c.CellHeight)
	case c.Gap < 0:
		return fmt.Errorf("%w: gap must not be negative, got %d", ErrInvalidConfig, c.Gap)
	case c.VirtualSize <= 0:
		return fmt.Errorf("%w: virtual_size must be positive, got %d", ErrInvalidConfig, c.VirtualSize)
	case c.Buffer < 0:
		return fmt.Errorf("%w: buffer must not be negative, got %d", ErrInvalidConfig, c.Buffer)
	}
	if c.VirtualSize > math.MaxInt32/c.VirtualSize {
		return fmt.Errorf("%w: virtual_size %d overflows tile keys", ErrInvalidConfig, c.VirtualSize)
	}
	return nil
}

// Fits reports whether a full viewport of tiles plus the buffer on both
// sides stays inside the backing grid on each axis. When it does not, the
// wraparound reset cannot hide the grid edge.
func (c Config) Fits(viewport Size) bool {
	cols := math.Ceil(viewport.Width/c.PeriodX()) + 1 + float64(2*c.Buffer)
	rows := math.Ceil(viewport.Height/c.PeriodY()) + 1 + float64(2*c.Buffer)
	return cols <= float64(c.VirtualSize) && rows <= float64(c.VirtualSize)
}
