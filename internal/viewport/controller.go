// Package viewport owns the scroll state of the infinite grid and applies the
// wraparound reset that fakes an unbounded surface from a finite one.
package viewport

import (
	"math"

	"github.com/zjrosen/tilepan/internal/grid"
	"github.com/zjrosen/tilepan/internal/log"
)

// DefaultThreshold is the fraction of maxOffset from either edge at which the
// offset is re-centered.
const DefaultThreshold = 0.1

// Update describes the outcome of one offset mutation.
type Update struct {
	Requested grid.Vec // Offset asked for, before the reset policy ran
	Offset    grid.Vec // Offset actually stored
	ResetX    bool     // X was re-centered
	ResetY    bool     // Y was re-centered
}

// Reset reports whether either axis was re-centered.
func (u Update) Reset() bool {
	return u.ResetX || u.ResetY
}

// Correction is the shift the controller applied on top of the request.
// Zero on axes that were stored as requested.
func (u Update) Correction() grid.Vec {
	return u.Offset.Sub(u.Requested)
}

// Option configures a Controller.
type Option func(*Controller)

// WithThreshold overrides DefaultThreshold. Values outside (0, 0.5) are ignored.
func WithThreshold(threshold float64) Option {
	return func(c *Controller) {
		if threshold > 0 && threshold < 0.5 {
			c.threshold = threshold
		}
	}
}

// WithResetHook registers a callback invoked after every update that
// re-centered at least one axis.
func WithResetHook(fn func(Update)) Option {
	return func(c *Controller) {
		c.onReset = fn
	}
}

// Controller holds the current ScrollOffset and ViewportSize. It is the only
// writer of either value; callers mutate them through Mount, Resize, PanTo,
// PanBy and Recenter.
type Controller struct {
	cfg       grid.Config
	threshold float64
	onReset   func(Update)

	offset  grid.Vec
	size    grid.Size
	mounted bool
	resets  int
}

// New creates a controller for the given grid. The offset stays at the
// origin until Mount supplies the first measurement.
func New(cfg grid.Config, opts ...Option) *Controller {
	c := &Controller{
		cfg:       cfg,
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the grid the controller pans over.
func (c *Controller) Config() grid.Config { return c.cfg }

// Offset returns the current scroll offset.
func (c *Controller) Offset() grid.Vec { return c.offset }

// Size returns the last measured viewport size.
func (c *Controller) Size() grid.Size { return c.size }

// Mounted reports whether the first measurement has been received.
func (c *Controller) Mounted() bool { return c.mounted }

// Resets returns how many updates re-centered at least one axis.
func (c *Controller) Resets() int { return c.resets }

// Threshold returns the active reset threshold.
func (c *Controller) Threshold() float64 { return c.threshold }

// MaxOffset returns totalExtent - viewportExtent per axis for the current size.
func (c *Controller) MaxOffset() grid.Vec {
	return c.cfg.MaxOffset(c.size)
}

// Mount records the first viewport measurement and centers the offset in the
// backing grid: totalExtent/2 - viewportExtent/2 on each axis. Calling Mount
// again re-centers.
func (c *Controller) Mount(size grid.Size) Update {
	c.size = sanitizeSize(size)
	c.mounted = true

	total := c.cfg.TotalExtent()
	center := grid.Vec{
		X: total.Width/2 - c.size.Width/2,
		Y: total.Height/2 - c.size.Height/2,
	}
	if !c.cfg.Fits(c.size) {
		log.Warn(log.CatViewport, "viewport exceeds virtual grid capacity",
			"width", c.size.Width, "height", c.size.Height, "virtual_size", c.cfg.VirtualSize)
	}
	log.Debug(log.CatViewport, "mounted", "width", c.size.Width, "height", c.size.Height,
		"x", center.X, "y", center.Y)
	return c.store(center)
}

// Resize records a new viewport size and re-evaluates the current offset
// against the new pan range. Before Mount, Resize behaves like Mount.
func (c *Controller) Resize(size grid.Size) Update {
	if !c.mounted {
		return c.Mount(size)
	}
	c.size = sanitizeSize(size)
	return c.store(c.offset)
}

// PanTo sets the offset, applying the wraparound reset.
func (c *Controller) PanTo(offset grid.Vec) Update {
	return c.store(offset)
}

// PanBy moves the offset by delta, applying the wraparound reset.
func (c *Controller) PanBy(delta grid.Vec) Update {
	return c.store(c.offset.Add(delta))
}

// Recenter snaps both axes to maxOffset/2 (or 0 on a degenerate axis).
func (c *Controller) Recenter() Update {
	maxOffset := c.MaxOffset()
	return c.store(grid.Vec{X: maxOffset.X / 2, Y: maxOffset.Y / 2})
}

// Visible returns the tiles to materialize for the current state.
func (c *Controller) Visible() []grid.Tile {
	return c.cfg.Visible(c.offset, c.size)
}

func (c *Controller) store(requested grid.Vec) Update {
	maxOffset := c.MaxOffset()
	x, resetX := c.wrapAxis(requested.X, maxOffset.X)
	y, resetY := c.wrapAxis(requested.Y, maxOffset.Y)

	u := Update{
		Requested: requested,
		Offset:    grid.Vec{X: x, Y: y},
		ResetX:    resetX,
		ResetY:    resetY,
	}
	c.offset = u.Offset

	if u.Reset() {
		c.resets++
		log.Debug(log.CatViewport, "wraparound reset",
			"from_x", requested.X, "from_y", requested.Y,
			"to_x", x, "to_y", y, "reset_x", resetX, "reset_y", resetY)
		if c.onReset != nil {
			c.onReset(u)
		}
	}
	return u
}

// wrapAxis applies the reset policy on one axis. Offsets below
// maxOffset*threshold or above maxOffset*(1-threshold) snap to maxOffset/2.
// A degenerate axis (maxOffset <= 0) clamps to 0 and never resets.
func (c *Controller) wrapAxis(v, maxOffset float64) (float64, bool) {
	if maxOffset <= 0 || math.IsNaN(maxOffset) {
		return 0, false
	}
	if math.IsNaN(v) {
		return maxOffset / 2, true
	}
	if v < maxOffset*c.threshold || v > maxOffset*(1-c.threshold) {
		return maxOffset / 2, true
	}
	return v, false
}

func sanitizeSize(s grid.Size) grid.Size {
	if math.IsNaN(s.Width) || s.Width < 0 {
		s.Width = 0
	}
	if math.IsNaN(s.Height) || s.Height < 0 {
		s.Height = 0
	}
	return s
}
