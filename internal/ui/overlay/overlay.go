// Package overlay composites ANSI-styled blocks onto a fixed-size screen.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Position specifies where Place puts the foreground.
type Position int

const (
	// Center places the overlay in the center of the viewport.
	Center Position = iota
	// Top places the overlay at the top center of the viewport.
	Top
	// Bottom places the overlay at the bottom center of the viewport.
	Bottom
	// BottomRight places the overlay in the bottom-right corner.
	BottomRight
)

// Config controls overlay rendering behavior.
type Config struct {
	Width    int
	Height   int
	Position Position
	PadX     int // Horizontal padding from edges (BottomRight only)
	PadY     int // Vertical padding from edges (Top, Bottom, BottomRight)
}

// Place renders fg on top of bg, preserving styling in both.
func Place(cfg Config, fg, bg string) string {
	c := FromString(cfg.Width, cfg.Height, bg)
	x, y := calculatePosition(cfg, lipgloss.Width(fg), lipgloss.Height(fg))
	c.Draw(x, y, fg)
	return c.String()
}

func calculatePosition(cfg Config, fgWidth, fgHeight int) (x, y int) {
	switch cfg.Position {
	case Top:
		x = (cfg.Width - fgWidth) / 2
		y = cfg.PadY
	case Bottom:
		x = (cfg.Width - fgWidth) / 2
		y = cfg.Height - fgHeight - cfg.PadY
	case BottomRight:
		x = cfg.Width - fgWidth - cfg.PadX
		y = cfg.Height - fgHeight - cfg.PadY
	default:
		x = (cfg.Width - fgWidth) / 2
		y = (cfg.Height - fgHeight) / 2
	}
	return max(x, 0), max(y, 0)
}

// Canvas is a width x height grid of terminal cells that blocks are drawn
// onto. Blocks may start off-screen; whatever falls outside is clipped.
type Canvas struct {
	width  int
	height int
	lines  []string
}

// NewCanvas creates a blank canvas.
func NewCanvas(width, height int) *Canvas {
	width, height = max(width, 0), max(height, 0)
	blank := strings.Repeat(" ", width)
	lines := make([]string, height)
	for i := range lines {
		lines[i] = blank
	}
	return &Canvas{width: width, height: height, lines: lines}
}

// FromString creates a canvas whose initial content is bg, padded or cut to
// the canvas size.
func FromString(width, height int, bg string) *Canvas {
	c := NewCanvas(width, height)
	if bg != "" {
		c.Draw(0, 0, bg)
	}
	return c
}

// Width returns the canvas width in cells.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in cells.
func (c *Canvas) Height() int { return c.height }

// Draw paints block with its top-left corner at (x, y).
func (c *Canvas) Draw(x, y int, block string) {
	if c.width == 0 || x >= c.width || y >= c.height {
		return
	}
	for i, line := range strings.Split(block, "\n") {
		row := y + i
		if row < 0 {
			continue
		}
		if row >= c.height {
			break
		}
		col := x
		if col < 0 {
			line = ansi.TruncateLeft(line, -col, "")
			col = 0
		}
		line = ansi.Truncate(line, c.width-col, "")
		if ansi.StringWidth(line) == 0 {
			continue
		}
		c.lines[row] = splice(c.lines[row], col, line)
	}
}

// String renders the canvas, one line per row.
func (c *Canvas) String() string {
	return strings.Join(c.lines, "\n")
}

// splice replaces the cells of bg starting at x with fg.
func splice(bg string, x int, fg string) string {
	left := ansi.Truncate(bg, x, "")
	if w := ansi.StringWidth(left); w < x {
		left += strings.Repeat(" ", x-w)
	}
	end := x + ansi.StringWidth(fg)
	var right string
	if end < ansi.StringWidth(bg) {
		right = ansi.TruncateLeft(bg, end, "")
	}
	return left + fg + right
}
