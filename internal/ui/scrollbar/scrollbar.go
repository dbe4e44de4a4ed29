// Package scrollbar renders position gauges for the virtual grid.
package scrollbar

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/tilepan/internal/ui/styles"
)

// Scrollbar characters
const (
	thumbChar = "█"
	trackChar = "░"
)

// Config describes one axis of the scrollable area.
type Config struct {
	Total  int // Total extent of the content along the axis
	Length int // Visible extent (and the rendered length of the bar)
	Offset int // Current scroll position
}

// ThumbBounds returns the start cell and length of the thumb.
// Thumb length is Length*Length/Total (at least 1) and its start is proportional
// to Offset within the scrollable range.
func ThumbBounds(cfg Config) (start, length int) {
	if cfg.Total <= 0 || cfg.Length <= 0 {
		return 0, 0
	}
	if cfg.Total <= cfg.Length {
		return 0, cfg.Length
	}

	length = max(1, cfg.Length*cfg.Length/cfg.Total)

	maxOffset := cfg.Total - cfg.Length
	track := cfg.Length - length
	if track <= 0 {
		return 0, length
	}

	offset := max(0, min(cfg.Offset, maxOffset))
	start = track * offset / maxOffset
	start = max(0, min(start, cfg.Length-length))
	return start, length
}

func cells(cfg Config) []string {
	if cfg.Length <= 0 || cfg.Total <= 0 {
		return nil
	}

	trackStyle := lipgloss.NewStyle().Foreground(styles.ScrollTrackColor)
	thumbStyle := lipgloss.NewStyle().Foreground(styles.ScrollThumbColor)

	start, length := ThumbBounds(cfg)
	out := make([]string, cfg.Length)
	for i := range out {
		if i >= start && i < start+length {
			out[i] = thumbStyle.Render(thumbChar)
		} else {
			out[i] = trackStyle.Render(trackChar)
		}
	}
	return out
}

// Vertical renders a one-column bar of cfg.Length rows.
func Vertical(cfg Config) string {
	return strings.Join(cells(cfg), "\n")
}

// Horizontal renders a one-row bar of cfg.Length columns.
func Horizontal(cfg Config) string {
	return strings.Join(cells(cfg), "")
}
