package gridview

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/tilepan/internal/autoscroll"
	"github.com/zjrosen/tilepan/internal/ui/overlay"
	"github.com/zjrosen/tilepan/internal/ui/scrollbar"
	"github.com/zjrosen/tilepan/internal/ui/styles"
	"github.com/zjrosen/tilepan/internal/ui/tile"
)

// View renders the visible tiles, the vertical gauge and the status bar.
func (m Model) View() string {
	if !m.viewport.Mounted() || m.width <= 0 || m.height <= 0 {
		return ""
	}

	size := m.gridSize()
	body := m.renderTiles(int(size.Width), int(size.Height))

	if m.showScrollbars {
		bar := scrollbar.Vertical(scrollbar.Config{
			Total:  int(m.cfg.TotalHeight()),
			Length: int(size.Height),
			Offset: floorInt(m.viewport.Offset().Y),
		})
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, bar)
	}

	if m.showStatusBar {
		return body + "\n" + m.renderStatusBar()
	}
	return body
}

// renderTiles draws every materialized tile at its screen position.
// Tiles in the buffer ring start off-canvas and are clipped.
func (m Model) renderTiles(width, height int) string {
	canvas := overlay.NewCanvas(width, height)
	offset := m.viewport.Offset()
	ctx := context.Background()

	for _, t := range m.viewport.Visible() {
		spec := tile.Spec{
			Item:     m.content.Resolve(t.Key),
			Key:      t.Key,
			Row:      t.Row,
			Col:      t.Col,
			Width:    m.cfg.CellWidth,
			Height:   m.cfg.CellHeight,
			ShowKey:  m.showKeys,
			Selected: m.hasSel && t.Key == m.selected,
		}
		canvas.Draw(floorInt(t.Left-offset.X), floorInt(t.Top-offset.Y), m.tiles.Render(ctx, spec))
	}
	return canvas.String()
}

func (m Model) renderStatusBar() string {
	offset := m.viewport.Offset()
	mode := m.auto.Mode()

	label := styles.StatusLabelStyle.Render
	value := styles.StatusValueStyle.Render

	parts := []string{
		label("x ") + value(fmt.Sprintf("%.0f", offset.X)),
		label("y ") + value(fmt.Sprintf("%.0f", offset.Y)),
		label("tiles ") + value(fmt.Sprint(len(m.viewport.Visible()))),
		label("resets ") + value(fmt.Sprint(m.viewport.Resets())),
		lipgloss.NewStyle().Foreground(styles.ModeColor(mode.String())).Render(modeLabel(mode, m.auto.Enabled())),
	}
	if m.drag.Active() {
		parts = append(parts, value("dragging"))
	}
	left := strings.Join(parts, label(" · "))

	autoStyle := styles.ButtonStyle
	if m.auto.Enabled() {
		autoStyle = styles.ButtonActiveStyle
	}
	buttons := zone.Mark(zoneRecenter, styles.ButtonStyle.Render("recenter")) + " " +
		zone.Mark(zoneAutoScroll, autoStyle.Render("auto"))

	inner := m.width - 2 // StatusBarStyle padding
	used := lipgloss.Width(left) + lipgloss.Width(buttons) + 2
	gaugeWidth := inner - used
	line := left + "  "
	if gaugeWidth >= 4 {
		line += scrollbar.Horizontal(scrollbar.Config{
			Total:  int(m.cfg.TotalWidth()),
			Length: gaugeWidth,
			Offset: floorInt(offset.X),
		})
	} else if gaugeWidth > 0 {
		line += strings.Repeat(" ", gaugeWidth)
	}
	line += buttons

	return styles.StatusBarStyle.MaxWidth(m.width).Render(line)
}

func modeLabel(mode autoscroll.Mode, enabled bool) string {
	if !enabled {
		return "auto off"
	}
	return "auto " + mode.String()
}
