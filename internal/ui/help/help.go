// Package help contains the help overlay component.
package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/tilepan/internal/keys"
	"github.com/zjrosen/tilepan/internal/log"
	"github.com/zjrosen/tilepan/internal/ui/markdown"
	"github.com/zjrosen/tilepan/internal/ui/overlay"
	"github.com/zjrosen/tilepan/internal/ui/styles"
)

// Gestures is the pointer and timing help shown below the key columns.
const Gestures = `## Gestures

- **Drag** with the mouse to pan; the grid follows the pointer.
- **Click** a tile without moving to select it.
- **Wheel** pans vertically, **shift+wheel** horizontally.
- After **1s** without input the grid starts drifting on its own.
  Any key, click or wheel stops it and restarts the countdown.`

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.OverlayTitleColor).
			PaddingLeft(2)

	dividerStyle = lipgloss.NewStyle().
			Foreground(styles.OverlayBorderColor)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.OverlayTitleColor).
			MarginTop(1)

	keyStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondaryColor).
			Width(9)

	descStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimaryColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.OverlayBorderColor)

	contentStyle = lipgloss.NewStyle().
			Padding(0, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			MarginTop(1)
)

// Model holds the help view state.
type Model struct {
	keys          keys.KeyMap
	markdownStyle string
	debug         bool
	width         int
	height        int
}

// New creates a new help view. markdownStyle selects the glamour style used
// for the gestures section.
func New(markdownStyle string) Model {
	return Model{
		keys:          keys.DefaultKeyMap(),
		markdownStyle: markdownStyle,
	}
}

// WithDebug includes debug-only bindings.
func (m Model) WithDebug(debug bool) Model {
	m.debug = debug
	return m
}

// SetSize updates dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// View renders the help overlay (standalone, no background).
func (m Model) View() string {
	return m.Overlay("")
}

// Overlay renders the help box on top of a background view.
func (m Model) Overlay(background string) string {
	helpBox := m.renderContent()

	if background == "" {
		return lipgloss.Place(
			m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			helpBox,
		)
	}

	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, helpBox, background)
}

func (m Model) renderContent() string {
	columnStyle := lipgloss.NewStyle().MarginRight(4)

	var navCol strings.Builder
	navCol.WriteString(sectionStyle.Render("Navigation"))
	navCol.WriteString("\n")
	navCol.WriteString(renderKeyDesc("h/l", "left/right"))
	navCol.WriteString(renderKeyDesc("j/k", "up/down"))
	navCol.WriteString(m.renderBinding(m.keys.Recenter))

	var actionsCol strings.Builder
	actionsCol.WriteString(sectionStyle.Render("Actions"))
	actionsCol.WriteString("\n")
	actionsCol.WriteString(m.renderBinding(m.keys.Select))
	actionsCol.WriteString(m.renderBinding(m.keys.AutoScroll))
	actionsCol.WriteString(m.renderBinding(m.keys.ToggleKeys))
	actionsCol.WriteString(m.renderBinding(m.keys.ToggleStatus))

	var generalCol strings.Builder
	generalCol.WriteString(sectionStyle.Render("General"))
	generalCol.WriteString("\n")
	generalCol.WriteString(m.renderBinding(m.keys.Help))
	if m.debug {
		generalCol.WriteString(m.renderBinding(m.keys.ToggleLog))
	}
	generalCol.WriteString(m.renderBinding(m.keys.Escape))
	generalCol.WriteString(m.renderBinding(m.keys.Quit))

	columns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		columnStyle.Render(navCol.String()),
		columnStyle.Render(actionsCol.String()),
		generalCol.String(),
	)

	columnsWidth := lipgloss.Width(columns)
	gestures := m.renderGestures(columnsWidth)
	boxWidth := max(columnsWidth, lipgloss.Width(gestures)) + 4

	body := contentStyle.Render(columns + "\n\n" + gestures + "\n" + footerStyle.Render("Press ? or Esc to close"))
	divider := dividerStyle.Render(strings.Repeat("─", boxWidth))

	var content strings.Builder
	content.WriteString(titleStyle.Render("Keybindings"))
	content.WriteString("\n")
	content.WriteString(divider)
	content.WriteString("\n")
	content.WriteString(body)

	return boxStyle.Width(boxWidth).Render(content.String())
}

// renderGestures renders the markdown section, falling back to the raw text
// when glamour cannot be initialised.
func (m Model) renderGestures(width int) string {
	r, err := markdown.New(max(width, 40), m.markdownStyle)
	if err != nil {
		log.ErrorErr(log.CatUI, "help markdown renderer", err)
		return Gestures
	}
	out, err := r.Render(Gestures)
	if err != nil {
		log.ErrorErr(log.CatUI, "help markdown render", err)
		return Gestures
	}
	return out
}

func (m Model) renderBinding(b key.Binding) string {
	help := b.Help()
	return renderKeyDesc(help.Key, help.Desc)
}

func renderKeyDesc(key, desc string) string {
	return keyStyle.Render(key) + descStyle.Render(desc) + "\n"
}
