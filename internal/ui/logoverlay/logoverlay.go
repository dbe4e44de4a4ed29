// Package logoverlay provides an in-app log viewer that shows recent log
// entries without leaving the grid. New entries stream in while it is open.
package logoverlay

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/tilepan/internal/log"
	"github.com/zjrosen/tilepan/internal/ui/overlay"
	"github.com/zjrosen/tilepan/internal/ui/styles"
)

const (
	viewportMaxHeight = 25
	viewportMinHeight = 5
	boxMaxWidth       = 160
	boxMinWidth       = 40
)

// Categories cycled by the category filter. Empty means all.
var Categories = []log.Category{
	"",
	log.CatViewport,
	log.CatDrag,
	log.CatAutoScroll,
	log.CatContent,
	log.CatWatcher,
	log.CatCache,
	log.CatUI,
}

// CloseMsg is sent when the overlay should be closed.
type CloseMsg struct{}

// Model is the log overlay component state.
type Model struct {
	visible  bool
	minLevel log.Level
	category int // Index into Categories
	follow   bool
	width    int
	height   int
	viewport viewport.Model
}

// New creates a new log overlay model.
func New() Model {
	return Model{
		minLevel: log.LevelDebug,
		follow:   true,
	}
}

// NewWithSize creates a new log overlay with the given dimensions.
func NewWithSize(width, height int) Model {
	m := New()
	m.width = width
	m.height = height
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the log overlay.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "c":
			log.ClearBuffer()
			m.refreshViewport()
		case "d":
			m.setLevel(log.LevelDebug)
		case "i":
			m.setLevel(log.LevelInfo)
		case "w":
			m.setLevel(log.LevelWarn)
		case "e":
			m.setLevel(log.LevelError)
		case "f":
			m.category = (m.category + 1) % len(Categories)
			m.refreshViewport()
		case "j", "down":
			m.viewport.ScrollDown(1)
			m.follow = m.viewport.AtBottom()
		case "k", "up":
			m.viewport.ScrollUp(1)
			m.follow = m.viewport.AtBottom()
		case "g":
			m.viewport.GotoTop()
			m.follow = m.viewport.AtBottom()
		case "G":
			m.viewport.GotoBottom()
			m.follow = true
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+x", "esc":
			m.visible = false
			return m, func() tea.Msg { return CloseMsg{} }
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.refreshViewport()
	}

	return m, nil
}

func (m *Model) setLevel(level log.Level) {
	m.minLevel = level
	m.refreshViewport()
}

// Refresh reloads buffered entries, keeping the view pinned to the newest
// entry unless the user scrolled away from it.
func (m *Model) Refresh() {
	if !m.visible {
		return
	}
	y := m.viewport.YOffset
	m.refreshViewport()
	if !m.follow {
		m.viewport.SetYOffset(y)
	}
}

// View renders the log overlay content.
func (m Model) View() string {
	if !m.visible {
		return ""
	}

	boxWidth := m.boxWidth()

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.OverlayTitleColor).
		PaddingLeft(1)
	dividerStyle := lipgloss.NewStyle().
		Foreground(styles.OverlayBorderColor)
	divider := dividerStyle.Render(strings.Repeat("─", boxWidth))

	title := "Logs"
	if cat := Categories[m.category]; cat != "" {
		title += " · " + string(cat)
	}

	var result strings.Builder
	result.WriteString(titleStyle.Render(title))
	result.WriteString("\n")
	result.WriteString(divider)
	result.WriteString("\n")
	result.WriteString(m.viewport.View())
	result.WriteString("\n")
	result.WriteString(divider)
	result.WriteString("\n")
	result.WriteString(m.buildFilterHint())

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(boxWidth)

	return boxStyle.Render(result.String())
}

// filteredLogs returns buffered entries matching the level and category filters.
func (m Model) filteredLogs() []string {
	var filtered []string
	for _, entry := range log.GetRecentLogs() {
		if m.matches(entry) {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

func (m Model) buildLogContent(contentWidth int) string {
	filtered := m.filteredLogs()
	if len(filtered) == 0 {
		return lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			Italic(true).
			Render("No logs to display")
	}

	lines := make([]string, 0, len(filtered))
	for _, entry := range filtered {
		lines = append(lines, colorizeEntry(entry, contentWidth))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) refreshViewport() {
	if m.width == 0 || m.height == 0 {
		return
	}

	contentWidth := m.contentWidth()

	// header (2), footer (2) and borders (2)
	viewportHeight := min(viewportMaxHeight, m.height-6)
	viewportHeight = max(viewportHeight, viewportMinHeight)

	m.viewport = viewport.New(contentWidth, viewportHeight)
	m.viewport.SetContent(m.buildLogContent(contentWidth))
	if m.follow {
		m.viewport.GotoBottom()
	}
}

// Overlay renders the log overlay centered on the given background.
func (m Model) Overlay(bg string) string {
	if !m.visible {
		return bg
	}
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, m.View(), bg)
}

// Visible returns whether the overlay is currently visible.
func (m Model) Visible() bool {
	return m.visible
}

// Following reports whether new entries scroll the view to the bottom.
func (m Model) Following() bool {
	return m.follow
}

func (m Model) boxWidth() int {
	return max(min(m.width-4, boxMaxWidth), boxMinWidth)
}

func (m Model) contentWidth() int {
	return m.boxWidth() - 2
}

// Toggle toggles the overlay visibility.
func (m *Model) Toggle() {
	if m.visible {
		m.Hide()
		return
	}
	m.Show()
}

// Show makes the overlay visible, following the newest entry.
func (m *Model) Show() {
	m.visible = true
	m.follow = true
	m.refreshViewport()
}

// Hide makes the overlay invisible.
func (m *Model) Hide() {
	m.visible = false
}

// SetSize updates the overlay's knowledge of viewport size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.refreshViewport()
}

// matches reports whether entry passes the level and category filters.
// Entries that do not parse are always shown.
func (m Model) matches(entry string) bool {
	level, cat, ok := log.Parse(entry)
	if !ok {
		return true
	}
	if level < m.minLevel {
		return false
	}
	want := Categories[m.category]
	return want == "" || cat == want
}

func colorizeEntry(entry string, maxWidth int) string {
	entry = strings.TrimSuffix(entry, "\n")
	if ansi.StringWidth(entry) > maxWidth {
		entry = ansi.Truncate(entry, maxWidth, "...")
	}

	color := lipgloss.TerminalColor(styles.TextPrimaryColor)
	if level, _, ok := log.Parse(entry); ok {
		switch level {
		case log.LevelError:
			color = styles.StatusErrorColor
		case log.LevelWarn:
			color = styles.StatusWarningColor
		case log.LevelInfo:
			color = styles.ToastBorderInfoColor
		default:
			color = styles.TextMutedColor
		}
	}
	return lipgloss.NewStyle().Foreground(color).Render(entry)
}

// buildFilterHint creates the footer hint, highlighting the active level.
func (m Model) buildFilterHint() string {
	hintStyle := lipgloss.NewStyle().Foreground(styles.TextMutedColor)
	activeStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimaryColor).
		Bold(true)

	hints := []string{hintStyle.Render("[c] Clear")}
	for _, opt := range []struct {
		level log.Level
		label string
	}{
		{log.LevelDebug, "[d] Debug"},
		{log.LevelInfo, "[i] Info"},
		{log.LevelWarn, "[w] Warn"},
		{log.LevelError, "[e] Error"},
	} {
		if m.minLevel == opt.level {
			hints = append(hints, activeStyle.Render(opt.label))
		} else {
			hints = append(hints, hintStyle.Render(opt.label))
		}
	}
	hints = append(hints, hintStyle.Render("[f] Category"))
	return strings.Join(hints, "  ")
}
