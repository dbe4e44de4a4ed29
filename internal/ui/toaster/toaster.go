// Package toaster provides a notification toast overlay component.
package toaster

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/tilepan/internal/ui/overlay"
	"github.com/zjrosen/tilepan/internal/ui/styles"
)

// DefaultDuration is how long a toast stays up when shown with Notify.
const DefaultDuration = 3 * time.Second

// Style determines the visual appearance of the toast.
type Style int

const (
	// StyleSuccess shows ✅ with green border.
	StyleSuccess Style = iota
	// StyleError shows ❌ with red border.
	StyleError
	// StyleInfo shows ℹ️ with blue border for informational messages.
	StyleInfo
	// StyleWarn shows ⚠️ with yellow border for warnings.
	StyleWarn
)

// Model holds the toaster state.
type Model struct {
	message string
	style   Style
	visible bool
	id      uint64
	width   int
	height  int
}

// New creates a new toaster model.
func New() Model {
	return Model{}
}

// Show displays a toast with the given message and style until hidden.
func (m Model) Show(message string, style Style) Model {
	m.id++
	m.message = message
	m.style = style
	m.visible = true
	return m
}

// Notify shows a toast and schedules its dismissal after d. A later toast
// replaces this one and its pending dismissal no longer applies.
func (m Model) Notify(message string, style Style, d time.Duration) (Model, tea.Cmd) {
	m = m.Show(message, style)
	return m, ScheduleDismiss(m.id, d)
}

// Hide dismisses the toast.
func (m Model) Hide() Model {
	m.visible = false
	m.message = ""
	return m
}

// Update handles dismissal messages addressed to the current toast.
func (m Model) Update(msg tea.Msg) Model {
	if d, ok := msg.(DismissMsg); ok && d.ID == m.id {
		return m.Hide()
	}
	return m
}

// Visible returns whether the toast is currently showing.
func (m Model) Visible() bool {
	return m.visible
}

// Message returns the text of the current toast.
func (m Model) Message() string {
	return m.message
}

// SetSize updates the viewport dimensions for overlay positioning.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// View renders the toast box.
func (m Model) View() string {
	if !m.visible || m.message == "" {
		return ""
	}

	style := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder())

	var content string
	switch m.style {
	case StyleError:
		style = style.BorderForeground(styles.ToastBorderErrorColor)
		content = "❌ " + m.message
	case StyleInfo:
		style = style.BorderForeground(styles.ToastBorderInfoColor)
		content = "ℹ️ " + m.message
	case StyleWarn:
		style = style.BorderForeground(styles.ToastBorderWarnColor)
		content = "⚠️ " + m.message
	default: // StyleSuccess
		style = style.BorderForeground(styles.ToastBorderSuccessColor)
		content = "✅ " + m.message
	}

	if m.width > 8 {
		style = style.MaxWidth(m.width)
	}
	return style.Render(content)
}

// Overlay renders the toast on top of a background view, bottom-center with
// one row of padding.
func (m Model) Overlay(bg string, width, height int) string {
	if !m.visible || m.message == "" {
		return bg
	}

	cfg := overlay.Config{
		Width:    width,
		Height:   height,
		Position: overlay.Bottom,
		PadY:     1,
	}
	return overlay.Place(cfg, m.View(), bg)
}

// DismissMsg signals that the toast with ID should be dismissed.
type DismissMsg struct {
	ID uint64
}

// ScheduleDismiss returns a command that dismisses toast id after a duration.
func ScheduleDismiss(id uint64, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return DismissMsg{ID: id}
	})
}
