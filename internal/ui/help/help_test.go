package help

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestHelp_New(t *testing.T) {
	m := New("notty")

	assert.NotEmpty(t, m.keys.Up.Keys())
	assert.NotEmpty(t, m.keys.Recenter.Keys())
	assert.NotEmpty(t, m.keys.Quit.Keys())
	assert.Equal(t, "notty", m.markdownStyle)
}

func TestHelp_SetSize(t *testing.T) {
	m := New("notty").SetSize(120, 40)

	assert.Equal(t, 120, m.width)
	assert.Equal(t, 40, m.height)

	m2 := m.SetSize(80, 24)
	assert.Equal(t, 80, m2.width)
	assert.Equal(t, 120, m.width, "original model unchanged")
}

func TestHelp_View_ContainsSections(t *testing.T) {
	view := New("notty").SetSize(100, 40).View()

	assert.Contains(t, view, "Keybindings")
	assert.Contains(t, view, "Navigation")
	assert.Contains(t, view, "Actions")
	assert.Contains(t, view, "General")
	assert.Contains(t, view, "Gestures")
	assert.Contains(t, view, "Press ? or Esc to close")
}

func TestHelp_View_ContainsKeybindings(t *testing.T) {
	view := New("notty").SetSize(100, 40).View()

	assert.Contains(t, view, "h/l")
	assert.Contains(t, view, "j/k")
	assert.Contains(t, view, "recenter")
	assert.Contains(t, view, "toggle auto-scroll")
	assert.Contains(t, view, "enter")
	assert.Contains(t, view, "quit")
}

func TestHelp_DebugBindings(t *testing.T) {
	plain := New("notty").SetSize(100, 40).View()
	debug := New("notty").WithDebug(true).SetSize(100, 40).View()

	assert.NotContains(t, plain, "ctrl+x")
	assert.Contains(t, debug, "ctrl+x")
}

func TestHelp_BadMarkdownStyleFallsBack(t *testing.T) {
	view := New("/nonexistent/style.json").SetSize(100, 40).View()

	assert.Contains(t, view, "Keybindings")
	assert.Contains(t, view, "Gestures")
}

func TestHelp_Overlay(t *testing.T) {
	bg := strings.TrimSuffix(strings.Repeat(strings.Repeat(".", 100)+"\n", 40), "\n")

	out := New("notty").SetSize(100, 40).Overlay(bg)
	lines := strings.Split(out, "\n")

	require.Len(t, lines, 40)
	assert.Equal(t, strings.Repeat(".", 100), lines[0])
	assert.Contains(t, out, "Keybindings")
}
