package gridview

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/tilepan/internal/autoscroll"
	"github.com/zjrosen/tilepan/internal/content"
	"github.com/zjrosen/tilepan/internal/grid"
	"github.com/zjrosen/tilepan/internal/log"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	zone.NewGlobal()
	os.Exit(m.Run())
}

// recorder schedules timer messages without waiting.
type recorder struct {
	armed []tea.Msg
}

func (r *recorder) After(_ time.Duration, msg tea.Msg) tea.Cmd {
	r.armed = append(r.armed, msg)
	return func() tea.Msg { return msg }
}

func (r *recorder) deadlines() []autoscroll.DeadlineMsg {
	var out []autoscroll.DeadlineMsg
	for _, msg := range r.armed {
		if d, ok := msg.(autoscroll.DeadlineMsg); ok {
			out = append(out, d)
		}
	}
	return out
}

// smallGrid: periods 12x6, extent 94x46. A 41x13 terminal leaves a 40x12
// grid area, so maxOffset is (54, 34) and the mounted offset is (27, 17).
var smallGrid = grid.Config{CellWidth: 10, CellHeight: 4, Gap: 2, VirtualSize: 8, Buffer: 1}

func newModel(t *testing.T, cfg grid.Config) (Model, *recorder) {
	t.Helper()
	rec := &recorder{}
	m := New(Options{
		Grid:           cfg,
		ResetThreshold: 0.1,
		AutoScroll: autoscroll.Config{
			Enabled:   true,
			IdleDelay: time.Second,
			Interval:  16 * time.Millisecond,
			Delta:     grid.Vec{X: 0.5, Y: 0.5},
		},
		DeadZone:       1,
		KeyStep:        4,
		ShowStatusBar:  true,
		ShowScrollbars: true,
		Scheduler:      rec,
	}, content.Builtin(40))
	return m, rec
}

func mounted(t *testing.T) (Model, *recorder) {
	t.Helper()
	m, rec := newModel(t, smallGrid)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 41, Height: 13})
	return m, rec
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress}
}

func motion(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionMotion}
}

func release(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease}
}

func TestMount_CentersOnFirstSize(t *testing.T) {
	m, _ := newModel(t, smallGrid)
	require.False(t, m.Viewport().Mounted())
	require.Empty(t, m.View())

	m, cmd := m.Update(tea.WindowSizeMsg{Width: 41, Height: 13})
	require.Nil(t, cmd)
	require.True(t, m.Viewport().Mounted())
	require.Equal(t, grid.Size{Width: 40, Height: 12}, m.Viewport().Size())
	require.Equal(t, grid.Vec{X: 27, Y: 17}, m.Offset())
}

func TestInit_ArmOnStart(t *testing.T) {
	m, rec := newModel(t, smallGrid)
	require.Nil(t, m.Init())

	m.armOnStart = true
	require.NotNil(t, m.Init())
	require.Len(t, rec.deadlines(), 1)
	require.Equal(t, autoscroll.CountingDown, m.AutoScroll().Mode())
}

func TestKeys_Pan(t *testing.T) {
	m, _ := mounted(t)

	m, _ = m.Update(runeKey("l"))
	require.Equal(t, grid.Vec{X: 35, Y: 17}, m.Offset())
	m, _ = m.Update(runeKey("j"))
	require.Equal(t, grid.Vec{X: 35, Y: 21}, m.Offset())
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	require.Equal(t, grid.Vec{X: 27, Y: 17}, m.Offset())
}

func TestKeys_CountAsActivity(t *testing.T) {
	m, rec := mounted(t)

	m, cmd := m.Update(runeKey("z"))
	require.NotNil(t, cmd)
	require.Equal(t, autoscroll.CountingDown, m.AutoScroll().Mode())
	require.Len(t, rec.deadlines(), 1)
}

func TestKeys_Recenter(t *testing.T) {
	m, _ := mounted(t)
	m, _ = m.Update(runeKey("l"))
	m, _ = m.Update(runeKey("j"))

	m, _ = m.Update(runeKey("c"))
	require.Equal(t, grid.Vec{X: 27, Y: 17}, m.Offset())
}

func TestKeys_ToggleAutoScroll(t *testing.T) {
	m, _ := mounted(t)

	m, _ = m.Update(runeKey("a"))
	require.False(t, m.AutoScroll().Enabled())
	require.Equal(t, autoscroll.Idle, m.AutoScroll().Mode())

	m, cmd := m.Update(runeKey("a"))
	require.NotNil(t, cmd)
	require.True(t, m.AutoScroll().Enabled())
	require.Equal(t, autoscroll.CountingDown, m.AutoScroll().Mode())
}

func TestKeys_ToggleStatusBarResizes(t *testing.T) {
	m, _ := mounted(t)

	m, _ = m.Update(runeKey("w"))
	require.False(t, m.ShowStatusBar())
	require.Equal(t, grid.Size{Width: 40, Height: 13}, m.Viewport().Size())
}

func TestKeys_ToggleTileKeys(t *testing.T) {
	m, _ := mounted(t)
	require.False(t, m.ShowKeys())

	m, _ = m.Update(runeKey("d"))
	require.True(t, m.ShowKeys())
	require.Contains(t, zone.Scan(m.View()), "#")
}

func TestKeys_SelectCenterTile(t *testing.T) {
	m, _ := mounted(t)
	m, _ = m.Update(runeKey("l"))
	m, _ = m.Update(runeKey("j"))

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	sel := findSelected(t, cmd())
	require.Equal(t, 4, sel.Tile.Row)
	require.Equal(t, 4, sel.Tile.Col)
	require.Equal(t, 36, sel.Tile.Key)
	require.Equal(t, "picsum-37", sel.Item.ID)

	key, ok := m.Selected()
	require.True(t, ok)
	require.Equal(t, 36, key)
}

func findSelected(t *testing.T, msg tea.Msg) SelectedMsg {
	t.Helper()
	switch msg := msg.(type) {
	case SelectedMsg:
		return msg
	case tea.BatchMsg:
		for _, cmd := range msg {
			if cmd == nil {
				continue
			}
			if sel, ok := cmd().(SelectedMsg); ok {
				return sel
			}
		}
	}
	t.Fatalf("no SelectedMsg in %T", msg)
	return SelectedMsg{}
}

func TestDrag_FollowsPointer(t *testing.T) {
	m, _ := mounted(t)

	m, _ = m.Update(press(10, 5))
	require.True(t, m.Drag().Active())

	m, _ = m.Update(motion(4, 2))
	require.Equal(t, grid.Vec{X: 33, Y: 20}, m.Offset())

	m, cmd := m.Update(release(4, 2))
	require.Nil(t, cmd, "a drag is not a click")
	require.False(t, m.Drag().Active())
	require.Equal(t, grid.Vec{X: 33, Y: 20}, m.Offset())
}

func TestDrag_RebasesAcrossReset(t *testing.T) {
	m, _ := mounted(t)

	m, _ = m.Update(press(30, 6))
	m, _ = m.Update(motion(5, 6))
	// 27+25 = 52 passes 0.9*54, so X snaps back to 27.
	require.Equal(t, 27.0, m.Offset().X)
	require.Equal(t, 1, m.Viewport().Resets())

	m, _ = m.Update(motion(4, 6))
	require.Equal(t, 28.0, m.Offset().X)
	require.Equal(t, 1, m.Viewport().Resets())
}

func TestDrag_RebasesWhenKeysReset(t *testing.T) {
	m, _ := mounted(t)

	m, _ = m.Update(press(30, 6))
	m, _ = m.Update(motion(20, 6))
	require.Equal(t, 37.0, m.Offset().X)

	// 37+8 = 45, then 45+8 = 53 passes 0.9*54 and snaps to 27.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.Equal(t, 27.0, m.Offset().X)
	require.Equal(t, 1, m.Viewport().Resets())

	// The reset shifted X by -26 and the anchor with it, so the pointer's
	// 11 cells land at 27-26+11 instead of the pre-reset 38.
	m, _ = m.Update(motion(19, 6))
	require.Equal(t, 12.0, m.Offset().X)
	require.Equal(t, 1, m.Viewport().Resets())
}

func TestDrag_LogsResetAndEndOnce(t *testing.T) {
	var buf bytes.Buffer
	cleanup := log.InitWriter(&buf, 10)
	defer cleanup()
	m, _ := mounted(t)

	m, _ = m.Update(press(30, 6))
	m, _ = m.Update(motion(5, 6))
	m, _ = m.Update(release(5, 6))
	require.Equal(t, 1, m.Viewport().Resets())

	out := buf.String()
	require.Equal(t, 1, strings.Count(out, "wraparound"), out)
	require.Equal(t, 1, strings.Count(out, "session ended"), out)
}

func TestDrag_CaptureKeepsMotionOutsideGrid(t *testing.T) {
	m, _ := mounted(t)

	m, _ = m.Update(press(10, 5))
	require.True(t, m.capture.held)

	// Row 12 is the status bar.
	m, _ = m.Update(motion(10, 12))
	require.Equal(t, grid.Vec{X: 27, Y: 10}, m.Offset())

	m, _ = m.Update(release(10, 12))
	require.False(t, m.capture.held)
}

func TestDrag_PressOutsideGridIgnored(t *testing.T) {
	m, _ := mounted(t)

	m, _ = m.Update(press(40, 3)) // scrollbar column
	require.False(t, m.Drag().Active())
}

func TestBlur_CancelsDrag(t *testing.T) {
	m, _ := mounted(t)
	m, _ = m.Update(press(10, 5))

	m, _ = m.Update(tea.BlurMsg{})
	require.False(t, m.Drag().Active())
	require.False(t, m.capture.held)

	m, cmd := m.Update(release(10, 5))
	require.Nil(t, cmd)
}

func TestClick_SelectsTile(t *testing.T) {
	m, _ := mounted(t)

	m, _ = m.Update(press(3, 1))
	m, cmd := m.Update(release(3, 1))
	require.NotNil(t, cmd)

	sel := cmd().(SelectedMsg)
	require.Equal(t, 3, sel.Tile.Row)
	require.Equal(t, 2, sel.Tile.Col)
	require.Equal(t, 26, sel.Tile.Key)
	require.Equal(t, "picsum-27", sel.Item.ID)
}

func TestClick_InsideDeadZoneStillClick(t *testing.T) {
	m, _ := mounted(t)

	m, _ = m.Update(press(3, 1))
	m, _ = m.Update(motion(4, 1))
	m, cmd := m.Update(release(4, 1))
	require.NotNil(t, cmd)
	_, ok := cmd().(SelectedMsg)
	require.True(t, ok)
}

func TestClick_OnGapSelectsNothing(t *testing.T) {
	m, _ := mounted(t)

	m, _ = m.Update(press(3, 5))
	m, cmd := m.Update(release(3, 5))
	require.Nil(t, cmd)
	_, ok := m.Selected()
	require.False(t, ok)
}

func TestWheel(t *testing.T) {
	m, rec := mounted(t)

	m, cmd := m.Update(tea.MouseMsg{X: 5, Y: 5, Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	require.NotNil(t, cmd)
	require.Equal(t, grid.Vec{X: 27, Y: 21}, m.Offset())

	m, _ = m.Update(tea.MouseMsg{X: 5, Y: 5, Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress, Shift: true})
	require.Equal(t, grid.Vec{X: 19, Y: 21}, m.Offset())

	m, _ = m.Update(tea.MouseMsg{X: 5, Y: 5, Button: tea.MouseButtonWheelRight, Action: tea.MouseActionPress})
	require.Equal(t, grid.Vec{X: 27, Y: 21}, m.Offset())
	require.Len(t, rec.deadlines(), 3)
}

func TestAutoScroll_TicksPan(t *testing.T) {
	m, _ := mounted(t)

	m, cmd := m.Update(runeKey("z"))
	deadline := cmd().(autoscroll.DeadlineMsg)

	m, cmd = m.Update(deadline)
	require.Equal(t, autoscroll.Scrolling, m.AutoScroll().Mode())
	tick := cmd().(autoscroll.TickMsg)

	m, cmd = m.Update(tick)
	require.NotNil(t, cmd)
	require.Equal(t, grid.Vec{X: 27.5, Y: 17.5}, m.Offset())

	// Input stops the run; the outstanding tick is stale.
	m, _ = m.Update(runeKey("z"))
	m, cmd = m.Update(tick)
	require.Nil(t, cmd)
	require.Equal(t, grid.Vec{X: 27.5, Y: 17.5}, m.Offset())
	require.Equal(t, autoscroll.CountingDown, m.AutoScroll().Mode())
}

func TestAutoScroll_DeadlineDuringDragRearms(t *testing.T) {
	m, rec := mounted(t)

	m, cmd := m.Update(press(10, 5))
	deadline := cmd().(autoscroll.DeadlineMsg)

	m, cmd = m.Update(deadline)
	require.NotNil(t, cmd)
	require.Equal(t, autoscroll.CountingDown, m.AutoScroll().Mode())
	require.Len(t, rec.deadlines(), 2)

	// Once the drag ends the re-armed deadline starts the run.
	m, _ = m.Update(release(10, 5))
	m, _ = m.Update(cmd().(autoscroll.DeadlineMsg))
	require.Equal(t, autoscroll.Scrolling, m.AutoScroll().Mode())
}

func TestClose(t *testing.T) {
	m, _ := mounted(t)
	m, _ = m.Update(runeKey("z"))
	m, _ = m.Update(press(10, 5))

	m.Close()
	require.False(t, m.Drag().Active())
	require.Equal(t, autoscroll.Idle, m.AutoScroll().Mode())
}

func TestView_Layout(t *testing.T) {
	m, _ := mounted(t)

	view := zone.Scan(m.View())
	lines := strings.Split(view, "\n")
	require.Len(t, lines, 13)
	for i, line := range lines[:12] {
		require.Equal(t, 41, lipgloss.Width(line), "row %d", i)
	}
	// 10-wide boxes leave room for four title cells.
	require.Contains(t, view, "╭─ p... ─╮")
	require.Contains(t, lines[12], "x 27")
	require.Contains(t, view, "█")
}

func TestView_NoChrome(t *testing.T) {
	m, _ := newModel(t, smallGrid)
	m.showStatusBar = false
	m.showScrollbars = false
	m, _ = m.Update(tea.WindowSizeMsg{Width: 41, Height: 13})

	lines := strings.Split(zone.Scan(m.View()), "\n")
	require.Len(t, lines, 13)
	require.Equal(t, 41, lipgloss.Width(lines[0]))
}

// buttonAt renders m and waits until the zone id covers the status bar cell
// where label is drawn, returning that cell.
func buttonAt(t *testing.T, m Model, id, label string) (int, int) {
	t.Helper()
	lines := strings.Split(ansi.Strip(zone.Scan(m.View())), "\n")
	row := len(lines) - 1
	idx := strings.LastIndex(lines[row], label)
	require.GreaterOrEqual(t, idx, 0, "%q not on the status bar", label)
	col := lipgloss.Width(lines[row][:idx])

	// Scan registers zones asynchronously; older geometry for the same id
	// can still be visible right after it.
	require.Eventually(t, func() bool {
		z := zone.Get(id)
		return z != nil && z.StartY == row && z.StartX <= col && col <= z.EndX
	}, time.Second, time.Millisecond)
	return col, row
}

func TestStatusBar_Buttons(t *testing.T) {
	cfg := grid.Config{CellWidth: 10, CellHeight: 4, Gap: 2, VirtualSize: 40, Buffer: 1}
	m, _ := newModel(t, cfg)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 140, Height: 13})
	m, _ = m.Update(runeKey("l"))
	require.NotEqual(t, m.Viewport().MaxOffset().X/2, m.Offset().X)

	x, y := buttonAt(t, m, zoneRecenter, "recenter")
	m, _ = m.Update(press(x, y))
	require.False(t, m.Drag().Active())
	require.Equal(t, m.Viewport().MaxOffset().X/2, m.Offset().X)

	x, y = buttonAt(t, m, zoneAutoScroll, "auto")
	m, _ = m.Update(press(x, y))
	require.False(t, m.AutoScroll().Enabled())
}

func TestProperty_DragThenReleaseLeavesNoSession(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		m, _ := mounted(t)
		x := rapid.IntRange(0, 39).Draw(rt, "x")
		y := rapid.IntRange(0, 11).Draw(rt, "y")
		m, _ = m.Update(press(x, y))

		n := rapid.IntRange(0, 20).Draw(rt, "moves")
		for i := 0; i < n; i++ {
			mx := rapid.IntRange(0, 40).Draw(rt, "mx")
			my := rapid.IntRange(0, 12).Draw(rt, "my")
			m, _ = m.Update(motion(mx, my))

			off, limit := m.Offset(), m.Viewport().MaxOffset()
			if off.X < 0 || off.X > limit.X || off.Y < 0 || off.Y > limit.Y {
				rt.Fatalf("offset %v outside [0, %v]", off, limit)
			}
		}
		m, _ = m.Update(release(x, y))
		if m.Drag().Active() || m.capture.held {
			rt.Fatalf("session survived release")
		}
	})
}
