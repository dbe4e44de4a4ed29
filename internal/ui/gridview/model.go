// Package gridview is the Bubble Tea model for the pannable grid. It routes
// terminal input to the viewport, drag and auto-scroll controllers and
// renders the visible tiles.
package gridview

import (
	"context"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/tilepan/internal/autoscroll"
	"github.com/zjrosen/tilepan/internal/content"
	"github.com/zjrosen/tilepan/internal/drag"
	"github.com/zjrosen/tilepan/internal/grid"
	"github.com/zjrosen/tilepan/internal/keys"
	"github.com/zjrosen/tilepan/internal/log"
	"github.com/zjrosen/tilepan/internal/ui/tile"
	"github.com/zjrosen/tilepan/internal/viewport"
)

// Zone IDs for the status bar buttons.
const (
	zoneRecenter   = "gridview-recenter"
	zoneAutoScroll = "gridview-autoscroll"
)

// Options configures a Model.
type Options struct {
	Grid           grid.Config
	ResetThreshold float64
	AutoScroll     autoscroll.Config
	ArmOnStart     bool
	DeadZone       float64
	KeyStep        int
	ShowStatusBar  bool
	ShowScrollbars bool
	ShowKeys       bool
	TileTTL        time.Duration

	Tracer    trace.Tracer         // nil disables spans
	Scheduler autoscroll.Scheduler // nil uses tea.Tick
}

// SelectedMsg reports a tile chosen by a click or the select key.
type SelectedMsg struct {
	Tile grid.Tile
	Item content.Item
}

// Model holds the grid view state. Controllers are shared between copies.
type Model struct {
	keys     keys.KeyMap
	cfg      grid.Config
	viewport *viewport.Controller
	drag     *drag.Handler
	auto     *autoscroll.Controller
	capture  *pointerCapture
	content  content.Resolver
	tiles    *tile.Renderer

	armOnStart     bool
	keyStep        int
	showStatusBar  bool
	showScrollbars bool
	showKeys       bool

	width    int
	height   int
	selected int
	hasSel   bool
}

// New creates a grid view over resolver. The viewport is not mounted until
// the first tea.WindowSizeMsg.
func New(opts Options, resolver content.Resolver) Model {
	capture := &pointerCapture{}

	dragOpts := []drag.Option{drag.WithCapture(capture)}
	if opts.DeadZone > 0 {
		dragOpts = append(dragOpts, drag.WithDeadZone(opts.DeadZone))
	}
	autoOpts := []autoscroll.Option{}
	if opts.Tracer != nil {
		dragOpts = append(dragOpts, drag.WithTracer(opts.Tracer))
		autoOpts = append(autoOpts, autoscroll.WithTracer(opts.Tracer))
	}
	if opts.Scheduler != nil {
		autoOpts = append(autoOpts, autoscroll.WithScheduler(opts.Scheduler))
	}

	step := opts.KeyStep
	if step < 1 {
		step = 1
	}

	// Any reset, whatever moved the viewport, shifts a drag's anchor with it.
	d := drag.New(dragOpts...)
	vp := viewport.New(opts.Grid,
		viewport.WithThreshold(opts.ResetThreshold),
		viewport.WithResetHook(func(u viewport.Update) { d.Rebase(u.Correction()) }),
	)

	return Model{
		keys:           keys.DefaultKeyMap(),
		cfg:            opts.Grid,
		viewport:       vp,
		drag:           d,
		auto:           autoscroll.New(opts.AutoScroll, autoOpts...),
		capture:        capture,
		content:        resolver,
		tiles:          tile.NewRenderer(opts.TileTTL),
		armOnStart:     opts.ArmOnStart,
		keyStep:        step,
		showStatusBar:  opts.ShowStatusBar,
		showScrollbars: opts.ShowScrollbars,
		showKeys:       opts.ShowKeys,
	}
}

// Init arms the idle countdown when configured to start without input.
func (m Model) Init() tea.Cmd {
	if m.armOnStart {
		return m.auto.Start()
	}
	return nil
}

// Update handles messages for the grid view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.BlurMsg:
		m.CancelDrag()
		return m, nil

	case autoscroll.DeadlineMsg:
		// A drag in progress is activity; push the run back.
		if m.drag.Active() && m.auto.Pending(msg) {
			return m, m.auto.Input()
		}
		return m, m.auto.HandleDeadline(msg)

	case autoscroll.TickMsg:
		delta, ok, next := m.auto.HandleTick(msg)
		if ok {
			m.viewport.PanBy(delta)
		}
		return m, next
	}
	return m, nil
}

// layout mounts or resizes the viewport to the area left for tiles.
func (m *Model) layout() {
	size := m.gridSize()
	if !m.viewport.Mounted() {
		if size.Empty() {
			return
		}
		m.viewport.Mount(size)
		log.Debug(log.CatUI, "mounted", "width", size.Width, "height", size.Height,
			"fits", m.cfg.Fits(size))
		return
	}
	m.viewport.Resize(size)
}

// gridSize is the terminal area tiles are drawn into.
func (m Model) gridSize() grid.Size {
	w, h := m.width, m.height
	if m.showScrollbars {
		w--
	}
	if m.showStatusBar {
		h--
	}
	return grid.Size{Width: float64(max(w, 0)), Height: float64(max(h, 0))}
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	// Every key counts as activity for the idle countdown.
	cmds := []tea.Cmd{m.auto.Input()}

	step := float64(m.keyStep)
	switch {
	case key.Matches(msg, m.keys.Up):
		m.pan(grid.Vec{Y: -step})
	case key.Matches(msg, m.keys.Down):
		m.pan(grid.Vec{Y: step})
	case key.Matches(msg, m.keys.Left):
		m.pan(grid.Vec{X: -2 * step})
	case key.Matches(msg, m.keys.Right):
		m.pan(grid.Vec{X: 2 * step})
	case key.Matches(msg, m.keys.Recenter):
		m.recenter()
	case key.Matches(msg, m.keys.AutoScroll):
		cmds = []tea.Cmd{m.toggleAutoScroll()}
	case key.Matches(msg, m.keys.Select):
		if !m.drag.SuppressTileInput() {
			cmds = append(cmds, m.selectCenter())
		}
	case key.Matches(msg, m.keys.ToggleKeys):
		m.showKeys = !m.showKeys
	case key.Matches(msg, m.keys.ToggleStatus):
		m.showStatusBar = !m.showStatusBar
		m.layout()
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	ev := drag.Mouse(float64(msg.X), float64(msg.Y))

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown,
			tea.MouseButtonWheelLeft, tea.MouseButtonWheelRight:
			m.pan(wheelDelta(msg, float64(m.keyStep)))
			return m, m.auto.Input()
		case tea.MouseButtonLeft:
			if cmd, ok := m.handleButtons(msg); ok {
				return m, cmd
			}
			if !m.inGrid(msg.X, msg.Y) {
				return m, nil
			}
			m.drag.Start(ev, m.viewport.Offset())
			return m, m.auto.Input()
		}

	case tea.MouseActionMotion:
		if !m.capture.held && !m.inGrid(msg.X, msg.Y) {
			return m, nil
		}
		if target, ok := m.drag.Move(ev); ok {
			m.viewport.PanTo(target)
		}

	case tea.MouseActionRelease:
		sum, ok := m.drag.End()
		if !ok {
			return m, nil
		}
		if !sum.Dragged && m.inGrid(msg.X, msg.Y) {
			return m, m.selectAt(float64(msg.X), float64(msg.Y))
		}
	}
	return m, nil
}

// handleButtons reports whether msg hit a status bar button.
func (m *Model) handleButtons(msg tea.MouseMsg) (tea.Cmd, bool) {
	if !m.showStatusBar {
		return nil, false
	}
	if z := zone.Get(zoneRecenter); z != nil && z.InBounds(msg) {
		m.recenter()
		return m.auto.Input(), true
	}
	if z := zone.Get(zoneAutoScroll); z != nil && z.InBounds(msg) {
		return m.toggleAutoScroll(), true
	}
	return nil, false
}

func wheelDelta(msg tea.MouseMsg, step float64) grid.Vec {
	var d grid.Vec
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		d.Y = -step
	case tea.MouseButtonWheelDown:
		d.Y = step
	case tea.MouseButtonWheelLeft:
		d.X = -2 * step
	case tea.MouseButtonWheelRight:
		d.X = 2 * step
	}
	if msg.Shift && d.X == 0 {
		d.X, d.Y = 2*d.Y, 0
	}
	return d
}

// pan moves by delta, keeping an active drag anchored across a reset.
func (m *Model) pan(delta grid.Vec) {
	u := m.viewport.PanBy(delta)
	if u.Reset() {
		m.drag.Rebase(u.Correction())
	}
}

func (m *Model) recenter() {
	before := m.viewport.Offset()
	u := m.viewport.Recenter()
	m.drag.Rebase(u.Offset.Sub(before))
}

func (m *Model) toggleAutoScroll() tea.Cmd {
	enabled := !m.auto.Enabled()
	log.Info(log.CatAutoScroll, "toggled", "enabled", enabled)
	return m.auto.SetEnabled(enabled)
}

// selectAt selects the tile under a viewport-relative point.
func (m *Model) selectAt(x, y float64) tea.Cmd {
	p := m.viewport.Offset().Add(grid.Vec{X: x, Y: y})
	t, ok := m.cfg.TileAt(p)
	if !ok {
		m.hasSel = false
		return nil
	}
	return m.selectTile(t)
}

// selectCenter selects the tile whose center is nearest the viewport center.
func (m *Model) selectCenter() tea.Cmd {
	size := m.viewport.Size()
	c := m.viewport.Offset().Add(grid.Vec{X: size.Width / 2, Y: size.Height / 2})

	best, found := grid.Tile{}, false
	bestDist := math.Inf(1)
	for _, t := range m.viewport.Visible() {
		dx := t.Left + float64(m.cfg.CellWidth)/2 - c.X
		dy := t.Top + float64(m.cfg.CellHeight)/2 - c.Y
		if d := dx*dx + dy*dy; d < bestDist {
			best, bestDist, found = t, d, true
		}
	}
	if !found {
		return nil
	}
	return m.selectTile(best)
}

func (m *Model) selectTile(t grid.Tile) tea.Cmd {
	m.selected = t.Key
	m.hasSel = true
	item := m.content.Resolve(t.Key)
	log.Debug(log.CatUI, "selected", "key", t.Key, "row", t.Row, "col", t.Col, "item", item.ID)
	return func() tea.Msg { return SelectedMsg{Tile: t, Item: item} }
}

func (m Model) inGrid(x, y int) bool {
	size := m.gridSize()
	return x >= 0 && y >= 0 && float64(x) < size.Width && float64(y) < size.Height
}

// InvalidateTiles drops cached tile renderings after the content changed.
func (m Model) InvalidateTiles(ctx context.Context) {
	m.tiles.Invalidate(ctx)
}

// Activity records input the grid did not see, such as keys consumed by an
// overlay, and restarts the idle countdown.
func (m Model) Activity() tea.Cmd { return m.auto.Input() }

// CancelDrag ends a drag session without a release, for when something
// else takes the pointer.
func (m Model) CancelDrag() { m.drag.Cancel() }

// Close cancels the drag session and any auto-scroll timers.
func (m Model) Close() {
	m.drag.Cancel()
	m.auto.Cancel()
}

// Offset returns the current scroll offset.
func (m Model) Offset() grid.Vec { return m.viewport.Offset() }

// Viewport exposes the viewport controller.
func (m Model) Viewport() *viewport.Controller { return m.viewport }

// Drag exposes the drag handler.
func (m Model) Drag() *drag.Handler { return m.drag }

// AutoScroll exposes the auto-scroll controller.
func (m Model) AutoScroll() *autoscroll.Controller { return m.auto }

// Selected returns the key of the selected tile.
func (m Model) Selected() (int, bool) { return m.selected, m.hasSel }

// ShowKeys reports whether tile keys are drawn.
func (m Model) ShowKeys() bool { return m.showKeys }

// ShowStatusBar reports whether the status bar is drawn.
func (m Model) ShowStatusBar() bool { return m.showStatusBar }

// pointerCapture tracks whether the drag owns the pointer, so motion outside
// the grid area keeps panning until release.
type pointerCapture struct {
	held bool
}

func (c *pointerCapture) Acquire() func() {
	c.held = true
	released := false
	return func() {
		if released {
			return
		}
		released = true
		c.held = false
	}
}

func floorInt(v float64) int {
	return int(math.Floor(v))
}
