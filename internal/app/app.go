// Package app contains the root application model.
package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/tilepan/internal/autoscroll"
	"github.com/zjrosen/tilepan/internal/config"
	"github.com/zjrosen/tilepan/internal/content"
	"github.com/zjrosen/tilepan/internal/keys"
	"github.com/zjrosen/tilepan/internal/log"
	"github.com/zjrosen/tilepan/internal/pubsub"
	"github.com/zjrosen/tilepan/internal/ui/gridview"
	"github.com/zjrosen/tilepan/internal/ui/help"
	"github.com/zjrosen/tilepan/internal/ui/logoverlay"
	"github.com/zjrosen/tilepan/internal/ui/toaster"
	"github.com/zjrosen/tilepan/internal/watcher"
)

// Options configures New.
type Options struct {
	Config config.Config
	// Debug enables the log overlay (Ctrl+X toggle).
	Debug bool
	// Tracer records drag and auto-scroll spans. Nil disables them.
	Tracer trace.Tracer
	// Scheduler overrides auto-scroll timers, for tests.
	Scheduler autoscroll.Scheduler
}

// contentLoadedMsg carries the result of a content reload.
type contentLoadedMsg struct {
	pool *content.Pool
	err  error
}

// Model is the root application state.
type Model struct {
	cfg  config.Config
	keys keys.KeyMap

	grid     gridview.Model
	resolver *content.Swappable

	width  int
	height int

	// Centralized toaster, owned by the app rather than the grid view
	toaster  toaster.Model
	help     help.Model
	showHelp bool

	debugMode   bool
	logOverlay  logoverlay.Model
	logCtx      context.Context
	logCancel   context.CancelFunc
	logListener *log.LogListener

	// File watcher for content reloads (pubsub-based)
	watcherHandle   *watcher.Watcher
	watcherCtx      context.Context
	watcherCancel   context.CancelFunc
	watcherListener *pubsub.ContinuousListener[string]

	initCmds []tea.Cmd
}

// New creates the application model. A content source that fails to load
// falls back to the builtin pool and reports the failure as a toast.
func New(opts Options) Model {
	cfg := opts.Config
	loadCfg := cfg.Content.LoadConfig()

	m := Model{
		cfg:        cfg,
		keys:       keys.DefaultKeyMap(),
		toaster:    toaster.New(),
		help:       help.New(cfg.UI.MarkdownStyle).WithDebug(opts.Debug),
		debugMode:  opts.Debug,
		logOverlay: logoverlay.New(),
	}

	pool, err := content.Load(context.Background(), loadCfg)
	if err != nil {
		log.ErrorErr(log.CatContent, "Failed to load content, using builtin pool", err, "source", loadCfg.Source)
		pool = content.Builtin(cfg.Content.PoolSize)
		var cmd tea.Cmd
		m.toaster, cmd = m.toaster.Notify("Content unavailable, showing builtin tiles", toaster.StyleError, toaster.DefaultDuration)
		m.initCmds = append(m.initCmds, cmd)
	}
	m.resolver = content.NewSwappable(pool)

	m.grid = gridview.New(gridview.Options{
		Grid:           cfg.Grid.Geometry(),
		ResetThreshold: cfg.Viewport.ResetThreshold,
		AutoScroll:     cfg.AutoScroll.Controller(),
		ArmOnStart:     cfg.AutoScroll.ArmOnStart,
		DeadZone:       cfg.Drag.DeadZone,
		KeyStep:        cfg.UI.KeyStep,
		ShowStatusBar:  cfg.UI.ShowStatusBar,
		ShowScrollbars: cfg.UI.ShowScrollbars,
		ShowKeys:       cfg.UI.ShowKeys,
		TileTTL:        cfg.Cache.TileTTL,
		Tracer:         opts.Tracer,
		Scheduler:      opts.Scheduler,
	}, m.resolver)

	if path := loadCfg.Path(); cfg.Content.Watch && path != "" && err == nil {
		w, werr := watcher.New(watcher.DefaultConfig(path))
		if werr == nil {
			if werr = w.Start(); werr == nil {
				m.watcherHandle = w
				m.watcherCtx, m.watcherCancel = context.WithCancel(context.Background())
				m.watcherListener = pubsub.NewContinuousListener[string](m.watcherCtx, w.Broker())
			} else {
				_ = w.Stop()
			}
		}
		if werr != nil {
			// The grid works without reloads.
			log.Warn(log.CatWatcher, "Content watcher unavailable", "path", path, "error", werr)
		}
	}

	if opts.Debug {
		m.logCtx, m.logCancel = context.WithCancel(context.Background())
		m.logListener = log.NewListener(m.logCtx)
	}

	log.Info(log.CatUI, "App ready", "source", pool.Source(), "items", pool.Len(),
		"watching", m.watcherHandle != nil, "debug", opts.Debug)
	return m
}

// Init implements tea.Model. It starts the grid's idle countdown and the
// watcher and log listeners.
func (m Model) Init() tea.Cmd {
	cmds := append([]tea.Cmd{m.grid.Init()}, m.initCmds...)
	if m.watcherListener != nil {
		cmds = append(cmds, m.watcherListener.Listen())
	}
	if m.logListener != nil {
		cmds = append(cmds, m.logListener.Listen())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		m.toaster = m.toaster.SetSize(msg.Width, msg.Height)
		m.help = m.help.SetSize(msg.Width, msg.Height)
		m.logOverlay.SetSize(msg.Width, msg.Height)

		var cmd tea.Cmd
		m.grid, cmd = m.grid.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		// Overlays swallow the pointer so drags never start underneath them.
		// Opening one cancels any drag, so no release is owed to the grid.
		if m.logOverlay.Visible() {
			var cmd tea.Cmd
			m.logOverlay, cmd = m.logOverlay.Update(msg)
			return m, tea.Batch(cmd, m.grid.Activity())
		}
		if m.showHelp {
			return m, m.grid.Activity()
		}

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) && !m.logOverlay.Visible() {
			return m, tea.Quit
		}

		// Keys the overlays consume below still count as activity, so the
		// grid never keeps scrolling behind them.
		if m.debugMode && key.Matches(msg, m.keys.ToggleLog) {
			m.logOverlay.Toggle()
			if m.logOverlay.Visible() {
				m.grid.CancelDrag()
			}
			return m, m.grid.Activity()
		}

		// If the debug log overlay is visible it takes precedence for updates
		if m.logOverlay.Visible() {
			var cmd tea.Cmd
			m.logOverlay, cmd = m.logOverlay.Update(msg)
			return m, tea.Batch(cmd, m.grid.Activity())
		}

		if key.Matches(msg, m.keys.Help) {
			m.showHelp = !m.showHelp
			if m.showHelp {
				m.grid.CancelDrag()
			}
			return m, m.grid.Activity()
		}
		if m.showHelp {
			if key.Matches(msg, m.keys.Escape) {
				m.showHelp = false
			}
			return m, m.grid.Activity()
		}

	case pubsub.Event[string]:
		return m.handleEvent(msg)

	case contentLoadedMsg:
		return m.handleContentLoaded(msg)

	case gridview.SelectedMsg:
		text := fmt.Sprintf("%s  #%d  r%d c%d", msg.Item.Title, msg.Tile.Key, msg.Tile.Row, msg.Tile.Col)
		if msg.Item.URL != "" {
			text += "\n" + msg.Item.URL
		}
		var cmd tea.Cmd
		m.toaster, cmd = m.toaster.Notify(text, toaster.StyleInfo, toaster.DefaultDuration)
		return m, cmd

	case toaster.DismissMsg:
		m.toaster = m.toaster.Update(msg)
		return m, nil

	case logoverlay.CloseMsg:
		m.logOverlay.Hide()
		return m, nil
	}

	var cmd tea.Cmd
	m.grid, cmd = m.grid.Update(msg)
	return m, cmd
}

// handleEvent routes broker events. Log entries and watcher notifications
// share the string payload and are told apart by type.
func (m Model) handleEvent(msg pubsub.Event[string]) (tea.Model, tea.Cmd) {
	if msg.Type == pubsub.LoggedEvent {
		m.logOverlay.Refresh()
		if m.logListener == nil {
			return m, nil
		}
		return m, m.logListener.Listen()
	}

	if m.watcherListener == nil {
		return m, nil
	}

	switch msg.Type {
	case pubsub.ChangedEvent:
		log.Debug(log.CatWatcher, "Content changed, reloading", "path", msg.Payload)
		return m, tea.Batch(m.reloadContent(), m.watcherListener.Listen())

	case pubsub.FailedEvent:
		log.Warn(log.CatWatcher, "Watcher error received", "error", msg.Payload)
		return m, m.watcherListener.Listen()
	}

	// Continue listening for unknown event types
	return m, m.watcherListener.Listen()
}

// reloadContent re-reads the configured source off the update loop.
func (m Model) reloadContent() tea.Cmd {
	loadCfg := m.cfg.Content.LoadConfig()
	ctx := m.watcherCtx
	return func() tea.Msg {
		pool, err := content.Load(ctx, loadCfg)
		return contentLoadedMsg{pool: pool, err: err}
	}
}

// handleContentLoaded swaps in a reloaded pool. A failed reload keeps the
// current pool.
func (m Model) handleContentLoaded(msg contentLoadedMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if msg.err != nil {
		log.ErrorErr(log.CatContent, "Content reload failed", msg.err)
		m.toaster, cmd = m.toaster.Notify("Reload failed: "+msg.err.Error(), toaster.StyleError, toaster.DefaultDuration)
		return m, cmd
	}

	prev := m.resolver.Swap(msg.pool)
	m.grid.InvalidateTiles(context.Background())
	log.Info(log.CatContent, "Content reloaded", "source", msg.pool.Source(),
		"items", msg.pool.Len(), "previous", prev.Len())

	text := fmt.Sprintf("Reloaded %d items from %s", msg.pool.Len(), filepath.Base(msg.pool.Source()))
	m.toaster, cmd = m.toaster.Notify(text, toaster.StyleSuccess, toaster.DefaultDuration)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	view := m.grid.View()

	if m.showHelp {
		view = m.help.Overlay(view)
	}

	// Overlay toaster on top of the grid
	if m.toaster.Visible() {
		view = m.toaster.Overlay(view, m.width, m.height)
	}

	// Overlay log viewer on top (only in debug mode when visible)
	if m.debugMode && m.logOverlay.Visible() {
		view = m.logOverlay.Overlay(view)
	}

	return zone.Scan(view)
}

// Grid returns the grid view.
func (m Model) Grid() gridview.Model { return m.grid }

// Pool returns the content pool currently resolving tiles.
func (m Model) Pool() *content.Pool { return m.resolver.Pool() }

// HelpVisible reports whether the help overlay is shown.
func (m Model) HelpVisible() bool { return m.showHelp }

// Toast returns the visible toast message, or "".
func (m Model) Toast() string {
	if !m.toaster.Visible() {
		return ""
	}
	return m.toaster.Message()
}

// Watching reports whether the content source is being watched.
func (m Model) Watching() bool { return m.watcherHandle != nil }

// Close releases resources held by the application.
func (m *Model) Close() error {
	m.grid.Close()

	if m.logCancel != nil {
		m.logCancel()
	}

	// Cancel watcher subscription context (stops listener)
	if m.watcherCancel != nil {
		m.watcherCancel()
	}

	// Close watcher if we own it
	if m.watcherHandle != nil {
		if err := m.watcherHandle.Stop(); err != nil {
			return err
		}
	}

	return nil
}
