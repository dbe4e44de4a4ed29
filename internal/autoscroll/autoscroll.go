// Package autoscroll drives the idle auto-scroll state machine.
//
// The controller never owns a goroutine or a live timer. Every deadline and
// tick is a one-shot tea.Cmd whose message carries the generation it was
// armed in. Moving to a new state bumps the generation and any message still
// in flight from an older state is ignored when it arrives, so at most one
// deadline or ticker is ever live.
package autoscroll

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/tilepan/internal/grid"
	"github.com/zjrosen/tilepan/internal/log"
	"github.com/zjrosen/tilepan/internal/tracing"
)

// Mode is the controller state.
type Mode int

const (
	// Idle has no timers armed.
	Idle Mode = iota
	// CountingDown waits for the idle deadline.
	CountingDown
	// Scrolling advances the offset on every tick.
	Scrolling
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case CountingDown:
		return "countdown"
	case Scrolling:
		return "scrolling"
	default:
		return "unknown"
	}
}

// Defaults mirror a one second idle wait followed by ~60 ticks per second.
const (
	DefaultIdleDelay = time.Second
	DefaultInterval  = 16 * time.Millisecond
)

// Config holds the timing and per-tick delta.
type Config struct {
	IdleDelay time.Duration
	Interval  time.Duration
	Delta     grid.Vec
	Enabled   bool
}

// DefaultConfig returns an enabled config with the default timings and a
// half-pixel diagonal delta.
func DefaultConfig() Config {
	return Config{
		IdleDelay: DefaultIdleDelay,
		Interval:  DefaultInterval,
		Delta:     grid.Vec{X: 0.5, Y: 0.5},
		Enabled:   true,
	}
}

// DeadlineMsg fires when the idle countdown elapses.
type DeadlineMsg struct{ Gen uint64 }

// TickMsg fires once per scroll interval.
type TickMsg struct{ Gen uint64 }

// Scheduler turns a delay and message into a command. The default uses
// tea.Tick; tests inject a recorder.
type Scheduler interface {
	After(d time.Duration, msg tea.Msg) tea.Cmd
}

type teaScheduler struct{}

func (teaScheduler) After(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

// Option configures a Controller.
type Option func(*Controller)

// WithScheduler replaces the tea.Tick scheduler.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) {
		if s != nil {
			c.sched = s
		}
	}
}

// WithTracer records one span per scrolling run.
func WithTracer(t trace.Tracer) Option {
	return func(c *Controller) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithTransitionHook is called after every mode change.
func WithTransitionHook(fn func(from, to Mode)) Option {
	return func(c *Controller) { c.onTransition = fn }
}

// Controller is the Idle → CountingDown → Scrolling state machine.
type Controller struct {
	cfg          Config
	sched        Scheduler
	tracer       trace.Tracer
	onTransition func(from, to Mode)

	mode  Mode
	gen   uint64
	runID string
	ticks int
	span  trace.Span
}

// New creates an idle controller. Non-positive durations fall back to the
// defaults.
func New(cfg Config, opts ...Option) *Controller {
	if cfg.IdleDelay <= 0 {
		cfg.IdleDelay = DefaultIdleDelay
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	c := &Controller{
		cfg:    cfg,
		sched:  teaScheduler{},
		tracer: noop.NewTracerProvider().Tracer("autoscroll"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mode returns the current state.
func (c *Controller) Mode() Mode { return c.mode }

// Enabled reports whether qualifying input arms the countdown.
func (c *Controller) Enabled() bool { return c.cfg.Enabled }

// Config returns the active configuration.
func (c *Controller) Config() Config { return c.cfg }

// RunID identifies the current scrolling run, empty outside Scrolling.
func (c *Controller) RunID() string { return c.runID }

// Start arms the idle countdown without waiting for input.
func (c *Controller) Start() tea.Cmd {
	return c.Input()
}

// Input records a qualifying input event. From any state it cancels the
// pending deadline or ticker and restarts the countdown from zero.
func (c *Controller) Input() tea.Cmd {
	if !c.cfg.Enabled {
		return nil
	}
	c.endRun()
	c.gen++
	c.transition(CountingDown)
	return c.sched.After(c.cfg.IdleDelay, DeadlineMsg{Gen: c.gen})
}

// Cancel stops everything and returns to Idle. Used on teardown.
func (c *Controller) Cancel() {
	c.endRun()
	c.gen++
	c.transition(Idle)
}

// SetEnabled toggles the controller. Disabling cancels; enabling arms the
// countdown.
func (c *Controller) SetEnabled(enabled bool) tea.Cmd {
	c.cfg.Enabled = enabled
	if !enabled {
		c.Cancel()
		return nil
	}
	return c.Input()
}

// Pending reports whether msg is the deadline the controller is waiting for.
func (c *Controller) Pending(msg DeadlineMsg) bool {
	return msg.Gen == c.gen && c.mode == CountingDown
}

// HandleDeadline moves CountingDown to Scrolling when msg is the live
// deadline and arms the first tick. Stale deadlines return nil.
func (c *Controller) HandleDeadline(msg DeadlineMsg) tea.Cmd {
	if !c.Pending(msg) {
		return nil
	}
	c.gen++
	c.runID = uuid.NewString()
	c.ticks = 0
	_, c.span = c.tracer.Start(context.Background(), tracing.SpanAutoScrollRun,
		trace.WithAttributes(attribute.String(tracing.AttrAutoScrollRunID, c.runID)))
	c.transition(Scrolling)
	return c.sched.After(c.cfg.Interval, TickMsg{Gen: c.gen})
}

// HandleTick returns the per-tick delta to feed the viewport controller and
// the command for the next tick. Stale ticks return ok=false.
func (c *Controller) HandleTick(msg TickMsg) (delta grid.Vec, ok bool, next tea.Cmd) {
	if msg.Gen != c.gen || c.mode != Scrolling {
		return grid.Vec{}, false, nil
	}
	c.ticks++
	return c.cfg.Delta, true, c.sched.After(c.cfg.Interval, TickMsg{Gen: c.gen})
}

func (c *Controller) transition(to Mode) {
	from := c.mode
	c.mode = to
	if from == to {
		return
	}
	log.Debug(log.CatAutoScroll, "transition", "from", from, "to", to, "gen", c.gen)
	if c.onTransition != nil {
		c.onTransition(from, to)
	}
}

func (c *Controller) endRun() {
	if c.span != nil {
		c.span.SetAttributes(attribute.Int(tracing.AttrAutoScrollTicks, c.ticks))
		c.span.End()
		c.span = nil
		log.Debug(log.CatAutoScroll, "run ended", "id", c.runID, "ticks", c.ticks)
	}
	c.runID = ""
}
