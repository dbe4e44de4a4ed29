package drag

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/tilepan/internal/grid"
	"github.com/zjrosen/tilepan/internal/log"
	"github.com/zjrosen/tilepan/internal/tracing"
)

// DefaultDeadZone is how far (per axis, in pixels) a press must travel
// before the gesture counts as a drag rather than a click.
const DefaultDeadZone = 1.0

// Capture is the host resource held for the duration of a session: text
// selection suppression plus move/end listeners. Acquire returns the release
// function; the handler calls it exactly once when the session ends.
type Capture interface {
	Acquire() (release func())
}

// CaptureFunc adapts a function to Capture.
type CaptureFunc func() (release func())

// Acquire implements Capture.
func (f CaptureFunc) Acquire() func() { return f() }

// Session is the state of one in-progress drag.
type Session struct {
	ID           string
	Kind         Kind
	StartPointer grid.Vec
	StartOffset  grid.Vec
	Last         grid.Vec // Most recent tracked pointer position
	Moves        int
	Dragged      bool // Left the dead zone at least once
	StartedAt    time.Time
}

// Summary describes a finished session.
type Summary struct {
	Session
	Cancelled bool
	Duration  time.Duration
}

// Option configures a Handler.
type Option func(*Handler)

// WithCapture sets the host capture acquired for each session.
func WithCapture(c Capture) Option {
	return func(h *Handler) { h.capture = c }
}

// WithDeadZone overrides DefaultDeadZone. Negative values are ignored.
func WithDeadZone(d float64) Option {
	return func(h *Handler) {
		if d >= 0 {
			h.deadZone = d
		}
	}
}

// WithTracer records one span per session.
func WithTracer(t trace.Tracer) Option {
	return func(h *Handler) {
		if t != nil {
			h.tracer = t
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// Handler unifies mouse and touch gestures into scroll offsets. It never
// writes the offset itself: Move returns the pre-wraparound target, which the
// caller forwards to the viewport controller.
type Handler struct {
	capture  Capture
	deadZone float64
	tracer   trace.Tracer
	now      func() time.Time

	session *Session
	release func()
	span    trace.Span
}

// New creates an idle handler.
func New(opts ...Option) *Handler {
	h := &Handler{
		deadZone: DefaultDeadZone,
		tracer:   noop.NewTracerProvider().Tracer("drag"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Active reports whether a session is in progress.
func (h *Handler) Active() bool {
	return h.session != nil
}

// SuppressTileInput reports whether tile-level pointer interaction must be
// ignored so it does not compete with panning.
func (h *Handler) SuppressTileInput() bool {
	return h.session != nil
}

// Session returns a copy of the active session.
func (h *Handler) Session() (Session, bool) {
	if h.session == nil {
		return Session{}, false
	}
	return *h.session, true
}

// Start begins a session at the event's point with the given offset. Touch
// gestures start only with exactly one contact. While a session is active a
// further touch start (a second finger) is ignored; a mouse press replaces
// the stale session. Returns whether a session is now active from this event.
func (h *Handler) Start(ev Event, offset grid.Vec) bool {
	if ev.Kind == KindTouch && ev.Contacts() != 1 {
		if h.session == nil {
			log.Debug(log.CatDrag, "rejected multi-touch start", "contacts", ev.Contacts())
		}
		return false
	}
	p, ok := ev.Coords()
	if !ok {
		return false
	}
	if h.session != nil {
		if ev.Kind == KindTouch {
			return false
		}
		h.finish(true)
	}

	h.session = &Session{
		ID:           uuid.NewString(),
		Kind:         ev.Kind,
		StartPointer: p,
		StartOffset:  offset,
		Last:         p,
		StartedAt:    h.now(),
	}
	if h.capture != nil {
		h.release = h.capture.Acquire()
	}
	_, h.span = h.tracer.Start(context.Background(), tracing.SpanDragSession,
		trace.WithAttributes(
			attribute.String(tracing.AttrDragID, h.session.ID),
			attribute.String(tracing.AttrDragKind, ev.Kind.String()),
		))

	log.Debug(log.CatDrag, "session started", "id", h.session.ID, "kind", ev.Kind,
		"x", p.X, "y", p.Y)
	return true
}

// Move returns the new target offset for the event:
// startOffset - (current - startPointer). The result is pre-wraparound.
// It returns false when no session is active or the event has no point.
func (h *Handler) Move(ev Event) (grid.Vec, bool) {
	if h.session == nil {
		return grid.Vec{}, false
	}
	p, ok := ev.Coords()
	if !ok {
		return grid.Vec{}, false
	}

	s := h.session
	s.Last = p
	s.Moves++
	delta := p.Sub(s.StartPointer)
	if math.Abs(delta.X) > h.deadZone || math.Abs(delta.Y) > h.deadZone {
		s.Dragged = true
	}
	return s.StartOffset.Sub(delta), true
}

// Rebase shifts the session's start offset by correction. Call it after the
// viewport controller re-centers during a drag so later moves continue from
// the re-centered position.
func (h *Handler) Rebase(correction grid.Vec) {
	if h.session == nil {
		return
	}
	h.session.StartOffset = h.session.StartOffset.Add(correction)
	if h.span != nil {
		h.span.AddEvent(tracing.EventViewportReset, trace.WithAttributes(
			attribute.Bool(tracing.AttrResetAxisX, correction.X != 0),
			attribute.Bool(tracing.AttrResetAxisY, correction.Y != 0),
		))
	}
}

// End finishes the session normally. Losing contact outside the tracked
// surface is reported the same way.
func (h *Handler) End() (Summary, bool) {
	return h.finish(false)
}

// Cancel aborts the session (touch cancel, focus loss, teardown).
func (h *Handler) Cancel() (Summary, bool) {
	return h.finish(true)
}

func (h *Handler) finish(cancelled bool) (Summary, bool) {
	if h.session == nil {
		return Summary{}, false
	}
	s := *h.session
	h.session = nil

	if h.release != nil {
		release := h.release
		h.release = nil
		release()
	}

	sum := Summary{Session: s, Cancelled: cancelled, Duration: h.now().Sub(s.StartedAt)}
	if h.span != nil {
		h.span.SetAttributes(
			attribute.Int(tracing.AttrDragMoves, s.Moves),
			attribute.Bool(tracing.AttrDragDragged, s.Dragged),
			attribute.Bool(tracing.AttrDragCancelled, cancelled),
		)
		h.span.End()
		h.span = nil
	}

	log.Debug(log.CatDrag, "session ended", "id", s.ID, "moves", s.Moves,
		"dragged", s.Dragged, "cancelled", cancelled, "duration", sum.Duration)
	return sum, true
}
