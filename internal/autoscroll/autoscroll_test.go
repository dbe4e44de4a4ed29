package autoscroll

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"pgregory.net/rapid"

	"github.com/zjrosen/tilepan/internal/grid"
	"github.com/zjrosen/tilepan/internal/tracing"
)

type scheduled struct {
	delay time.Duration
	msg   tea.Msg
}

// recorder captures armed timers instead of sleeping.
type recorder struct {
	armed []scheduled
}

func (r *recorder) After(d time.Duration, msg tea.Msg) tea.Cmd {
	r.armed = append(r.armed, scheduled{delay: d, msg: msg})
	return func() tea.Msg { return msg }
}

func (r *recorder) last() scheduled {
	return r.armed[len(r.armed)-1]
}

func newTestController(t *testing.T) (*Controller, *recorder) {
	t.Helper()
	rec := &recorder{}
	cfg := Config{
		IdleDelay: time.Second,
		Interval:  16 * time.Millisecond,
		Delta:     grid.Vec{X: 0.5, Y: 0.25},
		Enabled:   true,
	}
	return New(cfg, WithScheduler(rec)), rec
}

func TestStartsIdle(t *testing.T) {
	c, rec := newTestController(t)
	require.Equal(t, Idle, c.Mode())
	require.Empty(t, rec.armed)
}

func TestInput_ArmsCountdown(t *testing.T) {
	c, rec := newTestController(t)

	cmd := c.Input()
	require.NotNil(t, cmd)
	require.Equal(t, CountingDown, c.Mode())
	require.Len(t, rec.armed, 1)
	require.Equal(t, time.Second, rec.last().delay)
	require.IsType(t, DeadlineMsg{}, cmd())
}

func TestDeadline_StartsScrolling(t *testing.T) {
	c, rec := newTestController(t)
	deadline := c.Input()().(DeadlineMsg)

	cmd := c.HandleDeadline(deadline)
	require.NotNil(t, cmd)
	require.Equal(t, Scrolling, c.Mode())
	require.NotEmpty(t, c.RunID())
	require.Equal(t, 16*time.Millisecond, rec.last().delay)

	tick := cmd().(TickMsg)
	delta, ok, next := c.HandleTick(tick)
	require.True(t, ok)
	require.NotNil(t, next)
	require.Equal(t, grid.Vec{X: 0.5, Y: 0.25}, delta)

	// The next tick in the chain is live too
	delta, ok, _ = c.HandleTick(next().(TickMsg))
	require.True(t, ok)
	require.Equal(t, 0.5, delta.X)
}

func TestInputRestartsCountdown(t *testing.T) {
	c, _ := newTestController(t)
	first := c.Input()().(DeadlineMsg)
	second := c.Input()().(DeadlineMsg)

	require.Nil(t, c.HandleDeadline(first), "restarted countdown ignores the old deadline")
	require.Equal(t, CountingDown, c.Mode())

	require.NotNil(t, c.HandleDeadline(second))
	require.Equal(t, Scrolling, c.Mode())
}

func TestInputDuringScrolling_StopsTicks(t *testing.T) {
	c, _ := newTestController(t)
	tick := c.HandleDeadline(c.Input()().(DeadlineMsg))().(TickMsg)

	cmd := c.Input()
	require.NotNil(t, cmd)
	require.Equal(t, CountingDown, c.Mode(), "input returns to CountingDown, not Idle")
	require.Empty(t, c.RunID())

	_, ok, next := c.HandleTick(tick)
	require.False(t, ok, "old ticker no longer advances the offset")
	require.Nil(t, next)
}

func TestPending(t *testing.T) {
	c, _ := newTestController(t)
	first := c.Input()().(DeadlineMsg)
	require.True(t, c.Pending(first))

	second := c.Input()().(DeadlineMsg)
	require.False(t, c.Pending(first))
	require.True(t, c.Pending(second))

	c.HandleDeadline(second)
	require.False(t, c.Pending(second))
}

func TestCancel(t *testing.T) {
	c, _ := newTestController(t)
	deadline := c.Input()().(DeadlineMsg)

	c.Cancel()
	require.Equal(t, Idle, c.Mode())
	require.Nil(t, c.HandleDeadline(deadline))
	require.Equal(t, Idle, c.Mode())
}

func TestCancel_WhileScrolling(t *testing.T) {
	c, _ := newTestController(t)
	tick := c.HandleDeadline(c.Input()().(DeadlineMsg))().(TickMsg)

	c.Cancel()
	_, ok, _ := c.HandleTick(tick)
	require.False(t, ok)
	require.Equal(t, Idle, c.Mode())
}

func TestDisabled(t *testing.T) {
	c, rec := newTestController(t)
	require.Nil(t, c.SetEnabled(false))
	require.False(t, c.Enabled())

	require.Nil(t, c.Input())
	require.Nil(t, c.Start())
	require.Equal(t, Idle, c.Mode())
	require.Empty(t, rec.armed)

	require.NotNil(t, c.SetEnabled(true))
	require.Equal(t, CountingDown, c.Mode())
}

func TestDisable_WhileScrolling(t *testing.T) {
	c, _ := newTestController(t)
	tick := c.HandleDeadline(c.Input()().(DeadlineMsg))().(TickMsg)

	c.SetEnabled(false)
	require.Equal(t, Idle, c.Mode())
	_, ok, _ := c.HandleTick(tick)
	require.False(t, ok)
}

func TestTickIgnoredOutsideScrolling(t *testing.T) {
	c, _ := newTestController(t)
	_, ok, _ := c.HandleTick(TickMsg{Gen: 0})
	require.False(t, ok)
}

func TestTransitionHook(t *testing.T) {
	var seen []Mode
	rec := &recorder{}
	c := New(Config{Enabled: true}, WithScheduler(rec),
		WithTransitionHook(func(_, to Mode) { seen = append(seen, to) }))

	c.HandleDeadline(c.Input()().(DeadlineMsg))
	c.Input()
	c.Cancel()

	require.Equal(t, []Mode{CountingDown, Scrolling, CountingDown, Idle}, seen)
	require.Equal(t, DefaultIdleDelay, rec.armed[0].delay, "zero durations fall back to defaults")
}

func TestRunSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	c := New(DefaultConfig(), WithScheduler(&recorder{}), WithTracer(tp.Tracer("test")))

	tick := c.HandleDeadline(c.Input()().(DeadlineMsg))().(TickMsg)
	_, _, next := c.HandleTick(tick)
	c.HandleTick(next().(TickMsg))
	c.Input()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, tracing.SpanAutoScrollRun, spans[0].Name())
	for _, kv := range spans[0].Attributes() {
		if string(kv.Key) == tracing.AttrAutoScrollTicks {
			require.EqualValues(t, 2, kv.Value.AsInt64())
		}
	}
}

func TestDefaultScheduler(t *testing.T) {
	c := New(DefaultConfig())
	require.NotNil(t, c.Start())
	require.Equal(t, "countdown", c.Mode().String())
}

// =============================================================================
// Property-Based Tests (using pgregory.net/rapid)
// =============================================================================

// TestProperty_SingleLiveTimer checks that after any sequence of operations at
// most one outstanding timer message is accepted by the controller.
func TestProperty_SingleLiveTimer(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		rec := &recorder{}
		c := New(DefaultConfig(), WithScheduler(rec))

		steps := rapid.IntRange(1, 40).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 3).Draw(rt, "op") {
			case 0:
				c.Input()
			case 1:
				c.Cancel()
			case 2:
				if len(rec.armed) > 0 {
					if d, ok := rec.last().msg.(DeadlineMsg); ok {
						c.HandleDeadline(d)
					}
				}
			case 3:
				if len(rec.armed) > 0 {
					if tk, ok := rec.last().msg.(TickMsg); ok {
						c.HandleTick(tk)
					}
				}
			}
		}

		live := make(map[tea.Msg]struct{})
		for _, s := range rec.armed {
			switch m := s.msg.(type) {
			case DeadlineMsg:
				if m.Gen == c.gen && c.mode == CountingDown {
					live[m] = struct{}{}
				}
			case TickMsg:
				if m.Gen == c.gen && c.mode == Scrolling {
					live[m] = struct{}{}
				}
			}
		}
		require.LessOrEqual(t, len(live), 1)
		if c.Mode() == Idle {
			require.Empty(t, live)
		}
	})
}
