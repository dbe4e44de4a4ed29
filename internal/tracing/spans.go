package tracing

// Span names.
const (
	SpanDragSession   = "drag.session"
	SpanAutoScrollRun = "autoscroll.run"
)

// Span attribute keys.
const (
	AttrDragID        = "drag.id"
	AttrDragKind      = "drag.kind"
	AttrDragMoves     = "drag.moves"
	AttrDragDragged   = "drag.dragged"
	AttrDragCancelled = "drag.cancelled"

	AttrAutoScrollRunID = "autoscroll.run_id"
	AttrAutoScrollTicks = "autoscroll.ticks"

	// Recorded as span events when a wraparound reset fires mid-session.
	EventViewportReset = "viewport.reset"
	AttrResetAxisX     = "reset.x"
	AttrResetAxisY     = "reset.y"
)
