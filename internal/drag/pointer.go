// Package drag turns pointer and touch gestures into scroll offsets.
package drag

import "github.com/zjrosen/tilepan/internal/grid"

// Kind tags the source of a pointer event.
type Kind int

const (
	// KindMouse is a mouse (or any single-pointer) event.
	KindMouse Kind = iota
	// KindTouch is a touch event carrying every active contact.
	KindTouch
)

func (k Kind) String() string {
	switch k {
	case KindMouse:
		return "mouse"
	case KindTouch:
		return "touch"
	default:
		return "unknown"
	}
}

// Event is a tagged pointer event: Mouse{X,Y} or Touch{Touches}.
type Event struct {
	Kind    Kind
	X, Y    float64    // Mouse position; unused for touch
	Touches []grid.Vec // Active touch contacts; unused for mouse
}

// Mouse builds a mouse event at (x, y).
func Mouse(x, y float64) Event {
	return Event{Kind: KindMouse, X: x, Y: y}
}

// Touch builds a touch event from the active contacts.
func Touch(contacts ...grid.Vec) Event {
	return Event{Kind: KindTouch, Touches: contacts}
}

// Contacts returns how many simultaneous contacts the event carries.
func (e Event) Contacts() int {
	if e.Kind == KindTouch {
		return len(e.Touches)
	}
	return 1
}

// Coords extracts the tracking point. Touch events track the first contact;
// a touch event with no contacts has no coordinates.
func (e Event) Coords() (grid.Vec, bool) {
	switch e.Kind {
	case KindMouse:
		return grid.Vec{X: e.X, Y: e.Y}, true
	case KindTouch:
		if len(e.Touches) == 0 {
			return grid.Vec{}, false
		}
		return e.Touches[0], true
	default:
		return grid.Vec{}, false
	}
}
