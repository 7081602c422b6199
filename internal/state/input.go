package state

import "time"

// EventType is the kind of pointer input forwarded to a canvas.
type EventType string

const (
	EventDown   EventType = "down"
	EventMove   EventType = "move"
	EventUp     EventType = "up"
	EventCancel EventType = "cancel"
)

// Event is one pointer sample, already mapped to surface-local space and
// reduced to the primary contact.
type Event struct {
	Type  EventType
	Point Point
	Time  time.Time
}

// Handle feeds one input event to the canvas. Pointer-down begins a stroke
// with the current pen; up and cancel both commit it.
func (c *StrokeCanvas) Handle(ev Event) {
	switch ev.Type {
	case EventDown:
		c.BeginStroke(ev.Point, c.Pen())
	case EventMove:
		c.Extend(ev.Point)
	case EventUp:
		c.End()
	case EventCancel:
		c.Cancel()
	}
}
