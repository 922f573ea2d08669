package sensor

import "errors"

// ErrSourceClosed is returned when operating on a source that has been closed.
var ErrSourceClosed = errors.New("sensor source is closed")

// EventType discriminates the payload carried by an Event.
type EventType string

const (
	// EventBody carries a body frame.
	EventBody EventType = "body"
	// EventGesture carries a gesture result frame.
	EventGesture EventType = "gesture"
	// EventLost reports that the sensor stopped tracking a body.
	EventLost EventType = "lost"
)

// Event is a single notification from the sensor service. It is also the
// JSON shape used by the bridge and replay sources.
type Event struct {
	Type       EventType       `json:"type"`
	Bodies     []BodyCandidate `json:"bodies,omitempty"`
	TrackingID TrackingID      `json:"trackingId,omitempty"`
	Results    []GestureResult `json:"results,omitempty"`
}

// BodyFrame returns the body frame carried by a body event.
func (e Event) BodyFrame() BodyFrame {
	return BodyFrame{Bodies: e.Bodies}
}

// GestureFrame returns the gesture frame carried by a gesture event.
func (e Event) GestureFrame() GestureFrame {
	return GestureFrame{TrackingID: e.TrackingID, Results: e.Results}
}

// Source defines the interface for sensor frame sources.
type Source interface {
	// Events delivers sensor events in arrival order. The channel is closed
	// when the source ends.
	Events() <-chan Event

	// Close releases any resources held by the source.
	Close() error
}

// Binder is implemented by sources that can scope gesture frames to a body.
// Sources that cannot simply deliver frames for every body.
type Binder interface {
	Bind(id TrackingID, paused bool) error
}
