package sensor

import "sync"

// Binding records one Bind call received by a MockSource.
type Binding struct {
	ID     TrackingID
	Paused bool
}

// MockSource is a test implementation of the Source interface.
// It allows tests to push events and inspect reader bindings.
type MockSource struct {
	events   chan Event
	mu       sync.Mutex
	closed   bool
	bindings []Binding
	bindErr  error
}

// NewMockSource creates a new MockSource buffering up to size events.
func NewMockSource(size int) *MockSource {
	return &MockSource{
		events: make(chan Event, size),
	}
}

// Push queues an event. It returns ErrSourceClosed after Close.
func (m *MockSource) Push(ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrSourceClosed
	}
	m.events <- ev
	return nil
}

// PushBodies queues a body frame event.
func (m *MockSource) PushBodies(bodies ...BodyCandidate) error {
	return m.Push(Event{Type: EventBody, Bodies: bodies})
}

// PushGestures queues a gesture frame event for the given body.
func (m *MockSource) PushGestures(id TrackingID, results ...GestureResult) error {
	return m.Push(Event{Type: EventGesture, TrackingID: id, Results: results})
}

// PushLost queues a tracking-lost event.
func (m *MockSource) PushLost(id TrackingID) error {
	return m.Push(Event{Type: EventLost, TrackingID: id})
}

// Events returns the event channel.
func (m *MockSource) Events() <-chan Event {
	return m.events
}

// Close closes the event channel. Further calls are no-ops.
func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.events)
	}
	return nil
}

// SetBindError sets the error that will be returned by Bind.
func (m *MockSource) SetBindError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindErr = err
}

// Bind records the binding.
func (m *MockSource) Bind(id TrackingID, paused bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bindErr != nil {
		return m.bindErr
	}
	m.bindings = append(m.bindings, Binding{ID: id, Paused: paused})
	return nil
}

// Bindings returns a copy of the recorded bindings.
func (m *MockSource) Bindings() []Binding {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Binding, len(m.bindings))
	copy(out, m.bindings)
	return out
}

// StandingBody returns a tracked candidate standing dist meters in front of
// the sensor.
func StandingBody(id TrackingID, dist float64) BodyCandidate {
	return BodyCandidate{
		ID:       id,
		Tracked:  true,
		Position: Point3D{X: 0.05, Y: -0.3, Z: dist},
	}
}

// HungryTopResults returns a gesture result set where HungryTop is detected
// with high confidence and the rest of the catalog is not.
func HungryTopResults() []GestureResult {
	return []GestureResult{
		{Name: "HungryBottom", Detected: false, Confidence: 0.12},
		{Name: "HungryMiddle", Detected: true, Confidence: 0.61},
		{Name: "HungryTop", Detected: true, Confidence: 0.95},
	}
}
