// Package tracking decides which skeleton reported by the sensor is the
// subject whose gestures are evaluated.
package tracking

import (
	"log"

	"github.com/ayusman/gesturemodality/internal/sensor"
)

// Reader is the gesture reader the selector steers.
type Reader interface {
	// Track binds the reader to id and resumes evaluation.
	Track(id sensor.TrackingID)
	// Pause stops evaluation until the next Track.
	Pause()
}

// Selector keeps exactly one body selected at a time. A selected body stays
// selected for as long as the sensor keeps tracking it, even when another
// body moves closer.
type Selector struct {
	reader  Reader
	current sensor.TrackingID

	// OnSelected is called after a new body has been selected.
	OnSelected func(id sensor.TrackingID)
	// OnLost is called after the selected body disappeared.
	OnLost func(id sensor.TrackingID)
}

// NewSelector creates a Selector driving reader.
func NewSelector(reader Reader) *Selector {
	return &Selector{reader: reader}
}

// Current returns the selected body, or sensor.NoTrackingID.
func (s *Selector) Current() sensor.TrackingID {
	return s.current
}

// HandleBodyFrame applies the selection policy to one body frame and returns
// the body selected afterwards.
func (s *Selector) HandleBodyFrame(frame sensor.BodyFrame) sensor.TrackingID {
	if s.current != sensor.NoTrackingID {
		if _, ok := frame.Find(s.current); ok {
			return s.current
		}
		s.lose()
	}

	closest, ok := frame.Closest()
	if !ok {
		s.reader.Pause()
		return sensor.NoTrackingID
	}

	s.current = closest.ID
	s.reader.Track(closest.ID)
	log.Printf("tracking body %d (%.2fm)", closest.ID, closest.Position.Length())

	if s.OnSelected != nil {
		s.OnSelected(closest.ID)
	}
	return s.current
}

// HandleTrackingLost clears the selection when the sensor reports that the
// selected body is gone. Reports for any other body are stale and ignored.
func (s *Selector) HandleTrackingLost(id sensor.TrackingID) {
	if id == sensor.NoTrackingID || id != s.current {
		return
	}
	s.lose()
	s.reader.Pause()
}

func (s *Selector) lose() {
	lost := s.current
	s.current = sensor.NoTrackingID
	log.Printf("lost body %d", lost)

	if s.OnLost != nil {
		s.OnLost(lost)
	}
}
