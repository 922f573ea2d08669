// Package sensor defines the frames delivered by the depth sensor service and
// the sources that deliver them.
package sensor

import "math"

// TrackingID names one skeleton for as long as the sensor keeps tracking it.
type TrackingID uint64

// NoTrackingID is the sentinel for "no body selected".
const NoTrackingID TrackingID = 0

// Point3D represents a camera-space position in meters.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Length returns the Euclidean distance of the point from the sensor origin.
func (p Point3D) Length() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// BodyCandidate is one skeleton reported in a body frame.
// Position is the spine base joint, used only for distance ranking.
type BodyCandidate struct {
	ID       TrackingID `json:"id"`
	Tracked  bool       `json:"tracked"`
	Position Point3D    `json:"position"`
}

// BodyFrame is a snapshot of every skeleton slot the sensor reports.
type BodyFrame struct {
	Bodies []BodyCandidate `json:"bodies"`
}

// Find returns the tracked candidate with the given id.
func (f BodyFrame) Find(id TrackingID) (BodyCandidate, bool) {
	if id == NoTrackingID {
		return BodyCandidate{}, false
	}
	for _, b := range f.Bodies {
		if b.Tracked && b.ID == id {
			return b, true
		}
	}
	return BodyCandidate{}, false
}

// Closest returns the tracked candidate nearest to the sensor origin.
// Equal distances resolve to the lowest id so the result does not depend on
// the order the sensor enumerates its body slots.
func (f BodyFrame) Closest() (BodyCandidate, bool) {
	var (
		best     BodyCandidate
		bestDist = math.MaxFloat64
		found    bool
	)

	for _, b := range f.Bodies {
		if !b.Tracked {
			continue
		}
		d := b.Position.Length()
		if !found || d < bestDist || (d == bestDist && b.ID < best.ID) {
			best = b
			bestDist = d
			found = true
		}
	}

	return best, found
}
