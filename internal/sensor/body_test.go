package sensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoint3D_Length(t *testing.T) {
	p := Point3D{X: 1, Y: 2, Z: 2}
	assert.InDelta(t, 3.0, p.Length(), 1e-9)
	assert.Zero(t, Point3D{}.Length())
}

func TestBodyFrame_Closest(t *testing.T) {
	t.Run("picks the nearest tracked body", func(t *testing.T) {
		frame := BodyFrame{Bodies: []BodyCandidate{
			StandingBody(11, 3.2),
			StandingBody(12, 1.4),
			StandingBody(13, 2.0),
		}}

		got, ok := frame.Closest()
		require.True(t, ok)
		assert.Equal(t, TrackingID(12), got.ID)
	})

	t.Run("ignores untracked slots", func(t *testing.T) {
		near := StandingBody(21, 0.5)
		near.Tracked = false
		frame := BodyFrame{Bodies: []BodyCandidate{near, StandingBody(22, 2.5)}}

		got, ok := frame.Closest()
		require.True(t, ok)
		assert.Equal(t, TrackingID(22), got.ID)
	})

	t.Run("no tracked body", func(t *testing.T) {
		frame := BodyFrame{Bodies: []BodyCandidate{{ID: 1}, {ID: 2}}}
		_, ok := frame.Closest()
		assert.False(t, ok)

		_, ok = BodyFrame{}.Closest()
		assert.False(t, ok)
	})

	t.Run("equal distance resolves to lowest id", func(t *testing.T) {
		frame := BodyFrame{Bodies: []BodyCandidate{
			StandingBody(40, 2.0),
			StandingBody(7, 2.0),
			StandingBody(19, 2.0),
		}}

		got, ok := frame.Closest()
		require.True(t, ok)
		assert.Equal(t, TrackingID(7), got.ID)
	})

	t.Run("far away body is still a candidate", func(t *testing.T) {
		frame := BodyFrame{Bodies: []BodyCandidate{
			{ID: 5, Tracked: true, Position: Point3D{Z: math.MaxFloat32}},
		}}
		got, ok := frame.Closest()
		require.True(t, ok)
		assert.Equal(t, TrackingID(5), got.ID)
	})
}

func TestBodyFrame_Find(t *testing.T) {
	untracked := StandingBody(3, 1.0)
	untracked.Tracked = false
	frame := BodyFrame{Bodies: []BodyCandidate{StandingBody(1, 1.0), StandingBody(2, 2.0), untracked}}

	got, ok := frame.Find(2)
	require.True(t, ok)
	assert.Equal(t, TrackingID(2), got.ID)

	_, ok = frame.Find(3)
	assert.False(t, ok, "untracked body must not be found")

	_, ok = frame.Find(NoTrackingID)
	assert.False(t, ok)

	_, ok = frame.Find(99)
	assert.False(t, ok)
}
