package app

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/gesturemodality/internal/control"
	"github.com/ayusman/gesturemodality/internal/gesture"
	"github.com/ayusman/gesturemodality/internal/mmi"
	"github.com/ayusman/gesturemodality/internal/sensor"
	"github.com/ayusman/gesturemodality/internal/store"
)

type testEnv struct {
	app       *App
	source    *sensor.MockSource
	transport *mmi.RecordingTransport
	client    *mmi.Client
	store     *store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	transport := mmi.NewRecordingTransport()
	client := mmi.NewClient(mmi.DefaultHeader(), transport)
	client.OnRegistered = SessionRecorder(s)
	source := sensor.NewMockSource(64)

	return &testEnv{
		app: New(Config{
			Source: source,
			Client: client,
			Store:  s,
		}),
		source:    source,
		transport: transport,
		client:    client,
		store:     s,
	}
}

func bodyEvent(bodies ...sensor.BodyCandidate) sensor.Event {
	return sensor.Event{Type: sensor.EventBody, Bodies: bodies}
}

func gestureEvent(id sensor.TrackingID, results ...sensor.GestureResult) sensor.Event {
	return sensor.Event{Type: sensor.EventGesture, TrackingID: id, Results: results}
}

type recordingView struct {
	updates []string
}

func (v *recordingView) UpdateGestureResult(tracked, detected bool, confidence float64, name string) {
	if !tracked {
		v.updates = append(v.updates, "not tracked")
		return
	}
	v.updates = append(v.updates, name)
}

func TestApp_ForwardsWinningGesture(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.client.Register(ctx))

	var got []store.Recognition
	env.app.RegisterRecognitionCallback(func(rec store.Recognition) {
		got = append(got, rec)
	})

	env.app.HandleEvent(ctx, bodyEvent(sensor.StandingBody(7, 1.5)))
	env.app.HandleEvent(ctx, gestureEvent(7, sensor.HungryTopResults()...))

	msgs := env.transport.Messages()
	require.Len(t, msgs, 2)
	assert.Contains(t, string(msgs[0]), mmi.EventNewContextRequest)
	assert.Contains(t, string(msgs[1]), mmi.EventExtensionNotification)
	assert.True(t, bytes.Contains(msgs[1], []byte("HungryTop")))

	require.Len(t, got, 1)
	assert.Equal(t, gesture.HungryTop, got[0].Gesture)
	assert.Equal(t, uint64(7), got[0].TrackingID)
	assert.True(t, got[0].Notified)
	assert.Empty(t, got[0].Error)

	saved, err := env.store.Recognitions().GetByID(got[0].ID)
	require.NoError(t, err)
	assert.Equal(t, gesture.HungryTop, saved.Gesture)
	assert.InDelta(t, 0.95, saved.Confidence, 1e-9)

	st := env.app.Status()
	assert.Equal(t, sensor.TrackingID(7), st.TrackingID)
	assert.True(t, st.Tracked)
	assert.False(t, st.Paused)
	assert.True(t, st.Registered)
	assert.Equal(t, gesture.HungryTop, st.LastGesture)
	assert.Equal(t, int64(1), st.Recognitions)
}

func TestApp_BindsReaderThroughSource(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.app.HandleEvent(ctx, bodyEvent(sensor.StandingBody(3, 2.0)))
	env.app.HandleEvent(ctx, bodyEvent())

	assert.Equal(t, []sensor.Binding{
		{ID: 3, Paused: false},
		{ID: 3, Paused: true},
	}, env.source.Bindings())
}

func TestApp_DropsFramesForOtherBodies(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.client.Register(ctx))

	env.app.HandleEvent(ctx, bodyEvent(sensor.StandingBody(1, 1.0), sensor.StandingBody(2, 3.0)))
	env.app.HandleEvent(ctx, gestureEvent(2, sensor.HungryTopResults()...))

	assert.Len(t, env.transport.Messages(), 1)
	assert.Equal(t, int64(0), env.app.Status().Recognitions)
}

func TestApp_DisabledDropsGestures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.client.Register(ctx))

	env.app.SetEnabled(false)
	assert.False(t, env.app.IsEnabled())

	env.app.HandleEvent(ctx, bodyEvent(sensor.StandingBody(7, 1.5)))
	env.app.HandleEvent(ctx, gestureEvent(7, sensor.HungryTopResults()...))
	assert.Len(t, env.transport.Messages(), 1)
	assert.Equal(t, sensor.TrackingID(7), env.app.Status().TrackingID)

	env.app.SetEnabled(true)
	env.app.HandleEvent(ctx, gestureEvent(7, sensor.HungryTopResults()...))
	assert.Len(t, env.transport.Messages(), 2)
}

func TestApp_NotifyFailureIsRecordedAndLoopContinues(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.client.Register(ctx))

	env.app.HandleEvent(ctx, bodyEvent(sensor.StandingBody(7, 1.5)))

	env.transport.SetError(errors.New("connection refused"))
	env.app.HandleEvent(ctx, gestureEvent(7, sensor.HungryTopResults()...))

	env.transport.SetError(nil)
	env.app.HandleEvent(ctx, gestureEvent(7, sensor.HungryTopResults()...))

	recs, err := env.store.Recognitions().List(0)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	var failed, delivered int
	for _, rec := range recs {
		if rec.Notified {
			delivered++
			continue
		}
		failed++
		assert.Contains(t, rec.Error, "connection refused")
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, delivered)
	assert.Len(t, env.transport.Messages(), 2)
}

func TestApp_NotRegisteredNotificationFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var got []store.Recognition
	env.app.RegisterRecognitionCallback(func(rec store.Recognition) {
		got = append(got, rec)
	})

	env.app.HandleEvent(ctx, bodyEvent(sensor.StandingBody(7, 1.5)))
	env.app.HandleEvent(ctx, gestureEvent(7, sensor.HungryTopResults()...))

	assert.Empty(t, env.transport.Messages())
	require.Len(t, got, 1)
	assert.False(t, got[0].Notified)
	assert.Contains(t, got[0].Error, mmi.ErrNotRegistered.Error())
}

func TestApp_TrackingLostUpdatesView(t *testing.T) {
	transport := mmi.NewRecordingTransport()
	client := mmi.NewClient(mmi.DefaultHeader(), transport)
	view := &recordingView{}
	a := New(Config{
		Source: sensor.NewMockSource(1),
		Client: client,
		View:   view,
	})
	ctx := context.Background()
	require.NoError(t, client.Register(ctx))

	a.HandleEvent(ctx, bodyEvent(sensor.StandingBody(7, 1.5)))
	a.HandleEvent(ctx, gestureEvent(7, sensor.HungryTopResults()...))
	a.HandleEvent(ctx, sensor.Event{Type: sensor.EventLost, TrackingID: 99})
	assert.True(t, a.Status().Tracked, "stale lost report must be ignored")

	a.HandleEvent(ctx, sensor.Event{Type: sensor.EventLost, TrackingID: 7})

	assert.Equal(t, []string{gesture.HungryTop, "not tracked"}, view.updates)
	st := a.Status()
	assert.False(t, st.Tracked)
	assert.True(t, st.Paused)
	assert.Equal(t, sensor.NoTrackingID, st.TrackingID)
	assert.Equal(t, gesture.HungryTop, st.LastGesture, "last gesture survives tracking loss")
}

func TestApp_StatusClearsTrackingIDWhenBodyLeaves(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.app.HandleEvent(ctx, bodyEvent(sensor.StandingBody(7, 1.5)))
	require.Equal(t, sensor.TrackingID(7), env.app.Status().TrackingID)

	env.app.HandleEvent(ctx, bodyEvent())
	st := env.app.Status()
	assert.Equal(t, sensor.NoTrackingID, st.TrackingID)
	assert.False(t, st.Tracked)
	assert.True(t, st.Paused)

	env.app.HandleEvent(ctx, bodyEvent(sensor.StandingBody(3, 2.0)))
	assert.Equal(t, sensor.TrackingID(3), env.app.Status().TrackingID)
}

func TestApp_StickySelection(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.app.HandleEvent(ctx, bodyEvent(sensor.StandingBody(1, 2.0)))
	env.app.HandleEvent(ctx, bodyEvent(sensor.StandingBody(1, 2.0), sensor.StandingBody(2, 0.5)))

	assert.Equal(t, sensor.TrackingID(1), env.app.Status().TrackingID)
}

func TestApp_Run_ProcessesUntilSourceCloses(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.source.PushBodies(sensor.StandingBody(7, 1.5)))
	require.NoError(t, env.source.PushGestures(7, sensor.HungryTopResults()...))
	require.NoError(t, env.source.Close())

	srv := control.NewServer(control.Config{Network: "tcp", Address: "127.0.0.1:0"})
	env.app.config.Control = srv

	require.NoError(t, env.app.Run(context.Background()))

	assert.Len(t, env.transport.Messages(), 2)

	sess, err := env.store.Sessions().Latest()
	require.NoError(t, err)
	assert.Equal(t, "GESTURES", sess.Source)
	assert.Equal(t, "FUSION", sess.Target)

	st := env.app.Status()
	assert.Equal(t, control.StateStopped.String(), st.ControlState)
	assert.False(t, st.SpeakActive)
}

func TestApp_Run_StopsOnCancel(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- env.app.Run(ctx) }()

	require.NoError(t, env.source.PushBodies(sensor.StandingBody(7, 1.5)))
	cancel()

	assert.NoError(t, <-done)
}

func TestApp_Run_RegisterFailure(t *testing.T) {
	env := newTestEnv(t)
	env.transport.SetError(errors.New("im unreachable"))

	err := env.app.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "register context")
	assert.False(t, env.app.Status().Registered)

	_, err = env.store.Sessions().Latest()
	assert.ErrorIs(t, err, store.ErrNotFound)
}
