package sensor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recording = `{"type":"body","bodies":[{"id":7,"tracked":true,"position":{"x":0,"y":0,"z":1.5}}]}

{"type":"gesture","trackingId":7,"results":[{"name":"HungryTop","detected":true,"confidence":0.97}]}
{"type":"lost","trackingId":7}
`

func TestParseRecording(t *testing.T) {
	events, err := ParseRecording(strings.NewReader(recording))
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, EventBody, events[0].Type)
	body, ok := events[0].BodyFrame().Find(7)
	require.True(t, ok)
	assert.InDelta(t, 1.5, body.Position.Z, 1e-9)

	gf := events[1].GestureFrame()
	assert.Equal(t, TrackingID(7), gf.TrackingID)
	require.Len(t, gf.Results, 1)
	assert.Equal(t, "HungryTop", gf.Results[0].Name)

	assert.Equal(t, EventLost, events[2].Type)
	assert.Equal(t, TrackingID(7), events[2].TrackingID)
}

func TestParseRecording_BadLine(t *testing.T) {
	_, err := ParseRecording(strings.NewReader("{\"type\":\"body\"}\nnot json\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReplaySource_PlaysInOrder(t *testing.T) {
	src := NewReplaySource(strings.NewReader(recording), time.Millisecond)
	defer src.Close()

	var types []EventType
	for ev := range src.Events() {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []EventType{EventBody, EventGesture, EventLost}, types)
}

func TestReplaySource_CloseStopsPlayback(t *testing.T) {
	src := NewReplaySource(strings.NewReader(recording), time.Hour)
	require.NoError(t, src.Close())
	require.NoError(t, src.Close())

	select {
	case _, ok := <-src.Events():
		assert.False(t, ok, "no events expected after close")
	case <-time.After(time.Second):
		t.Fatal("events channel was not closed")
	}
}

func TestMockSource(t *testing.T) {
	src := NewMockSource(4)
	require.NoError(t, src.PushBodies(StandingBody(1, 1)))
	require.NoError(t, src.PushGestures(1, HungryTopResults()...))
	require.NoError(t, src.PushLost(1))
	require.NoError(t, src.Close())

	assert.ErrorIs(t, src.PushLost(1), ErrSourceClosed)

	var n int
	for range src.Events() {
		n++
	}
	assert.Equal(t, 3, n)

	require.NoError(t, src.Bind(1, false))
	assert.Equal(t, []Binding{{ID: 1, Paused: false}}, src.Bindings())
}

func TestBridgeSource(t *testing.T) {
	upgrader := websocket.Upgrader{}
	binds := make(chan bindMessage, 1)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		conn.WriteJSON(Event{Type: EventBody, Bodies: []BodyCandidate{StandingBody(9, 2)}})
		conn.WriteJSON(Event{Type: "telemetry"})
		conn.WriteJSON(Event{Type: EventGesture, TrackingID: 9, Results: HungryTopResults()})

		var msg bindMessage
		if err := conn.ReadJSON(&msg); err == nil {
			binds <- msg
		}
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	src, err := DialBridge(ctx, "ws"+strings.TrimPrefix(ts.URL, "http"))
	require.NoError(t, err)
	defer src.Close()

	first := <-src.Events()
	assert.Equal(t, EventBody, first.Type)

	second := <-src.Events()
	assert.Equal(t, EventGesture, second.Type, "unknown event types are dropped")
	assert.Equal(t, TrackingID(9), second.TrackingID)

	require.NoError(t, src.Bind(9, false))
	select {
	case msg := <-binds:
		assert.Equal(t, "bind", msg.Type)
		assert.Equal(t, TrackingID(9), msg.TrackingID)
		assert.False(t, msg.Paused)
	case <-ctx.Done():
		t.Fatal("bridge never received bind message")
	}

	for range src.Events() {
	}
}

func TestBridgeSource_CloseWithUndrainedEvents(t *testing.T) {
	upgrader := websocket.Upgrader{}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for i := 0; i < 20; i++ {
			if err := conn.WriteJSON(Event{Type: EventLost}); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	src, err := DialBridge(ctx, "ws"+strings.TrimPrefix(ts.URL, "http"))
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(src.events) == cap(src.events) },
		2*time.Second, 5*time.Millisecond)
	require.NoError(t, src.Close())

	closed := make(chan struct{})
	go func() {
		for range src.Events() {
		}
		close(closed)
	}()
	select {
	case <-closed:
	case <-ctx.Done():
		t.Fatal("event channel not closed after Close")
	}
}

func TestDialBridge_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := DialBridge(ctx, "ws://127.0.0.1:1/sensor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial sensor bridge")
}
