package sensor

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// bindMessage asks the bridge to scope gesture frames to one body.
type bindMessage struct {
	Type       string     `json:"type"`
	TrackingID TrackingID `json:"trackingId"`
	Paused     bool       `json:"paused"`
}

// BridgeSource receives sensor events from a bridge process over a
// WebSocket. The bridge runs next to the sensor runtime and forwards body,
// gesture and tracking-lost events as JSON text messages.
type BridgeSource struct {
	conn    *websocket.Conn
	events  chan Event
	done    chan struct{}
	writeMu sync.Mutex
	once    sync.Once
}

// DialBridge connects to the bridge at url and starts reading events.
func DialBridge(ctx context.Context, url string) (*BridgeSource, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial sensor bridge: %w", err)
	}

	s := &BridgeSource{
		conn:   conn,
		events: make(chan Event, 8),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

func (s *BridgeSource) readLoop() {
	defer close(s.events)

	for {
		var ev Event
		if err := s.conn.ReadJSON(&ev); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("sensor bridge read: %v", err)
			}
			return
		}
		switch ev.Type {
		case EventBody, EventGesture, EventLost:
			select {
			case s.events <- ev:
			case <-s.done:
				return
			}
		default:
			log.Printf("sensor bridge: ignoring event type %q", ev.Type)
		}
	}
}

// Events returns the event channel. It is closed when the connection ends.
func (s *BridgeSource) Events() <-chan Event {
	return s.events
}

// Bind tells the bridge which body the gesture reader should follow.
func (s *BridgeSource) Bind(id TrackingID, paused bool) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(bindMessage{Type: "bind", TrackingID: id, Paused: paused})
}

// Close closes the connection to the bridge. Events still buffered or in
// flight are dropped and the event channel is closed.
func (s *BridgeSource) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		s.writeMu.Lock()
		_ = s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.writeMu.Unlock()
		err = s.conn.Close()
	})
	return err
}
