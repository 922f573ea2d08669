package mmi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Transport delivers encoded lifecycle events to the interaction manager in
// order. Send blocks until the message has been handed to the peer.
type Transport interface {
	Send(ctx context.Context, msg []byte) error
	Close() error
}

// HTTPTransport posts each message to the interaction manager's endpoint.
type HTTPTransport struct {
	url    string
	client *http.Client
}

// NewHTTPTransport creates an HTTPTransport posting to url.
func NewHTTPTransport(url string, client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPTransport{url: url, client: client}
}

// Send posts msg and fails on any non-2xx status.
func (t *HTTPTransport) Send(ctx context.Context, msg []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(msg))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("post to %s: %w", t.url, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("post to %s: unexpected status %d", t.url, resp.StatusCode)
	}
	return nil
}

// Close is a no-op; connections belong to the http.Client.
func (t *HTTPTransport) Close() error {
	return nil
}

// WebSocketTransport keeps one WebSocket open to the interaction manager and
// writes each message as a text frame.
type WebSocketTransport struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// DialWebSocket opens a WebSocketTransport to url.
func DialWebSocket(ctx context.Context, url string) (*WebSocketTransport, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &WebSocketTransport{conn: conn}, nil
}

// Send writes msg as one text message.
func (t *WebSocketTransport) Send(ctx context.Context, msg []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		t.conn.SetWriteDeadline(deadline)
		defer t.conn.SetWriteDeadline(time.Time{})
	}
	if err := t.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// Close sends a close frame and closes the connection.
func (t *WebSocketTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_ = t.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return t.conn.Close()
}

// RecordingTransport is a test implementation of the Transport interface.
// It keeps every message sent through it.
type RecordingTransport struct {
	mu       sync.Mutex
	messages [][]byte
	err      error
}

// NewRecordingTransport creates a new RecordingTransport.
func NewRecordingTransport() *RecordingTransport {
	return &RecordingTransport{}
}

// SetError sets the error that will be returned by Send.
func (t *RecordingTransport) SetError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.err = err
}

// Send records msg or returns the configured error.
func (t *RecordingTransport) Send(_ context.Context, msg []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	t.messages = append(t.messages, append([]byte(nil), msg...))
	return nil
}

// Messages returns the recorded messages.
func (t *RecordingTransport) Messages() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]byte, len(t.messages))
	copy(out, t.messages)
	return out
}

// Close is a no-op for the recording transport.
func (t *RecordingTransport) Close() error {
	return nil
}
