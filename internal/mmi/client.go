package mmi

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrNotRegistered is returned when notifying before the context request
// has been sent.
var ErrNotRegistered = errors.New("mmi: context not registered")

// Endpoint locates the interaction manager.
type Endpoint struct {
	Host     string
	Port     int
	User     string
	Modality string
}

// DefaultEndpoint returns the interaction manager's default endpoint.
func DefaultEndpoint() Endpoint {
	return Endpoint{
		Host:     "localhost",
		Port:     8000,
		User:     "User1",
		Modality: "GESTURES",
	}
}

// URL returns the endpoint URL for scheme ("http" or "ws").
func (e Endpoint) URL(scheme string) string {
	return fmt.Sprintf("%s://%s:%d/IM/%s/%s", scheme, e.Host, e.Port, e.User, e.Modality)
}

// Client sends lifecycle events for one modality session.
type Client struct {
	events     *LifeCycleEvents
	transport  Transport
	registered atomic.Bool

	// OnRegistered is called after the context request has been delivered.
	OnRegistered func(env Envelope)
}

// NewClient creates a Client sending events built from header over transport.
func NewClient(header Header, transport Transport) *Client {
	return &Client{
		events:    NewLifeCycleEvents(header),
		transport: transport,
	}
}

// Events returns the client's event builder.
func (c *Client) Events() *LifeCycleEvents {
	return c.events
}

// Register sends the new context request. It must succeed before any
// notification is sent; calling it again re-sends the request.
func (c *Client) Register(ctx context.Context) error {
	env := c.events.NewContextRequest()
	if err := c.send(ctx, env); err != nil {
		return fmt.Errorf("register context: %w", err)
	}
	c.registered.Store(true)

	if c.OnRegistered != nil {
		c.OnRegistered(env)
	}
	return nil
}

// Registered reports whether Register has succeeded.
func (c *Client) Registered() bool {
	return c.registered.Load()
}

// Send delivers env. It fails with ErrNotRegistered before Register.
func (c *Client) Send(ctx context.Context, env Envelope) error {
	if !c.registered.Load() {
		return ErrNotRegistered
	}
	return c.send(ctx, env)
}

func (c *Client) send(ctx context.Context, env Envelope) error {
	msg, err := env.Bytes()
	if err != nil {
		return err
	}
	return c.transport.Send(ctx, msg)
}

// Close closes the transport.
func (c *Client) Close() error {
	return c.transport.Close()
}
