package mmi

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ayusman/gesturemodality/internal/gesture"
)

// RecognizedBody returns the notification payload for a recognized gesture.
// The name is inserted verbatim; fusion matches it against its own grammar
// with the same literal template.
func RecognizedBody(name string) string {
	return `{ "recognized": ["` + name + `"] }`
}

// Dispatcher turns recognized gestures into extension notifications.
type Dispatcher struct {
	client *Client
	tracer trace.Tracer
}

// NewDispatcher creates a Dispatcher sending through client.
func NewDispatcher(client *Client) *Dispatcher {
	return &Dispatcher{
		client: client,
		tracer: otel.Tracer("github.com/ayusman/gesturemodality/internal/mmi"),
	}
}

// Notify sends sel to the interaction manager. The send is synchronous and
// not retried; a failure is returned to the caller.
func (d *Dispatcher) Notify(ctx context.Context, sel gesture.Selection) error {
	ctx, span := d.tracer.Start(ctx, "mmi.extensionNotification",
		trace.WithAttributes(attribute.String("gesture.name", sel.Name)))
	defer span.End()

	env := d.client.Events().ExtensionNotification("0", "10", 0, RecognizedBody(sel.Name))
	if err := d.client.Send(ctx, env); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("send extension notification: %w", err)
	}
	return nil
}
