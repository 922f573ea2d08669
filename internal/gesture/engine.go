// Package gesture arbitrates between the discrete gesture results reported
// for the selected body and forwards the winner.
package gesture

import (
	"context"
	"fmt"
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ayusman/gesturemodality/internal/sensor"
)

// ConfidenceThreshold is the confidence a detected gesture must exceed to
// be recognized.
const ConfidenceThreshold = 0.9

// Selection is the winning gesture of one gesture frame.
type Selection struct {
	Name       string
	Confidence float64
	Detected   bool
	TrackingID sensor.TrackingID
}

// Notifier receives every Selection synchronously.
type Notifier interface {
	Notify(ctx context.Context, sel Selection) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, sel Selection) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, sel Selection) error {
	return f(ctx, sel)
}

// View displays the latest gesture result for the selected body.
type View interface {
	UpdateGestureResult(tracked, detected bool, confidence float64, name string)
}

// Arbitrate picks the single best gesture of a result set. Only detected
// results with a confidence strictly above ConfidenceThreshold are eligible;
// equal confidences resolve to the lexicographically smallest name.
func Arbitrate(results []sensor.GestureResult) (Selection, bool) {
	var (
		best  Selection
		found bool
	)
	confidence := ConfidenceThreshold

	for _, r := range results {
		if !r.Detected {
			continue
		}
		if r.Confidence > confidence || (found && r.Confidence == confidence && r.Name < best.Name) {
			confidence = r.Confidence
			best = Selection{Name: r.Name, Confidence: r.Confidence, Detected: r.Detected}
			found = true
		}
	}

	return best, found
}

// Engine evaluates gesture frames for the body it is bound to. It starts
// paused and implements tracking.Reader.
type Engine struct {
	notifier Notifier
	view     View
	binder   sensor.Binder
	tracer   trace.Tracer

	mu         sync.RWMutex
	trackingID sensor.TrackingID
	paused     bool
}

// NewEngine creates a paused Engine. view and binder may be nil.
func NewEngine(notifier Notifier, view View, binder sensor.Binder) *Engine {
	return &Engine{
		notifier: notifier,
		view:     view,
		binder:   binder,
		tracer:   otel.Tracer("github.com/ayusman/gesturemodality/internal/gesture"),
		paused:   true,
	}
}

// Track binds the engine to id and resumes evaluation.
func (e *Engine) Track(id sensor.TrackingID) {
	e.mu.Lock()
	e.trackingID = id
	e.paused = id == sensor.NoTrackingID
	paused := e.paused
	e.mu.Unlock()

	e.bind(id, paused)
}

// Pause stops evaluation. Frames arriving while paused are dropped.
func (e *Engine) Pause() {
	e.mu.Lock()
	if e.paused {
		e.mu.Unlock()
		return
	}
	e.paused = true
	id := e.trackingID
	e.mu.Unlock()

	e.bind(id, true)
}

func (e *Engine) bind(id sensor.TrackingID, paused bool) {
	if e.binder == nil {
		return
	}
	if err := e.binder.Bind(id, paused); err != nil {
		log.Printf("bind gesture reader to body %d: %v", id, err)
	}
}

// Paused reports whether the engine is paused.
func (e *Engine) Paused() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.paused
}

// TrackingID returns the body the engine is bound to.
func (e *Engine) TrackingID() sensor.TrackingID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.trackingID
}

// HandleFrame evaluates one gesture frame. Frames for other bodies or
// arriving while paused are dropped. A frame without an eligible gesture is
// not an error. A notifier error is returned to the caller.
func (e *Engine) HandleFrame(ctx context.Context, frame sensor.GestureFrame) error {
	e.mu.RLock()
	paused, id := e.paused, e.trackingID
	e.mu.RUnlock()

	if paused || frame.TrackingID != id {
		return nil
	}

	sel, ok := Arbitrate(frame.Results)
	if !ok {
		return nil
	}
	sel.TrackingID = id

	ctx, span := e.tracer.Start(ctx, "gesture.recognized",
		trace.WithAttributes(
			attribute.String("gesture.name", sel.Name),
			attribute.Float64("gesture.confidence", sel.Confidence),
			attribute.Int64("gesture.tracking_id", int64(id)),
		))
	defer span.End()

	if e.view != nil {
		e.view.UpdateGestureResult(true, sel.Detected, sel.Confidence, sel.Name)
	}

	if e.notifier == nil {
		return nil
	}
	if err := e.notifier.Notify(ctx, sel); err != nil {
		span.RecordError(err)
		return fmt.Errorf("notify %s: %w", sel.Name, err)
	}
	return nil
}

// HandleTrackingLost shows the selected body as not tracked.
func (e *Engine) HandleTrackingLost() {
	if e.view != nil {
		e.view.UpdateGestureResult(false, false, 0, "")
	}
}
