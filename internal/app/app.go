// Package app wires the sensor, the body selector, the gesture engine and the
// interaction manager client into the gesture modality.
package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/gesturemodality/internal/control"
	"github.com/ayusman/gesturemodality/internal/gesture"
	"github.com/ayusman/gesturemodality/internal/mmi"
	"github.com/ayusman/gesturemodality/internal/sensor"
	"github.com/ayusman/gesturemodality/internal/store"
	"github.com/ayusman/gesturemodality/internal/tracking"
)

// Config holds configuration options for the application.
type Config struct {
	// Source delivers sensor events. If it also implements sensor.Binder
	// the gesture reader is bound through it.
	Source sensor.Source
	// Client talks to the interaction manager.
	Client *mmi.Client
	// Control serves the speech control channel. Optional.
	Control *control.Server
	// Store records every recognition. Optional.
	Store *store.Store
	// View additionally receives every gesture result. Optional.
	View gesture.View
}

// Status is a snapshot of the modality state.
type Status struct {
	TrackingID     sensor.TrackingID `json:"trackingId"`
	Tracked        bool              `json:"tracked"`
	Paused         bool              `json:"paused"`
	Enabled        bool              `json:"enabled"`
	Registered     bool              `json:"registered"`
	SpeakActive    bool              `json:"speakActive"`
	ControlState   string            `json:"controlState"`
	LastGesture    string            `json:"lastGesture,omitempty"`
	LastConfidence float64           `json:"lastConfidence"`
	Recognitions   int64             `json:"recognitions"`
}

// RecognitionCallback is called after a recognized gesture was forwarded.
type RecognitionCallback func(rec store.Recognition)

// App is the main application that routes sensor events to the selector and
// the gesture engine and forwards recognized gestures.
type App struct {
	config     Config
	selector   *tracking.Selector
	engine     *gesture.Engine
	dispatcher *mmi.Dispatcher

	mu             sync.RWMutex
	enabled        bool
	trackingID     sensor.TrackingID
	tracked        bool
	lastGesture    string
	lastConfidence float64
	recognitions   int64
	callbacks      []RecognitionCallback
}

// New creates a new App. Gesture forwarding starts enabled.
func New(config Config) *App {
	a := &App{
		config:     config,
		dispatcher: mmi.NewDispatcher(config.Client),
		enabled:    true,
	}

	binder, _ := config.Source.(sensor.Binder)
	a.engine = gesture.NewEngine(gesture.NotifierFunc(a.notify), a, binder)
	a.selector = tracking.NewSelector(a.engine)
	a.selector.OnSelected = func(id sensor.TrackingID) {
		a.mu.Lock()
		a.trackingID = id
		a.tracked = true
		a.mu.Unlock()
	}
	a.selector.OnLost = func(sensor.TrackingID) {
		a.mu.Lock()
		a.trackingID = sensor.NoTrackingID
		a.mu.Unlock()
		a.engine.HandleTrackingLost()
	}

	return a
}

// SetEnabled enables or disables gesture forwarding. Gesture frames arriving
// while disabled are dropped; body selection continues.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether gesture forwarding is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// RegisterRecognitionCallback adds a callback invoked for every recognition.
func (a *App) RegisterRecognitionCallback(cb RecognitionCallback) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.callbacks = append(a.callbacks, cb)
}

// Engine returns the gesture engine.
func (a *App) Engine() *gesture.Engine {
	return a.engine
}

// Run registers the modality with the interaction manager, starts the
// control server and processes sensor events until ctx is cancelled or the
// source is exhausted.
func (a *App) Run(ctx context.Context) error {
	if err := a.config.Client.Register(ctx); err != nil {
		return err
	}
	log.Printf("registered modality %s", a.config.Client.Events().Header().Source)

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	if a.config.Control != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.config.Control.Run(ctx); err != nil && !errors.Is(err, control.ErrServerClosed) {
				log.Printf("control server stopped: %v", err)
			}
		}()
	}

	events := a.config.Source.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				log.Println("sensor source closed")
				return nil
			}
			a.HandleEvent(ctx, ev)
		}
	}
}

// HandleEvent processes one sensor event on the caller's goroutine.
func (a *App) HandleEvent(ctx context.Context, ev sensor.Event) {
	switch ev.Type {
	case sensor.EventBody:
		a.selector.HandleBodyFrame(ev.BodyFrame())
	case sensor.EventGesture:
		if !a.IsEnabled() {
			return
		}
		if err := a.engine.HandleFrame(ctx, ev.GestureFrame()); err != nil {
			log.Printf("gesture frame dropped: %v", err)
		}
	case sensor.EventLost:
		a.selector.HandleTrackingLost(ev.TrackingID)
	default:
		log.Printf("unknown sensor event %q", ev.Type)
	}
}

// UpdateGestureResult implements gesture.View.
func (a *App) UpdateGestureResult(tracked, detected bool, confidence float64, name string) {
	a.mu.Lock()
	a.tracked = tracked
	if name != "" {
		a.lastGesture = name
		a.lastConfidence = confidence
	}
	a.mu.Unlock()

	if a.config.View != nil {
		a.config.View.UpdateGestureResult(tracked, detected, confidence, name)
	}
}

// notify forwards sel and records the outcome.
func (a *App) notify(ctx context.Context, sel gesture.Selection) error {
	err := a.dispatcher.Notify(ctx, sel)

	rec := store.Recognition{
		ID:         uuid.NewString(),
		Gesture:    sel.Name,
		Confidence: sel.Confidence,
		TrackingID: uint64(sel.TrackingID),
		Notified:   err == nil,
		CreatedAt:  time.Now().UTC(),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	a.record(rec)

	return err
}

func (a *App) record(rec store.Recognition) {
	if a.config.Store != nil {
		if err := a.config.Store.Recognitions().Create(&rec); err != nil {
			log.Printf("failed to save recognition %s: %v", rec.Gesture, err)
		}
	}

	a.mu.Lock()
	a.recognitions++
	callbacks := make([]RecognitionCallback, len(a.callbacks))
	copy(callbacks, a.callbacks)
	a.mu.Unlock()

	for _, cb := range callbacks {
		cb(rec)
	}
}

// Status returns a snapshot of the current state.
func (a *App) Status() Status {
	a.mu.RLock()
	st := Status{
		TrackingID:     a.trackingID,
		Tracked:        a.tracked,
		Enabled:        a.enabled,
		LastGesture:    a.lastGesture,
		LastConfidence: a.lastConfidence,
		Recognitions:   a.recognitions,
	}
	a.mu.RUnlock()

	st.Paused = a.engine.Paused()
	st.Registered = a.config.Client.Registered()
	st.ControlState = control.StateStopped.String()
	if a.config.Control != nil {
		st.SpeakActive = a.config.Control.SpeakActive()
		st.ControlState = a.config.Control.State().String()
	}
	return st
}

// SessionRecorder returns an mmi.Client OnRegistered hook that stores the
// registered context in s.
func SessionRecorder(s *store.Store) func(env mmi.Envelope) {
	return func(env mmi.Envelope) {
		err := s.Sessions().Create(&store.Session{
			RequestID:    env.RequestID,
			Context:      env.Header.ID,
			Source:       env.Header.Source,
			Target:       env.Header.Target,
			RegisteredAt: time.Now().UTC(),
		})
		if err != nil {
			log.Printf("failed to save mmi session %s: %v", env.RequestID, err)
		}
	}
}
