// Package tray provides a system tray view of the gesture modality.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application. It shows whether a body is
// tracked, the last recognized gesture and whether speech is active.
type Tray struct {
	onToggle     func(enabled bool)
	onOpenStatus func()
	onQuit       func()
	enabled      bool
	tracked      bool
	speakActive  bool
	lastGesture  string
	confidence   float64
	mu           sync.RWMutex

	// Menu items stored for later updates
	menuToggle      *systray.MenuItem
	menuTracking    *systray.MenuItem
	menuLastGesture *systray.MenuItem
	menuSpeech      *systray.MenuItem
}

// New creates a new Tray instance with enabled state set to true by default.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpenStatus sets the callback function to be called when the status menu item is clicked.
func (t *Tray) OnOpenStatus(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpenStatus = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Gestures")
	systray.SetTooltip("Gesture Modality")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle gesture forwarding")
	systray.AddSeparator()

	t.menuTracking = systray.AddMenuItem(trackingTitle(t.tracked), "Body tracking state")
	t.menuTracking.Disable()
	t.menuLastGesture = systray.AddMenuItem(lastGestureTitle(t.lastGesture, t.confidence), "Last recognized gesture")
	t.menuLastGesture.Disable()
	t.menuSpeech = systray.AddMenuItem(speechTitle(t.speakActive), "Speech control state")
	t.menuSpeech.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuStatus := systray.AddMenuItem("Open Status...", "Open the status page in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit the gesture modality")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuStatus.ClickedCh:
				t.handleOpenStatus()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	setTitle(t.menuToggle, toggleTitle(enabled))
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// handleOpenStatus handles the status menu item click.
func (t *Tray) handleOpenStatus() {
	t.mu.RLock()
	callback := t.onOpenStatus
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// UpdateGestureResult implements gesture.View.
func (t *Tray) UpdateGestureResult(tracked, detected bool, confidence float64, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.tracked = tracked
	setTitle(t.menuTracking, trackingTitle(tracked))
	if tracked && detected && name != "" {
		t.lastGesture = name
		t.confidence = confidence
		setTitle(t.menuLastGesture, lastGestureTitle(name, confidence))
	}
}

// SetTracked updates the tracking display.
func (t *Tray) SetTracked(tracked bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tracked = tracked
	setTitle(t.menuTracking, trackingTitle(tracked))
}

// SetSpeakActive updates the speech display.
func (t *Tray) SetSpeakActive(active bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.speakActive = active
	setTitle(t.menuSpeech, speechTitle(active))
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// LastGesture returns the last displayed gesture and its confidence.
func (t *Tray) LastGesture() (string, float64) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastGesture, t.confidence
}

// Tracked returns whether the tray shows a tracked body.
func (t *Tray) Tracked() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tracked
}

// setTitle is a no-op before the menu exists.
func setTitle(item *systray.MenuItem, title string) {
	if item != nil {
		item.SetTitle(title)
	}
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func trackingTitle(tracked bool) string {
	if tracked {
		return "Body: tracked"
	}
	return "Body: not tracked"
}

func lastGestureTitle(name string, confidence float64) string {
	if name == "" {
		return "Last: none"
	}
	return fmt.Sprintf("Last: %s (%.2f)", name, confidence)
}

func speechTitle(active bool) string {
	if active {
		return "Speech: active"
	}
	return "Speech: inactive"
}
