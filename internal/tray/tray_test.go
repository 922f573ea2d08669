package tray

import "testing"

func TestNew_DefaultsToEnabled(t *testing.T) {
	tr := New()
	if !tr.IsEnabled() {
		t.Error("new tray should be enabled")
	}
	if tr.Tracked() {
		t.Error("new tray should not show a tracked body")
	}
}

func TestTray_HandleToggleBeforeReady(t *testing.T) {
	tr := New()

	var got []bool
	tr.OnToggle(func(enabled bool) {
		got = append(got, enabled)
	})

	tr.handleToggle()
	tr.handleToggle()

	if len(got) != 2 || got[0] || !got[1] {
		t.Errorf("toggle callbacks = %v, want [false true]", got)
	}
	if !tr.IsEnabled() {
		t.Error("tray should be enabled after two toggles")
	}
}

func TestTray_UpdateGestureResult(t *testing.T) {
	tr := New()

	tr.UpdateGestureResult(true, true, 0.95, "HungryTop")
	name, conf := tr.LastGesture()
	if name != "HungryTop" || conf != 0.95 {
		t.Errorf("LastGesture() = %s, %v", name, conf)
	}
	if !tr.Tracked() {
		t.Error("tray should show a tracked body")
	}

	tr.UpdateGestureResult(false, false, 0, "")
	if tr.Tracked() {
		t.Error("tray should show the body as not tracked")
	}
	if name, _ := tr.LastGesture(); name != "HungryTop" {
		t.Errorf("last gesture should survive tracking loss, got %q", name)
	}
}

func TestTray_OpenStatusCallback(t *testing.T) {
	tr := New()

	called := false
	tr.OnOpenStatus(func() { called = true })
	tr.handleOpenStatus()

	if !called {
		t.Error("status callback not called")
	}
}

func TestTitles(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{toggleTitle(true), "● Enabled"},
		{toggleTitle(false), "○ Disabled"},
		{trackingTitle(true), "Body: tracked"},
		{trackingTitle(false), "Body: not tracked"},
		{lastGestureTitle("", 0), "Last: none"},
		{lastGestureTitle("HungryTop", 0.953), "Last: HungryTop (0.95)"},
		{speechTitle(true), "Speech: active"},
		{speechTitle(false), "Speech: inactive"},
	}
	for _, tc := range tests {
		if tc.got != tc.want {
			t.Errorf("title = %q, want %q", tc.got, tc.want)
		}
	}
}
