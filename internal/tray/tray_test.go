package tray

import "testing"

func TestTitles(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{toggleTitle(true), "● Enabled"},
		{toggleTitle(false), "○ Disabled"},
		{lastTitle(""), "Last: none"},
		{lastTitle("click (640, 360)"), "Last: click (640, 360)"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestTray_Toggle(t *testing.T) {
	tr := New("cursor", true)

	var states []bool
	tr.OnToggle(func(enabled bool) { states = append(states, enabled) })

	tr.handleToggle()
	tr.handleToggle()

	if len(states) != 2 || states[0] || !states[1] {
		t.Errorf("toggle callbacks = %v, want [false true]", states)
	}
	if !tr.IsEnabled() {
		t.Error("two toggles should leave the tray enabled")
	}
}

func TestTray_StatusPageCallback(t *testing.T) {
	tr := New("cursor", false)

	opened := 0
	tr.OnStatusPage(func() { opened++ })
	tr.handleStatusPage()

	if opened != 1 {
		t.Errorf("status page opened %d times, want 1", opened)
	}

	// Menu items do not exist before Run; updates are ignored.
	tr.SetLast("Fist")
}
