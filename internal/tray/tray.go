// Package tray provides the optional system tray menu of handcursor.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray lets the user pause pointer control, see the last action and quit.
type Tray struct {
	title        string
	onToggle     func(enabled bool)
	onStatusPage func()
	onQuit       func()
	enabled      bool
	backend      string
	mu           sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuLast   *systray.MenuItem
}

// New creates a new Tray showing title, with the enabled state set as given.
func New(title string, enabled bool) *Tray {
	return &Tray{
		title:   title,
		enabled: enabled,
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnStatusPage adds an "Open Status Page" item that calls fn.
func (t *Tray) OnStatusPage(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStatusPage = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// SetBackend sets the backend name shown in the menu. Call before Run.
func (t *Tray) SetBackend(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.backend = name
}

// Run starts the system tray application.
// This function blocks until Stop is called or Quit is clicked.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Stop closes the tray and makes Run return.
func (t *Tray) Stop() {
	systray.Quit()
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func lastTitle(action string) string {
	if action == "" {
		return "Last: none"
	}
	return "Last: " + action
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	t.mu.Lock()
	systray.SetTitle(t.title)
	systray.SetTooltip("handcursor: " + t.title)

	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle pointer control")
	systray.AddSeparator()

	t.menuLast = systray.AddMenuItem(lastTitle(""), "Last action")
	t.menuLast.Disable()
	if t.backend != "" {
		systray.AddMenuItem("Backend: "+t.backend, "Mouse backend").Disable()
	}
	systray.AddSeparator()

	var statusCh chan struct{}
	if t.onStatusPage != nil {
		statusCh = systray.AddMenuItem("Open Status Page...", "Open the status page in a browser").ClickedCh
		systray.AddSeparator()
	}

	menuQuit := systray.AddMenuItem("Quit", "Quit handcursor")
	toggleCh := t.menuToggle.ClickedCh
	t.mu.Unlock()

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-toggleCh:
				t.handleToggle()
			case <-statusCh:
				t.handleStatusPage()
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

	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// handleStatusPage handles the status page menu item click.
func (t *Tray) handleStatusPage() {
	t.mu.RLock()
	callback := t.onStatusPage
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

// SetLast updates the last action display in the menu.
func (t *Tray) SetLast(action string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLast != nil {
		t.menuLast.SetTitle(lastTitle(action))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
