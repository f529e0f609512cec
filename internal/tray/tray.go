// Package tray provides a system tray interface for pinchpoint.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray menu.
type Tray struct {
	onToggle func(enabled bool)
	onQuit   func()
	enabled  bool
	ready    bool
	quitting bool
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuPhase  *systray.MenuItem
	menuLast   *systray.MenuItem
}

// New creates a new Tray with the given initial enabled state.
func New(enabled bool) *Tray {
	return &Tray{
		enabled: enabled,
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray. It must be called from the main goroutine
// and blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the tray icon and makes Run return. It may be called
// before the tray is ready.
func (t *Tray) Quit() {
	t.mu.Lock()
	if !t.ready {
		t.quitting = true
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Pinchpoint")
	systray.SetTooltip("Pinchpoint hand cursor")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle hand tracking")
	systray.AddSeparator()

	t.menuPhase = systray.AddMenuItem(phaseTitle(""), "Current gesture phase")
	t.menuPhase.Disable()
	t.menuLast = systray.AddMenuItem(lastTitle(""), "Last pointer action")
	t.menuLast.Disable()
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Pinchpoint")
	t.ready = true
	quitting := t.quitting
	t.mu.Unlock()

	if quitting {
		systray.Quit()
		return
	}

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	t.menuToggle.SetTitle(toggleTitle(enabled))
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
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

// SetEnabled reflects an enabled change made elsewhere, such as over HTTP.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}

// SetPhase updates the phase display in the menu.
func (t *Tray) SetPhase(phase string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuPhase != nil {
		t.menuPhase.SetTitle(phaseTitle(phase))
	}
}

// SetLastIntent updates the last action display in the menu.
func (t *Tray) SetLastIntent(name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLast != nil {
		t.menuLast.SetTitle(lastTitle(name))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func phaseTitle(phase string) string {
	if phase == "" {
		return "State: idle"
	}
	return "State: " + phase
}

func lastTitle(name string) string {
	if name == "" {
		return "Last: none"
	}
	return "Last: " + name
}
