// Package tray provides a system tray menu for pointread.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
	"gocv.io/x/gocv"

	"github.com/ayusman/pointread/internal/app"
	"github.com/ayusman/pointread/internal/store"
)

// maxTitle keeps long recognized strings from widening the menu.
const maxTitle = 40

// Tray represents the system tray application.
type Tray struct {
	onMute  func(muted bool)
	onQuit  func()
	muted   bool
	last    string
	mu      sync.RWMutex
	running bool

	// Menu items stored for later updates
	menuMute *systray.MenuItem
	menuLast *systray.MenuItem
}

// New creates a new Tray with the given initial mute state.
func New(muted bool) *Tray {
	return &Tray{
		muted: muted,
	}
}

// OnMute sets the callback invoked when speech is muted or unmuted.
func (t *Tray) OnMute(fn func(muted bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onMute = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// It must be called from the main goroutine and blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("pointread")
	systray.SetTooltip("pointread: reads aloud the word you point at")

	t.mu.Lock()
	t.menuMute = systray.AddMenuItem(muteTitle(t.muted), "Mute or unmute speech")
	systray.AddSeparator()

	t.menuLast = systray.AddMenuItem(lastTitle(t.last), "Last spoken word")
	t.menuLast.Disable()
	t.running = true
	t.mu.Unlock()
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit pointread")

	go func() {
		for {
			select {
			case <-t.menuMute.ClickedCh:
				t.toggleMute()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {
	t.mu.Lock()
	t.running = false
	t.mu.Unlock()
}

// toggleMute flips the mute state and notifies the callback outside the lock.
func (t *Tray) toggleMute() {
	t.mu.Lock()
	t.muted = !t.muted
	muted := t.muted
	if t.menuMute != nil {
		t.menuMute.SetTitle(muteTitle(muted))
	}
	callback := t.onMute
	t.mu.Unlock()

	if callback != nil {
		callback(muted)
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

// SetLastSpoken updates the last spoken word in the menu.
func (t *Tray) SetLastSpoken(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.last = text
	if t.running && t.menuLast != nil {
		t.menuLast.SetTitle(lastTitle(text))
	}
}

// LastSpoken returns the most recently spoken text.
func (t *Tray) LastSpoken() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// IsMuted returns the current mute state.
func (t *Tray) IsMuted() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.muted
}

// OnFrame implements app.Observer; the tray only tracks announcements.
func (t *Tray) OnFrame(*gocv.Mat, app.FrameResult) {}

// OnAnnouncement implements app.Observer.
func (t *Tray) OnAnnouncement(a *store.Announcement) {
	t.SetLastSpoken(a.Text)
}

func muteTitle(muted bool) string {
	if muted {
		return "○ Speech muted"
	}
	return "● Speech on"
}

func lastTitle(text string) string {
	if text == "" {
		return "Last: none"
	}
	if r := []rune(text); len(r) > maxTitle {
		text = string(r[:maxTitle-1]) + "…"
	}
	return "Last: " + text
}
