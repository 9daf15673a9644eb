// Package controls maps the keyboard surface onto player commands and owns
// the control overlay's auto-hide timer.
package controls

import (
	"strings"
	"sync"
	"time"

	"iptv-player/work/logger"
)

// VolumeStep is how far the arrow keys nudge the volume per press.
const VolumeStep = 0.1

// Target is the command surface the keymap drives. The player implements
// it; channel navigation is delegated so wrap-around stays the registry's
// business.
type Target interface {
	TogglePlay()
	ToggleMute()
	ToggleFullscreen() error
	AdjustVolume(delta float64)
	NextChannel()
	PrevChannel()
}

// Keymap dispatches key presses to a Target. Key names follow the browser
// KeyboardEvent.key convention, compared case-insensitively.
type Keymap struct {
	target Target
}

// NewKeymap binds the default shortcut table to target.
func NewKeymap(target Target) *Keymap {
	return &Keymap{target: target}
}

// Handle runs the command bound to key and reports whether the key was
// recognized. Unknown keys are ignored.
func (k *Keymap) Handle(key string) bool {
	switch strings.ToLower(key) {
	case " ", "space":
		k.target.TogglePlay()
	case "m":
		k.target.ToggleMute()
	case "f":
		if err := k.target.ToggleFullscreen(); err != nil {
			logger.Warn("{controls - Handle} fullscreen toggle failed: %v", err)
		}
	case "arrowup":
		k.target.AdjustVolume(VolumeStep)
	case "arrowdown":
		k.target.AdjustVolume(-VolumeStep)
	case "arrowright":
		k.target.NextChannel()
	case "arrowleft":
		k.target.PrevChannel()
	default:
		return false
	}
	return true
}

// Overlay hides the control overlay after a fixed period of pointer
// inactivity and shows it again on any activity. Pure UI affordance, no
// correctness riding on it.
type Overlay struct {
	timeout time.Duration
	notify  func(visible bool)

	mu    sync.Mutex
	timer *time.Timer
}

// NewOverlay builds an Overlay that reports visibility flips through
// notify.
func NewOverlay(timeout time.Duration, notify func(visible bool)) *Overlay {
	return &Overlay{
		timeout: timeout,
		notify:  notify,
	}
}

// Touch records pointer activity: the overlay becomes visible and the hide
// countdown restarts.
func (o *Overlay) Touch() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.timer != nil {
		o.timer.Stop()
	}

	o.notify(true)
	o.timer = time.AfterFunc(o.timeout, func() {
		o.notify(false)
	})
}

// Stop cancels any pending hide.
func (o *Overlay) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}
