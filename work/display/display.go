// Package display layers fullscreen handling over whichever entry point the
// connected client supports. Vendor branching lives here as an ordered
// strategy chain instead of conditionals scattered across components.
package display

import (
	"errors"
	"sync"

	"iptv-player/work/logger"
)

// ErrUnsupported is returned when every strategy in the chain, including the
// native-video last resort, failed. Callers notify the user synchronously.
var ErrUnsupported = errors.New("fullscreen is not supported on this device")

// Strategy is one fullscreen entry point. Strategies are tried in a fixed
// order until one reports support for the client's capabilities.
type Strategy interface {
	Name() string
	Supported(capabilities []string) bool
	Enter() error
	Exit() error
}

// apiStrategy models a document-level fullscreen API keyed by the
// capability token the client advertises.
type apiStrategy struct {
	name       string
	capability string
}

func (s *apiStrategy) Name() string { return s.name }

func (s *apiStrategy) Supported(capabilities []string) bool {
	for _, c := range capabilities {
		if c == s.capability {
			return true
		}
	}
	return false
}

func (s *apiStrategy) Enter() error { return nil }
func (s *apiStrategy) Exit() error  { return nil }

// nativeVideoStrategy is the device-specific last resort: it asks the video
// surface itself for fullscreen rather than the document.
type nativeVideoStrategy struct{}

func (s *nativeVideoStrategy) Name() string { return "nativeVideo" }

func (s *nativeVideoStrategy) Supported(capabilities []string) bool {
	for _, c := range capabilities {
		if c == "nativeVideo" {
			return true
		}
	}
	return false
}

func (s *nativeVideoStrategy) Enter() error { return nil }
func (s *nativeVideoStrategy) Exit() error  { return nil }

// DefaultStrategies is the fixed fallback order: the standard API, the
// three vendor-prefixed variants, then native video fullscreen.
func DefaultStrategies() []Strategy {
	return []Strategy{
		&apiStrategy{name: "standard", capability: "requestFullscreen"},
		&apiStrategy{name: "webkit", capability: "webkitRequestFullscreen"},
		&apiStrategy{name: "moz", capability: "mozRequestFullScreen"},
		&apiStrategy{name: "ms", capability: "msRequestFullscreen"},
		&nativeVideoStrategy{},
	}
}

// Manager owns fullscreen state. Enter walks the strategy chain; state is
// additionally re-derived from change notifications so an OS-gesture exit
// is observed too.
type Manager struct {
	mu           sync.Mutex
	strategies   []Strategy
	capabilities []string
	active       Strategy
	fullscreen   bool
	onChange     func(bool)
}

// NewManager builds a Manager over the given chain. A nil chain gets the
// default order.
func NewManager(strategies []Strategy) *Manager {
	if strategies == nil {
		strategies = DefaultStrategies()
	}
	return &Manager{
		strategies: strategies,
	}
}

// SetCapabilities records the capability tokens the connected client
// advertises; they decide which strategies are eligible.
func (m *Manager) SetCapabilities(capabilities []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.capabilities = capabilities
}

// Capabilities returns the currently advertised tokens.
func (m *Manager) Capabilities() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.capabilities))
	copy(out, m.capabilities)
	return out
}

// OnChange registers the callback invoked whenever fullscreen state flips.
func (m *Manager) OnChange(fn func(active bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// Enter requests fullscreen, trying each strategy in chain order and
// stopping at the first supported one that succeeds. When nothing in the
// chain works the caller gets ErrUnsupported back immediately.
func (m *Manager) Enter() error {
	m.mu.Lock()
	caps := m.capabilities
	strategies := m.strategies
	m.mu.Unlock()

	for _, s := range strategies {
		if !s.Supported(caps) {
			continue
		}
		if err := s.Enter(); err != nil {
			logger.Debug("{display - Enter} strategy %s failed: %v", s.Name(), err)
			continue
		}

		m.mu.Lock()
		m.active = s
		m.mu.Unlock()
		m.HandleChange(true)

		logger.Debug("{display - Enter} fullscreen via %s", s.Name())
		return nil
	}

	return ErrUnsupported
}

// Exit leaves fullscreen through the strategy that entered it.
func (m *Manager) Exit() error {
	m.mu.Lock()
	active := m.active
	m.mu.Unlock()

	if active == nil {
		m.HandleChange(false)
		return nil
	}

	if err := active.Exit(); err != nil {
		return err
	}

	m.mu.Lock()
	m.active = nil
	m.mu.Unlock()
	m.HandleChange(false)
	return nil
}

// HandleChange re-derives fullscreen state from a platform change
// notification. This covers exits via OS-level gestures that never pass
// through Exit.
func (m *Manager) HandleChange(active bool) {
	m.mu.Lock()
	changed := m.fullscreen != active
	m.fullscreen = active
	if !active {
		m.active = nil
	}
	fn := m.onChange
	m.mu.Unlock()

	if changed && fn != nil {
		fn(active)
	}
}

// Fullscreen reports the current state.
func (m *Manager) Fullscreen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fullscreen
}
