// Package session implements the stream session controller: a small state
// machine that owns the single active media decode session and the
// transient player state around it.
package session

import (
	"context"
	"sync"

	"iptv-player/work/config"
	"iptv-player/work/display"
	"iptv-player/work/logger"
	"iptv-player/work/metrics"
	"iptv-player/work/playlist"
	"iptv-player/work/utils"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/ratelimit"
)

// State names the controller's position in the playback lifecycle.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
	StateError   State = "error"
)

// PlayerState is the transient per-session view of playback. It is never
// persisted and resets whenever the active channel changes.
type PlayerState struct {
	Playing         bool    `json:"playing"`
	Volume          float64 `json:"volume"` // 0.0 - 1.0
	Muted           bool    `json:"muted"`
	Fullscreen      bool    `json:"fullscreen"`
	Loading         bool    `json:"loading"`
	LastError       string  `json:"lastError,omitempty"`
	ControlsVisible bool    `json:"controlsVisible"`
	Position        float64 `json:"position"` // seconds
	Duration        float64 `json:"duration"` // seconds, 0 for live
}

// Snapshot is the externally visible session state served by the API.
type Snapshot struct {
	State       State       `json:"state"`
	ChannelID   string      `json:"channelId,omitempty"`
	ChannelName string      `json:"channelName,omitempty"`
	Player      PlayerState `json:"player"`
}

// Controller drives the stream session state machine. It guarantees at most
// one attached decode session at any moment: selecting a channel always
// tears the previous pipeline down before the replacement is created.
type Controller struct {
	cfg     *config.Config
	pool    *ants.Pool // nil runs loads inline, used by tests
	limiter ratelimit.Limiter
	factory PipelineFactory
	display *display.Manager

	mu          sync.Mutex
	state       State
	ps          PlayerState
	pipeline    Pipeline
	cancelLoad  context.CancelFunc
	gen         uint64 // increments per load; stale pipeline events are dropped
	channelID   string
	channelName string
	channelURL  string
}

// New builds an idle Controller. The display manager's change notifications
// are wired in so fullscreen state stays correct even when fullscreen is
// exited by an OS-level gesture.
func New(cfg *config.Config, pool *ants.Pool, factory PipelineFactory, disp *display.Manager) *Controller {
	c := &Controller{
		cfg:     cfg,
		pool:    pool,
		limiter: ratelimit.New(cfg.RelayRateLimit),
		factory: factory,
		display: disp,
		state:   StateIdle,
		ps:      freshPlayerState(),
	}

	disp.OnChange(func(active bool) {
		c.mu.Lock()
		c.ps.Fullscreen = active
		c.mu.Unlock()
	})

	return c
}

func freshPlayerState() PlayerState {
	return PlayerState{
		Volume:          1.0,
		ControlsVisible: true,
	}
}

// Load selects a channel and restarts the playback cycle. Any previously
// attached pipeline is closed before the new one exists; a channel with an
// empty URL leaves the controller idle.
func (c *Controller) Load(ch *playlist.Channel) {
	c.mu.Lock()

	// teardown first: the single-active-session invariant
	c.teardownLocked()

	c.channelID = ch.ID
	c.channelName = ch.Name
	c.channelURL = ch.URL
	c.ps = freshPlayerState()

	if ch.URL == "" {
		c.setStateLocked(StateIdle)
		c.mu.Unlock()
		return
	}

	load := c.beginLoadLocked()
	c.mu.Unlock()

	c.dispatch(load)
}

// Retry restarts the load cycle for the current channel, typically after an
// error overlay's retry action.
func (c *Controller) Retry() {
	c.mu.Lock()

	if c.channelURL == "" {
		c.mu.Unlock()
		return
	}

	c.teardownLocked()
	c.ps = freshPlayerState()
	load := c.beginLoadLocked()
	c.mu.Unlock()

	c.dispatch(load)
}

// beginLoadLocked attaches a fresh pipeline and returns the manifest load
// step for the caller to dispatch once the lock is released; pipeline
// events may fire synchronously and re-enter the controller. Callers must
// hold c.mu and have torn down any prior pipeline.
func (c *Controller) beginLoadLocked() func() {
	c.gen++
	gen := c.gen
	c.setStateLocked(StateLoading)
	c.ps.Loading = true

	pipe := c.factory(c.channelURL, PipelineEvents{
		OnReady:  func() { c.handleReady(gen) },
		OnError:  func(reason string) { c.handleError(gen, reason) },
		OnPlay:   func() { c.handlePlay(gen) },
		OnPause:  func() { c.handlePause(gen) },
		OnVolume: func(level float64, muted bool) { c.handleVolume(gen, level, muted) },
	})
	c.pipeline = pipe

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelLoad = cancel

	return func() {
		c.limiter.Take()
		pipe.Load(ctx)
	}
}

// dispatch hands the load step to the worker pool, or runs it inline when
// no pool is configured.
func (c *Controller) dispatch(load func()) {
	if c.pool != nil {
		if err := c.pool.Submit(load); err != nil {
			logger.Error("{session - dispatch} failed to submit load: %v", err)
			go load()
		}
		return
	}
	load()
}

// teardownLocked destroys the active pipeline and clears references. It
// never leaves a stale session running. Callers must hold c.mu.
func (c *Controller) teardownLocked() {
	if c.cancelLoad != nil {
		c.cancelLoad()
		c.cancelLoad = nil
	}
	if c.pipeline != nil {
		c.pipeline.Close()
		c.pipeline = nil
	}
}

// Teardown unconditionally destroys the decode session, e.g. on shutdown.
func (c *Controller) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.teardownLocked()
	c.setStateLocked(StateIdle)
	c.ps = freshPlayerState()
}

// handleReady fires when the pipeline's manifest is decoded; the controller
// then issues the autoplay request. An autoplay rejection is logged, never
// surfaced as an error state.
func (c *Controller) handleReady(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.state != StateLoading {
		c.mu.Unlock()
		return
	}
	c.ps.Loading = false
	c.setStateLocked(StatePlaying)
	pipe := c.pipeline
	url := c.channelURL
	c.mu.Unlock()

	if pipe != nil {
		if err := pipe.Play(); err != nil {
			logger.Warn("{session - handleReady} autoplay rejected for %s: %v",
				utils.LogURL(c.cfg, url), err)
		}
	}
}

// handleError records a fatal decode/network failure.
func (c *Controller) handleError(gen uint64, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return
	}

	c.ps.Loading = false
	c.ps.Playing = false
	c.ps.LastError = reason
	c.setStateLocked(StateError)
	metrics.SessionErrors.WithLabelValues(utils.SanitizeName(c.channelName)).Inc()
}

// handlePlay mirrors the pipeline's own play notification so native-driven
// resumes keep the state machine in sync.
func (c *Controller) handlePlay(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || (c.state != StatePlaying && c.state != StatePaused) {
		return
	}
	c.ps.Playing = true
	c.setStateLocked(StatePlaying)
}

// handlePause mirrors the pipeline's pause notification.
func (c *Controller) handlePause(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || c.state != StatePlaying {
		return
	}
	c.ps.Playing = false
	c.setStateLocked(StatePaused)
}

// handleVolume mirrors volume change notifications from the pipeline so
// externally driven changes stay consistent with the displayed state.
func (c *Controller) handleVolume(gen uint64, level float64, muted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return
	}
	c.ps.Volume = utils.Clamp(level, 0, 1)
	c.ps.Muted = muted
}

// TogglePlay flips between playing and paused. It is a no-op while loading,
// idle, or errored.
func (c *Controller) TogglePlay() {
	c.mu.Lock()
	pipe := c.pipeline
	state := c.state
	c.mu.Unlock()

	if pipe == nil {
		return
	}

	switch state {
	case StatePlaying:
		pipe.Pause()
	case StatePaused:
		if err := pipe.Play(); err != nil {
			logger.Warn("{session - TogglePlay} play rejected: %v", err)
		}
	}
}

// SetVolume pushes a clamped volume level into the pipeline. The state
// update itself arrives via the pipeline's change notification.
func (c *Controller) SetVolume(level float64) {
	c.mu.Lock()
	pipe := c.pipeline
	muted := c.ps.Muted
	c.mu.Unlock()

	if pipe != nil {
		pipe.SetVolume(utils.Clamp(level, 0, 1), muted)
	}
}

// AdjustVolume nudges the volume by delta, clamped to [0,1].
func (c *Controller) AdjustVolume(delta float64) {
	c.mu.Lock()
	level := c.ps.Volume + delta
	c.mu.Unlock()

	c.SetVolume(level)
}

// ToggleMute flips the mute flag through the pipeline.
func (c *Controller) ToggleMute() {
	c.mu.Lock()
	pipe := c.pipeline
	level := c.ps.Volume
	muted := c.ps.Muted
	c.mu.Unlock()

	if pipe != nil {
		pipe.SetVolume(level, !muted)
	}
}

// ToggleFullscreen enters or exits fullscreen through the display manager's
// strategy chain. The returned error is display.ErrUnsupported when every
// strategy failed, which callers surface to the user synchronously.
func (c *Controller) ToggleFullscreen() error {
	c.mu.Lock()
	active := c.ps.Fullscreen
	c.mu.Unlock()

	if active {
		return c.display.Exit()
	}
	return c.display.Enter()
}

// SetControlsVisible records the control overlay visibility flag.
func (c *Controller) SetControlsVisible(visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ps.ControlsVisible = visible
}

// State returns the current machine state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the externally visible session state, with position and
// duration pulled from the live pipeline.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	ps := c.ps
	if c.pipeline != nil {
		ps.Position, ps.Duration = c.pipeline.Position()
	}

	return Snapshot{
		State:       c.state,
		ChannelID:   c.channelID,
		ChannelName: c.channelName,
		Player:      ps,
	}
}

// setStateLocked records a transition. Callers must hold c.mu.
func (c *Controller) setStateLocked(next State) {
	if c.state == next {
		return
	}
	c.state = next
	metrics.SessionTransitions.WithLabelValues(string(next)).Inc()
	logger.Debug("{session - setState} -> %s (channel: %s)", next, c.channelName)
}
