// Package player wires the registry, favorites, relay, EPG, and the stream
// session controller into the single application object the HTTP layer
// talks to.
package player

import (
	"context"
	"sync"
	"time"

	"iptv-player/work/cache"
	"iptv-player/work/client"
	"iptv-player/work/config"
	"iptv-player/work/controls"
	"iptv-player/work/display"
	"iptv-player/work/epg"
	"iptv-player/work/favorites"
	"iptv-player/work/logger"
	"iptv-player/work/metrics"
	"iptv-player/work/playlist"
	"iptv-player/work/registry"
	"iptv-player/work/relay"
	"iptv-player/work/session"
	"iptv-player/work/utils"

	"github.com/panjf2000/ants/v2"
)

// Player is the core application: it owns channel state, favorites, the
// stream session, and the playlist refresh loop.
type Player struct {
	Config    *config.Config
	Registry  *registry.Registry
	Favorites *favorites.Store
	Session   *session.Controller
	Display   *display.Manager
	Relay     *relay.Relay
	EPG       epg.Source
	Cache     *cache.Cache
	Client    *client.BrowserClient
	Pool      *ants.Pool
	Keymap    *controls.Keymap
	Overlay   *controls.Overlay

	StartedAt time.Time

	refreshMu   sync.Mutex
	refreshStop chan struct{} // per-run; created by StartRefresh, closed by StopRefresh
}

// New assembles a Player from its collaborators and binds the keyboard
// surface and overlay timer.
func New(cfg *config.Config, reg *registry.Registry, favs *favorites.Store,
	sess *session.Controller, disp *display.Manager, rel *relay.Relay,
	guide epg.Source, c *cache.Cache, httpClient *client.BrowserClient,
	pool *ants.Pool) *Player {

	p := &Player{
		Config:    cfg,
		Registry:  reg,
		Favorites: favs,
		Session:   sess,
		Display:   disp,
		Relay:     rel,
		EPG:       guide,
		Cache:     c,
		Client:    httpClient,
		Pool:      pool,
		StartedAt: time.Now(),
	}

	p.Keymap = controls.NewKeymap(p)
	p.Overlay = controls.NewOverlay(cfg.OverlayTimeout, sess.SetControlsVisible)

	return p
}

// LoadPlaylist fetches, parses, and installs a playlist, replacing the
// registry contents wholesale. Favorites referencing identifiers absent
// from the new list stay orphaned rather than being deleted.
func (p *Player) LoadPlaylist(ctx context.Context, url string) (*playlist.Playlist, error) {
	pl, err := playlist.FetchAndParse(ctx, p.Client, p.Config, url)
	if err != nil {
		metrics.PlaylistParses.WithLabelValues("fetch_error").Inc()
		return nil, err
	}

	metrics.PlaylistParses.WithLabelValues("ok").Inc()

	playlist.Sort(pl.Channels, p.Config.SortField, p.Config.SortDirection)
	p.Registry.Replace(pl)

	logger.Info("{player - LoadPlaylist} installed %d channels from %s",
		pl.Count, utils.LogURL(p.Config, url))
	return pl, nil
}

// ImportInitial loads the configured playlist at startup, if any.
func (p *Player) ImportInitial() {
	if p.Config.PlaylistURL == "" {
		return
	}

	if _, err := p.LoadPlaylist(context.Background(), p.Config.PlaylistURL); err != nil {
		logger.Error("{player - ImportInitial} initial playlist load failed: %v", err)
	}
}

// StartRefresh periodically re-fetches the configured playlist until
// StopRefresh is called. Each run gets its own stop channel, so a stop
// issued while no loop was running (empty playlist URL) cannot leak into a
// later run and kill it.
func (p *Player) StartRefresh() {
	if p.Config.PlaylistURL == "" {
		return
	}

	p.refreshMu.Lock()
	if p.refreshStop != nil {
		close(p.refreshStop)
	}
	stop := make(chan struct{})
	p.refreshStop = stop
	p.refreshMu.Unlock()

	ticker := time.NewTicker(p.Config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := p.LoadPlaylist(context.Background(), p.Config.PlaylistURL); err != nil {
				logger.Error("{player - StartRefresh} refresh failed: %v", err)
			}
		case <-stop:
			return
		}
	}
}

// StopRefresh signals the current refresh loop, if any, to exit. Safe to
// call repeatedly and with no loop running.
func (p *Player) StopRefresh() {
	p.refreshMu.Lock()
	defer p.refreshMu.Unlock()

	if p.refreshStop != nil {
		close(p.refreshStop)
		p.refreshStop = nil
	}
}

// ApplyConfig installs freshly loaded configuration. The session, relay,
// pipeline factory, and client all hold the same *config.Config, so new
// values are copied into the shared struct instead of swapping the pointer;
// swapping would leave every collaborator reading the old values.
func (p *Player) ApplyConfig(cfg *config.Config) {
	*p.Config = *cfg
}

// SelectChannel moves the registry cursor and restarts the stream session
// on the chosen channel.
func (p *Player) SelectChannel(id string) bool {
	ch, ok := p.Registry.Select(id)
	if !ok {
		return false
	}

	p.Session.Load(ch)
	return true
}

// Shutdown tears the active stream session down and stops background work.
func (p *Player) Shutdown() {
	p.StopRefresh()
	p.Overlay.Stop()
	p.Session.Teardown()
}

// controls.Target implementation; arrow-key navigation lands here.

func (p *Player) TogglePlay() { p.Session.TogglePlay() }

func (p *Player) ToggleMute() { p.Session.ToggleMute() }

func (p *Player) ToggleFullscreen() error { return p.Session.ToggleFullscreen() }

func (p *Player) AdjustVolume(delta float64) { p.Session.AdjustVolume(delta) }

// NextChannel advances the registry cursor with wraparound and loads the
// landing channel.
func (p *Player) NextChannel() {
	if ch, ok := p.Registry.Next(); ok {
		p.Session.Load(ch)
	}
}

// PrevChannel steps the registry cursor backwards with wraparound and loads
// the landing channel.
func (p *Player) PrevChannel() {
	if ch, ok := p.Registry.Prev(); ok {
		p.Session.Load(ch)
	}
}
