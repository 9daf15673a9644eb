// Package hls implements the media decode session behind the stream
// session controller. It handles manifest retrieval and parsing only;
// segment decoding and rendering are the playback layer's problem.
package hls

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"iptv-player/work/client"
	"iptv-player/work/config"
	"iptv-player/work/logger"
	"iptv-player/work/session"
	"iptv-player/work/utils"

	"github.com/grafov/m3u8"
)

// Pipeline fetches the channel's HLS manifest and reports readiness or a
// fatal error. Once playing, a ticker advances the playback position;
// duration stays 0 for live streams.
type Pipeline struct {
	url    string
	events session.PipelineEvents
	client *client.BrowserClient
	cfg    *config.Config

	mu       sync.Mutex
	closed   bool
	playing  bool
	volume   float64
	muted    bool
	duration float64 // seconds, 0 for live
	position float64
	ticker   *time.Ticker
	tickDone chan struct{}
}

// NewFactory returns a session.PipelineFactory producing HLS pipelines that
// share the application's browser client and configuration.
func NewFactory(httpClient *client.BrowserClient, cfg *config.Config) session.PipelineFactory {
	return func(url string, ev session.PipelineEvents) session.Pipeline {
		return &Pipeline{
			url:    url,
			events: ev,
			client: httpClient,
			cfg:    cfg,
			volume: 1.0,
		}
	}
}

// Load retrieves and decodes the manifest. Master playlists count as ready
// once a variant list is decoded; media playlists additionally yield a
// total duration when they carry an endlist marker.
func (p *Pipeline) Load(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.StreamTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		p.fail(fmt.Sprintf("invalid stream URL: %v", err))
		return
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() == context.Canceled {
			return
		}
		p.fail(fmt.Sprintf("network error loading stream: %v", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.fail(fmt.Sprintf("stream server returned HTTP %d", resp.StatusCode))
		return
	}

	pl, listType, err := m3u8.DecodeFrom(bufio.NewReader(resp.Body), true)
	if err != nil {
		p.fail(fmt.Sprintf("failed to decode stream manifest: %v", err))
		return
	}

	var duration float64
	switch listType {
	case m3u8.MEDIA:
		media := pl.(*m3u8.MediaPlaylist)
		if media.Closed {
			for _, seg := range media.Segments {
				if seg != nil {
					duration += seg.Duration
				}
			}
		}
	case m3u8.MASTER:
		master := pl.(*m3u8.MasterPlaylist)
		if len(master.Variants) == 0 {
			p.fail("master playlist has no variants")
			return
		}
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.duration = duration
	p.mu.Unlock()

	logger.Debug("{hls - Load} manifest ready for %s", utils.LogURL(p.cfg, p.url))
	if p.events.OnReady != nil {
		p.events.OnReady()
	}
}

// Play starts position tracking and emits the play notification.
func (p *Pipeline) Play() error {
	p.mu.Lock()
	if p.closed || p.playing {
		p.mu.Unlock()
		return nil
	}
	p.playing = true
	p.startTickerLocked()
	p.mu.Unlock()

	if p.events.OnPlay != nil {
		p.events.OnPlay()
	}
	return nil
}

// Pause stops position tracking and emits the pause notification.
func (p *Pipeline) Pause() {
	p.mu.Lock()
	if p.closed || !p.playing {
		p.mu.Unlock()
		return
	}
	p.playing = false
	p.stopTickerLocked()
	p.mu.Unlock()

	if p.events.OnPause != nil {
		p.events.OnPause()
	}
}

// SetVolume stores the clamped level and echoes it back through OnVolume,
// mirroring how a native playback element reports its own changes.
func (p *Pipeline) SetVolume(level float64, muted bool) {
	level = utils.Clamp(level, 0, 1)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.volume = level
	p.muted = muted
	p.mu.Unlock()

	if p.events.OnVolume != nil {
		p.events.OnVolume(level, muted)
	}
}

// Position reports playback position and duration in seconds.
func (p *Pipeline) Position() (float64, float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position, p.duration
}

// Close tears the session down, stopping the position ticker. Safe to call
// more than once.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	p.playing = false
	p.stopTickerLocked()
}

// startTickerLocked begins advancing the playback position once per second.
// Callers must hold p.mu.
func (p *Pipeline) startTickerLocked() {
	p.ticker = time.NewTicker(time.Second)
	p.tickDone = make(chan struct{})

	go func(ticker *time.Ticker, done chan struct{}) {
		for {
			select {
			case <-ticker.C:
				p.mu.Lock()
				p.position++
				if p.duration > 0 && p.position > p.duration {
					p.position = p.duration
				}
				p.mu.Unlock()
			case <-done:
				return
			}
		}
	}(p.ticker, p.tickDone)
}

// stopTickerLocked halts position tracking. Callers must hold p.mu.
func (p *Pipeline) stopTickerLocked() {
	if p.ticker != nil {
		p.ticker.Stop()
		close(p.tickDone)
		p.ticker = nil
		p.tickDone = nil
	}
}

// fail reports a fatal load error unless the pipeline was already closed.
func (p *Pipeline) fail(reason string) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()

	if closed {
		return
	}

	logger.Error("{hls - Load} %s: %s", utils.LogURL(p.cfg, p.url), reason)
	if p.events.OnError != nil {
		p.events.OnError(reason)
	}
}
