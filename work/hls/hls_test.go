package hls

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"iptv-player/work/client"
	"iptv-player/work/config"
	"iptv-player/work/session"
)

const mediaManifest = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-TARGETDURATION:10
#EXTINF:10.0,
seg0.ts
#EXTINF:10.0,
seg1.ts
#EXTINF:5.0,
seg2.ts
#EXT-X-ENDLIST
`

const liveManifest = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-TARGETDURATION:10
#EXTINF:10.0,
seg0.ts
#EXTINF:10.0,
seg1.ts
`

const masterManifest = `#EXTM3U
#EXT-X-STREAM-INF:BANDWIDTH=1280000,RESOLUTION=1280x720
hi/index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=640000,RESOLUTION=640x360
lo/index.m3u8
`

// eventSink collects pipeline notifications for assertions.
type eventSink struct {
	mu     sync.Mutex
	ready  bool
	errors []string
	plays  int
	pauses int
}

func (s *eventSink) events() session.PipelineEvents {
	return session.PipelineEvents{
		OnReady: func() {
			s.mu.Lock()
			s.ready = true
			s.mu.Unlock()
		},
		OnError: func(reason string) {
			s.mu.Lock()
			s.errors = append(s.errors, reason)
			s.mu.Unlock()
		},
		OnPlay: func() {
			s.mu.Lock()
			s.plays++
			s.mu.Unlock()
		},
		OnPause: func() {
			s.mu.Lock()
			s.pauses++
			s.mu.Unlock()
		},
	}
}

func (s *eventSink) snapshot() (bool, []string, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready, append([]string(nil), s.errors...), s.plays, s.pauses
}

func newPipeline(t *testing.T, url string, sink *eventSink) session.Pipeline {
	t.Helper()
	cfg := &config.Config{
		StreamTimeout: 5 * time.Second,
		UserAgent:     "TestAgent/1.0",
	}
	factory := NewFactory(client.New(cfg), cfg)
	p := factory(url, sink.events())
	t.Cleanup(p.Close)
	return p
}

func manifestServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLoadMediaPlaylist(t *testing.T) {
	srv := manifestServer(t, mediaManifest)
	sink := &eventSink{}
	p := newPipeline(t, srv.URL, sink)

	p.Load(context.Background())

	ready, errs, _, _ := sink.snapshot()
	if !ready {
		t.Fatalf("Expected ready, got errors %v", errs)
	}

	// a closed media playlist yields the summed segment duration
	_, dur := p.Position()
	if dur != 25.0 {
		t.Errorf("Expected duration 25s, got %v", dur)
	}
}

func TestLoadLivePlaylistHasZeroDuration(t *testing.T) {
	srv := manifestServer(t, liveManifest)
	sink := &eventSink{}
	p := newPipeline(t, srv.URL, sink)

	p.Load(context.Background())

	ready, errs, _, _ := sink.snapshot()
	if !ready {
		t.Fatalf("Expected ready, got errors %v", errs)
	}
	if _, dur := p.Position(); dur != 0 {
		t.Errorf("Expected live stream duration 0, got %v", dur)
	}
}

func TestLoadMasterPlaylist(t *testing.T) {
	srv := manifestServer(t, masterManifest)
	sink := &eventSink{}
	p := newPipeline(t, srv.URL, sink)

	p.Load(context.Background())

	ready, errs, _, _ := sink.snapshot()
	if !ready {
		t.Errorf("Expected master playlist with variants to be ready, got %v", errs)
	}
}

func TestLoadUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	sink := &eventSink{}
	p := newPipeline(t, srv.URL, sink)

	p.Load(context.Background())

	ready, errs, _, _ := sink.snapshot()
	if ready {
		t.Error("Expected no ready on upstream error")
	}
	if len(errs) != 1 || !strings.Contains(errs[0], "HTTP 403") {
		t.Errorf("Expected HTTP 403 error, got %v", errs)
	}
}

func TestLoadGarbageManifest(t *testing.T) {
	srv := manifestServer(t, "<html>not a manifest</html>")
	sink := &eventSink{}
	p := newPipeline(t, srv.URL, sink)

	p.Load(context.Background())

	ready, errs, _, _ := sink.snapshot()
	if ready {
		t.Error("Expected no ready on decode failure")
	}
	if len(errs) != 1 {
		t.Errorf("Expected one decode error, got %v", errs)
	}
}

func TestLoadNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	sink := &eventSink{}
	p := newPipeline(t, srv.URL, sink)

	p.Load(context.Background())

	ready, errs, _, _ := sink.snapshot()
	if ready || len(errs) != 1 {
		t.Errorf("Expected one network error, got ready=%v errors=%v", ready, errs)
	}
}

func TestPlayPauseNotifications(t *testing.T) {
	srv := manifestServer(t, liveManifest)
	sink := &eventSink{}
	p := newPipeline(t, srv.URL, sink)
	p.Load(context.Background())

	if err := p.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	// a second Play while already playing stays silent
	if err := p.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	p.Pause()
	// pausing while paused stays silent too
	p.Pause()

	_, _, plays, pauses := sink.snapshot()
	if plays != 1 {
		t.Errorf("Expected one play notification, got %d", plays)
	}
	if pauses != 1 {
		t.Errorf("Expected one pause notification, got %d", pauses)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	srv := manifestServer(t, liveManifest)
	sink := &eventSink{}
	p := newPipeline(t, srv.URL, sink)
	p.Load(context.Background())
	p.Play()

	p.Close()
	p.Close()

	// a closed pipeline ignores further commands
	if err := p.Play(); err != nil {
		t.Fatalf("Play after close failed: %v", err)
	}
	_, _, plays, _ := sink.snapshot()
	if plays != 1 {
		t.Errorf("Expected no play notification after close, got %d", plays)
	}
}
