package playlist

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"iptv-player/work/client"
	"iptv-player/work/config"
)

func fetchConfig() *config.Config {
	return &config.Config{
		StreamTimeout: 5 * time.Second,
		UserAgent:     "TestAgent/1.0",
	}
}

func TestFetchAndParse(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePlaylist))
	}))
	defer upstream.Close()

	cfg := fetchConfig()
	pl, err := FetchAndParse(context.Background(), client.New(cfg), cfg, upstream.URL)
	if err != nil {
		t.Fatalf("FetchAndParse failed: %v", err)
	}
	if pl.Count != 2 {
		t.Errorf("Expected 2 channels, got %d", pl.Count)
	}
}

func TestFetchAndParseUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	cfg := fetchConfig()
	_, err := FetchAndParse(context.Background(), client.New(cfg), cfg, upstream.URL)
	if !errors.Is(err, ErrFetch) {
		t.Errorf("Expected ErrFetch for upstream 404, got %v", err)
	}
}

func TestFetchAndParseNetworkFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	cfg := fetchConfig()
	_, err := FetchAndParse(context.Background(), client.New(cfg), cfg, upstream.URL)
	if !errors.Is(err, ErrFetch) {
		t.Errorf("Expected ErrFetch for connection failure, got %v", err)
	}
}

func TestFetchAndParseGarbageContentStillSucceeds(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not a playlist at all"))
	}))
	defer upstream.Close()

	cfg := fetchConfig()
	pl, err := FetchAndParse(context.Background(), client.New(cfg), cfg, upstream.URL)
	if err != nil {
		t.Fatalf("Expected malformed content to parse as empty, got %v", err)
	}
	if pl.Count != 0 {
		t.Errorf("Expected 0 channels, got %d", pl.Count)
	}
}
