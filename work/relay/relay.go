// Package relay implements the playlist fetch passthrough: it exists purely
// so a browser client can load playlists that its own cross-origin rules
// would block. No business logic lives here.
package relay

import (
	"context"
	"io"
	"net/http"

	"iptv-player/work/cache"
	"iptv-player/work/client"
	"iptv-player/work/config"
	"iptv-player/work/logger"
	"iptv-player/work/metrics"
	"iptv-player/work/utils"

	"go.uber.org/ratelimit"
)

// Relay forwards playlist requests upstream with the application's fixed
// browser-identifying header set and hands the body back verbatim.
// Successful responses are cached for the configured lifetime.
type Relay struct {
	cfg     *config.Config
	client  *client.BrowserClient
	cache   *cache.Cache
	limiter ratelimit.Limiter
}

// New builds a Relay sharing the application's client and cache.
func New(cfg *config.Config, httpClient *client.BrowserClient, c *cache.Cache) *Relay {
	return &Relay{
		cfg:     cfg,
		client:  httpClient,
		cache:   c,
		limiter: ratelimit.New(cfg.RelayRateLimit),
	}
}

// Handle serves GET /api/playlist?url=<encoded-URL>.
//
// Responses:
//   - 400 when the url parameter is missing
//   - upstream status passthrough (with body) on non-success
//   - 500 on any network-level exception
//   - 200 with the raw playlist text otherwise
func (rl *Relay) Handle(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		metrics.RelayRequests.WithLabelValues("bad_request").Inc()
		writeHeaders(w)
		http.Error(w, "missing url parameter", http.StatusBadRequest)
		return
	}

	if rl.cfg.CacheEnabled {
		if body, ok := rl.cache.GetPlaylist(target); ok {
			metrics.RelayRequests.WithLabelValues("cached").Inc()
			writeHeaders(w)
			w.WriteHeader(http.StatusOK)
			io.WriteString(w, body)
			return
		}
	}

	rl.limiter.Take()

	ctx, cancel := context.WithTimeout(r.Context(), rl.cfg.StreamTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		metrics.RelayRequests.WithLabelValues("bad_request").Inc()
		writeHeaders(w)
		http.Error(w, "invalid url parameter", http.StatusBadRequest)
		return
	}

	resp, err := rl.client.Do(req)
	if err != nil {
		logger.Error("{relay - Handle} fetch failed for %s: %v", utils.LogURL(rl.cfg, target), err)
		metrics.RelayRequests.WithLabelValues("fetch_error").Inc()
		writeHeaders(w)
		http.Error(w, "failed to fetch playlist", http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("{relay - Handle} read failed for %s: %v", utils.LogURL(rl.cfg, target), err)
		metrics.RelayRequests.WithLabelValues("fetch_error").Inc()
		writeHeaders(w)
		http.Error(w, "failed to read playlist", http.StatusInternalServerError)
		return
	}

	writeHeaders(w)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn("{relay - Handle} upstream HTTP %d for %s", resp.StatusCode, utils.LogURL(rl.cfg, target))
		metrics.RelayRequests.WithLabelValues("upstream_error").Inc()
		w.WriteHeader(resp.StatusCode)
		w.Write(body)
		return
	}

	if rl.cfg.CacheEnabled {
		rl.cache.SetPlaylist(target, string(body))
	}

	metrics.RelayRequests.WithLabelValues("ok").Inc()
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// writeHeaders stamps the fixed response header set: plain text body,
// permissive CORS, and a 300 second cache lifetime.
func writeHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	h.Set("Cache-Control", "public, max-age=300")
}
