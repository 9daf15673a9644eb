package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"iptv-player/work/handlers"
	"iptv-player/work/logger"
	"iptv-player/work/middleware"
	"iptv-player/work/player"

	"github.com/gorilla/mux"
)

// reloadChan signals the graceful-reload loop in main.
var reloadChan = make(chan bool, 1)

// StatsResponse summarizes the running service for the stats endpoint:
// playlist size, favorites, session state, and process-level numbers.
type StatsResponse struct {
	TotalChannels int    `json:"totalChannels"`
	TotalGroups   int    `json:"totalGroups"`
	Favorites     int    `json:"favorites"`
	SessionState  string `json:"sessionState"`
	Channel       string `json:"channel,omitempty"`
	Uptime        string `json:"uptime"`
	MemoryUsage   string `json:"memoryUsage"`
	WorkerThreads int    `json:"workerThreads"`
	Version       string `json:"version"`
}

// setupAPIRoutes registers the player API. JSON endpoints get transparent
// gzip; the relay route stays uncompressed since playlist bodies are served
// verbatim.
func setupAPIRoutes(router *mux.Router, p *player.Player) {

	gz := middleware.Gzip

	// playlist management
	router.HandleFunc("/api/playlist/load", gz(handlers.HandleLoadPlaylist(p))).Methods("POST")

	// channel registry
	router.HandleFunc("/api/channels", gz(handlers.HandleChannels(p))).Methods("GET")
	router.HandleFunc("/api/channels/{id}", gz(handlers.HandleChannel(p))).Methods("GET")
	router.HandleFunc("/api/groups", gz(handlers.HandleGroups(p))).Methods("GET")
	router.HandleFunc("/api/search", gz(handlers.HandleSearch(p))).Methods("GET")

	// favorites
	router.HandleFunc("/api/favorites", gz(handlers.HandleFavoritesList(p))).Methods("GET")
	router.HandleFunc("/api/favorites", gz(handlers.HandleFavoritesClear(p))).Methods("DELETE")
	router.HandleFunc("/api/favorites/{id}", gz(handlers.HandleFavoriteAdd(p))).Methods("POST")
	router.HandleFunc("/api/favorites/{id}", gz(handlers.HandleFavoriteRemove(p))).Methods("DELETE")
	router.HandleFunc("/api/favorites/{id}/toggle", gz(handlers.HandleFavoriteToggle(p))).Methods("POST")

	// stream session
	router.HandleFunc("/api/session", gz(handlers.HandleSessionState(p))).Methods("GET")
	router.HandleFunc("/api/session/select/{id}", gz(handlers.HandleSessionSelect(p))).Methods("POST")
	router.HandleFunc("/api/session/toggle", gz(handlers.HandleSessionToggle(p))).Methods("POST")
	router.HandleFunc("/api/session/retry", gz(handlers.HandleSessionRetry(p))).Methods("POST")
	router.HandleFunc("/api/session/volume", gz(handlers.HandleSessionVolume(p))).Methods("POST")
	router.HandleFunc("/api/session/mute", gz(handlers.HandleSessionMute(p))).Methods("POST")
	router.HandleFunc("/api/session/fullscreen", gz(handlers.HandleSessionFullscreen(p))).Methods("POST")
	router.HandleFunc("/api/session/key", gz(handlers.HandleSessionKey(p))).Methods("POST")
	router.HandleFunc("/api/session/pointer", gz(handlers.HandleSessionPointer(p))).Methods("POST")
	router.HandleFunc("/api/session/capabilities", gz(handlers.HandleCapabilities(p))).Methods("POST")

	// program guide
	router.HandleFunc("/api/epg/{id}", gz(handlers.HandleEPG(p))).Methods("GET")

	// admin surface
	router.HandleFunc("/api/stats", gz(handleStats(p))).Methods("GET")
	router.HandleFunc("/api/admin/reload", handleReload()).Methods("POST")
	router.HandleFunc("/api/admin/loglevel", handleLogLevel()).Methods("GET", "POST")
}

// handleStats reports service-level statistics.
func handleStats(p *player.Player) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		snapshot := p.Session.Snapshot()

		stats := StatsResponse{
			TotalChannels: p.Registry.Count(),
			TotalGroups:   len(p.Registry.Groups()),
			Favorites:     p.Favorites.Count(),
			SessionState:  string(snapshot.State),
			Channel:       snapshot.ChannelName,
			Uptime:        time.Since(p.StartedAt).Round(time.Second).String(),
			MemoryUsage:   fmt.Sprintf("%.1f MB", float64(mem.Alloc)/(1024*1024)),
			WorkerThreads: p.Config.WorkerThreads,
			Version:       Version,
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stats)
	}
}

// handleReload queues a graceful configuration reload.
func handleReload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case reloadChan <- true:
			w.WriteHeader(http.StatusAccepted)
			fmt.Fprintln(w, "reload queued")
		default:
			w.WriteHeader(http.StatusConflict)
			fmt.Fprintln(w, "reload already pending")
		}
	}
}

// handleLogLevel reads or changes the runtime log level.
func handleLogLevel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"level": logger.GetLogLevel()})
			return
		}

		var body struct {
			Level string `json:"level"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Level == "" {
			http.Error(w, "missing log level", http.StatusBadRequest)
			return
		}

		logger.SetLogLevel(body.Level)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"level": logger.GetLogLevel()})
	}
}
