package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"iptv-player/work/cache"
	"iptv-player/work/client"
	"iptv-player/work/config"
	"iptv-player/work/display"
	"iptv-player/work/epg"
	"iptv-player/work/favorites"
	"iptv-player/work/handlers"
	"iptv-player/work/hls"
	"iptv-player/work/logger"
	"iptv-player/work/player"
	"iptv-player/work/registry"
	"iptv-player/work/relay"
	"iptv-player/work/session"
	"iptv-player/work/storage"
	"iptv-player/work/utils"
)

var (
	Version = "v0.1.0" // default version
)

// our main app worker
func main() {

	// load our config
	cfg := config.LoadConfig()

	// set up logging
	logger.SetLogLevel(cfg.LogLevel)
	if cfg.Debug {
		logger.SetLogLevel("DEBUG")
	}

	// Initialize worker pool
	workerPool, err := ants.NewPool(cfg.WorkerThreads, ants.WithPreAlloc(true))
	if err != nil {
		log.Fatalf("Failed to create worker pool: %v", err)
	}
	defer workerPool.Release()

	// Initialize HTTP client
	httpClient := client.New(cfg)

	// Initialize response caches
	cacheInstance := cache.New(cfg.CacheDuration, cfg.EPGCacheDuration)

	// Open the favorites backing store
	backing, err := openStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to open favorites storage: %v", err)
	}
	defer backing.Close()

	// Assemble the player
	favStore := favorites.New(backing)
	reg := registry.New()
	disp := display.NewManager(nil)
	sess := session.New(cfg, workerPool, hls.NewFactory(httpClient, cfg), disp)
	rel := relay.New(cfg, httpClient, cacheInstance)
	guide := epg.NewMockSource()

	playerInstance := player.New(cfg, reg, favStore, sess, disp, rel, guide,
		cacheInstance, httpClient, workerPool)

	// Start background playlist refresh
	go playerInstance.StartRefresh()

	// Initial import
	playerInstance.ImportInitial()

	// Setup HTTP routes
	router := mux.NewRouter()

	// Playlist relay (CORS passthrough)
	router.HandleFunc("/api/playlist", handlers.HandleRelay(playerInstance)).Methods("GET")

	// the rest of the player API
	setupAPIRoutes(router, playerInstance)

	// Metrics handler
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	addr := fmt.Sprintf(":%d", cfg.ListenPort)

	// show info
	logger.Info("Starting IPTV Player %s", Version)
	logger.Info("Server configuration:")
	logger.Info("  - Base URL: %s", cfg.BaseURL)
	logger.Info("  - Worker Threads: %d", cfg.WorkerThreads)
	logger.Info("  - Playlist URL: %s", utils.LogURL(cfg, cfg.PlaylistURL))
	logger.Info("  - Cache Enabled: %v", cfg.CacheEnabled)
	logger.Info("  - Cache Duration: %s", cfg.CacheDuration)
	logger.Info("  - Playlist Refresh Rate: %s", cfg.RefreshInterval)
	logger.Info("  - Favorites Backend: %s", cfg.FavoritesBackend)
	logger.Info("  - Channel Sort Attr.: %s", cfg.SortField)
	logger.Info("  - Channel Sort Dir.: %s", cfg.SortDirection)
	logger.Info("  - Debug Enabled: %v", cfg.Debug)
	logger.Info("  - URL Obfuscation: %v", cfg.ObfuscateUrls)

	// gracefully reload if it's requested to do.
	go func() {

		// start a loop
		for {
			<-reloadChan

			logger.Info("Graceful reload requested...")

			// Stop background refresh and the active stream session
			playerInstance.Shutdown()

			// clear config cache first
			config.ClearConfigCache()

			// Reload config from file; values are copied into the shared
			// Config so every component picks them up
			newConfig := config.LoadConfig()
			playerInstance.ApplyConfig(newConfig)
			logger.SetLogLevel(newConfig.LogLevel)

			// Drop cached responses and re-import
			cacheInstance.Clear()
			playerInstance.ImportInitial()
			go playerInstance.StartRefresh()

			logger.Info("Graceful reload completed")

		}

	}()

	// fire us up
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}

}

// openStorage picks the favorites backing store from configuration.
func openStorage(cfg *config.Config) (storage.Store, error) {
	if cfg.FavoritesBackend == "sqlite" {
		return storage.NewSQLiteStore(cfg.FavoritesPath)
	}
	return storage.NewFileStore(cfg.FavoritesPath)
}
