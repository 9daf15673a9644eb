package config

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"sync"
	"time"
)

// Config holds all application configuration values for the IPTV player
// service. It covers the HTTP listener, playlist sourcing, relay caching,
// favorites persistence, and stream session behavior.
type Config struct {
	BaseURL          string        `json:"baseURL"`          // Base URL for the application (used for links in generated output)
	ListenPort       int           `json:"listenPort"`       // TCP port for the HTTP listener
	PlaylistURL      string        `json:"playlistURL"`      // Playlist fetched and parsed at startup (optional)
	CacheEnabled     bool          `json:"cacheEnabled"`     // Whether relay/EPG response caching is enabled
	CacheDuration    time.Duration `json:"cacheDuration"`    // Lifetime of relay response cache entries
	RefreshInterval  time.Duration `json:"refreshInterval"`  // Interval for re-fetching the configured playlist
	WorkerThreads    int           `json:"workerThreads"`    // Number of worker threads for background tasks
	Debug            bool          `json:"debug"`            // Enable debug logging
	LogLevel         string        `json:"logLevel"`         // Minimum log level (DEBUG/INFO/WARN/ERROR)
	ObfuscateUrls    bool          `json:"obfuscateUrls"`    // Obfuscate URLs in logs for security
	SortField        string        `json:"sortField"`        // Attribute to sort channels by (e.g., tvg-name)
	SortDirection    string        `json:"sortDirection"`    // Sort direction: "asc" or "desc"
	StreamTimeout    time.Duration `json:"streamTimeout"`    // Timeout for manifest fetches during stream loads
	RelayRateLimit   int           `json:"relayRateLimit"`   // Upstream relay requests allowed per second
	UserAgent        string        `json:"userAgent"`        // HTTP User-Agent header for upstream requests
	ReqOrigin        string        `json:"reqOrigin"`        // HTTP Origin header for upstream requests
	ReqReferrer      string        `json:"reqReferrer"`      // HTTP Referer header for upstream requests
	FavoritesBackend string        `json:"favoritesBackend"` // Favorites persistence backend: "file" or "sqlite"
	FavoritesPath    string        `json:"favoritesPath"`    // Path to the favorites file or database
	EPGCacheDuration time.Duration `json:"epgCacheDuration"` // Lifetime of cached EPG responses
	OverlayTimeout   time.Duration `json:"overlayTimeout"`   // Pointer inactivity before the control overlay hides
}

// ConfigFile represents the JSON file structure for marshaling/unmarshaling
// configuration. String duration fields (e.g., "5m") are parsed into
// time.Duration values.
type ConfigFile struct {
	BaseURL          string `json:"baseURL"`
	ListenPort       int    `json:"listenPort"`
	PlaylistURL      string `json:"playlistURL"`
	CacheEnabled     bool   `json:"cacheEnabled"`
	CacheDuration    string `json:"cacheDuration"`   // Duration as string (e.g., "5m")
	RefreshInterval  string `json:"refreshInterval"` // Duration as string (e.g., "12h")
	WorkerThreads    int    `json:"workerThreads"`
	Debug            bool   `json:"debug"`
	LogLevel         string `json:"logLevel"`
	ObfuscateUrls    bool   `json:"obfuscateUrls"`
	SortField        string `json:"sortField"`
	SortDirection    string `json:"sortDirection"`
	StreamTimeout    string `json:"streamTimeout"` // Duration string (e.g., "10s")
	RelayRateLimit   int    `json:"relayRateLimit"`
	UserAgent        string `json:"userAgent"`   // User-Agent header
	ReqOrigin        string `json:"reqOrigin"`   // Origin header
	ReqReferrer      string `json:"reqReferrer"` // Referer header
	FavoritesBackend string `json:"favoritesBackend"`
	FavoritesPath    string `json:"favoritesPath"`
	EPGCacheDuration string `json:"epgCacheDuration"`
	OverlayTimeout   string `json:"overlayTimeout"`
}

var (
	configCache *Config      // Cached configuration instance (singleton)
	configMutex sync.RWMutex // Mutex for safe concurrent access to configCache
)

// configPath may be overridden for tests
var configPath = "/settings/config.json"

// LoadConfig loads the configuration from file or returns the cached instance.
//
// Process:
//   - Uses double-checked locking to avoid redundant reloads.
//   - Attempts to load from `/settings/config.json`.
//   - Falls back to default config if file is missing or invalid.
//   - Runs validation to ensure safe defaults.
func LoadConfig() *Config {
	configMutex.RLock()
	if configCache != nil {
		defer configMutex.RUnlock()
		return configCache
	}
	configMutex.RUnlock()

	configMutex.Lock()
	defer configMutex.Unlock()

	// Double-check under write lock
	if configCache != nil {
		return configCache
	}

	// Attempt to load from file
	config, err := loadFromFile(configPath)
	if err != nil {
		log.Printf("Failed to load config from %s: %v", configPath, err)
		log.Printf("Falling back to default configuration...")
		config = getDefaultConfig()
	}

	// Ensure safe defaults for missing values
	validateAndSetDefaults(config)

	// Cache for future calls
	configCache = config

	if config.Debug {
		log.Printf("Configuration loaded:")
		log.Printf("  Playlist URL: %s", obfuscateURL(config.PlaylistURL))
		log.Printf("  Favorites backend: %s (%s)", config.FavoritesBackend, config.FavoritesPath)
		log.Printf("  Debug: %v", config.Debug)
		log.Printf("  Obfuscate URLs: %v", config.ObfuscateUrls)
	}

	return config
}

// loadFromFile reads and parses the configuration from a JSON file.
func loadFromFile(path string) (*Config, error) {

	// read from the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// unmarshal the config file
	var configFile ConfigFile
	if err := json.Unmarshal(data, &configFile); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	// convert to our settings
	return convertFromFile(&configFile)
}

// convertFromFile converts a ConfigFile to Config,
// parsing duration strings into time.Duration.
func convertFromFile(cf *ConfigFile) (*Config, error) {
	config := &Config{
		BaseURL:          cf.BaseURL,
		ListenPort:       cf.ListenPort,
		PlaylistURL:      cf.PlaylistURL,
		CacheEnabled:     cf.CacheEnabled,
		WorkerThreads:    cf.WorkerThreads,
		Debug:            cf.Debug,
		LogLevel:         cf.LogLevel,
		ObfuscateUrls:    cf.ObfuscateUrls,
		SortField:        cf.SortField,
		SortDirection:    cf.SortDirection,
		RelayRateLimit:   cf.RelayRateLimit,
		UserAgent:        cf.UserAgent,
		ReqOrigin:        cf.ReqOrigin,
		ReqReferrer:      cf.ReqReferrer,
		FavoritesBackend: cf.FavoritesBackend,
		FavoritesPath:    cf.FavoritesPath,
	}

	// Parse duration fields
	var err error
	if config.CacheDuration, err = time.ParseDuration(cf.CacheDuration); err != nil {
		return nil, fmt.Errorf("invalid cacheDuration: %w", err)
	}
	if config.RefreshInterval, err = time.ParseDuration(cf.RefreshInterval); err != nil {
		return nil, fmt.Errorf("invalid refreshInterval: %w", err)
	}
	if config.StreamTimeout, err = time.ParseDuration(cf.StreamTimeout); err != nil {
		return nil, fmt.Errorf("invalid streamTimeout: %w", err)
	}
	if config.EPGCacheDuration, err = time.ParseDuration(cf.EPGCacheDuration); err != nil {
		return nil, fmt.Errorf("invalid epgCacheDuration: %w", err)
	}
	if config.OverlayTimeout, err = time.ParseDuration(cf.OverlayTimeout); err != nil {
		return nil, fmt.Errorf("invalid overlayTimeout: %w", err)
	}

	return config, nil
}

// getDefaultConfig returns a baseline configuration
// with sensible defaults when no file is present.
func getDefaultConfig() *Config {
	return &Config{
		BaseURL:          "http://localhost:8080",
		ListenPort:       8080,
		PlaylistURL:      "",
		CacheEnabled:     true,
		CacheDuration:    5 * time.Minute, // relay responses stay cacheable for 300s
		RefreshInterval:  12 * time.Hour,
		WorkerThreads:    8,
		Debug:            false,
		LogLevel:         "INFO",
		ObfuscateUrls:    false,
		SortField:        "tvg-name",
		SortDirection:    "asc",
		StreamTimeout:    10 * time.Second,
		RelayRateLimit:   10,
		UserAgent:        "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
		FavoritesBackend: "file",
		FavoritesPath:    "/settings/favorites.json",
		EPGCacheDuration: 30 * time.Minute,
		OverlayTimeout:   3 * time.Second,
	}
}

// validateAndSetDefaults ensures all config values are valid,
// filling in defaults for missing/invalid ones.
func validateAndSetDefaults(config *Config) {
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:8080"
	}
	if config.ListenPort <= 0 || config.ListenPort > 65535 {
		config.ListenPort = 8080
	}
	if config.CacheDuration <= 0 {
		config.CacheDuration = 5 * time.Minute
	}
	if config.RefreshInterval <= 0 {
		config.RefreshInterval = 12 * time.Hour
	}
	if config.WorkerThreads <= 0 {
		config.WorkerThreads = 8
	}
	if config.LogLevel == "" {
		config.LogLevel = "INFO"
	}
	if config.SortField == "" {
		config.SortField = "tvg-name"
	}
	if config.SortDirection != "desc" {
		config.SortDirection = "asc"
	}
	if config.StreamTimeout <= 0 {
		config.StreamTimeout = 10 * time.Second
	}
	if config.RelayRateLimit <= 0 {
		config.RelayRateLimit = 10
	}
	if config.UserAgent == "" {
		config.UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	}
	if config.FavoritesBackend != "sqlite" {
		config.FavoritesBackend = "file"
	}
	if config.FavoritesPath == "" {
		if config.FavoritesBackend == "sqlite" {
			config.FavoritesPath = "/settings/favorites.db"
		} else {
			config.FavoritesPath = "/settings/favorites.json"
		}
	}
	if config.EPGCacheDuration <= 0 {
		config.EPGCacheDuration = 30 * time.Minute
	}
	if config.OverlayTimeout <= 0 {
		config.OverlayTimeout = 3 * time.Second
	}
	// ReqOrigin and ReqReferrer may remain empty
}

// CreateExampleConfig creates an example config file on disk.
func CreateExampleConfig(path string) error {
	example := ConfigFile{
		BaseURL:          "http://localhost:8080",
		ListenPort:       8080,
		PlaylistURL:      "http://example.com/playlist.m3u8",
		CacheEnabled:     true,
		CacheDuration:    "5m",
		RefreshInterval:  "12h",
		WorkerThreads:    4,
		Debug:            false,
		LogLevel:         "INFO",
		ObfuscateUrls:    true,
		SortField:        "tvg-name",
		SortDirection:    "asc",
		StreamTimeout:    "10s",
		RelayRateLimit:   10,
		UserAgent:        "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
		ReqOrigin:        "",
		ReqReferrer:      "",
		FavoritesBackend: "file",
		FavoritesPath:    "/settings/favorites.json",
		EPGCacheDuration: "30m",
		OverlayTimeout:   "3s",
	}

	// setup the data properly
	data, err := json.MarshalIndent(example, "", "  ")
	if err != nil {
		return err
	}

	// write the config file
	return os.WriteFile(path, data, 0644)
}

// ClearConfigCache resets the configCache to nil.
// Forces a reload on the next LoadConfig() call.
func ClearConfigCache() {
	configMutex.Lock()
	defer configMutex.Unlock()
	configCache = nil
}

// obfuscateURL masks sensitive parts of a URL for logging.
//
// Example:
//
//	Input:  "http://example.com/secret/stream.m3u8?token=abc"
//	Output: "http://example.com/***?***"
func obfuscateURL(urlStr string) string {
	if urlStr == "" {
		return ""
	}
	u, err := url.Parse(urlStr)
	if err != nil {
		return "***OBFUSCATED***"
	}
	result := u.Scheme + "://" + u.Host
	if u.Path != "" && u.Path != "/" {
		result += "/***"
	}
	if u.RawQuery != "" {
		result += "?***"
	}
	if u.Fragment != "" {
		result += "#***"
	}
	return result
}
