package cache

import (
	"time"

	"github.com/maypok86/otter/v2"
)

// Cache holds the short-lived response caches for the playlist relay and the
// EPG endpoint. Entries expire on a per-write TTL so a relayed playlist is
// never served stale beyond its advertised cache lifetime.
type Cache struct {
	playlists *otter.Cache[string, string] // relayed playlist bodies, keyed by upstream URL
	epg       *otter.Cache[string, string] // serialized EPG responses, keyed by channel+range
}

// New creates a Cache with the given expiration durations for relay
// responses and EPG responses respectively.
func New(relayTTL, epgTTL time.Duration) *Cache {
	return &Cache{
		playlists: otter.Must(&otter.Options[string, string]{
			MaximumSize:      1_000,
			ExpiryCalculator: otter.ExpiryWriting[string, string](relayTTL),
		}),
		epg: otter.Must(&otter.Options[string, string]{
			MaximumSize:      10_000,
			ExpiryCalculator: otter.ExpiryWriting[string, string](epgTTL),
		}),
	}
}

// GetPlaylist retrieves a relayed playlist body from the cache by upstream URL.
func (c *Cache) GetPlaylist(key string) (string, bool) {
	return c.playlists.GetIfPresent(key)
}

// SetPlaylist stores a relayed playlist body in the cache.
func (c *Cache) SetPlaylist(key, value string) {
	c.playlists.Set(key, value)
}

// GetEPG retrieves a serialized EPG response from the cache.
func (c *Cache) GetEPG(key string) (string, bool) {
	return c.epg.GetIfPresent(key)
}

// SetEPG stores a serialized EPG response in the cache.
func (c *Cache) SetEPG(key, value string) {
	c.epg.Set(key, value)
}

// Clear drops every cached entry from both stores.
func (c *Cache) Clear() {
	c.playlists.InvalidateAll()
	c.epg.InvalidateAll()
}
