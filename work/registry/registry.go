package registry

import (
	"sync"

	"iptv-player/work/metrics"
	"iptv-player/work/playlist"

	"github.com/puzpuzpuz/xsync/v3"
)

// Registry owns the active channel list and the current selection cursor.
// A playlist reload replaces the list wholesale; there is no incremental
// update. Identifier lookups go through a concurrent map so handlers can
// resolve channels without taking the registry lock.
type Registry struct {
	mu       sync.RWMutex
	channels []playlist.Channel
	byID     *xsync.MapOf[string, *playlist.Channel]
	current  int // index into channels, -1 when nothing is selected
}

// New returns an empty Registry with no selection.
func New() *Registry {
	return &Registry{
		byID:    xsync.NewMapOf[string, *playlist.Channel](),
		current: -1,
	}
}

// Replace swaps in the channels of a freshly parsed playlist and clears the
// selection. Favorites referencing identifiers absent from the new list
// become orphaned, not deleted; that is the favorites store's concern, not
// ours. When two identifiers collide after truncation the later channel
// wins the id lookup, matching the parser's documented weakness.
func (r *Registry) Replace(pl *playlist.Playlist) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.channels = pl.Channels
	r.current = -1

	fresh := xsync.NewMapOf[string, *playlist.Channel]()
	for i := range r.channels {
		fresh.Store(r.channels[i].ID, &r.channels[i])
	}
	r.byID = fresh

	metrics.ChannelsParsed.Set(float64(len(r.channels)))
}

// Channels returns the channel list in playlist order.
func (r *Registry) Channels() []playlist.Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]playlist.Channel, len(r.channels))
	copy(out, r.channels)
	return out
}

// Count returns the number of channels in the active playlist.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}

// Get resolves a channel by identifier.
func (r *Registry) Get(id string) (*playlist.Channel, bool) {
	r.mu.RLock()
	byID := r.byID
	r.mu.RUnlock()

	return byID.Load(id)
}

// Select moves the cursor to the channel with the given identifier and
// returns it.
func (r *Registry) Select(id string) (*playlist.Channel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.channels {
		if r.channels[i].ID == id {
			r.current = i
			return &r.channels[i], true
		}
	}
	return nil, false
}

// Current returns the selected channel, if any.
func (r *Registry) Current() (*playlist.Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.current < 0 || r.current >= len(r.channels) {
		return nil, false
	}
	return &r.channels[r.current], true
}

// Next advances the cursor with wraparound: from the last channel it moves
// to the first. With no prior selection it starts at index 0.
func (r *Registry) Next() (*playlist.Channel, bool) {
	return r.step(1)
}

// Prev moves the cursor backwards with wraparound: from index 0 it lands on
// the last channel.
func (r *Registry) Prev() (*playlist.Channel, bool) {
	return r.step(-1)
}

func (r *Registry) step(delta int) (*playlist.Channel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.channels)
	if n == 0 {
		return nil, false
	}

	if r.current < 0 {
		r.current = 0
	} else {
		r.current = (r.current + delta + n) % n
	}
	return &r.channels[r.current], true
}

// Groups returns the channel list partitioned by category.
func (r *Registry) Groups() map[string][]playlist.Channel {
	return playlist.GroupByCategory(r.Channels())
}

// Search filters the channel list by a free-text query.
func (r *Registry) Search(query string) []playlist.Channel {
	return playlist.Search(r.Channels(), query)
}
