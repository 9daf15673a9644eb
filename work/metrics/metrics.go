package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PlaylistParses counts playlist parse operations by outcome ("ok" or "fetch_error").
// Individual malformed entries are skipped silently and do not count as failures.
var PlaylistParses = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "iptv_player_playlist_parses",
	Help: "Number of playlist parse operations",
}, []string{"result"})

// ChannelsParsed tracks the channel count of the most recently parsed playlist.
var ChannelsParsed = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "iptv_player_channels_parsed",
	Help: "Channels in the active playlist",
})

// RelayRequests counts playlist relay requests by response class
// ("ok", "bad_request", "upstream_error", "fetch_error", "cached").
var RelayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "iptv_player_relay_requests",
	Help: "Number of playlist relay requests",
}, []string{"result"})

// SessionTransitions counts stream session state transitions labeled by the
// state being entered.
var SessionTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "iptv_player_session_transitions",
	Help: "Number of stream session state transitions",
}, []string{"state"})

// SessionErrors counts fatal stream pipeline errors per channel.
var SessionErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "iptv_player_session_errors",
	Help: "Number of fatal stream session errors",
}, []string{"channel"})

// FavoritesCount tracks the current number of favorite channel identifiers.
var FavoritesCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "iptv_player_favorites",
	Help: "Number of favorite channels",
})
