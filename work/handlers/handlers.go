// Package handlers exposes the player over HTTP. Every handler is a closure
// over the central player instance.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"iptv-player/work/display"
	"iptv-player/work/logger"
	"iptv-player/work/player"
	"iptv-player/work/playlist"

	"github.com/gorilla/mux"
)

// ChannelResponse is the channel view served by the API, a playlist channel
// plus its favorite flag.
type ChannelResponse struct {
	playlist.Channel
	Favorite bool `json:"favorite"`
}

func toResponse(p *player.Player, channels []playlist.Channel) []ChannelResponse {
	out := make([]ChannelResponse, 0, len(channels))
	for _, ch := range channels {
		out = append(out, ChannelResponse{
			Channel:  ch,
			Favorite: p.Favorites.Has(ch.ID),
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("{handlers - writeJSON} encode failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// HandleRelay proxies a remote playlist fetch (CORS dodge, no logic).
func HandleRelay(p *player.Player) http.HandlerFunc {
	return p.Relay.Handle
}

// HandleLoadPlaylist fetches and installs a playlist from the posted URL.
func HandleLoadPlaylist(p *player.Player) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.URL == "" {
			writeError(w, http.StatusBadRequest, "missing playlist url")
			return
		}

		pl, err := p.LoadPlaylist(r.Context(), body.URL)
		if err != nil {
			if errors.Is(err, playlist.ErrFetch) {
				writeError(w, http.StatusBadGateway, "could not fetch playlist, check the URL and try again")
				return
			}
			writeError(w, http.StatusInternalServerError, "playlist load failed")
			return
		}

		writeJSON(w, http.StatusOK, map[string]int{"count": pl.Count})
	}
}

// HandleChannels lists the active playlist in order.
func HandleChannels(p *player.Player) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, toResponse(p, p.Registry.Channels()))
	}
}

// HandleChannel resolves one channel by identifier.
func HandleChannel(p *player.Player) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		ch, ok := p.Registry.Get(id)
		if !ok {
			writeError(w, http.StatusNotFound, "channel not found")
			return
		}
		writeJSON(w, http.StatusOK, ChannelResponse{Channel: *ch, Favorite: p.Favorites.Has(id)})
	}
}

// HandleGroups returns channels partitioned by category, with ungrouped
// channels under the Uncategorized label. The labels list carries the
// display order: alphabetical with Uncategorized last.
func HandleGroups(p *player.Player) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		channels := p.Registry.Channels()
		groups := playlist.GroupByCategory(channels)
		out := make(map[string][]ChannelResponse, len(groups))
		for label, members := range groups {
			out[label] = toResponse(p, members)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"labels": playlist.GroupLabels(channels),
			"groups": out,
		})
	}
}

// HandleSearch filters channels by a free-text query.
func HandleSearch(p *player.Player) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		writeJSON(w, http.StatusOK, toResponse(p, p.Registry.Search(q)))
	}
}

// HandleFavoritesList returns the favorite identifiers in insertion order.
func HandleFavoritesList(p *player.Player) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ids":   p.Favorites.List(),
			"count": p.Favorites.Count(),
		})
	}
}

// HandleFavoriteAdd adds a channel identifier to the favorites set.
func HandleFavoriteAdd(p *player.Player) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		p.Favorites.Add(id)
		writeJSON(w, http.StatusOK, map[string]bool{"favorite": true})
	}
}

// HandleFavoriteRemove removes a channel identifier from the favorites set.
func HandleFavoriteRemove(p *player.Player) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		p.Favorites.Remove(id)
		writeJSON(w, http.StatusOK, map[string]bool{"favorite": false})
	}
}

// HandleFavoriteToggle flips membership and reports the resulting state.
func HandleFavoriteToggle(p *player.Player) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		writeJSON(w, http.StatusOK, map[string]bool{"favorite": p.Favorites.Toggle(id)})
	}
}

// HandleFavoritesClear wipes the favorites set.
func HandleFavoritesClear(p *player.Player) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.Favorites.Clear()
		writeJSON(w, http.StatusOK, map[string]int{"count": 0})
	}
}

// HandleSessionSelect switches the stream session to the chosen channel.
func HandleSessionSelect(p *player.Player) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		if !p.SelectChannel(id) {
			writeError(w, http.StatusNotFound, "channel not found")
			return
		}
		writeJSON(w, http.StatusOK, p.Session.Snapshot())
	}
}

// HandleSessionState returns the current session snapshot.
func HandleSessionState(p *player.Player) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, p.Session.Snapshot())
	}
}

// HandleSessionToggle flips play/pause.
func HandleSessionToggle(p *player.Player) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.Session.TogglePlay()
		writeJSON(w, http.StatusOK, p.Session.Snapshot())
	}
}

// HandleSessionRetry re-invokes the load step after an error.
func HandleSessionRetry(p *player.Player) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.Session.Retry()
		writeJSON(w, http.StatusOK, p.Session.Snapshot())
	}
}

// HandleSessionVolume sets the volume level, clamped to [0,1].
func HandleSessionVolume(p *player.Player) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Level float64 `json:"level"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "missing volume level")
			return
		}
		p.Session.SetVolume(body.Level)
		writeJSON(w, http.StatusOK, p.Session.Snapshot())
	}
}

// HandleSessionMute toggles the mute flag.
func HandleSessionMute(p *player.Player) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.Session.ToggleMute()
		writeJSON(w, http.StatusOK, p.Session.Snapshot())
	}
}

// HandleSessionFullscreen toggles fullscreen through the strategy chain.
// When no strategy works the user is told so synchronously.
func HandleSessionFullscreen(p *player.Player) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := p.Session.ToggleFullscreen(); err != nil {
			if errors.Is(err, display.ErrUnsupported) {
				writeError(w, http.StatusNotImplemented, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "fullscreen toggle failed")
			return
		}
		writeJSON(w, http.StatusOK, p.Session.Snapshot())
	}
}

// HandleSessionKey dispatches one key press through the shortcut table.
func HandleSessionKey(p *player.Player) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Key string `json:"key"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Key == "" {
			writeError(w, http.StatusBadRequest, "missing key")
			return
		}

		handled := p.Keymap.Handle(body.Key)
		writeJSON(w, http.StatusOK, map[string]any{
			"handled": handled,
			"session": p.Session.Snapshot(),
		})
	}
}

// HandleSessionPointer records pointer activity, restarting the control
// overlay's hide countdown.
func HandleSessionPointer(p *player.Player) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.Overlay.Touch()
		writeJSON(w, http.StatusOK, p.Session.Snapshot())
	}
}

// HandleCapabilities records the fullscreen capability tokens the connected
// client advertises.
func HandleCapabilities(p *player.Player) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Capabilities []string `json:"capabilities"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "missing capabilities")
			return
		}
		p.Display.SetCapabilities(body.Capabilities)
		writeJSON(w, http.StatusOK, map[string]any{"capabilities": p.Display.Capabilities()})
	}
}

// HandleEPG serves guide data for one channel over an optional date range,
// defaulting to the current day. Responses are cached.
func HandleEPG(p *player.Player) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		if _, ok := p.Registry.Get(id); !ok {
			writeError(w, http.StatusNotFound, "channel not found")
			return
		}

		from, to, err := parseRange(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		cacheKey := id + "|" + from.Format(time.RFC3339) + "|" + to.Format(time.RFC3339)
		if p.Config.CacheEnabled {
			if cached, ok := p.Cache.GetEPG(cacheKey); ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(cached))
				return
			}
		}

		programs, err := p.EPG.Programs(r.Context(), id, from, to)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		raw, err := json.Marshal(programs)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to encode guide data")
			return
		}

		if p.Config.CacheEnabled {
			p.Cache.SetEPG(cacheKey, string(raw))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(raw)
	}
}

// parseRange reads optional from/to RFC 3339 query parameters, defaulting
// to the current day's midnight-to-midnight window.
func parseRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.Add(24 * time.Hour)

	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return from, to, errors.New("invalid from parameter")
		}
		from = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return from, to, errors.New("invalid to parameter")
		}
		to = parsed
	}
	return from, to, nil
}
