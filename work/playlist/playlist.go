package playlist

import (
	"encoding/base64"
	"strings"

	"github.com/grafana/regexp"
)

// attrRegex matches key=value attributes on an #EXTINF line. Keys may contain
// internal hyphens; values are either double-quoted (may contain spaces) or a
// bare token.
var attrRegex = regexp.MustCompile(`([a-zA-Z0-9-]+)=("[^"]*"|[^\s",]+)`)

// nonAlnumRegex strips everything that is not a letter or digit, used when
// deriving channel identifiers.
var nonAlnumRegex = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Channel is a single playlist entry. Channels are created during parsing
// and are immutable afterwards; a playlist reload replaces them wholesale.
type Channel struct {
	ID         string            `json:"id"`                 // Stable identifier derived from name+URL
	Name       string            `json:"name"`               // Display name (text after the final comma)
	URL        string            `json:"url"`                // Stream URL from the line following the marker
	Group      string            `json:"group,omitempty"`    // group-title attribute
	Logo       string            `json:"logo,omitempty"`     // tvg-logo attribute
	Country    string            `json:"country,omitempty"`  // tvg-country attribute
	Language   string            `json:"language,omitempty"` // tvg-language attribute
	TvgID      string            `json:"tvgId,omitempty"`    // tvg-id attribute (EPG linkage)
	TvgName    string            `json:"tvgName,omitempty"`  // tvg-name attribute (EPG linkage)
	Attributes map[string]string `json:"-"`                  // Raw key/value attributes from the marker line
}

// Playlist is the ordered result of a single parse call.
type Playlist struct {
	Channels []Channel `json:"channels"`
	Count    int       `json:"count"`
}

// Uncategorized is the group label assigned to channels without a
// group-title attribute.
const Uncategorized = "Uncategorized"

// unknownName substitutes for a marker line carrying no comma at all.
const unknownName = "Unknown Channel"

// Parse turns raw M3U text into an ordered Playlist. A #EXTINF marker line
// pairs with the next non-comment line as its stream URL; URL lines without
// a preceding marker are dropped. Parsing never fails as a whole: a bad
// entry is skipped and scanning continues.
func Parse(content string) *Playlist {
	var channels []Channel
	var pending *Channel

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#EXTINF:") {
			ch := parseMarkerLine(line)
			pending = &ch
			continue
		}

		if strings.HasPrefix(line, "#") {
			// EXTM3U header or other directives; never a URL
			continue
		}

		if pending != nil {
			pending.URL = line
			pending.ID = DeriveID(pending.Name, pending.URL)
			channels = append(channels, *pending)
			pending = nil
		}
	}

	return &Playlist{
		Channels: channels,
		Count:    len(channels),
	}
}

// parseMarkerLine extracts attributes and the display name from an #EXTINF
// line. Absent attributes leave the corresponding field empty, never
// defaulted.
func parseMarkerLine(line string) Channel {
	body := strings.TrimPrefix(line, "#EXTINF:")

	attrs := make(map[string]string)
	for _, m := range attrRegex.FindAllStringSubmatch(body, -1) {
		attrs[m[1]] = strings.Trim(m[2], `"`)
	}

	name := unknownName
	if i := lastCommaOutsideQuotes(body); i >= 0 {
		if n := strings.TrimSpace(body[i+1:]); n != "" {
			name = n
		}
	}

	return Channel{
		Name:       name,
		Group:      attrs["group-title"],
		Logo:       attrs["tvg-logo"],
		Country:    attrs["tvg-country"],
		Language:   attrs["tvg-language"],
		TvgID:      attrs["tvg-id"],
		TvgName:    attrs["tvg-name"],
		Attributes: attrs,
	}
}

// lastCommaOutsideQuotes finds the comma separating the attribute section
// from the display name, ignoring commas inside quoted attribute values.
func lastCommaOutsideQuotes(s string) int {
	inQuotes := false
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				return i
			}
		}
	}
	return -1
}

// DeriveID computes a channel identifier as a deterministic function of
// (name, URL): the pair is base64 encoded, stripped of non-alphanumerics,
// and truncated to 16 characters. Re-parsing the same playlist therefore
// yields the same identifiers, which is what lets favorites survive a
// reload. Truncation collisions are possible and unhandled.
func DeriveID(name, url string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(name + url))
	cleaned := nonAlnumRegex.ReplaceAllString(encoded, "")
	if len(cleaned) > 16 {
		return cleaned[:16]
	}
	return cleaned
}
