// Package epg exposes program-guide data as an external source interface.
// The bundled implementation is a deterministic mock; a real XMLTV or
// provider-backed source can substitute without touching consumers.
package epg

import (
	"context"
	"time"
)

// Program is a single guide entry for a channel.
type Program struct {
	ChannelID   string    `json:"channelId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

// Source provides guide data for a channel over a date range.
type Source interface {
	Programs(ctx context.Context, channelID string, from, to time.Time) ([]Program, error)
}
