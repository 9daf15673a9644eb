package epg

import (
	"context"
	"fmt"
	"time"
)

// programTemplate pairs a show title with its flavor text for the mock
// guide.
type programTemplate struct {
	title       string
	description string
	category    string
}

var templates = []programTemplate{
	{"Morning News", "The latest headlines and weather to start the day.", "News"},
	{"Documentary Hour", "An in-depth look at the world around us.", "Documentary"},
	{"Midday Movie", "A feature film presentation.", "Movies"},
	{"Talk of the Town", "Conversations with guests from around the globe.", "Talk"},
	{"Sports Tonight", "Highlights and analysis from today's matches.", "Sports"},
	{"Evening News", "A full roundup of the day's events.", "News"},
	{"Prime Time Series", "The next episode of the featured drama.", "Series"},
	{"Late Night Show", "Comedy, music and interviews into the small hours.", "Entertainment"},
}

// MockSource generates a synthetic schedule of hour-long programs. The
// template picked for a given channel and hour is a pure function of both,
// so repeated queries return identical guides.
type MockSource struct{}

// NewMockSource returns the mock guide generator.
func NewMockSource() *MockSource {
	return &MockSource{}
}

// Programs fills the [from, to) range with back-to-back hour blocks aligned
// to the wall clock.
func (m *MockSource) Programs(_ context.Context, channelID string, from, to time.Time) ([]Program, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("invalid range: %s is not before %s", from, to)
	}

	seed := hashString(channelID)
	start := from.Truncate(time.Hour)

	var programs []Program
	for cursor := start; cursor.Before(to); cursor = cursor.Add(time.Hour) {
		slot := uint64(cursor.Unix() / 3600)
		tmpl := templates[(seed+slot)%uint64(len(templates))]

		programs = append(programs, Program{
			ChannelID:   channelID,
			Title:       tmpl.title,
			Description: tmpl.description,
			Category:    tmpl.category,
			Start:       cursor,
			End:         cursor.Add(time.Hour),
		})
	}

	return programs, nil
}

// hashString is FNV-1a, enough to spread channels across templates.
func hashString(s string) uint64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}
