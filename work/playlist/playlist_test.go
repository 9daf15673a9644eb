package playlist

import (
	"strings"
	"testing"
)

const samplePlaylist = `#EXTM3U
#EXTINF:-1 tvg-id="1" group-title="News",CNN
http://example.com/cnn.m3u8
#EXTINF:-1,Unknown
http://example.com/x.m3u8`

func TestParse(t *testing.T) {
	pl := Parse(samplePlaylist)

	if pl.Count != 2 {
		t.Fatalf("Expected 2 channels, got %d", pl.Count)
	}

	first := pl.Channels[0]
	if first.Name != "CNN" {
		t.Errorf("Expected first channel name CNN, got %q", first.Name)
	}
	if first.Group != "News" {
		t.Errorf("Expected first channel group News, got %q", first.Group)
	}
	if first.TvgID != "1" {
		t.Errorf("Expected first channel tvg-id 1, got %q", first.TvgID)
	}
	if first.URL != "http://example.com/cnn.m3u8" {
		t.Errorf("Unexpected first channel URL: %q", first.URL)
	}

	second := pl.Channels[1]
	if second.Name != "Unknown" {
		t.Errorf("Expected second channel name Unknown, got %q", second.Name)
	}
	if second.Group != "" {
		t.Errorf("Expected second channel to have no group, got %q", second.Group)
	}
}

func TestParseCountsOnlyPairedMarkers(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{
			name:    "empty input",
			content: "",
			want:    0,
		},
		{
			name:    "header only",
			content: "#EXTM3U",
			want:    0,
		},
		{
			name: "marker without URL at end of file",
			content: `#EXTINF:-1,Dangling
`,
			want: 0,
		},
		{
			name: "URL without marker is dropped",
			content: `http://example.com/orphan.m3u8
#EXTINF:-1,Kept
http://example.com/kept.m3u8`,
			want: 1,
		},
		{
			name: "comment between marker and URL is skipped",
			content: `#EXTINF:-1,Channel
#EXTVLCOPT:http-user-agent=foo
http://example.com/a.m3u8`,
			want: 1,
		},
		{
			name: "blank lines ignored",
			content: `#EXTINF:-1,A

http://example.com/a.m3u8

#EXTINF:-1,B
http://example.com/b.m3u8`,
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pl := Parse(tt.content)
			if pl.Count != tt.want {
				t.Errorf("Expected %d channels, got %d", tt.want, pl.Count)
			}
		})
	}
}

func TestParseAttributes(t *testing.T) {
	content := `#EXTINF:-1 tvg-id="cnn.us" tvg-name="CNN HD" tvg-logo="http://logo/cnn.png" tvg-country="US" tvg-language="English" group-title="News Channels",CNN
http://example.com/cnn.m3u8`

	pl := Parse(content)
	if pl.Count != 1 {
		t.Fatalf("Expected 1 channel, got %d", pl.Count)
	}

	ch := pl.Channels[0]
	if ch.TvgID != "cnn.us" {
		t.Errorf("tvg-id: got %q", ch.TvgID)
	}
	if ch.TvgName != "CNN HD" {
		t.Errorf("tvg-name: got %q", ch.TvgName)
	}
	if ch.Logo != "http://logo/cnn.png" {
		t.Errorf("tvg-logo: got %q", ch.Logo)
	}
	if ch.Country != "US" {
		t.Errorf("tvg-country: got %q", ch.Country)
	}
	if ch.Language != "English" {
		t.Errorf("tvg-language: got %q", ch.Language)
	}
	if ch.Group != "News Channels" {
		t.Errorf("group-title: got %q", ch.Group)
	}
}

func TestParseNoCommaUsesPlaceholder(t *testing.T) {
	content := `#EXTINF:-1
http://example.com/nameless.m3u8`

	pl := Parse(content)
	if pl.Count != 1 {
		t.Fatalf("Expected 1 channel, got %d", pl.Count)
	}
	if pl.Channels[0].Name != "Unknown Channel" {
		t.Errorf("Expected placeholder name, got %q", pl.Channels[0].Name)
	}
}

func TestParseDeterministicIdentifiers(t *testing.T) {
	first := Parse(samplePlaylist)
	second := Parse(samplePlaylist)

	if first.Count != second.Count {
		t.Fatalf("Counts differ: %d vs %d", first.Count, second.Count)
	}

	for i := range first.Channels {
		if first.Channels[i].ID != second.Channels[i].ID {
			t.Errorf("Channel %d: identifiers differ across parses: %q vs %q",
				i, first.Channels[i].ID, second.Channels[i].ID)
		}
	}
}

func TestDeriveID(t *testing.T) {
	id := DeriveID("CNN", "http://example.com/cnn.m3u8")

	if len(id) > 16 {
		t.Errorf("Expected identifier of at most 16 characters, got %d", len(id))
	}
	for _, r := range id {
		if !strings.ContainsRune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", r) {
			t.Errorf("Identifier contains non-alphanumeric rune %q", r)
		}
	}

	// same inputs, same identifier
	if DeriveID("CNN", "http://example.com/cnn.m3u8") != id {
		t.Error("Expected DeriveID to be deterministic")
	}

	// different inputs should normally differ
	other := DeriveID("BBC", "http://example.com/bbc.m3u8")
	if other == id {
		t.Error("Expected different channels to derive different identifiers")
	}
}
