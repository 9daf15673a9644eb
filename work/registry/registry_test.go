package registry

import (
	"testing"

	"iptv-player/work/playlist"
)

func testPlaylist(names ...string) *playlist.Playlist {
	channels := make([]playlist.Channel, len(names))
	for i, name := range names {
		channels[i] = playlist.Channel{
			ID:   playlist.DeriveID(name, "http://example.com/"+name),
			Name: name,
			URL:  "http://example.com/" + name,
		}
	}
	return &playlist.Playlist{Channels: channels, Count: len(channels)}
}

func TestReplaceAndLookup(t *testing.T) {
	r := New()
	pl := testPlaylist("A", "B", "C")
	r.Replace(pl)

	if r.Count() != 3 {
		t.Fatalf("Expected 3 channels, got %d", r.Count())
	}

	ch, ok := r.Get(pl.Channels[1].ID)
	if !ok {
		t.Fatal("Expected lookup by id to succeed")
	}
	if ch.Name != "B" {
		t.Errorf("Expected B, got %q", ch.Name)
	}

	if _, ok := r.Get("nope"); ok {
		t.Error("Expected unknown id to miss")
	}
}

func TestReplaceClearsSelection(t *testing.T) {
	r := New()
	pl := testPlaylist("A", "B")
	r.Replace(pl)
	r.Select(pl.Channels[0].ID)

	r.Replace(testPlaylist("X", "Y"))

	if _, ok := r.Current(); ok {
		t.Error("Expected selection cleared after replace")
	}
}

func TestNavigationWraps(t *testing.T) {
	r := New()
	pl := testPlaylist("A", "B", "C")
	r.Replace(pl)

	// from index 0, prev wraps to the last channel
	r.Select(pl.Channels[0].ID)
	ch, ok := r.Prev()
	if !ok || ch.Name != "C" {
		t.Errorf("Expected prev from first to wrap to C, got %v", ch)
	}

	// from the last channel, next wraps to index 0
	r.Select(pl.Channels[2].ID)
	ch, ok = r.Next()
	if !ok || ch.Name != "A" {
		t.Errorf("Expected next from last to wrap to A, got %v", ch)
	}
}

func TestNavigationWithoutSelectionStartsAtFirst(t *testing.T) {
	r := New()
	pl := testPlaylist("A", "B")
	r.Replace(pl)

	ch, ok := r.Next()
	if !ok || ch.Name != "A" {
		t.Errorf("Expected first navigation to land on A, got %v", ch)
	}
}

func TestNavigationOnEmptyRegistry(t *testing.T) {
	r := New()

	if _, ok := r.Next(); ok {
		t.Error("Expected Next to fail on empty registry")
	}
	if _, ok := r.Prev(); ok {
		t.Error("Expected Prev to fail on empty registry")
	}
}

func TestSingleChannelWrapsToItself(t *testing.T) {
	r := New()
	pl := testPlaylist("Only")
	r.Replace(pl)
	r.Select(pl.Channels[0].ID)

	if ch, _ := r.Next(); ch.Name != "Only" {
		t.Errorf("Expected wrap to the same channel, got %q", ch.Name)
	}
	if ch, _ := r.Prev(); ch.Name != "Only" {
		t.Errorf("Expected wrap to the same channel, got %q", ch.Name)
	}
}

func TestGroupsAndSearchDelegate(t *testing.T) {
	r := New()
	pl := &playlist.Playlist{Channels: []playlist.Channel{
		{ID: "1", Name: "CNN", Group: "News"},
		{ID: "2", Name: "Films"},
	}, Count: 2}
	r.Replace(pl)

	groups := r.Groups()
	if len(groups["News"]) != 1 {
		t.Errorf("Expected 1 channel in News, got %d", len(groups["News"]))
	}
	if len(groups[playlist.Uncategorized]) != 1 {
		t.Errorf("Expected 1 uncategorized channel, got %d", len(groups[playlist.Uncategorized]))
	}

	if got := r.Search("cnn"); len(got) != 1 || got[0].Name != "CNN" {
		t.Errorf("Expected search to find CNN, got %v", got)
	}
}
