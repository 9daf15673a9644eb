package cache

import (
	"testing"
	"time"
)

func TestPlaylistRoundTrip(t *testing.T) {
	c := New(time.Minute, time.Minute)

	if _, ok := c.GetPlaylist("http://example.com/list.m3u8"); ok {
		t.Error("Expected empty cache to miss")
	}

	c.SetPlaylist("http://example.com/list.m3u8", "#EXTM3U\n")
	got, ok := c.GetPlaylist("http://example.com/list.m3u8")
	if !ok || got != "#EXTM3U\n" {
		t.Errorf("Expected cached body back, got %q (%v)", got, ok)
	}
}

func TestStoresAreIndependent(t *testing.T) {
	c := New(time.Minute, time.Minute)

	c.SetPlaylist("key", "playlist")
	c.SetEPG("key", "guide")

	if got, _ := c.GetPlaylist("key"); got != "playlist" {
		t.Errorf("Expected playlist entry, got %q", got)
	}
	if got, _ := c.GetEPG("key"); got != "guide" {
		t.Errorf("Expected epg entry, got %q", got)
	}
}

func TestEntriesExpire(t *testing.T) {
	c := New(20*time.Millisecond, 20*time.Millisecond)

	c.SetPlaylist("key", "body")
	time.Sleep(50 * time.Millisecond)

	if _, ok := c.GetPlaylist("key"); ok {
		t.Error("Expected entry expired after TTL")
	}
}

func TestClear(t *testing.T) {
	c := New(time.Minute, time.Minute)
	c.SetPlaylist("a", "1")
	c.SetEPG("b", "2")

	c.Clear()

	if _, ok := c.GetPlaylist("a"); ok {
		t.Error("Expected playlist cache cleared")
	}
	if _, ok := c.GetEPG("b"); ok {
		t.Error("Expected epg cache cleared")
	}
}
