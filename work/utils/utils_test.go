package utils

import (
	"testing"

	"iptv-player/work/config"
)

func TestLogURL(t *testing.T) {
	raw := "http://example.com/secret/stream.m3u8?token=abc"

	plain := &config.Config{ObfuscateUrls: false}
	if got := LogURL(plain, raw); got != raw {
		t.Errorf("Expected raw URL when obfuscation is off, got %q", got)
	}

	hidden := &config.Config{ObfuscateUrls: true}
	if got := LogURL(hidden, raw); got != "http://example.com/***?***" {
		t.Errorf("Expected obfuscated URL, got %q", got)
	}
}

func TestObfuscateURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"http://example.com", "http://example.com"},
		{"http://example.com/", "http://example.com"},
		{"http://example.com/path/file.m3u8", "http://example.com/***"},
		{"https://host.tv/a?b=c#frag", "https://host.tv/***?***#***"},
	}

	for _, tt := range tests {
		if got := ObfuscateURL(tt.in); got != tt.want {
			t.Errorf("ObfuscateURL(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"News Channels", "News_Channels"},
		{"Sports & Events", "Sports_Events"},
		{"a/b\\c", "a_b_c"},
		{"  spaced  ", "spaced"},
		{"\"quoted\"", "quoted"},
	}

	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, min, max, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-0.1, 0, 1, 0},
		{1.7, 0, 1, 1},
		{0, 0, 1, 0},
		{1, 0, 1, 1},
	}

	for _, tt := range tests {
		if got := Clamp(tt.v, tt.min, tt.max); got != tt.want {
			t.Errorf("Clamp(%v, %v, %v): expected %v, got %v", tt.v, tt.min, tt.max, tt.want, got)
		}
	}
}
