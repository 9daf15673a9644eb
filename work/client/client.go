package client

import (
	"net/http"
	"time"

	"iptv-player/work/config"
)

// BrowserClient wraps http.Client and stamps every outbound request with a
// fixed browser-identifying header set so upstream playlist and manifest
// servers treat the service like a regular player.
type BrowserClient struct {
	Client *http.Client
	config *config.Config
}

// New builds a BrowserClient with transport settings tuned for repeated
// small fetches (playlists and manifests, not segment streaming).
func New(config *config.Config) *BrowserClient {
	client := &http.Client{
		Timeout: 0, // per-request deadlines come from contexts
		Transport: &http.Transport{
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			DisableKeepAlives:     false,
			ResponseHeaderTimeout: 30 * time.Second,
		},
	}

	return &BrowserClient{
		Client: client,
		config: config,
	}
}

func (bc *BrowserClient) Do(req *http.Request) (*http.Response, error) {
	bc.setHeaders(req)
	return bc.Client.Do(req)
}

func (bc *BrowserClient) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", bc.config.UserAgent)
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Accept", "*/*")

	if bc.config.ReqOrigin != "" {
		req.Header.Set("Origin", bc.config.ReqOrigin)
	}
	if bc.config.ReqReferrer != "" {
		req.Header.Set("Referer", bc.config.ReqReferrer)
	}
}
