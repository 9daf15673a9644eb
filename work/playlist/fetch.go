package playlist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"iptv-player/work/client"
	"iptv-player/work/config"
	"iptv-player/work/logger"
	"iptv-player/work/utils"
)

// ErrFetch marks a network-level playlist retrieval failure. Callers can
// distinguish it from (never-raised) parse errors with errors.Is and report
// it as a retryable connection problem.
var ErrFetch = errors.New("playlist fetch failed")

// FetchAndParse retrieves the playlist at url through the shared browser
// client and delegates to Parse. A network failure or non-200 upstream
// status surfaces as an error wrapping ErrFetch; parse problems never fail
// the call.
func FetchAndParse(ctx context.Context, httpClient *client.BrowserClient, cfg *config.Config, url string) (*Playlist, error) {
	logger.Debug("{playlist - FetchAndParse} fetching playlist from %s", utils.LogURL(cfg, url))

	ctx, cancel := context.WithTimeout(ctx, cfg.StreamTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: upstream returned HTTP %d", ErrFetch, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	pl := Parse(string(data))
	logger.Debug("{playlist - FetchAndParse} parsed %d channels from %s", pl.Count, utils.LogURL(cfg, url))
	return pl, nil
}
