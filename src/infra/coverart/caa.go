// Package coverart fetches release artwork from the Cover Art Archive
// (https://coverartarchive.org), which is keyed by MusicBrainz release
// group IDs.
package coverart

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://coverartarchive.org"

// maxArtworkBytes caps downloads; covers above this are rejected.
const maxArtworkBytes = 10 << 20

// Client fetches front covers.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a new Cover Art Archive client.
func NewClient() *Client {
	return &Client{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithBaseURL is used by tests to point at a fake server.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

// FrontCover fetches the front cover image for a release group.
// A 404 means the release simply has no cover; callers treat the empty
// result as "no artwork", not a failure.
func (c *Client) FrontCover(ctx context.Context, releaseGroupID string) ([]byte, error) {
	if releaseGroupID == "" {
		return nil, fmt.Errorf("empty release group ID")
	}

	url := fmt.Sprintf("%s/release-group/%s/front-500", c.baseURL, releaseGroupID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cover art: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cover art fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArtworkBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read cover art: %w", err)
	}
	if len(data) > maxArtworkBytes {
		return nil, fmt.Errorf("cover art exceeds %d bytes", maxArtworkBytes)
	}
	return data, nil
}
