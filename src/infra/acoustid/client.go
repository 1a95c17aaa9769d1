// Package acoustid is a client for the AcoustID fingerprint lookup
// web service (https://acoustid.org).
package acoustid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/contre95/soundprint/src/features/config"
	"github.com/contre95/soundprint/src/music"
)

var (
	// ErrInvalidAPIKey is returned when the service rejects the client key.
	ErrInvalidAPIKey = errors.New("invalid AcoustID API key")
	// ErrRateLimited is returned when the service throttles the client.
	ErrRateLimited = errors.New("AcoustID rate limit exceeded")
)

// AcoustID application error codes, per the /v2/lookup docs.
const (
	errCodeInvalidAPIKey = 4
	errCodeTooManyReqs   = 14
)

// Response represents a response from the AcoustID API.
type Response struct {
	Status string `json:"status"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Results []Result `json:"results"`
}

// Result represents a single result from AcoustID.
type Result struct {
	ID         string      `json:"id"`
	Score      float64     `json:"score"`
	Recordings []Recording `json:"recordings"`
}

// Recording represents recording information from AcoustID.
type Recording struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Artists []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artists"`
	Duration      int `json:"duration"`
	ReleaseGroups []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Type  string `json:"type"`
	} `json:"releasegroups"`
}

// Client talks to the AcoustID lookup endpoint.
type Client struct {
	config *config.Manager
	http   *http.Client
}

// NewClient creates a new AcoustID client.
func NewClient(cfg *config.Manager) *Client {
	timeout := time.Duration(cfg.Get().AcoustID.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: timeout},
	}
}

// Lookup submits a fingerprint and returns every candidate match the
// service knows about. One Match is produced per (result, recording)
// pair, mirroring how the service scores individual recordings.
//
// The request goes out as a form-encoded POST: fingerprints easily run
// past URL length limits.
func (c *Client) Lookup(ctx context.Context, fp music.Fingerprint) ([]music.Match, error) {
	cfg := c.config.Get().AcoustID

	form := url.Values{}
	form.Add("client", cfg.ClientKey)
	form.Add("meta", cfg.Meta)
	form.Add("duration", fmt.Sprintf("%d", fp.Duration))
	form.Add("fingerprint", fp.Value)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query AcoustID API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}

	var response Response
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to parse AcoustID response (HTTP %d): %w", resp.StatusCode, err)
	}

	if response.Status != "ok" {
		if response.Error != nil {
			switch response.Error.Code {
			case errCodeInvalidAPIKey:
				return nil, fmt.Errorf("%w: %s", ErrInvalidAPIKey, response.Error.Message)
			case errCodeTooManyReqs:
				return nil, fmt.Errorf("%w: %s", ErrRateLimited, response.Error.Message)
			}
			return nil, fmt.Errorf("AcoustID API error: %s", response.Error.Message)
		}
		return nil, fmt.Errorf("AcoustID API returned status: %s", response.Status)
	}

	return toMatches(response.Results), nil
}

// toMatches flattens the API result tree into domain matches.
func toMatches(results []Result) []music.Match {
	var matches []music.Match
	for _, result := range results {
		for _, rec := range result.Recordings {
			recording := music.Recording{
				ID:       rec.ID,
				Title:    rec.Title,
				Duration: rec.Duration,
			}
			for _, a := range rec.Artists {
				recording.Artists = append(recording.Artists, music.Artist{ID: a.ID, Name: a.Name})
			}
			for _, rg := range rec.ReleaseGroups {
				recording.ReleaseGroups = append(recording.ReleaseGroups, music.ReleaseGroup{ID: rg.ID, Title: rg.Title, Type: rg.Type})
			}
			matches = append(matches, music.Match{
				ResultID:  result.ID,
				Score:     result.Score,
				Recording: recording,
			})
		}
	}
	return matches
}
