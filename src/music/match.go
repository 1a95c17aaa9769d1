package music

import (
	"fmt"
	"strings"
)

// Artist is a credited artist on a recording.
type Artist struct {
	ID   string
	Name string
}

// ReleaseGroup is the MusicBrainz release group a recording appears on.
// Its ID is what the Cover Art Archive is keyed by.
type ReleaseGroup struct {
	ID    string
	Title string
	Type  string
}

// Recording is a single MusicBrainz recording returned by a lookup.
type Recording struct {
	ID            string
	Title         string
	Artists       []Artist
	Duration      int // seconds
	ReleaseGroups []ReleaseGroup
}

// Match is one candidate identification for a piece of audio. Score is
// the similarity reported by the lookup service, in the range [0,1].
type Match struct {
	ResultID  string
	Score     float64
	Recording Recording
}

// ArtistNames returns the credited artists joined for display,
// e.g. "Daft Punk, Pharrell Williams".
func (m Match) ArtistNames() string {
	if len(m.Recording.Artists) == 0 {
		return "Unknown Artist"
	}
	names := make([]string, 0, len(m.Recording.Artists))
	for _, a := range m.Recording.Artists {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	if len(names) == 0 {
		return "Unknown Artist"
	}
	return strings.Join(names, ", ")
}

// ScorePercent renders the confidence as a percentage with one decimal
// place, e.g. "97.2%".
func (m Match) ScorePercent() string {
	return fmt.Sprintf("%.1f%%", m.Score*100)
}

// Identified reports whether the match carries enough metadata to be
// shown to the user. Lookups routinely return results with a score but
// no linked recording; those are useless for display.
func (m Match) Identified() bool {
	return m.Recording.ID != "" && m.Recording.Title != ""
}

// Validate checks the match fields.
func (m *Match) Validate() error {
	if m.Score < 0 || m.Score > 1 {
		return fmt.Errorf("score must be within [0,1], got %f", m.Score)
	}
	if m.Recording.Duration < 0 {
		return fmt.Errorf("duration cannot be negative, got %d", m.Recording.Duration)
	}
	return nil
}

// Fingerprint is a compact acoustic signature for a piece of audio plus
// the duration the fingerprinting tool measured. Both are required by
// the lookup service.
type Fingerprint struct {
	Value    string
	Duration int // seconds
}
