// Package tagging writes identified metadata back into the source
// audio file.
package tagging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/contre95/soundprint/src/features/config"
	"github.com/contre95/soundprint/src/music"
)

// TagWriter writes a match (and optional artwork) into a file's tags.
type TagWriter interface {
	WriteMatch(ctx context.Context, filePath string, match music.Match, artwork []byte) error
}

// TagReader reads metadata already present in a file.
type TagReader interface {
	Read(filePath string) (Existing, error)
}

// Existing mirrors the fields a reader can recover from current tags.
type Existing struct {
	Title  string
	Artist string
	Album  string
}

// ArtworkFetcher fetches front cover art for a release group.
type ArtworkFetcher interface {
	FrontCover(ctx context.Context, releaseGroupID string) ([]byte, error)
}

// Service applies identified metadata to files.
type Service struct {
	config  *config.Manager
	writer  TagWriter
	reader  TagReader
	artwork ArtworkFetcher
}

// NewService creates a new tagging service.
func NewService(cfg *config.Manager, writer TagWriter, reader TagReader, artwork ArtworkFetcher) *Service {
	return &Service{config: cfg, writer: writer, reader: reader, artwork: artwork}
}

// Apply writes the best match into the file's tags, fetching and
// embedding cover art when enabled.
func (s *Service) Apply(ctx context.Context, filePath string, match music.Match) error {
	if !match.Identified() {
		return fmt.Errorf("refusing to tag from an unidentified match")
	}

	if existing, err := s.reader.Read(filePath); err == nil && existing.Title != "" {
		slog.Info("File already carries tags, overwriting",
			"previous_title", existing.Title,
			"previous_artist", existing.Artist,
			"new_title", match.Recording.Title,
			"new_artist", match.ArtistNames(),
		)
	}

	var artwork []byte
	if s.config.Get().Tagging.Artwork.Embedded.Enabled && s.artwork != nil {
		artwork = s.fetchArtwork(ctx, match)
	}

	if err := s.writer.WriteMatch(ctx, filePath, match, artwork); err != nil {
		return fmt.Errorf("failed to tag %s: %w", filePath, err)
	}
	return nil
}

// fetchArtwork tries each release group the recording appears on until
// one yields a cover. Artwork is decoration; failures only log.
func (s *Service) fetchArtwork(ctx context.Context, match music.Match) []byte {
	for _, rg := range match.Recording.ReleaseGroups {
		data, err := s.artwork.FrontCover(ctx, rg.ID)
		if err != nil {
			slog.Debug("Cover art fetch failed", "release_group", rg.ID, "error", err)
			continue
		}
		if len(data) > 0 {
			slog.Debug("Fetched cover art", "release_group", rg.ID, "bytes", len(data))
			return data
		}
	}
	return nil
}
