package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/contre95/soundprint/src/features/config"
	"github.com/contre95/soundprint/src/music"
	"github.com/google/uuid"
)

// Service manages the local recognition history.
type Service struct {
	store  Store
	config *config.Manager
}

// NewService creates a new history service.
func NewService(store Store, cfg *config.Manager) *Service {
	return &Service{store: store, config: cfg}
}

// Record stores an identification. The best match is denormalized into
// the entry for cheap listing; the full match set is kept so repeat
// lookups can be answered completely.
func (s *Service) Record(ctx context.Context, source, digest string, matches []music.Match) error {
	if len(matches) == 0 {
		return fmt.Errorf("refusing to record an empty match set")
	}
	best := matches[0]
	entry := &Entry{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Source:    source,
		Digest:    digest,
		Title:     best.Recording.Title,
		Artist:    best.ArtistNames(),
		Score:     best.Score,
		Matches:   matches,
	}
	if err := s.store.Add(ctx, entry); err != nil {
		return fmt.Errorf("failed to record identification: %w", err)
	}
	slog.Debug("Recorded identification", "id", entry.ID, "title", entry.Title, "artist", entry.Artist)
	return nil
}

// Recent returns the most recent entries, newest first.
func (s *Service) Recent(ctx context.Context) ([]Entry, error) {
	limit := s.config.Get().History.Limit
	if limit <= 0 {
		limit = 50
	}
	return s.store.Recent(ctx, limit)
}

// FindByDigest returns a past identification of the exact same
// fingerprint, or nil when the audio has not been seen before.
func (s *Service) FindByDigest(ctx context.Context, digest string) (*Entry, error) {
	return s.store.FindByDigest(ctx, digest)
}
