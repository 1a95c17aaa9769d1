package history

import (
	"context"
	"time"

	"github.com/contre95/soundprint/src/music"
)

// Entry is one past identification. Digest is a hash of the
// fingerprint so that the same audio can be answered locally without
// hitting the lookup service again.
type Entry struct {
	ID        string
	CreatedAt time.Time
	Source    string // "file", "recording" or "upload"
	Digest    string
	Title     string
	Artist    string
	Score     float64
	Matches   []music.Match
}

// Store persists recognition history entries.
type Store interface {
	Add(ctx context.Context, entry *Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	FindByDigest(ctx context.Context, digest string) (*Entry, error)
}
