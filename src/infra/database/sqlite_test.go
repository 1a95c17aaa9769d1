package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/contre95/soundprint/src/features/history"
	"github.com/contre95/soundprint/src/music"
	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *SqliteHistory {
	t.Helper()
	store, err := NewSqliteHistory(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func entryFixture(digest string, createdAt time.Time) *history.Entry {
	return &history.Entry{
		ID:        uuid.New().String(),
		CreatedAt: createdAt,
		Source:    "file",
		Digest:    digest,
		Title:     "One More Time",
		Artist:    "Daft Punk",
		Score:     0.88,
		Matches: []music.Match{
			{
				ResultID: "r1",
				Score:    0.88,
				Recording: music.Recording{
					ID:      "rec1",
					Title:   "One More Time",
					Artists: []music.Artist{{Name: "Daft Punk"}},
				},
			},
		},
	}
}

func TestAddAndFindByDigest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Add(ctx, entryFixture("abc", time.Now().UTC())); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	entry, err := store.FindByDigest(ctx, "abc")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if entry == nil {
		t.Fatal("expected entry to be found")
	}
	if entry.Title != "One More Time" {
		t.Errorf("unexpected title: %s", entry.Title)
	}
	if len(entry.Matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(entry.Matches))
	}
	if entry.Matches[0].Recording.Artists[0].Name != "Daft Punk" {
		t.Errorf("match set did not round-trip: %+v", entry.Matches[0])
	}
}

func TestFindByDigest_Missing(t *testing.T) {
	store := newTestStore(t)

	entry, err := store.FindByDigest(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if entry != nil {
		t.Errorf("expected nil entry, got %+v", entry)
	}
}

func TestRecent_OrderAndLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		e := entryFixture("digest", base.Add(time.Duration(i)*time.Minute))
		e.Title = e.CreatedAt.Format(time.RFC3339)
		if err := store.Add(ctx, e); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	entries, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].CreatedAt.After(entries[i-1].CreatedAt) {
			t.Errorf("entries not ordered newest first: %v before %v",
				entries[i-1].CreatedAt, entries[i].CreatedAt)
		}
	}
}
