package identify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/contre95/soundprint/src/features/config"
	"github.com/contre95/soundprint/src/features/history"
	"github.com/contre95/soundprint/src/music"
)

// MockFingerprinter returns a canned fingerprint.
type MockFingerprinter struct {
	fp    music.Fingerprint
	err   error
	calls int
}

func (m *MockFingerprinter) GenerateFingerprint(ctx context.Context, filePath string) (music.Fingerprint, error) {
	m.calls++
	return m.fp, m.err
}

// MockLookup returns a canned match set.
type MockLookup struct {
	matches []music.Match
	err     error
	calls   int
}

func (m *MockLookup) Lookup(ctx context.Context, fp music.Fingerprint) ([]music.Match, error) {
	m.calls++
	return m.matches, m.err
}

// MockStore is an in-memory history store.
type MockStore struct {
	entries []history.Entry
}

func (m *MockStore) Add(ctx context.Context, entry *history.Entry) error {
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *MockStore) Recent(ctx context.Context, limit int) ([]history.Entry, error) {
	return m.entries, nil
}

func (m *MockStore) FindByDigest(ctx context.Context, digest string) (*history.Entry, error) {
	for _, e := range m.entries {
		if e.Digest == digest {
			entry := e
			return &entry, nil
		}
	}
	return nil, nil
}

func testConfig(key string) *config.Manager {
	cfg := &config.Config{}
	cfg.AcoustID.ClientKey = key
	cfg.AcoustID.MaxResults = 3
	cfg.History.Limit = 10
	return config.NewManager(cfg)
}

func tempAudioFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func match(id string, score float64, title string) music.Match {
	return music.Match{
		ResultID: id,
		Score:    score,
		Recording: music.Recording{
			ID:      "rec-" + id,
			Title:   title,
			Artists: []music.Artist{{Name: "Some Artist"}},
		},
	}
}

func TestIdentify_MissingFile(t *testing.T) {
	service := NewService(testConfig("key"), &MockFingerprinter{}, &MockLookup{}, nil, nil)

	_, err := service.Identify(context.Background(), "/does/not/exist.mp3", Options{Source: SourceFile})
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestIdentify_MissingAPIKey(t *testing.T) {
	service := NewService(testConfig(""), &MockFingerprinter{}, &MockLookup{}, nil, nil)

	_, err := service.Identify(context.Background(), tempAudioFile(t), Options{Source: SourceFile})
	if !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestIdentify_SortsAndLimits(t *testing.T) {
	lookup := &MockLookup{matches: []music.Match{
		match("a", 0.41, "Low"),
		match("b", 0.97, "High"),
		match("c", 0.66, "Mid"),
		match("d", 0.50, "AlsoMid"),
	}}
	fingerprinter := &MockFingerprinter{fp: music.Fingerprint{Value: "FP", Duration: 120}}
	service := NewService(testConfig("key"), fingerprinter, lookup, nil, nil)

	matches, err := service.Identify(context.Background(), tempAudioFile(t), Options{MaxResults: 3, Source: SourceFile})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	if matches[0].Recording.Title != "High" || matches[1].Recording.Title != "Mid" || matches[2].Recording.Title != "AlsoMid" {
		t.Errorf("matches not sorted by descending score: %+v", matches)
	}
}

func TestIdentify_DropsUnusableMatches(t *testing.T) {
	unusable := music.Match{ResultID: "x", Score: 0.99} // no recording metadata
	lookup := &MockLookup{matches: []music.Match{unusable, match("a", 0.5, "Usable")}}
	fingerprinter := &MockFingerprinter{fp: music.Fingerprint{Value: "FP", Duration: 120}}
	service := NewService(testConfig("key"), fingerprinter, lookup, nil, nil)

	matches, err := service.Identify(context.Background(), tempAudioFile(t), Options{Source: SourceFile})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(matches) != 1 || matches[0].Recording.Title != "Usable" {
		t.Errorf("expected only the usable match, got %+v", matches)
	}
}

func TestIdentify_NoMatches(t *testing.T) {
	lookup := &MockLookup{matches: nil}
	fingerprinter := &MockFingerprinter{fp: music.Fingerprint{Value: "FP", Duration: 120}}
	service := NewService(testConfig("key"), fingerprinter, lookup, nil, nil)

	_, err := service.Identify(context.Background(), tempAudioFile(t), Options{Source: SourceFile})
	if !errors.Is(err, ErrNoMatches) {
		t.Fatalf("expected ErrNoMatches, got %v", err)
	}
}

func TestIdentify_HistoryShortCircuitsLookup(t *testing.T) {
	fingerprinter := &MockFingerprinter{fp: music.Fingerprint{Value: "FP", Duration: 120}}
	lookup := &MockLookup{matches: []music.Match{match("a", 0.9, "Hit")}}
	store := &MockStore{}
	hist := history.NewService(store, testConfig("key"))
	service := NewService(testConfig("key"), fingerprinter, lookup, nil, hist)
	ctx := context.Background()
	path := tempAudioFile(t)

	if _, err := service.Identify(ctx, path, Options{Source: SourceFile}); err != nil {
		t.Fatalf("first identify failed: %v", err)
	}
	if lookup.calls != 1 {
		t.Fatalf("expected 1 lookup call, got %d", lookup.calls)
	}

	matches, err := service.Identify(ctx, path, Options{Source: SourceFile})
	if err != nil {
		t.Fatalf("second identify failed: %v", err)
	}
	if lookup.calls != 1 {
		t.Errorf("expected repeat lookup to be answered from history, got %d remote calls", lookup.calls)
	}
	if len(matches) != 1 || matches[0].Recording.Title != "Hit" {
		t.Errorf("unexpected cached matches: %+v", matches)
	}
}

// failingPreprocessor always errors.
type failingPreprocessor struct{}

func (failingPreprocessor) Process(ctx context.Context, filePath string) (string, func(), error) {
	return "", nil, errors.New("boom")
}

func TestIdentify_PreprocessFailureFallsBack(t *testing.T) {
	fingerprinter := &MockFingerprinter{fp: music.Fingerprint{Value: "FP", Duration: 120}}
	lookup := &MockLookup{matches: []music.Match{match("a", 0.9, "Hit")}}
	service := NewService(testConfig("key"), fingerprinter, lookup, failingPreprocessor{}, nil)

	matches, err := service.Identify(context.Background(), tempAudioFile(t), Options{Preprocess: true, Source: SourceRecording})
	if err != nil {
		t.Fatalf("expected fallback to original file, got %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if fingerprinter.calls != 1 {
		t.Errorf("expected fingerprinting of the original file")
	}
}

func TestClampMaxResults(t *testing.T) {
	cases := map[int]int{0: 3, -2: 1, 1: 1, 5: 5, 10: 10, 25: 10}
	for in, want := range cases {
		if got := ClampMaxResults(in); got != want {
			t.Errorf("ClampMaxResults(%d) = %d, want %d", in, got, want)
		}
	}
}
