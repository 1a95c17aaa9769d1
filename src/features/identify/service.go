package identify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/contre95/soundprint/src/features/config"
	"github.com/contre95/soundprint/src/features/history"
	"github.com/contre95/soundprint/src/features/metrics"
	"github.com/contre95/soundprint/src/music"
)

const (
	defaultMaxResults = 3
	maxResultsCap     = 10
)

// Service orchestrates the identification pipeline: optional
// preprocessing, fingerprinting, history short-circuit, remote lookup.
type Service struct {
	config        *config.Manager
	fingerprinter FingerprintProvider
	lookup        Lookup
	preprocessor  Preprocessor     // may be nil
	history       *history.Service // may be nil
}

// NewService creates a new identify service.
func NewService(cfg *config.Manager, fingerprinter FingerprintProvider, lookup Lookup, preprocessor Preprocessor, hist *history.Service) *Service {
	return &Service{
		config:        cfg,
		fingerprinter: fingerprinter,
		lookup:        lookup,
		preprocessor:  preprocessor,
		history:       hist,
	}
}

// Identify resolves an audio file to candidate matches, best first.
func (s *Service) Identify(ctx context.Context, filePath string, opts Options) ([]music.Match, error) {
	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, filePath)
	}
	if s.config.Get().AcoustID.ClientKey == "" {
		return nil, ErrNoAPIKey
	}

	workPath := filePath
	if opts.Preprocess && s.preprocessor != nil {
		cleaned, cleanup, err := s.preprocessor.Process(ctx, filePath)
		if err != nil {
			// Preprocessing is best effort; fingerprint the original instead.
			slog.Warn("Audio preprocessing failed, using original file", "path", filePath, "error", err)
		} else {
			defer cleanup()
			workPath = cleaned
		}
	}

	fp, err := s.fingerprinter.GenerateFingerprint(ctx, workPath)
	if err != nil {
		metrics.Identifications.WithLabelValues("error").Inc()
		return nil, err
	}
	slog.Debug("Fingerprint computed", "duration", fp.Duration, "length", len(fp.Value))

	digest := Digest(fp)
	if cached := s.fromHistory(ctx, digest); cached != nil {
		metrics.HistoryHits.Inc()
		metrics.Identifications.WithLabelValues("matched").Inc()
		return Limit(cached, s.maxResults(opts)), nil
	}

	matches, err := s.lookup.Lookup(ctx, fp)
	if err != nil {
		metrics.LookupErrors.Inc()
		metrics.Identifications.WithLabelValues("error").Inc()
		return nil, err
	}

	matches = Rank(matches)
	if len(matches) == 0 {
		metrics.Identifications.WithLabelValues("no_match").Inc()
		return nil, ErrNoMatches
	}
	metrics.Identifications.WithLabelValues("matched").Inc()

	if s.history != nil {
		if err := s.history.Record(ctx, opts.Source, digest, matches); err != nil {
			slog.Warn("Failed to record identification in history", "error", err)
		}
	}

	return Limit(matches, s.maxResults(opts)), nil
}

// fromHistory returns past matches for the digest, or nil.
func (s *Service) fromHistory(ctx context.Context, digest string) []music.Match {
	if s.history == nil {
		return nil
	}
	entry, err := s.history.FindByDigest(ctx, digest)
	if err != nil {
		slog.Warn("History lookup failed", "error", err)
		return nil
	}
	if entry == nil || len(entry.Matches) == 0 {
		return nil
	}
	slog.Info("Answering from local history", "title", entry.Title, "artist", entry.Artist, "recorded_at", entry.CreatedAt)
	return entry.Matches
}

func (s *Service) maxResults(opts Options) int {
	n := opts.MaxResults
	if n == 0 {
		n = s.config.Get().AcoustID.MaxResults
	}
	return ClampMaxResults(n)
}

// ClampMaxResults bounds a user-supplied result count to [1,10],
// falling back to the default when unset.
func ClampMaxResults(n int) int {
	if n == 0 {
		return defaultMaxResults
	}
	if n < 1 {
		return 1
	}
	if n > maxResultsCap {
		return maxResultsCap
	}
	return n
}

// Rank drops matches without usable metadata and orders the rest by
// descending score. The sort is stable so service-provided ordering
// breaks ties.
func Rank(matches []music.Match) []music.Match {
	ranked := make([]music.Match, 0, len(matches))
	for _, m := range matches {
		if m.Identified() {
			ranked = append(ranked, m)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// Limit truncates matches to at most n entries.
func Limit(matches []music.Match, n int) []music.Match {
	if len(matches) <= n {
		return matches
	}
	return matches[:n]
}
