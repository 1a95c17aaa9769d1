// Package watch monitors a directory and identifies audio files as
// they appear in it.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/contre95/soundprint/src/features/config"
	"github.com/contre95/soundprint/src/features/identify"
	"github.com/contre95/soundprint/src/music"
	"github.com/fsnotify/fsnotify"
)

// settleDelay is how long a new file must stay quiet before it is
// identified, so half-copied files are not fingerprinted.
const settleDelay = 3 * time.Second

// Identifier resolves audio files to matches.
type Identifier interface {
	Identify(ctx context.Context, filePath string, opts identify.Options) ([]music.Match, error)
}

// Service watches a directory for new audio files.
type Service struct {
	config     *config.Manager
	identifier Identifier

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewService creates a new watch service.
func NewService(cfg *config.Manager, identifier Identifier) *Service {
	return &Service{
		config:     cfg,
		identifier: identifier,
		timers:     make(map[string]*time.Timer),
	}
}

// Run watches the given directory until the context is cancelled.
func (s *Service) Run(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot watch %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch path is not a directory: %s", path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	slog.Info("Watching directory for new audio files", "path", path)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			s.handleEvent(ctx, event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("File watcher error", "error", err)

		case <-ctx.Done():
			s.stopTimers()
			return ctx.Err()
		}
	}
}

// handleEvent debounces create/write events per file and schedules
// identification once the file settles.
func (s *Service) handleEvent(ctx context.Context, event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	if !s.isSupportedFile(event.Name) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[event.Name]; ok {
		timer.Stop()
	}
	path := event.Name
	s.timers[path] = time.AfterFunc(settleDelay, func() {
		s.mu.Lock()
		delete(s.timers, path)
		s.mu.Unlock()
		s.identifyFile(ctx, path)
	})
}

// identifyFile runs one identification and logs the outcome.
func (s *Service) identifyFile(ctx context.Context, path string) {
	slog.Info("Identifying new file", "path", path)

	matches, err := s.identifier.Identify(ctx, path, identify.Options{Source: identify.SourceFile})
	if err != nil {
		if errors.Is(err, identify.ErrNoMatches) {
			slog.Info("No matches for file", "path", path)
		} else {
			slog.Error("Failed to identify file", "path", path, "error", err)
		}
		return
	}

	best := matches[0]
	slog.Info("Identified file",
		"path", filepath.Base(path),
		"title", best.Recording.Title,
		"artist", best.ArtistNames(),
		"confidence", best.ScorePercent(),
	)
}

// isSupportedFile checks the extension against the configured list.
func (s *Service) isSupportedFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range s.config.Get().Watch.Extensions {
		if ext == strings.ToLower(supported) {
			return true
		}
	}
	return false
}

func (s *Service) stopTimers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = make(map[string]*time.Timer)
}
