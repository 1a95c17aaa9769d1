package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/contre95/soundprint/src/features/config"
	"github.com/contre95/soundprint/src/features/identify"
	"github.com/contre95/soundprint/src/features/recording"
	"github.com/contre95/soundprint/src/music"
)

type stubFingerprinter struct{}

func (stubFingerprinter) GenerateFingerprint(ctx context.Context, filePath string) (music.Fingerprint, error) {
	return music.Fingerprint{Value: "FP", Duration: 120}, nil
}

type stubLookup struct {
	matches []music.Match
	calls   int
}

func (s *stubLookup) Lookup(ctx context.Context, fp music.Fingerprint) ([]music.Match, error) {
	s.calls++
	return s.matches, nil
}

type spyPreprocessor struct {
	called bool
}

func (s *spyPreprocessor) Process(ctx context.Context, filePath string) (string, func(), error) {
	s.called = true
	return filePath, func() {}, nil
}

func stubMatches(n int) []music.Match {
	matches := make([]music.Match, 0, n)
	for i := 0; i < n; i++ {
		matches = append(matches, music.Match{
			ResultID: fmt.Sprintf("r%d", i),
			Score:    0.9 - float64(i)*0.1,
			Recording: music.Recording{
				ID:      fmt.Sprintf("rec%d", i),
				Title:   fmt.Sprintf("Song %d", i),
				Artists: []music.Artist{{Name: "Some Artist"}},
			},
		})
	}
	return matches
}

func newTestApp(apiKey string, lookup identify.Lookup, pre identify.Preprocessor) *App {
	cfg := &config.Config{}
	cfg.AcoustID.ClientKey = apiKey
	cfg.AcoustID.MaxResults = 3
	manager := config.NewManager(cfg)
	return &App{
		Config:   manager,
		Identify: identify.NewService(manager, stubFingerprinter{}, lookup, pre, nil),
		Recorder: recording.NewService(manager),
	}
}

func runCommand(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	cmd := Build(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func audioFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRoot_APIKeyFlagLandsInConfig(t *testing.T) {
	lookup := &stubLookup{matches: stubMatches(1)}
	app := newTestApp("", lookup, nil)

	out, err := runCommand(t, app, "--api-key", "flag-key", "--file", audioFixture(t))
	if err != nil {
		t.Fatalf("expected identification to succeed with the flag key, got %v", err)
	}
	if got := app.Config.Get().AcoustID.ClientKey; got != "flag-key" {
		t.Errorf("ClientKey = %q, want %q", got, "flag-key")
	}
	if !strings.Contains(out, "Song 0") {
		t.Errorf("match not rendered: %s", out)
	}
}

func TestRoot_VerboseFlagRaisesLogLevel(t *testing.T) {
	app := newTestApp("key", &stubLookup{}, nil)

	// Fails in RunE (no source), but the persistent pre-run already
	// folded the flag into the config.
	if _, err := runCommand(t, app, "--verbose"); err == nil {
		t.Fatal("expected error without --file or --record")
	}
	cfg := app.Config.Get()
	if cfg.Logger.Level != "debug" || !cfg.Logger.Enabled {
		t.Errorf("verbose did not enable debug logging: %+v", cfg.Logger)
	}
}

func TestRoot_MaxResultsFlagLimitsOutput(t *testing.T) {
	lookup := &stubLookup{matches: stubMatches(5)}
	app := newTestApp("key", lookup, nil)

	out, err := runCommand(t, app, "--file", audioFixture(t), "--max-results", "2")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := strings.Count(out, "Match #"); got != 2 {
		t.Errorf("expected 2 match blocks, got %d:\n%s", got, out)
	}
}

func TestRoot_MaxResultsDefaultsFromConfig(t *testing.T) {
	lookup := &stubLookup{matches: stubMatches(5)}
	app := newTestApp("key", lookup, nil)

	out, err := runCommand(t, app, "--file", audioFixture(t))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := strings.Count(out, "Match #"); got != 3 {
		t.Errorf("expected the configured 3 match blocks, got %d:\n%s", got, out)
	}
}

func TestRoot_PreprocessFlagReachesPipeline(t *testing.T) {
	lookup := &stubLookup{matches: stubMatches(1)}
	pre := &spyPreprocessor{}
	app := newTestApp("key", lookup, pre)

	if _, err := runCommand(t, app, "--file", audioFixture(t), "--preprocess"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !pre.called {
		t.Error("preprocessor not invoked despite --preprocess")
	}
}

func TestRoot_FileAndRecordAreMutuallyExclusive(t *testing.T) {
	lookup := &stubLookup{matches: stubMatches(1)}
	app := newTestApp("key", lookup, nil)

	_, err := runCommand(t, app, "--file", "x.mp3", "--record", "5")
	if err == nil {
		t.Fatal("expected error for --file together with --record")
	}
	if lookup.calls != 0 {
		t.Errorf("identification must not run, got %d lookup calls", lookup.calls)
	}
}

func TestRoot_NoSourceErrors(t *testing.T) {
	app := newTestApp("key", &stubLookup{}, nil)

	_, err := runCommand(t, app)
	if err == nil {
		t.Fatal("expected error when neither --file nor --record is given")
	}
	if !strings.Contains(err.Error(), "nothing to identify") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRoot_TagRequiresFile(t *testing.T) {
	lookup := &stubLookup{}
	app := newTestApp("key", lookup, nil)

	_, err := runCommand(t, app, "--record", "5", "--tag")
	if err == nil || !strings.Contains(err.Error(), "--tag requires --file") {
		t.Fatalf("expected --tag requires --file error, got %v", err)
	}
	if lookup.calls != 0 {
		t.Errorf("identification must not run, got %d lookup calls", lookup.calls)
	}
}

func TestRoot_KeepRequiresRecord(t *testing.T) {
	app := newTestApp("key", &stubLookup{matches: stubMatches(1)}, nil)

	_, err := runCommand(t, app, "--file", audioFixture(t), "--keep")
	if err == nil || !strings.Contains(err.Error(), "--keep requires --record") {
		t.Fatalf("expected --keep requires --record error, got %v", err)
	}
}
