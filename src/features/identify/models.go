package identify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/contre95/soundprint/src/music"
)

var (
	// ErrNoAPIKey is returned when no AcoustID client key is configured.
	ErrNoAPIKey = errors.New("no AcoustID API key configured")
	// ErrFileNotFound is returned when the input audio file does not exist.
	ErrFileNotFound = errors.New("audio file not found")
	// ErrNoMatches is returned when the lookup service knows nothing about the audio.
	ErrNoMatches = errors.New("no matching recordings found")
)

// Source labels where the identified audio came from.
const (
	SourceFile      = "file"
	SourceRecording = "recording"
	SourceUpload    = "upload"
)

// Options controls a single identification.
type Options struct {
	MaxResults int
	Preprocess bool
	Source     string
}

// FingerprintProvider computes an acoustic fingerprint for an audio file.
type FingerprintProvider interface {
	GenerateFingerprint(ctx context.Context, filePath string) (music.Fingerprint, error)
}

// Lookup resolves a fingerprint to candidate matches via a remote service.
type Lookup interface {
	Lookup(ctx context.Context, fp music.Fingerprint) ([]music.Match, error)
}

// Preprocessor cleans up hummed or noisy audio before fingerprinting.
// It returns the path of the cleaned file and a cleanup func.
type Preprocessor interface {
	Process(ctx context.Context, filePath string) (string, func(), error)
}

// Digest hashes a fingerprint for use as a local history key.
func Digest(fp music.Fingerprint) string {
	sum := sha256.Sum256([]byte(fp.Value))
	return hex.EncodeToString(sum[:])
}
