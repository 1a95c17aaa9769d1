// Package fingerprint computes Chromaprint fingerprints by shelling
// out to the fpcalc tool, which also handles audio decoding.
package fingerprint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"

	"github.com/contre95/soundprint/src/music"
)

// ErrFpcalcNotFound is returned when the fpcalc binary cannot be found.
var ErrFpcalcNotFound = errors.New("fpcalc binary not found")

const installHints = "fpcalc not found. Please install chromaprint tools:\n" +
	"  Nix: nix-shell -p chromaprint\n" +
	"  Ubuntu/Debian: sudo apt-get install chromaprint-tools\n" +
	"  macOS: brew install chromaprint\n" +
	"  Or download from: https://acoustid.org/chromaprint"

// Service generates Chromaprint fingerprints for audio files.
type Service struct{}

// NewService creates a new fingerprint service.
func NewService() *Service {
	return &Service{}
}

// GenerateFingerprint generates a fingerprint and measures the duration
// of an audio file.
func (s *Service) GenerateFingerprint(ctx context.Context, filePath string) (music.Fingerprint, error) {
	if _, err := exec.LookPath("fpcalc"); err != nil {
		return music.Fingerprint{}, fmt.Errorf("%s: %w", installHints, ErrFpcalcNotFound)
	}

	cmd := exec.CommandContext(ctx, "fpcalc", "-json", filePath)
	output, err := cmd.Output()
	if err != nil {
		return music.Fingerprint{}, fmt.Errorf("failed to generate fingerprint with fpcalc: %w", err)
	}

	return parseOutput(output)
}

// parseOutput decodes fpcalc's -json output.
func parseOutput(output []byte) (music.Fingerprint, error) {
	var result struct {
		Fingerprint string  `json:"fingerprint"`
		Duration    float64 `json:"duration"`
	}
	if err := json.Unmarshal(output, &result); err != nil {
		return music.Fingerprint{}, fmt.Errorf("failed to parse fpcalc output: %w", err)
	}
	if result.Fingerprint == "" {
		return music.Fingerprint{}, fmt.Errorf("fpcalc produced an empty fingerprint")
	}
	return music.Fingerprint{
		Value:    result.Fingerprint,
		Duration: int(result.Duration),
	}, nil
}
