// Package humming implements the best-effort cleanup chain applied to
// hummed or noisy recordings before fingerprinting: decode to mono at a
// fixed rate, reduce steady noise, normalize, and optionally shift
// pitch.
package humming

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/contre95/soundprint/src/features/config"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Transcoder decodes arbitrary audio into a WAV file.
type Transcoder interface {
	DecodeToWAV(ctx context.Context, inputPath, outputPath string, sampleRate, channels int) error
}

// Service runs the preprocessing chain.
type Service struct {
	config     *config.Manager
	transcoder Transcoder
}

// NewService creates a new preprocessing service.
func NewService(cfg *config.Manager, transcoder Transcoder) *Service {
	return &Service{config: cfg, transcoder: transcoder}
}

// Process cleans up the audio at filePath and returns the path of the
// processed WAV plus a cleanup func. Callers treat failure as
// non-fatal and fall back to the original file.
func (s *Service) Process(ctx context.Context, filePath string) (string, func(), error) {
	cfg := s.config.Get().Preprocess

	tmpDir, err := os.MkdirTemp("", "soundprint-preprocess-")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(tmpDir) }

	decoded := filepath.Join(tmpDir, "decoded.wav")
	if err := s.transcoder.DecodeToWAV(ctx, filePath, decoded, cfg.TargetSampleRate, 1); err != nil {
		cleanup()
		return "", nil, err
	}

	samples, rate, err := readWAV(decoded)
	if err != nil {
		cleanup()
		return "", nil, err
	}

	if cfg.NoiseReduction {
		slog.Debug("Applying spectral noise reduction", "samples", len(samples))
		samples = spectralSubtract(samples)
	}
	samples = normalize(samples, 0.95)

	outPath := filepath.Join(tmpDir, "clean.wav")
	if err := writeWAV(outPath, samples, rate); err != nil {
		cleanup()
		return "", nil, err
	}

	if cfg.PitchShiftSemitones != 0 {
		pitched := filepath.Join(tmpDir, "pitched.wav")
		if err := pitchShift(ctx, outPath, pitched, cfg.PitchShiftSemitones); err != nil {
			// Keep the unshifted audio, the rest of the chain already ran.
			slog.Warn("Pitch shift failed, keeping unshifted audio", "error", err)
		} else {
			outPath = pitched
		}
	}

	return outPath, cleanup, nil
}

// pitchShift shifts the audio by the given number of semitones using
// the sox CLI.
func pitchShift(ctx context.Context, inputPath, outputPath string, semitones float64) error {
	if _, err := exec.LookPath("sox"); err != nil {
		return fmt.Errorf("sox not found: %w", err)
	}
	cents := semitones * 100
	cmd := exec.CommandContext(ctx, "sox", inputPath, outputPath, "pitch", fmt.Sprintf("%.2f", cents))
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("sox pitch shift failed: %w: %s", err, output)
	}
	return nil
}

// readWAV loads a mono WAV file as float64 samples in [-1,1].
func readWAV(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, 0, fmt.Errorf("not a valid WAV file: %s", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read WAV data: %w", err)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := math.Pow(2, float64(bitDepth-1))

	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float64(v) / scale
	}
	return samples, buf.Format.SampleRate, nil
}

// writeWAV writes float64 samples in [-1,1] as a 16-bit mono WAV file.
func writeWAV(path string, samples []float64, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	data := make([]int, len(samples))
	for i, s := range samples {
		clipped := math.Max(-1, math.Min(1, s))
		data[i] = int(clipped * 32767)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	return encoder.Close()
}
