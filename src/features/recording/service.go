// Package recording captures audio from the default microphone via
// PortAudio and stores it as a WAV file for fingerprinting.
package recording

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/contre95/soundprint/src/features/config"
	"github.com/contre95/soundprint/src/features/metrics"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"
)

// ErrNoInputDevice is returned when no microphone is available.
var ErrNoInputDevice = errors.New("no audio input device available")

// Service records audio from the default input device.
type Service struct {
	config *config.Manager
}

// NewService creates a new recording service.
func NewService(cfg *config.Manager) *Service {
	return &Service{config: cfg}
}

// Record captures audio for the given duration into a temporary WAV
// file. The returned cleanup func removes the file; callers must invoke
// it even on error paths further down the pipeline.
func (s *Service) Record(ctx context.Context, duration time.Duration) (string, func(), error) {
	cfg := s.config.Get().Recording

	if err := portaudio.Initialize(); err != nil {
		return "", nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	defer portaudio.Terminate()

	tmpFile, err := os.CreateTemp("", "soundprint-recording-*.wav")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	path := tmpFile.Name()
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to remove recording temp file", "path", path, "error", err)
		}
	}

	encoder := wav.NewEncoder(tmpFile, cfg.SampleRate, 16, cfg.Channels, 1)

	if err := s.capture(ctx, encoder, duration); err != nil {
		encoder.Close()
		tmpFile.Close()
		cleanup()
		return "", nil, err
	}

	if err := encoder.Close(); err != nil {
		tmpFile.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		cleanup()
		return "", nil, err
	}

	metrics.RecordedSeconds.Add(duration.Seconds())
	slog.Debug("Recording complete", "path", path, "duration", duration)
	return path, cleanup, nil
}

// capture reads microphone frames and appends them to the encoder.
func (s *Service) capture(ctx context.Context, encoder *wav.Encoder, duration time.Duration) error {
	cfg := s.config.Get().Recording

	frames := make([]int16, cfg.FramesPerBuffer*cfg.Channels)
	stream, err := s.openStream(frames)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoInputDevice, err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("failed to start input stream: %w", err)
	}
	defer stream.Stop()

	slog.Info("Recording from microphone", "duration", duration, "sample_rate", cfg.SampleRate)

	totalFrames := int(duration.Seconds() * float64(cfg.SampleRate))
	framesPerSecond := cfg.SampleRate
	captured := 0
	lastAnnounced := -1

	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: cfg.Channels, SampleRate: cfg.SampleRate},
		Data:   make([]int, len(frames)),
	}

	for captured < totalFrames {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := stream.Read(); err != nil {
			return fmt.Errorf("failed to read from input stream: %w", err)
		}

		for i, v := range frames {
			buf.Data[i] = int(v)
		}
		if err := encoder.Write(buf); err != nil {
			return fmt.Errorf("failed to write recording: %w", err)
		}

		captured += cfg.FramesPerBuffer
		if second := captured / framesPerSecond; second != lastAnnounced {
			remaining := (totalFrames - captured + framesPerSecond - 1) / framesPerSecond
			if remaining > 0 {
				slog.Info("Recording...", "seconds_left", remaining)
			}
			lastAnnounced = second
		}
	}

	return nil
}

// openStream opens the configured input device, or the system default
// when none is configured. Device matching is by name substring, as
// printed by the devices subcommand.
func (s *Service) openStream(frames []int16) (*portaudio.Stream, error) {
	cfg := s.config.Get().Recording

	if cfg.Device == "" {
		return portaudio.OpenDefaultStream(cfg.Channels, 0, float64(cfg.SampleRate), cfg.FramesPerBuffer, frames)
	}

	all, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to list audio devices: %w", err)
	}
	for _, d := range all {
		if d.MaxInputChannels < cfg.Channels {
			continue
		}
		if !strings.Contains(strings.ToLower(d.Name), strings.ToLower(cfg.Device)) {
			continue
		}
		params := portaudio.LowLatencyParameters(d, nil)
		params.Input.Channels = cfg.Channels
		params.SampleRate = float64(cfg.SampleRate)
		params.FramesPerBuffer = cfg.FramesPerBuffer
		slog.Debug("Using configured input device", "name", d.Name)
		return portaudio.OpenStream(params, frames)
	}
	return nil, fmt.Errorf("no input device matching %q", cfg.Device)
}

// Keep moves a finished recording into the configured keep directory,
// named after the identified track. Returns the destination path.
func (s *Service) Keep(recordingPath, artist, title string) (string, error) {
	dir := s.config.Get().Recording.KeepPath
	if dir == "" {
		return "", fmt.Errorf("recording keep path is not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create keep directory: %w", err)
	}

	dest := filepath.Join(dir, SafeFileName(artist, title, ".wav"))
	data, err := os.ReadFile(recordingPath)
	if err != nil {
		return "", fmt.Errorf("failed to read recording: %w", err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to keep recording: %w", err)
	}
	return dest, nil
}
