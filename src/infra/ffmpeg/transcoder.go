// Package ffmpeg shells out to ffmpeg for audio decoding and
// resampling, the same way fingerprinting shells out to fpcalc.
package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
)

// ErrFFmpegNotFound is returned when the ffmpeg binary cannot be found.
var ErrFFmpegNotFound = errors.New("ffmpeg binary not found")

const installHints = "ffmpeg not found. Please install it:\n" +
	"  Ubuntu/Debian: sudo apt-get install ffmpeg\n" +
	"  macOS: brew install ffmpeg"

// Transcoder decodes audio files via the ffmpeg CLI.
type Transcoder struct{}

// NewTranscoder creates a new Transcoder.
func NewTranscoder() *Transcoder {
	return &Transcoder{}
}

// DecodeToWAV decodes any input ffmpeg understands into a 16-bit PCM
// WAV file with the given sample rate and channel count.
func (t *Transcoder) DecodeToWAV(ctx context.Context, inputPath, outputPath string, sampleRate, channels int) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("%s: %w", installHints, ErrFFmpegNotFound)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", decodeArgs(inputPath, outputPath, sampleRate, channels)...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg decode failed: %w: %s", err, tail(output, 400))
	}
	return nil
}

// decodeArgs builds the ffmpeg argument list for DecodeToWAV.
func decodeArgs(inputPath, outputPath string, sampleRate, channels int) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-i", inputPath,
		"-ac", strconv.Itoa(channels),
		"-ar", strconv.Itoa(sampleRate),
		"-sample_fmt", "s16",
		outputPath,
	}
}

// tail returns the last n bytes of ffmpeg's output for error messages.
func tail(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[len(b)-n:])
}
