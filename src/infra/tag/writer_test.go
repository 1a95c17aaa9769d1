package tag

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/contre95/soundprint/src/features/config"
)

func artworkConfig(maxSize int) *config.Manager {
	cfg := &config.Config{}
	cfg.Tagging.Artwork.Embedded.Enabled = true
	cfg.Tagging.Artwork.Embedded.Size = maxSize
	cfg.Tagging.Artwork.Embedded.Quality = 85
	return config.NewManager(cfg)
}

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height)), nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestPrepareArtwork_SmallPNGKeepsPNGMime(t *testing.T) {
	writer := NewWriter(artworkConfig(500))
	original := encodePNG(t, 100, 100)

	data, mime := writer.prepareArtwork(original)
	if mime != "image/png" {
		t.Errorf("PNG artwork labeled %q", mime)
	}
	if !bytes.Equal(data, original) {
		t.Error("small PNG should pass through unchanged")
	}
}

func TestPrepareArtwork_SmallJPEGKeepsJPEGMime(t *testing.T) {
	writer := NewWriter(artworkConfig(500))
	original := encodeJPEG(t, 100, 100)

	data, mime := writer.prepareArtwork(original)
	if mime != "image/jpeg" {
		t.Errorf("JPEG artwork labeled %q", mime)
	}
	if !bytes.Equal(data, original) {
		t.Error("small JPEG should pass through unchanged")
	}
}

func TestPrepareArtwork_ResizesAndKeepsFormat(t *testing.T) {
	writer := NewWriter(artworkConfig(50))

	data, mime := writer.prepareArtwork(encodePNG(t, 200, 100))
	if mime != "image/png" {
		t.Fatalf("resized PNG labeled %q", mime)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("resized artwork does not decode: %v", err)
	}
	if format != "png" {
		t.Errorf("resized artwork encoded as %q", format)
	}
	if img.Bounds().Dx() != 50 || img.Bounds().Dy() != 25 {
		t.Errorf("unexpected resized bounds: %v", img.Bounds())
	}
}

func TestPrepareArtwork_UndecodableFallsBackToSniffedMime(t *testing.T) {
	writer := NewWriter(artworkConfig(500))
	original := []byte("definitely not an image")

	data, mime := writer.prepareArtwork(original)
	if !bytes.Equal(data, original) {
		t.Error("undecodable artwork should pass through unchanged")
	}
	if mime == "" {
		t.Error("expected a sniffed MIME type, got empty string")
	}
}
