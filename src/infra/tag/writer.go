// Package tag reads and writes audio file metadata for MP3 and FLAC.
package tag

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/contre95/soundprint/src/features/config"
	"github.com/contre95/soundprint/src/music"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"
	"github.com/nfnt/resize"

	_ "golang.org/x/image/webp"
	_ "image/gif"
)

// Writer writes identified metadata into audio files.
type Writer struct {
	config *config.Manager
}

// NewWriter creates a new Writer.
func NewWriter(cfg *config.Manager) *Writer {
	return &Writer{config: cfg}
}

// WriteMatch writes the identified title/artist into the file's tags.
// artwork may be nil; when present it is resized per config and
// embedded as the front cover.
func (w *Writer) WriteMatch(ctx context.Context, filePath string, match music.Match, artwork []byte) error {
	artworkMime := ""
	if len(artwork) > 0 {
		artwork, artworkMime = w.prepareArtwork(artwork)
	}

	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".mp3":
		return w.tagMP3(filePath, match, artwork, artworkMime)
	case ".flac":
		return w.tagFLAC(filePath, match, artwork, artworkMime)
	default:
		return fmt.Errorf("tagging not supported for %s files", ext)
	}
}

// tagMP3 handles MP3 tagging using id3v2.
func (w *Writer) tagMP3(filePath string, match music.Match, artwork []byte, artworkMime string) error {
	tag, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open MP3 file for tagging: %w", err)
	}
	defer tag.Close()

	tag.SetTitle(match.Recording.Title)
	tag.SetArtist(match.ArtistNames())
	if match.Recording.ID != "" {
		tag.AddTextFrame(tag.CommonID("Unique file identifier"), id3v2.EncodingUTF8, "https://musicbrainz.org/recording/"+match.Recording.ID)
	}

	if len(artwork) > 0 {
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    artworkMime,
			PictureType: id3v2.PTFrontCover,
			Description: "",
			Picture:     artwork,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save MP3 tags: %w", err)
	}
	slog.Info("Tagged MP3 file", "path", filePath, "title", match.Recording.Title)
	return nil
}

// tagFLAC handles FLAC tagging via Vorbis comments.
func (w *Writer) tagFLAC(filePath string, match music.Match, artwork []byte, artworkMime string) error {
	f, err := goflac.ParseFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to parse FLAC file: %w", err)
	}

	var comment *flacvorbis.MetaDataBlockVorbisComment
	commentIndex := -1
	for idx, meta := range f.Meta {
		if meta.Type == goflac.VorbisComment {
			comment, err = flacvorbis.ParseFromMetaDataBlock(*meta)
			if err != nil {
				return fmt.Errorf("failed to parse Vorbis comment: %w", err)
			}
			commentIndex = idx
			break
		}
	}
	if comment == nil {
		comment = flacvorbis.New()
	}

	comment.Add(flacvorbis.FIELD_TITLE, match.Recording.Title)
	for _, artist := range match.Recording.Artists {
		if artist.Name != "" {
			comment.Add(flacvorbis.FIELD_ARTIST, artist.Name)
		}
	}
	if match.Recording.ID != "" {
		comment.Add("MUSICBRAINZ_TRACKID", match.Recording.ID)
	}

	commentMeta := comment.Marshal()
	if commentIndex >= 0 {
		f.Meta[commentIndex] = &commentMeta
	} else {
		f.Meta = append(f.Meta, &commentMeta)
	}

	if len(artwork) > 0 {
		pic, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "", artwork, artworkMime)
		if err != nil {
			slog.Warn("Failed to build FLAC picture block", "error", err)
		} else {
			marshaled := pic.Marshal()
			f.Meta = append(f.Meta, &marshaled)
		}
	}

	if err := f.Save(filePath); err != nil {
		return fmt.Errorf("failed to save FLAC tags: %w", err)
	}
	slog.Info("Tagged FLAC file", "path", filePath, "title", match.Recording.Title)
	return nil
}

// prepareArtwork shrinks artwork to fit the configured bound and
// returns the bytes together with their MIME type. JPEG and PNG keep
// their format; everything else is re-encoded as JPEG.
func (w *Writer) prepareArtwork(imgData []byte) ([]byte, string) {
	embedded := w.config.Get().Tagging.Artwork.Embedded
	maxSize := embedded.Size

	img, format, err := image.Decode(bytes.NewReader(imgData))
	if err != nil {
		slog.Warn("Failed to decode artwork, embedding as-is", "error", err)
		return imgData, http.DetectContentType(imgData)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	needsResize := maxSize > 0 && (width > maxSize || height > maxSize)
	if needsResize {
		if width > height {
			height = (height * maxSize) / width
			width = maxSize
		} else {
			width = (width * maxSize) / height
			height = maxSize
		}
		img = resize.Resize(uint(width), uint(height), img, resize.Lanczos3)
	} else if format == "jpeg" || format == "png" {
		return imgData, "image/" + format
	}

	quality := embedded.Quality
	if quality <= 0 {
		quality = 85
	}

	var buf bytes.Buffer
	if format == "png" {
		err = png.Encode(&buf, img)
	} else {
		format = "jpeg"
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		slog.Warn("Failed to encode resized artwork, embedding original", "error", err)
		return imgData, http.DetectContentType(imgData)
	}
	return buf.Bytes(), "image/" + format
}
