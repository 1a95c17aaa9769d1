package tag

import (
	"os"

	"github.com/contre95/soundprint/src/features/tagging"
	"github.com/dhowden/tag"
)

// Reader reads metadata already present in audio files.
type Reader struct{}

// NewReader creates a new Reader.
func NewReader() *Reader {
	return &Reader{}
}

// Read returns whatever metadata the file already carries. Files
// without tags yield an empty struct, not an error.
func (r *Reader) Read(filePath string) (tagging.Existing, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return tagging.Existing{}, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		// Untagged or unrecognized containers are not an error here.
		return tagging.Existing{}, nil
	}
	return tagging.Existing{
		Title:  m.Title(),
		Artist: m.Artist(),
		Album:  m.Album(),
	}, nil
}
