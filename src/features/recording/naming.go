package recording

import (
	"strings"

	"github.com/gosimple/unidecode"
)

// SafeFileName builds a filesystem-safe file name like
// "Daft Punk - One More Time.wav" from identified metadata. Non-ASCII
// characters are transliterated.
func SafeFileName(artist, title, ext string) string {
	name := strings.TrimSpace(artist)
	if name != "" && strings.TrimSpace(title) != "" {
		name += " - "
	}
	name += strings.TrimSpace(title)
	if name == "" {
		name = "recording"
	}

	name = unidecode.Unidecode(name)

	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "",
		"?", "",
		"\"", "'",
		"<", "(",
		">", ")",
		"|", "-",
		"\x00", "",
	)
	name = replacer.Replace(name)
	name = strings.Join(strings.Fields(name), " ") // collapse whitespace

	const maxLen = 120
	if len(name) > maxLen {
		name = strings.TrimSpace(name[:maxLen])
	}
	return name + ext
}
