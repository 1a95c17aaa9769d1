package identify

import (
	"fmt"
	"io"
	"strings"

	"github.com/contre95/soundprint/src/music"
)

// RenderMatches writes the match blocks to w, best match first.
func RenderMatches(w io.Writer, matches []music.Match) {
	fmt.Fprintf(w, "Found %d match(es)\n", len(matches))
	fmt.Fprintln(w, strings.Repeat("=", 60))

	for i, m := range matches {
		fmt.Fprintf(w, "\nMatch #%d (confidence %s)\n", i+1, m.ScorePercent())
		fmt.Fprintf(w, "  Title:  %s\n", m.Recording.Title)
		fmt.Fprintf(w, "  Artist: %s\n", m.ArtistNames())
		if m.Recording.Duration > 0 {
			fmt.Fprintf(w, "  Length: %d:%02d\n", m.Recording.Duration/60, m.Recording.Duration%60)
		}
		if i < len(matches)-1 {
			fmt.Fprintf(w, "%s\n", strings.Repeat("-", 40))
		}
	}
}

// RenderNoMatchHelp writes guidance for when the lookup returned nothing.
func RenderNoMatchHelp(w io.Writer) {
	fmt.Fprintln(w, "No matches found in the AcoustID database.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "This could be because:")
	fmt.Fprintln(w, "  - the song is not in the database")
	fmt.Fprintln(w, "  - the audio quality is too low")
	fmt.Fprintln(w, "  - the recording is too short or heavily modified")
	fmt.Fprintln(w, "  - it's a very obscure or new song")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tips for better recognition:")
	fmt.Fprintln(w, "  - record for 15+ seconds")
	fmt.Fprintln(w, "  - for humming, stay on pitch and hum the main melody")
	fmt.Fprintln(w, "  - try --preprocess for hummed or noisy recordings")
}
