package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/contre95/soundprint/src/features/identify"
	"github.com/contre95/soundprint/src/music"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	apiKey     string
	file       string
	record     int
	maxResults int
	preprocess bool
	tag        bool
	keep       bool
	verbose    bool
}

func newRootCmd(app *App) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "soundprint",
		Short: "Identify songs by acoustic fingerprint",
		Long: `Soundprint identifies music using Chromaprint fingerprints and the
AcoustID database. It can fingerprint an existing audio file or record
a snippet from the microphone, optionally cleaning up hummed or noisy
input first.

Examples:
  soundprint --file song.mp3
  soundprint --record 15
  soundprint --record 20 --preprocess
  soundprint --file rip.flac --tag --max-results 5`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			applyGlobalFlags(app, flags.apiKey, flags.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIdentify(cmd, app, flags)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.apiKey, "api-key", "", "AcoustID client API key (overrides config and ACOUSTID_API_KEY)")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "audio file to identify")
	cmd.Flags().IntVarP(&flags.record, "record", "r", 0, "record N seconds from the microphone and identify that")
	cmd.Flags().IntVarP(&flags.maxResults, "max-results", "n", 0, "maximum matches to show (1-10)")
	cmd.Flags().BoolVarP(&flags.preprocess, "preprocess", "p", false, "clean up hummed or noisy audio before fingerprinting")
	cmd.Flags().BoolVarP(&flags.tag, "tag", "t", false, "write the best match into the file's tags (with --file)")
	cmd.Flags().BoolVarP(&flags.keep, "keep", "k", false, "keep the recording, named after the best match (with --record)")
	cmd.MarkFlagsMutuallyExclusive("file", "record")

	return cmd
}

// runIdentify is the default command: identify a file or a fresh
// recording and print the matches.
func runIdentify(cmd *cobra.Command, app *App, flags *rootFlags) error {
	if flags.file == "" && flags.record == 0 {
		return fmt.Errorf("nothing to identify: pass --file or --record (see --help)")
	}
	if flags.tag && flags.file == "" {
		return fmt.Errorf("--tag requires --file")
	}
	if flags.keep && flags.record == 0 {
		return fmt.Errorf("--keep requires --record")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	path := flags.file
	source := identify.SourceFile
	if flags.record > 0 {
		recorded, cleanup, err := app.Recorder.Record(ctx, time.Duration(flags.record)*time.Second)
		if err != nil {
			return fmt.Errorf("recording failed: %w", err)
		}
		defer cleanup()
		path = recorded
		source = identify.SourceRecording
	}

	opts := identify.Options{
		MaxResults: flags.maxResults,
		Preprocess: flags.preprocess || app.Config.Get().Preprocess.Enabled,
		Source:     source,
	}
	matches, err := app.Identify.Identify(ctx, path, opts)
	if err != nil {
		if errors.Is(err, identify.ErrNoMatches) {
			identify.RenderNoMatchHelp(cmd.OutOrStdout())
		}
		return err
	}

	identify.RenderMatches(cmd.OutOrStdout(), matches)

	best := matches[0]
	if flags.tag {
		tagFile(ctx, app, flags.file, best)
	}
	if flags.keep {
		keepRecording(app, path, best)
	}
	return nil
}

func tagFile(ctx context.Context, app *App, path string, best music.Match) {
	if app.Tagger == nil {
		slog.Warn("Tagging is disabled in the configuration")
		return
	}
	if err := app.Tagger.Apply(ctx, path, best); err != nil {
		slog.Error("Failed to tag file", "path", path, "error", err)
		return
	}
	slog.Info("Tagged file with best match", "path", path, "title", best.Recording.Title)
}

func keepRecording(app *App, path string, best music.Match) {
	dest, err := app.Recorder.Keep(path, best.ArtistNames(), best.Recording.Title)
	if err != nil {
		slog.Error("Failed to keep recording", "error", err)
		return
	}
	slog.Info("Kept recording", "path", dest)
}
