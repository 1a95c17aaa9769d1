// Package cli wires the application services into the command tree.
package cli

import (
	"log/slog"

	"github.com/contre95/soundprint/src/features/config"
	"github.com/contre95/soundprint/src/features/history"
	"github.com/contre95/soundprint/src/features/hosting"
	"github.com/contre95/soundprint/src/features/identify"
	"github.com/contre95/soundprint/src/features/logging"
	"github.com/contre95/soundprint/src/features/recording"
	"github.com/contre95/soundprint/src/features/tagging"
	"github.com/contre95/soundprint/src/features/watch"
	"github.com/spf13/cobra"
)

// App bundles the services the commands operate on. History, tagger and
// server may be nil when their feature is disabled.
type App struct {
	Config   *config.Manager
	Identify *identify.Service
	Recorder *recording.Service
	History  *history.Service
	Watcher  *watch.Service
	Tagger   *tagging.Service
	Server   *hosting.Server
}

// Build assembles the full command tree.
func Build(app *App) *cobra.Command {
	root := newRootCmd(app)
	root.AddCommand(
		newDevicesCmd(),
		newHistoryCmd(app),
		newWatchCmd(app),
		newServeCmd(app),
		newVersionCmd(),
	)
	return root
}

// applyGlobalFlags folds flag overrides into the live configuration
// before any command runs.
func applyGlobalFlags(app *App, apiKey string, verbose bool) {
	cfg := app.Config.Get()
	changed := false

	if apiKey != "" {
		updated := *cfg
		updated.AcoustID.ClientKey = apiKey
		cfg = &updated
		changed = true
	}
	if verbose && cfg.Logger.Level != "debug" {
		updated := *cfg
		updated.Logger.Enabled = true
		updated.Logger.Level = "debug"
		cfg = &updated
		changed = true
	}

	if changed {
		app.Config.Update(cfg)
		slog.SetDefault(logging.SetupLogger(app.Config))
	}
}
