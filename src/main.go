package main

import (
	"errors"
	"log"
	"log/slog"
	"os"

	"github.com/contre95/soundprint/src/features/cli"
	"github.com/contre95/soundprint/src/features/config"
	"github.com/contre95/soundprint/src/features/history"
	"github.com/contre95/soundprint/src/features/hosting"
	"github.com/contre95/soundprint/src/features/humming"
	"github.com/contre95/soundprint/src/features/identify"
	"github.com/contre95/soundprint/src/features/logging"
	"github.com/contre95/soundprint/src/features/metrics"
	"github.com/contre95/soundprint/src/features/recording"
	"github.com/contre95/soundprint/src/features/tagging"
	"github.com/contre95/soundprint/src/features/watch"
	"github.com/contre95/soundprint/src/infra/acoustid"
	"github.com/contre95/soundprint/src/infra/coverart"
	"github.com/contre95/soundprint/src/infra/database"
	"github.com/contre95/soundprint/src/infra/ffmpeg"
	"github.com/contre95/soundprint/src/infra/fingerprint"
	"github.com/contre95/soundprint/src/infra/tag"
)

func main() {
	// Load configuration
	configPath := os.Getenv("SOUNDPRINT_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfgManager, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Setup default logger with slog
	logger := logging.SetupLogger(cfgManager)
	slog.SetDefault(logger)

	metrics.Register()

	// Infra adapters
	fingerprinter := fingerprint.NewService()
	lookup := acoustid.NewClient(cfgManager)
	transcoder := ffmpeg.NewTranscoder()

	// Local history, when enabled
	var historyService *history.Service
	if cfgManager.Get().History.Enabled {
		store, err := database.NewSqliteHistory(cfgManager.Get().History.Path)
		if err != nil {
			log.Fatalf("failed to open history database: %v", err)
		}
		defer store.Close()
		historyService = history.NewService(store, cfgManager)
	}

	// The identification pipeline
	preprocessor := humming.NewService(cfgManager, transcoder)
	identifyService := identify.NewService(cfgManager, fingerprinter, lookup, preprocessor, historyService)

	// Tagging, when enabled
	var taggingService *tagging.Service
	if cfgManager.Get().Tagging.Enabled {
		taggingService = tagging.NewService(cfgManager, tag.NewWriter(cfgManager), tag.NewReader(), coverart.NewClient())
	}

	app := &cli.App{
		Config:   cfgManager,
		Identify: identifyService,
		Recorder: recording.NewService(cfgManager),
		History:  historyService,
		Watcher:  watch.NewService(cfgManager, identifyService),
		Tagger:   taggingService,
		Server:   hosting.NewServer(cfgManager, identifyService, historyService),
	}

	if err := cli.Build(app).Execute(); err != nil {
		if !errors.Is(err, identify.ErrNoMatches) {
			slog.Error("Command failed", "error", err)
		}
		os.Exit(1)
	}
}
