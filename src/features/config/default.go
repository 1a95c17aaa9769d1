package config

// createDefaultConfig creates a new Config with sensible default values.
func createDefaultConfig() *Config {
	return &Config{
		Logger: Logger{
			Enabled: true,
			Level:   "info",
			Format:  "text",
		},
		AcoustID: AcoustID{
			ClientKey:      "", // Get one from https://acoustid.org/new-application
			BaseURL:        "https://api.acoustid.org/v2/lookup",
			Meta:           "recordings+releasegroups+sources",
			TimeoutSeconds: 20,
			MaxResults:     3,
		},
		Recording: Recording{
			SampleRate:      22050,
			Channels:        1,
			FramesPerBuffer: 1024,
			Device:          "",
			KeepPath:        "",
		},
		Preprocess: Preprocess{
			Enabled:             false,
			TargetSampleRate:    22050,
			NoiseReduction:      true,
			PitchShiftSemitones: 0,
		},
		History: History{
			Enabled: true,
			Path:    "./history.db",
			Limit:   50,
		},
		Watch: Watch{
			Path:       "",
			Extensions: []string{".mp3", ".flac", ".wav", ".ogg", ".m4a", ".opus"},
		},
		Tagging: Tagging{
			Enabled: false,
			Artwork: Artwork{
				Embedded: EmbeddedArtwork{
					Enabled: true,
					Size:    1000,
					Quality: 85,
				},
			},
		},
		Server: Server{
			PrintRoutes: false,
			Port:        3636,
		},
	}
}
