package config

// Config holds the application configuration.
type Config struct {
	Logger     Logger     `yaml:"logger"`
	AcoustID   AcoustID   `yaml:"acoustid" validate:"required"`
	Recording  Recording  `yaml:"recording"`
	Preprocess Preprocess `yaml:"preprocess"`
	History    History    `yaml:"history"`
	Watch      Watch      `yaml:"watch"`
	Tagging    Tagging    `yaml:"tagging"`
	Server     Server     `yaml:"server"`
}

// Logger holds the configuration for the app logging.
type Logger struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
}

// AcoustID holds the configuration for the fingerprint lookup service.
type AcoustID struct {
	ClientKey      string `yaml:"client_key"`
	BaseURL        string `yaml:"base_url" validate:"required,url"`
	Meta           string `yaml:"meta"`
	TimeoutSeconds int    `yaml:"timeout_seconds" validate:"gte=1"`
	MaxResults     int    `yaml:"max_results" validate:"gte=1,lte=10"`
}

// Recording holds the configuration for microphone capture.
type Recording struct {
	SampleRate      int    `yaml:"sample_rate" validate:"gte=8000"`
	Channels        int    `yaml:"channels" validate:"gte=1,lte=2"`
	FramesPerBuffer int    `yaml:"frames_per_buffer" validate:"gte=64"`
	Device          string `yaml:"device"`    // input device name substring; empty picks the default
	KeepPath        string `yaml:"keep_path"` // when set, recordings named after the best match are kept here
}

// Preprocess holds the configuration for the humming/voice cleanup
// chain applied before fingerprinting.
type Preprocess struct {
	Enabled             bool    `yaml:"enabled"`
	TargetSampleRate    int     `yaml:"target_sample_rate" validate:"gte=8000"`
	NoiseReduction      bool    `yaml:"noise_reduction"`
	PitchShiftSemitones float64 `yaml:"pitch_shift_semitones" validate:"gte=-12,lte=12"`
}

// History holds the configuration for the local recognition history.
type History struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Limit   int    `yaml:"limit" validate:"gte=1"`
}

// Watch holds the configuration for directory watch mode.
type Watch struct {
	Path       string   `yaml:"path"`
	Extensions []string `yaml:"extensions"`
}

// Tagging holds the configuration for writing identified metadata back
// into the source file.
type Tagging struct {
	Enabled bool    `yaml:"enabled"`
	Artwork Artwork `yaml:"artwork"`
}

// Artwork holds configuration for artwork handling.
type Artwork struct {
	Embedded EmbeddedArtwork `yaml:"embedded"`
}

// EmbeddedArtwork holds configuration for embedded artwork.
type EmbeddedArtwork struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
	Quality int  `yaml:"quality"`
}

// Server holds the configuration for the serve-mode HTTP API.
type Server struct {
	PrintRoutes bool   `yaml:"show_routes"`
	Port        uint32 `yaml:"port"`
}
