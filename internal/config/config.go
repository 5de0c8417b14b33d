// Package config provides configuration management for the timeline agent.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DefaultPort             = 8788
	DefaultLogLevel         = "info"
	DefaultDataDir          = ".heimdex-timeline"
	DefaultProjectName      = "default"
	DefaultFPS              = 25.0
	DefaultPixelsPerFrame   = 4.0
	DefaultPreviewRate      = 12.0
	DefaultCommandRateLimit = 240 // per minute
	DefaultFFmpegBinary     = "ffmpeg"
	DefaultFFprobeBinary    = "ffprobe"

	EnvPort             = "HEIMDEX_TIMELINE_PORT"
	EnvLogLevel         = "HEIMDEX_TIMELINE_LOG_LEVEL"
	EnvDataDir          = "HEIMDEX_TIMELINE_DATA_DIR"
	EnvProjectName      = "HEIMDEX_TIMELINE_PROJECT"
	EnvFPS              = "HEIMDEX_TIMELINE_FPS"
	EnvPixelsPerFrame   = "HEIMDEX_TIMELINE_PIXELS_PER_FRAME"
	EnvPreviewRate      = "HEIMDEX_TIMELINE_PREVIEW_RATE"
	EnvCommandRateLimit = "HEIMDEX_TIMELINE_COMMAND_RATE_LIMIT"
	EnvFFmpeg           = "HEIMDEX_TIMELINE_FFMPEG"
	EnvFFprobe          = "HEIMDEX_TIMELINE_FFPROBE"
	EnvHeadless         = "HEIMDEX_TIMELINE_HEADLESS"

	DBFilename = "timeline.db"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	ProjectName() string
	FPS() float64
	PixelsPerFrame() float64
	PreviewRate() float64
	CommandRateLimit() int
	FFmpegBinary() string
	FFprobeBinary() string
	Headless() bool
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port             int
	logLevel         string
	dataDir          string
	projectName      string
	fps              float64
	pixelsPerFrame   float64
	previewRate      float64
	commandRateLimit int
	ffmpeg           string
	ffprobe          string
	headless         bool
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:             DefaultPort,
		logLevel:         DefaultLogLevel,
		dataDir:          defaultDataDir(),
		projectName:      DefaultProjectName,
		fps:              DefaultFPS,
		pixelsPerFrame:   DefaultPixelsPerFrame,
		previewRate:      DefaultPreviewRate,
		commandRateLimit: DefaultCommandRateLimit,
		ffmpeg:           DefaultFFmpegBinary,
		ffprobe:          DefaultFFprobeBinary,
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}
	if pn := strings.TrimSpace(os.Getenv(EnvProjectName)); pn != "" {
		cfg.projectName = pn
	}

	var err error
	if cfg.fps, err = positiveFloat(EnvFPS, cfg.fps); err != nil {
		return nil, err
	}
	if cfg.pixelsPerFrame, err = positiveFloat(EnvPixelsPerFrame, cfg.pixelsPerFrame); err != nil {
		return nil, err
	}
	if cfg.previewRate, err = positiveFloat(EnvPreviewRate, cfg.previewRate); err != nil {
		return nil, err
	}

	if rl := os.Getenv(EnvCommandRateLimit); rl != "" {
		n, err := strconv.Atoi(rl)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid %s: must be a positive integer", EnvCommandRateLimit)
		}
		cfg.commandRateLimit = n
	}

	if v := os.Getenv(EnvFFmpeg); v != "" {
		cfg.ffmpeg = v
	}
	if v := os.Getenv(EnvFFprobe); v != "" {
		cfg.ffprobe = v
	}

	if h := os.Getenv(EnvHeadless); h != "" {
		headless, err := strconv.ParseBool(h)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		cfg.headless = headless
	}

	return cfg, nil
}

func positiveFloat(env string, def float64) (float64, error) {
	raw := os.Getenv(env)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", env, err)
	}
	if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("invalid %s: must be positive", env)
	}
	return v, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// ProjectName is the stored project the agent opens on startup.
func (c *EnvConfig) ProjectName() string {
	return c.projectName
}

// FPS is the frame rate given to newly created projects.
func (c *EnvConfig) FPS() float64 {
	return c.fps
}

func (c *EnvConfig) PixelsPerFrame() float64 {
	return c.pixelsPerFrame
}

// PreviewRate caps playhead updates per second during playback.
func (c *EnvConfig) PreviewRate() float64 {
	return c.previewRate
}

// CommandRateLimit caps POST /commands requests per minute and client.
func (c *EnvConfig) CommandRateLimit() int {
	return c.commandRateLimit
}

func (c *EnvConfig) FFmpegBinary() string {
	return c.ffmpeg
}

func (c *EnvConfig) FFprobeBinary() string {
	return c.ffprobe
}

// Headless disables the system tray.
func (c *EnvConfig) Headless() bool {
	return c.headless
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
