// Package config loads runtime settings from the environment and an
// optional .env file, and builds the process logger.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/brick-mosaic-mcp/internal/colorspace"
	"github.com/ironsheep/brick-mosaic-mcp/internal/mosaic"
	"github.com/ironsheep/brick-mosaic-mcp/internal/shape"
)

// Environment variable names.
const (
	EnvLogLevel    = "BRICK_MOSAIC_LOG_LEVEL"
	EnvLogFormat   = "BRICK_MOSAIC_LOG_FORMAT"
	EnvBatchSize   = "BRICK_MOSAIC_BATCH_SIZE"
	EnvDeviceScale = "BRICK_MOSAIC_DEVICE_SCALE"
	EnvSectionSize = "BRICK_MOSAIC_SECTION_SIZE"
	EnvPixelMode   = "BRICK_MOSAIC_PIXEL_MODE"
	EnvMetric      = "BRICK_MOSAIC_METRIC"
)

// Defaults.
const (
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultDeviceScale = 1.0
	DefaultSectionSize = 32
	DefaultPixelMode   = shape.SquareTile
)

// Config holds the runtime settings.
type Config struct {
	LogLevel    string
	LogFormat   string
	BatchSize   int
	DeviceScale float64
	SectionSize int
	PixelMode   shape.Mode
	Metric      colorspace.Metric

	// Warnings lists values that were rejected in favor of defaults. They
	// are collected here because the logger does not exist yet at load time.
	Warnings []string
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:    DefaultLogLevel,
		LogFormat:   DefaultLogFormat,
		BatchSize:   mosaic.DefaultBatchSize,
		DeviceScale: DefaultDeviceScale,
		SectionSize: DefaultSectionSize,
		PixelMode:   DefaultPixelMode,
		Metric:      colorspace.CIE76,
	}
}

// Load reads .env from the working directory, if present, then the process
// environment. A missing .env file is not an error.
func Load() *Config {
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a config from lookup, which has the shape of
// os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) *Config {
	cfg := Default()

	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvLogLevel); ok {
		if _, err := logrus.ParseLevel(v); err != nil {
			cfg.warn(EnvLogLevel, v)
		} else {
			cfg.LogLevel = strings.ToLower(v)
		}
	}
	if v, ok := get(EnvLogFormat); ok {
		switch f := strings.ToLower(v); f {
		case "text", "json":
			cfg.LogFormat = f
		default:
			cfg.warn(EnvLogFormat, v)
		}
	}
	if v, ok := get(EnvBatchSize); ok {
		if n, err := strconv.Atoi(v); err != nil || n <= 0 {
			cfg.warn(EnvBatchSize, v)
		} else {
			cfg.BatchSize = n
		}
	}
	if v, ok := get(EnvDeviceScale); ok {
		if f, err := strconv.ParseFloat(v, 64); err != nil || f <= 0 {
			cfg.warn(EnvDeviceScale, v)
		} else {
			cfg.DeviceScale = f
		}
	}
	if v, ok := get(EnvSectionSize); ok {
		if n, err := strconv.Atoi(v); err != nil || n <= 0 {
			cfg.warn(EnvSectionSize, v)
		} else {
			cfg.SectionSize = n
		}
	}
	if v, ok := get(EnvPixelMode); ok {
		if m, known := shape.Parse(v); !known || m == shape.None {
			cfg.warn(EnvPixelMode, v)
		} else {
			cfg.PixelMode = m
		}
	}
	if v, ok := get(EnvMetric); ok {
		if m, err := colorspace.ParseMetric(v); err != nil {
			cfg.warn(EnvMetric, v)
		} else {
			cfg.Metric = m
		}
	}

	return cfg
}

func (c *Config) warn(key, value string) {
	c.Warnings = append(c.Warnings, fmt.Sprintf("ignoring invalid %s=%q, using default", key, value))
}

// NewLogger builds a logger writing to w at the configured level and format.
// Pending load warnings are logged through it.
func (c *Config) NewLogger(w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	for _, msg := range c.Warnings {
		log.Warn(msg)
	}
	return log
}

// EngineConfig maps the settings onto a mosaic engine configuration.
func (c *Config) EngineConfig(log *logrus.Logger) mosaic.Config {
	return mosaic.Config{
		BatchSize:   c.BatchSize,
		DeviceScale: c.DeviceScale,
		Metric:      c.Metric,
		Logger:      logrus.NewEntry(log),
	}
}
