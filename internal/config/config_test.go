package config

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/brick-mosaic-mcp/internal/colorspace"
	"github.com/ironsheep/brick-mosaic-mcp/internal/shape"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromLookupDefaults(t *testing.T) {
	cfg := FromLookup(lookupFrom(nil))
	require.Equal(t, Default(), cfg)
	require.Equal(t, 1000, cfg.BatchSize)
	require.Equal(t, shape.SquareTile, cfg.PixelMode)
	require.Equal(t, colorspace.CIE76, cfg.Metric)
}

func TestFromLookupValues(t *testing.T) {
	cfg := FromLookup(lookupFrom(map[string]string{
		EnvLogLevel:    "DEBUG",
		EnvLogFormat:   "json",
		EnvBatchSize:   "250",
		EnvDeviceScale: "2",
		EnvSectionSize: "16",
		EnvPixelMode:   "concentric_circle",
		EnvMetric:      "ciede2000",
	}))
	require.Empty(t, cfg.Warnings)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, 250, cfg.BatchSize)
	require.Equal(t, 2.0, cfg.DeviceScale)
	require.Equal(t, 16, cfg.SectionSize)
	require.Equal(t, shape.RoundPlate, cfg.PixelMode)
	require.Equal(t, colorspace.CIEDE2000, cfg.Metric)
}

func TestFromLookupInvalidFallsBack(t *testing.T) {
	cfg := FromLookup(lookupFrom(map[string]string{
		EnvLogLevel:    "loud",
		EnvLogFormat:   "xml",
		EnvBatchSize:   "-3",
		EnvDeviceScale: "abc",
		EnvSectionSize: "0",
		EnvPixelMode:   "hexagon",
		EnvMetric:      "euclid",
	}))
	require.Len(t, cfg.Warnings, 7)

	want := Default()
	want.Warnings = cfg.Warnings
	require.Equal(t, want, cfg)
}

func TestFromLookupBlankIgnored(t *testing.T) {
	cfg := FromLookup(lookupFrom(map[string]string{EnvBatchSize: "  "}))
	require.Empty(t, cfg.Warnings)
	require.Equal(t, 1000, cfg.BatchSize)
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	cfg.LogFormat = "json"
	cfg.Warnings = []string{"ignoring something"}

	var buf bytes.Buffer
	log := cfg.NewLogger(&buf)
	require.Equal(t, logrus.InfoLevel, log.GetLevel())
	require.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
	require.Contains(t, buf.String(), "ignoring something")

	engine := cfg.EngineConfig(log)
	require.Equal(t, cfg.BatchSize, engine.BatchSize)
	require.NotNil(t, engine.Logger)
}
