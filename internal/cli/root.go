// Package cli wires the brick-mosaic commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ironsheep/brick-mosaic-mcp/internal/config"
)

// BuildInfo is stamped into the binary by ldflags.
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

var (
	build   = BuildInfo{Version: "dev", BuildTime: "unknown", GitCommit: "unknown"}
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "brick-mosaic",
	Short: "Turn images into brick stud mosaics",
	Long: `brick-mosaic maps an image onto a grid of studs using a palette of
brick colors, renders previews in four stud shapes and exports sectioned
build instructions.

Run "brick-mosaic serve" to expose the engine to an MCP client over stdio.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute(ctx context.Context, info BuildInfo) error {
	if info.Version != "" {
		build = info
	}
	rootCmd.Version = build.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"brick-mosaic %s (%s/%s, %s)\n  Build time: %s\n  Git commit: %s\n",
		build.Version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
		build.BuildTime, build.GitCommit,
	))
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// setup loads configuration and builds the logger. Logs always go to
// stderr; stdout carries MCP frames and reports.
func setup() (*config.Config, *logrus.Logger) {
	cfg := config.Load()
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, cfg.NewLogger(os.Stderr)
}
