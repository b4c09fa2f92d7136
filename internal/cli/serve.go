package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/brick-mosaic-mcp/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdin/stdout",
	Long: `Serves the mosaic tools over the MCP protocol (JSON-RPC 2.0, one
message per line). Configure it in your MCP client as a stdio server.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log := setup()
		log.WithField("version", build.Version).Debug("starting MCP server")

		srv := server.New(server.Options{Config: cfg, Logger: log, Version: build.Version})
		return srv.Serve(cmd.Context(), os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
