package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpar/hyperapi/bootstrap"
)

var seed bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the hypermedia API server",
	Long: `Start the hyperapi server.

The server will:
  - Load configuration from hyperapi.yaml (or --config)
  - Or load configuration from HYPERAPI_* environment variables
  - Open and migrate the database
  - Serve resources under /p/, forms under /f/, binaries under /b/
  - Reload log level, hypermedia settings and users on SIGHUP or file change

Environment variables (for container deployments):
  HYPERAPI_DATABASE_DSN     - Database path (default: hyperapi.db)
  HYPERAPI_SERVER_PORT      - Server port (default: 8080)
  HYPERAPI_SERVER_BASE_URL  - Public URL used in links
  HYPERAPI_LOG_LEVEL        - Log level: debug, info, warn, error
  HYPERAPI_DEFAULT_FORMAT   - hydra, hal or jsonapi

Examples:
  hyperapi serve
  hyperapi serve --seed
  hyperapi serve --config /etc/hyperapi/config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&seed, "seed", false, "fill an empty database with sample content")
}

func runServe(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfgFile); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Running with environment variables (no config file)")
	}

	app, err := bootstrap.New(bootstrap.Options{ConfigPath: cfgFile, Seed: seed})
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	// Run (blocks until shutdown)
	return app.Run()
}
