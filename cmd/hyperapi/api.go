package main

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/artpar/hyperapi/bootstrap"
)

var apiCmd = &cobra.Command{
	Use:   "api <resource> <command> [args]",
	Short: "Run resource operations against the local database",
	Long: `Run any registered operation directly against the configured
database, without the HTTP server. Calls act as the local operator.

Examples:
  hyperapi api blog-postings list
  hyperapi api blog-postings get 1 -O json
  hyperapi api people create --name "Grace Hopper"
  hyperapi api blog-postings delete 2 --force`,
	DisableFlagParsing: true,
	RunE:               runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)
}

func runAPI(cmd *cobra.Command, args []string) error {
	path, err := scanConfig(args)
	if err != nil {
		return err
	}

	app, err := bootstrap.New(bootstrap.Options{ConfigPath: path, Output: io.Discard})
	if err != nil {
		return err
	}
	defer app.Shutdown()

	inner := &cobra.Command{
		Use:           "hyperapi api",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	inner.PersistentFlags().StringP("config", "c", path, "config file path")
	if _, err := app.CLI(inner, cmd.OutOrStdout()); err != nil {
		return err
	}

	inner.SetArgs(args)
	inner.SetErr(cmd.ErrOrStderr())
	return inner.Execute()
}

// scanConfig picks --config out of args, which cobra leaves unparsed for
// this command.
func scanConfig(args []string) (string, error) {
	fs := pflag.NewFlagSet("api", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	path := fs.StringP("config", "c", cfgFile, "")
	// Help is handled by the inner command.
	fs.BoolP("help", "h", false, "")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	return *path, nil
}
