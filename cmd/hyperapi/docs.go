package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/artpar/hyperapi/bootstrap"
	"github.com/artpar/hyperapi/core/openapi"
	"github.com/artpar/hyperapi/pkg/hal"
	"github.com/artpar/hyperapi/pkg/hydra"
	"github.com/artpar/hyperapi/pkg/jsonapi"
)

var docsServer string

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Print the OpenAPI document",
	Long: `Print the OpenAPI 3 document describing every operation.

Examples:
  hyperapi docs > openapi.json
  hyperapi docs --server https://api.example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, router, err := bootstrap.Schema(nil)
		if err != nil {
			return err
		}

		gen := openapi.NewGenerator(router, reg, hydra.MediaType, hal.MediaType, jsonapi.ContentType)
		if docsServer != "" {
			gen.AddServer(docsServer, "")
		}
		data, err := openapi.NewService(gen, zerolog.Nop()).JSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(docsCmd)

	docsCmd.Flags().StringVar(&docsServer, "server", "", "server URL to list in the document")
}
