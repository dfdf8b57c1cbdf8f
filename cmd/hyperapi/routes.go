package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artpar/hyperapi/bootstrap"
	"github.com/artpar/hyperapi/core/affordance"
	"github.com/artpar/hyperapi/core/convention"
	"github.com/artpar/hyperapi/core/document"
	"github.com/artpar/hyperapi/core/formatter"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the registered operations",
	Long: `List every operation the API exposes under /p/.

Examples:
  hyperapi routes
  hyperapi routes -O json
  hyperapi routes --columns method,path,operation`,
	RunE: runRoutes,
}

var (
	routesOutput  string
	routesColumns string
)

func init() {
	rootCmd.AddCommand(routesCmd)

	routesCmd.Flags().StringVarP(&routesOutput, "output", "O", "table", "output format: "+strings.Join(formatter.List(), ", "))
	routesCmd.Flags().StringVar(&routesColumns, "columns", "", "comma-separated columns to show")
}

func runRoutes(cmd *cobra.Command, args []string) error {
	f, ok := formatter.Get(routesOutput)
	if !ok {
		return fmt.Errorf("unknown output format %q", routesOutput)
	}

	_, router, err := bootstrap.Schema(nil)
	if err != nil {
		return err
	}

	doc := document.NewArray()
	for _, a := range router.Actions() {
		resource := a.Key.Resource
		if a.Key.Nested != "" {
			resource = a.Key.Nested
		}
		row := doc.AppendObject().
			Set("method", a.Key.Method).
			Set("path", "/p/"+a.Key.Path()).
			Set("kind", a.Key.Kind().String()).
			Set("operation", convention.OperationName(resource, affordance.Label(a.Key.Method))).
			Set("returns", a.Returns.String())
		if a.Form != nil {
			row.Set("form", "/f/"+a.Form.ID())
		} else {
			row.Set("form", "")
		}
		row.Set("description", a.Description)
	}

	var columns []string
	if routesColumns != "" {
		columns = strings.Split(routesColumns, ",")
	}
	return f.Format(cmd.OutOrStdout(), doc, formatter.FormatOptions{Columns: columns})
}
