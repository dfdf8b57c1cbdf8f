package bootstrap

import (
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/artpar/hyperapi/core/action"
	"github.com/artpar/hyperapi/core/channel/cli"
	"github.com/artpar/hyperapi/pkg/hydra"
	"github.com/artpar/hyperapi/sample/blog"
)

// Operator is the identity of local command-line calls. It holds every
// role the sample resources check.
var Operator = action.User{Name: "operator", Roles: []string{blog.AdminRole}}

// CLI registers the resource commands on root. Documents are written in
// Hydra against the configured base URL.
func (a *App) CLI(root *cobra.Command, out io.Writer) (*cli.Channel, error) {
	cfg := a.Config.Get()
	server := cfg.Server.BaseURL
	if server == "" {
		server = "http://" + cfg.Server.Addr()
	}

	c := cli.New(root, cli.Options{
		Registry:    a.Registry,
		Router:      a.Router,
		Writer:      a.Writer,
		Format:      hydra.Format{},
		ServerURL:   server,
		Credentials: Operator,
		Language:    language.English,
		Out:         out,
	})
	if err := c.Register(); err != nil {
		return nil, err
	}
	return c, nil
}
