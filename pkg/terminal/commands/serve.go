package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/russellb/gerrymander/pkg/server"
)

type ServeCmd struct {
	deps *Deps

	addr string
}

// NewServeCmd starts the report web API.
func NewServeCmd(deps *Deps) *cobra.Command {
	sc := &ServeCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the reports over HTTP as JSON",
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.addr, "addr", ":8080", "Listen address")

	return cmd
}

func (sc *ServeCmd) run(cmd *cobra.Command, args []string) error {
	api := server.NewWebAPI(sc.deps.Logger, server.Config{
		Addr:            sc.addr,
		ShutdownTimeout: 10 * time.Second,
		Dependencies: server.Dependencies{
			Client: sc.deps.Client,
			Config: sc.deps.Config,
		},
	})
	return api.Start()
}
