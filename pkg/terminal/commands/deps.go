// Package commands defines the cobra commands of the gerrymander CLI.
package commands

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/russellb/gerrymander/pkg/report"
	"github.com/russellb/gerrymander/pkg/services/config"
)

// Deps carries the shared collaborators resolved by the CLI runtime before
// any command runs: configuration, logger, query client and output sink.
type Deps struct {
	Out    io.Writer
	Logger zerolog.Logger
	Config *config.Config
	Client report.Querier
	Env    *report.Env
}

// projects falls back to the configured default project list.
func (d *Deps) projects(flag []string) []string {
	if len(flag) > 0 {
		return flag
	}
	return d.Config.Projects
}
