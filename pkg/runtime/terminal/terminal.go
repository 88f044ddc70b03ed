// Package terminal wires the gerrymander CLI: root command, shared flags,
// logger and query-client construction.
package terminal

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/russellb/gerrymander/pkg/report"
	"github.com/russellb/gerrymander/pkg/services/config"
	"github.com/russellb/gerrymander/pkg/store/gerrit"
	"github.com/russellb/gerrymander/pkg/terminal/commands"
)

// CLI represents the command-line interface.
type CLI struct {
	deps    *commands.Deps
	rootCmd *cobra.Command

	cfgPath string
	debug   bool
	color   bool
}

// Options contain configuration for the CLI.
type Options struct {
	Output io.Writer
	// Client overrides the SSH query client, used by tests.
	Client report.Querier
}

// NewCLI creates a new CLI instance.
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		deps: &commands.Deps{
			Out:    opts.Output,
			Client: opts.Client,
		},
	}
	cli.rootCmd = cli.newRootCmd()
	return cli
}

// Execute runs the CLI.
func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "gerrymander",
		Short:             "Reports on code review activity in a Gerrit server",
		SilenceUsage:      true,
		PersistentPreRunE: cli.setup,
	}

	cmd.PersistentFlags().StringVarP(&cli.cfgPath, "config", "c", config.DefaultPath(), "Path to the configuration profile")
	cmd.PersistentFlags().BoolVar(&cli.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&cli.color, "color", false, "Colourize text output")

	cmd.AddCommand(commands.NewChangesCmd(cli.deps))
	cmd.AddCommand(commands.NewToDoCmd(cli.deps))
	cmd.AddCommand(commands.NewReviewStatsCmd(cli.deps))
	cmd.AddCommand(commands.NewOpenStatsCmd(cli.deps))
	cmd.AddCommand(commands.NewServeCmd(cli.deps))

	return cmd
}

// setup resolves the shared dependencies before any subcommand runs.
func (cli *CLI) setup(cmd *cobra.Command, args []string) error {
	level := zerolog.InfoLevel
	if cli.debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	cfg, err := config.Load(cli.cfgPath)
	if err != nil {
		return err
	}

	cli.deps.Logger = logger
	cli.deps.Config = cfg
	cli.deps.Env = &report.Env{
		Logger: logger,
		Color:  cli.color || cfg.Color,
	}
	if cli.deps.Client == nil {
		cli.deps.Client = gerrit.NewClient(gerrit.Config{
			Host:    cfg.Server.Host,
			Port:    cfg.Server.Port,
			User:    cfg.Server.User,
			KeyFile: cfg.Server.KeyFile,
		}, logger)
	}
	return nil
}
