package terminal

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/de-tools/energy-atlas/pkg/runtime/bootstrap"
	"github.com/de-tools/energy-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/energy-atlas/pkg/services/config"
)

// CLI represents the command-line interface
type CLI struct {
	env     *commands.Env
	build   func(cfg *config.Config) (*commands.Env, error)
	output  io.Writer
	logs    io.Writer
	rootCmd *cobra.Command

	configPath string
	logLevel   string
}

// Options contain configuration for the CLI
type Options struct {
	Output io.Writer
	// Logs receives log lines. Defaults to stderr.
	Logs io.Writer
	// Build assembles the command environment from the loaded config.
	// Defaults to wiring the real EIA and NOAA clients.
	Build func(cfg *config.Config) (*commands.Env, error)
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Logs == nil {
		opts.Logs = os.Stderr
	}
	if opts.Build == nil {
		opts.Build = buildEnv
	}

	cli := &CLI{
		env:    &commands.Env{},
		build:  opts.Build,
		output: opts.Output,
		logs:   opts.Logs,
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "energy-atlas",
		Short:             "Weekly energy and weather series from EIA and NOAA",
		SilenceUsage:      true,
		PersistentPreRunE: cli.setup,
	}
	cmd.SetOut(cli.output)

	cmd.PersistentFlags().StringVarP(&cli.configPath, "config", "c", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&cli.logLevel, "log-level", "", "Log level override (trace, debug, info, warn, error)")

	cmd.AddCommand(commands.NewRegionsCmd(cli.env))
	cmd.AddCommand(commands.NewStorageCmd(cli.env))
	cmd.AddCommand(commands.NewPowerGenCmd(cli.env))
	cmd.AddCommand(commands.NewConsumptionCmd(cli.env))
	cmd.AddCommand(commands.NewDegreeDaysCmd(cli.env))
	cmd.AddCommand(commands.NewWeeklyCmd(cli.env))
	cmd.AddCommand(commands.NewSeasonalCmd(cli.env))

	return cmd
}

// setup loads config, attaches the logger to the command context and fills
// the shared environment.
func (cli *CLI) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cli.configPath)
	if err != nil {
		return err
	}
	if cli.logLevel != "" {
		cfg.Log.Level = cli.logLevel
	}

	logger, err := bootstrap.NewLogger(cfg.Log, cli.logs)
	if err != nil {
		return err
	}
	cmd.SetContext(logger.WithContext(cmd.Context()))

	env, err := cli.build(cfg)
	if err != nil {
		return err
	}
	*cli.env = *env
	logger.Debug().Str("command", cmd.Name()).Msg("configuration loaded")
	return nil
}

func buildEnv(cfg *config.Config) (*commands.Env, error) {
	app := bootstrap.New(cfg)
	return &commands.Env{
		Pipeline:  app.Pipeline,
		Divisions: app.NOAA,
		Defaults:  cfg.Defaults,
	}, nil
}
