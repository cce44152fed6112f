// Package cli provides the command-line interface for epiq
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/epiq/epiq/pkg/config"
	"github.com/epiq/epiq/pkg/logger"
)

// SessionFunc runs the interactive session for a loaded configuration.
type SessionFunc func(ctx context.Context, cfg *config.Config, configPath string) error

// CLI encapsulates the command-line interface without global state.
type CLI struct {
	config   *Config
	viper    *viper.Viper
	rootCmd  *cobra.Command
	console  *logger.ConsoleLogger
	output   io.Writer
	errorOut io.Writer
	session  SessionFunc
}

// NewCLI creates a new CLI instance with the given configuration
func NewCLI(cfg *Config) *CLI {
	return NewCLIWithOutput(cfg, os.Stdout, os.Stderr)
}

// NewCLIWithOutput creates a CLI with custom output writers (for testing)
func NewCLIWithOutput(cfg *Config, output, errorOut io.Writer) *CLI {
	if cfg == nil {
		cfg = NewConfig()
	}

	c := &CLI{
		config:   cfg,
		viper:    config.NewViper(),
		console:  logger.NewConsoleLogger(output, errorOut),
		output:   output,
		errorOut: errorOut,
		session:  RunSession,
	}
	c.setupCommands()
	return c
}

// SetSession replaces the interactive session, e.g. in tests.
func (c *CLI) SetSession(fn SessionFunc) {
	c.session = fn
}

// Execute runs the CLI with the given arguments
func (c *CLI) Execute(args []string) error {
	return c.ExecuteContext(context.Background(), args)
}

// ExecuteContext runs the CLI with context support
func (c *CLI) ExecuteContext(ctx context.Context, args []string) error {
	c.rootCmd.SetArgs(args)
	return c.rootCmd.ExecuteContext(ctx)
}

func (c *CLI) setupCommands() {
	c.rootCmd = &cobra.Command{
		Use:   "epiq",
		Short: "Build shell pipelines interactively",
		Long: `epiq edits a Unix pipeline one stage per line and shows its output live.

Type a command, press Ctrl+B to add a stage below it, and press Enter to run
the whole pipeline. Every submission replaces the previous run.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          c.runRoot,
	}
	c.rootCmd.SetOut(c.output)
	c.rootCmd.SetErr(c.errorOut)

	c.setupFlags()

	c.rootCmd.Version = c.config.Version
	c.rootCmd.SetVersionTemplate("epiq v{{.Version}}\n")

	c.rootCmd.AddCommand(c.newInitCmd())
	c.rootCmd.AddCommand(c.newConfigCmd())
	c.rootCmd.AddCommand(c.newVersionCmd())
}

func (c *CLI) setupFlags() {
	flags := c.rootCmd.PersistentFlags()

	flags.StringVar(&c.config.ConfigFile, "config", "", "config file (default: epiq.yaml in the config directories)")
	flags.String("log-file", "", "write logs to this file")
	flags.StringP("verbosity", "v", "info", "log level (debug, info, warn, error)")
	flags.Int("output-queue-size", 1000, "number of output lines kept for scrolling")
	flags.Int("event-operate-interval", 32, "input aggregation interval in milliseconds")
	flags.Int("output-render-interval", 10, "output pane render interval in milliseconds")
	flags.BoolVar(&c.config.NoMouse, "no-mouse", false, "start without mouse capture")

	bindings := map[string]string{
		"log_file":               "log-file",
		"log_level":              "verbosity",
		"output_queue_size":      "output-queue-size",
		"event_operate_interval": "event-operate-interval",
		"output_render_interval": "output-render-interval",
	}
	for key, flag := range bindings {
		if err := c.viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", flag, err))
		}
	}
}

// loadConfig resolves flags, environment, the config file and defaults.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.viper, c.config.ConfigFile)
	if err != nil {
		return nil, err
	}
	if c.config.NoMouse {
		cfg.MouseCapture = false
	}
	return cfg, nil
}

func (c *CLI) runRoot(cmd *cobra.Command, _ []string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	return c.session(cmd.Context(), cfg, c.viper.ConfigFileUsed())
}

func (c *CLI) printSuccess(message string) {
	c.console.Success(message)
}

// PrintError reports a command failure on the error output.
func (c *CLI) PrintError(err error) {
	c.console.Error(err.Error())
}
