package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/statemap"
	"github.com/aretw0/statemap/internal/cli"
	"github.com/aretw0/statemap/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "statemap",
	Short: "Statemap converts workflow diagrams to state configurations and back",
	Long: `Statemap projects a diagram layout (a GraphLinksModel document) into the
state configuration a workflow runtime reads, hydrates a configuration back
into a layout, and validates configurations written by hand.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx := cli.NewSignalContext(context.Background())
	defer ctx.Cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		ctx.Cancel()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Settings file (default: ./"+config.DefaultFile+" when present)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}

// app is what every command starts from.
type app struct {
	cfg config.Config
	env cli.Env
}

// setup loads the settings and builds the logger. Instrumented commands pass
// their own converter afterwards.
func setup(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	debug, _ := cmd.Flags().GetBool("debug")

	logger, err := cli.NewLogger(cfg.Log, debug)
	if err != nil {
		return nil, err
	}
	logger.Debug("Configuration loaded", "sources", cfg.LoadedFrom, "store", cfg.Store.Driver)

	streams := cli.StdStreams()
	streams.In = cmd.InOrStdin()
	streams.Out = cmd.OutOrStdout()
	streams.Err = cmd.ErrOrStderr()

	return &app{
		cfg: cfg,
		env: cli.Env{
			Streams:   streams,
			Converter: statemap.Core{},
			Logger:    logger,
		},
	}, nil
}

// withBackend opens the configured store for the duration of fn.
func (a *app) withBackend(fn func(b *cli.Backend) error) error {
	b, err := cli.OpenBackend(a.cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			a.env.Logger.Warn("Failed to close store", "err", err)
		}
	}()
	return fn(b)
}

// inputArg returns the first argument, or "-" for stdin.
func inputArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "-"
}
