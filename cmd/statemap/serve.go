package main

import (
	"github.com/aretw0/statemap/internal/cli"
	"github.com/aretw0/statemap/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the conversions and the diagram store over HTTP, with request
validation against the bundled OpenAPI document, Prometheus metrics on
/metrics and commit events on /events.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			a.cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
		}

		inst := cli.NewInstrumentation()
		a.env.Converter = inst.Converter

		tui.PrintBanner(a.env.Streams.Err)
		return a.withBackend(func(b *cli.Backend) error {
			return cli.RunServe(cmd.Context(), a.env, inst, cli.ServeOptions{
				Server:  a.cfg.Server,
				Manager: b.NewManager(a.cfg.Store, a.env.Logger),
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
}
