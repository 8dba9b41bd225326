package main

import (
	"github.com/aretw0/statemap/internal/cli"
	"github.com/aretw0/statemap/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch <layout>",
	Short: "Re-project a layout every time it is saved",
	Long: `Watches a layout document and writes the projected state configuration on
every save. With --diagram the projection is also stored, so the diagram
store always holds the latest version. With --validate the file is a state
configuration and is re-validated instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")
		format, _ := cmd.Flags().GetString("format")
		validateOnly, _ := cmd.Flags().GetBool("validate")
		diagramID, _ := cmd.Flags().GetString("diagram")
		debounce, _ := cmd.Flags().GetDuration("debounce")

		tui.PrintBanner(a.env.Streams.Err)

		opts := cli.WatchOptions{
			Input:        args[0],
			Output:       output,
			Format:       format,
			ValidateOnly: validateOnly,
			Debounce:     debounce,
			DiagramID:    diagramID,
		}
		if diagramID == "" {
			return cli.RunWatch(cmd.Context(), a.env, opts)
		}
		return a.withBackend(func(b *cli.Backend) error {
			opts.Manager = b.NewManager(a.cfg.Store, a.env.Logger)
			return cli.RunWatch(cmd.Context(), a.env, opts)
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringP("output", "o", "", "Write the projected configuration to this file")
	watchCmd.Flags().StringP("format", "f", "", "Configuration format: json or yaml")
	watchCmd.Flags().Bool("validate", false, "Watch a state configuration and re-validate it")
	watchCmd.Flags().String("diagram", "", "Store every projection under this diagram id")
	watchCmd.Flags().Duration("debounce", cli.DefaultDebounce, "Quiet period before reprocessing")
}
