package main

import (
	"github.com/aretw0/statemap/internal/cli"
	"github.com/spf13/cobra"
)

var diagramCmd = &cobra.Command{
	Use:   "diagram",
	Short: "Manage stored diagrams",
	Long:  `Saves, reads, lists and deletes diagrams in the configured store (memory, file, redis or sqlite).`,
}

var diagramSaveCmd = &cobra.Command{
	Use:   "save <id>",
	Short: "Store a diagram from a layout or a state configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("name")
		layoutPath, _ := cmd.Flags().GetString("layout")
		configPath, _ := cmd.Flags().GetString("config-file")
		format, _ := cmd.Flags().GetString("format")

		return a.withBackend(func(b *cli.Backend) error {
			return cli.RunDiagramSave(cmd.Context(), a.env, b.NewManager(a.cfg.Store, a.env.Logger), cli.DiagramSaveOptions{
				ID:     args[0],
				Name:   name,
				Layout: layoutPath,
				Config: configPath,
				Format: format,
			})
		})
	},
}

var diagramGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print a stored diagram",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		view, _ := cmd.Flags().GetString("view")
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		return a.withBackend(func(b *cli.Backend) error {
			return cli.RunDiagramGet(cmd.Context(), a.env, b.NewManager(a.cfg.Store, a.env.Logger), cli.DiagramGetOptions{
				ID:     args[0],
				View:   view,
				Format: format,
				Output: output,
			})
		})
	},
}

var diagramListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored diagram ids",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		return a.withBackend(func(b *cli.Backend) error {
			return cli.RunDiagramList(cmd.Context(), a.env, b.NewManager(a.cfg.Store, a.env.Logger))
		})
	},
}

var diagramDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored diagram",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		return a.withBackend(func(b *cli.Backend) error {
			return cli.RunDiagramDelete(cmd.Context(), a.env, b.NewManager(a.cfg.Store, a.env.Logger), args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(diagramCmd)
	diagramCmd.AddCommand(diagramSaveCmd, diagramGetCmd, diagramListCmd, diagramDeleteCmd)

	diagramSaveCmd.Flags().String("name", "", "Human-readable diagram name")
	diagramSaveCmd.Flags().String("layout", "", "Layout document to store (- for stdin)")
	diagramSaveCmd.Flags().String("config-file", "", "State configuration to hydrate and store (- for stdin)")
	diagramSaveCmd.Flags().StringP("format", "f", "", "Configuration format: json or yaml")

	diagramGetCmd.Flags().String("view", cli.ViewConfig, "What to print: config, layout, mermaid or json")
	diagramGetCmd.Flags().StringP("format", "f", "", "Configuration format: json or yaml")
	diagramGetCmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
}
