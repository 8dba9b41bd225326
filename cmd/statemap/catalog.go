package main

import (
	"github.com/aretw0/statemap/internal/cli"
	loamadapter "github.com/aretw0/statemap/pkg/adapters/loam"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [dir]",
	Short: "Validate every state configuration in a directory",
	Long: `Reads a directory of state configurations (JSON, YAML, or Markdown with
front matter) and validates each one. With --watch it keeps running and
re-checks documents as they change.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}

		loader, err := loamadapter.Open(dir)
		if err != nil {
			return err
		}
		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			return cli.RunCatalogWatch(cmd.Context(), a.env, loader, loader)
		}
		return cli.RunCatalogCheck(cmd.Context(), a.env, loader)
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().BoolP("watch", "w", false, "Keep running and re-check changed documents")
}
