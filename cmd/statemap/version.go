package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/statemap"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of statemap",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "statemap version %s\n", strings.TrimSpace(statemap.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
