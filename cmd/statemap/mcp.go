package main

import (
	"github.com/aretw0/statemap/internal/cli"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts statemap as an MCP Server, exposing the conversions as tools and the
stored diagrams as resources.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("transport") {
			a.cfg.MCP.Transport, _ = cmd.Flags().GetString("transport")
		}
		if cmd.Flags().Changed("port") {
			a.cfg.MCP.Port, _ = cmd.Flags().GetInt("port")
		}

		return a.withBackend(func(b *cli.Backend) error {
			return cli.RunMCP(cmd.Context(), a.env, cli.MCPOptions{
				MCP:     a.cfg.MCP,
				Manager: b.NewManager(a.cfg.Store, a.env.Logger),
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
