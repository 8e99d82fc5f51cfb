package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/annotate/internal/adapters/driving/mcp"
)

var mcpPort int

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can read the
profiles, datasets and annotations of the active workspace.

By default, the server communicates over stdio using JSON-RPC.
Use --port to serve over HTTP instead.

Examples:
  # Stdio mode (default)
  annotate mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  annotate mcp serve --port 8080`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	ports := &mcp.Ports{
		Data:      dataService,
		Workspace: workspaceService,
		Migration: migrationService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if mcpPort > 0 {
		addr := fmt.Sprintf(":%d", mcpPort)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
