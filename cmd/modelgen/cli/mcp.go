package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	mgmcp "github.com/faucetdb/modelgen/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	var (
		transport string
		port      int
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server for AI agents",
		Long: `Start a Model Context Protocol server that lets AI agents list services,
describe schemas, infer relationships and render models. All tools are
read-only; nothing is written to disk.

In stdio mode the server speaks JSON-RPC over stdin/stdout, for clients that
launch modelgen as a subprocess. In http mode it serves the streamable HTTP
transport on the given port.`,
		Example: `  modelgen mcp                             # stdio mode
  modelgen mcp --transport http --port 3001  # streamable HTTP`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("transport") {
				appConfig.MCP.Transport = transport
			}
			if cmd.Flags().Changed("port") {
				appConfig.MCP.Port = port
			}
			return runMCP()
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport mode: stdio or http")
	cmd.Flags().IntVar(&port, "port", 3001, "HTTP port (only used with --transport http)")

	return cmd
}

func runMCP() error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	srv := mgmcp.NewMCPServer(a.models, versionString(), a.logger)

	switch appConfig.MCP.Transport {
	case "stdio":
		return srv.ServeStdio()
	case "http":
		return srv.ServeHTTP(fmt.Sprintf(":%d", appConfig.MCP.Port))
	default:
		return fmt.Errorf("unsupported transport %q; use 'stdio' or 'http'", appConfig.MCP.Transport)
	}
}
