package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/weft/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Exposes the function catalog to AI agents as MCP tools:
list_functions, describe_function and invoke_function.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, _, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			transport, _ := cmd.Flags().GetString("transport")
			port, _ := cmd.Flags().GetInt("port")

			srv := mcp.NewServer(rt.Engine, rt.Logger)

			switch transport {
			case "stdio":
				// logs already go to stderr, stdout carries JSON-RPC
				rt.Logger.Info("starting MCP server (stdio)")
				return srv.ServeStdio()
			case "sse":
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return srv.ServeSSE(ctx, port)
			default:
				return fmt.Errorf("unknown transport %q (use stdio or sse)", transport)
			}
		},
	}
	cmd.Flags().StringP("transport", "t", "stdio", "Transport: stdio or sse")
	cmd.Flags().IntP("port", "p", 8686, "Port for the sse transport")
	return cmd
}
