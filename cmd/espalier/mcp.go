package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	espalier "github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/cli"
	mcpAdapter "github.com/aretw0/espalier/pkg/adapters/mcp"
	"github.com/aretw0/espalier/pkg/domain"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server on stdio",
	Long:  `Exposes the assistant as a Model Context Protocol server over stdin/stdout.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		debug, _ := cmd.Flags().GetBool("debug")

		// Stdout carries JSON-RPC; the logger already writes to stderr.
		logger := cli.NewLogger(cfg, debug)
		assistant, err := cli.NewAssistant(cfg, logger, domain.LifecycleHooks{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := mcpAdapter.NewServer(assistant, espalier.Version).ServeStdio(); err != nil {
			fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
