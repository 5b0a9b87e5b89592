package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "espalier",
	Short: "Espalier routes natural-language queries through specialized agents",
	Long: `Espalier is a query assistant: a supervisor routes each question to a
quick answer path or a multi-step research path, both backed by web search,
Wikipedia, arXiv and a Python REPL.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "espalier.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// loadConfig reads the configured YAML file, tolerating its absence.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}
