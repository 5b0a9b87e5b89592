package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/cli"
	"github.com/aretw0/espalier/pkg/domain"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the assistant interactively or for a single query",
	Long:  `Starts an interactive session, or answers one query with -q and exits.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		debug, _ := cmd.Flags().GetBool("debug")
		verbose, _ := cmd.Flags().GetBool("verbose")
		query, _ := cmd.Flags().GetString("query")

		logger := cli.NewLogger(cfg, debug)
		assistant, err := cli.NewAssistant(cfg, logger, domain.LifecycleHooks{})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		ctx := context.Background()
		if query != "" {
			if err := cli.RunQuery(ctx, assistant, query, verbose); err != nil {
				os.Exit(1)
			}
			return
		}
		if err := cli.RunInteractive(ctx, assistant, verbose); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("query", "q", "", "Answer a single query and exit")
	runCmd.Flags().BoolP("verbose", "v", false, "Show the tool step trace")

	// Make 'run' the default command.
	rootCmd.Run = runCmd.Run
	rootCmd.Flags().StringP("query", "q", "", "Answer a single query and exit")
	rootCmd.Flags().BoolP("verbose", "v", false, "Show the tool step trace")
}
