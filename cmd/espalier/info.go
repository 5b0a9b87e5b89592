package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/pkg/tools"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe the agents and tools",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Agents:")
		fmt.Println("  general  - quick answers, calculations, simple lookups")
		fmt.Println("  research - planned multi-source investigation with synthesis")
		fmt.Println()
		fmt.Println("General path tools:")
		fmt.Print(tools.NewRegistry(tools.NewPythonREPL(), tools.NewWebSearch()).Catalog())
		fmt.Println()
		fmt.Println("Research path tools:")
		fmt.Print(tools.NewRegistry(
			tools.NewWikipedia(), tools.NewArxiv(), tools.NewWebSearch(), tools.NewPythonREPL()).Catalog())
		fmt.Println()
		fmt.Println("Example queries:")
		fmt.Println(`  espalier run -q "What is 25 * 47?"`)
		fmt.Println(`  espalier run -q "Compare recent approaches to retrieval-augmented generation"`)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
