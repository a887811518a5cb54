package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var researchCmd = &cobra.Command{
	Use:   "research <query>",
	Short: "One-shot topic research",
	Long: `Run the full research flow in one pass: a single search at the full
post limit, relevance filtering, and analysis into questions, keywords,
pain points, and content ideas. Nothing is cached.

Example:
  reddit-listener research "home coffee roasting"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app, err := newApp()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer app.Close()

		result, err := app.service.Research(context.Background(), strings.Join(args, " "), researchOptions())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		printInsights(result.ContentIdeas, result.PainPoints, result.Questions, result.Keywords)
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(researchCmd)
}
