package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var discoverCmd = &cobra.Command{
	Use:   "discover <query>",
	Short: "Find content ideas from Reddit discussions",
	Long: `Fetch recent Reddit posts about a topic in small batches, keep the
relevant ones, and analyze them into content ideas, pain points,
community questions, and keywords.

Fetching stops as soon as enough relevant posts are found, so a good
query usually costs only one or two batches.

Examples:
  reddit-listener discover "electric cars"
  reddit-listener discover "sourdough baking" --time=week --limit=50`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app, err := newApp()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer app.Close()

		query := strings.Join(args, " ")
		result, err := app.service.DiscoverIdeas(context.Background(), query, researchOptions())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		printInsights(result.ContentIdeas, result.PainPoints, result.Questions, result.Keywords)
		fmt.Println()
		fmt.Println("Use 'reddit-listener context <query> <idea title>' to expand an idea,")
		fmt.Println("or the repl to keep the discovery cached between commands.")
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}
