package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/findyourn/reddit-listener/internal/research"
)

var contextCmd = &cobra.Command{
	Use:   "context <query> <idea title>",
	Short: "Expand a discovered idea into detailed context",
	Long: `Generate a full case-study analysis for one content idea: the complete
post and comment analysis, emotional and controversial aspects,
engagement signals, and recommended knowledge depth.

The discovery cache only lives for the lifetime of one process, so this
command runs discovery for the query first and then expands the idea.
Inside the repl the cached discovery is reused instead.

Example:
  reddit-listener context "electric cars" "10 Tips for EV Charging"`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		app, err := newApp()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer app.Close()

		ctx := context.Background()
		query, ideaTitle := args[0], args[1]

		detail, err := app.service.GetIdeaContext(ctx, query, ideaTitle)

		var miss *research.CacheMissError
		if errors.As(err, &miss) {
			if _, derr := app.service.DiscoverIdeas(ctx, query, researchOptions()); derr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", derr)
				os.Exit(1)
			}
			detail, err = app.service.GetIdeaContext(ctx, query, ideaTitle)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		printDetailedContext(detail)
	},
}

func init() {
	rootCmd.AddCommand(contextCmd)
}
