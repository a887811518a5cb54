package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/findyourn/reddit-listener/internal/repl"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive research shell",
	Long: `Start an interactive shell. Discoveries stay cached between commands,
so 'context' can expand ideas without refetching.

Example session:
  reddit> discover electric cars
  reddit> ideas
  reddit> context 10 Tips for EV Charging`,
	Run: func(cmd *cobra.Command, args []string) {
		app, err := newApp()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer app.Close()

		r, err := repl.New(&repl.Config{
			Service: app.service,
			Options: researchOptions(),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := r.Run(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
