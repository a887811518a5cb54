package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/findyourn/reddit-listener/internal/authserver"
	"github.com/findyourn/reddit-listener/internal/reddit"
)

// exchangeAdapter narrows reddit.Client to the callback server's needs.
type exchangeAdapter struct {
	client *reddit.Client
}

func (e exchangeAdapter) ExchangeCode(ctx context.Context, code, teamID, userID string) error {
	_, err := e.client.ExchangeCode(ctx, code, teamID, userID)
	return err
}

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect a Reddit account via OAuth",
	Long: `Start the OAuth callback server, print the Reddit authorize URL, and
wait for the browser redirect. The received tokens are encrypted and
stored under the --team/--user identity for later searches.

Requires ENCRYPTION_KEY (64 hex chars) so tokens can be stored.

Example:
  reddit-listener connect --team=T1 --user=U1`,
	Run: func(cmd *cobra.Command, args []string) {
		app, err := newApp()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer app.Close()

		if app.store == nil {
			fmt.Fprintln(os.Stderr, "Error: ENCRYPTION_KEY must be set to store tokens")
			os.Exit(1)
		}
		if flagTeamID == "" || flagUserID == "" {
			fmt.Fprintln(os.Stderr, "Error: --team and --user are required")
			os.Exit(1)
		}

		server, err := authserver.New(app.cfg.AuthListenAddr, exchangeAdapter{app.client}, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		state := server.NewState(flagTeamID, flagUserID)
		url := app.client.AuthURL(state)

		bold := color.New(color.Bold).SprintFunc()
		fmt.Printf("\n%s\n\n  %s\n\n", bold("Open this URL in your browser to authorize:"), url)
		fmt.Println("Waiting for the redirect. Press Ctrl+C to stop.")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := server.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
}
