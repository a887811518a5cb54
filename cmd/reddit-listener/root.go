package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/findyourn/reddit-listener/internal/analysis"
	"github.com/findyourn/reddit-listener/internal/config"
	"github.com/findyourn/reddit-listener/internal/reddit"
	"github.com/findyourn/reddit-listener/internal/research"
	"github.com/findyourn/reddit-listener/internal/storage"
)

var (
	configPath string

	flagTimeFilter  string
	flagLimit       int
	flagBatchSize   int
	flagMinRelevant int
	flagTeamID      string
	flagUserID      string
)

var rootCmd = &cobra.Command{
	Use:   "reddit-listener",
	Short: "Research topics through Reddit discussions",
	Long: `reddit-listener mines Reddit for what communities ask, complain about,
and engage with around a topic, then turns that into content ideas.

Set REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET (a Reddit app registration)
and ANTHROPIC_API_KEY before use, or put them in a config file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagTimeFilter, "time", "month", "Time window: hour, day, week, month, year, all")
	rootCmd.PersistentFlags().IntVar(&flagLimit, "limit", 100, "Maximum posts to fetch")
	rootCmd.PersistentFlags().IntVar(&flagBatchSize, "batch-size", 5, "Posts fetched per batch")
	rootCmd.PersistentFlags().IntVar(&flagMinRelevant, "min-relevant", 3, "Relevant posts that stop fetching early")
	rootCmd.PersistentFlags().StringVar(&flagTeamID, "team", "", "Team ID for a connected Reddit account")
	rootCmd.PersistentFlags().StringVar(&flagUserID, "user", "", "User ID for a connected Reddit account")
}

func researchOptions() research.Options {
	return research.Options{
		TimeFilter:  flagTimeFilter,
		Limit:       flagLimit,
		BatchSize:   flagBatchSize,
		MinRelevant: flagMinRelevant,
		TeamID:      flagTeamID,
		UserID:      flagUserID,
	}
}

// app bundles the wired components a command needs. Close releases the
// token store.
type app struct {
	cfg     config.Config
	client  *reddit.Client
	service *research.Service
	store   storage.TokenStore
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

// newApp loads configuration and wires the Reddit client, analyzer, and
// research service together.
func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireRedditApp(); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}

	// The token store is optional; without an encryption key the client
	// runs app-only auth and user accounts cannot be connected.
	if cfg.EncryptionKey != "" {
		store, err := storage.NewSQLiteTokenStore(cfg.DatabasePath, cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("opening token store: %w", err)
		}
		a.store = store
	}

	client, err := reddit.NewClient(reddit.Config{
		ClientID:     cfg.Reddit.ClientID,
		ClientSecret: cfg.Reddit.ClientSecret,
		UserAgent:    cfg.Reddit.UserAgent,
		RedirectURI:  cfg.Reddit.RedirectURI,
		TokenStore:   a.store,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.client = client

	analyzer, err := analysis.NewAnalyzer(analysis.Config{
		APIKey:            cfg.Anthropic.APIKey,
		Model:             cfg.Anthropic.Model,
		RequestsPerMinute: cfg.Anthropic.RequestsPerMinute,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	service, err := research.NewService(research.Config{
		Source:   client,
		Analyzer: analyzer,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.service = service

	return a, nil
}
