// Package main provides cadmus-tool, the administration CLI: database
// seeding, backups to object storage and access tokens for local testing.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/angelodel80/cadmus-api/internal/config"
	"github.com/angelodel80/cadmus-api/internal/database"
	"github.com/angelodel80/cadmus-api/internal/item/repository"
	"github.com/angelodel80/cadmus-api/pkg/logger"
)

var (
	// cfg is loaded before any command runs.
	cfg *config.Config

	// mongoClient is connected lazily by commands needing storage.
	mongoClient *mongo.Client
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cadmus-tool",
	Short: "Administration tool for the Cadmus API",
	Long: `cadmus-tool seeds item databases with mock data, backs them up to
and restores them from object storage, and issues access tokens.

Configuration comes from the same environment variables (and .env file)
as the API server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger.Init(cfg.Server.LogLevel)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if mongoClient != nil {
			return mongoClient.Disconnect(context.Background())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(backupsCmd)
	rootCmd.AddCommand(tokenCmd)
}

// repositories connects to MongoDB; the tool has no in-memory fallback
// since nothing would outlive the process.
func repositories(ctx context.Context) (repository.Factory, error) {
	if cfg.MongoDB.URI == "" {
		return nil, fmt.Errorf("MONGODB_URI is not set")
	}
	client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, cfg.MongoDB.Retries)
	if err != nil {
		return nil, err
	}
	mongoClient = client
	return repository.NewMongoFactory(client), nil
}
