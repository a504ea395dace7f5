// Command migrate ensures the MongoDB indexes the ledger relies on.
// Run it once against a new database, or after a driver upgrade; index
// creation is idempotent.
package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/dvloznov/expensebot/internal/config"
	ledgermongo "github.com/dvloznov/expensebot/internal/ledger/mongo"
	"github.com/dvloznov/expensebot/internal/logger"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	cfg := config.Load(os.Getenv)
	if cfg.MongoURI == "" {
		log.Fatal().Msg("MONGO_URI is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Str("database", cfg.MongoDatabase).
		Str("collection", cfg.MongoCollection).
		Msg("Ensuring indexes")

	store, client, err := ledgermongo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	if err := store.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure indexes")
	}

	log.Info().Msg("Indexes ensured")
}
