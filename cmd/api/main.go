package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dvloznov/expensebot/internal/api/handlers"
	"github.com/dvloznov/expensebot/internal/api/middleware"
	"github.com/dvloznov/expensebot/internal/config"
	"github.com/dvloznov/expensebot/internal/ledger"
	ledgermem "github.com/dvloznov/expensebot/internal/ledger/memory"
	ledgermongo "github.com/dvloznov/expensebot/internal/ledger/mongo"
	"github.com/dvloznov/expensebot/internal/llm"
	"github.com/dvloznov/expensebot/internal/llm/gemini"
	"github.com/dvloznov/expensebot/internal/logger"
	"github.com/dvloznov/expensebot/internal/query"
)

func main() {
	_ = godotenv.Load()

	log := logger.SetLevel(logger.New(), os.Getenv("LOG_LEVEL"))

	cfg := config.Load(os.Getenv)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := logger.WithContext(context.Background(), log)

	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger store")
	}
	defer cleanup()

	gen, err := gemini.New(ctx, cfg.GeminiModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	pipeline := query.NewPipeline(
		store,
		query.NewFilterExtractor(gen),
		query.NewComposer(&llm.Retrying{Gen: gen}),
	)

	transactionsHandler := handlers.NewTransactionsHandler(store, log)
	statsHandler := handlers.NewStatsHandler(store, log)
	askHandler := handlers.NewAskHandler(pipeline, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/transactions/recent", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			transactionsHandler.Recent(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/v1/stats", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			statsHandler.Stats(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/v1/ask", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			askHandler.Ask(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/healthz", handlers.Health)

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// openStore builds the configured ledger backend and returns a cleanup
// function for its resources.
func openStore(ctx context.Context, cfg *config.Config) (ledger.Store, func(), error) {
	if cfg.DataBackend == "memory" {
		return ledgermem.New(), func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	store, client, err := ledgermongo.Connect(connectCtx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}
	return store, cleanup, nil
}
