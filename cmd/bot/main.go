package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/dvloznov/expensebot/internal/api/middleware"
	"github.com/dvloznov/expensebot/internal/config"
	"github.com/dvloznov/expensebot/internal/engine"
	"github.com/dvloznov/expensebot/internal/ledger"
	ledgermem "github.com/dvloznov/expensebot/internal/ledger/memory"
	ledgermongo "github.com/dvloznov/expensebot/internal/ledger/mongo"
	"github.com/dvloznov/expensebot/internal/llm"
	"github.com/dvloznov/expensebot/internal/llm/gemini"
	"github.com/dvloznov/expensebot/internal/logger"
	prommetrics "github.com/dvloznov/expensebot/internal/metrics/prometheus"
	"github.com/dvloznov/expensebot/internal/parse"
	"github.com/dvloznov/expensebot/internal/query"
	"github.com/dvloznov/expensebot/internal/telegram"
)

const pollTimeoutSeconds = 30

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log := logger.SetLevel(logger.New(), os.Getenv("LOG_LEVEL"))

	cfg := config.Load(os.Getenv)
	if cfg.TelegramToken == "" {
		log.Fatal().Msg("TELEGRAM_TOKEN is required")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, cancel := context.WithCancel(logger.WithContext(context.Background(), log))
	defer cancel()

	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger store")
	}
	defer cleanup()

	gen, err := gemini.New(ctx, cfg.GeminiModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	collector := prommetrics.New("expensebot")
	registry := prometheus.NewRegistry()
	if err := collector.Register(registry); err != nil {
		log.Fatal().Err(err).Msg("Failed to register metrics")
	}

	// Only the compose path retries; extraction and filter inference have
	// their own deterministic fallbacks.
	composeGen := &llm.Retrying{Gen: gen, OnRetry: collector.RecordComposeRetry}

	e := engine.New(
		parse.NewClassifier(parse.NewExtractor(gen)),
		store,
		query.NewPipeline(store, query.NewFilterExtractor(gen), query.NewComposer(composeGen)),
		collector,
		cfg.DashboardURL,
	)

	bot := telegram.NewClient(cfg.TelegramToken)

	// Keep-alive server: hosting platforms health-check the process over
	// HTTP even though the bot itself only long-polls outward.
	server := keepAliveServer(cfg.Port, registry, log)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting keep-alive server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Keep-alive server failed")
		}
	}()

	go pollLoop(ctx, bot, e, log)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Keep-alive server forced to shutdown")
	}

	log.Info().Msg("Bot exited")
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

// pollLoop runs getUpdates until the context is cancelled. Every text
// message gets a reply; HandleMessage itself never fails.
func pollLoop(ctx context.Context, bot *telegram.Client, e *engine.Engine, log zerolog.Logger) {
	var offset int64
	for {
		if ctx.Err() != nil {
			return
		}

		updates, err := bot.GetUpdates(ctx, offset, pollTimeoutSeconds)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Msg("getUpdates failed")
			time.Sleep(5 * time.Second)
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			if update.Message == nil || update.Message.Text == "" {
				continue
			}

			reply := e.HandleMessage(ctx, update.Message.Text)
			if err := bot.SendMessage(ctx, update.Message.Chat.ID, reply); err != nil {
				log.Error().Err(err).Int64("chat_id", update.Message.Chat.ID).Msg("sendMessage failed")
			}
		}
	}
}

// keepAliveServer serves the liveness endpoints and the metrics scrape.
func keepAliveServer(port string, registry *prometheus.Registry, log zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("I am alive!"))
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &http.Server{
		Addr:         ":" + port,
		Handler:      middleware.Recovery(log)(middleware.Logger(log)(mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
