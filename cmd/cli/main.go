package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/dvloznov/expensebot/internal/config"
	"github.com/dvloznov/expensebot/internal/engine"
	"github.com/dvloznov/expensebot/internal/ledger"
	ledgermem "github.com/dvloznov/expensebot/internal/ledger/memory"
	ledgermongo "github.com/dvloznov/expensebot/internal/ledger/mongo"
	"github.com/dvloznov/expensebot/internal/llm"
	"github.com/dvloznov/expensebot/internal/llm/gemini"
	"github.com/dvloznov/expensebot/internal/logger"
	"github.com/dvloznov/expensebot/internal/parse"
	"github.com/dvloznov/expensebot/internal/query"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		runMessage(log, "add", os.Args[2:])
	case "delete":
		runMessage(log, "delete", os.Args[2:])
	case "ask":
		runAsk(log)
	case "recent":
		runRecent(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Expense Bot CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  add       Record expenses from a free-form message")
	fmt.Println("  delete    Remove a recorded expense, e.g. 'delete coffee 50'")
	fmt.Println("  ask       Ask a question about your spending")
	fmt.Println("  recent    Show the most recent transactions")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// runMessage pushes the raw text through the same pipeline the bot uses.
// The delete command prefixes the text so the model sees the intent.
func runMessage(log zerolog.Logger, verb string, args []string) {
	fs := flag.NewFlagSet(verb, flag.ExitOnError)
	text := fs.String("text", "", "Message text, e.g. 'coffee 50'")
	fs.Parse(args)

	message := *text
	if message == "" && fs.NArg() > 0 {
		message = fs.Arg(0)
	}
	if message == "" {
		log.Fatal().Msg("Error: message text is required")
	}
	if verb == "delete" {
		message = "delete " + message
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	e, cleanup := buildEngine(ctx, log)
	defer cleanup()

	fmt.Println(e.HandleMessage(ctx, message))
}

func runAsk(log zerolog.Logger) {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	question := fs.String("question", "", "Question, e.g. 'how much did I spend on food this month?'")
	fs.Parse(os.Args[2:])

	q := *question
	if q == "" && fs.NArg() > 0 {
		q = fs.Arg(0)
	}
	if q == "" {
		log.Fatal().Msg("Error: question text is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	cfg := loadConfig(log)
	store, cleanup := openStore(ctx, log, cfg)
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

	answer, agg, err := pipeline.Answer(ctx, q, civil.DateOf(time.Now()))
	if err != nil {
		log.Fatal().Err(err).Msg("Query failed")
	}

	fmt.Println(answer)
	fmt.Printf("\n(total: %s over %d records)\n", strconv.FormatFloat(agg.Total, 'f', -1, 64), len(agg.Items))
}

func runRecent(log zerolog.Logger) {
	fs := flag.NewFlagSet("recent", flag.ExitOnError)
	limit := fs.Int("limit", 10, "Number of transactions to show")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	cfg := loadConfig(log)
	store, cleanup := openStore(ctx, log, cfg)
	defer cleanup()

	transactions, err := store.Recent(ctx, int64(*limit))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list transactions")
	}

	if len(transactions) == 0 {
		fmt.Println("No transactions recorded yet.")
		return
	}
	for _, t := range transactions {
		line := fmt.Sprintf("%s  %-20s %10s  %s",
			t.CreatedAt.Format("2006-01-02"),
			t.Item,
			strconv.FormatFloat(t.Amount, 'f', -1, 64),
			t.Category,
		)
		if t.Note != "" {
			line += "  (" + t.Note + ")"
		}
		fmt.Println(line)
	}
}

func loadConfig(log zerolog.Logger) *config.Config {
	cfg := config.Load(os.Getenv)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	return cfg
}

func buildEngine(ctx context.Context, log zerolog.Logger) (*engine.Engine, func()) {
	cfg := loadConfig(log)

	store, cleanup := openStore(ctx, log, cfg)

	gen, err := gemini.New(ctx, cfg.GeminiModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	e := engine.New(
		parse.NewClassifier(parse.NewExtractor(gen)),
		store,
		query.NewPipeline(store, query.NewFilterExtractor(gen), query.NewComposer(&llm.Retrying{Gen: gen})),
		nil,
		cfg.DashboardURL,
	)
	return e, cleanup
}

func openStore(ctx context.Context, log zerolog.Logger, cfg *config.Config) (ledger.Store, func()) {
	if cfg.DataBackend == "memory" {
		return ledgermem.New(), func() {}
	}

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	store, client, err := ledgermongo.Connect(connectCtx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	cleanup := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}
	return store, cleanup
}
