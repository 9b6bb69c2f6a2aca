package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cognify-labs/cognify/internal/answer"
	"github.com/cognify-labs/cognify/internal/api/handlers"
	"github.com/cognify-labs/cognify/internal/config"
	"github.com/cognify-labs/cognify/internal/database"
	"github.com/cognify-labs/cognify/internal/index"
	"github.com/cognify-labs/cognify/internal/ingest"
	"github.com/cognify-labs/cognify/internal/jobs"
	"github.com/cognify-labs/cognify/internal/library"
	"github.com/cognify-labs/cognify/internal/openai"
	"github.com/cognify-labs/cognify/internal/repository"
	"github.com/cognify-labs/cognify/internal/retrieval"
	"github.com/cognify-labs/cognify/internal/server"
	"github.com/cognify-labs/cognify/internal/service"
	"github.com/cognify-labs/cognify/internal/telemetry"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the cognify API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

// resolvePort picks the port the server binds. An explicit --port flag wins
// over the environment-derived value, even when it matches the flag default.
func resolvePort(cmd *cobra.Command, envPort string) string {
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetString("port")
		return port
	}
	return envPort
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	cfg.Port = resolvePort(cmd, cfg.Port)

	var store service.KnowledgeStore
	if cfg.HasDatabase() {
		pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()
		log.Println("connected to database")

		// Run migrations unless --no-migrate flag is set
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			if err := runMigrations(cfg.DatabaseURL); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		store = repository.NewStore(pool)
	} else {
		log.Println("no database configured, knowledge will not survive restarts")
	}

	var embeddingClient index.EmbeddingClient
	var generateClient answer.GenerateClient
	if cfg.HasOpenAI() {
		client := openai.NewClient(cfg.OpenAIAPIKey)
		embeddingClient = client
		generateClient = client
	} else {
		log.Println("no OpenAI key configured, retrieval is lexical-only and answers are disabled")
	}

	pipeline := ingest.NewPipeline(ingest.Config{
		Dedup: ingest.DedupConfig{
			Threshold: cfg.DedupThreshold,
			Window:    cfg.DedupWindowSec,
		},
		MaxChunkWords: cfg.MaxChunkWords,
	})
	indexer := index.NewIndexer(embeddingClient, cfg.EmbedConcurrency)
	registry := library.NewRegistry()

	retriever := retrieval.NewRetriever(embeddingClient, retrieval.Config{
		Alpha: cfg.HybridAlpha,
		TopK:  cfg.TopK,
	})
	orchestrator := answer.NewOrchestrator(retriever, generateClient, answer.Config{
		ContextBudget:  cfg.ContextBudget,
		NeighborWindow: cfg.NeighborWindow,
		MaxRetries:     cfg.GenerateRetries,
	})

	videoSvc := service.NewVideoService(pipeline, indexer, registry, store)
	askSvc := service.NewAskService(registry, orchestrator, time.Duration(cfg.GenerateTimeoutSec)*time.Second)

	if err := videoSvc.Recover(ctx); err != nil {
		return fmt.Errorf("failed to recover persisted knowledge: %w", err)
	}

	var backfillWorker *jobs.Worker
	if embeddingClient != nil && cfg.BackfillIntervalSec > 0 {
		processor := jobs.NewBackfillProcessor(registry, indexer, store)
		backfillWorker = jobs.NewWorker(processor, time.Duration(cfg.BackfillIntervalSec)*time.Second)
		go backfillWorker.Start(ctx)
		log.Println("embedding backfill worker started")
	}

	routerCfg := server.RouterConfig{
		VideoHandler: handlers.NewVideoHandler(videoSvc),
		AskHandler:   handlers.NewAskHandler(askSvc),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if backfillWorker != nil {
		backfillWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
