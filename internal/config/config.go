package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	// DatabaseURL is optional; without it the service runs from the
	// in-process registry only and knowledge does not survive restarts.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	// Ingestion tunables.
	DedupThreshold float64 `envconfig:"DEDUP_THRESHOLD" default:"0.9"`
	DedupWindowSec float64 `envconfig:"DEDUP_WINDOW_SEC" default:"8"`
	MaxChunkWords  int     `envconfig:"MAX_CHUNK_WORDS" default:"60"`

	// Indexing and retrieval tunables.
	EmbedConcurrency int     `envconfig:"EMBED_CONCURRENCY" default:"4"`
	HybridAlpha      float64 `envconfig:"HYBRID_ALPHA" default:"0.7"`
	TopK             int     `envconfig:"TOP_K" default:"8"`
	NeighborWindow   int     `envconfig:"NEIGHBOR_WINDOW" default:"1"`
	ContextBudget    int     `envconfig:"CONTEXT_BUDGET" default:"4000"`

	// Answer generation tunables.
	GenerateRetries    int `envconfig:"GENERATE_RETRIES" default:"2"`
	GenerateTimeoutSec int `envconfig:"GENERATE_TIMEOUT_SEC" default:"60"`

	// BackfillIntervalSec is the embedding backfill poll interval;
	// 0 disables the worker.
	BackfillIntervalSec int `envconfig:"BACKFILL_INTERVAL_SEC" default:"60"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("COGNIFY", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}
