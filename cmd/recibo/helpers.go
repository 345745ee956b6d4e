package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/viper"

	"recibo/internal/config"
	"recibo/internal/engine"
	"recibo/internal/llm"
	"recibo/internal/service"
	"recibo/internal/storage"
)

// initStorage opens the database and runs pending migrations.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDBPath()
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initAIClassifier builds the batch AI classifier when an API key is
// configured. Returns nil without error when it is not; the resolver
// then runs on rules and corrections alone.
func initAIClassifier() (service.AIClassifier, func(), error) {
	apiKey := viper.GetString("groq.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("GROQ_API_KEY")
	}
	if apiKey == "" {
		slog.Debug("no Groq API key configured, AI classification disabled")
		return nil, func() {}, nil
	}

	client, err := llm.NewGroqClient(llm.Config{
		APIKey:    apiKey,
		Model:     viper.GetString("groq.model"),
		BaseURL:   viper.GetString("groq.base_url"),
		RateLimit: viper.GetInt("groq.rate_limit"),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize Groq client: %w", err)
	}

	classifier := llm.NewBatchClassifier(client, slog.Default())
	cleanup := func() { _ = client.Close() }
	return classifier, cleanup, nil
}

// initResolver wires storage, rules and the optional AI tier together.
func initResolver(store service.Storage) (*engine.Resolver, func(), error) {
	ai, cleanup, err := initAIClassifier()
	if err != nil {
		return nil, nil, err
	}
	return engine.NewResolver(store, ai, slog.Default()), cleanup, nil
}

// fetchTimeout returns the configured HTTP timeout for receipt pages.
func fetchTimeout() time.Duration {
	if secs := viper.GetInt("fetch.timeout_seconds"); secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 30 * time.Second
}
