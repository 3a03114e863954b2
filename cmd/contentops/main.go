package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"axis.io/contentops/internal/config"
	"axis.io/contentops/internal/core"
	"axis.io/contentops/internal/metrics"
	"axis.io/contentops/internal/store"
)

var logger zerolog.Logger

var rootCmd = &cobra.Command{
	Use:           "contentops",
	Short:         "Content operations state service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadConfig(); err != nil {
			return err
		}
		setupLogging(config.AppConfig.LogLevel)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, seedCmd, userCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging(levelName string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENVIRONMENT") == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	if level, err := zerolog.ParseLevel(levelName); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	log.Logger = logger
}

// backend bundles the opened storage. users is always SQLite; snapshots go
// to the configured backend.
type backend struct {
	users     *store.SQLiteStore
	snapshots store.Persister
	closers   []func() error
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			logger.Error().Err(err).Msg("Error closing storage")
		}
	}
}

func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	sqlite, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	b := &backend{users: sqlite, snapshots: sqlite, closers: []func() error{sqlite.Close}}

	if cfg.PersistBackend == "redis" {
		rs, err := store.NewRedisStore(cfg.RedisURL)
		if err != nil {
			b.Close()
			return nil, err
		}
		if err := rs.Ping(ctx); err != nil {
			rs.Close()
			b.Close()
			return nil, fmt.Errorf("failed to reach redis: %w", err)
		}
		b.snapshots = rs
		b.closers = append(b.closers, rs.Close)
	}
	logger.Info().Str("backend", cfg.PersistBackend).Msg("Storage ready")
	return b, nil
}

// newGenerator returns the Gemini generator when an API key is configured
// and the offline generator otherwise. The returned func releases it.
func newGenerator(ctx context.Context) (core.Generator, func(), error) {
	if !config.AppConfig.GenerationEnabled() {
		logger.Warn().Msg("GEMINI_API_KEY not set, generation falls back to local content")
		return core.OfflineGenerator{}, func() {}, nil
	}
	llm, err := core.NewLLMService(ctx, logger)
	if err != nil {
		return nil, nil, err
	}
	return llm, llm.Close, nil
}

func newWorkspace(ctx context.Context, b *backend, gen core.Generator, m *metrics.Metrics) (*core.Workspace, error) {
	ws := core.NewWorkspace(gen, core.Options{
		Persister:         b.snapshots,
		Logger:            logger,
		Metrics:           m,
		BaseContext:       ctx,
		GenerationTimeout: config.AppConfig.GenerationTimeout,
	})
	if err := ws.Load(); err != nil {
		return nil, err
	}
	return ws, nil
}
