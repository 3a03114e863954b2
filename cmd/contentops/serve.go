package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"axis.io/contentops/internal/api"
	"axis.io/contentops/internal/config"
	"axis.io/contentops/internal/metrics"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.AppConfig
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		b, err := openBackend(ctx, cfg)
		if err != nil {
			return err
		}
		defer b.Close()

		gen, closeGen, err := newGenerator(context.Background())
		if err != nil {
			return err
		}
		defer closeGen()

		// Generation calls outlive the request that started them, so they
		// hang off their own context, cancelled only after the server stops.
		genCtx, cancelGen := context.WithCancel(context.Background())
		defer cancelGen()

		m := metrics.New()
		ws, err := newWorkspace(genCtx, b, gen, m)
		if err != nil {
			return err
		}

		router := api.NewRouter(api.NewAPIHandler(ws, b.users, m, logger))
		addr := fmt.Sprintf(":%s", cfg.HTTPPort)
		srv := &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: cfg.GenerationTimeout + 15*time.Second, // ?wait=true holds the request open
			IdleTimeout:  120 * time.Second,
			BaseContext: func(_ net.Listener) context.Context {
				return ctx
			},
		}

		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info().Str("addr", addr).Bool("generation", cfg.GenerationEnabled()).Msg("Starting server")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("could not listen on %s: %w", addr, err)
			}
			return nil
		})
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info().Msg("Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}
			return nil
		})
		err = g.Wait()

		// Give in-flight generation a bounded chance to settle and persist.
		settled := make(chan struct{})
		go func() {
			ws.Wait()
			close(settled)
		}()
		select {
		case <-settled:
		case <-time.After(shutdownTimeout):
			logger.Warn().Msg("Abandoning in-flight generation calls")
			cancelGen()
			<-settled
		}

		logger.Info().Msg("Server exiting gracefully")
		return err
	},
}
