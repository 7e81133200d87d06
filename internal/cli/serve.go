package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/fittrack/internal/server"
)

var serveCmd = LeafCommand{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		return runServe(ctx, cmd, a)
	},
}.Build()

func runServe(ctx context.Context, cmd *cobra.Command, a *app) error {
	srv := server.New(server.Options{
		DB:          a.db,
		Factory:     a.factory,
		Dates:       a.dates,
		Mode:        a.mode,
		DefaultUser: a.defaultUser(),
		Cache:       a.cache,
		Snapshot:    a.cfg.Snapshot,
		RateLimit:   a.cfg.RateLimit,
		RateBurst:   a.cfg.RateBurst,
		Logger:      a.logger,
	})
	srv.Start(ctx)
	defer srv.Stop()

	httpServer := &http.Server{
		Addr:         a.cfg.Addr(),
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- httpServer.ListenAndServe()
	}()
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "FitTrack (%s mode) running at http://localhost:%s\n", a.mode, a.cfg.Port)

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	return nil
}
