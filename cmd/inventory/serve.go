package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"inventory/internal/api"
	"inventory/internal/auth"
	"inventory/internal/db"
	"inventory/internal/store"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	database, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	slog.Info("database ready", "path", a.cfg.Database.Path)

	secret := a.cfg.Session.Secret
	if secret == "" {
		c := db.NewConn(database)
		secret, err = store.GetSessionSecret(ctx, c)
		c.Release()
		if err != nil {
			return err
		}
	}

	hasher, err := auth.NewBcryptHasher(a.cfg.Password.BcryptCost)
	if err != nil {
		return err
	}

	router := api.NewRouter(database, api.Options{
		Hasher:        hasher,
		SessionSecret: secret,
		SessionTTL:    a.cfg.Session.TTL,
		SecureCookie:  a.cfg.Session.SecureCookie,
	})

	server := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           api.LoggingMiddleware(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", a.cfg.Server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	slog.Info("server stopped, closing database")
	return nil
}
