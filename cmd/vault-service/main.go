package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/passvault-io/passvault/internal/api"
	"github.com/passvault-io/passvault/internal/auth"
	"github.com/passvault-io/passvault/internal/config"
	"github.com/passvault-io/passvault/internal/factory"
	"github.com/passvault-io/passvault/internal/logger"
)

func main() {
	log := logger.New("vault-service")

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Msg("Vault service starting")

	ctx := context.Background()
	st, db, err := factory.NewStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Store unavailable")
	}
	defer func() { _ = db.Close() }()

	var authorizer auth.Authorizer
	if cfg.JWTSecret != "" {
		authorizer, err = auth.NewJWTAuthorizer(cfg.JWTSecret)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid JWT configuration")
		}
	} else {
		// Config rejects this combination in production.
		log.Warn().Msg("No JWT secret configured; using static dev tokens")
		authorizer = auth.NewMockAuthorizer()
	}

	router := api.NewRouter(api.Deps{
		Store:      st,
		DB:         db,
		Authorizer: authorizer,
		Logger:     log,
	})
	server := &http.Server{
		Addr:         cfg.GetHTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}
