package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkorolev/tandem/internal/adapters/feed"
	router "github.com/dkorolev/tandem/internal/adapters/http"
	"github.com/dkorolev/tandem/internal/adapters/player"
	"github.com/dkorolev/tandem/internal/app"
	"github.com/dkorolev/tandem/internal/config"
	"github.com/dkorolev/tandem/internal/core"
	"github.com/dkorolev/tandem/internal/storage"
	"github.com/dkorolev/tandem/internal/store/rediskv"
	"github.com/dkorolev/tandem/internal/store/rtdb"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	local, err := storage.Open(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open local storage")
	}
	defer local.Close()

	self, err := local.Identity()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load identity")
	}

	store, err := buildStore(cfg, local)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build store client")
	}

	bridge := player.New(cfg.PlayerURL)
	go bridge.Run(ctx)

	events := feed.New()
	svc := app.New(cfg, self, app.Deps{
		Store:    store,
		Player:   bridge,
		Notifier: events,
		Local:    local,
	})
	svc.Start(ctx)

	r := router.SetupRouter(cfg, svc, events)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Str("user", string(self.ID)).Msg("Tandem started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

// buildStore selects the remote store backend. A store URL saved from the
// control API overrides the configured default.
func buildStore(cfg *config.Config, local *storage.Local) (core.Store, error) {
	switch cfg.StoreBackend {
	case "redis":
		return rediskv.New(cfg.RedisAddr), nil
	case "rtdb":
		url := cfg.StoreURL
		if saved, err := local.StoreURL(); err == nil && saved != "" {
			url = saved
		}
		if url == "" {
			return nil, fmt.Errorf("no store url configured")
		}
		return rtdb.New(url), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
