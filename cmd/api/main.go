package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/urmzd/homecare/pkg/api"
	"github.com/urmzd/homecare/pkg/api/handlers"
	"github.com/urmzd/homecare/pkg/app"
	"github.com/urmzd/homecare/pkg/config"
	"github.com/urmzd/homecare/pkg/logging"

	_ "github.com/urmzd/homecare/docs"
)

// @title           Homecare API
// @version         1.0
// @description     REST API for the home care assistant: chat, devices, schedule and notifications

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

func main() {
	// Parse flags
	dbPath := flag.String("db", "", "Path to database file (default: ~/.config/homecare/homecare.db)")
	port := flag.Int("port", 0, "HTTP listen port (default: stored API server, 8080 on first run)")
	configFile := flag.String("config", "", "Path to a YAML config file (default: $CONFIG_FILE)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	closer, err := logging.Setup(cfg.Log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure logging")
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start")
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	router := api.NewRouter(api.Deps{
		Home:      a.Home,
		Router:    a.Router,
		Decoder:   a.Decoder,
		Assistant: a.Assistant,
		Retriever: a.Retriever,
		Inbox:     a.Inbox,
		Sink:      a.Sink,
		Profiles:  a.DB.Profiles(),
		History:   a.DB.History(),
		Database:  a.DB,
		LLM:       handlers.PingFunc(a.PingLLM),
	})

	addr := a.ListenAddress()
	srv := &http.Server{Addr: addr, Handler: router.Handler()}

	serve := func(ctx context.Context) error {
		errCh := make(chan error, 1)
		go func() {
			log.Info().Str("address", addr).Msg("Starting API server")
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	if err := a.Run(ctx, serve); err != nil {
		log.Error().Err(err).Msg("Server failed")
		os.Exit(1)
	}
}
