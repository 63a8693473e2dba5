package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/urmzd/homecare/pkg/app"
	"github.com/urmzd/homecare/pkg/config"
	"github.com/urmzd/homecare/pkg/logging"
	homecaremcp "github.com/urmzd/homecare/pkg/mcp"
)

const version = "1.0.0"

func main() {
	// Parse flags
	dbPath := flag.String("db", "", "Path to database file (default: ~/.config/homecare/homecare.db)")
	configFile := flag.String("config", "", "Path to a YAML config file (default: $CONFIG_FILE)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	// Logging must go to stderr, stdout is the MCP transport
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

	mcpServer := homecaremcp.NewServer(version, homecaremcp.Deps{
		Home:      a.Home,
		Decoder:   a.Decoder,
		Router:    a.Router,
		Inbox:     a.Inbox,
		Assistant: a.Assistant,
	})

	// ServeStdio returns when stdin closes or a signal arrives
	serve := func(ctx context.Context) error {
		log.Info().Msg("Starting MCP server on stdio")
		err := mcpServer.ServeStdio()
		stop()
		return err
	}

	if err := a.Run(ctx, serve); err != nil {
		log.Error().Err(err).Msg("MCP server failed")
		os.Exit(1)
	}
}
