// Package app wires the assistant together from configuration. Both
// binaries build on it: cmd/api puts the REST surface in front, cmd/mcp the
// MCP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/urmzd/homecare/pkg/assistant"
	"github.com/urmzd/homecare/pkg/config"
	"github.com/urmzd/homecare/pkg/db"
	"github.com/urmzd/homecare/pkg/device"
	"github.com/urmzd/homecare/pkg/home"
	"github.com/urmzd/homecare/pkg/llm"
	"github.com/urmzd/homecare/pkg/notify"
	"github.com/urmzd/homecare/pkg/notify/mqtt"
	"github.com/urmzd/homecare/pkg/parser"
	"github.com/urmzd/homecare/pkg/rag"
	"github.com/urmzd/homecare/pkg/retry"
	"github.com/urmzd/homecare/pkg/schedule"
	"github.com/urmzd/homecare/pkg/toolcall"
)

// App holds every long-lived component.
type App struct {
	Config  *config.Config
	DB      *db.DB
	Profile *db.Profile

	Home      *home.Home
	Inbox     *notify.Inbox
	Sink      notify.Sink
	Scheduler *notify.Scheduler
	Decoder   *toolcall.Decoder
	Router    *toolcall.Router
	Assistant *assistant.Assistant

	// Retriever is nil when the knowledge base is disabled or failed to build.
	Retriever toolcall.Retriever
	Completer llm.Completer
	Publisher *mqtt.Publisher // nil unless mqtt.enabled

	apiAddress string
	ping       func(ctx context.Context) error
}

// embedCompleter is what both LLM clients implement.
type embedCompleter interface {
	llm.Completer
	rag.Embedder
}

// New opens the database, restores state and builds the components. The
// caller must Close the returned App.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a := &App{Config: cfg, DB: database}
	if err := a.init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	log.Info().Str("path", a.DB.Path()).Msg("Database opened")

	if err := a.DB.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	needsBootstrap, err := a.DB.NeedsBootstrap(ctx)
	if err != nil {
		return fmt.Errorf("failed to check bootstrap status: %w", err)
	}
	if needsBootstrap {
		log.Info().Msg("First run detected, bootstrapping database...")
		if err := a.DB.Bootstrap(ctx); err != nil {
			return fmt.Errorf("failed to bootstrap database: %w", err)
		}
	}

	active, err := a.DB.ActiveConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	a.Profile = active.Profile
	a.apiAddress = active.APIAddress()
	loc := active.Location()
	clock := func() time.Time { return time.Now().In(loc) }

	log.Info().
		Str("profile", active.Profile.Name).
		Str("timezone", active.Timezone()).
		Str("api_address", active.APIAddress()).
		Msg("Profile loaded")

	if err := a.initHome(ctx, clock); err != nil {
		return err
	}
	if err := a.initNotifications(ctx, clock, loc); err != nil {
		return err
	}
	if err := a.initModel(ctx); err != nil {
		return err
	}
	return a.initAssistant(ctx, clock)
}

func (a *App) initHome(ctx context.Context, clock func() time.Time) error {
	cfg := a.Config
	a.Home = home.New(
		device.NewStateManager(device.WithClock(clock)),
		schedule.NewEngine(schedule.WithClock(clock), schedule.WithTolerance(cfg.Notify.Scheduler.Tolerance)),
		a.DB.HomeState(),
	)

	restored, err := a.Home.Load(ctx, cfg.State.RestoreDevices)
	if err != nil {
		return err
	}
	if restored {
		log.Info().
			Int("items", len(a.Home.Schedule.All())).
			Bool("devices", cfg.State.RestoreDevices).
			Msg("Home state restored")
		return nil
	}

	err = a.Home.Mutate(ctx, func() error {
		return a.Home.Schedule.Seed(schedule.DefaultRoutine)
	})
	if err != nil {
		return fmt.Errorf("failed to seed default schedule: %w", err)
	}
	log.Info().Int("items", len(schedule.DefaultRoutine)).Msg("Default schedule seeded")
	return nil
}

func (a *App) initNotifications(ctx context.Context, clock func() time.Time, loc *time.Location) error {
	cfg := a.Config
	a.Inbox = notify.NewInbox(cfg.Notify.Retention)

	journal := a.DB.Notifications()
	recent, err := journal.Recent(ctx, cfg.Notify.Retention)
	if err != nil {
		return fmt.Errorf("failed to load notifications: %w", err)
	}
	a.Inbox.Restore(recent)
	a.Inbox.OnAcknowledge(func(n notify.Notification) {
		if err := journal.Acknowledge(context.Background(), n.ID); err != nil {
			log.Error().Err(err).Str("id", n.ID).Msg("Failed to persist acknowledgement")
		}
	})

	sinks := notify.Fanout{a.Inbox, journal}
	if cfg.MQTT.Enabled {
		pub := mqtt.New(cfg.MQTT)
		if err := pub.Connect(); err != nil {
			log.Warn().Err(err).Str("broker", cfg.MQTT.Broker).Msg("MQTT broker unavailable, notifications stay local")
		} else {
			a.Publisher = pub
			sinks = append(sinks, pub)
		}
	}
	a.Sink = sinks

	a.Scheduler = notify.NewScheduler(a.Home, a.Sink, cfg.Notify.Scheduler,
		notify.WithClock(clock),
		notify.WithLocation(loc),
	)
	return nil
}

func (a *App) initModel(ctx context.Context) error {
	cfg := a.Config.LLM

	var client embedCompleter
	switch cfg.Provider {
	case config.ProviderOpenAI:
		client = llm.NewOpenAI(cfg.BaseURL, cfg.APIKey, cfg.Model).
			WithOptions(cfg.Options).
			WithEmbedModel(cfg.EmbedModel)
	default:
		ollama, err := llm.NewOllama(cfg.Host, cfg.Model, &http.Client{Timeout: cfg.Timeout})
		if err != nil {
			return fmt.Errorf("failed to create ollama client: %w", err)
		}
		client = ollama.WithOptions(cfg.Options).WithEmbedModel(cfg.EmbedModel)
		a.ping = ollama.Ping
	}
	a.Completer = llm.WithRetry(client, cfg.Retry)

	log.Info().Str("provider", cfg.Provider).Str("model", cfg.Model).Msg("Language model configured")

	if !a.Config.RAG.Enabled {
		return nil
	}
	var embedder rag.Embedder = rag.HashEmbedder{}
	if a.Config.RAG.Embedder == config.EmbedderLLM {
		embedder = client
	}
	retriever, err := buildIndex(ctx, a.Config.RAG, embedder, cfg.Retry)
	if err != nil {
		log.Warn().Err(err).Msg("Knowledge base unavailable, continuing without it")
		return nil
	}
	a.Retriever = retriever
	return nil
}

func buildIndex(ctx context.Context, cfg config.RAGConfig, embedder rag.Embedder, policy retry.Policy) (*rag.Index, error) {
	docs, err := rag.LoadKnowledgeFile(cfg.KnowledgeFile)
	if err != nil {
		return nil, err
	}
	ix := rag.NewIndex(embedder, cfg.Retrieval).WithRetryPolicy(policy)
	if err := ix.Build(ctx, rag.Chunks(docs)); err != nil {
		return nil, err
	}
	log.Info().Int("documents", len(docs)).Int("chunks", ix.Len()).Msg("Knowledge base built")
	return ix, nil
}

func (a *App) initAssistant(ctx context.Context, clock func() time.Time) error {
	dec, err := toolcall.NewDecoder()
	if err != nil {
		return err
	}
	a.Decoder = dec
	a.Router = toolcall.NewRouter(a.Home, a.Retriever)

	opts := []assistant.Option{
		assistant.WithClock(clock),
		assistant.WithJournal(a.DB.History()),
		assistant.WithNotifications(a.Inbox),
		assistant.WithProfile(assistant.Profile{UserName: a.Profile.UserName, Condition: a.Profile.Condition}),
	}
	if a.Retriever != nil {
		opts = append(opts, assistant.WithRetriever(a.Retriever))
	}
	a.Assistant = assistant.New(a.Home, a.Router, parser.New(dec), a.Completer, a.Config.Assistant, opts...)
	if err := a.Assistant.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to restore conversation, starting fresh")
	}
	return nil
}

// ListenAddress is the REST listen address: server.host and server.port
// from the configuration when a port is set, the stored API server
// otherwise.
func (a *App) ListenAddress() string {
	if a.Config.Server.Port > 0 {
		host := a.Config.Server.Host
		if host == "" {
			host = "0.0.0.0"
		}
		return net.JoinHostPort(host, strconv.Itoa(a.Config.Server.Port))
	}
	return a.apiAddress
}

// PingLLM checks that the language model server is reachable. It reports
// nil for providers without a cheap health probe.
func (a *App) PingLLM(ctx context.Context) error {
	if a.ping == nil {
		return nil
	}
	return a.ping(ctx)
}

// Run runs the notification scheduler, the MQTT device mirror and every
// service until ctx is cancelled or one of them fails.
func (a *App) Run(ctx context.Context, services ...func(ctx context.Context) error) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.Scheduler.Run(ctx)
	})
	if a.Publisher != nil {
		g.Go(func() error {
			return a.Publisher.Watch(ctx, a.Home.Devices)
		})
	}
	for _, svc := range services {
		g.Go(func() error {
			return svc(ctx)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases the broker connection and the database.
func (a *App) Close() error {
	if a.Publisher != nil {
		a.Publisher.Close()
	}
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
