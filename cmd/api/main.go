// Package main is the entry point for the property co-pilot API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/righthome-ai/property-copilot/internal/catalog"
	"github.com/righthome-ai/property-copilot/internal/config"
	"github.com/righthome-ai/property-copilot/internal/engine"
	"github.com/righthome-ai/property-copilot/internal/handler"
	"github.com/righthome-ai/property-copilot/internal/llm"
	natsclient "github.com/righthome-ai/property-copilot/internal/nats"
	"github.com/righthome-ai/property-copilot/internal/recommend"
	"github.com/righthome-ai/property-copilot/internal/schedule"
	"github.com/righthome-ai/property-copilot/internal/service"
	"github.com/righthome-ai/property-copilot/internal/session"
	"github.com/righthome-ai/property-copilot/pkg/logger"
	"github.com/righthome-ai/property-copilot/pkg/tracing"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	log.Info("starting property co-pilot")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "property-copilot", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(context.Background(), tp)
		}
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatal("failed to load catalog", zap.String("path", cfg.CatalogPath), zap.Error(err))
	}
	log.Info("catalog loaded", zap.Int("listings", cat.Len()), zap.Int("version", cat.Version()))

	scorer := recommend.NewScorerWithWeights(cat, recommend.Weights{
		City:       cfg.RankWeightCity,
		Type:       cfg.RankWeightType,
		Bedrooms:   cfg.RankWeightBedrooms,
		Status:     cfg.RankWeightStatus,
		Budget:     cfg.RankWeightBudget,
		BudgetNear: cfg.RankWeightBudgetNear,
	})

	var engineOpts []engine.Option
	if cfg.PhrasingEnabled {
		if phraser := newPhraser(cfg, log); phraser != nil {
			engineOpts = append(engineOpts, engine.WithPhraser(phraser))
		}
	}
	eng := engine.New(scorer, engineOpts...)

	checks := map[string]handler.Checker{}

	store, closeStore := newSessionStore(ctx, cfg, log)
	defer closeStore()
	checks["sessions"] = store

	var transcript service.Transcript
	if cfg.NATSEnabled {
		natsClient, err := natsclient.Connect(ctx, natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Fatal("failed to connect to NATS", zap.Error(err))
		}
		defer natsClient.Close()

		streamManager := natsclient.NewStreamManager(natsClient, cfg.SessionTTL)
		if err := streamManager.EnsureStream(ctx); err != nil {
			log.Fatal("failed to ensure stream", zap.Error(err))
		}
		if err := streamManager.RecordStreamSize(ctx); err != nil {
			log.Warn("failed to read stream size", zap.Error(err))
		}
		transcript = streamManager
		checks["nats"] = natsClient
	}

	sessions := service.NewSessionService(store, log)
	turns := service.NewTurnService(service.TurnServiceConfig{
		Engine:     eng,
		Sessions:   sessions,
		Transcript: transcript,
		Listings:   cat,
		Links: schedule.Links{
			WhatsAppNumber: cfg.WhatsAppNumber,
			CalendlyURL:    cfg.CalendlyURL,
			CallbackPhone:  cfg.CallbackPhone,
		},
		Logger: log,
	})

	authSecret := ""
	if cfg.AuthEnabled {
		authSecret = cfg.JWTSecret
	}

	router := handler.NewRouter(handler.RouterConfig{
		Sessions:          handler.NewSessionHandler(sessions, turns, log),
		Stream:            handler.NewStreamHandler(turns, log),
		Listings:          handler.NewListingHandler(cat),
		Health:            handler.NewHealthHandler(cat.Len(), checks),
		Logger:            log,
		AuthSecret:        authSecret,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

// newSessionStore builds the configured session backend and returns its cleanup func.
func newSessionStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (session.Store, func()) {
	if cfg.SessionBackend == config.SessionBackendRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := session.NewRedisStore(client, cfg.SessionTTL)
		if err := store.Ping(ctx); err != nil {
			log.Fatal("failed to connect to Redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		go session.RunSizeReporter(ctx, store, time.Minute)
		log.Info("using Redis session store", zap.String("addr", cfg.RedisAddr))
		return store, func() { client.Close() }
	}

	store := session.NewMemoryStore(cfg.SessionTTL)
	go store.RunSweeper(ctx, time.Minute)
	log.Info("using in-memory session store")
	return store, func() {}
}

// newPhraser returns an LLM phraser for the configured provider, or nil when no key
// is available. Phrasing is optional, so failures only disable it.
func newPhraser(cfg *config.Config, log *logger.Logger) engine.Phraser {
	provider := llm.Provider(cfg.DefaultLLM)
	apiKey := cfg.AnthropicAPIKey
	if provider == llm.ProviderOpenAI {
		apiKey = cfg.OpenAIAPIKey
	}

	client, err := llm.NewClient(provider, apiKey)
	if err != nil {
		log.Warn("LLM phrasing disabled", zap.String("provider", cfg.DefaultLLM), zap.Error(err))
		return nil
	}
	log.Info("LLM phrasing enabled", zap.String("provider", client.Name()))
	return llm.NewPhraser(client, cfg.LLMModel, cfg.LLMTimeout)
}
