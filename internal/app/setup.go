package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/compat_oai/openai"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stridelabs/stride/internal/api"
	"github.com/stridelabs/stride/internal/athlete"
	"github.com/stridelabs/stride/internal/config"
	"github.com/stridelabs/stride/internal/conversation"
	"github.com/stridelabs/stride/internal/credentials"
	"github.com/stridelabs/stride/internal/database"
	"github.com/stridelabs/stride/internal/gateway"
	"github.com/stridelabs/stride/internal/orchestrator"
	"github.com/stridelabs/stride/internal/tools"
)

// modelRequestsPerSecond limits outbound model API calls across all
// in-flight requests.
const modelRequestsPerSecond = 2

// Setup creates and initializes the application. On error, everything
// already acquired is released before returning.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, retErr error) {
	a := &App{Config: cfg, Logger: logger}

	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	pool, cleanup, err := provideDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Pool = pool
	a.dbCleanup = cleanup

	g, err := provideGenkit(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	athleteStore := athlete.NewStore(pool, logger)
	builder := athlete.NewBuilder(athleteStore, logger)

	gatewayClient := gateway.NewClient(cfg.GatewayURL, logger)
	credentialStore := credentials.NewStore(pool, logger)
	executor := tools.NewExecutor(gatewayClient, credentialStore, logger)
	catalog := tools.Register(g, executor)

	provider := orchestrator.NewGenkitProvider(g, orchestrator.GenkitProviderConfig{
		ModelName:         cfg.ModelName,
		Tools:             catalog,
		Retry:             orchestrator.DefaultRetryConfig(),
		Breaker:           orchestrator.DefaultCircuitBreakerConfig(),
		RequestsPerSecond: modelRequestsPerSecond,
		Logger:            logger,
	})

	orch, err := orchestrator.New(orchestrator.Config{
		Provider:       provider,
		Builder:        builder,
		Runner:         executor,
		Logger:         logger,
		MaxToolRounds:  cfg.MaxToolRounds,
		RequestTimeout: cfg.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("creating orchestrator: %w", err)
	}
	a.Orchestrator = orch

	server, err := api.NewServer(api.Config{
		Coach:         orch,
		Conversations: conversation.NewStore(pool, logger),
		AuthSecret:    []byte(cfg.AuthSecret),
		Logger:        logger,
		Ready: func(ctx context.Context) error {
			return pool.Ping(ctx)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating API server: %w", err)
	}
	a.Server = server

	return a, nil
}

// provideDBPool runs migrations and opens the connection pool.
func provideDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, func(), error) {
	if err := database.Migrate(cfg.PostgresURL()); err != nil {
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := database.NewPool(poolCtx, cfg.PostgresConnectionString())
	if err != nil {
		return nil, nil, err
	}
	return pool, pool.Close, nil
}

// provideGenkit initializes Genkit with the configured model provider.
func provideGenkit(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*genkit.Genkit, error) {
	var g *genkit.Genkit

	switch cfg.Provider {
	case config.ProviderOpenAI:
		g = genkit.Init(ctx, genkit.WithPlugins(&openai.OpenAI{}))
		if g == nil {
			return nil, errors.New("initializing genkit with openai provider")
		}
	default: // gemini
		g = genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
		if g == nil {
			return nil, errors.New("initializing genkit with gemini provider")
		}
	}

	logger.Info("initialized Genkit", "provider", cfg.Provider, "model", cfg.ModelName)
	return g, nil
}
