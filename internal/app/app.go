// Package app wires the service's components together: database pool,
// Genkit instance, stores, tool catalog, orchestrator and HTTP server.
package app

import (
	"log/slog"

	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stridelabs/stride/internal/api"
	"github.com/stridelabs/stride/internal/config"
	"github.com/stridelabs/stride/internal/orchestrator"
)

// App holds the assembled application. Close releases what Setup
// acquired.
type App struct {
	Config       *config.Config
	Logger       *slog.Logger
	Pool         *pgxpool.Pool
	Genkit       *genkit.Genkit
	Orchestrator *orchestrator.Orchestrator
	Server       *api.Server

	dbCleanup func()
}

// Close releases database resources. Safe to call on a partially
// initialized App.
func (a *App) Close() error {
	if a.dbCleanup != nil {
		a.dbCleanup()
		a.dbCleanup = nil
	}
	return nil
}
