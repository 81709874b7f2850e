// Package credentials resolves an athlete's upstream gateway credentials.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stridelabs/stride/internal/gateway"
)

// ErrNoCredentials indicates the athlete has not connected an upstream
// account.
var ErrNoCredentials = errors.New("no gateway credentials")

// Store looks up gateway credentials in PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore creates a Store backed by pool.
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// Lookup returns the athlete's credentials, or ErrNoCredentials when the
// athlete has no linked upstream account.
func (s *Store) Lookup(ctx context.Context, athleteID string) (*gateway.Credentials, error) {
	const q = `
		SELECT api_key, upstream_athlete_id
		FROM gateway_credentials WHERE athlete_id = $1`

	var creds gateway.Credentials
	err := s.pool.QueryRow(ctx, q, athleteID).Scan(&creds.APIKey, &creds.UpstreamAthleteID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNoCredentials, athleteID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying credentials: %w", err)
	}
	return &creds, nil
}
