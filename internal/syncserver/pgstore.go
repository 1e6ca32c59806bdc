package syncserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/FairHead/GymFit/internal/models"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore keeps aggregates in Postgres, one JSONB document per
// (user, routine). The server never looks inside the document beyond the
// updated_at column it denormalizes for the change feed.
type PgStore struct {
	Pool *pgxpool.Pool
}

// Compile-time check: PgStore satisfies Store.
var _ Store = (*PgStore)(nil)

// NewPgStore creates a PgStore with a connection pool.
func NewPgStore(ctx context.Context, dsn string) (*PgStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &PgStore{Pool: pool}, nil
}

// Close closes the connection pool.
func (s *PgStore) Close() {
	s.Pool.Close()
}

// RunMigrations applies all pending server-side migrations from the given
// directory.
func RunMigrations(dsn, migrationsPath string) error {
	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func (s *PgStore) Get(ctx context.Context, userID, routineID string) (*models.RoutineAggregate, error) {
	var doc []byte
	err := s.Pool.QueryRow(ctx,
		`SELECT doc FROM routine_aggregates WHERE user_id = $1 AND routine_id = $2`,
		userID, routineID).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying aggregate: %w", err)
	}

	var agg models.RoutineAggregate
	if err := json.Unmarshal(doc, &agg); err != nil {
		return nil, fmt.Errorf("decoding aggregate: %w", err)
	}
	return &agg, nil
}

func (s *PgStore) Put(ctx context.Context, userID string, agg *models.RoutineAggregate) error {
	doc, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("encoding aggregate: %w", err)
	}
	_, err = s.Pool.Exec(ctx,
		`INSERT INTO routine_aggregates (user_id, routine_id, updated_at, doc)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, routine_id)
		 DO UPDATE SET updated_at = EXCLUDED.updated_at, doc = EXCLUDED.doc`,
		userID, agg.Routine.ID, agg.Routine.UpdatedAt, doc)
	if err != nil {
		return fmt.Errorf("upserting aggregate: %w", err)
	}
	return nil
}

func (s *PgStore) Delete(ctx context.Context, userID, routineID string) error {
	_, err := s.Pool.Exec(ctx,
		`DELETE FROM routine_aggregates WHERE user_id = $1 AND routine_id = $2`,
		userID, routineID)
	if err != nil {
		return fmt.Errorf("deleting aggregate: %w", err)
	}
	return nil
}

func (s *PgStore) ChangedSince(ctx context.Context, userID string, ts int64) ([]Head, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT routine_id, updated_at FROM routine_aggregates
		 WHERE user_id = $1 AND updated_at > $2
		 ORDER BY routine_id`,
		userID, ts)
	if err != nil {
		return nil, fmt.Errorf("querying change feed: %w", err)
	}
	defer rows.Close()

	var heads []Head
	for rows.Next() {
		var h Head
		if err := rows.Scan(&h.RoutineID, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning change feed: %w", err)
		}
		heads = append(heads, h)
	}
	return heads, rows.Err()
}
