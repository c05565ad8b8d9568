// Package db owns the connection resources of the persistence backend and
// hands out repositories bound to them.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/accessdesk/user-service/internal/core/ports"
	"github.com/accessdesk/user-service/internal/infrastructure/config"
	"github.com/accessdesk/user-service/internal/infrastructure/db/mongo"
	"github.com/accessdesk/user-service/internal/infrastructure/db/postgres"
)

// Store is the process-wide persistence handle. It is created once by the
// composition root and closed at shutdown; repositories obtained from it are
// safe for concurrent use.
type Store struct {
	kind  config.StoreKind
	users ports.UserRepository
	roles ports.RoleRepository
	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Open connects to the backend selected by cfg.StoreKind and prepares its
// schema or indexes.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	switch cfg.StoreKind {
	case config.StorePostgres:
		return openPostgres(ctx, cfg, log)
	case config.StoreMongo:
		return openMongo(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("db: unsupported store kind %q", cfg.StoreKind)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	pool, err := postgres.Connect(ctx, postgres.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
		SSLMode:  cfg.Postgres.SSLMode,
		MaxConns: cfg.Postgres.MaxConns,
		MinConns: cfg.Postgres.MinConns,
		Timeout:  cfg.DBTimeout,
	})
	if err != nil {
		return nil, err
	}

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info().
		Str("host", cfg.Postgres.Host).
		Str("database", cfg.Postgres.Database).
		Msg("Connected to PostgreSQL")

	return newPostgresStore(pool, cfg), nil
}

func newPostgresStore(pool *pgxpool.Pool, cfg *config.Config) *Store {
	return &Store{
		kind:  config.StorePostgres,
		users: postgres.NewUserRepository(pool, cfg.DBTimeout),
		roles: postgres.NewRoleRepository(pool, cfg.DBTimeout),
		ping:  pool.Ping,
		close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}
}

func openMongo(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	client, database, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.DBTimeout,
	})
	if err != nil {
		return nil, err
	}

	users := mongo.NewUserRepository(database, cfg.DBTimeout)
	roles := mongo.NewRoleRepository(database, cfg.DBTimeout)

	if err := errors.Join(users.EnsureIndexes(ctx), roles.EnsureIndexes(ctx)); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ensure indexes: %w", err)
	}

	log.Info().Str("database", cfg.Mongo.Database).Msg("Connected to MongoDB")

	return &Store{
		kind:  config.StoreMongo,
		users: users,
		roles: roles,
		ping: func(ctx context.Context) error {
			return pingMongo(ctx, database)
		},
		close: client.Disconnect,
	}, nil
}

func pingMongo(ctx context.Context, database *mongodriver.Database) error {
	return database.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

// Kind names the active backend.
func (s *Store) Kind() config.StoreKind { return s.kind }

func (s *Store) Users() ports.UserRepository { return s.users }

func (s *Store) Roles() ports.RoleRepository { return s.roles }

// Ping checks that the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close releases the underlying connections. It is safe to call once.
func (s *Store) Close(ctx context.Context) error {
	return s.close(ctx)
}
