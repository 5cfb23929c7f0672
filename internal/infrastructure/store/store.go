package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-records/config"
	"github.com/oksasatya/user-records/internal/domain/repository"
	"github.com/oksasatya/user-records/internal/infrastructure/migrations"
	pginfra "github.com/oksasatya/user-records/internal/infrastructure/postgres"
	sqliteinfra "github.com/oksasatya/user-records/internal/infrastructure/sqlite"
)

// OpenUserRepository connects the configured record store and applies migrations.
func OpenUserRepository(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (repository.UserRepository, func(), error) {
	switch cfg.DBDriver {
	case "sqlite":
		db, err := sqliteinfra.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := migrations.Up(db, migrations.DialectSQLite, logger); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return sqliteinfra.NewUserRepository(db), func() { _ = db.Close() }, nil

	case "postgres":
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolConfig{
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		})
		if err != nil {
			return nil, nil, err
		}
		// migrations run over database/sql with the pgx stdlib driver
		db, err := sql.Open("pgx", cfg.PostgresDSN())
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		defer func() { _ = db.Close() }()
		if err := migrations.Up(db, migrations.DialectPostgres, logger); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return pginfra.NewUserRepository(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}
