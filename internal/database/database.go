package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nexcodes/softec-25-sub000/internal/config"
	"github.com/nexcodes/softec-25-sub000/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DB bundles the gorm handle with the pgx pool underneath it
type DB struct {
	Gorm  *gorm.DB
	pool  *pgxpool.Pool
	sqlDB *sql.DB
}

// Open connects to PostgreSQL through a pgx pool and wraps it with gorm
func Open(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), GormConfig())
	if err != nil {
		sqlDB.Close()
		pool.Close()
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	return &DB{Gorm: db, pool: pool, sqlDB: sqlDB}, nil
}

// GormConfig is shared by production and test databases. TranslateError makes
// unique violations surface as gorm.ErrDuplicatedKey on every dialect.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         NewLogger(),
	}
}

// Ping checks the pool is still reachable
func (d *DB) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

// Close releases the sql.DB wrapper and the pool
func (d *DB) Close() {
	d.sqlDB.Close()
	d.pool.Close()
}

// Migrate creates or updates every table, index and foreign key
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
