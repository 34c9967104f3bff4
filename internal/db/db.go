package db

import (
	"context"
	"database/sql"
	"embed"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

var Pool *pgxpool.Pool

// InitDB opens the global connection pool and runs pending migrations.
// The server cannot run without a database, so failures are fatal.
func InitDB(dsn string) {
	ctx := context.Background()

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		log.Fatalf("Invalid database URL: %v", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	if err := migrate(dsn); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	Pool = pool
	log.Println("Database connection established")
}

func migrate(dsn string) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	return goose.Up(sqlDB, "migrations")
}
