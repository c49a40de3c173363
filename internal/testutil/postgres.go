// internal/testutil/postgres.go
package testutil

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"shopbot/pkg/db"
)

const postgresImage = "postgres:16-alpine"

// Postgres is a disposable PostgreSQL instance with the schema applied.
type Postgres struct {
	Config    db.Config
	DB        *sqlx.DB
	container *postgres.PostgresContainer
}

// StartPostgres launches a container, connects to it and runs the migrations.
func StartPostgres(ctx context.Context) (*Postgres, error) {
	cfg := db.Config{User: "shopbot", Password: "shopbot", DBName: "shopbot", SSLMode: "disable"}

	container, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase(cfg.DBName),
		postgres.WithUsername(cfg.User),
		postgres.WithPassword(cfg.Password),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	pg := &Postgres{container: container}
	if cfg.Host, err = container.Host(ctx); err != nil {
		pg.Terminate()
		return nil, fmt.Errorf("failed to resolve container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		pg.Terminate()
		return nil, fmt.Errorf("failed to resolve container port: %w", err)
	}
	if cfg.Port, err = strconv.Atoi(port.Port()); err != nil {
		pg.Terminate()
		return nil, fmt.Errorf("failed to parse container port: %w", err)
	}
	pg.Config = cfg

	if pg.DB, err = db.NewPostgresDB(cfg); err != nil {
		pg.Terminate()
		return nil, err
	}
	if err := db.Migrate(ctx, pg.DB); err != nil {
		pg.Terminate()
		return nil, err
	}
	return pg, nil
}

// Terminate closes the connection pool and removes the container.
func (p *Postgres) Terminate() {
	if p.DB != nil {
		_ = p.DB.Close()
	}
	if p.container != nil {
		_ = p.container.Terminate(context.Background())
	}
}

// Truncate empties every table and resets identities.
func (p *Postgres) Truncate(t *testing.T) {
	t.Helper()
	_, err := p.DB.Exec("TRUNCATE TABLE orders, payment_intents, transactions, products, users RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

// RequireDocker skips the test under -short or when no container runtime is reachable.
func RequireDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
}
