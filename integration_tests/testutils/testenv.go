package testutils

import (
	"context"
	"fmt"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"

	"github.com/Black-And-White-Club/league-ledger/app"
	"github.com/Black-And-White-Club/league-ledger/app/shared/observability"
	"github.com/Black-And-White-Club/league-ledger/config"
	"github.com/Black-And-White-Club/league-ledger/integration_tests/containers"
)

// TestEnvironment holds the Postgres container shared by one test binary.
type TestEnvironment struct {
	Ctx         context.Context
	PgContainer *postgres.PostgresContainer
	DSN         string
	DB          *bun.DB
	Config      *config.Config
}

var (
	globalEnv    *TestEnvironment
	globalEnvErr error
	globalOnce   sync.Once
)

// GetOrCreateTestEnv starts the container on first use. Integration tests are
// skipped in -short mode.
func GetOrCreateTestEnv(t *testing.T) *TestEnvironment {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	globalOnce.Do(func() {
		globalEnv, globalEnvErr = newTestEnvironment(context.Background())
	})
	if globalEnvErr != nil {
		t.Fatalf("failed to create test environment: %v", globalEnvErr)
	}
	return globalEnv
}

func newTestEnvironment(ctx context.Context) (*TestEnvironment, error) {
	pgContainer, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return nil, err
	}

	db, err := app.OpenDB(ctx, dsn)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}

	if err := runMigrations(ctx, db, dsn); err != nil {
		db.Close()
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestEnvironment{
		Ctx:         ctx,
		PgContainer: pgContainer,
		DSN:         dsn,
		DB:          db,
		Config: &config.Config{
			Postgres: config.PostgresConfig{DSN: dsn},
			Ledger: config.LedgerConfig{
				DisplayNames:     map[string]string{},
				OperationTimeout: 30 * time.Second,
			},
			Queue: config.QueueConfig{Name: "ledger", PollInterval: 50 * time.Millisecond},
		},
	}, nil
}

// NewApp empties the database and wires a fresh App over it.
func (env *TestEnvironment) NewApp(t *testing.T) *app.App {
	t.Helper()
	if err := CleanupDatabase(env.Ctx, env.DB); err != nil {
		t.Fatalf("failed to clean database: %v", err)
	}
	return app.New(env.Config, observability.NewNoOp(), env.DB)
}

// Shutdown closes the database and terminates the container.
func Shutdown(ctx context.Context) {
	if globalEnv == nil {
		return
	}
	if err := globalEnv.DB.Close(); err != nil {
		log.Printf("failed to close database: %v", err)
	}
	if err := globalEnv.PgContainer.Terminate(ctx); err != nil {
		log.Printf("failed to terminate postgres container: %v", err)
	}
}
