package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	ingestionservice "github.com/Black-And-White-Club/league-ledger/app/modules/ingestion/application"
	"github.com/Black-And-White-Club/league-ledger/app/modules/ingestion/infrastructure/feed"
	ledgerservice "github.com/Black-And-White-Club/league-ledger/app/modules/ledger/application"
	ledgerdb "github.com/Black-And-White-Club/league-ledger/app/modules/ledger/infrastructure/repositories"
	rosterservice "github.com/Black-And-White-Club/league-ledger/app/modules/roster/application"
	rosterdb "github.com/Black-And-White-Club/league-ledger/app/modules/roster/infrastructure/repositories"
	standingsservice "github.com/Black-And-White-Club/league-ledger/app/modules/standings/application"
	standingsdb "github.com/Black-And-White-Club/league-ledger/app/modules/standings/infrastructure/repositories"
	"github.com/Black-And-White-Club/league-ledger/app/shared/observability"
	"github.com/Black-And-White-Club/league-ledger/app/shared/observability/attr"
	"github.com/Black-And-White-Club/league-ledger/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// App holds the wired services of the ledger.
type App struct {
	Config        *config.Config
	Observability *observability.Observability
	DB            *bun.DB

	Roster    rosterservice.Service
	Standings standingsservice.Service
	Ledger    ledgerservice.Service
	Ingestion ingestionservice.Service
	Feeds     *feed.Factory
}

// NewApp opens the database and wires every module.
func NewApp(ctx context.Context, cfg *config.Config, obs *observability.Observability) (*App, error) {
	db, err := OpenDB(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	obs.Logger.InfoContext(ctx, "Database connected")
	return New(cfg, obs, db), nil
}

// OpenDB opens a bun handle over pgdriver and checks the connection.
func OpenDB(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// New wires the modules over an open database.
func New(cfg *config.Config, obs *observability.Observability, db *bun.DB) *App {
	logger := obs.Logger.With(attr.String("environment", cfg.Observability.Environment))

	rosterRepo := rosterdb.NewRepository(db)
	pointsRepo := standingsdb.NewRepository(db)
	ledgerRepo := ledgerdb.NewRepository(db)

	roster := rosterservice.NewRosterService(
		rosterRepo,
		logger.With(attr.String("module", "roster")),
		obs.Metrics,
		obs.Tracer,
		cfg.Ledger.DisplayNames,
	)
	standings := standingsservice.NewStandingsService(
		pointsRepo,
		roster,
		logger.With(attr.String("module", "standings")),
		obs.Metrics,
		obs.Tracer,
	)
	ledger := ledgerservice.NewLedgerService(
		ledgerRepo,
		roster,
		standings,
		logger.With(attr.String("module", "ledger")),
		obs.Metrics,
		obs.Tracer,
		db,
	)
	ingestion := ingestionservice.NewIngestionService(
		roster,
		standings,
		ledger,
		ledgerRepo,
		logger.With(attr.String("module", "ingestion")),
		obs.Metrics,
		obs.Tracer,
		db,
	)

	return &App{
		Config:        cfg,
		Observability: obs,
		DB:            db,
		Roster:        roster,
		Standings:     standings,
		Ledger:        ledger,
		Ingestion:     ingestion,
		Feeds:         feed.NewFactory(),
	}
}

// Close releases the database handle and flushes traces.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.DB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	if err := a.Observability.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown observability: %w", err))
	}
	return errors.Join(errs...)
}
