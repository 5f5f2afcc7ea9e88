package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/Black-And-White-Club/league-ledger/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"

	ledgermigrations "github.com/Black-And-White-Club/league-ledger/app/modules/ledger/infrastructure/repositories/migrations"
	rostermigrations "github.com/Black-And-White-Club/league-ledger/app/modules/roster/infrastructure/repositories/migrations"
	standingsmigrations "github.com/Black-And-White-Club/league-ledger/app/modules/standings/infrastructure/repositories/migrations"
)

// moduleMigrator runs one module's migrations. Modules are applied in slice
// order because later tables reference earlier ones.
type moduleMigrator struct {
	name     string
	migrator *migrate.Migrator
}

func main() {
	cliApp := &cli.App{
		Name: "bun",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the configuration file"},
		},
		Commands: []*cli.Command{
			newMultiModuleDBCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openDB(c *cli.Context) (*bun.DB, *config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
	return bun.NewDB(pgdb, pgdialect.New()), cfg, nil
}

// newMigrators returns the module migrators in dependency order, each with
// its own bookkeeping table.
func newMigrators(db *bun.DB) []moduleMigrator {
	newMigrator := func(name string, m *migrate.Migrations) moduleMigrator {
		return moduleMigrator{
			name: name,
			migrator: migrate.NewMigrator(db, m,
				migrate.WithTableName(name+"_migrations"),
				migrate.WithLocksTableName(name+"_migration_locks"),
			),
		}
	}
	return []moduleMigrator{
		newMigrator("roster", rostermigrations.Migrations),
		newMigrator("standings", standingsmigrations.Migrations),
		newMigrator("ledger", ledgermigrations.Migrations),
	}
}

// withMigrators opens the database for the duration of one subcommand.
func withMigrators(fn func(c *cli.Context, migrators []moduleMigrator, cfg *config.Config) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		db, cfg, err := openDB(c)
		if err != nil {
			return err
		}
		defer db.Close()
		return fn(c, newMigrators(db), cfg)
	}
}

func migrateRiver(ctx context.Context, dsn string, direction rivermigrate.Direction) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create river migrator: %w", err)
	}
	opts := &rivermigrate.MigrateOpts{}
	if direction == rivermigrate.DirectionDown {
		// Down removes the whole River schema.
		opts.TargetVersion = -1
	}
	res, err := migrator.Migrate(ctx, direction, opts)
	if err != nil {
		return fmt.Errorf("river migrations: %w", err)
	}
	for _, v := range res.Versions {
		fmt.Printf("River migration %s: version %d\n", direction, v.Version)
	}
	return nil
}

func newMultiModuleDBCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: withMigrators(func(c *cli.Context, migrators []moduleMigrator, _ *config.Config) error {
					for _, m := range migrators {
						fmt.Printf("Initializing migrations for module: %s\n", m.name)
						if err := m.migrator.Init(c.Context); err != nil {
							return fmt.Errorf("init %s: %w", m.name, err)
						}
					}
					return nil
				}),
			},
			{
				Name:  "migrate",
				Usage: "migrate database",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "skip-river", Usage: "do not apply the job queue schema"},
				},
				Action: withMigrators(func(c *cli.Context, migrators []moduleMigrator, cfg *config.Config) error {
					for _, m := range migrators {
						fmt.Printf("Running migrations for module: %s\n", m.name)
						group, err := m.migrator.Migrate(c.Context)
						if err != nil {
							return fmt.Errorf("migrate %s: %w", m.name, err)
						}
						if group.IsZero() {
							fmt.Printf("No new migrations to run for module: %s\n", m.name)
						} else {
							fmt.Printf("Migrated module: %s to %s\n", m.name, group)
						}
					}
					if c.Bool("skip-river") {
						return nil
					}
					return migrateRiver(c.Context, cfg.Postgres.DSN, rivermigrate.DirectionUp)
				}),
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group of every module",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "river", Usage: "also drop the job queue schema"},
				},
				Action: withMigrators(func(c *cli.Context, migrators []moduleMigrator, cfg *config.Config) error {
					if c.Bool("river") {
						if err := migrateRiver(c.Context, cfg.Postgres.DSN, rivermigrate.DirectionDown); err != nil {
							return err
						}
					}
					for i := len(migrators) - 1; i >= 0; i-- {
						m := migrators[i]
						fmt.Printf("Rolling back migrations for module: %s\n", m.name)
						group, err := m.migrator.Rollback(c.Context)
						if err != nil {
							return fmt.Errorf("rollback %s: %w", m.name, err)
						}
						if group.IsZero() {
							fmt.Printf("No groups to roll back for module: %s\n", m.name)
						} else {
							fmt.Printf("Rolled back module: %s to %s\n", m.name, group)
						}
					}
					return nil
				}),
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: withMigrators(func(c *cli.Context, migrators []moduleMigrator, _ *config.Config) error {
					for _, m := range migrators {
						ms, err := m.migrator.MigrationsWithStatus(c.Context)
						if err != nil {
							return fmt.Errorf("status %s: %w", m.name, err)
						}
						fmt.Printf("Migrations for module: %s\n", m.name)
						fmt.Printf("  %s\n", ms)
						fmt.Printf("  Applied: %s\n", ms.Applied())
						fmt.Printf("  Unapplied: %s\n", ms.Unapplied())
					}
					return nil
				}),
			},
		},
	}
}
