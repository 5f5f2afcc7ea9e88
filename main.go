package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Black-And-White-Club/league-ledger/app"
	ingestionservice "github.com/Black-And-White-Club/league-ledger/app/modules/ingestion/application"
	ledgerservice "github.com/Black-And-White-Club/league-ledger/app/modules/ledger/application"
	rosterservice "github.com/Black-And-White-Club/league-ledger/app/modules/roster/application"
	"github.com/Black-And-White-Club/league-ledger/app/shared/observability"
	"github.com/Black-And-White-Club/league-ledger/app/shared/observability/attr"
	"github.com/Black-And-White-Club/league-ledger/config"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newCLI().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCLI() *cli.App {
	return &cli.App{
		Name:    "league-ledger",
		Usage:   "ingest league standings and keep the debt ledger",
		Version: config.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"LEDGER_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			ingestRosterCommand(),
			ingestRoundCommand(),
			appendRoundCommand(),
			ingestFeedCommand(),
			recomputeCommand(),
			standingsCommand(),
			debtsCommand(),
			exportCommand(),
			chartCommand(),
			enqueueCommand(),
			serveCommand(),
		},
	}
}

// withApp loads configuration, wires the application and runs fn under the
// configured operation timeout.
func withApp(c *cli.Context, fn func(ctx context.Context, a *app.App) error) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, c.String("config"))
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			a.Observability.Logger.Error("Shutdown failed", attr.Error(err))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, a.Config.Ledger.OperationTimeout)
	defer cancel()
	return fn(ctx, a)
}

func bootstrap(ctx context.Context, configPath string) (*app.App, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	obs, err := observability.New(ctx, config.ToObsConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	a, err := app.NewApp(ctx, cfg, obs)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, err
	}
	return a, nil
}

// updateFailed collapses ingestion and recompute failures into the single
// outcome shown to operators.
func updateFailed(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ingestionservice.ErrIngestionFailed),
		errors.Is(err, ledgerservice.ErrRecomputeFailed),
		errors.Is(err, rosterservice.ErrRosterIncomplete):
		return cli.Exit("update failed", 1)
	default:
		return err
	}
}
