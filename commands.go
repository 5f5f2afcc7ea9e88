package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Black-And-White-Club/league-ledger/app"
	"github.com/Black-And-White-Club/league-ledger/app/ops"
	"github.com/Black-And-White-Club/league-ledger/app/shared/observability/attr"
	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"
)

func ingestRosterCommand() *cli.Command {
	return &cli.Command{
		Name:      "ingest-roster",
		Usage:     "upsert the players listed in a feed file",
		ArgsUsage: "<feed file>",
		Action: func(c *cli.Context) error {
			path, err := feedPath(c)
			if err != nil {
				return err
			}
			return withApp(c, func(ctx context.Context, a *app.App) error {
				feed, err := a.Feeds.Load(path)
				if err != nil {
					return err
				}
				result, err := a.Ingestion.IngestRoster(ctx, feed.Roster)
				printRoster(c.App.Writer, result)
				return updateFailed(err)
			})
		},
	}
}

func ingestRoundCommand() *cli.Command {
	return &cli.Command{
		Name:      "ingest-round",
		Usage:     "store the points of one round and recompute debts",
		ArgsUsage: "<feed file>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "ordinal", Aliases: []string{"n"}, Required: true, Usage: "round ordinal, starting at 1"},
			&cli.StringFlag{Name: "label", Usage: "round label (defaults to the label in the feed)"},
		},
		Action: func(c *cli.Context) error {
			path, err := feedPath(c)
			if err != nil {
				return err
			}
			return withApp(c, func(ctx context.Context, a *app.App) error {
				round, err := loadSingleRound(a, path)
				if err != nil {
					return err
				}
				label := c.String("label")
				if label == "" {
					label = round.Label
				}
				result, err := a.Ingestion.IngestRound(ctx, c.Int("ordinal"), label, round.Entries)
				if err != nil {
					return updateFailed(err)
				}
				printRound(c.App.Writer, result)
				return nil
			})
		},
	}
}

func appendRoundCommand() *cli.Command {
	return &cli.Command{
		Name:      "append-round",
		Usage:     "store a round under the next free ordinal and recompute debts",
		ArgsUsage: "<feed file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "label", Usage: "round label (defaults to the label in the feed)"},
		},
		Action: func(c *cli.Context) error {
			path, err := feedPath(c)
			if err != nil {
				return err
			}
			return withApp(c, func(ctx context.Context, a *app.App) error {
				round, err := loadSingleRound(a, path)
				if err != nil {
					return err
				}
				label := c.String("label")
				if label == "" {
					label = round.Label
				}
				result, err := a.Ingestion.AppendRound(ctx, label, round.Entries)
				if err != nil {
					return updateFailed(err)
				}
				printRound(c.App.Writer, result)
				return nil
			})
		},
	}
}

func ingestFeedCommand() *cli.Command {
	return &cli.Command{
		Name:      "ingest-feed",
		Usage:     "ingest a whole season: roster first, then every round in order",
		ArgsUsage: "<feed file>",
		Action: func(c *cli.Context) error {
			path, err := feedPath(c)
			if err != nil {
				return err
			}
			return withApp(c, func(ctx context.Context, a *app.App) error {
				feed, err := a.Feeds.Load(path)
				if err != nil {
					return err
				}
				result, err := a.Ingestion.IngestFeed(ctx, *feed)
				printRoster(c.App.Writer, result.Roster)
				for _, r := range result.Rounds {
					printRound(c.App.Writer, r)
				}
				return updateFailed(err)
			})
		},
	}
}

func recomputeCommand() *cli.Command {
	return &cli.Command{
		Name:  "recompute",
		Usage: "rebuild debt history and totals from the stored points",
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, a *app.App) error {
				ledger, err := a.Ledger.RecomputeDebts(ctx)
				if err != nil {
					return updateFailed(err)
				}
				fmt.Fprintf(c.App.Writer, "recomputed %d history rows for %d players\n", len(ledger.History), len(ledger.Totals))
				return nil
			})
		},
	}
}

func standingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "standings",
		Usage: "print the leaderboard of one round",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "ordinal", Aliases: []string{"n"}, Required: true, Usage: "round ordinal"},
		},
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, a *app.App) error {
				rows, err := a.Ledger.RoundStandings(ctx, c.Int("ordinal"))
				if err != nil {
					return err
				}
				return printStandings(c.App.Writer, rows)
			})
		},
	}
}

func debtsCommand() *cli.Command {
	return &cli.Command{
		Name:  "debts",
		Usage: "print the season debt table",
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, a *app.App) error {
				table, err := a.Ledger.SeasonDebtTable(ctx)
				if err != nil {
					return err
				}
				return printSeason(c.App.Writer, table)
			})
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write the season debt table to an XLSX workbook",
		Flags: []cli.Flag{
			&cli.PathFlag{Name: "out", Aliases: []string{"o"}, Value: "debts.xlsx", Usage: "output file"},
		},
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, a *app.App) error {
				return writeFile(c.Path("out"), func(f *os.File) error {
					return a.Ledger.ExportSeasonWorkbook(ctx, f)
				})
			})
		},
	}
}

func chartCommand() *cli.Command {
	return &cli.Command{
		Name:  "chart",
		Usage: "render season debt totals as a PNG bar chart",
		Flags: []cli.Flag{
			&cli.PathFlag{Name: "out", Aliases: []string{"o"}, Value: "debts.png", Usage: "output file"},
		},
		Action: func(c *cli.Context) error {
			return withApp(c, func(ctx context.Context, a *app.App) error {
				return writeFile(c.Path("out"), func(f *os.File) error {
					return a.Ledger.RenderDebtChart(ctx, f)
				})
			})
		},
	}
}

func enqueueCommand() *cli.Command {
	return &cli.Command{
		Name:  "enqueue",
		Usage: "schedule ledger jobs for the serve worker",
		Subcommands: []*cli.Command{
			{
				Name:      "feed",
				Usage:     "schedule ingestion of a feed file",
				ArgsUsage: "<feed file>",
				Action: func(c *cli.Context) error {
					path, err := feedPath(c)
					if err != nil {
						return err
					}
					return withQueue(c, func(ctx context.Context, q queueClient) (int64, error) {
						return q.EnqueueFeed(ctx, path)
					})
				},
			},
			{
				Name:  "recompute",
				Usage: "schedule a debt recompute",
				Action: func(c *cli.Context) error {
					return withQueue(c, func(ctx context.Context, q queueClient) (int64, error) {
						return q.EnqueueRecompute(ctx)
					})
				},
			},
		},
	}
}

type queueClient interface {
	EnqueueFeed(ctx context.Context, path string) (int64, error)
	EnqueueRecompute(ctx context.Context) (int64, error)
}

func withQueue(c *cli.Context, fn func(ctx context.Context, q queueClient) (int64, error)) error {
	return withApp(c, func(ctx context.Context, a *app.App) error {
		q, err := a.NewQueue(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := q.Stop(context.Background()); err != nil {
				a.Observability.Logger.Warn("Queue stop failed", attr.Error(err))
			}
		}()
		id, err := fn(ctx, q)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "enqueued job %d\n", id)
		return nil
	})
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the ledger job worker and the ops endpoint",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "rate", Value: 5, Usage: "ops requests per second per client"},
			&cli.IntFlag{Name: "burst", Value: 10, Usage: "ops request burst per client"},
		},
		Action: func(c *cli.Context) error {
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
			logger := a.Observability.Logger

			q, err := a.NewQueue(ctx)
			if err != nil {
				return err
			}
			if err := q.Start(ctx); err != nil {
				return err
			}
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), a.Config.Ledger.OperationTimeout)
				defer cancel()
				if err := q.Stop(stopCtx); err != nil {
					logger.Error("Queue stop failed", attr.Error(err))
				}
			}()

			addr := a.Config.Observability.MetricsAddress
			if addr == "" {
				logger.Info("No metrics address configured; running worker only")
				<-ctx.Done()
				return nil
			}
			limiter := ops.NewIPRateLimiter(rate.Limit(c.Float64("rate")), c.Int("burst"))
			router := ops.NewRouter(logger, a.Observability.Registry, a.DB, limiter)
			return ops.Serve(ctx, logger, addr, router)
		},
	}
}
