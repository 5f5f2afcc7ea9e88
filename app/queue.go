package app

import (
	"context"

	ingestionqueue "github.com/Black-And-White-Club/league-ledger/app/modules/ingestion/infrastructure/queue"
	"github.com/Black-And-White-Club/league-ledger/app/shared/observability/attr"
)

// NewQueue builds the River job runner over the app's services.
func (a *App) NewQueue(ctx context.Context) (*ingestionqueue.Service, error) {
	logger := a.Observability.Logger.With(attr.String("module", "queue"))

	return ingestionqueue.NewService(
		ctx,
		ingestionqueue.Config{
			DSN:          a.Config.Postgres.DSN,
			Queue:        a.Config.Queue.Name,
			PollInterval: a.Config.Queue.PollInterval,
		},
		logger,
		a.Observability.Metrics,
		ingestionqueue.NewIngestFeedWorker(logger, a.Feeds, a.Ingestion),
		ingestionqueue.NewRecomputeDebtsWorker(logger, a.Ledger),
	)
}
