package ledgermigrations

import (
	"context"
	"fmt"

	ledgerdb "github.com/Black-And-White-Club/league-ledger/app/modules/ledger/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating debt_history and debt_totals tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewCreateTable().
				Model((*ledgerdb.DebtHistoryEntry)(nil)).
				IfNotExists().
				ForeignKey(`(player_id) REFERENCES players (id) ON DELETE RESTRICT`).
				ForeignKey(`(round_id) REFERENCES rounds (id) ON DELETE RESTRICT`).
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to create debt_history table: %w", err)
			}
			if _, err := tx.NewCreateTable().
				Model((*ledgerdb.DebtTotal)(nil)).
				IfNotExists().
				ForeignKey(`(player_id) REFERENCES players (id) ON DELETE RESTRICT`).
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to create debt_totals table: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping debt_history and debt_totals tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewDropTable().Model((*ledgerdb.DebtTotal)(nil)).IfExists().Exec(ctx); err != nil {
				return err
			}
			if _, err := tx.NewDropTable().Model((*ledgerdb.DebtHistoryEntry)(nil)).IfExists().Exec(ctx); err != nil {
				return err
			}
			return nil
		})
	})
}
