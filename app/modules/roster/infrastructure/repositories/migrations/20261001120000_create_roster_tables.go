package rostermigrations

import (
	"context"
	"fmt"

	rosterdb "github.com/Black-And-White-Club/league-ledger/app/modules/roster/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating players and rounds tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewCreateTable().Model((*rosterdb.Player)(nil)).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to create players table: %w", err)
			}
			if _, err := tx.NewCreateTable().Model((*rosterdb.Round)(nil)).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to create rounds table: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `
				ALTER TABLE rounds DROP CONSTRAINT IF EXISTS rounds_ordinal_positive;
				ALTER TABLE rounds ADD CONSTRAINT rounds_ordinal_positive CHECK (ordinal >= 1);
			`); err != nil {
				return fmt.Errorf("failed to add ordinal check: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping players and rounds tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewDropTable().Model((*rosterdb.Round)(nil)).IfExists().Cascade().Exec(ctx); err != nil {
				return err
			}
			if _, err := tx.NewDropTable().Model((*rosterdb.Player)(nil)).IfExists().Cascade().Exec(ctx); err != nil {
				return err
			}
			return nil
		})
	})
}
