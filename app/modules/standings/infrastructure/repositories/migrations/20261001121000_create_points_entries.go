package standingsmigrations

import (
	"context"
	"fmt"

	standingsdb "github.com/Black-And-White-Club/league-ledger/app/modules/standings/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating points_entries table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewCreateTable().
				Model((*standingsdb.PointsEntry)(nil)).
				IfNotExists().
				ForeignKey(`(player_id) REFERENCES players (id) ON DELETE RESTRICT`).
				ForeignKey(`(round_id) REFERENCES rounds (id) ON DELETE RESTRICT`).
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to create points_entries table: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `
				ALTER TABLE points_entries DROP CONSTRAINT IF EXISTS points_entries_points_non_negative;
				ALTER TABLE points_entries ADD CONSTRAINT points_entries_points_non_negative CHECK (points >= 0);
				CREATE INDEX IF NOT EXISTS idx_points_entries_round_id ON points_entries(round_id);
			`); err != nil {
				return fmt.Errorf("failed to add points_entries constraints: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping points_entries table...")

		if _, err := db.NewDropTable().Model((*standingsdb.PointsEntry)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		return nil
	})
}
