package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upAdminNotes, downAdminNotes)
}

func upAdminNotes(ctx context.Context, tx *sql.Tx) error {
	return addColumnIfMissing(ctx, tx, "guests", "admin_notes", "TEXT")
}

func downAdminNotes(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, "ALTER TABLE guests DROP COLUMN admin_notes"); err != nil {
		return fmt.Errorf("dropping admin_notes: %w", err)
	}
	return nil
}
