package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upEventRSVP, downEventRSVP)
}

// Databases created before migrations were tracked may already carry some of these
// columns, so each one is added only when missing.
func upEventRSVP(ctx context.Context, tx *sql.Tx) error {
	columns := []struct{ name, decl string }{
		{"attendance_choice", "TEXT"},
		{"attend_ceremony", "BOOLEAN"},
		{"attend_lunch", "BOOLEAN"},
		{"allergens", "TEXT"},
	}
	for _, column := range columns {
		if err := addColumnIfMissing(ctx, tx, "guests", column.name, column.decl); err != nil {
			return err
		}
	}

	_, err := tx.ExecContext(ctx, `
		UPDATE guests
		SET
		  attend_ceremony = CASE
		    WHEN attendance_choice = 'ceremony' THEN 1
		    WHEN attendance_choice = 'lunch' THEN 0
		    WHEN attendance_choice = 'decline' THEN 0
		    ELSE attend_ceremony
		  END,
		  attend_lunch = CASE
		    WHEN attendance_choice = 'ceremony' THEN 0
		    WHEN attendance_choice = 'lunch' THEN 1
		    WHEN attendance_choice = 'decline' THEN 0
		    ELSE attend_lunch
		  END
		WHERE attendance_choice IS NOT NULL
		  AND (attend_ceremony IS NULL OR attend_lunch IS NULL)`)
	if err != nil {
		return fmt.Errorf("backfilling from attendance_choice: %w", err)
	}

	// A historic yes becomes a yes for both events.
	_, err = tx.ExecContext(ctx, `
		UPDATE guests
		SET
		  attend_ceremony = CASE
		    WHEN attend_ceremony IS NULL AND attending = 1 THEN 1
		    WHEN attend_ceremony IS NULL AND attending = 0 THEN 0
		    ELSE attend_ceremony
		  END,
		  attend_lunch = CASE
		    WHEN attend_lunch IS NULL AND attending = 1 THEN 1
		    WHEN attend_lunch IS NULL AND attending = 0 THEN 0
		    ELSE attend_lunch
		  END`)
	if err != nil {
		return fmt.Errorf("backfilling from attending: %w", err)
	}

	_, err = tx.ExecContext(ctx, `UPDATE guests SET allergens = '[]' WHERE allergens IS NULL`)
	if err != nil {
		return fmt.Errorf("defaulting allergens: %w", err)
	}
	return nil
}

func downEventRSVP(ctx context.Context, tx *sql.Tx) error {
	for _, column := range []string{"allergens", "attend_lunch", "attend_ceremony", "attendance_choice"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE guests DROP COLUMN %s", column)); err != nil {
			return fmt.Errorf("dropping column %s: %w", column, err)
		}
	}
	return nil
}

func addColumnIfMissing(ctx context.Context, tx *sql.Tx, table, column, decl string) error {
	exists, err := hasColumn(ctx, tx, table, column)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	_, err = tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, decl))
	if err != nil {
		return fmt.Errorf("adding column %s.%s: %w", table, column, err)
	}
	return nil
}

func hasColumn(ctx context.Context, tx *sql.Tx, table, column string) (bool, error) {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf("SELECT name FROM pragma_table_info('%s')", table))
	if err != nil {
		return false, fmt.Errorf("reading columns of %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, fmt.Errorf("scanning column name: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("iterating columns of %s: %w", table, err)
	}
	return false, nil
}
