package db

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// ExpectedGuestColumns are the guests columns the application reads and writes.
var ExpectedGuestColumns = []string{
	"id",
	"name",
	"family_id",
	"attending",
	"attendance_choice",
	"attend_ceremony",
	"attend_lunch",
	"allergens",
	"dietary_notes",
	"admin_notes",
	"updated_at",
}

// Backup writes a consistent copy of the database to dest using VACUUM INTO.
// The parent directory is created if needed and dest must not already exist.
func (repo *Repository) Backup(dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0700); err != nil {
		return fmt.Errorf("creating backup dir: %w", err)
	}

	if _, err := repo.dbConn.Exec(`VACUUM INTO ?`, dest); err != nil {
		return fmt.Errorf("backing up database to %s: %w", dest, err)
	}
	return nil
}

// MissingGuestColumns returns the expected guests columns absent from the schema.
func (repo *Repository) MissingGuestColumns() ([]string, error) {
	var columns []string
	err := repo.dbConn.Select(&columns, `SELECT name FROM pragma_table_info('guests')`)
	if err != nil {
		return nil, fmt.Errorf("reading guests columns: %w", err)
	}

	var missing []string
	for _, expected := range ExpectedGuestColumns {
		if !slices.Contains(columns, expected) {
			missing = append(missing, expected)
		}
	}
	return missing, nil
}

// Verify returns an error naming any expected column that is missing.
func (repo *Repository) Verify() error {
	missing, err := repo.MissingGuestColumns()
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("schema verification failed, missing guest columns: %v", missing)
	}
	return nil
}
