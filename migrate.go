package rsvp

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/weddingrsvp/rsvp/db"
	"github.com/weddingrsvp/rsvp/logger"
)

// MigrateOptions controls MigrateDatabase.
type MigrateOptions struct {
	DryRun           bool // Report the plan without touching the database.
	RestoreOnFailure bool // Copy the backup back when migrating or verifying fails.
}

// MigrateResult describes a migration run.
type MigrateResult struct {
	From     int64
	To       int64
	Backup   string
	Guests   int
	Families int
	Photos   int
}

// backupName is <stem>-<YYYYmmdd-HHMMSS>.sqlite3.
func backupName(dbPath string, at time.Time) string {
	stem := strings.TrimSuffix(filepath.Base(dbPath), filepath.Ext(dbPath))
	return fmt.Sprintf("%s-%s.sqlite3", stem, at.Format("20060102-150405"))
}

// MigrateDatabase backs up an existing database to backupDir, applies the pending
// migrations and verifies the guests columns.
func MigrateDatabase(dbPath, backupDir string, opts MigrateOptions, log logger.Logger) (*MigrateResult, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("database not found %s: %w", dbPath, err)
	}

	dbConn, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}
	repo := db.NewRepo(dbConn)
	defer repo.Close()

	current, latest, err := db.SchemaVersion(dbConn)
	if err != nil {
		return nil, err
	}
	result := &MigrateResult{
		From:   current,
		To:     latest,
		Backup: filepath.Join(backupDir, backupName(dbPath, time.Now())),
	}
	log.Info("Migration plan", "db", dbPath, "from", current, "to", latest, "backup", result.Backup)
	if opts.DryRun {
		return result, nil
	}

	if err := repo.Backup(result.Backup); err != nil {
		return nil, err
	}
	log.Info("Backup created", "path", result.Backup)

	migrateErr := db.Migrate(dbConn)
	if migrateErr == nil {
		migrateErr = repo.Verify()
	}
	if migrateErr != nil {
		log.Error("Migration failed", "err", migrateErr)
		if !opts.RestoreOnFailure {
			return nil, migrateErr
		}
		repo.Close()
		if err := restoreBackup(result.Backup, dbPath); err != nil {
			return nil, errors.Join(migrateErr, err)
		}
		log.Warn("Database restored from backup", "backup", result.Backup)
		return nil, migrateErr
	}

	if result.Guests, err = repo.CountGuests(); err != nil {
		return nil, err
	}
	if result.Families, err = repo.CountFamilies(); err != nil {
		return nil, err
	}
	if result.Photos, err = repo.CountPhotos(); err != nil {
		return nil, err
	}
	log.Info("Migration complete", "version", result.To, "guests", result.Guests, "families", result.Families, "photos", result.Photos)
	return result, nil
}

// restoreBackup overwrites dbPath with backup and drops the stale WAL files.
func restoreBackup(backup, dbPath string) error {
	src, err := os.Open(backup)
	if err != nil {
		return fmt.Errorf("opening backup %s: %w", backup, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(dbPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("opening database %s: %w", dbPath, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("restoring %s: %w", dbPath, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("restoring %s: %w", dbPath, err)
	}

	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s%s: %w", dbPath, suffix, err)
		}
	}
	return nil
}
