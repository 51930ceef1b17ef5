package rsvp

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/weddingrsvp/rsvp/db"
	"github.com/weddingrsvp/rsvp/domain"
	"github.com/weddingrsvp/rsvp/logger"
)

func TestBackupName(t *testing.T) {
	at := time.Date(2026, 6, 13, 9, 5, 3, 0, time.UTC)
	got := backupName("/srv/rsvp/wedding.db", at)
	if got != "wedding-20260613-090503.sqlite3" {
		t.Fatalf("\nwanted:\nwedding-20260613-090503.sqlite3\ngot:\n%s", got)
	}
}

func TestMigrateDatabase(t *testing.T) {
	t.Run("migrates an empty database", func(t *testing.T) {
		dir := t.TempDir()
		dbPath := filepath.Join(dir, "wedding.db")
		if err := os.WriteFile(dbPath, nil, 0600); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		result, err := MigrateDatabase(dbPath, filepath.Join(dir, "backups"), MigrateOptions{}, logger.Nop())
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if result.From != 0 || result.To == 0 {
			t.Fatalf("\nwanted:\nfrom 0 to latest\ngot:\nfrom %d to %d", result.From, result.To)
		}
		if _, err := os.Stat(result.Backup); err != nil {
			t.Fatalf("\nwanted:\nbackup file\ngot:\n%v", err)
		}
	})

	t.Run("keeps data of an up to date database", func(t *testing.T) {
		dir := t.TempDir()
		dbPath := filepath.Join(dir, "wedding.db")
		dbConn, err := db.New(dbPath)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		repo := db.NewRepo(dbConn)
		family := &domain.Family{FamilyName: "Famiglia Rossi"}
		if err := repo.CreateFamily(family); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		familyID := family.ID
		if err := repo.CreateGuest(&domain.Guest{Name: "Mario Rossi", FamilyID: &familyID}); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		repo.Close()

		result, err := MigrateDatabase(dbPath, filepath.Join(dir, "backups"), MigrateOptions{RestoreOnFailure: true}, logger.Nop())
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if result.From != result.To {
			t.Fatalf("\nwanted:\nno pending migrations\ngot:\nfrom %d to %d", result.From, result.To)
		}
		if result.Families != 1 || result.Guests != 1 || result.Photos != 0 {
			t.Fatalf("\nwanted:\n1 family, 1 guest, 0 photos\ngot:\n%+v", result)
		}
	})

	t.Run("dry run does not write a backup", func(t *testing.T) {
		dir := t.TempDir()
		dbPath := filepath.Join(dir, "wedding.db")
		if err := os.WriteFile(dbPath, nil, 0600); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		result, err := MigrateDatabase(dbPath, filepath.Join(dir, "backups"), MigrateOptions{DryRun: true}, logger.Nop())
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if _, err := os.Stat(result.Backup); !os.IsNotExist(err) {
			t.Fatalf("\nwanted:\nno backup file\ngot:\n%v", err)
		}

		dbConn, err := db.Open(dbPath)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		defer dbConn.Close()
		current, _, err := db.SchemaVersion(dbConn)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if current != 0 {
			t.Fatalf("\nwanted:\nversion 0\ngot:\n%d", current)
		}
	})

	t.Run("fails when the database is missing", func(t *testing.T) {
		dir := t.TempDir()
		_, err := MigrateDatabase(filepath.Join(dir, "missing.db"), dir, MigrateOptions{}, logger.Nop())
		if err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})
}

func TestRestoreBackup(t *testing.T) {
	dir := t.TempDir()
	backup := filepath.Join(dir, "backup.sqlite3")
	dbPath := filepath.Join(dir, "wedding.db")

	if err := os.WriteFile(backup, []byte("good"), 0600); err != nil {
		t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
	}
	if err := os.WriteFile(dbPath, []byte("broken database"), 0600); err != nil {
		t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
	}
	if err := os.WriteFile(dbPath+"-wal", []byte("wal"), 0600); err != nil {
		t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
	}

	if err := restoreBackup(backup, dbPath); err != nil {
		t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
	}

	got, err := os.ReadFile(dbPath)
	if err != nil {
		t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
	}
	if string(got) != "good" {
		t.Fatalf("\nwanted:\ngood\ngot:\n%s", got)
	}
	if _, err := os.Stat(dbPath + "-wal"); !os.IsNotExist(err) {
		t.Fatalf("\nwanted:\nwal file removed\ngot:\n%v", err)
	}
}
