package db

import (
	"embed"
	"fmt"

	_ "github.com/weddingrsvp/rsvp/db/migrations"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql migrations/*.go
var embedMigrations embed.FS

const migrationsDir = "migrations"

// Repository provides a centralized structure for database operations, embedding the database connection.
// It acts as a receiver for methods that implement the various repository interfaces defined in the domain package.
type Repository struct {
	dbConn *sqlx.DB
}

// NewRepo initializes a new Repository with the given sqlx.DB database connection.
func NewRepo(db *sqlx.DB) *Repository {
	return &Repository{
		dbConn: db,
	}
}

// Close terminates the database connection.
func (repo *Repository) Close() error {
	err := repo.dbConn.Close()
	if err != nil {
		return fmt.Errorf("closing repo : %w", err)
	}
	return nil
}

// Open connects to the SQLite database file without applying migrations.
// WAL mode and foreign keys are enabled, and the pool is limited to one connection.
func Open(name string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", fmt.Sprintf("%s?_journal=WAL&_timeout=5000&_fk=true", name))
	if err != nil {
		return nil, fmt.Errorf("connecting to db : %w", err)
	}

	db.SetMaxOpenConns(1)

	_, err = db.Exec("PRAGMA foreign_keys = ON;")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	return db, nil
}

// New opens the SQLite database file and applies all pending migrations.
func New(name string) (*sqlx.DB, error) {
	db, err := Open(name)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func setupGoose() error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		return fmt.Errorf("setting dialect for migrations : %w", err)
	}
	return nil
}

// Migrate applies every pending migration.
func Migrate(db *sqlx.DB) error {
	if err := setupGoose(); err != nil {
		return err
	}

	if err := goose.Up(db.DB, migrationsDir); err != nil {
		return fmt.Errorf("applying migration : %w", err)
	}
	return nil
}

// SchemaVersion returns the applied and the latest available migration versions.
func SchemaVersion(db *sqlx.DB) (current int64, latest int64, err error) {
	if err := setupGoose(); err != nil {
		return 0, 0, err
	}

	// GetDBVersion creates the version table when missing, which a dry run must not do.
	var tracked int
	err = db.Get(&tracked, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, goose.TableName())
	if err != nil {
		return 0, 0, fmt.Errorf("checking version table: %w", err)
	}
	if tracked > 0 {
		current, err = goose.GetDBVersion(db.DB)
		if err != nil {
			return 0, 0, fmt.Errorf("getting db version: %w", err)
		}
	}

	migrations, err := goose.CollectMigrations(migrationsDir, 0, goose.MaxVersion)
	if err != nil {
		return 0, 0, fmt.Errorf("collecting migrations: %w", err)
	}

	last, err := migrations.Last()
	if err != nil {
		return 0, 0, fmt.Errorf("finding latest migration: %w", err)
	}
	return current, last.Version, nil
}
