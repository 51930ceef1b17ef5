package rsvp

import (
	"fmt"
	"os"

	"github.com/weddingrsvp/rsvp/db"
	"github.com/weddingrsvp/rsvp/gallery"
	"github.com/weddingrsvp/rsvp/logger"
)

// WithOptions applies a series of configuration functions to the app.
func (app *App) WithOptions(options ...func(*App) error) error {
	for _, option := range options {
		if err := option(app); err != nil {
			return fmt.Errorf("applying option on rsvp : %w", err)
		}
	}
	return nil
}

// WithConfigDir loads config.yaml from appConfigDir, creating the directory and
// the file with defaults on first run.
func WithConfigDir(appConfigDir string) func(*App) error {
	return func(app *App) error {
		if _, err := os.ReadDir(appConfigDir); err != nil {
			if !os.IsNotExist(err) {
				return fmt.Errorf("checking if directory exists %s: %w", appConfigDir, err)
			}
			app.Logger.Info("Creating config dir", "dir", appConfigDir)
			if err := os.MkdirAll(appConfigDir, 0700); err != nil {
				return fmt.Errorf("creating config dir %s: %w", appConfigDir, err)
			}
		}

		cfg, err := LoadConfig(appConfigDir)
		if err != nil {
			return err
		}
		app.ConfigDir = appConfigDir
		app.Config = cfg
		return nil
	}
}

// WithLogger sets the app logger. A nil logger is built from the log settings of the config.
func WithLogger(log logger.Logger) func(*App) error {
	return func(app *App) error {
		if log != nil {
			app.Logger = log
			return nil
		}
		l, err := logger.New(app.Config.LoggerConfig())
		if err != nil {
			return fmt.Errorf("creating logger : %w", err)
		}
		app.Logger = l
		return nil
	}
}

// WithDatabase opens and migrates the SQLite database at path, or at the configured
// database_path when path is empty. An already open database is closed first.
func WithDatabase(path string) func(*App) error {
	return func(app *App) error {
		if path == "" {
			path = app.Config.DatabasePath
		}
		if err := app.Close(); err != nil {
			return err
		}

		dbConn, err := db.New(path)
		if err != nil {
			return fmt.Errorf("opening database %s : %w", path, err)
		}
		app.Repo = db.NewRepo(dbConn)
		app.Logger.Debug("Database ready", "path", path)
		return nil
	}
}

// WithGallery stores photos under dir, or under the configured photos_dir when dir is empty.
func WithGallery(dir string) func(*App) error {
	return func(app *App) error {
		if dir == "" {
			dir = app.Config.PhotosDir
		}
		store, err := gallery.NewStore(dir)
		if err != nil {
			return fmt.Errorf("preparing gallery %s : %w", dir, err)
		}
		store.MaxBytes = app.Config.Upload.MaxBytes
		app.Photos = store
		return nil
	}
}
