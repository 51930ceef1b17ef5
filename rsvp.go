// Package rsvp assembles the wedding RSVP service: configuration, the SQLite
// guest database, the photo gallery and the HTTP API.
//
// An App is built with functional options:
//
//	app, err := rsvp.New(
//		rsvp.WithConfigDir(dir),
//		rsvp.WithLogger(nil),
//		rsvp.WithDatabase(""),
//		rsvp.WithGallery(""),
//	)
package rsvp

import (
	"errors"
	"fmt"

	"github.com/weddingrsvp/rsvp/db"
	"github.com/weddingrsvp/rsvp/gallery"
	"github.com/weddingrsvp/rsvp/logger"
	"github.com/weddingrsvp/rsvp/server"
)

// App holds the configured parts of the service.
type App struct {
	ConfigDir string         // Directory holding config.yaml
	Config    *Config        // Service configuration
	Repo      *db.Repository // Guest, family, photo and audit storage
	Photos    *gallery.Store // Photo files
	Logger    logger.Logger  // Structured logger
}

// New creates an App and applies the options in order. Without WithConfigDir the
// defaults are relative to the working directory.
func New(options ...func(*App) error) (*App, error) {
	cfg, err := DefaultConfig(".")
	if err != nil {
		return nil, err
	}
	app := &App{
		ConfigDir: ".",
		Config:    cfg,
		Logger:    logger.Nop(),
	}

	if err := app.WithOptions(options...); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

// Server builds the HTTP API from the App's storage and settings.
func (app *App) Server() (*server.Server, error) {
	if app.Repo == nil {
		return nil, errors.New("app has no database")
	}
	return server.New(server.Config{
		AdminPassword:  app.Config.AdminPassword,
		AllowedOrigins: app.Config.AllowedOrigins,
		UploadRate:     app.Config.Upload.RateLimit,
	}, app.Repo, app.Photos, app.Logger)
}

// Close releases the database.
func (app *App) Close() error {
	if app.Repo == nil {
		return nil
	}
	err := app.Repo.Close()
	app.Repo = nil
	if err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}
