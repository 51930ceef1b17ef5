package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/weddingrsvp/rsvp"
	"github.com/weddingrsvp/rsvp/client"
	"github.com/weddingrsvp/rsvp/invitation"
)

const shutdownTimeout = 10 * time.Second

func serve(ctx context.Context, configDir string) error {
	app, err := rsvp.New(
		rsvp.WithConfigDir(configDir),
		rsvp.WithLogger(nil),
		rsvp.WithDatabase(""),
		rsvp.WithGallery(""),
	)
	if err != nil {
		return err
	}
	defer app.Close()

	srv, err := app.Server()
	if err != nil {
		return err
	}
	if app.Config.AdminPassword == "" {
		app.Logger.Warn("No admin password configured, admin endpoints are disabled")
	}

	httpServer := &http.Server{
		Addr:              app.Config.ListenAddress,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.Logger.Info("Listening", "addr", httpServer.Addr, "config", app.Config.ConfigFile())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving on %s: %w", httpServer.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		app.Logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// loadApp reads the config and builds the logger without opening the database.
func loadApp(configDir string) (*rsvp.App, error) {
	return rsvp.New(
		rsvp.WithConfigDir(configDir),
		rsvp.WithLogger(nil),
	)
}

func migrate(configDir string, dryRun, restore bool) error {
	app, err := loadApp(configDir)
	if err != nil {
		return err
	}
	defer app.Close()

	_, err = rsvp.MigrateDatabase(app.Config.DatabasePath, app.Config.BackupDir, rsvp.MigrateOptions{
		DryRun:           dryRun,
		RestoreOnFailure: restore,
	}, app.Logger)
	return err
}

func seed(configDir, listPath string, replace bool) error {
	f, err := os.Open(listPath)
	if err != nil {
		return fmt.Errorf("opening invitation list: %w", err)
	}
	defer f.Close()

	list, err := invitation.Parse(f)
	if err != nil {
		return err
	}

	app, err := rsvp.New(
		rsvp.WithConfigDir(configDir),
		rsvp.WithLogger(nil),
		rsvp.WithDatabase(""),
	)
	if err != nil {
		return err
	}
	defer app.Close()

	if replace {
		if err := invitation.Clear(app.Repo); err != nil {
			return err
		}
		app.Logger.Info("Existing guests removed")
	}
	if err := invitation.Seed(app.Repo, list); err != nil {
		return err
	}
	app.Logger.Info("Guest list loaded",
		"families", len(list.Families),
		"individuals", len(list.Individuals),
		"guests", list.GuestCount())
	return nil
}

func stats(ctx context.Context, url string) error {
	s, err := client.New(url).GetStats(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Guests\t%d\n", s.TotalGuests)
	fmt.Fprintf(w, "Confirmed\t%d\n", s.Confirmed)
	fmt.Fprintf(w, "Declined\t%d\n", s.Declined)
	fmt.Fprintf(w, "Pending\t%d\n", s.Pending)
	fmt.Fprintf(w, "Ceremony\t%d\n", s.Ceremony)
	fmt.Fprintf(w, "Lunch\t%d\n", s.Lunch)
	return w.Flush()
}
