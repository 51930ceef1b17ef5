package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	cmd     = "rsvp"
	version = "1.0.0"
)

var cmdError error

func main() {
	app := &cobra.Command{
		Use:   cmd,
		Short: cmd + " runs the wedding RSVP service",
	}
	defineAppFlags(app)
	defineCommands(app)
	if err := app.Execute(); err != nil {
		os.Exit(2)
	}
	if cmdError != nil {
		os.Exit(1)
	}
}

func defaultConfigDir() string {
	if dir := os.Getenv("RSVP_CONFIG_DIR"); dir != "" {
		return dir
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "wedding-rsvp")
}

func defineAppFlags(app *cobra.Command) {
	f := app.PersistentFlags()
	f.String("config-dir", defaultConfigDir(), "directory holding config.yaml, the database and the photos")
}

func defineCommands(app *cobra.Command) {
	app.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show " + cmd + " version",
		Run: func(*cobra.Command, []string) {
			fmt.Println(cmd, version)
		},
	})

	app.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "serve the RSVP API until interrupted",
		Args:  cobra.NoArgs,
		Run: func(c *cobra.Command, args []string) {
			reportError(serve(c.Context(), stringFlag(c, "config-dir")))
		},
	})

	app.AddCommand(setFlags(func(f *pflag.FlagSet) {
		f.Bool("dry-run", false, "print the migration plan without touching the database")
		f.Bool("no-restore-on-failure", false, "keep the database as is when the migration fails")
	}, &cobra.Command{
		Use:   "migrate",
		Short: "back up the database and apply pending schema migrations",
		Args:  cobra.NoArgs,
		Run: func(c *cobra.Command, args []string) {
			reportError(migrate(stringFlag(c, "config-dir"), boolFlag(c, "dry-run"), !boolFlag(c, "no-restore-on-failure")))
		},
	}))

	app.AddCommand(setFlags(func(f *pflag.FlagSet) {
		f.Bool("replace", false, "delete every existing guest and family first")
	}, &cobra.Command{
		Use:   "seed <invitations.txt>",
		Short: "load guests and families from an invitation list",
		Args:  cobra.ExactArgs(1),
		Run: func(c *cobra.Command, args []string) {
			reportError(seed(stringFlag(c, "config-dir"), args[0], boolFlag(c, "replace")))
		},
	}))

	app.AddCommand(setFlags(func(f *pflag.FlagSet) {
		f.String("url", "http://127.0.0.1:8022", "base URL of a running RSVP service")
	}, &cobra.Command{
		Use:   "stats",
		Short: "print the RSVP statistics of a running service",
		Args:  cobra.NoArgs,
		Run: func(c *cobra.Command, args []string) {
			reportError(stats(c.Context(), stringFlag(c, "url")))
		},
	}))
}

func reportError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		cmdError = err
	}
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

func setFlags(flagSetter func(*pflag.FlagSet), cmd *cobra.Command) *cobra.Command {
	flagSetter(cmd.Flags())
	return cmd
}

func boolFlag(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		fatal("bad boolean value for " + name + ": " + err.Error())
	}
	return val
}

func stringFlag(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		fatal("bad string value for " + name + ": " + err.Error())
	}
	return val
}
