// Command planctl inspects and maintains a device's local plan data
// directly in the SQLite store. It never talks to the remote mirror.
package main

import (
	"fmt"
	"os"

	"weddingplan/internal/config"
	"weddingplan/internal/mirror"
	"weddingplan/internal/planner"
	"weddingplan/internal/store"
	"weddingplan/internal/templates"

	"github.com/spf13/cobra"
)

var Version = "dev"

type options struct {
	dbPath string
	device string
}

// env is one opened device store.
type env struct {
	planner *planner.Service
	session *mirror.Session
	close   func() error
}

func (o *options) open() (*env, error) {
	if o.device == "" {
		return nil, fmt.Errorf("--device is required")
	}
	backend, err := store.OpenSQLite(o.dbPath)
	if err != nil {
		return nil, err
	}
	catalog, err := templates.Default()
	if err != nil {
		backend.Close()
		return nil, err
	}
	return &env{
		planner: planner.New(catalog, planner.WithUpcomingDays(config.Get().UpcomingDays)),
		session: mirror.New(nil, nil).Session(store.New(backend, o.device), ""),
		close:   backend.Close,
	}, nil
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:           "planctl",
		Short:         "Inspect and maintain local wedding plan data",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", config.Get().SQLitePath, "SQLite database file")
	rootCmd.PersistentFlags().StringVar(&opts.device, "device", "", "Device id whose data to use")

	rootCmd.AddCommand(statusCmd(opts))
	rootCmd.AddCommand(exportCmd(opts))
	rootCmd.AddCommand(importCmd(opts))
	rootCmd.AddCommand(resetCmd(opts))
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
