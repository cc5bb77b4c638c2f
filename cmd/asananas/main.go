package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/christopherklint97/asananas/internal/allocation"
	"github.com/christopherklint97/asananas/internal/asana"
	"github.com/christopherklint97/asananas/internal/calendar"
	"github.com/christopherklint97/asananas/internal/config"
	"github.com/christopherklint97/asananas/internal/logging"
	"github.com/christopherklint97/asananas/internal/pipeline"
	"github.com/christopherklint97/asananas/internal/store"
	"github.com/christopherklint97/asananas/internal/taskfile"
)

var (
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string
	flagDB        string
)

var rootCmd = &cobra.Command{
	Use:           "asananas",
	Short:         "Weekly resource allocation from your planning tasks",
	Long:          "asananas reads allocation notes such as \"Alice: 50%, Bob: 3d\" from tasks and shows how booked each person is per ISO week.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.config/asananas/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: auto, console, json")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "snapshot database path")

	addSourceFlags(reportCmd, fetchCmd, tasksCmd, watchCmd)

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func setup() (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if flagConfig != "" {
		cfg, err = config.LoadFile(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagLogFormat != "" {
		cfg.Log.Format = flagLogFormat
	}
	if flagDB != "" {
		cfg.Store.Path = flagDB
	}

	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	logger := logging.New(logging.ParseLevel(cfg.Log.Level), os.Stderr, format)

	return &app{cfg: cfg, logger: logger}, nil
}

func (a *app) openStore() (*store.DB, error) {
	path, err := a.cfg.StorePath()
	if err != nil {
		return nil, err
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

func (a *app) aggregateOptions(ref time.Time) allocation.AggregateOptions {
	return allocation.AggregateOptions{
		WorkDaysPerWeek: a.cfg.Allocation.WorkDaysPerWeek,
		ReferenceDate:   ref,
		PastWeeks:       a.cfg.Allocation.PastWeeks,
		FutureWeeks:     a.cfg.Allocation.FutureWeeks,
	}
}

var (
	flagSource   string
	flagLocation string
	flagOffline  bool
)

func addSourceFlags(cmds ...*cobra.Command) {
	for _, c := range cmds {
		c.Flags().StringVar(&flagSource, "source", "asana", "task source: asana, ics or file")
		c.Flags().StringVar(&flagLocation, "location", "", "ICS or task file path/URL for the ics and file sources")
		if c != fetchCmd {
			c.Flags().BoolVar(&flagOffline, "offline", false, "use the last fetched snapshot instead of the source")
		}
	}
}

func (a *app) source() (pipeline.Source, error) {
	switch flagSource {
	case "asana":
		if a.cfg.Asana.AccessToken == "" {
			return nil, fmt.Errorf("asana access token not configured, set ASANA_ACCESS_TOKEN or run 'asananas config'")
		}
		if a.cfg.Asana.WorkspaceName == "" || a.cfg.Asana.ProjectName == "" {
			return nil, fmt.Errorf("asana workspace and project names are required")
		}
		ttl := time.Duration(a.cfg.Asana.CacheTTLMinutes) * time.Minute
		client := asana.NewClient(a.cfg.Asana.AccessToken, a.cfg.Asana.BaseURL, ttl, a.logger)
		return &asana.Source{
			Client:          client,
			WorkspaceName:   a.cfg.Asana.WorkspaceName,
			ProjectName:     a.cfg.Asana.ProjectName,
			AllocationField: a.cfg.Asana.AllocationField,
		}, nil
	case "ics":
		if flagLocation == "" {
			return nil, fmt.Errorf("--location is required for the ics source")
		}
		return &calendar.Source{Location: flagLocation}, nil
	case "file":
		if flagLocation == "" {
			return nil, fmt.Errorf("--location is required for the file source")
		}
		return taskfile.New(flagLocation), nil
	}
	return nil, fmt.Errorf("unknown source %q (expected asana, ics or file)", flagSource)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}
