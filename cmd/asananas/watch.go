package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/christopherklint97/asananas/internal/allocation"
	"github.com/christopherklint97/asananas/internal/config"
	"github.com/christopherklint97/asananas/internal/notify"
	"github.com/christopherklint97/asananas/internal/pipeline"
	"github.com/christopherklint97/asananas/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-check allocations during work hours and alert on overbooking",
	RunE:  runWatch,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running watcher",
	RunE:  runStop,
}

func pidPath() (string, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "asananas.pid"), nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	pid, err := pidPath()
	if err != nil {
		return err
	}

	src, err := a.source()
	if err != nil {
		return err
	}
	db, err := a.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	alerter := &notify.Alerter{
		Notifier:  notify.Desktop{},
		State:     db,
		Threshold: a.cfg.Allocation.Threshold,
		Logger:    a.logger,
	}

	check := func(ctx context.Context, now time.Time) error {
		opts := a.aggregateOptions(midnight(now))
		res, err := pipeline.Run(ctx, src, pipeline.Options{
			Aggregate: opts,
			Store:     db,
			Offline:   flagOffline,
			Logger:    a.logger,
		})
		if err != nil {
			return err
		}

		week := allocation.WeekLabel(opts.ReferenceDate)
		if !a.cfg.Notifications.Enabled {
			for _, l := range allocation.Overallocated(res.Buckets, week, a.cfg.Allocation.Threshold) {
				a.logger.Warn("person over-allocated", "person", l.Person, "week", week, "utilization", l.Utilization)
			}
			return nil
		}
		_, err = alerter.Check(res.Buckets, week)
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	return watch.New(a.cfg.Watch, pid, check, a.logger).Run(ctx)
}

func runStop(cmd *cobra.Command, args []string) error {
	path, err := pidPath()
	if err != nil {
		return err
	}
	pid, err := watch.ReadPID(path)
	if err != nil {
		return err
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("finding process %d: %w", pid, err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("sending stop signal: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Sent stop signal to asananas (PID %d)\n", pid)
	return nil
}
