package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/christopherklint97/asananas/internal/allocation"
	"github.com/christopherklint97/asananas/internal/pipeline"
	"github.com/christopherklint97/asananas/internal/store"
	"github.com/christopherklint97/asananas/internal/taskfile"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch work items and store them as a snapshot",
	RunE:  runFetch,
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List work items and their parsed allocation",
	RunE:  runTasks,
}

func init() {
	fetchCmd.Flags().Int("keep", 20, "snapshots to keep per source")
	tasksCmd.Flags().String("export", "", "write the work items to a YAML task file")
}

func runFetch(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	keep, _ := cmd.Flags().GetInt("keep")

	src, err := a.source()
	if err != nil {
		return err
	}
	db, err := a.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := signalContext()
	defer cancel()

	items, err := pipeline.Fetch(ctx, src, pipeline.Options{Store: db, Logger: a.logger})
	if err != nil {
		return err
	}

	if keep > 0 {
		removed, err := db.PruneSnapshots(src.Name(), keep)
		if err != nil {
			return err
		}
		a.logger.Debug("old snapshots pruned", "source", src.Name(), "removed", removed)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d work items from %s\n", len(items), src.Name())
	return nil
}

func runTasks(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	export, _ := cmd.Flags().GetString("export")

	src, err := a.source()
	if err != nil {
		return err
	}

	var db *store.DB
	if flagOffline {
		db, err = a.openStore()
		if err != nil {
			return err
		}
		defer db.Close()
	}

	ctx, cancel := signalContext()
	defer cancel()

	items, err := pipeline.Fetch(ctx, src, pipeline.Options{Store: db, Offline: flagOffline, Logger: a.logger})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintln(w, "No work items found.")
	}
	for _, item := range items {
		status := ""
		if item.Completed {
			status = " [done]"
		}
		fmt.Fprintf(w, "%s  %s → %s  %s%s\n", item.Name, item.StartDate, item.DueDate, describeAllocation(item), status)
	}

	if export != "" {
		if err := taskfile.Save(ctx, export, items); err != nil {
			return err
		}
		fmt.Fprintf(w, "\nExported %d work items to %s\n", len(items), export)
	}
	return nil
}

func describeAllocation(item allocation.WorkItem) string {
	if item.AllocationText == nil {
		return "(no allocation)"
	}
	clauses := allocation.ParseClauses(*item.AllocationText)
	if len(clauses) == 0 {
		return fmt.Sprintf("(unparseable: %q)", *item.AllocationText)
	}
	parts := make([]string, len(clauses))
	for i, c := range clauses {
		parts[i] = fmt.Sprintf("%s %g%s", c.Person, c.Amount, c.Unit)
	}
	return strings.Join(parts, ", ")
}
