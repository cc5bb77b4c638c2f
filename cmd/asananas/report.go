package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/christopherklint97/asananas/internal/allocation"
	"github.com/christopherklint97/asananas/internal/pipeline"
	"github.com/christopherklint97/asananas/internal/report"
	"github.com/christopherklint97/asananas/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show weekly utilization per person and project",
	RunE:  runReport,
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of exported report rows",
	RunE:  runSchema,
}

func init() {
	f := reportCmd.Flags()
	f.String("ref", "", "reference date: YYYY-MM-DD or natural language (default today)")
	f.StringSlice("person", nil, "only include these people (repeatable)")
	f.Int("past", -1, "weeks to show before the reference week (default from config)")
	f.Int("future", -1, "weeks to show after the reference week (default from config)")
	f.String("out", "", "export rows to a path or URL")
	f.String("format", "", "export format: csv or json (default from --out extension)")
	f.Bool("no-store", false, "do not save the fetched snapshot")
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}

	refFlag, _ := cmd.Flags().GetString("ref")
	persons, _ := cmd.Flags().GetStringSlice("person")
	past, _ := cmd.Flags().GetInt("past")
	future, _ := cmd.Flags().GetInt("future")
	out, _ := cmd.Flags().GetString("out")
	formatFlag, _ := cmd.Flags().GetString("format")
	noStore, _ := cmd.Flags().GetBool("no-store")

	ref, err := parseReference(refFlag, time.Now())
	if err != nil {
		return err
	}
	opts := a.aggregateOptions(ref)
	if past >= 0 {
		opts.PastWeeks = past
	}
	if future >= 0 {
		opts.FutureWeeks = future
	}

	src, err := a.source()
	if err != nil {
		return err
	}

	var db *store.DB
	if flagOffline || !noStore {
		db, err = a.openStore()
		if err != nil {
			return err
		}
		defer db.Close()
	}

	ctx, cancel := signalContext()
	defer cancel()

	res, err := pipeline.Run(ctx, src, pipeline.Options{
		Aggregate: opts,
		Persons:   persons,
		Store:     db,
		Offline:   flagOffline,
		Logger:    a.logger,
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	rows := report.Rows(res.Buckets)
	currentWeek := allocation.WeekLabel(ref)
	start, end := opts.Window()
	a.logger.Debug("report window", "after", start, "through", end, "rows", len(rows),
		"people", allocation.Persons(res.Extraction.Facts))

	if len(rows) == 0 {
		fmt.Fprintln(w, "No allocations in the selected window.")
	} else {
		fmt.Fprint(w, report.RenderTable(rows, currentWeek, a.cfg.Allocation.Threshold))
		if loads := allocation.WeeklyLoad(res.Buckets, currentWeek); len(loads) > 0 {
			fmt.Fprintf(w, "\nThis week (%s):\n", currentWeek)
			fmt.Fprint(w, report.RenderLoads(loads, a.cfg.Allocation.Threshold))
		}
	}

	if warnings := report.Warnings(res.Extraction); len(warnings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprint(w, report.RenderWarnings(warnings))
	}

	if out != "" {
		format := report.FormatFromPath(out)
		if formatFlag != "" {
			if format, err = report.ParseFormat(formatFlag); err != nil {
				return err
			}
		}
		if err := report.Save(ctx, out, format, rows); err != nil {
			return err
		}
		fmt.Fprintf(w, "\nSaved %d rows to %s\n", len(rows), out)
	}

	return nil
}

func runSchema(cmd *cobra.Command, args []string) error {
	data, err := report.Schema()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
