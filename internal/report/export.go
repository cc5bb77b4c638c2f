package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

var csvHeader = []string{"person", "project", "week", "week_of", "days", "allocation", "utilization"}

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown export format %q (expected csv or json)", s)
}

// FormatFromPath picks the format from a file extension, defaulting to csv.
func FormatFromPath(path string) Format {
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return FormatJSON
	}
	return FormatCSV
}

func Write(w io.Writer, format Format, rows []Row) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, rows)
	case FormatCSV:
		return WriteCSV(w, rows)
	}
	return fmt.Errorf("unknown export format %q", format)
}

func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.Person,
			r.Project,
			r.Week,
			r.WeekOf,
			strconv.Itoa(r.Days),
			strconv.FormatFloat(r.Allocation, 'f', -1, 64),
			strconv.FormatFloat(r.Utilization, 'f', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteJSON(w io.Writer, rows []Row) error {
	if rows == nil {
		rows = []Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encoding rows: %w", err)
	}
	return nil
}

// Save writes rows to any location afs can address: a local path, file://
// or a cloud storage URL.
func Save(ctx context.Context, URL string, format Format, rows []Row) error {
	var buf bytes.Buffer
	if err := Write(&buf, format, rows); err != nil {
		return err
	}
	if err := afs.New().Upload(ctx, URL, file.DefaultFileOsMode, &buf); err != nil {
		return fmt.Errorf("saving report to %s: %w", URL, err)
	}
	return nil
}
