package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopherklint97/asananas/internal/allocation"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func sampleRows() []Row {
	return Rows([]allocation.Bucket{
		{Person: "Alice", Project: "Website", Week: "2023-CW01", WeekOf: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), Days: 5, Allocation: 0.5, Utilization: 0.5},
		{Person: "Alice", Project: "Hiring", Week: "2023-CW02", WeekOf: time.Date(2023, 1, 9, 0, 0, 0, 0, time.UTC), Days: 5, Allocation: 0.8, Utilization: 0.8},
		{Person: "Alice", Project: "Website", Week: "2023-CW02", WeekOf: time.Date(2023, 1, 9, 0, 0, 0, 0, time.UTC), Days: 3, Allocation: 0.5, Utilization: 0.3},
	})
}

func TestRows(t *testing.T) {
	rows := sampleRows()
	require.Len(t, rows, 3)
	assert.Equal(t, Row{Person: "Alice", Project: "Website", Week: "2023-CW01", WeekOf: "2023-01-02", Days: 5, Allocation: 0.5, Utilization: 0.5}, rows[0])
	assert.Empty(t, Rows(nil))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRows()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{"Alice", "Hiring", "2023-CW02", "2023-01-09", "5", "0.8", "0.8"}, records[2])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleRows()))

	var got []Row
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sampleRows(), got)

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)

	assert.Equal(t, FormatJSON, FormatFromPath("out/report.json"))
	assert.Equal(t, FormatCSV, FormatFromPath("out/report.csv"))
	assert.Equal(t, FormatCSV, FormatFromPath("report"))
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, Save(context.Background(), path, FormatJSON, sampleRows()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []Row
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Len(t, got, 3)
}

func TestSchema(t *testing.T) {
	data, err := Schema()
	require.NoError(t, err)

	var s map[string]any
	require.NoError(t, json.Unmarshal(data, &s))
	assert.Equal(t, "array", s["type"])

	items, ok := s["items"].(map[string]any)
	require.True(t, ok)
	props, ok := items["properties"].(map[string]any)
	require.True(t, ok)
	for _, field := range csvHeader {
		assert.Contains(t, props, field)
	}
}

func TestRenderTable(t *testing.T) {
	out := stripANSI(RenderTable(sampleRows(), "2023-CW02", 1.0))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)

	assert.True(t, strings.HasPrefix(lines[0], "Person"))
	assert.Contains(t, lines[0], "Utilization")
	assert.True(t, strings.HasPrefix(lines[1], "─"))
	assert.Contains(t, lines[2], "2023-CW01")
	assert.Contains(t, lines[2], "50%")
	assert.Contains(t, lines[3], "80%")

	// columns line up across rows
	assert.Equal(t, strings.Index(lines[0], "Week of"), strings.Index(lines[2], "2023-01-02"))
}

func TestRenderTable_Threshold(t *testing.T) {
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.ANSI)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })

	rows := sampleRows()
	over := overStyle.Render(percent(rows[1].Utilization))

	// Alice is at 110% in 2023-CW02
	assert.Contains(t, RenderTable(rows, "2023-CW02", 1.0), over)
	assert.NotContains(t, RenderTable(rows, "2023-CW02", 1.2), over)
	assert.Contains(t, RenderTable(rows, "2023-CW02", 0.4), overStyle.Render(percent(rows[0].Utilization)))
}

func TestRenderLoads(t *testing.T) {
	loads := []allocation.Load{
		{Person: "Alice", Week: "2023-CW02", Utilization: 1.1, Projects: []string{"Hiring", "Website"}},
	}
	out := stripANSI(RenderLoads(loads, 1.0))
	assert.Contains(t, out, "110%")
	assert.Contains(t, out, "Hiring, Website")
}

func TestWarnings(t *testing.T) {
	ex := &allocation.Extraction{
		Unallocated: []string{"Backlog"},
		Unparseable: []string{"Mystery"},
		Invalid:     []allocation.ItemError{{ItemID: "9", Name: "Weekend", Err: allocation.ErrZeroWorkDays}},
	}

	got := Warnings(ex)
	require.Len(t, got, 3)
	assert.Equal(t, "Backlog: no allocation set", got[0])
	assert.Equal(t, "Mystery: allocation could not be parsed", got[1])
	assert.True(t, strings.HasPrefix(got[2], "Weekend: "))
	assert.True(t, errors.Is(ex.Invalid[0], allocation.ErrZeroWorkDays))

	assert.Nil(t, Warnings(nil))
	assert.Contains(t, stripANSI(RenderWarnings(got)), "! Backlog: no allocation set")
}
