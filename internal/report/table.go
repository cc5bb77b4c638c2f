package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/christopherklint97/asananas/internal/allocation"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	currentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14")).
			Bold(true)

	overStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))
)

const colGap = 2

var tableHeaders = []string{"Person", "Project", "Week", "Week of", "Days", "Utilization"}

func percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

// RenderTable renders rows as an aligned table. Weeks before currentWeek are
// dimmed, the current week is highlighted, and utilization cells turn red
// where the person's total for that week is above threshold.
func RenderTable(rows []Row, currentWeek string, threshold float64) string {
	totals := make(map[[2]string]float64)
	for _, r := range rows {
		totals[[2]string{r.Person, r.Week}] += r.Utilization
	}

	cells := make([][]string, len(rows))
	for i, r := range rows {
		util := percent(r.Utilization)
		switch {
		case totals[[2]string{r.Person, r.Week}] > threshold:
			util = overStyle.Render(util)
		case r.Week < currentWeek:
			util = dimStyle.Render(util)
		}

		week := r.Week
		switch {
		case r.Week < currentWeek:
			week = dimStyle.Render(week)
		case r.Week == currentWeek:
			week = currentStyle.Render(week)
		}

		cells[i] = []string{r.Person, r.Project, week, r.WeekOf, fmt.Sprint(r.Days), util}
	}
	return renderGrid(tableHeaders, cells)
}

// RenderLoads renders each person's summed utilization for one week.
func RenderLoads(loads []allocation.Load, threshold float64) string {
	cells := make([][]string, len(loads))
	for i, l := range loads {
		util := okStyle.Render(percent(l.Utilization))
		if l.Utilization > threshold {
			util = overStyle.Render(percent(l.Utilization))
		}
		cells[i] = []string{l.Person, util, strings.Join(l.Projects, ", ")}
	}
	return renderGrid([]string{"Person", "Total", "Projects"}, cells)
}

// RenderWarnings renders one line per warning, or nothing.
func RenderWarnings(warnings []string) string {
	var b strings.Builder
	for _, w := range warnings {
		b.WriteString(warningStyle.Render("! " + w))
		b.WriteString("\n")
	}
	return b.String()
}

func renderGrid(headers []string, rows [][]string) string {
	cols := len(headers)

	widths := make([]int, cols)
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < cols && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style *lipgloss.Style) {
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := widths[i] - lipgloss.Width(cell)
			if style != nil {
				cell = style.Render(cell)
			}
			b.WriteString(cell)
			if i < cols-1 {
				b.WriteString(strings.Repeat(" ", pad+colGap))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, &headerStyle)
	for i, w := range widths {
		b.WriteString(dimStyle.Render(strings.Repeat("─", w)))
		if i < cols-1 {
			b.WriteString(strings.Repeat(" ", colGap))
		}
	}
	b.WriteString("\n")
	for _, row := range rows {
		writeRow(row, nil)
	}
	return b.String()
}
