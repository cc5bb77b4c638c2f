package allocation

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil || len(s) != len(dateLayout) {
		return time.Time{}, &DateFormatError{Value: s}
	}
	return t, nil
}

// FormatDate is the inverse of ParseDate.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// isoWeekday returns Monday=1 … Sunday=7.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// WorkDays returns every date from start to due inclusive whose ISO weekday
// rank is at most perWeek. It is empty when start is after due.
func WorkDays(start, due time.Time, perWeek int) []time.Time {
	var days []time.Time
	for d := start; !d.After(due); d = d.AddDate(0, 0, 1) {
		if isoWeekday(d) <= perWeek {
			days = append(days, d)
		}
	}
	return days
}

// WeekLabel formats the ISO week of t as "<year>-CW<week>", zero-padding the
// week so labels sort in calendar order.
func WeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-CW%02d", year, week)
}

func validWorkDays(n int) error {
	if n < 1 || n > 7 {
		return fmt.Errorf("%w: got %d", ErrInvalidWorkDays, n)
	}
	return nil
}
