package main

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tj/go-naturaldate"

	"github.com/christopherklint97/asananas/internal/allocation"
)

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// parseReference turns a --ref value into a calendar date. It accepts
// YYYY-MM-DD or natural language such as "last monday" or "in 2 weeks",
// resolved against now. An empty value means today.
func parseReference(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "today", "now":
		return midnight(now), nil
	}
	if isoDatePattern.MatchString(s) {
		d, err := allocation.ParseDate(s)
		if err != nil {
			return time.Time{}, &allocation.DateFormatError{Value: s, Field: "reference date"}
		}
		return d, nil
	}

	invalid := &allocation.DateFormatError{Value: s, Field: "reference date"}
	t, err := naturaldate.Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", invalid, err)
	}

	// Unknown words resolve to the reference itself; a real phrase moves
	// with it or lands on a fixed date.
	if t.Equal(now) {
		alt := now.Add(-36 * time.Hour)
		t2, err := naturaldate.Parse(s, alt)
		if err != nil || t2.Equal(alt) {
			return time.Time{}, invalid
		}
	}
	return midnight(t), nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
