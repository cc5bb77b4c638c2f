package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopherklint97/asananas/internal/allocation"
)

func TestParseReference(t *testing.T) {
	now := time.Date(2023, 1, 4, 15, 30, 0, 0, time.UTC) // Wednesday

	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"empty", "", time.Date(2023, 1, 4, 0, 0, 0, 0, time.UTC)},
		{"today", "Today", time.Date(2023, 1, 4, 0, 0, 0, 0, time.UTC)},
		{"now", "now", time.Date(2023, 1, 4, 0, 0, 0, 0, time.UTC)},
		{"iso", "2022-12-30", time.Date(2022, 12, 30, 0, 0, 0, 0, time.UTC)},
		{"yesterday", "yesterday", time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)},
		{"next monday", "next monday", time.Date(2023, 1, 9, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseReference(tt.in, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseReference_Invalid(t *testing.T) {
	now := time.Date(2023, 1, 4, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   string
	}{
		{"garbage", "banana"},
		{"impossible iso date", "2023-13-45"},
		{"iso date with bad day", "2023-02-30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseReference(tt.in, now)
			require.Error(t, err)
			assert.ErrorIs(t, err, allocation.ErrInvalidDateFormat)
			assert.Contains(t, err.Error(), tt.in)
		})
	}
}

func TestMidnight(t *testing.T) {
	got := midnight(time.Date(2023, 1, 4, 23, 59, 0, 0, time.FixedZone("CET", 3600)))
	assert.Equal(t, time.Date(2023, 1, 4, 0, 0, 0, 0, time.UTC), got)
}
