package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"", 0, true},
		{"  3.5 ", 3.5, true},
		{"1,250", 1250, true},
		{"-4", 0, true},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseNumber(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestParseCountTruncates(t *testing.T) {
	n, ok := parseCount("7.9")
	assert.True(t, ok)
	assert.Equal(t, 7, n)
}

func TestHoursBetween(t *testing.T) {
	ts := func(s string) timestamp {
		t.Helper()
		v, ok := parseTimestamp(s)
		require.True(t, ok, s)
		return v
	}

	tests := []struct {
		name       string
		start, end string
		want       float64
	}{
		{"clock range", "09:00", "11:30", 2.5},
		{"twelve hour clock", "9:00 am", "1:15 PM", 4.25},
		{"overnight clock range", "22:00", "02:00", 4},
		{"full datetimes", "2025-01-01 08:00:00", "2025-01-01 16:30:00", 8.5},
		{"reversed datetimes", "2025-01-01 16:00:00", "2025-01-01 08:00:00", 0},
		{"excel day fractions", "0.375", "0.5", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, hoursBetween(ts(tt.start), ts(tt.end)), 1e-6)
		})
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	_, ok := parseTimestamp("soon")
	assert.False(t, ok)
	_, ok = parseTimestamp("")
	assert.False(t, ok)
}
