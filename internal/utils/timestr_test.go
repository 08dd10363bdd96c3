package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeString(t *testing.T) {
	cases := map[string]time.Duration{
		"5":                5 * time.Second,
		"1.5":              1500 * time.Millisecond,
		"0":                0,
		"100ms":            100 * time.Millisecond,
		"1m30s":            90 * time.Second,
		"2 seconds":        2 * time.Second,
		"1 min 30 s":       90 * time.Second,
		"1 hour 1 min":     61 * time.Minute,
		"250 milliseconds": 250 * time.Millisecond,
		"1 day":            24 * time.Hour,
		"- 2 s":            -2 * time.Second,
		"-3":               -3 * time.Second,
		"1e2":              100 * time.Second,
		"00:01:30":         90 * time.Second,
		"01:30":            90 * time.Second,
		"1:00:00":          time.Hour,
		"01:30.25":         90*time.Second + 250*time.Millisecond,
		"-00:00:02.5":      -2500 * time.Millisecond,
	}
	for input, want := range cases {
		got, err := ParseTimeString(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
}

func TestParseTimeStringInvalid(t *testing.T) {
	for _, input := range []string{"", "abc", "5 parsecs", "1 min x", "1:2:3:4", "1::30", ":30", "1:3x", "1.5:30"} {
		_, err := ParseTimeString(input)
		assert.Error(t, err, input)
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0 seconds", FormatDuration(0))
	assert.Equal(t, "5 seconds", FormatDuration(5*time.Second))
	assert.Equal(t, "1 minute 30 seconds", FormatDuration(90*time.Second))
	assert.Equal(t, "1 second 500 milliseconds", FormatDuration(1500*time.Millisecond))
}

func TestParseTimeStringOutOfRange(t *testing.T) {
	for _, input := range []string{"inf", "-inf", "+Inf", "nan", "NaN", "infinity", "0x1p4", "1e400", "1e10", "-1e10", "3000000 hours", "9999999999 days", "99999999999:00:00"} {
		_, err := ParseTimeString(input)
		assert.Error(t, err, input)
	}

	d, err := ParseTimeString("100000 hours")
	require.NoError(t, err)
	assert.Equal(t, 100000*time.Hour, d)
}
