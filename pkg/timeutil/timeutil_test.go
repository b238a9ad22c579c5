package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExamDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339 utc", "2026-09-15T09:00:00Z", time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)},
		{"rfc3339 with offset", "2026-09-15T14:00:00+05:00", time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)},
		{"no offset means utc", "2026-09-15T09:00:00", time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)},
		{"date only", "2026-09-15", time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)},
		{"surrounding whitespace", " 2026-09-15 ", time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExamDate(tt.input)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	t.Run("rejects garbage", func(t *testing.T) {
		for _, input := range []string{"", "  ", "next tuesday", "15/09/2026"} {
			_, err := ParseExamDate(input)
			assert.Error(t, err, "input %q", input)
		}
	})
}

func TestFormatExamDate(t *testing.T) {
	almaty := time.FixedZone("ALMT", 5*3600)
	in := time.Date(2026, 9, 15, 14, 0, 0, 0, almaty)
	assert.Equal(t, "2026-09-15T09:00:00Z", FormatExamDate(in))
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"2h", 2 * time.Hour},
		{"2h30m", 2*time.Hour + 30*time.Minute},
		{"90m", 90 * time.Minute},
		{"3", 3 * time.Hour},
		{"1.5", 90 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("rejects garbage", func(t *testing.T) {
		for _, input := range []string{"", "two hours", "2x"} {
			_, err := ParseDuration(input)
			assert.Error(t, err, "input %q", input)
		}
	})
}

func TestIsSameDay(t *testing.T) {
	morning := time.Date(2026, 9, 15, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 9, 15, 23, 0, 0, 0, time.UTC)
	nextDay := time.Date(2026, 9, 16, 0, 30, 0, 0, time.UTC)

	assert.True(t, IsSameDay(morning, evening))
	assert.False(t, IsSameDay(evening, nextDay))

	// Comparison happens in UTC regardless of input zone.
	almaty := time.FixedZone("ALMT", 5*3600)
	assert.False(t, IsSameDay(morning, morning.In(almaty).Add(24*time.Hour)))
	assert.True(t, IsSameDay(morning, morning.In(almaty)))
}
