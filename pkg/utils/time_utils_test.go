package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsOffHours(t *testing.T) {
	tests := []struct {
		name string
		hour int
		want bool
	}{
		{"late night", 23, true},
		{"window start", 22, true},
		{"early morning", 3, true},
		{"just before open", 5, true},
		{"window end", 6, false},
		{"mid morning", 10, false},
		{"evening rush", 19, false},
		{"just before window", 21, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := time.Date(2026, 8, 30, tt.hour, 30, 0, 0, istLoc)
			assert.Equal(t, tt.want, IsOffHours(at))
		})
	}
}

func TestIsOffHoursConvertsZone(t *testing.T) {
	// 17:30 UTC is 23:00 IST.
	at := time.Date(2026, 8, 30, 17, 30, 0, 0, time.UTC)
	assert.True(t, IsOffHours(at))
}

func TestDayBoundsIST(t *testing.T) {
	at := time.Date(2026, 8, 30, 13, 45, 12, 0, istLoc)
	start, end := DayBoundsIST(at)

	assert.Equal(t, int64(86400), end-start)

	startIST := time.Unix(start, 0).In(istLoc)
	assert.Equal(t, 0, startIST.Hour())
	assert.Equal(t, 30, startIST.Day())

	// A timestamp shortly after IST midnight belongs to the same IST day even
	// though it is the previous day in UTC.
	afterMidnight := time.Date(2026, 8, 30, 0, 10, 0, 0, istLoc)
	s2, _ := DayBoundsIST(afterMidnight)
	assert.Equal(t, start, s2)
}

func TestParseBatchDate(t *testing.T) {
	parsed, err := ParseBatchDate("2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, 2026, parsed.Year())
	assert.Equal(t, time.August, parsed.Month())
	assert.Equal(t, 30, parsed.Day())

	_, err = ParseBatchDate("30-08-2026")
	assert.Error(t, err)
}

func TestFromUnixSecondsIST(t *testing.T) {
	assert.True(t, FromUnixSecondsIST(0).IsZero())
	assert.True(t, FromUnixSecondsIST(-5).IsZero())
	assert.False(t, FromUnixSecondsIST(1_700_000_000).IsZero())
}
