package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewTruncatesTimeOfDay(t *testing.T) {
	dr, err := New(
		time.Date(2026, time.September, 4, 15, 30, 0, 0, time.UTC),
		time.Date(2026, time.September, 6, 11, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.September, 4), dr.CheckIn)
	assert.Equal(t, date(2026, time.September, 6), dr.CheckOut)
	assert.Equal(t, 2, dr.Nights())
}

func TestNewRejectsEmptyOrInverted(t *testing.T) {
	_, err := New(date(2026, time.September, 6), date(2026, time.September, 4))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = New(date(2026, time.September, 4), date(2026, time.September, 4))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = New(time.Time{}, date(2026, time.September, 4))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestDayNormalizesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	local := time.Date(2026, time.September, 5, 1, 30, 0, 0, loc)
	assert.Equal(t, date(2026, time.September, 4), Day(local))
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	stay, err := New(date(2026, time.September, 4), date(2026, time.September, 8))
	require.NoError(t, err)

	cases := []struct {
		name     string
		in, out  time.Time
		overlaps bool
	}{
		{"identical", date(2026, time.September, 4), date(2026, time.September, 8), true},
		{"contained", date(2026, time.September, 5), date(2026, time.September, 6), true},
		{"partial front", date(2026, time.September, 2), date(2026, time.September, 5), true},
		{"partial back", date(2026, time.September, 7), date(2026, time.September, 10), true},
		{"back to back before", date(2026, time.September, 1), date(2026, time.September, 4), false},
		{"back to back after", date(2026, time.September, 8), date(2026, time.September, 11), false},
		{"disjoint", date(2026, time.September, 20), date(2026, time.September, 22), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			other, err := New(tc.in, tc.out)
			require.NoError(t, err)
			assert.Equal(t, tc.overlaps, stay.Overlaps(other))
			assert.Equal(t, tc.overlaps, other.Overlaps(stay))
		})
	}
}

func TestContainsDate(t *testing.T) {
	stay, err := New(date(2026, time.September, 4), date(2026, time.September, 6))
	require.NoError(t, err)

	assert.True(t, stay.ContainsDate(date(2026, time.September, 4)))
	assert.True(t, stay.ContainsDate(date(2026, time.September, 5)))
	assert.False(t, stay.ContainsDate(date(2026, time.September, 6)), "checkout day is not an occupied night")
	assert.False(t, stay.ContainsDate(date(2026, time.September, 3)))
}
