package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScheduledTime(t *testing.T) {
	t.Run("utc timestamp stays utc", func(t *testing.T) {
		got, err := ParseScheduledTime("2026-07-04T12:00:00Z")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 7, 4, 12, 0, 0, 0, time.UTC), got)
	})

	t.Run("explicit offset is honored", func(t *testing.T) {
		got, err := ParseScheduledTime("2026-07-04T12:00:00+02:00")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 7, 4, 10, 0, 0, 0, time.UTC), got)
	})

	t.Run("naive timestamp reads as eastern", func(t *testing.T) {
		got, err := ParseScheduledTime("2026-07-04T12:00:00")
		require.NoError(t, err)
		// July is EDT, UTC-4.
		assert.Equal(t, time.Date(2026, 7, 4, 16, 0, 0, 0, time.UTC), got)
	})

	t.Run("minute precision accepted", func(t *testing.T) {
		got, err := ParseScheduledTime("2026-01-15T09:30")
		require.NoError(t, err)
		// January is EST, UTC-5.
		assert.Equal(t, time.Date(2026, 1, 15, 14, 30, 0, 0, time.UTC), got)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := ParseScheduledTime("next tuesday")
		assert.Error(t, err)
	})
}

func TestFormatEastern(t *testing.T) {
	formatted := FormatEastern(time.Date(2026, 7, 4, 16, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-07-04T12:00:00-04:00", formatted)
}

func TestIsFuture(t *testing.T) {
	assert.True(t, IsFuture(time.Now().UTC().Add(time.Minute)))
	assert.False(t, IsFuture(time.Now().UTC().Add(-time.Minute)))
}
