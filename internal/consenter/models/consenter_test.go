package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "ett/pkg/domain-errors"
)

func TestNewConsenter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("normalizes email", func(t *testing.T) {
		c, err := NewConsenter("  Pat@Example.ORG ", "Pat", now)
		require.NoError(t, err)
		assert.Equal(t, "pat@example.org", c.Email)
		assert.True(t, c.IsActive())
		assert.False(t, c.HasActed())
	})

	t.Run("rejects empty email", func(t *testing.T) {
		_, err := NewConsenter("   ", "Pat", now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestConsenterEvents(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c, err := NewConsenter("pat@example.org", "", now)
	require.NoError(t, err)

	err = c.Renew(now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Empty(t, c.RenewedTimestamps)

	c.Consent(now)
	require.NoError(t, c.Renew(now.Add(time.Hour)))
	c.Rescind(now.Add(2 * time.Hour))

	assert.True(t, c.HasActed())
	assert.Len(t, c.ConsentedTimestamps, 1)
	assert.Len(t, c.RenewedTimestamps, 1)
	assert.Len(t, c.RescindedTimestamps, 1)
}

func TestParseTimestamps(t *testing.T) {
	t.Run("parses with and without fractional seconds", func(t *testing.T) {
		ts, err := ParseTimestamps([]string{"2024-03-01T10:00:00.000Z", "2024-03-02T10:00:00Z"})
		require.NoError(t, err)
		require.Len(t, ts, 2)
		assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), ts[0])
		assert.Equal(t, time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), ts[1])
	})

	t.Run("empty log", func(t *testing.T) {
		ts, err := ParseTimestamps(nil)
		require.NoError(t, err)
		assert.Nil(t, ts)
	})

	t.Run("rejects malformed entries", func(t *testing.T) {
		_, err := ParseTimestamps([]string{"2024-03-01T10:00:00Z", "yesterday"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("round trips through the stored form", func(t *testing.T) {
		in := []time.Time{time.Date(2024, 3, 1, 10, 0, 0, 123000000, time.UTC)}
		ts, err := ParseTimestamps(FormatTimestamps(in))
		require.NoError(t, err)
		assert.Equal(t, in, ts)
	})

	t.Run("stored form does not truncate below a millisecond", func(t *testing.T) {
		in := []time.Time{time.Date(2024, 3, 1, 10, 0, 0, 123456789, time.FixedZone("CET", 3600))}
		ts, err := ParseTimestamps(FormatTimestamps(in))
		require.NoError(t, err)
		require.Len(t, ts, 1)
		assert.True(t, in[0].Equal(ts[0]))
		assert.Equal(t, 123456789, ts[0].Nanosecond())
	})
}
