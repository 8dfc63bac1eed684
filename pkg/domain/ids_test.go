package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "ett/pkg/domain-errors"
)

// TestParseEntityID_Invariants validates the parsing invariant:
// "entity IDs must be valid, non-empty, non-nil UUIDs"
func TestParseEntityID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseEntityID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseEntityID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseEntityID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseEntityID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, EntityID(valid), id)
		assert.False(t, id.IsNil())
	})
}

func TestParseEntityID_HostileInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE entities;--", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEntityID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestParseYesNo(t *testing.T) {
	for _, in := range []string{"Y", "y", "yes", " YES "} {
		v, err := ParseYesNo(in)
		require.NoError(t, err, in)
		assert.Equal(t, Yes, v)
		assert.True(t, v.Bool())
	}
	for _, in := range []string{"N", "no"} {
		v, err := ParseYesNo(in)
		require.NoError(t, err, in)
		assert.Equal(t, No, v)
	}
	_, err := ParseYesNo("maybe")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "bob@warhen.work", NormalizeEmail("  Bob@Warhen.WORK "))
}
