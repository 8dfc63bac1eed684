package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	id "ett/pkg/domain"
)

func TestNow(t *testing.T) {
	t.Run("pinned time wins", func(t *testing.T) {
		fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		ctx := WithTime(context.Background(), fixed)
		assert.Equal(t, fixed, Now(ctx))
	})

	t.Run("falls back to wall clock", func(t *testing.T) {
		before := time.Now()
		got := Now(context.Background())
		assert.False(t, got.Before(before))
	})
}

func TestIdentifiers(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, SweepID(ctx))
	assert.True(t, EntityID(ctx).IsNil())

	entityID := id.NewEntityID()
	ctx = WithEntityID(WithSweepID(ctx, "sweep-1"), entityID)
	assert.Equal(t, "sweep-1", SweepID(ctx))
	assert.Equal(t, entityID, EntityID(ctx))
}
