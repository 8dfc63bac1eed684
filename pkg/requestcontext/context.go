// Package requestcontext provides context accessors for evaluation-scoped
// values: the pinned evaluation time and the identifiers used to correlate
// log lines and events produced during one sweep.
//
// Usage in services (read values):
//
//	now := requestcontext.Now(ctx)
//	sweepID := requestcontext.SweepID(ctx)
//
// Usage in workers and tests (set values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithSweepID(ctx, runID)
package requestcontext

import (
	"context"
	"time"

	id "ett/pkg/domain"
)

type (
	sweepIDKey  struct{}
	entityIDKey struct{}
	evalTimeKey struct{}
)

var (
	ContextKeySweepID  = sweepIDKey{}
	ContextKeyEntityID = entityIDKey{}
	ContextKeyEvalTime = evalTimeKey{}
)

// SweepID returns the identifier of the sweep run that owns ctx, or "".
func SweepID(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeySweepID).(string); ok {
		return v
	}
	return ""
}

func WithSweepID(ctx context.Context, sweepID string) context.Context {
	return context.WithValue(ctx, ContextKeySweepID, sweepID)
}

// EntityID returns the entity under evaluation, or the nil ID.
func EntityID(ctx context.Context) id.EntityID {
	if v, ok := ctx.Value(ContextKeyEntityID).(id.EntityID); ok {
		return v
	}
	return id.EntityID{}
}

func WithEntityID(ctx context.Context, entityID id.EntityID) context.Context {
	return context.WithValue(ctx, ContextKeyEntityID, entityID)
}

// Now returns the evaluation time pinned in ctx, falling back to time.Now().
// Engines never read the wall clock directly; everything time-sensitive goes
// through here so tests and sweeps can fix the instant.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyEvalTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime pins the evaluation time. A sweep pins one instant for its whole
// batch so every verdict in it is computed against the same clock.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyEvalTime, t)
}
