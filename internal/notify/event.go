// Package notify publishes verdict events produced by registry sweeps.
package notify

import (
	"context"
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"ett/pkg/requestcontext"
)

// Kind names the verdict an event reports.
type Kind string

const (
	KindVacancyBreached Kind = "entity.vacancy_breached"
	KindUnderstaffed    Kind = "entity.understaffed"
	KindConsentExpired  Kind = "consenter.consent_expired"
)

// Event is one verdict worth acting on. Subject is the entity ID or the
// consenter email.
type Event struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	SweepID    string    `json:"sweep_id,omitempty"`
	Subject    string    `json:"subject"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

// Publisher delivers events to whatever acts on them.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NewEvent stamps an event with a fresh ID and the evaluation time and sweep
// pinned in ctx.
func NewEvent(ctx context.Context, kind Kind, subject string, payload any) Event {
	now := requestcontext.Now(ctx)
	return Event{
		ID:         newID(now),
		Kind:       kind,
		SweepID:    requestcontext.SweepID(ctx),
		Subject:    subject,
		OccurredAt: now,
		Payload:    payload,
	}
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// newID returns a ULID so events from one sweep sort by creation.
func newID(at time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	id, err := ulid.New(ulid.Timestamp(at), entropy)
	if err != nil {
		// at is outside the ULID time range.
		return ulid.Make().String()
	}
	return id.String()
}

// NewSweepID identifies one sweep run.
func NewSweepID(at time.Time) string {
	return newID(at)
}
