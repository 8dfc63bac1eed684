// Package consenter classifies a consenter's consent state from the history
// of consent, rescind and renew events recorded against them.
package consenter

import (
	"time"

	"ett/internal/consenter/models"
	"ett/pkg/timeutil"
)

// EventKind names the log an event came from.
type EventKind string

const (
	EventConsented EventKind = "consented"
	EventRescinded EventKind = "rescinded"
	EventRenewed   EventKind = "renewed"
)

// Verdict is a classified status plus the event that decided it. Deciding
// fields are zero for FORTHCOMING.
type Verdict struct {
	Status models.Status `json:"status"`
	Kind   EventKind     `json:"deciding_event,omitempty"`
	At     time.Time     `json:"deciding_timestamp,omitempty"`
	// Age is how long ago the deciding event happened as of evaluation.
	Age time.Duration `json:"age"`
}

// GetLatestDate returns the latest of dates; ok is false for an empty list.
func GetLatestDate(dates ...time.Time) (time.Time, bool) {
	return timeutil.GetLatestDate(dates...)
}

// ConsentStatus classifies c as of now against the expiry duration.
func ConsentStatus(c *models.Consenter, expiry time.Duration, now time.Time) models.Status {
	return Classify(c, expiry, now).Status
}

// Classify is ConsentStatus with the deciding event attached.
//
// A rescind that shares its instant with the latest consent or renewal wins.
func Classify(c *models.Consenter, expiry time.Duration, now time.Time) Verdict {
	if !c.HasActed() {
		return Verdict{Status: models.StatusForthcoming}
	}

	var v Verdict
	found := false
	// Rescinded is visited last so it takes ties.
	for _, events := range []struct {
		kind  EventKind
		dates []time.Time
	}{
		{EventConsented, c.ConsentedTimestamps},
		{EventRenewed, c.RenewedTimestamps},
		{EventRescinded, c.RescindedTimestamps},
	} {
		latest, ok := GetLatestDate(events.dates...)
		if !ok {
			continue
		}
		if !found || !latest.Before(v.At) {
			v.Kind, v.At = events.kind, latest
			found = true
		}
	}
	v.Age = now.Sub(v.At)

	switch {
	case v.Kind == EventRescinded:
		v.Status = models.StatusRescinded
	case v.Age >= expiry:
		v.Status = models.StatusExpired
	default:
		v.Status = models.StatusActive
	}
	return v
}
