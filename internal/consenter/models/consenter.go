package models

import (
	"time"

	id "ett/pkg/domain"
	dErrors "ett/pkg/domain-errors"
	"ett/pkg/timeutil"
)

// Status is the classified consent state of a consenter.
type Status string

const (
	// StatusForthcoming: no consent or rescind has ever been recorded.
	StatusForthcoming Status = "FORTHCOMING"
	StatusActive      Status = "ACTIVE"
	StatusRescinded   Status = "RESCINDED"
	StatusExpired     Status = "EXPIRED"
)

func (s Status) String() string {
	return string(s)
}

// Consenter is an individual whose consent to disclosure is tracked as three
// append-only event logs. The logs are not kept sorted.
//
// Invariants:
//   - Email is normalized and non-empty
//   - Renewed entries only follow a recorded consent
type Consenter struct {
	Email               string      `json:"email"`
	Fullname            string      `json:"fullname,omitempty"`
	Active              id.YesNo    `json:"active"`
	ConsentedTimestamps []time.Time `json:"consented_timestamp"`
	RescindedTimestamps []time.Time `json:"rescinded_timestamp"`
	RenewedTimestamps   []time.Time `json:"renewed_timestamp"`
	CreatedAt           time.Time   `json:"create_timestamp"`
}

func NewConsenter(email, fullname string, now time.Time) (*Consenter, error) {
	email = id.NormalizeEmail(email)
	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "consenter email cannot be empty")
	}
	return &Consenter{
		Email:     email,
		Fullname:  fullname,
		Active:    id.Yes,
		CreatedAt: now,
	}, nil
}

func (c *Consenter) IsActive() bool {
	return c.Active == id.Yes
}

// HasActed reports whether a consent or rescind was ever recorded.
func (c *Consenter) HasActed() bool {
	return len(c.ConsentedTimestamps) > 0 || len(c.RescindedTimestamps) > 0
}

func (c *Consenter) Consent(at time.Time) {
	c.ConsentedTimestamps = append(c.ConsentedTimestamps, at)
}

func (c *Consenter) Rescind(at time.Time) {
	c.RescindedTimestamps = append(c.RescindedTimestamps, at)
}

// Renew records a renewal. A renewal without a prior consent has no meaning
// and is rejected.
func (c *Consenter) Renew(at time.Time) error {
	if len(c.ConsentedTimestamps) == 0 {
		return dErrors.New(dErrors.CodeValidation, "cannot renew consent that was never given")
	}
	c.RenewedTimestamps = append(c.RenewedTimestamps, at)
	return nil
}

// ParseTimestamps converts a stored ISO-8601 event log. Any malformed entry
// fails the whole log.
func ParseTimestamps(raw []string) ([]time.Time, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		t, err := timeutil.ParseISO(s)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid consent timestamp")
		}
		out = append(out, t)
	}
	return out, nil
}

// FormatTimestamps renders an event log in the stored ISO-8601 form at full
// nanosecond precision.
func FormatTimestamps(ts []time.Time) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, timeutil.FormatISO(t))
	}
	return out
}
