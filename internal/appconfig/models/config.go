package models

import (
	"time"

	dErrors "ett/pkg/domain-errors"
)

// ConfigName identifies a named policy value.
type ConfigName string

const (
	ConfigStaleAdminVacancy    ConfigName = "stale-admin-vacancy"
	ConfigStaleCoSignerVacancy ConfigName = "stale-co-signer-vacancy"
	ConfigConsentExpiration    ConfigName = "consent-expiration"
	ConfigInvitationExpiry     ConfigName = "auth-ind-invitation-expiry"
	ConfigDeleteDraftsAfter    ConfigName = "delete-drafts-after"
)

var validConfigNames = map[ConfigName]bool{
	ConfigStaleAdminVacancy:    true,
	ConfigStaleCoSignerVacancy: true,
	ConfigConsentExpiration:    true,
	ConfigInvitationExpiry:     true,
	ConfigDeleteDraftsAfter:    true,
}

// ParseConfigName validates a policy name from external input (env, YAML, rows).
func ParseConfigName(s string) (ConfigName, error) {
	n := ConfigName(s)
	if !n.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown config name: "+s)
	}
	return n, nil
}

func (n ConfigName) IsValid() bool {
	return validConfigNames[n]
}

func (n ConfigName) String() string {
	return string(n)
}

// DurationUnit is the unit a caller wants a policy duration expressed in.
type DurationUnit int64

const (
	Second DurationUnit = 1
	Minute DurationUnit = 60
	Hour   DurationUnit = 3600
	Day    DurationUnit = 86400
)

// AppConfig is a named policy value stored as integer seconds.
//
// Invariants:
//   - Name is a known ConfigName
//   - Seconds is non-negative
type AppConfig struct {
	Name        ConfigName `json:"name" yaml:"name"`
	Seconds     int64      `json:"value" yaml:"value"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
}

// NewAppConfig validates and builds a policy value.
func NewAppConfig(name ConfigName, seconds int64, description string) (*AppConfig, error) {
	if !name.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown config name: "+string(name))
	}
	if seconds < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "config value cannot be negative")
	}
	return &AppConfig{Name: name, Seconds: seconds, Description: description}, nil
}

// GetDuration converts the stored seconds into unit. A zero unit means seconds.
func (c *AppConfig) GetDuration(unit DurationUnit) float64 {
	if unit <= 0 {
		unit = Second
	}
	return float64(c.Seconds) / float64(unit)
}

// Duration returns the policy value as a time.Duration.
func (c *AppConfig) Duration() time.Duration {
	return time.Duration(c.Seconds) * time.Second
}
