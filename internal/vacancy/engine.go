// Package vacancy decides whether an entity is understaffed and whether a
// role has stayed below its minimum headcount for longer than policy allows.
//
// The classifiers in this file are pure: they read a roster snapshot, a
// policy duration and an evaluation instant, and return a Result carrying
// the verdict plus diagnostics for logging. Nothing here touches a clock or
// a store.
package vacancy

import (
	"time"

	"ett/internal/personnel"
	"ett/internal/personnel/models"
	"ett/pkg/timeutil"
)

// Reason explains how a verdict was reached.
type Reason string

const (
	// ReasonNoRequirement: the role carries no minimum headcount.
	ReasonNoRequirement Reason = "no_requirement"
	// ReasonStaffed: active plus in-grace holders meet the minimum.
	ReasonStaffed Reason = "staffed"
	// ReasonWithinGrace: below minimum, but the vacancy is younger than the limit.
	ReasonWithinGrace Reason = "within_grace"
	// ReasonBreached: below minimum for at least the limit.
	ReasonBreached Reason = "breached"
	// ReasonNoAnchor: below minimum with nothing to start a grace period from.
	ReasonNoAnchor Reason = "no_anchor"
)

// UserReport is the per-user diagnostic line. Exactly one of Remainder and
// Overdue is set for inactive users; both are empty for active ones.
type UserReport struct {
	Role      models.Role `json:"role"`
	Active    bool        `json:"active"`
	Fullname  string      `json:"fullname,omitempty"`
	UpdatedAt time.Time   `json:"update_timestamp"`
	Remainder string      `json:"remainder,omitempty"`
	Overdue   string      `json:"overdue,omitempty"`
}

// Result is a vacancy verdict for one role of one entity.
type Result struct {
	Role               models.Role   `json:"role"`
	Minimum            int           `json:"minimum"`
	MaxVacancy         time.Duration `json:"max_vacancy"`
	ActiveCount        int           `json:"active_count"`
	ValidInactiveCount int           `json:"valid_inactive_count"`
	Breached           bool          `json:"breached"`
	Reason             Reason        `json:"reason"`
	// Since is the instant the vacancy clock started; zero when no clock runs.
	Since   time.Time     `json:"since,omitempty"`
	Elapsed time.Duration `json:"elapsed"`
	// Remaining is time left before breach. Negative values are the amount
	// over the limit. For a staffed role it is the smallest grace left on any
	// inactive holder still counted, zero if none.
	Remaining time.Duration `json:"remaining"`
	// OverUnder renders Remaining for humans, e.g. "2 days remaining".
	OverUnder string                `json:"over_under,omitempty"`
	Report    map[string]UserReport `json:"report,omitempty"`
}

// CloseToBreach reports whether a staffed role is being held up by at least
// one removed holder whose grace window is still running.
func (r *Result) CloseToBreach() bool {
	return r.Reason == ReasonStaffed && r.Remaining > 0
}

// IsUnderStaffed reports whether any staffed role has fewer active holders
// than its minimum. It is a pure headcount check.
func IsUnderStaffed(roster *personnel.Personnel) bool {
	for _, role := range models.StaffedRoles() {
		if roster.ActiveCount(role) < role.Minimum() {
			return true
		}
	}
	return false
}

// ExceededRoleVacancyTimeLimit decides whether role has been below its
// minimum headcount for at least maxVacancy as of now. users is the whole
// roster of the entity, not only holders of role.
func ExceededRoleVacancyTimeLimit(role models.Role, users []models.User, maxVacancy time.Duration, now time.Time) *Result {
	res := &Result{
		Role:       role,
		Minimum:    role.Minimum(),
		MaxVacancy: maxVacancy,
		Report:     make(map[string]UserReport),
	}
	if res.Minimum == 0 {
		res.Reason = ReasonNoRequirement
		return res
	}

	holders := usersInRole(users, role)
	if role == models.RoleAuthInd && len(holders) == 0 {
		return neverStaffed(res, users, now)
	}

	var (
		latestVacated time.Time
		anyInactive   bool
		smallestGrace time.Duration
	)
	for _, u := range holders {
		entry := UserReport{Role: u.Role, Active: u.IsActive(), Fullname: u.Fullname, UpdatedAt: u.VacatedAt()}
		if u.IsActive() {
			res.ActiveCount++
			res.Report[u.Email] = entry
			continue
		}

		vacated := u.VacatedAt()
		if !anyInactive || vacated.After(latestVacated) {
			latestVacated = vacated
		}
		anyInactive = true

		vacancy := now.Sub(vacated)
		if vacancy < maxVacancy {
			remaining := maxVacancy - vacancy
			res.ValidInactiveCount++
			if smallestGrace == 0 || remaining < smallestGrace {
				smallestGrace = remaining
			}
			entry.Remainder = timeutil.Humanize(remaining)
		} else {
			entry.Overdue = timeutil.Humanize(vacancy - maxVacancy)
		}
		res.Report[u.Email] = entry
	}

	if res.ActiveCount+res.ValidInactiveCount >= res.Minimum {
		res.Reason = ReasonStaffed
		if smallestGrace > 0 {
			res.Remaining = smallestGrace
			res.OverUnder = overUnder(smallestGrace)
		}
		return res
	}

	// The count last dropped below minimum at the most recent removal; an
	// earlier one may have been covered by a later hire who then left too.
	since := latestVacated
	if !anyInactive {
		youngest, ok := youngerUser(users)
		if !ok {
			res.Breached = true
			res.Reason = ReasonNoAnchor
			return res
		}
		since = youngest.CreatedAt
	}
	return clock(res, since, now)
}

// neverStaffed handles a co-signer role that has never had a holder: the
// grace period runs from the creation of the newest active administrator.
func neverStaffed(res *Result, users []models.User, now time.Time) *Result {
	var activeAdmins []models.User
	for _, u := range usersInRole(users, models.RoleAdmin) {
		if u.IsActive() {
			activeAdmins = append(activeAdmins, u)
		}
	}
	admin, ok := youngerUser(activeAdmins)
	if !ok {
		res.Breached = true
		res.Reason = ReasonNoAnchor
		return res
	}
	res = clock(res, admin.CreatedAt, now)
	entry := UserReport{Role: admin.Role, Active: true, Fullname: admin.Fullname, UpdatedAt: admin.VacatedAt()}
	if res.Breached {
		entry.Overdue = timeutil.Humanize(res.Remaining)
	} else {
		entry.Remainder = timeutil.Humanize(res.Remaining)
	}
	res.Report[admin.Email] = entry
	return res
}

func clock(res *Result, since, now time.Time) *Result {
	res.Since = since
	res.Elapsed = now.Sub(since)
	res.Remaining = res.MaxVacancy - res.Elapsed
	res.Breached = res.Elapsed >= res.MaxVacancy
	if res.Breached {
		res.Reason = ReasonBreached
	} else {
		res.Reason = ReasonWithinGrace
	}
	res.OverUnder = overUnder(res.Remaining)
	return res
}

func overUnder(remaining time.Duration) string {
	if remaining > 0 {
		return timeutil.Humanize(remaining) + " remaining"
	}
	return timeutil.Humanize(remaining) + " over the limit"
}

func usersInRole(users []models.User, role models.Role) []models.User {
	var out []models.User
	for _, u := range users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out
}

// youngerUser returns the most recently created user. Ties keep the earlier
// entry; update time plays no part.
func youngerUser(users []models.User) (models.User, bool) {
	if len(users) == 0 {
		return models.User{}, false
	}
	youngest := users[0]
	for _, u := range users[1:] {
		if u.CreatedAt.After(youngest.CreatedAt) {
			youngest = u
		}
	}
	return youngest, true
}
