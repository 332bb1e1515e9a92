package domain

import (
	"fmt"
	"time"
)

// Dues status values frozen onto audit entries.
const (
	DuesCurrent = "current"
	DuesOverdue = "overdue"
)

// StatusNotApplicable is recorded when there is no member to evaluate.
const StatusNotApplicable = "N/A"

// AccessVerdict is the outcome of evaluating one member against the
// stadium entry rules.
type AccessVerdict struct {
	Eligible       bool   `json:"eligible"`
	StandingStatus string `json:"standing_status"`
	DuesStatus     string `json:"dues_status"`
	Reason         string `json:"reason"`
}

// dateOnly strips the time-of-day component so comparisons cannot flap
// across timezones or midnight.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EvaluateAccess decides whether a member may enter the venue. The check is
// two independent dimensions: administrative standing must be Active, and
// the dues expiry date must not be in the past. Expiry exactly today still
// counts as current, so members are not locked out on their expiry day.
// A nil member is ineligible with both statuses N/A.
func EvaluateAccess(m *Member, now time.Time) AccessVerdict {
	if m == nil {
		return AccessVerdict{
			Eligible:       false,
			StandingStatus: StatusNotApplicable,
			DuesStatus:     StatusNotApplicable,
			Reason:         "member not found",
		}
	}

	standingOk := m.Standing == StandingActive
	standingStatus := m.Standing

	duesOk := !dateOnly(m.DuesExpiryDate).Before(dateOnly(now))
	duesStatus := DuesOverdue
	if duesOk {
		duesStatus = DuesCurrent
	}

	if standingOk && duesOk {
		return AccessVerdict{
			Eligible:       true,
			StandingStatus: standingStatus,
			DuesStatus:     duesStatus,
			Reason:         "access granted",
		}
	}

	return AccessVerdict{
		Eligible:       false,
		StandingStatus: standingStatus,
		DuesStatus:     duesStatus,
		Reason:         fmt.Sprintf("standing: %s, dues: %s", standingStatus, duesStatus),
	}
}

// AccessLogEntry is one immutable record of an access check. The
// StandingStatus and DuesStatus fields are frozen at check time and never
// re-derived; MemberName and MemberNumber are display fields resolved
// against the member registry when the entry is read.
type AccessLogEntry struct {
	ID             string    `json:"id"`
	MemberID       string    `json:"member_id"`
	Granted        bool      `json:"granted"`
	Reason         string    `json:"reason"`
	StandingStatus string    `json:"standing_status"`
	DuesStatus     string    `json:"dues_status"`
	CheckedBy      string    `json:"checked_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`

	// Resolved at query time, not stored.
	MemberName   string `json:"member_name"`
	MemberNumber string `json:"member_number"`
}

// AccessLogFilter narrows and paginates audit queries. Filters combine
// conjunctively.
type AccessLogFilter struct {
	MemberID string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

type AccessLogPage struct {
	Data  []AccessLogEntry `json:"data"`
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Pages int              `json:"pages"`
}

// MemberSummary is the projection of a member returned with an access
// check, enough for a gate operator to confirm identity.
type MemberSummary struct {
	ID             string    `json:"id"`
	MemberNumber   string    `json:"member_number"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Category       string    `json:"category"`
	PhotoURL       string    `json:"photo_url,omitempty"`
	DuesExpiryDate time.Time `json:"dues_expiry_date"`
}

type AccessResponse struct {
	IsEligible     bool           `json:"is_eligible"`
	StatusMessage  string         `json:"status_message"`
	StandingStatus string         `json:"standing_status"`
	DuesStatus     string         `json:"dues_status"`
	Member         *MemberSummary `json:"member,omitempty"`
}
