package domain

import (
	"errors"
	"time"
)

// Match errors
var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrInvalidMatchStatus = errors.New("invalid match status")
	ErrInvalidOpponent    = errors.New("opponent is required")
)

// Match status constants
const (
	MatchScheduled = "Scheduled"
	MatchPlayed    = "Played"
	MatchCancelled = "Cancelled"
)

func ValidMatchStatuses() []string {
	return []string{MatchScheduled, MatchPlayed, MatchCancelled}
}

type Match struct {
	ID        string    `json:"id"`
	MemberID  string    `json:"member_id"`
	Date      time.Time `json:"date"`
	Opponent  string    `json:"opponent"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Resolved at query time.
	MemberName   string `json:"member_name,omitempty"`
	MemberNumber string `json:"member_number,omitempty"`
}

type CreateMatchRequest struct {
	MemberID string `json:"member_id"`
	Date     string `json:"date"`
	Opponent string `json:"opponent"`
	Status   string `json:"status"`
}

type UpdateMatchRequest struct {
	Date     *string `json:"date,omitempty"`
	Opponent *string `json:"opponent,omitempty"`
	Status   *string `json:"status,omitempty"`
}

// MatchUpdate carries parsed partial-update fields to the repository.
type MatchUpdate struct {
	Date     *time.Time
	Opponent *string
	Status   *string
}

// MatchFilter narrows match listings.
type MatchFilter struct {
	MemberID string
	Status   string
}

func ValidateMatchStatus(status string) error {
	for _, s := range ValidMatchStatuses() {
		if s == status {
			return nil
		}
	}
	return ErrInvalidMatchStatus
}
