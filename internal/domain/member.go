package domain

import (
	"errors"
	"regexp"
	"time"
)

// Member errors
var (
	ErrMemberNotFound  = errors.New("member not found")
	ErrDNIExists       = errors.New("member with this DNI already exists")
	ErrEmailExists     = errors.New("member with this email already exists")
	ErrInvalidDNI      = errors.New("invalid DNI")
	ErrInvalidEmail    = errors.New("invalid email format")
	ErrInvalidStanding = errors.New("invalid standing")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidMonths   = errors.New("months must be greater than 0")
)

// Member standing constants
const (
	StandingActive     = "Active"
	StandingSuspended  = "Suspended"
	StandingDelinquent = "Delinquent"
	StandingTerminated = "Terminated"
)

// Member category constants
const (
	CategoryFull     = "Full"
	CategoryLifetime = "Lifetime"
	CategoryCadet    = "Cadet"
	CategoryAdherent = "Adherent"
)

// ValidStandings returns list of valid member standings
func ValidStandings() []string {
	return []string{StandingActive, StandingSuspended, StandingDelinquent, StandingTerminated}
}

// ValidCategories returns list of valid member categories
func ValidCategories() []string {
	return []string{CategoryFull, CategoryLifetime, CategoryCadet, CategoryAdherent}
}

type Member struct {
	ID             string     `json:"id"`
	MemberNumber   string     `json:"member_number"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	DNI            string     `json:"dni"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone,omitempty"`
	Address        string     `json:"address,omitempty"`
	BirthDate      *time.Time `json:"birth_date,omitempty"`
	Category       string     `json:"category"`
	Role           string     `json:"role,omitempty"`
	Standing       string     `json:"standing"`
	JoinedAt       time.Time  `json:"joined_at"`
	TerminatedAt   *time.Time `json:"terminated_at,omitempty"`
	DuesExpiryDate time.Time  `json:"dues_expiry_date"`
	SeasonTicket   bool       `json:"season_ticket"`
	PhotoURL       string     `json:"photo_url,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// FullName returns the member's display name.
func (m *Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

// StatusChange is one entry in a member's standing history.
type StatusChange struct {
	ID        int64     `json:"id"`
	MemberID  string    `json:"member_id"`
	Standing  string    `json:"standing"`
	Reason    string    `json:"reason,omitempty"`
	ChangedBy string    `json:"changed_by,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

type CreateMemberRequest struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DNI            string `json:"dni"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	BirthDate      string `json:"birth_date"`
	Category       string `json:"category"`
	Role           string `json:"role"`
	Standing       string `json:"standing"`
	DuesExpiryDate string `json:"dues_expiry_date"`
	SeasonTicket   bool   `json:"season_ticket"`
	PhotoURL       string `json:"photo_url"`
}

type UpdateMemberRequest struct {
	FirstName      *string `json:"first_name,omitempty"`
	LastName       *string `json:"last_name,omitempty"`
	DNI            *string `json:"dni,omitempty"`
	Email          *string `json:"email,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Address        *string `json:"address,omitempty"`
	Category       *string `json:"category,omitempty"`
	Role           *string `json:"role,omitempty"`
	Standing       *string `json:"standing,omitempty"`
	DuesExpiryDate *string `json:"dues_expiry_date,omitempty"`
	SeasonTicket   *bool   `json:"season_ticket,omitempty"`
	PhotoURL       *string `json:"photo_url,omitempty"`
}

// MemberUpdate carries the parsed, typed fields of a partial member
// update down to the repository. Nil fields are left untouched.
type MemberUpdate struct {
	FirstName      *string
	LastName       *string
	DNI            *string
	Email          *string
	Phone          *string
	Address        *string
	Category       *string
	Role           *string
	Standing       *string
	TerminatedAt   *time.Time
	DuesExpiryDate *time.Time
	SeasonTicket   *bool
	PhotoURL       *string
}

// MemberFilter narrows and paginates member listings.
type MemberFilter struct {
	Query    string
	Standing string
	Category string
	Page     int
	PageSize int
}

type MemberPage struct {
	Data  []Member `json:"data"`
	Total int      `json:"total"`
	Page  int      `json:"page"`
	Pages int      `json:"pages"`
}

// MemberStats is the aggregate counters shown on the dashboard.
type MemberStats struct {
	Total      int `json:"total"`
	Active     int `json:"active"`
	Delinquent int `json:"delinquent"`
	Lifetime   int `json:"lifetime"`
	Terminated int `json:"terminated"`
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func ValidateDNI(dni string) error {
	if len(dni) < 7 || len(dni) > 10 {
		return ErrInvalidDNI
	}
	return nil
}

func ValidateStanding(standing string) error {
	for _, s := range ValidStandings() {
		if s == standing {
			return nil
		}
	}
	return ErrInvalidStanding
}

func ValidateCategory(category string) error {
	for _, c := range ValidCategories() {
		if c == category {
			return nil
		}
	}
	return ErrInvalidCategory
}

// rolesAsCategory are role labels the club's forms historically submitted
// in the category field.
var rolesAsCategory = map[string]bool{
	"Player": true,
	"Coach":  true,
	"Fan":    true,
}

// NormalizeCategoryRole moves role labels submitted as a category into the
// role field and falls back to the Full category.
func NormalizeCategoryRole(category, role string) (string, string) {
	if rolesAsCategory[category] {
		if role == "" {
			role = category
		}
		return CategoryFull, role
	}
	return category, role
}
